package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// Outcome is a fully decided HTTP result: the handler's only job is to
// serialize it.
type Outcome struct {
	Status int
	Body   map[string]any
}

// VerificationService decides whether a (tokenId, serialNumber) pair names an
// authentic certificate. The flow is cache check, then certificate lookup,
// then ledger resolution, then narrative enrichment, then persist. Narrative
// failure never fails a verification; ledger metadata failure always does.
type VerificationService interface {
	Verify(ctx context.Context, tokenID, serialNumber string) Outcome
}

type verificationService struct {
	log           *logger.Logger
	verifications repos.VerificationRepo
	certificates  repos.CertificateRepo
	ledger        hedera.Gateway
	ai            gemini.Client
}

func NewVerificationService(
	baseLog *logger.Logger,
	verifications repos.VerificationRepo,
	certificates repos.CertificateRepo,
	ledger hedera.Gateway,
	ai gemini.Client,
) VerificationService {
	return &verificationService{
		log:           baseLog.With("service", "VerificationService"),
		verifications: verifications,
		certificates:  certificates,
		ledger:        ledger,
		ai:            ai,
	}
}

func (s *verificationService) Verify(ctx context.Context, tokenID, serialNumber string) Outcome {
	if tokenID == "" || serialNumber == "" {
		return Outcome{Status: http.StatusBadRequest, Body: map[string]any{
			"stage": "validation",
			"error": "tokenId and serialNumber are required",
		}}
	}

	// Cache check. A read failure degrades to a miss instead of failing the
	// verification: the store is only an accelerator on this path.
	cached, err := s.verifications.GetByKey(ctx, nil, tokenID, serialNumber)
	if err != nil {
		s.log.Warn("cache read failed, treating as miss", "token_id", tokenID, "serial_number", serialNumber, "error", err)
		cached = nil
	}
	if cached != nil {
		var trace types.VerificationTrace
		if err := json.Unmarshal(cached.Trace, &trace); err != nil {
			s.log.Warn("cached trace is unreadable, treating as miss", "token_id", tokenID, "error", err)
		} else if trace.AI != nil && trace.AI.Error == "" {
			// A degraded narrative (fallback carrying an error) does not
			// count as a hit: the next verification retries enrichment.
			s.log.Info("verification cache hit", "token_id", tokenID, "serial_number", serialNumber)
			return Outcome{Status: http.StatusOK, Body: traceBody(trace, true)}
		}
	}

	// The certificate must exist locally before the ledger is consulted.
	// Absence is the business "not found" outcome, not an error.
	cert, err := s.certificates.GetByKey(ctx, nil, tokenID, serialNumber)
	if err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"stage":   "database_query",
			"error":   "Database query failed",
			"details": err.Error(),
		}}
	}
	if cert == nil {
		return Outcome{Status: http.StatusNotFound, Body: map[string]any{
			"stage":    "database_query",
			"error":    "NFT not found or not registered in our system",
			"verified": false,
		}}
	}

	var txIDs []string
	if len(cert.HCSTxIDs) > 0 {
		if err := json.Unmarshal(cert.HCSTxIDs, &txIDs); err != nil {
			s.log.Warn("certificate hcs_tx_ids is unreadable", "token_id", tokenID, "error", err)
		}
	}
	if len(txIDs) == 0 {
		return Outcome{Status: http.StatusNotFound, Body: map[string]any{
			"stage":    "database_query",
			"error":    "No HCS transaction IDs found for this token",
			"verified": false,
		}}
	}

	metadata, err := s.ledger.QueryCertificateMetadata(ctx, tokenID, serialNumber)
	if err != nil {
		s.log.Error("certificate metadata fetch failed", "token_id", tokenID, "serial_number", serialNumber, "error", err)
		return Outcome{Status: http.StatusBadGateway, Body: map[string]any{
			"stage":   "mirror_query",
			"error":   "Failed to fetch certificate metadata from mirror node",
			"details": err.Error(),
		}}
	}

	// Best effort: unresolved refs are dropped inside the gateway. The trail
	// is passed through in arrival order; chronological ordering is the
	// narrative step's job.
	messages := s.ledger.QueryEventTrail(ctx, txIDs)
	timeline := buildTimeline(txIDs, messages)

	summary := s.ai.SummarizeProvenance(ctx, timeline)
	if summary.Error != "" {
		s.log.Warn("narrative generation degraded, continuing", "token_id", tokenID, "error", summary.Error)
	}

	trace := types.VerificationTrace{
		TokenID:           tokenID,
		SerialNumber:      serialNumber,
		NFTMetadata:       metadata,
		HCSTransactionIDs: txIDs,
		HCSMessages:       messages,
		AI:                &summary,
		VerifiedAt:        time.Now().UTC().Format(time.RFC3339),
		Status:            "VERIFIED",
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"stage":   "exception",
			"error":   "Internal server error",
			"details": err.Error(),
		}}
	}
	if _, err := s.verifications.Upsert(ctx, nil, &types.VerificationRecord{
		TokenID:      tokenID,
		SerialNumber: serialNumber,
		Trace:        traceJSON,
	}); err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"stage":   "database_query",
			"error":   "Failed to cache verification result",
			"details": err.Error(),
		}}
	}

	s.log.Info("verification complete", "token_id", tokenID, "serial_number", serialNumber, "events", len(messages))
	return Outcome{Status: http.StatusOK, Body: traceBody(trace, false)}
}

// buildTimeline reinterprets resolved consensus messages as the chronological
// input the narrative generator expects, in arrival order. When nothing
// resolved, a synthetic timeline from the raw refs keeps the generator fed.
func buildTimeline(txIDs []string, messages []types.LedgerMessage) []types.TimelineEvent {
	if len(messages) == 0 {
		timeline := make([]types.TimelineEvent, 0, len(txIDs))
		now := time.Now().UTC().Format(time.RFC3339)
		for i, txID := range txIDs {
			timeline = append(timeline, types.TimelineEvent{
				Timestamp: now,
				Event:     fmt.Sprintf("Event %d", i+1),
				TxID:      txID,
				Location:  "Unknown",
				Operator:  "Unknown",
			})
		}
		return timeline
	}

	timeline := make([]types.TimelineEvent, 0, len(messages))
	for _, msg := range messages {
		ev := types.TimelineEvent{
			Timestamp: msg.ConsensusTimestamp,
			Event:     "Event",
			TxID:      msg.TransactionID,
		}
		if v, ok := msg.Payload["event"].(string); ok && v != "" {
			ev.Event = v
		} else if msg.Note != "" {
			ev.Event = msg.Note
		}
		if v, ok := msg.Payload["location"].(string); ok {
			ev.Location = v
		}
		if v, ok := msg.Payload["operator"].(string); ok {
			ev.Operator = v
		}
		timeline = append(timeline, ev)
	}
	return timeline
}

func traceBody(trace types.VerificationTrace, cached bool) map[string]any {
	return map[string]any{
		"success":           true,
		"cached":            cached,
		"tokenId":           trace.TokenID,
		"serialNumber":      trace.SerialNumber,
		"status":            trace.Status,
		"verifiedAt":        trace.VerifiedAt,
		"nftMetadata":       trace.NFTMetadata,
		"hcsTransactionIds": trace.HCSTransactionIDs,
		"hcsMessages":       trace.HCSMessages,
		"ai_summary":        trace.AI,
	}
}
