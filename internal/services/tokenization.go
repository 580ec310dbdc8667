package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// TokenizeInput carries the consensus transaction refs to certify. BatchID,
// when present, links the minted certificate back to a registered batch.
// Operator is the authenticated caller's account, used in the synthetic
// timeline handed to the narrative generator.
type TokenizeInput struct {
	HCSTransactionIDs []string `json:"hcsTransactionIds"`
	BatchID           string   `json:"batchId"`
	Operator          string   `json:"-"`
}

// TokenizationService mints a batch certificate: synthetic timeline, optional
// narrative, side-store of the full metadata, two-phase mint, then Batch +
// Certificate persistence and an eager verification cache write.
type TokenizationService interface {
	Tokenize(ctx context.Context, requestID string, in TokenizeInput) Outcome
}

type tokenizationService struct {
	log           *logger.Logger
	batches       repos.BatchRepo
	certificates  repos.CertificateRepo
	verifications repos.VerificationRepo
	blobs         repos.MetadataBlobRepo
	ledger        hedera.Gateway
	ai            gemini.Client
}

func NewTokenizationService(
	baseLog *logger.Logger,
	batches repos.BatchRepo,
	certificates repos.CertificateRepo,
	verifications repos.VerificationRepo,
	blobs repos.MetadataBlobRepo,
	ledger hedera.Gateway,
	ai gemini.Client,
) TokenizationService {
	return &tokenizationService{
		log:           baseLog.With("service", "TokenizationService"),
		batches:       batches,
		certificates:  certificates,
		verifications: verifications,
		blobs:         blobs,
		ledger:        ledger,
		ai:            ai,
	}
}

func (s *tokenizationService) Tokenize(ctx context.Context, requestID string, in TokenizeInput) Outcome {
	if len(in.HCSTransactionIDs) == 0 {
		return Outcome{Status: http.StatusBadRequest, Body: map[string]any{
			"id":    requestID,
			"stage": "validation",
			"error": "hcsTransactionIds must be a non-empty array",
		}}
	}
	s.log.Info("tokenizing batch", "request_id", requestID, "event_count", len(in.HCSTransactionIDs))

	// The real consensus timestamps live on the mirror node; at mint time a
	// synthetic timeline in submission order is enough for the generator.
	operator := in.Operator
	if operator == "" {
		operator = "Unknown"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	timeline := make([]types.TimelineEvent, 0, len(in.HCSTransactionIDs))
	for i, txID := range in.HCSTransactionIDs {
		timeline = append(timeline, types.TimelineEvent{
			Timestamp: now,
			Event:     fmt.Sprintf("Event %d", i+1),
			TxID:      txID,
			Location:  "Unknown",
			Operator:  operator,
		})
	}

	summary := s.ai.SummarizeProvenance(ctx, timeline)
	if summary.Error != "" {
		s.log.Warn("provenance summary degraded, continuing", "request_id", requestID, "error", summary.Error)
	}

	fullMetadata := map[string]any{
		"hcsTransactionIds": in.HCSTransactionIDs,
		"eventCount":        len(in.HCSTransactionIDs),
		"mintedAt":          now,
	}
	compact, digest, err := hedera.BuildCompactMetadata(fullMetadata, len(in.HCSTransactionIDs))
	if err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"id":      requestID,
			"stage":   "exception",
			"error":   "Failed to build certificate metadata",
			"details": err.Error(),
		}}
	}

	// The full metadata goes into the side store before the mint so the
	// on-ledger hash always resolves.
	payloadJSON, _ := json.Marshal(fullMetadata)
	if _, err := s.blobs.Put(ctx, nil, &types.MetadataBlob{Hash: digest, Payload: payloadJSON}); err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"id":      requestID,
			"stage":   "database_query",
			"error":   "Failed to store certificate metadata",
			"details": err.Error(),
			"hint":    storeHint(err),
		}}
	}

	mint, err := s.ledger.MintCertificate(ctx, compact)
	if err != nil {
		return ledgerFailure(requestID, "mint", err)
	}
	s.log.Info("certificate minted", "request_id", requestID, "token_id", mint.TokenID, "serial_number", mint.SerialNumber)

	txIDsJSON, _ := json.Marshal(in.HCSTransactionIDs)
	if _, err := s.certificates.Insert(ctx, nil, &types.Certificate{
		TokenID:      mint.TokenID,
		SerialNumber: mint.SerialNumber,
		HCSTxIDs:     txIDsJSON,
	}); err != nil {
		// The mint already happened; reporting failure here is honest even
		// though the certificate exists on-ledger without a local record.
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"id":      requestID,
			"stage":   "database_query",
			"error":   "Certificate minted but could not be recorded",
			"details": err.Error(),
			"hint":    storeHint(err),
			"tokenId": mint.TokenID,
		}}
	}

	s.linkBatch(ctx, requestID, in, mint, txIDsJSON)

	if summary.Error == "" {
		s.cacheVerification(ctx, requestID, mint, in.HCSTransactionIDs, &summary)
	}

	return Outcome{Status: http.StatusOK, Body: map[string]any{
		"id":                requestID,
		"success":           true,
		"tokenId":           mint.TokenID,
		"serialNumber":      mint.SerialNumber,
		"hcsTransactionIds": in.HCSTransactionIDs,
		"ai_summary":        summary,
		"message":           "Batch tokenized successfully as NFT",
	}}
}

// linkBatch attaches the certificate to an existing batch when a batch id was
// supplied, and otherwise records a minimal batch row so the mint is visible
// in batch listings. Failure is logged, not surfaced: the certificate and its
// ledger state are already durable.
func (s *tokenizationService) linkBatch(ctx context.Context, requestID string, in TokenizeInput, mint hedera.MintResult, txIDsJSON []byte) {
	if in.BatchID != "" {
		id, err := uuid.Parse(in.BatchID)
		if err != nil {
			s.log.Warn("batchId is not a uuid, skipping link", "request_id", requestID, "batch_id", in.BatchID)
			return
		}
		if err := s.batches.AttachCertificate(ctx, nil, id, mint.TokenID, mint.SerialNumber); err != nil {
			s.log.Warn("failed to attach certificate to batch", "request_id", requestID, "batch_id", in.BatchID, "error", err)
		}
		return
	}

	tokenized := time.Now().UTC()
	if _, err := s.batches.Insert(ctx, nil, &types.Batch{
		BatchName:          fmt.Sprintf("Tokenized batch %s/%s", mint.TokenID, mint.SerialNumber),
		HCSTransactionIDs:  txIDsJSON,
		HederaTokenID:      &mint.TokenID,
		HederaSerialNumber: &mint.SerialNumber,
		TokenizedAt:        &tokenized,
	}); err != nil {
		s.log.Warn("failed to record tokenized batch", "request_id", requestID, "error", err)
	}
}

// cacheVerification eagerly seeds the verification cache so the first public
// verify for a fresh certificate is a hit.
func (s *tokenizationService) cacheVerification(ctx context.Context, requestID string, mint hedera.MintResult, txIDs []string, summary *types.NarrativeSummary) {
	trace := types.VerificationTrace{
		TokenID:           mint.TokenID,
		SerialNumber:      mint.SerialNumber,
		HCSTransactionIDs: txIDs,
		AI:                summary,
		VerifiedAt:        time.Now().UTC().Format(time.RFC3339),
		Status:            "VERIFIED",
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		s.log.Warn("failed to marshal verification trace", "request_id", requestID, "error", err)
		return
	}
	if _, err := s.verifications.Upsert(ctx, nil, &types.VerificationRecord{
		TokenID:      mint.TokenID,
		SerialNumber: mint.SerialNumber,
		Trace:        traceJSON,
	}); err != nil {
		s.log.Warn("failed to seed verification cache", "request_id", requestID, "error", err)
	}
}
