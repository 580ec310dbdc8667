package services

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// trustThreshold splits verified lots into approved and flagged.
const trustThreshold = 80

// DashboardService aggregates KPI counts, audit lists, and service health.
// Stats is all-or-nothing across its store queries; Health is all-settled
// so one failing probe cannot hide the others.
type DashboardService interface {
	Stats(ctx context.Context) Outcome
	Health(ctx context.Context) Outcome
}

type dashboardService struct {
	log           *logger.Logger
	batches       repos.BatchRepo
	certificates  repos.CertificateRepo
	verifications repos.VerificationRepo
	ledger        hedera.Gateway
	ai            gemini.Client
}

func NewDashboardService(
	baseLog *logger.Logger,
	batches repos.BatchRepo,
	certificates repos.CertificateRepo,
	verifications repos.VerificationRepo,
	ledger hedera.Gateway,
	ai gemini.Client,
) DashboardService {
	return &dashboardService{
		log:           baseLog.With("service", "DashboardService"),
		batches:       batches,
		certificates:  certificates,
		verifications: verifications,
		ledger:        ledger,
		ai:            ai,
	}
}

type auditLot struct {
	TokenID          string `json:"token_id"`
	SerialNumber     string `json:"serial_number"`
	Score            int    `json:"score"`
	TrustExplanation string `json:"trustExplanation,omitempty"`
	Rationale        string `json:"rationale,omitempty"`
	VerifiedAt       string `json:"verified_at"`
}

func (s *dashboardService) Stats(ctx context.Context) Outcome {
	var (
		totalBatches, totalNfts, totalVerifications, aiVerified int64
		approvedRecs, flaggedRecs                               []*types.VerificationRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totalBatches, err = s.batches.Count(gctx); return })
	g.Go(func() (err error) { totalNfts, err = s.certificates.Count(gctx); return })
	g.Go(func() (err error) { totalVerifications, err = s.verifications.Count(gctx); return })
	g.Go(func() (err error) { aiVerified, err = s.verifications.CountTrusted(gctx, trustThreshold); return })
	g.Go(func() (err error) {
		approvedRecs, err = s.verifications.ListByTrust(gctx, trustThreshold, true, 5)
		return
	})
	g.Go(func() (err error) {
		flaggedRecs, err = s.verifications.ListByTrust(gctx, trustThreshold, false, 5)
		return
	})
	if err := g.Wait(); err != nil {
		s.log.Error("dashboard stats query failed", "error", err)
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"ok":      false,
			"error":   "Failed to fetch dashboard statistics",
			"details": err.Error(),
		}}
	}

	approvedLots := make([]auditLot, 0, len(approvedRecs))
	for _, rec := range approvedRecs {
		lot := lotFromRecord(rec)
		approvedLots = append(approvedLots, lot)
	}
	flaggedLots := make([]auditLot, 0, len(flaggedRecs))
	for _, rec := range flaggedRecs {
		lot := lotFromRecord(rec)
		lot.Rationale = lot.TrustExplanation
		if lot.Rationale == "" {
			lot.Rationale = "Manual review recommended"
		}
		lot.TrustExplanation = ""
		flaggedLots = append(flaggedLots, lot)
	}

	flaggedRatio := 0.0
	if totalVerifications > 0 {
		flaggedRatio = math.Round(float64(len(flaggedLots))/float64(totalVerifications)*100) / 100
	}
	generatedAt := time.Now().UTC().Format(time.RFC3339)

	statsForAI := map[string]any{
		"totalBatches":       totalBatches,
		"totalNfts":          totalNfts,
		"totalVerifications": totalVerifications,
		"aiVerified":         aiVerified,
		"approvedLots":       lotKeys(approvedLots),
		"flaggedLots":        lotKeys(flaggedLots),
		"flaggedRatio":       flaggedRatio,
		"generatedAt":        generatedAt,
	}
	insight := s.ai.DashboardInsight(ctx, statsForAI)

	var insightErr any
	if insight.Error != "" {
		insightErr = insight.Error
	}
	return Outcome{Status: http.StatusOK, Body: map[string]any{
		"ok":          true,
		"generatedAt": generatedAt,
		"kpis": map[string]any{
			"totalBatches":       totalBatches,
			"totalNfts":          totalNfts,
			"totalVerifications": totalVerifications,
			"aiVerified":         aiVerified,
		},
		"audit": map[string]any{
			"approvedLots": approvedLots,
			"flaggedLots":  flaggedLots,
		},
		"aiInsight": map[string]any{
			"insight_en": insight.InsightEN,
			"insight_fr": insight.InsightFR,
			"ms":         insight.LatencyMS,
			"error":      insightErr,
		},
	}}
}

type probeStatus struct {
	OK    bool   `json:"ok"`
	MS    int64  `json:"ms"`
	Model string `json:"model,omitempty"`
	Error string `json:"error,omitempty"`
}

// Health probes the store, the mirror node topic, and the model concurrently
// with all-settled semantics: every probe reports, regardless of the others.
func (s *dashboardService) Health(ctx context.Context) Outcome {
	var database, ledger, ai probeStatus

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		start := time.Now()
		_, err := s.verifications.Count(ctx)
		database.MS = time.Since(start).Milliseconds()
		if err != nil {
			database.Error = err.Error()
			return
		}
		database.OK = true
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		err := s.ledger.PingTopic(ctx)
		ledger.MS = time.Since(start).Milliseconds()
		if err != nil {
			ledger.Error = err.Error()
			return
		}
		ledger.OK = true
	}()
	go func() {
		defer wg.Done()
		result := s.ai.HealthCheck(ctx)
		ai = probeStatus{OK: result.OK, MS: result.LatencyMS, Model: result.Model, Error: result.Error}
	}()
	wg.Wait()

	ok := database.OK && ledger.OK && ai.OK
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	return Outcome{Status: status, Body: map[string]any{
		"ok": ok,
		"status": map[string]any{
			"database": database,
			"hedera":   ledger,
			"gemini":   ai,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}}
}

func lotFromRecord(rec *types.VerificationRecord) auditLot {
	lot := auditLot{
		TokenID:      rec.TokenID,
		SerialNumber: rec.SerialNumber,
		VerifiedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	var trace types.VerificationTrace
	if err := json.Unmarshal(rec.Trace, &trace); err == nil && trace.AI != nil {
		if trace.AI.TrustScore != nil {
			lot.Score = *trace.AI.TrustScore
		}
		lot.TrustExplanation = trace.AI.TrustExplanation
	}
	return lot
}

func lotKeys(lots []auditLot) []map[string]any {
	keys := make([]map[string]any, 0, len(lots))
	for _, lot := range lots {
		keys = append(keys, map[string]any{
			"token_id":      lot.TokenID,
			"serial_number": lot.SerialNumber,
			"score":         lot.Score,
		})
	}
	return keys
}
