package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// NarrativeService fronts the generator for the direct AI endpoints and
// handles the optional write-back caching. Generator degradation is reported
// in the result, never as an error; only validation is left to handlers.
type NarrativeService interface {
	AnalyzeImage(ctx context.Context, photoURL string, batchID string) types.ImageAnalysis
	SummarizeProvenance(ctx context.Context, timeline []types.TimelineEvent, tokenID, serialNumber string) types.NarrativeSummary
	BuyerQA(ctx context.Context, question string, timeline []types.TimelineEvent) gemini.BuyerQAResult
	TranslateMarketing(ctx context.Context, summaryEN string) gemini.TranslateMarketingResult
	PriceSuggestion(ctx context.Context, in gemini.PriceSuggestionInput) gemini.PriceSuggestionResult
}

type narrativeService struct {
	log           *logger.Logger
	batches       repos.BatchRepo
	verifications repos.VerificationRepo
	ai            gemini.Client
}

func NewNarrativeService(
	baseLog *logger.Logger,
	batches repos.BatchRepo,
	verifications repos.VerificationRepo,
	ai gemini.Client,
) NarrativeService {
	return &narrativeService{
		log:           baseLog.With("service", "NarrativeService"),
		batches:       batches,
		verifications: verifications,
		ai:            ai,
	}
}

// AnalyzeImage runs the analysis and, when a batch id is supplied and the
// result is usable, caches it on the batch row.
func (s *narrativeService) AnalyzeImage(ctx context.Context, photoURL string, batchID string) types.ImageAnalysis {
	result := s.ai.AnalyzeImage(ctx, photoURL)
	s.log.Info("image analysis completed", "ms", result.LatencyMS, "degraded", result.Error != "")

	if batchID == "" || result.Error != "" {
		return result
	}
	id, err := uuid.Parse(batchID)
	if err != nil {
		s.log.Warn("batchId is not a uuid, skipping cache", "batch_id", batchID)
		return result
	}
	analysisJSON, err := json.Marshal(result)
	if err == nil {
		err = s.batches.SetAIAnalysis(ctx, nil, id, analysisJSON)
	}
	if err != nil {
		s.log.Error("failed to cache image analysis", "batch_id", batchID, "error", err)
	}
	return result
}

// SummarizeProvenance regenerates a provenance summary and, when a
// certificate key is supplied and the result is usable, writes it into the
// cached verification trace. This is the manual escape hatch for refreshing
// stale AI commentary, since verification itself never re-generates a cached
// narrative.
func (s *narrativeService) SummarizeProvenance(ctx context.Context, timeline []types.TimelineEvent, tokenID, serialNumber string) types.NarrativeSummary {
	result := s.ai.SummarizeProvenance(ctx, timeline)
	s.log.Info("provenance summary completed", "ms", result.LatencyMS, "trust_score", result.TrustScore, "degraded", result.Error != "")

	if tokenID == "" || serialNumber == "" || result.Error != "" {
		return result
	}

	trace := types.VerificationTrace{
		TokenID:      tokenID,
		SerialNumber: serialNumber,
		Status:       "VERIFIED",
		VerifiedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	existing, err := s.verifications.GetByKey(ctx, nil, tokenID, serialNumber)
	if err != nil {
		s.log.Error("failed to read verification for cache refresh", "token_id", tokenID, "error", err)
		return result
	}
	if existing != nil {
		if err := json.Unmarshal(existing.Trace, &trace); err != nil {
			s.log.Warn("existing trace is unreadable, rebuilding", "token_id", tokenID, "error", err)
		}
	}
	trace.AI = &result

	traceJSON, err := json.Marshal(trace)
	if err == nil {
		_, err = s.verifications.Upsert(ctx, nil, &types.VerificationRecord{
			TokenID:      tokenID,
			SerialNumber: serialNumber,
			Trace:        traceJSON,
		})
	}
	if err != nil {
		s.log.Error("failed to cache provenance summary", "token_id", tokenID, "error", err)
	}
	return result
}

func (s *narrativeService) BuyerQA(ctx context.Context, question string, timeline []types.TimelineEvent) gemini.BuyerQAResult {
	result := s.ai.BuyerQA(ctx, question, timeline)
	s.log.Info("buyer qa completed", "ms", result.LatencyMS, "degraded", result.Error != "")
	return result
}

func (s *narrativeService) TranslateMarketing(ctx context.Context, summaryEN string) gemini.TranslateMarketingResult {
	result := s.ai.TranslateMarketing(ctx, summaryEN)
	s.log.Info("marketing translation completed", "ms", result.LatencyMS, "degraded", result.Error != "")
	return result
}

func (s *narrativeService) PriceSuggestion(ctx context.Context, in gemini.PriceSuggestionInput) gemini.PriceSuggestionResult {
	result := s.ai.PriceSuggestion(ctx, in)
	s.log.Info("price suggestion completed", "ms", result.LatencyMS, "uplift_pct", result.UpliftPct, "degraded", result.Error != "")
	return result
}
