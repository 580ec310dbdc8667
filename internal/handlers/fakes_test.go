package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/services"
	"github.com/agrodex/agrodex-backend/internal/types"
)

func testLogger(t interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type fakeVerificationService struct {
	tokenID string
	serial  string
	calls   int
	out     services.Outcome
}

func (f *fakeVerificationService) Verify(_ context.Context, tokenID, serialNumber string) services.Outcome {
	f.calls++
	f.tokenID = tokenID
	f.serial = serialNumber
	return f.out
}

type fakeRegistrationService struct {
	requestID string
	in        services.RegisterInput
	calls     int
	out       services.Outcome
}

func (f *fakeRegistrationService) Register(_ context.Context, requestID string, in services.RegisterInput) services.Outcome {
	f.calls++
	f.requestID = requestID
	f.in = in
	return f.out
}

type fakeTokenizationService struct {
	requestID string
	in        services.TokenizeInput
	calls     int
	out       services.Outcome
}

func (f *fakeTokenizationService) Tokenize(_ context.Context, requestID string, in services.TokenizeInput) services.Outcome {
	f.calls++
	f.requestID = requestID
	f.in = in
	return f.out
}

type fakeNarrativeService struct {
	photoURL  string
	batchID   string
	timeline  []types.TimelineEvent
	tokenID   string
	serial    string
	question  string
	summaryEN string
	priceIn   gemini.PriceSuggestionInput
	calls     int
}

func (f *fakeNarrativeService) AnalyzeImage(_ context.Context, photoURL, batchID string) types.ImageAnalysis {
	f.calls++
	f.photoURL = photoURL
	f.batchID = batchID
	return types.ImageAnalysis{Caption: "Fresh cocoa beans", Confidence: 0.9, LatencyMS: 12}
}

func (f *fakeNarrativeService) SummarizeProvenance(_ context.Context, timeline []types.TimelineEvent, tokenID, serialNumber string) types.NarrativeSummary {
	f.calls++
	f.timeline = timeline
	f.tokenID = tokenID
	f.serial = serialNumber
	score := 82
	return types.NarrativeSummary{SummaryEN: "Well documented lot", TrustScore: &score, LatencyMS: 20}
}

func (f *fakeNarrativeService) BuyerQA(_ context.Context, question string, timeline []types.TimelineEvent) gemini.BuyerQAResult {
	f.calls++
	f.question = question
	f.timeline = timeline
	return gemini.BuyerQAResult{Answer: "Harvested in June", LatencyMS: 15}
}

func (f *fakeNarrativeService) TranslateMarketing(_ context.Context, summaryEN string) gemini.TranslateMarketingResult {
	f.calls++
	f.summaryEN = summaryEN
	return gemini.TranslateMarketingResult{SummaryFR: "Lot bien documenté", LatencyMS: 15}
}

func (f *fakeNarrativeService) PriceSuggestion(_ context.Context, in gemini.PriceSuggestionInput) gemini.PriceSuggestionResult {
	f.calls++
	f.priceIn = in
	return gemini.PriceSuggestionResult{UpliftPct: 12, Rationale: "Traceable premium lot", LatencyMS: 15}
}

func okOutcome(body map[string]any) services.Outcome {
	return services.Outcome{Status: http.StatusOK, Body: body}
}
