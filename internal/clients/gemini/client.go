package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/agrodex/agrodex-backend/internal/config"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client is the narrative generator. Every method is total: it always returns
// a structurally valid result with LatencyMS set, and reports failure through
// the result's Error field instead of an error return. Callers never have to
// guard the happy path against AI flakiness.
type Client interface {
	AnalyzeImage(ctx context.Context, photoURL string) types.ImageAnalysis
	SummarizeProvenance(ctx context.Context, timeline []types.TimelineEvent) types.NarrativeSummary
	BuyerQA(ctx context.Context, question string, timeline []types.TimelineEvent) BuyerQAResult
	TranslateMarketing(ctx context.Context, summaryEN string) TranslateMarketingResult
	PriceSuggestion(ctx context.Context, in PriceSuggestionInput) PriceSuggestionResult
	DashboardInsight(ctx context.Context, stats map[string]any) DashboardInsightResult
	HealthCheck(ctx context.Context) HealthResult
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	backoff    time.Duration
	httpClient *http.Client
}

// NewClient builds the generator from configuration. A missing API key is not
// fatal: the client still constructs and every call reports
// "API key not configured" through its fallback path.
func NewClient(log *logger.Logger, cfg config.Config) Client {
	log = log.With("client", "GeminiClient")
	if cfg.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, AI features will return fallback responses")
	} else {
		log.Info("narrative generator initialized", "model", cfg.GeminiModel)
	}
	return &client{
		log:     log,
		baseURL: defaultBaseURL,
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		timeout: cfg.GeminiTimeout,
		backoff: 300 * time.Millisecond,
		// Timeout is enforced per attempt through the request context.
		httpClient: &http.Client{},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

const timeoutError = "Timeout"

// generate calls the model once, retrying a single time on non-timeout
// failures after a short backoff. It returns the raw model text, the total
// latency, and "" or a failure reason.
func (c *client) generate(ctx context.Context, prompt string) (string, int64, string) {
	start := time.Now()
	if c.apiKey == "" {
		return "", time.Since(start).Milliseconds(), "API key not configured"
	}

	const retries = 1
	for attempt := 0; attempt <= retries; attempt++ {
		text, err := c.callOnce(ctx, prompt)
		if err == nil {
			return text, time.Since(start).Milliseconds(), ""
		}

		errMsg := err.Error()
		if isTimeout(err) {
			errMsg = timeoutError
		}
		if attempt < retries && errMsg != timeoutError {
			c.log.Warn("model call failed, retrying once", "attempt", attempt+1, "error", errMsg)
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return "", time.Since(start).Milliseconds(), timeoutError
			}
			continue
		}
		return "", time.Since(start).Milliseconds(), errMsg
	}
	return "", time.Since(start).Milliseconds(), "unreachable"
}

func (c *client) callOnce(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.3,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 2048,
		},
	})
	if err != nil {
		return "", err
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty response from model")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *client) AnalyzeImage(ctx context.Context, photoURL string) types.ImageAnalysis {
	result := types.ImageAnalysis{
		Caption:   "Image analysis unavailable",
		Anomalies: []string{},
		Tags:      []string{},
	}
	if photoURL == "" {
		result.Error = "No photo URL provided"
		return result
	}

	text, ms, errMsg := c.generate(ctx, renderAnalyzeImage(photoURL))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	if errMsg != "" {
		result.Error = errMsg
		return result
	}
	result.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return result
}

func (c *client) SummarizeProvenance(ctx context.Context, timeline []types.TimelineEvent) types.NarrativeSummary {
	result := types.NarrativeSummary{
		SummaryEN:        "Provenance summary unavailable",
		SummaryFR:        "Résumé de provenance indisponible",
		Timeline:         []types.TimelineEvent{},
		TrustExplanation: "Unable to calculate trust score",
	}
	if len(timeline) == 0 {
		result.Error = "No timeline data provided"
		return result
	}

	text, ms, errMsg := c.generate(ctx, renderSummarizeProvenance(timeline))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	if errMsg != "" {
		result.Error = errMsg
		return result
	}
	result.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	return result
}

func (c *client) BuyerQA(ctx context.Context, question string, timeline []types.TimelineEvent) BuyerQAResult {
	result := BuyerQAResult{
		Answer:        "Unable to answer question at this time",
		EvidenceTxIDs: []string{},
	}
	if question == "" || len(timeline) == 0 {
		result.Error = "Missing question or timeline data"
		return result
	}

	text, ms, errMsg := c.generate(ctx, renderBuyerQA(question, timeline))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	result.Error = errMsg
	return result
}

func (c *client) TranslateMarketing(ctx context.Context, summaryEN string) TranslateMarketingResult {
	result := TranslateMarketingResult{
		SummaryFR: "Traduction non disponible",
		BlurbEN:   "Premium traceable product",
		BlurbFR:   "Produit traçable premium",
	}
	if summaryEN == "" {
		result.Error = "No summary provided"
		return result
	}

	text, ms, errMsg := c.generate(ctx, renderTranslateMarketing(summaryEN))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	result.Error = errMsg
	return result
}

func (c *client) PriceSuggestion(ctx context.Context, in PriceSuggestionInput) PriceSuggestionResult {
	result := PriceSuggestionResult{
		Rationale: "Unable to calculate price suggestion",
	}

	text, ms, errMsg := c.generate(ctx, renderPriceSuggestion(in))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	result.Error = errMsg
	return result
}

func (c *client) DashboardInsight(ctx context.Context, stats map[string]any) DashboardInsightResult {
	fallback := DashboardInsightResult{
		InsightEN: "AI insight unavailable. Continue onboarding lots to unlock analytics.",
		InsightFR: "Analyse IA indisponible. Ajoutez de nouveaux lots pour alimenter l'analytique.",
	}
	result := fallback

	text, ms, errMsg := c.generate(ctx, renderDashboardInsight(stats))
	result.LatencyMS = ms
	if errMsg == "" {
		errMsg = decodeInto(text, &result)
	}
	if errMsg != "" {
		result = fallback
		result.LatencyMS = ms
		result.Error = errMsg
		return result
	}
	if result.InsightEN == "" {
		result.InsightEN = fallback.InsightEN
	}
	if result.InsightFR == "" {
		result.InsightFR = fallback.InsightFR
	}
	return result
}

func (c *client) HealthCheck(ctx context.Context) HealthResult {
	result := HealthResult{Model: c.model}
	if c.apiKey == "" {
		result.Error = "API key not configured"
		return result
	}

	text, ms, errMsg := c.generate(ctx, healthPrompt)
	result.LatencyMS = ms
	if errMsg != "" {
		result.Error = errMsg
		return result
	}

	var pong struct {
		Pong bool `json:"pong"`
	}
	if parseErr := decodeInto(text, &pong); parseErr != "" {
		result.Error = parseErr
		return result
	}
	result.OK = pong.Pong
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
