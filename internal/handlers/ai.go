package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/services"
	"github.com/agrodex/agrodex-backend/internal/types"
)

// AIHandler exposes the narrative generator directly. Field validation lives
// here; generator degradation is reported inside the data payload, so these
// endpoints only ever fail with 400.
type AIHandler struct {
	log        *logger.Logger
	narratives services.NarrativeService
}

func NewAIHandler(baseLog *logger.Logger, narratives services.NarrativeService) *AIHandler {
	return &AIHandler{
		log:        baseLog.With("handler", "AIHandler"),
		narratives: narratives,
	}
}

func aiBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

func aiOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}

// AnalyzeImage handles POST /api/ai/analyze-image. A batchId caches the
// result on the batch row when the analysis succeeds.
func (ah *AIHandler) AnalyzeImage(c *gin.Context) {
	var req struct {
		PhotoURL string `json:"photoUrl"`
		BatchID  string `json:"batchId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		aiBadRequest(c, "Invalid JSON body")
		return
	}
	if req.PhotoURL == "" {
		aiBadRequest(c, "photoUrl is required")
		return
	}
	aiOK(c, ah.narratives.AnalyzeImage(c.Request.Context(), req.PhotoURL, req.BatchID))
}

// SummarizeProvenance handles POST /api/ai/summarize-provenance. tokenId and
// serial together cache the summary into the verification trace.
func (ah *AIHandler) SummarizeProvenance(c *gin.Context) {
	var req struct {
		HCSTimeline *[]types.TimelineEvent `json:"hcsTimeline"`
		TokenID     string                 `json:"tokenId"`
		Serial      string                 `json:"serial"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		aiBadRequest(c, "Invalid JSON body")
		return
	}
	if req.HCSTimeline == nil {
		aiBadRequest(c, "hcsTimeline array is required")
		return
	}
	aiOK(c, ah.narratives.SummarizeProvenance(c.Request.Context(), *req.HCSTimeline, req.TokenID, req.Serial))
}

// BuyerQA handles POST /api/ai/buyer-qa.
func (ah *AIHandler) BuyerQA(c *gin.Context) {
	var req struct {
		Question    string                 `json:"question"`
		HCSTimeline *[]types.TimelineEvent `json:"hcsTimeline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		aiBadRequest(c, "Invalid JSON body")
		return
	}
	if req.Question == "" {
		aiBadRequest(c, "question is required")
		return
	}
	if req.HCSTimeline == nil {
		aiBadRequest(c, "hcsTimeline array is required")
		return
	}
	aiOK(c, ah.narratives.BuyerQA(c.Request.Context(), req.Question, *req.HCSTimeline))
}

// TranslateMarketing handles POST /api/ai/translate-marketing.
func (ah *AIHandler) TranslateMarketing(c *gin.Context) {
	var req struct {
		SummaryEN string `json:"summary_en"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		aiBadRequest(c, "Invalid JSON body")
		return
	}
	if req.SummaryEN == "" {
		aiBadRequest(c, "summary_en is required")
		return
	}
	aiOK(c, ah.narratives.TranslateMarketing(c.Request.Context(), req.SummaryEN))
}

// PriceSuggestion handles POST /api/ai/price-suggestion. Only commodity is
// required; the rest defaults.
func (ah *AIHandler) PriceSuggestion(c *gin.Context) {
	var req gemini.PriceSuggestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		aiBadRequest(c, "Invalid JSON body")
		return
	}
	if req.Commodity == "" {
		aiBadRequest(c, "commodity is required")
		return
	}
	if req.Region == "" {
		req.Region = "unknown"
	}
	if req.QualityTags == nil {
		req.QualityTags = []string{}
	}
	aiOK(c, ah.narratives.PriceSuggestion(c.Request.Context(), req))
}
