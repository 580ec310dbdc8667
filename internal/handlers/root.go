package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/config"
)

// Root serves the service descriptor at GET /.
func Root(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "AgroDex API",
			"version":     cfg.Version,
			"description": "Backend API for agricultural batch traceability using Hedera Hashgraph",
			"endpoints": gin.H{
				"healthPing":    "GET /api/health/ping",
				"healthDb":      "GET /api/health/db",
				"healthFull":    "GET /api/health/full",
				"registerBatch": "POST /api/register-batch",
				"tokenizeBatch": "POST /api/tokenize-batch",
				"verifyBatch":   "GET /api/verify-batch/:tokenId/:serialNumber",
				"ai": gin.H{
					"analyzeImage":        "POST /api/ai/analyze-image",
					"summarizeProvenance": "POST /api/ai/summarize-provenance",
					"buyerQA":             "POST /api/ai/buyer-qa",
					"translateMarketing":  "POST /api/ai/translate-marketing",
					"priceSuggestion":     "POST /api/ai/price-suggestion",
				},
			},
		})
	}
}
