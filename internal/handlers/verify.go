package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/services"
)

// VerifyHandler exposes the public verification endpoint in both shapes:
// POST with a JSON body and GET with path params.
type VerifyHandler struct {
	log           *logger.Logger
	verifications services.VerificationService
}

func NewVerifyHandler(baseLog *logger.Logger, verifications services.VerificationService) *VerifyHandler {
	return &VerifyHandler{
		log:           baseLog.With("handler", "VerifyHandler"),
		verifications: verifications,
	}
}

// Post handles POST /api/verify-batch. serialNumber is accepted as either a
// JSON string or a JSON number and normalized to a string key.
func (vh *VerifyHandler) Post(c *gin.Context) {
	var req struct {
		TokenID      string `json:"tokenId"`
		SerialNumber any    `json:"serialNumber"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"stage": "validation",
			"error": "Invalid JSON body",
		})
		return
	}
	out := vh.verifications.Verify(c.Request.Context(), req.TokenID, serialToString(req.SerialNumber))
	c.JSON(out.Status, out.Body)
}

// Get handles GET /api/verify-batch/:tokenId/:serialNumber.
func (vh *VerifyHandler) Get(c *gin.Context) {
	out := vh.verifications.Verify(c.Request.Context(), c.Param("tokenId"), c.Param("serialNumber"))
	c.JSON(out.Status, out.Body)
}

func serialToString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
