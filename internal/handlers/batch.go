package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/middleware"
	"github.com/agrodex/agrodex-backend/internal/services"
)

// BatchHandler covers the two protected producer flows: registering a batch
// on consensus and minting its certificate. Every response carries the
// request-scoped correlation id generated here.
type BatchHandler struct {
	log          *logger.Logger
	registration services.RegistrationService
	tokenization services.TokenizationService
}

func NewBatchHandler(
	baseLog *logger.Logger,
	registration services.RegistrationService,
	tokenization services.TokenizationService,
) *BatchHandler {
	return &BatchHandler{
		log:          baseLog.With("handler", "BatchHandler"),
		registration: registration,
		tokenization: tokenization,
	}
}

// Register handles POST /api/register-batch.
func (bh *BatchHandler) Register(c *gin.Context) {
	requestID := uuid.NewString()
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"id":    requestID,
			"stage": "validation",
			"error": "Invalid JSON body",
		})
		return
	}
	out := bh.registration.Register(c.Request.Context(), requestID, in)
	c.JSON(out.Status, out.Body)
}

// Tokenize handles POST /api/tokenize-batch. The operator account comes from
// the auth middleware, never from the body.
func (bh *BatchHandler) Tokenize(c *gin.Context) {
	requestID := uuid.NewString()
	var in services.TokenizeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"id":    requestID,
			"stage": "validation",
			"error": "Invalid JSON body",
		})
		return
	}
	in.Operator = c.GetString(middleware.ContextKeyAccount)
	out := bh.tokenization.Tokenize(c.Request.Context(), requestID, in)
	c.JSON(out.Status, out.Body)
}
