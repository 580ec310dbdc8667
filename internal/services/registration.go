package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
	"github.com/agrodex/agrodex-backend/internal/types"
	"github.com/agrodex/agrodex-backend/internal/utils"
)

// RegisterInput is the batch metadata a producer submits. BatchName is
// optional: when empty it is derived from the product type and harvest date.
type RegisterInput struct {
	BatchName   string `json:"batchName"`
	ProductType string `json:"productType"`
	Quantity    string `json:"quantity"`
	Location    string `json:"location"`
	HarvestDate string `json:"harvestDate"`
	PhotoURL    string `json:"photoUrl"`
}

// RegistrationService records a new batch: optional image analysis, then a
// consensus event, then the store. A ledger failure aborts the attempt with
// nothing committed; an analysis failure is ignored.
type RegistrationService interface {
	Register(ctx context.Context, requestID string, in RegisterInput) Outcome
}

type registrationService struct {
	log     *logger.Logger
	batches repos.BatchRepo
	ledger  hedera.Gateway
	ai      gemini.Client
}

func NewRegistrationService(
	baseLog *logger.Logger,
	batches repos.BatchRepo,
	ledger hedera.Gateway,
	ai gemini.Client,
) RegistrationService {
	return &registrationService{
		log:     baseLog.With("service", "RegistrationService"),
		batches: batches,
		ledger:  ledger,
		ai:      ai,
	}
}

func (s *registrationService) Register(ctx context.Context, requestID string, in RegisterInput) Outcome {
	missing := []string{}
	if in.ProductType == "" {
		missing = append(missing, "productType")
	}
	if in.Quantity == "" {
		missing = append(missing, "quantity")
	}
	if in.Location == "" {
		missing = append(missing, "location")
	}
	if in.HarvestDate == "" {
		missing = append(missing, "harvestDate")
	}
	if len(missing) > 0 {
		return Outcome{Status: http.StatusBadRequest, Body: map[string]any{
			"id":    requestID,
			"stage": "validation",
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		}}
	}

	harvestDate, err := utils.NormalizeDate(in.HarvestDate)
	if err != nil {
		return Outcome{Status: http.StatusUnprocessableEntity, Body: map[string]any{
			"id":      requestID,
			"stage":   "validation",
			"error":   "Invalid harvest date",
			"details": err.Error(),
			"message": "Harvest date must be in DD-MM-YYYY or YYYY-MM-DD format",
		}}
	}

	batchName := in.BatchName
	if batchName == "" {
		batchName = fmt.Sprintf("%s - %s", in.ProductType, harvestDate)
	}
	s.log.Info("registering batch", "request_id", requestID, "product_type", in.ProductType, "harvest_date", harvestDate)

	// Image analysis is enrichment: a degraded result is dropped, never fatal.
	var analysis *types.ImageAnalysis
	if in.PhotoURL != "" {
		result := s.ai.AnalyzeImage(ctx, in.PhotoURL)
		if result.Error == "" {
			analysis = &result
		} else {
			s.log.Warn("image analysis failed, continuing without it", "request_id", requestID, "error", result.Error)
		}
	}

	payload := map[string]any{
		"event":       "REGISTER_BATCH",
		"batchName":   batchName,
		"productType": in.ProductType,
		"quantity":    in.Quantity,
		"harvestDate": harvestDate,
		"location":    in.Location,
		"photoUrl":    in.PhotoURL,
		"aiAnalysis":  analysis,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	submit, err := s.ledger.SubmitEvent(ctx, payload)
	if err != nil {
		return ledgerFailure(requestID, "hcs_submit", err)
	}

	var analysisJSON []byte
	if analysis != nil {
		analysisJSON, _ = json.Marshal(analysis)
	}
	txIDsJSON, _ := json.Marshal([]string{submit.TransactionID})

	batch, err := s.batches.Insert(ctx, nil, &types.Batch{
		BatchName:         batchName,
		ProductType:       in.ProductType,
		Quantity:          in.Quantity,
		HarvestDate:       harvestDate,
		Location:          in.Location,
		PhotoURL:          in.PhotoURL,
		HCSTxID:           submit.TransactionID,
		HCSTransactionIDs: txIDsJSON,
		AIAnalysis:        analysisJSON,
	})
	if err != nil {
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"id":      requestID,
			"stage":   "database_query",
			"error":   "Database insert failed",
			"details": err.Error(),
			"hint":    storeHint(err),
		}}
	}

	s.log.Info("batch registered", "request_id", requestID, "batch_id", batch.ID, "tx_id", submit.TransactionID)
	return Outcome{Status: http.StatusOK, Body: map[string]any{
		"id":               requestID,
		"success":          true,
		"hcsTransactionId": submit.TransactionID,
		"batchId":          batch.ID,
		"ai_analysis":      analysis,
		"message":          "Batch registered successfully on Hedera HCS",
	}}
}

// ledgerFailure maps a gateway error to a 502/504 body with the remediation
// hint the gateway attached.
func ledgerFailure(requestID, stage string, err error) Outcome {
	status := http.StatusBadGateway
	msg := "Failed to submit to Hedera network"
	hint := hedera.HintOf(err)
	if errors.Is(err, hedera.ErrLedgerUnavailable) {
		status = http.StatusGatewayTimeout
		msg = "Hedera network timeout"
		if hint == "" {
			hint = "Hedera network is slow or unreachable. Please retry."
		}
	} else if hint == "" {
		hint = "Check Hedera credentials (HEDERA_OPERATOR_ID, HEDERA_OPERATOR_KEY, HEDERA_TOPIC_ID) and network connectivity"
	}
	return Outcome{Status: status, Body: map[string]any{
		"id":      requestID,
		"stage":   stage,
		"error":   msg,
		"details": err.Error(),
		"hint":    hint,
	}}
}

// storeHint classifies persistence failures into actionable messages.
func storeHint(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "does not exist") || strings.Contains(msg, "42P01"):
		return "Missing database table. Run the schema migration SQL first."
	case strings.Contains(msg, "permission denied") || strings.Contains(msg, "42501"):
		return "Insufficient database permissions. Check the configured role."
	case strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505"):
		return "A record with this key already exists."
	default:
		return "Check POSTGRES_* settings and database connectivity."
	}
}
