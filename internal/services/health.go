package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/repos"
)

// HealthService backs the diagnostic endpoints. DB isolates store
// connectivity with actionable hints; Full probes every dependency and
// reports per-check detail.
type HealthService interface {
	DB(ctx context.Context) Outcome
	Full(ctx context.Context) Outcome
}

type healthService struct {
	log     *logger.Logger
	batches repos.BatchRepo
	ledger  hedera.Gateway
	ai      gemini.Client
}

func NewHealthService(
	baseLog *logger.Logger,
	batches repos.BatchRepo,
	ledger hedera.Gateway,
	ai gemini.Client,
) HealthService {
	return &healthService{
		log:     baseLog.With("service", "HealthService"),
		batches: batches,
		ledger:  ledger,
		ai:      ai,
	}
}

func (s *healthService) DB(ctx context.Context) Outcome {
	if _, err := s.batches.Count(ctx); err != nil {
		s.log.Error("database probe failed", "error", err)
		return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{
			"ok":    false,
			"error": err.Error(),
			"hint":  storeHint(err),
		}}
	}
	return Outcome{Status: http.StatusOK, Body: map[string]any{"ok": true}}
}

func (s *healthService) Full(ctx context.Context) Outcome {
	checks := map[string]any{}

	if _, err := s.batches.Count(ctx); err != nil {
		checks["database_error"] = err.Error()
	} else {
		checks["database"] = true
	}

	if err := s.ledger.PingTopic(ctx); err != nil {
		checks["hedera_error"] = err.Error()
	} else {
		checks["hedera_topic"] = true
	}

	// A degraded model is reported but does not flip overall health: the
	// service stays usable without narrative enrichment.
	checks["gemini"] = s.ai.HealthCheck(ctx)

	ok := true
	for key := range checks {
		if strings.HasSuffix(key, "_error") {
			ok = false
		}
	}
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	return Outcome{Status: status, Body: map[string]any{"ok": ok, "checks": checks}}
}
