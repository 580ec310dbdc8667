package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/types"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		ProductType: "cocoa",
		Quantity:    "1200kg",
		Location:    "Abidjan",
		HarvestDate: "14-06-2025",
		PhotoURL:    "https://cdn.example/photos/lot42.jpg",
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc := NewRegistrationService(testLogger(t), newFakeBatchRepo(), newFakeGateway(), &fakeAI{})

	out := svc.Register(context.Background(), "req-1", RegisterInput{ProductType: "cocoa"})
	if out.Status != http.StatusBadRequest {
		t.Fatalf("status: want=%v got=%v", http.StatusBadRequest, out.Status)
	}
	if out.Body["stage"] != "validation" {
		t.Errorf("stage: want=validation got=%v", out.Body["stage"])
	}
	if out.Body["id"] != "req-1" {
		t.Errorf("correlation id must be echoed, got %v", out.Body["id"])
	}
}

func TestRegisterRejectsBadHarvestDate(t *testing.T) {
	svc := NewRegistrationService(testLogger(t), newFakeBatchRepo(), newFakeGateway(), &fakeAI{})

	in := validRegisterInput()
	in.HarvestDate = "06-14-2025" // looks like MM-DD-YYYY
	out := svc.Register(context.Background(), "req-2", in)
	if out.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=%v got=%v", http.StatusUnprocessableEntity, out.Status)
	}
	if out.Body["stage"] != "validation" {
		t.Errorf("stage: want=validation got=%v", out.Body["stage"])
	}
}

func TestRegisterNormalizesHarvestDate(t *testing.T) {
	batches := newFakeBatchRepo()
	svc := NewRegistrationService(testLogger(t), batches, newFakeGateway(), &fakeAI{analysis: types.ImageAnalysis{Caption: "ripe cocoa pods", Confidence: 0.9}})

	out := svc.Register(context.Background(), "req-3", validRegisterInput())
	if out.Status != http.StatusOK {
		t.Fatalf("status: want=%v got=%v body=%v", http.StatusOK, out.Status, out.Body)
	}
	if out.Body["success"] != true {
		t.Errorf("success: got %v", out.Body["success"])
	}
	if len(batches.inserted) != 1 {
		t.Fatalf("inserted batches: want=1 got=%d", len(batches.inserted))
	}
	b := batches.inserted[0]
	if b.HarvestDate != "2025-06-14" {
		t.Errorf("harvest_date: want=2025-06-14 got=%q", b.HarvestDate)
	}
	if b.BatchName != "cocoa - 2025-06-14" {
		t.Errorf("derived batch name: got %q", b.BatchName)
	}
	if b.HCSTxID == "" {
		t.Error("hcs_tx_id must be recorded")
	}
}

func TestRegisterLedgerTimeoutIs504(t *testing.T) {
	gw := newFakeGateway()
	gw.submitErr = fmt.Errorf("%w: dial tcp: timeout", hedera.ErrLedgerUnavailable)
	batches := newFakeBatchRepo()
	svc := NewRegistrationService(testLogger(t), batches, gw, &fakeAI{})

	out := svc.Register(context.Background(), "req-4", validRegisterInput())
	if out.Status != http.StatusGatewayTimeout {
		t.Fatalf("status: want=%v got=%v", http.StatusGatewayTimeout, out.Status)
	}
	if out.Body["stage"] != "hcs_submit" {
		t.Errorf("stage: want=hcs_submit got=%v", out.Body["stage"])
	}
	if out.Body["hint"] == "" {
		t.Error("ledger failure must carry a hint")
	}
	if len(batches.inserted) != 0 {
		t.Error("ledger failure must not commit a batch")
	}
}

func TestRegisterLedgerRejectionIs502WithHint(t *testing.T) {
	gw := newFakeGateway()
	gw.submitErr = &hedera.GatewayError{
		Op:   "submit event",
		Hint: "signature rejected: check that HEDERA_OPERATOR_KEY matches the operator account, and that HEDERA_SUBMIT_KEY is set when the topic requires one",
		Err:  fmt.Errorf("%w: INVALID_SIGNATURE", hedera.ErrLedgerRejected),
	}
	svc := NewRegistrationService(testLogger(t), newFakeBatchRepo(), gw, &fakeAI{})

	out := svc.Register(context.Background(), "req-5", validRegisterInput())
	if out.Status != http.StatusBadGateway {
		t.Fatalf("status: want=%v got=%v", http.StatusBadGateway, out.Status)
	}
	if hint, _ := out.Body["hint"].(string); hint == "" {
		t.Error("gateway hint must be surfaced")
	}
}

func TestRegisterDegradedAnalysisIsDropped(t *testing.T) {
	batches := newFakeBatchRepo()
	ai := &fakeAI{analysis: types.ImageAnalysis{Caption: "Image analysis unavailable", Error: "Timeout"}}
	svc := NewRegistrationService(testLogger(t), batches, newFakeGateway(), ai)

	out := svc.Register(context.Background(), "req-6", validRegisterInput())
	if out.Status != http.StatusOK {
		t.Fatalf("analysis failure must not fail registration: got %v", out.Status)
	}
	if out.Body["ai_analysis"] != (*types.ImageAnalysis)(nil) {
		t.Errorf("degraded analysis must not be attached, got %v", out.Body["ai_analysis"])
	}
	if len(batches.inserted[0].AIAnalysis) != 0 {
		t.Errorf("degraded analysis must not be persisted, got %s", batches.inserted[0].AIAnalysis)
	}
}
