package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/agrodex/agrodex-backend/internal/types"
)

func TestAnalyzeImageCachesOnBatch(t *testing.T) {
	batches := newFakeBatchRepo()
	existing, _ := batches.Insert(context.Background(), nil, &types.Batch{BatchName: "Lot 42"})
	ai := &fakeAI{analysis: types.ImageAnalysis{Caption: "ripe cocoa pods", Confidence: 0.9, LatencyMS: 200}}
	svc := NewNarrativeService(testLogger(t), batches, newFakeVerificationRepo(), ai)

	got := svc.AnalyzeImage(context.Background(), "https://cdn.example/photos/lot42.jpg", existing.ID.String())
	if got.Caption != "ripe cocoa pods" {
		t.Fatalf("caption: got %q", got.Caption)
	}
	cached, ok := batches.analyses[existing.ID]
	if !ok {
		t.Fatal("analysis must be cached on the batch")
	}
	var stored types.ImageAnalysis
	if err := json.Unmarshal(cached, &stored); err != nil {
		t.Fatalf("cached analysis unreadable: %v", err)
	}
	if stored.Confidence != 0.9 {
		t.Errorf("cached confidence: got %v", stored.Confidence)
	}
}

func TestAnalyzeImageDegradedSkipsCache(t *testing.T) {
	batches := newFakeBatchRepo()
	existing, _ := batches.Insert(context.Background(), nil, &types.Batch{})
	ai := &fakeAI{analysis: types.ImageAnalysis{Caption: "Image analysis unavailable", Error: "Timeout"}}
	svc := NewNarrativeService(testLogger(t), batches, newFakeVerificationRepo(), ai)

	svc.AnalyzeImage(context.Background(), "https://cdn.example/x.jpg", existing.ID.String())
	if len(batches.analyses) != 0 {
		t.Error("degraded analysis must not be cached")
	}
}

func TestSummarizeProvenanceRefreshesCachedTrace(t *testing.T) {
	vers := newFakeVerificationRepo()
	oldScore := 40
	seedVerification(vers, types.VerificationTrace{
		TokenID:           "0.0.7160982",
		SerialNumber:      "1",
		HCSTransactionIDs: []string{"a", "b"},
		NFTMetadata:       map[string]any{"tokenId": "0.0.7160982"},
		AI:                &types.NarrativeSummary{TrustScore: &oldScore},
		VerifiedAt:        "2025-06-14T10:00:00Z",
		Status:            "VERIFIED",
	})
	ai := &fakeAI{summary: trustedSummary(92)}
	svc := NewNarrativeService(testLogger(t), newFakeBatchRepo(), vers, ai)

	got := svc.SummarizeProvenance(context.Background(), []types.TimelineEvent{{Event: "x", TxID: "a"}}, "0.0.7160982", "1")
	if got.TrustScore == nil || *got.TrustScore != 92 {
		t.Fatalf("result trustScore: got %v", got.TrustScore)
	}

	rec := vers.records[recordKey("0.0.7160982", "1")]
	var trace types.VerificationTrace
	if err := json.Unmarshal(rec.Trace, &trace); err != nil {
		t.Fatalf("refreshed trace unreadable: %v", err)
	}
	if trace.AI == nil || *trace.AI.TrustScore != 92 {
		t.Errorf("trace narrative not refreshed: %+v", trace.AI)
	}
	// The rest of the trace survives the refresh.
	if len(trace.HCSTransactionIDs) != 2 || trace.NFTMetadata["tokenId"] != "0.0.7160982" {
		t.Errorf("trace fields lost on refresh: %+v", trace)
	}
	if trace.VerifiedAt != "2025-06-14T10:00:00Z" {
		t.Errorf("verifiedAt must survive the refresh, got %q", trace.VerifiedAt)
	}
}

func TestSummarizeProvenanceWithoutKeySkipsWriteBack(t *testing.T) {
	vers := newFakeVerificationRepo()
	ai := &fakeAI{summary: trustedSummary(92)}
	svc := NewNarrativeService(testLogger(t), newFakeBatchRepo(), vers, ai)

	svc.SummarizeProvenance(context.Background(), []types.TimelineEvent{{Event: "x"}}, "", "")
	if vers.upserts != 0 {
		t.Error("no write-back without a certificate key")
	}
}
