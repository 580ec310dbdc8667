package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agrodex/agrodex-backend/internal/clients/gemini"
	"github.com/agrodex/agrodex-backend/internal/clients/hedera"
	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

func testLogger(t interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}
	return log
}

func recordKey(tokenID, serialNumber string) string {
	return tokenID + "/" + serialNumber
}

type fakeVerificationRepo struct {
	records   map[string]*types.VerificationRecord
	getErr    error
	upsertErr error
	countErr  error
	upserts   int
	trusted   int64
	approved  []*types.VerificationRecord
	flagged   []*types.VerificationRecord
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{records: map[string]*types.VerificationRecord{}}
}

func (f *fakeVerificationRepo) Upsert(ctx context.Context, tx *gorm.DB, rec *types.VerificationRecord) (*types.VerificationRecord, error) {
	f.upserts++
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	f.records[recordKey(rec.TokenID, rec.SerialNumber)] = rec
	return rec, nil
}

func (f *fakeVerificationRepo) GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.VerificationRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.records[recordKey(tokenID, serialNumber)], nil
}

func (f *fakeVerificationRepo) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.records)), nil
}

func (f *fakeVerificationRepo) CountTrusted(ctx context.Context, minScore int) (int64, error) {
	return f.trusted, f.countErr
}

func (f *fakeVerificationRepo) ListByTrust(ctx context.Context, minScore int, atLeast bool, limit int) ([]*types.VerificationRecord, error) {
	if f.countErr != nil {
		return nil, f.countErr
	}
	if atLeast {
		return f.approved, nil
	}
	return f.flagged, nil
}

type fakeCertificateRepo struct {
	certs     map[string]*types.Certificate
	getErr    error
	insertErr error
	inserted  []*types.Certificate
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{certs: map[string]*types.Certificate{}}
}

func (f *fakeCertificateRepo) Insert(ctx context.Context, tx *gorm.DB, cert *types.Certificate) (*types.Certificate, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	cert.ID = uuid.New()
	f.certs[recordKey(cert.TokenID, cert.SerialNumber)] = cert
	f.inserted = append(f.inserted, cert)
	return cert, nil
}

func (f *fakeCertificateRepo) GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.Certificate, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.certs[recordKey(tokenID, serialNumber)], nil
}

func (f *fakeCertificateRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.certs)), nil
}

type fakeBatchRepo struct {
	insertErr error
	inserted  []*types.Batch
	attached  map[uuid.UUID]string
	analyses  map[uuid.UUID]datatypes.JSON
	countErr  error
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{attached: map[uuid.UUID]string{}, analyses: map[uuid.UUID]datatypes.JSON{}}
}

func (f *fakeBatchRepo) Insert(ctx context.Context, tx *gorm.DB, batch *types.Batch) (*types.Batch, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	batch.ID = uuid.New()
	f.inserted = append(f.inserted, batch)
	return batch, nil
}

func (f *fakeBatchRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Batch, error) {
	for _, b := range f.inserted {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) AttachCertificate(ctx context.Context, tx *gorm.DB, id uuid.UUID, tokenID, serialNumber string) error {
	f.attached[id] = recordKey(tokenID, serialNumber)
	return nil
}

func (f *fakeBatchRepo) SetAIAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis datatypes.JSON) error {
	f.analyses[id] = analysis
	return nil
}

func (f *fakeBatchRepo) Count(ctx context.Context) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.inserted)), nil
}

type fakeBlobRepo struct {
	putErr error
	blobs  map[string]*types.MetadataBlob
}

func newFakeBlobRepo() *fakeBlobRepo {
	return &fakeBlobRepo{blobs: map[string]*types.MetadataBlob{}}
}

func (f *fakeBlobRepo) Put(ctx context.Context, tx *gorm.DB, blob *types.MetadataBlob) (*types.MetadataBlob, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.blobs[blob.Hash] = blob
	return blob, nil
}

func (f *fakeBlobRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.MetadataBlob, error) {
	return f.blobs[hash], nil
}

type fakeGateway struct {
	submitResult  hedera.SubmitResult
	submitErr     error
	submits       int
	mintResult    hedera.MintResult
	mintErr       error
	mints         int
	mintMetadata  [][]byte
	metadata      map[string]any
	metadataErr   error
	metadataCalls int
	trail         []types.LedgerMessage
	trailCalls    int
	pingErr       error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		submitResult: hedera.SubmitResult{TransactionID: "0.0.7@100.000000001", TopicID: "0.0.9001", Status: "SUCCESS"},
		mintResult:   hedera.MintResult{TokenID: "0.0.7160982", SerialNumber: "1"},
		metadata:     map[string]any{"tokenId": "0.0.7160982", "serialNumber": float64(1)},
	}
}

func (f *fakeGateway) SubmitEvent(ctx context.Context, payload map[string]any) (hedera.SubmitResult, error) {
	f.submits++
	if f.submitErr != nil {
		return hedera.SubmitResult{}, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeGateway) MintCertificate(ctx context.Context, metadata []byte) (hedera.MintResult, error) {
	f.mints++
	f.mintMetadata = append(f.mintMetadata, metadata)
	if f.mintErr != nil {
		return hedera.MintResult{}, f.mintErr
	}
	return f.mintResult, nil
}

func (f *fakeGateway) QueryCertificateMetadata(ctx context.Context, tokenID, serialNumber string) (map[string]any, error) {
	f.metadataCalls++
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	return f.metadata, nil
}

func (f *fakeGateway) QueryEventTrail(ctx context.Context, txIDs []string) []types.LedgerMessage {
	f.trailCalls++
	return f.trail
}

func (f *fakeGateway) PingTopic(ctx context.Context) error { return f.pingErr }

func (f *fakeGateway) Close() error { return nil }

type fakeAI struct {
	summary       types.NarrativeSummary
	summaryCalls  int
	analysis      types.ImageAnalysis
	analysisCalls int
	qa            gemini.BuyerQAResult
	translation   gemini.TranslateMarketingResult
	price         gemini.PriceSuggestionResult
	insight       gemini.DashboardInsightResult
	health        gemini.HealthResult
	lastTimeline  []types.TimelineEvent
}

func trustedSummary(score int) types.NarrativeSummary {
	return types.NarrativeSummary{
		SummaryEN:        "All events accounted for.",
		SummaryFR:        "Tous les événements sont documentés.",
		Timeline:         []types.TimelineEvent{},
		TrustScore:       &score,
		TrustExplanation: "Complete trail.",
		GeneratedAt:      "2025-06-14T10:00:00Z",
		LatencyMS:        120,
	}
}

func degradedSummary(reason string) types.NarrativeSummary {
	return types.NarrativeSummary{
		SummaryEN:        "Provenance summary unavailable",
		SummaryFR:        "Résumé de provenance indisponible",
		Timeline:         []types.TimelineEvent{},
		TrustExplanation: "Unable to calculate trust score",
		LatencyMS:        6001,
		Error:            reason,
	}
}

func (f *fakeAI) AnalyzeImage(ctx context.Context, photoURL string) types.ImageAnalysis {
	f.analysisCalls++
	return f.analysis
}

func (f *fakeAI) SummarizeProvenance(ctx context.Context, timeline []types.TimelineEvent) types.NarrativeSummary {
	f.summaryCalls++
	f.lastTimeline = timeline
	return f.summary
}

func (f *fakeAI) BuyerQA(ctx context.Context, question string, timeline []types.TimelineEvent) gemini.BuyerQAResult {
	return f.qa
}

func (f *fakeAI) TranslateMarketing(ctx context.Context, summaryEN string) gemini.TranslateMarketingResult {
	return f.translation
}

func (f *fakeAI) PriceSuggestion(ctx context.Context, in gemini.PriceSuggestionInput) gemini.PriceSuggestionResult {
	return f.price
}

func (f *fakeAI) DashboardInsight(ctx context.Context, stats map[string]any) gemini.DashboardInsightResult {
	return f.insight
}

func (f *fakeAI) HealthCheck(ctx context.Context) gemini.HealthResult { return f.health }

var errStoreDown = errors.New("connection refused")
