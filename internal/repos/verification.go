package repos

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

type VerificationRepo interface {
	// Upsert writes the record keyed by (token_id, serial_number);
	// an existing row's trace is overwritten, last write wins.
	Upsert(ctx context.Context, tx *gorm.DB, rec *types.VerificationRecord) (*types.VerificationRecord, error)
	// GetByKey returns (nil, nil) when no verification has been cached.
	GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.VerificationRecord, error)
	Count(ctx context.Context) (int64, error)
	CountTrusted(ctx context.Context, minScore int) (int64, error)
	// ListByTrust returns the most recent records whose embedded trust score
	// is >= minScore (atLeast) or < minScore (!atLeast). Records without a
	// narrative or without a score are excluded either way.
	ListByTrust(ctx context.Context, minScore int, atLeast bool, limit int) ([]*types.VerificationRecord, error)
}

type verificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVerificationRepo(db *gorm.DB, baseLog *logger.Logger) VerificationRepo {
	repoLog := baseLog.With("repo", "VerificationRepo")
	return &verificationRepo{db: db, log: repoLog}
}

func (vr *verificationRepo) Upsert(ctx context.Context, tx *gorm.DB, rec *types.VerificationRecord) (*types.VerificationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	rec.UpdatedAt = time.Now().UTC()
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}, {Name: "serial_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"trace", "updated_at"}),
		}).
		Create(rec).Error
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (vr *verificationRepo) GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.VerificationRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	var result types.VerificationRecord
	err := transaction.WithContext(ctx).
		Where("token_id = ? AND serial_number = ?", tokenID, serialNumber).
		First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (vr *verificationRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := vr.db.WithContext(ctx).Model(&types.VerificationRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (vr *verificationRepo) CountTrusted(ctx context.Context, minScore int) (int64, error) {
	var count int64
	err := vr.db.WithContext(ctx).
		Model(&types.VerificationRecord{}).
		Where(fmt.Sprintf("%s >= ?", vr.trustScoreExpr()), minScore).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (vr *verificationRepo) ListByTrust(ctx context.Context, minScore int, atLeast bool, limit int) ([]*types.VerificationRecord, error) {
	op := ">="
	if !atLeast {
		op = "<"
	}
	var results []*types.VerificationRecord
	err := vr.db.WithContext(ctx).
		Where(fmt.Sprintf("%s %s ?", vr.trustScoreExpr(), op), minScore).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// trustScoreExpr extracts trace.ai.trustScore as an integer. A missing
// narrative or a null score yields SQL NULL, which fails both comparison
// directions and so drops the row from trust-filtered queries.
func (vr *verificationRepo) trustScoreExpr() string {
	if vr.db.Dialector.Name() == "postgres" {
		return "CAST(trace -> 'ai' ->> 'trustScore' AS INTEGER)"
	}
	return "CAST(json_extract(trace, '$.ai.trustScore') AS INTEGER)"
}
