package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

type BatchRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, batch *types.Batch) (*types.Batch, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Batch, error)
	AttachCertificate(ctx context.Context, tx *gorm.DB, id uuid.UUID, tokenID, serialNumber string) error
	SetAIAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis datatypes.JSON) error
	Count(ctx context.Context) (int64, error)
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	repoLog := baseLog.With("repo", "BatchRepo")
	return &batchRepo{db: db, log: repoLog}
}

func (br *batchRepo) Insert(ctx context.Context, tx *gorm.DB, batch *types.Batch) (*types.Batch, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	if err := transaction.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

func (br *batchRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Batch, error) {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	var result types.Batch
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (br *batchRepo) AttachCertificate(ctx context.Context, tx *gorm.DB, id uuid.UUID, tokenID, serialNumber string) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.Batch{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"hedera_token_id":      tokenID,
			"hedera_serial_number": serialNumber,
			"tokenized_at":         now,
			"updated_at":           now,
		}).Error
}

func (br *batchRepo) SetAIAnalysis(ctx context.Context, tx *gorm.DB, id uuid.UUID, analysis datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = br.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Batch{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"ai_analysis": analysis,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (br *batchRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := br.db.WithContext(ctx).Model(&types.Batch{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
