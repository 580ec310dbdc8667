package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

type MetadataBlobRepo interface {
	Put(ctx context.Context, tx *gorm.DB, blob *types.MetadataBlob) (*types.MetadataBlob, error)
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.MetadataBlob, error)
}

type metadataBlobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetadataBlobRepo(db *gorm.DB, baseLog *logger.Logger) MetadataBlobRepo {
	repoLog := baseLog.With("repo", "MetadataBlobRepo")
	return &metadataBlobRepo{db: db, log: repoLog}
}

func (mr *metadataBlobRepo) Put(ctx context.Context, tx *gorm.DB, blob *types.MetadataBlob) (*types.MetadataBlob, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	// same hash means same payload, so a conflict is a no-op
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hash"}},
			DoNothing: true,
		}).
		Create(blob).Error
	if err != nil {
		return nil, err
	}
	return blob, nil
}

func (mr *metadataBlobRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.MetadataBlob, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.MetadataBlob
	err := transaction.WithContext(ctx).Where("hash = ?", hash).First(&result).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
