package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/agrodex/agrodex-backend/internal/logger"
	"github.com/agrodex/agrodex-backend/internal/types"
)

type CertificateRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, cert *types.Certificate) (*types.Certificate, error)
	// GetByKey returns (nil, nil) when no certificate exists for the pair;
	// absence is a business outcome, not an error.
	GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.Certificate, error)
	Count(ctx context.Context) (int64, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *logger.Logger) CertificateRepo {
	repoLog := baseLog.With("repo", "CertificateRepo")
	return &certificateRepo{db: db, log: repoLog}
}

func (cr *certificateRepo) Insert(ctx context.Context, tx *gorm.DB, cert *types.Certificate) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(cert).Error; err != nil {
		return nil, err
	}
	return cert, nil
}

func (cr *certificateRepo) GetByKey(ctx context.Context, tx *gorm.DB, tokenID, serialNumber string) (*types.Certificate, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.Certificate
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

func (cr *certificateRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := cr.db.WithContext(ctx).Model(&types.Certificate{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
