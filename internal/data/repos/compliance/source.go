package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type RegulationSourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, src *types.RegulationSource) (*types.RegulationSource, error)
	ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.RegulationSource, error)
}

type regulationSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegulationSourceRepo(db *gorm.DB, baseLog *logger.Logger) RegulationSourceRepo {
	return &regulationSourceRepo{db: db, log: baseLog.With("repo", "RegulationSourceRepo")}
}

func (r *regulationSourceRepo) Create(ctx context.Context, tx *gorm.DB, src *types.RegulationSource) (*types.RegulationSource, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(src).Error; err != nil {
		return nil, err
	}
	return src, nil
}

func (r *regulationSourceRepo) ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.RegulationSource, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RegulationSource
	if err := transaction.WithContext(ctx).
		Where("regulation_id = ?", regulationID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
