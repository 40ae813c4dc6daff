package compliance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type ControlRepo interface {
	Create(ctx context.Context, tx *gorm.DB, controls []*types.Control) ([]*types.Control, error)
	ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.Control, error)
	CountByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) (int64, error)
	KeyExists(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID, key string) (bool, error)
}

type controlRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewControlRepo(db *gorm.DB, baseLog *logger.Logger) ControlRepo {
	return &controlRepo{db: db, log: baseLog.With("repo", "ControlRepo")}
}

func (r *controlRepo) Create(ctx context.Context, tx *gorm.DB, controls []*types.Control) ([]*types.Control, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(controls) == 0 {
		return []*types.Control{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&controls).Error; err != nil {
		return nil, err
	}
	return controls, nil
}

func (r *controlRepo) ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.Control, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Control
	if err := transaction.WithContext(ctx).
		Where("regulation_id = ?", regulationID).
		Order("control_key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *controlRepo) CountByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Control{}).
		Where("regulation_id = ?", regulationID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *controlRepo) KeyExists(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID, key string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Control{}).
		Where("regulation_id = ? AND control_key = ?", regulationID, key).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
