package compliance

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type RegulationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reg *types.Regulation) (*types.Regulation, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Regulation, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Regulation, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Regulation, error)
	ToggleActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Regulation, error)
}

type regulationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegulationRepo(db *gorm.DB, baseLog *logger.Logger) RegulationRepo {
	return &regulationRepo{db: db, log: baseLog.With("repo", "RegulationRepo")}
}

func (r *regulationRepo) Create(ctx context.Context, tx *gorm.DB, reg *types.Regulation) (*types.Regulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *regulationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Regulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Regulation
	if err := transaction.WithContext(ctx).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns nil, nil when the regulation does not exist.
func (r *regulationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Regulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var reg types.Regulation
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *regulationRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Regulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var reg types.Regulation
	err := transaction.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// ToggleActive flips is_active and returns the updated row, or nil, nil when
// the id is unknown.
func (r *regulationRepo) ToggleActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Regulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Regulation{}).
		Where("id = ?", id).
		Update("is_active", gorm.Expr("NOT is_active"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, transaction, id)
}
