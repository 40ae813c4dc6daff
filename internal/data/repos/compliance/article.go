package compliance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type ArticleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, articles []*types.Article) ([]*types.Article, error)
	ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.Article, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error)
	NextSortIndex(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) (int, error)
	ToggleEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error)
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	return &articleRepo{db: db, log: baseLog.With("repo", "ArticleRepo")}
}

func (r *articleRepo) Create(ctx context.Context, tx *gorm.DB, articles []*types.Article) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(articles) == 0 {
		return []*types.Article{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// ListByRegulation orders by sort index (unset last), then creation time.
func (r *articleRepo) ListByRegulation(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) ([]*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Article
	if err := transaction.WithContext(ctx).
		Where("regulation_id = ?", regulationID).
		Order("CASE WHEN sort_index IS NULL THEN 1 ELSE 0 END, sort_index ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *articleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var a types.Article
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// NextSortIndex returns one past the highest sort index of the regulation,
// or 1 when it has none.
func (r *articleRepo) NextSortIndex(ctx context.Context, tx *gorm.DB, regulationID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max sql.NullInt64
	if err := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("regulation_id = ?", regulationID).
		Select("MAX(sort_index)").
		Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *articleRepo) ToggleEnabled(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Article{}).
		Where("id = ?", id).
		Update("is_enabled", gorm.Expr("NOT is_enabled"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, transaction, id)
}
