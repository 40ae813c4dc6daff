package compliance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

// CatalogRow is one active control of a regulation with its article
// citation, read through resolved column names.
type CatalogRow struct {
	Key            string   `gorm:"column:control_key"`
	Question       string   `gorm:"column:question"`
	Recommendation *string  `gorm:"column:recommendation"`
	Weight         *float64 `gorm:"column:weight"`
	ArticleCode    *string  `gorm:"column:article_code"`
	ArticleTitle   *string  `gorm:"column:article_title"`
}

// CatalogRepo reads the persisted control catalog. Controls that are inactive
// or linked to a disabled article are left out. Rows come back unordered.
type CatalogRepo interface {
	RowsByCode(ctx context.Context, code string) ([]CatalogRow, error)
	RowsByRegulationID(ctx context.Context, regulationID uuid.UUID) ([]CatalogRow, error)
}

type catalogRepo struct {
	db     *gorm.DB
	schema *schema.Introspector
	log    *logger.Logger
}

func NewCatalogRepo(gdb *gorm.DB, in *schema.Introspector, baseLog *logger.Logger) CatalogRepo {
	return &catalogRepo{db: gdb, schema: in, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *catalogRepo) RowsByCode(ctx context.Context, code string) ([]CatalogRow, error) {
	reg, err := r.schema.Resolve(ctx, schema.TableRegulations)
	if err != nil {
		return nil, err
	}
	join := fmt.Sprintf("JOIN %s r ON %s = %%s",
		schema.Quote(r.db, schema.TableRegulations),
		schema.Qualified(r.db, "r", reg.Column(schema.RoleID)),
	)
	where := fmt.Sprintf("%%s IS NOT NULL AND UPPER(%s) = ?", schema.Qualified(r.db, "r", reg.Column(schema.RoleCode)))
	return r.rows(ctx, join, where, strings.ToUpper(strings.TrimSpace(code)))
}

func (r *catalogRepo) RowsByRegulationID(ctx context.Context, regulationID uuid.UUID) ([]CatalogRow, error) {
	return r.rows(ctx, "", "%s = ?", regulationID)
}

// rows assembles the catalog query. regJoin and regWhere carry one %s verb
// each, replaced by the controls' regulation column.
func (r *catalogRepo) rows(ctx context.Context, regJoin, regWhere string, arg interface{}) ([]CatalogRow, error) {
	ctl, err := r.schema.Resolve(ctx, schema.TableControls)
	if err != nil {
		return nil, err
	}
	art, err := r.schema.Resolve(ctx, schema.TableArticles)
	if err != nil {
		return nil, err
	}

	c := func(role string) string { return schema.Qualified(r.db, "c", ctl.Column(role)) }
	a := func(role string) string { return schema.Qualified(r.db, "a", art.Column(role)) }

	selects := []string{
		c(schema.RoleKey) + " AS control_key",
		c(schema.RoleQuestion) + " AS question",
	}
	if ctl.Has(schema.RoleRecommendation) {
		selects = append(selects, c(schema.RoleRecommendation)+" AS recommendation")
	} else {
		selects = append(selects, "NULL AS recommendation")
	}
	if ctl.Has(schema.RoleWeight) {
		selects = append(selects, "COALESCE("+c(schema.RoleWeight)+", 1) AS weight")
	} else {
		selects = append(selects, "1 AS weight")
	}

	joinArticle := ctl.Has(schema.RoleArticle) && art.Exists && art.Has(schema.RoleID)
	if joinArticle && art.Has(schema.RoleCode) {
		selects = append(selects, a(schema.RoleCode)+" AS article_code")
	} else {
		selects = append(selects, "NULL AS article_code")
	}
	if joinArticle && art.Has(schema.RoleTitle) {
		selects = append(selects, a(schema.RoleTitle)+" AS article_title")
	} else {
		selects = append(selects, "NULL AS article_title")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(schema.Quote(r.db, schema.TableControls))
	sb.WriteString(" c")
	if regJoin != "" {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf(regJoin, c(schema.RoleRegulation)))
	}
	if joinArticle {
		sb.WriteString(fmt.Sprintf(" LEFT JOIN %s a ON %s = %s",
			schema.Quote(r.db, schema.TableArticles), a(schema.RoleID), c(schema.RoleArticle)))
	}

	args := []interface{}{arg}
	conds := []string{fmt.Sprintf(regWhere, c(schema.RoleRegulation))}
	if ctl.Has(schema.RoleActive) {
		conds = append(conds, "COALESCE("+c(schema.RoleActive)+", ?) = ?")
		args = append(args, true, true)
	}
	if joinArticle && art.Has(schema.RoleEnabled) {
		conds = append(conds, "("+a(schema.RoleID)+" IS NULL OR COALESCE("+a(schema.RoleEnabled)+", ?) = ?)")
		args = append(args, true, true)
	}
	sb.WriteString(" WHERE ")
	sb.WriteString(strings.Join(conds, " AND "))

	query := sb.String()
	var out []CatalogRow
	err = db.ReadWithRetry(ctx, r.log, "catalog.rows", func() error {
		out = out[:0]
		return r.db.WithContext(ctx).Raw(query, args...).Scan(&out).Error
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return out, nil
}
