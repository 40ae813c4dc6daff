package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/domain/user"
)

// AutoMigrateAll creates the canonical layout. Existing tables keep their
// columns; the schema introspector maps older names at runtime.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity
		&user.User{},

		// Catalog
		&compliance.Regulation{},
		&compliance.Article{},
		&compliance.Control{},
		&compliance.RegulationSource{},

		// Tenants + evaluations
		&compliance.Company{},
		&compliance.Evaluation{},
		&compliance.EvaluationAnswer{},
	)
}

func EnsureComplianceIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_articles_regulation_sort
		ON articles (regulation_id, sort_index NULLS LAST, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_articles_regulation_sort: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_evaluations_started_desc
		ON evaluations (started_at DESC, id DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_evaluations_started_desc: %w", err)
	}
	return nil
}
