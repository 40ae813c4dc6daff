package schema

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

// ColumnSource lists the physical columns of a table. A missing table yields
// an empty slice and no error.
type ColumnSource interface {
	Columns(ctx context.Context, table string) ([]string, error)
}

// InformationSchemaSource reads information_schema.columns for the current
// schema. Used on PostgreSQL.
type InformationSchemaSource struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInformationSchemaSource(gdb *gorm.DB, log *logger.Logger) *InformationSchemaSource {
	return &InformationSchemaSource{db: gdb, log: log}
}

const informationSchemaQuery = `
SELECT column_name
FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = ?
ORDER BY ordinal_position`

func (s *InformationSchemaSource) Columns(ctx context.Context, table string) ([]string, error) {
	var cols []string
	err := db.ReadWithRetry(ctx, s.log, "schema.columns", func() error {
		cols = cols[:0]
		rows, err := s.db.WithContext(ctx).Raw(informationSchemaQuery, table).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			cols = append(cols, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	return cols, nil
}

// MigratorSource asks the gorm migrator, which works for every dialect gorm
// supports (SQLite in tests).
type MigratorSource struct {
	db *gorm.DB
}

func NewMigratorSource(gdb *gorm.DB) *MigratorSource {
	return &MigratorSource{db: gdb}
}

func (s *MigratorSource) Columns(ctx context.Context, table string) ([]string, error) {
	m := s.db.WithContext(ctx).Migrator()
	if !m.HasTable(table) {
		return nil, nil
	}
	types, err := m.ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("list columns of %s: %w", table, err)
	}
	cols := make([]string, 0, len(types))
	for _, ct := range types {
		cols = append(cols, ct.Name())
	}
	return cols, nil
}

// SourceFor picks the column source matching the dialect of gdb.
func SourceFor(gdb *gorm.DB, log *logger.Logger) ColumnSource {
	if gdb.Dialector.Name() == "postgres" {
		return NewInformationSchemaSource(gdb, log)
	}
	return NewMigratorSource(gdb)
}
