package schema

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestInformationSchemaSourceColumns(t *testing.T) {
	gdb, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("evaluation_answers").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).
			AddRow("id").
			AddRow("evaluacion_id").
			AddRow("clave").
			AddRow("valor"))

	src := NewInformationSchemaSource(gdb, logger.Nop())
	cols, err := src.Columns(context.Background(), "evaluation_answers")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "evaluacion_id", "clave", "valor"}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInformationSchemaSourceRetriesTerminatedConnection(t *testing.T) {
	gdb, mock := newMockPostgres(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("controls").
		WillReturnError(&pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"})
	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.columns")).
		WithArgs("controls").
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("clave").AddRow("pregunta").AddRow("regulacion_id"))

	in := New(gdb, logger.Nop(), WithSource(NewInformationSchemaSource(gdb, logger.Nop())))
	cols, err := in.Resolve(context.Background(), TableControls)
	require.NoError(t, err)
	assert.Equal(t, "clave", cols.Column(RoleKey))
	assert.Equal(t, "pregunta", cols.Column(RoleQuestion))
	assert.False(t, cols.Has(RoleWeight))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSourceForPicksDialect(t *testing.T) {
	gdb, _ := newMockPostgres(t)
	_, ok := SourceFor(gdb, logger.Nop()).(*InformationSchemaSource)
	assert.True(t, ok)
}
