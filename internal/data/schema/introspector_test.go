package schema

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/data/repos/testutil"
)

type countingSource struct {
	inner ColumnSource
	calls atomic.Int32
	delay time.Duration
}

func (s *countingSource) Columns(ctx context.Context, table string) ([]string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.inner.Columns(ctx, table)
}

func TestResolveCanonicalLayout(t *testing.T) {
	gdb := testutil.SQLite(t)
	in := New(gdb, testutil.Logger(t))

	cols, err := in.Resolve(context.Background(), TableAnswers)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := map[string]string{
		RoleEvaluation: "evaluation_id",
		RoleKey:        "control_key",
		RoleValue:      "value",
		RoleComment:    "comment",
		RoleArticle:    "article_code",
		RoleID:         "id",
		RoleUpdated:    "updated_at",
	}
	for role, col := range want {
		if got := cols.Column(role); got != col {
			t.Fatalf("role %s: want %q got %q", role, col, got)
		}
	}
}

func TestResolveLegacyAnswerTable(t *testing.T) {
	gdb := testutil.SQLiteEmpty(t)
	testutil.Exec(t, gdb,
		`CREATE TABLE evaluation_answers (evaluacion_id TEXT, clave TEXT, valor TEXT, respuesta TEXT)`,
	)
	in := New(gdb, testutil.Logger(t))

	cols, err := in.Resolve(context.Background(), TableAnswers)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := cols.Column(RoleValue); got != "respuesta" {
		t.Fatalf("value role should prefer respuesta, got %q", got)
	}
	if got := cols.Column(RoleKey); got != "clave" {
		t.Fatalf("key role: got %q", got)
	}
	if cols.Has(RoleComment) || cols.Has(RoleArticle) || cols.Has(RoleID) {
		t.Fatalf("optional roles should be absent: %+v", cols.resolved)
	}
}

func TestResolveMissingRequiredRoleIsNotCached(t *testing.T) {
	gdb := testutil.SQLiteEmpty(t)
	testutil.Exec(t, gdb, `CREATE TABLE evaluation_answers (evaluation_id TEXT, control_key TEXT)`)
	in := New(gdb, testutil.Logger(t))

	_, err := in.Resolve(context.Background(), TableAnswers)
	if !apperrors.Is(err, apperrors.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	var se *apperrors.SchemaError
	if !apperrors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Table != TableAnswers || se.Role != RoleValue {
		t.Fatalf("unexpected schema error detail: %+v", se)
	}

	testutil.Exec(t, gdb, `ALTER TABLE evaluation_answers ADD COLUMN valor TEXT`)
	cols, err := in.Resolve(context.Background(), TableAnswers)
	if err != nil {
		t.Fatalf("Resolve after fix: %v", err)
	}
	if cols.Column(RoleValue) != "valor" {
		t.Fatalf("value role: got %q", cols.Column(RoleValue))
	}
}

func TestResolveMissingOptionalTable(t *testing.T) {
	gdb := testutil.SQLiteEmpty(t)
	in := New(gdb, testutil.Logger(t))

	cols, err := in.Resolve(context.Background(), TableCompanies)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cols.Exists || cols.Has(RoleName) {
		t.Fatalf("expected absent table, got %+v", cols)
	}

	if _, err := in.Resolve(context.Background(), TableEvaluations); !apperrors.Is(err, apperrors.ErrSchema) {
		t.Fatalf("missing evaluations table should be a schema error, got %v", err)
	}
}

func TestResolveSharesOneLookup(t *testing.T) {
	gdb := testutil.SQLite(t)
	src := &countingSource{inner: NewMigratorSource(gdb), delay: 20 * time.Millisecond}
	in := New(gdb, testutil.Logger(t), WithSource(src))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := in.Resolve(context.Background(), TableControls); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := in.Resolve(context.Background(), TableControls); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one column lookup, got %d", got)
	}

	in.Reset()
	if _, err := in.Resolve(context.Background(), TableControls); err != nil {
		t.Fatalf("Resolve after reset: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected a fresh lookup after reset, got %d", got)
	}
}

func TestResolveUnknownTable(t *testing.T) {
	gdb := testutil.SQLite(t)
	in := New(gdb, testutil.Logger(t))
	if _, err := in.Resolve(context.Background(), "audit_log"); !apperrors.Is(err, apperrors.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	roles := []Role{
		required("value", "respuesta", "valor", "value"),
		optional("comment", "comment", "comentario"),
	}
	tests := []struct {
		name     string
		physical []string
		value    string
		comment  string
		wantErr  bool
	}{
		{name: "priority order", physical: []string{"value", "valor"}, value: "valor"},
		{name: "case insensitive keeps spelling", physical: []string{"Respuesta", "Comentario"}, value: "Respuesta", comment: "Comentario"},
		{name: "optional absent", physical: []string{"value"}, value: "value"},
		{name: "required absent", physical: []string{"comment"}, wantErr: true},
		{name: "empty table", physical: nil, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cols, err := Match("answers", tc.physical, roles)
			if tc.wantErr {
				if !apperrors.Is(err, apperrors.ErrSchema) {
					t.Fatalf("expected schema error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Match: %v", err)
			}
			if cols.Column("value") != tc.value {
				t.Fatalf("value: want %q got %q", tc.value, cols.Column("value"))
			}
			if cols.Column("comment") != tc.comment {
				t.Fatalf("comment: want %q got %q", tc.comment, cols.Column("comment"))
			}
		})
	}
}

func TestQuote(t *testing.T) {
	gdb := testutil.SQLite(t)
	if got := Quote(gdb, "valor"); got != "`valor`" {
		t.Fatalf("unexpected quoting: %s", got)
	}
	if got := Qualified(gdb, "a", "key"); got != "a.`key`" {
		t.Fatalf("unexpected qualified identifier: %s", got)
	}
}
