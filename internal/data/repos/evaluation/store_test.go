package evaluation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos/testutil"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
)

func newTestStore(t *testing.T, legacy bool) (*store, context.Context) {
	t.Helper()
	log := testutil.Logger(t)
	if !legacy {
		db := testutil.SQLite(t)
		return NewStore(db, schema.New(db, log), log).(*store), context.Background()
	}
	db := testutil.SQLiteEmpty(t)
	testutil.Exec(t, db,
		`CREATE TABLE evaluations (id TEXT PRIMARY KEY, empresa_id TEXT, normativa TEXT, fecha_inicio TIMESTAMP)`,
		`CREATE TABLE evaluation_answers (evaluacion_id TEXT, clave TEXT, valor TEXT, comentario TEXT, actualizado_en TIMESTAMP)`,
	)
	return NewStore(db, schema.New(db, log), log).(*store), context.Background()
}

func TestStoreRoundTrip(t *testing.T) {
	s, ctx := newTestStore(t, false)
	company := testutil.SeedCompany(t, ctx, s.db, "Acme S.A.")
	started := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	due := started.Add(7 * 24 * time.Hour)

	name, found, err := s.CompanyName(ctx, nil, company.ID.String())
	if err != nil || !found || name != "Acme S.A." {
		t.Fatalf("CompanyName: got %q, %v, %v", name, found, err)
	}
	_, found, err = s.CompanyName(ctx, nil, uuid.NewString())
	if err != nil || found {
		t.Fatalf("CompanyName (unknown): got %v, %v", found, err)
	}

	rec := Record{
		ID:             uuid.NewString(),
		CompanyID:      company.ID.String(),
		RegulationCode: "GDPR",
		StartedAt:      started,
		DueAt:          &due,
		Status:         "open",
	}
	if err := s.InsertEvaluation(ctx, nil, rec); err != nil {
		t.Fatalf("InsertEvaluation: %v", err)
	}
	err = s.InsertAnswers(ctx, nil, rec.ID, []Answer{
		{Key: "GDPR-02", Value: "partial", Comment: "en curso", ArticleCode: "Art. 5"},
		{Key: "GDPR-01", Value: "true"},
	}, started)
	if err != nil {
		t.Fatalf("InsertAnswers: %v", err)
	}

	got, err := s.Get(ctx, nil, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("Get: got %+v, %v", got, err)
	}
	if got.CompanyName != "Acme S.A." || got.RegulationCode != "GDPR" || !got.StartedAt.Equal(started) {
		t.Fatalf("Get: unexpected header %+v", got)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("Get: due %v", got.DueAt)
	}

	answers, err := s.Answers(ctx, nil, rec.ID)
	if err != nil || len(answers) != 2 {
		t.Fatalf("Answers: got %+v, %v", answers, err)
	}
	if answers[0].Key != "GDPR-01" || answers[1].Comment != "en curso" || answers[1].ArticleCode != "Art. 5" {
		t.Fatalf("Answers: unexpected %+v", answers)
	}

	if err := s.UpsertAnswer(ctx, nil, rec.ID, Answer{Key: "GDPR-02", Value: "true"}, started.Add(time.Hour)); err != nil {
		t.Fatalf("UpsertAnswer (update): %v", err)
	}
	if err := s.UpsertAnswer(ctx, nil, rec.ID, Answer{Key: "GDPR-03", Value: "false"}, started.Add(time.Hour)); err != nil {
		t.Fatalf("UpsertAnswer (insert): %v", err)
	}
	answers, err = s.Answers(ctx, nil, rec.ID)
	if err != nil || len(answers) != 3 {
		t.Fatalf("Answers after upsert: got %+v, %v", answers, err)
	}
	if answers[1].Value != "true" || answers[1].Comment != "" {
		t.Fatalf("upsert should replace value and clear comment, got %+v", answers[1])
	}

	missing, err := s.Get(ctx, nil, uuid.NewString())
	if err != nil || missing != nil {
		t.Fatalf("Get (unknown): got %+v, %v", missing, err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	s, ctx := newTestStore(t, false)
	company := testutil.SeedCompany(t, ctx, s.db, "Acme S.A.")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		err := s.InsertEvaluation(ctx, nil, Record{
			ID:             ids[i],
			CompanyID:      company.ID.String(),
			RegulationCode: "SOX",
			StartedAt:      base.Add(time.Duration(i) * time.Hour),
			Status:         "open",
		})
		if err != nil {
			t.Fatalf("InsertEvaluation: %v", err)
		}
	}

	recs, err := s.List(ctx, nil)
	if err != nil || len(recs) != 3 {
		t.Fatalf("List: got %d, %v", len(recs), err)
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if recs[i].ID != want {
			t.Fatalf("List[%d]: got %s, want %s", i, recs[i].ID, want)
		}
		if recs[i].CompanyName != "Acme S.A." {
			t.Fatalf("List[%d]: company name from join, got %q", i, recs[i].CompanyName)
		}
	}

	byEval, err := s.AnswersFor(ctx, nil, ids)
	if err != nil || len(byEval) != 0 {
		t.Fatalf("AnswersFor (none stored): got %+v, %v", byEval, err)
	}
}

func TestStoreLegacyDuplicatesCollapse(t *testing.T) {
	s, ctx := newTestStore(t, true)
	evalID := uuid.NewString()
	testutil.Exec(t, s.db,
		`INSERT INTO evaluations (id, empresa_id, normativa, fecha_inicio) VALUES ('`+evalID+`', 'e-1', 'SOX', '2024-02-01 10:00:00')`,
		`INSERT INTO evaluation_answers VALUES ('`+evalID+`', 'SOX-01', 'true', NULL, '2024-02-02 10:00:00')`,
		`INSERT INTO evaluation_answers VALUES ('`+evalID+`', ' SOX-01 ', 'false', 'antes', '2024-02-01 10:00:00')`,
		`INSERT INTO evaluation_answers VALUES ('`+evalID+`', 'SOX-02', NULL, NULL, '2024-02-01 10:00:00')`,
	)

	answers, err := s.Answers(ctx, nil, evalID)
	if err != nil {
		t.Fatalf("Answers: %v", err)
	}
	if len(answers) != 2 {
		t.Fatalf("expected duplicates to collapse into 2 answers, got %+v", answers)
	}
	if answers[0].Key != "SOX-01" || answers[0].Value != "true" || answers[0].Comment != "" {
		t.Fatalf("latest row should win, got %+v", answers[0])
	}
	if answers[1].Value != "" {
		t.Fatalf("null value should read as empty, got %q", answers[1].Value)
	}

	rec, err := s.Get(ctx, nil, evalID)
	if err != nil || rec == nil {
		t.Fatalf("Get: got %+v, %v", rec, err)
	}
	if rec.CompanyID != "e-1" || rec.RegulationCode != "SOX" || rec.Status != "open" || rec.DueAt != nil {
		t.Fatalf("Get: unexpected legacy header %+v", rec)
	}

	_, found, err := s.CompanyName(ctx, nil, "anything")
	if err != nil || !found {
		t.Fatalf("CompanyName without companies table: got %v, %v", found, err)
	}
}
