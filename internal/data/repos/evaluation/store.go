package evaluation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

// Record is an evaluation header as stored, whatever the physical layout.
type Record struct {
	ID             string     `gorm:"column:id"`
	CompanyID      string     `gorm:"column:company_id"`
	CompanyName    string     `gorm:"column:company_name"`
	RegulationCode string     `gorm:"column:regulation_code"`
	StartedAt      time.Time  `gorm:"column:started_at"`
	DueAt          *time.Time `gorm:"column:due_at"`
	Status         string     `gorm:"column:status"`
}

// Answer is one stored answer row.
type Answer struct {
	EvaluationID string
	Key          string
	Value        string
	Comment      string
	ArticleCode  string
}

type answerRow struct {
	EvaluationID string  `gorm:"column:evaluation_id"`
	Key          string  `gorm:"column:control_key"`
	Value        *string `gorm:"column:value"`
	Comment      *string `gorm:"column:comment"`
	ArticleCode  *string `gorm:"column:article_code"`
}

// Store reads and writes evaluations and answers through the columns the
// Introspector resolved, so older table layouts keep working.
type Store interface {
	// Prepare resolves the evaluation tables up front so a transaction never
	// waits on a column lookup that needs its own connection.
	Prepare(ctx context.Context) error
	// CompanyName returns the company's name, found=false when the id does
	// not reference a company. When the companies table is missing every id
	// is accepted with an empty name.
	CompanyName(ctx context.Context, tx *gorm.DB, companyID string) (name string, found bool, err error)
	InsertEvaluation(ctx context.Context, tx *gorm.DB, rec Record) error
	InsertAnswers(ctx context.Context, tx *gorm.DB, evaluationID string, answers []Answer, now time.Time) error
	// UpsertAnswer updates every row stored for (evaluation, key) or inserts
	// one when there is none.
	UpsertAnswer(ctx context.Context, tx *gorm.DB, evaluationID string, answer Answer, now time.Time) error
	Get(ctx context.Context, tx *gorm.DB, evaluationID string) (*Record, error)
	List(ctx context.Context, tx *gorm.DB) ([]Record, error)
	Answers(ctx context.Context, tx *gorm.DB, evaluationID string) ([]Answer, error)
	AnswersFor(ctx context.Context, tx *gorm.DB, evaluationIDs []string) (map[string][]Answer, error)
}

type store struct {
	db     *gorm.DB
	schema *schema.Introspector
	log    *logger.Logger
}

func NewStore(gdb *gorm.DB, in *schema.Introspector, baseLog *logger.Logger) Store {
	return &store{db: gdb, schema: in, log: baseLog.With("repo", "EvaluationStore")}
}

const answersChunk = 500

func (s *store) q(ident string) string { return schema.Quote(s.db, ident) }

func (s *store) Prepare(ctx context.Context) error {
	for _, table := range []string{schema.TableEvaluations, schema.TableAnswers} {
		if _, err := s.schema.Resolve(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) CompanyName(ctx context.Context, tx *gorm.DB, companyID string) (string, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	cols, err := s.schema.Resolve(ctx, schema.TableCompanies)
	if err != nil {
		return "", false, err
	}
	if !cols.Exists || !cols.Has(schema.RoleID) {
		s.log.Warn("companies table unavailable, skipping company check", "company_id", companyID)
		return "", true, nil
	}

	nameExpr := "''"
	if cols.Has(schema.RoleName) {
		nameExpr = "COALESCE(" + s.q(cols.Column(schema.RoleName)) + ", '')"
	}
	query := fmt.Sprintf("SELECT %s AS name FROM %s WHERE %s = ?",
		nameExpr, s.q(schema.TableCompanies), s.q(cols.Column(schema.RoleID)))

	var names []string
	err = transaction.WithContext(ctx).Raw(query, companyID).Scan(&names).Error
	if db.IsInvalidTextRepresentation(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(names) == 0 {
		return "", false, nil
	}
	return names[0], true, nil
}

func (s *store) InsertEvaluation(ctx context.Context, tx *gorm.DB, rec Record) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	cols, err := s.schema.Resolve(ctx, schema.TableEvaluations)
	if err != nil {
		return err
	}
	if !cols.Has(schema.RoleID) {
		return errors.New("evaluations table has no id column")
	}
	row := map[string]interface{}{
		cols.Column(schema.RoleID):         rec.ID,
		cols.Column(schema.RoleCompany):    rec.CompanyID,
		cols.Column(schema.RoleRegulation): rec.RegulationCode,
		cols.Column(schema.RoleStarted):    rec.StartedAt,
	}
	if col, ok := cols.Get(schema.RoleCompanyName); ok {
		row[col] = rec.CompanyName
	}
	if col, ok := cols.Get(schema.RoleDue); ok && rec.DueAt != nil {
		row[col] = *rec.DueAt
	}
	if col, ok := cols.Get(schema.RoleStatus); ok {
		row[col] = rec.Status
	}
	return transaction.WithContext(ctx).Table(schema.TableEvaluations).Create(row).Error
}

func (s *store) answerRow(cols *schema.Columns, evaluationID string, a Answer, now time.Time) map[string]interface{} {
	row := map[string]interface{}{
		cols.Column(schema.RoleEvaluation): evaluationID,
		cols.Column(schema.RoleKey):        a.Key,
		cols.Column(schema.RoleValue):      a.Value,
	}
	if col, ok := cols.Get(schema.RoleID); ok {
		row[col] = newID()
	}
	if col, ok := cols.Get(schema.RoleComment); ok {
		row[col] = nullable(a.Comment)
	}
	if col, ok := cols.Get(schema.RoleArticle); ok {
		row[col] = nullable(a.ArticleCode)
	}
	if col, ok := cols.Get(schema.RoleUpdated); ok {
		row[col] = now
	}
	return row
}

func (s *store) InsertAnswers(ctx context.Context, tx *gorm.DB, evaluationID string, answers []Answer, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	if len(answers) == 0 {
		return nil
	}
	cols, err := s.schema.Resolve(ctx, schema.TableAnswers)
	if err != nil {
		return err
	}
	rows := make([]map[string]interface{}, 0, len(answers))
	for _, a := range answers {
		rows = append(rows, s.answerRow(cols, evaluationID, a, now))
	}
	return transaction.WithContext(ctx).
		Table(schema.TableAnswers).
		CreateInBatches(rows, answersChunk).Error
}

func (s *store) UpsertAnswer(ctx context.Context, tx *gorm.DB, evaluationID string, a Answer, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	cols, err := s.schema.Resolve(ctx, schema.TableAnswers)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		cols.Column(schema.RoleValue): a.Value,
	}
	if col, ok := cols.Get(schema.RoleComment); ok {
		updates[col] = nullable(a.Comment)
	}
	if col, ok := cols.Get(schema.RoleUpdated); ok {
		updates[col] = now
	}
	res := transaction.WithContext(ctx).
		Table(schema.TableAnswers).
		Where(fmt.Sprintf("%s = ? AND %s = ?", s.q(cols.Column(schema.RoleEvaluation)), s.q(cols.Column(schema.RoleKey))),
			evaluationID, a.Key).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Table(schema.TableAnswers).
		Create(s.answerRow(cols, evaluationID, a, now)).Error
}

func (s *store) headerQuery(ctx context.Context) (string, error) {
	ev, err := s.schema.Resolve(ctx, schema.TableEvaluations)
	if err != nil {
		return "", err
	}
	co, err := s.schema.Resolve(ctx, schema.TableCompanies)
	if err != nil {
		return "", err
	}
	if !ev.Has(schema.RoleID) {
		return "", errors.New("evaluations table has no id column")
	}
	e := func(role string) string { return schema.Qualified(s.db, "e", ev.Column(role)) }

	joinCompany := co.Exists && co.Has(schema.RoleID) && co.Has(schema.RoleName)
	var nameExpr string
	switch {
	case ev.Has(schema.RoleCompanyName) && joinCompany:
		nameExpr = fmt.Sprintf("COALESCE(NULLIF(%s, ''), %s, '')", e(schema.RoleCompanyName),
			schema.Qualified(s.db, "co", co.Column(schema.RoleName)))
	case ev.Has(schema.RoleCompanyName):
		nameExpr = "COALESCE(" + e(schema.RoleCompanyName) + ", '')"
	case joinCompany:
		nameExpr = "COALESCE(" + schema.Qualified(s.db, "co", co.Column(schema.RoleName)) + ", '')"
	default:
		nameExpr = "''"
	}
	dueExpr := "NULL"
	if ev.Has(schema.RoleDue) {
		dueExpr = e(schema.RoleDue)
	}
	statusExpr := "'open'"
	if ev.Has(schema.RoleStatus) {
		statusExpr = "COALESCE(" + e(schema.RoleStatus) + ", 'open')"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s AS id, %s AS company_id, %s AS company_name, %s AS regulation_code, %s AS started_at, %s AS due_at, %s AS status FROM %s e",
		e(schema.RoleID), e(schema.RoleCompany), nameExpr, e(schema.RoleRegulation), e(schema.RoleStarted),
		dueExpr, statusExpr, s.q(schema.TableEvaluations))
	if joinCompany {
		fmt.Fprintf(&sb, " LEFT JOIN %s co ON %s = %s", s.q(schema.TableCompanies),
			schema.Qualified(s.db, "co", co.Column(schema.RoleID)), e(schema.RoleCompany))
	}
	return sb.String(), nil
}

// Get returns nil, nil for an unknown id.
func (s *store) Get(ctx context.Context, tx *gorm.DB, evaluationID string) (*Record, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	base, err := s.headerQuery(ctx)
	if err != nil {
		return nil, err
	}
	ev, err := s.schema.Resolve(ctx, schema.TableEvaluations)
	if err != nil {
		return nil, err
	}
	query := base + " WHERE " + schema.Qualified(s.db, "e", ev.Column(schema.RoleID)) + " = ?"

	var recs []Record
	run := func() error {
		recs = recs[:0]
		return transaction.WithContext(ctx).Raw(query, evaluationID).Scan(&recs).Error
	}
	if tx == nil {
		err = db.ReadWithRetry(ctx, s.log, "evaluation.get", run)
	} else {
		err = run()
	}
	if db.IsInvalidTextRepresentation(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// List returns every evaluation, newest first.
func (s *store) List(ctx context.Context, tx *gorm.DB) ([]Record, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	base, err := s.headerQuery(ctx)
	if err != nil {
		return nil, err
	}
	var recs []Record
	err = db.ReadWithRetry(ctx, s.log, "evaluation.list", func() error {
		recs = recs[:0]
		return transaction.WithContext(ctx).Raw(base).Scan(&recs).Error
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].StartedAt.Equal(recs[j].StartedAt) {
			return recs[i].StartedAt.After(recs[j].StartedAt)
		}
		return recs[i].ID > recs[j].ID
	})
	return recs, nil
}

func (s *store) answersQuery(ctx context.Context) (string, *schema.Columns, error) {
	cols, err := s.schema.Resolve(ctx, schema.TableAnswers)
	if err != nil {
		return "", nil, err
	}
	optional := func(role string) string {
		if col, ok := cols.Get(role); ok {
			return s.q(col)
		}
		return "NULL"
	}
	query := fmt.Sprintf("SELECT %s AS evaluation_id, %s AS control_key, %s AS value, %s AS comment, %s AS article_code FROM %s",
		s.q(cols.Column(schema.RoleEvaluation)), s.q(cols.Column(schema.RoleKey)), s.q(cols.Column(schema.RoleValue)),
		optional(schema.RoleComment), optional(schema.RoleArticle), s.q(schema.TableAnswers))
	return query, cols, nil
}

func (s *store) Answers(ctx context.Context, tx *gorm.DB, evaluationID string) ([]Answer, error) {
	byEval, err := s.AnswersFor(ctx, tx, []string{evaluationID})
	if err != nil {
		return nil, err
	}
	return byEval[evaluationID], nil
}

// AnswersFor loads the answers of several evaluations. Rows sharing a key
// collapse into one; the row stored last wins. Each slice is ordered by key.
func (s *store) AnswersFor(ctx context.Context, tx *gorm.DB, evaluationIDs []string) (map[string][]Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	out := make(map[string][]Answer, len(evaluationIDs))
	if len(evaluationIDs) == 0 {
		return out, nil
	}
	base, cols, err := s.answersQuery(ctx)
	if err != nil {
		return nil, err
	}
	order := ""
	if col, ok := cols.Get(schema.RoleUpdated); ok {
		order = " ORDER BY " + s.q(col) + " ASC"
	}
	where := " WHERE " + s.q(cols.Column(schema.RoleEvaluation)) + " IN ?"

	var rows []answerRow
	for start := 0; start < len(evaluationIDs); start += answersChunk {
		end := start + answersChunk
		if end > len(evaluationIDs) {
			end = len(evaluationIDs)
		}
		chunk := evaluationIDs[start:end]
		var part []answerRow
		run := func() error {
			part = part[:0]
			return transaction.WithContext(ctx).Raw(base+where+order, chunk).Scan(&part).Error
		}
		if tx == nil {
			err = db.ReadWithRetry(ctx, s.log, "evaluation.answers", run)
		} else {
			err = run()
		}
		if db.IsInvalidTextRepresentation(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, part...)
	}

	latest := map[string]map[string]Answer{}
	for _, r := range rows {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			continue
		}
		m := latest[r.EvaluationID]
		if m == nil {
			m = map[string]Answer{}
			latest[r.EvaluationID] = m
		}
		m[key] = Answer{
			EvaluationID: r.EvaluationID,
			Key:          key,
			Value:        deref(r.Value),
			Comment:      deref(r.Comment),
			ArticleCode:  deref(r.ArticleCode),
		}
	}
	for evalID, m := range latest {
		answers := make([]Answer, 0, len(m))
		for _, a := range m {
			answers = append(answers, a)
		}
		sort.Slice(answers, func(i, j int) bool { return answers[i].Key < answers[j].Key })
		out[evalID] = answers
	}
	return out, nil
}
