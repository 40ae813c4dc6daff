package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/ctxutil"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type AnswerInput struct {
	Value   string `json:"value"`
	Comment string `json:"comment"`
}

type CreateEvaluationInput struct {
	CompanyID      string                 `json:"companyId"`
	RegulationCode string                 `json:"regulationCode"`
	Answers        map[string]AnswerInput `json:"answers"`
}

type NonCompliance struct {
	Control        string `json:"control"`
	Recommendation string `json:"recommendation"`
	ArticleCode    string `json:"articleCode"`
}

type AnswerComment struct {
	ArticleCode string `json:"articleCode"`
	Comment     string `json:"comment"`
}

// Report is the score of an answer set plus what it leaves unsatisfied.
type Report struct {
	Percentage     int             `json:"percentage"`
	Level          string          `json:"level"`
	NonCompliances []NonCompliance `json:"nonCompliances"`
	Comments       []AnswerComment `json:"comments"`
}

type CreateEvaluationResult struct {
	ID             string    `json:"id"`
	RegulationCode string    `json:"regulationCode"`
	StartedAt      time.Time `json:"startedAt"`
	DueAt          time.Time `json:"dueAt"`
	Report
}

type EvaluationService interface {
	Create(ctx context.Context, in CreateEvaluationInput) (*CreateEvaluationResult, error)
	Amend(ctx context.Context, evaluationID, controlKey string, in AnswerInput) (*Report, error)
	// Preview scores answers against the catalog without storing anything.
	Preview(ctx context.Context, regulationCode string, answers map[string]AnswerInput) (*Report, error)
}

type evaluationService struct {
	db      *gorm.DB
	log     *logger.Logger
	store   repos.EvaluationStore
	catalog CatalogService
	now     func() time.Time
}

func NewEvaluationService(db *gorm.DB, log *logger.Logger, store repos.EvaluationStore, catalog CatalogService) EvaluationService {
	return &evaluationService{
		db:      db,
		log:     log.With("service", "EvaluationService"),
		store:   store,
		catalog: catalog,
		now:     time.Now,
	}
}

// NormalizeAnswers trims keys, values and comments and drops blank keys.
// When several raw keys trim to the same key, the raw key that sorts last
// wins. The result is ordered by key.
func NormalizeAnswers(in map[string]AnswerInput) []repos.EvaluationAnswer {
	raw := make([]string, 0, len(in))
	for k := range in {
		raw = append(raw, k)
	}
	sort.Strings(raw)

	byKey := make(map[string]repos.EvaluationAnswer, len(in))
	for _, k := range raw {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		a := in[k]
		byKey[key] = repos.EvaluationAnswer{
			Key:     key,
			Value:   strings.TrimSpace(a.Value),
			Comment: strings.TrimSpace(a.Comment),
		}
	}
	out := make([]repos.EvaluationAnswer, 0, len(byKey))
	for _, a := range byKey {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *evaluationService) Create(ctx context.Context, in CreateEvaluationInput) (*CreateEvaluationResult, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	code := NormalizeRegulationCode(in.RegulationCode)
	if companyID == "" {
		return nil, apperrors.Validation("companyId is required")
	}
	if code == "" {
		return nil, apperrors.Validation("regulationCode is required")
	}
	answers := NormalizeAnswers(in.Answers)

	catalog, err := s.catalog.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}
	index := indexCatalog(catalog)
	for i := range answers {
		if ctl, ok := index[answers[i].Key]; ok {
			answers[i].ArticleCode = ctl.ArticleCode
		}
	}

	companyName, found, err := s.store.CompanyName(ctx, nil, companyID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.Validation("companyId %q does not reference a company", companyID)
	}
	if err := s.store.Prepare(ctx); err != nil {
		return nil, err
	}

	started := s.now().UTC().Truncate(time.Microsecond)
	due := started.Add(compliance.EvaluationDueAfter)
	rec := repos.EvaluationRecord{
		ID:             uuid.NewString(),
		CompanyID:      companyID,
		CompanyName:    companyName,
		RegulationCode: code,
		StartedAt:      started,
		DueAt:          &due,
		Status:         compliance.EvaluationStatusOpen,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.InsertEvaluation(ctx, tx, rec); err != nil {
			return err
		}
		return s.store.InsertAnswers(ctx, tx, rec.ID, answers, started)
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "evaluation", err)
	}

	s.log.Info("evaluation created", append(ctxutil.LogFields(ctx),
		"evaluation_id", rec.ID, "regulation", code, "answers", len(answers))...)

	return &CreateEvaluationResult{
		ID:             rec.ID,
		RegulationCode: code,
		StartedAt:      started,
		DueAt:          due,
		Report:         buildReport(catalog, answers),
	}, nil
}

func (s *evaluationService) Amend(ctx context.Context, evaluationID, controlKey string, in AnswerInput) (*Report, error) {
	evaluationID = strings.TrimSpace(evaluationID)
	key := strings.TrimSpace(controlKey)
	if evaluationID == "" {
		return nil, apperrors.Validation("evaluation id is required")
	}
	if key == "" {
		return nil, apperrors.Validation("control key is required")
	}

	rec, err := s.store.Get(ctx, nil, evaluationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("evaluation %s not found", evaluationID)
	}

	catalog, err := s.catalog.Resolve(ctx, rec.RegulationCode)
	if apperrors.Is(err, apperrors.ErrRegulationNotFound) {
		s.log.Warn("amending evaluation of unknown regulation", "evaluation_id", evaluationID, "regulation", rec.RegulationCode)
		catalog, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	answer := repos.EvaluationAnswer{
		Key:     key,
		Value:   strings.TrimSpace(in.Value),
		Comment: strings.TrimSpace(in.Comment),
	}
	if ctl, ok := indexCatalog(catalog)[key]; ok {
		answer.ArticleCode = ctl.ArticleCode
	}

	if err := s.store.Prepare(ctx); err != nil {
		return nil, err
	}

	var stored []repos.EvaluationAnswer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.UpsertAnswer(ctx, tx, evaluationID, answer, s.now().UTC()); err != nil {
			return err
		}
		var err error
		stored, err = s.store.Answers(ctx, tx, evaluationID)
		return err
	})
	if err != nil {
		return nil, s.writeFailure(ctx, "answer", err)
	}

	report := buildReport(catalog, stored)
	return &report, nil
}

func (s *evaluationService) Preview(ctx context.Context, regulationCode string, in map[string]AnswerInput) (*Report, error) {
	catalog, err := s.catalog.Resolve(ctx, regulationCode)
	if err != nil {
		return nil, err
	}
	report := buildReport(catalog, NormalizeAnswers(in))
	return &report, nil
}

// writeFailure keeps schema errors visible and hides every other
// transactional failure behind a PersistenceError.
func (s *evaluationService) writeFailure(ctx context.Context, op string, err error) error {
	if apperrors.Is(err, apperrors.ErrSchema) {
		return err
	}
	s.log.Error("transaction rolled back", append(ctxutil.LogFields(ctx), "op", op, "error", err)...)
	return apperrors.Persistence(op, err)
}

func indexCatalog(catalog []CatalogControl) map[string]CatalogControl {
	out := make(map[string]CatalogControl, len(catalog))
	for _, c := range catalog {
		out[c.Key] = c
	}
	return out
}

// buildReport scores the stored answers and lists every catalog control
// whose answer is not exactly "true", including controls never answered.
// Comments follow catalog order, then keys unknown to the catalog.
func buildReport(catalog []CatalogControl, answers []repos.EvaluationAnswer) Report {
	byKey := make(map[string]repos.EvaluationAnswer, len(answers))
	values := make([]string, 0, len(answers))
	for _, a := range answers {
		byKey[a.Key] = a
		values = append(values, a.Value)
	}
	score := ScoreValues(values)

	report := Report{
		Percentage:     score.Percentage,
		Level:          score.Level,
		NonCompliances: []NonCompliance{},
		Comments:       []AnswerComment{},
	}
	seen := make(map[string]bool, len(catalog))
	for _, ctl := range catalog {
		seen[ctl.Key] = true
		a, answered := byKey[ctl.Key]
		if !answered || strings.TrimSpace(a.Value) != AnswerTrue {
			report.NonCompliances = append(report.NonCompliances, NonCompliance{
				Control:        ctl.Question,
				Recommendation: ctl.Recommendation,
				ArticleCode:    ctl.ArticleCode,
			})
		}
		if answered && a.Comment != "" {
			report.Comments = append(report.Comments, AnswerComment{ArticleCode: ctl.ArticleCode, Comment: a.Comment})
		}
	}
	for _, a := range answers {
		if seen[a.Key] || a.Comment == "" {
			continue
		}
		report.Comments = append(report.Comments, AnswerComment{ArticleCode: a.ArticleCode, Comment: a.Comment})
	}
	return report
}
