package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type EvaluationSummary struct {
	ID             string     `json:"id"`
	CompanyName    string     `json:"companyName"`
	RegulationCode string     `json:"regulationCode"`
	StartedAt      time.Time  `json:"startedAt"`
	DueAt          *time.Time `json:"dueAt"`
	Percentage     int        `json:"percentage"`
	Level          string     `json:"level"`
}

type AnswerView struct {
	ControlKey  string `json:"controlKey"`
	Value       string `json:"value"`
	Comment     string `json:"comment"`
	ArticleCode string `json:"articleCode"`
}

type EvaluationDetail struct {
	EvaluationSummary
	CompanyID string       `json:"companyId"`
	Status    string       `json:"status"`
	Answers   []AnswerView `json:"answers"`
}

// EvaluationQueryService reads evaluations. Percentage and level are always
// recomputed from the answers currently stored.
type EvaluationQueryService interface {
	List(ctx context.Context) ([]EvaluationSummary, error)
	Get(ctx context.Context, evaluationID string) (*EvaluationDetail, error)
}

type evaluationQueryService struct {
	log   *logger.Logger
	store repos.EvaluationStore
}

func NewEvaluationQueryService(log *logger.Logger, store repos.EvaluationStore) EvaluationQueryService {
	return &evaluationQueryService{log: log.With("service", "EvaluationQueryService"), store: store}
}

func (s *evaluationQueryService) List(ctx context.Context) ([]EvaluationSummary, error) {
	recs, err := s.store.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	answers, err := s.store.AnswersFor(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	out := make([]EvaluationSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, summarize(r, answers[r.ID]))
	}
	return out, nil
}

func (s *evaluationQueryService) Get(ctx context.Context, evaluationID string) (*EvaluationDetail, error) {
	evaluationID = strings.TrimSpace(evaluationID)
	if evaluationID == "" {
		return nil, apperrors.NotFound("evaluation not found")
	}

	var (
		rec     *repos.EvaluationRecord
		answers []repos.EvaluationAnswer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = s.store.Get(gctx, nil, evaluationID)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = s.store.Answers(gctx, nil, evaluationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NotFound("evaluation %s not found", evaluationID)
	}

	views := make([]AnswerView, 0, len(answers))
	for _, a := range answers {
		views = append(views, AnswerView{ControlKey: a.Key, Value: a.Value, Comment: a.Comment, ArticleCode: a.ArticleCode})
	}
	return &EvaluationDetail{
		EvaluationSummary: summarize(*rec, answers),
		CompanyID:         rec.CompanyID,
		Status:            rec.Status,
		Answers:           views,
	}, nil
}

func summarize(r repos.EvaluationRecord, answers []repos.EvaluationAnswer) EvaluationSummary {
	values := make([]string, 0, len(answers))
	for _, a := range answers {
		values = append(values, a.Value)
	}
	score := ScoreValues(values)
	return EvaluationSummary{
		ID:             r.ID,
		CompanyName:    r.CompanyName,
		RegulationCode: r.RegulationCode,
		StartedAt:      r.StartedAt,
		DueAt:          r.DueAt,
		Percentage:     score.Percentage,
		Level:          score.Level,
	}
}
