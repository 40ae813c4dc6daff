package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/db"
	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type CreateRegulationInput struct {
	Code      string  `json:"code" validate:"required,max=32"`
	Name      string  `json:"name" validate:"required,max=200"`
	Version   *string `json:"version" validate:"omitempty,max=64"`
	SourceURL *string `json:"sourceUrl" validate:"omitempty,url"`
}

type CreateArticleInput struct {
	RegulationID uuid.UUID `json:"regulationId" validate:"required"`
	Code         string    `json:"code" validate:"max=64"`
	Title        *string   `json:"title" validate:"omitempty,max=300"`
	Body         string    `json:"body" validate:"required"`
	SortIndex    *int      `json:"sortIndex"`
}

type CreateControlInput struct {
	RegulationID   uuid.UUID  `json:"regulationId" validate:"required"`
	ArticleID      *uuid.UUID `json:"articleId"`
	Key            string     `json:"key" validate:"max=64"`
	Question       string     `json:"question" validate:"required"`
	Recommendation *string    `json:"recommendation"`
	Weight         *float64   `json:"weight" validate:"omitempty,gt=0"`
}

type CreateCompanyInput struct {
	Name    string  `json:"name" validate:"required,max=200"`
	TaxID   *string `json:"taxId" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=300"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
}

type SeedResult struct {
	Regulation      *compliance.Regulation `json:"regulation"`
	ArticlesCreated int                    `json:"articlesCreated"`
	ControlsCreated int                    `json:"controlsCreated"`
}

// AdminService manages the persisted catalog and the company registry.
// Every change that can alter a regulation's catalog invalidates its cache
// entry.
type AdminService interface {
	ListRegulations(ctx context.Context) ([]*compliance.Regulation, error)
	CreateRegulation(ctx context.Context, in CreateRegulationInput) (*compliance.Regulation, error)
	ToggleRegulation(ctx context.Context, id uuid.UUID) (*compliance.Regulation, error)

	ListArticles(ctx context.Context, regulationID uuid.UUID) ([]*compliance.Article, error)
	CreateArticle(ctx context.Context, in CreateArticleInput) (*compliance.Article, error)
	ToggleArticle(ctx context.Context, id uuid.UUID) (*compliance.Article, error)

	CreateControl(ctx context.Context, in CreateControlInput) (*compliance.Control, error)

	ListCompanies(ctx context.Context, activeOnly bool) ([]*compliance.Company, error)
	CreateCompany(ctx context.Context, in CreateCompanyInput) (*compliance.Company, error)
	ToggleCompany(ctx context.Context, id uuid.UUID) (*compliance.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error

	// SeedCatalog persists the built-in catalog of code. Existing controls
	// are kept; only missing articles and controls are added.
	SeedCatalog(ctx context.Context, code string) (*SeedResult, error)
}

type adminService struct {
	db          *gorm.DB
	log         *logger.Logger
	validate    *validator.Validate
	regulations repos.RegulationRepo
	articles    repos.ArticleRepo
	controls    repos.ControlRepo
	companies   repos.CompanyRepo
	catalog     CatalogService
}

func NewAdminService(
	db *gorm.DB,
	log *logger.Logger,
	regulations repos.RegulationRepo,
	articles repos.ArticleRepo,
	controls repos.ControlRepo,
	companies repos.CompanyRepo,
	catalog CatalogService,
) AdminService {
	return &adminService{
		db:          db,
		log:         log.With("service", "AdminService"),
		validate:    NewValidator(),
		regulations: regulations,
		articles:    articles,
		controls:    controls,
		companies:   companies,
		catalog:     catalog,
	}
}

func (s *adminService) ListRegulations(ctx context.Context) ([]*compliance.Regulation, error) {
	return s.regulations.List(ctx, nil)
}

func (s *adminService) CreateRegulation(ctx context.Context, in CreateRegulationInput) (*compliance.Regulation, error) {
	in.Code = NormalizeRegulationCode(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	reg, err := s.regulations.Create(ctx, nil, &compliance.Regulation{
		Code:      in.Code,
		Name:      in.Name,
		Version:   trimmedOrNil(in.Version),
		SourceURL: trimmedOrNil(in.SourceURL),
		IsActive:  true,
	})
	if db.IsUniqueViolation(err) {
		return nil, apperrors.Conflict("regulation %s already exists", in.Code)
	}
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, reg.Code)
	return reg, nil
}

func (s *adminService) ToggleRegulation(ctx context.Context, id uuid.UUID) (*compliance.Regulation, error) {
	reg, err := s.regulations.ToggleActive(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.NotFound("regulation %s not found", id)
	}
	s.catalog.Invalidate(ctx, reg.Code)
	return reg, nil
}

func (s *adminService) requireRegulation(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*compliance.Regulation, error) {
	reg, err := s.regulations.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperrors.NotFound("regulation %s not found", id)
	}
	return reg, nil
}

func (s *adminService) ListArticles(ctx context.Context, regulationID uuid.UUID) ([]*compliance.Article, error) {
	if _, err := s.requireRegulation(ctx, nil, regulationID); err != nil {
		return nil, err
	}
	return s.articles.ListByRegulation(ctx, nil, regulationID)
}

func (s *adminService) CreateArticle(ctx context.Context, in CreateArticleInput) (*compliance.Article, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Body = strings.TrimSpace(in.Body)
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	reg, err := s.requireRegulation(ctx, nil, in.RegulationID)
	if err != nil {
		return nil, err
	}

	var created *compliance.Article
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sortIndex := in.SortIndex
		if sortIndex == nil {
			next, err := s.articles.NextSortIndex(ctx, tx, reg.ID)
			if err != nil {
				return err
			}
			sortIndex = &next
		}
		rows, err := s.articles.Create(ctx, tx, []*compliance.Article{{
			RegulationID: reg.ID,
			Code:         in.Code,
			Title:        trimmedOrNil(in.Title),
			Body:         in.Body,
			SortIndex:    sortIndex,
			IsEnabled:    true,
		}})
		if err != nil {
			return err
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, reg.Code)
	return created, nil
}

func (s *adminService) ToggleArticle(ctx context.Context, id uuid.UUID) (*compliance.Article, error) {
	art, err := s.articles.ToggleEnabled(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, apperrors.NotFound("article %s not found", id)
	}
	if reg, err := s.regulations.GetByID(ctx, nil, art.RegulationID); err == nil && reg != nil {
		s.catalog.Invalidate(ctx, reg.Code)
	}
	return art, nil
}

func (s *adminService) CreateControl(ctx context.Context, in CreateControlInput) (*compliance.Control, error) {
	in.Key = strings.TrimSpace(in.Key)
	in.Question = strings.TrimSpace(in.Question)
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	reg, err := s.requireRegulation(ctx, nil, in.RegulationID)
	if err != nil {
		return nil, err
	}
	if in.ArticleID != nil {
		art, err := s.articles.GetByID(ctx, nil, *in.ArticleID)
		if err != nil {
			return nil, err
		}
		if art == nil || art.RegulationID != reg.ID {
			return nil, apperrors.Validation("articleId does not belong to regulation %s", reg.Code)
		}
	}

	weight := 1.0
	if in.Weight != nil {
		weight = *in.Weight
	}

	var created *compliance.Control
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := in.Key
		if key == "" {
			generated, err := s.nextControlKey(ctx, tx, reg)
			if err != nil {
				return err
			}
			key = generated
		}
		rows, err := s.controls.Create(ctx, tx, []*compliance.Control{{
			RegulationID:   reg.ID,
			ArticleID:      in.ArticleID,
			Key:            key,
			Question:       in.Question,
			Recommendation: trimmedOrNil(in.Recommendation),
			Weight:         weight,
			IsActive:       true,
		}})
		if err != nil {
			return err
		}
		created = rows[0]
		return nil
	})
	if db.IsUniqueViolation(err) {
		return nil, apperrors.Conflict("control key %q already exists in %s", in.Key, reg.Code)
	}
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, reg.Code)
	return created, nil
}

// nextControlKey returns CODE-NN with the first free number after the
// current control count.
func (s *adminService) nextControlKey(ctx context.Context, tx *gorm.DB, reg *compliance.Regulation) (string, error) {
	n, err := s.controls.CountByRegulation(ctx, tx, reg.ID)
	if err != nil {
		return "", err
	}
	for i := n + 1; ; i++ {
		key := fmt.Sprintf("%s-%02d", reg.Code, i)
		exists, err := s.controls.KeyExists(ctx, tx, reg.ID, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}
}

func (s *adminService) ListCompanies(ctx context.Context, activeOnly bool) ([]*compliance.Company, error) {
	return s.companies.List(ctx, nil, activeOnly)
}

func (s *adminService) CreateCompany(ctx context.Context, in CreateCompanyInput) (*compliance.Company, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(s.validate, in); err != nil {
		return nil, err
	}
	return s.companies.Create(ctx, nil, &compliance.Company{
		Name:     in.Name,
		TaxID:    trimmedOrNil(in.TaxID),
		Address:  trimmedOrNil(in.Address),
		Phone:    trimmedOrNil(in.Phone),
		IsActive: true,
	})
}

func (s *adminService) ToggleCompany(ctx context.Context, id uuid.UUID) (*compliance.Company, error) {
	c, err := s.companies.ToggleActive(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperrors.NotFound("company %s not found", id)
	}
	return c, nil
}

func (s *adminService) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.companies.Delete(ctx, nil, id)
	if db.IsForeignKeyViolation(err) {
		return apperrors.Conflict("company %s is referenced by evaluations", id)
	}
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("company %s not found", id)
	}
	return nil
}

func (s *adminService) SeedCatalog(ctx context.Context, code string) (*SeedResult, error) {
	builtin, ok := s.catalog.Builtin(code)
	if !ok {
		return nil, apperrors.ErrRegulationNotFound
	}

	res := &SeedResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reg, err := s.regulations.GetByCode(ctx, tx, builtin.Code)
		if err != nil {
			return err
		}
		if reg == nil {
			reg, err = s.regulations.Create(ctx, tx, &compliance.Regulation{
				Code:      builtin.Code,
				Name:      builtin.Name,
				Version:   trimmedOrNil(&builtin.Version),
				SourceURL: trimmedOrNil(&builtin.Source),
				IsActive:  true,
			})
			if err != nil {
				return err
			}
		}
		res.Regulation = reg

		existing, err := s.articles.ListByRegulation(ctx, tx, reg.ID)
		if err != nil {
			return err
		}
		articleIDs := make(map[string]uuid.UUID, len(existing))
		for _, a := range existing {
			articleIDs[a.Code] = a.ID
		}
		next, err := s.articles.NextSortIndex(ctx, tx, reg.ID)
		if err != nil {
			return err
		}

		for _, ctl := range builtin.Controls {
			var articleID *uuid.UUID
			if ctl.ArticleCode != "" {
				id, ok := articleIDs[ctl.ArticleCode]
				if !ok {
					idx := next
					next++
					rows, err := s.articles.Create(ctx, tx, []*compliance.Article{{
						RegulationID: reg.ID,
						Code:         ctl.ArticleCode,
						Title:        trimmedOrNil(&ctl.ArticleTitle),
						Body:         ctl.ArticleTitle,
						SortIndex:    &idx,
						IsEnabled:    true,
					}})
					if err != nil {
						return err
					}
					id = rows[0].ID
					articleIDs[ctl.ArticleCode] = id
					res.ArticlesCreated++
				}
				articleID = &id
			}

			exists, err := s.controls.KeyExists(ctx, tx, reg.ID, ctl.Key)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if _, err := s.controls.Create(ctx, tx, []*compliance.Control{{
				RegulationID:   reg.ID,
				ArticleID:      articleID,
				Key:            ctl.Key,
				Question:       ctl.Question,
				Recommendation: trimmedOrNil(&ctl.Recommendation),
				Weight:         ctl.Weight,
				IsActive:       true,
			}}); err != nil {
				return err
			}
			res.ControlsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.catalog.Invalidate(ctx, builtin.Code)
	s.log.Info("catalog seeded", "code", builtin.Code, "articles", res.ArticlesCreated, "controls", res.ControlsCreated)
	return res, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
