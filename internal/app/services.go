package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Catalog    services.CatalogService
	Evaluation services.EvaluationService
	Query      services.EvaluationQueryService
	Admin      services.AdminService
	Import     services.ArticleImportService
	Report     services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	var cache services.CatalogCache
	if clients.CatalogCache != nil {
		cache = clients.CatalogCache
	}
	catalog, err := services.NewCatalogService(log, reposet.Catalog, cache)
	if err != nil {
		return Services{}, fmt.Errorf("init catalog service: %w", err)
	}
	query := services.NewEvaluationQueryService(log, reposet.Evaluation)
	report, err := services.NewReportService(log, query, catalog, cfg.ReportFontPath)
	if err != nil {
		return Services{}, fmt.Errorf("init report service: %w", err)
	}

	return Services{
		Auth:       services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.AdminEmails),
		Catalog:    catalog,
		Evaluation: services.NewEvaluationService(db, log, reposet.Evaluation, catalog),
		Query:      query,
		Admin: services.NewAdminService(db, log,
			reposet.Regulation, reposet.Article, reposet.Control, reposet.Company, catalog),
		Import: services.NewArticleImportService(db, log,
			reposet.Regulation, reposet.Article, reposet.RegulationSource, catalog),
		Report: report,
	}, nil
}
