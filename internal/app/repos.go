package app

import (
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type Repos struct {
	User             repos.UserRepo
	Regulation       repos.RegulationRepo
	Article          repos.ArticleRepo
	Control          repos.ControlRepo
	Company          repos.CompanyRepo
	RegulationSource repos.RegulationSourceRepo
	Catalog          repos.CatalogRepo
	Evaluation       repos.EvaluationStore
}

func wireRepos(db *gorm.DB, in *schema.Introspector, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		Regulation:       repos.NewRegulationRepo(db, log),
		Article:          repos.NewArticleRepo(db, log),
		Control:          repos.NewControlRepo(db, log),
		Company:          repos.NewCompanyRepo(db, log),
		RegulationSource: repos.NewRegulationSourceRepo(db, log),
		Catalog:          repos.NewCatalogRepo(db, in, log),
		Evaluation:       repos.NewEvaluationStore(db, in, log),
	}
}
