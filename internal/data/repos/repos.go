package repos

import (
	"gorm.io/gorm"

	"github.com/lawcomply/lawcomply-backend/internal/data/repos/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/data/repos/evaluation"
	"github.com/lawcomply/lawcomply-backend/internal/data/repos/user"
	"github.com/lawcomply/lawcomply-backend/internal/data/schema"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type RegulationRepo = compliance.RegulationRepo
type ArticleRepo = compliance.ArticleRepo
type ControlRepo = compliance.ControlRepo
type CompanyRepo = compliance.CompanyRepo
type RegulationSourceRepo = compliance.RegulationSourceRepo

type CatalogRepo = compliance.CatalogRepo
type CatalogRow = compliance.CatalogRow

type EvaluationStore = evaluation.Store
type EvaluationRecord = evaluation.Record
type EvaluationAnswer = evaluation.Answer

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewRegulationRepo(db *gorm.DB, log *logger.Logger) RegulationRepo {
	return compliance.NewRegulationRepo(db, log)
}

func NewArticleRepo(db *gorm.DB, log *logger.Logger) ArticleRepo {
	return compliance.NewArticleRepo(db, log)
}

func NewControlRepo(db *gorm.DB, log *logger.Logger) ControlRepo {
	return compliance.NewControlRepo(db, log)
}

func NewCompanyRepo(db *gorm.DB, log *logger.Logger) CompanyRepo {
	return compliance.NewCompanyRepo(db, log)
}

func NewRegulationSourceRepo(db *gorm.DB, log *logger.Logger) RegulationSourceRepo {
	return compliance.NewRegulationSourceRepo(db, log)
}

func NewCatalogRepo(db *gorm.DB, in *schema.Introspector, log *logger.Logger) CatalogRepo {
	return compliance.NewCatalogRepo(db, in, log)
}

func NewEvaluationStore(db *gorm.DB, in *schema.Introspector, log *logger.Logger) EvaluationStore {
	return evaluation.NewStore(db, in, log)
}
