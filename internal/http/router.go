package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/lawcomply/lawcomply-backend/internal/http/handlers"
	httpMW "github.com/lawcomply/lawcomply-backend/internal/http/middleware"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	LoginLimiter      *httpMW.ClientRateLimiter
	EvaluationHandler *httpH.EvaluationHandler
	ControlHandler    *httpH.ControlHandler
	CompanyHandler    *httpH.CompanyHandler
	AdminHandler      *httpH.AdminHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "lawcomply"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		auth := r.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		if cfg.LoginLimiter != nil {
			auth.POST("/login", cfg.LoginLimiter.Middleware(), cfg.AuthHandler.Login)
		} else {
			auth.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := r.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Evaluations
		if cfg.EvaluationHandler != nil {
			protected.POST("/evaluations", cfg.EvaluationHandler.Create)
			protected.POST("/evaluations/preview", cfg.EvaluationHandler.Preview)
			protected.GET("/evaluations", cfg.EvaluationHandler.List)
			protected.GET("/evaluations/:id", cfg.EvaluationHandler.Get)
			protected.GET("/evaluations/:id/report.png", cfg.EvaluationHandler.ReportPNG)
			protected.PATCH("/evaluations/:id/answers/:controlKey", cfg.EvaluationHandler.Amend)
		}

		// Catalog
		if cfg.ControlHandler != nil {
			protected.GET("/controls/by-regulation/:id", cfg.ControlHandler.ByRegulationID)
			protected.GET("/controls/:regulationCode", cfg.ControlHandler.ByCode)
		}

		if cfg.CompanyHandler != nil {
			protected.GET("/companies", cfg.CompanyHandler.ListActive)
		}
	}

	admin := protected.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.AdminHandler != nil {
		admin.GET("/regulations", cfg.AdminHandler.ListRegulations)
		admin.POST("/regulations", cfg.AdminHandler.CreateRegulation)
		admin.PATCH("/regulations/:id/toggle", cfg.AdminHandler.ToggleRegulation)
		admin.GET("/regulations/:id/articles", cfg.AdminHandler.ListArticles)
		admin.POST("/regulations/:id/import", cfg.AdminHandler.ImportArticles)

		admin.POST("/articles", cfg.AdminHandler.CreateArticle)
		admin.PATCH("/articles/:id/toggle", cfg.AdminHandler.ToggleArticle)

		admin.POST("/controls", cfg.AdminHandler.CreateControl)

		admin.GET("/companies", cfg.AdminHandler.ListCompanies)
		admin.POST("/companies", cfg.AdminHandler.CreateCompany)
		admin.PATCH("/companies/:id/toggle", cfg.AdminHandler.ToggleCompany)
		admin.DELETE("/companies/:id", cfg.AdminHandler.DeleteCompany)
	}

	return r
}
