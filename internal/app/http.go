package app

import (
	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/http"
	httpH "github.com/lawcomply/lawcomply-backend/internal/http/handlers"
	httpMW "github.com/lawcomply/lawcomply-backend/internal/http/middleware"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
)

type Middleware struct {
	Auth         *httpMW.AuthMiddleware
	LoginLimiter *httpMW.ClientRateLimiter
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Evaluation *httpH.EvaluationHandler
	Control    *httpH.ControlHandler
	Company    *httpH.CompanyHandler
	Admin      *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services, pinger httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(pinger),
		Auth:   httpH.NewAuthHandler(services.Auth),
		Evaluation: httpH.NewEvaluationHandler(httpH.EvaluationHandlerDeps{
			Log:         log,
			Evaluations: services.Evaluation,
			Queries:     services.Query,
			Reports:     services.Report,
		}),
		Control: httpH.NewControlHandler(services.Catalog),
		Company: httpH.NewCompanyHandler(services.Admin),
		Admin: httpH.NewAdminHandler(httpH.AdminHandlerDeps{
			Log:     log,
			Admin:   services.Admin,
			Imports: services.Import,
		}),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:         httpMW.NewAuthMiddleware(log, services.Auth),
		LoginLimiter: httpMW.NewClientRateLimiter(cfg.LoginRatePerMinute, cfg.LoginRateBurst),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.Otel.ServiceName,
		TracingEnabled:    cfg.Otel.Enabled,
		CORSOrigins:       cfg.CORSOrigins,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		AuthMiddleware:    middleware.Auth,
		LoginLimiter:      middleware.LoginLimiter,
		EvaluationHandler: handlers.Evaluation,
		ControlHandler:    handlers.Control,
		CompanyHandler:    handlers.Company,
		AdminHandler:      handlers.Admin,
	})
}
