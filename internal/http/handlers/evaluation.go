package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/http/response"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

type EvaluationHandlerDeps struct {
	Log         *logger.Logger
	Evaluations services.EvaluationService
	Queries     services.EvaluationQueryService
	Reports     services.ReportService
}

type EvaluationHandler struct {
	log         *logger.Logger
	evaluations services.EvaluationService
	queries     services.EvaluationQueryService
	reports     services.ReportService
}

func NewEvaluationHandler(deps EvaluationHandlerDeps) *EvaluationHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &EvaluationHandler{
		log:         log.With("handler", "EvaluationHandler"),
		evaluations: deps.Evaluations,
		queries:     deps.Queries,
		reports:     deps.Reports,
	}
}

// POST /evaluations
// body: { "companyId": "...", "regulationCode": "GDPR", "answers": { "GDPR-01": { "value": "true", "comment": "" } } }
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req services.CreateEvaluationInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "create_evaluation_failed")
		return
	}
	res, err := h.evaluations.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_evaluation_failed")
		return
	}
	response.RespondCreated(c, res)
}

// POST /evaluations/preview
// body: { "regulationCode": "GDPR", "answers": { ... } }
func (h *EvaluationHandler) Preview(c *gin.Context) {
	var req struct {
		RegulationCode string                          `json:"regulationCode"`
		Answers        map[string]services.AnswerInput `json:"answers"`
	}
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "preview_failed")
		return
	}
	res, err := h.evaluations.Preview(c.Request.Context(), req.RegulationCode, req.Answers)
	if err != nil {
		response.RespondAPIError(c, err, "preview_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /evaluations
func (h *EvaluationHandler) List(c *gin.Context) {
	items, err := h.queries.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "list_evaluations_failed")
		return
	}
	if items == nil {
		items = []services.EvaluationSummary{}
	}
	response.RespondOK(c, gin.H{"items": items})
}

// GET /evaluations/:id
func (h *EvaluationHandler) Get(c *gin.Context) {
	detail, err := h.queries.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondAPIError(c, err, "get_evaluation_failed")
		return
	}
	response.RespondOK(c, detail)
}

// PATCH /evaluations/:id/answers/:controlKey
// body: { "value": "partial", "comment": "..." }
func (h *EvaluationHandler) Amend(c *gin.Context) {
	var req services.AnswerInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "amend_evaluation_failed")
		return
	}
	report, err := h.evaluations.Amend(c.Request.Context(), strings.TrimSpace(c.Param("id")), c.Param("controlKey"), req)
	if err != nil {
		response.RespondAPIError(c, err, "amend_evaluation_failed")
		return
	}
	response.RespondOK(c, report)
}

// GET /evaluations/:id/report.png
func (h *EvaluationHandler) ReportPNG(c *gin.Context) {
	if h.reports == nil {
		response.RespondError(c, http.StatusNotImplemented, "reports_disabled", nil)
		return
	}
	png, err := h.reports.RenderEvaluationPNG(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondAPIError(c, err, "render_report_failed")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
