package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/http/response"
	apperrors "github.com/lawcomply/lawcomply-backend/internal/pkg/errors"
	"github.com/lawcomply/lawcomply-backend/internal/platform/logger"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

const maxImportBytes = 10 << 20

type AdminHandlerDeps struct {
	Log     *logger.Logger
	Admin   services.AdminService
	Imports services.ArticleImportService
}

type AdminHandler struct {
	log     *logger.Logger
	admin   services.AdminService
	imports services.ArticleImportService
}

func NewAdminHandler(deps AdminHandlerDeps) *AdminHandler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{
		log:     log.With("handler", "AdminHandler"),
		admin:   deps.Admin,
		imports: deps.Imports,
	}
}

// GET /admin/regulations
func (h *AdminHandler) ListRegulations(c *gin.Context) {
	regs, err := h.admin.ListRegulations(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "list_regulations_failed")
		return
	}
	if regs == nil {
		regs = []*compliance.Regulation{}
	}
	response.RespondOK(c, regs)
}

// POST /admin/regulations
// body: { "code": "GDPR", "name": "...", "version": "2016/679", "sourceUrl": "https://..." }
func (h *AdminHandler) CreateRegulation(c *gin.Context) {
	var req services.CreateRegulationInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "create_regulation_failed")
		return
	}
	reg, err := h.admin.CreateRegulation(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_regulation_failed")
		return
	}
	response.RespondCreated(c, reg)
}

// PATCH /admin/regulations/:id/toggle
func (h *AdminHandler) ToggleRegulation(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "toggle_regulation_failed")
		return
	}
	reg, err := h.admin.ToggleRegulation(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "toggle_regulation_failed")
		return
	}
	response.RespondOK(c, reg)
}

// GET /admin/regulations/:id/articles
func (h *AdminHandler) ListArticles(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "list_articles_failed")
		return
	}
	arts, err := h.admin.ListArticles(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "list_articles_failed")
		return
	}
	if arts == nil {
		arts = []*compliance.Article{}
	}
	response.RespondOK(c, arts)
}

// POST /admin/articles
func (h *AdminHandler) CreateArticle(c *gin.Context) {
	var req services.CreateArticleInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "create_article_failed")
		return
	}
	art, err := h.admin.CreateArticle(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_article_failed")
		return
	}
	response.RespondCreated(c, art)
}

// PATCH /admin/articles/:id/toggle
func (h *AdminHandler) ToggleArticle(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "toggle_article_failed")
		return
	}
	art, err := h.admin.ToggleArticle(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "toggle_article_failed")
		return
	}
	response.RespondOK(c, art)
}

// POST /admin/controls
func (h *AdminHandler) CreateControl(c *gin.Context) {
	var req services.CreateControlInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "create_control_failed")
		return
	}
	ctl, err := h.admin.CreateControl(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_control_failed")
		return
	}
	response.RespondCreated(c, ctl)
}

// GET /admin/companies
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	companies, err := h.admin.ListCompanies(c.Request.Context(), false)
	if err != nil {
		response.RespondAPIError(c, err, "list_companies_failed")
		return
	}
	if companies == nil {
		companies = []*compliance.Company{}
	}
	response.RespondOK(c, companies)
}

// POST /admin/companies
func (h *AdminHandler) CreateCompany(c *gin.Context) {
	var req services.CreateCompanyInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err, "create_company_failed")
		return
	}
	co, err := h.admin.CreateCompany(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "create_company_failed")
		return
	}
	response.RespondCreated(c, co)
}

// PATCH /admin/companies/:id/toggle
func (h *AdminHandler) ToggleCompany(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "toggle_company_failed")
		return
	}
	co, err := h.admin.ToggleCompany(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "toggle_company_failed")
		return
	}
	response.RespondOK(c, co)
}

// DELETE /admin/companies/:id
func (h *AdminHandler) DeleteCompany(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "delete_company_failed")
		return
	}
	if err := h.admin.DeleteCompany(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err, "delete_company_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /admin/regulations/:id/import
// body: extracted plain text, either raw or as multipart field "file".
func (h *AdminHandler) ImportArticles(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "import_failed")
		return
	}
	in, err := readImport(c)
	if err != nil {
		response.RespondAPIError(c, err, "import_failed")
		return
	}
	in.RegulationID = id
	res, err := h.imports.Import(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err, "import_failed")
		return
	}
	h.log.Info("articles imported", "regulation_id", id, "parsed", res.ParsedCount)
	response.RespondCreated(c, res)
}

func readImport(c *gin.Context) (services.ImportInput, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)

	var (
		in  services.ImportInput
		raw []byte
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			return in, apperrors.Validation("multipart field \"file\" is required")
		}
		f, ferr := fh.Open()
		if ferr != nil {
			return in, apperrors.Validation("cannot open uploaded file")
		}
		defer f.Close()
		raw, err = io.ReadAll(f)
		in.FileName = filepath.Base(fh.Filename)
		in.MimeType = fh.Header.Get("Content-Type")
	} else {
		raw, err = io.ReadAll(c.Request.Body)
		in.FileName = strings.TrimSpace(c.Query("fileName"))
		in.MimeType = c.ContentType()
	}
	if err != nil {
		return in, apperrors.Validation("cannot read upload: %v", err)
	}
	if !utf8.Valid(raw) {
		return in, apperrors.Validation("upload must be UTF-8 text")
	}
	if in.FileName == "" {
		in.FileName = "upload.txt"
	}
	if in.MimeType == "" {
		in.MimeType = "text/plain"
	}
	in.Text = string(raw)
	return in, nil
}
