package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/domain/compliance"
	"github.com/lawcomply/lawcomply-backend/internal/http/response"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

type CompanyHandler struct {
	admin services.AdminService
}

func NewCompanyHandler(admin services.AdminService) *CompanyHandler {
	return &CompanyHandler{admin: admin}
}

// GET /companies
func (h *CompanyHandler) ListActive(c *gin.Context) {
	companies, err := h.admin.ListCompanies(c.Request.Context(), true)
	if err != nil {
		response.RespondAPIError(c, err, "list_companies_failed")
		return
	}
	if companies == nil {
		companies = []*compliance.Company{}
	}
	response.RespondOK(c, companies)
}
