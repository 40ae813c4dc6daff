package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lawcomply/lawcomply-backend/internal/http/response"
	"github.com/lawcomply/lawcomply-backend/internal/services"
)

type ControlHandler struct {
	catalog services.CatalogService
}

func NewControlHandler(catalog services.CatalogService) *ControlHandler {
	return &ControlHandler{catalog: catalog}
}

// GET /controls/:regulationCode
func (h *ControlHandler) ByCode(c *gin.Context) {
	controls, err := h.catalog.Resolve(c.Request.Context(), c.Param("regulationCode"))
	if err != nil {
		response.RespondAPIError(c, err, "list_controls_failed")
		return
	}
	response.RespondOK(c, controls)
}

// GET /controls/by-regulation/:id
func (h *ControlHandler) ByRegulationID(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err, "list_controls_failed")
		return
	}
	controls, err := h.catalog.ByRegulationID(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err, "list_controls_failed")
		return
	}
	if controls == nil {
		controls = []services.CatalogControl{}
	}
	response.RespondOK(c, controls)
}
