package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/service"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/response"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles GET /services. Public, no auth.
func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.catalogService.ListServices(c.Request.Context())
	if err != nil {
		logger.Error("failed to list services", err)
		response.InternalServerError(c, "failed to list services")
		return
	}
	response.Success(c, http.StatusOK, services)
}
