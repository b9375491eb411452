package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/service"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/middleware"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/response"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

type ProviderHandler struct {
	providerService service.ProviderService
}

func NewProviderHandler(providerService service.ProviderService) *ProviderHandler {
	return &ProviderHandler{providerService: providerService}
}

// Register handles POST /providers/me.
func (h *ProviderHandler) Register(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.RegisterProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	p, err := h.providerService.Register(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyRegistered) {
			response.Conflict(c, "provider profile already exists")
			return
		}
		logger.Error("provider registration failed", err)
		response.InternalServerError(c, "registration failed")
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// Me handles GET /providers/me.
func (h *ProviderHandler) Me(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	p, err := h.providerService.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, model.ErrProviderNotFound) {
			response.NotFound(c, "provider profile not found")
			return
		}
		logger.Error("provider lookup failed", err)
		response.InternalServerError(c, "lookup failed")
		return
	}
	response.Success(c, http.StatusOK, p)
}

// SetOnline handles PATCH /providers/me/online.
func (h *ProviderHandler) SetOnline(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if err := h.providerService.SetOnline(c.Request.Context(), uid, req.Online); err != nil {
		if errors.Is(err, model.ErrProviderNotFound) {
			response.NotFound(c, "provider profile not found")
			return
		}
		logger.Error("set online failed", err)
		response.InternalServerError(c, "update failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"online": req.Online})
}

// UpdateLocation handles PUT /providers/me/location.
func (h *ProviderHandler) UpdateLocation(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", err)
		return
	}

	if err := h.providerService.UpdateLocation(c.Request.Context(), uid, req.Latitude, req.Longitude); err != nil {
		if errors.Is(err, model.ErrProviderNotFound) {
			response.NotFound(c, "provider profile not found")
			return
		}
		logger.Error("location update failed", err)
		response.InternalServerError(c, "update failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
