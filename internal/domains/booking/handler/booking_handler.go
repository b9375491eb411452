package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/service"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/middleware"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/response"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// BOOKING HANDLER
// =====================================================

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Create handles POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidation, "validation failed", err)
		return
	}
	if req.UserID != uid {
		response.Forbidden(c, "cannot create a booking for another user")
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	resp := model.BookingResponseFor(booking, uid, shared.RoleUser)
	response.Success(c, http.StatusCreated, resp)
}

// Get handles GET /bookings/:id.
func (h *BookingHandler) Get(c *gin.Context) {
	uid, role, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	resp, err := h.bookingService.Get(c.Request.Context(), id, uid, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Pay handles POST /bookings/:id/pay.
func (h *BookingHandler) Pay(c *gin.Context) {
	uid, role, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	resp, err := h.bookingService.Pay(c.Request.Context(), id, uid, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// Accept handles POST /bookings/:id/accept.
func (h *BookingHandler) Accept(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Accept(c.Request.Context(), id, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.AcceptResponse{Status: booking.Status})
}

// Travel handles POST /bookings/:id/travel.
func (h *BookingHandler) Travel(c *gin.Context) {
	h.providerTransition(c, h.bookingService.Travel)
}

// Arrived handles POST /bookings/:id/arrived.
func (h *BookingHandler) Arrived(c *gin.Context) {
	h.providerTransition(c, h.bookingService.Arrived)
}

// Start handles POST /bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidation, "validation failed", err)
		return
	}

	booking, err := h.bookingService.Start(c.Request.Context(), id, uid, req.OTP)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, shared.RoleProvider))
}

// Complete handles POST /bookings/:id/complete.
func (h *BookingHandler) Complete(c *gin.Context) {
	h.providerTransition(c, h.bookingService.Complete)
}

// ProviderComplete handles POST /bookings/:id/provider-complete.
func (h *BookingHandler) ProviderComplete(c *gin.Context) {
	h.providerTransition(c, h.bookingService.ProviderComplete)
}

// ConfirmComplete handles POST /bookings/:id/confirm-complete.
func (h *BookingHandler) ConfirmComplete(c *gin.Context) {
	uid, role, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.ConfirmComplete(c.Request.Context(), id, uid, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, role))
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	uid, role, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), id, uid, role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, role))
}

// ProviderCancel handles POST /bookings/:id/provider_cancel.
func (h *BookingHandler) ProviderCancel(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.ProviderCancel(c.Request.Context(), id, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.AcceptResponse{Status: booking.Status})
}

// Issue handles POST /bookings/:id/issue.
func (h *BookingHandler) Issue(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidation, "validation failed", err)
		return
	}

	booking, err := h.bookingService.Issue(c.Request.Context(), id, uid, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, shared.RoleUser))
}

// ResolveReview handles POST /admin/bookings/:id/review.
func (h *BookingHandler) ResolveReview(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	var req model.ResolveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.CodeValidation, "validation failed", err)
		return
	}

	booking, err := h.bookingService.ResolveReview(c.Request.Context(), id, uid, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, shared.RoleAdmin))
}

// ListMine handles GET /bookings.
func (h *BookingHandler) ListMine(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	q, ok := h.listQuery(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListMine(c.Request.Context(), uid, q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, bookings, &response.Meta{Limit: q.Limit, Offset: q.Offset})
}

// ListClaimed handles GET /bookings/claimed.
func (h *BookingHandler) ListClaimed(c *gin.Context) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	q, ok := h.listQuery(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListClaimed(c.Request.Context(), uid, q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, bookings, &response.Meta{Limit: q.Limit, Offset: q.Offset})
}

// Sweep handles POST /admin/sweep.
func (h *BookingHandler) Sweep(c *gin.Context) {
	swept, err := h.bookingService.SweepExpired(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.SweepResponse{Swept: swept})
}

// =====================================================
// HELPERS
// =====================================================

// providerTransition runs one body-less provider action and renders the
// booking as the provider sees it.
func (h *BookingHandler) providerTransition(
	c *gin.Context,
	op func(ctx context.Context, id uuid.UUID, uid string) (*model.Booking, error),
) {
	uid, _, ok := middleware.Principal(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := h.bookingID(c)
	if !ok {
		return
	}

	booking, err := op(c.Request.Context(), id, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.BookingResponseFor(booking, uid, shared.RoleProvider))
}

func (h *BookingHandler) bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.CodeValidation, "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) listQuery(c *gin.Context) (model.ListQuery, bool) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	q := model.ListQuery{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}
	q.Normalize()
	if err := q.Validate(); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, model.CodeValidation, "invalid status filter")
		return q, false
	}
	return q, true
}

// writeError maps domain errors to HTTP status codes.
func (h *BookingHandler) writeError(c *gin.Context, err error) {
	var bookingErr *model.BookingError
	if errors.As(err, &bookingErr) {
		switch bookingErr.Code {
		case model.CodeCaptureFailed:
			response.ErrorResponse(c, http.StatusConflict, bookingErr.Code, bookingErr.Message)
		case model.CodeBookingNotFound:
			response.ErrorResponse(c, http.StatusNotFound, bookingErr.Code, bookingErr.Message)
		case model.CodeForbidden:
			response.ErrorResponse(c, http.StatusForbidden, bookingErr.Code, bookingErr.Message)
		default:
			response.ErrorResponse(c, http.StatusBadRequest, bookingErr.Code, bookingErr.Message)
		}
		return
	}
	if errors.Is(err, model.ErrBookingNotFound) {
		response.NotFound(c, "booking not found")
		return
	}

	logger.Error("booking operation failed", err)
	response.InternalServerError(c, "internal error")
}
