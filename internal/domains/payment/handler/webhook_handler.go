package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/model"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/service"
	"github.com/AfroSamurai-hub/OzzServe/internal/shared/response"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// WEBHOOK HANDLER
// =====================================================

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Handle processes POST /webhooks/:provider deliveries.
//
// Duplicate deliveries are a 200 with {"status": "DUPLICATE"} so the
// provider stops retrying; a handler failure is a 500 so it retries.
func (h *WebhookHandler) Handle(c *gin.Context) {
	provider := strings.ToUpper(c.Param("provider"))
	if provider != model.ProviderStripe {
		response.NotFound(c, "unknown webhook provider")
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "unreadable payload")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.webhookService.VerifySignature(payload, signature); err != nil {
		logger.Warn("webhook signature rejected", map[string]interface{}{
			"provider": provider,
		})
		response.ErrorResponse(c, http.StatusUnauthorized, model.CodeInvalidSignature, "invalid webhook signature")
		return
	}

	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.ID == "" {
		response.ErrorResponse(c, http.StatusBadRequest, model.CodeMissingEventID, "payload is missing an event id")
		return
	}

	outcome, err := h.webhookService.ProcessStripeEvent(c.Request.Context(), envelope.ID, payload)
	if err != nil {
		var paymentErr *model.PaymentError
		if errors.As(err, &paymentErr) && paymentErr.Code == model.CodeMissingEventID {
			response.ErrorResponse(c, http.StatusBadRequest, paymentErr.Code, paymentErr.Message)
			return
		}
		logger.Error("webhook processing failed", err)
		response.InternalServerError(c, "webhook processing failed")
		return
	}

	response.Success(c, http.StatusOK, model.WebhookResponse{Status: outcome})
}
