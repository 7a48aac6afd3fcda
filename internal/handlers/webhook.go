// internal/handlers/webhook.go
package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storesync/internal/sync"
	"github.com/javajoker/storesync/internal/utils"
)

type WebhookHandler struct {
	orchestrator *sync.Orchestrator
}

func NewWebhookHandler(orchestrator *sync.Orchestrator) *WebhookHandler {
	return &WebhookHandler{
		orchestrator: orchestrator,
	}
}

type ProductWebhookRequest struct {
	Type      string `json:"type" validate:"required,oneof=created updated deleted archived"`
	ProductID string `json:"productId" validate:"required"`
}

type OrderWebhookRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type InvoiceWebhookRequest struct {
	InvoiceID string `json:"invoiceId" validate:"required"`
}

type ContactWebhookRequest struct {
	Type      string `json:"type" validate:"required,oneof=created updated tag-updated deleted archived"`
	ContactID string `json:"contactId" validate:"required"`
}

// POST /webhooks/products
func (h *WebhookHandler) ProductWebhook(c *gin.Context) {
	var req ProductWebhookRequest
	if !bindWebhook(c, &req) {
		return
	}

	summary, err := h.orchestrator.SyncProductEvent(c.Request.Context(), req.Type, req.ProductID)
	respondWithSummary(c, summary, err)
}

// POST /webhooks/orders
func (h *WebhookHandler) OrderWebhook(c *gin.Context) {
	var req OrderWebhookRequest
	if !bindWebhook(c, &req) {
		return
	}

	summary, err := h.orchestrator.SyncOrderEvent(c.Request.Context(), req.OrderID)
	respondWithSummary(c, summary, err)
}

// POST /webhooks/invoices
func (h *WebhookHandler) InvoiceWebhook(c *gin.Context) {
	var req InvoiceWebhookRequest
	if !bindWebhook(c, &req) {
		return
	}

	summary, err := h.orchestrator.SyncInvoiceEvent(c.Request.Context(), req.InvoiceID)
	respondWithSummary(c, summary, err)
}

// POST /webhooks/contacts
func (h *WebhookHandler) ContactWebhook(c *gin.Context) {
	var req ContactWebhookRequest
	if !bindWebhook(c, &req) {
		return
	}

	summary, err := h.orchestrator.SyncContactEvent(c.Request.Context(), req.Type, req.ContactID)
	respondWithSummary(c, summary, err)
}

// GET on any webhook path: handshake support. Echoes the challenge query
// parameter when present, else a static status payload.
func (h *WebhookHandler) VerifyWebhook(c *gin.Context) {
	if challenge := c.Query("challenge"); challenge != "" {
		c.JSON(200, gin.H{"challenge": challenge})
		return
	}
	c.JSON(200, gin.H{
		"status":  "ready",
		"service": "storesync",
	})
}

func bindWebhook(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, "Invalid webhook payload", err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// respondWithSummary maps a run to the caller-visible result. A run-fatal
// error (identity backend unreachable) is the only failure shape here;
// per-record problems are already folded into the summary counts.
func respondWithSummary(c *gin.Context, summary *sync.Summary, err error) {
	if err != nil {
		utils.BadGatewayResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, summaryMessage(summary), summary)
}

func summaryMessage(s *sync.Summary) string {
	return fmt.Sprintf("%d created, %d updated, %d deleted, %d skipped, %d errored",
		s.Created, s.Updated, s.Deleted, s.Skipped, s.Errored)
}
