package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/model"
	"github.com/lifeevents/les/internal/paystack"
	"github.com/lifeevents/les/internal/tribute"
)

// WebhookHandler receives provider-pushed charge notifications. This is
// the authoritative confirmation path; the verification endpoint covers
// the window before a delivery lands.
type WebhookHandler struct {
	secret    string
	ledger    *logic.LedgerLogic
	recon     *logic.ReconciliationLogic
	generator *tribute.Generator // nil when tribute generation is disabled
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(secret string, ledger *logic.LedgerLogic, recon *logic.ReconciliationLogic, generator *tribute.Generator) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		ledger:    ledger,
		recon:     recon,
		generator: generator,
	}
}

// HandlePaystack processes a Paystack event delivery. Every reachable
// path except signature failure and malformed payloads acknowledges with
// 2xx/4xx semantics the provider understands: 200 stops redelivery, 4xx
// is terminal, 500 asks for a retry.
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	if signature == "" {
		// Provider calls are otherwise trusted by network topology
		logger.Warn("Webhook received without signature header")
	} else if !paystack.VerifySignature(h.secret, body, signature) {
		logger.Error("Webhook signature mismatch, rejecting delivery")
		ErrorResponse(c, http.StatusUnauthorized, "invalid signature")
		return
	}

	var envelope paystack.WebhookEvent
	if err := json.Unmarshal(body, &envelope); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "malformed payload")
		return
	}

	if envelope.Event != paystack.EventChargeSuccess {
		// Acknowledge so the provider does not retry
		logger.Debug("Ignoring webhook event type %s", envelope.Event)
		SuccessResponse(c, http.StatusOK, "event not handled", nil)
		return
	}

	eventId := envelope.Data.Metadata.EventId
	amountCents := envelope.Data.Metadata.AmountCents
	if amountCents == 0 {
		amountCents = envelope.Data.Amount
	}
	customerEmail := envelope.Data.Customer.Email

	if eventId == "" || amountCents <= 0 || customerEmail == "" {
		logger.Error("Webhook missing required fields: eventId=%q amountCents=%d email=%q",
			eventId, amountCents, customerEmail)
		ErrorResponse(c, http.StatusBadRequest, "missing required fields")
		return
	}

	payment := logic.ConfirmedPayment{
		EventId:          eventId,
		AmountCents:      amountCents,
		ContributorEmail: customerEmail,
		ContributorName:  envelope.Data.Customer.DisplayName(),
	}

	contribution, duplicate, err := h.ledger.RecordFromWebhook(payment)
	if err != nil {
		if errors.Is(err, logic.ErrEventNotFound) {
			ErrorResponse(c, http.StatusNotFound, "event not found")
			return
		}
		if errors.Is(err, logic.ErrInvalidPayment) {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		// Keep a durable marker so the confirmed charge survives even if
		// the provider gives up on redelivery
		if rerr := h.recon.RecordConfirmed(envelope.Data.Reference, model.ReconciliationSourceWebhook, payment); rerr != nil {
			logger.Error("Failed to record reconciliation marker for %s: %v", envelope.Data.Reference, rerr)
		}
		logger.Error("Failed to record webhook contribution: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "failed to record contribution")
		return
	}

	if duplicate {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Contribution already recorded",
			"duplicate": true,
		})
		return
	}

	// Best-effort thank-you tribute; never blocks the acknowledgment
	if h.generator != nil {
		h.generator.Submit(contribution.Id)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Contribution recorded",
		"shareCount": amountCents / 100,
	})
}
