package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/logger"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/model"
	"github.com/lifeevents/les/internal/paystack"
)

// PaymentHandler owns checkout initialization and the fallback
// verification path used when the webhook has not fired yet.
type PaymentHandler struct {
	paystack   *paystack.Client
	ledger     *logic.LedgerLogic
	recon      *logic.ReconciliationLogic
	appBaseURL string
}

// NewPaymentHandler creates the payment handler.
func NewPaymentHandler(client *paystack.Client, ledger *logic.LedgerLogic, recon *logic.ReconciliationLogic, appBaseURL string) *PaymentHandler {
	return &PaymentHandler{
		paystack:   client,
		ledger:     ledger,
		recon:      recon,
		appBaseURL: appBaseURL,
	}
}

// Initialize starts a Paystack checkout session and returns the
// authorization redirect URL.
func (h *PaymentHandler) Initialize(c *gin.Context) {
	var req InitializePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and email are required"})
		return
	}

	callbackURL := fmt.Sprintf("%s/event/%s?payment=success", h.appBaseURL, req.Metadata.EventId)
	if req.Metadata.AmountCents == 0 {
		req.Metadata.AmountCents = req.Amount
	}

	data, err := h.paystack.Initialize(c.Request.Context(), paystack.InitializeRequest{
		AmountCents: req.Amount,
		Email:       req.Email,
		CallbackURL: callbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		logger.Error("Payment initialization failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment initialization failed"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// Verify re-checks a charge with the provider and applies it to the
// ledger through the same idempotent path the webhook uses. Running after
// the webhook is safe: the existing row is detected and only the raised
// total is recomputed.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment reference is required"})
		return
	}

	tx, err := h.paystack.Verify(c.Request.Context(), req.Reference)
	if err != nil {
		logger.Error("Payment verification failed for %s: %v", req.Reference, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
		return
	}

	if tx.Status != paystack.TransactionSuccess {
		c.JSON(http.StatusOK, VerifyPaymentResponse{
			Success:  false,
			Verified: false,
			Status:   tx.Status,
		})
		return
	}

	eventId := tx.Metadata.EventId
	if eventId == "" {
		eventId = req.EventId
	}
	amountCents := tx.Metadata.AmountCents
	if amountCents == 0 {
		amountCents = tx.Amount
	}

	payment := logic.ConfirmedPayment{
		EventId:          eventId,
		AmountCents:      amountCents,
		ContributorEmail: tx.Customer.Email,
		ContributorName:  tx.Customer.DisplayName(),
	}

	// Durable marker first: the charge is confirmed on the provider's
	// side from here on, and must not be lost to a failed local write
	if err := h.recon.RecordConfirmed(req.Reference, model.ReconciliationSourceVerify, payment); err != nil {
		logger.Warn("Failed to record reconciliation marker for %s: %v", req.Reference, err)
	}

	_, _, err = h.ledger.RecordFromVerification(payment)
	if err != nil {
		if errors.Is(err, logic.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		if errors.Is(err, logic.ErrInvalidPayment) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// The reconciliation marker stays pending and will be retried
		logger.Error("Failed to record verified contribution: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record contribution"})
		return
	}

	if err := h.recon.MarkApplied(req.Reference); err != nil {
		logger.Warn("Failed to mark reconciliation %s applied: %v", req.Reference, err)
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success:       true,
		Verified:      true,
		EventId:       eventId,
		AmountCents:   amountCents,
		CustomerEmail: tx.Customer.Email,
		Transaction:   tx,
	})
}
