package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"tokyolore/config"
	"tokyolore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const maxWebhookBody = 64 << 10

// StripeWebhookHandler reconciles sessions from processor events so a user
// who never returns to the success page still gets their entitlements.
type StripeWebhookHandler struct {
	cfg       *config.StripeConfig
	reconcile *service.ReconcileService
}

func NewStripeWebhookHandler(cfg *config.StripeConfig, reconcile *service.ReconcileService) *StripeWebhookHandler {
	return &StripeWebhookHandler{cfg: cfg, reconcile: reconcile}
}

func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.cfg.WebhookSecret)
	if err != nil {
		log.Printf("[Webhook] signature verification failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	// Caller 0: the user id comes from session metadata, not a token.
	_, err = h.reconcile.Reconcile(c.Request.Context(), 0, sess.ID, nil)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotPaid) {
			// Completed but unpaid (async methods); the paid event follows.
			c.JSON(http.StatusOK, gin.H{"received": true, "status": "pending"})
			return
		}
		// Non-2xx makes Stripe redeliver, which is what we want for
		// transient bookkeeping failures.
		log.Printf("[Webhook] reconcile failed session=%s: %v", sess.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
