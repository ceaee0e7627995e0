package handler

import (
	"errors"
	"net/http"

	"tokyolore/internal/middleware"
	"tokyolore/internal/service"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/payment"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	checkout  *service.CheckoutService
	reconcile *service.ReconcileService
	snapshots snapshot.Store
	gateway   payment.Gateway
}

func NewCheckoutHandler(checkout *service.CheckoutService, reconcile *service.ReconcileService, snapshots snapshot.Store, gateway payment.Gateway) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, reconcile: reconcile, snapshots: snapshots, gateway: gateway}
}

// StartCartCheckout stages the caller's cart and returns a hosted payment URL.
func (h *CheckoutHandler) StartCartCheckout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	start, err := h.checkout.StartCartCheckout(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
		case errors.Is(err, payment.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "order total is below the minimum charge"})
		case errors.Is(err, payment.ErrGatewayUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start checkout"})
		}
		return
	}
	c.JSON(http.StatusOK, start)
}

type raffleCheckoutRequest struct {
	Tickets int `json:"tickets" binding:"required"`
}

func (h *CheckoutHandler) StartRaffleCheckout(c *gin.Context) {
	var req raffleCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tickets is required"})
		return
	}
	userID := middleware.GetUserID(c)
	start, err := h.checkout.StartRaffleCheckout(c.Request.Context(), userID, req.Tickets)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTickets):
			c.JSON(http.StatusBadRequest, gin.H{"error": "ticket count must be at least 1"})
		case errors.Is(err, payment.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "order total is below the minimum charge"})
		case errors.Is(err, payment.ErrGatewayUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start checkout"})
		}
		return
	}
	c.JSON(http.StatusOK, start)
}

type reconcileRequest struct {
	SessionID string          `json:"session_id" binding:"required"`
	Items     []snapshot.Item `json:"items"`
}

// Reconcile is the success-page callback: the browser lands back with a
// session id and asks for the purchase to be recorded. Safe to call any
// number of times.
func (h *CheckoutHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	userID := middleware.GetUserID(c)
	result, err := h.reconcile.Reconcile(c.Request.Context(), userID, req.SessionID, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "payment has not completed", "status": "pending"})
		case errors.Is(err, service.ErrSessionOwnerMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to a different user"})
		case errors.Is(err, service.ErrUnknownIntent):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session is not recognized"})
		case errors.Is(err, service.ErrPartialReconciliation):
			// The charge succeeded; the client should retry, not refund.
			c.JSON(http.StatusAccepted, gin.H{"error": "payment recorded partially, retry shortly", "status": "retry"})
		case errors.Is(err, payment.ErrGatewayUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify payment"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSession exposes session status so the success page can poll while a
// webhook-driven reconciliation settles.
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	sess, err := h.gateway.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":     sess.ID,
		"payment_status": sess.PaymentStatus,
		"amount_total":   sess.AmountTotal,
		"currency":       sess.Currency,
	})
}

// GetSnapshot returns a staged cart snapshot. Expired keys and keys owned by
// another user both come back 404.
func (h *CheckoutHandler) GetSnapshot(c *gin.Context) {
	userID := middleware.GetUserID(c)
	snap, err := h.snapshots.Get(c.Request.Context(), c.Param("key"), userID)
	if err != nil {
		if errors.Is(err, snapshot.ErrSnapshotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found or expired"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshot"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
