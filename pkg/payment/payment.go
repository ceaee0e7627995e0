package payment

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount rejects charges below the processor floor before any
	// network call is made.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrGatewayUnavailable wraps processor/network failures during session
	// creation or retrieval.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// CreateSessionInput is everything a hosted checkout session needs. Metadata
// is round-tripped by the processor untouched and read back at reconcile
// time.
type CreateSessionInput struct {
	AmountCents int64
	Currency    string
	Description string
	Metadata    map[string]string
	SuccessURL  string
	CancelURL   string
}

// Session mirrors the processor's view of one checkout attempt. It is never
// persisted locally; PaymentStatus is fetched on demand and is the source of
// truth for whether money moved.
type Session struct {
	ID            string
	AmountTotal   int64
	Currency      string
	PaymentStatus string
	Metadata      map[string]string
	RedirectURL   string
}

// Paid reports whether the processor settled the payment.
func (s *Session) Paid() bool {
	return s.PaymentStatus == "paid"
}

// Gateway is the thin adapter to the hosted checkout provider.
// CreateSession must not mutate any local state; GetSession is idempotent
// and side-effect free.
type Gateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
