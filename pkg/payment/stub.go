package payment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StubGateway is a no-op gateway for development without Stripe credentials.
// Every created session is immediately "paid".
type StubGateway struct {
	mu             sync.Mutex
	sessions       map[string]*Session
	minChargeCents int64
}

func NewStubGateway(minChargeCents int64) *StubGateway {
	return &StubGateway{
		sessions:       make(map[string]*Session),
		minChargeCents: minChargeCents,
	}
}

func (g *StubGateway) CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error) {
	if in.AmountCents < g.minChargeCents {
		return nil, fmt.Errorf("%w: %d below minimum %d", ErrInvalidAmount, in.AmountCents, g.minChargeCents)
	}
	id := fmt.Sprintf("stub_%d", time.Now().UnixNano())
	sess := &Session{
		ID:            id,
		AmountTotal:   in.AmountCents,
		Currency:      in.Currency,
		PaymentStatus: "paid",
		Metadata:      in.Metadata,
		RedirectURL:   in.SuccessURL + "?session_id=" + id,
	}
	g.mu.Lock()
	g.sessions[id] = sess
	g.mu.Unlock()
	return sess, nil
}

func (g *StubGateway) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %s", ErrGatewayUnavailable, sessionID)
	}
	return sess, nil
}
