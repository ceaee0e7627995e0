package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tokyolore/config"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/payment"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidTickets = errors.New("ticket count must be at least 1")
)

// CheckoutService starts hosted checkout sessions. Amounts are always
// recomputed server-side from the catalog; nothing price-shaped is accepted
// from the client.
type CheckoutService struct {
	cfg       *config.CheckoutConfig
	carts     CartStore
	catalog   StoryCatalog
	snapshots snapshot.Store
	gateway   payment.Gateway
}

func NewCheckoutService(cfg *config.CheckoutConfig, carts CartStore, catalog StoryCatalog, snapshots snapshot.Store, gateway payment.Gateway) *CheckoutService {
	return &CheckoutService{
		cfg:       cfg,
		carts:     carts,
		catalog:   catalog,
		snapshots: snapshots,
		gateway:   gateway,
	}
}

// CheckoutStart is what the client needs to hand the browser to the payment
// page.
type CheckoutStart struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
	AmountCents int64  `json:"amount_cents"`
}

// StartCartCheckout stages the cart as a snapshot, then asks the gateway for
// a session. Ordering matters: the snapshot exists before the session, so a
// gateway failure leaves only an orphaned snapshot that expires on its own.
func (s *CheckoutService) StartCartCheckout(ctx context.Context, userID uint) (*CheckoutStart, error) {
	lines, err := s.carts.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.StoryID)
	}
	catalog, err := s.catalog.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	var total int64
	items := make([]snapshot.Item, 0, len(lines))
	for _, l := range lines {
		story, ok := catalog[l.StoryID]
		if !ok {
			return nil, fmt.Errorf("%w: story %d", ErrStoryNotInCatalog, l.StoryID)
		}
		total += story.PriceCents * int64(l.Quantity)
		items = append(items, snapshot.Item{
			StoryID:    story.ID,
			Title:      story.Title,
			PriceCents: story.PriceCents,
			Quantity:   l.Quantity,
			ImageURL:   story.ImageURL,
		})
	}

	key, err := s.snapshots.Create(ctx, userID, items, nil)
	if err != nil {
		return nil, err
	}

	intent := CheckoutIntent{Kind: IntentCartCheckout, UserID: userID, SnapshotKey: key}
	sess, err := s.gateway.CreateSession(ctx, payment.CreateSessionInput{
		AmountCents: total,
		Currency:    s.cfg.Currency,
		Description: fmt.Sprintf("%d story item(s)", len(items)),
		Metadata:    intent.Encode(),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		// Snapshot stays behind; it is harmless and self-expires.
		return nil, err
	}
	log.Printf("[Checkout] cart session %s user=%d amount=%d snapshot=%s", sess.ID, userID, total, key)
	return &CheckoutStart{SessionID: sess.ID, RedirectURL: sess.RedirectURL, AmountCents: total}, nil
}

// StartRaffleCheckout charges tickets at the configured server-side price.
func (s *CheckoutService) StartRaffleCheckout(ctx context.Context, userID uint, tickets int) (*CheckoutStart, error) {
	if tickets < 1 {
		return nil, ErrInvalidTickets
	}
	total := int64(tickets) * s.cfg.RaffleTicketCents

	intent := CheckoutIntent{Kind: IntentRaffle, UserID: userID, Tickets: tickets}
	sess, err := s.gateway.CreateSession(ctx, payment.CreateSessionInput{
		AmountCents: total,
		Currency:    s.cfg.Currency,
		Description: fmt.Sprintf("%d raffle ticket(s)", tickets),
		Metadata:    intent.Encode(),
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Checkout] raffle session %s user=%d tickets=%d amount=%d", sess.ID, userID, tickets, total)
	return &CheckoutStart{SessionID: sess.ID, RedirectURL: sess.RedirectURL, AmountCents: total}, nil
}
