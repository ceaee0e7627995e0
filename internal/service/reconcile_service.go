package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"tokyolore/internal/models"
	"tokyolore/internal/repository"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/payment"
)

var (
	// ErrSessionNotPaid means the processor has not settled this session;
	// there is nothing to reconcile yet.
	ErrSessionNotPaid = errors.New("session is not paid")
	// ErrSessionOwnerMismatch means the session's metadata names a different
	// user than the caller.
	ErrSessionOwnerMismatch = errors.New("session belongs to a different user")
	// ErrPartialReconciliation means the payment is confirmed but some local
	// bookkeeping writes failed. The payment is never presented as failed;
	// reloading the return page retries the missing writes.
	ErrPartialReconciliation = errors.New("payment confirmed, local bookkeeping incomplete")
)

// LedgerStore is the slice of LedgerRepository the reconciler needs.
type LedgerStore interface {
	CreatePurchase(rec *models.PurchaseRecord) error
	GetPurchaseBySession(sessionID string) (*models.PurchaseRecord, error)
	CreateRaffleEntry(entry *models.RaffleEntry) error
	GetRaffleEntryBySession(sessionID string) (*models.RaffleEntry, error)
	GrantEntitlements(userID uint, storyIDs []uint, sessionID string) error
}

// ReconcileService converts a completed external payment into local
// purchase, raffle and entitlement records, exactly once per session.
//
// Idempotency is layered: a per-process seen set short-circuits repeat calls
// cheaply, the durable ledger lookup short-circuits across processes, and
// the unique session_id index in storage is the backstop when two attempts
// race past both checks.
type ReconcileService struct {
	gateway   payment.Gateway
	snapshots snapshot.Store
	ledger    LedgerStore
	carts     CartStore
	catalog   StoryCatalog

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewReconcileService(gateway payment.Gateway, snapshots snapshot.Store, ledger LedgerStore, carts CartStore, catalog StoryCatalog) *ReconcileService {
	return &ReconcileService{
		gateway:   gateway,
		snapshots: snapshots,
		ledger:    ledger,
		carts:     carts,
		catalog:   catalog,
		seen:      make(map[string]struct{}),
	}
}

// ReconcileResult reports what a reconciliation attempt produced.
type ReconcileResult struct {
	AlreadyProcessed bool                   `json:"already_processed"`
	Session          *payment.Session       `json:"-"`
	Purchase         *models.PurchaseRecord `json:"purchase,omitempty"`
	RaffleEntry      *models.RaffleEntry    `json:"raffle_entry,omitempty"`
}

// Reconcile processes one checkout session for callerID. The webhook path
// passes callerID 0 and relies on the user id embedded in session metadata.
// fallback is an optional client-held copy of the cart used only when the
// server snapshot is gone; prices in it are ignored in favor of the catalog.
func (s *ReconcileService) Reconcile(ctx context.Context, callerID uint, sessionID string, fallback []snapshot.Item) (*ReconcileResult, error) {
	if sessionID == "" {
		return nil, errors.New("session id required")
	}

	// Fast path: this process already finished this session, skip straight
	// to the recorded outcome without re-fetching from the gateway.
	if s.isSeen(sessionID) {
		if res, err := s.existingResult(callerID, sessionID); err != nil || res != nil {
			return res, err
		}
		// Seen without a ledger row should not happen; redo the full pass.
		log.Printf("[Reconcile] seen session %s without ledger row, retrying", sessionID)
	}

	// Durable short-circuit: an earlier attempt in any process finished it.
	// This read happens before any write below; the unique session_id index
	// is the backstop if two attempts race past it.
	if res, err := s.existingResult(callerID, sessionID); err != nil {
		return nil, err
	} else if res != nil {
		// The ledger row may have been written by an attempt that then
		// failed before granting; grants are idempotent, so finish them
		// before calling the session done.
		if err := s.completeFromExisting(res, sessionID); err != nil {
			return res, err
		}
		s.markSeen(sessionID)
		return res, nil
	}

	sess, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	intent, err := ParseIntent(sess.Metadata)
	if err != nil {
		return nil, err
	}
	userID := intent.UserID
	if callerID != 0 {
		if userID != 0 && userID != callerID {
			return nil, ErrSessionOwnerMismatch
		}
		userID = callerID
	}
	if userID == 0 {
		return nil, fmt.Errorf("%w: no user attached to session", ErrUnknownIntent)
	}
	if !sess.Paid() {
		return nil, fmt.Errorf("%w: status %q", ErrSessionNotPaid, sess.PaymentStatus)
	}

	result := &ReconcileResult{Session: sess}
	switch intent.Kind {
	case IntentRaffle:
		err = s.reconcileRaffle(sess, intent, userID, result)
	case IntentCartCheckout:
		err = s.reconcileCart(ctx, sess, intent, userID, fallback, result)
	}
	if err != nil {
		return result, err
	}
	s.markSeen(sessionID)
	return result, nil
}

func (s *ReconcileService) reconcileRaffle(sess *payment.Session, intent *CheckoutIntent, userID uint, result *ReconcileResult) error {
	entry := &models.RaffleEntry{
		UserID:      userID,
		SessionID:   sess.ID,
		TicketCount: intent.Tickets,
		AmountCents: sess.AmountTotal,
	}
	err := s.ledger.CreateRaffleEntry(entry)
	if errors.Is(err, repository.ErrDuplicateSession) {
		// Lost a race with another attempt; its entry is ours.
		existing, gerr := s.ledger.GetRaffleEntryBySession(sess.ID)
		if gerr != nil {
			return fmt.Errorf("%w: %v", ErrPartialReconciliation, gerr)
		}
		result.RaffleEntry = existing
		result.AlreadyProcessed = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPartialReconciliation, err)
	}
	result.RaffleEntry = entry
	log.Printf("[Reconcile] raffle entry recorded session=%s user=%d tickets=%d", sess.ID, userID, intent.Tickets)
	return nil
}

func (s *ReconcileService) reconcileCart(ctx context.Context, sess *payment.Session, intent *CheckoutIntent, userID uint, fallback []snapshot.Item, result *ReconcileResult) error {
	items := s.resolveItems(ctx, intent.SnapshotKey, userID, fallback)

	rec := &models.PurchaseRecord{
		UserID:      userID,
		SessionID:   sess.ID,
		AmountCents: sess.AmountTotal,
		Currency:    sess.Currency,
	}
	storyIDs := make([]uint, 0, len(items))
	for _, it := range items {
		storyIDs = append(storyIDs, it.StoryID)
		rec.Items = append(rec.Items, models.PurchaseItem{
			StoryID:    it.StoryID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
		})
	}
	if len(items) == 0 {
		// Snapshot expired and no fallback: the payment still gets a record,
		// just without line items.
		log.Printf("[Reconcile] no items resolved for session=%s user=%d; recording empty purchase", sess.ID, userID)
	}

	err := s.ledger.CreatePurchase(rec)
	if errors.Is(err, repository.ErrDuplicateSession) {
		existing, gerr := s.ledger.GetPurchaseBySession(sess.ID)
		if gerr != nil {
			return fmt.Errorf("%w: %v", ErrPartialReconciliation, gerr)
		}
		result.Purchase = existing
		result.AlreadyProcessed = true
	} else if err != nil {
		return fmt.Errorf("%w: %v", ErrPartialReconciliation, err)
	} else {
		result.Purchase = rec
	}

	// Clear before granting. A retry that finds the record in the ledger
	// re-runs the grants only, so the cart must already be gone by the time
	// grants can fail; re-clearing on a later replay would wipe lines the
	// user added after the purchase.
	if err := s.carts.Clear(userID); err != nil {
		return fmt.Errorf("%w: cart clear: %v", ErrPartialReconciliation, err)
	}
	if err := s.ledger.GrantEntitlements(userID, storyIDs, sess.ID); err != nil {
		return fmt.Errorf("%w: grant: %v", ErrPartialReconciliation, err)
	}
	log.Printf("[Reconcile] purchase recorded session=%s user=%d items=%d amount=%d", sess.ID, userID, len(items), sess.AmountTotal)
	return nil
}

// resolveItems prefers the server snapshot and falls back to the client's
// copy. Fallback story ids are re-validated against the catalog and re-priced
// from it; unknown ids are dropped.
func (s *ReconcileService) resolveItems(ctx context.Context, snapshotKey string, userID uint, fallback []snapshot.Item) []snapshot.Item {
	if snapshotKey != "" {
		snap, err := s.snapshots.Get(ctx, snapshotKey, userID)
		if err == nil {
			return snap.Items
		}
		if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
			log.Printf("[Reconcile] snapshot fetch failed key=%s: %v", snapshotKey, err)
		}
	}
	if len(fallback) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(fallback))
	for _, it := range fallback {
		ids = append(ids, it.StoryID)
	}
	catalog, err := s.catalog.GetByIDs(ids)
	if err != nil {
		log.Printf("[Reconcile] catalog lookup for fallback failed: %v", err)
		return nil
	}
	items := make([]snapshot.Item, 0, len(fallback))
	for _, it := range fallback {
		story, ok := catalog[it.StoryID]
		if !ok {
			continue
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		items = append(items, snapshot.Item{
			StoryID:    story.ID,
			Title:      story.Title,
			PriceCents: story.PriceCents,
			Quantity:   qty,
			ImageURL:   story.ImageURL,
		})
	}
	return items
}

// completeFromExisting re-runs the entitlement grants for a purchase found
// in the ledger, in case the attempt that wrote it failed before granting.
// Grants are an idempotent union, so repeating them is safe. The cart is
// deliberately not touched here: it was cleared before the first grant ran,
// and the user may have repopulated it since the session settled.
func (s *ReconcileService) completeFromExisting(res *ReconcileResult, sessionID string) error {
	if res.Purchase == nil {
		return nil
	}
	storyIDs := make([]uint, 0, len(res.Purchase.Items))
	for _, it := range res.Purchase.Items {
		storyIDs = append(storyIDs, it.StoryID)
	}
	if err := s.ledger.GrantEntitlements(res.Purchase.UserID, storyIDs, sessionID); err != nil {
		return fmt.Errorf("%w: grant: %v", ErrPartialReconciliation, err)
	}
	return nil
}

// existingResult returns the prior outcome for sessionID, or nil when the
// session has never been reconciled. A non-zero callerID that does not match
// the record's owner gets ErrSessionOwnerMismatch, never another user's
// purchase.
func (s *ReconcileService) existingResult(callerID uint, sessionID string) (*ReconcileResult, error) {
	purchase, err := s.ledger.GetPurchaseBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if purchase != nil {
		if callerID != 0 && purchase.UserID != callerID {
			return nil, ErrSessionOwnerMismatch
		}
		return &ReconcileResult{AlreadyProcessed: true, Purchase: purchase}, nil
	}
	entry, err := s.ledger.GetRaffleEntryBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		if callerID != 0 && entry.UserID != callerID {
			return nil, ErrSessionOwnerMismatch
		}
		return &ReconcileResult{AlreadyProcessed: true, RaffleEntry: entry}, nil
	}
	return nil, nil
}

func (s *ReconcileService) isSeen(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[sessionID]
	return ok
}

func (s *ReconcileService) markSeen(sessionID string) {
	s.mu.Lock()
	s.seen[sessionID] = struct{}{}
	s.mu.Unlock()
}
