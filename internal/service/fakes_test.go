package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tokyolore/internal/models"
	"tokyolore/internal/repository"
	"tokyolore/pkg/payment"
)

type fakeCartStore struct {
	mu    sync.Mutex
	lines map[uint][]models.CartItem

	clearCalls int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{lines: make(map[uint][]models.CartItem)}
}

func (f *fakeCartStore) ListByUser(userID uint) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CartItem, len(f.lines[userID]))
	copy(out, f.lines[userID])
	return out, nil
}

func (f *fakeCartStore) Upsert(item *models.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines[item.UserID] {
		if l.StoryID == item.StoryID {
			f.lines[item.UserID][i].Quantity += item.Quantity
			return nil
		}
	}
	f.lines[item.UserID] = append(f.lines[item.UserID], *item)
	return nil
}

func (f *fakeCartStore) SetQuantity(userID, storyID uint, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines[userID] {
		if l.StoryID == storyID {
			f.lines[userID][i].Quantity = qty
			return nil
		}
	}
	return repository.ErrCartItemNotFound
}

func (f *fakeCartStore) Remove(userID, storyID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.lines[userID][:0]
	for _, l := range f.lines[userID] {
		if l.StoryID != storyID {
			kept = append(kept, l)
		}
	}
	f.lines[userID] = kept
	return nil
}

func (f *fakeCartStore) Clear(userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	delete(f.lines, userID)
	return nil
}

type fakeCatalog struct {
	stories map[uint]*models.Story
}

func newFakeCatalog(stories ...*models.Story) *fakeCatalog {
	m := make(map[uint]*models.Story, len(stories))
	for _, s := range stories {
		m[s.ID] = s
	}
	return &fakeCatalog{stories: m}
}

func (f *fakeCatalog) GetByID(id uint) (*models.Story, error) {
	s, ok := f.stories[id]
	if !ok {
		return nil, repository.ErrStoryNotFound
	}
	return s, nil
}

func (f *fakeCatalog) GetByIDs(ids []uint) (map[uint]*models.Story, error) {
	out := make(map[uint]*models.Story)
	for _, id := range ids {
		if s, ok := f.stories[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeLedger struct {
	mu        sync.Mutex
	purchases map[string]*models.PurchaseRecord
	raffles   map[string]*models.RaffleEntry
	grants    map[string]string // "userID:storyID" -> sessionID

	grantCalls int
	failGrant  bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		purchases: make(map[string]*models.PurchaseRecord),
		raffles:   make(map[string]*models.RaffleEntry),
		grants:    make(map[string]string),
	}
}

func (f *fakeLedger) CreatePurchase(rec *models.PurchaseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.purchases[rec.SessionID]; exists {
		return repository.ErrDuplicateSession
	}
	f.purchases[rec.SessionID] = rec
	return nil
}

func (f *fakeLedger) GetPurchaseBySession(sessionID string) (*models.PurchaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.purchases[sessionID], nil
}

func (f *fakeLedger) CreateRaffleEntry(entry *models.RaffleEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.raffles[entry.SessionID]; exists {
		return repository.ErrDuplicateSession
	}
	f.raffles[entry.SessionID] = entry
	return nil
}

func (f *fakeLedger) GetRaffleEntryBySession(sessionID string) (*models.RaffleEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raffles[sessionID], nil
}

func (f *fakeLedger) GrantEntitlements(userID uint, storyIDs []uint, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantCalls++
	if f.failGrant {
		return errors.New("grant failed")
	}
	for _, id := range storyIDs {
		key := fmt.Sprintf("%d:%d", userID, id)
		if _, ok := f.grants[key]; !ok {
			f.grants[key] = sessionID
		}
	}
	return nil
}

// fakeGateway is a controllable Gateway: payment status is settable and
// session creation can be forced to fail.
type fakeGateway struct {
	mu        sync.Mutex
	sessions  map[string]*payment.Session
	nextID    int
	status    string
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: make(map[string]*payment.Session), status: "paid"}
}

func (g *fakeGateway) CreateSession(ctx context.Context, in payment.CreateSessionInput) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextID++
	id := fmt.Sprintf("sess_%d", g.nextID)
	sess := &payment.Session{
		ID:            id,
		AmountTotal:   in.AmountCents,
		Currency:      in.Currency,
		PaymentStatus: g.status,
		Metadata:      in.Metadata,
		RedirectURL:   in.SuccessURL + "?session_id=" + id,
	}
	g.sessions[id] = sess
	return sess, nil
}

func (g *fakeGateway) GetSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown session %s", payment.ErrGatewayUnavailable, sessionID)
	}
	return sess, nil
}

// put registers a pre-built session, for reconcile tests that do not go
// through checkout.
func (g *fakeGateway) put(sess *payment.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sess.ID] = sess
}
