package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokyolore/config"
	"tokyolore/internal/clock"
	"tokyolore/internal/models"
	"tokyolore/internal/service"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCartStore struct {
	lines map[uint][]models.CartItem
}

func (m *memCartStore) ListByUser(userID uint) ([]models.CartItem, error) {
	return m.lines[userID], nil
}
func (m *memCartStore) Upsert(item *models.CartItem) error {
	for i, l := range m.lines[item.UserID] {
		if l.StoryID == item.StoryID {
			m.lines[item.UserID][i].Quantity += item.Quantity
			return nil
		}
	}
	m.lines[item.UserID] = append(m.lines[item.UserID], *item)
	return nil
}
func (m *memCartStore) SetQuantity(userID, storyID uint, qty int) error { return nil }
func (m *memCartStore) Remove(userID, storyID uint) error              { return nil }
func (m *memCartStore) Clear(userID uint) error {
	delete(m.lines, userID)
	return nil
}

type memCatalog struct {
	stories map[uint]*models.Story
}

func (m *memCatalog) GetByID(id uint) (*models.Story, error) {
	if s, ok := m.stories[id]; ok {
		return s, nil
	}
	return nil, service.ErrStoryNotInCatalog
}
func (m *memCatalog) GetByIDs(ids []uint) (map[uint]*models.Story, error) {
	out := make(map[uint]*models.Story)
	for _, id := range ids {
		if s, ok := m.stories[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type memLedger struct {
	purchases map[string]*models.PurchaseRecord
	raffles   map[string]*models.RaffleEntry
	grants    map[uint][]uint
}

func newMemLedger() *memLedger {
	return &memLedger{
		purchases: make(map[string]*models.PurchaseRecord),
		raffles:   make(map[string]*models.RaffleEntry),
		grants:    make(map[uint][]uint),
	}
}
func (m *memLedger) CreatePurchase(rec *models.PurchaseRecord) error {
	m.purchases[rec.SessionID] = rec
	return nil
}
func (m *memLedger) GetPurchaseBySession(sessionID string) (*models.PurchaseRecord, error) {
	return m.purchases[sessionID], nil
}
func (m *memLedger) CreateRaffleEntry(entry *models.RaffleEntry) error {
	m.raffles[entry.SessionID] = entry
	return nil
}
func (m *memLedger) GetRaffleEntryBySession(sessionID string) (*models.RaffleEntry, error) {
	return m.raffles[sessionID], nil
}
func (m *memLedger) GrantEntitlements(userID uint, storyIDs []uint, sessionID string) error {
	m.grants[userID] = append(m.grants[userID], storyIDs...)
	return nil
}

func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newCheckoutRouter(t *testing.T) (*gin.Engine, *memLedger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.CheckoutConfig{
		Currency:          "usd",
		MinChargeCents:    100,
		RaffleTicketCents: 500,
		SnapshotTTL:       2 * time.Hour,
		SuccessURL:        "http://localhost:3000/payment-success",
		CancelURL:         "http://localhost:3000/payment-cancelled",
	}
	carts := &memCartStore{lines: map[uint][]models.CartItem{
		7: {{UserID: 7, StoryID: 1, Title: "Lantern Alley", PriceCents: 999, Quantity: 1}},
	}}
	catalog := &memCatalog{stories: map[uint]*models.Story{
		1: {ID: 1, Title: "Lantern Alley", PriceCents: 999},
	}}
	snaps := snapshot.NewMemoryStore(cfg.SnapshotTTL, clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	gateway := payment.NewStubGateway(cfg.MinChargeCents)
	ledger := newMemLedger()

	checkoutSvc := service.NewCheckoutService(cfg, carts, catalog, snaps, gateway)
	reconcileSvc := service.NewReconcileService(gateway, snaps, ledger, carts, catalog)
	h := NewCheckoutHandler(checkoutSvc, reconcileSvc, snaps, gateway)

	r := gin.New()
	grp := r.Group("/api/v1/payments", asUser(7))
	grp.POST("/checkout", h.StartCartCheckout)
	grp.POST("/raffle", h.StartRaffleCheckout)
	grp.POST("/reconcile", h.Reconcile)
	grp.GET("/session/:session_id", h.GetSession)
	grp.GET("/snapshot/:key", h.GetSnapshot)
	return r, ledger
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckoutThenReconcileEndToEnd(t *testing.T) {
	r, ledger := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/payments/checkout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var start struct {
		SessionID   string `json:"session_id"`
		RedirectURL string `json:"redirect_url"`
		AmountCents int64  `json:"amount_cents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	assert.Equal(t, int64(999), start.AmountCents)
	assert.Contains(t, start.RedirectURL, "session_id=")

	w = doJSON(t, r, http.MethodPost, "/api/v1/payments/reconcile", gin.H{"session_id": start.SessionID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		AlreadyProcessed bool                   `json:"already_processed"`
		Purchase         *models.PurchaseRecord `json:"purchase"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.AlreadyProcessed)
	require.NotNil(t, res.Purchase)
	assert.Equal(t, start.SessionID, res.Purchase.SessionID)
	assert.Equal(t, []uint{1}, ledger.grants[7])

	// second reconcile reports prior outcome instead of double-recording
	w = doJSON(t, r, http.MethodPost, "/api/v1/payments/reconcile", gin.H{"session_id": start.SessionID})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.AlreadyProcessed)
	assert.Len(t, ledger.purchases, 1)
}

func TestReconcileRequiresSessionID(t *testing.T) {
	r, _ := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/payments/reconcile", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSnapshotUnknownKey(t *testing.T) {
	r, _ := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/payments/snapshot/snap_7_0_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRaffleCheckoutAmount(t *testing.T) {
	r, _ := newCheckoutRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/payments/raffle", gin.H{"tickets": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var start struct {
		AmountCents int64 `json:"amount_cents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &start))
	assert.Equal(t, int64(1000), start.AmountCents)
}
