package repository

import (
	"errors"
	"strings"

	"tokyolore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateSession means a ledger row for this checkout session already
// exists. Callers treat it as success: the payment was recorded by an
// earlier attempt.
var ErrDuplicateSession = errors.New("ledger entry for session already exists")

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CreatePurchase appends one purchase record with its items. The unique
// index on session_id is the correctness backstop; a duplicate insert comes
// back as ErrDuplicateSession rather than a second record.
func (r *LedgerRepository) CreatePurchase(rec *models.PurchaseRecord) error {
	err := r.db.Create(rec).Error
	if isDuplicateKey(err) {
		return ErrDuplicateSession
	}
	return err
}

func (r *LedgerRepository) GetPurchaseBySession(sessionID string) (*models.PurchaseRecord, error) {
	var rec models.PurchaseRecord
	err := r.db.Preload("Items").Where("session_id = ?", sessionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *LedgerRepository) CreateRaffleEntry(entry *models.RaffleEntry) error {
	err := r.db.Create(entry).Error
	if isDuplicateKey(err) {
		return ErrDuplicateSession
	}
	return err
}

func (r *LedgerRepository) GetRaffleEntryBySession(sessionID string) (*models.RaffleEntry, error) {
	var entry models.RaffleEntry
	err := r.db.Where("session_id = ?", sessionID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GrantEntitlements unions storyIDs into the user's entitlement set.
// Already-granted stories are skipped (ON CONFLICT DO NOTHING), so the call
// is safe to repeat with overlapping sets.
func (r *LedgerRepository) GrantEntitlements(userID uint, storyIDs []uint, sessionID string) error {
	if len(storyIDs) == 0 {
		return nil
	}
	rows := make([]models.Entitlement, 0, len(storyIDs))
	for _, id := range storyIDs {
		rows = append(rows, models.Entitlement{UserID: userID, StoryID: id, SessionID: sessionID})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (r *LedgerRepository) HasEntitlement(userID, storyID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Entitlement{}).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Count(&count).Error
	return count > 0, err
}

func (r *LedgerRepository) ListEntitledStoryIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Entitlement{}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Pluck("story_id", &ids).Error
	return ids, err
}

func (r *LedgerRepository) ListPurchases(userID uint) ([]models.PurchaseRecord, error) {
	var recs []models.PurchaseRecord
	err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at desc").Find(&recs).Error
	return recs, err
}

func (r *LedgerRepository) ListRaffleEntries(userID uint) ([]models.RaffleEntry, error) {
	var entries []models.RaffleEntry
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc").Find(&entries).Error
	return entries, err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL 1062 surfaces as a plain error string through the driver.
	return strings.Contains(err.Error(), "Duplicate entry")
}
