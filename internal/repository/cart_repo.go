package repository

import (
	"errors"

	"tokyolore/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCartItemNotFound = errors.New("cart item not found")

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Where("user_id = ?", userID).Order("created_at asc").Find(&items).Error
	return items, err
}

func (r *CartRepository) GetLine(userID, storyID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("user_id = ? AND story_id = ?", userID, storyID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert inserts a new line or, on (user_id, story_id) conflict, bumps the
// existing line's quantity by the inserted quantity. Keyed writes instead of
// read-then-insert keep concurrent double-adds from creating duplicate lines.
func (r *CartRepository) Upsert(item *models.CartItem) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "story_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", item.Quantity),
		}),
	}).Create(item).Error
}

func (r *CartRepository) SetQuantity(userID, storyID uint, qty int) error {
	res := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		Update("quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *CartRepository) Remove(userID, storyID uint) error {
	return r.db.Where("user_id = ? AND story_id = ?", userID, storyID).
		Delete(&models.CartItem{}).Error
}

func (r *CartRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
