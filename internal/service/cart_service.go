package service

import (
	"errors"

	"tokyolore/internal/models"
	"tokyolore/internal/repository"
)

var ErrStoryNotInCatalog = errors.New("story not in catalog")

// CartStore is the slice of CartRepository the cart service needs.
type CartStore interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	SetQuantity(userID, storyID uint, qty int) error
	Remove(userID, storyID uint) error
	Clear(userID uint) error
}

// StoryCatalog resolves story ids to catalog entries. Price and title always
// come from here, never from the request.
type StoryCatalog interface {
	GetByID(id uint) (*models.Story, error)
	GetByIDs(ids []uint) (map[uint]*models.Story, error)
}

type CartService struct {
	carts   CartStore
	catalog StoryCatalog
}

func NewCartService(carts CartStore, catalog StoryCatalog) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// CartView is a cart with its derived totals.
type CartView struct {
	Items      []models.CartItem `json:"items"`
	TotalCents int64             `json:"total_cents"`
	TotalItems int               `json:"total_items"`
}

func (s *CartService) View(userID uint) (*CartView, error) {
	items, err := s.carts.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: items}
	for _, it := range items {
		view.TotalCents += it.PriceCents * int64(it.Quantity)
		view.TotalItems += it.Quantity
	}
	return view, nil
}

// Add puts one unit of a story into the cart. Adding a story that is already
// a line bumps that line's quantity instead of creating a second one.
func (s *CartService) Add(userID, storyID uint) (*CartView, error) {
	story, err := s.catalog.GetByID(storyID)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			return nil, ErrStoryNotInCatalog
		}
		return nil, err
	}
	item := &models.CartItem{
		UserID:     userID,
		StoryID:    story.ID,
		Title:      story.Title,
		PriceCents: story.PriceCents,
		Quantity:   1,
		ImageURL:   story.ImageURL,
	}
	if err := s.carts.Upsert(item); err != nil {
		return nil, err
	}
	return s.View(userID)
}

// SetQuantity updates a line; anything below 1 removes it.
func (s *CartService) SetQuantity(userID, storyID uint, qty int) (*CartView, error) {
	if qty < 1 {
		return s.RemoveItem(userID, storyID)
	}
	if err := s.carts.SetQuantity(userID, storyID, qty); err != nil {
		return nil, err
	}
	return s.View(userID)
}

func (s *CartService) RemoveItem(userID, storyID uint) (*CartView, error) {
	if err := s.carts.Remove(userID, storyID); err != nil {
		return nil, err
	}
	return s.View(userID)
}

func (s *CartService) ClearCart(userID uint) error {
	return s.carts.Clear(userID)
}
