package repository

import (
	"errors"

	"tokyolore/internal/models"

	"gorm.io/gorm"
)

var ErrStoryNotFound = errors.New("story not found")

type StoryRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) *StoryRepository {
	return &StoryRepository{db: db}
}

func (r *StoryRepository) Create(s *models.Story) error {
	return r.db.Create(s).Error
}

func (r *StoryRepository) GetByID(id uint) (*models.Story, error) {
	var s models.Story
	err := r.db.First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDs returns the subset of stories that exist, keyed by id.
// The checkout flow uses it to validate cart lines against the catalog.
func (r *StoryRepository) GetByIDs(ids []uint) (map[uint]*models.Story, error) {
	var stories []models.Story
	if err := r.db.Where("id IN ?", ids).Find(&stories).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]*models.Story, len(stories))
	for i := range stories {
		out[stories[i].ID] = &stories[i]
	}
	return out, nil
}

// Delete soft-deletes a story, pulling it from the catalog while keeping
// the row for purchase history.
func (r *StoryRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Story{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStoryNotFound
	}
	return nil
}

func (r *StoryRepository) List() ([]models.Story, error) {
	var stories []models.Story
	err := r.db.Order("created_at desc").Find(&stories).Error
	return stories, err
}

func (r *StoryRepository) ListByUser(userID uint) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&stories).Error
	return stories, err
}
