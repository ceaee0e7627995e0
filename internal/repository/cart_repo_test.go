package repository

import (
	"path/filepath"
	"testing"

	"tokyolore/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newCartTestDB(t *testing.T) *CartRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cart.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.CartItem{}))
	return NewCartRepository(db)
}

func cartLine(userID, storyID uint) *models.CartItem {
	return &models.CartItem{
		UserID:     userID,
		StoryID:    storyID,
		Title:      "Lantern Alley",
		PriceCents: 999,
		Quantity:   1,
	}
}

func TestCartUpsertMergesQuantity(t *testing.T) {
	repo := newCartTestDB(t)

	require.NoError(t, repo.Upsert(cartLine(7, 1)))
	require.NoError(t, repo.Upsert(cartLine(7, 1)))

	lines, err := repo.ListByUser(7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartAddAfterClear(t *testing.T) {
	repo := newCartTestDB(t)

	require.NoError(t, repo.Upsert(cartLine(7, 1)))
	require.NoError(t, repo.Clear(7))

	// clearing must fully release the (user_id, story_id) slot so a later
	// add starts a fresh line instead of bumping a dead one
	require.NoError(t, repo.Upsert(cartLine(7, 1)))

	lines, err := repo.ListByUser(7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartAddAfterRemove(t *testing.T) {
	repo := newCartTestDB(t)

	require.NoError(t, repo.Upsert(cartLine(7, 1)))
	require.NoError(t, repo.Remove(7, 1))

	_, err := repo.GetLine(7, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, repo.Upsert(cartLine(7, 1)))

	line, err := repo.GetLine(7, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(999), line.PriceCents)
}

func TestCartSetQuantityMissingLine(t *testing.T) {
	repo := newCartTestDB(t)

	err := repo.SetQuantity(7, 1, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartIsolatedPerUser(t *testing.T) {
	repo := newCartTestDB(t)

	require.NoError(t, repo.Upsert(cartLine(7, 1)))
	require.NoError(t, repo.Upsert(cartLine(8, 1)))
	require.NoError(t, repo.Clear(7))

	lines, err := repo.ListByUser(8)
	require.NoError(t, err)
	require.Len(t, lines, 1)
}
