package service

import (
	"testing"

	"tokyolore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStories() []*models.Story {
	return []*models.Story{
		{ID: 1, Title: "Lantern Alley", PriceCents: 999},
		{ID: 2, Title: "Vending Machine Shrine", PriceCents: 1299},
	}
}

func TestCartAddUsesCatalogPrice(t *testing.T) {
	stories := testStories()
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(stories...))

	view, err := svc.Add(7, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(999), view.Items[0].PriceCents)
	assert.Equal(t, "Lantern Alley", view.Items[0].Title)
	assert.Equal(t, int64(999), view.TotalCents)
}

func TestCartAddMergesDuplicateLines(t *testing.T) {
	stories := testStories()
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(stories...))

	for i := 0; i < 3; i++ {
		_, err := svc.Add(7, 1)
		require.NoError(t, err)
	}
	view, err := svc.View(7)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 3, view.Items[0].Quantity)
	assert.Equal(t, int64(3*999), view.TotalCents)
	assert.Equal(t, 3, view.TotalItems)
}

func TestCartAddUnknownStory(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(testStories()...))

	_, err := svc.Add(7, 99)
	assert.ErrorIs(t, err, ErrStoryNotInCatalog)
}

func TestCartTotalsAcrossLines(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(testStories()...))

	_, err := svc.Add(7, 1)
	require.NoError(t, err)
	_, err = svc.Add(7, 2)
	require.NoError(t, err)
	view, err := svc.SetQuantity(7, 2, 2)
	require.NoError(t, err)

	// 999 + 2*1299
	assert.Equal(t, int64(3597), view.TotalCents)
	assert.Equal(t, 3, view.TotalItems)
}

func TestCartSetQuantityZeroRemovesLine(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(testStories()...))

	_, err := svc.Add(7, 1)
	require.NoError(t, err)
	view, err := svc.SetQuantity(7, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestCartClear(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(testStories()...))

	_, err := svc.Add(7, 1)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(7))

	view, err := svc.View(7)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, int64(0), view.TotalCents)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newFakeCatalog(testStories()...))

	_, err := svc.Add(7, 1)
	require.NoError(t, err)
	_, err = svc.Add(8, 2)
	require.NoError(t, err)

	view7, err := svc.View(7)
	require.NoError(t, err)
	view8, err := svc.View(8)
	require.NoError(t, err)
	require.Len(t, view7.Items, 1)
	require.Len(t, view8.Items, 1)
	assert.Equal(t, uint(1), view7.Items[0].StoryID)
	assert.Equal(t, uint(2), view8.Items[0].StoryID)
}
