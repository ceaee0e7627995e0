package handler

import (
	"net/http"

	"tokyolore/internal/middleware"
	"tokyolore/internal/models"
	"tokyolore/internal/repository"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	ledgerRepo *repository.LedgerRepository
	storyRepo  *repository.StoryRepository
}

func NewHistoryHandler(ledgerRepo *repository.LedgerRepository, storyRepo *repository.StoryRepository) *HistoryHandler {
	return &HistoryHandler{ledgerRepo: ledgerRepo, storyRepo: storyRepo}
}

// History returns the caller's purchase records and raffle entries.
func (h *HistoryHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	purchases, err := h.ledgerRepo.ListPurchases(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	raffles, err := h.ledgerRepo.ListRaffleEntries(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"purchases":      purchases,
		"raffle_entries": raffles,
	})
}

// PurchasedStories returns every story the caller is entitled to, content
// included.
func (h *HistoryHandler) PurchasedStories(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ids, err := h.ledgerRepo.ListEntitledStoryIDs(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entitlements"})
		return
	}
	if len(ids) == 0 {
		c.JSON(http.StatusOK, gin.H{"stories": []models.Story{}})
		return
	}
	byID, err := h.storyRepo.GetByIDs(ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stories"})
		return
	}
	stories := make([]models.Story, 0, len(byID))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			stories = append(stories, *s)
		}
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}
