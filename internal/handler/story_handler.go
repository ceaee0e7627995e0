package handler

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tokyolore/internal/middleware"
	"tokyolore/internal/models"
	"tokyolore/internal/repository"
	"tokyolore/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 5 << 20 // 5MB

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type StoryHandler struct {
	storyRepo  *repository.StoryRepository
	ledgerRepo *repository.LedgerRepository
	cloud      cloudinary.Client
}

func NewStoryHandler(storyRepo *repository.StoryRepository, ledgerRepo *repository.LedgerRepository, cloud cloudinary.Client) *StoryHandler {
	return &StoryHandler{storyRepo: storyRepo, ledgerRepo: ledgerRepo, cloud: cloud}
}

// List returns the catalog, newest first. Full content is never included.
func (h *StoryHandler) List(c *gin.Context) {
	stories, err := h.storyRepo.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}
	for i := range stories {
		stories[i].Content = ""
	}
	c.JSON(http.StatusOK, stories)
}

// Get returns one story. Content is included only when the requester holds
// an entitlement for it.
func (h *StoryHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
		return
	}
	story, err := h.storyRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch story"})
		return
	}
	userID := middleware.GetUserID(c)
	entitled := false
	if userID != 0 {
		entitled, _ = h.ledgerRepo.HasEntitlement(userID, story.ID)
	}
	if !entitled {
		story.Content = ""
	}
	c.JSON(http.StatusOK, gin.H{"story": story, "entitled": entitled})
}

func (h *StoryHandler) ListByUser(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	stories, err := h.storyRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}
	for i := range stories {
		stories[i].Content = ""
	}
	c.JSON(http.StatusOK, stories)
}

// MyStories lists stories submitted by the authenticated user.
func (h *StoryHandler) MyStories(c *gin.Context) {
	userID := middleware.GetUserID(c)
	stories, err := h.storyRepo.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list stories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": stories})
}

// Create submits a new story with a multipart image. Authentication is
// optional; when present the story is linked to the submitter.
func (h *StoryHandler) Create(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	description := strings.TrimSpace(c.PostForm("description"))
	content := c.PostForm("content")
	if title == "" || name == "" || email == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, name, email and description are required"})
		return
	}
	if !emailPattern.MatchString(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a valid email address"})
		return
	}
	priceCents, _ := strconv.ParseInt(c.PostForm("price_cents"), 10, 64)
	if priceCents < 0 {
		priceCents = 0
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	if file.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds 5MB limit"})
		return
	}
	if ct := file.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	defer f.Close()

	publicID := "story_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	imageURL, err := h.cloud.UploadImage(c.Request.Context(), f, "tokyo-lore", publicID)
	if err != nil {
		log.Printf("[stories] image upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
		return
	}

	story := &models.Story{
		Title:       title,
		AuthorName:  name,
		AuthorEmail: email,
		Description: description,
		Content:     content,
		ImageURL:    imageURL,
		PriceCents:  priceCents,
	}
	if userID := middleware.GetUserID(c); userID != 0 {
		story.UserID = &userID
	}
	if err := h.storyRepo.Create(story); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create story"})
		return
	}
	c.JSON(http.StatusCreated, story)
}

// Delete pulls a story from the catalog. Admin moderation only; the route
// is role-gated.
func (h *StoryHandler) Delete(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
		return
	}
	if err := h.storyRepo.Delete(id); err != nil {
		if errors.Is(err, repository.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete story"})
		return
	}
	log.Printf("[stories] story %d removed by moderator %d", id, middleware.GetUserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "story deleted"})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
