package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

var galleryCategories = []string{
	"Residential",
	"Commercial",
	"Industrial",
	"Installation Process",
	"Before & After",
	"Testimonials",
	"Battery Systems",
}

// GalleryHandler serves the installation gallery: photos and videos with both
// soft and hard delete semantics.
type GalleryHandler struct {
	db       *gorm.DB
	uploader *uploader
	policy   uploadPolicy
	logger   *slog.Logger
}

// NewGalleryHandler constructs the handler. maxMediaBytes caps the media
// upload (10MB in production).
func NewGalleryHandler(db *gorm.DB, store ObjectStore, clamdAddr string, maxMediaBytes int64, logger *slog.Logger) *GalleryHandler {
	return &GalleryHandler{
		db:       db,
		uploader: &uploader{store: store, clamdAddr: clamdAddr},
		policy: uploadPolicy{
			MIMEPrefixes: []string{"image/", "video/"},
			MaxBytes:     maxMediaBytes,
			KeyPrefix:    "gallery",
		},
		logger: logger,
	}
}

type galleryForm struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description"`
	Category    string `form:"category" binding:"required"`
	Location    string `form:"location" binding:"required"`
	Type        string `form:"type" binding:"omitempty,oneof=photo video"`
}

type galleryResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type galleryListResponse struct {
	GalleryItems []galleryResponse `json:"galleryItems"`
	TotalPages   int64             `json:"totalPages"`
	CurrentPage  int               `json:"currentPage"`
	Total        int64             `json:"total"`
}

func newGalleryResponse(g database.GalleryItem) galleryResponse {
	return galleryResponse{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Description,
		ImageURL:    uploadPath(g.MediaKey),
		Category:    g.Category,
		Location:    g.Location,
		Type:        g.Type,
		IsActive:    g.Lifecycle == database.LifecycleActive,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}

func validGalleryCategory(category string) bool {
	for _, known := range galleryCategories {
		if category == known {
			return true
		}
	}
	return false
}

// List returns active gallery items, newest first, optionally filtered by
// category ("All" disables the filter) and type.
func (h *GalleryHandler) List(c *gin.Context) {
	page, limit := parsePagination(c, 12)

	query := h.db.WithContext(c.Request.Context()).
		Model(&database.GalleryItem{}).
		Where("lifecycle = ?", database.LifecycleActive)
	if category := c.Query("category"); category != "" && category != "All" {
		query = query.Where("category = ?", category)
	}
	if mediaType := c.Query("type"); mediaType != "" {
		query = query.Where("type = ?", mediaType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		Internal(c, "failed to count gallery items")
		return
	}

	var items []database.GalleryItem
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error; err != nil {
		Internal(c, "failed to list gallery items")
		return
	}

	responses := make([]galleryResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newGalleryResponse(item))
	}

	c.JSON(http.StatusOK, galleryListResponse{
		GalleryItems: responses,
		TotalPages:   totalPages(total, limit),
		CurrentPage:  page,
		Total:        total,
	})
}

// Get returns one gallery item by id, retired ones included.
func (h *GalleryHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid gallery item id")
		return
	}

	var item database.GalleryItem
	if err := h.db.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "gallery item not found")
			return
		}
		Internal(c, "failed to query gallery item")
		return
	}

	c.JSON(http.StatusOK, newGalleryResponse(item))
}

// Create stores a new gallery item with its required media file. When the
// type field is absent it is inferred from the file's MIME type.
func (h *GalleryHandler) Create(c *gin.Context) {
	var form galleryForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !validGalleryCategory(form.Category) {
		BadRequest(c, "unknown gallery category")
		return
	}

	objectKey, contentType, err := h.uploader.receive(c, "media", h.policy)
	if err != nil {
		if errors.Is(err, errNoFile) {
			BadRequest(c, "media file is required")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	mediaType := form.Type
	if mediaType == "" {
		mediaType = inferMediaType(contentType)
	}

	item := database.GalleryItem{
		Title:       form.Title,
		Description: form.Description,
		MediaKey:    objectKey,
		Category:    form.Category,
		Location:    form.Location,
		Type:        mediaType,
		Lifecycle:   database.LifecycleActive,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		Internal(c, "failed to create gallery item")
		return
	}

	c.JSON(http.StatusCreated, newGalleryResponse(item))
}

// Update replaces a gallery item's fields. A new media file replaces the old
// object and re-infers the type; without one the stored media is kept.
func (h *GalleryHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid gallery item id")
		return
	}

	var form galleryForm
	if err := c.ShouldBind(&form); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if !validGalleryCategory(form.Category) {
		BadRequest(c, "unknown gallery category")
		return
	}

	ctx := c.Request.Context()
	var item database.GalleryItem
	if err := h.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "gallery item not found")
			return
		}
		Internal(c, "failed to query gallery item")
		return
	}

	updates := map[string]any{
		"title":       form.Title,
		"description": form.Description,
		"category":    form.Category,
		"location":    form.Location,
	}
	if form.Type != "" {
		updates["type"] = form.Type
	}

	objectKey, contentType, err := h.uploader.receive(c, "media", h.policy)
	switch {
	case err == nil:
		oldKey := item.MediaKey
		updates["media_key"] = objectKey
		updates["type"] = inferMediaType(contentType)
		if oldKey != "" {
			if err := h.uploader.store.DeleteObject(ctx, oldKey); err != nil {
				h.logger.Error("delete replaced gallery media", slog.String("objectKey", oldKey), slog.Any("error", err))
			}
		}
	case errors.Is(err, errNoFile):
		// keep the stored media
	default:
		BadRequest(c, err.Error())
		return
	}

	if err := h.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
		Internal(c, "failed to update gallery item")
		return
	}
	if err := h.db.WithContext(ctx).First(&item, item.ID).Error; err != nil {
		Internal(c, "failed to reload gallery item")
		return
	}

	c.JSON(http.StatusOK, newGalleryResponse(item))
}

// Delete retires a gallery item; the record and its media file remain.
func (h *GalleryHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid gallery item id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.GalleryItem{}).
		Where("id = ?", id).
		Update("lifecycle", database.LifecycleRetired)
	if result.Error != nil {
		Internal(c, "failed to delete gallery item")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "gallery item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gallery item deleted successfully"})
}

// HardDelete removes the record and its stored media file.
func (h *GalleryHandler) HardDelete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid gallery item id")
		return
	}

	ctx := c.Request.Context()
	var item database.GalleryItem
	if err := h.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "gallery item not found")
			return
		}
		Internal(c, "failed to query gallery item")
		return
	}

	if item.MediaKey != "" {
		if err := h.uploader.store.DeleteObject(ctx, item.MediaKey); err != nil {
			h.logger.Error("delete gallery media", slog.String("objectKey", item.MediaKey), slog.Any("error", err))
			Internal(c, "failed to delete gallery media")
			return
		}
	}

	if err := h.db.WithContext(ctx).Unscoped().Delete(&database.GalleryItem{}, id).Error; err != nil {
		Internal(c, "failed to delete gallery item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gallery item permanently deleted"})
}

func inferMediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "photo"
}
