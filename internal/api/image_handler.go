package api

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/api/middleware"
	"solarsite/internal/database"
)

// ImageHandler serves the admin media library: standalone image uploads that
// the dashboard references from page content.
type ImageHandler struct {
	db       *gorm.DB
	uploader *uploader
	policy   uploadPolicy
	logger   *slog.Logger
}

// NewImageHandler constructs the handler. maxImageBytes caps each upload.
func NewImageHandler(db *gorm.DB, store ObjectStore, clamdAddr string, maxImageBytes int64, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		db:       db,
		uploader: &uploader{store: store, clamdAddr: clamdAddr},
		policy: uploadPolicy{
			MIMEPrefixes: []string{"image/"},
			MaxBytes:     maxImageBytes,
			KeyPrefix:    "images",
		},
		logger: logger,
	}
}

type imageResponse struct {
	ID           uint      `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	UploadedBy   uint      `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
	IsActive     bool      `json:"isActive"`
}

func newImageResponse(img database.Image) imageResponse {
	return imageResponse{
		ID:           img.ID,
		Filename:     img.Filename,
		OriginalName: img.OriginalName,
		Path:         uploadPath(img.ObjectKey),
		Size:         img.Size,
		UploadedBy:   img.UploadedByID,
		UploadedAt:   img.UploadedAt,
		IsActive:     img.Lifecycle == database.LifecycleActive,
	}
}

// List returns active images, newest upload first.
func (h *ImageHandler) List(c *gin.Context) {
	var images []database.Image
	if err := h.db.WithContext(c.Request.Context()).
		Where("lifecycle = ?", database.LifecycleActive).
		Order("uploaded_at DESC").
		Find(&images).Error; err != nil {
		Internal(c, "failed to list images")
		return
	}

	items := make([]imageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, newImageResponse(img))
	}
	c.JSON(http.StatusOK, items)
}

// Upload stores an image and records who uploaded it.
func (h *ImageHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		BadRequest(c, "no file uploaded")
		return
	}

	objectKey, _, err := h.uploader.receive(c, "image", h.policy)
	if err != nil {
		if errors.Is(err, errNoFile) {
			BadRequest(c, "no file uploaded")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	image := database.Image{
		Filename:     path.Base(objectKey),
		OriginalName: file.Filename,
		ObjectKey:    objectKey,
		Size:         file.Size,
		UploadedByID: userID,
		UploadedAt:   time.Now(),
		Lifecycle:    database.LifecycleActive,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&image).Error; err != nil {
		Internal(c, "failed to record image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "image uploaded successfully",
		"image":   newImageResponse(image),
	})
}

// Delete removes the image record and its stored object.
func (h *ImageHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		BadRequest(c, "invalid image id")
		return
	}

	ctx := c.Request.Context()
	var image database.Image
	if err := h.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "image not found")
			return
		}
		Internal(c, "failed to query image")
		return
	}

	if image.ObjectKey != "" {
		if err := h.uploader.store.DeleteObject(ctx, image.ObjectKey); err != nil {
			h.logger.Error("delete image object", slog.String("objectKey", image.ObjectKey), slog.Any("error", err))
			Internal(c, "failed to delete image file")
			return
		}
	}

	if err := h.db.WithContext(ctx).Unscoped().Delete(&database.Image{}, id).Error; err != nil {
		Internal(c, "failed to delete image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "image deleted successfully"})
}
