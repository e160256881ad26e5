package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"solarsite/internal/storage"
)

// uploadPath maps a stored object key to the public URL it is served under.
func uploadPath(objectKey string) string {
	if objectKey == "" {
		return ""
	}
	return "/uploads/" + objectKey
}

// MediaHandler streams stored uploads back under /uploads/..., mirroring the
// object keys the resource handlers record.
type MediaHandler struct {
	store  ObjectStore
	logger *slog.Logger
}

func NewMediaHandler(store ObjectStore, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{store: store, logger: logger}
}

// Serve streams the object named by the wildcard path segment.
func (h *MediaHandler) Serve(c *gin.Context) {
	objectKey := strings.TrimPrefix(c.Param("key"), "/")
	if objectKey == "" || strings.Contains(objectKey, "..") {
		BadRequest(c, "invalid object key")
		return
	}

	reader, info, err := h.store.OpenObject(c.Request.Context(), objectKey)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, "file not found")
			return
		}
		h.logger.Error("open object", slog.String("objectKey", objectKey), slog.Any("error", err))
		Internal(c, "failed to read file")
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	if info.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.logger.Error("stream object", slog.String("objectKey", objectKey), slog.Any("error", err))
	}
}
