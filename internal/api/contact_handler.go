package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"solarsite/internal/api/middleware"
	"solarsite/internal/mailer"
)

// ContactHandler relays contact/quote form submissions to the office inbox.
type ContactHandler struct {
	sender mailer.Sender
	logger *slog.Logger
}

func NewContactHandler(sender mailer.Sender, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{sender: sender, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" binding:"required"`
}

// Submit sends the notification email synchronously. A transport failure
// surfaces as a 500; there is no retry or dead-letter path.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	msg := mailer.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := h.sender.SendContactNotification(c.Request.Context(), msg); err != nil {
		logger := middleware.LoggerFromContext(c)
		if logger == nil {
			logger = h.logger
		}
		logger.Error("send contact notification", slog.Any("error", err))
		Internal(c, "failed to send message")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
