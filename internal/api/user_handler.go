package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"solarsite/internal/database"
)

// UserHandler lists dashboard accounts. Password hashes never leave the API.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type userListItem struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// List returns every account.
func (h *UserHandler) List(c *gin.Context) {
	var users []database.User
	if err := h.db.WithContext(c.Request.Context()).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		Internal(c, "failed to list users")
		return
	}

	items := make([]userListItem, 0, len(users))
	for _, u := range users {
		items = append(items, userListItem{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}
