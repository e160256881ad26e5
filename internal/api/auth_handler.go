package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"solarsite/internal/api/middleware"
	"solarsite/internal/auth"
	"solarsite/internal/database"
)

// invalidCredentialsMsg is shared by the user-not-found and wrong-password
// paths so a caller cannot enumerate usernames.
const invalidCredentialsMsg = "invalid credentials"

// LoginThrottle is the slice of the redis command set the login guard needs.
// redis.UniversalClient satisfies it; tests substitute an in-memory fake.
type LoginThrottle interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthHandler serves dashboard login and the one-time admin setup.
type AuthHandler struct {
	db                    *gorm.DB
	authService           *auth.AuthService
	throttle              LoginThrottle
	logger                *slog.Logger
	loginRateLimitPerHour int
	loginLockThreshold    int
	loginLockTTL          time.Duration
}

// NewAuthHandler constructs the handler. A nil throttle disables rate
// limiting and lockout.
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, throttle LoginThrottle, logger *slog.Logger, loginRateLimitPerHour, loginLockThreshold int, loginLockTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		db:                    db,
		authService:           authService,
		throttle:              throttle,
		logger:                logger,
		loginRateLimitPerHour: loginRateLimitPerHour,
		loginLockThreshold:    loginLockThreshold,
		loginLockTTL:          loginLockTTL,
	}
}

// countAttempt bumps a throttle counter, starting its expiry window on the
// first hit so stale keys age out on their own.
func (h *AuthHandler) countAttempt(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := h.throttle.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = h.throttle.Expire(ctx, key, window).Err()
	}
	return count, nil
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login verifies the password for an admin account and issues a 24h token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("username", req.Username))
	normalized := strings.ToLower(req.Username)

	// Per IP+username, per hour.
	if h.throttle != nil && h.loginRateLimitPerHour > 0 {
		rateKey := "rate:login:" + c.ClientIP() + ":" + normalized + ":" + time.Now().UTC().Format("2006010215")
		count, err := h.countAttempt(ctx, rateKey, time.Hour)
		if err != nil {
			count = 0
		}
		if count > int64(h.loginRateLimitPerHour) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		if ttl, _ := h.throttle.TTL(ctx, "lock:login:"+normalized).Result(); ttl > 0 {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "account temporarily locked"})
			return
		}
	}

	var user database.User
	err := h.db.WithContext(ctx).
		Where("username = ? AND role = ?", req.Username, database.RoleAdmin).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			h.incrementLoginFail(ctx, normalized)
			Unauthorized(c, invalidCredentialsMsg)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		h.incrementLoginFail(ctx, normalized)
		Unauthorized(c, invalidCredentialsMsg)
		return
	}

	if h.throttle != nil {
		_ = h.throttle.Del(ctx, "lock:login:fail:"+normalized).Err()
	}

	token, err := h.authService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		logger.Error("generate token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Token: token,
		User: userResponse{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	})
}

type setupAdminRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// SetupAdmin creates the single admin account. It succeeds exactly once;
// once any admin exists every further call fails without touching the record.
func (h *AuthHandler) SetupAdmin(c *gin.Context) {
	var req setupAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	var existing database.User
	err := h.db.WithContext(ctx).Where("role = ?", database.RoleAdmin).First(&existing).Error
	if err == nil {
		BadRequest(c, "admin user already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("setup admin lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	user := database.User{
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         database.RoleAdmin,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("create admin failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	logger.Info("admin user created", slog.Uint64("user_id", uint64(user.ID)))
	c.JSON(http.StatusCreated, gin.H{"message": "admin user created successfully"})
}

func (h *AuthHandler) incrementLoginFail(ctx context.Context, username string) {
	if h.throttle == nil || h.loginLockThreshold <= 0 {
		return
	}
	count, err := h.countAttempt(ctx, "lock:login:fail:"+username, h.loginLockTTL)
	if err != nil {
		return
	}
	if count >= int64(h.loginLockThreshold) {
		_ = h.throttle.Set(ctx, "lock:login:"+username, "1", h.loginLockTTL).Err()
	}
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
