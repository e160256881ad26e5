package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"solarsite/internal/api"
	"solarsite/internal/auth"
	"solarsite/internal/config"
	"solarsite/internal/database"
	"solarsite/internal/mailer"
	"solarsite/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()
	logger.Info("api bootstrapped",
		slog.String("db_host", cfg.Database.Host),
		slog.Int("db_port", cfg.Database.Port),
		slog.String("db_name", cfg.Database.Name),
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		logger.Error("init database", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		logger.Error("auto migrate", slog.Any("error", err))
		os.Exit(1)
	}

	var admin database.User
	switch err := db.Where("role = ?", database.RoleAdmin).First(&admin).Error; {
	case err == nil:
		// admin already present
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Warn("no admin user found, create one via POST /api/auth/setup-admin or cmd/admin")
	default:
		logger.Error("query admin user", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("init storage", slog.Any("error", err))
		os.Exit(1)
	}

	authService, err := auth.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Error("init auth service", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("auth service ready", slog.Duration("token_ttl", authService.TokenTTL()))

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	sender := mailer.New(cfg.SMTP)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, cfg, db, store, sender, authService, redisClient, logger)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		logger.Error("api server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
