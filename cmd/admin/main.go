// Command admin creates or resets the dashboard admin account out-of-band,
// for deployments where the one-time /api/auth/setup-admin endpoint has
// already been consumed or a password was lost.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"solarsite/internal/auth"
	"solarsite/internal/config"
	"solarsite/internal/database"
)

func main() {
	var (
		username = flag.String("username", "", "admin username (required)")
		reset    = flag.Bool("reset", false, "reset the password when the user already exists")
	)
	flag.Parse()

	u := strings.TrimSpace(*username)
	if u == "" {
		log.Fatal("missing required flag: --username")
	}

	dbCfg, err := loadDatabaseConfig()
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := db.AutoMigrate(&database.User{}); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var existing database.User
	switch err := db.Where("username = ?", u).First(&existing).Error; {
	case err == nil:
		if !*reset {
			log.Fatalf("user %q already exists (pass --reset to set a new password)", u)
		}
		if err := db.Model(&existing).Update("password_hash", hashed).Error; err != nil {
			log.Fatalf("reset password: %v", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := database.User{
			Username:     u,
			PasswordHash: hashed,
			Role:         database.RoleAdmin,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatalf("create user: %v", err)
		}
	default:
		log.Fatalf("query user: %v", err)
	}

	fmt.Printf("admin account ready\n")
	fmt.Printf("username: %s\n", u)
	fmt.Printf("password: %s\n", password)
	fmt.Printf("note: this password is shown only once\n")
}

// loadDatabaseConfig reads only the database settings; the CLI has no use
// for the rest of the environment (SMTP, MinIO) the API server requires.
func loadDatabaseConfig() (config.DatabaseConfig, error) {
	cfg := config.DatabaseConfig{
		Host:     envOr("DATABASE_HOST", "localhost"),
		Port:     5432,
		Name:     envOr("POSTGRES_DB", "solarsite"),
		User:     envOr("POSTGRES_USER", "solarsite"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		SSLMode:  envOr("DATABASE_SSLMODE", "disable"),
	}
	if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
		port, err := strconv.Atoi(env)
		if err != nil {
			return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
		}
		cfg.Port = port
	}
	if cfg.Password == "" {
		return config.DatabaseConfig{}, errors.New("POSTGRES_PASSWORD is required")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func generateRandomPassword(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}
