package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pelisdb/movie-api/internal/models"
	"github.com/pelisdb/movie-api/internal/token"
)

type Config struct {
	APP_ENV        string
	PORT           string
	DB_HOST        string
	DB_PORT        string
	DB_USER        string
	DB_PASSWORD    string
	DB_NAME        string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	ACCESS_SECRET  string
	REFRESH_SECRET string
	ACCESS_TTL     string
	REFRESH_TTL    string
	KAFKA_ADDRESS  string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		APP_ENV:        getenv("APP_ENV", "development"),
		PORT:           getenv("PORT", "8080"),
		DB_HOST:        getenv("DB_HOST", "127.0.0.1"),
		DB_PORT:        getenv("DB_PORT", "5432"),
		DB_USER:        getenv("DB_USER", "postgres"),
		DB_PASSWORD:    os.Getenv("DB_PASSWORD"),
		DB_NAME:        getenv("DB_NAME", "pelis"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		ACCESS_SECRET:  os.Getenv("ACCESS_TOKEN_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_TOKEN_SECRET"),
		ACCESS_TTL:     getenv("ACCESS_TOKEN_TTL", "15m"),
		REFRESH_TTL:    getenv("REFRESH_TOKEN_TTL", "168h"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:      getenv("LOG_LEVEL", "info"),
	}

	return config, nil
}

func (c *Config) IsDev() bool {
	return c.APP_ENV != "production"
}

// TokenConfig builds the immutable signing configuration. Outside production
// missing secrets are synthesized from crypto/rand so development works out
// of the box; every token signed that way dies with the process. In
// production missing secrets are a startup error.
func (c *Config) TokenConfig() (token.Config, error) {
	access := c.ACCESS_SECRET
	refresh := c.REFRESH_SECRET

	if access == "" || refresh == "" {
		if !c.IsDev() {
			return token.Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in production")
		}
		log.Println("WARNING: token secrets not configured, using ephemeral development secrets; all issued tokens become invalid on restart")
		if access == "" {
			access = "dev_access_" + randomHex(32)
		}
		if refresh == "" {
			refresh = "dev_refresh_" + randomHex(32)
		}
	}

	accessTTL, err := time.ParseDuration(c.ACCESS_TTL)
	if err != nil {
		return token.Config{}, fmt.Errorf("invalid ACCESS_TOKEN_TTL %q: %w", c.ACCESS_TTL, err)
	}
	refreshTTL, err := time.ParseDuration(c.REFRESH_TTL)
	if err != nil {
		return token.Config{}, fmt.Errorf("invalid REFRESH_TOKEN_TTL %q: %w", c.REFRESH_TTL, err)
	}

	return token.Config{
		AccessSecret:  []byte(access),
		RefreshSecret: []byte(refresh),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}, nil
}

func InitDB(c *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Genre{},
		&models.Actor{},
		&models.Movie{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("crypto/rand failed: %v", err)
	}
	return hex.EncodeToString(b)
}
