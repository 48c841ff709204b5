package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DeletePolicyReject  = "reject"
	DeletePolicyCascade = "cascade"
)

type Config struct {
	DBDriver string
	DBSource string
	Port     string

	SessionSecret string
	SessionTTL    time.Duration
	SessionCookie string
	CookieSecure  bool

	AdminUsername     string
	AdminPasswordHash string
	AdminPassword     string // only read at boot, hashed by ProvisionAdmin

	BcryptCost       int
	MenuDeletePolicy string
	UploadDir        string
	CORSOrigins      []string
	LogLevel         string
}

// LoadConfig reads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	// .env ไม่มีก็ได้ ใช้ env จริงแทน
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DBSource:          getEnv("DB_SOURCE", "file:restaurant.db?_foreign_keys=on"),
		Port:              getEnv("PORT", "8000"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		SessionCookie:     getEnv("SESSION_COOKIE", "session"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		MenuDeletePolicy:  strings.ToLower(getEnv("MENU_DELETE_POLICY", DeletePolicyReject)),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost))); err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.MenuDeletePolicy {
	case DeletePolicyReject, DeletePolicyCascade:
	default:
		return fmt.Errorf("MENU_DELETE_POLICY must be %q or %q", DeletePolicyReject, DeletePolicyCascade)
	}
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
