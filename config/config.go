package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// DevSecretKey is the signing secret used when SECRET_KEY is unset outside
// production.
const DevSecretKey = "your-secret-key-change-this-in-production"

// Config keeps runtime settings for the API. It is loaded once at startup
// and handed to the components that need it.
type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8082"`

	SecretKey      string        `env:"SECRET_KEY" envDefault:"your-secret-key-change-this-in-production"`
	Algorithm      string        `env:"ALGORITHM" envDefault:"HS256"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	DatabaseURL        string `env:"DATABASE_URL" envDefault:"sqlite:///./todo_auth.db"`
	RedisURL           string `env:"REDIS_URL"`
	RedisTLSServerName string `env:"REDIS_TLS_SERVER_NAME"`

	FrontendURL          string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	OAuthRedirectBaseURL string        `env:"OAUTH_REDIRECT_BASE_URL" envDefault:"http://localhost:8082"`
	OAuthStateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	GoogleClientID       string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string        `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID       string        `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret   string        `env:"GITHUB_CLIENT_SECRET"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(cfg.Algorithm))
	cfg.OAuthRedirectBaseURL = strings.TrimRight(cfg.OAuthRedirectBaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the API cannot run with.
func (c Config) Validate() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("ALGORITHM %q is not supported", c.Algorithm)
	}
	if c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}
	if c.IsProduction() && c.SecretKey == DevSecretKey {
		return fmt.Errorf("SECRET_KEY must be set in production")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.OAuthStateTTL <= 0 {
		return fmt.Errorf("OAUTH_STATE_TTL must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// AllowedOrigins lists the CORS origins: the configured frontend and the
// local development server.
func (c Config) AllowedOrigins() []string {
	origins := []string{"http://localhost:3000"}
	if c.FrontendURL != "" && c.FrontendURL != origins[0] {
		origins = append([]string{c.FrontendURL}, origins...)
	}
	return origins
}
