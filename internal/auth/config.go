package auth

import (
	"errors"
	"os"
	"time"
)

// Config carries the auth subsystem's process-wide settings. It is loaded
// once at startup; rotating the JWT secret invalidates all outstanding
// tokens, which is acceptable here.
type Config struct {
	JWTSecret     []byte
	TokenTTL      time.Duration
	ResetCodeTTL  time.Duration
	SecureCookies bool
}

const defaultTokenTTL = 7 * 24 * time.Hour

// ConfigFromEnv reads auth config from environment variables. JWT_SECRET is
// required; everything else has a default.
func ConfigFromEnv() (Config, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	ttl := defaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			ttl = parsed
		}
	}
	return Config{
		JWTSecret:     []byte(secret),
		TokenTTL:      ttl,
		ResetCodeTTL:  15 * time.Minute,
		SecureCookies: os.Getenv("APP_ENV") == "production",
	}, nil
}
