package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string
	RedisURL        string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("LIFELINE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            addr,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		JWTSigningKey:   jwtSigningKey,
		JWTIssuer:       envOr("JWT_ISSUER", "lifeline"),
		JWTAudience:     envOr("JWT_AUDIENCE", "lifeline-api"),
		TokenTTL:        durationOr("TOKEN_TTL", 24*time.Hour),
		ShutdownTimeout: durationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
