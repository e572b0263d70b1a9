package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment holds everything read from the process environment at startup.
// It is built once in main and handed to the database, token and HTTP layers.
type Environment struct {
	Port string

	DatabaseURL  string
	DatabasePath string
	DatabaseLogs bool

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	AllowedOrigins []string
}

// Load reads the environment. A .env file is loaded first when not running on Railway.
func Load() (*Environment, error) {
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	env := &Environment{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DB_URL"),
		DatabasePath:   getEnv("DB_PATH", "studysync.db"),
		DatabaseLogs:   getEnv("DB_DEBUG", "false") == "true",
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),
		JWTIssuer:      getEnv("JWT_ISSUER", "studysync"),
		JWTAudience:    getEnv("JWT_AUDIENCE", "studysync-api"),
		TokenTTL:       ttl,
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	if env.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set")
	}

	return env, nil
}

// Addr is the listen address for the HTTP server.
func (e *Environment) Addr() string {
	return "0.0.0.0:" + e.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
