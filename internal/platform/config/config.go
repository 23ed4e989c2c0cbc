package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	DatabaseURL     string
	MigrationsPath  string
	RedisURL        string
	JWTSigningKey   string
	ShutdownTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A local .env file is loaded when present; real environments set vars directly.
func FromEnv() Server {
	_ = godotenv.Load()

	return Server{
		Addr:            getEnv("AMPARO_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("AMPARO_DATABASE_URL"),
		MigrationsPath:  getEnv("AMPARO_MIGRATIONS_PATH", "migrations"),
		RedisURL:        os.Getenv("AMPARO_REDIS_URL"),
		JWTSigningKey:   getEnv("AMPARO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
