package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	MongoURI    string
	Database    string
	JWTSecret   string
	FrontendURL string
	SMTP        SMTPConfig
}

// SMTPConfig configures the transactional email transport.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// Load reads configuration from the environment, consulting a .env file
// when one is present.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		MongoURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:    getEnv("MONGODB_DATABASE", "bookstore"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvInt("SMTP_PORT", 465),
			User:     os.Getenv("EMAIL_USER"),
			Password: os.Getenv("EMAIL_PASSWORD"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
