package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken string

	DBDriver   string // sqlite or postgres
	DBFile     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret      string
	AdminPassHash  string
	ServerPort     string
	WebhookBaseURL string
	WebhookSecret  string
	PollTimeout    string
}

func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env file")
	}

	return &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBDriver:       getEnv("DB_DRIVER", "sqlite"),
		DBFile:         getEnv("DB_FILE", "lfg.db"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "lfgbot"),
		JWTSecret:      getEnv("JWT_SECRET", "super-secret-key-change-me"),
		AdminPassHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		WebhookBaseURL: os.Getenv("WEBHOOK_BASE_URL"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		PollTimeout:    getEnv("POLL_TIMEOUT", "30"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
