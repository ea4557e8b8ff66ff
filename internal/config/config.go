package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// SMTP holds the outbound mail relay settings. All five values must be set
// for mail to be enabled; secrets come from the environment, never from code.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string // contact form recipient, defaults to From
}

type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	SiteURL       string
	SMTP          SMTP
}

// Load reads configuration from a .env file if present, then the process
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   getenv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=caspian port=5432 sslmode=disable"),
		SessionSecret: getenv("SESSION_SECRET", "secret_key_change_me"),
		SiteURL:       getenv("SITE_URL", "http://localhost:8080"),
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     os.Getenv("SMTP_PORT"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
	cfg.SMTP.To = getenv("CONTACT_TO", cfg.SMTP.From)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
