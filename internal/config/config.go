package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	RecordsBaseURL   string
	AppPort          string
	AppEnv           string
	JWTSecret        string
	PayPayAPIKey     string
	PayPayAPISecret  string
	PayPayMerchantID string
	PayPayProduction bool
	RedirectBaseURL  string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		RecordsBaseURL:   os.Getenv("RECORDS_BASE_URL"),
		AppPort:          os.Getenv("APP_PORT"),
		AppEnv:           os.Getenv("APP_ENV"),
		JWTSecret:        os.Getenv("SECRET_KEY"),
		PayPayAPIKey:     os.Getenv("PAYPAY_API_KEY"),
		PayPayAPISecret:  os.Getenv("PAYPAY_API_SECRET"),
		PayPayMerchantID: os.Getenv("PAYPAY_MERCHANT_ID"),
		PayPayProduction: os.Getenv("PAYPAY_PRODUCTION") == "true",
		RedirectBaseURL:  os.Getenv("REDIRECT_BASE_URL"),
	}

	if cfg.RecordsBaseURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}
