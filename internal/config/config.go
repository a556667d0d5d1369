package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string

	GroqKey   string
	GroqModel string

	AWSRegion string
	SESFrom   string

	WorkflowWebhookURL string
	CronSecret         string
	WebhookSecret      string

	AppURL string
}

func Load() *Config {

	portStr := os.Getenv("DB_PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 5432 // fallback
	}

	model := os.Getenv("GROQ_MODEL")
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:3000"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "SUPER_SECRET_KEY_CHANGE_ME"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     port,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret: secret,

		GroqKey:   os.Getenv("GROQ_API_KEY"),
		GroqModel: model,

		AWSRegion: os.Getenv("AWS_REGION"),
		SESFrom:   os.Getenv("SES_FROM_EMAIL"),

		WorkflowWebhookURL: os.Getenv("WORKFLOW_WEBHOOK_URL"),
		CronSecret:         os.Getenv("CRON_SECRET"),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),

		AppURL: appURL,
	}
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
