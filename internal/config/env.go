package config

import (
	"errors"
	"os"
	"strconv"
)

// ErrMissingCredentials возвращается, если не заданы ключи поискового API.
var ErrMissingCredentials = errors.New("NAVER_CLIENT_ID and NAVER_CLIENT_SECRET environment variables are required")

// EnvConfig содержит токены и другие переменные окружения.
type EnvConfig struct {
	NaverClientID     string
	NaverClientSecret string
	GeminiAPIKey      string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	LogLevel          string
	PrettyLogs        bool
	SkipSummary       bool // Пропустить AI-суммаризацию (ускоряет прогон)
	SkipFullText      bool // Не загружать полный текст статей
}

// LoadEnvConfig читает переменные окружения. Обязательность ключей проверяет RequireSearch,
// потому что режимы send/serve работают без поискового API.
func LoadEnvConfig() *EnvConfig {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port <= 0 {
		port = 587
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &EnvConfig{
		NaverClientID:     os.Getenv("NAVER_CLIENT_ID"),
		NaverClientSecret: os.Getenv("NAVER_CLIENT_SECRET"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          port,
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		LogLevel:          logLevel,
		PrettyLogs:        os.Getenv("LOG_PRETTY") == "1",
		SkipSummary:       os.Getenv("SKIP_SUMMARY") == "1",
		SkipFullText:      os.Getenv("SKIP_FULLTEXT") == "1",
	}
}

// RequireSearch проверяет наличие ключей поискового API.
func (e *EnvConfig) RequireSearch() error {
	if e.NaverClientID == "" || e.NaverClientSecret == "" {
		return ErrMissingCredentials
	}
	return nil
}
