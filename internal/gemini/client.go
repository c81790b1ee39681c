package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrMissingAPIKey возвращается, если ключ Gemini не задан.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// GeminiClient определяет интерфейс для работы с Gemini API.
// Это позволяет легко создавать моки для тестирования.
type GeminiClient interface {
	GenerateText(ctx context.Context, model string, prompt string) (string, error)
}

// Client инкапсулирует работу с Gemini API через официальный SDK.
type Client struct {
	client     *genai.Client
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// Убеждаемся, что Client реализует интерфейс GeminiClient.
var _ GeminiClient = (*Client)(nil)

// NewClient создаёт новый клиент для работы с Gemini API.
func NewClient(ctx context.Context, apiKey string, logger zerolog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		client:     client,
		maxRetries: 3,
		retryDelay: 5 * time.Second,
		logger:     logger,
	}, nil
}

// GenerateText отправляет запрос к Gemini API и возвращает текстовый ответ.
// Временные ошибки (429 без исчерпания квоты, 5xx) повторяются с линейной паузой.
func (c *Client) GenerateText(ctx context.Context, model string, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(attempt)
			c.logger.Warn().Err(lastErr).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying gemini request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err == nil {
			text, textErr := result.Text()
			if textErr != nil {
				return "", fmt.Errorf("get text from result: %w", textErr)
			}
			return strings.TrimSpace(text), nil
		}

		lastErr = err
		if !isRetryable(err.Error()) {
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryable(errStr string) bool {
	if isQuotaExceededError(errStr) {
		return false
	}
	return isRateLimitError(errStr) || isTemporaryError(errStr)
}

// isRateLimitError проверяет, является ли ошибка ограничением частоты (RPM/TPM).
func isRateLimitError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "rate limit") ||
		strings.Contains(errLower, "429") ||
		strings.Contains(errLower, "too many requests") ||
		strings.Contains(errLower, "resource exhausted")
}

// isTemporaryError проверяет, является ли ошибка временной (500, 502, 503, 504).
func isTemporaryError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "500") ||
		strings.Contains(errLower, "502") ||
		strings.Contains(errLower, "503") ||
		strings.Contains(errLower, "504") ||
		strings.Contains(errLower, "overloaded") ||
		strings.Contains(errLower, "service unavailable")
}

// isQuotaExceededError распознаёт исчерпанную дневную квоту.
func isQuotaExceededError(errStr string) bool {
	errLower := strings.ToLower(errStr)
	return strings.Contains(errLower, "quota") ||
		strings.Contains(errLower, "daily limit") ||
		strings.Contains(errLower, "403")
}
