// Package fulltext загружает текст статей по ссылке и дополняет им отобранные новости.
package fulltext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

const (
	userAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodySize = 5 << 20
)

// Fetcher извлекает основной текст страницы.
type Fetcher struct {
	client *http.Client
}

// NewFetcher создаёт экземпляр. client == nil означает http.Client с таймаутом 10 секунд.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch загружает страницу и извлекает текст через readability,
// при пустом результате собирает абзацы <p>.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Scheme == "" || pageURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text, nil
		}
	}

	return paragraphs(body)
}

func paragraphs(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n"), nil
}

// TextFetcher загружает полный текст по ссылке.
type TextFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Enricher реализует app.Enricher.
type Enricher struct {
	fetcher      TextFetcher
	delay        time.Duration
	maxRunes     int
	snippetRunes int
	logger       zerolog.Logger
}

// NewEnricher создаёт экземпляр.
func NewEnricher(fetcher TextFetcher, cfg config.Pipeline, logger zerolog.Logger) *Enricher {
	maxRunes := cfg.FullTextMaxRunes
	if maxRunes <= 0 {
		maxRunes = 3000
	}
	snippetRunes := cfg.SnippetMaxRunes
	if snippetRunes <= 0 {
		snippetRunes = 500
	}
	return &Enricher{
		fetcher:      fetcher,
		delay:        cfg.FullTextDelay,
		maxRunes:     maxRunes,
		snippetRunes: snippetRunes,
		logger:       logger,
	}
}

// Enrich последовательно загружает полный текст каждой статьи.
// Ошибка загрузки даёт пустой текст; пустой сниппет заменяется началом полного текста.
func (e *Enricher) Enrich(ctx context.Context, articles []news.Article) ([]news.Article, error) {
	out := make([]news.Article, len(articles))
	fetched := 0

	for i, a := range articles {
		if i > 0 && e.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.delay):
			}
		}

		text, err := e.fetcher.Fetch(ctx, a.Link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Debug().Err(err).Str("link", a.Link).Msg("full text unavailable")
			text = ""
		}

		a.FullText = Truncate(text, e.maxRunes)
		if a.Snippet == "" && a.FullText != "" {
			a.Snippet = Truncate(a.FullText, e.snippetRunes)
		}
		if a.FullText != "" {
			fetched++
		}
		out[i] = a
	}

	e.logger.Info().Int("articles", len(articles)).Int("fetched", fetched).Msg("full text enrichment done")
	return out, nil
}

// Truncate обрезает строку до n символов (рун).
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
