package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// GoogleNewsSourceName — источник по умолчанию, если в заголовке нет « - издание».
const GoogleNewsSourceName = "Google News"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// GoogleNewsClient ищет новости через RSS-поиск Google News (некорейские запросы).
type GoogleNewsClient struct {
	endpoint string
	num      int
	language string
	client   *http.Client
	parser   *gofeed.Parser
}

// NewGoogleNewsClient создаёт клиент. client == nil означает http.Client с таймаутом из конфигурации.
func NewGoogleNewsClient(cfg config.Search, client *http.Client) *GoogleNewsClient {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	num := cfg.GoogleNum
	if num <= 0 {
		num = 20
	}
	return &GoogleNewsClient{
		endpoint: cfg.GoogleEndpoint,
		num:      num,
		language: cfg.GoogleLanguage,
		client:   client,
		parser:   gofeed.NewParser(),
	}
}

// Search реализует Searcher.
func (c *GoogleNewsClient) Search(ctx context.Context, keyword string) ([]news.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(keyword), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS: %w", err)
	}

	items := feed.Items
	if len(items) > c.num {
		items = items[:c.num]
	}

	articles := make([]news.Article, 0, len(items))
	for _, item := range items {
		title, source := splitSource(item.Title)
		articles = append(articles, news.Article{
			Title:   title,
			Link:    strings.TrimSpace(item.Link),
			Date:    item.Published,
			Source:  source,
			Keyword: keyword,
		})
	}
	return articles, nil
}

func (c *GoogleNewsClient) searchURL(keyword string) string {
	params := url.Values{}
	params.Set("q", keyword)
	if c.language == "ko" {
		params.Set("hl", "ko")
		params.Set("gl", "KR")
		params.Set("ceid", "KR:ko")
	} else {
		params.Set("hl", "en")
		params.Set("gl", "US")
		params.Set("ceid", "US:en")
	}
	return c.endpoint + "?" + params.Encode()
}

// splitSource делит «Заголовок - Издание» по последнему « - ».
func splitSource(raw string) (string, string) {
	idx := strings.LastIndex(raw, " - ")
	if idx < 0 {
		return raw, GoogleNewsSourceName
	}
	source := raw[idx+len(" - "):]
	if source == "" {
		source = GoogleNewsSourceName
	}
	return raw[:idx], source
}
