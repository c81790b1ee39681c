package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// NaverSourceName — имя источника для статей из API поиска Naver.
const NaverSourceName = "네이버뉴스"

// NaverClient ищет новости через Naver Search API (корейские запросы).
type NaverClient struct {
	endpoint     string
	clientID     string
	clientSecret string
	display      int
	client       *http.Client
}

// NewNaverClient создаёт клиент. client == nil означает http.Client с таймаутом из конфигурации.
func NewNaverClient(cfg config.Search, clientID, clientSecret string, client *http.Client) *NaverClient {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	display := cfg.NaverDisplay
	if display <= 0 {
		display = 20
	}
	return &NaverClient{
		endpoint:     cfg.NaverEndpoint,
		clientID:     clientID,
		clientSecret: clientSecret,
		display:      display,
		client:       client,
	}
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// Search реализует Searcher.
func (c *NaverClient) Search(ctx context.Context, keyword string) ([]news.Article, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("display", strconv.Itoa(c.display))
	params.Set("sort", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]news.Article, 0, len(payload.Items))
	for _, item := range payload.Items {
		link := strings.TrimSpace(item.OriginalLink)
		if link == "" {
			link = strings.TrimSpace(item.Link)
		}
		articles = append(articles, news.Article{
			Title:   stripTags(item.Title),
			Link:    link,
			Snippet: stripTags(item.Description),
			Date:    item.PubDate,
			Source:  NaverSourceName,
			Keyword: keyword,
		})
	}
	return articles, nil
}

// stripTags убирает HTML-разметку (<b>…</b> подсветки) и раскрывает сущности.
func stripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
