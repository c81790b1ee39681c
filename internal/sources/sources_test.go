package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

const naverPayload = `{
  "items": [
    {
      "title": "<b>에쓰오일</b> 샤힌 프로젝트 &quot;순항&quot;",
      "originallink": "https://www.example.co.kr/a/1",
      "link": "https://n.news.naver.com/1",
      "description": "울산 <b>석유화학</b> 단지",
      "pubDate": "Tue, 14 Oct 2025 11:40:00 +0900"
    },
    {
      "title": "폴리에틸렌 시황",
      "originallink": "",
      "link": "https://n.news.naver.com/2",
      "description": "",
      "pubDate": "Tue, 14 Oct 2025 09:00:00 +0900"
    }
  ]
}`

func TestNaverClient_Search(t *testing.T) {
	var gotQuery, gotID, gotSecret, gotSort string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotSort = r.URL.Query().Get("sort")
		gotID = r.Header.Get("X-Naver-Client-Id")
		gotSecret = r.Header.Get("X-Naver-Client-Secret")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, naverPayload)
	}))
	defer server.Close()

	cfg := config.Default().Search
	cfg.NaverEndpoint = server.URL
	client := NewNaverClient(cfg, "id", "secret", server.Client())

	got, err := client.Search(context.Background(), "에쓰오일")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotQuery != "에쓰오일" || gotSort != "date" {
		t.Errorf("query = %q sort = %q", gotQuery, gotSort)
	}
	if gotID != "id" || gotSecret != "secret" {
		t.Errorf("credentials headers = %q/%q", gotID, gotSecret)
	}
	if len(got) != 2 {
		t.Fatalf("Search() len = %d, want 2", len(got))
	}

	first := got[0]
	if first.Title != `에쓰오일 샤힌 프로젝트 "순항"` {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Snippet != "울산 석유화학 단지" {
		t.Errorf("Snippet = %q", first.Snippet)
	}
	if first.Link != "https://www.example.co.kr/a/1" {
		t.Errorf("Link = %q, want originallink", first.Link)
	}
	if first.Source != NaverSourceName || first.Keyword != "에쓰오일" {
		t.Errorf("Source/Keyword = %q/%q", first.Source, first.Keyword)
	}
	if first.Date != "Tue, 14 Oct 2025 11:40:00 +0900" {
		t.Errorf("Date = %q", first.Date)
	}
	if got[1].Link != "https://n.news.naver.com/2" {
		t.Errorf("Link = %q, want fallback to link", got[1].Link)
	}
}

func TestNaverClient_SearchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	cfg := config.Default().Search
	cfg.NaverEndpoint = server.URL
	client := NewNaverClient(cfg, "id", "bad", server.Client())

	if _, err := client.Search(context.Background(), "아람코"); err == nil {
		t.Error("Search() should fail on 401")
	}
}

const googlePayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"polyethylene" - Google News</title>
    <item>
      <title>Polyethylene prices slip in Asia - ICIS</title>
      <link>https://news.google.com/articles/1</link>
      <pubDate>Tue, 14 Oct 2025 07:00:00 GMT</pubDate>
      <description>&lt;a href="x"&gt;Polyethylene prices slip&lt;/a&gt;</description>
    </item>
    <item>
      <title>Sabic - Dow - joint venture update - Reuters</title>
      <link>https://news.google.com/articles/2</link>
      <pubDate>Mon, 13 Oct 2025 07:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No publisher in title</title>
      <link>https://news.google.com/articles/3</link>
      <pubDate>Sun, 12 Oct 2025 07:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestGoogleNewsClient_Search(t *testing.T) {
	var gotQuery, gotHL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotHL = r.URL.Query().Get("hl")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, googlePayload)
	}))
	defer server.Close()

	cfg := config.Default().Search
	cfg.GoogleEndpoint = server.URL
	cfg.GoogleNum = 2
	client := NewGoogleNewsClient(cfg, server.Client())

	got, err := client.Search(context.Background(), "Polyethylene")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "Polyethylene" || gotHL != "en" {
		t.Errorf("q = %q hl = %q", gotQuery, gotHL)
	}
	if len(got) != 2 {
		t.Fatalf("Search() len = %d, want 2 (GoogleNum)", len(got))
	}

	if got[0].Title != "Polyethylene prices slip in Asia" || got[0].Source != "ICIS" {
		t.Errorf("got[0] = %q / %q", got[0].Title, got[0].Source)
	}
	if got[0].Snippet != "" {
		t.Errorf("Snippet = %q, want empty", got[0].Snippet)
	}
	if got[0].Date != "Tue, 14 Oct 2025 07:00:00 GMT" {
		t.Errorf("Date = %q", got[0].Date)
	}
	if got[1].Title != "Sabic - Dow - joint venture update" || got[1].Source != "Reuters" {
		t.Errorf("got[1] = %q / %q", got[1].Title, got[1].Source)
	}
}

func TestSplitSource(t *testing.T) {
	tests := []struct {
		raw        string
		wantTitle  string
		wantSource string
	}{
		{"Title - Bloomberg", "Title", "Bloomberg"},
		{"A - B - C", "A - B", "C"},
		{"No separator", "No separator", GoogleNewsSourceName},
		{"Trailing - ", "Trailing", GoogleNewsSourceName},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			title, source := splitSource(tt.raw)
			if title != tt.wantTitle || source != tt.wantSource {
				t.Errorf("splitSource(%q) = %q, %q; want %q, %q", tt.raw, title, source, tt.wantTitle, tt.wantSource)
			}
		})
	}
}

func TestIsKorean(t *testing.T) {
	cases := map[string]bool{
		"폴리에틸렌":        true,
		"S-OIL 에쓰오일":   true,
		"Polyethylene": false,
		"":             false,
	}
	for keyword, want := range cases {
		if got := IsKorean(keyword); got != want {
			t.Errorf("IsKorean(%q) = %v, want %v", keyword, got, want)
		}
	}
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (f *fakeSearcher) Search(_ context.Context, keyword string) ([]news.Article, error) {
	f.mu.Lock()
	f.calls = append(f.calls, keyword)
	f.mu.Unlock()
	if f.fail[keyword] {
		return nil, errors.New("boom")
	}
	return []news.Article{
		{Title: keyword + " 1", Link: "https://example.com/" + keyword + "/1"},
		{Title: keyword + " 2", Link: "https://example.com/" + keyword + "/2"},
	}, nil
}

func TestCollector_Collect(t *testing.T) {
	korean := &fakeSearcher{fail: map[string]bool{"아람코": true}}
	global := &fakeSearcher{}
	c := NewCollector(korean, global, time.Millisecond, zerolog.Nop())

	queries := []config.KeywordQuery{
		{Category: "PE", Keyword: "Polyethylene"},
		{Category: "PE", Keyword: "폴리에틸렌"},
		{Category: "ARAMCO", Keyword: "Aramco"},
		{Category: "ARAMCO", Keyword: "아람코"},
	}

	got, err := c.Collect(context.Background(), queries)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(korean.calls) != 2 || korean.calls[0] != "폴리에틸렌" || korean.calls[1] != "아람코" {
		t.Errorf("korean calls = %v", korean.calls)
	}
	if len(global.calls) != 2 || global.calls[0] != "Polyethylene" || global.calls[1] != "Aramco" {
		t.Errorf("global calls = %v", global.calls)
	}

	wantKeywords := []string{"Polyethylene", "Polyethylene", "폴리에틸렌", "폴리에틸렌", "Aramco", "Aramco"}
	if len(got) != len(wantKeywords) {
		t.Fatalf("Collect() len = %d, want %d", len(got), len(wantKeywords))
	}
	for i, a := range got {
		if a.Keyword != wantKeywords[i] {
			t.Errorf("got[%d].Keyword = %q, want %q", i, a.Keyword, wantKeywords[i])
		}
	}
	if got[0].Category != "PE" || got[4].Category != "ARAMCO" {
		t.Errorf("categories = %q, %q", got[0].Category, got[4].Category)
	}
}

func TestCollector_CollectCancelled(t *testing.T) {
	c := NewCollector(&fakeSearcher{}, &fakeSearcher{}, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, []config.KeywordQuery{{Category: "PE", Keyword: "PE"}})
	if err == nil {
		t.Error("Collect() should return context error")
	}
}
