package filter

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/dateparse"
	"github.com/maine/polymer_news/internal/news"
)

// Filter реализует входной фильтр прогона: счётчик показов, удаление повторов по ссылке
// и отсечение по дате.
type Filter struct {
	defaultDays int
	clock       func() time.Time
	logger      zerolog.Logger
}

// New создаёт экземпляр фильтра. clock == nil означает time.Now.
func New(cfg config.Pipeline, clock func() time.Time, logger zerolog.Logger) *Filter {
	if clock == nil {
		clock = time.Now
	}
	return &Filter{defaultDays: cfg.DaysAgo, clock: clock, logger: logger}
}

// Apply реализует app.Filter. daysAgo <= 0 означает значение из конфигурации.
func (f *Filter) Apply(ctx context.Context, articles []news.Article, daysAgo int) ([]news.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if daysAgo <= 0 {
		daysAgo = f.defaultDays
	}

	counted := CountExposures(articles)
	unique := DedupeLinks(counted)
	recent := WithinDays(unique, daysAgo, f.clock())

	f.logger.Info().
		Int("collected", len(articles)).
		Int("unique_links", len(unique)).
		Int("in_range", len(recent)).
		Int("days_ago", daysAgo).
		Msg("ingestion filter done")

	return recent, nil
}

// CountExposures проставляет каждой статье число появлений её ссылки во всей выборке.
// Считается до удаления повторов, иначе счётчик всегда равен 1.
func CountExposures(articles []news.Article) []news.Article {
	counts := make(map[string]int, len(articles))
	for _, a := range articles {
		counts[canonicalKey(a)]++
	}

	out := make([]news.Article, len(articles))
	for i, a := range articles {
		a.ExposureCount = counts[canonicalKey(a)]
		out[i] = a
	}
	return out
}

// DedupeLinks оставляет первое появление каждой ссылки.
func DedupeLinks(articles []news.Article) []news.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		key := canonicalKey(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// WithinDays оставляет статьи с датой не раньше now-days.
// Статьи с неразобранной датой считаются вне диапазона.
func WithinDays(articles []news.Article, days int, now time.Time) []news.Article {
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
	out := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		published, ok := dateparse.Parse(a.Date, now)
		if !ok || published.Before(cutoff) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// canonicalKey — ключ идентичности статьи. В ссылке к нижнему регистру
// приводятся только схема и хост: путь и query чувствительны к регистру.
func canonicalKey(article news.Article) string {
	link := strings.TrimSpace(article.Link)
	if link == "" {
		return strings.ToLower(strings.TrimSpace(article.Title))
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
