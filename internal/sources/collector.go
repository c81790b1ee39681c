// Package sources собирает сырые статьи из двух поисковых источников:
// Naver для корейских ключевых слов и Google News RSS для остальных.
package sources

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// Searcher ищет статьи по одному ключевому слову.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]news.Article, error)
}

var hangul = regexp.MustCompile(`[가-힣]`)

// IsKorean сообщает, содержит ли ключевое слово хангыль.
func IsKorean(keyword string) bool {
	return hangul.MatchString(keyword)
}

// Collector реализует app.SourceCollector.
type Collector struct {
	korean Searcher
	global Searcher
	delay  time.Duration
	logger zerolog.Logger
}

// NewCollector создаёт сборщик. delay задаёт минимальный интервал между запросами к одному источнику.
func NewCollector(korean, global Searcher, delay time.Duration, logger zerolog.Logger) *Collector {
	return &Collector{korean: korean, global: global, delay: delay, logger: logger}
}

type lane struct {
	name     string
	searcher Searcher
	limiter  *rate.Limiter
	indexes  []int
}

// Collect реализует app.SourceCollector. Источники опрашиваются параллельно,
// запросы внутри источника идут последовательно с паузой. Результат собирается
// в порядке запросов, каждая статья помечается категорией запроса.
// Ошибка одного запроса даёт пустой результат только для него.
func (c *Collector) Collect(ctx context.Context, queries []config.KeywordQuery) ([]news.Article, error) {
	lanes := []*lane{
		{name: "naver", searcher: c.korean, limiter: c.newLimiter()},
		{name: "google", searcher: c.global, limiter: c.newLimiter()},
	}
	for i, q := range queries {
		if IsKorean(q.Keyword) {
			lanes[0].indexes = append(lanes[0].indexes, i)
		} else {
			lanes[1].indexes = append(lanes[1].indexes, i)
		}
	}

	results := make([][]news.Article, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range lanes {
		if len(l.indexes) == 0 {
			continue
		}
		g.Go(func() error {
			return c.runLane(gctx, l, queries, results)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []news.Article
	for i, items := range results {
		for _, a := range items {
			a.Category = queries[i].Category
			a.Keyword = queries[i].Keyword
			all = append(all, a)
		}
	}

	c.logger.Info().
		Int("queries", len(queries)).
		Int("naver_queries", len(lanes[0].indexes)).
		Int("google_queries", len(lanes[1].indexes)).
		Int("articles", len(all)).
		Msg("collection done")
	return all, nil
}

func (c *Collector) runLane(ctx context.Context, l *lane, queries []config.KeywordQuery, results [][]news.Article) error {
	for n, idx := range l.indexes {
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}
		q := queries[idx]
		items, err := l.searcher.Search(ctx, q.Keyword)
		if err != nil {
			c.logger.Warn().Err(err).
				Str("source", l.name).
				Str("keyword", q.Keyword).
				Msg("search failed, keyword skipped")
			continue
		}
		c.logger.Debug().
			Str("source", l.name).
			Str("keyword", q.Keyword).
			Int("progress", n+1).
			Int("total", len(l.indexes)).
			Int("items", len(items)).
			Msg("keyword searched")
		results[idx] = items
	}
	return nil
}

func (c *Collector) newLimiter() *rate.Limiter {
	if c.delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(c.delay), 1)
}
