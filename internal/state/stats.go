package state

import (
	"math"
	"time"

	"github.com/maine/polymer_news/internal/news"
)

// BuildStats сводит статьи по категориям в порядке первого появления категории:
// количество, средний балл с округлением до сотых и самое частое ключевое слово.
func BuildStats(articles []news.Article, period string, now time.Time) []news.StatRecord {
	type acc struct {
		count    int
		sum      float64
		keywords map[string]int
		order    []string
	}

	var categories []string
	byCategory := make(map[string]*acc)
	for _, a := range articles {
		c, ok := byCategory[a.Category]
		if !ok {
			c = &acc{keywords: make(map[string]int)}
			byCategory[a.Category] = c
			categories = append(categories, a.Category)
		}
		c.count++
		c.sum += a.StrategyScore
		if _, seen := c.keywords[a.Keyword]; !seen {
			c.order = append(c.order, a.Keyword)
		}
		c.keywords[a.Keyword]++
	}

	records := make([]news.StatRecord, 0, len(categories))
	for _, name := range categories {
		c := byCategory[name]
		records = append(records, news.StatRecord{
			Period:     period,
			Category:   name,
			Count:      c.count,
			AvgScore:   math.Round(c.sum/float64(c.count)*100) / 100,
			TopKeyword: topKeyword(c.order, c.keywords),
			CreatedAt:  now,
		})
	}
	return records
}

// topKeyword при равенстве частот выбирает слово, встретившееся раньше.
func topKeyword(order []string, counts map[string]int) string {
	best, bestCount := "", 0
	for _, kw := range order {
		if counts[kw] > bestCount {
			best, bestCount = kw, counts[kw]
		}
	}
	return best
}
