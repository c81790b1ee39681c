package ranking

import "github.com/maine/polymer_news/internal/news"

// SelectTop возвращает первые min(n, len) статей уже отсортированного списка.
// n <= 0 даёт пустой результат.
func SelectTop(articles []news.Article, n int) []news.Article {
	if n <= 0 {
		return []news.Article{}
	}
	if n > len(articles) {
		n = len(articles)
	}
	out := make([]news.Article, n)
	copy(out, articles[:n])
	return out
}
