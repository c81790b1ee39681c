// Package dedup схлопывает почти одинаковые новости по TF-IDF косинусной близости
// заголовка и начала сниппета. Порядок входа значим: выживает первая встреченная статья.
package dedup

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/news"
)

// snippetRunes — сколько символов сниппета попадает в строку сравнения.
const snippetRunes = 200

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"sets", "set", "up", "launches", "launch", "secures", "secure",
		"advances", "advance", "begins", "begin", "starts", "start",
		"announces", "announce", "unveils", "unveil", "reveals", "reveal",
		"plans", "plan", "opens", "open", "closes", "close",
		"the", "a", "an", "to", "for", "with", "in", "on", "at", "by",
		"its", "their", "new", "will", "has", "have", "is", "are",
		"개최", "열어", "진행", "발표", "공개", "시작", "추진", "계획",
		"을", "를", "이", "가", "은", "는", "의", "에", "에서", "로", "으로",
	} {
		stopWords[w] = struct{}{}
	}
}

// Deduplicator реализует app.Deduplicator.
type Deduplicator struct {
	threshold float64
	logger    zerolog.Logger
}

// New создаёт дедупликатор с порогом сходства из (0,1].
func New(threshold float64, logger zerolog.Logger) *Deduplicator {
	return &Deduplicator{threshold: threshold, logger: logger}
}

// Apply удаляет почти-дубликаты. Ошибки векторизации не прерывают прогон.
func (d *Deduplicator) Apply(articles []news.Article) []news.Article {
	out, err := dedupe(articles, d.threshold)
	if err != nil {
		d.logger.Warn().Err(err).Int("articles", len(articles)).Msg("similarity dedup skipped")
		return articles
	}
	d.logger.Info().
		Int("before", len(articles)).
		Int("after", len(out)).
		Int("removed", len(articles)-len(out)).
		Float64("threshold", d.threshold).
		Msg("similarity dedup done")
	return out
}

// Dedupe не пишет в лог; при ошибке векторизации возвращает вход без изменений.
func Dedupe(articles []news.Article, threshold float64) []news.Article {
	out, err := dedupe(articles, threshold)
	if err != nil {
		return articles
	}
	return out
}

func dedupe(articles []news.Article, threshold float64) ([]news.Article, error) {
	if len(articles) < 2 {
		return articles, nil
	}

	texts := make([]string, len(articles))
	empty := true
	for i, a := range articles {
		texts[i] = ComparisonText(a.Title, a.Snippet)
		if texts[i] != "" {
			empty = false
		}
	}
	if empty {
		return articles, nil
	}

	sim, err := SimilarityMatrix(texts)
	if err != nil {
		return nil, err
	}

	removed := Duplicates(sim, threshold)

	out := make([]news.Article, 0, len(articles))
	for i, a := range articles {
		if !removed[i] {
			out = append(out, a)
		}
	}
	return out, nil
}

// Duplicates проходит статьи по порядку и помечает каждую более позднюю статью,
// похожую на текущую не меньше threshold. Удалённая статья тоже «забирает» свои
// последующие дубликаты, поэтому цепочка A~B~C оставляет только A.
// Уже помеченные строки не пропускаются: помеченная B удаляет и C.
func Duplicates(sim [][]float64, threshold float64) []bool {
	removed := make([]bool, len(sim))
	for i := range sim {
		for j := i + 1; j < len(sim); j++ {
			if sim[i][j] >= threshold {
				removed[j] = true
			}
		}
	}
	return removed
}

// ComparisonText собирает нормализованную строку сравнения:
// заголовок и первые 200 символов сниппета в нижнем регистре без стоп-слов.
func ComparisonText(title, snippet string) string {
	runes := []rune(snippet)
	if len(runes) > snippetRunes {
		runes = runes[:snippetRunes]
	}
	text := strings.ToLower(title) + " " + strings.ToLower(string(runes))

	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
