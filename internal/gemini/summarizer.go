package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
)

// Маркеры, которые попадают в поле summary вместо текста модели.
const (
	SkippedMarker   = "-"
	NoAPIKeyMarker  = "API 키 없음"
	failurePrefix   = "요약 실패: "
	failureErrRunes = 50
)

// Summarizer реализует app.Summarizer: по одному запросу к Gemini на статью.
type Summarizer struct {
	client GeminiClient
	cfg    config.Gemini
	logger zerolog.Logger
}

// NewSummarizer создаёт новый экземпляр суммаризатора. client == nil означает,
// что ключ API не задан: каждая статья получает NoAPIKeyMarker.
func NewSummarizer(client GeminiClient, geminiCfg config.Gemini, logger zerolog.Logger) *Summarizer {
	if geminiCfg.ContentMaxRune <= 0 {
		geminiCfg.ContentMaxRune = 2000
	}
	return &Summarizer{client: client, cfg: geminiCfg, logger: logger}
}

// Summarize реализует app.Summarizer. Ошибка модели не прерывает прогон,
// а превращается в видимый маркер в поле Summary.
func (s *Summarizer) Summarize(ctx context.Context, articles []news.Article) ([]news.Article, error) {
	out := make([]news.Article, len(articles))
	copy(out, articles)

	if s.client == nil {
		s.logger.Warn().Msg("gemini API key is not set, summaries skipped")
		for i := range out {
			out[i].Summary = NoAPIKeyMarker
		}
		return out, nil
	}

	failed := 0
	for i := range out {
		if i > 0 && s.cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RequestDelay):
			}
		}

		text, err := s.client.GenerateText(ctx, s.cfg.ModelSummary, s.buildPrompt(out[i]))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failed++
			s.logger.Warn().Err(err).Str("link", out[i].Link).Msg("summary failed")
			out[i].Summary = FailureMarker(err)
			continue
		}
		out[i].Summary = text
	}

	s.logger.Info().
		Int("articles", len(out)).
		Int("failed", failed).
		Msg("summarization done")
	return out, nil
}

// Skip проставляет SkippedMarker всем статьям (режим без суммаризации).
func Skip(articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	copy(out, articles)
	for i := range out {
		out[i].Summary = SkippedMarker
	}
	return out
}

// Skip реализует app.Summarizer для прогона без суммаризации.
func (s *Summarizer) Skip(articles []news.Article) []news.Article {
	return Skip(articles)
}

// FailureMarker формирует «요약 실패: <первые 50 символов ошибки>».
func FailureMarker(err error) string {
	msg := []rune(err.Error())
	if len(msg) > failureErrRunes {
		msg = msg[:failureErrRunes]
	}
	return failurePrefix + string(msg)
}

func (s *Summarizer) buildPrompt(a news.Article) string {
	content := a.FullText
	if content == "" {
		content = a.Snippet
	}
	runes := []rune(content)
	if len(runes) > s.cfg.ContentMaxRune {
		runes = runes[:s.cfg.ContentMaxRune]
	}
	return fmt.Sprintf("%s\n\n제목: %s\n내용: %s", s.cfg.SystemPrompt, a.Title, string(runes))
}
