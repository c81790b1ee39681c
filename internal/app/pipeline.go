package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/news"
	"github.com/maine/polymer_news/internal/period"
	"github.com/maine/polymer_news/internal/ranking"
	"github.com/maine/polymer_news/internal/state"
)

var (
	// ErrNotConfigured возвращается, когда пайплайн запущен без обязательных зависимостей.
	ErrNotConfigured = errors.New("pipeline dependencies not configured")
	// ErrNoCategories возвращается, если не выбрана ни одна Main-категория.
	ErrNoCategories = errors.New("at least one main category must be selected")
	// ErrNoArticles возвращается, если поиск не дал ни одной статьи.
	ErrNoArticles = errors.New("search returned no articles")
)

// Clock определяет источник времени (удобно подменять в тестах).
type Clock func() time.Time

// SourceCollector опрашивает поисковые источники по списку запросов.
type SourceCollector interface {
	Collect(ctx context.Context, queries []config.KeywordQuery) ([]news.Article, error)
}

// Filter считает охват, убирает повторы ссылок и отсекает старые статьи.
type Filter interface {
	Apply(ctx context.Context, articles []news.Article, daysAgo int) ([]news.Article, error)
}

// Deduplicator удаляет почти одинаковые статьи.
type Deduplicator interface {
	Apply(articles []news.Article) []news.Article
}

// Scorer классифицирует, оценивает и сортирует статьи.
type Scorer interface {
	Score(articles []news.Article) []news.Article
}

// Enricher дополняет статьи полным текстом.
type Enricher interface {
	Enrich(ctx context.Context, articles []news.Article) ([]news.Article, error)
}

// Summarizer создаёт краткие корейские summary.
type Summarizer interface {
	Summarize(ctx context.Context, articles []news.Article) ([]news.Article, error)
	Skip(articles []news.Article) []news.Article
}

// Formatter собирает письмо-дайджест.
type Formatter interface {
	BuildDigest(articles []news.Article, periodLabel string) (news.Digest, error)
}

// Exporter сохраняет xlsx-отчёт и возвращает путь к нему.
type Exporter interface {
	Export(articles []news.Article, periodLabel string) (string, error)
}

// StatsStore ведёт журнал статистики по категориям.
type StatsStore interface {
	Append(ctx context.Context, records []news.StatRecord) error
}

// SnapshotStore хранит результат последнего прогона.
type SnapshotStore interface {
	Load(ctx context.Context) (news.Snapshot, error)
	Save(ctx context.Context, snap news.Snapshot) error
}

// Mailer отправляет дайджест или сохраняет его черновиком.
type Mailer interface {
	Send(ctx context.Context, digest news.Digest, attachment string) error
	SaveDraft(digest news.Digest, attachment string) (string, error)
}

// PipelineDeps перечисляет зависимости пайплайна.
// Enricher, Exporter, StatsStore и Mailer опциональны.
type PipelineDeps struct {
	Taxonomy     config.Taxonomy
	Collector    SourceCollector
	Filter       Filter
	Deduplicator Deduplicator
	Scorer       Scorer
	Enricher     Enricher
	Summarizer   Summarizer
	Formatter    Formatter
	Exporter     Exporter
	StatsStore   StatsStore
	Snapshots    SnapshotStore
	Mailer       Mailer
	Clock        Clock
	Logger       zerolog.Logger
}

// Request — параметры одного прогона.
type Request struct {
	Categories   []string
	Window       period.Window
	TopN         int
	SkipSummary  bool
	SkipFullText bool
}

// Result описывает итог сборки дайджеста.
type Result struct {
	RunID      string
	Window     period.Window
	Articles   []news.Article
	Digest     news.Digest
	ReportPath string
	Stats      []news.StatRecord
}

// Pipeline инкапсулирует сборку и доставку дайджеста.
type Pipeline struct {
	taxonomy     config.Taxonomy
	collector    SourceCollector
	filter       Filter
	deduplicator Deduplicator
	scorer       Scorer
	enricher     Enricher
	summarizer   Summarizer
	formatter    Formatter
	exporter     Exporter
	stats        StatsStore
	snapshots    SnapshotStore
	mailer       Mailer
	clock        Clock
	logger       zerolog.Logger
}

// NewPipeline создаёт новый экземпляр пайплайна.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Pipeline{
		taxonomy:     deps.Taxonomy,
		collector:    deps.Collector,
		filter:       deps.Filter,
		deduplicator: deps.Deduplicator,
		scorer:       deps.Scorer,
		enricher:     deps.Enricher,
		summarizer:   deps.Summarizer,
		formatter:    deps.Formatter,
		exporter:     deps.Exporter,
		stats:        deps.StatsStore,
		snapshots:    deps.Snapshots,
		mailer:       deps.Mailer,
		clock:        clock,
		logger:       deps.Logger,
	}
}

// Run собирает дайджест и сразу доставляет его: отправляет письмо
// или, при draft, сохраняет черновик.
func (p *Pipeline) Run(ctx context.Context, req Request, draft bool) (Result, error) {
	res, err := p.Build(ctx, req)
	if err != nil {
		return Result{}, err
	}
	if err := p.deliver(ctx, res.Digest, res.ReportPath, draft); err != nil {
		return res, err
	}
	return res, nil
}

// Build выполняет все стадии до экспорта включительно и сохраняет снапшот.
func (p *Pipeline) Build(ctx context.Context, req Request) (Result, error) {
	if err := p.validateBuild(); err != nil {
		return Result{}, err
	}
	if !p.taxonomy.HasMainCategory(req.Categories) {
		return Result{}, ErrNoCategories
	}

	queries := p.taxonomy.Queries(req.Categories)
	log := p.logger.With().Str("period", req.Window.Label).Logger()

	log.Info().Int("queries", len(queries)).Msg("step 1: collecting articles")
	collected, err := p.collector.Collect(ctx, queries)
	if err != nil {
		return Result{}, fmt.Errorf("collect articles: %w", err)
	}
	if len(collected) == 0 {
		return Result{}, ErrNoArticles
	}

	log.Info().Int("articles", len(collected)).Msg("step 2: filtering articles")
	filtered, err := p.filter.Apply(ctx, collected, req.Window.DaysAgo)
	if err != nil {
		return Result{}, fmt.Errorf("filter articles: %w", err)
	}

	log.Info().Int("articles", len(filtered)).Msg("step 3: removing similar articles")
	unique := p.deduplicator.Apply(filtered)

	log.Info().Int("articles", len(unique)).Msg("step 4: scoring articles")
	scored := p.scorer.Score(unique)
	top := ranking.SelectTop(scored, req.TopN)
	log.Info().Int("eligible", len(scored)).Int("selected", len(top)).Msg("top articles selected")

	if p.enricher != nil && !req.SkipFullText {
		log.Info().Int("articles", len(top)).Msg("step 5: fetching full text")
		top, err = p.enricher.Enrich(ctx, top)
		if err != nil {
			return Result{}, fmt.Errorf("enrich articles: %w", err)
		}
	}

	if req.SkipSummary {
		top = p.summarizer.Skip(top)
	} else {
		log.Info().Int("articles", len(top)).Msg("step 6: summarizing articles")
		top, err = p.summarizer.Summarize(ctx, top)
		if err != nil {
			return Result{}, fmt.Errorf("summarize articles: %w", err)
		}
	}

	now := p.clock()
	res := Result{
		RunID:    uuid.NewString(),
		Window:   req.Window,
		Articles: top,
		Stats:    state.BuildStats(top, req.Window.Label, now),
	}

	log.Info().Msg("step 7: building digest and report")
	res.Digest, err = p.formatter.BuildDigest(top, req.Window.Label)
	if err != nil {
		return Result{}, fmt.Errorf("build digest: %w", err)
	}

	if p.exporter != nil {
		path, err := p.exporter.Export(top, req.Window.Label)
		if err != nil {
			log.Warn().Err(err).Msg("report export failed")
		} else {
			res.ReportPath = path
		}
	}

	if p.stats != nil {
		if err := p.stats.Append(ctx, res.Stats); err != nil {
			log.Warn().Err(err).Msg("stats log update failed")
		}
	}

	snap := news.Snapshot{
		RunID:       res.RunID,
		PeriodLabel: req.Window.Label,
		CreatedAt:   now,
		Articles:    top,
		ReportPath:  res.ReportPath,
	}
	if err := p.snapshots.Save(ctx, snap); err != nil {
		return Result{}, fmt.Errorf("save snapshot: %w", err)
	}

	log.Info().Str("run_id", res.RunID).Int("articles", len(top)).Str("report", res.ReportPath).Msg("digest built")
	return res, nil
}

// Send доставляет дайджест из последнего сохранённого снапшота.
func (p *Pipeline) Send(ctx context.Context, draft bool) (news.Snapshot, error) {
	if p.snapshots == nil || p.formatter == nil || p.mailer == nil {
		return news.Snapshot{}, ErrNotConfigured
	}

	snap, err := p.snapshots.Load(ctx)
	if err != nil {
		return news.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	digest, err := p.formatter.BuildDigest(snap.Articles, snap.PeriodLabel)
	if err != nil {
		return news.Snapshot{}, fmt.Errorf("build digest: %w", err)
	}
	if err := p.deliver(ctx, digest, snap.ReportPath, draft); err != nil {
		return snap, err
	}
	return snap, nil
}

func (p *Pipeline) deliver(ctx context.Context, digest news.Digest, attachment string, draft bool) error {
	if p.mailer == nil {
		return ErrNotConfigured
	}
	if draft {
		path, err := p.mailer.SaveDraft(digest, attachment)
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		p.logger.Info().Str("path", path).Msg("draft saved")
		return nil
	}
	if err := p.mailer.Send(ctx, digest, attachment); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	return nil
}

func (p *Pipeline) validateBuild() error {
	switch {
	case p.collector == nil,
		p.filter == nil,
		p.deduplicator == nil,
		p.scorer == nil,
		p.summarizer == nil,
		p.formatter == nil,
		p.snapshots == nil,
		p.clock == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}
