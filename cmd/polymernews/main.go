package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/app"
	"github.com/maine/polymer_news/internal/config"
	"github.com/maine/polymer_news/internal/dedup"
	"github.com/maine/polymer_news/internal/export"
	"github.com/maine/polymer_news/internal/filter"
	"github.com/maine/polymer_news/internal/formatter"
	"github.com/maine/polymer_news/internal/fulltext"
	"github.com/maine/polymer_news/internal/gemini"
	"github.com/maine/polymer_news/internal/httpapi"
	"github.com/maine/polymer_news/internal/logging"
	"github.com/maine/polymer_news/internal/mailer"
	"github.com/maine/polymer_news/internal/period"
	"github.com/maine/polymer_news/internal/ranking"
	"github.com/maine/polymer_news/internal/sources"
	"github.com/maine/polymer_news/internal/state"
)

const usage = `usage: polymernews <run|build|send|serve|schedule> [flags]

  run       collect, score, export and mail the digest
  build     collect, score and export; save the snapshot without mailing
  send      mail the digest of the last saved snapshot
  serve     serve the last snapshot over HTTP
  schedule  run on the configured cron schedule
`

type options struct {
	configPath   string
	taxonomyPath string
	periodKind   string
	categories   string
	start        string
	end          string
	draft        bool
	addr         string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	mode := os.Args[1]

	var opts options
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	fs.StringVar(&opts.configPath, "config", "configs/pipeline.yaml", "pipeline config")
	fs.StringVar(&opts.taxonomyPath, "taxonomy", "configs/taxonomy.yaml", "keyword taxonomy")
	fs.StringVar(&opts.periodKind, "period", "", "report period: "+strings.Join(period.Kinds(), ", "))
	fs.StringVar(&opts.categories, "categories", "", "comma-separated categories (default: config, then all)")
	fs.StringVar(&opts.start, "start", "", "custom period start, YYYY-MM-DD")
	fs.StringVar(&opts.end, "end", "", "custom period end, YYYY-MM-DD")
	fs.BoolVar(&opts.draft, "draft", false, "save the mail as .eml instead of sending")
	fs.StringVar(&opts.addr, "addr", ":8080", "listen address for serve")
	_ = fs.Parse(os.Args[2:])

	env := config.LoadEnvConfig()
	logger := logging.New(env.LogLevel, env.PrettyLogs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, mode, opts, env, logger); err != nil {
		logger.Error().Err(err).Str("mode", mode).Msg("polymernews failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, mode string, opts options, env *config.EnvConfig, logger zerolog.Logger) error {
	rootCfg, err := config.LoadRoot(opts.configPath)
	if err != nil {
		return fmt.Errorf("load pipeline config: %w", err)
	}

	loc, err := time.LoadLocation(rootCfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", rootCfg.Schedule.Timezone, err)
	}
	clock := func() time.Time { return time.Now().In(loc) }

	snapshots := state.NewFileStore(rootCfg.Storage.SnapshotPath)
	stats, err := state.OpenStatsStore(rootCfg.Storage.StatsDB)
	if err != nil {
		return fmt.Errorf("open stats store: %w", err)
	}
	defer stats.Close()

	digests := formatter.NewFormatter(rootCfg.Mail, clock)
	mail := mailer.New(rootCfg.Mail, mailer.SMTPFromEnv(env), clock, logger)

	switch mode {
	case "serve":
		h := httpapi.NewHandler(snapshots, stats, digests, clock, logger)
		return serve(ctx, opts.addr, httpapi.NewRouter(h, nil), logger)
	case "send":
		p := app.NewPipeline(app.PipelineDeps{Formatter: digests, Snapshots: snapshots, Mailer: mail, Clock: clock, Logger: logger})
		snap, err := p.Send(ctx, opts.draft)
		if err != nil {
			return err
		}
		logger.Info().Str("run_id", snap.RunID).Str("period", snap.PeriodLabel).Msg("snapshot delivered")
		return nil
	case "run", "build", "schedule":
	default:
		return fmt.Errorf("unknown mode %q\n%s", mode, usage)
	}

	// Ключи поиска проверяются до запуска любой стадии
	if err := env.RequireSearch(); err != nil {
		return err
	}

	tax, err := config.LoadTaxonomy(opts.taxonomyPath)
	if err != nil {
		return fmt.Errorf("load taxonomy: %w", err)
	}

	summarizer, err := newSummarizer(ctx, env, rootCfg.Gemini, logger)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: rootCfg.Search.Timeout}
	collector := sources.NewCollector(
		sources.NewNaverClient(rootCfg.Search, env.NaverClientID, env.NaverClientSecret, httpClient),
		sources.NewGoogleNewsClient(rootCfg.Search, httpClient),
		rootCfg.Pipeline.SearchDelay,
		logger,
	)

	p := app.NewPipeline(app.PipelineDeps{
		Taxonomy:     tax,
		Collector:    collector,
		Filter:       filter.New(rootCfg.Pipeline, clock, logger),
		Deduplicator: dedup.New(rootCfg.Scoring.SimilarityThreshold, logger),
		Scorer:       ranking.NewScorer(rootCfg.Scoring, rootCfg.SourcePriority, tax, clock, logger),
		Enricher:     fulltext.NewEnricher(fulltext.NewFetcher(nil), rootCfg.Pipeline, logger),
		Summarizer:   summarizer,
		Formatter:    digests,
		Exporter:     export.NewExporter(rootCfg.Pipeline.ExportDir, clock),
		StatsStore:   stats,
		Snapshots:    snapshots,
		Mailer:       mail,
		Clock:        clock,
		Logger:       logger,
	})

	newRequest := func() (app.Request, error) {
		req, err := buildRequest(opts, rootCfg, env, clock())
		if err != nil {
			return app.Request{}, err
		}
		if unknown := unknownCategories(tax, req.Categories); len(unknown) > 0 {
			logger.Warn().
				Strs("unknown", unknown).
				Strs("valid", tax.CategoryNames()).
				Msg("ignoring unknown categories")
		}
		return req, nil
	}

	if mode == "schedule" {
		return schedule(ctx, rootCfg.Schedule, loc, p, newRequest, opts.draft, logger)
	}

	req, err := newRequest()
	if err != nil {
		return err
	}
	if mode == "build" {
		_, err = p.Build(ctx, req)
		return err
	}
	_, err = p.Run(ctx, req, opts.draft)
	return err
}

func newSummarizer(ctx context.Context, env *config.EnvConfig, cfg config.Gemini, logger zerolog.Logger) (*gemini.Summarizer, error) {
	if env.GeminiAPIKey == "" {
		return gemini.NewSummarizer(nil, cfg, logger), nil
	}
	client, err := gemini.NewClient(ctx, env.GeminiAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return gemini.NewSummarizer(client, cfg, logger), nil
}

func buildRequest(opts options, cfg config.Root, env *config.EnvConfig, now time.Time) (app.Request, error) {
	kind := opts.periodKind
	if kind == "" {
		kind = cfg.Pipeline.Period
	}

	var start, end time.Time
	if kind == period.Custom {
		var err error
		if start, err = time.ParseInLocation(time.DateOnly, opts.start, now.Location()); err != nil {
			return app.Request{}, fmt.Errorf("parse -start: %w", err)
		}
		if end, err = time.ParseInLocation(time.DateOnly, opts.end, now.Location()); err != nil {
			return app.Request{}, fmt.Errorf("parse -end: %w", err)
		}
	}

	window, err := period.Resolve(kind, now, start, end)
	if err != nil {
		return app.Request{}, err
	}

	categories := cfg.Pipeline.Categories
	if opts.categories != "" {
		categories = nil
		for _, name := range strings.Split(opts.categories, ",") {
			if name = strings.TrimSpace(name); name != "" {
				categories = append(categories, name)
			}
		}
	}

	return app.Request{
		Categories:   categories,
		Window:       window,
		TopN:         cfg.Scoring.TopN,
		SkipSummary:  env.SkipSummary,
		SkipFullText: env.SkipFullText,
	}, nil
}

func schedule(ctx context.Context, cfg config.Schedule, loc *time.Location, p *app.Pipeline, newRequest func() (app.Request, error), draft bool, logger zerolog.Logger) error {
	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(cfg.Cron, func() {
		req, err := newRequest()
		if err != nil {
			logger.Error().Err(err).Msg("scheduled run: bad request")
			return
		}
		if _, err := p.Run(ctx, req, draft); err != nil {
			logger.Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("add cron entry %q: %w", cfg.Cron, err)
	}

	c.Start()
	logger.Info().Str("cron", cfg.Cron).Str("timezone", loc.String()).Msg("scheduler started")

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info().Msg("scheduler stopped")
	return nil
}

func serve(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("preview server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// unknownCategories возвращает выбранные имена, которых нет в таксономии.
func unknownCategories(tax config.Taxonomy, selected []string) []string {
	known := make(map[string]struct{})
	for _, name := range tax.CategoryNames() {
		known[name] = struct{}{}
	}
	var out []string
	for _, name := range selected {
		if _, ok := known[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
