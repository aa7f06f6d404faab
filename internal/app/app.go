package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"NewsSignal/internal/config"
	"NewsSignal/internal/dataset"
	"NewsSignal/internal/infrastructure/csvstore"
	"NewsSignal/internal/infrastructure/llm"
	"NewsSignal/internal/infrastructure/metrics"
	"NewsSignal/internal/infrastructure/parser"
	"NewsSignal/internal/infrastructure/scheduler"
	"NewsSignal/internal/infrastructure/search"
	"NewsSignal/internal/infrastructure/storage"
	"NewsSignal/internal/infrastructure/telegram"
	"NewsSignal/internal/logging"
	"NewsSignal/internal/ports"
	scan "NewsSignal/internal/scanner"
	"NewsSignal/internal/usecase"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	db       *sql.DB
	recorder *metrics.Recorder
	builder  *dataset.Builder
	pipeline *usecase.Pipeline
}

// New builds the canonical builder from cfg. The collection pipeline is
// assembled on first use so file-only commands never touch search settings.
// The Postgres target is connected only when a DSN is configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	logger := baseLogger.With("run_id", uuid.NewString())

	a := &Application{
		cfg:      cfg,
		logger:   logger,
		recorder: metrics.NewRecorder(cfg.Metrics, logger.With("component", "metrics")),
	}

	targets := make([]ports.CanonicalTarget, 0, len(cfg.Dataset.Outputs)+1)
	for _, output := range cfg.Dataset.Outputs {
		targets = append(targets, csvstore.NewFileTarget(a.cfg.Dataset.Path(output)))
	}
	if cfg.Database.DSN != "" {
		snapshot, err := a.openSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		targets = append(targets, snapshot)
	}

	a.builder = dataset.NewBuilder(dataset.SourceSpec{
		Root:    cfg.Dataset.Root,
		Pattern: cfg.Dataset.Pattern,
		Exclude: cfg.Dataset.Exclude,
	}, dataset.NewWriter(logger.With("component", "writer"), targets...), a.recorder, logger.With("component", "builder"))

	return a, nil
}

// Logger returns the run-scoped logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// CanonicalPath is the file presentation reads from.
func (a *Application) CanonicalPath() string {
	return a.cfg.Dataset.CanonicalPath()
}

// Build regenerates the canonical dataset once.
func (a *Application) Build(ctx context.Context) (dataset.Report, error) {
	return a.builder.Build(ctx)
}

// Collect runs one acquisition and annotation pass followed by a build.
func (a *Application) Collect(ctx context.Context) (usecase.RunResult, error) {
	pipeline, err := a.collector()
	if err != nil {
		return usecase.RunResult{}, err
	}
	return pipeline.Run(ctx)
}

// CollectEvery repeats Collect on interval until ctx is cancelled.
func (a *Application) CollectEvery(ctx context.Context, interval time.Duration) error {
	pipeline, err := a.collector()
	if err != nil {
		return err
	}
	if interval <= 0 {
		interval = a.cfg.Scheduler.Interval
	}

	driver := scheduler.NewIntervalScheduler(interval)
	runner := usecase.NewScheduler(driver, pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("collection scheduled", "interval", interval)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return runner.Stop(stopCtx)
}

// Close releases the database connection if one was opened.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// collector assembles the collection pipeline once.
func (a *Application) collector() (*usecase.Pipeline, error) {
	if a.pipeline != nil {
		return a.pipeline, nil
	}
	if a.cfg.Gemini.APIKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	searcher, err := a.searcher()
	if err != nil {
		return nil, err
	}

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(a.cfg.Notifications.Telegram, nil); tg.Enabled() {
		notifier = tg
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Searcher:  searcher,
		Fetcher:   parser.NewArticleFetcher(&http.Client{Timeout: 15 * time.Second}, a.cfg.Collector.ContentLimit),
		Annotator: llm.NewGeminiClient(a.cfg.Gemini, nil),
		Builder:   a.builder,
		Notifier:  notifier,
		Recorder:  a.recorder,
		Logger:    a.logger.With("component", "pipeline"),
	}, usecase.PipelineSettings{
		Query:         a.cfg.Search.Query,
		SearchLimit:   a.cfg.Search.Display,
		TargetCount:   a.cfg.Collector.TargetCount,
		MaxErrors:     a.cfg.Collector.MaxErrors,
		FetchWorkers:  a.cfg.Collector.FetchWorkers,
		Location:      a.cfg.Collector.Location(),
		Dir:           a.cfg.Dataset.Root,
		PartialPrefix: a.cfg.Dataset.PartialPrefix,
		CanonicalPath: a.CanonicalPath(),
	})

	return a.pipeline, nil
}

func (a *Application) searcher() (ports.NewsSearcher, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	registry := scan.NewRegistry()
	registry.Register(search.NewNaverNews(a.cfg.Search, client))
	registry.Register(search.NewRSSFeeds(a.cfg.Search.Feeds, client))

	provider, err := registry.Resolve(a.cfg.Search.Provider)
	if err != nil {
		return nil, err
	}
	return scan.NewFilteredSearcher(provider, a.cfg.Search.ExcludeKeywords), nil
}

func (a *Application) openSnapshot(ctx context.Context) (*storage.PostgresSnapshot, error) {
	db, err := sql.Open("postgres", a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	snapshot := storage.NewPostgresSnapshot(db, a.cfg.Database.Table)
	if err := snapshot.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db
	return snapshot, nil
}
