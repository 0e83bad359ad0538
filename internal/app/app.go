package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"threatfeed/internal/config"
	"threatfeed/internal/infrastructure/feed"
	"threatfeed/internal/infrastructure/llm"
	"threatfeed/internal/infrastructure/render"
	"threatfeed/internal/infrastructure/scheduler"
	"threatfeed/internal/infrastructure/storage"
	"threatfeed/internal/infrastructure/telegram"
	"threatfeed/internal/logging"
	"threatfeed/internal/pacing"
	"threatfeed/internal/ports"
	"threatfeed/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := feed.NewReader(cfg.Feeds, cfg.Window(), nil, baseLogger.With("component", "feed"))
	history := storage.NewFileRepository(cfg.History.Path, cfg.History.MaxEntries, baseLogger.With("component", "history"))

	var summarizer ports.Summarizer
	if cfg.Summarizer.APIKey != "" {
		summarizer = llm.NewOpenAIClient(cfg.Summarizer)
	} else {
		baseLogger.Info("no summarizer credential configured, excerpts will be used")
	}

	pacer := pacing.NewInterval(cfg.Summarizer.PacingInterval())
	enricher := usecase.NewEnricher(summarizer, pacer, cfg.Summarizer.SummaryWords,
		baseLogger.With("component", "enricher"))

	renderer, err := render.NewHTMLRenderer(cfg.Output.Path, cfg.Output.Title)
	if err != nil {
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		History:  history,
		Enricher: enricher,
		Renderer: renderer,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())
	runScheduler := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		pipeline:  pipeline,
		scheduler: runScheduler,
		logger:    baseLogger,
	}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) error {
	_, err := a.pipeline.Run(ctx, time.Now().UTC())
	return err
}

// Serve runs the pipeline on the configured cadence until ctx is canceled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}
