package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"threatfeed/internal/domain"
	"threatfeed/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.FeedSource
	History  ports.HistoryRepository
	Enricher *Enricher
	Renderer ports.Renderer
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Pipeline implements one full ingestion run: fetch, dedup against history,
// enrich, merge, persist, render.
type Pipeline struct {
	source   ports.FeedSource
	history  ports.HistoryRepository
	enricher *Enricher
	renderer ports.Renderer
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:   deps.Source,
		history:  deps.History,
		enricher: deps.Enricher,
		renderer: deps.Renderer,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// Run executes the pipeline once and returns the final ordered archive.
// Durable state changes only when at least one new unique article arrived.
func (p *Pipeline) Run(ctx context.Context, now time.Time) ([]domain.Article, error) {
	existing, err := p.history.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		known[item.Link] = struct{}{}
	}

	fresh, err := p.source.FetchSince(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("fetch sources: %w", err)
	}

	newUnique := dedupAgainst(fresh, known)
	p.info("run fetched", "fresh", len(fresh), "new", len(newUnique), "existing", len(existing))

	final := existing
	if len(newUnique) > 0 {
		if err := p.enricher.EnrichAll(ctx, newUnique); err != nil {
			return nil, fmt.Errorf("enrich new articles: %w", err)
		}
		// Older records left unprocessed by a credential-less run get their
		// retry here, piggybacking on a run that persists anyway.
		if err := p.enricher.EnrichAll(ctx, existing); err != nil {
			return nil, fmt.Errorf("enrich pending history: %w", err)
		}

		merged := p.history.Merge(newUnique, existing)
		if err := p.history.Save(ctx, merged); err != nil {
			return nil, fmt.Errorf("persist history: %w", err)
		}

		// Re-read so the rendered archive matches the trimmed snapshot.
		final, err = p.history.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("reload history: %w", err)
		}

		p.notify(ctx, newUnique)
	}

	if p.renderer != nil {
		if err := p.renderer.Render(final, now); err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
	}

	return final, nil
}

// dedupAgainst keeps the first occurrence of each link that is not already
// archived.
func dedupAgainst(fresh []domain.Article, known map[string]struct{}) []domain.Article {
	seen := make(map[string]struct{}, len(fresh))
	unique := make([]domain.Article, 0, len(fresh))
	for _, item := range fresh {
		if _, ok := known[item.Link]; ok {
			continue
		}
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		unique = append(unique, item)
	}
	return unique
}

// notify publishes a short digest of the run. Failures are logged only; a
// broken channel must not fail an otherwise successful run.
func (p *Pipeline) notify(ctx context.Context, newItems []domain.Article) {
	if p.notifier == nil {
		return
	}

	digest := buildDigest(newItems)
	if digest == "" {
		return
	}
	if err := p.notifier.PublishDigest(ctx, digest); err != nil {
		p.warn("publish digest failed", "error", err)
	}
}

const digestItemLimit = 10

func buildDigest(items []domain.Article) string {
	if len(items) == 0 {
		return ""
	}

	flagged := 0
	for _, item := range items {
		if item.IsZeroDay {
			flagged++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new security item(s), %d flagged high-risk\n", len(items), flagged)
	for i, item := range items {
		if i == digestItemLimit {
			fmt.Fprintf(&b, "… and %d more\n", len(items)-digestItemLimit)
			break
		}
		marker := "-"
		if item.IsZeroDay {
			marker = "!"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", marker, item.Title, item.Source)
	}
	return b.String()
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
