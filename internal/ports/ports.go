package ports

import (
	"context"
	"time"

	"threatfeed/internal/domain"
)

// FeedSource pulls candidate articles published within the recency window
// ending at now.
type FeedSource interface {
	FetchSince(ctx context.Context, now time.Time) ([]domain.Article, error)
}

// HistoryRepository persists the bounded article archive between runs.
type HistoryRepository interface {
	// Load returns the stored archive in descending publish order. A missing
	// or unreadable snapshot yields an empty slice, not an error.
	Load(ctx context.Context) ([]domain.Article, error)
	// Merge combines fresh items with the existing archive, deduplicated by
	// link and re-sorted descending. Existing entries win on conflict.
	Merge(newItems, existing []domain.Article) []domain.Article
	// Save atomically replaces the snapshot with at most the configured
	// maximum of the most recent items.
	Save(ctx context.Context, items []domain.Article) error
}

// Summarizer produces a short summary for a prompt via an external model.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Pacer enforces the minimum spacing between external enrichment calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Renderer turns the final ordered archive into the output report.
type Renderer interface {
	Render(items []domain.Article, generatedAt time.Time) error
}

// Notifier pushes a short run digest to an external channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
