package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"threatfeed/internal/domain"
	"threatfeed/internal/ports"
)

const (
	fallbackSourceName = "Unknown Source"
	maxSourceNameLen   = 64
	maxExcerptLen      = 500
)

// Reader pulls entries from syndicated feeds and normalizes them into
// candidate articles.
type Reader struct {
	parser    *gofeed.Parser
	endpoints []string
	window    time.Duration
	logger    *slog.Logger
}

var _ ports.FeedSource = (*Reader)(nil)

// NewReader wires the configured endpoints and recency window. A nil client
// gets a bounded-timeout default.
func NewReader(endpoints []string, window time.Duration, client *http.Client, log *slog.Logger) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "threatfeed/1.0"

	return &Reader{
		parser:    parser,
		endpoints: endpoints,
		window:    window,
		logger:    log,
	}
}

// FetchSince fetches every endpoint independently and returns entries
// published strictly after now minus the recency window. A failing endpoint
// is logged and skipped; it never aborts the other sources.
func (r *Reader) FetchSince(ctx context.Context, now time.Time) ([]domain.Article, error) {
	cutoff := now.UTC().Add(-r.window)

	var candidates []domain.Article
	for _, endpoint := range r.endpoints {
		parsed, err := r.parser.ParseURLWithContext(endpoint, ctx)
		if err != nil {
			r.warn("fetch feed failed", "endpoint", endpoint, "error", err)
			continue
		}

		source := sourceName(parsed)
		for _, item := range parsed.Items {
			article, ok := buildArticle(item, source, cutoff)
			if !ok {
				continue
			}
			candidates = append(candidates, article)
		}
		r.debug("feed processed", "endpoint", endpoint, "source", source, "entries", len(parsed.Items))
	}

	r.debug("fetch done", "candidates", len(candidates))
	return candidates, nil
}

// buildArticle normalizes one feed entry. Entries without a link or a
// resolvable publish time, and entries at or before the cutoff, are dropped.
func buildArticle(item *gofeed.Item, source string, cutoff time.Time) (domain.Article, bool) {
	if item == nil || strings.TrimSpace(item.Link) == "" {
		return domain.Article{}, false
	}

	published := publishTime(item)
	if published.IsZero() || !published.After(cutoff) {
		return domain.Article{}, false
	}

	excerpt := truncateWords(stripHTML(item.Description), maxExcerptLen)
	title := strings.TrimSpace(item.Title)
	category, flagged := domain.Classify(source, title, excerpt)

	return domain.Article{
		Source:      source,
		Category:    category,
		Title:       title,
		Link:        strings.TrimSpace(item.Link),
		RawSummary:  excerpt,
		Date:        published.Format(domain.DateLayout),
		PublishedAt: published,
		IsZeroDay:   flagged,
	}, true
}

// publishTime resolves the entry timestamp in UTC, preferring the publish
// date and falling back to the update date. Zero means unresolvable.
func publishTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return time.Time{}
}

func sourceName(parsed *gofeed.Feed) string {
	name := strings.TrimSpace(parsed.Title)
	if name == "" {
		name = fallbackSourceName
	}
	return truncateRunes(name, maxSourceNameLen)
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Reader) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
