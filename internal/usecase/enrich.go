package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"threatfeed/internal/domain"
	"threatfeed/internal/ports"
)

// Enricher fills article summaries through the external summarization
// capability, one item at a time.
type Enricher struct {
	summarizer ports.Summarizer
	pacer      ports.Pacer
	wordTarget int
	logger     *slog.Logger
}

// NewEnricher wires the summarizer (nil when no credential is configured)
// and the pacing policy. wordTarget is the advisory summary length.
func NewEnricher(summarizer ports.Summarizer, pacer ports.Pacer, wordTarget int, log *slog.Logger) *Enricher {
	if wordTarget <= 0 {
		wordTarget = 60
	}
	return &Enricher{
		summarizer: summarizer,
		pacer:      pacer,
		wordTarget: wordTarget,
		logger:     log,
	}
}

// EnrichAll summarizes every unprocessed item in place, strictly
// sequentially, waiting on the pacer after each attempt. The remote rate
// limit makes that wait mandatory whether the attempt succeeded or not.
//
// Without a summarizer the whole pass is skipped: summaries fall back to
// the raw excerpt and Processed stays untouched so a later run with
// credentials can retry.
func (e *Enricher) EnrichAll(ctx context.Context, items []domain.Article) error {
	if e.summarizer == nil {
		for i := range items {
			if !items[i].Processed {
				items[i].Summary = items[i].RawSummary
			}
		}
		e.debug("no summarizer configured, excerpts used as summaries", "pending", countPending(items))
		return nil
	}

	for i := range items {
		if items[i].Processed {
			continue
		}

		summary, err := e.summarizer.Summarize(ctx, buildPrompt(items[i], e.wordTarget))
		if err != nil {
			e.warn("summarization failed, using excerpt", "link", items[i].Link, "error", err)
			summary = items[i].RawSummary
		}
		items[i].Summary = summary
		// A failed attempt still counts: the item is never retried.
		items[i].Processed = true

		if e.pacer != nil {
			if err := e.pacer.Wait(ctx); err != nil {
				return fmt.Errorf("pacing wait: %w", err)
			}
		}
	}

	return nil
}

// buildPrompt shapes the summarization request. Flagged items carry an
// urgency token so the model frames them accordingly.
func buildPrompt(a domain.Article, wordTarget int) string {
	var b strings.Builder
	if a.IsZeroDay {
		b.WriteString("URGENT - likely active exploitation. ")
	}
	fmt.Fprintf(&b, "Summarize this security news item in at most %d words for a technical threat report. News: %s - %s",
		wordTarget, a.Title, a.RawSummary)
	return b.String()
}

func countPending(items []domain.Article) int {
	n := 0
	for i := range items {
		if !items[i].Processed {
			n++
		}
	}
	return n
}

func (e *Enricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
