package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"threatfeed/internal/domain"
)

type fakeSummarizer struct {
	calls   []string
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func pendingArticle(link string, flagged bool) domain.Article {
	return domain.Article{
		Source:      "Feed",
		Category:    domain.CategoryNews,
		Title:       "title " + link,
		Link:        link,
		RawSummary:  "excerpt " + link,
		PublishedAt: time.Now().UTC(),
		IsZeroDay:   flagged,
	}
}

func TestEnrichAllSuccess(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{summary: "ai summary"}
	pacer := &countingPacer{}
	enricher := NewEnricher(summarizer, pacer, 60, nil)

	items := []domain.Article{pendingArticle("a", false), pendingArticle("b", false)}
	require.NoError(t, enricher.EnrichAll(context.Background(), items))

	for _, item := range items {
		require.Equal(t, "ai summary", item.Summary)
		require.True(t, item.Processed)
	}
	require.Equal(t, 2, pacer.waits, "pacer must be consulted after every attempt")
}

func TestEnrichAllFailureFallsBackAndMarksProcessed(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{err: errors.New("timeout")}
	pacer := &countingPacer{}
	enricher := NewEnricher(summarizer, pacer, 60, nil)

	items := []domain.Article{pendingArticle("a", false)}
	require.NoError(t, enricher.EnrichAll(context.Background(), items))

	require.Equal(t, "excerpt a", items[0].Summary)
	require.True(t, items[0].Processed, "a failed attempt still counts as processed")
	require.Equal(t, 1, pacer.waits, "failed attempts wait too")
}

func TestEnrichAllNoSummarizerSkipsWithoutMarking(t *testing.T) {
	t.Parallel()

	pacer := &countingPacer{}
	enricher := NewEnricher(nil, pacer, 60, nil)

	items := []domain.Article{pendingArticle("a", false)}
	require.NoError(t, enricher.EnrichAll(context.Background(), items))

	require.Equal(t, "excerpt a", items[0].Summary)
	require.False(t, items[0].Processed, "no attempt was made, so the item stays retryable")
	require.Zero(t, pacer.waits)
}

func TestEnrichAllNeverRetriesProcessed(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{summary: "would overwrite"}
	enricher := NewEnricher(summarizer, &countingPacer{}, 60, nil)

	done := pendingArticle("a", false)
	done.Summary = "settled summary"
	done.Processed = true

	items := []domain.Article{done}
	require.NoError(t, enricher.EnrichAll(context.Background(), items))

	require.Equal(t, "settled summary", items[0].Summary)
	require.Empty(t, summarizer.calls)
}

func TestEnrichAllUrgencyToken(t *testing.T) {
	t.Parallel()

	summarizer := &fakeSummarizer{summary: "s"}
	enricher := NewEnricher(summarizer, &countingPacer{}, 60, nil)

	items := []domain.Article{pendingArticle("flagged", true), pendingArticle("calm", false)}
	require.NoError(t, enricher.EnrichAll(context.Background(), items))

	require.Len(t, summarizer.calls, 2)
	require.Contains(t, summarizer.calls[0], "URGENT")
	require.NotContains(t, summarizer.calls[1], "URGENT")
}
