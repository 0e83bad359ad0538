package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"threatfeed/internal/domain"
	"threatfeed/internal/ports"
)

// FileRepository persists the bounded article archive as a single JSON
// snapshot, replaced atomically on every save.
type FileRepository struct {
	path       string
	maxEntries int
	logger     *slog.Logger
}

var _ ports.HistoryRepository = (*FileRepository)(nil)

// NewFileRepository wires the snapshot path and the archive bound.
func NewFileRepository(path string, maxEntries int, log *slog.Logger) *FileRepository {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	return &FileRepository{path: path, maxEntries: maxEntries, logger: log}
}

// Load reads the previous snapshot. A missing or corrupt file starts the
// archive empty; only the corrupt case is worth a warning.
func (r *FileRepository) Load(_ context.Context) ([]domain.Article, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.warn("history unreadable, starting empty", "path", r.path, "error", err)
		}
		return []domain.Article{}, nil
	}

	var items []domain.Article
	if err := json.Unmarshal(raw, &items); err != nil {
		r.warn("history corrupt, starting empty", "path", r.path, "error", err)
		return []domain.Article{}, nil
	}

	for i := range items {
		items[i].Normalize()
	}
	sortByPublished(items)
	return items, nil
}

// Merge combines fresh items with the existing archive, deduplicated by
// link. Existing entries always win, so re-ingesting a known link is a
// no-op even when upstream filtering missed it.
func (r *FileRepository) Merge(newItems, existing []domain.Article) []domain.Article {
	merged := make([]domain.Article, 0, len(newItems)+len(existing))
	seen := make(map[string]struct{}, len(newItems)+len(existing))

	for _, item := range existing {
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range newItems {
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		merged = append(merged, item)
	}

	sortByPublished(merged)
	return merged
}

// Save writes at most maxEntries of the most recent items, replacing the
// prior snapshot via temp file + rename so a crash never leaves a partial
// snapshot behind.
func (r *FileRepository) Save(_ context.Context, items []domain.Article) error {
	trimmed := make([]domain.Article, len(items))
	copy(trimmed, items)
	sortByPublished(trimmed)
	if len(trimmed) > r.maxEntries {
		trimmed = trimmed[:r.maxEntries]
	}

	raw, err := json.MarshalIndent(trimmed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	r.debug("history saved", "path", r.path, "entries", len(trimmed))
	return nil
}

func sortByPublished(items []domain.Article) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
}

func (r *FileRepository) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *FileRepository) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
