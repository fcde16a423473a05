// Package fetchcache remembers when each source was last fetched so a run
// can skip articles it has already seen.
package fetchcache

import (
	"context"
	"time"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

// Backend persists source → last-run timestamps (RFC3339).
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, source, timestamp string) error
}

// Cache filters items by the previous run time of their source.
type Cache struct {
	backend Backend
	entries map[string]string
	now     func() time.Time
	log     logger.Logger
}

// New loads the timestamps from backend. A backend error is logged and the
// cache starts empty.
func New(ctx context.Context, backend Backend, log logger.Logger) *Cache {
	c := &Cache{
		backend: backend,
		now:     time.Now,
		log:     logger.OrNop(log),
	}
	entries, err := backend.Load(ctx)
	if err != nil {
		c.log.Warn("fetch cache load failed, starting empty", logger.Error(err))
		entries = nil
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	c.entries = entries
	return c
}

// LastRun returns the previous fetch time of source.
func (c *Cache) LastRun(source string) (time.Time, bool) {
	ts, ok := c.entries[source]
	if !ok || ts == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FilterNew keeps items published strictly after the source's last run,
// plus items without a date. Without a previous run everything is kept.
func (c *Cache) FilterNew(_ context.Context, items []model.Item, source string) []model.Item {
	last, ok := c.LastRun(source)
	if !ok {
		return items
	}

	kept := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Published == nil || it.Published.After(last) {
			kept = append(kept, it)
		}
	}
	if skipped := len(items) - len(kept); skipped > 0 {
		c.log.Info("older items skipped",
			logger.String("source", source),
			logger.Int("kept", len(kept)),
			logger.Int("skipped", skipped),
			logger.Time("last_run", last))
	}
	return kept
}

// Update records now as the source's last run and persists it.
func (c *Cache) Update(ctx context.Context, source string) error {
	ts := c.now().UTC().Format(time.RFC3339Nano)
	c.entries[source] = ts
	if err := c.backend.Save(ctx, source, ts); err != nil {
		return err
	}
	c.log.Debug("fetch cache updated", logger.String("source", source))
	return nil
}
