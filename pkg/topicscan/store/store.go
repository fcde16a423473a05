// Package store persists run artefacts to disk and tracks which articles
// were already sent in a newsletter.
package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	maxURLLen   = 1000
	maxTitleLen = 500
	dateLayout  = "2006-01-02"
)

// SentArticle is one row of the sent-articles log.
type SentArticle struct {
	URLHash      string
	URL          string
	Title        string
	Source       string
	SentDate     string // YYYY-MM-DD
	ClusterLabel string
}

// SentStore records articles that went out in a newsletter.
type SentStore interface {
	// SentHashes returns URL hashes sent on or after the since date.
	SentHashes(ctx context.Context, since string) (map[string]struct{}, error)
	// CountSentOn returns the number of articles sent on date.
	CountSentOn(ctx context.Context, date string) (int, error)
	MarkSent(ctx context.Context, rows []SentArticle) error
	Close() error
}

// URLHash is the md5 hex digest of url.
func URLHash(url string) string {
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Dedup filters out articles that were already sent.
type Dedup struct {
	store SentStore
	now   func() time.Time
	log   logger.Logger
}

func NewDedup(s SentStore, log logger.Logger) *Dedup {
	return &Dedup{store: s, now: time.Now, log: logger.OrNop(log)}
}

// FilterNew drops items whose URL was sent within the last days. A store
// failure is logged and every item passes.
func (d *Dedup) FilterNew(ctx context.Context, items []model.Item, days int) []model.Item {
	since := d.now().AddDate(0, 0, -days).Format(dateLayout)
	sent, err := d.store.SentHashes(ctx, since)
	if err != nil {
		d.log.Warn("sent articles lookup failed", logger.Error(err))
		return items
	}
	if len(sent) == 0 {
		return items
	}

	kept := make([]model.Item, 0, len(items))
	for _, it := range items {
		if _, ok := sent[URLHash(it.URL)]; !ok {
			kept = append(kept, it)
		}
	}
	d.log.Info("already sent items skipped",
		logger.Int("kept", len(kept)), logger.Int("skipped", len(items)-len(kept)))
	return kept
}

// MarkSent records every item with a URL as sent today, labelled with the
// cluster it belongs to. It returns the number of rows written.
func (d *Dedup) MarkSent(ctx context.Context, items []model.Item, clusters []model.Cluster) (int, error) {
	labels := make(map[int]string)
	for _, c := range clusters {
		for _, idx := range c.ItemIndices {
			labels[idx] = c.Label
		}
	}

	today := d.now().Format(dateLayout)
	var rows []SentArticle
	for i, it := range items {
		if it.URL == "" {
			continue
		}
		rows = append(rows, SentArticle{
			URLHash:      URLHash(it.URL),
			URL:          truncate(it.URL, maxURLLen),
			Title:        truncate(it.Title, maxTitleLen),
			Source:       it.Source,
			SentDate:     today,
			ClusterLabel: labels[i],
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := d.store.MarkSent(ctx, rows); err != nil {
		return 0, err
	}
	d.log.Info("sent articles recorded", logger.Int("rows", len(rows)))
	return len(rows), nil
}

// SentToday reports whether anything was sent today. Lookup failures count
// as not sent.
func (d *Dedup) SentToday(ctx context.Context) bool {
	n, err := d.store.CountSentOn(ctx, d.now().Format(dateLayout))
	if err != nil {
		d.log.Warn("sent today check failed", logger.Error(err))
		return false
	}
	return n > 0
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
