// Package rss loads previously captured news items from JSON Lines files so a
// scan can run offline.
package rss

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

// DefaultSource labels lines that carry neither a source nor an outlet.
const DefaultSource = "jsonl"

// record accepts both the scanner's own item shape and the older news dump
// shape (outlet, text, published_at, source_cats).
type record struct {
	URL          string     `json:"url"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Text         string     `json:"text"`
	Source       string     `json:"source"`
	Outlet       string     `json:"outlet"`
	SourceDetail string     `json:"source_detail"`
	Published    *time.Time `json:"published"`
	PublishedAt  *time.Time `json:"published_at"`
	Score        int        `json:"score"`
	Tags         []string   `json:"tags"`
	SourceCats   []string   `json:"source_cats"`
}

func (r record) item() model.Item {
	it := model.Item{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(firstNonEmpty(r.Description, r.Text)),
		URL:          r.URL,
		Source:       firstNonEmpty(r.Source, r.Outlet, DefaultSource),
		SourceDetail: firstNonEmpty(r.SourceDetail, r.Outlet),
		Published:    r.Published,
		Score:        r.Score,
		Tags:         r.Tags,
	}
	if it.Published == nil {
		it.Published = r.PublishedAt
	}
	if len(it.Tags) == 0 {
		it.Tags = r.SourceCats
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return it
}

// LoadFromJSONL reads one item per line. Blank lines are ignored and
// malformed lines are logged and skipped. A file with no usable line is an
// error.
func LoadFromJSONL(path string, log logger.Logger) ([]model.Item, error) {
	log = logger.OrNop(log)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	var items []model.Item
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var r record
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			log.Warn("Skipping malformed JSON line",
				logger.String("path", path),
				logger.Int("line", line),
				logger.Error(err),
			)
			continue
		}
		if r.Title == "" && r.URL == "" {
			continue
		}
		items = append(items, r.item())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %w: no valid items found in %s", apperr.ErrNoData, apperr.ErrInvalidInput, path)
	}
	return items, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
