// Package history keeps an append-only log of per-run summaries and
// derives rising and new topics from it.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	fileName     = "history.json"
	dateLayout   = "2006-01-02"
	topTopicsMax = 10
)

// TopTopic is a keyword snapshot inside a run record.
type TopTopic struct {
	Keyword      string  `json:"keyword"`
	TrendScore   float64 `json:"trend_score"`
	MentionCount int     `json:"mention_count"`
}

// Record summarises one run.
type Record struct {
	Date       string         `json:"date"`
	RunID      string         `json:"run_id,omitempty"`
	TopicCount int            `json:"topic_count"`
	TopTopics  []TopTopic     `json:"top_topics"`
	Categories map[string]int `json:"categories"`
}

// Trend is a keyword whose average score rose across the window.
type Trend struct {
	Keyword       string  `json:"keyword"`
	CurrentScore  float64 `json:"current_score"`
	PreviousScore float64 `json:"previous_score"`
	Change        float64 `json:"change"`
	Direction     string  `json:"direction"`
}

// NewTopic is a keyword first seen inside the window.
type NewTopic struct {
	Keyword    string  `json:"keyword"`
	FirstSeen  string  `json:"first_seen"`
	TrendScore float64 `json:"trend_score"`
}

// Tracker reads and appends run records in <dataDir>/history.json.
// Concurrent runs against the same file are not supported.
type Tracker struct {
	path    string
	records []Record
	now     func() time.Time
	log     logger.Logger
}

// Open loads the history file. A missing file starts an empty history;
// an unreadable or malformed one is logged and also starts fresh.
func Open(dataDir string, log logger.Logger) *Tracker {
	t := &Tracker{
		path: filepath.Join(dataDir, fileName),
		now:  time.Now,
		log:  logger.OrNop(log),
	}
	t.records = t.load()
	return t
}

func (t *Tracker) load() []Record {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.log.Error("read history failed", logger.String("path", t.path), logger.Error(err))
		return nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.log.Error("parse history failed", logger.String("path", t.path), logger.Error(err))
		return nil
	}
	return records
}

// Save writes the whole history back to disk.
func (t *Tracker) Save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	data, err := json.MarshalIndent(t.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	t.log.Debug("history saved", logger.Int("records", len(t.records)))
	return nil
}

// AddRun appends a record for topics (already sorted by trend score) and
// saves the file.
func (t *Tracker) AddRun(runID string, topics []model.Topic) (Record, error) {
	categories := make(map[string]int)
	for _, tp := range topics {
		for _, c := range tp.Categories {
			categories[c.Category]++
		}
	}

	top := make([]TopTopic, 0, topTopicsMax)
	for _, tp := range topics[:min(topTopicsMax, len(topics))] {
		top = append(top, TopTopic{
			Keyword:      tp.Keyword,
			TrendScore:   tp.TrendScore,
			MentionCount: tp.MentionCount,
		})
	}

	rec := Record{
		Date:       t.today(),
		RunID:      runID,
		TopicCount: len(topics),
		TopTopics:  top,
		Categories: categories,
	}
	t.records = append(t.records, rec)
	if err := t.Save(); err != nil {
		return rec, err
	}
	t.log.Info("run recorded", logger.String("date", rec.Date), logger.Int("topics", rec.TopicCount))
	return rec, nil
}

// Records returns a copy of the log.
func (t *Tracker) Records() []Record {
	return append([]Record(nil), t.records...)
}

// RunsCount reports the number of recorded runs.
func (t *Tracker) RunsCount() int {
	return len(t.records)
}

// Trending compares runs inside the trailing window of days. Runs are split
// at the midpoint into an older and a newer half; keywords whose average
// score in the newer half beats the older half are returned, largest rise
// first. A keyword absent from the older half counts as 0 there.
func (t *Tracker) Trending(days int) []Trend {
	recent, _ := t.split(days)
	if len(recent) < 2 {
		return nil
	}

	mid := len(recent) / 2
	older := averageScores(recent[:mid])
	newer := averageScores(recent[mid:])

	var out []Trend
	for _, kw := range newer.order {
		cur := newer.avg[kw]
		prev := older.avg[kw]
		if cur > prev {
			out = append(out, Trend{
				Keyword:       kw,
				CurrentScore:  cur,
				PreviousScore: prev,
				Change:        cur - prev,
				Direction:     "rising",
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Change > out[j].Change })
	return out
}

// NewTopics lists keywords that appear in the window but in no run before
// it, with the date of their first appearance.
func (t *Tracker) NewTopics(days int) []NewTopic {
	recent, older := t.split(days)

	known := make(map[string]struct{})
	for _, r := range older {
		for _, tp := range r.TopTopics {
			known[tp.Keyword] = struct{}{}
		}
	}

	var out []NewTopic
	for _, r := range recent {
		for _, tp := range r.TopTopics {
			if _, ok := known[tp.Keyword]; ok {
				continue
			}
			known[tp.Keyword] = struct{}{}
			out = append(out, NewTopic{Keyword: tp.Keyword, FirstSeen: r.Date, TrendScore: tp.TrendScore})
		}
	}
	return out
}

// split partitions records by the cutoff date today-days. Dates are
// compared as ISO strings.
func (t *Tracker) split(days int) (recent, older []Record) {
	cutoff := t.now().AddDate(0, 0, -days).Format(dateLayout)
	for _, r := range t.records {
		if r.Date >= cutoff {
			recent = append(recent, r)
		} else {
			older = append(older, r)
		}
	}
	return recent, older
}

func (t *Tracker) today() string {
	return t.now().Format(dateLayout)
}

type keywordAverages struct {
	avg   map[string]float64
	order []string
}

func averageScores(runs []Record) keywordAverages {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string
	for _, r := range runs {
		for _, tp := range r.TopTopics {
			if _, ok := counts[tp.Keyword]; !ok {
				order = append(order, tp.Keyword)
			}
			sums[tp.Keyword] += tp.TrendScore
			counts[tp.Keyword]++
		}
	}
	avg := make(map[string]float64, len(sums))
	for kw, s := range sums {
		avg[kw] = s / float64(counts[kw])
	}
	return keywordAverages{avg: avg, order: order}
}
