package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

var csvHeader = []string{
	"keyword",
	"category",
	"trend_score",
	"frequency_score",
	"recency_score",
	"mention_count",
	"sources",
	"latest_date",
}

// FileStore writes dated JSON and CSV files under a data directory:
// raw/, processed/ and reports/.
type FileStore struct {
	rawDir       string
	processedDir string
	reportsDir   string
	now          func() time.Time
	log          logger.Logger
}

// NewFileStore creates the directory layout under dataDir.
func NewFileStore(dataDir string, log logger.Logger) (*FileStore, error) {
	s := &FileStore{
		rawDir:       filepath.Join(dataDir, "raw"),
		processedDir: filepath.Join(dataDir, "processed"),
		reportsDir:   filepath.Join(dataDir, "reports"),
		now:          time.Now,
		log:          logger.OrNop(log),
	}
	for _, d := range []string{s.rawDir, s.processedDir, s.reportsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return s, nil
}

func (s *FileStore) today() string {
	return s.now().Format(dateLayout)
}

// SaveRaw writes raw/{date}_{source}.json.
func (s *FileStore) SaveRaw(items []model.Item, source string) (string, error) {
	path := filepath.Join(s.rawDir, fmt.Sprintf("%s_%s.json", s.today(), source))
	if err := writeJSON(path, items); err != nil {
		return "", err
	}
	s.log.Info("raw items saved", logger.String("path", path), logger.Int("items", len(items)))
	return path, nil
}

// SaveRawBySource writes one raw file per source in sources.
func (s *FileStore) SaveRawBySource(items []model.Item, sources []string) error {
	for _, src := range sources {
		var batch []model.Item
		for _, it := range items {
			if it.Source == src {
				batch = append(batch, it)
			}
		}
		if batch == nil {
			batch = []model.Item{}
		}
		if _, err := s.SaveRaw(batch, src); err != nil {
			return err
		}
	}
	return nil
}

// SaveProcessed writes processed/{date}_topics.json.
func (s *FileStore) SaveProcessed(topics []model.Topic) (string, error) {
	path := filepath.Join(s.processedDir, s.today()+"_topics.json")
	if err := writeJSON(path, topics); err != nil {
		return "", err
	}
	s.log.Info("topics saved", logger.String("path", path), logger.Int("topics", len(topics)))
	return path, nil
}

// SaveReportJSON writes reports/{date}_report.json.
func (s *FileStore) SaveReportJSON(report any) (string, error) {
	path := filepath.Join(s.reportsDir, s.today()+"_report.json")
	if err := writeJSON(path, report); err != nil {
		return "", err
	}
	s.log.Info("json report saved", logger.String("path", path))
	return path, nil
}

// SaveReportCSV writes reports/{date}_report.csv with one row per topic.
func (s *FileStore) SaveReportCSV(topics []model.Topic) (string, error) {
	path := filepath.Join(s.reportsDir, s.today()+"_report.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range topics {
		latest := ""
		if t.LatestDate != nil {
			latest = *t.LatestDate
		}
		row := []string{
			t.Keyword,
			t.CategoryNames(),
			formatFloat(t.TrendScore),
			formatFloat(t.FrequencyScore),
			formatFloat(t.RecencyScore),
			strconv.Itoa(t.MentionCount),
			strings.Join(t.Sources, ", "),
			latest,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	s.log.Info("csv report saved", logger.String("path", path), logger.Int("rows", len(topics)))
	return path, nil
}

// LoadLatestProcessed reads the most recent processed/*_topics.json.
func (s *FileStore) LoadLatestProcessed() ([]model.Topic, error) {
	files, err := filepath.Glob(filepath.Join(s.processedDir, "*_topics.json"))
	if err != nil {
		return nil, fmt.Errorf("list processed: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no processed topics in %s: %w", s.processedDir, apperr.ErrNotFound)
	}
	sort.Strings(files)
	path := files[len(files)-1]

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var topics []model.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	s.log.Info("processed topics loaded", logger.String("path", path), logger.Int("topics", len(topics)))
	return topics, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
