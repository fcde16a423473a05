// Package report renders scan results to the terminal, to JSON and CSV
// exports and to the daily newsletter email.
package report

import (
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/store"
)

// RunInfo is what the scan knows about itself before the report is built.
type RunInfo struct {
	RunID          string
	ScanDate       string
	SourcesUsed    []string
	TotalItems     int
	ProcessingTime time.Duration
}

// Metadata heads an exported report.
type Metadata struct {
	RunID                 string   `json:"run_id"`
	ScanDate              string   `json:"scan_date"`
	GeneratedAt           string   `json:"generated_at"`
	SourcesUsed           []string `json:"sources_used"`
	TotalItemsFetched     int      `json:"total_items_fetched"`
	TopicsExtracted       int      `json:"topics_extracted"`
	ClustersFound         int      `json:"clusters_found"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
}

// Report is the JSON export document.
type Report struct {
	Metadata Metadata        `json:"metadata"`
	Topics   []model.Topic   `json:"topics"`
	Clusters []model.Cluster `json:"clusters"`
}

// NewRunID returns a lexically sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Exporter builds reports and writes them through the file store.
type Exporter struct {
	store *store.FileStore
	now   func() time.Time
	log   logger.Logger
}

func NewExporter(fs *store.FileStore, log logger.Logger) *Exporter {
	return &Exporter{store: fs, now: time.Now, log: logger.OrNop(log)}
}

// BuildReport assembles the export document. Missing run ID and scan date
// are filled in.
func (e *Exporter) BuildReport(topics []model.Topic, clusters []model.Cluster, info RunInfo) Report {
	now := e.now()
	if info.RunID == "" {
		info.RunID = ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
	}
	if info.ScanDate == "" {
		info.ScanDate = now.Format("2006-01-02")
	}
	if info.SourcesUsed == nil {
		info.SourcesUsed = []string{}
	}
	if topics == nil {
		topics = []model.Topic{}
	}
	if clusters == nil {
		clusters = []model.Cluster{}
	}
	return Report{
		Metadata: Metadata{
			RunID:                 info.RunID,
			ScanDate:              info.ScanDate,
			GeneratedAt:           now.Format(time.RFC3339),
			SourcesUsed:           info.SourcesUsed,
			TotalItemsFetched:     info.TotalItems,
			TopicsExtracted:       len(topics),
			ClustersFound:         len(clusters),
			ProcessingTimeSeconds: math.Round(info.ProcessingTime.Seconds()*10) / 10,
		},
		Topics:   topics,
		Clusters: clusters,
	}
}

// ExportJSON writes the report document.
func (e *Exporter) ExportJSON(r Report) (string, error) {
	path, err := e.store.SaveReportJSON(r)
	if err != nil {
		return "", err
	}
	e.log.Info("JSON report written", logger.String("path", path))
	return path, nil
}

// ExportCSV writes one row per topic.
func (e *Exporter) ExportCSV(topics []model.Topic) (string, error) {
	path, err := e.store.SaveReportCSV(topics)
	if err != nil {
		return "", err
	}
	e.log.Info("CSV report written", logger.String("path", path))
	return path, nil
}
