package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/fetch"
	"github.com/cognicore/topicscan/pkg/topicscan/history"
	"github.com/cognicore/topicscan/pkg/topicscan/report"
)

const testConfig = `general:
  data_dir: %DATA%
sources:
  google_news:
    enabled: false
  reddit:
    subreddits: [marketing]
processing:
  top_keywords: 20
  clustering:
    enabled: true
    min_clusters: 2
    max_clusters: 4
scoring:
  recency_decay_hours: 24
categories:
  marketing_digital:
    display_name: Marketing
reporting:
  export:
    json: true
    csv: true
`

const testKeywords = `marketing_digital: [seo, marketing]
ai_ml: [generative ai, agents]
data_analytics: [bigquery, analytics]
`

const testItems = `{"title":"SEO tools for marketing teams","url":"https://a/1","source":"reddit","published":"2026-03-10T06:00:00Z","score":12}
{"title":"SEO tools compared for agencies","url":"https://a/2","source":"hackernews","published":"2026-03-10T05:00:00Z","score":40}
{"title":"Generative AI agents in analytics","url":"https://a/3","source":"reddit","published":"2026-03-09T06:00:00Z"}
{"title":"Generative AI agents reshape search","url":"https://a/4","source":"google_news","published":"2026-03-09T08:00:00Z"}
{"title":"BigQuery analytics pipelines for marketing data","url":"https://a/5","source":"hackernews"}
{"title":"BigQuery analytics costs explained","url":"https://a/6","source":"google_news"}
`

type fixture struct {
	configDir string
	dataDir   string
	sendMail  report.SendFunc
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{configDir: filepath.Join(root, "config"), dataDir: filepath.Join(root, "data")}
	require.NoError(t, os.MkdirAll(f.configDir, 0o755))
	cfg := bytes.ReplaceAll([]byte(testConfig), []byte("%DATA%"), []byte(f.dataDir))
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), cfg, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "keywords.yaml"), []byte(testKeywords), 0o644))
	return f
}

func (f fixture) run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		registry: fetch.DefaultRegistry(),
		log:      logger.NewNop(),
		sendMail: f.sendMail,
		now:      func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) },
	}
	cmd := newRootCmdFor(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", f.configDir}, args...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

// extend appends top-level sections to the fixture's config.yaml.
func (f fixture) extend(t *testing.T, yamlText string) {
	t.Helper()
	path := filepath.Join(f.configDir, "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, []byte(yamlText)...), 0o644))
}

func writeItems(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func assertGlob(t *testing.T, pattern string) {
	t.Helper()
	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	assert.NotEmpty(t, matches, pattern)
}

func TestConfigValidate(t *testing.T) {
	out := newFixture(t).run(t, "config", "--validate")
	assert.Contains(t, out, "Configuration is valid.")
	assert.Contains(t, out, "Enabled sources: reddit")
	assert.NotContains(t, out, "Current configuration")
}

func TestConfigShowDefault(t *testing.T) {
	out := newFixture(t).run(t, "config")
	assert.Contains(t, out, "Current configuration")
	assert.Contains(t, out, "data_dir:")
}

func TestConfigShowMasksSecrets(t *testing.T) {
	secrets := map[string]string{
		"ANTHROPIC_API_KEY":  "sk-ant-SECRET123",
		"OPENAI_API_KEY":     "sk-openai-SECRET456",
		"GMAIL_APP_PASSWORD": "gmail-SECRET789",
		"REDIS_PASSWORD":     "redis-SECRET000",
	}
	for k, v := range secrets {
		t.Setenv(k, v)
	}

	f := newFixture(t)
	for _, args := range [][]string{{"config"}, {"config", "--show"}} {
		out := f.run(t, args...)
		for _, v := range secrets {
			assert.NotContains(t, out, v, args)
		}
		assert.Contains(t, out, "***", args)
	}
}

func TestConfigValidateMissingSections(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), []byte("general:\n  data_dir: x\n"), 0o644))
	out := f.run(t, "config", "--validate")
	assert.Contains(t, out, "Missing sections: sources, categories")
}

func TestReportWithoutData(t *testing.T) {
	out := newFixture(t).run(t, "report")
	assert.Contains(t, out, "No processed data found")
}

func TestReportRejectsFormat(t *testing.T) {
	f := newFixture(t)
	cmd := newRootCmdFor(&app{registry: fetch.DefaultRegistry(), log: logger.NewNop(), now: time.Now})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config-dir", f.configDir, "report", "-f", "xml"})
	assert.Error(t, cmd.Execute())
}

func TestHistoryNeedsTwoRuns(t *testing.T) {
	out := newFixture(t).run(t, "history")
	assert.Contains(t, out, "0 runs recorded")
	assert.Contains(t, out, "At least 2 runs are needed")
}

func TestScanDryRun(t *testing.T) {
	out := newFixture(t).run(t, "scan", "--dry-run")
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "Keyword categories: ai_ml, data_analytics, marketing_digital")
	assert.Contains(t, out, "Configuration OK")
}

func TestScanFromInputThenReport(t *testing.T) {
	f := newFixture(t)
	input := filepath.Join(t.TempDir(), "items.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(testItems), 0o644))

	out := f.run(t, "scan", "--input", input)
	assert.Contains(t, out, "Loaded 6 items")
	assert.Contains(t, out, "Top 15 Trending Topics")
	assert.Contains(t, out, "Topic Clusters")
	assert.Contains(t, out, "JSON report:")
	assert.Contains(t, out, "Done!")

	assertGlob(t, filepath.Join(f.dataDir, "raw", "*_reddit.json"))
	assertGlob(t, filepath.Join(f.dataDir, "processed", "*_topics.json"))
	assertGlob(t, filepath.Join(f.dataDir, "reports", "*_report.csv"))
	assert.Equal(t, 1, history.Open(f.dataDir, nil).RunsCount())

	out = f.run(t, "report", "-n", "3")
	assert.Contains(t, out, "Top 3 Trending Topics")

	out = f.run(t, "report", "-f", "csv")
	assert.Contains(t, out, "CSV report:")

	f.run(t, "scan", "--input", input, "--no-report")
	out = f.run(t, "history")
	assert.Contains(t, out, "2 runs recorded")
}

func TestScanEmailWarnsWhenAlreadySentToday(t *testing.T) {
	f := newFixture(t)
	f.extend(t, `email:
  enabled: true
  sender: news@example.com
  app_password: pw
  recipients: [team@example.com]
dedup:
  enabled: true
  backend: sqlite
`)
	sent := 0
	f.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		sent++
		return nil
	}

	out := f.run(t, "scan", "--input", writeItems(t, testItems))
	assert.Contains(t, out, "sent articles recorded")
	assert.NotContains(t, out, "already sent today")

	again := strings.ReplaceAll(testItems, "https://a/", "https://b/")
	out = f.run(t, "scan", "--input", writeItems(t, again))
	assert.Contains(t, out, "A newsletter was already sent today")
	assert.Equal(t, 2, sent)
}

func TestScanSkipsSummariesWithoutProvider(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	f := newFixture(t)
	f.extend(t, "ai:\n  enabled: true\n  provider: anthropic\n")

	out := f.run(t, "scan", "--input", writeItems(t, testItems))
	assert.NotContains(t, out, "PHASE 3")
	assert.Contains(t, out, "Done!")
}

func TestScanSummarizesWithProvider(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"SUMMARY: Teams compare tools."}}]}`))
	}))
	defer srv.Close()

	f := newFixture(t)
	f.extend(t, "ai:\n  enabled: true\n  provider: openai\n  model: gpt-test\n  base_url: "+srv.URL+"\n")

	out := f.run(t, "scan", "--input", writeItems(t, testItems))
	assert.Contains(t, out, "PHASE 3")
	assert.Positive(t, calls.Load())
}
