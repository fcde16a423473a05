package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/internal/apperr"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.General.DataDir)
	assert.Equal(t, 30, cfg.Processing.TopKeywords)
	assert.Equal(t, [2]int{1, 3}, cfg.Processing.NGramRange)
	assert.Equal(t, 0.25, cfg.Scoring.Weights.SourceDiversity)
	assert.Equal(t, 15, cfg.Reporting.Console.TopN)
	assert.Equal(t, []string{"sources", "categories"}, cfg.MissingSections())
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, configFile, `
general:
  data_dir: /var/lib/topicscan
sources:
  google_news:
    queries: ["ai marketing", "ga4"]
  hackernews:
    enabled: false
  reddit:
    subreddits: [marketing]
processing:
  clustering:
    max_clusters: 8
scoring:
  weights:
    engagement: 0.5
categories:
  ai_ml:
    display_name: AI & ML
`)

	cfg, err := Load(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/topicscan", cfg.General.DataDir)
	assert.Equal(t, "english", cfg.General.Language, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Processing.Clustering.MaxClusters)
	assert.Equal(t, 3, cfg.Processing.Clustering.MinClusters)
	assert.True(t, cfg.Processing.Clustering.Enabled)
	assert.Equal(t, 0.5, cfg.Scoring.Weights.Engagement)
	assert.Equal(t, 0.30, cfg.Scoring.Weights.Frequency)
	assert.Equal(t, []string{"google_news", "reddit"}, cfg.EnabledSources())
	assert.Equal(t, map[string]string{"ai_ml": "AI & ML"}, cfg.DisplayNames())
	assert.Empty(t, cfg.MissingSections())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, configFile, "general: [unclosed")

	_, err := Load(dir, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidConfig)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GMAIL_APP_PASSWORD", "secret")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("TOPICSCAN_DATA_DIR", "/tmp/ts")
	t.Setenv("REDIS_ADDR", "redis:6380")

	dir := t.TempDir()
	writeFile(t, dir, configFile, "email:\n  app_password: from-file\n")

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Email.AppPassword)
	assert.Equal(t, "sk-ant", cfg.AI.AnthropicAPIKey)
	assert.Equal(t, "/tmp/ts", cfg.General.DataDir)
	assert.Equal(t, "redis:6380", cfg.Cache.Redis.Addr)
}

func TestEnvFileIsLoaded(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "custom.env")
	writeFile(t, dir, "custom.env", "OPENAI_API_KEY=sk-from-file\n")
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-file", cfg.AI.OpenAIAPIKey)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.sections["sources"] = struct{}{}
	cfg.sections["categories"] = struct{}{}
	require.NoError(t, cfg.Validate())

	cfg.Processing.Clustering.MaxClusters = 1
	cfg.Processing.NGramRange = [2]int{3, 1}
	err := cfg.Validate()
	require.ErrorIs(t, err, apperr.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "max_clusters")
	assert.Contains(t, err.Error(), "ngram_range")
}

func TestLoadKeywords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, keywordsFile, `
ai_ml:
  - " LLM "
  - Generative AI
marketing_digital: [SEO, PPC]
notes: not a list
`)

	got, err := LoadKeywords(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"ai_ml":             {"llm", "generative ai"},
		"marketing_digital": {"seo", "ppc"},
	}, got)
}

func TestLoadKeywordsMissingFile(t *testing.T) {
	got, err := LoadKeywords(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestYAMLRoundTrip(t *testing.T) {
	out, err := Defaults().YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "recency_decay_hours: 48")
	assert.Contains(t, out, "ngram_range: [1, 3]")
}

func TestYAMLMasksCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Email.AppPassword = "gmail-pass"
	cfg.AI.AnthropicAPIKey = "sk-ant"
	cfg.AI.OpenAIAPIKey = "sk-openai"
	cfg.Cache.Redis.Password = "redis-pass"

	out, err := cfg.YAML()
	require.NoError(t, err)
	for _, secret := range []string{"gmail-pass", "sk-ant", "sk-openai", "redis-pass"} {
		assert.NotContains(t, out, secret)
	}
	assert.Regexp(t, `app_password: ['"]?\*\*\*`, out)
	assert.Equal(t, "sk-ant", cfg.AI.AnthropicAPIKey, "the loaded config keeps the real key")

	out, err = Defaults().YAML()
	require.NoError(t, err)
	assert.NotContains(t, out, "***")
}
