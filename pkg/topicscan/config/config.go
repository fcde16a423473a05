// Package config loads the scanner's YAML configuration and keyword
// dictionaries.
package config

import (
	"sort"

	"github.com/cognicore/topicscan/pkg/topicscan/score"
)

// Config is the merged application configuration.
type Config struct {
	General    General             `yaml:"general"`
	Sources    map[string]Source   `yaml:"sources"`
	Processing Processing          `yaml:"processing"`
	Scoring    Scoring             `yaml:"scoring"`
	Categories map[string]Category `yaml:"categories"`
	Reporting  Reporting           `yaml:"reporting"`
	Email      Email               `yaml:"email"`
	AI         AI                  `yaml:"ai"`
	Dedup      Dedup               `yaml:"dedup"`
	Cache      Cache               `yaml:"cache"`
	Metrics    Metrics             `yaml:"metrics"`
	Schedule   Schedule            `yaml:"schedule"`

	sections map[string]struct{}
}

type General struct {
	Language          string `yaml:"language"`
	MaxItemsPerSource int    `yaml:"max_items_per_source"`
	DataDir           string `yaml:"data_dir" env:"TOPICSCAN_DATA_DIR"`
}

// Source is the union of all fetcher settings; each fetcher reads the
// fields it knows.
type Source struct {
	Enabled   *bool   `yaml:"enabled,omitempty"`
	RateLimit float64 `yaml:"rate_limit,omitempty"`

	Queries           []string `yaml:"queries,omitempty"`
	Subreddits        []string `yaml:"subreddits,omitempty"`
	Sort              string   `yaml:"sort,omitempty"`
	TimeFilter        string   `yaml:"time_filter,omitempty"`
	Limit             int      `yaml:"limit,omitempty"`
	MaxStories        int      `yaml:"max_stories,omitempty"`
	RelevanceKeywords []string `yaml:"relevance_keywords,omitempty"`
	Geo               string   `yaml:"geo,omitempty"`
	NewsletterURLs    []string `yaml:"newsletter_urls,omitempty"`
	BaseURL           string   `yaml:"base_url,omitempty"`
}

// IsEnabled treats an absent flag as enabled.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

type Processing struct {
	ExtractionMethod     string     `yaml:"extraction_method"`
	TopKeywords          int        `yaml:"top_keywords"`
	NGramRange           [2]int     `yaml:"ngram_range,flow"`
	MinDocumentFrequency int        `yaml:"min_document_frequency"`
	Clustering           Clustering `yaml:"clustering"`
}

type Clustering struct {
	Enabled     bool   `yaml:"enabled"`
	MinClusters int    `yaml:"min_clusters"`
	MaxClusters int    `yaml:"max_clusters"`
	Method      string `yaml:"method"`
}

type Scoring struct {
	Weights           score.Weights `yaml:"weights"`
	RecencyDecayHours float64       `yaml:"recency_decay_hours"`
}

type Category struct {
	DisplayName string `yaml:"display_name"`
}

type Reporting struct {
	Console ConsoleReport `yaml:"console"`
	Export  ExportReport  `yaml:"export"`
}

type ConsoleReport struct {
	TopN        int  `yaml:"top_n"`
	ShowSources bool `yaml:"show_sources"`
}

type ExportReport struct {
	JSON bool `yaml:"json"`
	CSV  bool `yaml:"csv"`
}

type Email struct {
	Enabled     bool     `yaml:"enabled"`
	SMTPServer  string   `yaml:"smtp_server"`
	SMTPPort    int      `yaml:"smtp_port"`
	Sender      string   `yaml:"sender"`
	AppPassword string   `yaml:"app_password" env:"GMAIL_APP_PASSWORD"`
	Recipients  []string `yaml:"recipients"`
}

type AI struct {
	Enabled         bool   `yaml:"enabled"`
	Provider        string `yaml:"provider"`
	Model           string `yaml:"model"`
	MaxTokens       int    `yaml:"max_tokens"`
	AnthropicAPIKey string `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey    string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	BaseURL         string `yaml:"base_url"`
}

type Dedup struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Days    int    `yaml:"days"`
}

type Cache struct {
	Backend string `yaml:"backend"`
	Redis   Redis  `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type Metrics struct {
	Textfile string `yaml:"textfile"`
}

type Schedule struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// Defaults returns the configuration used when config.yaml is absent and
// the base that a present file is merged onto.
func Defaults() *Config {
	return &Config{
		General: General{
			Language:          "english",
			MaxItemsPerSource: 100,
			DataDir:           "data",
		},
		Processing: Processing{
			ExtractionMethod:     "tfidf",
			TopKeywords:          30,
			NGramRange:           [2]int{1, 3},
			MinDocumentFrequency: 2,
			Clustering: Clustering{
				Enabled:     true,
				MinClusters: 3,
				MaxClusters: 15,
				Method:      "minibatch_kmeans",
			},
		},
		Scoring: Scoring{
			Weights:           score.DefaultWeights(),
			RecencyDecayHours: 48,
		},
		Reporting: Reporting{
			Console: ConsoleReport{TopN: 15, ShowSources: true},
			Export:  ExportReport{JSON: true, CSV: true},
		},
		Email: Email{
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		AI: AI{
			Provider:  "anthropic",
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 1024,
		},
		Dedup: Dedup{
			Backend: "sqlite",
			Path:    "sent_articles.db",
			Days:    7,
		},
		Cache: Cache{
			Backend: "file",
			Redis:   Redis{Addr: "localhost:6379", Key: "topicscan:fetch_cache"},
		},
		Schedule: Schedule{Cron: "0 7 * * *", Timezone: "Local"},
		sections: map[string]struct{}{
			"general":    {},
			"processing": {},
			"scoring":    {},
			"reporting":  {},
		},
	}
}

// EnabledSources lists configured sources that are not switched off, sorted.
func (c *Config) EnabledSources() []string {
	var out []string
	for name, src := range c.Sources {
		if src.IsEnabled() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// DisplayNames maps category keys to their configured display names.
func (c *Config) DisplayNames() map[string]string {
	out := make(map[string]string, len(c.Categories))
	for key, cat := range c.Categories {
		if cat.DisplayName != "" {
			out[key] = cat.DisplayName
		}
	}
	return out
}
