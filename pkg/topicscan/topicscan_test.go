package topicscan

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

func corpus() []model.Item {
	now := time.Now().UTC()
	titles := []struct{ title, source string }{
		{"SEO tools for marketing teams", "reddit"},
		{"SEO tools compared for agencies", "hackernews"},
		{"Generative AI agents in analytics", "google_news"},
		{"Generative AI agents reshape search", "reddit"},
		{"BigQuery analytics pipelines for marketing data", "hackernews"},
		{"BigQuery analytics costs explained", "google_news"},
	}
	items := make([]model.Item, len(titles))
	for i, t := range titles {
		ts := now.Add(-time.Duration(i) * time.Hour)
		items[i] = model.Item{Title: t.title, Source: t.source, URL: "https://example.com/" + t.source, Published: &ts, Score: 10 * i}
	}
	return items
}

var keywords = map[string][]string{
	"marketing_digital": {"seo", "marketing"},
	"ai_ml":             {"generative ai", "agents"},
	"data_analytics":    {"bigquery", "analytics"},
}

func TestProcess(t *testing.T) {
	cfg := config.Defaults()
	cfg.Categories = map[string]config.Category{"marketing_digital": {DisplayName: "Marketing"}}
	items := corpus()

	topics, clusters := NewPipeline(cfg, keywords, nil, nil).Process(context.Background(), items)
	require.NotEmpty(t, topics)

	assert.True(t, sort.SliceIsSorted(topics, func(a, b int) bool { return topics[a].TrendScore > topics[b].TrendScore }))
	for _, tp := range topics {
		assert.NotEmpty(t, tp.Categories, tp.Keyword)
		assert.GreaterOrEqual(t, tp.Count, 1)
		for _, idx := range tp.SourceItems {
			assert.True(t, idx >= 0 && idx < len(items))
		}
	}

	byKeyword := map[string]model.Topic{}
	for _, tp := range topics {
		byKeyword[tp.Keyword] = tp
	}
	seo, ok := byKeyword["seo"]
	require.True(t, ok)
	assert.Equal(t, "marketing_digital", seo.PrimaryCategory().Category)
	assert.Equal(t, "Marketing", seo.PrimaryCategory().DisplayName)
	assert.Equal(t, 2, seo.MentionCount)

	total := 0
	for _, c := range clusters {
		total += c.Size
	}
	assert.Len(t, clusters, 3)
	assert.LessOrEqual(t, total, len(items))
}

func TestProcessNoSignal(t *testing.T) {
	items := []model.Item{{Title: "<br/>"}, {Title: "https://example.com"}}
	topics, clusters := NewPipeline(config.Defaults(), keywords, nil, nil).Process(context.Background(), items)
	assert.Empty(t, topics)
	assert.Empty(t, clusters)
}

func TestProcessClusteringDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Processing.Clustering.Enabled = false
	topics, clusters := NewPipeline(cfg, keywords, nil, nil).Process(context.Background(), corpus())
	assert.NotEmpty(t, topics)
	assert.Empty(t, clusters)
}

func TestCategoriesByItem(t *testing.T) {
	mkt := []model.CategoryAssignment{{Category: "marketing_digital"}}
	ai := []model.CategoryAssignment{{Category: "ai_ml"}}
	got := CategoriesByItem([]model.Topic{
		{Keyword: "seo", SourceItems: []int{0, 1}, Categories: mkt},
		{Keyword: "ai", SourceItems: []int{1, 2}, Categories: ai},
	})
	assert.Equal(t, mkt, got[0])
	assert.Equal(t, mkt, got[1])
	assert.Equal(t, ai, got[2])
}
