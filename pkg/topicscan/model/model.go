// Package model holds the data types shared by every stage of a scan run.
package model

import (
	"strings"
	"time"
)

// Item is one fetched article or post. Identity within a run is its URL.
type Item struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	SourceDetail string     `json:"source_detail"`
	Published    *time.Time `json:"published"`
	Score        int        `json:"score"`
	Tags         []string   `json:"tags"`
}

// Text returns the title and description joined by a space.
func (i Item) Text() string {
	return i.Title + " " + i.Description
}

// CategoryAssignment is one ranked category label on a topic.
type CategoryAssignment struct {
	Category    string  `json:"category"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
}

// OtherCategory is the sentinel used when no category clears the threshold.
func OtherCategory() CategoryAssignment {
	return CategoryAssignment{Category: "other", DisplayName: "Other", Confidence: 0}
}

// Scores are the trend-scoring fields attached to a topic.
type Scores struct {
	TrendScore           float64  `json:"trend_score"`
	FrequencyScore       float64  `json:"frequency_score"`
	RecencyScore         float64  `json:"recency_score"`
	SourceDiversityScore float64  `json:"source_diversity_score"`
	EngagementScore      float64  `json:"engagement_score"`
	MentionCount         int      `json:"mention_count"`
	Sources              []string `json:"sources"`
	LatestDate           *string  `json:"latest_date"`
}

// Topic is a keyword candidate. The extractor creates it, the categorizer
// adds Categories and the scorer fills Scores.
type Topic struct {
	Keyword     string               `json:"keyword"`
	Score       float64              `json:"score"`
	Count       int                  `json:"count"`
	SourceItems []int                `json:"source_items"`
	Categories  []CategoryAssignment `json:"categories,omitempty"`
	Scores
}

// PrimaryCategory returns the highest-confidence category, or the sentinel.
func (t Topic) PrimaryCategory() CategoryAssignment {
	if len(t.Categories) == 0 {
		return OtherCategory()
	}
	return t.Categories[0]
}

// CategoryNames joins the display names of all assigned categories.
func (t Topic) CategoryNames() string {
	names := make([]string, 0, len(t.Categories))
	for _, c := range t.Categories {
		name := c.DisplayName
		if name == "" {
			name = c.Category
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// Summary is the AI-written digest of a cluster.
type Summary struct {
	Summary      string   `json:"summary"`
	WhyItMatters string   `json:"why_it_matters"`
	ArticleIdea  string   `json:"article_idea"`
	ArticleAngle string   `json:"article_angle"`
	TopArticles  []string `json:"top_articles,omitempty"`
}

// Cluster is a group of items sharing a topic. Clusters have no identity
// across runs.
type Cluster struct {
	ID          int      `json:"cluster_id"`
	Label       string   `json:"label"`
	TopTerms    []string `json:"top_terms"`
	ItemIndices []int    `json:"item_indices"`
	Size        int      `json:"size"`
	Summary     *Summary `json:"ai_summary,omitempty"`
}

// Sources returns the distinct sources present in items.
func Sources(items []Item) map[string]struct{} {
	out := make(map[string]struct{})
	for _, it := range items {
		out[it.Source] = struct{}{}
	}
	return out
}
