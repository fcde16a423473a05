// Package summarize writes short AI digests for topic clusters and the
// newsletter intro. Without a provider every call degrades to a plain
// fallback instead of failing the run.
package summarize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	maxPromptArticles = 15
	fallbackTitles    = 5
	descriptionChars  = 200
	introClusters     = 10
	introMaxTokens    = 300
)

// Article is the view of an item handed to the model.
type Article struct {
	Title       string
	URL         string
	Source      string
	Description string
}

// IntroMeta describes the run for the newsletter intro.
type IntroMeta struct {
	TotalItems  int
	SourcesUsed []string
}

// Summarizer owns the provider and prompt settings.
type Summarizer struct {
	provider  Provider
	enabled   bool
	maxTokens int
	log       logger.Logger
}

// New returns a Summarizer. provider may be nil.
func New(provider Provider, enabled bool, maxTokens int, log logger.Logger) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Summarizer{provider: provider, enabled: enabled, maxTokens: maxTokens, log: logger.OrNop(log)}
}

// Available reports whether summaries will come from a model.
func (s *Summarizer) Available() bool {
	return s.enabled && s.provider != nil
}

// SummarizeGroup digests one group of articles.
func (s *Summarizer) SummarizeGroup(ctx context.Context, label string, articles []Article, category string) model.Summary {
	if s.provider == nil {
		return fallback(label, articles)
	}
	text, err := s.provider.Complete(ctx, groupPrompt(label, articles, category), s.maxTokens)
	if err != nil {
		s.log.Warn("AI summary failed", logger.String("label", label), logger.Error(err))
		return fallback(label, articles)
	}
	return parseResponse(text)
}

// SummarizeClusters attaches a summary to every cluster in place.
// categories maps an item index to the categories of the topic it feeds.
func (s *Summarizer) SummarizeClusters(ctx context.Context, clusters []model.Cluster, items []model.Item, categories map[int][]model.CategoryAssignment) []model.Cluster {
	if !s.enabled {
		s.log.Info("AI summaries disabled")
		return clusters
	}
	if s.provider == nil {
		s.log.Warn("AI provider unavailable, skipping summaries")
		return clusters
	}

	for i := range clusters {
		c := &clusters[i]
		var articles []Article
		names := map[string]struct{}{}
		for _, idx := range c.ItemIndices {
			if idx < 0 || idx >= len(items) {
				continue
			}
			it := items[idx]
			articles = append(articles, Article{
				Title:       it.Title,
				URL:         it.URL,
				Source:      it.Source,
				Description: truncate(it.Description, descriptionChars),
			})
			for _, ca := range categories[idx] {
				if ca.DisplayName != "" {
					names[ca.DisplayName] = struct{}{}
				}
			}
		}

		sum := s.SummarizeGroup(ctx, c.Label, articles, joinSorted(names))
		c.Summary = &sum
		s.log.Debug("cluster summarised", logger.String("label", c.Label))
	}
	s.log.Info("AI summaries complete", logger.Int("clusters", len(clusters)))
	return clusters
}

// NewsletterIntro writes the opening paragraph for the daily email. It
// returns "" when no provider is configured or the call fails.
func (s *Summarizer) NewsletterIntro(ctx context.Context, clusters []model.Cluster, meta IntroMeta) string {
	if s.provider == nil {
		return ""
	}
	n := min(len(clusters), introClusters)
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		labels[i] = clusters[i].Label
	}
	text, err := s.provider.Complete(ctx, introPrompt(labels, meta), introMaxTokens)
	if err != nil {
		s.log.Warn("newsletter intro failed", logger.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func groupPrompt(label string, articles []Article, category string) string {
	var lines []string
	for i, a := range articles {
		if i == maxPromptArticles {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", a.Title, a.Source))
	}
	return fmt.Sprintf(`You are an expert in digital marketing, AI and data analytics. Analyse this topic and its related articles.

TOPIC: %s
CATEGORY: %s

ARTICLES:
%s

Answer in this structured format:

SUMMARY (2-3 sentences):
What is currently happening in this topic? What is the main trend or event?

WHY IT MATTERS (1-2 sentences):
Why should a digital marketing or analytics professional care?

ARTICLE IDEA - TITLE:
Suggest a title for a LinkedIn post or article an analyst or consultant could write.

ARTICLE IDEA - ANGLE:
Which angle should it take? What exactly should it dig into? (2-3 sentences)`, label, category, strings.Join(lines, "\n"))
}

func introPrompt(labels []string, meta IntroMeta) string {
	bullets := make([]string, len(labels))
	for i, l := range labels {
		bullets[i] = "- " + l
	}
	return fmt.Sprintf(`You are the editor of a daily newsletter about trends in digital marketing, AI and analytics.

Today %d articles were analysed from these sources: %s.

Main topics of the day:
%s

Write a short opening paragraph (3-4 sentences) for the daily newsletter. Be brief, factual and interesting. Focus on what is most interesting today and why. Do not use emoji.`,
		meta.TotalItems, strings.Join(meta.SourcesUsed, ", "), strings.Join(bullets, "\n"))
}

var sections = []struct {
	prefix string
	field  func(*model.Summary) *string
}{
	{"SUMMARY", func(s *model.Summary) *string { return &s.Summary }},
	{"WHY IT MATTERS", func(s *model.Summary) *string { return &s.WhyItMatters }},
	{"ARTICLE IDEA - TITLE", func(s *model.Summary) *string { return &s.ArticleIdea }},
	{"ARTICLE IDEA - ANGLE", func(s *model.Summary) *string { return &s.ArticleAngle }},
}

func parseResponse(text string) model.Summary {
	var (
		out     model.Summary
		current *string
		buf     []string
	)
	flush := func() {
		if current != nil {
			*current = strings.TrimSpace(strings.Join(buf, "\n"))
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		upper := strings.ToUpper(line)
		matched := false
		for _, sec := range sections {
			if !strings.HasPrefix(upper, sec.prefix) {
				continue
			}
			flush()
			current = sec.field(&out)
			buf = buf[:0]
			if _, after, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(after) != "" {
				buf = append(buf, strings.TrimSpace(after))
			}
			matched = true
			break
		}
		if !matched && current != nil {
			buf = append(buf, line)
		}
	}
	flush()
	return out
}

func fallback(label string, articles []Article) model.Summary {
	titles := make([]string, 0, fallbackTitles)
	for i, a := range articles {
		if i == fallbackTitles {
			break
		}
		titles = append(titles, a.Title)
	}
	return model.Summary{
		Summary:     fmt.Sprintf("Topic '%s' - %d related articles.", label, len(articles)),
		TopArticles: titles,
	}
}

func joinSorted(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
