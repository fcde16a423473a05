package categorize

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

const (
	exactWeight       = 0.8
	wordInKeyword     = 0.4
	keywordInWord     = 0.3
	contextPerMatch   = 0.1
	contextCap        = 0.5
	minimumConfidence = 0.3
)

// Categorizer assigns static category labels by dictionary matching.
type Categorizer struct {
	dict         map[string][]string // category → words (lowercase)
	order        []string
	displayNames map[string]string
	log          logger.Logger
}

// New creates a Categorizer from a category → words dictionary and an
// optional category → display name map. Categories are evaluated in
// key order so ties rank deterministically.
func New(dict map[string][]string, displayNames map[string]string, log logger.Logger) *Categorizer {
	c := &Categorizer{
		dict:         make(map[string][]string, len(dict)),
		displayNames: displayNames,
		log:          logger.OrNop(log),
	}
	for cat, words := range dict {
		normalized := make([]string, len(words))
		for i, w := range words {
			normalized[i] = strings.ToLower(strings.TrimSpace(w))
		}
		c.dict[cat] = normalized
		c.order = append(c.order, cat)
	}
	sort.Strings(c.order)
	return c
}

// Categorize ranks the categories that apply to keyword, using context
// (usually the text of the items the keyword came from) as extra evidence.
// The result is never empty.
func (c *Categorizer) Categorize(keyword, context string) []model.CategoryAssignment {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	ctx := strings.ToLower(context)

	var results []model.CategoryAssignment
	for _, cat := range c.order {
		words := c.dict[cat]
		confidence := 0.0

		for _, w := range words {
			if w == kw {
				confidence += exactWeight
				break
			}
		}

		// First containment hit wins, in either direction.
		for _, w := range words {
			if strings.Contains(kw, w) && w != kw {
				confidence += wordInKeyword
				break
			}
			if strings.Contains(w, kw) && w != kw {
				confidence += keywordInWord
				break
			}
		}

		if ctx != "" {
			matches := 0
			for _, w := range words {
				if strings.Contains(ctx, w) {
					matches++
				}
			}
			confidence += math.Min(float64(matches)*contextPerMatch, contextCap)
		}

		if confidence >= minimumConfidence {
			results = append(results, model.CategoryAssignment{
				Category:    cat,
				DisplayName: c.displayName(cat),
				Confidence:  math.Min(confidence, 1.0),
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if len(results) == 0 {
		return []model.CategoryAssignment{model.OtherCategory()}
	}
	return results
}

// CategorizeBatch sets Categories on every topic, using the title and
// description of its source items as context.
func (c *Categorizer) CategorizeBatch(topics []model.Topic, items []model.Item) {
	for i := range topics {
		var parts []string
		for _, idx := range topics[i].SourceItems {
			if idx >= 0 && idx < len(items) {
				parts = append(parts, items[idx].Text())
			}
		}
		topics[i].Categories = c.Categorize(topics[i].Keyword, strings.Join(parts, " "))
	}
	c.log.Info("keywords categorized", logger.Int("keywords", len(topics)))
}

func (c *Categorizer) displayName(cat string) string {
	if name, ok := c.displayNames[cat]; ok && name != "" {
		return name
	}
	return cat
}
