package score

import (
	"math"
	"sort"
	"time"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

// Weights defines the scoring weights
type Weights struct {
	Frequency       float64 `yaml:"frequency"`
	Recency         float64 `yaml:"recency"`
	SourceDiversity float64 `yaml:"source_diversity"`
	Engagement      float64 `yaml:"engagement"`
}

// DefaultWeights returns the stock 0.30/0.30/0.25/0.15 split.
func DefaultWeights() Weights {
	return Weights{Frequency: 0.30, Recency: 0.30, SourceDiversity: 0.25, Engagement: 0.15}
}

// Scorer calculates composite trend scores for keywords.
type Scorer struct {
	weights    Weights
	decayHours float64
	now        func() time.Time
	log        logger.Logger
}

// NewScorer creates a new scorer with the given weights and recency decay.
func NewScorer(w Weights, decayHours float64, log logger.Logger) *Scorer {
	return &Scorer{
		weights:    w,
		decayHours: decayHours,
		now:        time.Now,
		log:        logger.OrNop(log),
	}
}

// Score computes the trend score of a keyword given the items it matched,
// the number of items in the run and the set of sources in the run.
//
// trend = wf·frequency + wr·recency + wd·diversity + we·engagement
func (s *Scorer) Score(matching []model.Item, totalItems int, allSources map[string]struct{}) model.Scores {
	if len(matching) == 0 {
		return model.Scores{Sources: []string{}}
	}

	mentions := len(matching)
	frequency := math.Min(float64(mentions)/math.Max(float64(totalItems), 1), 1.0)

	var latest *time.Time
	for _, it := range matching {
		if it.Published == nil {
			continue
		}
		if latest == nil || it.Published.After(*latest) {
			p := *it.Published
			latest = &p
		}
	}
	recency := 0.0
	var latestDate *string
	if latest != nil {
		ageHours := math.Max(s.now().UTC().Sub(latest.UTC()).Hours(), 0)
		recency = math.Exp(-ageHours / math.Max(s.decayHours, 1))
		iso := latest.Format(time.RFC3339)
		latestDate = &iso
	}

	unique := make(map[string]struct{})
	for _, it := range matching {
		unique[it.Source] = struct{}{}
	}
	diversity := float64(len(unique)) / math.Max(float64(len(allSources)), 1)

	engagementTotal := 0
	for _, it := range matching {
		if it.Score > 0 {
			engagementTotal += it.Score
		}
	}
	engagement := math.Min(math.Log1p(float64(engagementTotal))/10.0, 1.0)

	trend := s.weights.Frequency*frequency +
		s.weights.Recency*recency +
		s.weights.SourceDiversity*diversity +
		s.weights.Engagement*engagement

	sources := make([]string, 0, len(unique))
	for src := range unique {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	return model.Scores{
		TrendScore:           round4(trend),
		FrequencyScore:       round4(frequency),
		RecencyScore:         round4(recency),
		SourceDiversityScore: round4(diversity),
		EngagementScore:      round4(engagement),
		MentionCount:         mentions,
		Sources:              sources,
		LatestDate:           latestDate,
	}
}

// ScoreBatch scores every topic from its source items and sorts topics by
// trend score, highest first.
func (s *Scorer) ScoreBatch(topics []model.Topic, items []model.Item, allSources map[string]struct{}) {
	for i := range topics {
		var matching []model.Item
		for _, idx := range topics[i].SourceItems {
			if idx >= 0 && idx < len(items) {
				matching = append(matching, items[idx])
			}
		}
		topics[i].Scores = s.Score(matching, len(items), allSources)
	}

	sort.SliceStable(topics, func(a, b int) bool {
		return topics[a].TrendScore > topics[b].TrendScore
	})
	s.log.Info("keywords scored", logger.Int("keywords", len(topics)))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
