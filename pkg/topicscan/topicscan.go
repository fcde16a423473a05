// Package topicscan wires the processing stages of a scan: keyword
// extraction, categorization, trend scoring and clustering.
package topicscan

import (
	"context"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/categorize"
	"github.com/cognicore/topicscan/pkg/topicscan/cluster"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/extract"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/score"
)

// Pipeline runs the processing stages over one batch of items.
type Pipeline struct {
	extractor   *extract.Extractor
	categorizer *categorize.Categorizer
	scorer      *score.Scorer
	clusterer   *cluster.Clusterer
	log         logger.Logger
}

// NewPipeline builds the stages from cfg. keywords is the category → words
// dictionary; ranker may be nil.
func NewPipeline(cfg *config.Config, keywords map[string][]string, ranker extract.PhraseRanker, log logger.Logger) *Pipeline {
	log = logger.OrNop(log)
	p := cfg.Processing
	return &Pipeline{
		extractor: extract.New(extract.Options{
			Method:     p.ExtractionMethod,
			TopN:       p.TopKeywords,
			NGramRange: p.NGramRange,
			MinDF:      p.MinDocumentFrequency,
		}, ranker, log.With(logger.String("stage", "extract"))),
		categorizer: categorize.New(keywords, cfg.DisplayNames(), log.With(logger.String("stage", "categorize"))),
		scorer:      score.NewScorer(cfg.Scoring.Weights, cfg.Scoring.RecencyDecayHours, log.With(logger.String("stage", "score"))),
		clusterer: cluster.New(cluster.Options{
			Enabled:     p.Clustering.Enabled,
			MinClusters: p.Clustering.MinClusters,
			MaxClusters: p.Clustering.MaxClusters,
		}, log.With(logger.String("stage", "cluster"))),
		log: log,
	}
}

// Process extracts, categorizes and scores topics, then clusters the items.
// When no topic is extracted both results are empty.
func (p *Pipeline) Process(ctx context.Context, items []model.Item) ([]model.Topic, []model.Cluster) {
	topics := p.extractor.Extract(ctx, items)
	p.log.Info("Keywords extracted", logger.Int("keywords", len(topics)))
	if len(topics) == 0 {
		return nil, nil
	}

	p.categorizer.CategorizeBatch(topics, items)
	p.scorer.ScoreBatch(topics, items, model.Sources(items))

	clusters := p.clusterer.Cluster(ctx, items)
	p.log.Info("Items clustered", logger.Int("clusters", len(clusters)))
	return topics, clusters
}

// CategoriesByItem maps each item index to the categories of the first
// topic, in score order, that lists it.
func CategoriesByItem(topics []model.Topic) map[int][]model.CategoryAssignment {
	out := make(map[int][]model.CategoryAssignment)
	for _, t := range topics {
		for _, idx := range t.SourceItems {
			if _, ok := out[idx]; !ok {
				out[idx] = t.Categories
			}
		}
	}
	return out
}
