// Package cluster groups fetched items into topics with TF-IDF vectors and
// mini-batch k-means, picking the cluster count by silhouette score.
package cluster

import (
	"context"
	"math/rand"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/ingest"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/stoplist"
	"github.com/cognicore/topicscan/pkg/topicscan/tfidf"
)

const (
	seed            = 42
	maxBatch        = 256
	searchThreshold = 20
	silhouetteCap   = 500
	searchInits     = 2
	finalInits      = 3
	topTermCount    = 5
	labelTermCount  = 3
)

// Options configure clustering.
type Options struct {
	Enabled     bool
	MinClusters int
	MaxClusters int
}

// DefaultOptions returns clustering enabled with 3..15 clusters.
func DefaultOptions() Options {
	return Options{Enabled: true, MinClusters: 3, MaxClusters: 15}
}

// Clusterer groups items into topic clusters.
type Clusterer struct {
	opts Options
	vec  *tfidf.Vectorizer
	log  logger.Logger

	fits int // k-means fits performed, for tests
}

// New creates a Clusterer.
func New(opts Options, log logger.Logger) *Clusterer {
	if opts.MinClusters < 1 {
		opts.MinClusters = DefaultOptions().MinClusters
	}
	if opts.MaxClusters < opts.MinClusters {
		opts.MaxClusters = opts.MinClusters
	}
	return &Clusterer{
		opts: opts,
		vec: tfidf.New(tfidf.Options{
			MaxFeatures: 3000,
			NGramMin:    1,
			NGramMax:    2,
			MinDF:       2,
			MaxDF:       0.85,
			Stopwords:   stoplist.Default(),
		}),
		log: logger.OrNop(log),
	}
}

// Cluster groups items into clusters ordered by size, largest first.
// Item indices refer to positions in items. Disabled clustering and
// insufficient data both yield an empty result.
func (c *Clusterer) Cluster(ctx context.Context, items []model.Item) []model.Cluster {
	if !c.opts.Enabled {
		return nil
	}
	need := c.opts.MinClusters + 1
	if len(items) < need {
		c.log.Warn("too few items for clustering",
			logger.Int("items", len(items)), logger.Int("minimum", need))
		return nil
	}

	var (
		indices []int
		docs    []string
	)
	for i, it := range items {
		if doc := ingest.CleanKeepShort(it.Text()); doc != "" {
			indices = append(indices, i)
			docs = append(docs, doc)
		}
	}
	if len(docs) < need {
		c.log.Warn("too few documents for clustering",
			logger.Int("documents", len(docs)), logger.Int("minimum", need))
		return nil
	}

	m, err := c.vec.FitTransform(docs)
	if err != nil {
		c.log.Error("tfidf for clustering failed", logger.Error(err))
		return nil
	}

	k := c.chooseK(ctx, m.Weights, len(docs))
	fitted, err := c.fit(k, finalInits, len(docs), m.Weights)
	if err != nil {
		c.log.Error("kmeans failed", logger.Int("k", k), logger.Error(err))
		return nil
	}

	clusters := make([]model.Cluster, 0, k)
	for id := 0; id < k; id++ {
		terms := topTerms(fitted.Centroids.RawRowView(id), m.Terms, topTermCount)
		members := []int{}
		for row, lbl := range fitted.Labels {
			if lbl == id {
				members = append(members, indices[row])
			}
		}
		clusters = append(clusters, model.Cluster{
			ID:          id,
			Label:       strings.Join(terms[:min(labelTermCount, len(terms))], ", "),
			TopTerms:    terms,
			ItemIndices: members,
			Size:        len(members),
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool { return clusters[i].Size > clusters[j].Size })

	c.log.Info("items clustered", logger.Int("clusters", len(clusters)), logger.Int("documents", len(docs)))
	return clusters
}

// chooseK searches [min, max] for the cluster count with the best
// silhouette score. Small corpora skip the search and use the minimum.
func (c *Clusterer) chooseK(ctx context.Context, x *mat.Dense, n int) int {
	maxK := min(c.opts.MaxClusters, n-1)
	minK := min(c.opts.MinClusters, maxK)
	if maxK <= minK {
		return minK
	}
	if n < searchThreshold {
		return minK
	}

	rng := rand.New(rand.NewSource(seed))
	bestK, bestScore := minK, -1.0
	for k := minK; k <= maxK; k++ {
		if err := ctx.Err(); err != nil {
			c.log.Warn("cluster count search interrupted", logger.Int("k", minK), logger.Error(err))
			return minK
		}
		fitted, err := c.fit(k, searchInits, n, x)
		if err != nil {
			c.log.Warn("silhouette search failed, using minimum", logger.Int("k", minK), logger.Error(err))
			return minK
		}
		if distinctLabels(fitted.Labels) < 2 {
			continue
		}
		score, err := Silhouette(x, fitted.Labels, min(silhouetteCap, n), rng)
		if err != nil {
			c.log.Warn("silhouette search failed, using minimum", logger.Int("k", minK), logger.Error(err))
			return minK
		}
		if score > bestScore {
			bestK, bestScore = k, score
		}
	}

	c.log.Debug("cluster count chosen", logger.Int("k", bestK), logger.Float64("silhouette", bestScore))
	return bestK
}

func (c *Clusterer) fit(k, nInit, n int, x *mat.Dense) (*Model, error) {
	c.fits++
	return MiniBatchKMeans{
		K:         k,
		NInit:     nInit,
		BatchSize: min(maxBatch, n),
		Seed:      seed,
	}.Fit(x)
}

func distinctLabels(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// topTerms returns up to n terms with the highest centroid weights.
func topTerms(centroid []float64, terms []string, n int) []string {
	order := make([]int, len(centroid))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return centroid[order[a]] > centroid[order[b]] })

	out := make([]string, 0, n)
	for _, j := range order[:min(n, len(order))] {
		out = append(out, terms[j])
	}
	return out
}
