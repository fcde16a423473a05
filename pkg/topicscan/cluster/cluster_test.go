package cluster

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

func items(titles ...string) []model.Item {
	out := make([]model.Item, len(titles))
	for i, t := range titles {
		out[i] = model.Item{Title: t}
	}
	return out
}

func assertPartition(t *testing.T, clusters []model.Cluster, n int) {
	t.Helper()
	seen := make(map[int]bool)
	total := 0
	for i, c := range clusters {
		assert.Equal(t, len(c.ItemIndices), c.Size)
		total += c.Size
		for _, idx := range c.ItemIndices {
			assert.False(t, seen[idx], "item %d in more than one cluster", idx)
			assert.True(t, idx >= 0 && idx < n)
			seen[idx] = true
		}
		if i > 0 {
			assert.GreaterOrEqual(t, clusters[i-1].Size, c.Size)
		}
	}
	assert.LessOrEqual(t, total, n)
}

func TestDisabled(t *testing.T) {
	c := New(Options{Enabled: false, MinClusters: 3, MaxClusters: 15}, nil)
	assert.Empty(t, c.Cluster(context.Background(), items("a b", "c d", "e f", "g h", "i j")))
}

func TestTooFewItems(t *testing.T) {
	c := New(DefaultOptions(), nil)
	assert.Empty(t, c.Cluster(context.Background(), items("rust compiler", "rust release", "go release")))
	assert.Zero(t, c.fits)
}

func TestTooFewValidDocuments(t *testing.T) {
	c := New(DefaultOptions(), nil)
	got := c.Cluster(context.Background(), items("rust compiler", "rust release", "go release", "<br/>", "https://x.io"))
	assert.Empty(t, got)
}

func TestSmallCorpusUsesMinimumWithoutSearch(t *testing.T) {
	c := New(DefaultOptions(), nil)

	got := c.Cluster(context.Background(), items(
		"rust compiler release",
		"rust compiler bug",
		"python packaging tool",
		"python packaging release",
	))

	require.Len(t, got, 3)
	assert.Equal(t, 1, c.fits, "one final k-means run, no silhouette search")
	assertPartition(t, got, 4)
	for _, cl := range got {
		assert.LessOrEqual(t, len(cl.TopTerms), 5)
		assert.NotEmpty(t, cl.Label)
	}
}

func TestChooseKBounds(t *testing.T) {
	c := New(DefaultOptions(), nil)
	x := mat.NewDense(1, 1, nil)

	tests := []struct {
		n    int
		want int
	}{
		{3, 2},
		{4, 3},
		{19, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			assert.Equal(t, tt.want, c.chooseK(context.Background(), x, tt.n))
		})
	}
	assert.Zero(t, c.fits)
}

func separatedCorpus() ([]model.Item, map[int]string) {
	extrasA := []string{"borrow checker", "async runtime", "cargo build"}
	extrasB := []string{"grinder burr", "milk foam", "latte art"}
	out := []model.Item{{Title: "<p></p>"}}
	group := map[int]string{}
	for i := 0; i < 12; i++ {
		out = append(out, model.Item{Title: "Rust compiler memory safety", Description: extrasA[i%3]})
		group[len(out)-1] = "rust"
		out = append(out, model.Item{Title: "Coffee espresso roast beans", Description: extrasB[i%3]})
		group[len(out)-1] = "coffee"
	}
	return out, group
}

func TestSearchSeparatesTopics(t *testing.T) {
	corpus, group := separatedCorpus()
	c := New(Options{Enabled: true, MinClusters: 2, MaxClusters: 4}, nil)

	got := c.Cluster(context.Background(), corpus)

	require.NotEmpty(t, got)
	assert.Greater(t, c.fits, 1, "silhouette search ran")
	assertPartition(t, got, len(corpus))

	covered := 0
	for _, cl := range got {
		covered += cl.Size
		kinds := map[string]bool{}
		for _, idx := range cl.ItemIndices {
			assert.NotZero(t, idx, "empty document is never clustered")
			kinds[group[idx]] = true
		}
		assert.LessOrEqual(t, len(kinds), 1, "cluster %q mixes topics", cl.Label)
	}
	assert.Equal(t, 24, covered)
}

func TestClusterIsDeterministic(t *testing.T) {
	corpus, _ := separatedCorpus()
	a := New(Options{Enabled: true, MinClusters: 2, MaxClusters: 4}, nil).Cluster(context.Background(), corpus)
	b := New(Options{Enabled: true, MinClusters: 2, MaxClusters: 4}, nil).Cluster(context.Background(), corpus)
	assert.Equal(t, a, b)
}

func TestKMeansFit(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		0, 0, 0.1, 0, 0, 0.1,
		10, 10, 10.1, 10, 10, 10.1,
	})

	m, err := MiniBatchKMeans{K: 2, NInit: 3, Seed: 42}.Fit(x)
	require.NoError(t, err)
	assert.Equal(t, m.Labels[0], m.Labels[1])
	assert.Equal(t, m.Labels[0], m.Labels[2])
	assert.Equal(t, m.Labels[3], m.Labels[4])
	assert.NotEqual(t, m.Labels[0], m.Labels[3])
	assert.Less(t, m.Inertia, 0.1)

	_, err = MiniBatchKMeans{K: 7, Seed: 42}.Fit(x)
	assert.Error(t, err)
}

func TestSilhouette(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{0, 0.1, 10, 10.1})
	rng := rand.New(rand.NewSource(1))

	s, err := Silhouette(x, []int{0, 0, 1, 1}, 500, rng)
	require.NoError(t, err)
	assert.Greater(t, s, 0.98)

	_, err = Silhouette(x, []int{0, 0, 0, 0}, 500, rng)
	assert.Error(t, err)

	_, err = Silhouette(x, []int{0, 1, 2, 3}, 500, rng)
	assert.Error(t, err)
}

func TestTopTerms(t *testing.T) {
	got := topTerms([]float64{0.1, 0.5, 0.3}, []string{"a", "b", "c"}, 5)
	assert.Equal(t, []string{"b", "c", "a"}, got)
}
