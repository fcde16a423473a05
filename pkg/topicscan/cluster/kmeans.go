package cluster

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicscan/internal/apperr"
)

const (
	defaultMaxIter = 100
	convergenceTol = 1e-6
)

// MiniBatchKMeans clusters the rows of a matrix with k-means++ seeding and
// mini-batch centroid updates. The best of NInit restarts (lowest inertia)
// wins. A fixed Seed makes runs reproducible.
type MiniBatchKMeans struct {
	K         int
	NInit     int
	BatchSize int
	MaxIter   int
	Seed      int64
}

// Model is a fitted clustering.
type Model struct {
	Centroids *mat.Dense
	Labels    []int
	Inertia   float64
}

// Fit clusters the rows of x.
func (km MiniBatchKMeans) Fit(x *mat.Dense) (*Model, error) {
	n, _ := x.Dims()
	if km.K < 1 || km.K > n {
		return nil, fmt.Errorf("kmeans: k=%d with %d samples: %w", km.K, n, apperr.ErrInvalidInput)
	}
	nInit := max(km.NInit, 1)
	batch := km.BatchSize
	if batch <= 0 || batch > n {
		batch = n
	}
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}

	rng := rand.New(rand.NewSource(km.Seed))
	var best *Model
	for run := 0; run < nInit; run++ {
		centroids := initializeCentroidsKMeansPlusPlus(x, km.K, rng)
		counts := make([]float64, km.K)
		prev := mat.NewDense(km.K, centroids.RawMatrix().Cols, nil)

		for iter := 0; iter < maxIter; iter++ {
			prev.Copy(centroids)
			for _, i := range rng.Perm(n)[:batch] {
				point := x.RawRowView(i)
				c, _ := nearest(point, centroids)
				counts[c]++
				eta := 1 / counts[c]
				row := centroids.RawRowView(c)
				floats.Scale(1-eta, row)
				floats.AddScaled(row, eta, point)
			}
			if centroidShift(prev, centroids) < convergenceTol {
				break
			}
		}

		labels, inertia := assignPointsToClusters(x, centroids)
		if best == nil || inertia < best.Inertia {
			best = &Model{Centroids: centroids, Labels: labels, Inertia: inertia}
		}
	}
	return best, nil
}

// initializeCentroidsKMeansPlusPlus picks k starting centroids, each next
// one with probability proportional to its squared distance from the
// nearest centroid chosen so far.
func initializeCentroidsKMeansPlusPlus(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	distances := make([]float64, n)
	for i := 1; i < k; i++ {
		total := 0.0
		for j := 0; j < n; j++ {
			point := data.RawRowView(j)
			minDist := math.Inf(1)
			for c := 0; c < i; c++ {
				if dist := floats.Distance(point, centroids.RawRowView(c), 2); dist < minDist {
					minDist = dist
				}
			}
			distances[j] = minDist * minDist
			total += distances[j]
		}

		if total == 0 {
			centroids.SetRow(i, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		cum := 0.0
		chosen := n - 1
		for j, dist := range distances {
			cum += dist
			if cum >= target && dist > 0 {
				chosen = j
				break
			}
		}
		centroids.SetRow(i, data.RawRowView(chosen))
	}
	return centroids
}

// assignPointsToClusters labels every row with its nearest centroid and
// returns the summed squared distances.
func assignPointsToClusters(data *mat.Dense, centroids *mat.Dense) ([]int, float64) {
	n, _ := data.Dims()
	labels := make([]int, n)
	inertia := 0.0
	for i := 0; i < n; i++ {
		c, dist := nearest(data.RawRowView(i), centroids)
		labels[i] = c
		inertia += dist * dist
	}
	return labels, inertia
}

func nearest(point []float64, centroids *mat.Dense) (int, float64) {
	k, _ := centroids.Dims()
	best, bestDist := 0, math.Inf(1)
	for c := 0; c < k; c++ {
		if dist := floats.Distance(point, centroids.RawRowView(c), 2); dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best, bestDist
}

func centroidShift(a, b *mat.Dense) float64 {
	k, _ := a.Dims()
	total := 0.0
	for c := 0; c < k; c++ {
		total += floats.Distance(a.RawRowView(c), b.RawRowView(c), 2)
	}
	return total
}

// Silhouette returns the mean silhouette coefficient over a random sample
// of at most sampleSize rows. It fails when the sample does not hold at
// least two clusters, or when every sampled point is its own cluster.
func Silhouette(x *mat.Dense, labels []int, sampleSize int, rng *rand.Rand) (float64, error) {
	n, _ := x.Dims()
	if len(labels) != n {
		return 0, fmt.Errorf("silhouette: %d labels for %d samples: %w", len(labels), n, apperr.ErrInvalidInput)
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if sampleSize > 0 && sampleSize < n {
		idx = rng.Perm(n)[:sampleSize]
	}

	distinct := make(map[int]int)
	for _, i := range idx {
		distinct[labels[i]]++
	}
	if len(distinct) < 2 || len(distinct) >= len(idx) {
		return 0, fmt.Errorf("silhouette: %d labels in %d samples: %w", len(distinct), len(idx), apperr.ErrInvalidInput)
	}

	total := 0.0
	for _, i := range idx {
		own := labels[i]
		sums := make(map[int]float64, len(distinct))
		for _, j := range idx {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(x.RawRowView(i), x.RawRowView(j), 2)
		}
		if distinct[own] <= 1 {
			continue
		}
		a := sums[own] / float64(distinct[own]-1)
		b := math.Inf(1)
		for lbl, cnt := range distinct {
			if lbl == own {
				continue
			}
			b = math.Min(b, sums[lbl]/float64(cnt))
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(len(idx)), nil
}
