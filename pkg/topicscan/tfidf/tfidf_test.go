package tfidf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/pkg/topicscan/stoplist"
)

func TestFitTransformVocabulary(t *testing.T) {
	v := New(Options{NGramMin: 1, NGramMax: 2, MinDF: 2, Stopwords: stoplist.Default()})

	m, err := v.FitTransform([]string{
		"generative ai marketing",
		"generative ai search",
		"the marketing budget",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ai", "generative", "generative ai", "marketing"}, m.Terms)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, []int{2, 2, 2, 2}, m.DocCounts())
	assert.Equal(t, []int{0, 1}, m.NonZeroRows(0))
	assert.Equal(t, []int{0, 2}, m.NonZeroRows(3))
}

func TestRowsAreUnitLength(t *testing.T) {
	v := New(Options{})

	m, err := v.FitTransform([]string{"alpha beta beta", "beta gamma", "delta"})
	require.NoError(t, err)

	for i := 0; i < m.Rows(); i++ {
		assert.InDelta(t, 1.0, floats.Norm(m.Weights.RawRowView(i), 2), 1e-9)
	}
}

func TestSmoothedIDF(t *testing.T) {
	v := New(Options{})

	m, err := v.FitTransform([]string{"alpha beta", "alpha"})
	require.NoError(t, err)

	// Row 0: alpha has df 2 (idf 1), beta has df 1 (idf ln(3/2)+1).
	idfBeta := math.Log(1.5) + 1
	norm := math.Sqrt(1 + idfBeta*idfBeta)
	assert.InDelta(t, 1/norm, m.Weights.At(0, 0), 1e-9)
	assert.InDelta(t, idfBeta/norm, m.Weights.At(0, 1), 1e-9)
	assert.InDelta(t, 1.0, m.Weights.At(1, 0), 1e-9)

	sums := m.ColumnSums()
	assert.InDelta(t, 1/norm+1, sums[0], 1e-9)
}

func TestMaxFeaturesKeepsMostFrequent(t *testing.T) {
	v := New(Options{MaxFeatures: 2})

	m, err := v.FitTransform([]string{"cloud cloud data", "cloud data edge", "zebra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cloud", "data"}, m.Terms)
}

func TestMaxDFPrunesUbiquitousTerms(t *testing.T) {
	v := New(Options{MinDF: 1, MaxDF: 0.5})

	m, err := v.FitTransform([]string{"news alpha", "news beta", "news gamma", "news delta"})
	require.NoError(t, err)
	assert.NotContains(t, m.Terms, "news")
}

func TestFitErrors(t *testing.T) {
	_, err := New(Options{Stopwords: stoplist.Default()}).FitTransform([]string{"the and of", "a an"})
	assert.ErrorIs(t, err, apperr.ErrEmptyVocabulary)

	_, err = New(Options{MinDF: 2}).FitTransform([]string{"alpha", "beta", "gamma"})
	assert.ErrorIs(t, err, apperr.ErrEmptyVocabulary)

	_, err = New(Options{MinDF: 2, MaxDF: 0.8}).FitTransform([]string{"alpha beta", "alpha beta"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = New(Options{}).FitTransform(nil)
	assert.ErrorIs(t, err, apperr.ErrNoData)
}
