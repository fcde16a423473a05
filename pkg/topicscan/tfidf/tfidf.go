// Package tfidf builds L2-normalised TF-IDF document-term matrices.
//
// Weights use raw term counts and smoothed IDF, idf(t) = ln((1+n)/(1+df(t))) + 1.
// Terms are pruned by document frequency and then capped to the most frequent
// MaxFeatures terms across the corpus. Columns are ordered alphabetically.
package tfidf

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/pkg/topicscan/ingest"
	"github.com/cognicore/topicscan/pkg/topicscan/stoplist"
)

// Options configure a Vectorizer.
type Options struct {
	MaxFeatures int
	NGramMin    int
	NGramMax    int
	// MinDF is an absolute document count.
	MinDF int
	// MaxDF is a proportion of documents in (0, 1].
	MaxDF     float64
	Stopwords *stoplist.Manager
}

// Vectorizer turns documents into a TF-IDF matrix.
type Vectorizer struct {
	opts Options
	tok  *ingest.Tokenizer
}

// New creates a Vectorizer. Zero-valued options fall back to unigram, min_df 1,
// max_df 1.0 and an unlimited vocabulary.
func New(opts Options) *Vectorizer {
	if opts.NGramMin < 1 {
		opts.NGramMin = 1
	}
	if opts.NGramMax < opts.NGramMin {
		opts.NGramMax = opts.NGramMin
	}
	if opts.MinDF < 1 {
		opts.MinDF = 1
	}
	if opts.MaxDF <= 0 || opts.MaxDF > 1 {
		opts.MaxDF = 1
	}
	var stops []string
	if opts.Stopwords != nil {
		stops = opts.Stopwords.All()
	}
	return &Vectorizer{opts: opts, tok: ingest.NewTokenizer(stops)}
}

// Matrix is a fitted document-term matrix.
type Matrix struct {
	// Weights has one row per document and one column per term.
	Weights *mat.Dense
	Terms   []string
}

// FitTransform learns the vocabulary of docs and returns their weights.
func (v *Vectorizer) FitTransform(docs []string) (*Matrix, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("fit tfidf: %w", apperr.ErrNoData)
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		grams := ingest.NGrams(v.tok.Tokenize(doc), v.opts.NGramMin, v.opts.NGramMax)
		c := make(map[string]int, len(grams))
		for _, g := range grams {
			c[g]++
			total[g]++
		}
		for g := range c {
			df[g]++
		}
		counts[i] = c
	}
	if len(df) == 0 {
		return nil, fmt.Errorf("fit tfidf: %w", apperr.ErrEmptyVocabulary)
	}

	n := float64(len(docs))
	maxDocCount := v.opts.MaxDF * n
	if maxDocCount < float64(v.opts.MinDF) {
		return nil, fmt.Errorf("fit tfidf: max_df covers %.1f documents, fewer than min_df %d: %w",
			maxDocCount, v.opts.MinDF, apperr.ErrInvalidInput)
	}

	var terms []string
	for term, d := range df {
		if d < v.opts.MinDF || float64(d) > maxDocCount {
			continue
		}
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("fit tfidf: no terms remain after pruning: %w", apperr.ErrEmptyVocabulary)
	}

	if v.opts.MaxFeatures > 0 && len(terms) > v.opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if total[terms[i]] != total[terms[j]] {
				return total[terms[i]] > total[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.opts.MaxFeatures]
	}
	sort.Strings(terms)

	weights := mat.NewDense(len(docs), len(terms), nil)
	for j, term := range terms {
		idf := math.Log((1+n)/(1+float64(df[term]))) + 1
		for i := range docs {
			if c := counts[i][term]; c > 0 {
				weights.Set(i, j, float64(c)*idf)
			}
		}
	}
	for i := range docs {
		row := weights.RawRowView(i)
		if norm := floats.Norm(row, 2); norm > 0 {
			floats.Scale(1/norm, row)
		}
	}

	return &Matrix{Weights: weights, Terms: terms}, nil
}

// Rows reports the number of documents.
func (m *Matrix) Rows() int {
	r, _ := m.Weights.Dims()
	return r
}

// ColumnSums returns the total weight of each term across documents.
func (m *Matrix) ColumnSums() []float64 {
	r, c := m.Weights.Dims()
	sums := make([]float64, c)
	for i := 0; i < r; i++ {
		floats.Add(sums, m.Weights.RawRowView(i))
	}
	return sums
}

// DocCounts returns, per term, how many documents carry a nonzero weight.
func (m *Matrix) DocCounts() []int {
	r, c := m.Weights.Dims()
	out := make([]int, c)
	for i := 0; i < r; i++ {
		for j, w := range m.Weights.RawRowView(i) {
			if w != 0 {
				out[j]++
			}
		}
	}
	return out
}

// NonZeroRows returns the row indices with a nonzero weight in column j.
func (m *Matrix) NonZeroRows(j int) []int {
	r, _ := m.Weights.Dims()
	var rows []int
	for i := 0; i < r; i++ {
		if m.Weights.At(i, j) != 0 {
			rows = append(rows, i)
		}
	}
	return rows
}
