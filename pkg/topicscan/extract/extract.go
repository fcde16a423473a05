// Package extract turns fetched items into weighted keyword candidates.
package extract

import (
	"context"
	"sort"
	"strings"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/ingest"
	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/stoplist"
	"github.com/cognicore/topicscan/pkg/topicscan/tfidf"
)

const (
	MethodTFIDF  = "tfidf"
	MethodPhrase = "phrase"

	maxFeatures = 5000
	maxDF       = 0.8
)

// Options configure extraction.
type Options struct {
	Method     string
	TopN       int
	NGramRange [2]int
	MinDF      int
}

// DefaultOptions returns the stock extraction settings.
func DefaultOptions() Options {
	return Options{Method: MethodTFIDF, TopN: 30, NGramRange: [2]int{1, 3}, MinDF: 2}
}

// RankedPhrase is a keyphrase with a relevance weight.
type RankedPhrase struct {
	Phrase string
	Score  float64
}

// PhraseRanker is an optional alternative to TF-IDF that ranks keyphrases
// over a whole corpus.
type PhraseRanker interface {
	RankPhrases(ctx context.Context, docs []string, topN int) ([]RankedPhrase, error)
}

// Extractor produces keyword candidates.
type Extractor struct {
	opts   Options
	vec    *tfidf.Vectorizer
	ranker PhraseRanker
	log    logger.Logger
}

// New builds an Extractor. ranker may be nil; it is only consulted when
// opts.Method is MethodPhrase.
func New(opts Options, ranker PhraseRanker, log logger.Logger) *Extractor {
	def := DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.NGramRange[0] <= 0 || opts.NGramRange[1] < opts.NGramRange[0] {
		opts.NGramRange = def.NGramRange
	}
	if opts.MinDF <= 0 {
		opts.MinDF = def.MinDF
	}
	log = logger.OrNop(log)

	e := &Extractor{
		opts: opts,
		vec: tfidf.New(tfidf.Options{
			MaxFeatures: maxFeatures,
			NGramMin:    opts.NGramRange[0],
			NGramMax:    opts.NGramRange[1],
			MinDF:       opts.MinDF,
			MaxDF:       maxDF,
			Stopwords:   stoplist.Default(),
		}),
		log: log,
	}
	if opts.Method == MethodPhrase {
		if ranker == nil {
			log.Warn("phrase ranker unavailable, using tfidf")
		} else {
			e.ranker = ranker
		}
	}
	return e
}

// Extract returns the top keyword candidates across items, highest
// aggregate weight first. It never fails: insufficient input or a fit
// error yields an empty slice.
func (e *Extractor) Extract(ctx context.Context, items []model.Item) []model.Topic {
	if len(items) == 0 {
		return nil
	}

	var (
		indices []int
		docs    []string
	)
	for i, it := range items {
		if doc := ingest.Clean(it.Text()); doc != "" {
			indices = append(indices, i)
			docs = append(docs, doc)
		}
	}
	if len(docs) < 2 {
		e.log.Warn("too few documents for tfidf", logger.Int("documents", len(docs)))
		return nil
	}

	if e.ranker != nil {
		topics, err := e.extractPhrases(ctx, docs, indices)
		if err == nil {
			return topics
		}
		e.log.Warn("phrase ranking failed, falling back to tfidf", logger.Error(err))
	}
	return e.extractTFIDF(docs, indices)
}

func (e *Extractor) extractTFIDF(docs []string, indices []int) []model.Topic {
	m, err := e.vec.FitTransform(docs)
	if err != nil {
		e.log.Error("tfidf fit failed", logger.Error(err))
		return nil
	}

	sums := m.ColumnSums()
	counts := m.DocCounts()

	order := make([]int, len(sums))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return sums[order[a]] > sums[order[b]] })

	var topics []model.Topic
	for _, col := range order {
		if len(topics) == e.opts.TopN {
			break
		}
		if sums[col] <= 0 {
			break
		}
		rows := m.NonZeroRows(col)
		sourceItems := make([]int, len(rows))
		for k, r := range rows {
			sourceItems[k] = indices[r]
		}
		topics = append(topics, model.Topic{
			Keyword:     m.Terms[col],
			Score:       sums[col],
			Count:       counts[col],
			SourceItems: sourceItems,
		})
	}

	e.log.Info("tfidf keywords extracted", logger.Int("keywords", len(topics)))
	return topics
}

func (e *Extractor) extractPhrases(ctx context.Context, docs []string, indices []int) ([]model.Topic, error) {
	ranked, err := e.ranker.RankPhrases(ctx, docs, e.opts.TopN)
	if err != nil {
		return nil, err
	}

	lowered := make([]string, len(docs))
	for i, d := range docs {
		lowered[i] = strings.ToLower(d)
	}

	var topics []model.Topic
	for _, rp := range ranked {
		phrase := strings.ToLower(strings.TrimSpace(rp.Phrase))
		if phrase == "" {
			continue
		}
		var sourceItems []int
		for i, d := range lowered {
			if strings.Contains(d, phrase) {
				sourceItems = append(sourceItems, indices[i])
			}
		}
		if len(sourceItems) == 0 {
			continue
		}
		topics = append(topics, model.Topic{
			Keyword:     phrase,
			Score:       rp.Score,
			Count:       len(sourceItems),
			SourceItems: sourceItems,
		})
		if len(topics) == e.opts.TopN {
			break
		}
	}

	e.log.Info("ranked keyphrases extracted", logger.Int("keywords", len(topics)))
	return topics, nil
}
