package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

func sampleItems() []model.Item {
	return []model.Item{
		{Title: "Generative AI marketing", Description: "Brands adopt generative AI for campaigns"},
		{Title: "Generative AI search", Description: "Search engines add generative AI answers"},
		{Title: `<a href="https://x.io">https://x.io</a>`},
		{Title: "Marketing budgets shift", Description: "CMOs move marketing budgets to AI"},
	}
}

func keywordMap(topics []model.Topic) map[string]model.Topic {
	out := make(map[string]model.Topic, len(topics))
	for _, tp := range topics {
		out[tp.Keyword] = tp
	}
	return out
}

func TestExtractMapsBackToOriginalIndices(t *testing.T) {
	items := sampleItems()
	topics := New(DefaultOptions(), nil, nil).Extract(context.Background(), items)
	require.NotEmpty(t, topics)

	byKeyword := keywordMap(topics)
	require.Contains(t, byKeyword, "generative ai")
	assert.Equal(t, []int{0, 1}, byKeyword["generative ai"].SourceItems)
	require.Contains(t, byKeyword, "marketing")
	assert.Equal(t, []int{0, 3}, byKeyword["marketing"].SourceItems)
	assert.NotContains(t, byKeyword, "ai", "present in every document, pruned by max_df")

	for i, tp := range topics {
		assert.GreaterOrEqual(t, tp.Count, 1)
		assert.NotEmpty(t, tp.SourceItems)
		for _, idx := range tp.SourceItems {
			assert.True(t, idx >= 0 && idx < len(items))
			assert.NotEqual(t, 2, idx)
		}
		if i > 0 {
			assert.LessOrEqual(t, tp.Score, topics[i-1].Score)
		}
	}
}

func TestExtractTopN(t *testing.T) {
	opts := DefaultOptions()
	opts.TopN = 1
	topics := New(opts, nil, nil).Extract(context.Background(), sampleItems())
	assert.Len(t, topics, 1)
}

func TestExtractInsufficientDocuments(t *testing.T) {
	items := []model.Item{
		{Title: `<a href="https://a.io">https://a.io</a>`},
		{Title: "<span></span>", Description: "https://b.io/path"},
		{Title: "Only one real document here"},
	}
	assert.Empty(t, New(DefaultOptions(), nil, nil).Extract(context.Background(), items))
	assert.Empty(t, New(DefaultOptions(), nil, nil).Extract(context.Background(), nil))
}

func TestExtractFitFailureIsNotFatal(t *testing.T) {
	items := []model.Item{{Title: "the and"}, {Title: "of the"}, {Title: "them those"}}
	assert.Empty(t, New(DefaultOptions(), nil, nil).Extract(context.Background(), items))
}

type fakeRanker struct {
	phrases []RankedPhrase
	err     error
	calls   int
}

func (f *fakeRanker) RankPhrases(_ context.Context, _ []string, _ int) ([]RankedPhrase, error) {
	f.calls++
	return f.phrases, f.err
}

func TestPhraseMethodUsesRanker(t *testing.T) {
	ranker := &fakeRanker{phrases: []RankedPhrase{
		{Phrase: "Generative AI", Score: 0.9},
		{Phrase: "quantum", Score: 0.5},
		{Phrase: "budgets", Score: 0.4},
	}}
	opts := DefaultOptions()
	opts.Method = MethodPhrase

	topics := New(opts, ranker, nil).Extract(context.Background(), sampleItems())

	require.Len(t, topics, 2)
	assert.Equal(t, 1, ranker.calls)
	assert.Equal(t, "generative ai", topics[0].Keyword)
	assert.Equal(t, []int{0, 1}, topics[0].SourceItems)
	assert.Equal(t, 2, topics[0].Count)
	assert.Equal(t, "budgets", topics[1].Keyword)
	assert.Equal(t, []int{3}, topics[1].SourceItems)
}

func TestPhraseMethodFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = MethodPhrase

	failing := &fakeRanker{err: errors.New("model offline")}
	topics := New(opts, failing, nil).Extract(context.Background(), sampleItems())
	assert.Equal(t, 1, failing.calls)
	assert.Contains(t, keywordMap(topics), "generative ai")

	absent := New(opts, nil, nil).Extract(context.Background(), sampleItems())
	assert.Equal(t, topics, absent)
}

func TestRankerIgnoredForTFIDF(t *testing.T) {
	ranker := &fakeRanker{}
	New(DefaultOptions(), ranker, nil).Extract(context.Background(), sampleItems())
	assert.Zero(t, ranker.calls)
}
