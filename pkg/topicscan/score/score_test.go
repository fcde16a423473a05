package score

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/pkg/topicscan/model"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	s := NewScorer(DefaultWeights(), 48, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func at(t time.Time) *time.Time { return &t }

func sources(names ...string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func TestZeroMatches(t *testing.T) {
	got := newTestScorer().Score(nil, 10, sources("reddit"))

	assert.Equal(t, 0.0, got.TrendScore)
	assert.Equal(t, 0.0, got.FrequencyScore)
	assert.Equal(t, 0.0, got.RecencyScore)
	assert.Equal(t, 0.0, got.SourceDiversityScore)
	assert.Equal(t, 0.0, got.EngagementScore)
	assert.Zero(t, got.MentionCount)
	assert.Empty(t, got.Sources)
	assert.NotNil(t, got.Sources)
	assert.Nil(t, got.LatestDate)
}

func TestScoreComponents(t *testing.T) {
	matching := []model.Item{
		{Source: "reddit", Published: at(fixedNow.Add(-48 * time.Hour)), Score: 50},
		{Source: "hackernews", Published: at(fixedNow.Add(-24 * time.Hour)), Score: 49},
		{Source: "reddit", Score: -5},
	}

	got := newTestScorer().Score(matching, 6, sources("reddit", "hackernews", "google_news", "google_trends"))

	freq := 0.5
	rec := math.Exp(-24.0 / 48.0)
	div := 0.5
	eng := math.Log1p(99) / 10
	assert.Equal(t, round4(freq), got.FrequencyScore)
	assert.Equal(t, round4(rec), got.RecencyScore)
	assert.Equal(t, round4(div), got.SourceDiversityScore)
	assert.Equal(t, round4(eng), got.EngagementScore)
	assert.Equal(t, round4(0.3*freq+0.3*rec+0.25*div+0.15*eng), got.TrendScore)
	assert.Equal(t, 3, got.MentionCount)
	assert.Equal(t, []string{"hackernews", "reddit"}, got.Sources)
	require.NotNil(t, got.LatestDate)
	assert.Equal(t, "2026-03-09T12:00:00Z", *got.LatestDate)
}

func TestNaiveAndZonedTimesCompareInUTC(t *testing.T) {
	prague := time.FixedZone("CET", 3600)
	matching := []model.Item{
		{Source: "a", Published: at(time.Date(2026, 3, 10, 12, 0, 0, 0, prague))},
	}

	got := newTestScorer().Score(matching, 1, sources("a"))
	assert.Equal(t, round4(math.Exp(-1.0/48.0)), got.RecencyScore)
}

func TestScoresAreBounded(t *testing.T) {
	matching := []model.Item{{Source: "a", Score: 1 << 30, Published: at(fixedNow.Add(time.Hour))}}

	got := newTestScorer().Score(matching, 0, nil)
	assert.Equal(t, 1.0, got.FrequencyScore)
	assert.Equal(t, 1.0, got.EngagementScore)
	assert.Equal(t, 1.0, got.SourceDiversityScore)
	assert.Equal(t, 1.0, got.RecencyScore, "future timestamps count as fresh")
}

func TestFrequencyMonotonic(t *testing.T) {
	s := newTestScorer()
	prev := -1.0
	for n := 0; n <= 12; n++ {
		matching := make([]model.Item, n)
		for i := range matching {
			matching[i] = model.Item{Source: "reddit"}
		}
		got := s.Score(matching, 10, sources("reddit"))
		assert.GreaterOrEqual(t, got.FrequencyScore, prev)
		prev = got.FrequencyScore
	}
}

func TestDeterministic(t *testing.T) {
	matching := []model.Item{{Source: "a", Score: 3, Published: at(fixedNow.Add(-5 * time.Hour))}}
	s := newTestScorer()
	assert.Equal(t, s.Score(matching, 4, sources("a", "b")), s.Score(matching, 4, sources("a", "b")))
}

func TestScoreBatchSortsAndSkipsBadIndices(t *testing.T) {
	items := []model.Item{
		{Source: "reddit", Published: at(fixedNow)},
		{Source: "hackernews", Published: at(fixedNow), Score: 100},
		{Source: "reddit"},
	}
	topics := []model.Topic{
		{Keyword: "low", SourceItems: []int{2}},
		{Keyword: "high", SourceItems: []int{0, 1, 99}},
		{Keyword: "none", SourceItems: []int{42}},
	}

	newTestScorer().ScoreBatch(topics, items, model.Sources(items))

	require.Len(t, topics, 3)
	assert.Equal(t, "high", topics[0].Keyword)
	assert.Equal(t, 2, topics[0].MentionCount)
	assert.Equal(t, "low", topics[1].Keyword)
	assert.Equal(t, "none", topics[2].Keyword)
	assert.Equal(t, 0.0, topics[2].TrendScore)
}

func TestCustomWeights(t *testing.T) {
	s := NewScorer(Weights{Frequency: 1}, 48, nil)
	s.now = func() time.Time { return fixedNow }

	got := s.Score([]model.Item{{Source: "a", Published: at(fixedNow)}}, 4, sources("a"))
	assert.Equal(t, 0.25, got.TrendScore)
}
