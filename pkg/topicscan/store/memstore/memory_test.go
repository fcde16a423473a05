package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/topicscan/pkg/topicscan/model"
	"github.com/cognicore/topicscan/pkg/topicscan/store"
)

var _ store.SentStore = (*Store)(nil)

func TestSentHashesWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.MarkSent(ctx, []store.SentArticle{
		{URLHash: "old", SentDate: "2026-01-01"},
		{URLHash: "new", SentDate: "2026-03-09"},
	}))

	got, err := s.SentHashes(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"new": {}}, got)

	n, err := s.CountSentOn(ctx, "2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, s.Rows(), 2)
}

func TestDedupRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	d := store.NewDedup(s, nil)

	items := []model.Item{{URL: "https://x", Title: "X", Source: "reddit"}}
	_, err := d.MarkSent(ctx, items, []model.Cluster{{Label: "x", ItemIndices: []int{0}}})
	require.NoError(t, err)

	assert.Empty(t, d.FilterNew(ctx, items, 7))
	assert.Equal(t, "x", s.Rows()[0].ClusterLabel)
}
