package qgram

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trigram(t *testing.T) ngram.DefaultIterator {
	t.Helper()
	it, err := ngram.NewDefaultIterator(3, false)
	require.NoError(t, err)
	return it
}

func TestSearchExactMatchScoresOne(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"mississippi", "banana", "cabana"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "mississippi", it, 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "mississippi", results[0].Key)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

// TestSearchSelfSimilarityAtFullThreshold: a key searched for verbatim
// survives tau = 1.0 with an exact score of 1.0, including through the
// case-folding normalizer.
func TestSearchSelfSimilarityAtFullThreshold(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana", "bandana", "canada"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "BaNaNa", it, 1, 1.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KeyID(0), results[0].KeyID)
	assert.Equal(t, 1.0, results[0].Score)
}

func TestSearchDescendingScoreOrder(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana", "bandana", "canada", "xyzzy"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "banana", it, 10, 0)
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

// TestSearchBoundedBelowCorpusSize: requesting more
// results than the corpus holds returns every (qualifying) key rather
// than padding or erroring.
func TestSearchBoundedBelowCorpusSize(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana", "bandana"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "banana", it, 10, 0)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
}

func TestSearchThresholdFiltersLowOverlap(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana", "zzzzzzzz"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "banana", it, 10, 0.99)
	require.NoError(t, err)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.99)
	}
}

// TestSearchSharedUnigramEqualScores: two keys built from the same
// unigram multiset both match a one-gram query with identical scores.
func TestSearchSharedUnigramEqualScores(t *testing.T) {
	it := unigram(t)
	c, err := Build([]string{"ab", "ba"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "b", it, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	assert.Equal(t, KeyID(0), results[0].KeyID)
	assert.Equal(t, KeyID(1), results[1].KeyID)
}

// TestSearchTiedCandidatesKeepSmallestKeyIDs: with more equal-score
// candidates than k, the k smallest KeyIDs must win, independent of the
// candidate map's iteration order.
func TestSearchTiedCandidatesKeepSmallestKeyIDs(t *testing.T) {
	it := unigram(t)
	c, err := Build([]string{"ab", "ba", "ab", "ba"}, it)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		results, err := c.Search(context.Background(), "b", it, 2, 0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, KeyID(0), results[0].KeyID)
		assert.Equal(t, KeyID(1), results[1].KeyID)
	}
}

// TestSearchPartialUnigramOverlap: a query sharing one gram with one key
// and none with the others returns exactly that key, regardless of the
// query's gram order.
func TestSearchPartialUnigramOverlap(t *testing.T) {
	it := unigram(t)
	c, err := Build([]string{"ab", "ba", "cd"}, it)
	require.NoError(t, err)

	for _, query := range []string{"ce", "ec"} {
		results, err := c.Search(context.Background(), query, it, 10, 0.3)
		require.NoError(t, err)
		require.Len(t, results, 1, "query %q", query)
		assert.Equal(t, "cd", results[0].Key)
	}
}

// TestSearchWideArityInsufficientOverlap: at arity 5 a one-letter query
// shares only a padding-prefix gram with "ab", scoring far below any
// meaningful threshold.
func TestSearchWideArityInsufficientOverlap(t *testing.T) {
	it, err := ngram.NewDefaultIterator(5, false)
	require.NoError(t, err)
	c, err := Build([]string{"ab"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "a", it, 10, 0.3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchUnknownGramsDoNotError(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "qqqqqqqq", it, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRespectsCanceledContext(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana", "bandana"}, it)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Search(ctx, "banana", it, 5, 0)
	assert.Error(t, err)
}
