package qgram

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unigram(t *testing.T) ngram.DefaultIterator {
	t.Helper()
	it, err := ngram.NewDefaultIterator(1, false)
	require.NoError(t, err)
	return it
}

// TestBuildEmptyCorpusRejected: an empty key set is
// rejected rather than silently producing a degenerate graph.
func TestBuildEmptyCorpusRejected(t *testing.T) {
	_, err := Build(nil, unigram(t))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	// Keys that normalize to nothing leave the corpus gramless, which is
	// just as unusable.
	_, err = Build([]string{"!!!", "   "}, unigram(t))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = BuildParallel(context.Background(), []string{"!!!"}, unigram(t))
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

// TestBuildSingleKey: the smallest possible corpus.
func TestBuildSingleKey(t *testing.T) {
	c, err := Build([]string{"cat"}, unigram(t))
	require.NoError(t, err)

	assert.Equal(t, 1, c.NumberOfKeys())
	assert.Equal(t, 3, c.NumberOfNgrams())

	grams, err := c.NgramsFromKey(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "t"}, grams)
}

// TestBuildSharedGrams: two keys sharing all their grams.
func TestBuildSharedGrams(t *testing.T) {
	c, err := Build([]string{"cat", "cat"}, unigram(t))
	require.NoError(t, err)

	assert.Equal(t, 3, c.NumberOfNgrams())

	for _, id := range []GramID{0, 1, 2} {
		keys, err := c.KeyIDsFromNgramID(id)
		require.NoError(t, err)
		assert.ElementsMatch(t, []KeyID{0, 1}, keys)
	}
}

// TestBuildDisjointGrams: two keys sharing no grams.
func TestBuildDisjointGrams(t *testing.T) {
	c, err := Build([]string{"cat", "zzz"}, unigram(t))
	require.NoError(t, err)

	for gram := range map[string]struct{}{"c": {}, "a": {}, "t": {}} {
		id, err := c.NgramIDFromNgram(gram)
		require.NoError(t, err)
		keys, err := c.KeyIDsFromNgramID(id)
		require.NoError(t, err)
		assert.Equal(t, []KeyID{0}, keys)
	}
}

// TestBuildRepeatedGramWeight: a repeated gram within one
// key increments that edge's weight instead of producing duplicate edges.
func TestBuildRepeatedGramWeight(t *testing.T) {
	c, err := Build([]string{"aaa"}, unigram(t))
	require.NoError(t, err)

	assert.Equal(t, 1, c.NumberOfNgrams())
	weights, err := c.NgramCooccurrencesFromKey(0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3}, weights)
}

func TestBuildUnknownGramAbsent(t *testing.T) {
	c, err := Build([]string{"cat"}, unigram(t))
	require.NoError(t, err)
	_, err = c.NgramIDFromNgram("z")
	assert.ErrorIs(t, err, ErrGramAbsent)
}

func TestBuildAccessorsOutOfBounds(t *testing.T) {
	c, err := Build([]string{"cat"}, unigram(t))
	require.NoError(t, err)

	_, err = c.KeyFromID(5)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = c.NgramFromID(5)
	assert.ErrorIs(t, err, ErrInvalidID)
}

// TestInvariantMonotoneGramTable: the gram table is strictly sorted.
func TestInvariantMonotoneGramTable(t *testing.T) {
	c, err := Build([]string{"banana", "bandana", "canada"}, unigram(t))
	require.NoError(t, err)
	for i := 1; i < len(c.grams); i++ {
		assert.Less(t, c.grams[i-1], c.grams[i])
	}
}

// TestInvariantNeighborListsStrictlyIncreasing checks both
// directions.
func TestInvariantNeighborListsStrictlyIncreasing(t *testing.T) {
	it, err := ngram.NewDefaultIterator(2, false)
	require.NoError(t, err)
	c, err := Build([]string{"banana", "bandana", "canada", "cabana"}, it)
	require.NoError(t, err)

	for k := 0; k < c.NumberOfKeys(); k++ {
		ids, err := c.NgramIDsFromKey(KeyID(k))
		require.NoError(t, err)
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i])
		}
	}

	for g := 0; g < c.NumberOfNgrams(); g++ {
		keys, err := c.KeyIDsFromNgramID(GramID(g))
		require.NoError(t, err)
		for i := 1; i < len(keys); i++ {
			assert.Less(t, keys[i-1], keys[i])
		}
	}
}

// TestInvariantWeightSumEqualsKeyNgramCount: the sum of a key's edge
// weights equals its total n-gram count with repetition.
func TestInvariantWeightSumEqualsKeyNgramCount(t *testing.T) {
	it, err := ngram.NewDefaultIterator(3, false)
	require.NoError(t, err)
	keys := []string{"mississippi", "banana", "a", "xyzzy"}
	c, err := Build(keys, it)
	require.NoError(t, err)

	for k, key := range keys {
		weights, err := c.NgramCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		var sum uint32
		for _, w := range weights {
			sum += w
		}
		want := len(it.Grams(key))
		assert.Equal(t, uint32(want), sum, "key %q", key)
	}
}

// TestInvariantDualAdjacencyConsistency: every edge visible
// from the key side must be visible identically from the gram side.
func TestInvariantDualAdjacencyConsistency(t *testing.T) {
	it, err := ngram.NewDefaultIterator(2, false)
	require.NoError(t, err)
	c, err := Build([]string{"banana", "bandana", "canada"}, it)
	require.NoError(t, err)

	for k := 0; k < c.NumberOfKeys(); k++ {
		pairs, err := c.NgramIDsAndCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		for _, p := range pairs {
			gramKeys, err := c.KeyIDsFromNgramID(p.NgramID)
			require.NoError(t, err)
			gramWeights := c.graph.WeightsFromDst(p.NgramID)

			found := false
			for i, kid := range gramKeys {
				if kid == KeyID(k) {
					found = true
					assert.Equal(t, p.Cooccurrence, gramWeights[i])
				}
			}
			assert.True(t, found, "key %d not found in gram %d's adjacency", k, p.NgramID)
		}
	}
}

func TestBuildParallelMatchesSequential(t *testing.T) {
	it, err := ngram.NewDefaultIterator(3, false)
	require.NoError(t, err)
	keys := []string{"banana", "bandana", "canada", "cabana", "mississippi", "apple", "maple"}

	seq, err := Build(keys, it)
	require.NoError(t, err)
	par, err := BuildParallel(context.Background(), keys, it)
	require.NoError(t, err)

	assert.Equal(t, seq.NumberOfKeys(), par.NumberOfKeys())
	assert.Equal(t, seq.NumberOfNgrams(), par.NumberOfNgrams())
	assert.Equal(t, seq.grams, par.grams)

	for k := 0; k < seq.NumberOfKeys(); k++ {
		wantIDs, err := seq.NgramIDsFromKey(KeyID(k))
		require.NoError(t, err)
		gotIDs, err := par.NgramIDsFromKey(KeyID(k))
		require.NoError(t, err)
		assert.Equal(t, wantIDs, gotIDs)

		wantW, err := seq.NgramCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		gotW, err := par.NgramCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		assert.Equal(t, wantW, gotW)
	}
}
