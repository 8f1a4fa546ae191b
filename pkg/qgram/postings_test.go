package qgram

import (
	"testing"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyIDsFromAllNgramsConjunction(t *testing.T) {
	it, err := ngram.NewDefaultIterator(2, false)
	require.NoError(t, err)
	c, err := Build([]string{"banana", "bandana", "canada"}, it)
	require.NoError(t, err)

	// "bandana" contains every bigram of "banana", "canada" does not.
	hits := c.KeyIDsFromAllNgrams(it.Grams("banana"))
	assert.Equal(t, []KeyID{0, 1}, hits)

	// The full "bandana" gram set narrows to the one containing key.
	hits = c.KeyIDsFromAllNgrams(it.Grams("bandana"))
	assert.Equal(t, []KeyID{1}, hits)
}

func TestKeyIDsFromAllNgramsAbsentGramEmptiesResult(t *testing.T) {
	it, err := ngram.NewDefaultIterator(2, false)
	require.NoError(t, err)
	c, err := Build([]string{"banana"}, it)
	require.NoError(t, err)

	assert.Empty(t, c.KeyIDsFromAllNgrams([]string{"ba", "zz"}))
	assert.Empty(t, c.KeyIDsFromAllNgrams(nil))
}

func TestKeyIDsFromAllNgramsDeduplicatesGrams(t *testing.T) {
	it, err := ngram.NewDefaultIterator(1, false)
	require.NoError(t, err)
	c, err := Build([]string{"ab", "ba", "cd"}, it)
	require.NoError(t, err)

	hits := c.KeyIDsFromAllNgrams([]string{"a", "b", "a", "b"})
	assert.Equal(t, []KeyID{0, 1}, hits)
}

// TestKeyIDsFromAllNgramsMatchesNaiveScan cross-checks the bitmap
// intersection against a per-key containment scan.
func TestKeyIDsFromAllNgramsMatchesNaiveScan(t *testing.T) {
	it, err := ngram.NewDefaultIterator(3, false)
	require.NoError(t, err)
	keys := []string{"mississippi", "missive", "banana", "bandana", "miss"}
	c, err := Build(keys, it)
	require.NoError(t, err)

	query := []string{"mis", "iss"}

	var want []KeyID
	for k := range keys {
		grams, err := c.NgramsFromKey(KeyID(k))
		require.NoError(t, err)
		have := make(map[string]bool, len(grams))
		for _, g := range grams {
			have[g] = true
		}
		all := true
		for _, q := range query {
			if !have[q] {
				all = false
				break
			}
		}
		if all {
			want = append(want, KeyID(k))
		}
	}
	require.NotEmpty(t, want)

	assert.Equal(t, want, c.KeyIDsFromAllNgrams(query))
}
