package qgram

import (
	"context"
	"testing"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyKeyOverlappingOccurrences(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana band"}, it)
	require.NoError(t, err)

	// "ana" occurs at offsets 1 and 3 of "banana band" (overlapping).
	v := NewVerifier([]string{"ana"})
	matches, matchedCount, err := c.VerifyKey(0, v)
	require.NoError(t, err)
	require.Equal(t, 1, matchedCount)

	require.NotNil(t, matches[0])
	assert.Equal(t, 2, matches[0].Count)
	assert.Equal(t, []int{1, 3}, matches[0].Positions)
}

func TestVerifyKeyNoMatchIsNilEntry(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana"}, it)
	require.NoError(t, err)

	v := NewVerifier([]string{"ana", "xyz"})
	matches, matchedCount, err := c.VerifyKey(0, v)
	require.NoError(t, err)

	assert.Equal(t, 1, matchedCount)
	assert.NotNil(t, matches[0])
	assert.Nil(t, matches[1])
}

func TestVerifyKeyNormalizesPatterns(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"Banana Republic"}, it)
	require.NoError(t, err)

	v := NewVerifier([]string{"BANANA"})
	_, matchedCount, err := c.VerifyKey(0, v)
	require.NoError(t, err)
	assert.Equal(t, 1, matchedCount)
}

func TestVerifyKeyInvalidID(t *testing.T) {
	it := trigram(t)
	c, err := Build([]string{"banana"}, it)
	require.NoError(t, err)

	_, _, err = c.VerifyKey(9, NewVerifier([]string{"ana"}))
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestVerifyResultsFiltersFuzzyHits(t *testing.T) {
	it, err := ngram.NewDefaultIterator(2, false)
	require.NoError(t, err)
	c, err := Build([]string{"banana", "bandana", "cabana"}, it)
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "banana", it, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	verified, err := c.VerifyResults(results, NewVerifier([]string{"banana"}))
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, "banana", verified[0].Key)
}
