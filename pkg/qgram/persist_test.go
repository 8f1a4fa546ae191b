package qgram

import (
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/stretchr/testify/require"
)

func TestPersistRoundTrip(t *testing.T) {
	fs, err := mem.NewFS()
	require.NoError(t, err)

	it, err := ngram.NewDefaultIterator(3, false)
	require.NoError(t, err)
	keys := []string{"banana", "bandana", "canada", "cabana"}

	original, err := Build(keys, it)
	require.NoError(t, err)
	require.NoError(t, original.Save(fs, "corpus.bin"))

	loaded, err := Load(fs, "corpus.bin")
	require.NoError(t, err)

	require.Equal(t, original.NumberOfKeys(), loaded.NumberOfKeys())
	require.Equal(t, original.NumberOfNgrams(), loaded.NumberOfNgrams())

	for k := 0; k < original.NumberOfKeys(); k++ {
		wantIDs, err := original.NgramIDsFromKey(KeyID(k))
		require.NoError(t, err)
		gotIDs, err := loaded.NgramIDsFromKey(KeyID(k))
		require.NoError(t, err)
		require.Equal(t, wantIDs, gotIDs)

		wantW, err := original.NgramCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		gotW, err := loaded.NgramCooccurrencesFromKey(KeyID(k))
		require.NoError(t, err)
		require.Equal(t, wantW, gotW)
	}
}
