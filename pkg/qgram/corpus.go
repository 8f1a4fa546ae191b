package qgram

import "sort"

// Corpus is the immutable result of rasterizing a key set: the sorted
// gram table, the original keys (for KeyFromID), and the succinct
// bipartite graph between them. Safe for unsynchronized concurrent
// reads.
type Corpus struct {
	keys  []string
	grams []string
	graph *Graph
}

// NumberOfKeys returns the number of keys in the corpus.
func (c *Corpus) NumberOfKeys() int { return len(c.keys) }

// NumberOfNgrams returns the number of distinct n-grams in the corpus.
func (c *Corpus) NumberOfNgrams() int { return len(c.grams) }

// KeyFromID returns the original key string for a KeyID.
func (c *Corpus) KeyFromID(id KeyID) (string, error) {
	if int(id) >= len(c.keys) {
		return "", ErrInvalidID
	}
	return c.keys[id], nil
}

// NgramFromID returns the n-gram string for a GramID.
func (c *Corpus) NgramFromID(id GramID) (string, error) {
	if int(id) >= len(c.grams) {
		return "", ErrInvalidID
	}
	return c.grams[id], nil
}

// NgramIDFromNgram looks up the GramID of an n-gram string, returning
// ErrGramAbsent if the corpus never observed it.
func (c *Corpus) NgramIDFromNgram(gram string) (GramID, error) {
	i := sort.SearchStrings(c.grams, gram)
	if i == len(c.grams) || c.grams[i] != gram {
		return 0, ErrGramAbsent
	}
	return GramID(i), nil
}

// NumberOfNgramsFromKeyID returns the number of distinct n-grams key id
// touches (its degree in the bipartite graph).
func (c *Corpus) NumberOfNgramsFromKeyID(id KeyID) (int, error) {
	if int(id) >= len(c.keys) {
		return 0, ErrInvalidID
	}
	return c.graph.SrcDegree(id), nil
}

// NumberOfKeysFromNgramID returns the number of keys referencing gram id.
func (c *Corpus) NumberOfKeysFromNgramID(id GramID) (int, error) {
	if int(id) >= len(c.grams) {
		return 0, ErrInvalidID
	}
	return c.graph.DstDegree(id), nil
}

// KeyIDsFromNgramID returns the keys referencing gram id, in increasing
// KeyID order.
func (c *Corpus) KeyIDsFromNgramID(id GramID) ([]KeyID, error) {
	if int(id) >= len(c.grams) {
		return nil, ErrInvalidID
	}
	return c.graph.SrcsFromDst(id), nil
}

// NgramIDsFromKey returns the distinct gram ids of key id, in increasing
// GramID order.
func (c *Corpus) NgramIDsFromKey(id KeyID) ([]GramID, error) {
	if int(id) >= len(c.keys) {
		return nil, ErrInvalidID
	}
	return c.graph.DstsFromSrc(id), nil
}

// NgramCooccurrencesFromKey returns, aligned with NgramIDsFromKey, each
// gram's occurrence count within key id (its edge weight).
func (c *Corpus) NgramCooccurrencesFromKey(id KeyID) ([]uint32, error) {
	if int(id) >= len(c.keys) {
		return nil, ErrInvalidID
	}
	return c.graph.WeightsFromSrc(id), nil
}

// NgramIDAndCooccurrence pairs a gram id with its occurrence count
// within a key, the element type of
// Corpus.NgramIDsAndCooccurrencesFromKey.
type NgramIDAndCooccurrence struct {
	NgramID      GramID
	Cooccurrence uint32
}

// NgramIDsAndCooccurrencesFromKey is the single-call combination of
// NgramIDsFromKey and NgramCooccurrencesFromKey, avoiding a double
// lookup and a manual zip at call sites.
func (c *Corpus) NgramIDsAndCooccurrencesFromKey(id KeyID) ([]NgramIDAndCooccurrence, error) {
	if int(id) >= len(c.keys) {
		return nil, ErrInvalidID
	}
	ids := c.graph.DstsFromSrc(id)
	weights := c.graph.WeightsFromSrc(id)
	out := make([]NgramIDAndCooccurrence, len(ids))
	for i := range ids {
		out[i] = NgramIDAndCooccurrence{NgramID: ids[i], Cooccurrence: weights[i]}
	}
	return out, nil
}

// NgramAndCooccurrence pairs a decoded n-gram string with its occurrence
// count within a key.
type NgramAndCooccurrence struct {
	Ngram        string
	Cooccurrence uint32
}

// NgramsAndCooccurrencesFromKey is NgramIDsAndCooccurrencesFromKey with
// gram ids resolved back to their string form.
func (c *Corpus) NgramsAndCooccurrencesFromKey(id KeyID) ([]NgramAndCooccurrence, error) {
	pairs, err := c.NgramIDsAndCooccurrencesFromKey(id)
	if err != nil {
		return nil, err
	}
	out := make([]NgramAndCooccurrence, len(pairs))
	for i, p := range pairs {
		out[i] = NgramAndCooccurrence{Ngram: c.grams[p.NgramID], Cooccurrence: p.Cooccurrence}
	}
	return out, nil
}

// NgramsFromKey returns the distinct n-gram strings of key id, in sorted
// order.
func (c *Corpus) NgramsFromKey(id KeyID) ([]string, error) {
	ids, err := c.NgramIDsFromKey(id)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ids))
	for i, g := range ids {
		out[i] = c.grams[g]
	}
	return out, nil
}

// totalNgramCount returns a key's total n-gram count with repetition
// (the sum of its edge weights), used by the search engine's overlap
// denominator.
func (c *Corpus) totalNgramCount(id KeyID) uint32 {
	var sum uint32
	for _, w := range c.graph.WeightsFromSrc(id) {
		sum += w
	}
	return sum
}
