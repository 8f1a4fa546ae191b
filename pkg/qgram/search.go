package qgram

import (
	"context"

	"github.com/kittclouds/gokitt/pkg/ngram"
)

// Search runs a top-k fuzzy query against the corpus using a
// weighted-Jaccard-style overlap similarity:
//
//	score = Σ min(q[g], w(k,g)) / (N_q + N_k − Σ min(q[g], w(k,g)))
//
// where q[g] is the query's occurrence count for gram g, w(k,g) is
// candidate key k's edge weight to g, and N_q/N_k are the query's and
// candidate's total n-gram counts with repetition. Candidates come from
// the gram->key inverted index (Graph.SrcsFromDst); grams absent from
// the corpus are silently dropped from the query's candidate-generating
// set rather than failing the search. At tau >= 1 candidates are
// instead enumerated by posting-list intersection
// (KeyIDsFromAllNgrams), since only keys containing every query gram
// can reach a full score. Results below tau are discarded;
// the remainder are kept by a size-k bounded min-heap with ascending
// KeyID tiebreaking for deterministic ordering among equal scores.
func (c *Corpus) Search(ctx context.Context, query string, it ngram.Iterator, k int, tau float64) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	queryCounts := ngram.Counts(it, query)
	var numQueryGrams uint32
	for _, cnt := range queryCounts {
		numQueryGrams += uint32(cnt)
	}

	partial := make(map[KeyID]float64)

	if tau >= 1 {
		// A full score needs identical gram multisets, so only keys
		// containing every query gram can qualify: enumerate them by
		// posting-list intersection instead of scattering over every
		// partially-overlapping key.
		grams := make([]string, 0, len(queryCounts))
		for gram := range queryCounts {
			grams = append(grams, gram)
		}
		for _, kid := range c.KeyIDsFromAllNgrams(grams) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			pairs, err := c.NgramIDsAndCooccurrencesFromKey(kid)
			if err != nil {
				return nil, err
			}
			var overlap float64
			for _, p := range pairs {
				if qCount, ok := queryCounts[c.grams[p.NgramID]]; ok {
					overlap += float64(minUint32(uint32(qCount), p.Cooccurrence))
				}
			}
			partial[kid] = overlap
		}
	} else {
		for gram, qCount := range queryCounts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			gid, err := c.NgramIDFromNgram(gram)
			if err != nil {
				// ErrGramAbsent: non-fatal, this gram simply
				// contributes no candidates.
				continue
			}

			keyIDs := c.graph.SrcsFromDst(gid)
			weights := c.graph.WeightsFromDst(gid)
			for i, kid := range keyIDs {
				m := minUint32(uint32(qCount), weights[i])
				if m == 0 {
					continue
				}
				partial[kid] += float64(m)
			}
		}
	}

	results := NewResultsHeap(k)
	for kid, overlap := range partial {
		nk := c.totalNgramCount(kid)
		denom := float64(numQueryGrams) + float64(nk) - overlap
		var score float64
		if denom > 0 {
			score = overlap / denom
		}
		if score < tau {
			continue
		}
		key, err := c.KeyFromID(kid)
		if err != nil {
			return nil, err
		}
		results.Offer(SearchResult{KeyID: kid, Key: key, Score: score})
	}

	return results.Sorted(), nil
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
