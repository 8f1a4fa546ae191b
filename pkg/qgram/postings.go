package qgram

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// gramPostings materializes gram id's inverted list as a compressed
// bitmap, the unit of the intersection-based candidate generation
// below. Bitmap AND gives the conjunctive candidate set far cheaper
// than merging the succinct adjacency ranges by hand.
func (g *Graph) gramPostings(id GramID) *roaring.Bitmap {
	bm := roaring.New()
	start := g.dstsOffsets.Get(int(id))
	end := g.dstsOffsets.Get(int(id) + 1)
	it := g.dstsToSrcs.IterFrom(int(start))
	for i := start; i < end; i++ {
		v, _ := it.Next()
		bm.Add(uint32(v))
	}
	return bm
}

// KeyIDsFromAllNgrams returns the keys containing every one of the
// given n-grams, in ascending KeyID order: posting lists are
// intersected smallest-first so the running result can only shrink,
// with early exit once it empties. Any gram absent from the table
// empties the result (absence is data, not an error), as does an empty
// gram list.
func (c *Corpus) KeyIDsFromAllNgrams(grams []string) []KeyID {
	if len(grams) == 0 {
		return nil
	}

	ids := make([]GramID, 0, len(grams))
	seen := make(map[GramID]struct{}, len(grams))
	for _, gram := range grams {
		id, err := c.NgramIDFromNgram(gram)
		if err != nil {
			return nil
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	// Smallest posting list first for early termination.
	sort.Slice(ids, func(i, j int) bool {
		return c.graph.DstDegree(ids[i]) < c.graph.DstDegree(ids[j])
	})

	result := c.graph.gramPostings(ids[0])
	for _, id := range ids[1:] {
		if result.IsEmpty() {
			break
		}
		result.And(c.graph.gramPostings(id))
	}

	out := make([]KeyID, 0, result.GetCardinality())
	iter := result.Iterator()
	for iter.HasNext() {
		out = append(out, KeyID(iter.Next()))
	}
	return out
}
