package qgram

import "github.com/kittclouds/gokitt/pkg/succinct"

// Graph is the succinct bipartite weighted graph between keys and
// n-grams: a dual CSR adjacency (key->gram and gram->key) backed by
// BitFieldVec neighbor arrays and Elias-Fano monotone offset sequences,
// plus a gamma/unary-coded weight bitstream per direction.
type Graph struct {
	numKeys  int
	numGrams int

	srcsToDsts  *succinct.BitFieldVec // edges, CSR-ordered by key
	dstsToSrcs  *succinct.BitFieldVec // edges, CSR-ordered by gram
	srcsOffsets *succinct.EliasFano   // len numKeys+1
	dstsOffsets *succinct.EliasFano   // len numGrams+1

	srcWeights *succinct.Weights // row i = weights of key i's edges, src order
	dstWeights *succinct.Weights // row i = weights of gram i's edges, dst order
}

// NumKeys returns the number of keys (left/src vertices).
func (g *Graph) NumKeys() int { return g.numKeys }

// NumGrams returns the number of distinct n-grams (right/dst vertices).
func (g *Graph) NumGrams() int { return g.numGrams }

// SrcDegree returns the number of distinct grams key k touches.
func (g *Graph) SrcDegree(k KeyID) int {
	return int(g.srcsOffsets.Get(int(k)+1) - g.srcsOffsets.Get(int(k)))
}

// DstDegree returns the number of distinct keys referencing gram id.
func (g *Graph) DstDegree(id GramID) int {
	return int(g.dstsOffsets.Get(int(id)+1) - g.dstsOffsets.Get(int(id)))
}

// DstsFromSrc returns the (strictly increasing) gram ids adjacent to key k.
func (g *Graph) DstsFromSrc(k KeyID) []GramID {
	start := g.srcsOffsets.Get(int(k))
	end := g.srcsOffsets.Get(int(k) + 1)
	out := make([]GramID, 0, end-start)
	it := g.srcsToDsts.IterFrom(int(start))
	for i := start; i < end; i++ {
		v, _ := it.Next()
		out = append(out, GramID(v))
	}
	return out
}

// SrcsFromDst returns the (strictly increasing) key ids adjacent to gram id.
func (g *Graph) SrcsFromDst(id GramID) []KeyID {
	start := g.dstsOffsets.Get(int(id))
	end := g.dstsOffsets.Get(int(id) + 1)
	out := make([]KeyID, 0, end-start)
	it := g.dstsToSrcs.IterFrom(int(start))
	for i := start; i < end; i++ {
		v, _ := it.Next()
		out = append(out, KeyID(v))
	}
	return out
}

// WeightsFromSrc returns the edge weights of key k, aligned 1:1 with
// DstsFromSrc(k).
func (g *Graph) WeightsFromSrc(k KeyID) []uint32 {
	return g.srcWeights.Row(int(k))
}

// WeightsFromDst returns the edge weights of gram id, aligned 1:1 with
// SrcsFromDst(id).
func (g *Graph) WeightsFromDst(id GramID) []uint32 {
	return g.dstWeights.Row(int(id))
}

// Degrees returns the full src-degree and dst-degree sequences, decoded
// with one sequential pass over each offset sequence.
func (g *Graph) Degrees() (srcDegrees, dstDegrees []int) {
	srcDegrees = decodeDegrees(g.srcsOffsets, g.numKeys)
	dstDegrees = decodeDegrees(g.dstsOffsets, g.numGrams)
	return
}

func decodeDegrees(offsets *succinct.EliasFano, n int) []int {
	out := make([]int, n)
	it := offsets.IterFrom(0)
	prev, _ := it.Next()
	for i := 0; i < n; i++ {
		cur, _ := it.Next()
		out[i] = int(cur - prev)
		prev = cur
	}
	return out
}

// SrcIDFromEdgeID returns the key owning the edge at the given position
// in the src-ordered edge array.
func (g *Graph) SrcIDFromEdgeID(edgeID int) KeyID {
	idx, _ := g.srcsOffsets.Pred(uint64(edgeID))
	return KeyID(idx)
}

// DstIDFromEdgeID returns the gram owning the edge at the given position
// in the dst-ordered edge array.
func (g *Graph) DstIDFromEdgeID(edgeID int) GramID {
	idx, _ := g.dstsOffsets.Pred(uint64(edgeID))
	return GramID(idx)
}
