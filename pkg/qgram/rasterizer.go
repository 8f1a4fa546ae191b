package qgram

import (
	"math"
	"sort"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/kittclouds/gokitt/pkg/succinct"
)

type gramCount struct {
	gram  string
	count int
}

// Build rasterizes keys into a Corpus: it extracts every key's n-grams
// via it, assembles the deduplicated sorted gram table, and encodes the
// resulting bipartite key<->gram graph into succinct CSR form.
func Build(keys []string, it ngram.Iterator) (*Corpus, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(keys) > math.MaxUint32 {
		return nil, ErrBuilderOverflow
	}

	perKey := make([][]gramCount, len(keys))
	gramSet := make(map[string]struct{})

	for ki, key := range keys {
		counts := ngram.Counts(it, key)
		pairs := make([]gramCount, 0, len(counts))
		for g, c := range counts {
			pairs = append(pairs, gramCount{gram: g, count: c})
			gramSet[g] = struct{}{}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].gram < pairs[j].gram })
		perKey[ki] = pairs
	}

	// A corpus where no key yielded a single gram is as unusable as an
	// empty key set.
	if len(gramSet) == 0 {
		return nil, ErrEmptyCorpus
	}

	grams := make([]string, 0, len(gramSet))
	for g := range gramSet {
		grams = append(grams, g)
	}
	sort.Strings(grams)

	gramIndex := make(map[string]GramID, len(grams))
	for i, g := range grams {
		gramIndex[g] = GramID(i)
	}

	numKeys := len(keys)
	keyGramIDs := make([][]GramID, numKeys)
	keyWeights := make([][]uint32, numKeys)

	for ki, pairs := range perKey {
		ids := make([]GramID, len(pairs))
		weights := make([]uint32, len(pairs))
		for i, p := range pairs {
			ids[i] = gramIndex[p.gram]
			weights[i] = uint32(p.count)
		}
		keyGramIDs[ki] = ids
		keyWeights[ki] = weights
	}

	graph := buildGraphSequential(numKeys, len(grams), keyGramIDs, keyWeights)

	return &Corpus{
		keys:  append([]string(nil), keys...),
		grams: grams,
		graph: graph,
	}, nil
}

// buildGraphSequential performs the CSR-construction tail shared by
// Build, BuildParallel (after its parallel extraction/remap stages) and
// corpus persistence Load: given each key's already-resolved
// (GramID, weight) edges, it sequentially accumulates degrees and
// populates both directions' adjacency and weight streams.
func buildGraphSequential(numKeys, numGrams int, keyGramIDs [][]GramID, keyWeights [][]uint32) *Graph {
	srcDegrees := make([]int, numKeys)
	for ki, ids := range keyGramIDs {
		srcDegrees[ki] = len(ids)
	}

	srcsOffsetsB := succinct.NewEliasFanoBuilder(numKeys+1, cumulativeUpperBound(srcDegrees))
	cum := uint64(0)
	srcsOffsetsB.Push(0)
	for _, d := range srcDegrees {
		cum += uint64(d)
		srcsOffsetsB.Push(cum)
	}
	srcsOffsets := srcsOffsetsB.Build()
	numEdges := int(cum)

	dstDegrees := make([]int, numGrams)
	for _, ids := range keyGramIDs {
		for _, id := range ids {
			dstDegrees[int(id)]++
		}
	}
	dstsOffsetsB := succinct.NewEliasFanoBuilder(numGrams+1, cumulativeUpperBound(dstDegrees))
	cum = 0
	dstsOffsetsB.Push(0)
	for _, d := range dstDegrees {
		cum += uint64(d)
		dstsOffsetsB.Push(cum)
	}
	dstsOffsets := dstsOffsetsB.Build()

	gramWidth := succinct.WidthFor(maxIndex(numGrams))
	keyWidth := succinct.WidthFor(maxIndex(numKeys))

	srcsToDsts := succinct.NewBitFieldVec(gramWidth, numEdges)
	dstsToSrcs := succinct.NewBitFieldVec(keyWidth, numEdges)

	srcWeightsB := succinct.NewWeightsBuilder()
	dstWeightRows := make([][]uint32, numGrams)

	edgeCursor := 0
	dstCursor := make([]int, numGrams)
	for g := 0; g < numGrams; g++ {
		dstCursor[g] = int(dstsOffsets.Get(g))
	}

	for ki := 0; ki < numKeys; ki++ {
		ids := keyGramIDs[ki]
		weights := keyWeights[ki]
		for i, id := range ids {
			srcsToDsts.Set(edgeCursor, uint64(id))
			edgeCursor++

			cursor := dstCursor[id]
			dstsToSrcs.Set(cursor, uint64(ki))
			dstWeightRows[id] = append(dstWeightRows[id], weights[i])
			dstCursor[id] = cursor + 1
		}
		srcWeightsB.Push(weights)
	}

	dstWeightsB := succinct.NewWeightsBuilder()
	for g := 0; g < numGrams; g++ {
		dstWeightsB.Push(dstWeightRows[g])
	}

	return &Graph{
		numKeys:     numKeys,
		numGrams:    numGrams,
		srcsToDsts:  srcsToDsts,
		dstsToSrcs:  dstsToSrcs,
		srcsOffsets: srcsOffsets,
		dstsOffsets: dstsOffsets,
		srcWeights:  srcWeightsB.Build(),
		dstWeights:  dstWeightsB.Build(),
	}
}

// maxIndex returns the largest valid id for a table of n entries, or 0
// for an empty table (NewBitFieldVec/WidthFor treat 0 as width 1).
func maxIndex(n int) uint64 {
	if n <= 1 {
		return 0
	}
	return uint64(n - 1)
}

func cumulativeUpperBound(degrees []int) uint64 {
	var sum uint64
	for _, d := range degrees {
		sum += uint64(d)
	}
	return sum
}
