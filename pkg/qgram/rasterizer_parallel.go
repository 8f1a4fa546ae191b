package qgram

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/kittclouds/gokitt/pkg/ngram"
	"github.com/kittclouds/gokitt/pkg/succinct"
)

// BuildParallel rasterizes keys the same way Build does, but parallelizes
// the embarrassingly-parallel per-key gram extraction and the
// CSR-by-key edge-array population across goroutines; gram-degree
// accumulation and the gram-indexed inverted index remain strictly
// sequential, since both require a running per-gram write cursor that
// must observe every key in increasing order to preserve the graph's
// monotone-neighbor-list invariant.
func BuildParallel(ctx context.Context, keys []string, it ngram.Iterator) (*Corpus, error) {
	if len(keys) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(keys) > math.MaxUint32 {
		return nil, ErrBuilderOverflow
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(keys) {
		workers = len(keys)
	}
	if workers < 1 {
		workers = 1
	}

	perKey := make([][]gramCount, len(keys))
	shardGrams := make([]map[string]struct{}, workers)

	var wg sync.WaitGroup
	shardSize := (len(keys) + workers - 1) / workers
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		start := w * shardSize
		end := start + shardSize
		if end > len(keys) {
			end = len(keys)
		}
		if start >= end {
			shardGrams[w] = map[string]struct{}{}
			continue
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[w] = err
				return
			}

			local := make(map[string]struct{})
			for ki := start; ki < end; ki++ {
				counts := ngram.Counts(it, keys[ki])
				pairs := make([]gramCount, 0, len(counts))
				for g, c := range counts {
					pairs = append(pairs, gramCount{gram: g, count: c})
					local[g] = struct{}{}
				}
				sort.Slice(pairs, func(i, j int) bool { return pairs[i].gram < pairs[j].gram })
				perKey[ki] = pairs
			}
			shardGrams[w] = local
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Merge the per-shard gram sets into one globally sorted,
	// deduplicated table.
	gramSet := make(map[string]struct{})
	for _, shard := range shardGrams {
		for g := range shard {
			gramSet[g] = struct{}{}
		}
	}
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
	numGrams := len(grams)

	keyGramIDs := make([][]GramID, numKeys)
	keyWeights := make([][]uint32, numKeys)
	srcDegrees := make([]int, numKeys)

	// Parallel remap of each key's (gram string, count) pairs into
	// (GramID, count); independent per key, no shared mutable state.
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * shardSize
		end := start + shardSize
		if end > numKeys {
			end = numKeys
		}
		go func(start, end int) {
			defer wg.Done()
			for ki := start; ki < end; ki++ {
				pairs := perKey[ki]
				ids := make([]GramID, len(pairs))
				weights := make([]uint32, len(pairs))
				for i, p := range pairs {
					ids[i] = gramIndex[p.gram]
					weights[i] = uint32(p.count)
				}
				keyGramIDs[ki] = ids
				keyWeights[ki] = weights
				srcDegrees[ki] = len(ids)
			}
		}(start, end)
	}
	wg.Wait()

	srcsOffsetsB := succinct.NewEliasFanoBuilder(numKeys+1, cumulativeUpperBound(srcDegrees))
	cum := uint64(0)
	srcsOffsetsB.Push(0)
	for _, d := range srcDegrees {
		cum += uint64(d)
		srcsOffsetsB.Push(cum)
	}
	srcsOffsets := srcsOffsetsB.Build()
	numEdges := int(cum)

	gramWidth := succinct.WidthFor(maxIndex(numGrams))
	keyWidth := succinct.WidthFor(maxIndex(numKeys))

	// The key-side edge array is populated concurrently: each key owns
	// a disjoint, already-known offset range (from srcsOffsets). Writes
	// go through an AtomicBitFieldVec because ranges of different keys
	// can share a backing word; the WaitGroup-gated Freeze() is the
	// fence that publishes them.
	atomicSrcsToDsts := succinct.NewAtomicBitFieldVec(gramWidth, numEdges)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * shardSize
		end := start + shardSize
		if end > numKeys {
			end = numKeys
		}
		go func(start, end int) {
			defer wg.Done()
			for ki := start; ki < end; ki++ {
				base := int(srcsOffsets.Get(ki))
				for i, id := range keyGramIDs[ki] {
					atomicSrcsToDsts.Set(base+i, uint64(id))
				}
			}
		}(start, end)
	}
	wg.Wait()
	srcsToDsts := atomicSrcsToDsts.Freeze()

	// Sequential from here: gram-degree accumulation and the
	// gram-indexed inverted index both require a running per-gram
	// cursor observing keys in increasing order.
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

	dstsToSrcs := succinct.NewBitFieldVec(keyWidth, numEdges)
	dstCursor := make([]int, numGrams)
	for g := 0; g < numGrams; g++ {
		dstCursor[g] = int(dstsOffsets.Get(g))
	}

	srcWeightsB := succinct.NewWeightsBuilder()
	dstWeightRows := make([][]uint32, numGrams)

	for ki := 0; ki < numKeys; ki++ {
		ids := keyGramIDs[ki]
		weights := keyWeights[ki]
		for i, id := range ids {
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

	graph := &Graph{
		numKeys:     numKeys,
		numGrams:    numGrams,
		srcsToDsts:  srcsToDsts,
		dstsToSrcs:  dstsToSrcs,
		srcsOffsets: srcsOffsets,
		dstsOffsets: dstsOffsets,
		srcWeights:  srcWeightsB.Build(),
		dstWeights:  dstWeightsB.Build(),
	}

	return &Corpus{
		keys:  append([]string(nil), keys...),
		grams: grams,
		graph: graph,
	}, nil
}
