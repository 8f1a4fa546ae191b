package qgram

import (
	"container/heap"
	"sort"
)

// SearchResult is one top-k hit: the matched key and its weighted
// overlap score against the query.
type SearchResult struct {
	KeyID KeyID
	Key   string
	Score float64
}

// less orders SearchResults by evictability: lower score first, and
// among equal scores the larger KeyID first. The heap minimum is
// therefore always the worst-scoring, largest-KeyID item, so capacity
// eviction discards that one and the smallest KeyIDs survive ties,
// matching the ascending-KeyID order Sorted emits.
func less(a, b SearchResult) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.KeyID > b.KeyID
}

// ResultsHeap is a size-bounded min-heap of SearchResult, keeping the k
// highest-scoring candidates seen so far: once full, a new item is
// admitted only when it beats the current minimum.
type ResultsHeap struct {
	items []SearchResult
	cap   int
}

// NewResultsHeap creates a heap retaining at most capacity results.
func NewResultsHeap(capacity int) *ResultsHeap {
	return &ResultsHeap{items: make([]SearchResult, 0, capacity), cap: capacity}
}

func (h *ResultsHeap) Len() int           { return len(h.items) }
func (h *ResultsHeap) Less(i, j int) bool { return less(h.items[i], h.items[j]) }
func (h *ResultsHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *ResultsHeap) Push(x interface{}) { h.items = append(h.items, x.(SearchResult)) }
func (h *ResultsHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// Offer inserts r if the heap has not yet reached capacity, or if r
// outranks the current minimum; otherwise r is discarded.
func (h *ResultsHeap) Offer(r SearchResult) {
	if h.cap <= 0 {
		return
	}
	if h.Len() < h.cap {
		heap.Push(h, r)
		return
	}
	if less(h.items[0], r) {
		heap.Pop(h)
		heap.Push(h, r)
	}
}

// Sorted drains the heap into descending-score order (ties broken by
// ascending KeyID), the Go analogue of
// SearchResultsHeap::into_sorted_vec.
func (h *ResultsHeap) Sorted() []SearchResult {
	out := append([]SearchResult(nil), h.items...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].KeyID < out[j].KeyID
	})
	return out
}
