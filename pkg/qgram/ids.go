// Package qgram implements an approximate-string search engine over
// character n-grams: a rasterizer that compresses a key corpus into a
// succinct bipartite key<->gram graph, a top-k overlap search over its
// inverted index, exact-substring result verification, and snapshot
// persistence.
package qgram

// KeyID is a dense, zero-based identifier assigned to each input key in
// the order it was presented to Build/BuildParallel.
type KeyID uint32

// GramID is a dense, zero-based identifier assigned to each distinct
// n-gram in the corpus's sorted gram table.
type GramID uint32
