package qgram

import "errors"

// Build-time and query-time error taxonomy. Build-time errors are fatal
// and returned directly; ErrGramAbsent is query-time and non-fatal —
// callers filter it out rather than aborting the search.
var (
	// ErrEmptyCorpus is returned when Build/BuildParallel is given no keys.
	ErrEmptyCorpus = errors.New("qgram: corpus must contain at least one key")

	// ErrArityOutOfRange names an n-gram width outside
	// [ngram.MinArity, ngram.MaxArity]. No function in this package
	// returns it: Build and BuildParallel do not check arity, which is
	// validated only by ngram.NewDefaultIterator (reporting
	// *ngram.ErrArityOutOfRange).
	ErrArityOutOfRange = errors.New("qgram: arity out of range [1,8]")

	// ErrGramAbsent marks a query gram with no entry in the corpus's
	// gram table. Non-fatal: the search engine filters these out of the
	// query's candidate-generating gram set rather than failing.
	ErrGramAbsent = errors.New("qgram: gram absent from corpus")

	// ErrInvalidID is returned by accessors given a KeyID or GramID
	// outside the corpus's bounds.
	ErrInvalidID = errors.New("qgram: id out of bounds")

	// ErrBuilderOverflow is returned when a corpus would exceed the
	// addressable range of a uint32 id space.
	ErrBuilderOverflow = errors.New("qgram: corpus exceeds uint32 id space")
)
