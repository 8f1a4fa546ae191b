// Package ngram defines the pluggable gram-iterator contract the
// rasterizer and search engine consume, plus a default Unicode-aware
// normalization-and-padding pipeline over runes. Normalization itself is treated as
// a replaceable collaborator: callers may supply their own Iterator to
// change case-folding, padding, or tokenization without touching the
// graph-building or search code.
package ngram

import (
	"strings"
	"unicode"
)

// MinArity and MaxArity bound the fixed n-gram width a Corpus may be
// built with.
const (
	MinArity = 1
	MaxArity = 8
)

// Iterator produces the ordered n-gram stream for a key or query string.
// Implementations own normalization (case folding, padding, filtering);
// the rasterizer and search engine only ever see the resulting grams.
type Iterator interface {
	// Grams returns the key's n-grams in left-to-right order, with
	// repeats, exactly as they occur in the (normalized, padded) text.
	Grams(key string) []string
}

// DefaultIterator is the default normalization-and-padding pipeline:
// lowercase, curly-apostrophe folding, alphanumeric-or-apostrophe
// filtering, whitespace collapsing, then both-side padding and fixed-width sliding
// window extraction.
type DefaultIterator struct {
	Arity int
	// Stopwords, when true, drops keys consisting solely of a single
	// stopword token before gram extraction (keys are short identifiers,
	// not documents, so stopword filtering only ever discards
	// degenerate single-word noise rather than reshaping real entries).
	Stopwords bool
}

// NewDefaultIterator validates arity and returns a ready-to-use
// DefaultIterator.
func NewDefaultIterator(arity int, withStopwords bool) (DefaultIterator, error) {
	if arity < MinArity || arity > MaxArity {
		return DefaultIterator{}, &ErrArityOutOfRange{Arity: arity}
	}
	return DefaultIterator{Arity: arity, Stopwords: withStopwords}, nil
}

// ErrArityOutOfRange is returned when a requested n-gram width falls
// outside [MinArity, MaxArity].
type ErrArityOutOfRange struct{ Arity int }

func (e *ErrArityOutOfRange) Error() string {
	return "ngram: arity out of range [1,8]: " + itoa(e.Arity)
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Normalize applies the default text-cleanup pass: lowercasing, curly
// apostrophe folding, collapsing anything not alphanumeric-or-apostrophe
// to a single space, and trimming.
func Normalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	for _, ch := range s {
		c := unicode.ToLower(ch)
		switch {
		case c == '’':
			out.WriteRune('\'')
		case unicode.IsLetter(c) || unicode.IsDigit(c) || c == '\'':
			out.WriteRune(c)
		default:
			out.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(out.String()), " ")
}

// stopWords to filter at gram extraction when Stopwords is set.
var stopWords = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"to": true, "in": true, "on": true, "for": true, "at": true, "by": true,
	"is": true, "it": true, "as": true, "be": true, "was": true,
	"are": true, "been": true, "with": true, "from": true, "into": true,
	"that": true, "this": true, "has": true, "have": true, "had": true,
	"his": true, "her": true, "its": true, "their": true,
}

// isStopword reports whether the whole (already-normalized) key is a
// single stopword token.
func isStopword(normalized string) bool {
	if strings.Contains(normalized, " ") {
		return false
	}
	return stopWords[normalized]
}

// Grams implements Iterator: normalizes key, optionally discards
// single-stopword keys, pads both ends with (Arity-1) '$' sentinels
// (never produced by Normalize, so padding never collides with real
// content, mirroring the original's null-byte padding convention), and
// slides an Arity-wide window across the padded rune sequence.
func (it DefaultIterator) Grams(key string) []string {
	normalized := Normalize(key)
	if normalized == "" {
		return nil
	}
	if it.Stopwords && isStopword(normalized) {
		return nil
	}

	pad := strings.Repeat("$", it.Arity-1)
	padded := []rune(pad + normalized + pad)

	if len(padded) < it.Arity {
		return nil
	}

	grams := make([]string, 0, len(padded)-it.Arity+1)
	for i := 0; i+it.Arity <= len(padded); i++ {
		grams = append(grams, string(padded[i:i+it.Arity]))
	}
	return grams
}

// Counts reduces a key's gram stream to a gram -> occurrence-count map,
// the building block both the rasterizer (per-key weights) and the
// search engine (per-query overlap) use.
func Counts(it Iterator, key string) map[string]int {
	grams := it.Grams(key)
	counts := make(map[string]int, len(grams))
	for _, g := range grams {
		counts[g]++
	}
	return counts
}
