package qgram

import (
	aho_corasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/gokitt/pkg/ngram"
)

// Match describes the exact occurrences of one verifier pattern inside
// a key: the occurrence count and the start offset of each occurrence
// in the key's normalized text, overlapping matches included.
type Match struct {
	Pattern   string
	Count     int
	Positions []int
}

// Verifier compiles a set of literal patterns into an Aho-Corasick
// automaton for one-pass exact-substring verification of fuzzy search
// results. The n-gram overlap score says two strings share material;
// verification says where the query text literally occurs inside a hit,
// which the graph alone cannot answer. Patterns are normalized with the
// same text-cleanup pass the default gram pipeline applies, so
// verification and extraction agree on case and punctuation.
type Verifier struct {
	ac       aho_corasick.AhoCorasick
	patterns []string
}

// NewVerifier builds a verifier over the given patterns. Patterns that
// normalize to the empty string are kept in the pattern list (so result
// slices stay index-aligned with the input) but can never match.
// Uses StandardMatch to allow IterOverlapping (required by the AC library).
func NewVerifier(patterns []string) *Verifier {
	normalized := make([]string, len(patterns))
	for i, p := range patterns {
		normalized[i] = ngram.Normalize(p)
	}

	b := aho_corasick.NewAhoCorasickBuilder(aho_corasick.Opts{
		AsciiCaseInsensitive: false, // we lowercase already
		MatchOnlyWholeWords:  false, // keep substring semantics
		MatchKind:            aho_corasick.StandardMatch,
		DFA:                  false,
	})

	return &Verifier{ac: b.Build(normalized), patterns: normalized}
}

// NumPatterns returns the number of patterns the verifier was built with.
func (v *Verifier) NumPatterns() int { return len(v.patterns) }

// VerifyKey scans the normalized text of key id once and reports every
// pattern's exact occurrences. The returned slice is index-aligned with
// the verifier's patterns; entries are nil for patterns that do not
// occur. matchedCount is the number of distinct patterns that occurred
// at least once.
func (c *Corpus) VerifyKey(id KeyID, v *Verifier) (matches []*Match, matchedCount int, err error) {
	key, err := c.KeyFromID(id)
	if err != nil {
		return nil, 0, err
	}
	if v == nil || len(v.patterns) == 0 {
		return nil, 0, nil
	}

	text := ngram.Normalize(key)
	matches = make([]*Match, len(v.patterns))
	if text == "" {
		return matches, 0, nil
	}

	// Overlapping iteration: "ana" occurs twice in "banana".
	iter := v.ac.IterOverlapping(text)
	for {
		m := iter.Next()
		if m == nil {
			break
		}

		patIdx := m.Pattern()
		if patIdx >= len(matches) || v.patterns[patIdx] == "" {
			continue
		}

		pm := matches[patIdx]
		if pm == nil {
			pm = &Match{Pattern: v.patterns[patIdx]}
			matches[patIdx] = pm
			matchedCount++
		}
		pm.Count++
		pm.Positions = append(pm.Positions, m.Start())
	}

	return matches, matchedCount, nil
}

// VerifyResults filters search results down to those whose key contains
// at least one of the verifier's patterns as an exact substring,
// preserving the input order.
func (c *Corpus) VerifyResults(results []SearchResult, v *Verifier) ([]SearchResult, error) {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		_, matched, err := c.VerifyKey(r.KeyID, v)
		if err != nil {
			return nil, err
		}
		if matched > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}
