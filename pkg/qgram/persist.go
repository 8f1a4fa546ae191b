package qgram

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/hack-pad/hackpadfs"
)

// Snapshot is the flattened, rebuildable form of a corpus: the keys,
// the sorted gram table, and each key's resolved (GramID, weight)
// edges, sufficient to rebuild the full bipartite graph without
// re-running gram extraction. It is the unit of persistence shared by
// the gob/hackpadfs pair below and the internal/store backends; this is
// a single opaque blob layout, not a streaming or
// incrementally-decompressible format.
type Snapshot struct {
	Keys       []string
	Grams      []string
	KeyGrams   [][]uint32
	KeyWeights [][]uint32
}

// Snapshot flattens the corpus into its persistable form.
func (c *Corpus) Snapshot() *Snapshot {
	snap := &Snapshot{
		Keys:       c.keys,
		Grams:      c.grams,
		KeyGrams:   make([][]uint32, c.NumberOfKeys()),
		KeyWeights: make([][]uint32, c.NumberOfKeys()),
	}

	for i := 0; i < c.NumberOfKeys(); i++ {
		ids := c.graph.DstsFromSrc(KeyID(i))
		raw := make([]uint32, len(ids))
		for j, id := range ids {
			raw[j] = uint32(id)
		}
		snap.KeyGrams[i] = raw
		snap.KeyWeights[i] = c.graph.WeightsFromSrc(KeyID(i))
	}
	return snap
}

// FromSnapshot rebuilds a corpus from its flattened form, re-running
// the sequential CSR construction over the stored edges.
func FromSnapshot(snap *Snapshot) (*Corpus, error) {
	if len(snap.Keys) == 0 {
		return nil, ErrEmptyCorpus
	}

	keyGramIDs := make([][]GramID, len(snap.KeyGrams))
	for i, raw := range snap.KeyGrams {
		ids := make([]GramID, len(raw))
		for j, v := range raw {
			ids[j] = GramID(v)
		}
		keyGramIDs[i] = ids
	}

	graph := buildGraphSequential(len(snap.Keys), len(snap.Grams), keyGramIDs, snap.KeyWeights)

	return &Corpus{
		keys:  snap.Keys,
		grams: snap.Grams,
		graph: graph,
	}, nil
}

// Save persists the corpus to fs at path as a single gob-encoded blob.
func (c *Corpus) Save(fs hackpadfs.FS, path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.Snapshot()); err != nil {
		return fmt.Errorf("qgram: encode corpus snapshot: %w", err)
	}
	if err := hackpadfs.WriteFullFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("qgram: write corpus snapshot: %w", err)
	}
	return nil
}

// Load reconstructs a Corpus previously written by Save.
func Load(fs hackpadfs.FS, path string) (*Corpus, error) {
	content, err := hackpadfs.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("qgram: read corpus snapshot: %w", err)
	}

	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(content)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("qgram: decode corpus snapshot: %w", err)
	}
	return FromSnapshot(&snap)
}
