package succinct

// WeightsBuilder accumulates, per key, a slice of edge weights and
// compresses them into a single bitstream: an Elias gamma length prefix,
// then a unary code per weight, with runs of zero-weights run-length
// compressed (a single unary(0) terminator followed by the gamma code of
// run_length-1 at the next non-zero weight or end of the row). The
// codec is tuned to this module's weight distribution (mostly small
// positive integers with occasional zero runs) and is not a
// general-purpose bitstream format.
type WeightsBuilder struct {
	w          *bitWriter
	offsets    []uint64
	numNodes   int
	numWeights int
}

// NewWeightsBuilder creates an empty builder.
func NewWeightsBuilder() *WeightsBuilder {
	return &WeightsBuilder{w: newBitWriter()}
}

// Push writes the weights of one key (row) to the stream and records its
// starting bit offset.
func (b *WeightsBuilder) Push(weights []uint32) {
	b.numNodes++
	b.numWeights += len(weights)
	b.offsets = append(b.offsets, b.w.bitLen())

	b.w.writeGamma(uint64(len(weights)))

	zerosRange := uint64(0)
	for _, weight := range weights {
		if weight == 0 {
			if zerosRange == 0 {
				b.w.writeUnary(0)
			}
			zerosRange++
			continue
		}
		if zerosRange > 0 {
			b.w.writeGamma(zerosRange - 1)
			zerosRange = 0
		}
		b.w.writeUnary(uint64(weight))
	}
	if zerosRange > 0 {
		b.w.writeGamma(zerosRange - 1)
	}
}

// Build finalizes the stream into a random-access Weights reader, with
// per-row offsets indexed by an Elias-Fano monotone sequence.
func (b *WeightsBuilder) Build() *Weights {
	data := b.w.bytes()
	totalBits := b.w.bitLen()

	efb := NewEliasFanoBuilder(len(b.offsets), totalBits)
	for _, off := range b.offsets {
		efb.Push(off)
	}

	return &Weights{
		data:       data,
		offsets:    efb.Build(),
		numNodes:   b.numNodes,
		numWeights: b.numWeights,
	}
}

// Weights is the decoded, randomly-accessible counterpart of
// WeightsBuilder: each row's weights can be fetched in isolation via its
// Elias-Fano-indexed bit offset, without decoding earlier rows.
type Weights struct {
	data       []byte
	offsets    *EliasFano
	numNodes   int
	numWeights int
}

// NumNodes returns the number of rows (keys) encoded.
func (w *Weights) NumNodes() int { return w.numNodes }

// NumWeights returns the total number of weights across all rows.
func (w *Weights) NumWeights() int { return w.numWeights }

// Row decodes and returns the weights of the row at index i.
func (w *Weights) Row(i int) []uint32 {
	offset := w.offsets.Get(i)
	r := newBitReader(w.data, offset)

	count := r.readGamma()
	out := make([]uint32, 0, count)

	var weightsToDecode, zerosRange uint64 = count, 0
	for weightsToDecode > 0 {
		if zerosRange > 0 {
			zerosRange--
			weightsToDecode--
			out = append(out, 0)
			continue
		}
		weight := r.readUnary()
		weightsToDecode--
		out = append(out, uint32(weight))
		if weight == 0 {
			zerosRange = r.readGamma()
		}
	}
	return out
}

// Outdegree returns the number of weights in row i without decoding the
// full row.
func (w *Weights) Outdegree(i int) int {
	offset := w.offsets.Get(i)
	r := newBitReader(w.data, offset)
	return int(r.readGamma())
}

// All decodes every row in order; intended for tests and small corpora.
func (w *Weights) All() [][]uint32 {
	out := make([][]uint32, w.numNodes)
	for i := range out {
		out[i] = w.Row(i)
	}
	return out
}
