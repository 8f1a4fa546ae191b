package succinct

import "math/bits"

// selectSampleRate is the number of set bits between successive entries
// of the select directory sampled over the Elias-Fano high-bits array.
const selectSampleRate = 64

// EliasFano is a monotone non-decreasing sequence of n values bounded
// above by an upper bound u, encoded as low bits (a BitFieldVec) plus a
// unary high-bits array with a sampled select directory, mirroring
// srcs_offsets / dsts_offsets in the bipartite graph's CSR layout.
type EliasFano struct {
	low        *BitFieldVec
	high       []uint64 // bit array of length n + (u>>lowWidth) + 1
	highLen    int
	lowWidth   uint
	n          int
	selectDir  []uint32 // selectDir[k] = bit position of the (k*selectSampleRate)-th one bit
	totalOnes  int
	upperBound uint64
}

// EliasFanoBuilder accumulates a monotone non-decreasing sequence of
// values and finalizes it into an EliasFano.
type EliasFanoBuilder struct {
	n        int
	u        uint64
	lowWidth uint
	low      *BitFieldVec
	high     []uint64
	highLen  int
	pushed   int
	last     uint64
}

// NewEliasFanoBuilder prepares a builder for n values bounded above by
// upperBound (every pushed value must be <= upperBound).
func NewEliasFanoBuilder(n int, upperBound uint64) *EliasFanoBuilder {
	lowWidth := uint(0)
	if n > 0 && upperBound > 0 {
		for (upperBound >> lowWidth) >= uint64(n) {
			lowWidth++
		}
	}
	highUniverse := int(upperBound>>lowWidth) + n + 1
	highWords := (highUniverse + 63) / 64

	return &EliasFanoBuilder{
		n:        n,
		u:        upperBound,
		lowWidth: lowWidth,
		low:      NewBitFieldVec(maxWidth(lowWidth), n),
		high:     make([]uint64, highWords),
		highLen:  highUniverse,
	}
}

func maxWidth(w uint) uint {
	if w == 0 {
		return 1
	}
	return w
}

// Push appends the next value of the sequence. Values must be pushed in
// non-decreasing order; Push panics otherwise.
func (b *EliasFanoBuilder) Push(v uint64) {
	if b.pushed > 0 && v < b.last {
		panic("succinct: EliasFanoBuilder.Push requires a non-decreasing sequence")
	}
	if v > b.u {
		panic("succinct: EliasFanoBuilder.Push value exceeds declared upper bound")
	}

	low := v & (uint64(1)<<b.lowWidth - 1)
	high := v >> b.lowWidth

	b.low.Set(b.pushed, low)
	pos := int(high) + b.pushed
	b.high[pos/64] |= 1 << uint(pos%64)

	b.pushed++
	b.last = v
}

// Build finalizes the sequence, constructing the select directory.
func (b *EliasFanoBuilder) Build() *EliasFano {
	ef := &EliasFano{
		low:        b.low,
		high:       b.high,
		highLen:    b.highLen,
		lowWidth:   b.lowWidth,
		n:          b.n,
		upperBound: b.u,
	}
	ef.buildSelectDirectory()
	return ef
}

func (ef *EliasFano) buildSelectDirectory() {
	var dir []uint32
	ones := 0
	for wordIdx, word := range ef.high {
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			bitPos := wordIdx*64 + tz
			if ones%selectSampleRate == 0 {
				dir = append(dir, uint32(bitPos))
			}
			ones++
			word &= word - 1
		}
	}
	ef.selectDir = dir
	ef.totalOnes = ones
}

// selectOne returns the bit position of the k-th (0-indexed) set bit in
// the high-bits array.
func (ef *EliasFano) selectOne(k int) int {
	sample := k / selectSampleRate
	startBit := 0
	if sample < len(ef.selectDir) {
		startBit = int(ef.selectDir[sample])
	}
	remaining := k - sample*selectSampleRate

	wordIdx := startBit / 64
	word := ef.high[wordIdx] >> uint(startBit%64) << uint(startBit%64)
	for {
		for word == 0 {
			wordIdx++
			if wordIdx >= len(ef.high) {
				return ef.highLen
			}
			word = ef.high[wordIdx]
		}
		cnt := bits.OnesCount64(word)
		if remaining < cnt {
			for i := 0; i < remaining; i++ {
				word &= word - 1
			}
			tz := bits.TrailingZeros64(word)
			return wordIdx*64 + tz
		}
		remaining -= cnt
		wordIdx++
		if wordIdx >= len(ef.high) {
			return ef.highLen
		}
		word = ef.high[wordIdx]
	}
}

// Len returns the number of elements in the sequence.
func (ef *EliasFano) Len() int { return ef.n }

// Get returns the value at index i.
func (ef *EliasFano) Get(i int) uint64 {
	if i < 0 || i >= ef.n {
		panic((&ErrOutOfRange{Index: i, Len: ef.n}).Error())
	}
	pos := ef.selectOne(i)
	high := uint64(pos - i)
	low := ef.low.Get(i)
	return high<<ef.lowWidth | low
}

// Pred returns the index of the largest value <= v, via binary search
// over the monotone sequence. ok is false if every element exceeds v.
func (ef *EliasFano) Pred(v uint64) (idx int, ok bool) {
	lo, hi := 0, ef.n-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if ef.Get(mid) <= v {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// EliasFanoReader is a lazy sequential reader over an EliasFano
// sequence, created by IterFrom. Sequential decoding advances a single
// cursor over the high-bits array instead of re-running select for
// every element.
type EliasFanoReader struct {
	ef  *EliasFano
	i   int
	pos int // bit position of element i's one bit in the high array
}

// IterFrom returns a sequential reader positioned at index i.
func (ef *EliasFano) IterFrom(i int) *EliasFanoReader {
	r := &EliasFanoReader{ef: ef, i: i}
	if i < ef.n {
		r.pos = ef.selectOne(i)
	}
	return r
}

// Next returns the next value, or false once the sequence is exhausted.
func (r *EliasFanoReader) Next() (uint64, bool) {
	ef := r.ef
	if r.i >= ef.n {
		return 0, false
	}
	high := uint64(r.pos - r.i)
	v := high<<ef.lowWidth | ef.low.Get(r.i)
	r.i++
	if r.i < ef.n {
		r.pos = ef.nextOne(r.pos)
	}
	return v, true
}

// nextOne returns the position of the first set bit strictly after pos.
func (ef *EliasFano) nextOne(pos int) int {
	wordIdx := (pos + 1) / 64
	if wordIdx >= len(ef.high) {
		return ef.highLen
	}
	word := ef.high[wordIdx] >> uint((pos+1)%64) << uint((pos+1)%64)
	for {
		if word != 0 {
			return wordIdx*64 + bits.TrailingZeros64(word)
		}
		wordIdx++
		if wordIdx >= len(ef.high) {
			return ef.highLen
		}
		word = ef.high[wordIdx]
	}
}

// Values returns the full decoded sequence; intended for small sequences
// and tests rather than hot-path use.
func (ef *EliasFano) Values() []uint64 {
	out := make([]uint64, ef.n)
	for i := range out {
		out[i] = ef.Get(i)
	}
	return out
}
