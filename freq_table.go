package rangecoder

import (
	"math/bits"
	"sort"

	"github.com/pkg/errors"
)

// FreqTable is a static cumulative frequency table. It maps symbols to
// sub-ranges and coded counts back to symbols; it never adapts.
type FreqTable struct {
	freqs []uint32
	cum   []uint32
	shift int
}

// NewFreqTable builds a table from per-symbol frequencies. Zero frequencies
// are allowed, such symbols just cannot be coded. The total must be in
// (0, 1<<16].
func NewFreqTable(freqs []uint32) (*FreqTable, error) {
	if len(freqs) == 0 {
		return nil, errors.Wrap(ErrBadScale, "empty frequency table")
	}
	t := &FreqTable{
		freqs: append([]uint32(nil), freqs...),
		cum:   make([]uint32, len(freqs)+1),
		shift: -1,
	}
	var total uint64
	for i, f := range freqs {
		total += uint64(f)
		if total > uint64(kMaxScale) {
			return nil, errors.Wrapf(ErrBadScale, "total frequency exceeds %d", kMaxScale)
		}
		t.cum[i+1] = uint32(total)
	}
	if total == 0 {
		return nil, errors.Wrap(ErrBadScale, "total frequency is zero")
	}
	if total&(total-1) == 0 {
		t.shift = bits.TrailingZeros64(total)
	}
	return t, nil
}

// Len returns the number of symbols.
func (t *FreqTable) Len() int {
	return len(t.freqs)
}

// Freq returns the frequency of sym.
func (t *FreqTable) Freq(sym int) uint32 {
	return t.freqs[sym]
}

// Freqs returns a copy of the frequencies.
func (t *FreqTable) Freqs() []uint32 {
	return append([]uint32(nil), t.freqs...)
}

// Scale returns the total frequency.
func (t *FreqTable) Scale() uint32 {
	return t.cum[len(t.cum)-1]
}

// Shift returns log2 of the scale when the scale is a power of two.
func (t *FreqTable) Shift() (uint, bool) {
	if t.shift < 0 {
		return 0, false
	}
	return uint(t.shift), true
}

// SubRange returns the interval owned by sym.
func (t *FreqTable) SubRange(sym int) (SubRange, error) {
	if sym < 0 || sym >= len(t.freqs) || t.freqs[sym] == 0 {
		return SubRange{}, errors.Wrapf(ErrBadSymbol, "symbol %d", sym)
	}
	return SubRange{LowCount: t.cum[sym], HighCount: t.cum[sym+1], Scale: t.Scale()}, nil
}

// Locate returns the symbol whose interval contains count.
func (t *FreqTable) Locate(count uint32) (int, SubRange, error) {
	if count >= t.Scale() {
		return 0, SubRange{}, errors.Wrapf(ErrCountOverflow, "count %d", count)
	}
	// first cumulative bound above count, symbols with zero frequency are
	// skipped since their bounds repeat
	sym := sort.Search(len(t.freqs), func(i int) bool { return t.cum[i+1] > count })
	return sym, SubRange{LowCount: t.cum[sym], HighCount: t.cum[sym+1], Scale: t.Scale()}, nil
}

// DecodeSymbol runs one query, locate, decode cycle against t.
func DecodeSymbol(d *Decoder, t *FreqTable) (int, error) {
	var count uint32
	var err error
	if shift, ok := t.Shift(); ok {
		count, err = d.CurrentShiftCount(shift)
	} else {
		count, err = d.CurrentCount(t.Scale())
	}
	if err != nil {
		return 0, err
	}
	sym, sr, err := t.Locate(count)
	if err != nil {
		return 0, badData("decode symbol", err)
	}
	if err = d.Decode(sr); err != nil {
		return 0, err
	}
	return sym, nil
}

// EncodeSymbol encodes sym against t.
func EncodeSymbol(e *Encoder, t *FreqTable, sym int) error {
	sr, err := t.SubRange(sym)
	if err != nil {
		return badData("encode symbol", err)
	}
	if shift, ok := t.Shift(); ok {
		return e.EncodeShift(sr.LowCount, sr.HighCount, shift)
	}
	return e.Encode(sr)
}

// CountFreqs counts byte occurrences in data.
func CountFreqs(data []byte) []uint32 {
	freqs := make([]uint32, 256)
	for _, b := range data {
		freqs[b]++
	}
	return freqs
}

// NormalizeFreqs scales freqs down so their total does not exceed limit,
// keeping every non-zero frequency at least 1. limit must be at least
// len(freqs). All zero input yields a flat table.
func NormalizeFreqs(freqs []uint32, limit uint32) []uint32 {
	out := make([]uint32, len(freqs))
	var total uint64
	for _, f := range freqs {
		total += uint64(f)
	}
	if total == 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	if total <= uint64(limit) {
		copy(out, freqs)
		return out
	}

	var nonZero uint64
	for _, f := range freqs {
		if f != 0 {
			nonZero++
		}
	}
	// every non-zero symbol keeps a floor of 1, the rest is shared out
	// proportionally
	var spare uint64
	if uint64(limit) > nonZero {
		spare = uint64(limit) - nonZero
	}
	for i, f := range freqs {
		if f == 0 {
			continue
		}
		out[i] = 1 + uint32(uint64(f)*spare/total)
	}
	return out
}
