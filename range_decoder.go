package rangecoder

import (
	"github.com/rs/zerolog/log"
)

// Decoder is a carryless range decoder (Subbotin). A session is driven by
// the caller's symbol model:
//
//	count, err := d.CurrentCount(scale) // or CurrentShiftCount(shift)
//	// locate the symbol owning count in the cumulative frequency table
//	err = d.Decode(SubRange{lowCount, highCount, scale})
//
// The query divides the range and keeps the quotient, which Decode then
// narrows by. Exactly one query must precede each Decode.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	src  ByteSource
	low  uint32
	code uint32
	rng  uint32

	// scale of the pending query, zero when none is pending
	pending uint32
}

// NewDecoder returns a decoder primed from src.
func NewDecoder(src ByteSource) (*Decoder, error) {
	d := new(Decoder)
	if err := d.Init(src); err != nil {
		return nil, err
	}
	return d, nil
}

// Init binds src and primes the code register from its first four bytes.
// Any previous session state is discarded.
func (d *Decoder) Init(src ByteSource) error {
	d.src = src
	d.low = 0
	d.code = 0
	d.rng = kInitialRange
	d.pending = 0
	if src == nil {
		return newError(Unknown, "init", ErrNotInitialized)
	}
	for i := 0; i < kNumPrimingBytes; i++ {
		c, err := src.ReadByte()
		if err != nil {
			d.src = nil
			log.Debug().Int("read", i).Err(err).Msg("range decoder priming failed")
			err = readError("init", err)
			if CodeOf(err) == BadData {
				err = badData("init", ErrShortPriming)
			}
			return err
		}
		d.code = d.code<<8 | uint32(c)
	}
	return nil
}

// Detach ends the session and hands the source back to the caller. The
// decoder must be initialized again before further use.
func (d *Decoder) Detach() ByteSource {
	src := d.src
	d.src = nil
	d.pending = 0
	return src
}

// State returns the arithmetic state of the decoder.
func (d *Decoder) State() (low, code, rng uint32) {
	return d.low, d.code, d.rng
}

// Pending reports whether a query is waiting for its Decode.
func (d *Decoder) Pending() bool {
	return d.pending != 0
}

func (d *Decoder) beginQuery(op string) error {
	if d.src == nil {
		return newError(Unknown, op, ErrNotInitialized)
	}
	if d.pending != 0 {
		return badData(op, ErrQueryPending)
	}
	return nil
}

// CurrentCount divides the range by scale and returns the position of the
// coded value in [0, scale). The quotient stays in the range for Decode.
func (d *Decoder) CurrentCount(scale uint32) (uint32, error) {
	if err := d.beginQuery("current count"); err != nil {
		return 0, err
	}
	if !validScale(scale) {
		return 0, badData("current count", ErrBadScale)
	}
	d.rng /= scale
	return d.finishQuery("current count", scale)
}

// CurrentShiftCount is CurrentCount for a scale of 1<<shift.
func (d *Decoder) CurrentShiftCount(shift uint) (uint32, error) {
	if err := d.beginQuery("current shift count"); err != nil {
		return 0, err
	}
	if shift > kMaxShift {
		return 0, badData("current shift count", ErrBadScale)
	}
	d.rng >>= shift
	return d.finishQuery("current shift count", 1<<shift)
}

func (d *Decoder) finishQuery(op string, scale uint32) (uint32, error) {
	d.pending = scale
	if d.rng == 0 {
		return 0, badData(op, ErrBadScale)
	}
	count := (d.code - d.low) / d.rng
	if count >= scale {
		return 0, badData(op, ErrCountOverflow)
	}
	return count, nil
}

// Decode narrows the interval to sr, which must be expressed in the scale
// of the pending query, and renormalizes.
func (d *Decoder) Decode(sr SubRange) error {
	if d.src == nil {
		return newError(Unknown, "decode", ErrNotInitialized)
	}
	if d.pending == 0 {
		return badData("decode", ErrNoQuery)
	}
	if !sr.valid() || sr.Scale != d.pending {
		return badData("decode", ErrBadSubRange)
	}
	d.pending = 0
	d.low += d.rng * sr.LowCount
	d.rng *= sr.HighCount - sr.LowCount
	return d.normalize()
}

func (d *Decoder) normalize() error {
	for i := 0; ; i++ {
		rng, ok := needsRenorm(d.low, d.rng)
		if !ok {
			return nil
		}
		if i == kMaxRenormSteps {
			return badData("normalize", ErrRenormOverrun)
		}
		c, err := d.src.ReadByte()
		if err != nil {
			return readError("normalize", err)
		}
		d.code = d.code<<8 | uint32(c)
		d.rng = rng << 8
		d.low <<= 8
	}
}

// ReadByte reads one raw byte from the source, bypassing the arithmetic
// state.
func (d *Decoder) ReadByte() (byte, error) {
	if d.src == nil {
		return 0, newError(Unknown, "get char", ErrNotInitialized)
	}
	c, err := d.src.ReadByte()
	if err != nil {
		return 0, readError("get char", err)
	}
	return c, nil
}

// WriteByte writes one raw byte to the source's output side.
func (d *Decoder) WriteByte(c byte) error {
	if d.src == nil {
		return newError(Unknown, "put char", ErrNotInitialized)
	}
	if err := d.src.WriteByte(c); err != nil {
		return writeError("put char", err)
	}
	return nil
}
