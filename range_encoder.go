package rangecoder

import (
	"bufio"
	"io"
)

// Writer is the output side of an Encoder.
type Writer interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

// Encoder is the carryless range encoder matching Decoder. It exists to
// produce reference streams; it narrows exactly as Decoder does and writes
// each determined top byte of low.
type Encoder struct {
	w   Writer
	low uint32
	rng uint32
	pos int64
}

func makeWriter(w io.Writer) Writer {
	if ww, ok := w.(Writer); ok {
		return ww
	}
	return bufio.NewWriter(w)
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   makeWriter(w),
		low: 0,
		rng: kInitialRange,
	}
}

// Encode narrows the interval to sr.
func (e *Encoder) Encode(sr SubRange) error {
	if !validScale(sr.Scale) || !sr.valid() {
		return badData("encode", ErrBadSubRange)
	}
	e.rng /= sr.Scale
	return e.narrow(sr.LowCount, sr.HighCount)
}

// EncodeShift narrows the interval to [low, high) out of 1<<shift.
func (e *Encoder) EncodeShift(low, high uint32, shift uint) error {
	if shift > kMaxShift {
		return badData("encode shift", ErrBadScale)
	}
	if !(SubRange{low, high, 1 << shift}).valid() {
		return badData("encode shift", ErrBadSubRange)
	}
	e.rng >>= shift
	return e.narrow(low, high)
}

func (e *Encoder) narrow(low, high uint32) error {
	e.low += e.rng * low
	e.rng *= high - low
	for {
		rng, ok := needsRenorm(e.low, e.rng)
		if !ok {
			return nil
		}
		if err := e.shiftLow(); err != nil {
			return err
		}
		e.rng = rng << 8
	}
}

func (e *Encoder) shiftLow() error {
	if err := e.w.WriteByte(byte(e.low >> 24)); err != nil {
		return writeError("encode", err)
	}
	e.pos++
	e.low <<= 8
	return nil
}

// Flush writes the remaining bytes of low and flushes the writer. The
// encoder must not be used afterwards.
func (e *Encoder) Flush() error {
	for i := 0; i < kNumFlushBytes; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	if err := e.w.Flush(); err != nil {
		return writeError("flush", err)
	}
	return nil
}

// ProcessedSize returns the number of bytes emitted so far.
func (e *Encoder) ProcessedSize() int64 {
	return e.pos
}
