package rangecoder

import (
	"io"

	"github.com/pkg/errors"
)

// outWindow buffers raw output bytes and hands them to w in window sized
// chunks.
type outWindow struct {
	w         io.Writer
	buf       []byte
	winSize   uint32
	pos       uint32
	streamPos uint32
	written   int64
}

func newOutWindow(w io.Writer, windowSize uint32) *outWindow {
	if windowSize < kMinWindowSize {
		windowSize = kMinWindowSize
	}
	return &outWindow{
		w:       w,
		buf:     make([]byte, windowSize),
		winSize: windowSize,
	}
}

func (outWin *outWindow) flush() error {
	size := outWin.pos - outWin.streamPos
	if size == 0 {
		return nil
	}
	n, err := outWin.w.Write(outWin.buf[outWin.streamPos : outWin.streamPos+size])
	outWin.written += int64(n)
	if err != nil {
		return errors.Wrap(err, "flush output window")
	}
	if uint32(n) != size {
		return errors.Wrapf(io.ErrShortWrite, "expected to write %d bytes, written %d bytes", size, n)
	}
	if outWin.pos >= outWin.winSize {
		outWin.pos = 0
	}
	outWin.streamPos = outWin.pos
	return nil
}

func (outWin *outWindow) putByte(b byte) error {
	outWin.buf[outWin.pos] = b
	outWin.pos++
	if outWin.pos >= outWin.winSize {
		return outWin.flush()
	}
	return nil
}
