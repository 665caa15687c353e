package rangecoder

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ByteSource is what a decode session needs from the surrounding engine:
// the next compressed byte, and a sink for raw output bytes.
type ByteSource interface {
	io.ByteReader
	io.ByteWriter
}

// VolumeFunc opens volume number index. It returns ErrNoMoreVolumes once
// the last volume has been consumed.
type VolumeFunc func(index int) (io.ReadCloser, error)

// Source is a ByteSource reading compressed bytes from one or more volumes
// and buffering raw output through a window flushed to an io.Writer.
type Source struct {
	// OnVolumeChange is called once volume index was opened and before any
	// byte is read from it. A non-nil error aborts the session.
	OnVolumeChange func(index int) error

	open   VolumeFunc
	cur    io.ReadCloser
	r      io.ByteReader
	index  int
	offset int64
	done   bool
	outWin *outWindow
}

func makeReader(r io.Reader) io.ByteReader {
	if rr, ok := r.(io.ByteReader); ok {
		return rr
	}
	return bufio.NewReader(r)
}

// NewSource returns a single volume source reading from r and writing raw
// output to w. w may be nil if the session never writes.
func NewSource(r io.Reader, w io.Writer) *Source {
	s := &Source{r: makeReader(r)}
	s.open = func(index int) (io.ReadCloser, error) {
		return nil, ErrNoMoreVolumes
	}
	s.setWriter(w, kDefaultWindowSize)
	return s
}

// NewVolumeSource returns a source that reads volumes 0, 1, ... in turn,
// moving to the next one whenever the current one is exhausted.
func NewVolumeSource(open VolumeFunc, w io.Writer) *Source {
	s := &Source{open: open, index: -1}
	s.setWriter(w, kDefaultWindowSize)
	return s
}

// SetWindowSize replaces the output window. Buffered output is flushed
// first. Sizes below 4 KiB are raised to 4 KiB.
func (s *Source) SetWindowSize(size int) error {
	if size <= 0 || int64(size) > int64(kMaxWindowSize) {
		return newError(SmallBuf, "set window size", errors.Wrapf(ErrBadWindowSize, "%d bytes", size))
	}
	var w io.Writer
	if s.outWin != nil {
		if err := s.Flush(); err != nil {
			return err
		}
		w = s.outWin.w
	}
	s.setWriter(w, uint32(size))
	return nil
}

func (s *Source) setWriter(w io.Writer, size uint32) {
	if w == nil {
		s.outWin = nil
		return
	}
	s.outWin = newOutWindow(w, size)
}

// ReadByte returns the next compressed byte, switching volumes as needed.
// io.EOF is returned after the last volume.
func (s *Source) ReadByte() (byte, error) {
	for {
		if s.done {
			return 0, io.EOF
		}
		if s.r != nil {
			c, err := s.r.ReadByte()
			if err == nil {
				s.offset++
				return c, nil
			}
			if err != io.EOF {
				return 0, newError(ERead, "read volume", err)
			}
		}
		if err := s.nextVolume(); err != nil {
			return 0, err
		}
	}
}

func (s *Source) nextVolume() error {
	if s.cur != nil {
		if err := s.cur.Close(); err != nil {
			return newError(EClose, "close volume", err)
		}
		s.cur = nil
	}
	s.r = nil

	next := s.index + 1
	rc, err := s.open(next)
	if errors.Cause(err) == ErrNoMoreVolumes {
		s.done = true
		log.Debug().Int("volumes", next).Int64("offset", s.offset).Msg("source exhausted")
		return nil
	}
	if err != nil {
		return newError(EOpen, "open volume", err)
	}
	if next > 0 && s.OnVolumeChange != nil {
		if err = s.OnVolumeChange(next); err != nil {
			rc.Close()
			s.done = true
			return newError(EOpen, "change volume", err)
		}
	}
	log.Debug().Int("volume", next).Int64("offset", s.offset).Msg("switched volume")
	s.index = next
	s.cur = rc
	s.r = makeReader(rc)
	return nil
}

// WriteByte appends c to the output window.
func (s *Source) WriteByte(c byte) error {
	if s.outWin == nil {
		return newError(EWrite, "write byte", io.ErrClosedPipe)
	}
	if err := s.outWin.putByte(c); err != nil {
		return newError(EWrite, "write byte", err)
	}
	return nil
}

// Flush writes buffered output bytes.
func (s *Source) Flush() error {
	if s.outWin == nil {
		return nil
	}
	if err := s.outWin.flush(); err != nil {
		return newError(EWrite, "flush", err)
	}
	return nil
}

// Close flushes output and closes the open volume, if any.
func (s *Source) Close() error {
	err := s.Flush()
	if s.cur != nil {
		if cerr := s.cur.Close(); cerr != nil && err == nil {
			err = newError(EClose, "close volume", cerr)
		}
		s.cur = nil
	}
	s.r = nil
	s.done = true
	return err
}

// Volume returns the index of the volume being read, -1 before the first
// volume of a multi-volume source was opened.
func (s *Source) Volume() int {
	return s.index
}

// Offset returns the number of compressed bytes read so far.
func (s *Source) Offset() int64 {
	return s.offset
}

// Written returns the number of raw bytes flushed to the writer.
func (s *Source) Written() int64 {
	if s.outWin == nil {
		return 0
	}
	return s.outWin.written
}
