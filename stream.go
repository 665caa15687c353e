/*
The rangecoder package implements a carryless range decoder, the entropy
coding stage after Dmitry Subbotin's design: no carry ever propagates into
bytes already emitted, at the price of clamping the range near byte
boundaries.

The Decoder is driven by a caller side symbol model through
CurrentCount/CurrentShiftCount and Decode. A matching Encoder, a static
FreqTable and a minimal stream framing are provided to produce and consume
reference streams.
*/
package rangecoder

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	streamMagic       = "RCL1"
	maxStreamSymbols  = 256
	maxStreamScale    = 1 << 15
	streamSizeLen     = 8
	streamMinHeadSize = len(streamMagic) + 2
)

// Stream format
// -------------
// Offset Size Description
//   0     4   Magic "RCL1"
//   4     2   Number of symbols N (little endian)
//   6    2N   Symbol frequencies (little endian)
//  6+2N   8   Uncompressed size (little endian)
// 14+2N       Range coded symbols

// Header describes a framed stream.
type Header struct {
	Table *FreqTable
	Size  int64
}

// WriteHeader writes the stream header for h.
func WriteHeader(w io.Writer, h *Header) error {
	n := h.Table.Len()
	if n > maxStreamSymbols {
		return errors.Wrapf(ErrBadHeader, "%d symbols", n)
	}
	if h.Size < 0 {
		return errors.Wrapf(ErrBadHeader, "size %d", h.Size)
	}
	buf := make([]byte, 0, streamMinHeadSize+2*n+streamSizeLen)
	buf = append(buf, streamMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(n))
	for _, f := range h.Table.Freqs() {
		if f > 0xFFFF {
			return errors.Wrapf(ErrBadHeader, "frequency %d", f)
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(f))
	}
	buf = binary.LittleEndian.AppendUint64(buf, uint64(h.Size))
	if _, err := w.Write(buf); err != nil {
		return writeError("write header", err)
	}
	return nil
}

// ReadHeader reads and validates a stream header.
func ReadHeader(r io.Reader) (*Header, error) {
	head := make([]byte, streamMinHeadSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, readError("read header", err)
	}
	if string(head[:len(streamMagic)]) != streamMagic {
		return nil, newError(UnknownFormat, "read header", ErrBadMagic)
	}
	n := int(binary.LittleEndian.Uint16(head[len(streamMagic):]))
	if n == 0 || n > maxStreamSymbols {
		return nil, newError(BadArchive, "read header", errors.Wrapf(ErrBadHeader, "%d symbols", n))
	}

	body := make([]byte, 2*n+streamSizeLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, readError("read header", err)
	}
	freqs := make([]uint32, n)
	for i := range freqs {
		freqs[i] = uint32(binary.LittleEndian.Uint16(body[2*i:]))
	}
	table, err := NewFreqTable(freqs)
	if err != nil {
		return nil, newError(BadArchive, "read header", errors.Wrap(ErrBadHeader, err.Error()))
	}
	size := int64(binary.LittleEndian.Uint64(body[2*n:]))
	if size < 0 {
		return nil, newError(BadArchive, "read header", errors.Wrap(ErrBadHeader, "can't read stream size"))
	}
	return &Header{Table: table, Size: size}, nil
}

type streamDecoder struct {
	src *Source
	rd  Decoder
	hdr *Header
}

// decode reads the header from r, then decodes hdr.Size symbols, passing
// each one to w through the decoder's raw output side.
func (z *streamDecoder) decode(r io.Reader, w io.Writer, windowSize int) error {
	hdr, err := ReadHeader(r)
	if err != nil {
		return err
	}
	z.hdr = hdr
	z.src = NewSource(r, w)
	if windowSize > 0 {
		if err = z.src.SetWindowSize(windowSize); err != nil {
			return err
		}
	}
	log.Debug().Int64("size", hdr.Size).Int("symbols", hdr.Table.Len()).Msg("decoding stream")

	// an empty stream carries no payload at all
	if hdr.Size == 0 {
		return nil
	}
	if err = z.rd.Init(z.src); err != nil {
		return err
	}
	for nowPos := int64(0); nowPos < hdr.Size; nowPos++ {
		sym, err := DecodeSymbol(&z.rd, hdr.Table)
		if err != nil {
			log.Debug().Int64("pos", nowPos).Err(err).Msg("stream decoding failed")
			return err
		}
		if err = z.rd.WriteByte(byte(sym)); err != nil {
			return err
		}
	}
	z.rd.Detach()
	return z.src.Flush()
}

// NewReader returns a reader decompressing the framed stream read from r.
func NewReader(r io.Reader) io.ReadCloser {
	return NewReaderWindow(r, 0)
}

// NewReaderWindow is NewReader with an explicit output window size.
func NewReaderWindow(r io.Reader, windowSize int) io.ReadCloser {
	var z streamDecoder
	pr, pw := io.Pipe()
	go func() {
		err := z.decode(r, pw, windowSize)
		pw.CloseWithError(err)
	}()
	return pr
}

type streamEncoder struct {
	w       io.Writer
	hdr     *Header
	re      *Encoder
	written int64
	err     error
}

// NewWriter returns a writer that frames and compresses exactly size bytes
// against table. Close fails if a different number of bytes was written.
func NewWriter(w io.Writer, table *FreqTable, size int64) (io.WriteCloser, error) {
	if table.Len() > maxStreamSymbols {
		return nil, errors.Wrapf(ErrBadHeader, "%d symbols", table.Len())
	}
	z := &streamEncoder{w: w, hdr: &Header{Table: table, Size: size}}
	if err := WriteHeader(w, z.hdr); err != nil {
		return nil, err
	}
	z.re = NewEncoder(w)
	return z, nil
}

func (z *streamEncoder) Write(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	for i, b := range p {
		if z.written == z.hdr.Size {
			z.err = badData("write", ErrSizeMismatch)
			return i, z.err
		}
		if err := EncodeSymbol(z.re, z.hdr.Table, int(b)); err != nil {
			z.err = err
			return i, err
		}
		z.written++
	}
	return len(p), nil
}

func (z *streamEncoder) Close() error {
	if z.err != nil {
		return z.err
	}
	if z.written != z.hdr.Size {
		z.err = badData("close", ErrSizeMismatch)
		return z.err
	}
	z.err = io.ErrClosedPipe
	if z.hdr.Size == 0 {
		return nil
	}
	return z.re.Flush()
}

// ByteTable builds the order-0 table for data that fits a stream header.
func ByteTable(data []byte) (*FreqTable, error) {
	return NewFreqTable(NormalizeFreqs(CountFreqs(data), maxStreamScale))
}

// EncodeBytes frames and compresses data against an order-0 table built
// from data itself.
func EncodeBytes(data []byte) ([]byte, error) {
	table, err := ByteTable(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, table, int64(len(data)))
	if err != nil {
		return nil, err
	}
	if _, err = zw.Write(data); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBytes decompresses a framed stream held in memory.
func DecodeBytes(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var z streamDecoder
	if err := z.decode(bytes.NewReader(data), &out, 0); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
