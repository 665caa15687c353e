package rangecoder

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"

	"github.com/pkg/errors"
)

func pipe(t *testing.T, table *FreqTable, efunc func(io.WriteCloser), dfunc func(io.ReadCloser), size int64) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		ze, err := NewWriter(pw, table, size)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		efunc(ze)
		if err = ze.Close(); err != nil {
			pw.CloseWithError(err)
		}
	}()
	defer pr.Close()
	zd := NewReader(pr)
	defer zd.Close()
	dfunc(zd)
}

func byteTable(t *testing.T, payload []byte) *FreqTable {
	table, err := ByteTable(payload)
	if err != nil {
		t.Fatalf("NewFreqTable: %v", err)
	}
	return table
}

func TestEmpty(t *testing.T) {
	pipe(t, byteTable(t, nil),
		func(w io.WriteCloser) {},
		func(r io.ReadCloser) {
			b, err := ioutil.ReadAll(r)
			if err != nil {
				t.Fatalf("%v", err)
			}
			if len(b) != 0 {
				t.Fatalf("did not read an empty slice")
			}
		},
		0)
}

func TestBoth(t *testing.T) {
	payload := []byte("rangecoderrangecoderrangecoder")
	pipe(t, byteTable(t, payload),
		func(w io.WriteCloser) {
			n, err := w.Write(payload)
			if err != nil {
				t.Errorf("%v", err)
				return
			}
			if n != len(payload) {
				t.Errorf("wrote %d bytes, want %d bytes", n, len(payload))
			}
		},
		func(r io.ReadCloser) {
			b, err := ioutil.ReadAll(r)
			if err != nil {
				t.Fatalf("%v", err)
			}
			if string(b) != string(payload) {
				t.Fatalf("payload is %s, want %s", string(b), string(payload))
			}
		},
		int64(len(payload)))
}

var streamTests = []struct {
	descr string
	raw   []byte
}{
	{"empty", nil},
	{"single byte", []byte{'x'}},
	{"one symbol repeated", bytes.Repeat([]byte{0}, 5000)},
	{"text", []byte("Range coding represents a message as a sub-interval of [0,1) whose width encodes its probability.")},
	{"all bytes", func() []byte {
		b := make([]byte, 256*40)
		for i := range b {
			b[i] = byte(i*i + i/256)
		}
		return b
	}()},
}

func TestEncodeDecodeBytes(t *testing.T) {
	for _, tt := range streamTests {
		enc, err := EncodeBytes(tt.raw)
		if err != nil {
			t.Fatalf("%s: EncodeBytes: %v", tt.descr, err)
		}
		dec, err := DecodeBytes(enc)
		if err != nil {
			t.Fatalf("%s: DecodeBytes: %v", tt.descr, err)
		}
		if !bytes.Equal(dec, tt.raw) {
			t.Errorf("%s: got %d bytes, want %d bytes", tt.descr, len(dec), len(tt.raw))
		}

		r := NewReaderWindow(bytes.NewReader(enc), kMinWindowSize)
		b, err := ioutil.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("%s: NewReaderWindow: %v", tt.descr, err)
		}
		if !bytes.Equal(b, tt.raw) {
			t.Errorf("%s: reader got %d bytes, want %d bytes", tt.descr, len(b), len(tt.raw))
		}
	}
}

func TestHeader(t *testing.T) {
	table, err := NewFreqTable([]uint32{1, 0, 300, 7})
	if err != nil {
		t.Fatalf("NewFreqTable: %v", err)
	}
	var buf bytes.Buffer
	if err = WriteHeader(&buf, &Header{Table: table, Size: 1234567}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	want := []byte{'R', 'C', 'L', '1', 4, 0, 1, 0, 0, 0, 0x2c, 0x01, 7, 0, 0x87, 0xd6, 0x12, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("header % x, want % x", buf.Bytes(), want)
	}
	h, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Size != 1234567 || h.Table.Len() != 4 || h.Table.Freq(2) != 300 {
		t.Errorf("header %+v, freqs %v", h, h.Table.Freqs())
	}
}

func TestReadHeaderErrors(t *testing.T) {
	tests := []struct {
		descr string
		data  []byte
		cause error
		code  ErrorCode
	}{
		{"truncated magic", []byte("RC"), ErrUnexpectedEOF, BadData},
		{"bad magic", []byte("LZMA\x01\x00"), ErrBadMagic, UnknownFormat},
		{"no symbols", []byte("RCL1\x00\x00"), ErrBadHeader, BadArchive},
		{"truncated table", []byte("RCL1\x02\x00\x01\x00"), ErrUnexpectedEOF, BadData},
		{"zero table", []byte("RCL1\x01\x00\x00\x00\x05\x00\x00\x00\x00\x00\x00\x00"), ErrBadHeader, BadArchive},
		{"negative size", []byte("RCL1\x01\x00\x01\x00\xff\xff\xff\xff\xff\xff\xff\xff"), ErrBadHeader, BadArchive},
	}
	for _, tt := range tests {
		_, err := ReadHeader(bytes.NewReader(tt.data))
		if errors.Cause(err) != tt.cause || CodeOf(err) != tt.code {
			t.Errorf("%s: err = %v (code %v), want %v (code %v)", tt.descr, err, CodeOf(err), tt.cause, tt.code)
		}
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	raw := bytes.Repeat([]byte("abcabd"), 200)
	enc, err := EncodeBytes(raw)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	_, err = DecodeBytes(enc[:len(enc)-2])
	if errors.Cause(err) != ErrUnexpectedEOF || CodeOf(err) != BadData {
		t.Errorf("err = %v, want %v", err, ErrUnexpectedEOF)
	}

	r := NewReader(bytes.NewReader(enc[:len(enc)-2]))
	defer r.Close()
	if _, err = ioutil.ReadAll(r); CodeOf(err) != BadData {
		t.Errorf("reader err = %v, want bad data", err)
	}
}

func TestWriterSizeMismatch(t *testing.T) {
	table := byteTable(t, []byte("ab"))

	w, err := NewWriter(ioutil.Discard, table, 3)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err = w.Write([]byte("ab")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err = w.Close(); errors.Cause(err) != ErrSizeMismatch {
		t.Errorf("short Close: %v", err)
	}

	w, err = NewWriter(ioutil.Discard, table, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if n, err := w.Write([]byte("ab")); n != 1 || errors.Cause(err) != ErrSizeMismatch {
		t.Errorf("long Write = %d, %v", n, err)
	}

	w, err = NewWriter(ioutil.Discard, table, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err = w.Write([]byte("z")); errors.Cause(err) != ErrBadSymbol {
		t.Errorf("Write of unknown symbol: %v", err)
	}
}

func BenchmarkStreamDecoder(b *testing.B) {
	raw := bytes.Repeat([]byte("Range coding represents a message as a sub-interval. "), 2000)
	enc, err := EncodeBytes(raw)
	if err != nil {
		b.Fatalf("EncodeBytes: %v", err)
	}
	buf := new(bytes.Buffer)
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		r := NewReader(bytes.NewReader(enc))
		if _, err := io.Copy(buf, r); err != nil {
			b.Fatalf("%v", err)
		}
		r.Close()
	}
	if !bytes.Equal(buf.Bytes(), raw) {
		b.Fatalf("got %d bytes, want %d bytes", buf.Len(), len(raw))
	}
}
