package rangecoder

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrorCode is the error taxonomy of the archive access API. Every failure
// of this package maps onto one of these codes, see CodeOf.
type ErrorCode int

// Error codes, numerically identical to the archive API.
const (
	Success         ErrorCode = 0
	EndArchive      ErrorCode = 10
	NoMemory        ErrorCode = 11
	BadData         ErrorCode = 12
	BadArchive      ErrorCode = 13
	UnknownFormat   ErrorCode = 14
	EOpen           ErrorCode = 15
	ECreate         ErrorCode = 16
	EClose          ErrorCode = 17
	ERead           ErrorCode = 18
	EWrite          ErrorCode = 19
	SmallBuf        ErrorCode = 20
	Unknown         ErrorCode = 21
	MissingPassword ErrorCode = 22
	EReference      ErrorCode = 23
	BadPassword     ErrorCode = 24
	ESeek           ErrorCode = 25
)

var codeNames = map[ErrorCode]string{
	Success:         "success",
	EndArchive:      "end of archive",
	NoMemory:        "not enough memory",
	BadData:         "bad data",
	BadArchive:      "bad archive",
	UnknownFormat:   "unknown format",
	EOpen:           "open error",
	ECreate:         "create error",
	EClose:          "close error",
	ERead:           "read error",
	EWrite:          "write error",
	SmallBuf:        "buffer too small",
	Unknown:         "unknown error",
	MissingPassword: "missing password",
	EReference:      "reference error",
	BadPassword:     "bad password",
	ESeek:           "seek error",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error code %d", int(c))
}

// Decoder and source failures.
var (
	ErrShortPriming   = errors.New("rangecoder: not enough bytes to prime the decoder")
	ErrUnexpectedEOF  = errors.New("rangecoder: unexpected end of compressed data")
	ErrBadSubRange    = errors.New("rangecoder: malformed sub-range")
	ErrBadScale       = errors.New("rangecoder: scale out of range")
	ErrCountOverflow  = errors.New("rangecoder: coded value outside of scale")
	ErrQueryPending   = errors.New("rangecoder: query already pending")
	ErrNoQuery        = errors.New("rangecoder: decode without query")
	ErrNotInitialized = errors.New("rangecoder: decoder is not bound to a source")
	ErrRenormOverrun  = errors.New("rangecoder: renormalization did not converge")
	ErrNoMoreVolumes  = errors.New("rangecoder: no more volumes")
	ErrBadMagic       = errors.New("rangecoder: bad stream magic")
	ErrBadHeader      = errors.New("rangecoder: bad stream header")
	ErrSizeMismatch   = errors.New("rangecoder: stream size mismatch")
	ErrBadSymbol      = errors.New("rangecoder: symbol outside of table")
	ErrBadWindowSize  = errors.New("rangecoder: output window size out of range")
)

var sentinelCodes = map[error]ErrorCode{
	ErrShortPriming:   BadData,
	ErrUnexpectedEOF:  BadData,
	ErrBadSubRange:    BadData,
	ErrBadScale:       BadData,
	ErrCountOverflow:  BadData,
	ErrQueryPending:   BadData,
	ErrNoQuery:        BadData,
	ErrNotInitialized: Unknown,
	ErrRenormOverrun:  BadData,
	ErrNoMoreVolumes:  EOpen,
	ErrBadMagic:       UnknownFormat,
	ErrBadHeader:      BadArchive,
	ErrSizeMismatch:   BadData,
	ErrBadSymbol:      BadData,
	ErrBadWindowSize:  SmallBuf,
}

// Error is a failure tagged with its archive API code and the operation
// that produced it.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: rangecoder error(%d): %v", e.Op, int(e.Code), e.Err)
}

// Cause returns the underlying error, for errors.Cause.
func (e *Error) Cause() error { return e.Err }

func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, op string, err error) error {
	return &Error{Code: code, Op: op, Err: err}
}

func badData(op string, err error) error {
	return newError(BadData, op, err)
}

// readError classifies a failed source read: running out of input is
// bad data, anything else is an I/O failure.
func readError(op string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return badData(op, ErrUnexpectedEOF)
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(ERead, op, err)
}

func writeError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(EWrite, op, err)
}

// CodeOf maps err onto the archive API error taxonomy. nil maps to Success
// and io.EOF to EndArchive; anything unrecognized is Unknown.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	cause := errors.Cause(err)
	if code, ok := sentinelCodes[cause]; ok {
		return code
	}
	if cause == io.EOF {
		return EndArchive
	}
	return Unknown
}
