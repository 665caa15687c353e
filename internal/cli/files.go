package cli

import (
	"io"
	"os"

	"github.com/itchio/rangecoder"
)

func fileError(code rangecoder.ErrorCode, op string, err error) error {
	return &rangecoder.Error{Code: code, Op: op, Err: err}
}

func openInput(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fileError(rangecoder.EOpen, "open", err)
	}
	return f, nil
}

func createOutput(name string) (*os.File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, fileError(rangecoder.ECreate, "create", err)
	}
	return f, nil
}

// closeOutput closes f, keeping the first error.
func closeOutput(f *os.File, err error) error {
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fileError(rangecoder.EClose, "close", cerr)
	}
	return err
}

// outputWriter tags write failures so they are not mistaken for decoding
// failures.
type outputWriter struct {
	w io.Writer
}

func (o outputWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if err != nil {
		err = fileError(rangecoder.EWrite, "write", err)
	}
	return n, err
}
