package cli

import (
	"bufio"
	"io"

	"github.com/itchio/rangecoder"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func rangecoderEncode(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return fileError(rangecoder.ERead, "read", err)
	}
	table, err := rangecoder.ByteTable(data)
	if err != nil {
		return err
	}

	f, err := createOutput(args[1])
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, context.config.BufferSize)

	zw, err := rangecoder.NewWriter(bw, table, int64(len(data)))
	if err == nil {
		_, err = zw.Write(data)
	}
	if err == nil {
		err = zw.Close()
	}
	if err == nil {
		if err = bw.Flush(); err != nil {
			err = fileError(rangecoder.EWrite, "write", err)
		}
	}
	if err = closeOutput(f, err); err != nil {
		return err
	}

	log.Info().Str("input", args[0]).Int("size", len(data)).Int("symbols", table.Len()).Msg("encoded")
	return nil
}

func makeCmdEncode() *commander.Command {
	return &commander.Command{
		Run:       rangecoderEncode,
		UsageLine: "encode <input> <output>",
		Short:     "compress a file",
		Long: `
Compresses <input> into <output> with an order-0 byte model built
from the input itself.

ex:
  $ rangecoder encode notes.txt notes.rc
`,
		Flag: *flag.NewFlagSet("rangecoder-encode", flag.ExitOnError),
	}
}
