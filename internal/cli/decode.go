package cli

import (
	"bufio"
	"io"

	"github.com/itchio/rangecoder"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func rangecoderDecode(cmd *commander.Command, args []string) error {
	if len(args) != 2 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := createOutput(args[1])
	if err != nil {
		return err
	}

	zr := rangecoder.NewReaderWindow(bufio.NewReader(in), context.config.BufferSize)
	defer zr.Close()

	n, err := io.Copy(outputWriter{out}, zr)
	if err = closeOutput(out, err); err != nil {
		return err
	}

	log.Info().Str("output", args[1]).Int64("size", n).Msg("decoded")
	return nil
}

func makeCmdDecode() *commander.Command {
	return &commander.Command{
		Run:       rangecoderDecode,
		UsageLine: "decode <input> <output>",
		Short:     "decompress a file",
		Long: `
Decompresses <input>, written by the encode command, into <output>.

ex:
  $ rangecoder decode notes.rc notes.txt
`,
		Flag: *flag.NewFlagSet("rangecoder-decode", flag.ExitOnError),
	}
}
