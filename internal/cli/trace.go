package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/itchio/rangecoder"
	"github.com/rs/zerolog/log"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

func rangecoderTrace(cmd *commander.Command, args []string) error {
	if len(args) < 1 {
		cmd.Usage()
		return commander.ErrCommandError
	}

	first, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer first.Close()

	br := bufio.NewReader(first)
	hdr, err := rangecoder.ReadHeader(br)
	if err != nil {
		return err
	}

	src := rangecoder.NewVolumeSource(func(index int) (io.ReadCloser, error) {
		if index == 0 {
			return io.NopCloser(br), nil
		}
		if index >= len(args) {
			return nil, rangecoder.ErrNoMoreVolumes
		}
		return os.Open(args[index])
	}, nil)
	src.OnVolumeChange = func(index int) error {
		log.Info().Int("volume", index).Str("file", args[index]).Msg("next volume")
		return nil
	}
	defer src.Close()

	count := hdr.Size
	if limit := context.flags.Lookup("max-symbols").Value.Get().(int); limit > 0 && int64(limit) < count {
		count = int64(limit)
	}
	fmt.Fprintf(context.out, "# %d symbols, scale %d, size %d\n", hdr.Table.Len(), hdr.Table.Scale(), hdr.Size)
	if count == 0 {
		return nil
	}

	d, err := rangecoder.NewDecoder(src)
	if err != nil {
		return err
	}
	low, code, rng := d.State()
	fmt.Fprintf(context.out, "%8s %3s %08x %08x %08x\n", "init", "-", low, code, rng)

	for pos := int64(0); pos < count; pos++ {
		sym, err := rangecoder.DecodeSymbol(d, hdr.Table)
		if err != nil {
			return err
		}
		low, code, rng = d.State()
		fmt.Fprintf(context.out, "%8d %3d %08x %08x %08x\n", pos, sym, low, code, rng)
	}

	log.Debug().Int64("symbols", count).Int64("consumed", src.Offset()).Int("volume", src.Volume()).Msg("trace finished")
	return nil
}

func makeCmdTrace() *commander.Command {
	cmd := &commander.Command{
		Run:       rangecoderTrace,
		UsageLine: "trace <input> [<volume> ...]",
		Short:     "print decoder state after every symbol",
		Long: `
Decodes <input> and prints low, code and range after priming and after
every decoded symbol. Compressed data continues into the following
volumes, in order, once <input> is exhausted.

ex:
  $ rangecoder trace -max-symbols=20 notes.rc
`,
		Flag: *flag.NewFlagSet("rangecoder-trace", flag.ExitOnError),
	}

	cmd.Flag.Int("max-symbols", 0, "stop after this many symbols (0 means all)")

	return cmd
}
