package cli

import (
	"fmt"

	"github.com/smira/commander"
	"github.com/smira/flag"
)

func rangecoderVersion(cmd *commander.Command, args []string) error {
	fmt.Fprintf(context.out, "rangecoder version: %s\n", Version)
	return nil
}

func makeCmdVersion() *commander.Command {
	return &commander.Command{
		Run:       rangecoderVersion,
		UsageLine: "version",
		Short:     "display version",
		Long: `
Shows rangecoder version.

ex:
  $ rangecoder version
`,
		Flag: *flag.NewFlagSet("rangecoder-version", flag.ExitOnError),
	}
}
