// Package cli implements the rangecoder console commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/itchio/rangecoder"
	"github.com/itchio/rangecoder/internal/config"
	"github.com/itchio/rangecoder/internal/logging"
	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"
)

// Version is reported by the version command
var Version = "unknown"

// Common context shared by all commands
var context struct {
	flags  *flag.FlagSet
	config config.Config
	out    io.Writer
	log    io.Writer
}

// FatalError aborts a command with an exit code
type FatalError struct {
	ReturnCode int
	Message    string
}

// Fatal panics and aborts execution. The exit code is the archive error
// code of err, usage errors exit with 2.
func Fatal(err error) {
	returnCode := int(rangecoder.CodeOf(err))
	if err == commander.ErrFlagError || err == commander.ErrCommandError {
		returnCode = 2
	} else if returnCode == int(rangecoder.Success) {
		returnCode = 1
	}
	panic(&FatalError{ReturnCode: returnCode, Message: err.Error()})
}

// RootCommand creates root command in command tree
func RootCommand() *commander.Command {
	cmd := &commander.Command{
		UsageLine: "rangecoder",
		Short:     "carryless range coder",
		Long: `
rangecoder compresses files with an order-0 byte model and a carryless
range coder, decompresses them, and traces decoder state symbol by symbol.`,
		Flag: *flag.NewFlagSet("rangecoder", flag.ExitOnError),
		Subcommands: []*commander.Command{
			makeCmdEncode(),
			makeCmdDecode(),
			makeCmdTrace(),
			makeCmdVersion(),
		},
	}

	cmd.Flag.String("config", "", "location of configuration file (default locations are ~/.rangecoder.conf, /etc/rangecoder.conf)")
	cmd.Flag.String("log-level", "", "log level: trace, debug, info, warn, error")
	cmd.Flag.String("log-format", "", "log format: default or json")

	return cmd
}

// InitContext loads configuration and sets up logging
func InitContext(flags *flag.FlagSet) error {
	var err error

	context.flags = flags
	context.config, err = config.Find(flags.Lookup("config").Value.String())
	if err != nil {
		return errors.Wrap(err, "can't load config")
	}

	if level := flags.Lookup("log-level").Value.String(); level != "" {
		context.config.LogLevel = level
	}
	if format := flags.Lookup("log-format").Value.String(); format != "" {
		context.config.LogFormat = format
	}
	if err = context.config.Validate(); err != nil {
		return err
	}

	if context.out == nil {
		context.out = os.Stdout
	}
	if context.log == nil {
		context.log = os.Stderr
	}
	logging.Setup(context.config.LogFormat, context.config.LogLevel, context.log)
	return nil
}

// Run runs single command starting from root cmd with args
func Run(cmd *commander.Command, cmdArgs []string) (returnCode int) {
	defer func() {
		if r := recover(); r != nil {
			fatal, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			fmt.Fprintln(context.out, "ERROR:", fatal.Message)
			returnCode = fatal.ReturnCode
		}
	}()

	if context.out == nil {
		context.out = os.Stdout
	}

	flags, args, err := cmd.ParseFlags(cmdArgs)
	if err != nil {
		Fatal(err)
	}

	err = InitContext(flags)
	if err != nil {
		Fatal(err)
	}

	err = cmd.Dispatch(args)
	if err != nil {
		Fatal(err)
	}

	return
}
