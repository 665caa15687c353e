package main

import (
	"os"

	"github.com/itchio/rangecoder/internal/cli"
)

// Version variable, filled in at link time
var Version string

func main() {
	if Version == "" {
		Version = "unknown"
	}

	cli.Version = Version

	os.Exit(cli.Run(cli.RootCommand(), os.Args[1:]))
}
