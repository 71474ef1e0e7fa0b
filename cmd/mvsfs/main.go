// Binary mvsfs runs the image tools as subcommands.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"mvsfs/internal/cli"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&cli.CreateCmd{}, "")
	subcommands.Register(&cli.InsertCmd{}, "")
	subcommands.Register(&cli.InspectCmd{}, "")
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
