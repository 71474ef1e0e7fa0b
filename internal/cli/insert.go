package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"mvsfs/internal/filesystem"
)

// InsertCmd implements subcommands.Command for the "insert" command.
type InsertCmd struct {
	Streams

	input   string
	output  string
	file    string
	verbose bool
}

// Name implements subcommands.Command.Name.
func (*InsertCmd) Name() string {
	return "insert"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*InsertCmd) Synopsis() string {
	return "add a regular file to the root directory of an image"
}

// Usage implements subcommands.Command.Usage.
func (*InsertCmd) Usage() string {
	return `insert --input <image> --output <image> --file <path> - add a file to an image

The input image is left untouched. The output is written only if the file fits.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *InsertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", "", "image to read")
	f.StringVar(&c.output, "output", "", "image to write; must differ from --input")
	f.StringVar(&c.file, "file", "", "regular file to add, at most 48 KiB")
	f.BoolVar(&c.verbose, "verbose", false, "log allocation details")
}

// Execute implements subcommands.Command.Execute.
func (c *InsertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	log := NewLogger(c.stderr(), c.verbose)

	if err := checkArgs(f, "input", "output", "file"); err != nil {
		return fail(log, "invalid arguments", err)
	}

	result, err := filesystem.Insert(c.input, c.output, c.file, options(log)...)
	if err != nil {
		return fail(log, "insert failed", err)
	}

	fmt.Fprintf(c.stdout(), "File '%s' added successfully to inode %d\n", result.Name, result.Inode)
	return subcommands.ExitSuccess
}
