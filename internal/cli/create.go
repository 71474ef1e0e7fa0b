package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"mvsfs/internal/filesystem"
)

// CreateCmd implements subcommands.Command for the "create" command.
type CreateCmd struct {
	Streams

	image      string
	sizeKiB    uint64
	inodeCount uint64
	verbose    bool
}

// Name implements subcommands.Command.Name.
func (*CreateCmd) Name() string {
	return "create"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*CreateCmd) Synopsis() string {
	return "create an empty file system image"
}

// Usage implements subcommands.Command.Usage.
func (*CreateCmd) Usage() string {
	return `create --image <path> --size-kib <180..4096> --inodes <128..512> - create an empty image

The size must be a multiple of 4 KiB.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *CreateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.image, "image", "", "path of the image to create; an existing file is overwritten")
	f.Uint64Var(&c.sizeKiB, "size-kib", 0, "image size in KiB")
	f.Uint64Var(&c.inodeCount, "inodes", 0, "number of inodes")
	f.BoolVar(&c.verbose, "verbose", false, "log allocation details")
}

// Execute implements subcommands.Command.Execute.
func (c *CreateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	log := NewLogger(c.stderr(), c.verbose)

	if err := checkArgs(f, "image", "size-kib", "inodes"); err != nil {
		return fail(log, "invalid arguments", err)
	}

	g, err := filesystem.Create(c.image, c.sizeKiB, c.inodeCount, options(log)...)
	if err != nil {
		return fail(log, "create failed", err)
	}

	log.WithField("blocks", g.TotalBlocks).Debug("image written")
	fmt.Fprintf(c.stdout(), "File system created successfully: %s\n", c.image)
	return subcommands.ExitSuccess
}
