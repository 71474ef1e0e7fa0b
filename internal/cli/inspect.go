package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/subcommands"
	"mvsfs/internal/filesystem"
	"mvsfs/internal/filesystem/directory/record"
	"mvsfs/internal/filesystem/disk"
)

// InspectCmd implements subcommands.Command for the "inspect" command.
type InspectCmd struct {
	Streams

	image   string
	verbose bool
}

// Name implements subcommands.Command.Name.
func (*InspectCmd) Name() string {
	return "inspect"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*InspectCmd) Synopsis() string {
	return "print the layout and root directory of an image and verify its checksums"
}

// Usage implements subcommands.Command.Usage.
func (*InspectCmd) Usage() string {
	return `inspect --image <path> - describe an image

Exits 1 if any checksum does not match.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (c *InspectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.image, "image", "", "image to inspect")
	f.BoolVar(&c.verbose, "verbose", false, "enable debug logging")
}

// Execute implements subcommands.Command.Execute.
func (c *InspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	log := NewLogger(c.stderr(), c.verbose)

	if err := checkArgs(f, "image"); err != nil {
		return fail(log, "invalid arguments", err)
	}

	image, err := disk.MapImage(c.image)
	if err != nil {
		return fail(log, "inspect failed", err)
	}
	defer image.Close()

	report, err := filesystem.Inspect(image, options(log)...)
	if err != nil {
		return fail(log, "inspect failed", err)
	}

	printReport(c.stdout(), report)

	if !report.Clean() {
		for _, p := range report.Problems {
			log.WithError(p).Warn("integrity problem")
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printReport(w io.Writer, r *filesystem.Report) {
	sb := r.Superblock
	fmt.Fprintf(w, "blocks:       %d (%d KiB)\n", sb.TotalBlocks, sb.TotalBlocks*4)
	fmt.Fprintf(w, "inodes:       %d used of %d, table at %d+%d\n", r.UsedInodes, sb.InodeCount, sb.InodeTableStart, sb.InodeTableBlocks)
	fmt.Fprintf(w, "data blocks:  %d used of %d, region at %d\n", r.UsedBlocks, sb.DataRegionBlocks, sb.DataRegionStart)
	fmt.Fprintf(w, "created:      %d\n", sb.MtimeEpoch)
	fmt.Fprintf(w, "checksum:     %#08x\n\n", sb.Checksum)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tINODE\tTYPE\tMODE\tSIZE\tNAME")
	for _, e := range r.Entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d\t%s\n", e.Slot, e.Inode, record.TypeString(e.Type), e.Mode, e.Size, e.Name)
	}
	tw.Flush()

	if r.Clean() {
		fmt.Fprintln(w, "\nno problems found")
		return
	}
	fmt.Fprintf(w, "\n%d problem(s):\n", len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  %v\n", p)
	}
}
