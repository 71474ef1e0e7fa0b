// Package cli holds the subcommands shared by the mvsfs tools.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
	"mvsfs/internal/errs"
	"mvsfs/internal/filesystem"
)

// Streams are where a command writes its results and its log. Nil fields
// fall back to os.Stdout and os.Stderr.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s Streams) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s Streams) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}

// NewLogger returns a text logger on out at info level, or debug if verbose.
func NewLogger(out io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// options returns the filesystem options every command passes down.
func options(log logrus.FieldLogger) []filesystem.Option {
	return []filesystem.Option{filesystem.WithLogger(log)}
}

// checkArgs rejects positional arguments and unset string flags.
func checkArgs(f *flag.FlagSet, required ...string) error {
	if f.NArg() > 0 {
		return fmt.Errorf("%w - %v", errs.ErrUnknownArguments, f.Args())
	}
	for _, name := range required {
		if fl := f.Lookup(name); fl == nil || fl.Value.String() == "" || fl.Value.String() == "0" {
			return fmt.Errorf("%w - --%s is required", errs.ErrMissingArguments, name)
		}
	}
	return nil
}

// fail logs err and returns the failure status used for every error.
func fail(log logrus.FieldLogger, msg string, err error) subcommands.ExitStatus {
	log.WithError(err).Error(msg)
	return subcommands.ExitFailure
}

// Run parses args for cmd and executes it as a standalone tool named name.
// Unlike subcommands.Execute, a flag parse error is a plain failure.
func Run(ctx context.Context, name string, cmd subcommands.Command, args []string, stderr io.Writer) subcommands.ExitStatus {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(stderr)
	f.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s %s\n", name, strings.TrimPrefix(cmd.Usage(), cmd.Name()+" "))
		f.PrintDefaults()
	}
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		return subcommands.ExitFailure
	}
	return cmd.Execute(ctx, f)
}
