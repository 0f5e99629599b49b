// Package cli implements the btreeidx command line: one-shot commands that
// operate on an index file path, plus an interactive session over one file.
package cli

import (
	csvio "BTreeIdx/csv_io"
	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// Exit codes returned by Run.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

const DebugEnv = "BTREEIDX_DEBUG"

var (
	errUsage = errors.New("usage")

	// insert words a missing index differently from the other commands
	errNoSuchFile = errors.New("file does not exist")
)

type command struct {
	name  string
	args  string
	nargs int
	help  string
	run   func(c *Cli, args []string) error
}

var commands = []command{
	{"create", "<index>", 1, "create a new empty index file", (*Cli).create},
	{"insert", "<index> <key> <value>", 3, "insert a key/value pair", (*Cli).insert},
	{"search", "<index> <key>", 2, "print the pair stored under key", (*Cli).search},
	{"print", "<index>", 1, "print every pair in key order", (*Cli).print},
	{"extract", "<index> <csv>", 2, "write every pair to a new csv file", (*Cli).extract},
	{"load", "<index> <csv>", 2, "insert every pair of a csv file", (*Cli).load},
	{"inspect", "<index>", 1, "dump the tree level by level", (*Cli).inspect},
	{"verify", "<index>", 1, "check the tree structure", (*Cli).verify},
	{"checksum", "<index>", 1, "hash the ordered pair stream", (*Cli).checksum},
	{"stats", "<index>", 1, "show header, shape and size", (*Cli).stats},
	{"repl", "<index>", 1, "open an interactive session", (*Cli).repl},
}

type Cli struct {
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	opts   indexfile.Options

	red   *color.Color
	green *color.Color
	bold  *color.Color
}

type Option func(*Cli)

// WithLogger fixes the logger instead of building one from -v and the
// environment.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cli) {
		c.logger = l
	}
}

func New(in io.Reader, out io.Writer, opts ...Option) *Cli {
	c := &Cli{
		in:    in,
		out:   out,
		opts:  indexfile.DefaultOptions(),
		red:   color.New(color.FgRed),
		green: color.New(color.FgGreen),
		bold:  color.New(color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one command line (without the program name) and returns the
// process exit code.
func (c *Cli) Run(args []string) int {
	fs := flag.NewFlagSet("btreeidx", flag.ContinueOnError)
	fs.SetOutput(c.out)
	verbose := fs.Bool("v", false, "debug logging to stderr")
	cacheCap := fs.Int64("cache", indexfile.DefaultCacheCapacity, "decoded nodes kept in memory, 0 disables")
	syncEach := fs.Bool("sync", false, "fsync after every block write")
	fs.Usage = func() { c.printUsage(fs) }
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if c.logger == nil {
		c.logger = newLogger(*verbose || os.Getenv(DebugEnv) == "1")
		defer c.logger.Sync()
	}
	c.opts.CacheCapacity = *cacheCap
	c.opts.SyncEveryWrite = *syncEach
	c.opts.Logger = c.logger

	rest := fs.Args()
	if len(rest) == 0 {
		c.printUsage(fs)
		return ExitUsage
	}

	cmd, ok := lookup(rest[0])
	if !ok {
		fmt.Fprintln(c.out, "Unknown command.")
		c.printUsage(fs)
		return ExitUsage
	}
	if len(rest)-1 != cmd.nargs {
		fmt.Fprintf(c.out, "Usage: btreeidx %s %s\n", cmd.name, cmd.args)
		return ExitUsage
	}

	c.logger.Debug("running command", zap.String("command", cmd.name), zap.Strings("args", rest[1:]))
	if err := cmd.run(c, rest[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(c.out, err)
			return ExitUsage
		}
		c.logger.Debug("command failed", zap.String("command", cmd.name), zap.Error(err))
		c.red.Fprintln(c.out, message(err))
		return ExitError
	}
	return ExitOK
}

func lookup(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func (c *Cli) printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(c.out, "Usage: btreeidx [flags] <command> ...")
	fmt.Fprintln(c.out, "\nCommands:")
	for _, cmd := range commands {
		fmt.Fprintf(c.out, "  %-8s %-22s %s\n", cmd.name, cmd.args, cmd.help)
	}
	fmt.Fprintln(c.out, "\nFlags:")
	fs.PrintDefaults()
}

func newLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// pathError ties a failure to the file it concerns, for messages that name it.
type pathError struct {
	path string
	err  error
}

func (e *pathError) Error() string { return e.path + ": " + e.err.Error() }
func (e *pathError) Unwrap() error { return e.err }

// message renders err as the one-line report printed to the user.
func message(err error) string {
	var pe *pathError
	path := ""
	if errors.As(err, &pe) {
		path = pe.path
	}

	switch {
	case errors.Is(err, errNoSuchFile):
		return "Error: File does not exist."
	case errors.Is(err, indexfile.ErrFileNotFound):
		return "Error: File not found."
	case errors.Is(err, indexfile.ErrInvalidFormat):
		return "Error: Invalid index file."
	case errors.Is(err, indexfile.ErrKeyNotFound), errors.Is(err, indexfile.ErrEmptyTree):
		return "Error: Key not found."
	case errors.Is(err, indexfile.ErrAlreadyExists), errors.Is(err, csvio.ErrOutputExists):
		return fmt.Sprintf("Error: File %s already exists.", path)
	case errors.Is(err, csvio.ErrCSVNotFound):
		return "Error: CSV file not found."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func parseUint(what, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an unsigned 64-bit integer, got %q", errUsage, what, s)
	}
	return v, nil
}
