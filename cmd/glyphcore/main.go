// Package main is the entry point for glyphcore.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/glyphcore/internal/app"
	"github.com/dshills/glyphcore/internal/logging"
	"github.com/dshills/glyphcore/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cliOptions holds the flags that do not map onto app.Options.
type cliOptions struct {
	headless bool
	frames   int
	snapshot string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, cli := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cli.headless {
		return runHeadless(ctx, opts, cli)
	}
	return runInteractive(ctx, opts)
}

// runInteractive edits in the terminal. The terminal cannot show a device
// surface, so the software renderer is used unless -device says otherwise.
func runInteractive(ctx context.Context, opts app.Options) int {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: not a terminal (use -headless to render without one)")
		return 1
	}
	if opts.Device == "" {
		opts.Device = "none"
	}
	// Log lines would corrupt the screen; only a configured log file is kept.
	opts.LogOutput = io.Discard

	tty, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	opts.Backend = tty

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, app.ErrQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runHeadless renders a fixed number of frames without input and optionally
// writes the last one to a PNG file.
func runHeadless(ctx context.Context, opts app.Options, cli cliOptions) int {
	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	var out io.Writer
	if cli.snapshot != "" {
		f, err := os.Create(cli.snapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := application.RunHeadless(ctx, cli.frames, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	p := application.Producer()
	s := p.Stats()
	m := application.Metrics().Snapshot()
	fmt.Printf("session %s: %s renderer, %d frames, %d skipped, %d over budget, avg %.2fms\n",
		s.Session, p.Mode(), s.Frames, s.Skipped, s.Overruns, float64(m.Frames.Avg.Microseconds())/1e3)
	fmt.Printf("atlas %dpx, %d glyphs, %d grows, %d evictions\n",
		s.Glyphs.AtlasSize, s.Glyphs.Entries, s.Glyphs.Grows, s.Glyphs.Evicted)
	return 0
}

func parseFlags() (app.Options, cliOptions) {
	var opts app.Options
	var cli cliOptions
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.Device, "device", "", "Render device (offscreen, none)")
	flag.StringVar(&opts.Language, "lang", "", "Highlighting language (default: detected from the file name)")
	flag.BoolVar(&cli.headless, "headless", false, "Render without a terminal")
	flag.IntVar(&cli.frames, "frames", 1, "Frames to render in headless mode")
	flag.StringVar(&cli.snapshot, "snapshot", "", "Write the last headless frame to this PNG file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "glyphcore - text editing and rendering core\n\n")
		fmt.Fprintf(os.Stderr, "Usage: glyphcore [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  glyphcore main.go                                  Edit a file\n")
		fmt.Fprintf(os.Stderr, "  glyphcore -headless -frames 120 -snapshot out.png main.go\n")
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("glyphcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" && !logging.ValidLevel(opts.LogLevel) {
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}
	if cli.frames < 0 {
		fmt.Fprintln(os.Stderr, "Error: -frames must not be negative")
		os.Exit(1)
	}

	switch flag.NArg() {
	case 0:
	case 1:
		opts.File = flag.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "Error: only one file can be opened")
		os.Exit(1)
	}

	return opts, cli
}
