// Package main is the entry point for replscreen, a Lua REPL drawn on a
// composited terminal screen.
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

	"github.com/dshills/replscreen/internal/app"
	"github.com/dshills/replscreen/internal/config"
	"github.com/dshills/replscreen/internal/playback"
	"github.com/dshills/replscreen/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// headlessSize is the screen used when stdin is not a terminal.
const headlessWidth, headlessHeight = 80, 24

type cliOptions struct {
	configPath  string
	logLevel    string
	playPath    string
	recordPath  string
	historyPath string
	noWatch     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	store, err := config.NewStore(config.Options{
		Path:      opts.configPath,
		Overrides: overrides(opts),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()
	cfg := store.Current()

	logger, closeLog, err := openLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log: %v\n", err)
		return 1
	}
	defer closeLog()

	store.OnError(func(err error) {
		logger.Warn("configuration reload failed: %v", err)
	})
	if !opts.noWatch {
		if err := store.Watch(); err != nil && !errors.Is(err, config.ErrNoFile) {
			logger.Warn("not watching %s: %v", store.Path(), err)
		}
	}

	sessOpts := app.Options{Config: cfg, Store: store, Logger: logger}
	headless := !term.IsTerminal(int(os.Stdin.Fd()))
	if headless {
		sessOpts.Host = backend.NewNullHost(headlessWidth, headlessHeight)
		sessOpts.Headless = true
		sessOpts.Relay = os.Stdin
	} else {
		t, err := backend.NewTerminal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
			return 1
		}
		sessOpts.Host = t
	}

	if path := firstNonEmpty(opts.playPath, cfg.Playback.Script); path != "" {
		script, err := playback.ParseFile(path, playback.Options{Delay: cfg.Playback.Delay.D()})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		for _, w := range script.Warnings {
			logger.Warn("%s: %v", path, w)
		}
		sessOpts.Script = script
	}

	var rec *playback.Recorder
	if opts.recordPath != "" {
		rec = playback.NewRecorder()
		rec.Start()
		sessOpts.Recorder = rec
	}

	session, err := app.New(sessOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := session.Run(ctx)
	// the terminal is restored by Close, so report afterwards
	if err := session.Close(); err != nil {
		logger.Error("shutdown: %v", err)
	}
	if headless {
		fmt.Println(session.Transcript())
	}
	if rec != nil {
		rec.Stop()
		if err := rec.SaveFile(opts.recordPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: saving recording: %v\n", err)
			return 1
		}
	}

	switch {
	case runErr == nil, errors.Is(runErr, app.ErrQuit):
		return 0
	case errors.Is(runErr, context.Canceled):
		return 130
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	return 1
}

func overrides(opts cliOptions) map[string]any {
	m := make(map[string]any)
	if opts.logLevel != "" {
		m["logging.level"] = opts.logLevel
	}
	if opts.historyPath != "" {
		m["history.path"] = opts.historyPath
	}
	return m
}

func openLogger(c config.LoggingConfig) (*app.Logger, func(), error) {
	var out io.Writer = io.Discard
	closeFn := func() {}
	if c.File != "" {
		f, err := app.OpenLogFile(c.File)
		if err != nil {
			return nil, nil, err
		}
		out = f
		closeFn = func() { f.Close() }
	}
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(c.Level),
		Output: out,
		Prefix: "replscreen",
	})
	return logger, closeFn, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseFlags() cliOptions {
	var opts cliOptions
	var showVersion bool
	var showHelp bool

	defaultConfig := config.DefaultPath()
	flag.StringVar(&opts.configPath, "config", defaultConfig, "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", defaultConfig, "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.playPath, "play", "", "Keystroke script to play at startup")
	flag.StringVar(&opts.playPath, "p", "", "Keystroke script to play at startup (shorthand)")
	flag.StringVar(&opts.recordPath, "record", "", "Save the keys typed in the session as a script")
	flag.StringVar(&opts.historyPath, "history", "", "History file")
	flag.BoolVar(&opts.noWatch, "no-watch", false, "Do not reload the configuration when it changes")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "replscreen - Lua REPL on a composited terminal screen\n\n")
		fmt.Fprintf(os.Stderr, "Usage: replscreen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  replscreen                      Interactive session\n")
		fmt.Fprintf(os.Stderr, "  replscreen -p demo.keys         Play a script, then continue live\n")
		fmt.Fprintf(os.Stderr, "  replscreen --record demo.keys   Record a session for later playback\n")
		fmt.Fprintf(os.Stderr, "  echo 'print(1+1)' | replscreen  Evaluate piped input and print the transcript\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("replscreen %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Error: unexpected arguments %v\n", flag.Args())
		flag.Usage()
		os.Exit(2)
	}

	return opts
}
