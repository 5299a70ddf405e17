// stickies is a terminal sticky-notes board. Notes are kept in a JSON
// file in the user's config directory (or next to the executable in
// packaged and portable mode) and saved after every change.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/nissyi-gh/stickies/internal/config"
	"github.com/nissyi-gh/stickies/internal/store"
	"github.com/nissyi-gh/stickies/internal/ui"
	"github.com/nissyi-gh/stickies/internal/viewmodel"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	notesPath  string
	portable   bool
	logOutput  string
	logLevel   string
}

func parseFlags(args []string) (*options, bool, error) {
	var opts options
	flagSet := pflag.NewFlagSet("stickies", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to config.yaml (default: <config dir>/StickyNotes/config.yaml)")
	flagSet.StringVar(&opts.notesPath, "notes", "", "path to the notes JSON file")
	flagSet.BoolVar(&opts.portable, "portable", false, "keep notes next to the executable")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetOutput(io.Discard)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil, true, nil
		}
		return nil, false, err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil, true, nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, false, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return &opts, false, nil
}

func run(args []string) error {
	opts, done, err := parseFlags(args)
	if err != nil || done {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}

	// Anything written to stderr would corrupt the alt-screen display, so
	// records go to a file or nowhere.
	logger := slog.New(slog.DiscardHandler)
	if opts.logOutput != "" {
		handler, closeLog, err := openFileLogHandler(opts.logOutput, level)
		if err != nil {
			return fmt.Errorf("cannot open log file %s: %w", opts.logOutput, err)
		}
		defer closeLog()
		logger = slog.New(handler)
	}

	notesPath, err := resolveNotesPath(opts, cfg)
	if err != nil {
		return err
	}
	noteStore, err := store.New(notesPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info("starting", "notes", noteStore.Path())

	vm, err := viewmodel.New(noteStore, viewmodel.WithLogger(logger))
	if err != nil {
		return err
	}

	model := ui.NewModel(vm)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := program.Run()
	model.Detach()

	if err := vm.Close(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// resolveNotesPath picks the notes file: --notes, then the config file,
// then the default location for the selected mode.
func resolveNotesPath(opts *options, cfg *config.Config) (string, error) {
	switch {
	case opts.notesPath != "":
		return opts.notesPath, nil
	case cfg.NotesPath != "":
		return cfg.NotesPath, nil
	default:
		return store.DefaultPath(opts.portable || cfg.Portable)
	}
}

func openFileLogHandler(path string, level slog.Level) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return handler, func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `stickies: sticky notes in the terminal.

Notes are saved to <config dir>/StickyNotes/notes.json after every
change. Packaged builds and --portable keep them next to the executable.

Usage:
  stickies [flags]

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
