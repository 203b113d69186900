// GW-BASIC CLI - runs programs and the interactive prompt
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/tliron/commonlog"
	"golang.org/x/term"

	"github.com/chazu/gwbasic/config"
	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/server"
	"github.com/chazu/gwbasic/session"
	"github.com/chazu/gwbasic/snapshot"
	"github.com/chazu/gwbasic/store"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	os.Exit(gwbasic())
}

func gwbasic() int {
	configDir := flag.String("c", "", "Directory holding gwbasic.toml (default: search upwards from the working directory)")
	runFile := flag.String("run", "", "Run an ASCII program file before the prompt")
	loadName := flag.String("load", "", "Load a program from the library before the prompt")
	stateFile := flag.String("state", "", "Resume from a saved machine state and save it again on exit")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides the config file)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gwbasic [options]\n\n")
		fmt.Fprintf(os.Stderr, "Starts a GW-BASIC session reading lines from standard input.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gwbasic                       # Interactive prompt\n")
		fmt.Fprintf(os.Stderr, "  gwbasic -run hello.bas        # Run a program, then prompt\n")
		fmt.Fprintf(os.Stderr, "  gwbasic -state game.state     # Resume where the last session stopped\n")
		fmt.Fprintf(os.Stderr, "  gwbasic -lsp                  # Language server for editors\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *verbosity >= 0 {
		cfg.Log.Verbosity = *verbosity
	}
	configureLogging(cfg)

	opts, err := session.OptionsFrom(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	lib, err := openLibrary(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: program library unavailable: %v\n", err)
	} else {
		defer lib.Close()
		opts = append(opts, session.WithLibrary(lib))
	}

	if *lspMode || cfg.Server.Enabled {
		if err := server.NewLSP(opts...).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			return 1
		}
		return 0
	}

	opts = append(opts, session.WithConsole(os.Stdin, os.Stdout))
	s := session.New(opts...)

	if *stateFile != "" {
		if err := resume(s, *stateFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	code := run(s, *runFile, *loadName)

	if *stateFile != "" {
		if err := snapshot.Save(*stateFile, s.Snapshot()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			code = 1
		}
	}
	return code
}

func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.FindAndLoad(wd)
}

func configureLogging(cfg *config.Config) {
	if path := cfg.LogPath(); path != "" {
		commonlog.Configure(cfg.Log.Verbosity, &path)
		return
	}
	commonlog.Configure(cfg.Log.Verbosity, nil)
}

func openLibrary(cfg *config.Config) (*store.Store, error) {
	path := cfg.StorePath()
	if path == "" {
		var err error
		if path, err = store.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

// resume restores a saved state; a missing file starts afresh.
func resume(s *session.Session, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	st, err := snapshot.Load(path)
	if err != nil {
		return err
	}
	return s.Restore(st)
}

// run executes the startup program, if any, then the prompt loop. It
// returns the process exit code.
func run(s *session.Session, runFile, loadName string) int {
	switch {
	case runFile != "":
		data, err := os.ReadFile(runFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := s.LoadProgram(string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", runFile, err)
			return 1
		}
		if isExit(execute(func(ctx context.Context) error { return s.RunProgram(ctx, interp.NoLine) })) {
			return 0
		}
	case loadName != "":
		line := fmt.Sprintf("LOAD \"%s\"", loadName)
		if isExit(execute(func(ctx context.Context) error { return s.Execute(ctx, line) })) {
			return 0
		}
	}
	runREPL(s)
	return 0
}

// runREPL reads lines until end of input or SYSTEM. The console reads
// the lines so that INPUT statements share its buffer.
func runREPL(s *session.Session) {
	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	console := s.Console()
	for {
		if prompt {
			console.Fresh()
			console.WriteString("Ok\n")
		}
		var line string
		if err := runerr.Catch(func() { line = console.ReadLine() }); err != nil {
			return
		}
		if isExit(execute(func(ctx context.Context) error { return s.Execute(ctx, line) })) {
			return
		}
	}
}

// execute runs fn with Ctrl-C mapped to Break.
func execute(fn func(ctx context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return fn(ctx)
}

func isExit(err error) bool {
	var exit *runerr.Exit
	return errors.As(err, &exit)
}
