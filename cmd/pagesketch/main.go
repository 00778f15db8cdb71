// Package main provides the pagesketch command. It runs a Lua sketch
// against a document and writes the result as PDF or SVG, or shows it in
// a preview window.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tdewolff/argp"

	"github.com/opd-ai/go-pagesketch/internal/profiling"
	"github.com/opd-ai/go-pagesketch/pkg/pagesketch"
)

// Version is the current version of pagesketch.
// This default value can be overridden at build time using:
//
//	go build -ldflags "-X main.Version=x.y.z"
var Version = "0.1.0-dev"

// Cmd holds the command-line flags.
type Cmd struct {
	Config     string `short:"c" desc:"Configuration file (TOML or Lua)"`
	Output     string `short:"o" desc:"Write the document to this file"`
	Format     string `desc:"Output format: auto, pdf or svg"`
	Canvas     string `desc:"Canvas mode: paper, margin, bleed or facing_pages"`
	Preview    bool   `short:"p" desc:"Show the document in a preview window"`
	Watch      bool   `short:"w" desc:"Run again when the script or configuration changes"`
	Verbose    bool   `desc:"Log debug messages and lifecycle events"`
	CPUProfile string `name:"cpuprofile" desc:"Write CPU profile to file"`
	MemProfile string `name:"memprofile" desc:"Write memory profile to file"`
	Version    bool   `short:"v" desc:"Print version and exit"`
	Script     string `index:"0" desc:"Lua sketch"`
}

func main() {
	root := argp.NewCmd(&Cmd{}, "Processing-style drawing onto document pages")
	root.Parse()
	root.PrintHelp()
}

// Run is called by argp after parsing.
func (cmd *Cmd) Run() error {
	if cmd.Version {
		fmt.Printf("pagesketch version %s\n", Version)
		return nil
	}
	if cmd.Script == "" && cmd.Config == "" {
		return argp.ShowUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if code := cmd.run(ctx, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
	return nil
}

// run executes the sketch and returns the process exit code. Script errors
// are reported on stderr by the sketch itself.
func (cmd *Cmd) run(ctx context.Context, stdout, stderr io.Writer) int {
	profConfig := profiling.Config{
		CPUProfilePath: cmd.CPUProfile,
		MemProfilePath: cmd.MemProfile,
	}
	if profConfig.Enabled() {
		profiler := profiling.New(profConfig)
		if err := profiler.Start(); err != nil {
			fmt.Fprintf(stderr, "Failed to start profiling: %v\n", err)
			return 1
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				fmt.Fprintf(stderr, "Warning: failed to stop profiling: %v\n", err)
			}
		}()
	}

	level := slog.LevelWarn
	if cmd.Verbose {
		level = slog.LevelDebug
	}
	s, err := pagesketch.New(cmd.Script, &pagesketch.Options{
		ConfigPath: cmd.Config,
		CanvasMode: cmd.Canvas,
		Output:     cmd.Output,
		Format:     cmd.Format,
		Preview:    cmd.Preview,
		Watch:      cmd.Watch,
		Stdout:     stdout,
		Stderr:     stderr,
		Logger:     pagesketch.LevelLogger(stderr, level),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error creating sketch: %v\n", err)
		return 1
	}

	if cmd.Verbose {
		s.SetEventHandler(func(e pagesketch.Event) {
			if e.Type == pagesketch.EventFrame {
				return
			}
			fmt.Fprintf(stderr, "[%s] %s: %s\n", e.Timestamp.Format("15:04:05"), e.Type, e.Message)
		})
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	done := make(chan struct{})
	defer func() {
		signal.Stop(hup)
		close(done)
	}()
	go func() {
		for {
			select {
			case <-hup:
				fmt.Fprintln(stderr, "Received SIGHUP, reloading...")
				if err := s.Reload(); err != nil && !errors.Is(err, pagesketch.ErrNotRunning) {
					fmt.Fprintf(stderr, "Reload failed: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()

	// Errors have been reported on stderr by the time Run returns.
	if err := s.Run(ctx); err != nil {
		return 1
	}
	return 0
}
