// Package main is the entry point for the fairwatch application.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/fairwatch/internal/config"
	"github.com/joe/fairwatch/internal/logging"
	"github.com/joe/fairwatch/internal/poller"
	"github.com/joe/fairwatch/internal/prefs"
	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
	"github.com/joe/fairwatch/internal/tui"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Headless {
		err = runHeadless(cfg, os.Stdout, os.Stderr)
	} else {
		err = runTUI(cfg)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runHeadless optionally submits the run, then prints one JSON summary per applied poll.
func runHeadless(cfg *config.Config, stdout, stderr io.Writer) error {
	logger, closer, err := headlessLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := statusapi.NewClient(cfg.APIURL, logger)
	run := cfg.TestConfig()

	if cfg.Submit {
		if err := client.Submit(ctx, run); err != nil {
			return fmt.Errorf("submit run %s: %w", run.WorkflowIDPrefix, err)
		}

		logger.Info("run submitted", "prefix", run.WorkflowIDPrefix, "mode", run.Mode)
	}

	interval := cfg.EffectivePollInterval()
	runTracker := tracker.New(tracker.Options{
		PollInterval:  interval,
		DeclaredOrder: run.DeclaredOrder(),
		Logger:        logger,
	})
	controller := poller.New(runTracker, logger)
	defer controller.Dispose()

	encoder := json.NewEncoder(stdout)

	fetch := func(ctx context.Context) (tracker.Snapshot, error) {
		return client.Fetch(ctx, cfg.Mode, cfg.RunPrefix)
	}

	sink := func(outcome poller.Outcome) {
		if !outcome.Applied {
			return
		}

		if err := encoder.Encode(outcome.Summary); err != nil {
			logger.Error("write summary", "error", err)
		}
	}

	err = poller.Run(ctx, controller, fetch, poller.RunOptions{
		Interval:       interval,
		ExitOnComplete: cfg.ExitOnComplete,
	}, sink)
	if err == nil || ctx.Err() != nil {
		return nil
	}

	return err
}

func runTUI(cfg *config.Config) error {
	logger, closer, err := tuiLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := prefs.NewStore(cfg.PrefsPath)
	if err != nil {
		logger.Warn("preferences disabled", "error", err)
	}

	model := tui.NewAppModel(cfg, tui.Options{
		API:    statusapi.NewClient(cfg.APIURL, logger),
		Prefs:  store,
		Logger: logger,
	})

	// Only use alt screen if stdout is a TTY
	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}

	return nil
}

func headlessLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile != "" {
		return logging.OpenFile(cfg.LogFile, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	}

	return logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, stderr), io.NopCloser(nil), nil
}

// tuiLogger logs to --log-file, or nowhere: the TUI owns the terminal.
func tuiLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return logging.Discard(), io.NopCloser(nil), nil
	}

	return logging.OpenFile(cfg.LogFile, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
}
