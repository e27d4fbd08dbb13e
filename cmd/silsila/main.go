package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/silsila/pkg/config"
	"github.com/vanderheijden86/silsila/pkg/datasource"
	"github.com/vanderheijden86/silsila/pkg/debug"
	"github.com/vanderheijden86/silsila/pkg/store"
	"github.com/vanderheijden86/silsila/pkg/ui"
	"github.com/vanderheijden86/silsila/pkg/version"
	"github.com/vanderheijden86/silsila/pkg/watcher"
)

func main() {
	datasetFlag := flag.String("dataset", "", "Path to a dataset file (.json or .db); overrides the config")
	exportDir := flag.String("export-dir", "", "Directory for exported snapshots (default: XDG data dir)")
	cpuProfile := flag.String("cpu-profile", "", "Write CPU profile to file")
	noWatch := flag.Bool("no-watch", false, "Disable live reload of the dataset file")
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: silsila [options]")
		fmt.Println("\nAn interactive knowledge-graph explorer for the Islamic scholarly tradition.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("silsila %s\n", version.Version)
		os.Exit(0)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "silsila is an interactive viewer and needs a terminal")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		// Non-fatal: a broken config file falls back to defaults.
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	if *datasetFlag != "" {
		cfg.DatasetPath = *datasetFlag
	}

	ds, err := datasource.Load(context.Background(), cfg.DatasetPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	// Visit history is a nicety; run without it if the state dir is off
	// limits.
	var visits *store.Store
	if dir := config.StateDir(); dir != "" {
		visits, err = store.Open(filepath.Join(dir, "visits.db"))
		if err != nil {
			debug.Log("visit store unavailable: %v", err)
			visits = nil
		}
	}

	outDir := *exportDir
	if outDir == "" {
		outDir = config.DataDir()
	}
	if outDir == "" {
		outDir = "."
	}

	m := ui.New(&cfg, ds, visits, outDir)

	if err := runTUIProgram(m, &cfg, *noWatch); err != nil {
		fmt.Fprintf(os.Stderr, "Error running silsila: %v\n", err)
		os.Exit(1)
	}
}

func runTUIProgram(m ui.Model, cfg *config.Config, noWatch bool) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Live reload: watch an external dataset file and push the reparsed
	// dataset into the running program. The embedded dataset has no file
	// to watch.
	if cfg.DatasetPath != "" && !noWatch {
		w, err := watcher.New(cfg.DatasetPath,
			watcher.WithOnChange(func() {
				ds, err := datasource.Load(context.Background(), cfg.DatasetPath)
				p.Send(ui.DatasetReloadedMsg{Dataset: ds, Err: err})
			}),
			watcher.WithOnError(func(err error) {
				debug.Log("watcher: %v", err)
			}),
		)
		if err != nil {
			debug.Log("watcher setup failed: %v", err)
		} else if err := w.Start(); err != nil {
			debug.Log("watcher start failed: %v", err)
		} else {
			defer w.Stop()
			debug.LogIf(w.IsPolling(), "watcher fell back to polling %s", cfg.DatasetPath)
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
