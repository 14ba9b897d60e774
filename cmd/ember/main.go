package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ember-tui/ember/internal/app"
	"github.com/ember-tui/ember/internal/config"
	"github.com/ember-tui/ember/internal/decor"
	"github.com/ember-tui/ember/internal/freshness"
	"github.com/ember-tui/ember/internal/watch"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath  = flag.String("config", "", "path to config file")
	rootDir     = flag.String("root", ".", "directory to decorate")
	debugFlag   = flag.Bool("debug", false, "enable debug logging")
	versionFlag = flag.Bool("version", false, "print version and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("ember version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	workDir, err := filepath.Abs(*rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve root: %v\n", err)
		os.Exit(1)
	}

	// Thresholds are fixed for the life of the process; edit the config and
	// restart to change them.
	th := freshness.NewThresholds(cfg.Freshness.TimeMultiplier)
	logger.Debug("thresholds derived", "hot", th.Hot, "warm", th.Warm, "cool", th.Cool)

	// The decorator and watcher are built after the program so refresh
	// requests can be marshalled onto its loop; quitting tears both down.
	var (
		dec     *decor.Decorator
		watcher *watch.Watcher
	)
	model := app.New(cfg, th, workDir, func() {
		if dec != nil {
			dec.Dispose()
		}
		if watcher != nil {
			watcher.Stop()
		}
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	dec = decor.New(th, app.NewProgramRefresher(p), logger)

	watcher, err = watch.New(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to watch %s: %v\n", workDir, err)
		os.Exit(1)
	}

	// Bridge change notifications into the decorator.
	go func() {
		for tree := range watcher.Deltas() {
			dec.OnDelta(tree)
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
