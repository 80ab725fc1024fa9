package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tphakala/plughost/cmd"
	"github.com/tphakala/plughost/internal/buildinfo"
	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/logging"
)

// version and buildDate are injected via ldflags.
var (
	version   string
	buildDate string
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(settings.Main.Log)
	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	build := buildinfo.NewContext(version, buildDate)
	logging.Info("plughost starting",
		"version", build.GetVersion(),
		"build_date", build.GetBuildDate())

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal("command failed", "error", err)
	}
}
