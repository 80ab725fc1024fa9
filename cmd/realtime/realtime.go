// Package realtime implements the realtime subcommand: run the duplex
// engine with the configured plugin chain until signalled.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/plughost/internal/audiocore"
	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/logging"
	"github.com/tphakala/plughost/internal/observability/metrics"
)

// Command returns the realtime subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Run the duplex audio engine with the configured plugin chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, args)
		},
	}
	cmd.Flags().StringSliceVar(&settings.Plugins.Paths, "plugin", settings.Plugins.Paths, "Plugin module to load; repeatable")
	return cmd
}

func run(settings *conf.Settings, extraPlugins []string) error {
	registry := prometheus.NewRegistry()
	engineMetrics, err := metrics.NewEngineMetrics(registry)
	if err != nil {
		return fmt.Errorf("error creating metrics: %w", err)
	}

	engine, err := audiocore.New(settings, engineMetrics)
	if err != nil {
		return err
	}
	defer engine.Close()

	paths := append([]string{}, settings.Plugins.Paths...)
	paths = append(paths, extraPlugins...)
	for _, path := range paths {
		if _, err := engine.AddPlugin(path); err != nil {
			// A failing plugin is skipped, not fatal for the host.
			logging.Error("plugin failed to load", "path", path, "error", err)
		}
	}

	if err := engine.Run(); err != nil {
		return err
	}

	// Dedicated rotating log for stream events, separate from the main log
	// but under the same rotation policy.
	if settings.Main.Log.Enabled {
		if audioLog, closeLog, err := logging.NewFileLogger("logs/audio.log", "audiocore", settings.Main.Log, new(slog.LevelVar)); err == nil {
			defer func() { _ = closeLog() }()
			audioLog.Info("streams started",
				"backend", engine.CurrentBackend(),
				"input", engine.InputDevice(),
				"output", engine.OutputDevice())
		}
	}

	// Device names resolve to concrete devices on the first run; keep the
	// config in step so the next start needs no probing.
	if settings.Audio.InputDevice != engine.InputDevice() ||
		settings.Audio.OutputDevice != engine.OutputDevice() {
		settings.Audio.InputDevice = engine.InputDevice()
		settings.Audio.OutputDevice = engine.OutputDevice()
		if err := conf.SaveDeviceSelection(settings); err != nil {
			logging.Warn("could not persist device selection", "error", err)
		}
	}

	if settings.Plugins.Editor {
		logging.Debug("editor embedding needs a host window; running headless")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if settings.Metrics.Enabled {
		server := &http.Server{
			Addr:              settings.Metrics.Listen,
			Handler:           metricsHandler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logging.Info("metrics listening", "address", settings.Metrics.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		engine.Stop()
		return nil
	})

	logging.Info("engine running, press Ctrl-C to stop",
		"backend", engine.CurrentBackend(),
		"input", engine.InputDevice(),
		"output", engine.OutputDevice(),
		"plugins", engine.Registry().Len())

	<-gctx.Done()
	return g.Wait()
}

func metricsHandler(registry *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return mux
}
