// Package devices implements the devices subcommand: list capture and
// playback devices for the selected backend.
package devices

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tphakala/plughost/internal/audiocore"
	"github.com/tphakala/plughost/internal/conf"
	"github.com/tphakala/plughost/internal/observability/metrics"
)

// Command returns the devices subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio devices for the selected backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}
}

func run(settings *conf.Settings) error {
	engineMetrics, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	engine, err := audiocore.New(settings, engineMetrics)
	if err != nil {
		return err
	}
	defer engine.Close()

	inputs, err := engine.EnumerateInputDevices()
	if err != nil {
		return err
	}
	outputs, err := engine.EnumerateOutputDevices()
	if err != nil {
		return err
	}

	fmt.Printf("Backend: %s\n\n", engine.CurrentBackend())
	fmt.Println("Capture devices:")
	for i, name := range inputs {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	fmt.Println("\nPlayback devices:")
	for i, name := range outputs {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	return nil
}
