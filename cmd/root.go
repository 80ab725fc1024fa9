// root.go cobra root command
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/plughost/cmd/devices"
	"github.com/tphakala/plughost/cmd/inspect"
	"github.com/tphakala/plughost/cmd/realtime"
	"github.com/tphakala/plughost/cmd/render"
	"github.com/tphakala/plughost/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plughost",
		Short: "plughost VST3 plugin host CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	subcommands := []*cobra.Command{
		realtime.Command(settings),
		devices.Command(settings),
		inspect.Command(settings),
		render.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.Backend, "backend", viper.GetString("audio.backend"), "Audio backend: auto, wasapi, alsa, coreaudio, pulseaudio, jack, null")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.InputDevice, "input", viper.GetString("audio.inputdevice"), "Capture device name, empty for default")
	rootCmd.PersistentFlags().StringVar(&settings.Audio.OutputDevice, "output", viper.GetString("audio.outputdevice"), "Playback device name, empty for default")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
