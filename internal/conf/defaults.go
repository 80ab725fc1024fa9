// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "plughost")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/plughost.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 10*1024*1024)

	// Audio stream configuration
	viper.SetDefault("audio.backend", "auto")
	viper.SetDefault("audio.inputdevice", "")
	viper.SetDefault("audio.outputdevice", "")
	viper.SetDefault("audio.samplerate", 48000)
	viper.SetDefault("audio.blocksize", 480)
	viper.SetDefault("audio.channels", 2)
	viper.SetDefault("audio.capture.enabled", false)
	viper.SetDefault("audio.capture.path", "clips/")

	// Plugins
	viper.SetDefault("plugins.paths", []string{})
	viper.SetDefault("plugins.editor", true)

	// Metrics
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "localhost:8090")
}
