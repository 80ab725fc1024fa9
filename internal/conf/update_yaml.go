// update_yaml.go
package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SaveYAMLConfig writes the given settings back to the active configuration
// file. It writes to a temporary file and renames it over the original so a
// crash mid-write cannot truncate the config.
func SaveYAMLConfig(settings *Settings) error {
	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		paths, err := GetDefaultConfigPaths()
		if err != nil {
			return err
		}
		configPath = filepath.Join(paths[0], "config.yaml")
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}

	tempPath := configPath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing temporary config: %w", err)
	}
	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("error replacing config file: %w", err)
	}
	return nil
}

// SaveDeviceSelection persists the audio backend and device selection after
// the user switches them at runtime.
func SaveDeviceSelection(settings *Settings) error {
	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()
	return SaveYAMLConfig(settings)
}
