// pkg/config/config.go - configuration settings for winapp2trim.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the YAML configuration file, kept
// alongside the ruleset the way the teacher keeps its own Config.yaml next
// to its managed-installs state.
const ConfigPath = `.\winapp2trim.yaml`

// Configuration holds the configurable options for a trim run.
type Configuration struct {
	// InputPath is the ruleset to trim. When DownloadFileToTrim is set, the
	// fetched file is written here first and then parsed from here.
	InputPath string `yaml:"InputPath"`
	// OutputPath is where the reduced ruleset is written. May equal
	// InputPath to overwrite in place.
	OutputPath string `yaml:"OutputPath"`

	UseIncludes  bool   `yaml:"UseIncludes"`
	IncludesPath string `yaml:"IncludesPath"`
	UseExcludes  bool   `yaml:"UseExcludes"`
	ExcludesPath string `yaml:"ExcludesPath"`

	// DownloadFileToTrim, when set, fetches InputPath's contents from
	// SourceURL instead of reading it from disk.
	DownloadFileToTrim bool   `yaml:"DownloadFileToTrim"`
	SourceURL          string `yaml:"SourceURL"`

	LogLevel string `yaml:"LogLevel"`
}

// GetDefaultConfig provides default configuration values.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		InputPath:          `.\winapp2.ini`,
		OutputPath:         `.\winapp2.ini`,
		UseIncludes:        false,
		IncludesPath:       `.\includes.ini`,
		UseExcludes:        false,
		ExcludesPath:       `.\excludes.ini`,
		DownloadFileToTrim: false,
		SourceURL:          "https://www.winapp2.com/winapp2.ini",
		LogLevel:           "INFO",
	}
}

// LoadConfig loads the configuration from ConfigPath, falling back to
// defaults if the file doesn't exist. Unlike the teacher's managed-installs
// config, there is no registry-backed fallback: this is a standalone CLI
// tool, not an enrolled endpoint agent.
func LoadConfig() (*Configuration, error) {
	cfg := GetDefaultConfig()

	if _, err := os.Stat(ConfigPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %s: %w", ConfigPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration file %s: %w", ConfigPath, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to ConfigPath.
func SaveConfig(cfg *Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serializing configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(ConfigPath), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}
	if err := os.WriteFile(ConfigPath, data, 0644); err != nil {
		return fmt.Errorf("writing configuration file %s: %w", ConfigPath, err)
	}
	return nil
}
