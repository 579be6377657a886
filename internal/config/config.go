package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the configuration is looked up and saved.
const DefaultPath = "config.yml"

// Config holds the settings persisted in config.yml.
type Config struct {
	URL          string `yaml:"url"`
	Username     string `yaml:"username"`
	Timezone     string `yaml:"timezone"`
	ExportFormat string `yaml:"export_format"`
}

// Formats lists the supported export formats.
var Formats = []string{"pdf", "csv", "xlsx"}

// ValidFormat reports whether f is a supported export format.
func ValidFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// Load reads the configuration file at path. A missing or malformed
// file is not an error: it yields an empty Config whose fields are
// filled by environment overlay or interactive prompts.
func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read %s: %v. Will prompt for new values.", path, err)
		}
		return &Config{}
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("Warning: %s is malformed: %v. Will prompt for new values.", path, err)
		return &Config{}
	}

	log.Printf("Loaded configuration from %s.", path)
	return cfg
}

// Save writes the configuration to path for future runs.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("save configuration to %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays KUMA_* environment variables onto the
// configuration so it can run non-interactively in CI.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("KUMA_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("KUMA_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("KUMA_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("KUMA_FORMAT"); v != "" {
		c.ExportFormat = v
	}
}

// Complete reports whether every field needed for a report run is set.
func (c *Config) Complete() bool {
	return c.URL != "" && c.Username != "" && c.Timezone != "" && ValidFormat(c.ExportFormat)
}
