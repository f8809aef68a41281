package command

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// fileConfig holds defaults read from an optional yaml config file.
type fileConfig struct {
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`
	Base   string `yaml:"base"`
}

// loadFileConfig reads the config file at path. An empty path means no
// config file was requested and yields a zero config.
func loadFileConfig(fs afero.Fs, path string) (fileConfig, error) {
	var cfg fileConfig

	if path == "" {
		return cfg, nil
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
