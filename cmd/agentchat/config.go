package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// config holds the CLI settings. Values come from, in increasing priority:
// defaults, the YAML config file, environment variables, command-line flags.
type config struct {
	BaseURL     string  `yaml:"backend"`
	APIKey      string  `yaml:"api_key"`
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Agent       string  `yaml:"agent"`
	Workflow    string  `yaml:"workflow"`
}

func defaultConfig() *config {
	return &config{
		BaseURL:     "http://localhost:8080",
		Temperature: 0.7,
	}
}

// loadConfig reads the YAML config file. A missing file at the default
// location is fine; a missing file named explicitly with --config is an error.
func loadConfig(path string) (*config, error) {
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return &config{}, nil
		}
		path = filepath.Join(home, ".agentchat.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &config{}, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig layers the file config and environment under any flags the
// user set explicitly on the command line.
func mergeConfig(cmd *cobra.Command, cfg, file *config) {
	if !cmd.Flags().Changed("backend") {
		if v := os.Getenv("AGENTWIRE_BASE_URL"); v != "" {
			cfg.BaseURL = v
		} else if file.BaseURL != "" {
			cfg.BaseURL = file.BaseURL
		}
	}
	if v := os.Getenv("AGENTWIRE_API_KEY"); v != "" {
		cfg.APIKey = v
	} else if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if !cmd.Flags().Changed("provider") && file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if !cmd.Flags().Changed("model") && file.Model != "" {
		cfg.Model = file.Model
	}
	if !cmd.Flags().Changed("temperature") && file.Temperature != 0 {
		cfg.Temperature = file.Temperature
	}
	if file.Agent != "" {
		cfg.Agent = file.Agent
	}
	if file.Workflow != "" {
		cfg.Workflow = file.Workflow
	}
}
