package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Runtime RuntimeConfig `yaml:"runtime"`
}

type InputConfig struct {
	Cores    int     `yaml:"cores"`     // number of per core columns in every line
	StepSize float64 `yaml:"step_size"` // seconds between two readings
	Units    bool    `yaml:"units"`     // values carry a unit suffix, e.g. +61.0°C
}

type OutputConfig struct {
	Interpolation bool   `yaml:"interpolation"`
	GlobalFit     bool   `yaml:"global_fit"`
	Format        string `yaml:"format"` // text, json or sqlite
	Dir           string `yaml:"dir"`    // empty means next to the input file
	SQLitePath    string `yaml:"sqlite_path"`
}

type RuntimeConfig struct {
	Parallelism     int    `yaml:"parallelism"`
	SkipFailedCores bool   `yaml:"skip_failed_cores"`
	LogLevel        string `yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Input: InputConfig{
			Cores:    4,
			StepSize: 30,
			Units:    true,
		},
		Output: OutputConfig{
			Interpolation: true,
			GlobalFit:     true,
			Format:        FormatText,
		},
		Runtime: RuntimeConfig{
			Parallelism: 4,
			LogLevel:    "info",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/coretemps.yaml", "coretemps.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Input.Cores <= 0 {
		cfg.Input.Cores = 4
	}
	if cfg.Input.StepSize <= 0 {
		cfg.Input.StepSize = 30
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
	if cfg.Runtime.Parallelism <= 0 {
		cfg.Runtime.Parallelism = 4
	}
	if cfg.Runtime.LogLevel == "" {
		cfg.Runtime.LogLevel = "info"
	}
}
