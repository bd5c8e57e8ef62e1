package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/lavapop/lifecycle-analytics/pkg/conversion"
	"github.com/lavapop/lifecycle-analytics/pkg/retention"
	"github.com/lavapop/lifecycle-analytics/pkg/risk"
	"gopkg.in/yaml.v3"
)

// Config gathers every analytic cutoff in one overridable place. Day
// counts and percentage bands are deployment configuration, not code:
// the same engine serves businesses with different visit cadences.
type Config struct {
	Timezone     string            `yaml:"timezone"`
	LookbackDays []int             `yaml:"lookback_days"`
	Risk         risk.Thresholds   `yaml:"risk"`
	Retention    retention.Config  `yaml:"retention"`
	Conversion   conversion.Config `yaml:"conversion"`
}

// DefaultConfig returns the stock cutoffs documented in each package.
func DefaultConfig() Config {
	return Config{
		Timezone:     "America/Sao_Paulo",
		LookbackDays: []int{30},
		Risk:         risk.DefaultThresholds(),
		Retention:    retention.DefaultConfig(),
		Conversion:   conversion.DefaultConfig(),
	}
}

// LoadConfig loads engine configuration from a YAML file. Supports
// environment variable expansion in the form ${VAR_NAME} or
// ${VAR_NAME:default}. Fields left out of the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration, including the cross-component
// invariant that the retention slices stay disjoint.
func (c Config) Validate() error {
	if c.Timezone == "" {
		return fmt.Errorf("timezone must not be empty")
	}
	if len(c.LookbackDays) == 0 {
		return fmt.Errorf("at least one lookback window is required")
	}
	for _, d := range c.LookbackDays {
		if d < 1 {
			return fmt.Errorf("lookback days must be positive, got %d", d)
		}
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	if err := c.Retention.Validate(); err != nil {
		return err
	}
	if err := c.Conversion.Validate(); err != nil {
		return err
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
