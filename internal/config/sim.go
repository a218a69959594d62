package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
)

// SimConfig holds the simulated backend's configuration
type SimConfig struct {
	Listen          string        `arg:"-l,--listen" default:":7080" help:"Address to listen on"`
	Capacity        int           `arg:"-c,--capacity" default:"20" help:"Activity completions the simulated workers perform per step"`
	Step            time.Duration `arg:"--step" default:"500ms" help:"Simulated time between dispatch steps"`
	StartDelayScale float64       `arg:"--start-delay-scale" default:"1" help:"Multiplier for the start delay before a run's workflows begin (0 disables it)"`
	AllowedOrigins  []string      `arg:"--allowed-origin,separate" help:"CORS origin allowed to call the API; repeatable (default: any)"`
	LogLevel        string        `arg:"--log-level" default:"info" help:"Log level: debug|info|warn|error"`
	LogFormat       string        `arg:"--log-format" default:"text" help:"Log format: text|json"`
}

// Description returns the program description for go-arg
func (SimConfig) Description() string {
	return "Simulated workflow API dispatching runs by strict priority or weighted fairness"
}

// Version returns the version string for go-arg
func (SimConfig) Version() string {
	return "fairsim 1.0.0"
}

// ParseSimFlags parses the simulated backend's command-line flags.
func ParseSimFlags() (*SimConfig, error) {
	cfg := &SimConfig{
		Listen:          ":7080",
		Capacity:        20,
		Step:            500 * time.Millisecond,
		StartDelayScale: 1,
		LogLevel:        "info",
		LogFormat:       LogFormatText,
	}

	arg.MustParse(cfg)

	return PostProcessSimConfig(cfg)
}

// PostProcessSimConfig validates a parsed simulator config.
func PostProcessSimConfig(cfg *SimConfig) (*SimConfig, error) {
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1, got %d", cfg.Capacity)
	}

	if cfg.Step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %s", cfg.Step)
	}

	if cfg.StartDelayScale < 0 {
		return nil, fmt.Errorf("start delay scale cannot be negative, got %v", cfg.StartDelayScale)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return nil, fmt.Errorf("%w: %q (must be 'text' or 'json')", ErrInvalidLogFormat, cfg.LogFormat)
	}

	return cfg, nil
}
