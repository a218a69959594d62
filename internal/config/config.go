// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/joe/fairwatch/internal/statusapi"
	"github.com/joe/fairwatch/internal/tracker"
)

// Exported constants.
const (
	DefaultWorkflows = 100
	LogFormatJSON    = "json"
	LogFormatText    = "text"
)

const runPrefixLayout = "020106-1504"

// Exported variables.
var (
	ErrInvalidAPIURL       = errors.New("invalid API URL")
	ErrInvalidBand         = errors.New("invalid band")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrInvalidPollInterval = errors.New("poll interval cannot be negative")
	ErrMissingPrefix       = errors.New("run prefix is required")
)

// BandSpec is a fairness band given on the command line as key:weight[:count].
type BandSpec struct {
	statusapi.Band
}

// String renders the band back into flag form.
func (b BandSpec) String() string {
	s := b.Key + ":" + tracker.FormatWeight(b.Weight)
	if b.Count > 0 {
		s += ":" + strconv.Itoa(b.Count)
	}

	return s
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (b *BandSpec) UnmarshalText(text []byte) error {
	band, err := ParseBand(string(text))
	if err != nil {
		return err
	}

	b.Band = band

	return nil
}

// Config holds the application configuration
type Config struct {
	APIURL          string        `arg:"--api,env:FAIRWATCH_API" default:"http://localhost:7080" help:"Workflow API base URL (append /api when going through the web UI proxy)"`
	RunPrefix       string        `arg:"-p,--run-prefix" help:"Workflow ID prefix of the run to track (omit to open the submit form)"`
	Mode            tracker.Mode  `arg:"-m,--mode" default:"priority" help:"Run mode: priority|fairness"`
	Workflows       int           `arg:"-n,--workflows" default:"100" help:"Number of workflows to submit (ignored when bands carry counts)"`
	Bands           []BandSpec    `arg:"-b,--band,separate" help:"Fairness band key:weight[:count]; repeat for each band"`
	DisableFairness bool          `arg:"--disable-fairness" help:"Submit every fairness workflow with weight 0"`
	PollInterval    time.Duration `arg:"--poll-interval" help:"Auto-refresh period (default 1.5s for priority, 3s for fairness)"`
	Submit          bool          `arg:"-s,--submit" help:"Submit the run before tracking it"`
	Headless        bool          `arg:"--headless" help:"Print JSON summaries to stdout instead of running the TUI"`
	ExitOnComplete  bool          `arg:"--exit-on-complete" help:"Headless: exit once every class is complete"`
	LogFile         string        `arg:"--log-file" help:"Write logs to this file (the TUI discards logs otherwise)"`
	LogLevel        string        `arg:"--log-level" default:"info" help:"Log level: debug|info|warn|error"`
	LogFormat       string        `arg:"--log-format" default:"text" help:"Log format: text|json"`
	PrefsPath       string        `arg:"--prefs" help:"Preferences file (default: user config dir)"`
	InteractiveMode bool          `arg:"-i,--interactive" help:"Open the submit form even when a run prefix is given"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Submit workflow runs and watch how the backend dispatches them across priorities or fairness bands"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "fairwatch 1.0.0"
}

// EffectivePollInterval returns the configured poll interval or the mode's default.
func (cfg *Config) EffectivePollInterval() time.Duration {
	if cfg.PollInterval > 0 {
		return cfg.PollInterval
	}

	return cfg.Mode.DefaultPollInterval()
}

// TestConfig builds the run submission described by the flags.
func (cfg *Config) TestConfig() statusapi.TestConfig {
	bands := make([]statusapi.Band, 0, len(cfg.Bands))
	for _, band := range cfg.Bands {
		bands = append(bands, band.Band)
	}

	return statusapi.TestConfig{
		WorkflowIDPrefix:  cfg.RunPrefix,
		NumberOfWorkflows: cfg.Workflows,
		Mode:              cfg.Mode,
		Bands:             bands,
		DisableFairness:   cfg.DisableFairness,
	}
}

// DefaultBands are the bands the submit form starts with.
func DefaultBands() []statusapi.Band {
	return []statusapi.Band{
		{Key: "first-class", Weight: 6},
		{Key: "business-class", Weight: 3},
		{Key: "economy-class", Weight: 1},
	}
}

// DefaultRunPrefix returns the default workflow ID prefix for a run started at now.
func DefaultRunPrefix(now time.Time) string {
	return "Test-" + now.Format(runPrefixLayout)
}

// ParseBand parses key:weight[:count].
func ParseBand(s string) (statusapi.Band, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return statusapi.Band{}, fmt.Errorf("%w: %q (want key:weight[:count])", ErrInvalidBand, s)
	}

	key := strings.TrimSpace(parts[0])
	if key == "" {
		return statusapi.Band{}, fmt.Errorf("%w: %q has an empty key", ErrInvalidBand, s)
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return statusapi.Band{}, fmt.Errorf("%w: %q has a non-numeric weight", ErrInvalidBand, s)
	}

	band := statusapi.Band{Key: key, Weight: weight}

	if len(parts) == 3 {
		band.Count, err = strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return statusapi.Band{}, fmt.Errorf("%w: %q has a non-numeric count", ErrInvalidBand, s)
		}
	}

	return band, nil
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		APIURL:    statusapi.DefaultBaseURL,
		Mode:      tracker.ModePriority,
		Workflows: DefaultWorkflows,
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies post-processing logic to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Mode == "" {
		cfg.Mode = tracker.ModePriority
	}

	if _, err := tracker.ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}

	parsed, err := url.Parse(cfg.APIURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAPIURL, cfg.APIURL)
	}

	if cfg.PollInterval < 0 {
		return nil, ErrInvalidPollInterval
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		return nil, fmt.Errorf("%w: %q (must be 'text' or 'json')", ErrInvalidLogFormat, cfg.LogFormat)
	}

	if cfg.Mode == tracker.ModeFairness && len(cfg.Bands) == 0 {
		for _, band := range DefaultBands() {
			cfg.Bands = append(cfg.Bands, BandSpec{Band: band})
		}
	}

	// Headless runs have no form, so a submitting run gets a generated prefix.
	if cfg.Headless {
		cfg.InteractiveMode = false

		if cfg.RunPrefix == "" && cfg.Submit {
			cfg.RunPrefix = DefaultRunPrefix(time.Now())
		}

		if cfg.RunPrefix == "" {
			return nil, fmt.Errorf("%w in headless mode (use --run-prefix or --submit)", ErrMissingPrefix)
		}
	}

	// No run to track means the user picks one in the form.
	if cfg.RunPrefix == "" {
		cfg.InteractiveMode = true
	}

	if cfg.Submit && !cfg.InteractiveMode {
		if err := ValidateTestConfig(cfg.TestConfig()); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
