package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Monitor     MonitorConfig   `toml:"monitor"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Ingest      IngestConfig    `toml:"ingest"`
	Output      OutputConfig    `toml:"output"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// AnalysisConfig is the statistical policy for the batch analyzers
type AnalysisConfig struct {
	// Alpha is the significance threshold for the significant_at_alpha flag
	Alpha float64 `toml:"alpha" validate:"gt=0,lt=1"`

	// Power buckets: n below these cutoffs classify as INSUFFICIENT / LIMITED
	PowerInsufficientBelow int `toml:"power_insufficient_below" validate:"gt=0"`
	PowerLimitedBelow      int `toml:"power_limited_below" validate:"gt=0"`

	// ThresholdStrategy selects the quadrant axis boundary: "median" or "quartile"
	ThresholdStrategy string `toml:"threshold_strategy" validate:"oneof=median quartile"`

	// Axis dimensions. The x/y orientation decides what the quadrant
	// mapping below means, so both are required configuration.
	DimensionX string `toml:"dimension_x" validate:"required,oneof=adoption_density economic_growth"`
	DimensionY string `toml:"dimension_y" validate:"required,oneof=adoption_density economic_growth"`

	Quadrants QuadrantMappingConfig `toml:"quadrants"`
}

// QuadrantMappingConfig is the explicit axis-to-label mapping, checked
// exhaustively at load time so a misconfiguration is caught before any
// analysis runs
type QuadrantMappingConfig struct {
	HighXHighY string `toml:"high_x_high_y" validate:"required"`
	HighXLowY  string `toml:"high_x_low_y" validate:"required"`
	LowXHighY  string `toml:"low_x_high_y" validate:"required"`
	LowXLowY   string `toml:"low_x_low_y" validate:"required"`
}

// MonitorConfig is the sentiment/risk monitor policy
type MonitorConfig struct {
	RollingWindow     string  `toml:"rolling_window"`     // e.g. "24h" - aggregation window
	SuppressionWindow string  `toml:"suppression_window"` // e.g. "6h" - duplicate alert suppression
	InfoThreshold     float64 `toml:"info_threshold" validate:"gte=0,lte=1"`
	WarnThreshold     float64 `toml:"warn_threshold" validate:"gte=0,lte=1"`
	CriticalThreshold float64 `toml:"critical_threshold" validate:"gte=0,lte=1"`

	Pillars []PillarConfig `toml:"pillars" validate:"min=1,dive"`
}

// PillarConfig enumerates one policy pillar and its signal lexicon
type PillarConfig struct {
	Name       string             `toml:"name" validate:"required"`
	Weight     float64            `toml:"weight" validate:"gt=0"`
	ActionTeam string             `toml:"action_team"`
	Signals    map[string]float64 `toml:"signals" validate:"min=1"`
}

type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// IngestConfig points at the file-drop directories where connectors place
// pre-fetched records
type IngestConfig struct {
	MetricsDir      string  `toml:"metrics_dir"`
	DocumentsDir    string  `toml:"documents_dir"`
	DocumentsPerSec float64 `toml:"documents_per_sec"` // Scoring rate limit, 0 = unlimited
}

type OutputConfig struct {
	Dir string `toml:"dir"` // Directory for serialized report artifacts
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Analysis: AnalysisConfig{
			Alpha:                  0.05,
			PowerInsufficientBelow: 20,
			PowerLimitedBelow:      30,
			ThresholdStrategy:      "median",
			DimensionX:             "adoption_density",
			DimensionY:             "economic_growth",
			Quadrants: QuadrantMappingConfig{
				HighXHighY: "STARS",
				HighXLowY:  "SATURATED",
				LowXHighY:  "OPPORTUNITY_GAP",
				LowXLowY:   "SLEEPING_GIANT",
			},
		},
		Monitor: MonitorConfig{
			RollingWindow:     "168h", // 7 days of media signals
			SuppressionWindow: "6h",
			InfoThreshold:     0.15,
			WarnThreshold:     0.35,
			CriticalThreshold: 0.60,
			Pillars: []PillarConfig{
				{
					Name:       "RISK_FRAUD",
					Weight:     0.30,
					ActionTeam: "supervision and consumer protection",
					Signals: map[string]float64{
						"fraud": -0.8, "scam": -0.9, "phishing": -0.8, "stolen balance": -0.7,
					},
				},
				{
					Name:       "SYSTEM_STABILITY",
					Weight:     0.25,
					ActionTeam: "payment system operations",
					Signals: map[string]float64{
						"outage": -0.8, "downtime": -0.7, "error": -0.4, "maintenance": -0.2,
					},
				},
				{
					Name:       "MERCHANT_ADOPTION",
					Weight:     0.20,
					ActionTeam: "financial inclusion division",
					Signals: map[string]float64{
						"merchant onboarding": 0.5, "small business": 0.3, "registration barrier": -0.5,
					},
				},
				{
					Name:       "CONSUMER_SENTIMENT",
					Weight:     0.15,
					ActionTeam: "communications department",
					Signals: map[string]float64{
						"convenient": 0.6, "easy": 0.4, "expensive": -0.5, "complicated": -0.5,
					},
				},
				{
					Name:       "COMPETITIVE_LANDSCAPE",
					Weight:     0.10,
					ActionTeam: "market intelligence",
					Signals: map[string]float64{
						"wallet war": -0.3, "price war": -0.4, "interoperability": 0.4,
					},
				},
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Schedule: "0 * * * *", // Hourly analysis cycle
		},
		Ingest: IngestConfig{
			MetricsDir:      "./drop/metrics",
			DocumentsDir:    "./drop/documents",
			DocumentsPerSec: 200,
		},
		Output: OutputConfig{
			Dir: "./reports",
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("STATERA_ENV"); env != "" {
		config.Environment = env
	}
	if path := os.Getenv("STATERA_STORAGE_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("STATERA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if schedule := os.Getenv("STATERA_SCHEDULE"); schedule != "" {
		config.Scheduler.Schedule = schedule
	}
	if dir := os.Getenv("STATERA_OUTPUT_DIR"); dir != "" {
		config.Output.Dir = dir
	}
	if alpha := os.Getenv("STATERA_ALPHA"); alpha != "" {
		if a, err := strconv.ParseFloat(alpha, 64); err == nil {
			config.Analysis.Alpha = a
		}
	}
}

// Validate fails fast on an unusable configuration. Validation happens at
// load time, not at first use.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Analysis.PowerLimitedBelow < c.Analysis.PowerInsufficientBelow {
		return fmt.Errorf("invalid configuration: power_limited_below (%d) must be >= power_insufficient_below (%d)",
			c.Analysis.PowerLimitedBelow, c.Analysis.PowerInsufficientBelow)
	}
	if c.Analysis.DimensionX == c.Analysis.DimensionY {
		return fmt.Errorf("invalid configuration: dimension_x and dimension_y must differ")
	}

	if _, err := c.Monitor.RollingWindowDuration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Monitor.SuppressionWindowDuration(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !(c.Monitor.InfoThreshold <= c.Monitor.WarnThreshold && c.Monitor.WarnThreshold <= c.Monitor.CriticalThreshold) {
		return fmt.Errorf("invalid configuration: monitor thresholds must be ordered info <= warn <= critical")
	}
	return nil
}

// RollingWindowDuration parses the rolling window duration
func (m *MonitorConfig) RollingWindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(m.RollingWindow)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("rolling_window %q is not a positive duration", m.RollingWindow)
	}
	return d, nil
}

// SuppressionWindowDuration parses the suppression window duration
func (m *MonitorConfig) SuppressionWindowDuration() (time.Duration, error) {
	d, err := time.ParseDuration(m.SuppressionWindow)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("suppression_window %q is not a positive duration", m.SuppressionWindow)
	}
	return d, nil
}
