package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the antivirus configuration
type Config struct {
	// Scan settings
	Workers        int      `mapstructure:"workers"`         // number of scan worker goroutines
	Sensitivity    string   `mapstructure:"sensitivity"`     // heuristic sensitivity: low, medium, high
	MaxFileSize    string   `mapstructure:"max_file_size"`   // maximum file size to scan (0 = unlimited)
	SignaturesPath string   `mapstructure:"signatures_path"` // path to a custom signature YAML file
	Exclude        []string `mapstructure:"exclude"`         // extra directory names to skip

	// Quarantine settings
	QuarantineDir string `mapstructure:"quarantine_dir"` // quarantine storage root

	// Realtime protection settings
	WatchPaths     []string `mapstructure:"watch_paths"`     // directories watched by the monitor
	AutoQuarantine bool     `mapstructure:"auto_quarantine"` // isolate threats found by the monitor
	EventRetention int      `mapstructure:"event_retention"` // protection events kept in memory
	QueueSize      int      `mapstructure:"queue_size"`      // pending monitor scans before dropping
	ScanRate       float64  `mapstructure:"scan_rate"`       // monitor scans per second

	// Report settings
	ReportFormat string `mapstructure:"report_format"` // json, text, markdown
	OutputFile   string `mapstructure:"output_file"`   // report output path

	// Metrics settings
	MetricsAddr string `mapstructure:"metrics_addr"` // address for the metrics endpoint ("" = disabled)
}

// LoadConfig loads configuration from environment variables and defaults
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("workers", 4)
	v.SetDefault("sensitivity", "medium")
	v.SetDefault("max_file_size", "500M")
	v.SetDefault("signatures_path", "")
	v.SetDefault("exclude", []string{})
	v.SetDefault("quarantine_dir", DefaultQuarantineDir())
	v.SetDefault("watch_paths", DefaultWatchPaths())
	v.SetDefault("auto_quarantine", false)
	v.SetDefault("event_retention", 1000)
	v.SetDefault("queue_size", 1024)
	v.SetDefault("scan_rate", 20)
	v.SetDefault("report_format", "")
	v.SetDefault("output_file", "")
	v.SetDefault("metrics_addr", "")

	// Read environment variables
	v.SetEnvPrefix("SENTRY")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the components cannot work
// with.
func (c *Config) Validate() error {
	switch c.Sensitivity {
	case "", "low", "medium", "high":
	default:
		return fmt.Errorf("invalid sensitivity %q: must be low, medium or high", c.Sensitivity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d: must be positive", c.Workers)
	}
	switch c.ReportFormat {
	case "", "json", "text", "markdown":
	default:
		return fmt.Errorf("invalid report format %q: must be json, text or markdown", c.ReportFormat)
	}
	return nil
}

// MaxFileSizeBytes returns the scan size cap in bytes. Zero means no cap.
func (c *Config) MaxFileSizeBytes() int64 {
	return ParseSize(c.MaxFileSize)
}

// ParseSize converts a human size string like "650K" or "2M" to bytes.
// Unknown suffixes are treated as plain bytes; unparseable input yields 0.
func ParseSize(sizeStr string) int64 {
	if len(sizeStr) == 0 {
		return 0
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	// Parse number
	var size int64
	fmt.Sscanf(sizeStr, "%d", &size)

	return size * multiplier
}
