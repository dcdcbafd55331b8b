package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models safeshift.yml. It is passed into the engine at
// construction; there is no process-wide mutable configuration.
type Config struct {
	Flagging struct {
		PatternDetectionDays    int `yaml:"pattern_detection_days"`
		SimilarReportsThreshold int `yaml:"similar_reports_threshold"`
	} `yaml:"flagging"`
	Activity struct {
		HeartbeatIntervalMinutes int `yaml:"heartbeat_interval_minutes"`
		TimeoutMinutes           int `yaml:"timeout_minutes"`
	} `yaml:"activity"`
	Wellness struct {
		ExcellentMin int `yaml:"excellent_min"`
		GoodMin      int `yaml:"good_min"`
		FairMin      int `yaml:"fair_min"`
	} `yaml:"wellness"`
	Pagination struct {
		DefaultPageSize int `yaml:"default_page_size"`
		MaxPageSize     int `yaml:"max_page_size"`
	} `yaml:"pagination"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Flagging.PatternDetectionDays <= 0 {
		return fmt.Errorf("config.flagging.pattern_detection_days must be positive")
	}
	if c.Flagging.SimilarReportsThreshold <= 0 {
		return fmt.Errorf("config.flagging.similar_reports_threshold must be positive")
	}
	if c.Activity.HeartbeatIntervalMinutes <= 0 {
		return fmt.Errorf("config.activity.heartbeat_interval_minutes must be positive")
	}
	if c.Wellness.ExcellentMin <= c.Wellness.FairMin {
		return fmt.Errorf("config.wellness.excellent_min must exceed fair_min")
	}
	if c.Wellness.GoodMin < c.Wellness.FairMin || c.Wellness.GoodMin > c.Wellness.ExcellentMin {
		return fmt.Errorf("config.wellness.good_min must sit between fair_min and excellent_min")
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("config.pagination sizes invalid")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "safeshift.yml")
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `flagging:
  pattern_detection_days: 7
  similar_reports_threshold: 2

activity:
  heartbeat_interval_minutes: 5
  timeout_minutes: 10

wellness:
  excellent_min: 80
  good_min: 50
  fair_min: 30

pagination:
  default_page_size: 20
  max_page_size: 100
`
