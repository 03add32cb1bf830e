package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage backend names accepted in the config file.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		Backend string `yaml:"backend"` // file, sqlite or redis
		DataDir string `yaml:"data_dir"`
		Path    string `yaml:"path"` // sqlite database file
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	WorkingHours struct {
		StartHour   int `yaml:"start_hour"`
		EndHour     int `yaml:"end_hour"`
		SlotMinutes int `yaml:"slot_minutes"`
	} `yaml:"working_hours"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Login struct {
		RatePerMinute int `yaml:"rate_per_minute"`
		Burst         int `yaml:"burst"`
	} `yaml:"login"`
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders
// and filling defaults. A missing path falls back to configs/config.yaml;
// a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/nioi_backoffice.db"
	}
	if c.WorkingHours.StartHour == 0 && c.WorkingHours.EndHour == 0 {
		c.WorkingHours.StartHour = 8
		c.WorkingHours.EndHour = 18
	}
	if c.WorkingHours.SlotMinutes <= 0 {
		c.WorkingHours.SlotMinutes = 30
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Login.RatePerMinute <= 0 {
		c.Login.RatePerMinute = 10
	}
	if c.Login.Burst <= 0 {
		c.Login.Burst = 5
	}
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendRedis && c.Redis.Address == "" {
		return fmt.Errorf("redis backend requires redis.address")
	}
	if c.WorkingHours.StartHour >= c.WorkingHours.EndHour {
		return fmt.Errorf("working hours start %d must precede end %d",
			c.WorkingHours.StartHour, c.WorkingHours.EndHour)
	}
	return nil
}
