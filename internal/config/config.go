package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/cadencehq/cadence/pkg/logger"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Logger    logger.Config    `yaml:"logger"`
	Scheduler SchedulerConfig  `yaml:"scheduler"`
	Dispatch  DispatchConfig   `yaml:"dispatch"`
	OpenAI    OpenAIConfig     `yaml:"openai"`
	Platforms []PlatformConfig `yaml:"platforms"`
}

// PlatformConfig wires one platform's publishing endpoint
type PlatformConfig struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
	Enabled  bool   `yaml:"enabled"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type SchedulerConfig struct {
	TickInterval string `yaml:"tick_interval"`
	Enabled      bool   `yaml:"enabled"`
}

type DispatchConfig struct {
	MaxAttempts   int    `yaml:"max_attempts"`
	BaseDelay     string `yaml:"base_delay"`
	MaxDelay      string `yaml:"max_delay"`
	RatePerMinute uint   `yaml:"rate_per_minute"`
	PoolSize      int    `yaml:"pool_size"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5440
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Scheduler.TickInterval == "" {
		cfg.Scheduler.TickInterval = "1m"
	}
	if !cfg.Scheduler.Enabled {
		cfg.Scheduler.Enabled = true
	}
	if cfg.Dispatch.MaxAttempts == 0 {
		cfg.Dispatch.MaxAttempts = 3
	}
	if cfg.Dispatch.BaseDelay == "" {
		cfg.Dispatch.BaseDelay = "2s"
	}
	if cfg.Dispatch.MaxDelay == "" {
		cfg.Dispatch.MaxDelay = "2m"
	}
	if cfg.Dispatch.RatePerMinute == 0 {
		cfg.Dispatch.RatePerMinute = 30
	}
	if cfg.Dispatch.PoolSize == 0 {
		cfg.Dispatch.PoolSize = 4
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.OpenAI.Timeout == "" {
		cfg.OpenAI.Timeout = "60s"
	}

	return cfg, nil
}
