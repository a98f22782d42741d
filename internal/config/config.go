package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// PresenceTTL is how long a participant may go without a heartbeat
	// before becoming eligible for eviction.
	PresenceTTL time.Duration `mapstructure:"presence_ttl" yaml:"presence_ttl"`
	// SweepInterval is the period of the eviction sweeper. It is independent
	// of PresenceTTL, so an evicted participant can stay visible in reads for
	// up to one extra sweep cycle.
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":5000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "batepapo.db",
		LogLevel:          "info",
		PresenceTTL:       10 * time.Second,
		SweepInterval:     15 * time.Second,
	}
}
