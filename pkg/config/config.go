package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port string `mapstructure:"port"`

	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Mongo      DatabaseConfig `mapstructure:"mongo"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Kafka      KafkaConfig    `mapstructure:"kafka"`

	Support SupportConfig `mapstructure:"support"`
}

// SupportConfig tunables of the support chat subsystem
type SupportConfig struct {
	// HistoryPageSize messages per history page
	HistoryPageSize int `mapstructure:"history_page_size"`
	// ArchiveAfter conversations idle longer than this get deactivated
	ArchiveAfter time.Duration `mapstructure:"archive_after"`
	// Retention messages hidden by both parties older than this get purged
	Retention time.Duration `mapstructure:"retention"`
	// SweepInterval schedule of the archive/purge sweeps
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// UnreadCacheTTL staff dashboard unread summary cache lifetime
	UnreadCacheTTL time.Duration `mapstructure:"unread_cache_ttl"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
