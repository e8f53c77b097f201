package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the tutoring pipeline
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// RetrievalConfig points at the external passage index service
type RetrievalConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	TopK     int           `mapstructure:"top_k"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// GeminiConfig contains the generation backend settings
type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"`
	MaxRetries int           `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StorageConfig contains database connection settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig holds the conversation store connection
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds the optional retrieval cache connection.
// An empty Addr disables the cache entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DSN builds a Postgres connection string from the configured fields.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// LoadConfig reads configuration from file and environment. Environment
// variables use the RITAI_ prefix with dots replaced by underscores
// (RITAI_GEMINI_API_KEY overrides gemini.api_key).
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10002")
	viper.SetDefault("retrieval.base_url", "http://localhost:8001")
	viper.SetDefault("retrieval.top_k", 10)
	viper.SetDefault("retrieval.timeout", 30*time.Second)
	viper.SetDefault("retrieval.cache_ttl", 2*time.Minute)
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	viper.SetDefault("gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("gemini.max_retries", 3)
	viper.SetDefault("gemini.timeout", 60*time.Second)
	viper.SetDefault("storage.postgres.sslmode", "disable")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("RITAI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Env-only operation is fine; a broken file is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	if config.Gemini.APIKey == "" {
		config.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return &config
}
