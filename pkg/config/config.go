package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the backing platform configuration
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Canton         CantonConfig         `mapstructure:"canton"`
	JWKS           JWKSConfig           `mapstructure:"jwks"`
	Backing        BackingConfig        `mapstructure:"backing"`
	Sweep          SweepConfig          `mapstructure:"sweep"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// CantonConfig contains settings for the Canton JSON Ledger API client
// used for ownership verification and party lookups.
type CantonConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	BearerToken    string        `mapstructure:"bearer_token"`
	OperatorParty  string        `mapstructure:"operator_party"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// JWKSConfig contains JWKS configuration for JWT validation
type JWKSConfig struct {
	URL    string `mapstructure:"url"`
	Issuer string `mapstructure:"issuer"`
}

// BackingConfig contains funding-commitment lifecycle settings
type BackingConfig struct {
	// UnlockPeriodDays is the cooling-off period a backing spends in
	// UNLOCKING before it can be withdrawn.
	UnlockPeriodDays int `mapstructure:"unlock_period_days"`
}

// SweepConfig contains settings for the unlock sweep job
type SweepConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// ReconciliationConfig contains settings for the periodic aggregate reconciliation
type ReconciliationConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	MaxRetries int           `mapstructure:"max_retries"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// UnlockPeriod returns the cooling-off period as a duration.
func (c *BackingConfig) UnlockPeriod() time.Duration {
	return time.Duration(c.UnlockPeriodDays) * 24 * time.Hour
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "backing_platform")

	// Canton defaults
	viper.SetDefault("canton.request_timeout", "30s")

	// Backing defaults
	viper.SetDefault("backing.unlock_period_days", 30)

	// Sweep defaults
	viper.SetDefault("sweep.enabled", true)
	viper.SetDefault("sweep.interval", "1m")

	// Reconciliation defaults
	viper.SetDefault("reconciliation.enabled", true)
	viper.SetDefault("reconciliation.interval", "5m")
	viper.SetDefault("reconciliation.max_retries", 3)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validate(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Canton.APIURL == "" {
		return fmt.Errorf("canton.api_url is required")
	}
	if config.Backing.UnlockPeriodDays <= 0 {
		return fmt.Errorf("backing.unlock_period_days must be positive")
	}
	return nil
}
