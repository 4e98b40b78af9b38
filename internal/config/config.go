package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverTimescale = "timescale"
	DriverMemory    = "memory"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Ingest     IngestConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// Driver selects the reading store backend: "timescale" for the
	// real deployment, "memory" for local development.
	Driver      string         `mapstructure:"driver"`
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// IngestConfig carries the validation bounds, alert thresholds and
// fallback values applied to every inbound reading.
type IngestConfig struct {
	TempMin         float64 `mapstructure:"temp_min"`
	TempMax         float64 `mapstructure:"temp_max"`
	AlertLowBelow   float64 `mapstructure:"alert_low_below"`
	AlertHighAbove  float64 `mapstructure:"alert_high_above"`
	DefaultSensorID string  `mapstructure:"default_sensor_id"`
	DefaultLocation string  `mapstructure:"default_location"`
	DefaultPH       float64 `mapstructure:"default_ph"`
	DefaultEC       float64 `mapstructure:"default_ec"`
	DefaultCO2      float64 `mapstructure:"default_co2"`
	DefaultNDVI     float64 `mapstructure:"default_ndvi"`
}

type MonitoringConfig struct {
	PrometheusPort     int    `mapstructure:"prometheus_port"`
	LogLevel           string `mapstructure:"log_level"`
	PrometheusEndpoint string `mapstructure:"prometheus_endpoint"`
	LokiEndpoint       string `mapstructure:"loki_endpoint"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("FARMHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.driver", DriverTimescale)
	viper.SetDefault("database.timescaledb.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.channel", "farmhub.readings")

	// Ingest defaults: the validation window is what greenhouse
	// hardware can physically report, the alert band is agronomic.
	viper.SetDefault("ingest.temp_min", -50.0)
	viper.SetDefault("ingest.temp_max", 150.0)
	viper.SetDefault("ingest.alert_low_below", 15.0)
	viper.SetDefault("ingest.alert_high_above", 35.0)
	viper.SetDefault("ingest.default_sensor_id", "ESP32_DEFAULT")
	viper.SetDefault("ingest.default_location", "Main Greenhouse")
	viper.SetDefault("ingest.default_ph", 6.5)
	viper.SetDefault("ingest.default_ec", 1.2)
	viper.SetDefault("ingest.default_co2", 400.0)
	viper.SetDefault("ingest.default_ndvi", 0.5)

	// Monitoring defaults
	viper.SetDefault("monitoring.prometheus_port", 9090)
	viper.SetDefault("monitoring.log_level", "info")
	viper.SetDefault("monitoring.prometheus_endpoint", "http://localhost:9090")
	viper.SetDefault("monitoring.loki_endpoint", "http://localhost:3100")
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverTimescale:
		if config.Database.TimescaleDB.Host == "" {
			return fmt.Errorf("timescaledb host is required")
		}
	case DriverMemory:
		// no backend settings needed
	default:
		return fmt.Errorf("unknown database driver: %q", config.Database.Driver)
	}
	if config.Ingest.TempMin >= config.Ingest.TempMax {
		return fmt.Errorf("ingest temp_min must be below temp_max")
	}
	if config.Ingest.AlertLowBelow >= config.Ingest.AlertHighAbove {
		return fmt.Errorf("alert_low_below must be below alert_high_above")
	}
	if config.Redis.Enabled && config.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}
	return nil
}
