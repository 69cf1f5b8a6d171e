package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Refresh     RefreshConfig     `yaml:"refresh" mapstructure:"refresh"`
	Checkin     CheckinConfig     `yaml:"checkin" mapstructure:"checkin"`
	Sensor      SensorConfig      `yaml:"sensor" mapstructure:"sensor"`
	Entitlement EntitlementConfig `yaml:"entitlement" mapstructure:"entitlement"`
	Directory   DirectoryConfig   `yaml:"directory" mapstructure:"directory"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RefreshConfig configures the live reading refresh loop.
type RefreshConfig struct {
	IntervalSecs     int `yaml:"interval_secs" mapstructure:"interval_secs"`
	RetryMaxAttempts int `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
	BreakerThreshold int `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
}

// CheckinConfig configures check-in validation.
type CheckinConfig struct {
	// Lat/Lng give the client position when the CLI has no locator.
	Lat float64 `yaml:"lat" mapstructure:"lat"`
	Lng float64 `yaml:"lng" mapstructure:"lng"`
}

// SensorConfig configures the simulated sensor network.
type SensorConfig struct {
	DelayMs        int     `yaml:"delay_ms" mapstructure:"delay_ms"`
	FailurePercent int     `yaml:"failure_percent" mapstructure:"failure_percent"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int     `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// EntitlementConfig configures premium token issuance and verification.
type EntitlementConfig struct {
	Secret   string `yaml:"secret" mapstructure:"secret"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// DirectoryConfig configures the gym directory source.
type DirectoryConfig struct {
	// SeedFile overrides the embedded seed when set.
	SeedFile string `yaml:"seed_file" mapstructure:"seed_file"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GYMPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "gympulse.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("refresh.interval_secs", 30)
	v.SetDefault("refresh.retry_max_attempts", 3)
	v.SetDefault("refresh.breaker_threshold", 5)
	v.SetDefault("sensor.delay_ms", 450)
	v.SetDefault("sensor.failure_percent", 4)
	v.SetDefault("sensor.rate_per_second", 10)
	v.SetDefault("sensor.rate_burst", 20)
	v.SetDefault("entitlement.secret", "dev-only-secret")
	v.SetDefault("entitlement.ttl_hours", 720)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
