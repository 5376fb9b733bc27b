// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts" mapstructure:"artifacts"`
	Explain   ExplainConfig   `yaml:"explain" mapstructure:"explain"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RatePerSecond  float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// ArtifactsConfig locates the fitted artifact bundles.
type ArtifactsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExplainConfig configures attribution output.
type ExplainConfig struct {
	TopN int `yaml:"top_n" mapstructure:"top_n"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ONCORISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 5007)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_per_second", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("artifacts.dir", "artifacts")
	v.SetDefault("explain.top_n", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
