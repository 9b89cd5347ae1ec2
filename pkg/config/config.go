// Package config provides configuration loading and validation for scoredash.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/scoredash/pkg/chart"
	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidTimeout     = errors.New("server timeouts must be positive")
	ErrEmptyDataPath      = errors.New("data path must not be empty")
	ErrEmptyChartDir      = errors.New("chart dir must not be empty")
	ErrInvalidChartFormat = errors.New("invalid chart format")
	ErrInvalidChartTheme  = errors.New("invalid chart theme")
	ErrInvalidTopN        = errors.New("report top_n must be positive")
	ErrInvalidLogFormat   = errors.New("invalid logging format")
)

// Default configuration values.
const (
	defaultHost       = "127.0.0.1"
	defaultPort       = 5000
	defaultDataPath   = "data/StudentsPerformance.csv"
	defaultChartDir   = "static"
	defaultConfigName = "scoredash"
	defaultEnvFile    = ".env"
	envPrefix         = "SCOREDASH"
	maxPort           = 65535

	// LogFormatJSON and LogFormatText select the slog handler.
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds all configuration for scoredash.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Data      DataConfig      `mapstructure:"data"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	Port         int           `mapstructure:"port"`
}

// DataConfig locates the score table.
type DataConfig struct {
	Path string `mapstructure:"path"`
}

// ChartConfig controls the chart artifacts.
type ChartConfig struct {
	Dir     string          `mapstructure:"dir"`
	Format  chart.Format    `mapstructure:"format"`
	Theme   chart.Theme     `mapstructure:"theme"`
	Subject dataset.Subject `mapstructure:"subject"`
}

// ReportConfig controls the top-students ranking.
type ReportConfig struct {
	TopN       int             `mapstructure:"top_n"`
	TopSubject dataset.Subject `mapstructure:"top_subject"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// LoadConfig loads configuration from defaults, an optional YAML file, a
// .env file in the working directory and SCOREDASH_* environment variables.
// Variables already set in the environment win over the .env file.
func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load(defaultEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", defaultEnvFile, err)
	}

	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(defaultConfigName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.read_timeout", "10s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")

	viperCfg.SetDefault("data.path", defaultDataPath)

	viperCfg.SetDefault("chart.dir", defaultChartDir)
	viperCfg.SetDefault("chart.format", string(chart.FormatPNG))
	viperCfg.SetDefault("chart.theme", string(chart.ThemeLight))
	viperCfg.SetDefault("chart.subject", dataset.Math.Column())

	viperCfg.SetDefault("report.top_n", 5)
	viperCfg.SetDefault("report.top_subject", dataset.Math.Column())

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", LogFormatText)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.prometheus", true)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.ReadTimeout <= 0 || config.Server.WriteTimeout <= 0 || config.Server.IdleTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if strings.TrimSpace(config.Data.Path) == "" {
		return ErrEmptyDataPath
	}

	if strings.TrimSpace(config.Chart.Dir) == "" {
		return ErrEmptyChartDir
	}

	switch config.Chart.Format {
	case chart.FormatPNG, chart.FormatHTML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChartFormat, config.Chart.Format)
	}

	switch config.Chart.Theme {
	case chart.ThemeLight, chart.ThemeDark:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChartTheme, config.Chart.Theme)
	}

	if config.Report.TopN <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopN, config.Report.TopN)
	}

	switch config.Logging.Format {
	case LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	_, err := observability.ParseLevel(config.Logging.Level)
	if err != nil {
		return err
	}

	return nil
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Observability converts the logging and telemetry sections into an
// observability config for the given mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version
	obs.Mode = mode
	obs.Environment = c.Telemetry.Environment
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.Prometheus = c.Telemetry.Prometheus && mode == observability.ModeServe
	obs.LogJSON = c.Logging.Format == LogFormatJSON

	// Already validated by LoadConfig.
	obs.LogLevel, _ = observability.ParseLevel(c.Logging.Level)

	return obs
}
