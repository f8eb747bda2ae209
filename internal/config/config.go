package config

import (
	"os"
	"strconv"
	"strings"

	"statcalc/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Numeric NumericConfig
	Output  OutputConfig
	Server  ServerConfig
}

// NumericConfig holds the solver tolerances and caps
type NumericConfig struct {
	PowerTolerance float64
	MaxIterations  int
	MaxSampleSize  int64
	// ExactLimit is the largest binomial n summed with exact rationals.
	ExactLimit int64
}

// OutputConfig holds report and graph settings
type OutputConfig struct {
	GraphDir     string
	ReportFormat string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port               string
	GinMode            string
	MaxConcurrentCalcs int64
}

var reportFormats = []string{"text", "markdown", "html", "json"}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	numeric, err := loadNumericConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load numeric configuration")
	}

	server, err := loadServerConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load server configuration")
	}

	config := &Config{
		Numeric: *numeric,
		Output:  *loadOutputConfig(),
		Server:  *server,
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		Numeric: NumericConfig{
			PowerTolerance: 1e-6,
			MaxIterations:  200,
			MaxSampleSize:  10_000_000,
			ExactLimit:     2000,
		},
		Output: OutputConfig{GraphDir: ".", ReportFormat: "text"},
		Server: ServerConfig{Port: "8080", GinMode: "release", MaxConcurrentCalcs: 8},
	}
}

func loadNumericConfig() (*NumericConfig, error) {
	def := Default().Numeric

	tol, err := getEnvFloat("STATCALC_POWER_TOLERANCE", def.PowerTolerance)
	if err != nil {
		return nil, err
	}
	iters, err := getEnvInt("STATCALC_MAX_ITERATIONS", int64(def.MaxIterations))
	if err != nil {
		return nil, err
	}
	maxN, err := getEnvInt("STATCALC_MAX_SAMPLE_SIZE", def.MaxSampleSize)
	if err != nil {
		return nil, err
	}
	exact, err := getEnvInt("STATCALC_EXACT_LIMIT", def.ExactLimit)
	if err != nil {
		return nil, err
	}

	return &NumericConfig{
		PowerTolerance: tol,
		MaxIterations:  int(iters),
		MaxSampleSize:  maxN,
		ExactLimit:     exact,
	}, nil
}

func loadOutputConfig() *OutputConfig {
	return &OutputConfig{
		GraphDir:     getEnvOrDefault("STATCALC_GRAPH_DIR", "."),
		ReportFormat: strings.ToLower(getEnvOrDefault("STATCALC_REPORT_FORMAT", "text")),
	}
}

func loadServerConfig() (*ServerConfig, error) {
	limit, err := getEnvInt("MAX_CONCURRENT_CALCS", 8)
	if err != nil {
		return nil, err
	}
	return &ServerConfig{
		Port:               getEnvOrDefault("PORT", "8080"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),
		MaxConcurrentCalcs: limit,
	}, nil
}

func validateConfig(config *Config) error {
	n := config.Numeric
	if !(n.PowerTolerance > 0 && n.PowerTolerance < 0.1) {
		return errors.ConfigInvalid("STATCALC_POWER_TOLERANCE must lie in (0, 0.1)")
	}
	if n.MaxIterations < 10 {
		return errors.ConfigInvalid("STATCALC_MAX_ITERATIONS must be at least 10")
	}
	if n.MaxSampleSize < 2 {
		return errors.ConfigInvalid("STATCALC_MAX_SAMPLE_SIZE must be at least 2")
	}
	if n.ExactLimit < 0 {
		return errors.ConfigInvalid("STATCALC_EXACT_LIMIT must not be negative")
	}
	if !isReportFormat(config.Output.ReportFormat) {
		return errors.ConfigInvalid("STATCALC_REPORT_FORMAT must be one of " + strings.Join(reportFormats, ", "))
	}
	if config.Server.MaxConcurrentCalcs < 1 {
		return errors.ConfigInvalid("MAX_CONCURRENT_CALCS must be at least 1")
	}
	return nil
}

func isReportFormat(format string) bool {
	for _, f := range reportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " is not an integer: " + value)
	}
	return intValue, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " is not a number: " + value)
	}
	return floatValue, nil
}
