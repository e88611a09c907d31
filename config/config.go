// Package config provides configuration management for checkbook.
// It loads configuration from a .env file, an optional YAML file, and
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/checkbook"
	"github.com/etnz/checkbook/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the YAML file read when CHECKBOOK_CONFIG is not set.
const DefaultConfigFile = "checkbook.yaml"

// Config represents the application configuration.
type Config struct {
	DBPath   string `yaml:"db"`
	LogLevel string `yaml:"log_level"`
	Addr     string `yaml:"addr"`
	// APIToken is the bearer token required by the HTTP API. Empty disables the check.
	APIToken string `yaml:"api_token"`

	Advisor AdvisorConfig `yaml:"advisor"`
	Match   MatchConfig   `yaml:"match"`
	Alerts  AlertsConfig  `yaml:"alerts"`
}

// AdvisorConfig represents the AI advisor configuration.
type AdvisorConfig struct {
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MinConfidence int           `yaml:"min_confidence"`
}

// MatchConfig tunes the matcher.
type MatchConfig struct {
	MaxDays                 int  `yaml:"max_days"`
	UniqueCandidateFallback bool `yaml:"unique_candidate_fallback"`
}

// AlertsConfig represents the alert settings, and where push alerts go.
type AlertsConfig struct {
	Deposit      bool          `yaml:"deposit"`
	Debit        bool          `yaml:"debit"`
	LowBalance   bool          `yaml:"low_balance"`
	Threshold    float64       `yaml:"threshold"`
	Overdraft    bool          `yaml:"overdraft"`
	RecentWindow time.Duration `yaml:"recent_window"`
	// FCMToken is the device token receiving push alerts. Empty disables push.
	FCMToken string `yaml:"fcm_token"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	settings := checkbook.DefaultSettings()
	match := checkbook.DefaultMatchOptions()
	return &Config{
		DBPath: "checkbook.db",
		Addr:   ":8080",
		Advisor: AdvisorConfig{
			Model:         "gemini-2.5-flash",
			Timeout:       20 * time.Second,
			MinConfidence: checkbook.DefaultMinConfidence,
		},
		Match: MatchConfig{
			MaxDays:                 match.MaxDays,
			UniqueCandidateFallback: match.UniqueCandidateFallback,
		},
		Alerts: AlertsConfig{
			Deposit:      settings.DepositAlerts,
			Debit:        settings.DebitAlerts,
			LowBalance:   settings.LowBalanceAlerts,
			Threshold:    settings.LowBalanceThreshold,
			Overdraft:    settings.OverdraftAlerts,
			RecentWindow: settings.RecentWindow,
		},
	}
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := Default()

	path, explicit := os.LookupEnv("CHECKBOOK_CONFIG")
	if !explicit {
		path = DefaultConfigFile
	}
	if err := config.loadYAML(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := config.loadEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadYAML overrides c with the values set in the YAML file at path.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.DBPath = getEnvOrDefault("CHECKBOOK_DB", c.DBPath)
	c.LogLevel = getEnvOrDefault("CHECKBOOK_LOG_LEVEL", c.LogLevel)
	c.Addr = getEnvOrDefault("CHECKBOOK_ADDR", c.Addr)
	c.APIToken = getEnvOrDefault("CHECKBOOK_API_TOKEN", c.APIToken)
	c.Advisor.Model = getEnvOrDefault("CHECKBOOK_MODEL", c.Advisor.Model)
	c.Alerts.FCMToken = getEnvOrDefault("CHECKBOOK_FCM_TOKEN", c.Alerts.FCMToken)

	var err error
	c.Advisor.Timeout, err = parseDurationEnv("CHECKBOOK_ADVISOR_TIMEOUT", c.Advisor.Timeout)
	collect(err)
	c.Advisor.MinConfidence, err = parseIntEnv("CHECKBOOK_MIN_CONFIDENCE", c.Advisor.MinConfidence)
	collect(err)
	c.Match.MaxDays, err = parseIntEnv("CHECKBOOK_MATCH_DAYS", c.Match.MaxDays)
	collect(err)
	c.Match.UniqueCandidateFallback, err = parseBoolEnv("CHECKBOOK_MATCH_FALLBACK", c.Match.UniqueCandidateFallback)
	collect(err)
	c.Alerts.Deposit, err = parseBoolEnv("CHECKBOOK_DEPOSIT_ALERTS", c.Alerts.Deposit)
	collect(err)
	c.Alerts.Debit, err = parseBoolEnv("CHECKBOOK_DEBIT_ALERTS", c.Alerts.Debit)
	collect(err)
	c.Alerts.LowBalance, err = parseBoolEnv("CHECKBOOK_LOW_BALANCE_ALERTS", c.Alerts.LowBalance)
	collect(err)
	c.Alerts.Threshold, err = parseFloatEnv("CHECKBOOK_LOW_BALANCE", c.Alerts.Threshold)
	collect(err)
	c.Alerts.Overdraft, err = parseBoolEnv("CHECKBOOK_OVERDRAFT_ALERTS", c.Alerts.Overdraft)
	collect(err)
	c.Alerts.RecentWindow, err = parseDurationEnv("CHECKBOOK_RECENT_WINDOW", c.Alerts.RecentWindow)
	collect(err)

	return errors.Join(errs...)
}

// Validate reports every invalid value of the configuration.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.Advisor.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("advisor timeout must be positive, got %v", c.Advisor.Timeout))
	}
	if c.Advisor.MinConfidence < 0 || c.Advisor.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("advisor min confidence must be within 0..100, got %d", c.Advisor.MinConfidence))
	}
	if c.Match.MaxDays < 0 {
		errs = append(errs, fmt.Errorf("match max days must not be negative, got %d", c.Match.MaxDays))
	}
	if err := c.Settings().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Settings returns the store settings configured by c.
func (c *Config) Settings() checkbook.Settings {
	return checkbook.Settings{
		DepositAlerts:       c.Alerts.Deposit,
		DebitAlerts:         c.Alerts.Debit,
		LowBalanceAlerts:    c.Alerts.LowBalance,
		LowBalanceThreshold: c.Alerts.Threshold,
		OverdraftAlerts:     c.Alerts.Overdraft,
		RecentWindow:        c.Alerts.RecentWindow,
	}
}

// MatchOptions returns the matcher options configured by c.
func (c *Config) MatchOptions() checkbook.MatchOptions {
	return checkbook.MatchOptions{
		MaxDays:                 c.Match.MaxDays,
		UniqueCandidateFallback: c.Match.UniqueCandidateFallback,
	}
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid number value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid boolean value for %s: %s", key, value)
	}
	return parsed, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	return parsed, nil
}
