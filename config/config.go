// Package config loads the runtime configuration of the worklog tools from
// WORKLOG_* environment variables and the display settings from a YAML
// file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/nao1215/worklog/domain/model"
	"github.com/nao1215/worklog/logging"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// Prefix is the environment variable prefix.
const Prefix = "WORKLOG"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the runtime configuration.
type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	BatchSize     int     `envconfig:"BATCH_SIZE" default:"1000"`
	MinColumns    int     `envconfig:"MIN_COLUMNS" default:"50"`
	ErrorLogCap   int     `envconfig:"ERROR_LOG_CAP" default:"1000"`
	MemoryLimitMB int64   `envconfig:"MEMORY_LIMIT_MB" default:"0"`
	MemoryWarning float64 `envconfig:"MEMORY_WARNING" default:"0.8"`

	CachePath    string `envconfig:"CACHE_PATH"`
	SettingsFile string `envconfig:"SETTINGS_FILE"`
	Locale       string `envconfig:"LOCALE" default:"und"`

	Addr           string        `envconfig:"ADDR" default:":8080"`
	RowHeight      int           `envconfig:"ROW_HEIGHT" default:"40"`
	ViewportRows   int           `envconfig:"VIEWPORT_ROWS" default:"20"`
	SearchDebounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	ScrollThrottle time.Duration `envconfig:"SCROLL_THROTTLE" default:"16ms"`
}

// Load fills a Config from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !logging.ValidLevel(c.LogLevel) {
		invalid("log level %q", c.LogLevel)
	}
	if !logging.ValidFormat(c.LogFormat) {
		invalid("log format %q", c.LogFormat)
	}
	if c.BatchSize < 1 {
		invalid("batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.MinColumns < model.MinColumnCount {
		invalid("min columns must be at least %d, got %d", model.MinColumnCount, c.MinColumns)
	}
	if c.ErrorLogCap < 0 {
		invalid("error log cap must not be negative, got %d", c.ErrorLogCap)
	}
	if c.MemoryLimitMB < 0 {
		invalid("memory limit must not be negative, got %d", c.MemoryLimitMB)
	}
	if c.MemoryWarning <= 0 || c.MemoryWarning > 1 {
		invalid("memory warning must be in (0, 1], got %g", c.MemoryWarning)
	}
	if _, err := c.LocaleTag(); err != nil {
		invalid("locale %q", c.Locale)
	}
	if strings.TrimSpace(c.Addr) == "" {
		invalid("listen address is empty")
	}
	if c.RowHeight <= 0 {
		invalid("row height must be positive, got %d", c.RowHeight)
	}
	if c.ViewportRows <= 0 {
		invalid("viewport rows must be positive, got %d", c.ViewportRows)
	}
	if c.SearchDebounce < 0 {
		invalid("search debounce must not be negative, got %s", c.SearchDebounce)
	}
	if c.ScrollThrottle < 0 {
		invalid("scroll throttle must not be negative, got %s", c.ScrollThrottle)
	}
	return errors.Join(errs...)
}

// LocaleTag parses Locale as a BCP 47 tag.
func (c *Config) LocaleTag() (language.Tag, error) {
	if strings.TrimSpace(c.Locale) == "" {
		return language.Und, nil
	}
	return language.Parse(c.Locale)
}

// LoadSettings reads the display settings from a YAML file. An empty path
// returns the defaults; keys missing from the file keep their default.
func LoadSettings(path string) (model.Settings, error) {
	settings := model.DefaultSettings()
	if strings.TrimSpace(path) == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // settings path comes from the operator
	if err != nil {
		return settings, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	switch settings.DecimalSeparator {
	case ".", ",":
	default:
		return settings, fmt.Errorf("%w: decimal separator %q in %s", ErrInvalid, settings.DecimalSeparator, path)
	}
	if settings.Decimals < 0 {
		return settings, fmt.Errorf("%w: decimals must not be negative in %s", ErrInvalid, path)
	}
	for group, norm := range settings.WeeklyNorms {
		if norm < 0 {
			return settings, fmt.Errorf("%w: weekly norm of %q is negative in %s", ErrInvalid, group, path)
		}
	}
	return settings, nil
}
