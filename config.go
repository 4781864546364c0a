package log

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/lixenwraith/config"
)

// Config holds all logger configuration values
type Config struct {
	// Basic settings
	Path  string `toml:"path" validate:"required"`
	Level int64  `toml:"level" validate:"oneof=-4 0 4 8"`
	Async bool   `toml:"async"` // Deliver through the background processor

	// Console mirroring
	EnableConsole bool   `toml:"enable_console"`
	ConsoleTarget string `toml:"console_target" validate:"oneof=stdout stderr"`

	// Rotation
	Rotation       string `toml:"rotation" validate:"oneof=none size daily hourly"`
	MaxSizeBytes   int64  `toml:"max_size_bytes" validate:"gte=0"`
	MaxGenerations int64  `toml:"max_generations" validate:"gte=0"`
	CompressOld    bool   `toml:"compress_old"` // Accepted, never acted upon

	// Formatting
	TimestampFormat  string `toml:"timestamp_format" validate:"required"`
	SanitizeMessages bool   `toml:"sanitize_messages"` // Hex-encode non-printable runes

	// Timers
	FlushIntervalMs    int64 `toml:"flush_interval_ms" validate:"gt=0"`
	EnablePeriodicSync bool  `toml:"enable_periodic_sync"`
	SummaryIntervalMs  int64 `toml:"summary_interval_ms" validate:"gt=0"`
	AutoSummary        bool  `toml:"auto_summary"` // Processor calls LogSummaryIfDue on its own

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Path:  "./logs/app.log",
	Level: LevelInfo,
	Async: true,

	EnableConsole: false,
	ConsoleTarget: "stdout",

	Rotation:       "none",
	MaxSizeBytes:   10 * 1024 * 1024,
	MaxGenerations: 5,
	CompressOld:    false,

	TimestampFormat:  defaultTimestampFormat,
	SanitizeMessages: true,

	FlushIntervalMs:    100,
	EnablePeriodicSync: true,
	SummaryIntervalMs:  int64(defaultSummaryInterval / 1e6),
	AutoSummary:        false,

	InternalErrorsToStderr: true,
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Missing file falls back to defaults
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies overrides
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmt.Errorf("failed to apply overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// applyOverrides applies a map of overrides to the Config struct
func applyOverrides(cfg *Config, overrides map[string]any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	fieldMap := make(map[string]reflect.Value)
	for i := 0; i < t.NumField(); i++ {
		if tomlTag := t.Field(i).Tag.Get("toml"); tomlTag != "" {
			fieldMap[tomlTag] = v.Field(i)
		}
	}

	for key, value := range overrides {
		fieldValue, exists := fieldMap[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}

		if err := setFieldValue(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if strings.TrimSpace(c.Path) == "" {
		return fmtErrorf("log path cannot be empty")
	}

	if err := validate.Struct(c); err != nil {
		return fmtErrorf("%w", err)
	}

	// Cross-field validations
	if c.Rotation == "size" && c.MaxSizeBytes <= 0 {
		return fmtErrorf("max_size_bytes must be positive for size rotation: %d", c.MaxSizeBytes)
	}

	if c.Rotation != "none" && c.MaxGenerations < 1 {
		return fmtErrorf("max_generations must be at least 1 when rotation is enabled: %d", c.MaxGenerations)
	}

	return nil
}

// RotationConfig returns the rotation settings as a RotationConfig
func (c *Config) RotationConfig() RotationConfig {
	kind, _ := ParseRotationKind(c.Rotation)
	maxBytes := c.MaxSizeBytes
	if maxBytes < 0 {
		maxBytes = 0
	}
	return RotationConfig{
		Kind:           kind,
		MaxBytes:       uint64(maxBytes),
		MaxGenerations: int(c.MaxGenerations),
		CompressOld:    c.CompressOld,
	}
}

// SetRotation copies a RotationConfig into the flat config fields
func (c *Config) SetRotation(rc RotationConfig) {
	c.Rotation = rc.Kind.String()
	c.MaxSizeBytes = int64(rc.MaxBytes)
	c.MaxGenerations = int64(rc.MaxGenerations)
	c.CompressOld = rc.CompressOld
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
