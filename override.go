package log

import (
	"fmt"
	"strconv"
	"strings"
)

// NewConfigFromOverrides applies string key-value overrides on top of the default configuration.
// Each override should be in the format "key=value".
//
// Example:
//
//	cfg, err := log.NewConfigFromOverrides(
//	    "path=/var/log/app/render.log",
//	    "level=debug",
//	    "rotation=size",
//	    "max_size_bytes=1048576",
//	)
func NewConfigFromOverrides(overrides ...string) (*Config, error) {
	cfg := DefaultConfig()
	if err := ApplyOverrides(cfg, overrides...); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmtErrorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// ApplyOverrides applies "key=value" strings to cfg in place without validating the result.
func ApplyOverrides(cfg *Config, overrides ...string) error {
	var errors []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errors = append(errors, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errors = append(errors, err)
		}
	}

	return combineConfigErrors(errors)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString("log: multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), "log: ")
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config.
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "path":
		cfg.Path = value
	case "level":
		// Accept both numeric and named values
		if numVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.Level = numVal
		} else {
			levelVal, err := Level(value)
			if err != nil {
				return fmtErrorf("invalid level value '%s': %w", value, err)
			}
			cfg.Level = levelVal
		}
	case "async":
		return parseBoolField(&cfg.Async, key, value)

	case "enable_console":
		return parseBoolField(&cfg.EnableConsole, key, value)
	case "console_target":
		cfg.ConsoleTarget = value

	case "rotation":
		kind, err := ParseRotationKind(value)
		if err != nil {
			return err
		}
		cfg.Rotation = kind.String()
	case "max_size_bytes":
		return parseIntField(&cfg.MaxSizeBytes, key, value)
	case "max_generations":
		return parseIntField(&cfg.MaxGenerations, key, value)
	case "compress_old":
		return parseBoolField(&cfg.CompressOld, key, value)

	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitize_messages":
		return parseBoolField(&cfg.SanitizeMessages, key, value)

	case "flush_interval_ms":
		return parseIntField(&cfg.FlushIntervalMs, key, value)
	case "enable_periodic_sync":
		return parseBoolField(&cfg.EnablePeriodicSync, key, value)
	case "summary_interval_ms":
		return parseIntField(&cfg.SummaryIntervalMs, key, value)
	case "auto_summary":
		return parseBoolField(&cfg.AutoSummary, key, value)

	case "internal_errors_to_stderr":
		return parseBoolField(&cfg.InternalErrorsToStderr, key, value)

	default:
		return fmtErrorf("unknown config key in override: '%s'", key)
	}

	return nil
}

func parseBoolField(dst *bool, key, value string) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}

func parseIntField(dst *int64, key, value string) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}
