package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, "./logs/app.log", cfg.Path)
	assert.True(t, cfg.Async)
	assert.Equal(t, "none", cfg.Rotation)
	assert.Equal(t, "stdout", cfg.ConsoleTarget)
	assert.Equal(t, defaultTimestampFormat, cfg.TimestampFormat)
	assert.Equal(t, int64(5000), cfg.SummaryIntervalMs)
	assert.NoError(t, cfg.validate())

	// Each call returns an independent copy
	cfg.Level = LevelError
	assert.Equal(t, LevelInfo, DefaultConfig().Level)
}

func TestConfigClone(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Level = LevelDebug
	cfg1.Path = "/custom/render.log"

	cfg2 := cfg1.Clone()
	assert.Equal(t, cfg1.Level, cfg2.Level)
	assert.Equal(t, cfg1.Path, cfg2.Path)

	cfg1.Level = LevelError
	assert.Equal(t, LevelDebug, cfg2.Level)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:      "valid config",
			modify:    func(c *Config) {},
			wantError: "",
		},
		{
			name:      "empty path",
			modify:    func(c *Config) { c.Path = "  " },
			wantError: "log path cannot be empty",
		},
		{
			name:      "unknown level",
			modify:    func(c *Config) { c.Level = 2 },
			wantError: "Level",
		},
		{
			name:      "invalid console target",
			modify:    func(c *Config) { c.ConsoleTarget = "printer" },
			wantError: "ConsoleTarget",
		},
		{
			name:      "invalid rotation",
			modify:    func(c *Config) { c.Rotation = "weekly" },
			wantError: "Rotation",
		},
		{
			name:      "zero flush interval",
			modify:    func(c *Config) { c.FlushIntervalMs = 0 },
			wantError: "FlushIntervalMs",
		},
		{
			name:      "empty timestamp format",
			modify:    func(c *Config) { c.TimestampFormat = "" },
			wantError: "TimestampFormat",
		},
		{
			name: "size rotation without threshold",
			modify: func(c *Config) {
				c.Rotation = "size"
				c.MaxSizeBytes = 0
			},
			wantError: "max_size_bytes must be positive",
		},
		{
			name: "rotation without generations",
			modify: func(c *Config) {
				c.Rotation = "daily"
				c.MaxGenerations = 0
			},
			wantError: "max_generations must be at least 1",
		},
		{
			name: "no rotation allows zero generations",
			modify: func(c *Config) {
				c.MaxGenerations = 0
			},
			wantError: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.validate()

			if tt.wantError == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
			}
		})
	}
}

func TestNewConfigFromFile(t *testing.T) {
	t.Run("log table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lumenlog.toml")
		content := `
[log]
path = "/tmp/render/frame.log"
level = 4
async = false
rotation = "size"
max_size_bytes = 2048
max_generations = 2
sanitize_messages = false
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := NewConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/render/frame.log", cfg.Path)
		assert.Equal(t, LevelWarning, cfg.Level)
		assert.False(t, cfg.Async)
		assert.Equal(t, RotationConfig{Kind: RotateSize, MaxBytes: 2048, MaxGenerations: 2}, cfg.RotationConfig())
		assert.False(t, cfg.SanitizeMessages)
		// Unset keys keep their defaults
		assert.Equal(t, "stdout", cfg.ConsoleTarget)
	})

	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[log]\nrotation = \"weekly\"\n"), 0644))

		_, err := NewConfigFromFile(path)
		assert.Error(t, err)
	})
}

func TestNewConfigFromDefaults(t *testing.T) {
	cfg, err := NewConfigFromDefaults(map[string]any{
		"path":            "/tmp/x.log",
		"level":           LevelError,
		"max_generations": 7,
		"auto_summary":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.log", cfg.Path)
	assert.Equal(t, LevelError, cfg.Level)
	assert.Equal(t, int64(7), cfg.MaxGenerations)
	assert.True(t, cfg.AutoSummary)

	_, err = NewConfigFromDefaults(map[string]any{"colour": "blue"})
	assert.ErrorContains(t, err, "unknown config key")

	_, err = NewConfigFromDefaults(map[string]any{"async": "yes"})
	assert.ErrorContains(t, err, "expected bool")
}

func TestRotationConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	rc := RotationConfig{Kind: RotateHourly, MaxBytes: 0, MaxGenerations: 4, CompressOld: true}

	cfg.SetRotation(rc)
	assert.Equal(t, "hourly", cfg.Rotation)
	assert.Equal(t, int64(4), cfg.MaxGenerations)
	assert.Equal(t, rc, cfg.RotationConfig())

	cfg.MaxSizeBytes = -1
	assert.Equal(t, uint64(0), cfg.RotationConfig().MaxBytes)
}

func TestParseRotationKind(t *testing.T) {
	tests := []struct {
		input   string
		want    RotationKind
		wantErr bool
	}{
		{"", RotateNone, false},
		{"none", RotateNone, false},
		{"SIZE", RotateSize, false},
		{" daily ", RotateDaily, false},
		{"hourly", RotateHourly, false},
		{"weekly", RotateNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseRotationKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	assert.Equal(t, "unknown", RotationKind(99).String())
}

func TestNewConfigFromOverrides(t *testing.T) {
	t.Run("applies values", func(t *testing.T) {
		cfg, err := NewConfigFromOverrides(
			"path=/var/log/render.log",
			"level=debug",
			"rotation=size",
			"max_size_bytes=1048576",
			"enable_console=true",
			"console_target=stderr",
		)
		require.NoError(t, err)
		assert.Equal(t, "/var/log/render.log", cfg.Path)
		assert.Equal(t, LevelDebug, cfg.Level)
		assert.Equal(t, "size", cfg.Rotation)
		assert.Equal(t, int64(1048576), cfg.MaxSizeBytes)
		assert.True(t, cfg.EnableConsole)
		assert.Equal(t, "stderr", cfg.ConsoleTarget)
	})

	t.Run("numeric level", func(t *testing.T) {
		cfg, err := NewConfigFromOverrides("level=8")
		require.NoError(t, err)
		assert.Equal(t, LevelError, cfg.Level)
	})

	t.Run("validation runs after overrides", func(t *testing.T) {
		_, err := NewConfigFromOverrides("rotation=daily", "max_generations=0")
		assert.ErrorContains(t, err, "max_generations")
	})
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		wantError string
	}{
		{"unknown key", []string{"colour=blue"}, "unknown config key"},
		{"missing equals", []string{"async"}, "invalid"},
		{"bad bool", []string{"async=maybe"}, "invalid boolean value for async"},
		{"bad int", []string{"max_generations=lots"}, "invalid integer value for max_generations"},
		{"bad level", []string{"level=loud"}, "invalid level value"},
		{"bad rotation", []string{"rotation=weekly"}, "invalid rotation kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := ApplyOverrides(cfg, tt.overrides...)
			assert.ErrorContains(t, err, tt.wantError)
		})
	}

	t.Run("multiple errors are listed", func(t *testing.T) {
		cfg := DefaultConfig()
		err := ApplyOverrides(cfg, "async=maybe", "path=/ok.log", "colour=blue")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple configuration errors")
		assert.Contains(t, err.Error(), "1. invalid boolean value")
		assert.Contains(t, err.Error(), "2. unknown config key")
		// Valid entries are still applied
		assert.Equal(t, "/ok.log", cfg.Path)
	})

	t.Run("no validation", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.NoError(t, ApplyOverrides(cfg, "flush_interval_ms=0"))
		assert.Equal(t, int64(0), cfg.FlushIntervalMs)
	})
}
