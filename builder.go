package log

// Builder provides a fluent API for building logger configurations.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg *Config
	err error // Accumulate errors for deferred handling
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Build creates a new, initialized Logger with the specified configuration.
func (b *Builder) Build() (*Logger, error) {
	if b.err != nil {
		return nil, b.err
	}

	logger := NewLogger()

	// InitializeWithConfig handles validation and file setup.
	if err := logger.InitializeWithConfig(b.cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.cfg.Clone(), nil
}

// Path sets the log file path.
func (b *Builder) Path(path string) *Builder {
	b.cfg.Path = path
	return b
}

// Level sets the log level.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Async selects background delivery.
func (b *Builder) Async(async bool) *Builder {
	b.cfg.Async = async
	return b
}

// EnableConsole enables mirroring lines to the console target.
func (b *Builder) EnableConsole(enable bool) *Builder {
	b.cfg.EnableConsole = enable
	return b
}

// ConsoleTarget sets "stdout" or "stderr".
func (b *Builder) ConsoleTarget(target string) *Builder {
	b.cfg.ConsoleTarget = target
	return b
}

// Rotation sets the whole rotation policy.
func (b *Builder) Rotation(rc RotationConfig) *Builder {
	b.cfg.SetRotation(rc)
	return b
}

// RotationString sets the rotation kind from a string.
func (b *Builder) RotationString(kind string) *Builder {
	if b.err != nil {
		return b
	}
	k, err := ParseRotationKind(kind)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Rotation = k.String()
	return b
}

// MaxSizeBytes sets the size rotation threshold.
func (b *Builder) MaxSizeBytes(size int64) *Builder {
	b.cfg.MaxSizeBytes = size
	return b
}

// MaxGenerations sets how many rotated files are kept.
func (b *Builder) MaxGenerations(n int64) *Builder {
	b.cfg.MaxGenerations = n
	return b
}

// TimestampFormat sets the line timestamp layout.
func (b *Builder) TimestampFormat(format string) *Builder {
	b.cfg.TimestampFormat = format
	return b
}

// SanitizeMessages toggles hex-encoding of non-printable runes.
func (b *Builder) SanitizeMessages(enable bool) *Builder {
	b.cfg.SanitizeMessages = enable
	return b
}

// FlushIntervalMs sets the periodic sync interval.
func (b *Builder) FlushIntervalMs(ms int64) *Builder {
	b.cfg.FlushIntervalMs = ms
	return b
}

// SummaryIntervalMs sets the minimum time between statistics summaries.
func (b *Builder) SummaryIntervalMs(ms int64) *Builder {
	b.cfg.SummaryIntervalMs = ms
	return b
}

// AutoSummary lets the processor emit summaries without a caller loop.
func (b *Builder) AutoSummary(enable bool) *Builder {
	b.cfg.AutoSummary = enable
	return b
}

// InternalErrorsToStderr toggles internal diagnostics.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Example usage:
// logger, err := log.NewBuilder().
//
//	Path("/var/log/app/render.log").
//	LevelString("info").
//	Rotation(log.RotationConfig{Kind: log.RotateSize, MaxBytes: 1 << 20, MaxGenerations: 3}).
//	EnableConsole(true).
//	Build()
//
// if err == nil {
//
//	 defer logger.Shutdown()
//	 logger.Info("Logger initialized successfully")
//
// }
