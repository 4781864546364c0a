package log

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the core struct that encapsulates all logger functionality
type Logger struct {
	currentConfig atomic.Value // stores *Config
	state         State
	initMu        sync.Mutex

	// Context stack, guarded by mu
	mu       sync.RWMutex
	contexts contextStack

	// File, rotation bookkeeping and line buffer, guarded by writeMu
	writeMu    sync.Mutex
	serializer *serializer
	rotation   RotationConfig
	path       string

	queue *recordQueue
	stats *Statistics
}

// NewLogger creates a new Logger instance with default settings.
// The logger discards everything until one of the Initialize methods succeeds.
func NewLogger() *Logger {
	l := &Logger{
		queue: newRecordQueue(),
		stats: newStatistics(),
	}

	cfg := DefaultConfig()
	l.currentConfig.Store(cfg)
	l.serializer = newSerializer(cfg.TimestampFormat, cfg.SanitizeMessages)

	l.state.ProcessorExited.Store(true)
	l.state.MinLevel.Store(cfg.Level)
	l.state.LoggerStartTime.Store(time.Now())
	l.state.ConsoleWriter.Store(&sink{w: io.Discard})
	l.state.DiagnosticSink.Store(&sink{w: os.Stderr})
	l.state.flushRequestChan = make(chan chan struct{}, 1)

	return l
}

// Initialize opens path for append and starts delivery.
// Calling it on an initialized logger is a no-op.
func (l *Logger) Initialize(path string, consoleEnabled bool, minLevel int64, async bool, rotation RotationConfig) error {
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.EnableConsole = consoleEnabled
	cfg.Level = minLevel
	cfg.Async = async
	cfg.SetRotation(rotation)
	return l.InitializeWithConfig(cfg)
}

// InitializeWithOverrides initializes from DefaultConfig with "key=value" overrides applied
func (l *Logger) InitializeWithOverrides(overrides ...string) error {
	if l.state.IsInitialized.Load() {
		return nil
	}

	cfg := DefaultConfig()
	if err := ApplyOverrides(cfg, overrides...); err != nil {
		l.internalLog("invalid configuration overrides: %v\n", err)
		return fmtErrorf("%w: %w", ErrInvalidConfig, err)
	}
	return l.InitializeWithConfig(cfg)
}

// InitializeWithConfig validates cfg, opens the log file and, in async mode, starts the processor.
// Calling it on an initialized logger is a no-op and cfg is not inspected.
// On failure the logger stays uninitialized and the returned error wraps one of
// ErrInvalidConfig, ErrCreateDirectory or ErrOpenFile.
func (l *Logger) InitializeWithConfig(cfg *Config) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.state.IsInitialized.Load() {
		return nil
	}

	if cfg == nil {
		return fmtErrorf("%w: configuration cannot be nil", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		l.internalLog("invalid configuration: %v\n", err)
		return fmtErrorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg = cfg.Clone()

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		l.writeDiagnostic(cfg, "failed to create log directory '%s': %v\n", filepath.Dir(cfg.Path), err)
		return fmtErrorf("%w '%s': %w", ErrCreateDirectory, filepath.Dir(cfg.Path), err)
	}

	file, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.writeDiagnostic(cfg, "failed to open log file '%s': %v\n", cfg.Path, err)
		return fmtErrorf("%w '%s': %w", ErrOpenFile, cfg.Path, err)
	}

	l.currentConfig.Store(cfg)
	now := time.Now()

	l.writeMu.Lock()
	l.state.currentFile = file
	l.state.lastRotation = now
	l.state.rotationDegraded = false
	l.state.CurrentSize.Store(0)
	if fi, errStat := file.Stat(); errStat == nil {
		l.state.CurrentSize.Store(fi.Size())
	}
	l.rotation = cfg.RotationConfig()
	l.path = cfg.Path
	l.serializer = newSerializer(cfg.TimestampFormat, cfg.SanitizeMessages)
	l.writeMu.Unlock()

	l.state.MinLevel.Store(cfg.Level)
	l.state.ConsoleEnabled.Store(cfg.EnableConsole)
	l.state.ConsoleWriter.Store(&sink{w: consoleWriter(cfg.ConsoleTarget)})
	l.state.LoggerStartTime.Store(now)
	l.state.LastSummary.Store(now.UnixNano())
	l.state.SummarySequence.Store(0)

	l.stats.Reset()
	l.ClearContext()
	l.queue.reopen()

	l.state.Async.Store(cfg.Async)
	if cfg.Async {
		l.state.stopChan = make(chan struct{})
		l.state.exitedChan = make(chan struct{})
		l.state.Running.Store(true)
		l.state.ProcessorExited.Store(false)
		go l.processLogs(l.state.stopChan, l.state.exitedChan)
	}

	l.state.ShutdownCalled.Store(false)
	l.state.IsInitialized.Store(true)
	return nil
}

// Shutdown drains every queued record, writes a final line and closes the file.
// With a timeout, waiting for the processor is bounded and ErrShutdownTimeout is returned
// if it did not exit in time; the remaining records are still written.
// Duplicate or concurrent calls are no-ops.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	if !l.state.IsInitialized.Load() {
		l.state.ShutdownCalled.Store(false)
		return nil
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	var finalErr error
	if l.state.Running.CompareAndSwap(true, false) {
		close(l.state.stopChan)
		finalErr = l.waitProcessor(timeout...)
	}

	// Anything pushed after the processor's final drain
	rest := l.queue.closeAndTake()

	l.writeMu.Lock()
	for _, rec := range rest {
		l.writeRecordLocked(rec)
	}
	l.writeRecordLocked(logRecord{Level: LevelInfo, Message: shutdownMessage, TimeStamp: time.Now()})
	if err := l.closeCurrentFile(); err != nil {
		finalErr = combineErrors(finalErr, err)
	}
	l.writeMu.Unlock()

	l.state.IsInitialized.Store(false)
	l.state.ShutdownCalled.Store(false)
	return finalErr
}

// waitProcessor blocks until the processor exits, bounded by timeout if one is given
func (l *Logger) waitProcessor(timeout ...time.Duration) error {
	if len(timeout) == 0 || timeout[0] <= 0 {
		<-l.state.exitedChan
		return nil
	}

	timer := time.NewTimer(timeout[0])
	defer timer.Stop()

	select {
	case <-l.state.exitedChan:
		return nil
	case <-timer.C:
		l.internalLog("processor did not exit within %v\n", timeout[0])
		return fmtErrorf("%w (%v)", ErrShutdownTimeout, timeout[0])
	}
}

// Flush waits until every record queued before the call is written and the file is synced
func (l *Logger) Flush(timeout time.Duration) error {
	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return ErrNotInitialized
	}

	if !l.state.Async.Load() {
		l.writeMu.Lock()
		l.performSync()
		l.writeMu.Unlock()
		return nil
	}

	confirmChan := make(chan struct{})

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.state.flushRequestChan <- confirmChan:
	case <-timer.C:
		return fmtErrorf("%w: failed to send flush request to processor (%v)", ErrFlushTimeout, timeout)
	}

	select {
	case <-confirmChan:
		return nil
	case <-timer.C:
		return fmtErrorf("%w: waiting for flush confirmation (%v)", ErrFlushTimeout, timeout)
	}
}

// SetMinLevel changes the minimum level accepted at the call site
func (l *Logger) SetMinLevel(level int64) {
	l.updateConfig(func(cfg *Config) {
		cfg.Level = level
		l.state.MinLevel.Store(level)
	})
}

// SetConsoleEnabled toggles mirroring of delivered lines to the console target
func (l *Logger) SetConsoleEnabled(enabled bool) {
	l.updateConfig(func(cfg *Config) {
		cfg.EnableConsole = enabled
		l.state.ConsoleEnabled.Store(enabled)
	})
}

// updateConfig applies fn to a copy of the current configuration and stores it.
// Serialized with initialization so a runtime toggle never replaces a newer config.
func (l *Logger) updateConfig(fn func(cfg *Config)) {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	cfg := l.getConfig().Clone()
	fn(cfg)
	l.currentConfig.Store(cfg)
}

// IsInitialized reports whether the logger accepts records
func (l *Logger) IsInitialized() bool {
	return l.state.IsInitialized.Load()
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

func consoleWriter(target string) io.Writer {
	if target == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}
