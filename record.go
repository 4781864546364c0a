package log

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// log handles the core logging logic
func (l *Logger) log(level int64, message string) {
	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return
	}
	if level < l.state.MinLevel.Load() {
		return
	}

	record := logRecord{
		Level:     level,
		Message:   message,
		TimeStamp: time.Now(),
	}

	// The mode never changes while initialized; records are never written inline in async mode
	if l.state.Async.Load() {
		if l.queue.push(record) {
			return
		}
		// Queue already taken by a concurrent Shutdown
		l.state.DroppedLogs.Add(1)
		return
	}

	l.writeRecord(record)
}

// logf formats only after the level check passed
func (l *Logger) logf(level int64, format string, args ...any) {
	if !l.state.IsInitialized.Load() || level < l.state.MinLevel.Load() {
		return
	}
	l.log(level, fmt.Sprintf(format, args...))
}

// writeRecord renders and writes one record under the writer lock
func (l *Logger) writeRecord(record logRecord) {
	l.writeMu.Lock()
	l.writeRecordLocked(record)
	l.writeMu.Unlock()
}

// writeRecordLocked is the single delivery path for the processor, sync callers and shutdown.
// Caller holds writeMu.
func (l *Logger) writeRecordLocked(record logRecord) {
	// Debug records never reach the file, regardless of the minimum level
	if record.Level == LevelDebug {
		return
	}

	if !l.ensureFile() {
		l.state.DroppedLogs.Add(1)
		return
	}

	if l.shouldRotate(time.Now()) {
		_ = l.rotateLogFile(time.Now())
		if l.state.currentFile == nil {
			l.state.DroppedLogs.Add(1)
			return
		}
	}

	// Context is read when the record is written, not when it was submitted
	l.mu.RLock()
	frame, hasFrame := l.contexts.top()
	l.mu.RUnlock()

	var framePtr *ContextFrame
	if hasFrame {
		framePtr = &frame
	}
	data := l.serializer.formatLine(record.TimeStamp, record.Level, framePtr, record.Message)

	n, err := l.state.currentFile.Write(data)
	if err != nil {
		l.internalLog("failed to write to log file: %v\n", err)
		l.state.DroppedLogs.Add(1)
	} else {
		l.state.CurrentSize.Add(int64(n))
		l.state.TotalLogsProcessed.Add(1)
		l.stats.recordDelivered()
	}

	if l.state.ConsoleEnabled.Load() {
		if s, ok := l.state.ConsoleWriter.Load().(*sink); ok && s != nil {
			_, _ = s.w.Write(data)
		}
	}
}

// internalLog handles writing internal logger diagnostics, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	l.writeDiagnostic(l.getConfig(), format, args...)
}

// writeDiagnostic writes to the diagnostic sink using cfg's reporting switch
func (l *Logger) writeDiagnostic(cfg *Config, format string, args ...any) {
	if !cfg.InternalErrorsToStderr {
		return
	}

	// Ensure consistent "log: " prefix
	if !strings.HasPrefix(format, "log: ") {
		format = "log: " + format
	}

	s, ok := l.state.DiagnosticSink.Load().(*sink)
	if !ok || s == nil {
		return
	}
	fmt.Fprintf(s.w, format, args...)
}

// setDiagnosticWriter redirects internal diagnostics, used by tests
func (l *Logger) setDiagnosticWriter(w io.Writer) {
	l.state.DiagnosticSink.Store(&sink{w: w})
}
