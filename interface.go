package log

// Logger instance methods for logging at different levels.

// Debug logs a message at debug level.
// Debug records pass the level filter but are discarded at delivery.
func (l *Logger) Debug(message string) {
	l.log(LevelDebug, message)
}

// Info logs a message at info level.
func (l *Logger) Info(message string) {
	l.log(LevelInfo, message)
}

// Warning logs a message at warning level.
func (l *Logger) Warning(message string) {
	l.log(LevelWarning, message)
}

// Error logs a message at error level.
func (l *Logger) Error(message string) {
	l.log(LevelError, message)
}

// Debugf formats and logs a message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

// Infof formats and logs a message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warningf formats and logs a message at warning level.
func (l *Logger) Warningf(format string, args ...any) {
	l.logf(LevelWarning, format, args...)
}

// Errorf formats and logs a message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}

// Dump logs label followed by a single-line rendering of v.
func (l *Logger) Dump(level int64, label string, v any) {
	if !l.state.IsInitialized.Load() || level < l.state.MinLevel.Load() {
		return
	}
	l.log(level, label+": "+dumpValue(v))
}
