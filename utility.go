package log

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned (wrapped) by the logger
var (
	ErrInvalidConfig   = errors.New("log: invalid configuration")
	ErrCreateDirectory = errors.New("log: cannot create log directory")
	ErrOpenFile        = errors.New("log: cannot open log file")
	ErrNotInitialized  = errors.New("log: logger not initialized")
	ErrFlushTimeout    = errors.New("log: flush timed out")
	ErrShutdownTimeout = errors.New("log: processor did not exit within timeout")
)

// fmtErrorf wrapper. Wrapped errors that carry the "log: " prefix themselves
// are rendered without it so the prefix appears once.
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "log: ") {
		format = "log: " + format
	}

	var trimmed []any
	for i, arg := range args {
		err, ok := arg.(error)
		if !ok || err == nil || !strings.HasPrefix(err.Error(), "log: ") {
			continue
		}
		if trimmed == nil {
			trimmed = append([]any(nil), args...)
		}
		trimmed[i] = unprefixedError{err: err}
	}
	if trimmed != nil {
		args = trimmed
	}
	return fmt.Errorf(format, args...)
}

// unprefixedError hides the package prefix of a wrapped error
type unprefixedError struct {
	err error
}

func (e unprefixedError) Error() string {
	return strings.TrimPrefix(e.err.Error(), "log: ")
}

func (e unprefixedError) Unwrap() error {
	return e.err
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return errors.Join(err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warning, error)", levelStr)
	}
}

// levelToString returns the rendered name of a level
func levelToString(level int64) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", level)
	}
}
