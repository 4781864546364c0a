package log

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// openLogFile opens path for append, creating it if needed
func openLogFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}
	return file, nil
}

// RotatedPath returns the path of a rotated generation.
// The number is inserted before the extension: app.log -> app.3.log
func RotatedPath(path string, generation int) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s.%d%s", base, generation, ext)
}

// shouldRotate reports whether the policy requires a rotation before the next write.
// Caller holds writeMu.
func (l *Logger) shouldRotate(now time.Time) bool {
	if l.state.rotationDegraded || l.state.currentFile == nil {
		return false
	}

	rc := l.rotation
	switch rc.Kind {
	case RotateSize:
		return rc.MaxBytes > 0 && uint64(l.state.CurrentSize.Load()) >= rc.MaxBytes
	case RotateDaily:
		return now.Sub(l.state.lastRotation) >= dailyPeriod
	case RotateHourly:
		return now.Sub(l.state.lastRotation) >= hourlyPeriod
	default:
		return false
	}
}

// rotateLogFile closes the live file, shifts the generation chain and reopens the live path.
// On failure the live path is reopened without rotation and further rotation is disabled.
// Caller holds writeMu.
func (l *Logger) rotateLogFile(now time.Time) error {
	path := l.path

	if l.state.currentFile != nil {
		if err := l.state.currentFile.Close(); err != nil {
			l.internalLog("failed to close log file before rotation: %v\n", err)
		}
		l.state.currentFile = nil
	}

	rotateErr := shiftGenerations(path, l.rotation.MaxGenerations)
	if rotateErr == nil {
		if err := os.Rename(path, RotatedPath(path, 1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			rotateErr = fmtErrorf("failed to rename '%s' to '%s': %w", path, RotatedPath(path, 1), err)
		}
	}

	if rotateErr != nil {
		l.internalLog("rotation failed, continuing without rotation: %v\n", rotateErr)
		l.state.rotationDegraded = true
		l.state.RotationFailures.Add(1)
	} else {
		l.state.TotalRotations.Add(1)
	}
	l.state.lastRotation = now

	file, err := openLogFile(path)
	if err != nil {
		l.internalLog("failed to reopen log file after rotation: %v\n", err)
		l.state.CurrentSize.Store(0)
		return combineErrors(rotateErr, err)
	}

	l.state.currentFile = file
	l.state.CurrentSize.Store(0)
	if fi, errStat := file.Stat(); errStat == nil {
		l.state.CurrentSize.Store(fi.Size())
	}
	return rotateErr
}

// shiftGenerations moves .N to .N+1 from the oldest down, deleting the generation at the limit
func shiftGenerations(path string, maxGenerations int) error {
	for n := maxGenerations; n >= 1; n-- {
		src := RotatedPath(path, n)
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmtErrorf("failed to stat '%s': %w", src, err)
		}

		if n == maxGenerations {
			if err := os.Remove(src); err != nil {
				return fmtErrorf("failed to remove oldest generation '%s': %w", src, err)
			}
			continue
		}

		dst := RotatedPath(path, n+1)
		if err := os.Rename(src, dst); err != nil {
			return fmtErrorf("failed to rename '%s' to '%s': %w", src, dst, err)
		}
	}
	return nil
}

// ensureFile reopens the live path if an earlier failure left no file open.
// Caller holds writeMu.
func (l *Logger) ensureFile() bool {
	if l.state.currentFile != nil {
		return true
	}
	if l.state.ShutdownCalled.Load() || !l.state.IsInitialized.Load() {
		return false
	}

	file, err := openLogFile(l.path)
	if err != nil {
		return false
	}
	l.state.currentFile = file
	l.state.CurrentSize.Store(0)
	if fi, errStat := file.Stat(); errStat == nil {
		l.state.CurrentSize.Store(fi.Size())
	}
	return true
}

// performSync syncs the current log file.
// Caller holds writeMu.
func (l *Logger) performSync() {
	if l.state.currentFile == nil {
		return
	}
	if err := l.state.currentFile.Sync(); err != nil {
		l.internalLog("failed to sync log file '%s': %v\n", l.state.currentFile.Name(), err)
	}
}

// closeCurrentFile syncs and closes the live file.
// Caller holds writeMu.
func (l *Logger) closeCurrentFile() error {
	f := l.state.currentFile
	if f == nil {
		return nil
	}
	l.state.currentFile = nil

	var finalErr error
	if err := f.Sync(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to sync log file '%s' during shutdown: %w", f.Name(), err))
	}
	if err := f.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close log file '%s' during shutdown: %w", f.Name(), err))
	}
	return finalErr
}
