package log

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFullLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "render.log")

	logger, err := NewBuilder().
		Path(path).
		LevelString("debug").
		Async(false).
		Rotation(RotationConfig{Kind: RotateSize, MaxBytes: 2048, MaxGenerations: 5}).
		SummaryIntervalMs(1).
		InternalErrorsToStderr(false).
		Build()
	require.NoError(t, err, "Logger creation with builder should succeed")
	require.NotNil(t, logger)

	var console bytes.Buffer
	var consoleMu sync.Mutex
	logger.state.ConsoleWriter.Store(&sink{w: lockedWriter{w: &console, mu: &consoleMu}})
	logger.SetConsoleEnabled(true)

	// One frame of a render loop
	logger.PushContext(NewContextFrame("frame 0"))
	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warning("warning message")
	logger.Error("error message")

	for i := 0; i < 40; i++ {
		func() {
			defer logger.ScopedContext(NewContextFrame("geometry").WithBatch(i).WithPrimitives(1500 * i).WithCalls(2))()
			logger.Infof("batch %d submitted", i)
			logger.IncrementCounter("batches")
			logger.AddCounter("draw_calls", 2)
		}()
	}
	logger.Dump(LevelInfo, "frame", map[string]int{"batches": 40})
	logger.PopContext()

	time.Sleep(5 * time.Millisecond)
	logger.LogSummaryIfDue()

	require.NoError(t, logger.Flush(time.Second))
	require.NoError(t, logger.Shutdown(2*time.Second))

	// Collect every generation oldest first
	var lines []string
	for n := 5; n >= 1; n-- {
		if _, err := os.Stat(RotatedPath(path, n)); err == nil {
			lines = append(lines, readLines(t, RotatedPath(path, n))...)
		}
	}
	lines = append(lines, readLines(t, path)...)

	// 3 visible levels, 40 batches, the dump, the summary and the shutdown notice
	require.Len(t, lines, 46)
	assert.Positive(t, logger.state.TotalRotations.Load())
	assert.Contains(t, lines[0], "[INFO][frame 0] info message")
	assert.Contains(t, lines[1], "[WARNING][frame 0] warning message")
	assert.Contains(t, lines[2], "[ERROR][frame 0] error message")
	assert.Contains(t, lines[3], "[geometry] Batch:0 DrawCalls:2 batch 0 submitted")
	assert.Contains(t, lines[4], "[geometry] Batch:1 Tri:1k DrawCalls:2 batch 1 submitted")
	assert.Contains(t, lines[43], "frame: ")
	assert.Contains(t, lines[44], "Stats seq=1")
	assert.Contains(t, lines[44], "batches=40 draw_calls=80")
	assert.Contains(t, lines[45], shutdownMessage)
	for _, line := range lines {
		assert.NotContains(t, line, "debug message")
	}

	consoleMu.Lock()
	mirrored := console.String()
	consoleMu.Unlock()
	assert.Equal(t, 46, strings.Count(mirrored, "\n"))
}

func TestConcurrentOperations(t *testing.T) {
	logger, path := createTestLogger(t)

	const workers = 5
	const perWorker = 200

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				logger.Infof("worker %d log %d", id, j)
				logger.IncrementCounter("records")
			}
		}(i)
	}

	// Context changes while records are delivered
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			logger.SetContext(NewContextFrame("pass").WithBatch(i))
			logger.PushContext(NewContextFrame("nested"))
			logger.PopContext()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			assert.NoError(t, logger.Flush(time.Second))
			time.Sleep(5 * time.Millisecond)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			logger.LogSummaryIfDue()
			_ = logger.Statistics()
		}
	}()

	wg.Wait()
	require.NoError(t, logger.Shutdown())

	count := 0
	for _, line := range readLines(t, path) {
		if strings.Contains(line, "worker ") {
			count++
		}
	}
	assert.Equal(t, workers*perWorker, count)
	assert.Equal(t, uint64(0), logger.state.DroppedLogs.Load())
}

func TestErrorRecovery(t *testing.T) {
	t.Run("failed initialization can be retried", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocked")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		logger := NewLogger()
		logger.setDiagnosticWriter(&bytes.Buffer{})

		err := logger.Initialize(filepath.Join(blocker, "app.log"), false, LevelInfo, true, RotationConfig{})
		assert.ErrorIs(t, err, ErrCreateDirectory)
		assert.False(t, logger.IsInitialized())

		good := filepath.Join(dir, "logs", "app.log")
		require.NoError(t, logger.Initialize(good, false, LevelInfo, true, RotationConfig{}))
		logger.Info("recovered")
		require.NoError(t, logger.Shutdown())

		lines := readLines(t, good)
		require.Len(t, lines, 2)
		assert.Equal(t, "recovered", messageOf(lines[0]))
	})

	t.Run("file removed by another process", func(t *testing.T) {
		logger, path := createTestLogger(t, withSync)

		logger.Info("before removal")
		require.NoError(t, os.Remove(path))
		// Writes go to the unlinked handle without error
		logger.Info("after removal")
		require.NoError(t, logger.Shutdown())
		assert.Equal(t, uint64(0), logger.state.DroppedLogs.Load())

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("many reinitializations", func(t *testing.T) {
		defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

		logger := NewLogger()
		dir := t.TempDir()
		for i := 0; i < 5; i++ {
			path := filepath.Join(dir, fmt.Sprintf("run%d.log", i))
			require.NoError(t, logger.Initialize(path, false, LevelInfo, true, RotationConfig{}))
			logger.Infof("run %d", i)
			require.NoError(t, logger.Shutdown())

			lines := readLines(t, path)
			require.Len(t, lines, 2)
			assert.Equal(t, fmt.Sprintf("run %d", i), messageOf(lines[0]))
		}
	})
}

// lockedWriter serializes writes to a shared buffer
type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
