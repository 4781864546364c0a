package log

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsConcurrentUpdates(t *testing.T) {
	s := newStatistics()

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Increment("batches")
				s.Add("primitives", 3)
				s.AddGauge("frame_ms", 0.5)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, int64(workers*perWorker), snap.Counters["batches"])
	assert.Equal(t, int64(workers*perWorker*3), snap.Counters["primitives"])
	assert.InDelta(t, float64(workers*perWorker)*0.5, snap.Gauges["frame_ms"], 1e-6)

	s.SetGauge("frame_ms", 16.6)
	assert.InDelta(t, 16.6, s.Snapshot().Gauges["frame_ms"], 1e-9)
}

func TestStatisticsResetAndDrain(t *testing.T) {
	s := newStatistics()
	s.Add("draw_calls", 10)
	s.SetGauge("frame_ms", 2)
	s.recordDelivered()

	// Snapshot leaves values in place
	first := s.Snapshot()
	assert.Equal(t, int64(10), first.Counters["draw_calls"])
	assert.Equal(t, int64(1), first.Delivered)
	assert.Equal(t, int64(10), s.Snapshot().Counters["draw_calls"])

	drained := s.drain()
	assert.Equal(t, int64(10), drained.Counters["draw_calls"])
	assert.Equal(t, int64(1), drained.Delivered)

	after := s.Snapshot()
	assert.Contains(t, after.Counters, "draw_calls", "names survive a reset")
	assert.Zero(t, after.Counters["draw_calls"])
	assert.Zero(t, after.Gauges["frame_ms"])
	assert.Zero(t, after.Delivered)

	s.Add("draw_calls", 4)
	s.Reset()
	assert.Zero(t, s.Snapshot().Counters["draw_calls"])
}

func TestSummaryLine(t *testing.T) {
	snap := StatsSnapshot{
		Counters:  map[string]int64{"primitives": 12000, "batches": 8},
		Gauges:    map[string]float64{"frame_ms": 16.25},
		Delivered: 42,
	}

	line := snap.summaryLine(3, 5120*time.Millisecond, 2, 0)
	assert.Equal(t, "Stats seq=3 window=5.12s delivered=42 rotations=2 batches=8 primitives=12000 frame_ms=16.250", line)

	line = snap.summaryLine(4, time.Second, 2, 1)
	assert.Contains(t, line, "rotations=2 rotation_failures=1 batches=8")

	empty := StatsSnapshot{}
	assert.Equal(t, "Stats seq=1 window=0.00s delivered=0 rotations=0", empty.summaryLine(1, 0, 0, 0))
}

func TestLogSummaryIfDue(t *testing.T) {
	t.Run("not due", func(t *testing.T) {
		logger, path := createTestLogger(t, withSync)
		logger.IncrementCounter("batches")

		logger.LogSummaryIfDue()
		require.NoError(t, logger.Shutdown())

		for _, line := range readLines(t, path) {
			assert.NotContains(t, line, "Stats seq=")
		}
	})

	t.Run("due", func(t *testing.T) {
		logger, path := createTestLogger(t, withSync, func(cfg *Config) {
			cfg.SummaryIntervalMs = 1
		})

		logger.Info("work")
		logger.AddCounter("batches", 5)
		logger.SetGaugeValue("frame_ms", 8)
		time.Sleep(5 * time.Millisecond)

		logger.LogSummaryIfDue()

		// Counters were reset by the summary
		snap := logger.Statistics()
		assert.Zero(t, snap.Counters["batches"])
		assert.Zero(t, snap.Gauges["frame_ms"])
		require.NoError(t, logger.Shutdown())

		lines := readLines(t, path)
		require.Len(t, lines, 3)
		summary := messageOf(lines[1])
		assert.True(t, strings.HasPrefix(summary, "Stats seq=1 window="), summary)
		assert.Contains(t, summary, "delivered=1")
		assert.Contains(t, summary, "batches=5")
		assert.Contains(t, summary, "frame_ms=8.000")
		assert.Contains(t, lines[1], "[INFO]")
	})

	t.Run("concurrent callers emit once", func(t *testing.T) {
		logger, path := createTestLogger(t, withSync, func(cfg *Config) {
			cfg.SummaryIntervalMs = 60_000
		})
		logger.state.LastSummary.Store(time.Now().Add(-2 * time.Minute).UnixNano())

		var wg sync.WaitGroup
		start := make(chan struct{})
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				logger.LogSummaryIfDue()
			}()
		}
		close(start)
		wg.Wait()
		require.NoError(t, logger.Shutdown())

		count := 0
		for _, line := range readLines(t, path) {
			if strings.Contains(line, "Stats seq=") {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("uninitialized", func(t *testing.T) {
		logger := NewLogger()
		logger.IncrementCounter("batches")
		logger.LogSummaryIfDue()
		assert.Equal(t, int64(1), logger.Statistics().Counters["batches"])
	})
}

func TestResetStatistics(t *testing.T) {
	logger := NewLogger()
	logger.AddCounter("draw_calls", 7)
	logger.AddGaugeValue("frame_ms", 1.5)
	logger.AddGaugeValue("frame_ms", 1.5)
	assert.InDelta(t, 3.0, logger.Statistics().Gauges["frame_ms"], 1e-9)

	logger.ResetStatistics()
	snap := logger.Statistics()
	assert.Zero(t, snap.Counters["draw_calls"])
	assert.Zero(t, snap.Gauges["frame_ms"])
}
