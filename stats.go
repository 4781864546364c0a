package log

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Statistics aggregates named counters and gauges updated from hot call sites.
// Every update is a single atomic operation; no formatting happens until a summary is built.
type Statistics struct {
	counters  sync.Map // string -> *atomic.Int64
	gauges    sync.Map // string -> *atomic.Float64
	delivered atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the statistics
type StatsSnapshot struct {
	Counters  map[string]int64
	Gauges    map[string]float64
	Delivered int64
}

func newStatistics() *Statistics {
	return &Statistics{}
}

func (s *Statistics) counter(name string) *atomic.Int64 {
	if v, ok := s.counters.Load(name); ok {
		return v.(*atomic.Int64)
	}
	v, _ := s.counters.LoadOrStore(name, atomic.NewInt64(0))
	return v.(*atomic.Int64)
}

func (s *Statistics) gauge(name string) *atomic.Float64 {
	if v, ok := s.gauges.Load(name); ok {
		return v.(*atomic.Float64)
	}
	v, _ := s.gauges.LoadOrStore(name, atomic.NewFloat64(0))
	return v.(*atomic.Float64)
}

// Increment adds one to the named counter
func (s *Statistics) Increment(name string) {
	s.counter(name).Inc()
}

// Add adds delta to the named counter
func (s *Statistics) Add(name string, delta int64) {
	s.counter(name).Add(delta)
}

// SetGauge stores value in the named gauge
func (s *Statistics) SetGauge(name string, value float64) {
	s.gauge(name).Store(value)
}

// AddGauge accumulates delta into the named gauge
func (s *Statistics) AddGauge(name string, delta float64) {
	s.gauge(name).Add(delta)
}

func (s *Statistics) recordDelivered() {
	s.delivered.Inc()
}

// Snapshot copies the current values without resetting them
func (s *Statistics) Snapshot() StatsSnapshot {
	return s.collect(false)
}

// Reset zeroes every counter and gauge; registered names are kept
func (s *Statistics) Reset() {
	s.collect(true)
}

// drain copies and zeroes in one pass so no increment is lost between the two
func (s *Statistics) drain() StatsSnapshot {
	return s.collect(true)
}

func (s *Statistics) collect(zero bool) StatsSnapshot {
	snap := StatsSnapshot{
		Counters: make(map[string]int64),
		Gauges:   make(map[string]float64),
	}

	s.counters.Range(func(k, v any) bool {
		c := v.(*atomic.Int64)
		if zero {
			snap.Counters[k.(string)] = c.Swap(0)
		} else {
			snap.Counters[k.(string)] = c.Load()
		}
		return true
	})

	s.gauges.Range(func(k, v any) bool {
		g := v.(*atomic.Float64)
		if zero {
			snap.Gauges[k.(string)] = g.Swap(0)
		} else {
			snap.Gauges[k.(string)] = g.Load()
		}
		return true
	})

	if zero {
		snap.Delivered = s.delivered.Swap(0)
	} else {
		snap.Delivered = s.delivered.Load()
	}
	return snap
}

// summaryLine renders the snapshot as a single human-readable line
func (snap StatsSnapshot) summaryLine(seq uint64, window time.Duration, rotations, rotationFailures uint64) string {
	buf := make([]byte, 0, 128)
	buf = append(buf, "Stats seq="...)
	buf = strconv.AppendUint(buf, seq, 10)
	buf = append(buf, " window="...)
	buf = strconv.AppendFloat(buf, window.Seconds(), 'f', 2, 64)
	buf = append(buf, "s "...)
	buf = append(buf, statDelivered...)
	buf = append(buf, '=')
	buf = strconv.AppendInt(buf, snap.Delivered, 10)
	buf = append(buf, " rotations="...)
	buf = strconv.AppendUint(buf, rotations, 10)
	if rotationFailures > 0 {
		buf = append(buf, " rotation_failures="...)
		buf = strconv.AppendUint(buf, rotationFailures, 10)
	}

	for _, name := range sortedKeys(snap.Counters) {
		buf = append(buf, ' ')
		buf = append(buf, name...)
		buf = append(buf, '=')
		buf = strconv.AppendInt(buf, snap.Counters[name], 10)
	}

	for _, name := range sortedKeys(snap.Gauges) {
		buf = append(buf, ' ')
		buf = append(buf, name...)
		buf = append(buf, '=')
		buf = strconv.AppendFloat(buf, snap.Gauges[name], 'f', 3, 64)
	}

	return string(buf)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IncrementCounter adds one to the named counter.
func (l *Logger) IncrementCounter(name string) {
	l.stats.Increment(name)
}

// AddCounter adds delta to the named counter.
func (l *Logger) AddCounter(name string, delta int64) {
	l.stats.Add(name, delta)
}

// SetGaugeValue stores value in the named gauge.
func (l *Logger) SetGaugeValue(name string, value float64) {
	l.stats.SetGauge(name, value)
}

// AddGaugeValue accumulates delta into the named gauge.
func (l *Logger) AddGaugeValue(name string, delta float64) {
	l.stats.AddGauge(name, delta)
}

// ResetStatistics zeroes all counters and gauges.
func (l *Logger) ResetStatistics() {
	l.stats.Reset()
}

// Statistics returns a snapshot of the current counters and gauges.
func (l *Logger) Statistics() StatsSnapshot {
	return l.stats.Snapshot()
}

// LogSummaryIfDue emits one INFO summary line and resets the statistics
// when the summary interval has elapsed since the last one.
// Safe to call from any goroutine; concurrent callers emit at most one line per window.
func (l *Logger) LogSummaryIfDue() {
	if !l.state.IsInitialized.Load() || l.state.ShutdownCalled.Load() {
		return
	}

	now := time.Now().UnixNano()
	last := l.state.LastSummary.Load()
	if now-last < int64(l.summaryInterval()) {
		return
	}
	if !l.state.LastSummary.CompareAndSwap(last, now) {
		return // Another caller took this window
	}

	snap := l.stats.drain()
	seq := l.state.SummarySequence.Add(1)
	msg := snap.summaryLine(seq, time.Duration(now-last), l.state.TotalRotations.Load(), l.state.RotationFailures.Load())
	l.log(LevelInfo, msg)
}

func (l *Logger) summaryInterval() time.Duration {
	ms := l.getConfig().SummaryIntervalMs
	if ms <= 0 {
		return defaultSummaryInterval
	}
	return time.Duration(ms) * time.Millisecond
}
