package log

import "time"

// TimerSet holds all timers used in processLogs
type TimerSet struct {
	flushTicker   *time.Ticker
	summaryTicker *time.Ticker
	summaryChan   <-chan time.Time // nil unless auto summary is enabled
}

// setupProcessingTimers creates and configures all necessary timers for the processor
func (l *Logger) setupProcessingTimers() *TimerSet {
	timers := &TimerSet{}

	c := l.getConfig()

	// Set up flush timer
	flushInterval := c.FlushIntervalMs
	if flushInterval <= 0 {
		flushInterval = DefaultConfig().FlushIntervalMs
	}
	timers.flushTicker = time.NewTicker(time.Duration(flushInterval) * time.Millisecond)

	// Set up summary timer
	timers.summaryChan = l.setupSummaryTimer(timers)

	return timers
}

// closeProcessingTimers stops all active timers
func (l *Logger) closeProcessingTimers(timers *TimerSet) {
	timers.flushTicker.Stop()
	if timers.summaryTicker != nil {
		timers.summaryTicker.Stop()
	}
}

// setupSummaryTimer configures the summary timer if auto summary is enabled.
// It ticks at a quarter of the summary interval; LogSummaryIfDue still enforces the interval.
func (l *Logger) setupSummaryTimer(timers *TimerSet) <-chan time.Time {
	c := l.getConfig()
	if !c.AutoSummary {
		return nil
	}

	interval := l.summaryInterval() / 4
	if interval < minWaitTime {
		interval = minWaitTime
	}
	timers.summaryTicker = time.NewTicker(interval)
	return timers.summaryTicker.C
}
