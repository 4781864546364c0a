package log

// processLogs is the main log processing loop running in a separate goroutine
func (l *Logger) processLogs(stop <-chan struct{}, exited chan<- struct{}) {
	defer close(exited)
	defer l.state.ProcessorExited.Store(true) // Ensure flag is set on exit

	// Set up timers
	timers := l.setupProcessingTimers()
	defer l.closeProcessingTimers(timers)

	// --- Main Loop ---
	for {
		select {
		case <-l.queue.notify:
			l.drainQueue()

		case <-stop:
			// Deliver everything accepted so far, then exit
			l.drainQueue()
			l.writeMu.Lock()
			l.performSync()
			l.writeMu.Unlock()
			return

		case <-timers.flushTicker.C:
			l.handleFlushTick()

		case confirmChan := <-l.state.flushRequestChan:
			l.handleFlushRequest(confirmChan)

		case <-timers.summaryChan:
			l.LogSummaryIfDue()
		}
	}
}

// drainQueue writes queued records one at a time, oldest first, until the queue is empty.
// The writer lock is released between records so sync-path callers are never starved.
func (l *Logger) drainQueue() {
	for {
		record, ok := l.queue.pop()
		if !ok {
			return
		}
		l.writeRecord(record)
	}
}

// handleFlushTick handles the periodic flush timer tick
func (l *Logger) handleFlushTick() {
	if !l.getConfig().EnablePeriodicSync {
		return
	}
	l.writeMu.Lock()
	l.performSync()
	l.writeMu.Unlock()
}

// handleFlushRequest handles an explicit flush request
func (l *Logger) handleFlushRequest(confirmChan chan struct{}) {
	l.drainQueue()
	l.writeMu.Lock()
	l.performSync()
	l.writeMu.Unlock()
	close(confirmChan) // Signal completion back to the Flush caller
}
