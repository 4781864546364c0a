package log

import (
	"os"
	"sync/atomic"
	"time"
)

// State encapsulates the runtime state of the logger
type State struct {
	IsInitialized   atomic.Bool
	ShutdownCalled  atomic.Bool
	Async           atomic.Bool // Delivery mode fixed at initialization
	Running         atomic.Bool // Async processor accepting work
	ProcessorExited atomic.Bool // Tracks if the processor goroutine is running or has exited

	// Hot-path configuration, readable from any goroutine
	MinLevel       atomic.Int64
	ConsoleEnabled atomic.Bool

	flushRequestChan chan chan struct{} // Channel to request a flush
	stopChan         chan struct{}      // Closed to stop the processor
	exitedChan       chan struct{}      // Closed by the processor on exit

	// Writer-owned, guarded by Logger.writeMu
	currentFile      *os.File
	lastRotation     time.Time
	rotationDegraded bool

	CurrentSize    atomic.Int64 // Size of the current log file
	ConsoleWriter  atomic.Value // stores *sink (os.Stdout or os.Stderr)
	DiagnosticSink atomic.Value // stores *sink for internal diagnostics

	// Statistics bookkeeping
	LastSummary        atomic.Int64  // UnixNano of the last summary
	SummarySequence    atomic.Uint64 // Counter for summary sequence numbers
	LoggerStartTime    atomic.Value  // Stores time.Time
	TotalLogsProcessed atomic.Uint64 // Records written to the file
	TotalRotations     atomic.Uint64 // Counter for successful rotations
	RotationFailures   atomic.Uint64 // Counter for failed rotations
	DroppedLogs        atomic.Uint64 // Records that could not be written
}
