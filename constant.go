package log

import (
	"time"
)

// Log level constants
const (
	LevelDebug   int64 = -4
	LevelInfo    int64 = 0
	LevelWarning int64 = 4
	LevelError   int64 = 8
)

// Rotation kinds
const (
	RotateNone RotationKind = iota
	RotateSize
	RotateDaily
	RotateHourly
)

// Rendering
const (
	// Default line timestamp, local time with millisecond precision
	defaultTimestampFormat = "2006-01-02 15:04:05.000"
	// Initial capacity of the writer's reusable line buffer
	lineBufferSize = 1024
	// Primitive counts at or above this are rendered in thousands
	primitiveThousands = 1000
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Default interval between statistics summaries
	defaultSummaryInterval = 5 * time.Second
	// Elapsed-time rotation periods
	dailyPeriod  = 24 * time.Hour
	hourlyPeriod = time.Hour
)

// Built-in statistics counter names
const (
	statDelivered = "delivered"
)

const shutdownMessage = "Logger shutting down"
