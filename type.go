package log

import (
	"io"
	"strings"
	"time"
)

// logRecord represents a single queued log entry.
// Formatting is deferred to the writer.
type logRecord struct {
	Level     int64
	Message   string
	TimeStamp time.Time
}

// ContextFrame is a set of ambient labels merged into every line while it is the active frame.
// BatchIndex uses -1 for unset; counts are omitted when zero.
// Build frames with NewContextFrame: a zero ContextFrame has BatchIndex 0 and renders " Batch:0".
type ContextFrame struct {
	Label          string
	BatchIndex     int
	PrimitiveCount int
	CallCount      int
	ResourceA      string
	ResourceB      string
}

// NewContextFrame returns a frame with only the label set.
func NewContextFrame(label string) ContextFrame {
	return ContextFrame{Label: label, BatchIndex: -1}
}

// WithBatch returns a copy of the frame with the batch index set.
func (f ContextFrame) WithBatch(index int) ContextFrame {
	f.BatchIndex = index
	return f
}

// WithPrimitives returns a copy of the frame with the primitive count set.
func (f ContextFrame) WithPrimitives(count int) ContextFrame {
	f.PrimitiveCount = count
	return f
}

// WithCalls returns a copy of the frame with the call count set.
func (f ContextFrame) WithCalls(count int) ContextFrame {
	f.CallCount = count
	return f
}

// WithResources returns a copy of the frame with the resource names set.
func (f ContextFrame) WithResources(a, b string) ContextFrame {
	f.ResourceA = a
	f.ResourceB = b
	return f
}

// RotationKind selects what triggers a rotation of the backing file.
type RotationKind int

// String returns the config-file spelling of the kind.
func (k RotationKind) String() string {
	switch k {
	case RotateNone:
		return "none"
	case RotateSize:
		return "size"
	case RotateDaily:
		return "daily"
	case RotateHourly:
		return "hourly"
	default:
		return "unknown"
	}
}

// ParseRotationKind converts a config string to a RotationKind.
func ParseRotationKind(s string) (RotationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return RotateNone, nil
	case "size":
		return RotateSize, nil
	case "daily":
		return RotateDaily, nil
	case "hourly":
		return RotateHourly, nil
	default:
		return RotateNone, fmtErrorf("invalid rotation kind: '%s' (use none, size, daily, or hourly)", s)
	}
}

// RotationConfig describes when and how the backing file is rotated.
// CompressOld is stored but has no effect.
type RotationConfig struct {
	Kind           RotationKind
	MaxBytes       uint64
	MaxGenerations int
	CompressOld    bool
}

// sink is a wrapper around an io.Writer, atomic value type change workaround
type sink struct {
	w io.Writer
}
