package log

import (
	"bytes"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/Lineance/Lumenaris-sub000/sanitizer"
)

// serializer renders records into a reusable line buffer.
// It is owned by whoever holds the logger's writer lock.
type serializer struct {
	buf             []byte
	timestampFormat string
	sanitizer       *sanitizer.Sanitizer
}

// newSerializer creates a serializer instance.
func newSerializer(timestampFormat string, sanitize bool) *serializer {
	s := &serializer{
		buf:             make([]byte, 0, lineBufferSize),
		timestampFormat: defaultTimestampFormat,
	}
	s.setTimestampFormat(timestampFormat)
	if sanitize {
		s.sanitizer = sanitizer.New(sanitizer.HexEncode)
	}
	return s
}

// reset clears the serializer buffer for reuse.
func (s *serializer) reset() {
	s.buf = s.buf[:0]
}

// formatLine renders "[timestamp] [LEVEL]<context> message\n".
// A nil frame renders no context suffix.
func (s *serializer) formatLine(timestamp time.Time, level int64, frame *ContextFrame, message string) []byte {
	s.reset()

	s.buf = append(s.buf, '[')
	s.buf = timestamp.AppendFormat(s.buf, s.timestampFormat)
	s.buf = append(s.buf, "] ["...)
	s.buf = append(s.buf, levelToString(level)...)
	s.buf = append(s.buf, ']')

	if frame != nil {
		s.appendContext(frame)
	}

	s.buf = append(s.buf, ' ')
	s.buf = s.sanitizer.Append(s.buf, message)
	s.buf = append(s.buf, '\n')
	return s.buf
}

// appendContext appends only the fields of the frame that are set.
func (s *serializer) appendContext(frame *ContextFrame) {
	if frame.Label != "" {
		s.buf = append(s.buf, '[')
		s.buf = s.sanitizer.Append(s.buf, frame.Label)
		s.buf = append(s.buf, ']')
	}

	if frame.BatchIndex >= 0 {
		s.buf = append(s.buf, " Batch:"...)
		s.buf = strconv.AppendInt(s.buf, int64(frame.BatchIndex), 10)
	}

	if frame.PrimitiveCount > 0 {
		s.buf = append(s.buf, " Tri:"...)
		if frame.PrimitiveCount >= primitiveThousands {
			s.buf = strconv.AppendInt(s.buf, int64(frame.PrimitiveCount/primitiveThousands), 10)
			s.buf = append(s.buf, 'k')
		} else {
			s.buf = strconv.AppendInt(s.buf, int64(frame.PrimitiveCount), 10)
		}
	}

	if frame.CallCount > 0 {
		s.buf = append(s.buf, " DrawCalls:"...)
		s.buf = strconv.AppendInt(s.buf, int64(frame.CallCount), 10)
	}

	if frame.ResourceA != "" || frame.ResourceB != "" {
		s.buf = append(s.buf, " Res:"...)
		s.buf = s.sanitizer.Append(s.buf, frame.ResourceA)
		if frame.ResourceA != "" && frame.ResourceB != "" {
			s.buf = append(s.buf, ',')
		}
		s.buf = s.sanitizer.Append(s.buf, frame.ResourceB)
	}
}

// Update cached format
func (s *serializer) setTimestampFormat(format string) {
	if format == "" {
		format = defaultTimestampFormat
	}
	s.timestampFormat = format
}

// dumpConfig renders arbitrary values compactly for Dump.
var dumpConfig = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// dumpValue renders v with spew, folding the multi-line dump onto one line.
func dumpValue(v any) string {
	var b bytes.Buffer
	dumpConfig.Fdump(&b, v)
	out := bytes.TrimSpace(b.Bytes())
	out = bytes.ReplaceAll(out, []byte("\n"), []byte(" "))
	return string(collapseSpaces(out))
}

// collapseSpaces squeezes runs of spaces left by spew's indentation.
func collapseSpaces(b []byte) []byte {
	out := b[:0]
	prevSpace := false
	for _, c := range b {
		if c == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		out = append(out, c)
	}
	return out
}
