// Package sanitizer keeps log messages on a single printable line by
// transforming non-printable runes before they reach the output buffer.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode/utf8"
)

// Mode selects how non-printable runes are handled
type Mode int

const (
	None      Mode = iota // Pass input through unchanged
	HexEncode             // Replace the rune's UTF-8 bytes with "<xxyy>"
	Strip                 // Drop the rune
)

// Sanitizer applies a Mode to strings appended into caller-owned buffers
type Sanitizer struct {
	mode Mode
}

// New creates a Sanitizer for the given mode
func New(mode Mode) *Sanitizer {
	return &Sanitizer{mode: mode}
}

// Mode returns the configured mode
func (s *Sanitizer) Mode() Mode {
	return s.mode
}

// Append appends str to dst with non-printable runes transformed and returns the extended buffer.
// Clean input is copied in one step.
func (s *Sanitizer) Append(dst []byte, str string) []byte {
	if s == nil || s.mode == None || Clean(str) {
		return append(dst, str...)
	}

	for i := 0; i < len(str); {
		r, size := utf8.DecodeRuneInString(str[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid byte, never printable
			dst = s.transform(dst, str[i:i+1])
			i++
			continue
		}
		if strconv.IsPrint(r) {
			dst = append(dst, str[i:i+size]...)
		} else {
			dst = s.transform(dst, str[i:i+size])
		}
		i += size
	}
	return dst
}

// Sanitize returns the transformed string
func (s *Sanitizer) Sanitize(str string) string {
	if s == nil || s.mode == None || Clean(str) {
		return str
	}
	return string(s.Append(make([]byte, 0, len(str)+16), str))
}

// Clean reports whether str consists only of printable runes
func Clean(str string) bool {
	for i := 0; i < len(str); i++ {
		c := str[i]
		if c < ' ' || c == 0x7f {
			return false
		}
		if c >= utf8.RuneSelf {
			// Multi-byte input takes the slow path
			for _, r := range str[i:] {
				if r == utf8.RuneError || !strconv.IsPrint(r) {
					return false
				}
			}
			return true
		}
	}
	return true
}

func (s *Sanitizer) transform(dst []byte, raw string) []byte {
	switch s.mode {
	case Strip:
		return dst
	default:
		dst = append(dst, '<')
		dst = hex.AppendEncode(dst, []byte(raw))
		return append(dst, '>')
	}
}
