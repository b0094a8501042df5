package logs

import (
	"fmt"
	"strings"
)

// Stream collects pieces of one message and logs it with a single call on End.
//
//	inst.Stream(logs.LevelWarning).Append("retry ", n, " of ", max).End()
type Stream struct {
	inst  *Instance
	level Level
	buf   strings.Builder
	done  bool
}

// Stream starts a message at level
func (i *Instance) Stream(level Level) *Stream {
	return &Stream{inst: i, level: level}
}

// Append writes each value in its default format, with no separators
func (s *Stream) Append(values ...any) *Stream {
	for _, v := range values {
		fmt.Fprint(&s.buf, v)
	}
	return s
}

// Appendf writes a formatted piece
func (s *Stream) Appendf(format string, args ...any) *Stream {
	fmt.Fprintf(&s.buf, format, args...)
	return s
}

// String returns what has been collected so far
func (s *Stream) String() string {
	return s.buf.String()
}

// End logs the collected message. Calling it again does nothing.
func (s *Stream) End() {
	if s.done {
		return
	}
	s.done = true
	s.inst.Log(s.level, s.buf.String())
}
