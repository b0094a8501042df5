package logs

import (
	"fmt"
	"strings"
)

// Level is the severity of a record. Lower values are more severe.
type Level int

const (
	LevelError   Level = -2
	LevelWarning Level = -1
	LevelNormal  Level = 0
	LevelDebug   Level = 1
	LevelInsane  Level = 2
)

// String returns the lowercase name of the level
func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNormal:
		return "normal"
	case LevelDebug:
		return "debug"
	case LevelInsane:
		return "insane"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Tag returns the fixed 3-character code written in front of each record
func (l Level) Tag() string {
	switch {
	case l <= LevelError:
		return "ERR"
	case l == LevelWarning:
		return "WRN"
	case l == LevelNormal:
		return "   "
	case l == LevelDebug:
		return "DBG"
	default:
		return "INS"
	}
}

// ParseLevel converts a level name into a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "err":
		return LevelError, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "normal", "info", "":
		return LevelNormal, nil
	case "debug":
		return LevelDebug, nil
	case "insane", "trace":
		return LevelInsane, nil
	}
	return LevelNormal, fmt.Errorf("%w: unknown log level %q", ErrBadArguments, s)
}

// OverflowAction decides what happens when a file outgrows its max size
type OverflowAction int

const (
	OverflowNone OverflowAction = iota
	OverflowTruncate
	OverflowRotate
)

// String returns the lowercase name of the action
func (a OverflowAction) String() string {
	switch a {
	case OverflowNone:
		return "none"
	case OverflowTruncate:
		return "truncate"
	case OverflowRotate:
		return "rotate"
	default:
		return fmt.Sprintf("overflow(%d)", int(a))
	}
}

// ParseOverflowAction converts an action name into an OverflowAction
func ParseOverflowAction(s string) (OverflowAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return OverflowNone, nil
	case "truncate", "":
		return OverflowTruncate, nil
	case "rotate":
		return OverflowRotate, nil
	}
	return OverflowNone, fmt.Errorf("%w: unknown overflow action %q", ErrBadArguments, s)
}
