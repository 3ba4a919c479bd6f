package tracing

import hclog "github.com/hashicorp/go-hclog"

// Level is a tracing verbosity level, totally ordered from Off (least
// verbose) to Trace (most verbose).
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// hclogLevel maps a Level onto go-hclog's level lattice, used by
// HCLogSubscriber.
func (l Level) hclogLevel() hclog.Level {
	switch l {
	case LevelOff:
		return hclog.Off
	case LevelError:
		return hclog.Error
	case LevelWarn:
		return hclog.Warn
	case LevelInfo:
		return hclog.Info
	case LevelDebug:
		return hclog.Debug
	case LevelTrace:
		return hclog.Trace
	default:
		return hclog.NoLevel
	}
}

// allowedUnder reports whether an event/span at level l should be let
// through a stack whose current maximum-level cap is capLevel: l must be no
// more verbose than capLevel in the declared const ordering (off is least
// verbose, trace is most).
func (l Level) allowedUnder(capLevel Level) bool {
	return l <= capLevel
}
