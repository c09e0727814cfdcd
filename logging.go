package variants

import "time"

// MatchLogEvent describes one predicate evaluation for logging.
type MatchLogEvent struct {
	Engine    string
	Expr      string
	VariantID string
	Duration  time.Duration
	Err       error
}

// MatchLogger records predicate evaluations.
type MatchLogger interface {
	LogMatch(MatchLogEvent)
}

// MatchLoggerFunc adapts a function to MatchLogger.
type MatchLoggerFunc func(MatchLogEvent)

// LogMatch implements MatchLogger.
func (f MatchLoggerFunc) LogMatch(event MatchLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopMatchLogger struct{}

func (noopMatchLogger) LogMatch(MatchLogEvent) {}
