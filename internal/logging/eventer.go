package logging

import "context"

// EventTypeKey is the attribute holding the event type in log output.
const EventTypeKey = "event_type"

// Eventer records semi-structured events. fieldPairs alternate string keys
// and values: k0, v0, k1, v1, ... Implementations must be safe for
// concurrent use.
type Eventer interface {
	Event(typ string, fieldPairs ...interface{})
}

// NopEventer drops every event.
type NopEventer struct{}

// Event implements Eventer.
func (NopEventer) Event(string, ...interface{}) {}

// LogEventer is an Eventer that writes every event as an Info line.
type LogEventer struct {
	log Logger
}

var _ Eventer = (*LogEventer)(nil)

// NewEventer routes events to l.
func NewEventer(l Logger) *LogEventer {
	return &LogEventer{log: l}
}

// Event implements Eventer.
func (e *LogEventer) Event(typ string, fieldPairs ...interface{}) {
	args := make([]any, 0, len(fieldPairs)+2)
	args = append(args, EventTypeKey, typ)
	args = append(args, fieldPairs...)
	e.log.Info(context.Background(), "event", args...)
}

// EventerOrNop returns e, or NopEventer when e is nil.
func EventerOrNop(e Eventer) Eventer {
	if e == nil {
		return NopEventer{}
	}
	return e
}
