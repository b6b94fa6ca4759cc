package events

import "time"

// Event is a notification about one training run
type Event interface {
	Type() string
	Timestamp() time.Time
	RunID() string
}

// Meta carries the fields every training event shares
type Meta struct {
	Kind string    `json:"type"`
	At   time.Time `json:"timestamp"`
	Run  string    `json:"run_id"`
}

func (m Meta) Type() string         { return m.Kind }
func (m Meta) Timestamp() time.Time { return m.At }
func (m Meta) RunID() string        { return m.Run }

func stamp(kind, runID string) Meta {
	return Meta{Kind: kind, At: time.Now(), Run: runID}
}

// Publisher is what a trainer needs to emit events
type Publisher interface {
	Publish(Event)
}

// Subscriber receives the event types named by Topics. A subscriber with no
// topics receives every training event.
type Subscriber interface {
	ID() string
	Topics() []string
	HandleEvent(Event)
}
