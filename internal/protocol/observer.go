package protocol

import "github.com/danmuck/ubxwire/internal/protocol/schema"

// EventKind classifies what happened to one frame.
type EventKind uint8

const (
	// EventAccepted is a valid frame decoded by a registered codec.
	EventAccepted EventKind = iota + 1
	// EventUnrecognized is a valid frame with no registered codec.
	EventUnrecognized
	// EventRejected is a frame dropped by the parser.
	EventRejected
	// EventDecodeFailed is a valid frame whose payload did not fit its
	// definition.
	EventDecodeFailed
)

var eventKindNames = map[EventKind]string{
	EventAccepted:     "accepted",
	EventUnrecognized: "unrecognized",
	EventRejected:     "rejected",
	EventDecodeFailed: "decode_failed",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event describes one frame outcome. Name is empty for unrecognized and
// rejected frames; Len is the declared payload length.
type Event struct {
	Kind  EventKind
	Class uint8
	ID    uint8
	Name  string
	Len   int
	Err   error
}

func (e Event) Key() schema.Key {
	return schema.Key{Class: e.Class, ID: e.ID}
}

// Observer receives one Event per frame outcome. Observe runs on the
// decoding goroutine and must not block.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) Observe(e Event) {
	for _, obs := range o {
		if obs != nil {
			obs.Observe(e)
		}
	}
}
