package game

// EventKind names a discrete notification for the presentation layer.
type EventKind string

const (
	EventCatch      EventKind = "catch"
	EventTransition EventKind = "transition"
	EventTutorial   EventKind = "tutorial"
	EventTooEarly   EventKind = "too_early"
	EventWeather    EventKind = "weather"
	EventIncome     EventKind = "income"
	EventOffline    EventKind = "offline"
)

// Event is emitted by the simulation. Only the fields relevant to Kind are set.
type Event struct {
	Kind     EventKind   `json:"kind"`
	Catch    *CaughtFish `json:"catch,omitempty"`
	Rarity   Rarity      `json:"rarity,omitempty"`
	From     Phase       `json:"from,omitempty"`
	To       Phase       `json:"to,omitempty"`
	Tutorial int         `json:"tutorial,omitempty"`
	Weather  Weather     `json:"weather,omitempty"`
	Amount   int64       `json:"amount,omitempty"`
	Gems     int64       `json:"gems,omitempty"`
}

// Emitter receives simulation events. The simulation never waits on it.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

// Emit calls f(e).
func (f EmitterFunc) Emit(e Event) {
	f(e)
}

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Emitter = discard{}
