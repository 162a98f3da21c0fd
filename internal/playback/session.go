// Package playback implements the playback session state machine: a
// single queue-aware session mutated only through named transitions,
// with backend effects (local audio or cast receiver) dispatched as
// reactions to committed transitions.
package playback

import "github.com/zaptrax/zaptrax/internal/track"

// State is the coarse playback state derived from the session.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Session is the complete playback state. It is a value: transitions
// take a Session and return a new one, and the service is the only
// writer of the live instance.
type Session struct {
	Current *track.Track
	Queue   []track.Track
	Index   int

	Playing bool
	Casting bool
	Loading bool

	// Position and Duration are in seconds.
	Position float64
	Duration float64

	// Volume in [0,1], applied to the local backend only.
	Volume float64

	// Err holds the current user-facing playback error, empty when none.
	Err string
}

// NewSession returns an empty stopped session.
func NewSession() Session {
	return Session{Index: -1, Volume: 1.0}
}

// State derives the coarse state from the session fields.
func (s Session) State() State {
	switch {
	case s.Current == nil:
		return StateStopped
	case s.Playing:
		return StatePlaying
	default:
		return StatePaused
	}
}

// HasNext reports whether the queue has a track after the current index.
func (s Session) HasNext() bool {
	return s.Index >= 0 && s.Index < len(s.Queue)-1
}

// HasPrevious reports whether the queue has a track before the current
// index.
func (s Session) HasPrevious() bool {
	return s.Index > 0
}
