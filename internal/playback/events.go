package playback

import "github.com/zaptrax/zaptrax/internal/track"

// StateChange is emitted when the coarse playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback moves to a different track.
//
// Emitted by LoadTrack, Next, Previous, PlayByIndex and the natural
// end-of-track advance. Pause/Stop never emit TrackChange. Consumers
// (scrobbler, MPRIS, now-playing publisher) hang all track side effects
// off this event.
type TrackChange struct {
	Previous      *track.Track
	Current       *track.Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []track.Track
	Index  int
}

// PositionChange is emitted when a seek occurs. Position is in seconds.
type PositionChange struct {
	Position float64
}

// VolumeChange is emitted when the volume changes.
type VolumeChange struct {
	Volume float64
}

// CastChange is emitted when output authority moves between the local
// backend and the cast receiver.
type CastChange struct {
	Casting bool
}

// ErrorEvent is emitted when a backend operation fails.
type ErrorEvent struct {
	Operation string // e.g. "play", "seek", "cast"
	Err       error
}
