// Package cast defines the remote-output control surface and an HTTP
// bridge client implementing it. When a cast session is active the
// playback service mirrors transport commands here instead of the local
// audio backend.
package cast

import (
	"context"
	"errors"
)

// ErrNoReceiver is returned when no receiver is configured.
var ErrNoReceiver = errors.New("no cast receiver configured")

// Receiver is the remote playback control surface. Every call can fail:
// the receiver is a network peer, and the playback service treats
// failures as "casting ended" (or, for session start, rolls the routing
// flag back).
type Receiver interface {
	// Available reports whether a receiver is reachable at all.
	Available() bool
	// Casting reports whether a session is currently active.
	Casting() bool
	// RequestSession starts a session on the receiver.
	RequestSession(ctx context.Context) error
	// LoadMedia points the receiver at a direct media URL.
	LoadMedia(ctx context.Context, url string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	// SeekTo moves the receiver to an absolute position in seconds.
	SeekTo(ctx context.Context, seconds float64) error
	// Stop ends the session.
	Stop(ctx context.Context) error
}

// Unavailable is the Receiver used when no bridge is configured. It
// reports no receiver and refuses sessions; transport calls are no-ops
// since no session can ever start.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) Casting() bool { return false }

func (Unavailable) RequestSession(_ context.Context) error { return ErrNoReceiver }

func (Unavailable) LoadMedia(_ context.Context, _ string) error { return ErrNoReceiver }

func (Unavailable) Play(_ context.Context) error { return nil }

func (Unavailable) Pause(_ context.Context) error { return nil }

func (Unavailable) SeekTo(_ context.Context, _ float64) error { return nil }

func (Unavailable) Stop(_ context.Context) error { return nil }

var _ Receiver = Unavailable{}
