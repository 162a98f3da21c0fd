package player

import "time"

// Interface defines the local backend contract for dependency injection
// and testing.
type Interface interface {
	Play(url string) error
	Stop()
	Pause()
	Resume()
	State() State
	Position() time.Duration
	Duration() time.Duration
	SeekTo(pos time.Duration) error
	SetVolume(level float64)
	Volume() float64
	FinishedChan() <-chan struct{}
	Close() error
}
