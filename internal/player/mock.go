package player

import "time"

// Mock is a test double for Player.
type Mock struct {
	state       State
	position    time.Duration
	duration    time.Duration
	volumeLevel float64
	playErr     error

	playCalls   []string
	pauseCalls  int
	resumeCalls int
	seekCalls   []time.Duration

	finishedCh chan struct{}
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:       Stopped,
		volumeLevel: 1.0,
		finishedCh:  make(chan struct{}, 1),
	}
}

func (m *Mock) Play(url string) error {
	m.playCalls = append(m.playCalls, url)
	if m.playErr != nil {
		return m.playErr
	}
	m.state = Playing
	return nil
}

func (m *Mock) Stop() { m.state = Stopped }

func (m *Mock) Pause() {
	m.pauseCalls++
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Resume() {
	m.resumeCalls++
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) State() State { return m.state }

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) SeekTo(pos time.Duration) error {
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
	return nil
}

func (m *Mock) SetVolume(level float64) { m.volumeLevel = level }

func (m *Mock) Volume() float64 { return m.volumeLevel }

func (m *Mock) FinishedChan() <-chan struct{} { return m.finishedCh }

func (m *Mock) Close() error {
	m.state = Stopped
	return nil
}

// Test helpers

func (m *Mock) SetPlayError(err error) { m.playErr = err }

func (m *Mock) SetPosition(d time.Duration) { m.position = d }

func (m *Mock) SetDuration(d time.Duration) { m.duration = d }

func (m *Mock) PlayCalls() []string { return m.playCalls }

func (m *Mock) PauseCalls() int { return m.pauseCalls }

func (m *Mock) ResumeCalls() int { return m.resumeCalls }

func (m *Mock) SeekCalls() []time.Duration { return m.seekCalls }

// SimulateFinished simulates a track playing to its natural end.
func (m *Mock) SimulateFinished() {
	select {
	case m.finishedCh <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
