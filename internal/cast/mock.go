package cast

import "context"

// Mock is a test double for a Receiver.
type Mock struct {
	available bool
	casting   bool

	sessionErr error
	loadErr    error
	playErr    error

	SessionCalls int
	LoadCalls    []string
	PlayCalls    int
	PauseCalls   int
	SeekCalls    []float64
	StopCalls    int
}

// NewMock creates an available, idle mock receiver.
func NewMock() *Mock {
	return &Mock{available: true}
}

func (m *Mock) Available() bool { return m.available }

func (m *Mock) Casting() bool { return m.casting }

func (m *Mock) RequestSession(_ context.Context) error {
	m.SessionCalls++
	if m.sessionErr != nil {
		return m.sessionErr
	}
	m.casting = true
	return nil
}

func (m *Mock) LoadMedia(_ context.Context, url string) error {
	m.LoadCalls = append(m.LoadCalls, url)
	return m.loadErr
}

func (m *Mock) Play(_ context.Context) error {
	m.PlayCalls++
	return m.playErr
}

func (m *Mock) Pause(_ context.Context) error {
	m.PauseCalls++
	return m.playErr
}

func (m *Mock) SeekTo(_ context.Context, seconds float64) error {
	m.SeekCalls = append(m.SeekCalls, seconds)
	return nil
}

func (m *Mock) Stop(_ context.Context) error {
	m.StopCalls++
	m.casting = false
	return nil
}

// Test helpers

func (m *Mock) SetAvailable(v bool) { m.available = v }

func (m *Mock) SetSessionError(err error) { m.sessionErr = err }

func (m *Mock) SetLoadError(err error) { m.loadErr = err }

func (m *Mock) SetPlayError(err error) { m.playErr = err }

// Verify Mock implements Receiver at compile time.
var _ Receiver = (*Mock)(nil)
