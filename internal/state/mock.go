package state

import "sync"

// Mock is an in-memory Interface implementation for tests.
type Mock struct {
	mu sync.Mutex

	queue   *QueueState
	volume  float64
	muted   bool
	session *LastfmSession
	pending []PendingScrobble
	nextID  int64

	SaveQueueErr  error
	SaveVolumeErr error
}

func NewMock() *Mock {
	return &Mock{volume: 1.0, nextID: 1}
}

func (m *Mock) GetQueue() (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	return m.queue, nil
}

func (m *Mock) SaveQueue(qs *QueueState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveQueueErr != nil {
		return m.SaveQueueErr
	}
	m.queue = qs
	return nil
}

func (m *Mock) ClearQueue() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	return nil
}

func (m *Mock) GetVolume() (float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume, m.muted, nil
}

func (m *Mock) SaveVolume(volume float64, muted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveVolumeErr != nil {
		return m.SaveVolumeErr
	}
	m.volume = volume
	m.muted = muted
	return nil
}

func (m *Mock) GetLastfmSession() (*LastfmSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *Mock) SaveLastfmSession(username, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &LastfmSession{Username: username, SessionKey: sessionKey}
	return nil
}

func (m *Mock) DeleteLastfmSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *Mock) AddPendingScrobble(s PendingScrobble) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID
	m.nextID++
	m.pending = append(m.pending, s)
	return nil
}

func (m *Mock) GetPendingScrobbles(limit int) ([]PendingScrobble, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.pending) {
		limit = len(m.pending)
	}
	out := make([]PendingScrobble, limit)
	copy(out, m.pending[:limit])
	return out, nil
}

func (m *Mock) DeletePendingScrobble(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.pending {
		if s.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Mock) MarkScrobbleAttempt(id int64, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].ID == id {
			m.pending[i].Attempts++
			m.pending[i].LastError = lastError
			break
		}
	}
	return nil
}

func (m *Mock) Close() error { return nil }

var _ Interface = (*Mock)(nil)
