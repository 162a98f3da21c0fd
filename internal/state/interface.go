package state

// Interface abstracts the state manager for consumers and tests.
type Interface interface {
	GetQueue() (*QueueState, error)
	SaveQueue(qs *QueueState) error
	ClearQueue() error

	GetVolume() (volume float64, muted bool, err error)
	SaveVolume(volume float64, muted bool) error

	GetLastfmSession() (*LastfmSession, error)
	SaveLastfmSession(username, sessionKey string) error
	DeleteLastfmSession() error
	AddPendingScrobble(s PendingScrobble) error
	GetPendingScrobbles(limit int) ([]PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	MarkScrobbleAttempt(id int64, lastError string) error

	Close() error
}

var _ Interface = (*Manager)(nil)
