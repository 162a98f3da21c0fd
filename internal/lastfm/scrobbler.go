package lastfm

import (
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/playback"
	"github.com/zaptrax/zaptrax/internal/state"
	"github.com/zaptrax/zaptrax/internal/track"
)

const (
	// minScrobbleLength is the shortest track Last.fm accepts scrobbles for.
	minScrobbleLength = 30 * time.Second

	// maxScrobblePoint caps the play time needed before a long track scrobbles.
	maxScrobblePoint = 4 * time.Minute

	pendingFlushBatch = 20
	maxScrobbleRetry  = 5
)

// Submitter is the Last.fm API surface the scrobbler needs.
type Submitter interface {
	UpdateNowPlaying(t ScrobbleTrack) error
	Scrobble(t ScrobbleTrack) error
}

var _ Submitter = (*Client)(nil)

// Scrobbler watches playback events and submits scrobbles. A track
// scrobbles once it has played for half its duration or four minutes,
// whichever comes first. Failed submissions are queued in state and
// retried after the next successful scrobble and on startup.
type Scrobbler struct {
	client Submitter
	store  state.Interface
	log    *zap.Logger
	now    func() time.Time

	// Current track accounting. Only touched from the run goroutine.
	current     *track.Track
	startedAt   time.Time
	playingFrom time.Time // zero while paused
	played      time.Duration
}

func NewScrobbler(client Submitter, store state.Interface, log *zap.Logger) *Scrobbler {
	return &Scrobbler{
		client: client,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// Run consumes playback events until the subscription is closed.
// Call in a goroutine.
func (s *Scrobbler) Run(sub *playback.Subscription) {
	s.flushPending()

	for {
		select {
		case e := <-sub.TrackChanged:
			s.handleTrackChange(e)
		case e := <-sub.StateChanged:
			s.handleStateChange(e)
		case <-sub.Done:
			s.finalize()
			return
		}
	}
}

func (s *Scrobbler) handleTrackChange(e playback.TrackChange) {
	s.finalize()

	s.current = e.Current
	s.startedAt = s.now()
	s.playingFrom = s.startedAt
	s.played = 0

	if e.Current == nil || e.Current.Artist == "" {
		return
	}
	if err := s.client.UpdateNowPlaying(s.scrobbleTrack(e.Current, s.startedAt)); err != nil {
		s.log.Debug("now playing update failed", zap.Error(err))
	}
}

func (s *Scrobbler) handleStateChange(e playback.StateChange) {
	switch e.Current {
	case playback.StatePlaying:
		if s.playingFrom.IsZero() {
			s.playingFrom = s.now()
		}
	case playback.StatePaused:
		s.accumulate()
	case playback.StateStopped:
		s.finalize()
	}
}

func (s *Scrobbler) accumulate() {
	if !s.playingFrom.IsZero() {
		s.played += s.now().Sub(s.playingFrom)
		s.playingFrom = time.Time{}
	}
}

// finalize scrobbles the current track if it played long enough, then
// clears the accounting.
func (s *Scrobbler) finalize() {
	s.accumulate()
	tr := s.current
	played := s.played
	startedAt := s.startedAt

	s.current = nil
	s.played = 0

	if tr == nil || tr.Artist == "" {
		return
	}

	duration := time.Duration(tr.Duration * float64(time.Second))
	if duration < minScrobbleLength {
		return
	}
	threshold := duration / 2
	if threshold > maxScrobblePoint {
		threshold = maxScrobblePoint
	}
	if played < threshold {
		return
	}

	st := s.scrobbleTrack(tr, startedAt)
	if err := s.client.Scrobble(st); err != nil {
		s.log.Warn("scrobble failed, queueing for retry",
			zap.String("artist", st.Artist),
			zap.String("track", st.Track),
			zap.Error(err))
		if qerr := s.store.AddPendingScrobble(state.PendingScrobble{
			Artist:          st.Artist,
			Track:           st.Track,
			Album:           st.Album,
			DurationSeconds: int(st.Duration.Seconds()),
			Timestamp:       st.Timestamp.Unix(),
			LastError:       err.Error(),
		}); qerr != nil {
			s.log.Error("could not queue pending scrobble", zap.Error(qerr))
		}
		return
	}

	s.log.Debug("scrobbled",
		zap.String("artist", st.Artist),
		zap.String("track", st.Track))
	s.flushPending()
}

// flushPending retries queued scrobbles, oldest first. Stops at the
// first failure since later ones are unlikely to fare better.
func (s *Scrobbler) flushPending() {
	pending, err := s.store.GetPendingScrobbles(pendingFlushBatch)
	if err != nil {
		s.log.Error("could not load pending scrobbles", zap.Error(err))
		return
	}

	for _, p := range pending {
		if p.Attempts >= maxScrobbleRetry {
			s.log.Warn("dropping scrobble after repeated failures",
				zap.String("artist", p.Artist),
				zap.String("track", p.Track),
				zap.Int("attempts", p.Attempts))
			_ = s.store.DeletePendingScrobble(p.ID)
			continue
		}

		err := s.client.Scrobble(ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Album:     p.Album,
			Duration:  time.Duration(p.DurationSeconds) * time.Second,
			Timestamp: time.Unix(p.Timestamp, 0),
		})
		if err != nil {
			_ = s.store.MarkScrobbleAttempt(p.ID, err.Error())
			return
		}
		_ = s.store.DeletePendingScrobble(p.ID)
	}
}

func (s *Scrobbler) scrobbleTrack(tr *track.Track, startedAt time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    tr.Artist,
		Track:     tr.Title,
		Album:     tr.AlbumTitle,
		Duration:  time.Duration(tr.Duration * float64(time.Second)),
		Timestamp: startedAt,
	}
}
