package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/cast"
	"github.com/zaptrax/zaptrax/internal/player"
	"github.com/zaptrax/zaptrax/internal/track"
)

// castCallTimeout bounds every call to the cast receiver.
const castCallTimeout = 5 * time.Second

// Service defines the playback service contract.
type Service interface {
	// Transport control
	LoadTrack(t track.Track, queue []track.Track) error
	Play() error
	Pause() error
	Toggle() error
	Stop() error
	Next() error
	Previous() error
	PlayByIndex(i int) error
	SeekTo(seconds float64) error
	SetVolume(v float64) error

	// Output routing
	SetCasting(casting bool) error

	// RestoreQueue reinstates a persisted queue without starting
	// playback.
	RestoreQueue(tracks []track.Track, index int)

	// State queries
	Session() Session
	State() State
	CurrentTrack() *track.Track
	Queue() []track.Track
	Position() float64

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// serviceImpl owns the live session. All transitions are applied under
// one mutex, and backend effects are dispatched after the transition
// commits (or, for cast skips, the media push happens before the commit
// but still under the same lock, so rapid skips serialize).
type serviceImpl struct {
	mu      sync.Mutex
	session Session

	local  player.Interface
	caster cast.Receiver
	log    *zap.Logger

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates a playback service over the two output backends.
func New(local player.Interface, caster cast.Receiver, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &serviceImpl{
		session: NewSession(),
		local:   local,
		caster:  caster,
		log:     log,
		done:    make(chan struct{}),
	}
	go s.watchPlayer()
	return s
}

// LoadTrack selects a track (optionally with a surrounding queue) and
// starts playing it.
func (s *serviceImpl) LoadTrack(t track.Track, queue []track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session
	s.session = loadTrack(prev, t, queue)
	s.emitTrack(prev)
	s.emitState(prev)
	s.emitQueue()
	return s.startCurrent()
}

// Play resumes playback of the current track.
func (s *serviceImpl) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Current == nil {
		return nil
	}
	prev := s.session
	s.session = play(prev)
	s.emitState(prev)

	if s.session.Casting {
		ctx, cancel := s.castContext()
		defer cancel()
		if err := s.caster.Play(ctx); err != nil {
			s.castEnded("play", err)
			return err
		}
		return nil
	}
	if s.local.State() == player.Stopped {
		// Playback previously ran to the end of the queue; restart the
		// current track from the top.
		return s.startCurrent()
	}
	s.local.Resume()
	return nil
}

// Pause suspends playback.
func (s *serviceImpl) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Current == nil {
		return nil
	}
	prev := s.session
	s.session = pause(prev)
	s.emitState(prev)

	if s.session.Casting {
		ctx, cancel := s.castContext()
		defer cancel()
		if err := s.caster.Pause(ctx); err != nil {
			s.castEnded("pause", err)
			return err
		}
		return nil
	}
	s.local.Pause()
	return nil
}

// Toggle plays when paused and pauses when playing.
func (s *serviceImpl) Toggle() error {
	s.mu.Lock()
	playing := s.session.Playing
	s.mu.Unlock()
	if playing {
		return s.Pause()
	}
	return s.Play()
}

// Stop pauses playback and rewinds to the start of the current track.
func (s *serviceImpl) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Current == nil {
		return nil
	}
	prev := s.session
	s.session = seek(pause(prev), 0)
	s.emitState(prev)
	s.broadcast(func(sub *Subscription) { sub.sendPosition(0) })

	if s.session.Casting {
		ctx, cancel := s.castContext()
		defer cancel()
		if err := s.caster.Pause(ctx); err != nil {
			s.castEnded("stop", err)
			return err
		}
		return nil
	}
	s.local.Stop()
	return nil
}

// Next advances to the following queue entry. At the last entry it is a
// no-op.
func (s *serviceImpl) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.HasNext() {
		return nil
	}
	return s.commitSkip(next(s.session), "next")
}

// Previous retreats to the preceding queue entry. At the first entry it
// is a no-op.
func (s *serviceImpl) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.HasPrevious() {
		return nil
	}
	return s.commitSkip(previous(s.session), "previous")
}

// PlayByIndex jumps directly to a queue index. Out of bounds is a
// no-op.
func (s *serviceImpl) PlayByIndex(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.session.Queue) {
		return nil
	}
	return s.commitSkip(playByIndex(s.session, i), "jump")
}

// commitSkip moves playback to the target session's track. When
// casting, the target's media is pushed to the receiver before the
// session commits, so the receiver can never lag behind a committed
// "now playing". The target was computed by the caller under the same
// lock, so a second rapid skip cannot observe a stale index.
func (s *serviceImpl) commitSkip(target Session, op string) error {
	prev := s.session

	if prev.Casting {
		url := track.UnwrapMediaURL(target.Current.MediaURL)
		ctx, cancel := s.castContext()
		defer cancel()
		if err := s.caster.LoadMedia(ctx, url); err != nil {
			s.castEnded(op, err)
			return err
		}
		s.session = target
		s.emitTrack(prev)
		s.emitState(prev)
		if err := s.caster.Play(ctx); err != nil {
			s.castEnded(op, err)
			return err
		}
		return nil
	}

	s.session = target
	s.emitTrack(prev)
	s.emitState(prev)
	return s.startCurrent()
}

// SeekTo moves the play position and instructs the active backend.
func (s *serviceImpl) SeekTo(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Current == nil {
		return nil
	}
	if seconds < 0 {
		seconds = 0
	}
	s.session = seek(s.session, seconds)
	s.broadcast(func(sub *Subscription) { sub.sendPosition(seconds) })

	if s.session.Casting {
		ctx, cancel := s.castContext()
		defer cancel()
		if err := s.caster.SeekTo(ctx, seconds); err != nil {
			s.castEnded("seek", err)
			return err
		}
		return nil
	}
	return s.local.SeekTo(time.Duration(seconds * float64(time.Second)))
}

// SetVolume sets the local output volume. Casting volume is the
// receiver's own concern.
func (s *serviceImpl) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = setVolume(s.session, v)
	s.local.SetVolume(v)
	s.broadcast(func(sub *Subscription) { sub.sendVolume(v) })
	return nil
}

// SetCasting routes output between the local backend and the cast
// receiver. Starting a session that fails leaves the routing flag
// untouched; there is never a committed Casting=true without an actual
// session.
func (s *serviceImpl) SetCasting(casting bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if casting == s.session.Casting {
		return nil
	}

	if !casting {
		ctx, cancel := s.castContext()
		defer cancel()
		_ = s.caster.Stop(ctx)
		s.session = setCasting(s.session, false)
		s.broadcast(func(sub *Subscription) { sub.sendCast(CastChange{Casting: false}) })
		if s.session.Playing && s.session.Current != nil {
			if err := s.startCurrent(); err != nil {
				return err
			}
			return s.local.SeekTo(time.Duration(s.session.Position * float64(time.Second)))
		}
		return nil
	}

	ctx, cancel := s.castContext()
	defer cancel()
	if err := s.caster.RequestSession(ctx); err != nil {
		s.broadcast(func(sub *Subscription) { sub.sendError(ErrorEvent{Operation: "cast", Err: err}) })
		s.log.Warn("cast session start failed", zap.Error(err))
		return err
	}

	s.local.Stop()
	s.session = setCasting(s.session, true)
	s.broadcast(func(sub *Subscription) { sub.sendCast(CastChange{Casting: true}) })

	if s.session.Current != nil {
		url := track.UnwrapMediaURL(s.session.Current.MediaURL)
		if err := s.caster.LoadMedia(ctx, url); err != nil {
			s.castEnded("cast", err)
			return err
		}
		if s.session.Playing {
			if err := s.caster.Play(ctx); err != nil {
				s.castEnded("cast", err)
				return err
			}
		}
	}
	return nil
}

// RestoreQueue reinstates a persisted queue in a paused session. Used
// at startup; a later Play starts the restored current track.
func (s *serviceImpl) RestoreQueue(tracks []track.Track, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(tracks) == 0 {
		return
	}
	s.session = restoreQueue(s.session, tracks, index)
	s.emitQueue()
}

// Session returns a snapshot of the current session.
func (s *serviceImpl) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *serviceImpl) snapshotLocked() Session {
	snap := s.session
	snap.Queue = make([]track.Track, len(s.session.Queue))
	copy(snap.Queue, s.session.Queue)
	if s.session.Current != nil {
		t := *s.session.Current
		snap.Current = &t
	}
	if !snap.Casting {
		snap.Position = s.local.Position().Seconds()
	}
	return snap
}

// State returns the coarse playback state.
func (s *serviceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.State()
}

// CurrentTrack returns the current track, or nil when stopped.
func (s *serviceImpl) CurrentTrack() *track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Current == nil {
		return nil
	}
	t := *s.session.Current
	return &t
}

// Queue returns a copy of the queue.
func (s *serviceImpl) Queue() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := make([]track.Track, len(s.session.Queue))
	copy(q, s.session.Queue)
	return q
}

// Position returns the current play position in seconds.
func (s *serviceImpl) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Casting {
		return s.session.Position
	}
	return s.local.Position().Seconds()
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close shuts down the service and all subscriptions.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.local.Stop()
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()
	return nil
}

// startCurrent dispatches the play effect for the committed current
// track on the authoritative backend. Called with the lock held.
func (s *serviceImpl) startCurrent() error {
	t := s.session.Current
	if t == nil {
		return nil
	}
	url := track.UnwrapMediaURL(t.MediaURL)
	s.session = setLoading(s.session, true)

	var err error
	if s.session.Casting {
		ctx, cancel := s.castContext()
		defer cancel()
		if err = s.caster.LoadMedia(ctx, url); err == nil {
			err = s.caster.Play(ctx)
		}
	} else {
		err = s.local.Play(url)
	}
	if err != nil {
		s.failPlayback("play", err)
		return err
	}
	s.session = setLoading(s.session, false)
	return nil
}

// failPlayback records a backend failure on the session. Called with
// the lock held.
func (s *serviceImpl) failPlayback(op string, err error) {
	prev := s.session
	s.session = setError(prev, playbackErrorMessage(err))
	s.emitState(prev)
	s.broadcast(func(sub *Subscription) { sub.sendError(ErrorEvent{Operation: op, Err: err}) })
	s.log.Warn("playback failed", zap.String("operation", op), zap.Error(err))
}

// castEnded handles a mid-session receiver failure: the session is
// over, authority returns to the (idle) local backend. Called with the
// lock held.
func (s *serviceImpl) castEnded(op string, err error) {
	prev := s.session
	s.session = setCasting(pause(prev), false)
	s.emitState(prev)
	s.broadcast(func(sub *Subscription) {
		sub.sendCast(CastChange{Casting: false})
		sub.sendError(ErrorEvent{Operation: op, Err: err})
	})
	s.log.Warn("cast session ended", zap.String("operation", op), zap.Error(err))
}

// handleTrackEnded treats a natural end exactly like pressing next; at
// the end of the queue playback simply stops.
func (s *serviceImpl) handleTrackEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Casting {
		// The local stream is not authoritative while casting.
		return
	}
	prev := s.session
	if prev.HasNext() {
		_ = s.commitSkip(trackEnded(prev), "advance")
		return
	}
	s.session = trackEnded(prev)
	s.emitState(prev)
	s.broadcast(func(sub *Subscription) { sub.sendPosition(0) })
	s.local.Stop()
}

func (s *serviceImpl) watchPlayer() {
	for {
		select {
		case <-s.done:
			return
		case <-s.local.FinishedChan():
			s.handleTrackEnded()
		}
	}
}

func (s *serviceImpl) castContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), castCallTimeout)
}

func playbackErrorMessage(err error) string {
	switch {
	case errors.Is(err, player.ErrUnsupportedFormat):
		return "unsupported audio format"
	case errors.Is(err, player.ErrPlaybackNotAllowed):
		return "click play to start"
	default:
		return "playback failed"
	}
}

// Event emission, all called with the session lock held.

func (s *serviceImpl) emitState(prev Session) {
	before, after := prev.State(), s.session.State()
	if before == after {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: before, Current: after})
	})
}

func (s *serviceImpl) emitTrack(prev Session) {
	cur := s.session
	if sameTrack(prev.Current, cur.Current) && prev.Index == cur.Index {
		return
	}
	s.broadcast(func(sub *Subscription) {
		sub.sendTrack(TrackChange{
			Previous:      prev.Current,
			Current:       cur.Current,
			PreviousIndex: prev.Index,
			Index:         cur.Index,
		})
	})
}

// sameTrack compares by identity, not pointer: reducers rebuild the
// session and hand out fresh pointers for an unchanged track.
func sameTrack(a, b *track.Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

func (s *serviceImpl) emitQueue() {
	tracks := make([]track.Track, len(s.session.Queue))
	copy(tracks, s.session.Queue)
	index := s.session.Index
	s.broadcast(func(sub *Subscription) {
		sub.sendQueue(QueueChange{Tracks: tracks, Index: index})
	})
}

func (s *serviceImpl) broadcast(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}
