package playback

import "github.com/zaptrax/zaptrax/internal/track"

// Transitions are the only legal session mutations. Each takes the
// current session by value and returns the next one; the service
// applies them serially under its lock, so no partial transition is
// ever visible. Backend effects never happen here.

// loadTrack selects a track and starts playback. When queue is nil the
// track becomes a single-entry queue. The index is the track's position
// in the queue, or -1 when the track is not part of it. Selecting a
// track always starts playback; there is no load-without-play.
func loadTrack(s Session, t track.Track, queue []track.Track) Session {
	if queue == nil {
		queue = []track.Track{t}
	}
	q := make([]track.Track, len(queue))
	copy(q, queue)

	index := -1
	for i := range q {
		if q[i].ID == t.ID {
			index = i
			break
		}
	}

	s.Current = &t
	s.Queue = q
	s.Index = index
	s.Position = 0
	s.Duration = t.Duration
	s.Playing = true
	s.Err = ""
	return s
}

// play resumes playback. No-op without a current track.
func play(s Session) Session {
	if s.Current == nil {
		return s
	}
	s.Playing = true
	return s
}

// pause suspends playback. No-op without a current track.
func pause(s Session) Session {
	if s.Current == nil {
		return s
	}
	s.Playing = false
	return s
}

// seek moves the play position.
func seek(s Session, seconds float64) Session {
	s.Position = seconds
	return s
}

// setVolume sets the local output volume. Callers clamp to [0,1].
func setVolume(s Session, v float64) Session {
	s.Volume = v
	return s
}

// next advances to the following queue entry. At the last index it is a
// no-op: the session stays at the boundary, position untouched.
func next(s Session) Session {
	if !s.HasNext() {
		return s
	}
	return jumpTo(s, s.Index+1)
}

// previous retreats to the preceding queue entry. At index 0 it is a
// no-op.
func previous(s Session) Session {
	if !s.HasPrevious() {
		return s
	}
	return jumpTo(s, s.Index-1)
}

// playByIndex jumps directly to a queue index. Out-of-bounds is a
// no-op.
func playByIndex(s Session, i int) Session {
	if i < 0 || i >= len(s.Queue) {
		return s
	}
	return jumpTo(s, i)
}

func jumpTo(s Session, i int) Session {
	t := s.Queue[i]
	s.Current = &t
	s.Index = i
	s.Position = 0
	s.Duration = t.Duration
	s.Playing = true
	s.Err = ""
	return s
}

// setLoading marks a backend load in progress.
func setLoading(s Session, loading bool) Session {
	s.Loading = loading
	return s
}

// setError records a playback error. An error always clears loading and
// forces pause. An empty message clears the error.
func setError(s Session, msg string) Session {
	s.Err = msg
	if msg != "" {
		s.Loading = false
		s.Playing = false
	}
	return s
}

// setCasting routes output authority between the local backend and the
// cast receiver.
func setCasting(s Session, casting bool) Session {
	s.Casting = casting
	return s
}

// restoreQueue reinstates a persisted queue in a paused session.
func restoreQueue(s Session, tracks []track.Track, index int) Session {
	if len(tracks) == 0 {
		return s
	}
	if index < 0 || index >= len(tracks) {
		index = 0
	}
	q := make([]track.Track, len(tracks))
	copy(q, tracks)

	t := q[index]
	s.Queue = q
	s.Index = index
	s.Current = &t
	s.Duration = t.Duration
	s.Position = 0
	s.Playing = false
	return s
}

// trackEnded handles a natural end of the current track: identical to
// next, except that at the queue boundary playback stops instead of
// staying in a playing state.
func trackEnded(s Session) Session {
	if s.HasNext() {
		return next(s)
	}
	s.Playing = false
	s.Position = 0
	return s
}
