// Package player implements the local audio backend: it fetches a
// track over HTTP, decodes it, and drives the speaker. The playback
// service owns routing decisions; the player only ever plays what it is
// handed.
package player

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/speaker"
)

// State is the player's own backend state, independent of the session.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

var (
	// ErrUnsupportedFormat is returned when the fetched media cannot be
	// decoded by any available decoder.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrPlaybackNotAllowed is returned when audio output cannot start
	// at all, e.g. no output device could be acquired.
	ErrPlaybackNotAllowed = errors.New("playback not allowed")
)

// fetchTimeout bounds the download of a single track.
const fetchTimeout = 60 * time.Second

var speakerInitialized bool

// Player decodes and plays one track at a time.
type Player struct {
	mu sync.Mutex

	state    State
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	streamer beep.StreamSeekCloser
	format   beep.Format

	volumeLevel float64
	muted       bool

	finishedCh chan struct{}
	httpClient *http.Client
}

// New creates a stopped player.
func New() *Player {
	return &Player{
		state:       Stopped,
		volumeLevel: 1.0,
		finishedCh:  make(chan struct{}, 1),
		httpClient:  &http.Client{Timeout: fetchTimeout},
	}
}

// Play fetches the media at url and starts playing it, replacing any
// current track. The whole resource is buffered so the stream stays
// seekable regardless of what the server supports.
func (p *Player) Play(url string) error {
	p.Stop()

	resp, err := p.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetch media: %w", err)
	}

	streamer, format, err := decode(url, resp.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// The speaker can only be initialized once per process; later tracks
	// with a different native rate get resampled to the initial one.
	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("%w: %v", ErrPlaybackNotAllowed, err)
		}
		speakerInitialized = true
		initializedRate = format.SampleRate
	}

	var stream beep.Streamer = streamer
	if format.SampleRate != initializedRate {
		stream = beep.Resample(4, format.SampleRate, initializedRate, streamer)
	}

	p.streamer = streamer
	p.format = format
	p.ctrl = &beep.Ctrl{Streamer: stream}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted || p.volumeLevel <= 0,
	}
	p.state = Playing

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		select {
		case p.finishedCh <- struct{}{}:
		default:
		}
	})))

	return nil
}

// decode picks a decoder from the URL and content type. The catalog
// serves mp3 without an extension, so mp3 is the fallback decoder and
// its failure maps to the unsupported-format error.
func decode(url, contentType string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	lower := strings.ToLower(url)
	if strings.Contains(lower, ".flac") || contentType == "audio/flac" {
		s, f, err := flac.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return s, f, nil
	}

	s, f, err := decodeMP3(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return s, f, nil
}

var initializedRate beep.SampleRate

// Stop stops playback and releases the current stream.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.state = Stopped
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

// State returns the backend state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

// Duration returns the current track's duration.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// SeekTo moves playback to an absolute position, clamped to the track.
func (p *Player) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil || p.state == Stopped {
		return nil
	}

	target := p.format.SampleRate.N(pos)
	if target < 0 {
		target = 0
	}
	if length := p.streamer.Len(); target > length {
		target = length
	}

	speaker.Lock()
	err := p.streamer.Seek(target)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	return nil
}

// FinishedChan signals when the current track plays to its natural end.
func (p *Player) FinishedChan() <-chan struct{} {
	return p.finishedCh
}

// Close stops playback and releases resources.
func (p *Player) Close() error {
	p.Stop()
	return nil
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
