// Package status publishes the user's now-playing status to relays as a
// replaceable kind 30315 event with a "music" d tag. Other clients show
// it as a profile status line; an empty content clears it.
package status

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/nostr"
	"github.com/zaptrax/zaptrax/internal/playback"
	"github.com/zaptrax/zaptrax/internal/track"
)

const publishTimeout = 5 * time.Second

// Relays is the publishing surface the publisher needs.
type Relays interface {
	Publish(ctx context.Context, e *nostr.Event) error
}

// Publisher mirrors the playback session onto the user's music status.
type Publisher struct {
	relays Relays
	signer nostr.Signer
	log    *zap.Logger
	now    func() int64

	last string
}

func NewPublisher(relays Relays, signer nostr.Signer, log *zap.Logger) *Publisher {
	return &Publisher{
		relays: relays,
		signer: signer,
		log:    log,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// Run consumes playback events until the subscription is closed.
// Call in a goroutine.
func (p *Publisher) Run(sub *playback.Subscription) {
	for {
		select {
		case e := <-sub.TrackChanged:
			p.handleTrackChange(e)
		case e := <-sub.StateChanged:
			p.handleStateChange(e)
		case <-sub.Done:
			p.clear()
			return
		}
	}
}

func (p *Publisher) handleTrackChange(e playback.TrackChange) {
	if e.Current == nil {
		p.clear()
		return
	}
	p.publish(statusLine(e.Current))
}

func (p *Publisher) handleStateChange(e playback.StateChange) {
	if e.Current == playback.StateStopped {
		p.clear()
	}
}

func (p *Publisher) clear() {
	p.publish("")
}

// publish replaces the music status. Identical consecutive statuses are
// skipped so seek and pause churn does not republish.
func (p *Publisher) publish(content string) {
	if content == p.last {
		return
	}
	p.last = content

	ev := &nostr.Event{
		CreatedAt: p.now(),
		Kind:      nostr.KindNowPlaying,
		Tags:      []nostr.Tag{{"d", "music"}},
		Content:   content,
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.signer.Sign(ctx, ev); err != nil {
		p.log.Warn("could not sign status event", zap.Error(err))
		return
	}
	if err := p.relays.Publish(ctx, ev); err != nil {
		p.log.Warn("could not publish status", zap.Error(err))
		return
	}
	p.log.Debug("published music status", zap.String("content", content))
}

func statusLine(tr *track.Track) string {
	if tr.Artist == "" {
		return tr.Title
	}
	return tr.Artist + " - " + tr.Title
}
