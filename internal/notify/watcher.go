package notify

import (
	"github.com/zaptrax/zaptrax/internal/playback"
	"github.com/zaptrax/zaptrax/internal/track"
)

const trackNotifyTimeout = 4000 // ms

// Watcher shows a desktop notification when playback moves to a new
// track. Successive notifications replace each other so skipping
// through a queue does not stack popups.
type Watcher struct {
	notifier Notifier
	lastID   uint32
}

func NewWatcher(notifier Notifier) *Watcher {
	return &Watcher{notifier: notifier}
}

// Run consumes playback events until the subscription is closed.
// Call in a goroutine.
func (w *Watcher) Run(sub *playback.Subscription) {
	for {
		select {
		case e := <-sub.TrackChanged:
			w.handleTrackChange(e)
		case <-sub.Done:
			if w.lastID != 0 {
				_ = w.notifier.Close(w.lastID)
			}
			return
		}
	}
}

func (w *Watcher) handleTrackChange(e playback.TrackChange) {
	if e.Current == nil {
		return
	}
	id, err := w.notifier.Notify(trackNotification(e.Current, w.lastID))
	if err != nil {
		return
	}
	w.lastID = id
}

func trackNotification(tr *track.Track, replaces uint32) Notification {
	body := tr.Artist
	if tr.AlbumTitle != "" {
		body += " - " + tr.AlbumTitle
	}
	return Notification{
		Title:      tr.Title,
		Body:       body,
		Icon:       tr.AlbumArtURL,
		Timeout:    trackNotifyTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}
}
