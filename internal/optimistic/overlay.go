// Package optimistic implements the local overlay for latency-sensitive
// social actions: a like toggle shows immediately, then reconciles
// against replicated state as fetches come in.
package optimistic

import (
	"sync"
	"time"
)

// DefaultRefetchDelay is how long after an optimistic mutation the
// corrective re-fetch fires.
const DefaultRefetchDelay = 3 * time.Second

// Overlay holds at most one pending guess per subject. The guess wins
// over fetched state until the network catches up or the write fails.
type Overlay struct {
	mu      sync.Mutex
	entries map[string]bool
	timers  map[string]*time.Timer

	refetch func(subject string)
	delay   time.Duration
	closed  bool
}

// New creates an overlay. refetch is invoked (on a timer goroutine)
// once per mutation to force eventual correction; it may be nil.
func New(refetch func(subject string), delay time.Duration) *Overlay {
	if delay <= 0 {
		delay = DefaultRefetchDelay
	}
	return &Overlay{
		entries: make(map[string]bool),
		timers:  make(map[string]*time.Timer),
		refetch: refetch,
		delay:   delay,
	}
}

// Toggle records an optimistic guess for the subject, replacing any
// pending one, and schedules the corrective re-fetch.
func (o *Overlay) Toggle(subject string, liked bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.entries[subject] = liked
	o.scheduleRefetchLocked(subject)
}

// Observe reconciles a fetched state for the subject. When the fetched
// state already reflects the pending guess the overlay entry is
// cleared: real data is authoritative again. The check and the clear
// are one atomic step, so two concurrent fetches cannot both act on the
// same pending entry.
func (o *Overlay) Observe(subject string, fetchedLiked bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	guess, ok := o.entries[subject]
	if !ok {
		return
	}
	if guess == fetchedLiked {
		delete(o.entries, subject)
	}
}

// Fail clears the pending guess immediately: the underlying write
// failed and the last confirmed state must show again.
func (o *Overlay) Fail(subject string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, subject)
}

// Liked answers the display question: the pending guess when one
// exists, the fetched state otherwise.
func (o *Overlay) Liked(subject string, fetchedLiked bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if guess, ok := o.entries[subject]; ok {
		return guess
	}
	return fetchedLiked
}

// Pending reports whether the subject has an unreconciled guess.
func (o *Overlay) Pending(subject string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.entries[subject]
	return ok
}

// Close stops all scheduled re-fetches.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	for subject, timer := range o.timers {
		timer.Stop()
		delete(o.timers, subject)
	}
}

func (o *Overlay) scheduleRefetchLocked(subject string) {
	if o.refetch == nil {
		return
	}
	if timer, ok := o.timers[subject]; ok {
		timer.Stop()
	}
	o.timers[subject] = time.AfterFunc(o.delay, func() {
		o.mu.Lock()
		delete(o.timers, subject)
		closed := o.closed
		o.mu.Unlock()
		if !closed {
			o.refetch(subject)
		}
	})
}
