package optimistic

import (
	"sync"
	"testing"
	"time"
)

func TestLiked_OverlayWinsWhilePending(t *testing.T) {
	o := New(nil, time.Hour)

	if o.Liked("track-1", false) {
		t.Error("no overlay, fetched state must answer")
	}

	o.Toggle("track-1", true)

	if !o.Liked("track-1", false) {
		t.Error("pending guess must win over stale fetched state")
	}
}

func TestObserve_ClearsOnConfirm(t *testing.T) {
	o := New(nil, time.Hour)
	o.Toggle("track-1", true)

	// Fetch does not reflect the guess yet: overlay stays.
	o.Observe("track-1", false)
	if !o.Pending("track-1") {
		t.Fatal("overlay cleared before the network caught up")
	}

	// Network caught up: real data becomes authoritative.
	o.Observe("track-1", true)
	if o.Pending("track-1") {
		t.Error("overlay must clear once fetched state matches the guess")
	}
	if !o.Liked("track-1", true) {
		t.Error("displayed state must equal fetched state after clearing")
	}
}

func TestFail_RevertsImmediately(t *testing.T) {
	o := New(nil, time.Hour)
	o.Toggle("track-1", true)

	o.Fail("track-1")

	if o.Pending("track-1") {
		t.Error("failed write must clear the guess")
	}
	if o.Liked("track-1", false) {
		t.Error("display must revert to the last confirmed state")
	}
}

func TestToggle_SecondGuessReplacesFirst(t *testing.T) {
	o := New(nil, time.Hour)
	o.Toggle("track-1", true)
	o.Toggle("track-1", false)

	if o.Liked("track-1", true) {
		t.Error("second toggle must replace the pending guess")
	}

	// The replacement is still a single entry: confirming it clears.
	o.Observe("track-1", false)
	if o.Pending("track-1") {
		t.Error("overlay must clear when fetch matches the replaced guess")
	}
}

func TestOverlay_PerSubjectIsolation(t *testing.T) {
	o := New(nil, time.Hour)
	o.Toggle("track-1", true)

	if o.Pending("track-2") {
		t.Error("guess leaked across subjects")
	}
	if o.Liked("track-2", false) {
		t.Error("unrelated subject must use fetched state")
	}

	o.Observe("track-1", true)
	if o.Pending("track-1") {
		t.Error("track-1 should be reconciled")
	}
}

func TestToggle_SchedulesRefetch(t *testing.T) {
	var mu sync.Mutex
	var fetched []string
	o := New(func(subject string) {
		mu.Lock()
		fetched = append(fetched, subject)
		mu.Unlock()
	}, 10*time.Millisecond)
	defer o.Close()

	o.Toggle("track-1", true)

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(fetched)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("scheduled re-fetch never fired")
		case <-time.After(time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if fetched[0] != "track-1" {
		t.Errorf("refetched %q, want track-1", fetched[0])
	}
}

func TestClose_StopsPendingRefetch(t *testing.T) {
	var mu sync.Mutex
	count := 0
	o := New(func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	}, 20*time.Millisecond)

	o.Toggle("track-1", true)
	o.Close()

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("re-fetch fired %d times after Close", count)
	}
}
