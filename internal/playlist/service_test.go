package playlist

import (
	"context"
	"errors"
	"testing"

	"github.com/zaptrax/zaptrax/internal/nostr"
)

type fakeRelays struct {
	events    []nostr.Event
	published []*nostr.Event
	queryErr  error
}

func (f *fakeRelays) Query(_ context.Context, filter nostr.Filter) ([]nostr.Event, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []nostr.Event
	for _, ev := range f.events {
		if filter.Matches(&ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeRelays) Publish(_ context.Context, ev *nostr.Event) error {
	f.published = append(f.published, ev)
	f.events = append(f.events, *ev)
	return nil
}

type fakeSigner struct{ pubkey string }

func (s fakeSigner) PublicKey() string { return s.pubkey }

func (s fakeSigner) Sign(_ context.Context, e *nostr.Event) error {
	e.PubKey = s.pubkey
	e.ID = e.ComputeID()
	e.Sig = "sig"
	return nil
}

func newTestService() (*Service, *fakeRelays) {
	relays := &fakeRelays{}
	svc := NewService(relays, fakeSigner{pubkey: "self"}, nil)
	clock := int64(1000)
	svc.now = func() int64 { clock++; return clock }
	return svc, relays
}

func TestService_CreateAndGet(t *testing.T) {
	svc, relays := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Morning", "coffee tunes")
	if err != nil {
		t.Fatal(err)
	}
	if len(relays.published) != 1 {
		t.Fatalf("published %d events, want 1", len(relays.published))
	}
	if relays.published[0].Kind != nostr.KindPlaylist {
		t.Errorf("kind = %d, want %d", relays.published[0].Kind, nostr.KindPlaylist)
	}

	got, err := svc.Get(ctx, created.Identifier)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Morning" || got.Description != "coffee tunes" {
		t.Errorf("got %q/%q", got.Title, got.Description)
	}
	if got.EventID == "" {
		t.Error("fetched playlist missing event linkage")
	}
}

func TestService_GetPicksNewestReplica(t *testing.T) {
	svc, relays := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "Evolving", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddTrack(ctx, p.Identifier, "https://z.example/a", sampleMeta("a")); err != nil {
		t.Fatal(err)
	}
	if len(relays.events) != 2 {
		t.Fatalf("store holds %d replicas, want 2", len(relays.events))
	}

	got, err := svc.Get(ctx, p.Identifier)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.TrackRefs) != 1 {
		t.Errorf("got stale replica: TrackRefs = %v", got.TrackRefs)
	}
}

func TestService_AddTrackFetchesBeforeMutating(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "Shared", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddTrack(ctx, p.Identifier, "https://z.example/a", sampleMeta("a")); err != nil {
		t.Fatal(err)
	}
	// A second add through the stale local copy must still see track a.
	updated, err := svc.AddTrack(ctx, p.Identifier, "https://z.example/b", sampleMeta("b"))
	if err != nil {
		t.Fatal(err)
	}

	if len(updated.TrackRefs) != 2 {
		t.Errorf("TrackRefs = %v, want both tracks", updated.TrackRefs)
	}
}

func TestService_RemoveTrackRepublishesRemainder(t *testing.T) {
	svc, relays := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "Trim", "")
	_, _ = svc.AddTrack(ctx, p.Identifier, "https://z.example/a", sampleMeta("a"))
	_, _ = svc.AddTrack(ctx, p.Identifier, "https://z.example/b", sampleMeta("b"))

	updated, err := svc.RemoveTrack(ctx, p.Identifier, "https://z.example/a")
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.TrackRefs) != 1 || updated.TrackRefs[0] != "https://z.example/b" {
		t.Errorf("TrackRefs = %v, want only track b", updated.TrackRefs)
	}

	last := relays.published[len(relays.published)-1]
	got := DecodeEvent(last)
	if got.Meta["https://z.example/b"].Title != "Title b" {
		t.Error("surviving track lost its metadata in the republished replica")
	}
}

func TestService_GetNotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestService_DeletePublishesTombstone(t *testing.T) {
	svc, relays := newTestService()
	ctx := context.Background()

	p, _ := svc.Create(ctx, "Doomed", "")
	got, _ := svc.Get(ctx, p.Identifier)

	if err := svc.Delete(ctx, got); err != nil {
		t.Fatal(err)
	}

	tomb := relays.published[len(relays.published)-1]
	if tomb.Kind != nostr.KindDeletion {
		t.Fatalf("kind = %d, want %d", tomb.Kind, nostr.KindDeletion)
	}
	if tomb.TagValue("e") != got.EventID {
		t.Errorf("e tag = %q, want %q", tomb.TagValue("e"), got.EventID)
	}
	wantAddr := "30003:self:" + p.Identifier
	if tomb.TagValue("a") != wantAddr {
		t.Errorf("a tag = %q, want %q", tomb.TagValue("a"), wantAddr)
	}
}

func TestService_LikedSongsCreatesOnFirstUse(t *testing.T) {
	svc, relays := newTestService()
	ctx := context.Background()

	first, err := svc.LikedSongs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.Identifier != LikedSongsIdentifier || first.Title != LikedSongsTitle {
		t.Errorf("got %q/%q", first.Identifier, first.Title)
	}
	if len(relays.published) != 1 {
		t.Fatalf("published %d events, want 1", len(relays.published))
	}

	// Second call finds the existing playlist instead of recreating it.
	if _, err := svc.LikedSongs(ctx); err != nil {
		t.Fatal(err)
	}
	if len(relays.published) != 1 {
		t.Errorf("published %d events after second call, want still 1", len(relays.published))
	}
}
