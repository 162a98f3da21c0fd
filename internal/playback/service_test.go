package playback

import (
	"errors"
	"strings"
	"testing"

	"github.com/zaptrax/zaptrax/internal/cast"
	"github.com/zaptrax/zaptrax/internal/player"
	"github.com/zaptrax/zaptrax/internal/track"
)

func newTestService(t *testing.T) (*serviceImpl, *player.Mock, *cast.Mock) {
	t.Helper()
	local := player.NewMock()
	caster := cast.NewMock()
	svc := New(local, caster, nil).(*serviceImpl)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, local, caster
}

func TestLoadTrack_PlaysOnLocalBackend(t *testing.T) {
	svc, local, caster := newTestService(t)
	q := testQueue()

	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	if got := local.PlayCalls(); len(got) != 1 || got[0] != q[0].MediaURL {
		t.Errorf("local play calls = %v, want [%s]", got, q[0].MediaURL)
	}
	if len(caster.LoadCalls) != 0 {
		t.Errorf("cast receiver touched while not casting: %v", caster.LoadCalls)
	}
	if svc.State() != StatePlaying {
		t.Errorf("State = %v, want Playing", svc.State())
	}
}

func TestLoadTrack_UnwrapsWrapperURL(t *testing.T) {
	svc, local, _ := newTestService(t)
	tr := track.Track{
		ID:       "podcast-1",
		MediaURL: "https://op3.dev/e/cdn.example.com/ep.mp3",
	}

	if err := svc.LoadTrack(tr, nil); err != nil {
		t.Fatal(err)
	}

	if got := local.PlayCalls(); len(got) != 1 || got[0] != "https://cdn.example.com/ep.mp3" {
		t.Errorf("play calls = %v, want unwrapped URL", got)
	}
}

func TestCastLocalMutualExclusion(t *testing.T) {
	svc, local, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	// Local authority: pause must hit the local backend only.
	if err := svc.Pause(); err != nil {
		t.Fatal(err)
	}
	if local.PauseCalls() != 1 || caster.PauseCalls != 0 {
		t.Fatalf("local/cast pause calls = %d/%d, want 1/0", local.PauseCalls(), caster.PauseCalls)
	}

	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}

	// Cast authority: play/pause must hit the receiver only.
	if err := svc.Play(); err != nil {
		t.Fatal(err)
	}
	if err := svc.Pause(); err != nil {
		t.Fatal(err)
	}
	if caster.PlayCalls == 0 || caster.PauseCalls != 1 {
		t.Errorf("cast play/pause calls = %d/%d, want >0/1", caster.PlayCalls, caster.PauseCalls)
	}
	if local.ResumeCalls() != 0 || local.PauseCalls() != 1 {
		t.Errorf("local backend invoked while casting: resume=%d pause=%d",
			local.ResumeCalls(), local.PauseCalls())
	}
}

func TestSetCasting_SessionStartFailureRollsBack(t *testing.T) {
	svc, _, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}
	caster.SetSessionError(errors.New("no receiver"))

	err := svc.SetCasting(true)

	if err == nil {
		t.Fatal("expected session start error")
	}
	if svc.Session().Casting {
		t.Error("Casting flag must roll back when session start fails")
	}
	if len(caster.LoadCalls) != 0 {
		t.Errorf("no media should be pushed after a failed session start: %v", caster.LoadCalls)
	}
}

func TestSetCasting_LoadsCurrentTrackOnReceiver(t *testing.T) {
	svc, local, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[1], q); err != nil {
		t.Fatal(err)
	}

	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}

	if len(caster.LoadCalls) != 1 || caster.LoadCalls[0] != q[1].MediaURL {
		t.Errorf("cast load calls = %v, want current track", caster.LoadCalls)
	}
	if caster.PlayCalls != 1 {
		t.Errorf("cast play calls = %d, want 1 (session was playing)", caster.PlayCalls)
	}
	if local.State() != player.Stopped {
		t.Error("local backend must stop when the receiver takes over")
	}
}

func TestNextWhileCasting_PushesTargetBeforeCommit(t *testing.T) {
	svc, _, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}

	if err := svc.Next(); err != nil {
		t.Fatal(err)
	}

	last := caster.LoadCalls[len(caster.LoadCalls)-1]
	if last != q[1].MediaURL {
		t.Errorf("receiver got %s, want the skip target %s", last, q[1].MediaURL)
	}
	if got := svc.Session().Index; got != 1 {
		t.Errorf("Index = %d, want 1", got)
	}
}

func TestNextWhileCasting_LoadFailureKeepsOldTrack(t *testing.T) {
	svc, _, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}
	caster.SetLoadError(errors.New("receiver gone"))

	err := svc.Next()

	if err == nil {
		t.Fatal("expected load error")
	}
	session := svc.Session()
	if session.Index != 0 {
		t.Errorf("Index = %d, want unchanged 0 (commit must not precede the push)", session.Index)
	}
	if session.Casting {
		t.Error("a mid-session receiver failure means casting ended")
	}
}

func TestNext_BoundaryIsNoOpOnBackends(t *testing.T) {
	svc, local, _ := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[2], q); err != nil {
		t.Fatal(err)
	}
	before := len(local.PlayCalls())

	if err := svc.Next(); err != nil {
		t.Fatal(err)
	}

	if len(local.PlayCalls()) != before {
		t.Error("boundary next must not touch the backend")
	}
	if got := svc.Session().Index; got != 2 {
		t.Errorf("Index = %d, want 2", got)
	}
}

func TestNaturalEnd_BehavesLikeNext(t *testing.T) {
	svc, local, _ := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	svc.handleTrackEnded()

	session := svc.Session()
	if session.Index != 1 || !session.Playing {
		t.Errorf("Index/Playing = %d/%v, want 1/true", session.Index, session.Playing)
	}
	if got := local.PlayCalls(); len(got) != 2 || got[1] != q[1].MediaURL {
		t.Errorf("play calls = %v, want the next track started", got)
	}
}

func TestNaturalEnd_AtQueueEndStopsWithoutError(t *testing.T) {
	svc, _, _ := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[2], q); err != nil {
		t.Fatal(err)
	}

	svc.handleTrackEnded()

	session := svc.Session()
	if session.Playing {
		t.Error("queue end must stop playback")
	}
	if session.Err != "" {
		t.Errorf("queue end is not an error, got %q", session.Err)
	}
}

func TestPlayError_SurfacesOnSessionAndPauses(t *testing.T) {
	svc, local, _ := newTestService(t)
	local.SetPlayError(player.ErrUnsupportedFormat)

	err := svc.LoadTrack(testQueue()[0], nil)

	if err == nil {
		t.Fatal("expected play error")
	}
	session := svc.Session()
	if session.Playing {
		t.Error("a failed play must force Playing=false")
	}
	if session.Loading {
		t.Error("a failed play must clear Loading")
	}
	if session.Err != "unsupported audio format" {
		t.Errorf("Err = %q", session.Err)
	}
}

func TestPlayError_AutoplayDistinctMessage(t *testing.T) {
	svc, local, _ := newTestService(t)
	local.SetPlayError(player.ErrPlaybackNotAllowed)

	_ = svc.LoadTrack(testQueue()[0], nil)

	if got := svc.Session().Err; !strings.Contains(got, "click play") {
		t.Errorf("Err = %q, want the distinct start-blocked message", got)
	}
}

func TestSubscription_TrackChangeEmitted(t *testing.T) {
	svc, _, _ := newTestService(t)
	sub := svc.Subscribe()
	q := testQueue()

	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}
	if err := svc.Next(); err != nil {
		t.Fatal(err)
	}

	var changes []TrackChange
	for len(sub.TrackChanged) > 0 {
		changes = append(changes, <-sub.TrackChanged)
	}
	if len(changes) != 2 {
		t.Fatalf("got %d track changes, want 2", len(changes))
	}
	if changes[1].Previous.ID != "catalog-1" || changes[1].Current.ID != "catalog-2" {
		t.Errorf("second change = %v -> %v", changes[1].Previous, changes[1].Current)
	}
}

func TestSubscription_ReloadSameTrackEmitsNoChange(t *testing.T) {
	svc, _, _ := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	// The reducer builds a fresh session, so the pointer differs even
	// though the track is the same one.
	sub := svc.Subscribe()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	if n := len(sub.TrackChanged); n != 0 {
		t.Errorf("got %d track changes for an unchanged track, want 0", n)
	}
}

func TestSetVolume_LocalOnlyAndClamped(t *testing.T) {
	svc, local, _ := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}

	if err := svc.SetVolume(1.5); err != nil {
		t.Fatal(err)
	}

	if got := local.Volume(); got != 1.0 {
		t.Errorf("local volume = %f, want clamped 1.0", got)
	}
	if got := svc.Session().Volume; got != 1.0 {
		t.Errorf("session volume = %f, want 1.0", got)
	}
}

func TestSeekTo_RoutesToActiveBackend(t *testing.T) {
	svc, local, caster := newTestService(t)
	q := testQueue()
	if err := svc.LoadTrack(q[0], q); err != nil {
		t.Fatal(err)
	}

	if err := svc.SeekTo(30); err != nil {
		t.Fatal(err)
	}
	if len(local.SeekCalls()) != 1 {
		t.Fatalf("local seek calls = %v, want one", local.SeekCalls())
	}

	if err := svc.SetCasting(true); err != nil {
		t.Fatal(err)
	}
	if err := svc.SeekTo(60); err != nil {
		t.Fatal(err)
	}
	if len(caster.SeekCalls) != 1 || caster.SeekCalls[0] != 60 {
		t.Errorf("cast seek calls = %v, want [60]", caster.SeekCalls)
	}
	if len(local.SeekCalls()) != 1 {
		t.Error("local backend must not receive seeks while casting")
	}
}
