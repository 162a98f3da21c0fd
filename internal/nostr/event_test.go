package nostr

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestEvent_TagValue(t *testing.T) {
	e := &Event{Tags: []Tag{
		{"d", "playlist-1"},
		{"r", "https://example.com/a.mp3"},
		{"r", "https://example.com/b.mp3"},
	}}

	if got := e.TagValue("d"); got != "playlist-1" {
		t.Errorf("TagValue(d) = %q, want playlist-1", got)
	}
	if got := e.TagValue("r"); got != "https://example.com/a.mp3" {
		t.Errorf("TagValue(r) = %q, want first r tag", got)
	}
	if got := e.TagValue("missing"); got != "" {
		t.Errorf("TagValue(missing) = %q, want empty", got)
	}
}

func TestEvent_TagValues_PreservesOrder(t *testing.T) {
	e := &Event{Tags: []Tag{
		{"r", "url1"},
		{"title", "My List"},
		{"r", "url2"},
		{"r", "url3"},
	}}

	got := e.TagValues("r")
	want := []string{"url1", "url2", "url3"}
	if len(got) != len(want) {
		t.Fatalf("TagValues(r) len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TagValues(r)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEvent_TagsNamed(t *testing.T) {
	e := &Event{Tags: []Tag{
		{"track_title", "url1", "Song A"},
		{"r", "url1"},
		{"track_title", "url2", "Song B"},
	}}

	tags := e.TagsNamed("track_title")
	if len(tags) != 2 {
		t.Fatalf("TagsNamed len = %d, want 2", len(tags))
	}
	if tags[0][2] != "Song A" || tags[1][2] != "Song B" {
		t.Errorf("TagsNamed returned wrong tags: %v", tags)
	}
}

func TestEvent_ComputeID_Deterministic(t *testing.T) {
	e := &Event{
		PubKey:    "ab12",
		CreatedAt: 1700000000,
		Kind:      KindReaction,
		Tags:      []Tag{{"e", "target"}},
		Content:   "+",
	}

	first := e.ComputeID()
	second := e.ComputeID()

	if first == "" {
		t.Fatal("ComputeID returned empty id")
	}
	if first != second {
		t.Errorf("ComputeID not deterministic: %q != %q", first, second)
	}
	if len(first) != 64 {
		t.Errorf("ComputeID len = %d, want 64 hex chars", len(first))
	}
}

func TestEvent_ComputeID_NoHTMLEscaping(t *testing.T) {
	e := &Event{
		PubKey:    "ab12",
		CreatedAt: 1700000000,
		Kind:      KindTrack,
		Tags:      []Tag{{"r", "https://cdn.example.com/a.mp3?sig=1&exp=2"}},
		Content:   "Rock & Roll <live>",
	}

	// &, < and > must hash verbatim, not as \u0026 escapes.
	preimage := `[0,"ab12",1700000000,31337,` +
		`[["r","https://cdn.example.com/a.mp3?sig=1&exp=2"]],"Rock & Roll <live>"]`
	sum := sha256.Sum256([]byte(preimage))
	want := hex.EncodeToString(sum[:])

	if got := e.ComputeID(); got != want {
		t.Errorf("ComputeID = %q, want %q", got, want)
	}
}

func TestEvent_ComputeID_ChangesWithContent(t *testing.T) {
	a := &Event{PubKey: "ab12", CreatedAt: 1, Kind: KindReaction, Content: "+"}
	b := &Event{PubKey: "ab12", CreatedAt: 1, Kind: KindReaction, Content: ""}

	if a.ComputeID() == b.ComputeID() {
		t.Error("events with different content should have different ids")
	}
}
