package track

import (
	"testing"

	"github.com/zaptrax/zaptrax/internal/catalog"
	"github.com/zaptrax/zaptrax/internal/nostr"
	"github.com/zaptrax/zaptrax/internal/podcast"
)

func TestFromCatalogTrack(t *testing.T) {
	raw := &catalog.Track{
		ID:          "42",
		Title:       "Midnight Drive",
		Artist:      "The Wanderers",
		AlbumTitle:  "Nightfall",
		MediaURL:    "https://cdn.example.com/42.mp3",
		Duration:    213.5,
		ArtistID:    "artist-7",
		AlbumID:     "album-3",
		ReleaseDate: "2024-03-01",
	}

	got := FromCatalogTrack(raw)

	if got.ID != "catalog-42" {
		t.Errorf("ID = %q, want catalog-42", got.ID)
	}
	if got.Source != SourceCatalog {
		t.Errorf("Source = %q, want catalog", got.Source)
	}
	if got.SourceID != "42" {
		t.Errorf("SourceID = %q, want 42", got.SourceID)
	}
	if got.Title != "Midnight Drive" || got.Artist != "The Wanderers" {
		t.Errorf("title/artist not mapped: %q / %q", got.Title, got.Artist)
	}
	if got.Duration != 213.5 {
		t.Errorf("Duration = %v, want 213.5", got.Duration)
	}
}

func TestFromCatalogTrack_DefensiveDefaults(t *testing.T) {
	got := FromCatalogTrack(&catalog.Track{ID: "1"})

	if got.Title != "" || got.Artist != "" || got.AlbumTitle != "" {
		t.Error("missing fields should default to empty strings")
	}
	if got.ID != "catalog-1" {
		t.Errorf("ID = %q, want catalog-1", got.ID)
	}

	// A nil input must not panic either.
	got = FromCatalogTrack(nil)
	if got.Source != SourceCatalog {
		t.Errorf("nil input Source = %q, want catalog", got.Source)
	}
}

func TestIDPrefix_DisambiguatesSources(t *testing.T) {
	c := FromCatalogTrack(&catalog.Track{ID: "99"})
	p := FromPodcastEpisode(&podcast.Episode{ID: 99}, nil)

	if c.ID == p.ID {
		t.Errorf("tracks from different sources share id %q", c.ID)
	}
	if c.SourceID != p.SourceID {
		t.Fatalf("test requires identical source-local ids, got %q and %q", c.SourceID, p.SourceID)
	}
}

func TestFromPodcastEpisode_ArtworkFallbacks(t *testing.T) {
	feed := &podcast.Feed{Title: "Tech Talk", Author: "Jane Host", Image: "feed.png"}

	tests := []struct {
		name    string
		episode podcast.Episode
		want    string
	}{
		{"episode image wins", podcast.Episode{Image: "ep.png", FeedImage: "epfeed.png"}, "ep.png"},
		{"episode feed image second", podcast.Episode{FeedImage: "epfeed.png"}, "epfeed.png"},
		{"feed image last", podcast.Episode{}, "feed.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPodcastEpisode(&tt.episode, feed)
			if got.AlbumArtURL != tt.want {
				t.Errorf("AlbumArtURL = %q, want %q", got.AlbumArtURL, tt.want)
			}
		})
	}
}

func TestFromPodcastEpisode_ArtistFallback(t *testing.T) {
	ep := &podcast.Episode{ID: 1, Title: "Ep 1"}

	got := FromPodcastEpisode(ep, &podcast.Feed{Author: "Jane Host", Title: "Tech Talk"})
	if got.Artist != "Jane Host" {
		t.Errorf("Artist = %q, want feed author", got.Artist)
	}

	got = FromPodcastEpisode(ep, &podcast.Feed{Title: "Tech Talk"})
	if got.Artist != "Tech Talk" {
		t.Errorf("Artist = %q, want feed title fallback", got.Artist)
	}
}

func TestFromPodcastEpisode_ValuePrecedence(t *testing.T) {
	feedValue := &podcast.Value{Destinations: []podcast.Recipient{{Address: "feedaddr", Split: 100}}}
	epValue := &podcast.Value{Destinations: []podcast.Recipient{{Address: "epaddr", Split: 100}}}
	feed := &podcast.Feed{Value: feedValue}

	got := FromPodcastEpisode(&podcast.Episode{Value: epValue}, feed)
	if !got.HasValue() || got.Value.Recipients[0].Address != "epaddr" {
		t.Error("episode-level value block should win over feed-level")
	}

	got = FromPodcastEpisode(&podcast.Episode{}, feed)
	if !got.HasValue() || got.Value.Recipients[0].Address != "feedaddr" {
		t.Error("feed-level value block should apply when episode has none")
	}
}

func TestFromNostrEvent(t *testing.T) {
	ev := &nostr.Event{
		ID:   "ab01",
		Kind: nostr.KindTrack,
		Tags: []nostr.Tag{
			{"title", "Block Party"},
			{"creator", "satoshi"},
			{"media", "https://cdn.example.com/bp.mp3"},
			{"cover", "https://cdn.example.com/bp.png"},
			{"duration", "180"},
		},
	}

	got := FromNostrEvent(ev)

	if got.ID != "nostr-ab01" {
		t.Errorf("ID = %q, want nostr-ab01", got.ID)
	}
	if got.Title != "Block Party" || got.Artist != "satoshi" {
		t.Errorf("title/artist = %q / %q", got.Title, got.Artist)
	}
	if got.MediaURL != "https://cdn.example.com/bp.mp3" {
		t.Errorf("MediaURL = %q", got.MediaURL)
	}
	if got.Duration != 180 {
		t.Errorf("Duration = %v, want 180", got.Duration)
	}
}

func TestFromNostrEvent_EmptyTags(t *testing.T) {
	got := FromNostrEvent(&nostr.Event{ID: "x", Kind: nostr.KindTrack})

	if got.Title != "" || got.Artist != "" || got.MediaURL != "" {
		t.Error("absent tags should default to empty strings")
	}
}
