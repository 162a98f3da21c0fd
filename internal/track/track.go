// Package track defines the unified track model: one canonical record
// for tracks originating from the commercial catalog, podcast feeds, or
// native track events. Conversion happens once at the boundary; nothing
// downstream re-derives the source.
package track

// Source identifies where a track came from.
type Source string

const (
	SourceCatalog Source = "catalog"
	SourcePodcast Source = "podcast"
	SourceNostr   Source = "nostr"
)

// ValueRecipient is one payment destination in a value block.
type ValueRecipient struct {
	Name    string
	Address string
	Split   float64
	Type    string
}

// ValueBlock lists the payment recipients for a track.
type ValueBlock struct {
	Recipients []ValueRecipient
}

// Track is the canonical track record used everywhere downstream.
//
// ID is source-prefixed ("catalog-123", "podcast-456", "nostr-ab0f...")
// so tracks from different sources with colliding source-local ids never
// collide in a queue or playlist. Tracks are built by the From*
// conversions and treated as immutable afterwards.
type Track struct {
	ID       string
	Source   Source
	SourceID string

	Title        string
	Artist       string
	AlbumTitle   string
	AlbumArtURL  string
	ArtistArtURL string

	MediaURL    string
	Duration    float64 // seconds
	ReleaseDate string

	// Source-local navigation ids, empty when not applicable.
	ArtistID string
	AlbumID  string

	// Podcast linkage, zero/empty for other sources.
	FeedID      int64
	FeedURL     string
	EpisodeGUID string

	Value *ValueBlock
}

// HasValue reports whether the track carries payment recipients.
func (t *Track) HasValue() bool {
	return t.Value != nil && len(t.Value.Recipients) > 0
}
