// Package playlist implements the replicated playlist model: a named,
// ordered list of track URLs plus per-track metadata, encoded as the tag
// list of a replaceable event. Storage is replace-by-identifier, so
// every mutation rebuilds the complete tag set.
package playlist

import (
	"errors"

	"github.com/google/uuid"
)

// LikedSongsIdentifier is the reserved identifier of the per-user
// auto-created "Liked Songs" playlist.
const LikedSongsIdentifier = "zaptrax-liked-songs"

// LikedSongsTitle is its display title.
const LikedSongsTitle = "Liked Songs"

var (
	// ErrTrackAlreadyPresent is returned when adding a URL the playlist
	// already references.
	ErrTrackAlreadyPresent = errors.New("track already in playlist")
	// ErrTrackNotFound is returned when removing a URL the playlist does
	// not reference.
	ErrTrackNotFound = errors.New("track not in playlist")
	// ErrMissingIdentifier is returned when an operation requires a
	// playlist identifier and none is set.
	ErrMissingIdentifier = errors.New("playlist identifier missing")
	// ErrNotFound is returned when no playlist exists for an identifier.
	ErrNotFound = errors.New("playlist not found")
)

// TrackMeta is the per-track metadata side-table entry, keyed by the
// track's URL in the encoded tag list.
type TrackMeta struct {
	Title        string
	Artist       string
	ImageURL     string
	Source       string
	MediaURL     string
	DurationSecs int
	FeedID       string
	GUID         string
}

// Playlist is a named, ordered collection of track references.
//
// TrackRefs holds the display order; Meta is keyed by track URL.
// NeedsLookup lists referenced URLs that carry no metadata tags (old
// playlists predating the side-table) and must be resolved live from
// their source.
type Playlist struct {
	Identifier  string
	Title       string
	Description string
	TrackRefs   []string
	Meta        map[string]TrackMeta
	NeedsLookup []string

	// Set when the playlist was decoded from a replicated event; needed
	// for tombstoning.
	EventID   string
	CreatedAt int64
}

// New creates an empty playlist with a fresh identifier.
func New(title, description string) Playlist {
	return Playlist{
		Identifier:  uuid.NewString(),
		Title:       title,
		Description: description,
		Meta:        make(map[string]TrackMeta),
	}
}

// NewLikedSongs creates the reserved liked-songs playlist.
func NewLikedSongs() Playlist {
	p := New(LikedSongsTitle, "")
	p.Identifier = LikedSongsIdentifier
	return p
}

// Contains reports whether the playlist references the URL.
func (p Playlist) Contains(url string) bool {
	for _, ref := range p.TrackRefs {
		if ref == url {
			return true
		}
	}
	return false
}

// AddTrack returns a copy of the playlist with the track appended.
// Unrelated tracks and their metadata pass through untouched. Fails
// before any mutation when the URL is already present.
func AddTrack(p Playlist, url string, meta TrackMeta) (Playlist, error) {
	if p.Contains(url) {
		return Playlist{}, ErrTrackAlreadyPresent
	}

	out := clone(p)
	out.TrackRefs = append(out.TrackRefs, url)
	out.Meta[url] = meta
	return out, nil
}

// RemoveTrack returns a copy of the playlist with the URL's reference
// and metadata removed. All other tracks' metadata is untouched.
func RemoveTrack(p Playlist, url string) (Playlist, error) {
	if !p.Contains(url) {
		return Playlist{}, ErrTrackNotFound
	}

	out := clone(p)
	var refs []string
	for _, ref := range out.TrackRefs {
		if ref != url {
			refs = append(refs, ref)
		}
	}
	out.TrackRefs = refs
	delete(out.Meta, url)

	var lookup []string
	for _, ref := range out.NeedsLookup {
		if ref != url {
			lookup = append(lookup, ref)
		}
	}
	out.NeedsLookup = lookup
	return out, nil
}

func clone(p Playlist) Playlist {
	out := p
	out.TrackRefs = make([]string, len(p.TrackRefs))
	copy(out.TrackRefs, p.TrackRefs)
	out.Meta = make(map[string]TrackMeta, len(p.Meta))
	for k, v := range p.Meta {
		out.Meta[k] = v
	}
	if p.NeedsLookup != nil {
		out.NeedsLookup = make([]string, len(p.NeedsLookup))
		copy(out.NeedsLookup, p.NeedsLookup)
	}
	return out
}
