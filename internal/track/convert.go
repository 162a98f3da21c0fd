package track

import (
	"strconv"

	"github.com/zaptrax/zaptrax/internal/catalog"
	"github.com/zaptrax/zaptrax/internal/nostr"
	"github.com/zaptrax/zaptrax/internal/podcast"
)

// FromCatalogTrack converts a raw catalog track. The conversion is total:
// missing optional fields become empty strings or zero, never an error.
func FromCatalogTrack(raw *catalog.Track) Track {
	if raw == nil {
		return Track{Source: SourceCatalog, ID: string(SourceCatalog) + "-"}
	}
	return Track{
		ID:           string(SourceCatalog) + "-" + raw.ID,
		Source:       SourceCatalog,
		SourceID:     raw.ID,
		Title:        raw.Title,
		Artist:       raw.Artist,
		AlbumTitle:   raw.AlbumTitle,
		AlbumArtURL:  raw.AlbumArtURL,
		ArtistArtURL: raw.ArtistArtURL,
		MediaURL:     raw.MediaURL,
		Duration:     raw.Duration,
		ReleaseDate:  raw.ReleaseDate,
		ArtistID:     raw.ArtistID,
		AlbumID:      raw.AlbumID,
	}
}

// FromPodcastEpisode converts a podcast episode, optionally enriched by
// its feed. Episode-level payment metadata wins over feed-level; artwork
// falls back episode image → episode's feed image → feed image, and the
// artist falls back feed author → feed title.
func FromPodcastEpisode(episode *podcast.Episode, feed *podcast.Feed) Track {
	if episode == nil {
		return Track{Source: SourcePodcast, ID: string(SourcePodcast) + "-"}
	}

	t := Track{
		ID:          string(SourcePodcast) + "-" + strconv.FormatInt(episode.ID, 10),
		Source:      SourcePodcast,
		SourceID:    strconv.FormatInt(episode.ID, 10),
		Title:       episode.Title,
		AlbumTitle:  episode.FeedTitle,
		MediaURL:    episode.EnclosureURL,
		Duration:    float64(episode.Duration),
		FeedID:      episode.FeedID,
		FeedURL:     episode.FeedURL,
		EpisodeGUID: episode.GUID,
	}

	t.AlbumArtURL = episode.Image
	if t.AlbumArtURL == "" {
		t.AlbumArtURL = episode.FeedImage
	}

	value := episode.Value
	if feed != nil {
		t.Artist = feed.Author
		if t.Artist == "" {
			t.Artist = feed.Title
		}
		if t.AlbumTitle == "" {
			t.AlbumTitle = feed.Title
		}
		if t.AlbumArtURL == "" {
			t.AlbumArtURL = feed.Image
		}
		if t.FeedURL == "" {
			t.FeedURL = feed.URL
		}
		if value == nil {
			value = feed.Value
		}
	}
	if t.Artist == "" {
		t.Artist = episode.FeedTitle
	}
	t.Value = convertValue(value)

	return t
}

// FromNostrEvent converts a native track event (kind 31337). Fields are
// read from the event's tags; anything absent defaults to empty.
func FromNostrEvent(ev *nostr.Event) Track {
	if ev == nil {
		return Track{Source: SourceNostr, ID: string(SourceNostr) + "-"}
	}

	duration, _ := strconv.ParseFloat(ev.TagValue("duration"), 64)

	media := ev.TagValue("media")
	if media == "" {
		media = ev.TagValue("enclosure")
	}

	return Track{
		ID:          string(SourceNostr) + "-" + ev.ID,
		Source:      SourceNostr,
		SourceID:    ev.ID,
		Title:       ev.TagValue("title"),
		Artist:      ev.TagValue("creator"),
		AlbumTitle:  ev.TagValue("album"),
		AlbumArtURL: ev.TagValue("cover"),
		MediaURL:    media,
		Duration:    duration,
		ReleaseDate: ev.TagValue("published_at"),
	}
}

func convertValue(v *podcast.Value) *ValueBlock {
	if v == nil || len(v.Destinations) == 0 {
		return nil
	}
	block := &ValueBlock{}
	for _, d := range v.Destinations {
		block.Recipients = append(block.Recipients, ValueRecipient{
			Name:    d.Name,
			Address: d.Address,
			Split:   d.Split,
			Type:    d.Type,
		})
	}
	return block
}
