package playlist

import (
	"strconv"

	"github.com/zaptrax/zaptrax/internal/nostr"
)

// Tag vocabulary of the encoded playlist event. Other clients read the
// same replicated data, so these names are part of the wire contract.
const (
	tagIdentifier  = "d"
	tagTitle       = "title"
	tagDescription = "description"
	tagTopic       = "t"
	tagTrackRef    = "r"

	tagTrackTitle    = "track_title"
	tagTrackArtist   = "track_artist"
	tagTrackImage    = "track_image"
	tagTrackSource   = "track_source"
	tagTrackMedia    = "track_media"
	tagTrackDuration = "track_duration"
	tagTrackFeedID   = "track_feed_id"
	tagTrackGUID     = "track_guid"
)

// topicValue marks playlist events so they can be found by topic filter.
const topicValue = "music"

// metaTagNames is the fixed per-track metadata tag set, in emission
// order. Every track always gets all of them, even with empty values,
// so decode can reconstruct the side-table exactly.
var metaTagNames = []string{
	tagTrackTitle,
	tagTrackArtist,
	tagTrackImage,
	tagTrackSource,
	tagTrackMedia,
	tagTrackDuration,
	tagTrackFeedID,
	tagTrackGUID,
}

// Encode emits the complete tag list for the playlist: the identity,
// title, optional description and topic tags, then for every track (in
// order) its reference tag followed by the fixed metadata tag set.
//
// Because the store replaces the whole tag list on every update, Encode
// must always emit everything the playlist knows; callers never append
// to a previously published tag list.
func Encode(p Playlist) []nostr.Tag {
	tags := []nostr.Tag{
		{tagIdentifier, p.Identifier},
		{tagTitle, p.Title},
	}
	if p.Description != "" {
		tags = append(tags, nostr.Tag{tagDescription, p.Description})
	}
	tags = append(tags, nostr.Tag{tagTopic, topicValue})

	needsLookup := make(map[string]bool, len(p.NeedsLookup))
	for _, url := range p.NeedsLookup {
		needsLookup[url] = true
	}

	for _, url := range p.TrackRefs {
		tags = append(tags, nostr.Tag{tagTrackRef, url})
		if needsLookup[url] {
			// No side-table entry to re-emit; readers resolve it live.
			continue
		}
		meta := p.Meta[url]
		values := []string{
			meta.Title,
			meta.Artist,
			meta.ImageURL,
			meta.Source,
			meta.MediaURL,
			strconv.Itoa(meta.DurationSecs),
			meta.FeedID,
			meta.GUID,
		}
		for i, name := range metaTagNames {
			tags = append(tags, nostr.Tag{name, url, values[i]})
		}
	}
	return tags
}

// Decode reconstructs a playlist from a tag list. Tag order of the
// reference tags defines track order; metadata tags are grouped by
// their URL key. Tracks with no metadata tags at all are flagged for
// external lookup.
func Decode(tags []nostr.Tag) Playlist {
	p := Playlist{Meta: make(map[string]TrackMeta)}
	hasMeta := make(map[string]bool)

	for _, tag := range tags {
		switch tag.Name() {
		case tagIdentifier:
			p.Identifier = tag.Value()
		case tagTitle:
			p.Title = tag.Value()
		case tagDescription:
			p.Description = tag.Value()
		case tagTrackRef:
			if url := tag.Value(); url != "" && !p.Contains(url) {
				p.TrackRefs = append(p.TrackRefs, url)
			}
		case tagTrackTitle, tagTrackArtist, tagTrackImage, tagTrackSource,
			tagTrackMedia, tagTrackDuration, tagTrackFeedID, tagTrackGUID:
			if len(tag) < 3 {
				continue
			}
			url := tag[1]
			meta := p.Meta[url]
			applyMetaTag(&meta, tag.Name(), tag[2])
			p.Meta[url] = meta
			hasMeta[url] = true
		}
	}

	for _, url := range p.TrackRefs {
		if !hasMeta[url] {
			delete(p.Meta, url)
			p.NeedsLookup = append(p.NeedsLookup, url)
		}
	}
	return p
}

// DecodeEvent decodes a playlist event, retaining the event linkage
// needed for superseding and tombstoning it.
func DecodeEvent(ev *nostr.Event) Playlist {
	p := Decode(ev.Tags)
	p.EventID = ev.ID
	p.CreatedAt = ev.CreatedAt
	return p
}

func applyMetaTag(meta *TrackMeta, name, value string) {
	switch name {
	case tagTrackTitle:
		meta.Title = value
	case tagTrackArtist:
		meta.Artist = value
	case tagTrackImage:
		meta.ImageURL = value
	case tagTrackSource:
		meta.Source = value
	case tagTrackMedia:
		meta.MediaURL = value
	case tagTrackDuration:
		meta.DurationSecs, _ = strconv.Atoi(value)
	case tagTrackFeedID:
		meta.FeedID = value
	case tagTrackGUID:
		meta.GUID = value
	}
}
