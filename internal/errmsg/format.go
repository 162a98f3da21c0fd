// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpCastStart     Op = "start cast session"
	OpCastStop      Op = "stop cast session"

	// Queue operations
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"

	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"
	OpPlaylistLoad     Op = "load playlists"

	// Social operations
	OpLikeToggle   Op = "update like"
	OpReactionLoad Op = "load reactions"
	OpCommentLoad  Op = "load comments"
	OpCommentSend  Op = "publish comment"

	// Source lookups
	OpTrackLookup   Op = "look up track"
	OpFeedLookup    Op = "look up feed"
	OpEpisodeLookup Op = "look up episode"

	// Relay operations
	OpRelayQuery   Op = "query relays"
	OpRelayPublish Op = "publish to relays"

	// Scrobbling
	OpScrobble   Op = "scrobble track"
	OpNowPlaying Op = "update now playing"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
