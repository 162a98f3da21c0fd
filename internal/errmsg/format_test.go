//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpPlaybackStart,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpPlaybackStart,
			err:      errors.New("no audio device"),
			expected: "Failed to start playback: no audio device",
		},
		{
			name:     "relay query operation",
			op:       OpRelayQuery,
			err:      errors.New("no reachable relays"),
			expected: "Failed to query relays: no reachable relays",
		},
		{
			name:     "playlist operation",
			op:       OpPlaylistCreate,
			err:      errors.New("already exists"),
			expected: "Failed to create playlist: already exists",
		},
		{
			name:     "cast operation",
			op:       OpCastStart,
			err:      errors.New("no receiver"),
			expected: "Failed to start cast session: no receiver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpTrackLookup,
			context:  "catalog-42",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpTrackLookup,
			context:  "catalog-42",
			err:      errors.New("not found"),
			expected: "Failed to look up track 'catalog-42': not found",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpTrackLookup,
			context:  "",
			err:      errors.New("not found"),
			expected: "Failed to look up track: not found",
		},
		{
			name:     "playlist add track with context",
			op:       OpPlaylistAddTrack,
			context:  "Road Trip",
			err:      errors.New("track already in playlist"),
			expected: "Failed to add track to playlist 'Road Trip': track already in playlist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpPlaybackStart, OpPlaybackSeek, OpCastStart, OpCastStop,
		OpQueueLoad, OpQueueSave,
		OpPlaylistCreate, OpPlaylistDelete, OpPlaylistAddTrack,
		OpPlaylistRemove, OpPlaylistLoad,
		OpLikeToggle, OpReactionLoad, OpCommentLoad, OpCommentSend,
		OpTrackLookup, OpFeedLookup, OpEpisodeLookup,
		OpRelayQuery, OpRelayPublish,
		OpScrobble, OpNowPlaying,
		OpInitialize,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
