// Package nostr implements the replicated-event layer: event and filter
// types plus a websocket relay client used for querying and publishing.
package nostr

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Event kinds used by the engine.
const (
	KindComment    = 1
	KindDeletion   = 5
	KindReaction   = 7
	KindPlaylist   = 30003
	KindNowPlaying = 30315
	KindTrack      = 31337
)

// Tag is a structured key-value(s) attachment on an event.
// The first element is the tag name, the rest are values.
type Tag []string

// Name returns the tag name, or "" for a malformed empty tag.
func (t Tag) Name() string {
	if len(t) == 0 {
		return ""
	}
	return t[0]
}

// Value returns the first value, or "" if the tag has none.
func (t Tag) Value() string {
	if len(t) < 2 {
		return ""
	}
	return t[1]
}

// Event is an immutable, author-signed record replicated across relays.
type Event struct {
	ID        string `json:"id"`
	PubKey    string `json:"pubkey"`
	CreatedAt int64  `json:"created_at"`
	Kind      int    `json:"kind"`
	Tags      []Tag  `json:"tags"`
	Content   string `json:"content"`
	Sig       string `json:"sig"`
}

// TagValue returns the first value of the first tag with the given name.
func (e *Event) TagValue(name string) string {
	for _, t := range e.Tags {
		if t.Name() == name {
			return t.Value()
		}
	}
	return ""
}

// TagValues returns the first value of every tag with the given name,
// in tag order.
func (e *Event) TagValues(name string) []string {
	var values []string
	for _, t := range e.Tags {
		if t.Name() == name {
			values = append(values, t.Value())
		}
	}
	return values
}

// TagsNamed returns every tag with the given name, in tag order.
func (e *Event) TagsNamed(name string) []Tag {
	var tags []Tag
	for _, t := range e.Tags {
		if t.Name() == name {
			tags = append(tags, t)
		}
	}
	return tags
}

// ComputeID returns the canonical event id: the hex sha256 of the
// serialized [0, pubkey, created_at, kind, tags, content] array.
// The serialization must not HTML-escape, or ids for content holding
// &, < or > diverge from every other client's.
func (e *Event) ComputeID() string {
	arr := []any{0, e.PubKey, e.CreatedAt, e.Kind, e.Tags, e.Content}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(arr); err != nil {
		return ""
	}
	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:])
}

// Signer finalizes an event before publishing: it sets PubKey, computes
// the id, and attaches a signature. Key handling is the caller's concern;
// the engine only requires the contract.
type Signer interface {
	PublicKey() string
	Sign(ctx context.Context, e *Event) error
}
