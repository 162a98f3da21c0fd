// Package social derives reaction state from replicated events:
// deletion-aware, latest-per-author like sets for tracks, notes, and
// artists.
package social

import (
	"strconv"

	"github.com/zaptrax/zaptrax/internal/nostr"
)

// likeContents are the literal content strings that count as a like.
// Empty content counts: clients in the wild publish empty reactions and
// the established convention treats them as likes.
var likeContents = map[string]bool{
	"+":  true,
	"🤙": true,
	"":   true,
}

// IsLikeContent reports whether a reaction's content marks a positive
// reaction.
func IsLikeContent(content string) bool {
	return likeContents[content]
}

// ExcludeDeleted removes events whose id is referenced by a deletion
// event authored by the same pubkey. A deletion only suppresses events
// of the kind it targets: when the deletion carries "k" tags, the
// event's kind must be among them. Always apply this before
// ResolveLatestPerAuthor so a deleted newest event cannot shadow an
// older live one.
func ExcludeDeleted(events, deletions []nostr.Event) []nostr.Event {
	if len(deletions) == 0 {
		return events
	}

	// author -> set of deleted event ids
	deleted := make(map[string]map[string]bool)
	kinds := make(map[string]map[string][]int) // author -> event id -> targeted kinds
	for _, d := range deletions {
		if d.Kind != nostr.KindDeletion {
			continue
		}
		ids := d.TagValues("e")
		if len(ids) == 0 {
			continue
		}
		var targeted []int
		for _, k := range d.TagValues("k") {
			if kind, err := strconv.Atoi(k); err == nil {
				targeted = append(targeted, kind)
			}
		}
		if deleted[d.PubKey] == nil {
			deleted[d.PubKey] = make(map[string]bool)
			kinds[d.PubKey] = make(map[string][]int)
		}
		for _, id := range ids {
			deleted[d.PubKey][id] = true
			kinds[d.PubKey][id] = targeted
		}
	}

	var kept []nostr.Event
	for _, ev := range events {
		if deleted[ev.PubKey][ev.ID] && kindTargeted(kinds[ev.PubKey][ev.ID], ev.Kind) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}

func kindTargeted(targeted []int, kind int) bool {
	if len(targeted) == 0 {
		return true
	}
	for _, k := range targeted {
		if k == kind {
			return true
		}
	}
	return false
}

// ResolveLatestPerAuthor reduces a set of reaction events to at most one
// per author, then filters to positive reactions.
//
// The two-step order is deliberate: the latest event per author is
// picked first (by created_at, ties broken by later position in the
// input), and only then is the result filtered by content. An author
// whose most recent event is an "unlike" therefore contributes nothing,
// even though an older like from them is still in the input.
func ResolveLatestPerAuthor(events []nostr.Event) []nostr.Event {
	latest := make(map[string]nostr.Event, len(events))
	order := make([]string, 0, len(events))

	for _, ev := range events {
		current, seen := latest[ev.PubKey]
		if !seen {
			order = append(order, ev.PubKey)
			latest[ev.PubKey] = ev
			continue
		}
		if ev.CreatedAt >= current.CreatedAt {
			latest[ev.PubKey] = ev
		}
	}

	var resolved []nostr.Event
	for _, author := range order {
		ev := latest[author]
		if IsLikeContent(ev.Content) {
			resolved = append(resolved, ev)
		}
	}
	return resolved
}

// Reaction is one author's current like on a subject.
type Reaction struct {
	Author    string
	EventID   string
	CreatedAt int64
}

// ReactionSet is the derived like state for one subject.
type ReactionSet struct {
	Likes []Reaction
}

// LikeCount returns the number of distinct authors currently liking the
// subject.
func (s ReactionSet) LikeCount() int {
	return len(s.Likes)
}

// IsLikedBy reports whether the given author currently likes the subject.
func (s ReactionSet) IsLikedBy(pubkey string) bool {
	for _, l := range s.Likes {
		if l.Author == pubkey {
			return true
		}
	}
	return false
}

// BuildReactionSet computes the current like state for one subject from
// its reaction and deletion event streams.
func BuildReactionSet(reactions, deletions []nostr.Event) ReactionSet {
	resolved := ResolveLatestPerAuthor(ExcludeDeleted(reactions, deletions))
	set := ReactionSet{}
	for _, ev := range resolved {
		set.Likes = append(set.Likes, Reaction{
			Author:    ev.PubKey,
			EventID:   ev.ID,
			CreatedAt: ev.CreatedAt,
		})
	}
	return set
}
