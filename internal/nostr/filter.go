package nostr

import (
	"encoding/json"
	"slices"
)

// Filter selects events by kind, author, id, tag values and time bound.
// Tag keys are bare names ("e", "d", "r"); the wire format prefixes "#".
type Filter struct {
	IDs     []string
	Kinds   []int
	Authors []string
	Tags    map[string][]string
	Since   int64
	Until   int64
	Limit   int
}

// MarshalJSON emits the relay wire representation of the filter.
func (f Filter) MarshalJSON() ([]byte, error) {
	m := make(map[string]any)
	if len(f.IDs) > 0 {
		m["ids"] = f.IDs
	}
	if len(f.Kinds) > 0 {
		m["kinds"] = f.Kinds
	}
	if len(f.Authors) > 0 {
		m["authors"] = f.Authors
	}
	for name, values := range f.Tags {
		if len(values) > 0 {
			m["#"+name] = values
		}
	}
	if f.Since > 0 {
		m["since"] = f.Since
	}
	if f.Until > 0 {
		m["until"] = f.Until
	}
	if f.Limit > 0 {
		m["limit"] = f.Limit
	}
	return json.Marshal(m)
}

// Matches reports whether the event satisfies every constraint of the
// filter. Relays already filter server-side; this guards against
// misbehaving relays sending events outside the subscription.
func (f Filter) Matches(e *Event) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, e.ID) {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, e.Kind) {
		return false
	}
	if len(f.Authors) > 0 && !slices.Contains(f.Authors, e.PubKey) {
		return false
	}
	if f.Since > 0 && e.CreatedAt < f.Since {
		return false
	}
	if f.Until > 0 && e.CreatedAt > f.Until {
		return false
	}
	for name, wanted := range f.Tags {
		if len(wanted) == 0 {
			continue
		}
		found := false
		for _, have := range e.TagValues(name) {
			if slices.Contains(wanted, have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
