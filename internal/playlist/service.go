package playlist

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/nostr"
)

// Relays is the slice of relay-pool behavior the service needs.
type Relays interface {
	Query(ctx context.Context, filter nostr.Filter) ([]nostr.Event, error)
	Publish(ctx context.Context, ev *nostr.Event) error
}

// Service manages the user's playlists on the relay set. Every mutation
// fetches the latest replica, applies the change locally, and publishes
// a full replacement event under the same identifier.
type Service struct {
	relays Relays
	signer nostr.Signer
	log    *zap.Logger
	now    func() int64
}

// NewService creates a playlist service for the signer's identity.
func NewService(relays Relays, signer nostr.Signer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		relays: relays,
		signer: signer,
		log:    log,
		now:    func() int64 { return time.Now().Unix() },
	}
}

// List returns all of the user's playlists, newest replica per
// identifier.
func (s *Service) List(ctx context.Context) ([]Playlist, error) {
	events, err := s.relays.Query(ctx, nostr.Filter{
		Kinds:   []int{nostr.KindPlaylist},
		Authors: []string{s.signer.PublicKey()},
	})
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}

	latest := make(map[string]nostr.Event)
	order := make([]string, 0, len(events))
	for _, ev := range events {
		id := ev.TagValue("d")
		if id == "" {
			continue
		}
		current, seen := latest[id]
		if !seen {
			order = append(order, id)
		}
		if !seen || ev.CreatedAt > current.CreatedAt {
			latest[id] = ev
		}
	}

	playlists := make([]Playlist, 0, len(order))
	for _, id := range order {
		ev := latest[id]
		playlists = append(playlists, DecodeEvent(&ev))
	}
	return playlists, nil
}

// Get returns the newest replica of the playlist with the given
// identifier, or ErrNotFound.
func (s *Service) Get(ctx context.Context, identifier string) (Playlist, error) {
	if identifier == "" {
		return Playlist{}, ErrMissingIdentifier
	}
	events, err := s.relays.Query(ctx, nostr.Filter{
		Kinds:   []int{nostr.KindPlaylist},
		Authors: []string{s.signer.PublicKey()},
		Tags:    map[string][]string{"d": {identifier}},
	})
	if err != nil {
		return Playlist{}, fmt.Errorf("query playlist %s: %w", identifier, err)
	}
	if len(events) == 0 {
		return Playlist{}, ErrNotFound
	}

	newest := events[0]
	for _, ev := range events[1:] {
		if ev.CreatedAt > newest.CreatedAt {
			newest = ev
		}
	}
	return DecodeEvent(&newest), nil
}

// Create publishes a new empty playlist and returns it.
func (s *Service) Create(ctx context.Context, title, description string) (Playlist, error) {
	p := New(title, description)
	if err := s.publish(ctx, p); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// AddTrack appends a track to the playlist and publishes the updated
// replica. The latest replica is always fetched first so a stale local
// copy cannot clobber tracks added elsewhere.
func (s *Service) AddTrack(ctx context.Context, identifier, url string, meta TrackMeta) (Playlist, error) {
	p, err := s.Get(ctx, identifier)
	if err != nil {
		return Playlist{}, err
	}
	updated, err := AddTrack(p, url, meta)
	if err != nil {
		return Playlist{}, err
	}
	if err := s.publish(ctx, updated); err != nil {
		return Playlist{}, err
	}
	return updated, nil
}

// RemoveTrack removes a track from the playlist and publishes the
// updated replica.
func (s *Service) RemoveTrack(ctx context.Context, identifier, url string) (Playlist, error) {
	p, err := s.Get(ctx, identifier)
	if err != nil {
		return Playlist{}, err
	}
	updated, err := RemoveTrack(p, url)
	if err != nil {
		return Playlist{}, err
	}
	if err := s.publish(ctx, updated); err != nil {
		return Playlist{}, err
	}
	return updated, nil
}

// Delete tombstones the playlist. The deletion references both the
// concrete event id and the replaceable address so relays drop every
// replica.
func (s *Service) Delete(ctx context.Context, p Playlist) error {
	if p.Identifier == "" {
		return ErrMissingIdentifier
	}
	addr := fmt.Sprintf("%d:%s:%s", nostr.KindPlaylist, s.signer.PublicKey(), p.Identifier)
	ev := &nostr.Event{
		Kind:      nostr.KindDeletion,
		CreatedAt: s.now(),
		Tags: []nostr.Tag{
			{"a", addr},
			{"k", fmt.Sprintf("%d", nostr.KindPlaylist)},
		},
	}
	if p.EventID != "" {
		ev.Tags = append([]nostr.Tag{{"e", p.EventID}}, ev.Tags...)
	}
	if err := s.signer.Sign(ctx, ev); err != nil {
		return fmt.Errorf("sign deletion: %w", err)
	}
	if err := s.relays.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish deletion: %w", err)
	}
	s.log.Info("playlist deleted", zap.String("identifier", p.Identifier))
	return nil
}

// LikedSongs returns the user's liked-songs playlist, creating it on
// first use.
func (s *Service) LikedSongs(ctx context.Context) (Playlist, error) {
	p, err := s.Get(ctx, LikedSongsIdentifier)
	if err == nil {
		return p, nil
	}
	if err != ErrNotFound {
		return Playlist{}, err
	}

	p = NewLikedSongs()
	if err := s.publish(ctx, p); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, p Playlist) error {
	if p.Identifier == "" {
		return ErrMissingIdentifier
	}
	ev := &nostr.Event{
		Kind:      nostr.KindPlaylist,
		CreatedAt: s.now(),
		Tags:      Encode(p),
	}
	if err := s.signer.Sign(ctx, ev); err != nil {
		return fmt.Errorf("sign playlist: %w", err)
	}
	if err := s.relays.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish playlist: %w", err)
	}
	s.log.Debug("playlist published",
		zap.String("identifier", p.Identifier),
		zap.Int("tracks", len(p.TrackRefs)))
	return nil
}
