package social

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaptrax/zaptrax/internal/nostr"
	"github.com/zaptrax/zaptrax/internal/optimistic"
)

// LikeContent is the reaction content this client publishes for a like.
const LikeContent = "🤙"

// refreshTimeout bounds the overlay's corrective re-fetch.
const refreshTimeout = 5 * time.Second

// Relays is the slice of relay-pool behavior the like service needs.
type Relays interface {
	Query(ctx context.Context, filter nostr.Filter) ([]nostr.Event, error)
	Publish(ctx context.Context, ev *nostr.Event) error
}

// LikeService publishes likes and unlikes optimistically and keeps a
// reconciled per-subject reaction view. Subjects are event ids (tracks,
// notes, comments all react the same way).
type LikeService struct {
	relays  Relays
	signer  nostr.Signer
	overlay *optimistic.Overlay
	log     *zap.Logger
	now     func() int64

	mu   sync.Mutex
	sets map[string]ReactionSet
}

// NewLikeService creates a like service for the signer's identity.
func NewLikeService(relays Relays, signer nostr.Signer, log *zap.Logger) *LikeService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &LikeService{
		relays: relays,
		signer: signer,
		log:    log,
		now:    func() int64 { return time.Now().Unix() },
		sets:   make(map[string]ReactionSet),
	}
	s.overlay = optimistic.New(s.refetch, optimistic.DefaultRefetchDelay)
	return s
}

// Close stops the overlay's scheduled re-fetches.
func (s *LikeService) Close() {
	s.overlay.Close()
}

// Reactions fetches and reconciles the like state for a subject,
// updating the cached view and reconciling any pending optimistic
// guess.
func (s *LikeService) Reactions(ctx context.Context, subject string) (ReactionSet, error) {
	reactions, err := s.relays.Query(ctx, nostr.Filter{
		Kinds: []int{nostr.KindReaction},
		Tags:  map[string][]string{"e": {subject}},
	})
	if err != nil {
		return ReactionSet{}, fmt.Errorf("query reactions: %w", err)
	}

	// Tombstones reference the reaction event they revoke, not the
	// subject, so the deletion query is keyed by the fetched reaction
	// ids.
	var deletions []nostr.Event
	if len(reactions) > 0 {
		ids := make([]string, len(reactions))
		for i, ev := range reactions {
			ids[i] = ev.ID
		}
		deletions, err = s.relays.Query(ctx, nostr.Filter{
			Kinds: []int{nostr.KindDeletion},
			Tags:  map[string][]string{"e": ids},
		})
		if err != nil {
			return ReactionSet{}, fmt.Errorf("query deletions: %w", err)
		}
	}
	set := BuildReactionSet(reactions, deletions)

	s.mu.Lock()
	s.sets[subject] = set
	s.mu.Unlock()

	s.overlay.Observe(subject, set.IsLikedBy(s.signer.PublicKey()))
	return set, nil
}

// Like publishes a reaction for the subject. The local view flips
// immediately; a failed publish reverts it.
func (s *LikeService) Like(ctx context.Context, subject string) error {
	s.overlay.Toggle(subject, true)

	ev := &nostr.Event{
		Kind:      nostr.KindReaction,
		CreatedAt: s.now(),
		Content:   LikeContent,
		Tags:      []nostr.Tag{{"e", subject}},
	}
	if err := s.signer.Sign(ctx, ev); err != nil {
		s.overlay.Fail(subject)
		return fmt.Errorf("sign reaction: %w", err)
	}
	if err := s.relays.Publish(ctx, ev); err != nil {
		s.overlay.Fail(subject)
		return fmt.Errorf("publish reaction: %w", err)
	}
	return nil
}

// Unlike tombstones the user's current reaction on the subject. Without
// a known reaction event id (stale cache) it publishes nothing and
// reports the inconsistency.
func (s *LikeService) Unlike(ctx context.Context, subject string) error {
	s.mu.Lock()
	set := s.sets[subject]
	s.mu.Unlock()

	var reactionID string
	for _, like := range set.Likes {
		if like.Author == s.signer.PublicKey() {
			reactionID = like.EventID
			break
		}
	}
	if reactionID == "" {
		return fmt.Errorf("unlike %s: no known reaction to delete", subject)
	}

	s.overlay.Toggle(subject, false)

	ev := &nostr.Event{
		Kind:      nostr.KindDeletion,
		CreatedAt: s.now(),
		Tags: []nostr.Tag{
			{"e", reactionID},
			{"k", fmt.Sprintf("%d", nostr.KindReaction)},
		},
	}
	if err := s.signer.Sign(ctx, ev); err != nil {
		s.overlay.Fail(subject)
		return fmt.Errorf("sign deletion: %w", err)
	}
	if err := s.relays.Publish(ctx, ev); err != nil {
		s.overlay.Fail(subject)
		return fmt.Errorf("publish deletion: %w", err)
	}
	return nil
}

// ToggleLike likes or unlikes based on the currently displayed state.
func (s *LikeService) ToggleLike(ctx context.Context, subject string) error {
	if s.IsLiked(subject) {
		return s.Unlike(ctx, subject)
	}
	return s.Like(ctx, subject)
}

// IsLiked answers the display question for the current user, overlay
// first.
func (s *LikeService) IsLiked(subject string) bool {
	s.mu.Lock()
	fetched := s.sets[subject].IsLikedBy(s.signer.PublicKey())
	s.mu.Unlock()
	return s.overlay.Liked(subject, fetched)
}

// LikeCount returns the displayed like count: the reconciled count
// adjusted by a pending guess that the network has not confirmed yet.
func (s *LikeService) LikeCount(subject string) int {
	s.mu.Lock()
	set := s.sets[subject]
	s.mu.Unlock()

	count := set.LikeCount()
	fetched := set.IsLikedBy(s.signer.PublicKey())
	displayed := s.overlay.Liked(subject, fetched)
	switch {
	case displayed && !fetched:
		count++
	case !displayed && fetched:
		count--
	}
	if count < 0 {
		count = 0
	}
	return count
}

func (s *LikeService) refetch(subject string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := s.Reactions(ctx, subject); err != nil {
		s.log.Debug("like re-fetch failed", zap.String("subject", subject), zap.Error(err))
	}
}
