package nostr

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultQueryTimeout bounds every pool operation when the caller's
// context carries no deadline, so an unreachable relay cannot hang the
// engine indefinitely.
const defaultQueryTimeout = 5 * time.Second

// ErrNoRelays is returned when the pool has no reachable relay.
var ErrNoRelays = errors.New("no reachable relays")

// Pool fans queries out to a set of relays and merges the results,
// deduplicating by event id. Connections are established lazily and
// re-established on failure.
type Pool struct {
	urls []string
	log  *zap.Logger

	mu     sync.Mutex
	relays map[string]*Relay
}

// NewPool creates a pool over the given relay URLs.
func NewPool(urls []string, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pool{
		urls:   urls,
		log:    log,
		relays: make(map[string]*Relay),
	}
}

// Close closes every open relay connection.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, r := range p.relays {
		_ = r.Close()
		delete(p.relays, url)
	}
	return nil
}

func (p *Pool) relay(ctx context.Context, url string) (*Relay, error) {
	p.mu.Lock()
	r := p.relays[url]
	p.mu.Unlock()
	if r != nil {
		select {
		case <-r.done:
			// Stale connection; fall through and redial.
		default:
			return r, nil
		}
	}

	r, err := Dial(ctx, url, p.log)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.relays[url] = r
	p.mu.Unlock()
	return r, nil
}

func (p *Pool) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// Query runs the filter against every relay concurrently and returns the
// merged, deduplicated result. It succeeds if at least one relay
// answers; it fails only when all do.
func (p *Pool) Query(ctx context.Context, filter Filter) ([]Event, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	type result struct {
		events []Event
		err    error
	}
	results := make(chan result, len(p.urls))

	var wg sync.WaitGroup
	for _, url := range p.urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := p.relay(ctx, url)
			if err != nil {
				results <- result{err: err}
				return
			}
			events, err := r.Query(ctx, filter)
			results <- result{events: events, err: err}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	var merged []Event
	failures := 0
	var lastErr error
	for res := range results {
		if res.err != nil && len(res.events) == 0 {
			failures++
			lastErr = res.err
		}
		for _, ev := range res.events {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			merged = append(merged, ev)
		}
	}

	if failures == len(p.urls) && len(p.urls) > 0 {
		return nil, errors.Join(ErrNoRelays, lastErr)
	}
	return merged, nil
}

// Publish submits the event to every relay. It succeeds if at least one
// relay accepts the event.
func (p *Pool) Publish(ctx context.Context, ev *Event) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	errs := make(chan error, len(p.urls))
	var wg sync.WaitGroup
	for _, url := range p.urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := p.relay(ctx, url)
			if err != nil {
				errs <- err
				return
			}
			errs <- r.Publish(ctx, ev)
		}()
	}
	wg.Wait()
	close(errs)

	accepted := 0
	var lastErr error
	for err := range errs {
		if err == nil {
			accepted++
		} else {
			lastErr = err
		}
	}
	if accepted == 0 {
		if lastErr == nil {
			lastErr = ErrNoRelays
		}
		return lastErr
	}
	return nil
}
