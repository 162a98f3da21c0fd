package nostr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	dialTimeout  = 5 * time.Second
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// ErrRelayClosed is returned for operations on a closed relay.
var ErrRelayClosed = errors.New("relay connection closed")

type okResult struct {
	accepted bool
	reason   string
}

// Relay is a single websocket connection to a relay server.
// One read loop routes incoming messages to active subscriptions;
// writes are serialized through a mutex as required by the websocket
// implementation.
type Relay struct {
	URL string

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]chan *Event
	eose map[string]chan struct{}
	oks  map[string]chan okResult

	log       *zap.Logger
	done      chan struct{}
	closeOnce sync.Once
	nextSub   atomic.Int64
}

// Dial connects to a relay and starts its read loop.
func Dial(ctx context.Context, url string, log *zap.Logger) (*Relay, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", url, err)
	}

	r := &Relay{
		URL:  url,
		conn: conn,
		subs: make(map[string]chan *Event),
		eose: make(map[string]chan struct{}),
		oks:  make(map[string]chan okResult),
		log:  log.With(zap.String("relay", url)),
		done: make(chan struct{}),
	}
	go r.readLoop()
	go r.pingLoop()
	return r, nil
}

// Close terminates the connection. Pending queries fail with
// ErrRelayClosed.
func (r *Relay) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.conn.Close()
	})
	return err
}

// Query sends a subscription for the filter and collects matching events
// until the relay signals end-of-stored-events, the limit is reached, or
// the context is done. The subscription is closed before returning.
func (r *Relay) Query(ctx context.Context, filter Filter) ([]Event, error) {
	subID := "zt" + strconv.FormatInt(r.nextSub.Add(1), 10)

	events := make(chan *Event, 64)
	eose := make(chan struct{}, 1)

	r.mu.Lock()
	r.subs[subID] = events
	r.eose[subID] = eose
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.subs, subID)
		delete(r.eose, subID)
		r.mu.Unlock()
		_ = r.write([]any{"CLOSE", subID})
	}()

	if err := r.write([]any{"REQ", subID, filter}); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	var collected []Event
	for {
		select {
		case ev := <-events:
			if !filter.Matches(ev) {
				continue
			}
			collected = append(collected, *ev)
			if filter.Limit > 0 && len(collected) >= filter.Limit {
				return collected, nil
			}
		case <-eose:
			return collected, nil
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-r.done:
			return collected, ErrRelayClosed
		}
	}
}

// Publish submits an event and waits for the relay's acknowledgement.
func (r *Relay) Publish(ctx context.Context, ev *Event) error {
	ok := make(chan okResult, 1)
	r.mu.Lock()
	r.oks[ev.ID] = ok
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.oks, ev.ID)
		r.mu.Unlock()
	}()

	if err := r.write([]any{"EVENT", ev}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	select {
	case res := <-ok:
		if !res.accepted {
			return fmt.Errorf("relay rejected event: %s", res.reason)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRelayClosed
	}
}

func (r *Relay) write(msg []any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	select {
	case <-r.done:
		return ErrRelayClosed
	default:
	}
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return r.conn.WriteMessage(websocket.TextMessage, b)
}

func (r *Relay) readLoop() {
	defer r.Close() //nolint:errcheck // best-effort close on reader exit

	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			select {
			case <-r.done:
			default:
				r.log.Debug("relay read failed", zap.Error(err))
			}
			return
		}
		r.dispatch(data)
	}
}

func (r *Relay) dispatch(data []byte) {
	var raw []json.RawMessage
	if json.Unmarshal(data, &raw) != nil || len(raw) < 2 {
		return
	}
	var label string
	if json.Unmarshal(raw[0], &label) != nil {
		return
	}

	switch label {
	case "EVENT":
		if len(raw) < 3 {
			return
		}
		var subID string
		if json.Unmarshal(raw[1], &subID) != nil {
			return
		}
		var ev Event
		if json.Unmarshal(raw[2], &ev) != nil {
			return
		}
		r.mu.Lock()
		ch := r.subs[subID]
		r.mu.Unlock()
		if ch != nil {
			select {
			case ch <- &ev:
			default:
				// Subscriber buffer full; drop rather than stall the reader.
			}
		}
	case "EOSE", "CLOSED":
		var subID string
		if json.Unmarshal(raw[1], &subID) != nil {
			return
		}
		r.mu.Lock()
		ch := r.eose[subID]
		r.mu.Unlock()
		if ch != nil {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	case "OK":
		if len(raw) < 3 {
			return
		}
		var eventID string
		var accepted bool
		if json.Unmarshal(raw[1], &eventID) != nil || json.Unmarshal(raw[2], &accepted) != nil {
			return
		}
		var reason string
		if len(raw) > 3 {
			_ = json.Unmarshal(raw[3], &reason)
		}
		r.mu.Lock()
		ch := r.oks[eventID]
		r.mu.Unlock()
		if ch != nil {
			select {
			case ch <- okResult{accepted: accepted, reason: reason}:
			default:
			}
		}
	case "NOTICE":
		var msg string
		_ = json.Unmarshal(raw[1], &msg)
		r.log.Debug("relay notice", zap.String("notice", msg))
	}
}

func (r *Relay) pingLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.writeMu.Lock()
			_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := r.conn.WriteMessage(websocket.PingMessage, nil)
			r.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-r.done:
			return
		}
	}
}
