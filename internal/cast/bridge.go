package cast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Bridge is a Receiver backed by a cast bridge daemon: a small HTTP
// service that owns the actual receiver discovery and session and
// exposes transport control as JSON endpoints.
type Bridge struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	casting bool
}

// NewBridge creates a client for the bridge at baseURL.
func NewBridge(baseURL string) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type bridgeStatus struct {
	Available bool `json:"available"`
	Casting   bool `json:"casting"`
}

// Available reports whether the bridge can reach a receiver. A bridge
// that is down counts as no receiver.
func (b *Bridge) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var status bridgeStatus
	if json.NewDecoder(resp.Body).Decode(&status) != nil {
		return false
	}
	return status.Available
}

// Casting reports whether this client holds an active session.
func (b *Bridge) Casting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.casting
}

// RequestSession starts a session on the receiver.
func (b *Bridge) RequestSession(ctx context.Context) error {
	if err := b.post(ctx, "/session", nil); err != nil {
		return fmt.Errorf("request cast session: %w", err)
	}
	b.mu.Lock()
	b.casting = true
	b.mu.Unlock()
	return nil
}

// LoadMedia points the receiver at a direct media URL.
func (b *Bridge) LoadMedia(ctx context.Context, url string) error {
	body := map[string]string{"url": url}
	if err := b.post(ctx, "/load", body); err != nil {
		return fmt.Errorf("cast load: %w", err)
	}
	return nil
}

// Play resumes remote playback.
func (b *Bridge) Play(ctx context.Context) error {
	if err := b.post(ctx, "/play", nil); err != nil {
		return fmt.Errorf("cast play: %w", err)
	}
	return nil
}

// Pause pauses remote playback.
func (b *Bridge) Pause(ctx context.Context) error {
	if err := b.post(ctx, "/pause", nil); err != nil {
		return fmt.Errorf("cast pause: %w", err)
	}
	return nil
}

// SeekTo moves the receiver to an absolute position in seconds.
func (b *Bridge) SeekTo(ctx context.Context, seconds float64) error {
	body := map[string]float64{"seconds": seconds}
	if err := b.post(ctx, "/seek", body); err != nil {
		return fmt.Errorf("cast seek: %w", err)
	}
	return nil
}

// Stop ends the session.
func (b *Bridge) Stop(ctx context.Context) error {
	err := b.post(ctx, "/stop", nil)
	b.mu.Lock()
	b.casting = false
	b.mu.Unlock()
	if err != nil {
		return fmt.Errorf("cast stop: %w", err)
	}
	return nil
}

func (b *Bridge) post(ctx context.Context, path string, body any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// Verify Bridge implements Receiver at compile time.
var _ Receiver = (*Bridge)(nil)
