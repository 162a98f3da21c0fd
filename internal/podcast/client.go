// Package podcast provides a podcast-index API client and RSS value-block
// parsing for payment recipient metadata.
package podcast

import (
	"context"
	"crypto/sha1" //nolint:gosec // mandated by the podcast-index auth scheme
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the index has no such feed or episode.
var ErrNotFound = errors.New("podcast resource not found")

const (
	defaultBaseURL = "https://api.podcastindex.org/api/1.0"
	userAgent      = "zaptrax/1.0"
)

// Feed is the raw podcast feed representation.
type Feed struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
	Image  string `json:"image"`
	Value  *Value `json:"value"`
}

// Episode is the raw podcast episode representation.
type Episode struct {
	ID            int64  `json:"id"`
	GUID          string `json:"guid"`
	Title         string `json:"title"`
	FeedID        int64  `json:"feedId"`
	FeedTitle     string `json:"feedTitle"`
	FeedURL       string `json:"feedUrl"`
	Image         string `json:"image"`
	FeedImage     string `json:"feedImage"`
	EnclosureURL  string `json:"enclosureUrl"`
	Duration      int    `json:"duration"`
	DatePublished int64  `json:"datePublished"`
	Value         *Value `json:"value"`
}

// Value is a payment-recipient block.
type Value struct {
	Type         string      `json:"type"`
	Method       string      `json:"method"`
	Destinations []Recipient `json:"destinations"`
}

// Recipient is one payment destination with its share of the split.
type Recipient struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Address string  `json:"address"`
	Split   float64 `json:"split"`
	Fee     bool    `json:"fee"`
}

// Client is a podcast-index API client.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

// New creates a podcast-index client with the given API credentials.
func New(apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// EpisodeByGUID looks up an episode by its guid, optionally scoped to a
// feed id (0 means unscoped).
func (c *Client) EpisodeByGUID(ctx context.Context, guid string, feedID int64) (*Episode, error) {
	params := url.Values{}
	params.Set("guid", guid)
	if feedID > 0 {
		params.Set("feedid", strconv.FormatInt(feedID, 10))
	}

	var resp struct {
		Episode *Episode `json:"episode"`
	}
	if err := c.get(ctx, "/episodes/byguid", params, &resp); err != nil {
		return nil, err
	}
	if resp.Episode == nil || resp.Episode.ID == 0 {
		return nil, ErrNotFound
	}
	return resp.Episode, nil
}

// EpisodesByFeedID returns episodes of a feed, newest first.
func (c *Client) EpisodesByFeedID(ctx context.Context, feedID int64, limit int) ([]Episode, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(feedID, 10))
	if limit > 0 {
		params.Set("max", strconv.Itoa(limit))
	}

	var resp struct {
		Items []Episode `json:"items"`
	}
	if err := c.get(ctx, "/episodes/byfeedid", params, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// FeedByID looks up a feed by its index id.
func (c *Client) FeedByID(ctx context.Context, feedID int64) (*Feed, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(feedID, 10))

	var resp struct {
		Feed *Feed `json:"feed"`
	}
	if err := c.get(ctx, "/podcasts/byfeedid", params, &resp); err != nil {
		return nil, err
	}
	if resp.Feed == nil || resp.Feed.ID == 0 {
		return nil, ErrNotFound
	}
	return resp.Feed, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authorize applies the podcast-index auth scheme: the Authorization
// header is sha1(key + secret + unix-date) with the date echoed in
// X-Auth-Date.
func (c *Client) authorize(req *http.Request) {
	authDate := strconv.FormatInt(c.now().Unix(), 10)
	h := sha1.Sum([]byte(c.apiKey + c.apiSecret + authDate)) //nolint:gosec // see above
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Auth-Key", c.apiKey)
	req.Header.Set("X-Auth-Date", authDate)
	req.Header.Set("Authorization", hex.EncodeToString(h[:]))
}
