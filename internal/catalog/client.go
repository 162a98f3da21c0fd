// Package catalog provides a client for the commercial music catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is returned when the catalog has no such resource.
var ErrNotFound = errors.New("catalog resource not found")

const defaultBaseURL = "https://api.wavlake.com/v1"

// Track is the raw catalog track representation.
type Track struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	ArtistID     string  `json:"artistId"`
	ArtistArtURL string  `json:"artistArtUrl"`
	AlbumTitle   string  `json:"albumTitle"`
	AlbumID      string  `json:"albumId"`
	AlbumArtURL  string  `json:"albumArtUrl"`
	MediaURL     string  `json:"mediaUrl"`
	Duration     float64 `json:"duration"`
	ReleaseDate  string  `json:"releaseDate"`
}

// Artist is the raw catalog artist representation.
type Artist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	ArtURL string  `json:"artistArtUrl"`
	Bio    string  `json:"bio"`
	Albums []Album `json:"albums"`
}

// Album is the raw catalog album representation.
type Album struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	ArtistID    string  `json:"artistId"`
	ArtURL      string  `json:"albumArtUrl"`
	ReleaseDate string  `json:"releaseDate"`
	Tracks      []Track `json:"tracks"`
}

// Client is a catalog API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a catalog client. An empty baseURL selects the default
// public endpoint.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Track looks up a single track by its catalog id. The endpoint returns
// either a bare object or a one-element array depending on deployment;
// both shapes are accepted.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/content/track/"+id, &raw); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var tracks []Track
		if err := json.Unmarshal(raw, &tracks); err != nil {
			return nil, fmt.Errorf("decode track list: %w", err)
		}
		if len(tracks) == 0 {
			return nil, ErrNotFound
		}
		return &tracks[0], nil
	}

	var track Track
	if err := json.Unmarshal(raw, &track); err != nil {
		return nil, fmt.Errorf("decode track: %w", err)
	}
	if track.ID == "" {
		return nil, ErrNotFound
	}
	return &track, nil
}

// Artist looks up an artist with its albums.
func (c *Client) Artist(ctx context.Context, id string) (*Artist, error) {
	var artist Artist
	if err := c.get(ctx, "/content/artist/"+id, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// Album looks up an album with its tracks.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	var album Album
	if err := c.get(ctx, "/content/album/"+id, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// ArtistTracks returns every track across the artist's albums, in
// album order. Albums that fail to load are skipped rather than
// failing the whole listing.
func (c *Client) ArtistTracks(ctx context.Context, artistID string) ([]Track, error) {
	artist, err := c.Artist(ctx, artistID)
	if err != nil {
		return nil, err
	}

	var tracks []Track
	for _, a := range artist.Albums {
		if len(a.Tracks) > 0 {
			tracks = append(tracks, a.Tracks...)
			continue
		}
		album, err := c.Album(ctx, a.ID)
		if err != nil {
			continue
		}
		tracks = append(tracks, album.Tracks...)
	}
	return tracks, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

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
