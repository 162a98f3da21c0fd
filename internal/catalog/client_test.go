package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestTrack_ObjectResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/track/123", r.URL.Path)
		w.Write([]byte(`{"id":"123","title":"Song","artist":"Artist","mediaUrl":"https://cdn/x.mp3","duration":211.5}`))
	})

	tr, err := c.Track(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", tr.ID)
	assert.Equal(t, "Song", tr.Title)
	assert.Equal(t, 211.5, tr.Duration)
}

func TestTrack_ArrayResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"id":"123","title":"Song","artist":"Artist"}]`))
	})

	tr, err := c.Track(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "Song", tr.Title)
}

func TestTrack_EmptyArrayIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	_, err := c.Track(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrack_EmptyObjectIsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := c.Track(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrack_HTTPNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Track(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTrack_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Track(context.Background(), "123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestArtist(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/content/artist/a1", r.URL.Path)
		w.Write([]byte(`{"id":"a1","name":"Artist","albums":[{"id":"b1","title":"Album"}]}`))
	})

	artist, err := c.Artist(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Artist", artist.Name)
	require.Len(t, artist.Albums, 1)
	assert.Equal(t, "b1", artist.Albums[0].ID)
}

func TestArtistTracks_FetchesAlbumTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/artist/a1":
			w.Write([]byte(`{"id":"a1","name":"Artist","albums":[{"id":"b1","title":"One"},{"id":"b2","title":"Two"}]}`))
		case "/content/album/b1":
			w.Write([]byte(`{"id":"b1","tracks":[{"id":"t1","title":"First"}]}`))
		case "/content/album/b2":
			w.Write([]byte(`{"id":"b2","tracks":[{"id":"t2","title":"Second"},{"id":"t3","title":"Third"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	tracks, err := c.ArtistTracks(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "t3", tracks[2].ID)
}

func TestArtistTracks_SkipsFailingAlbum(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/content/artist/a1":
			w.Write([]byte(`{"id":"a1","albums":[{"id":"bad"},{"id":"b2"}]}`))
		case "/content/album/b2":
			w.Write([]byte(`{"id":"b2","tracks":[{"id":"t2"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	tracks, err := c.ArtistTracks(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "t2", tracks[0].ID)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("https://example.com/v1/")
	assert.Equal(t, "https://example.com/v1", c.baseURL)
}
