package state

import (
	"database/sql"

	dbutil "github.com/zaptrax/zaptrax/internal/db"
	"github.com/zaptrax/zaptrax/internal/track"
)

// QueueState is the persisted play queue.
type QueueState struct {
	CurrentIndex int
	Tracks       []track.Track
}

// GetQueue loads the saved queue. Returns an empty state when nothing
// has been saved yet.
func (m *Manager) GetQueue() (*QueueState, error) {
	qs := &QueueState{CurrentIndex: -1}

	row := m.db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`)
	if err := row.Scan(&qs.CurrentIndex); err != nil {
		if err == sql.ErrNoRows {
			return qs, nil
		}
		return nil, err
	}

	rows, err := m.db.Query(`
		SELECT track_id, source, source_id, title, artist, album,
		       album_art_url, media_url, duration, feed_id, feed_url, episode_guid
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tr       track.Track
			source   string
			sourceID sql.NullString
			artist   sql.NullString
			album    sql.NullString
			artURL   sql.NullString
			duration sql.NullFloat64
			feedID   sql.NullInt64
			feedURL  sql.NullString
			guid     sql.NullString
		)
		if err := rows.Scan(
			&tr.ID, &source, &sourceID, &tr.Title, &artist, &album,
			&artURL, &tr.MediaURL, &duration, &feedID, &feedURL, &guid,
		); err != nil {
			return nil, err
		}
		tr.Source = track.Source(source)
		tr.SourceID = dbutil.NullStringValue(sourceID)
		tr.Artist = dbutil.NullStringValue(artist)
		tr.AlbumTitle = dbutil.NullStringValue(album)
		tr.AlbumArtURL = dbutil.NullStringValue(artURL)
		tr.Duration = dbutil.NullFloat64Value(duration)
		tr.FeedID = dbutil.NullInt64Value(feedID)
		tr.FeedURL = dbutil.NullStringValue(feedURL)
		tr.EpisodeGUID = dbutil.NullStringValue(guid)
		qs.Tracks = append(qs.Tracks, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if qs.CurrentIndex >= len(qs.Tracks) {
		qs.CurrentIndex = len(qs.Tracks) - 1
	}
	return qs, nil
}

// SaveQueue replaces the saved queue atomically.
func (m *Manager) SaveQueue(qs *QueueState) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index) VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET current_index = excluded.current_index
		`, qs.CurrentIndex); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (
				position, track_id, source, source_id, title, artist, album,
				album_art_url, media_url, duration, feed_id, feed_url, episode_guid
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, tr := range qs.Tracks {
			if _, err := stmt.Exec(
				i, tr.ID, string(tr.Source), nullString(tr.SourceID),
				tr.Title, nullString(tr.Artist), nullString(tr.AlbumTitle),
				nullString(tr.AlbumArtURL), tr.MediaURL, nullFloat64(tr.Duration),
				nullInt64(tr.FeedID), nullString(tr.FeedURL), nullString(tr.EpisodeGUID),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearQueue removes the saved queue.
func (m *Manager) ClearQueue() error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index) VALUES (1, -1)
			ON CONFLICT(id) DO UPDATE SET current_index = -1
		`)
		return err
	})
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullInt64(i int64) any {
	if i == 0 {
		return nil
	}
	return i
}
