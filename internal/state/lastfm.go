package state

import (
	"database/sql"
	"time"

	dbutil "github.com/zaptrax/zaptrax/internal/db"
)

// LastfmSession is a stored Last.fm session key.
type LastfmSession struct {
	Username   string
	SessionKey string
	LinkedAt   time.Time
}

// PendingScrobble is a scrobble that failed to submit and waits for retry.
type PendingScrobble struct {
	ID              int64
	Artist          string
	Track           string
	Album           string
	DurationSeconds int
	Timestamp       int64
	Attempts        int
	LastError       string
}

// GetLastfmSession returns the stored session, or nil when not linked.
func (m *Manager) GetLastfmSession() (*LastfmSession, error) {
	row := m.db.QueryRow(`SELECT username, session_key, linked_at FROM lastfm_session WHERE id = 1`)

	var s LastfmSession
	var linkedAt int64
	if err := row.Scan(&s.Username, &s.SessionKey, &linkedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.LinkedAt = time.Unix(linkedAt, 0)
	return &s, nil
}

// SaveLastfmSession stores the session, replacing any previous one.
func (m *Manager) SaveLastfmSession(username, sessionKey string) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO lastfm_session (id, username, session_key, linked_at)
			VALUES (1, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				username = excluded.username,
				session_key = excluded.session_key,
				linked_at = excluded.linked_at
		`, username, sessionKey, time.Now().Unix())
		return err
	})
}

// DeleteLastfmSession unlinks the account.
func (m *Manager) DeleteLastfmSession() error {
	_, err := m.db.Exec(`DELETE FROM lastfm_session WHERE id = 1`)
	return err
}

// AddPendingScrobble queues a scrobble for later submission.
func (m *Manager) AddPendingScrobble(s PendingScrobble) error {
	_, err := m.db.Exec(`
		INSERT INTO lastfm_pending_scrobbles
			(artist, track, album, duration_seconds, timestamp, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.Artist, s.Track, nullString(s.Album), s.DurationSeconds, s.Timestamp,
		s.Attempts, nullString(s.LastError), time.Now().Unix())
	return err
}

// GetPendingScrobbles returns queued scrobbles, oldest first.
func (m *Manager) GetPendingScrobbles(limit int) ([]PendingScrobble, error) {
	rows, err := m.db.Query(`
		SELECT id, artist, track, album, duration_seconds, timestamp, attempts, last_error
		FROM lastfm_pending_scrobbles
		ORDER BY timestamp
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []PendingScrobble
	for rows.Next() {
		var s PendingScrobble
		var album, lastErr sql.NullString
		if err := rows.Scan(&s.ID, &s.Artist, &s.Track, &album,
			&s.DurationSeconds, &s.Timestamp, &s.Attempts, &lastErr); err != nil {
			return nil, err
		}
		s.Album = dbutil.NullStringValue(album)
		s.LastError = dbutil.NullStringValue(lastErr)
		pending = append(pending, s)
	}
	return pending, rows.Err()
}

// DeletePendingScrobble removes a scrobble after successful submission.
func (m *Manager) DeletePendingScrobble(id int64) error {
	_, err := m.db.Exec(`DELETE FROM lastfm_pending_scrobbles WHERE id = ?`, id)
	return err
}

// MarkScrobbleAttempt records a failed submission attempt.
func (m *Manager) MarkScrobbleAttempt(id int64, lastError string) error {
	_, err := m.db.Exec(`
		UPDATE lastfm_pending_scrobbles
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, lastError, id)
	return err
}
