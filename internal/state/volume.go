package state

import (
	"database/sql"

	dbutil "github.com/zaptrax/zaptrax/internal/db"
)

// GetVolume returns the saved volume level and mute flag.
// Defaults to full volume, unmuted, when nothing was saved.
func (m *Manager) GetVolume() (volume float64, muted bool, err error) {
	row := m.db.QueryRow(`SELECT volume, muted FROM queue_state WHERE id = 1`)
	if err := row.Scan(&volume, &muted); err != nil {
		if err == sql.ErrNoRows {
			return 1.0, false, nil
		}
		return 0, false, err
	}
	return volume, muted, nil
}

// SaveVolume persists the volume level and mute flag.
func (m *Manager) SaveVolume(volume float64, muted bool) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO queue_state (id, volume, muted) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET volume = excluded.volume, muted = excluded.muted
		`, volume, muted)
		return err
	})
}
