package state

import (
	"context"
	"database/sql"
	"time"

	"github.com/llehouerou/odeon/internal/catalog"
	dbutil "github.com/llehouerou/odeon/internal/db"
)

// Playlists lists every playlist by name.
func (m *Manager) Playlists() ([]catalog.Playlist, error) {
	rows, err := m.db.Query(`SELECT id, name FROM playlists ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []catalog.Playlist
	for rows.Next() {
		var p catalog.Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		lists = append(lists, p)
	}
	return lists, rows.Err()
}

// PlaylistTracks returns the track ids of a playlist in order.
// An unknown playlist has no tracks.
func (m *Manager) PlaylistTracks(id int64) ([]int64, error) {
	rows, err := m.db.Query(`
		SELECT track_id FROM playlist_tracks
		WHERE playlist_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var trackID int64
		if err := rows.Scan(&trackID); err != nil {
			return nil, err
		}
		ids = append(ids, trackID)
	}
	return ids, rows.Err()
}

// CreatePlaylist creates an empty playlist and returns its id.
func (m *Manager) CreatePlaylist(name string) (int64, error) {
	res, err := m.db.Exec(`INSERT INTO playlists (name, created_at) VALUES (?, ?)`, name, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// AddPlaylistTracks appends tracks to a playlist.
func (m *Manager) AddPlaylistTracks(id int64, trackIDs ...int64) error {
	return dbutil.WithTx(context.Background(), m.db, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_tracks WHERE playlist_id = ?
		`, id).Scan(&next)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO playlist_tracks (playlist_id, position, track_id) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, trackID := range trackIDs {
			if _, err := stmt.Exec(id, next+i, trackID); err != nil {
				return err
			}
		}
		return nil
	})
}
