package state

import (
	"context"
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/odeon/internal/db"
)

// PlaybackSettings are the values kept between queues.
type PlaybackSettings struct {
	// LastPlayedMediaID is the address of the last prepared queue, empty if none.
	LastPlayedMediaID string
	// QueueCounter counts prepared queues. It seeds the shuffle order of each new queue.
	QueueCounter int64
}

func getSettings(db *sql.DB) (*PlaybackSettings, error) {
	var lastPlayed sql.NullString
	var s PlaybackSettings
	row := db.QueryRow(`SELECT last_played_media_id, queue_counter FROM playback_settings WHERE id = 1`)
	err := row.Scan(&lastPlayed, &s.QueueCounter)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlaybackSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastPlayedMediaID = dbutil.NullStringValue(lastPlayed)
	return &s, nil
}

func setLastPlayed(db *sql.DB, mediaID string) error {
	_, err := db.Exec(`
		INSERT INTO playback_settings (id, last_played_media_id)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_played_media_id = excluded.last_played_media_id
	`, dbutil.NullString(mediaID))
	return err
}

func nextQueueCounter(db *sql.DB) (int64, error) {
	var counter int64
	err := dbutil.WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO playback_settings (id, queue_counter)
			VALUES (1, 1)
			ON CONFLICT(id) DO UPDATE SET
				queue_counter = queue_counter + 1
		`)
		if err != nil {
			return err
		}
		return tx.QueryRow(`SELECT queue_counter FROM playback_settings WHERE id = 1`).Scan(&counter)
	})
	return counter, err
}

func (m *Manager) GetSettings() (*PlaybackSettings, error) {
	return getSettings(m.db)
}

func (m *Manager) SetLastPlayed(mediaID string) error {
	return setLastPlayed(m.db, mediaID)
}

// NextQueueCounter increments the persisted queue counter and returns the new value.
func (m *Manager) NextQueueCounter() (int64, error) {
	return nextQueueCounter(m.db)
}
