package state

import (
	"context"
	"database/sql"
	"errors"

	dbutil "github.com/llehouerou/odeon/internal/db"
)

// QueueItem is one saved queue entry: its stable position and the track it plays.
type QueueItem struct {
	Position int
	TrackID  int64
}

// QueueState represents the saved queue. Items are in presentation order.
type QueueState struct {
	ID           string
	Title        string
	Source       string
	Generation   uint64
	Seed         int64
	CurrentIndex int
	Shuffle      bool
	Items        []QueueItem
}

func getQueue(db *sql.DB) (*QueueState, error) {
	var s QueueState
	var generation int64
	row := db.QueryRow(`
		SELECT queue_id, title, source_media_id, generation, seed, current_index, shuffle
		FROM queue_state WHERE id = 1
	`)
	err := row.Scan(&s.ID, &s.Title, &s.Source, &generation, &s.Seed, &s.CurrentIndex, &s.Shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}
	s.Generation = uint64(generation) //nolint:gosec // stored from a uint64

	rows, err := db.Query(`SELECT position, track_id FROM queue_items ORDER BY sequence`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item QueueItem
		if err := rows.Scan(&item.Position, &item.TrackID); err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}

	return &s, rows.Err()
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		_, err := tx.Exec(`DELETE FROM queue_items`)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO queue_state (id, queue_id, title, source_media_id, generation, seed, current_index, shuffle)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				queue_id = excluded.queue_id,
				title = excluded.title,
				source_media_id = excluded.source_media_id,
				generation = excluded.generation,
				seed = excluded.seed,
				current_index = excluded.current_index,
				shuffle = excluded.shuffle
		`, state.ID, state.Title, state.Source, int64(state.Generation), state.Seed, //nolint:gosec // round-trips through getQueue
			state.CurrentIndex, state.Shuffle)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO queue_items (sequence, position, track_id) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, item := range state.Items {
			if _, err := stmt.Exec(i, item.Position, item.TrackID); err != nil {
				return err
			}
		}
		return nil
	})
}

// saveCurrentIndex updates only the current index of an existing saved queue.
func saveCurrentIndex(db *sql.DB, index int) error {
	_, err := db.Exec(`UPDATE queue_state SET current_index = ? WHERE id = 1`, index)
	return err
}

func clearQueue(sqlDB *sql.DB) error {
	return dbutil.WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_items`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM queue_state`)
		return err
	})
}

func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(m.db)
}

// SaveQueue replaces the saved queue. A pending debounced position is dropped
// since the new state carries its own.
func (m *Manager) SaveQueue(state QueueState) error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.pending = nil
	m.saveMu.Unlock()

	return saveQueue(m.db, state)
}

// ClearQueue removes the saved queue.
func (m *Manager) ClearQueue() error {
	return clearQueue(m.db)
}
