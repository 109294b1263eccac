package state

import (
	"database/sql"
	"slices"

	"github.com/llehouerou/odeon/internal/catalog"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	settings  PlaybackSettings
	queue     *QueueState
	playlists []catalog.Playlist
	tracks    map[int64][]int64
	saves     int
	closed    bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{tracks: make(map[int64][]int64)}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) GetSettings() (*PlaybackSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *Mock) SetLastPlayed(mediaID string) error {
	m.settings.LastPlayedMediaID = mediaID
	return nil
}

func (m *Mock) NextQueueCounter() (int64, error) {
	m.settings.QueueCounter++
	return m.settings.QueueCounter, nil
}

func (m *Mock) SaveQueue(state QueueState) error {
	state.Items = slices.Clone(state.Items)
	m.queue = &state
	m.saves++
	return nil
}

func (m *Mock) SavePosition(index int) {
	if m.queue != nil {
		m.queue.CurrentIndex = index
	}
}

func (m *Mock) GetQueue() (*QueueState, error) {
	if m.queue == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	q := *m.queue
	q.Items = slices.Clone(q.Items)
	return &q, nil
}

func (m *Mock) ClearQueue() error {
	m.queue = nil
	return nil
}

func (m *Mock) Playlists() ([]catalog.Playlist, error) {
	return slices.Clone(m.playlists), nil
}

func (m *Mock) PlaylistTracks(id int64) ([]int64, error) {
	return slices.Clone(m.tracks[id]), nil
}

func (m *Mock) CreatePlaylist(name string) (int64, error) {
	id := int64(len(m.playlists) + 1)
	m.playlists = append(m.playlists, catalog.Playlist{ID: id, Name: name})
	return id, nil
}

func (m *Mock) AddPlaylistTracks(id int64, trackIDs ...int64) error {
	m.tracks[id] = append(m.tracks[id], trackIDs...)
	return nil
}

func (m *Mock) Flush() error { return nil }

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSettings(s PlaybackSettings) { m.settings = s }

func (m *Mock) SetQueue(state *QueueState) { m.queue = state }

func (m *Mock) SaveCount() int { return m.saves }

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
