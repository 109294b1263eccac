package state

import (
	"database/sql"

	"github.com/llehouerou/odeon/internal/catalog"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	catalog.Playlists

	DB() *sql.DB
	GetSettings() (*PlaybackSettings, error)
	SetLastPlayed(mediaID string) error
	NextQueueCounter() (int64, error)
	SaveQueue(state QueueState) error
	SavePosition(index int)
	GetQueue() (*QueueState, error)
	ClearQueue() error
	CreatePlaylist(name string) (int64, error)
	AddPlaylistTracks(id int64, trackIDs ...int64) error
	Flush() error
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
