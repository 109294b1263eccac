package state

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// setupTestDB creates an in-memory SQLite database with the schema initialized.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	// Every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to set pragma: %v", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	return db
}

func TestInitSchema_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := initSchema(db); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}

	var version int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestGetSettings_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s, err := getSettings(db)
	if err != nil {
		t.Fatalf("getSettings failed: %v", err)
	}
	if s.LastPlayedMediaID != "" || s.QueueCounter != 0 {
		t.Errorf("expected zero settings on empty db, got %+v", s)
	}
}

func TestSettings_LastPlayedAndCounter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for want := int64(1); want <= 3; want++ {
		got, err := nextQueueCounter(db)
		if err != nil {
			t.Fatalf("nextQueueCounter failed: %v", err)
		}
		if got != want {
			t.Errorf("nextQueueCounter() = %d, want %d", got, want)
		}
	}

	if err := setLastPlayed(db, "ALBUMS/10"); err != nil {
		t.Fatalf("setLastPlayed failed: %v", err)
	}

	s, err := getSettings(db)
	if err != nil {
		t.Fatalf("getSettings failed: %v", err)
	}
	if s.LastPlayedMediaID != "ALBUMS/10" {
		t.Errorf("LastPlayedMediaID = %q, want ALBUMS/10", s.LastPlayedMediaID)
	}
	if s.QueueCounter != 3 {
		t.Errorf("QueueCounter = %d, want 3 (setLastPlayed must not reset it)", s.QueueCounter)
	}

	// Counter survives a last played update
	got, _ := nextQueueCounter(db)
	if got != 4 {
		t.Errorf("nextQueueCounter() = %d, want 4", got)
	}
}

func TestSetLastPlayed_BeforeCounter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := setLastPlayed(db, "MUSIC"); err != nil {
		t.Fatalf("setLastPlayed failed: %v", err)
	}
	got, err := nextQueueCounter(db)
	if err != nil {
		t.Fatalf("nextQueueCounter failed: %v", err)
	}
	if got != 1 {
		t.Errorf("nextQueueCounter() = %d, want 1", got)
	}
}

func TestGetQueue_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	queue, err := getQueue(db)
	if err != nil {
		t.Fatalf("getQueue failed: %v", err)
	}
	if queue == nil {
		t.Fatal("expected non-nil queue")
	}
	if queue.CurrentIndex != -1 {
		t.Errorf("expected CurrentIndex -1 for empty queue, got %d", queue.CurrentIndex)
	}
	if len(queue.Items) != 0 {
		t.Errorf("expected 0 items, got %d", len(queue.Items))
	}
}

func sampleQueue() QueueState {
	return QueueState{
		ID:           "0b8e4f3e-1111-4c1e-9d7a-2a8b3c4d5e6f",
		Title:        "Abbey Road",
		Source:       "ALBUMS/10",
		Generation:   7,
		Seed:         3,
		CurrentIndex: 2,
		Shuffle:      true,
		Items: []QueueItem{
			{Position: 2, TrackID: 12},
			{Position: 0, TrackID: 10},
			{Position: 1, TrackID: 11},
		},
	}
}

func TestSaveAndGetQueue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	state := sampleQueue()
	if err := saveQueue(db, state); err != nil {
		t.Fatalf("saveQueue failed: %v", err)
	}

	retrieved, err := getQueue(db)
	if err != nil {
		t.Fatalf("getQueue failed: %v", err)
	}

	if retrieved.ID != state.ID {
		t.Errorf("ID = %q, want %q", retrieved.ID, state.ID)
	}
	if retrieved.Title != state.Title {
		t.Errorf("Title = %q, want %q", retrieved.Title, state.Title)
	}
	if retrieved.Source != state.Source {
		t.Errorf("Source = %q, want %q", retrieved.Source, state.Source)
	}
	if retrieved.Generation != state.Generation {
		t.Errorf("Generation = %d, want %d", retrieved.Generation, state.Generation)
	}
	if retrieved.Seed != state.Seed {
		t.Errorf("Seed = %d, want %d", retrieved.Seed, state.Seed)
	}
	if retrieved.CurrentIndex != state.CurrentIndex {
		t.Errorf("CurrentIndex = %d, want %d", retrieved.CurrentIndex, state.CurrentIndex)
	}
	if retrieved.Shuffle != state.Shuffle {
		t.Errorf("Shuffle = %v, want %v", retrieved.Shuffle, state.Shuffle)
	}

	// Presentation order is preserved, not re-sorted by position
	if !slices.Equal(retrieved.Items, state.Items) {
		t.Errorf("Items = %v, want %v", retrieved.Items, state.Items)
	}
}

func TestSaveQueue_ClearsExisting(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := saveQueue(db, sampleQueue()); err != nil {
		t.Fatalf("saveQueue failed: %v", err)
	}

	state2 := QueueState{
		ID:           "second",
		Title:        "All Tracks",
		Source:       "MUSIC",
		CurrentIndex: 0,
		Items:        []QueueItem{{Position: 0, TrackID: 99}},
	}
	if err := saveQueue(db, state2); err != nil {
		t.Fatalf("saveQueue (update) failed: %v", err)
	}

	retrieved, _ := getQueue(db)
	if len(retrieved.Items) != 1 {
		t.Fatalf("expected 1 item after update, got %d", len(retrieved.Items))
	}
	if retrieved.Items[0].TrackID != 99 {
		t.Errorf("expected new item, got %+v", retrieved.Items[0])
	}
	if retrieved.Shuffle {
		t.Error("Shuffle should be overwritten by the new state")
	}
}

func TestClearQueue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_ = saveQueue(db, sampleQueue())
	if err := clearQueue(db); err != nil {
		t.Fatalf("clearQueue failed: %v", err)
	}

	retrieved, _ := getQueue(db)
	if retrieved.CurrentIndex != -1 || len(retrieved.Items) != 0 {
		t.Errorf("expected empty queue after clear, got %+v", retrieved)
	}
}

// Manager tests

func TestManager_GetSaveQueue(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}

	queue, err := m.GetQueue()
	if err != nil {
		t.Fatalf("GetQueue failed: %v", err)
	}
	if queue.CurrentIndex != -1 {
		t.Errorf("expected -1 for empty queue")
	}

	if err := m.SaveQueue(sampleQueue()); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}

	retrieved, _ := m.GetQueue()
	if retrieved.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", retrieved.CurrentIndex)
	}
}

func TestManager_SavePositionDebounced(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}
	if err := m.SaveQueue(sampleQueue()); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}

	m.SavePosition(0)
	m.SavePosition(1)

	// Not written yet
	retrieved, _ := m.GetQueue()
	if retrieved.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d before debounce, want 2", retrieved.CurrentIndex)
	}

	if err := m.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	retrieved, _ = m.GetQueue()
	if retrieved.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d after flush, want 1", retrieved.CurrentIndex)
	}
}

func TestManager_SavePositionFiresAfterDebounce(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}
	_ = m.SaveQueue(sampleQueue())
	m.SavePosition(0)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		retrieved, err := m.GetQueue()
		if err != nil {
			t.Fatalf("GetQueue failed: %v", err)
		}
		if retrieved.CurrentIndex == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("debounced position was never written")
}

func TestManager_SaveQueueDropsPendingPosition(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}
	_ = m.SaveQueue(sampleQueue())
	m.SavePosition(0)

	next := sampleQueue()
	next.CurrentIndex = 1
	if err := m.SaveQueue(next); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}
	_ = m.Flush()

	retrieved, _ := m.GetQueue()
	if retrieved.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", retrieved.CurrentIndex)
	}
}

func TestManager_Playlists(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}

	rock, err := m.CreatePlaylist("rock")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	calm, err := m.CreatePlaylist("Calm")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if _, err := m.CreatePlaylist("rock"); err == nil {
		t.Error("expected error for duplicate playlist name")
	}

	if err := m.AddPlaylistTracks(rock, 5, 3); err != nil {
		t.Fatalf("AddPlaylistTracks failed: %v", err)
	}
	if err := m.AddPlaylistTracks(rock, 9); err != nil {
		t.Fatalf("AddPlaylistTracks failed: %v", err)
	}

	lists, err := m.Playlists()
	if err != nil {
		t.Fatalf("Playlists failed: %v", err)
	}
	if len(lists) != 2 || lists[0].ID != calm || lists[1].ID != rock {
		t.Errorf("Playlists() = %+v, want Calm then rock", lists)
	}

	tracks, err := m.PlaylistTracks(rock)
	if err != nil {
		t.Fatalf("PlaylistTracks failed: %v", err)
	}
	if !slices.Equal(tracks, []int64{5, 3, 9}) {
		t.Errorf("PlaylistTracks() = %v, want [5 3 9]", tracks)
	}

	empty, _ := m.PlaylistTracks(404)
	if len(empty) != 0 {
		t.Errorf("PlaylistTracks(unknown) = %v, want empty", empty)
	}
}

func TestManager_DB(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	m := &Manager{db: db}
	if m.DB() != db {
		t.Error("DB() should return the underlying database")
	}
}

func TestOpenPath_FlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "odeon.db")

	m, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if err := m.SaveQueue(sampleQueue()); err != nil {
		t.Fatalf("SaveQueue failed: %v", err)
	}
	m.SavePosition(1)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	m, err = OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer m.Close()

	retrieved, _ := m.GetQueue()
	if retrieved.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d after reopen, want 1", retrieved.CurrentIndex)
	}
}

func TestMock(t *testing.T) {
	m := NewMock()

	n, _ := m.NextQueueCounter()
	if n != 1 {
		t.Errorf("NextQueueCounter() = %d, want 1", n)
	}
	_ = m.SetLastPlayed("MUSIC")
	s, _ := m.GetSettings()
	if s.LastPlayedMediaID != "MUSIC" || s.QueueCounter != 1 {
		t.Errorf("GetSettings() = %+v", s)
	}

	q, _ := m.GetQueue()
	if q.CurrentIndex != -1 {
		t.Errorf("empty mock queue CurrentIndex = %d, want -1", q.CurrentIndex)
	}

	_ = m.SaveQueue(sampleQueue())
	m.SavePosition(0)
	q, _ = m.GetQueue()
	if q.CurrentIndex != 0 || m.SaveCount() != 1 {
		t.Errorf("mock queue = %+v, saves = %d", q, m.SaveCount())
	}

	_ = m.Close()
	if !m.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
}
