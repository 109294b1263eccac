package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"github.com/llehouerou/odeon/internal/catalog"
)

// chdirTemp moves into a fresh directory with an isolated home so that
// a real ~/.config/odeon/config.toml does not leak into the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Chdir(tmpDir)
	return tmpDir
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("could not create config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"absolute", "/music", "/music"},
		{"relative", "music", "music"},
		{"tilde only", "~", home},
		{"tilde subdir", "~/music", filepath.Join(home, "music")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()
	if len(paths) == 0 {
		t.Fatal("getConfigPaths() returned no paths")
	}
	if last := paths[len(paths)-1]; last != "config.toml" {
		t.Errorf("last path = %q, want config.toml", last)
	}
	if len(paths) == 2 && filepath.Base(filepath.Dir(paths[0])) != "odeon" {
		t.Errorf("user config path = %q, want it under an odeon directory", paths[0])
	}
}

func TestGetSource(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"", SourceScan},
		{"scan", SourceScan},
		{"sqlite", SourceSQLite},
		{"SQLite", SourceSQLite},
		{"mongo", SourceScan},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			cfg := Config{Source: tt.source}
			if got := cfg.GetSource(); got != tt.expected {
				t.Errorf("GetSource() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetLogLevel(t *testing.T) {
	if got := (&Config{}).GetLogLevel(); got != "info" {
		t.Errorf("GetLogLevel() = %q, want info", got)
	}
	if got := (&Config{LogLevel: "DEBUG"}).GetLogLevel(); got != "debug" {
		t.Errorf("GetLogLevel() = %q, want debug", got)
	}
}

func TestGetMediaDB(t *testing.T) {
	want := filepath.Join(xdg.DataHome, "odeon", "media.db")
	if got := (&Config{}).GetMediaDB(); got != want {
		t.Errorf("GetMediaDB() = %q, want %q", got, want)
	}
	if got := (&Config{MediaDB: "/tmp/m.db"}).GetMediaDB(); got != "/tmp/m.db" {
		t.Errorf("GetMediaDB() = %q, want /tmp/m.db", got)
	}
}

func TestGetCatalogConfig(t *testing.T) {
	cfg := Config{}
	if got := cfg.GetCatalogConfig().ArtBase; got != catalog.DefaultArtBase {
		t.Errorf("ArtBase = %q, want %q", got, catalog.DefaultArtBase)
	}

	cfg.Catalog.ArtBase = "file:///art"
	if got := cfg.GetCatalogConfig().ArtBase; got != "file:///art" {
		t.Errorf("ArtBase = %q, want file:///art", got)
	}
	if cfg.Catalog.ArtBase != "file:///art" {
		t.Error("GetCatalogConfig() modified the receiver")
	}
}

func TestLoad_EmptyConfig(t *testing.T) {
	chdirTemp(t)
	writeConfig(t, "config.toml", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}
	if cfg.GetSource() != SourceScan {
		t.Errorf("GetSource() = %q, want %q", cfg.GetSource(), SourceScan)
	}
	if cfg.Queue.Shuffle {
		t.Error("Queue.Shuffle = true, want false")
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	chdirTemp(t)

	configContent := `
source = "sqlite"
library_sources = ["/music", "~/library"]
media_db = "~/media.db"
log_level = "debug"

[catalog]
art_base = "file:///art/"

[queue]
shuffle = true
`
	writeConfig(t, "config.toml", configContent)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GetSource() != SourceSQLite {
		t.Errorf("GetSource() = %q, want %q", cfg.GetSource(), SourceSQLite)
	}
	if cfg.GetLogLevel() != "debug" {
		t.Errorf("GetLogLevel() = %q, want debug", cfg.GetLogLevel())
	}
	if !cfg.Queue.Shuffle {
		t.Error("Queue.Shuffle = false, want true")
	}

	// Trailing slash is removed so that the album id can be joined
	if cfg.Catalog.ArtBase != "file:///art" {
		t.Errorf("Catalog.ArtBase = %q, want %q", cfg.Catalog.ArtBase, "file:///art")
	}

	if len(cfg.LibrarySources) != 2 {
		t.Fatalf("LibrarySources length = %d, want 2", len(cfg.LibrarySources))
	}
	if cfg.LibrarySources[0] != "/music" {
		t.Errorf("LibrarySources[0] = %q, want %q", cfg.LibrarySources[0], "/music")
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "library"); cfg.LibrarySources[1] != want {
		t.Errorf("LibrarySources[1] = %q, want %q", cfg.LibrarySources[1], want)
	}
	if want := filepath.Join(home, "media.db"); cfg.MediaDB != want {
		t.Errorf("MediaDB = %q, want %q", cfg.MediaDB, want)
	}
}

func TestLoad_LayeredFiles(t *testing.T) {
	tmpDir := chdirTemp(t)

	writeConfig(t, filepath.Join(tmpDir, "home", ".config", "odeon", "config.toml"), `
source = "sqlite"
log_level = "warn"
`)
	writeConfig(t, "config.toml", `log_level = "debug"`)
	explicit := filepath.Join(tmpDir, "explicit.toml")
	writeConfig(t, explicit, `
[queue]
shuffle = true
`)

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GetSource() != SourceSQLite {
		t.Errorf("GetSource() = %q, want value from user config", cfg.GetSource())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Errorf("GetLogLevel() = %q, want working directory override", cfg.GetLogLevel())
	}
	if !cfg.Queue.Shuffle {
		t.Error("Queue.Shuffle = false, want value from explicit file")
	}
}

func TestLoad_MissingExplicitFileIgnored(t *testing.T) {
	chdirTemp(t)

	if _, err := Load("does-not-exist.toml"); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	chdirTemp(t)
	writeConfig(t, "config.toml", "invalid = [[[")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}
