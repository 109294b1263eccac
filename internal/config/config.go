package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/odeon/internal/catalog"
)

// Catalog source kinds.
const (
	SourceScan   = "scan"   // read tags from library_sources
	SourceSQLite = "sqlite" // read rows from the media_db table
)

type Config struct {
	Source         string   `koanf:"source"`          // "scan" or "sqlite" (default: "scan")
	LibrarySources []string `koanf:"library_sources"` // directories scanned for music
	MediaDB        string   `koanf:"media_db"`        // sqlite media table location
	LogLevel       string   `koanf:"log_level"`       // zerolog level name (default: "info")

	Catalog CatalogConfig `koanf:"catalog"`

	Queue QueueConfig `koanf:"queue"`
}

type CatalogConfig struct {
	ArtBase string `koanf:"art_base"` // prefix joined with the album id (default: catalog.DefaultArtBase)
}

type QueueConfig struct {
	Shuffle bool `koanf:"shuffle"` // start new queues shuffled
}

// Load reads the layered config files. Files given in extra are applied last,
// so an explicit -config path overrides the user and working directory files.
func Load(extra ...string) (*Config, error) {
	k := koanf.New(".")

	configPaths := append(getConfigPaths(), extra...)

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}

	if cfg.MediaDB != "" {
		cfg.MediaDB = expandPath(cfg.MediaDB)
	}

	cfg.Catalog.ArtBase = strings.TrimSuffix(cfg.Catalog.ArtBase, "/")

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "odeon", "config.toml"))
	}

	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetSource returns the configured source kind, falling back to SourceScan
// for empty or unknown values.
func (c *Config) GetSource() string {
	switch strings.ToLower(c.Source) {
	case SourceSQLite:
		return SourceSQLite
	default:
		return SourceScan
	}
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return strings.ToLower(c.LogLevel)
}

// GetMediaDB returns the media table path, defaulting to the xdg data directory.
func (c *Config) GetMediaDB() string {
	if c.MediaDB != "" {
		return c.MediaDB
	}
	return filepath.Join(xdg.DataHome, "odeon", "media.db")
}

func (c *Config) GetCatalogConfig() CatalogConfig {
	cfg := c.Catalog
	if cfg.ArtBase == "" {
		cfg.ArtBase = catalog.DefaultArtBase
	}
	return cfg
}
