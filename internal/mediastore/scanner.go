package mediastore

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/tags"
)

const defaultWorkers = 8

// WithWorkers sets how many files are read in parallel.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithoutDurations skips reading audio stream info. Tracks report no duration.
func WithoutDurations() Option {
	return func(o *options) { o.durations = false }
}

// Scanner reads track rows from the music files under a set of directories.
// It implements catalog.Source.
//
// Ids are derived from content so that rescans are stable: a track is
// identified by its path, an album by album artist and title, an artist by name.
type Scanner struct {
	roots []string
	opts  options
}

// NewScanner creates a scanner over roots.
func NewScanner(roots []string, opts ...Option) *Scanner {
	return &Scanner{roots: slices.Clone(roots), opts: newOptions(opts)}
}

// Rows walks the roots and reads every music file found.
// Roots that do not exist are skipped; when none exists the scanner yields a
// nil sequence. Unreadable files are reported as malformed rows.
func (s *Scanner) Rows(ctx context.Context) (iter.Seq2[catalog.Row, error], error) {
	roots := make([]string, 0, len(s.roots))
	for _, root := range s.roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			s.opts.log.Warn().Err(err).Str("root", root).Msg("skipping library source")
			continue
		}
		roots = append(roots, root)
	}
	if len(roots) == 0 {
		return nil, nil
	}

	return func(yield func(catalog.Row, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		files, err := discoverFiles(ctx, roots)
		if err != nil {
			yield(catalog.Row{}, err)
			return
		}
		s.opts.log.Debug().Int("files", len(files)).Msg("music files discovered")

		results := s.processFiles(ctx, files)
		defer func() {
			cancel()
			for range results {
				// drain so the workers can exit
			}
		}()

		for res := range results {
			if !yield(res.row, res.err) {
				return
			}
		}
	}, nil
}

type scanResult struct {
	row catalog.Row
	err error
}

// discoverFiles walks roots and returns every music file found, sorted.
func discoverFiles(ctx context.Context, roots []string) ([]string, error) {
	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// Skip unreadable entries and keep scanning the rest
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() || !tags.IsMusicFile(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// processFiles reads files with a pool of workers. The returned channel is
// closed once every worker has stopped.
func (s *Scanner) processFiles(ctx context.Context, files []string) <-chan scanResult {
	workCh := make(chan string)
	resultCh := make(chan scanResult, s.opts.workers)

	var wg sync.WaitGroup
	for range s.opts.workers {
		wg.Go(func() {
			for path := range workCh {
				row, err := s.readFile(path)
				select {
				case resultCh <- scanResult{row: row, err: err}:
				case <-ctx.Done():
					return
				}
			}
		})
	}

	go func() {
		defer close(workCh)
		for _, f := range files {
			select {
			case workCh <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	return resultCh
}

// readFile turns one music file into a row.
func (s *Scanner) readFile(path string) (catalog.Row, error) {
	t, err := tags.Read(path)
	if err != nil {
		return catalog.Row{}, fmt.Errorf("%w: %s: %w", catalog.ErrMalformedRow, path, err)
	}
	if t.Artist == "" && t.Album == "" {
		return catalog.Row{}, fmt.Errorf("%w: %s: no artist or album", catalog.ErrMalformedRow, path)
	}

	var durationMs int64
	if s.opts.durations {
		info, err := tags.ReadAudioInfo(path)
		switch {
		case err == nil:
			durationMs = info.Duration.Milliseconds()
		case errors.Is(err, tags.ErrUnsupportedAudio):
		default:
			s.opts.log.Debug().Err(err).Str("path", path).Msg("read audio info")
		}
	}

	return RowFromTag(t, durationMs), nil
}

// RowFromTag maps tag metadata to a catalog row. The disc number is always
// explicit so the track number is never read as packed.
func RowFromTag(t *tags.Tag, durationMs int64) catalog.Row {
	albumArtist := t.AlbumArtist
	if albumArtist == "" {
		albumArtist = t.Artist
	}
	return catalog.Row{
		ID:         hashID(t.Path),
		Title:      t.Title,
		Album:      t.Album,
		Artist:     t.Artist,
		DurationMs: durationMs,
		TrackNo:    t.TrackNumber,
		DiscNo:     max(t.DiscNumber, 1),
		AlbumID:    hashID(albumArtist, t.Album),
		ArtistID:   hashID(t.Artist),
		Year:       t.Year(),
		MediaURI:   "file://" + filepath.ToSlash(t.Path),
	}
}

// hashID derives a positive id from parts.
func hashID(parts ...string) int64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	id := int64(h.Sum64() >> 1)
	if id == 0 {
		return 1
	}
	return id
}
