// Package mediastore provides the row sources the catalog loads from: a sqlite
// media table and a scanner reading tags from music files.
package mediastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/db"
)

const mediaTable = "media"

const schema = `
CREATE TABLE IF NOT EXISTS media (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	title_key TEXT,
	album TEXT,
	album_id INTEGER NOT NULL DEFAULT 0,
	artist TEXT,
	artist_id INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	track INTEGER NOT NULL DEFAULT 0,
	disc INTEGER NOT NULL DEFAULT 0,
	year INTEGER NOT NULL DEFAULT 0,
	art_uri TEXT,
	uri TEXT
);
CREATE INDEX IF NOT EXISTS idx_media_album ON media(album_id);
CREATE INDEX IF NOT EXISTS idx_media_artist ON media(artist_id);
`

const selectRows = `
	SELECT id, title, title_key, album, album_id, artist, artist_id,
	       duration_ms, track, disc, year, art_uri, uri
	FROM media`

// Option configures a Store or a Scanner.
type Option func(*options)

type options struct {
	log       zerolog.Logger
	workers   int
	durations bool
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop(), workers: defaultWorkers, durations: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// Store is a sqlite media table. It implements catalog.Source.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the media database at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	s, err := New(conn, opts...)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the media table if needed.
func New(conn *sql.DB, opts ...Option) (*Store, error) {
	if _, err := conn.Exec(schema); err != nil {
		return nil, fmt.Errorf("create media schema: %w", err)
	}
	o := newOptions(opts)
	return &Store{db: conn, log: o.log}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Count returns the number of rows in the media table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media`).Scan(&n)
	return n, err
}

// Rows streams the media table. The returned sequence holds a database
// connection until it is ranged to the end or stopped.
// A database without a media table yields a nil sequence.
func (s *Store) Rows(ctx context.Context) (iter.Seq2[catalog.Row, error], error) {
	return rows(ctx, s.db, s.log)
}

func rows(ctx context.Context, conn *sql.DB, log zerolog.Logger) (iter.Seq2[catalog.Row, error], error) {
	ok, err := db.TableExists(ctx, conn, mediaTable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalog.ErrSourceUnavailable, err)
	}
	if !ok {
		log.Warn().Msg("media table missing")
		return nil, nil
	}

	res, err := conn.QueryContext(ctx, selectRows)
	if err != nil {
		return nil, fmt.Errorf("query media: %w", err)
	}

	return func(yield func(catalog.Row, error) bool) {
		defer res.Close()
		for res.Next() {
			r, err := scanRow(res)
			if err != nil {
				err = fmt.Errorf("%w: %w", catalog.ErrMalformedRow, err)
			}
			if !yield(r, err) {
				return
			}
		}
		if err := res.Err(); err != nil {
			yield(catalog.Row{}, err)
		}
	}, nil
}

func scanRow(res *sql.Rows) (catalog.Row, error) {
	var (
		r                       catalog.Row
		titleKey, album, artist sql.NullString
		artURI, uri             sql.NullString
		duration, year          sql.NullInt64 // often unknown in tables written by other tools
	)
	if err := res.Scan(
		&r.ID, &r.Title, &titleKey, &album, &r.AlbumID, &artist, &r.ArtistID,
		&duration, &r.TrackNo, &r.DiscNo, &year, &artURI, &uri,
	); err != nil {
		return catalog.Row{}, err
	}
	r.DurationMs = db.NullInt64Value(duration)
	r.Year = int(db.NullInt64Value(year))
	r.TitleKey = db.NullStringValue(titleKey)
	r.Album = db.NullStringValue(album)
	r.Artist = db.NullStringValue(artist)
	r.ArtURI = db.NullStringValue(artURI)
	r.MediaURI = db.NullStringValue(uri)
	return r, nil
}

// Replace swaps the whole media table for the rows of src in one transaction.
// Rows reported as malformed are skipped; any other error leaves the table
// untouched. It returns the number of rows written.
func (s *Store) Replace(ctx context.Context, src catalog.Source) (int, error) {
	seq, err := src.Rows(ctx)
	if err != nil {
		return 0, err
	}
	if seq == nil {
		return 0, catalog.ErrSourceUnavailable
	}

	var written, skipped int
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM media`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO media (id, title, title_key, album, album_id, artist, artist_id,
			                   duration_ms, track, disc, year, art_uri, uri)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for r, err := range seq {
			if err != nil {
				if errors.Is(err, catalog.ErrMalformedRow) {
					skipped++
					s.log.Debug().Err(err).Msg("skipping row")
					continue
				}
				return err
			}
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.Title, db.NullString(r.TitleKey), db.NullString(r.Album), r.AlbumID,
				db.NullString(r.Artist), r.ArtistID, r.DurationMs, r.TrackNo, r.DiscNo, r.Year,
				db.NullString(r.ArtURI), db.NullString(r.MediaURI),
			); err != nil {
				return fmt.Errorf("insert media %d: %w", r.ID, err)
			}
			written++
		}
		return ctx.Err()
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int("rows", written).Int("skipped", skipped).Msg("media table replaced")
	return written, nil
}

// FileSource reads the media table of the database at path, opening it
// read-only for every load. A missing file or a database without a media
// table is reported as unavailable.
func FileSource(path string, opts ...Option) catalog.Source {
	o := newOptions(opts)
	return catalog.SourceFunc(func(ctx context.Context) (iter.Seq2[catalog.Row, error], error) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				o.log.Warn().Str("path", path).Msg("media database not found")
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %w", catalog.ErrSourceUnavailable, err)
		}

		conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", catalog.ErrSourceUnavailable, err)
		}
		seq, err := rows(ctx, conn, o.log)
		if err != nil || seq == nil {
			conn.Close()
			return seq, err
		}
		return func(yield func(catalog.Row, error) bool) {
			defer conn.Close()
			seq(yield)
		}, nil
	})
}
