// Package catalog holds the in-memory music catalog: every track indexed by id,
// alphabetically, by album and by artist, published as one immutable snapshot.
//
// Loads build a new snapshot off to the side and swap it in atomically, so
// readers never block and never see a partially built catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultArtBase prefixes the album id when a row carries no art reference.
const DefaultArtBase = "content://media/external/audio/albumart"

// ctxCheckInterval is how many rows are consumed between context checks.
const ctxCheckInterval = 256

// Source produces the raw rows of a library.
// A nil sequence with a nil error means the source has no result set and is
// reported as ErrSourceUnavailable.
type Source interface {
	Rows(ctx context.Context) (iter.Seq2[Row, error], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (iter.Seq2[Row, error], error)

func (f SourceFunc) Rows(ctx context.Context) (iter.Seq2[Row, error], error) {
	return f(ctx)
}

// Playlist is a user playlist as seen by the catalog.
type Playlist struct {
	ID   int64
	Name string
}

// Playlists gives the catalog read access to user playlists.
type Playlists interface {
	Playlists() ([]Playlist, error)
	// PlaylistTracks returns track ids in playlist order.
	PlaylistTracks(id int64) ([]int64, error)
}

// LoadStats reports the outcome of a load.
type LoadStats struct {
	Loaded     int
	Skipped    int
	Superseded bool
	Duration   time.Duration
}

// view is what readers see: a state and the snapshot backing it.
// snap is nil in StateEmpty and in a first StateLoading.
type view struct {
	state      State
	snap       *snapshot
	generation uint64
	reloading  bool
}

// Catalog is safe for concurrent use. Queries read the published view;
// Load and Refresh replace it.
type Catalog struct {
	current atomic.Pointer[view]

	mu         sync.Mutex // guards seq, cancel, generation and rand draws
	seq        uint64
	cancel     context.CancelFunc
	generation uint64
	rand       *rand.Rand

	log       zerolog.Logger
	artBase   string
	playlists Playlists
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// WithArtBase sets the prefix used to derive album art references.
// An empty base disables derived art.
func WithArtBase(base string) Option {
	return func(c *Catalog) { c.artBase = base }
}

// WithPlaylists sets the collaborator backing the PLAYLISTS category.
func WithPlaylists(p Playlists) Option {
	return func(c *Catalog) { c.playlists = p }
}

// WithRand sets the generator used for the daily pick.
// Without it the process-wide generator is used.
func WithRand(r *rand.Rand) Option {
	return func(c *Catalog) { c.rand = r }
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		log:     zerolog.Nop(),
		artBase: DefaultArtBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(&view{state: StateEmpty})
	return c
}

// State returns the current readiness state.
func (c *Catalog) State() State {
	return c.current.Load().state
}

// IsReady reports whether queries are served. A catalog being reloaded stays ready.
func (c *Catalog) IsReady() bool {
	return c.State() == StateReady
}

// Reloading reports whether a reload is running behind a ready catalog.
func (c *Catalog) Reloading() bool {
	return c.current.Load().reloading
}

// Generation identifies the published snapshot. It grows by one every time a
// load publishes a new snapshot or empties the catalog.
func (c *Catalog) Generation() uint64 {
	return c.current.Load().generation
}

// Load replaces the catalog with the tracks in rows.
//
// A Load started while another is running supersedes it: the older call's
// context is cancelled and it returns LoadStats{Superseded: true} with a nil
// error. Malformed rows, or errors wrapping ErrMalformedRow, are skipped.
// Any other error aborts the load and keeps the previous snapshot.
func (c *Catalog) Load(ctx context.Context, rows iter.Seq2[Row, error]) (LoadStats, error) {
	return c.load(ctx, func(context.Context) (iter.Seq2[Row, error], error) {
		return rows, nil
	})
}

// Refresh loads the catalog from src with the same rules as Load.
func (c *Catalog) Refresh(ctx context.Context, src Source) (LoadStats, error) {
	return c.load(ctx, src.Rows)
}

func (c *Catalog) load(
	ctx context.Context,
	open func(context.Context) (iter.Seq2[Row, error], error),
) (LoadStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	seq := c.begin(cancel)

	rows, err := open(ctx)
	if err == nil && rows == nil {
		err = ErrSourceUnavailable
	}

	var (
		snap  *snapshot
		stats LoadStats
	)
	if err == nil {
		snap, stats, err = c.build(ctx, rows)
	}
	stats.Duration = time.Since(start)

	return c.finish(seq, snap, stats, err)
}

// begin registers a new load, cancelling the one in flight, and publishes the
// loading state.
func (c *Catalog) begin(cancel context.CancelFunc) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	c.cancel = cancel

	cur := c.current.Load()
	next := *cur
	if cur.snap != nil {
		next.state = StateReady
		next.reloading = true
	} else {
		next.state = StateLoading
	}
	c.current.Store(&next)

	c.log.Debug().Uint64("load", c.seq).Bool("reload", next.reloading).Msg("catalog load started")
	return c.seq
}

// finish publishes the outcome of load seq unless a newer load replaced it.
func (c *Catalog) finish(seq uint64, snap *snapshot, stats LoadStats, err error) (LoadStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.log.Debug().Uint64("load", seq).Msg("catalog load superseded")
		return LoadStats{Superseded: true}, nil
	}
	c.cancel = nil

	cur := c.current.Load()

	switch {
	case err == nil:
		c.generation++
		c.current.Store(&view{state: StateReady, snap: snap, generation: c.generation})
		c.log.Info().
			Int("tracks", stats.Loaded).
			Int("skipped", stats.Skipped).
			Int("albums", len(snap.albums)).
			Int("artists", len(snap.artists)).
			Dur("took", stats.Duration).
			Uint64("generation", c.generation).
			Msg("catalog loaded")
		return stats, nil

	case errors.Is(err, ErrSourceUnavailable):
		c.generation++
		c.current.Store(&view{state: StateEmpty, generation: c.generation})
		c.log.Warn().Err(err).Msg("media source unavailable, catalog emptied")
		return stats, err

	default:
		// Cancelled or failed: keep serving what was there before.
		prev := &view{state: StateEmpty, generation: cur.generation}
		if cur.snap != nil {
			prev = &view{state: StateReady, snap: cur.snap, generation: cur.generation}
		}
		c.current.Store(prev)
		c.log.Warn().Err(err).Str("state", prev.state.String()).Msg("catalog load failed")
		return stats, err
	}
}

func (c *Catalog) build(ctx context.Context, rows iter.Seq2[Row, error]) (*snapshot, LoadStats, error) {
	var stats LoadStats
	tracks := make([]Track, 0, 1024)
	seen := make(map[int64]struct{}, 1024)

	n := 0
	for r, err := range rows {
		n++
		if n%ctxCheckInterval == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return nil, stats, cerr
			}
		}

		if err != nil {
			if errors.Is(err, ErrMalformedRow) {
				stats.Skipped++
				c.log.Warn().Err(err).Msg("skipping malformed row")
				continue
			}
			return nil, stats, fmt.Errorf("read rows: %w", err)
		}

		t, err := toTrack(r, c.artBase)
		if err == nil {
			if _, dup := seen[t.ID]; dup {
				err = fmt.Errorf("%w: duplicate track id %d", ErrMalformedRow, t.ID)
			}
		}
		if err != nil {
			stats.Skipped++
			c.log.Warn().Err(err).Int64("id", r.ID).Str("title", r.Title).Msg("skipping malformed row")
			continue
		}

		seen[t.ID] = struct{}{}
		tracks = append(tracks, t)
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	stats.Loaded = len(tracks)
	return newSnapshot(tracks), stats, nil
}

// ready returns the published snapshot, or nil when the catalog is not ready.
func (c *Catalog) ready() *snapshot {
	v := c.current.Load()
	if v.state != StateReady {
		return nil
	}
	return v.snap
}
