package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/mediaid"
	"github.com/llehouerou/odeon/internal/state"
)

// defaultMediaID is prepared when nothing was played before.
var defaultMediaID = mediaid.New(mediaid.CategoryMusic)

// Title returns the display title of a queue built from source.
func Title(source mediaid.ID, cat *catalog.Catalog) string {
	switch source.Category {
	case mediaid.CategoryAlbums:
		if a, ok := cat.AlbumByID(source.Value); ok {
			return a.Title
		}
	case mediaid.CategoryArtists:
		if a, ok := cat.ArtistByID(source.Value); ok {
			return a.Name
		}
	case mediaid.CategoryPlaylists:
		if p, ok := cat.PlaylistByID(source.Value); ok {
			return p.Name
		}
	}
	return catalog.CategoryTitle(source.Category)
}

// Preparer turns addresses into queues and keeps the saved queue in sync.
type Preparer struct {
	catalog *catalog.Catalog
	state   state.Interface
	log     zerolog.Logger
	shuffle bool
}

// PreparerOption configures a Preparer.
type PreparerOption func(*Preparer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) PreparerOption {
	return func(p *Preparer) { p.log = log }
}

// WithShuffle makes new queues start shuffled.
func WithShuffle(on bool) PreparerOption {
	return func(p *Preparer) { p.shuffle = on }
}

// NewPreparer creates a Preparer reading from cat and persisting to st.
func NewPreparer(cat *catalog.Catalog, st state.Interface, opts ...PreparerOption) *Preparer {
	p := &Preparer{
		catalog: cat,
		state:   st,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare builds a queue for token and saves it.
//
// A listing address with a track leaf, such as ALBUMS/10|42, queues the whole
// album and selects track 42. Each prepared queue increments the persisted
// queue counter, which seeds its shuffle order.
func (p *Preparer) Prepare(ctx context.Context, token string) (*Queue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := catalog.ParseAddress(token)
	if err != nil {
		return nil, err
	}
	tracks, err := p.catalog.Resolve(id)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyQueue, id)
	}

	source := id.Browse()
	items, err := Build(source, tracks)
	if err != nil {
		return nil, err
	}

	counter, err := p.state.NextQueueCounter()
	if err != nil {
		return nil, fmt.Errorf("queue counter: %w", err)
	}

	q := New(Title(source, p.catalog), source, p.catalog.Generation(), counter, items)
	if p.shuffle {
		q.SetShuffle(true)
	}

	start := 0
	if id.HasLeaf {
		if i := IndexOfTrack(q.order, id.Leaf); i >= 0 {
			start = i
		} else {
			p.log.Debug().Str("id", id.String()).Msg("start track not in queue, starting at the top")
		}
	}
	q.JumpTo(start)

	if err := p.state.SetLastPlayed(id.String()); err != nil {
		return nil, fmt.Errorf("save last played: %w", err)
	}
	if err := p.Save(q); err != nil {
		return nil, err
	}

	p.log.Info().
		Str("queue", q.ID.String()).
		Str("source", source.String()).
		Int("tracks", q.Len()).
		Bool("shuffle", q.Shuffled()).
		Int64("seed", q.Seed).
		Msg("queue prepared")
	return q, nil
}

// PrepareDefault prepares the last played address, or every track when there
// is none or it no longer resolves to anything.
func (p *Preparer) PrepareDefault(ctx context.Context) (*Queue, error) {
	settings, err := p.state.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if last := settings.LastPlayedMediaID; last != "" {
		q, err := p.Prepare(ctx, last)
		switch {
		case err == nil:
			return q, nil
		case errors.Is(err, ErrEmptyQueue),
			errors.Is(err, catalog.ErrInvalidAddress),
			errors.Is(err, catalog.ErrUnknownCategory):
			p.log.Info().Err(err).Str("id", last).Msg("last played address unusable, playing all tracks")
		default:
			return nil, err
		}
	}

	return p.Prepare(ctx, defaultMediaID.String())
}

// Resume rebuilds the saved queue with its order and selection.
// A saved queue referencing tracks that are no longer in the catalog is
// discarded and ErrStaleQueue returned.
func (p *Preparer) Resume(ctx context.Context) (*Queue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.catalog.IsReady() {
		return nil, catalog.ErrNotReady
	}

	saved, err := p.state.GetQueue()
	if err != nil {
		return nil, fmt.Errorf("read saved queue: %w", err)
	}
	if len(saved.Items) == 0 {
		return nil, ErrEmptyQueue
	}

	q, err := p.restore(saved)
	if err != nil {
		p.log.Warn().Err(err).Str("queue", saved.ID).Msg("discarding saved queue")
		if cerr := p.state.ClearQueue(); cerr != nil {
			p.log.Warn().Err(cerr).Msg("clear saved queue")
		}
		return nil, err
	}
	if gen := p.catalog.Generation(); q.Stale(gen) {
		// Every track was found again by id, so the queue now belongs to gen.
		p.log.Info().
			Uint64("saved", q.Generation).
			Uint64("catalog", gen).
			Msg("saved queue predates the catalog")
		q.Generation = gen
	}

	p.log.Info().
		Str("queue", q.ID.String()).
		Int("tracks", q.Len()).
		Int("current", q.CurrentIndex()).
		Msg("queue resumed")
	return q, nil
}

func (p *Preparer) restore(saved *state.QueueState) (*Queue, error) {
	id, err := uuid.Parse(saved.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad queue id: %w", ErrStaleQueue, err)
	}
	source, err := mediaid.Decode(saved.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStaleQueue, err)
	}

	n := len(saved.Items)
	order := make([]Item, n)
	seen := make([]bool, n)
	for i, s := range saved.Items {
		if s.Position < 0 || s.Position >= n || seen[s.Position] {
			return nil, fmt.Errorf("%w: bad position %d", ErrStaleQueue, s.Position)
		}
		seen[s.Position] = true

		t, ok := p.catalog.TrackByID(s.TrackID)
		if !ok {
			return nil, fmt.Errorf("%w: track %d not in catalog", ErrStaleQueue, s.TrackID)
		}
		order[i] = Item{Position: s.Position, ID: source.WithLeaf(int64(s.Position)), Track: t}
	}

	q := New(saved.Title, source, saved.Generation, saved.Seed, order)
	q.ID = id
	q.order = order
	q.shuffled = saved.Shuffle
	if saved.CurrentIndex >= 0 && saved.CurrentIndex < n {
		q.currentIndex = saved.CurrentIndex
	}
	return q, nil
}

// Save persists q as the saved queue.
func (p *Preparer) Save(q *Queue) error {
	if err := p.state.SaveQueue(q.State()); err != nil {
		return fmt.Errorf("save queue: %w", err)
	}
	return nil
}

// SavePosition records the selection of q without rewriting its items.
func (p *Preparer) SavePosition(q *Queue) {
	p.state.SavePosition(q.CurrentIndex())
}
