package catalog

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/llehouerou/odeon/internal/mediaid"
)

// Len returns the number of tracks, zero when not ready.
func (c *Catalog) Len() int {
	s := c.ready()
	if s == nil {
		return 0
	}
	return len(s.alpha)
}

// TrackByID returns the track with the given id.
func (c *Catalog) TrackByID(id int64) (Track, bool) {
	s := c.ready()
	if s == nil {
		return Track{}, false
	}
	t, ok := s.byID[id]
	return t, ok
}

// AllTracks returns every track ordered by title key, then id.
func (c *Catalog) AllTracks() []Track {
	s := c.ready()
	if s == nil {
		return []Track{}
	}
	return slices.Clone(s.alpha)
}

// TracksByAlbum returns the tracks of an album ordered by disc, track number, then id.
func (c *Catalog) TracksByAlbum(albumID int64) []Track {
	s := c.ready()
	if s == nil {
		return []Track{}
	}
	return s.byAlbum.Get(albumID)
}

// TracksByArtist returns the tracks of an artist ordered by title key, then id.
func (c *Catalog) TracksByArtist(artistID int64) []Track {
	s := c.ready()
	if s == nil {
		return []Track{}
	}
	return s.byArtist.Get(artistID)
}

// Albums returns every album summary ordered by title.
func (c *Catalog) Albums() []Album {
	s := c.ready()
	if s == nil {
		return []Album{}
	}
	return slices.Clone(s.albums)
}

// Artists returns every artist summary ordered by name.
func (c *Catalog) Artists() []Artist {
	s := c.ready()
	if s == nil {
		return []Artist{}
	}
	return slices.Clone(s.artists)
}

// AlbumByID returns an album summary.
func (c *Catalog) AlbumByID(id int64) (Album, bool) {
	s := c.ready()
	if s == nil {
		return Album{}, false
	}
	return s.album(id)
}

// ArtistByID returns an artist summary.
func (c *Catalog) ArtistByID(id int64) (Artist, bool) {
	s := c.ready()
	if s == nil {
		return Artist{}, false
	}
	return s.artist(id)
}

// RandomTrack picks a track uniformly. A nil r uses the catalog's generator
// (WithRand), or the process-wide one when none was given.
// It reports false when the catalog is empty or not ready.
func (c *Catalog) RandomTrack(r *rand.Rand) (Track, bool) {
	s := c.ready()
	if s == nil || len(s.alpha) == 0 {
		return Track{}, false
	}
	if r == nil {
		return c.pick(s)
	}
	return s.alpha[r.IntN(len(s.alpha))], true
}

// Resolve returns the tracks an address plays, in play order.
//
// MUSIC, ALBUMS/v, ARTISTS/v and PLAYLISTS/v ignore the leaf; DAILY needs one
// and resolves to that single track. Unknown groups resolve to an empty slice.
func (c *Catalog) Resolve(id mediaid.ID) ([]Track, error) {
	if err := id.Validate(); err != nil {
		return nil, addressError(err)
	}
	s := c.ready()
	if s == nil {
		return nil, ErrNotReady
	}
	return c.resolve(s, id)
}

// ResolveToken decodes token and resolves it.
func (c *Catalog) ResolveToken(token string) ([]Track, error) {
	id, err := ParseAddress(token)
	if err != nil {
		return nil, err
	}
	return c.Resolve(id)
}

// ParseAddress decodes token, reporting an unknown category as
// ErrUnknownCategory and every other decode failure as ErrInvalidAddress.
func ParseAddress(token string) (mediaid.ID, error) {
	id, err := mediaid.Decode(token)
	if err != nil {
		return mediaid.ID{}, addressError(err)
	}
	return id, nil
}

func (c *Catalog) resolve(s *snapshot, id mediaid.ID) ([]Track, error) {
	if id.Category.TakesValue() && !id.HasValue {
		return nil, fmt.Errorf("%w: %s needs a value", ErrInvalidAddress, id)
	}

	switch id.Category {
	case mediaid.CategoryMusic:
		return slices.Clone(s.alpha), nil

	case mediaid.CategoryAlbums:
		return s.byAlbum.Get(id.Value), nil

	case mediaid.CategoryArtists:
		return s.byArtist.Get(id.Value), nil

	case mediaid.CategoryDaily:
		if !id.HasLeaf {
			return nil, fmt.Errorf("%w: %s needs a track", ErrInvalidAddress, id)
		}
		t, ok := s.byID[id.Leaf]
		if !ok {
			return []Track{}, nil
		}
		return []Track{t}, nil

	case mediaid.CategoryPlaylists:
		return c.playlistTracks(s, id.Value)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, id.Category)
}

func (c *Catalog) playlistTracks(s *snapshot, playlistID int64) ([]Track, error) {
	if c.playlists == nil {
		return []Track{}, nil
	}
	ids, err := c.playlists.PlaylistTracks(playlistID)
	if err != nil {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, err)
	}

	tracks := make([]Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.byID[id]; ok {
			tracks = append(tracks, t)
		} else {
			c.log.Debug().Int64("playlist", playlistID).Int64("track", id).Msg("playlist track not in catalog")
		}
	}
	return tracks, nil
}

// PlaylistByID looks a playlist up through the playlists collaborator.
func (c *Catalog) PlaylistByID(id int64) (Playlist, bool) {
	if c.playlists == nil {
		return Playlist{}, false
	}
	lists, err := c.playlists.Playlists()
	if err != nil {
		c.log.Warn().Err(err).Msg("list playlists")
		return Playlist{}, false
	}
	for _, p := range lists {
		if p.ID == id {
			return p, true
		}
	}
	return Playlist{}, false
}
