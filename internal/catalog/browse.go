package catalog

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/llehouerou/odeon/internal/mediaid"
)

// Item is one displayable entry of a listing.
type Item struct {
	ID          mediaid.ID
	Title       string
	Subtitle    string
	ArtURI      string
	Browsable   bool
	Playable    bool
	TrackCount  int
	AlbumCount  int
	Duration    time.Duration
	DiscNumber  int
	TrackNumber int
}

// searchLimit caps the number of search results.
const searchLimit = 50

var categoryTitles = map[mediaid.Category]string{
	mediaid.CategoryMusic:     "All Tracks",
	mediaid.CategoryAlbums:    "Albums",
	mediaid.CategoryArtists:   "Artists",
	mediaid.CategoryDaily:     "Daily Song",
	mediaid.CategoryPlaylists: "Playlists",
}

// CategoryTitle returns the display name of a category root.
func CategoryTitle(c mediaid.Category) string {
	return categoryTitles[c]
}

// Root lists one browsable entry per category, empty when not ready.
func (c *Catalog) Root() []Item {
	s := c.ready()
	if s == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(mediaid.Categories))
	for _, cat := range mediaid.Categories {
		item := Item{
			ID:        mediaid.New(cat),
			Title:     categoryTitles[cat],
			Browsable: true,
		}
		switch cat {
		case mediaid.CategoryMusic:
			item.TrackCount = len(s.alpha)
			item.Playable = len(s.alpha) > 0
		case mediaid.CategoryAlbums:
			item.AlbumCount = len(s.albums)
		}
		items = append(items, item)
	}
	return items
}

// Browse lists the children of a node. A leaf address lists its parent node.
// A catalog that is not ready yields an empty listing, not an error.
func (c *Catalog) Browse(id mediaid.ID) ([]Item, error) {
	if err := id.Validate(); err != nil {
		return nil, addressError(err)
	}
	s := c.ready()
	if s == nil {
		c.log.Debug().Str("id", id.String()).Msg("browse before catalog is ready")
		return []Item{}, nil
	}

	node := id.Browse()
	switch node.Category {
	case mediaid.CategoryMusic:
		return musicItems(s), nil

	case mediaid.CategoryAlbums:
		if !node.HasValue {
			return albumItems(s.albums), nil
		}
		return trackItems(node, s.byAlbum.Get(node.Value)), nil

	case mediaid.CategoryArtists:
		if !node.HasValue {
			return artistItems(s), nil
		}
		return artistChildren(s, node), nil

	case mediaid.CategoryDaily:
		return c.dailyItems(s), nil

	case mediaid.CategoryPlaylists:
		if !node.HasValue {
			return c.playlistItems()
		}
		tracks, err := c.playlistTracks(s, node.Value)
		if err != nil {
			return nil, err
		}
		return trackItems(node, tracks), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, node.Category)
}

// Search returns tracks matching query, best first.
func (c *Catalog) Search(query string) []Item {
	s := c.ready()
	if s == nil {
		return []Item{}
	}

	matches := s.search.Search(query, searchLimit)
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		t := s.byID[m.ID]
		item := trackItem(mediaid.New(mediaid.CategoryMusic).WithLeaf(t.ID), t)
		item.Subtitle = t.Artist
		items = append(items, item)
	}
	return items
}

func trackItem(id mediaid.ID, t Track) Item {
	return Item{
		ID:          id,
		Title:       t.Title,
		Subtitle:    FormatElapsed(t.Duration),
		ArtURI:      t.ArtURI,
		Playable:    true,
		Duration:    t.Duration,
		DiscNumber:  t.DiscNumber,
		TrackNumber: t.TrackNumber,
	}
}

func musicItems(s *snapshot) []Item {
	root := mediaid.New(mediaid.CategoryMusic)
	items := make([]Item, len(s.alpha))
	for i, t := range s.alpha {
		items[i] = trackItem(root.WithLeaf(t.ID), t)
		items[i].Subtitle = t.Artist
	}
	return items
}

// trackItems lists tracks under node, each addressed node|trackID.
func trackItems(node mediaid.ID, tracks []Track) []Item {
	items := make([]Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem(node.WithLeaf(t.ID), t)
	}
	return items
}

func albumItem(a Album) Item {
	return Item{
		ID:         mediaid.NewValue(mediaid.CategoryAlbums, a.ID),
		Title:      a.Title,
		Subtitle:   a.Artist,
		ArtURI:     a.ArtURI,
		Browsable:  true,
		Playable:   true,
		TrackCount: a.TrackCount,
		Duration:   a.Duration,
	}
}

func albumItems(albums []Album) []Item {
	items := make([]Item, len(albums))
	for i, a := range albums {
		items[i] = albumItem(a)
	}
	return items
}

func artistItems(s *snapshot) []Item {
	items := make([]Item, len(s.artists))
	for i, a := range s.artists {
		items[i] = Item{
			ID:         mediaid.NewValue(mediaid.CategoryArtists, a.ID),
			Title:      a.Name,
			ArtURI:     a.ArtURI,
			Browsable:  true,
			TrackCount: a.TrackCount,
			AlbumCount: a.AlbumCount,
		}
	}
	return items
}

// artistChildren lists the artist's albums followed by the artist's tracks.
func artistChildren(s *snapshot, node mediaid.ID) []Item {
	albumIDs := s.artistAlbums[node.Value]
	tracks := s.byArtist.Get(node.Value)

	items := make([]Item, 0, len(albumIDs)+len(tracks))
	for _, id := range albumIDs {
		if a, ok := s.album(id); ok {
			items = append(items, albumItem(a))
		}
	}
	return append(items, trackItems(node, tracks)...)
}

func (c *Catalog) dailyItems(s *snapshot) []Item {
	t, ok := c.pick(s)
	if !ok {
		return []Item{}
	}
	item := trackItem(mediaid.New(mediaid.CategoryDaily).WithLeaf(t.ID), t)
	item.Subtitle = t.Artist
	return []Item{item}
}

func (c *Catalog) pick(s *snapshot) (Track, bool) {
	if len(s.alpha) == 0 {
		return Track{}, false
	}
	var i int
	if c.rand != nil {
		c.mu.Lock()
		i = c.rand.IntN(len(s.alpha))
		c.mu.Unlock()
	} else {
		i = rand.IntN(len(s.alpha))
	}
	return s.alpha[i], true
}

func (c *Catalog) playlistItems() ([]Item, error) {
	if c.playlists == nil {
		return []Item{}, nil
	}
	lists, err := c.playlists.Playlists()
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	items := make([]Item, len(lists))
	for i, p := range lists {
		items[i] = Item{
			ID:        mediaid.NewValue(mediaid.CategoryPlaylists, p.ID),
			Title:     p.Name,
			Browsable: true,
			Playable:  true,
		}
	}
	return items, nil
}
