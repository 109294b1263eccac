package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/llehouerou/odeon/internal/groupindex"
	"github.com/llehouerou/odeon/internal/search"
)

// snapshot is one fully built catalog. It is never modified after build returns.
type snapshot struct {
	byID     map[int64]Track
	alpha    []Track
	byAlbum  *groupindex.Index[int64, Track]
	byArtist *groupindex.Index[int64, Track]

	albums       []Album // by title, case-insensitive, then id
	albumIndex   map[int64]int
	artists      []Artist // by name, case-insensitive, then id
	artistIndex  map[int64]int
	artistAlbums map[int64][]int64

	search *search.Index
}

func trackID(t Track) int64 { return t.ID }

func byDiscAndNumber(a, b Track) int {
	return cmp.Or(
		cmp.Compare(a.DiscNumber, b.DiscNumber),
		cmp.Compare(a.TrackNumber, b.TrackNumber),
	)
}

func byTitleKey(a, b Track) int {
	return strings.Compare(a.TitleKey, b.TitleKey)
}

// toTrack validates r and converts it. Errors wrap ErrMalformedRow.
func toTrack(r Row, artBase string) (Track, error) {
	switch {
	case r.ID <= 0:
		return Track{}, fmt.Errorf("%w: non-positive id %d", ErrMalformedRow, r.ID)
	case strings.TrimSpace(r.Title) == "":
		return Track{}, fmt.Errorf("%w: track %d has no title", ErrMalformedRow, r.ID)
	case r.DurationMs < 0:
		return Track{}, fmt.Errorf("%w: track %d has negative duration", ErrMalformedRow, r.ID)
	case r.TrackNo < 0 || r.DiscNo < 0:
		return Track{}, fmt.Errorf("%w: track %d has negative track or disc number", ErrMalformedRow, r.ID)
	case r.AlbumID < 0 || r.ArtistID < 0:
		return Track{}, fmt.Errorf("%w: track %d has negative album or artist id", ErrMalformedRow, r.ID)
	case r.Year < 0:
		return Track{}, fmt.Errorf("%w: track %d has negative year", ErrMalformedRow, r.ID)
	}

	disc, number := r.DiscNo, r.TrackNo
	if disc == 0 {
		disc, number = r.TrackNo/100, r.TrackNo%100
	}

	key := r.TitleKey
	if key == "" {
		key = NormalizeTitle(r.Title)
	}

	art := r.ArtURI
	if art == "" && artBase != "" {
		art = artBase + "/" + strconv.FormatInt(r.AlbumID, 10)
	}

	return Track{
		ID:          r.ID,
		Title:       r.Title,
		Album:       r.Album,
		Artist:      r.Artist,
		Duration:    time.Duration(r.DurationMs) * time.Millisecond,
		DiscNumber:  disc,
		TrackNumber: number,
		AlbumID:     r.AlbumID,
		ArtistID:    r.ArtistID,
		Year:        r.Year,
		TitleKey:    key,
		ArtURI:      art,
		MediaURI:    r.MediaURI,
	}, nil
}

// newSnapshot derives every view from tracks. tracks must have unique ids.
func newSnapshot(tracks []Track) *snapshot {
	s := &snapshot{
		byID:         make(map[int64]Track, len(tracks)),
		byAlbum:      groupindex.New[int64](byDiscAndNumber, trackID),
		byArtist:     groupindex.New[int64](byTitleKey, trackID),
		albumIndex:   make(map[int64]int),
		artistIndex:  make(map[int64]int),
		artistAlbums: make(map[int64][]int64),
	}

	for _, t := range tracks {
		s.byID[t.ID] = t
		s.byAlbum.Put(t.AlbumID, t)
		s.byArtist.Put(t.ArtistID, t)
	}

	s.alpha = slices.Clone(tracks)
	slices.SortFunc(s.alpha, func(a, b Track) int {
		return cmp.Or(byTitleKey(a, b), cmp.Compare(a.ID, b.ID))
	})

	s.buildAlbums()
	s.buildArtists()

	docs := make([]search.Document, len(s.alpha))
	for i, t := range s.alpha {
		docs[i] = search.Document{ID: t.ID, Text: t.Title + " " + t.Artist + " " + t.Album}
	}
	s.search = search.NewIndex(docs)

	return s
}

func (s *snapshot) buildAlbums() {
	for id, group := range s.byAlbum.All() {
		first := group[0]
		a := Album{
			ID:         id,
			Title:      first.Album,
			Artist:     first.Artist,
			ArtistID:   first.ArtistID,
			ArtURI:     first.ArtURI,
			TrackCount: len(group),
		}
		for _, t := range group {
			a.Year = max(a.Year, t.Year)
			a.Duration += t.Duration
		}
		s.albums = append(s.albums, a)
	}

	slices.SortFunc(s.albums, func(a, b Album) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	for i, a := range s.albums {
		s.albumIndex[a.ID] = i
	}
}

func (s *snapshot) buildArtists() {
	for id, group := range s.byArtist.All() {
		albumIDs := make(map[int64]struct{})
		for _, t := range group {
			albumIDs[t.AlbumID] = struct{}{}
		}

		albums := make([]Album, 0, len(albumIDs))
		for albumID := range albumIDs {
			albums = append(albums, s.albums[s.albumIndex[albumID]])
		}
		// Discography order: oldest first.
		slices.SortFunc(albums, func(a, b Album) int {
			return cmp.Or(
				cmp.Compare(a.Year, b.Year),
				strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
				cmp.Compare(a.ID, b.ID),
			)
		})
		ids := make([]int64, len(albums))
		for i, a := range albums {
			ids[i] = a.ID
		}
		s.artistAlbums[id] = ids

		recent := slices.MaxFunc(albums, func(a, b Album) int {
			return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.ID, b.ID))
		})

		s.artists = append(s.artists, Artist{
			ID:         id,
			Name:       group[0].Artist,
			AlbumCount: len(albums),
			TrackCount: len(group),
			ArtURI:     recent.ArtURI,
		})
	}

	slices.SortFunc(s.artists, func(a, b Artist) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			cmp.Compare(a.ID, b.ID),
		)
	})
	for i, a := range s.artists {
		s.artistIndex[a.ID] = i
	}
}

func (s *snapshot) album(id int64) (Album, bool) {
	i, ok := s.albumIndex[id]
	if !ok {
		return Album{}, false
	}
	return s.albums[i], true
}

func (s *snapshot) artist(id int64) (Artist, bool) {
	i, ok := s.artistIndex[id]
	if !ok {
		return Artist{}, false
	}
	return s.artists[i], true
}
