package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Track is an immutable catalog entry. A reload replaces every Track.
type Track struct {
	ID          int64
	Title       string
	Album       string
	Artist      string
	Duration    time.Duration
	DiscNumber  int
	TrackNumber int
	AlbumID     int64
	ArtistID    int64
	Year        int
	TitleKey    string
	ArtURI      string
	MediaURI    string
}

// Row is a raw record supplied by a Source.
//
// When DiscNo is zero, TrackNo is the packed form used by media stores:
// disc*100 + track. Sources that read the disc separately set DiscNo and
// leave TrackNo unpacked.
type Row struct {
	ID         int64
	Title      string
	Album      string
	Artist     string
	DurationMs int64
	TrackNo    int
	DiscNo     int
	AlbumID    int64
	ArtistID   int64
	Year       int
	TitleKey   string
	ArtURI     string
	MediaURI   string
}

// Album summarizes the tracks sharing an album id.
type Album struct {
	ID         int64
	Title      string
	Artist     string
	ArtistID   int64
	Year       int
	ArtURI     string
	TrackCount int
	Duration   time.Duration
}

// Artist summarizes the tracks sharing an artist id.
type Artist struct {
	ID         int64
	Name       string
	AlbumCount int
	TrackCount int
	ArtURI     string // art of the most recent album
}

// State is the readiness of a Catalog.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var (
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multipleSpaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeTitle derives a sort key from a title by:
// - Converting to lowercase
// - Replacing punctuation with spaces
// - Normalizing whitespace
func NormalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = punctuationRe.ReplaceAllString(s, " ")
	s = multipleSpaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return s
}

// FormatElapsed renders d as m:ss, or h:mm:ss from one hour.
func FormatElapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
