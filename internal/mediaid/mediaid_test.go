//nolint:goconst // test cases intentionally repeat tokens for readability
package mediaid

import (
	"errors"
	"testing"
)

func TestDecode_Valid(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  ID
	}{
		{"category root", "MUSIC", ID{Category: CategoryMusic}},
		{"music leaf", "MUSIC|42", ID{Category: CategoryMusic, Leaf: 42, HasLeaf: true}},
		{"album listing", "ALBUMS", ID{Category: CategoryAlbums}},
		{"album", "ALBUMS/10", ID{Category: CategoryAlbums, Value: 10, HasValue: true}},
		{"album queue item", "ALBUMS/10|0", ID{Category: CategoryAlbums, Value: 10, HasValue: true, HasLeaf: true}},
		{"artist", "ARTISTS/7", ID{Category: CategoryArtists, Value: 7, HasValue: true}},
		{"daily pick", "DAILY|99", ID{Category: CategoryDaily, Leaf: 99, HasLeaf: true}},
		{"playlist", "PLAYLISTS/3|12", ID{Category: CategoryPlaylists, Value: 3, HasValue: true, Leaf: 12, HasLeaf: true}},
		{"zero value", "ALBUMS/0", ID{Category: CategoryAlbums, HasValue: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.token)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.token, got, tt.want)
			}
			if got.String() != tt.token {
				t.Errorf("String() = %q, want %q", got.String(), tt.token)
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		reason Reason
	}{
		{"empty", "", ReasonUnknownCategory},
		{"lowercase category", "music", ReasonUnknownCategory},
		{"unknown category", "GENRES/1", ReasonUnknownCategory},
		{"two values", "ALBUMS/1/2", ReasonWrongArity},
		{"two leaves", "ALBUMS/1|2|3", ReasonWrongArity},
		{"separator after leaf", "MUSIC|3/4", ReasonWrongArity},
		{"empty value", "ALBUMS/", ReasonWrongArity},
		{"empty leaf", "ALBUMS/1|", ReasonWrongArity},
		{"value on flat category", "MUSIC/5", ReasonWrongArity},
		{"value on daily", "DAILY/DAILY|5", ReasonWrongArity},
		{"leaf without value", "ALBUMS|5", ReasonWrongArity},
		{"text value", "ALBUMS/abc", ReasonBadNumeric},
		{"text leaf", "ARTISTS/1|x", ReasonBadNumeric},
		{"negative value", "ALBUMS/-1", ReasonBadNumeric},
		{"signed value", "ALBUMS/+1", ReasonBadNumeric},
		{"leading zero", "ALBUMS/007", ReasonBadNumeric},
		{"overflow", "ALBUMS/99999999999999999999", ReasonBadNumeric},
		{"space", "ALBUMS/ 1", ReasonBadNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.token)
			if err == nil {
				t.Fatalf("Decode(%q) = %+v, want error", tt.token, got)
			}
			if !got.IsZero() {
				t.Errorf("Decode(%q) returned partial value %+v", tt.token, got)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("errors.Is(err, ErrInvalid) = false for %v", err)
			}
			if r := ReasonOf(err); r != tt.reason {
				t.Errorf("reason = %s, want %s", r, tt.reason)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		value    string
		leaf     string
		want     string
		reason   Reason
	}{
		{name: "root", category: CategoryMusic, want: "MUSIC"},
		{name: "album", category: CategoryAlbums, value: "10", want: "ALBUMS/10"},
		{name: "album leaf", category: CategoryAlbums, value: "10", leaf: "1", want: "ALBUMS/10|1"},
		{name: "daily leaf", category: CategoryDaily, leaf: "5", want: "DAILY|5"},
		{name: "slash in value", category: CategoryAlbums, value: "AC/DC", reason: ReasonDelimiter},
		{name: "pipe in value", category: CategoryArtists, value: "a|b", reason: ReasonDelimiter},
		{name: "slash in leaf", category: CategoryAlbums, value: "1", leaf: "2/3", reason: ReasonDelimiter},
		{name: "delimiter in category", category: "ALBUMS/1", reason: ReasonDelimiter},
		{name: "unknown category", category: "GENRES", reason: ReasonUnknownCategory},
		{name: "free text value", category: CategoryAlbums, value: "Abbey Road", reason: ReasonBadNumeric},
		{name: "value on flat category", category: CategoryMusic, value: "1", reason: ReasonWrongArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.category, tt.value, tt.leaf)
			if tt.reason != 0 {
				if err == nil {
					t.Fatalf("Encode() = %q, want error", got)
				}
				if r := ReasonOf(err); r != tt.reason {
					t.Errorf("reason = %s, want %s", r, tt.reason)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	numbers := []int64{0, 1, 9, 10, 100, 12345, 1<<63 - 1}
	var ids []ID
	for _, c := range Categories {
		ids = append(ids, New(c))
		for _, n := range numbers {
			if c.TakesValue() {
				ids = append(ids, NewValue(c, n))
				for _, l := range numbers {
					ids = append(ids, NewValue(c, n).WithLeaf(l))
				}
			} else {
				ids = append(ids, New(c).WithLeaf(n))
			}
		}
	}

	for _, id := range ids {
		if err := id.Validate(); err != nil {
			t.Fatalf("Validate(%+v): %v", id, err)
		}
		got, err := Decode(id.String())
		if err != nil {
			t.Fatalf("Decode(%q): %v", id.String(), err)
		}
		if got != id {
			t.Errorf("Decode(%q) = %+v, want %+v", id.String(), got, id)
		}
	}
}

func TestBrowseAndWithLeaf(t *testing.T) {
	id := NewValue(CategoryAlbums, 10).WithLeaf(3)
	if id.String() != "ALBUMS/10|3" {
		t.Errorf("String() = %q, want ALBUMS/10|3", id.String())
	}
	if got := id.Browse(); got != NewValue(CategoryAlbums, 10) {
		t.Errorf("Browse() = %+v, want ALBUMS/10", got)
	}
}

func TestValidate(t *testing.T) {
	bad := []ID{
		{},
		{Category: "NOPE"},
		{Category: CategoryMusic, Value: 1, HasValue: true},
		{Category: CategoryAlbums, Leaf: 1, HasLeaf: true},
		{Category: CategoryAlbums, Value: -1, HasValue: true},
	}
	for _, id := range bad {
		if err := id.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", id)
		}
	}
}

func TestMustDecode_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDecode should panic on invalid token")
		}
	}()
	MustDecode("ALBUMS/x")
}
