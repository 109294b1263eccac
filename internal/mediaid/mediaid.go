// Package mediaid encodes and decodes media addresses.
//
// An address is a single token naming a node of the browsing tree:
//
//	token := category ["/" value] ["|" leaf]
//
// For example "ALBUMS" lists every album, "ALBUMS/10" lists the tracks of album 10
// and "ALBUMS/10|3" is the fourth item of a queue built from album 10.
package mediaid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	valueSeparator = "/"
	leafSeparator  = "|"
)

// Category is the root of an address.
type Category string

const (
	CategoryMusic     Category = "MUSIC"
	CategoryAlbums    Category = "ALBUMS"
	CategoryArtists   Category = "ARTISTS"
	CategoryDaily     Category = "DAILY"
	CategoryPlaylists Category = "PLAYLISTS"
)

// Categories lists every known category in browsing order.
var Categories = []Category{
	CategoryMusic,
	CategoryAlbums,
	CategoryArtists,
	CategoryDaily,
	CategoryPlaylists,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMusic, CategoryAlbums, CategoryArtists, CategoryDaily, CategoryPlaylists:
		return true
	}
	return false
}

// TakesValue reports whether addresses of this category may carry a value.
// MUSIC and DAILY are flat: their children are addressed by leaf only.
func (c Category) TakesValue() bool {
	return c == CategoryAlbums || c == CategoryArtists || c == CategoryPlaylists
}

// ID is a decoded address. The zero value is not a valid address.
type ID struct {
	Category Category
	Value    int64
	HasValue bool
	Leaf     int64
	HasLeaf  bool
}

// New returns the address of a category root.
func New(c Category) ID {
	return ID{Category: c}
}

// NewValue returns the address of a category item, such as an album.
func NewValue(c Category, value int64) ID {
	return ID{Category: c, Value: value, HasValue: true}
}

// WithLeaf returns a copy of id addressing the given leaf.
func (id ID) WithLeaf(leaf int64) ID {
	id.Leaf = leaf
	id.HasLeaf = true
	return id
}

// Browse returns id without its leaf: the browsable node the leaf belongs to.
func (id ID) Browse() ID {
	id.Leaf = 0
	id.HasLeaf = false
	return id
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool {
	return id == ID{}
}

// String renders the address token. It assumes id was built by this package
// (New, NewValue, WithLeaf or Decode); use Validate to check hand-built values.
func (id ID) String() string {
	var b strings.Builder
	b.WriteString(string(id.Category))
	if id.HasValue {
		b.WriteString(valueSeparator)
		b.WriteString(strconv.FormatInt(id.Value, 10))
	}
	if id.HasLeaf {
		b.WriteString(leafSeparator)
		b.WriteString(strconv.FormatInt(id.Leaf, 10))
	}
	return b.String()
}

// Validate checks the arity and range rules of id.
func (id ID) Validate() error {
	token := id.String()
	if !id.Category.Valid() {
		return &InvalidError{Token: token, Reason: ReasonUnknownCategory}
	}
	if id.HasValue && !id.Category.TakesValue() {
		return &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	if id.HasLeaf && id.Category.TakesValue() && !id.HasValue {
		return &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	if (id.HasValue && id.Value < 0) || (id.HasLeaf && id.Leaf < 0) {
		return &InvalidError{Token: token, Reason: ReasonBadNumeric}
	}
	return nil
}

// Encode builds a token from its raw parts. Empty value or leaf means absent.
// Parts containing a delimiter are rejected instead of producing a token that
// would decode differently.
func Encode(c Category, value, leaf string) (string, error) {
	raw := string(c)
	if value != "" {
		raw += valueSeparator + value
	}
	if leaf != "" {
		raw += leafSeparator + leaf
	}
	if strings.ContainsAny(string(c), valueSeparator+leafSeparator) ||
		strings.ContainsAny(value, valueSeparator+leafSeparator) ||
		strings.ContainsAny(leaf, valueSeparator+leafSeparator) {
		return "", &InvalidError{Token: raw, Reason: ReasonDelimiter}
	}

	id, err := build(raw, string(c), value, value != "", leaf, leaf != "")
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Decode parses a token. On failure the returned ID is always the zero value.
func Decode(token string) (ID, error) {
	head, leaf, hasLeaf := strings.Cut(token, leafSeparator)
	if strings.Contains(leaf, leafSeparator) || strings.Contains(leaf, valueSeparator) {
		return ID{}, &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	category, value, hasValue := strings.Cut(head, valueSeparator)
	if strings.Contains(value, valueSeparator) {
		return ID{}, &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	if (hasValue && value == "") || (hasLeaf && leaf == "") {
		return ID{}, &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	return build(token, category, value, hasValue, leaf, hasLeaf)
}

// MustDecode is like Decode but panics on error. Intended for constants and tests.
func MustDecode(token string) ID {
	id, err := Decode(token)
	if err != nil {
		panic(err)
	}
	return id
}

func build(token, category, value string, hasValue bool, leaf string, hasLeaf bool) (ID, error) {
	c := Category(category)
	if !c.Valid() {
		return ID{}, &InvalidError{Token: token, Reason: ReasonUnknownCategory}
	}
	if hasValue && !c.TakesValue() {
		return ID{}, &InvalidError{Token: token, Reason: ReasonWrongArity}
	}
	if hasLeaf && c.TakesValue() && !hasValue {
		return ID{}, &InvalidError{Token: token, Reason: ReasonWrongArity}
	}

	id := ID{Category: c}
	if hasValue {
		v, ok := parseNumber(value)
		if !ok {
			return ID{}, &InvalidError{Token: token, Reason: ReasonBadNumeric}
		}
		id.Value, id.HasValue = v, true
	}
	if hasLeaf {
		l, ok := parseNumber(leaf)
		if !ok {
			return ID{}, &InvalidError{Token: token, Reason: ReasonBadNumeric}
		}
		id.Leaf, id.HasLeaf = l, true
	}
	return id, nil
}

// parseNumber accepts canonical non-negative decimals only, so that two
// different tokens never decode to the same address.
func parseNumber(s string) (int64, bool) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if strconv.FormatInt(v, 10) != s {
		return 0, false
	}
	return v, true
}

// ErrInvalid matches every *InvalidError via errors.Is.
var ErrInvalid = errors.New("invalid media id")

// Reason says why a token was rejected.
type Reason int

const (
	ReasonWrongArity Reason = iota + 1
	ReasonUnknownCategory
	ReasonBadNumeric
	ReasonDelimiter
)

func (r Reason) String() string {
	switch r {
	case ReasonWrongArity:
		return "wrong-arity"
	case ReasonUnknownCategory:
		return "unknown-category"
	case ReasonBadNumeric:
		return "bad-numeric"
	case ReasonDelimiter:
		return "delimiter"
	default:
		return "unknown"
	}
}

// InvalidError reports a malformed token.
type InvalidError struct {
	Token  string
	Reason Reason
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid media id %q: %s", e.Token, e.Reason)
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}

// ReasonOf returns the rejection reason carried by err, or 0 if err is not an *InvalidError.
func ReasonOf(err error) Reason {
	var ie *InvalidError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return 0
}
