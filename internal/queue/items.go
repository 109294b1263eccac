// Package queue builds playback queues from catalog addresses.
//
// Queue items are addressed by their position in the queue, not by track id,
// so the same track can appear twice without two items sharing an address.
// Positions are assigned once by Build and never renumbered: Shuffle and Sort
// only change the order items are presented in.
package queue

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/llehouerou/odeon/internal/catalog"
	"github.com/llehouerou/odeon/internal/mediaid"
)

// Item is one queue entry.
type Item struct {
	Position int
	ID       mediaid.ID
	Track    catalog.Track
}

// MediaID returns the address token of the item.
func (it Item) MediaID() string {
	return it.ID.String()
}

// Build assigns positions 0..n-1 to tracks in order. Item i is addressed
// source|i, with any leaf already on source dropped.
// A source that cannot carry a leaf, such as a bare ALBUMS, fails with
// catalog.ErrInvalidAddress.
func Build(source mediaid.ID, tracks []catalog.Track) ([]Item, error) {
	node := source.Browse()
	if err := node.WithLeaf(0).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s cannot address queue items: %w", catalog.ErrInvalidAddress, node, err)
	}
	items := make([]Item, len(tracks))
	for i, t := range tracks {
		items[i] = Item{
			Position: i,
			ID:       node.WithLeaf(int64(i)),
			Track:    t,
		}
	}
	return items, nil
}

// IndexOfPosition returns the index of the item with the given position, or -1.
func IndexOfPosition(items []Item, position int) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.Position == position })
}

// IndexOfMediaID returns the index of the item addressed id, or -1.
func IndexOfMediaID(items []Item, id mediaid.ID) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// IndexOfTrack returns the index of the first item playing trackID, or -1.
func IndexOfTrack(items []Item, trackID int64) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.Track.ID == trackID })
}

// Shuffle returns a uniformly random permutation of items. A nil r uses the
// process-wide generator. items is not modified.
func Shuffle(items []Item, r *rand.Rand) []Item {
	out := slices.Clone(items)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if r != nil {
		r.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return out
}

// Sort returns items ordered by ascending position. items is not modified.
func Sort(items []Item) []Item {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b Item) int { return a.Position - b.Position })
	return out
}

// IsPlayable reports whether position lies inside a queue of len(items).
func IsPlayable(position int, items []Item) bool {
	return position >= 0 && position < len(items)
}
