package queue

import (
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/llehouerou/odeon/internal/mediaid"
	"github.com/llehouerou/odeon/internal/state"
)

// Queue is one playback queue instance.
type Queue struct {
	ID         uuid.UUID
	Title      string
	Source     mediaid.ID
	Generation uint64 // catalog generation the tracks come from
	Seed       int64  // fixes the shuffle order of this queue

	items        []Item // by position
	order        []Item // presentation order
	shuffled     bool
	currentIndex int // -1 if nothing selected
}

// New creates an unshuffled queue over items with nothing selected.
func New(title string, source mediaid.ID, generation uint64, seed int64, items []Item) *Queue {
	sorted := Sort(items)
	return &Queue{
		ID:           uuid.New(),
		Title:        title,
		Source:       source.Browse(),
		Generation:   generation,
		Seed:         seed,
		items:        sorted,
		order:        slices.Clone(sorted),
		currentIndex: -1,
	}
}

// Current returns the selected item, or nil if none.
func (q *Queue) Current() *Item {
	if q.currentIndex < 0 || q.currentIndex >= len(q.order) {
		return nil
	}
	it := q.order[q.currentIndex]
	return &it
}

// CurrentIndex returns the index of the selected item in presentation order (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Next advances to the next item and returns it.
// Returns nil if there is no next item.
func (q *Queue) Next() *Item {
	if !q.HasNext() {
		return nil
	}
	q.currentIndex++
	return q.Current()
}

// HasNext returns true if there's an item after the current one.
func (q *Queue) HasNext() bool {
	return q.currentIndex < len(q.order)-1
}

// Previous steps back one item and returns it.
// Returns nil at the start of the queue.
func (q *Queue) Previous() *Item {
	if !q.HasPrevious() {
		return nil
	}
	q.currentIndex--
	return q.Current()
}

// HasPrevious returns true if there's an item before the current one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// JumpTo selects the item at index in presentation order.
// Returns the item, or nil if index is out of range.
func (q *Queue) JumpTo(index int) *Item {
	if index < 0 || index >= len(q.order) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// JumpToPosition selects the item with the given queue position.
func (q *Queue) JumpToPosition(position int) *Item {
	if !IsPlayable(position, q.items) {
		return nil
	}
	return q.JumpTo(IndexOfPosition(q.order, position))
}

// Shuffled reports whether the presentation order is shuffled.
func (q *Queue) Shuffled() bool {
	return q.shuffled
}

// SetShuffle switches between the shuffled and the position order. The shuffled
// order only depends on Seed, so toggling it off and on restores the same order.
// The selected item stays selected.
func (q *Queue) SetShuffle(on bool) {
	if on == q.shuffled {
		return
	}

	current := q.Current()
	if on {
		q.order = Shuffle(q.items, q.rand())
	} else {
		q.order = slices.Clone(q.items)
	}
	q.shuffled = on

	if current != nil {
		q.currentIndex = IndexOfPosition(q.order, current.Position)
	}
}

func (q *Queue) rand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(q.Seed), uint64(len(q.items)))) //nolint:gosec // seed is a counter
}

// Items returns the items in presentation order.
func (q *Queue) Items() []Item {
	return slices.Clone(q.order)
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if the queue has no items.
func (q *Queue) IsEmpty() bool {
	return len(q.items) == 0
}

// Stale reports whether the queue was built from a catalog generation other
// than generation. A stale queue still plays its own tracks; lookups by id
// against the catalog may no longer match.
func (q *Queue) Stale(generation uint64) bool {
	return q.Generation != generation
}

// State returns the persisted form of q.
func (q *Queue) State() state.QueueState {
	items := make([]state.QueueItem, len(q.order))
	for i, it := range q.order {
		items[i] = state.QueueItem{Position: it.Position, TrackID: it.Track.ID}
	}
	return state.QueueState{
		ID:           q.ID.String(),
		Title:        q.Title,
		Source:       q.Source.String(),
		Generation:   q.Generation,
		Seed:         q.Seed,
		CurrentIndex: q.currentIndex,
		Shuffle:      q.shuffled,
		Items:        items,
	}
}
