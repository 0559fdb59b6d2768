package scheduler

import (
	"math/rand"
	"slices"
)

// Entry is the minimal projection of a card kept resident in a queue.
type Entry interface {
	CardID() int64
	DueValue() int64
}

// QueueEntry is the default Entry: a card id with its due value.
type QueueEntry struct {
	ID  int64
	Due int64
}

func (e QueueEntry) CardID() int64   { return e.ID }
func (e QueueEntry) DueValue() int64 { return e.Due }

// Queue is an ordered FIFO buffer of card references.
type Queue[T Entry] struct {
	items []T
}

// NewQueue returns a queue holding entries in the given order.
func NewQueue[T Entry](entries ...T) *Queue[T] {
	return &Queue[T]{items: append([]T(nil), entries...)}
}

func (q *Queue[T]) Push(e T) {
	q.items = append(q.items, e)
}

// PopFront removes and returns the first entry.
func (q *Queue[T]) PopFront() (T, error) {
	var zero T
	if len(q.items) == 0 {
		return zero, ErrQueueEmpty
	}
	e := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return e, nil
}

// Peek returns the first entry without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	return q.items[0], true
}

// RemoveByID drops every entry for the card. Returns true if any was found.
func (q *Queue[T]) RemoveByID(id int64) bool {
	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(e T) bool { return e.CardID() == id })
	return len(q.items) != before
}

func (q *Queue[T]) Contains(id int64) bool {
	return slices.ContainsFunc(q.items, func(e T) bool { return e.CardID() == id })
}

func (q *Queue[T]) Clear() {
	q.items = nil
}

func (q *Queue[T]) IsEmpty() bool {
	return len(q.items) == 0
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

// Shuffle permutes the entries deterministically for the given seed.
func (q *Queue[T]) Shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// SortByDue orders entries by ascending due, keeping the current order for
// equal dues.
func (q *Queue[T]) SortByDue() {
	slices.SortStableFunc(q.items, func(a, b T) int {
		switch {
		case a.DueValue() < b.DueValue():
			return -1
		case a.DueValue() > b.DueValue():
			return 1
		}
		return 0
	})
}

// Entries returns a copy of the queue contents in order.
func (q *Queue[T]) Entries() []T {
	return append([]T(nil), q.items...)
}
