package scheduler

import "container/heap"

// DueQueue keeps entries ordered by ascending due value. Entries with equal
// due values come out in insertion order.
type DueQueue[T Entry] struct {
	h   dueHeap[T]
	seq uint64
}

type dueItem[T Entry] struct {
	entry   T
	seq     uint64
	heapIdx int
}

type dueHeap[T Entry] []*dueItem[T]

func (h dueHeap[T]) Len() int { return len(h) }

func (h dueHeap[T]) Less(i, j int) bool {
	di, dj := h[i].entry.DueValue(), h[j].entry.DueValue()
	if di != dj {
		return di < dj
	}
	return h[i].seq < h[j].seq
}

func (h dueHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}

func (h *dueHeap[T]) Push(x any) {
	it := x.(*dueItem[T])
	it.heapIdx = len(*h)
	*h = append(*h, it)
}

func (h *dueHeap[T]) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.heapIdx = -1
	*h = old[:n-1]
	return it
}

// NewDueQueue returns a queue holding the given entries.
func NewDueQueue[T Entry](entries ...T) *DueQueue[T] {
	q := &DueQueue[T]{}
	for _, e := range entries {
		q.Push(e)
	}
	return q
}

// Push inserts e at its sorted position in O(log n).
func (q *DueQueue[T]) Push(e T) {
	q.seq++
	heap.Push(&q.h, &dueItem[T]{entry: e, seq: q.seq})
}

// PopFront removes and returns the entry with the smallest due.
func (q *DueQueue[T]) PopFront() (T, error) {
	var zero T
	if len(q.h) == 0 {
		return zero, ErrQueueEmpty
	}
	return heap.Pop(&q.h).(*dueItem[T]).entry, nil
}

// PeekFirstDue returns the smallest due value; ok is false when empty.
func (q *DueQueue[T]) PeekFirstDue() (due int64, ok bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].entry.DueValue(), true
}

// Peek returns the entry with the smallest due without removing it.
func (q *DueQueue[T]) Peek() (T, bool) {
	var zero T
	if len(q.h) == 0 {
		return zero, false
	}
	return q.h[0].entry, true
}

// RemoveByID drops every entry for the card. Returns true if any was found.
func (q *DueQueue[T]) RemoveByID(id int64) bool {
	found := false
	for {
		idx := q.indexOf(id)
		if idx < 0 {
			return found
		}
		heap.Remove(&q.h, idx)
		found = true
	}
}

func (q *DueQueue[T]) indexOf(id int64) int {
	for i, it := range q.h {
		if it.entry.CardID() == id {
			return i
		}
	}
	return -1
}

func (q *DueQueue[T]) Contains(id int64) bool {
	return q.indexOf(id) >= 0
}

func (q *DueQueue[T]) Clear() {
	q.h = nil
}

func (q *DueQueue[T]) IsEmpty() bool {
	return len(q.h) == 0
}

func (q *DueQueue[T]) Len() int {
	return len(q.h)
}

// Entries returns the contents in due order without modifying the queue.
func (q *DueQueue[T]) Entries() []T {
	cp := make(dueHeap[T], len(q.h))
	for i, it := range q.h {
		c := *it
		cp[i] = &c
	}
	out := make([]T, 0, len(cp))
	for len(cp) > 0 {
		out = append(out, heap.Pop(&cp).(*dueItem[T]).entry)
	}
	return out
}
