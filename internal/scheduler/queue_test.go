package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T Entry](entries []T) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.CardID()
	}
	return out
}

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue(QueueEntry{ID: 1}, QueueEntry{ID: 2})
	q.Push(QueueEntry{ID: 3})

	assert.Equal(t, 3, q.Len())
	e, err := q.PopFront()
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, []int64{2, 3}, ids(q.Entries()))
}

func TestQueue_PopEmpty(t *testing.T) {
	q := NewQueue[QueueEntry]()
	_, err := q.PopFront()
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.True(t, q.IsEmpty())
}

func TestQueue_RemoveByID(t *testing.T) {
	q := NewQueue(QueueEntry{ID: 1}, QueueEntry{ID: 2}, QueueEntry{ID: 1})
	assert.True(t, q.RemoveByID(1))
	assert.False(t, q.RemoveByID(1))
	assert.Equal(t, []int64{2}, ids(q.Entries()))
	assert.False(t, q.Contains(1))
}

func TestQueue_ShuffleIsSeeded(t *testing.T) {
	build := func() *Queue[QueueEntry] {
		q := NewQueue[QueueEntry]()
		for i := int64(1); i <= 20; i++ {
			q.Push(QueueEntry{ID: i})
		}
		return q
	}
	a, b := build(), build()
	a.Shuffle(42)
	b.Shuffle(42)
	assert.Equal(t, ids(a.Entries()), ids(b.Entries()), "same seed, same order")

	c := build()
	c.Shuffle(43)
	assert.NotEqual(t, ids(a.Entries()), ids(c.Entries()))
	assert.ElementsMatch(t, ids(a.Entries()), ids(c.Entries()))
}

func TestQueue_SortByDueIsStable(t *testing.T) {
	q := NewQueue(
		QueueEntry{ID: 1, Due: 30},
		QueueEntry{ID: 2, Due: 10},
		QueueEntry{ID: 3, Due: 30},
		QueueEntry{ID: 4, Due: 20},
	)
	q.SortByDue()
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(q.Entries()))
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue(QueueEntry{ID: 1})
	q.Clear()
	assert.Equal(t, 0, q.Len())
	_, ok := q.Peek()
	assert.False(t, ok)
}
