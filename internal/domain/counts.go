package domain

import "fmt"

// Counts is the (new, learning, review) triple shown in a study session.
type Counts struct {
	New      int
	Learning int
	Review   int
}

// Add returns the component-wise sum.
func (c Counts) Add(o Counts) Counts {
	return Counts{New: c.New + o.New, Learning: c.Learning + o.Learning, Review: c.Review + o.Review}
}

// Total is the number of reps represented.
func (c Counts) Total() int {
	return c.New + c.Learning + c.Review
}

// NonNegative clamps every component at zero.
func (c Counts) NonNegative() Counts {
	return Counts{New: max(c.New, 0), Learning: max(c.Learning, 0), Review: max(c.Review, 0)}
}

// ForQueue returns the component a card in queue q is counted under.
// Day-learning and preview cards are counted as learning.
func (c Counts) ForQueue(q QueueType) int {
	switch q {
	case QueueNew:
		return c.New
	case QueueLearning, QueueDayLearn, QueuePreview:
		return c.Learning
	case QueueReview:
		return c.Review
	}
	return 0
}

func (c Counts) String() string {
	return fmt.Sprintf("%d+%d+%d", c.New, c.Learning, c.Review)
}
