package domain

import (
	"fmt"
	"strconv"
)

// QueueType is the queue a card currently sits in. The unit of Card.Due
// depends on it.
type QueueType int

const (
	QueueManuallyBuried QueueType = -3
	QueueSiblingBuried  QueueType = -2
	QueueSuspended      QueueType = -1
	QueueNew            QueueType = 0
	QueueLearning       QueueType = 1
	QueueReview         QueueType = 2
	QueueDayLearn       QueueType = 3
	QueuePreview        QueueType = 4
)

func (q QueueType) String() string {
	switch q {
	case QueueManuallyBuried:
		return "manually_buried"
	case QueueSiblingBuried:
		return "sibling_buried"
	case QueueSuspended:
		return "suspended"
	case QueueNew:
		return "new"
	case QueueLearning:
		return "learning"
	case QueueReview:
		return "review"
	case QueueDayLearn:
		return "day_learn"
	case QueuePreview:
		return "preview"
	default:
		return "queue(" + strconv.Itoa(int(q)) + ")"
	}
}

// IsBuried reports whether q is one of the buried queues.
func (q QueueType) IsBuried() bool {
	return q == QueueSiblingBuried || q == QueueManuallyBuried
}

// DueIsTimestamp reports whether cards in q carry an epoch-second due.
func (q QueueType) DueIsTimestamp() bool {
	return q == QueueLearning || q == QueuePreview
}

// CardType is the learning phase of a card, independent of the queue it is
// parked in.
type CardType int

const (
	CardNew        CardType = 0
	CardLearning   CardType = 1
	CardReview     CardType = 2
	CardRelearning CardType = 3
)

func (t CardType) String() string {
	switch t {
	case CardNew:
		return "new"
	case CardLearning:
		return "learning"
	case CardReview:
		return "review"
	case CardRelearning:
		return "relearning"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Grade is the answer button pressed by the user.
type Grade int

const (
	GradeAgain Grade = 1
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return "grade(" + strconv.Itoa(int(g)) + ")"
	}
}

// ParseGrade accepts either the button number ("1".."4") or its name.
func ParseGrade(s string) (Grade, error) {
	switch s {
	case "1", "again":
		return GradeAgain, nil
	case "2", "hard":
		return GradeHard, nil
	case "3", "good":
		return GradeGood, nil
	case "4", "easy":
		return GradeEasy, nil
	}
	return 0, fmt.Errorf("invalid grade %q: want 1-4 or again|hard|good|easy", s)
}

// RevlogType tags a review-log row with the phase the card was answered in.
type RevlogType int

const (
	RevlogLearn   RevlogType = 0
	RevlogReview  RevlogType = 1
	RevlogRelearn RevlogType = 2
	RevlogEarly   RevlogType = 3
)

func (t RevlogType) String() string {
	switch t {
	case RevlogLearn:
		return "learn"
	case RevlogReview:
		return "review"
	case RevlogRelearn:
		return "relearn"
	case RevlogEarly:
		return "early"
	default:
		return "revlog(" + strconv.Itoa(int(t)) + ")"
	}
}

type LeechAction int

const (
	LeechSuspend LeechAction = 0
	LeechTagOnly LeechAction = 1
)

// NewSpread controls how new cards are mixed with reviews.
type NewSpread string

const (
	NewSpreadDistribute NewSpread = "distribute"
	NewSpreadLast       NewSpread = "last"
	NewSpreadFirst      NewSpread = "first"
)

// DynOrder is the ordering used when a filtered deck pulls cards in.
type DynOrder int

const (
	DynOrderOldest DynOrder = iota
	DynOrderRandom
	DynOrderSmallestInterval
	DynOrderLargestInterval
	DynOrderMostLapses
	DynOrderAdded
	DynOrderDue
	DynOrderReverseAdded
	DynOrderDuePriority
)

var dynOrderNames = map[DynOrder]string{
	DynOrderOldest:           "oldest",
	DynOrderRandom:           "random",
	DynOrderSmallestInterval: "smallest_interval",
	DynOrderLargestInterval:  "largest_interval",
	DynOrderMostLapses:       "most_lapses",
	DynOrderAdded:            "added",
	DynOrderDue:              "due",
	DynOrderReverseAdded:     "reverse_added",
	DynOrderDuePriority:      "due_priority",
}

func (o DynOrder) String() string {
	if name, ok := dynOrderNames[o]; ok {
		return name
	}
	return "order(" + strconv.Itoa(int(o)) + ")"
}

// DynOrders lists every filtered-deck ordering in declaration order.
func DynOrders() []DynOrder {
	return []DynOrder{
		DynOrderOldest, DynOrderRandom, DynOrderSmallestInterval, DynOrderLargestInterval,
		DynOrderMostLapses, DynOrderAdded, DynOrderDue, DynOrderReverseAdded, DynOrderDuePriority,
	}
}

// ParseDynOrder resolves an ordering by name.
func ParseDynOrder(s string) (DynOrder, error) {
	for o, name := range dynOrderNames {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown filtered deck order %q", s)
}

// UnburyScope selects which buried cards an unbury restores.
type UnburyScope string

const (
	UnburyAll      UnburyScope = "all"
	UnburyManual   UnburyScope = "manual"
	UnburySiblings UnburyScope = "siblings"
)
