package domain

import "time"

// CollectionConf holds the collection-wide scheduling settings and the
// bookkeeping the scheduler persists between sessions.
type CollectionConf struct {
	// CreatedAt anchors day numbers: day 0 starts at CreatedAt's rollover.
	CreatedAt     time.Time
	RolloverHour  int
	CollapseTime  int
	DayLearnFirst bool
	NewSpread     NewSpread
	CurrentDeckID int64
	LastUnburied  int
	// NextPos is the due position handed to the next new card.
	NextPos int64
}

// DefaultCollectionConf returns settings for a collection created at now.
func DefaultCollectionConf(now time.Time) *CollectionConf {
	return &CollectionConf{
		CreatedAt:     now,
		RolloverHour:  4,
		CollapseTime:  1200,
		NewSpread:     NewSpreadDistribute,
		CurrentDeckID: DefaultDeckID,
		NextPos:       1,
	}
}
