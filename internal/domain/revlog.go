package domain

// ReviewLog is one answered card. ID is the answer time in epoch
// milliseconds. Intervals are in days when positive and in seconds when
// negative (learning steps).
type ReviewLog struct {
	ID      int64
	CardID  int64
	Ease    Grade
	Ivl     int
	LastIvl int
	Factor  int
	TimeMs  int
	Type    RevlogType
}

// RevlogTypeStat aggregates review-log rows of one type.
type RevlogTypeStat struct {
	Type      RevlogType
	Count     int
	AvgTimeMs float64
	PassRate  float64
}
