package domain

// DefaultConfigID is the options group shared by decks that were not given
// their own.
const DefaultConfigID int64 = 1

// NewConfig governs cards that have never been answered.
type NewConfig struct {
	// Delays are learning steps in minutes.
	Delays []float64 `validate:"dive,gt=0"`
	// Ints holds the graduating interval and the easy interval in days.
	Ints          [2]int `validate:"dive,min=1"`
	InitialFactor int    `validate:"min=1300"`
	PerDay        int    `validate:"min=0"`
	Bury          bool
}

// LapseConfig governs review cards answered Again.
type LapseConfig struct {
	Delays      []float64 `validate:"dive,gt=0"`
	Mult        float64   `validate:"min=0,max=1"`
	MinInt      int       `validate:"min=1"`
	LeechFails  int       `validate:"min=0"`
	LeechAction LeechAction
}

// RevConfig governs cards in the review phase.
type RevConfig struct {
	PerDay     int     `validate:"min=0"`
	Ease4      float64 `validate:"min=1"`
	IvlFct     float64 `validate:"gt=0"`
	MaxIvl     int     `validate:"min=1"`
	HardFactor float64 `validate:"gt=0"`
	Bury       bool
}

type DeckConfig struct {
	ID    int64
	Name  string `validate:"required"`
	New   NewConfig
	Lapse LapseConfig
	Rev   RevConfig
}

// DefaultDeckConfig mirrors the stock options group of a new collection.
func DefaultDeckConfig() *DeckConfig {
	return &DeckConfig{
		ID:   DefaultConfigID,
		Name: "Default",
		New: NewConfig{
			Delays:        []float64{1, 10},
			Ints:          [2]int{1, 4},
			InitialFactor: StartingFactor,
			PerDay:        20,
			Bury:          true,
		},
		Lapse: LapseConfig{
			Delays:      []float64{10},
			Mult:        0,
			MinInt:      1,
			LeechFails:  8,
			LeechAction: LeechTagOnly,
		},
		Rev: RevConfig{
			PerDay:     200,
			Ease4:      1.3,
			IvlFct:     1,
			MaxIvl:     36500,
			HardFactor: 1.2,
			Bury:       true,
		},
	}
}

// Clone returns a deep copy.
func (c *DeckConfig) Clone() *DeckConfig {
	cp := *c
	cp.New.Delays = append([]float64(nil), c.New.Delays...)
	cp.Lapse.Delays = append([]float64(nil), c.Lapse.Delays...)
	return &cp
}
