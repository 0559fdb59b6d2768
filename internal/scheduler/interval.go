package scheduler

import (
	"math"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// DefaultHardFactor applies when a config leaves RevConfig.HardFactor unset.
const DefaultHardFactor = 1.2

// ReviewState is the part of a review card the interval policy reads.
type ReviewState struct {
	Ivl      int
	Factor   int
	DaysLate int
}

// DaysLate returns how many days past its due day a review card is being
// answered. For filtered cards the original due applies.
func DaysLate(c *domain.Card, today int) int {
	due := c.Due
	if c.ODid != 0 {
		due = c.ODue
	}
	return max(0, today-int(due))
}

// ConstrainedInterval scales ivl by the deck's interval factor, optionally
// fuzzes it, and keeps it above prev and within [1, MaxIvl].
func ConstrainedInterval(ivl float64, conf domain.RevConfig, prev float64, fuzz Fuzzer) int {
	ivlFct := conf.IvlFct
	if ivlFct == 0 {
		ivlFct = 1
	}
	newIvl := int(ivl * ivlFct)
	if fuzz != nil {
		newIvl = fuzz(newIvl)
	}
	newIvl = int(math.Max(math.Max(float64(newIvl), prev+1), 1))
	if conf.MaxIvl > 0 {
		newIvl = min(newIvl, conf.MaxIvl)
	}
	return newIvl
}

func hardFactor(conf domain.RevConfig) float64 {
	if conf.HardFactor == 0 {
		return DefaultHardFactor
	}
	return conf.HardFactor
}

// NextReviewInterval computes the interval in days for a passing grade on a
// review card. Each grade's interval is at least one day longer than the
// next lower grade's.
func NextReviewInterval(st ReviewState, grade domain.Grade, conf domain.RevConfig, fuzz Fuzzer) int {
	fct := float64(st.Factor) / 1000
	hf := hardFactor(conf)
	hardMin := 0.0
	if hf > 1 {
		hardMin = float64(st.Ivl)
	}
	ivl2 := ConstrainedInterval(float64(st.Ivl)*hf, conf, hardMin, fuzz)
	if grade == domain.GradeHard {
		return ivl2
	}
	ivl3 := ConstrainedInterval(float64(st.Ivl+st.DaysLate/2)*fct, conf, float64(ivl2), fuzz)
	if grade == domain.GradeGood {
		return ivl3
	}
	return ConstrainedInterval(float64(st.Ivl+st.DaysLate)*fct*conf.Ease4, conf, float64(ivl3), fuzz)
}

// EarlyReviewInterval computes the interval for a review card answered
// before its due day from a filtered deck. daysEarly is how many days ahead
// of the original due the answer happens. Never fuzzed.
func EarlyReviewInterval(ivl, factor, daysEarly int, grade domain.Grade, conf domain.RevConfig) int {
	elapsed := float64(ivl - daysEarly)
	easyBonus := 1.0
	minNewIvl := 1.0
	var fct float64
	switch grade {
	case domain.GradeHard:
		fct = hardFactor(conf)
		minNewIvl = fct / 2
	case domain.GradeGood:
		fct = float64(factor) / 1000
	default:
		fct = float64(factor) / 1000
		easyBonus = conf.Ease4 - (conf.Ease4-1)/2
	}
	next := math.Max(elapsed*fct, 1)
	next = math.Max(float64(ivl)*minNewIvl, next) * easyBonus
	return ConstrainedInterval(next, conf, 0, nil)
}

// LapseInterval is the review interval a card keeps after being forgotten.
func LapseInterval(ivl int, conf domain.LapseConfig) int {
	return max(1, conf.MinInt, int(float64(ivl)*conf.Mult))
}

// LapsedFactor lowers an ease factor after a lapse.
func LapsedFactor(factor int) int {
	return max(domain.MinFactor, factor-200)
}

// AnsweredFactor adjusts an ease factor after a passing review grade.
func AnsweredFactor(factor int, grade domain.Grade) int {
	switch grade {
	case domain.GradeHard:
		factor -= 150
	case domain.GradeEasy:
		factor += 150
	}
	return max(domain.MinFactor, factor)
}

// GraduatingInterval is the first review interval of a card leaving
// learning. Relearning cards keep their current interval.
func GraduatingInterval(c *domain.Card, conf domain.NewConfig, early bool, fuzz Fuzzer) int {
	if c.Type == domain.CardReview || c.Type == domain.CardRelearning {
		return c.Ivl
	}
	ideal := conf.Ints[0]
	if early {
		ideal = conf.Ints[1]
	}
	if fuzz != nil {
		return fuzz(ideal)
	}
	return ideal
}
