package scheduler

import (
	"math/rand"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func testRevConf() domain.RevConfig {
	return domain.DefaultDeckConfig().Rev
}

func TestNextReviewInterval_OnTime(t *testing.T) {
	conf := testRevConf()
	st := ReviewState{Ivl: 10, Factor: 2500}

	assert.Equal(t, 12, NextReviewInterval(st, domain.GradeHard, conf, nil))
	assert.Equal(t, 25, NextReviewInterval(st, domain.GradeGood, conf, nil))
	assert.Equal(t, 32, NextReviewInterval(st, domain.GradeEasy, conf, nil))
}

func TestNextReviewInterval_LateAnswerCountsDelay(t *testing.T) {
	conf := testRevConf()
	st := ReviewState{Ivl: 10, Factor: 2500, DaysLate: 4}

	assert.Equal(t, 30, NextReviewInterval(st, domain.GradeGood, conf, nil), "good adds half the delay")
	assert.Equal(t, 45, NextReviewInterval(st, domain.GradeEasy, conf, nil), "easy adds the full delay")
}

func TestNextReviewInterval_EachGradeStrictlyLonger(t *testing.T) {
	conf := testRevConf()
	st := ReviewState{Ivl: 1, Factor: domain.MinFactor}

	hard := NextReviewInterval(st, domain.GradeHard, conf, nil)
	good := NextReviewInterval(st, domain.GradeGood, conf, nil)
	easy := NextReviewInterval(st, domain.GradeEasy, conf, nil)
	assert.Equal(t, 2, hard)
	assert.Equal(t, 3, good)
	assert.Equal(t, 4, easy)
}

func TestNextReviewInterval_MaxIvlCaps(t *testing.T) {
	conf := testRevConf()
	conf.MaxIvl = 20
	st := ReviewState{Ivl: 10, Factor: 2500}

	assert.Equal(t, 12, NextReviewInterval(st, domain.GradeHard, conf, nil))
	assert.Equal(t, 20, NextReviewInterval(st, domain.GradeGood, conf, nil))
	assert.Equal(t, 20, NextReviewInterval(st, domain.GradeEasy, conf, nil))
}

func TestNextReviewInterval_HardFactorBelowOneDropsFloor(t *testing.T) {
	conf := testRevConf()
	conf.HardFactor = 0.8
	st := ReviewState{Ivl: 10, Factor: 2500}
	assert.Equal(t, 8, NextReviewInterval(st, domain.GradeHard, conf, nil))
}

func TestNextReviewInterval_FuzzedStaysNearIdeal(t *testing.T) {
	conf := testRevConf()
	fuzz := NewFuzzer(rand.New(rand.NewSource(9)))
	st := ReviewState{Ivl: 40, Factor: 2500}
	for i := 0; i < 100; i++ {
		got := NextReviewInterval(st, domain.GradeGood, conf, fuzz)
		assert.GreaterOrEqual(t, got, 95)
		assert.LessOrEqual(t, got, 105)
	}
}

func TestConstrainedInterval_IntervalFactor(t *testing.T) {
	conf := testRevConf()
	conf.IvlFct = 0.5
	assert.Equal(t, 5, ConstrainedInterval(10, conf, 0, nil))
	assert.Equal(t, 8, ConstrainedInterval(10, conf, 7, nil), "never at or below prev")
	assert.Equal(t, 1, ConstrainedInterval(0, conf, -5, nil))
}

func TestEarlyReviewInterval(t *testing.T) {
	conf := testRevConf()
	assert.Equal(t, 6, EarlyReviewInterval(10, 2500, 5, domain.GradeHard, conf))
	assert.Equal(t, 12, EarlyReviewInterval(10, 2500, 5, domain.GradeGood, conf))
	assert.Equal(t, 14, EarlyReviewInterval(10, 2500, 5, domain.GradeEasy, conf))
}

func TestLapseInterval(t *testing.T) {
	conf := domain.DefaultDeckConfig().Lapse
	assert.Equal(t, 1, LapseInterval(10, conf), "default multiplier resets to minimum")

	conf.Mult = 0.5
	assert.Equal(t, 5, LapseInterval(10, conf))

	conf.MinInt = 7
	assert.Equal(t, 7, LapseInterval(10, conf))
}

func TestFactors(t *testing.T) {
	assert.Equal(t, 2350, AnsweredFactor(2500, domain.GradeHard))
	assert.Equal(t, 2500, AnsweredFactor(2500, domain.GradeGood))
	assert.Equal(t, 2650, AnsweredFactor(2500, domain.GradeEasy))
	assert.Equal(t, domain.MinFactor, AnsweredFactor(1350, domain.GradeHard))

	assert.Equal(t, 2300, LapsedFactor(2500))
	assert.Equal(t, domain.MinFactor, LapsedFactor(1400))
}

func TestGraduatingInterval(t *testing.T) {
	conf := domain.DefaultDeckConfig().New
	c := &domain.Card{Type: domain.CardLearning}
	assert.Equal(t, 1, GraduatingInterval(c, conf, false, nil))
	assert.Equal(t, 4, GraduatingInterval(c, conf, true, nil))

	relearn := &domain.Card{Type: domain.CardRelearning, Ivl: 7}
	assert.Equal(t, 7, GraduatingInterval(relearn, conf, true, nil))
}

func TestDaysLate(t *testing.T) {
	c := &domain.Card{Due: 10}
	assert.Equal(t, 5, DaysLate(c, 15))
	assert.Equal(t, 0, DaysLate(c, 8))

	c.ODid, c.ODue = 3, 14
	assert.Equal(t, 1, DaysLate(c, 15))
}
