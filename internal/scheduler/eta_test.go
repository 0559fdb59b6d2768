package scheduler

import (
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestETARatesFromStats_Defaults(t *testing.T) {
	r := ETARatesFromStats(nil)
	assert.Equal(t, ETARates{
		NewRate: 1, NewTime: 20000,
		RevRate: 1, RevTime: 20000,
		RelearnRate: 1, RelearnTime: 20000,
	}, r)
}

func TestETARatesFromStats_WeightsMergedBuckets(t *testing.T) {
	r := ETARatesFromStats([]domain.RevlogTypeStat{
		{Type: domain.RevlogReview, Count: 10, AvgTimeMs: 4000, PassRate: 0.5},
		{Type: domain.RevlogEarly, Count: 10, AvgTimeMs: 8000, PassRate: 1},
		{Type: domain.RevlogRelearn, Count: 2, AvgTimeMs: 9000, PassRate: 0.25},
	})
	assert.InDelta(t, 0.75, r.RevRate, 1e-9)
	assert.InDelta(t, 6000, r.RevTime, 1e-9)
	assert.InDelta(t, 0.25, r.RelearnRate, 1e-9)
	assert.Equal(t, 1.0, r.NewRate)
}

func TestEstimateMinutes_FreshCollection(t *testing.T) {
	got := EstimateMinutes(domain.Counts{New: 3, Learning: 2, Review: 5}, ETARatesFromStats(nil))
	assert.Equal(t, 4, got, "10 reps plus one relearn per new card, 20s each")
}

func TestEstimateMinutes_PredictsRelearns(t *testing.T) {
	r := ETARates{
		NewRate: 1, NewTime: 20000,
		RevRate: 0.5, RevTime: 10000,
		RelearnRate: 0.5, RelearnTime: 10000,
	}
	// 10 reviews = 100s; 5 predicted failures relearn, 2 of those fail,
	// then 1: 8 extra reps = 80s.
	assert.Equal(t, 3, EstimateMinutes(domain.Counts{Review: 10}, r))
}

func TestETARatesFromStats_ZeroPassHistoryIsKept(t *testing.T) {
	r := ETARatesFromStats([]domain.RevlogTypeStat{
		{Type: domain.RevlogReview, Count: 50, AvgTimeMs: 10000, PassRate: 0},
	})
	assert.Equal(t, 0.0, r.RevRate)
	assert.Equal(t, 10000.0, r.RevTime)
	assert.Equal(t, 1.0, r.RelearnRate, "no relearn history")
	assert.Equal(t, 20000.0, r.RelearnTime)
}

func TestEstimateMinutes_FailingHistoryPredictsRelearns(t *testing.T) {
	r := ETARatesFromStats([]domain.RevlogTypeStat{
		{Type: domain.RevlogReview, Count: 50, AvgTimeMs: 10000, PassRate: 0},
	})
	// 10 reviews = 100s and every one fails once: 10 relearns at 20s = 200s.
	assert.Equal(t, 5, EstimateMinutes(domain.Counts{Review: 10}, r))
}

func TestEstimateMinutes_NewCardsCountOneRelearn(t *testing.T) {
	r := ETARatesFromStats(nil)
	// 6 new reps and 6 predicted relearns at 20s.
	assert.Equal(t, 4, EstimateMinutes(domain.Counts{New: 6}, r))
}

func TestEstimateMinutes_ZeroCounts(t *testing.T) {
	assert.Equal(t, 0, EstimateMinutes(domain.Counts{}, ETARatesFromStats(nil)))
}
