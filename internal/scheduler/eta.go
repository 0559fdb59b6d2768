package scheduler

import (
	"math"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// ETAWindowDays is how much review history feeds the time estimate.
const ETAWindowDays = 10

const (
	defaultRepTimeMs = 20000
	minRelearnRate   = 0.05
)

// ETARates holds per-bucket average answer times (ms) and pass rates.
type ETARates struct {
	NewRate, NewTime         float64
	RevRate, RevTime         float64
	RelearnRate, RelearnTime float64
}

// ETARatesFromStats folds grouped review-log statistics into the three
// estimation buckets. Buckets without history get a 20s rep and a 100% pass
// rate; a bucket with history keeps its rate even when it is 0.
func ETARatesFromStats(stats []domain.RevlogTypeStat) ETARates {
	type acc struct{ n, time, pass float64 }
	var newB, revB, relB acc
	for _, s := range stats {
		n := float64(s.Count)
		var b *acc
		switch s.Type {
		case domain.RevlogLearn:
			b = &newB
		case domain.RevlogReview, domain.RevlogEarly:
			b = &revB
		case domain.RevlogRelearn:
			b = &relB
		default:
			continue
		}
		b.n += n
		b.time += s.AvgTimeMs * n
		b.pass += s.PassRate * n
	}
	avg := func(b acc) (rate, tm float64) {
		if b.n == 0 {
			return 1, defaultRepTimeMs
		}
		rate, tm = b.pass/b.n, b.time/b.n
		if tm == 0 {
			tm = defaultRepTimeMs
		}
		return rate, tm
	}
	var r ETARates
	r.NewRate, r.NewTime = avg(newB)
	r.RevRate, r.RevTime = avg(revB)
	r.RelearnRate, r.RelearnTime = avg(relB)
	return r
}

// EstimateMinutes projects how long clearing counts will take, including
// the relearning reps that predicted failures will generate. Every new card
// is assumed to produce one relearning rep.
func EstimateMinutes(c domain.Counts, r ETARates) int {
	newTotal := r.NewTime * float64(c.New)
	relearnTotal := r.RelearnTime * float64(c.Learning)
	revTotal := r.RevTime * float64(c.Review)

	toRelearn := c.New
	toRelearn += int(math.Ceil((1 - r.RelearnRate) * float64(c.Learning)))
	toRelearn += int(math.Ceil((1 - r.RevRate) * float64(c.Review)))

	relearnRate := math.Max(r.RelearnRate, minRelearnRate)
	futureReps := toRelearn
	for toRelearn > 1 {
		// Truncation makes the failures shrink every round.
		failures := int((1 - relearnRate) * float64(toRelearn))
		futureReps += failures
		toRelearn = failures
	}
	futureTotal := r.RelearnTime * float64(futureReps)

	return int(math.Round((newTotal + relearnTotal + revTotal + futureTotal) / 60000))
}
