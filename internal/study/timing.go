package study

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
)

const secondsPerDay = 86400

// dayCutoffAt returns the first rollover boundary strictly after now, in
// now's location.
func dayCutoffAt(now time.Time, rolloverHour int) time.Time {
	cut := time.Date(now.Year(), now.Month(), now.Day(), rolloverHour, 0, 0, 0, now.Location())
	if !now.Before(cut) {
		cut = cut.AddDate(0, 0, 1)
	}
	return cut
}

// daysSince counts study days between the one containing created and the
// one containing now.
func daysSince(created, now time.Time, rolloverHour int) int {
	first := dayCutoffAt(created.In(now.Location()), rolloverHour)
	current := dayCutoffAt(now, rolloverHour)
	return int(math.Round(current.Sub(first).Hours() / 24))
}

// updateCutoff recomputes today and the day cutoff. Cards buried on an
// earlier day are unburied the first time a new day is seen.
func (s *Scheduler) updateCutoff(ctx context.Context) error {
	now := s.now()
	previous := s.today
	s.today = daysSince(s.col.CreatedAt, now, s.col.RolloverHour)
	s.dayCutoff = dayCutoffAt(now, s.col.RolloverHour).Unix()
	if previous != s.today {
		s.logger.Debug("study day changed", "today", s.today, "cutoff", s.DayCutoff())
	}

	if s.col.LastUnburied >= s.today {
		return nil
	}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		if _, err := s.unburyMatching(ctx, st, buriedQueues(), nil); err != nil {
			return err
		}
		col, err := st.Collection.Get(ctx)
		if err != nil {
			return fmt.Errorf("loading collection: %w", err)
		}
		col.LastUnburied = s.today
		return st.Collection.Upsert(ctx, col)
	})
	if err != nil {
		return fmt.Errorf("unburying for day %d: %w", s.today, err)
	}
	s.col.LastUnburied = s.today
	return nil
}

// checkDay resets the session once the day cutoff is reached.
func (s *Scheduler) checkDay(ctx context.Context) error {
	if s.now().Unix() >= s.dayCutoff {
		return s.Reset(ctx)
	}
	return nil
}

func (s *Scheduler) updateLrnCutoff(force bool) bool {
	next := s.now().Unix() + int64(s.col.CollapseTime)
	if next-s.lrnCutoff > 60 || force {
		s.lrnCutoff = next
		return true
	}
	return false
}
