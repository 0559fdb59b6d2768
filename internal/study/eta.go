package study

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

// ETA estimates the minutes needed to work through counts, based on the
// answer times and pass rates of the last few days.
func (s *Scheduler) ETA(ctx context.Context, counts domain.Counts) (int, error) {
	since := s.now().Add(-scheduler.ETAWindowDays * 24 * time.Hour).UnixMilli()
	stats, err := s.stores.Revlog.StatsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("loading review statistics: %w", err)
	}
	return scheduler.EstimateMinutes(counts, scheduler.ETARatesFromStats(stats)), nil
}
