package study

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
)

// Finished describes what is still held back once a session runs out of
// cards.
type Finished struct {
	// MoreReviews is set when due reviews were cut off by the daily limit.
	MoreReviews bool
	// MoreNew is set when new cards were cut off by the daily limit.
	MoreNew       bool
	HaveBuried    bool
	HaveSuspended bool
	// NextLearning is when the next learning card becomes due today, or
	// the zero time.
	NextLearning time.Time
}

// Finished inspects the current deck after GetCard returned ErrNoCard.
func (s *Scheduler) Finished(ctx context.Context) (*Finished, error) {
	if err := s.ensureQueues(ctx); err != nil {
		return nil, err
	}
	exists := func(q repository.CardQuery) (bool, error) {
		q.DeckIDs = s.active
		q.Limit = 1
		n, err := s.stores.Cards.Count(ctx, q)
		return n > 0, err
	}

	var f Finished
	var err error
	if f.MoreReviews, err = exists(repository.CardQuery{
		Queues:    []domain.QueueType{domain.QueueReview},
		DueAtMost: repository.Int64(int64(s.today)),
	}); err != nil {
		return nil, fmt.Errorf("checking reviews: %w", err)
	}
	if f.MoreNew, err = exists(repository.CardQuery{Queues: []domain.QueueType{domain.QueueNew}}); err != nil {
		return nil, fmt.Errorf("checking new cards: %w", err)
	}
	if f.HaveBuried, err = exists(repository.CardQuery{Queues: buriedQueues()}); err != nil {
		return nil, fmt.Errorf("checking buried cards: %w", err)
	}
	if f.HaveSuspended, err = exists(repository.CardQuery{Queues: []domain.QueueType{domain.QueueSuspended}}); err != nil {
		return nil, fmt.Errorf("checking suspended cards: %w", err)
	}

	next, err := s.stores.Cards.QueryDue(ctx, repository.CardQuery{
		DeckIDs:   s.active,
		Queues:    []domain.QueueType{domain.QueueLearning, domain.QueuePreview},
		DueBefore: repository.Int64(s.dayCutoff),
		Order:     repository.OrderDue,
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("checking learning cards: %w", err)
	}
	if len(next) > 0 {
		f.NextLearning = time.Unix(next[0].Due, 0)
	}
	return &f, nil
}

// Message renders the end-of-session text.
func (f *Finished) Message(now time.Time) string {
	var b strings.Builder
	b.WriteString("Congratulations! You have finished this deck for now.")
	if !f.NextLearning.IsZero() {
		wait := max(f.NextLearning.Sub(now).Round(time.Minute), time.Minute)
		fmt.Fprintf(&b, "\nThe next learning card will be ready in %s.", formatWait(wait))
	}
	if f.MoreReviews {
		b.WriteString("\nToday's review limit has been reached, but there are still cards waiting to be reviewed.")
	}
	if f.MoreNew {
		b.WriteString("\nThere are more new cards available, but the daily limit has been reached.")
	}
	if f.HaveBuried {
		b.WriteString("\nSome related or buried cards were delayed until a later session.")
	}
	if f.HaveSuspended {
		b.WriteString("\nSome cards are suspended.")
	}
	return b.String()
}

func formatWait(d time.Duration) string {
	switch {
	case d <= time.Minute:
		return "1 minute"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}
