package study

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

// maxAnswerTime caps the time recorded for one answer.
const maxAnswerTime = 60 * time.Second

var (
	allGrades     = []domain.Grade{domain.GradeAgain, domain.GradeHard, domain.GradeGood, domain.GradeEasy}
	learnGrades   = []domain.Grade{domain.GradeAgain, domain.GradeGood, domain.GradeEasy}
	previewGrades = []domain.Grade{domain.GradeAgain, domain.GradeGood}
)

// answer carries one answer through its unit of work. Anything that touches
// in-memory queues or counts is deferred to post, which only runs once the
// transaction has committed.
type answer struct {
	st    Stores
	card  *domain.Card
	prev  *domain.Card
	grade domain.Grade
	took  time.Duration
	now   time.Time

	deck *domain.Deck
	conf *domain.DeckConfig

	logType domain.RevlogType
	logIvl  int
	lastIvl int

	newDelta, lrnDelta, revDelta int

	buried bool
	post   []func()
}

func (a *answer) after(fn func()) {
	a.post = append(a.post, fn)
}

// cardContext loads the deck a card sits in and the options group that
// governs it. Filtered cards are governed by their home deck's options.
func (s *Scheduler) cardContext(ctx context.Context, st Stores, c *domain.Card) (*domain.Deck, *domain.DeckConfig, error) {
	deck, err := st.Decks.GetByID(ctx, c.DeckID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading deck of card %d: %w", c.ID, err)
	}
	home := deck
	if c.ODid != 0 {
		home, err = st.Decks.GetByID(ctx, c.ODid)
		if err != nil {
			return nil, nil, fmt.Errorf("loading home deck of card %d: %w", c.ID, err)
		}
	}
	conf, err := st.Decks.ConfigForDeck(ctx, home)
	if err != nil {
		return nil, nil, fmt.Errorf("loading options of %q: %w", home.Name, err)
	}
	return deck, conf, nil
}

func unscheduled(deck *domain.Deck) bool {
	return deck.Dyn && !deck.Resched
}

// AllowedGrades lists the grades the card may be answered with.
func (s *Scheduler) AllowedGrades(ctx context.Context, c *domain.Card) ([]domain.Grade, error) {
	if c.ODid != 0 {
		deck, err := s.stores.Decks.GetByID(ctx, c.DeckID)
		if err != nil {
			return nil, fmt.Errorf("loading deck of card %d: %w", c.ID, err)
		}
		if unscheduled(deck) {
			return previewGrades, nil
		}
	}
	if !s.variant.ThreeButtonLearning {
		return allGrades, nil
	}
	if c.Queue == domain.QueueReview || (c.Queue == domain.QueueNew && c.Type == domain.CardReview) {
		return allGrades, nil
	}
	return learnGrades, nil
}

// AnswerButtons is the number of grades the card offers.
func (s *Scheduler) AnswerButtons(ctx context.Context, c *domain.Card) (int, error) {
	grades, err := s.AllowedGrades(ctx, c)
	if err != nil {
		return 0, err
	}
	return len(grades), nil
}

func answerable(q domain.QueueType) bool {
	switch q {
	case domain.QueueNew, domain.QueueLearning, domain.QueueReview, domain.QueueDayLearn, domain.QueuePreview:
		return true
	}
	return false
}

// AnswerCard grades a card and reschedules it. The card, its review log
// row, buried siblings and deck counters are written in one unit of work;
// on failure nothing is written and the session state is unchanged. On
// success c holds the new state.
func (s *Scheduler) AnswerCard(ctx context.Context, c *domain.Card, grade domain.Grade, took time.Duration) error {
	if err := s.ensureQueues(ctx); err != nil {
		return err
	}
	if !answerable(c.Queue) {
		return fmt.Errorf("answering card %d from %s queue: %w", c.ID, c.Queue, ErrInvalidQueueTransition)
	}
	grades, err := s.AllowedGrades(ctx, c)
	if err != nil {
		return err
	}
	if !slices.Contains(grades, grade) {
		return fmt.Errorf("answering card %d with %s: %w", c.ID, grade, ErrInvalidQueueTransition)
	}

	a := &answer{
		card:  c.Clone(),
		prev:  c.Clone(),
		grade: grade,
		took:  min(max(took, 0), maxAnswerTime),
		now:   s.now(),
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		a.st = StoresFor(tx)
		return s.applyAnswer(ctx, a)
	})
	if err != nil {
		return fmt.Errorf("answering card %d: %w", c.ID, err)
	}

	s.finishAnswer(ctx, a)
	*c = *a.card
	s.logger.Debug("card answered",
		"card_id", c.ID, "grade", grade.String(), "queue", c.Queue.String(), "due", c.Due, "ivl", c.Ivl)
	return nil
}

func (s *Scheduler) applyAnswer(ctx context.Context, a *answer) error {
	var err error
	a.deck, a.conf, err = s.cardContext(ctx, a.st, a.card)
	if err != nil {
		return err
	}
	if err := s.burySiblings(ctx, a); err != nil {
		return err
	}

	switch {
	case unscheduled(a.deck) && s.variant.PreviewQueue:
		s.answerPreview(a)
	case unscheduled(a.deck):
		s.answerUnscheduled(a)
	default:
		if err := s.answerScheduled(ctx, a); err != nil {
			return err
		}
	}

	c := a.card
	c.Mod = a.now
	if err := a.st.Cards.Update(ctx, c); err != nil {
		return err
	}
	entry := &domain.ReviewLog{
		ID:      a.now.UnixMilli(),
		CardID:  c.ID,
		Ease:    a.grade,
		Ivl:     a.logIvl,
		LastIvl: a.lastIvl,
		Factor:  c.Factor,
		TimeMs:  int(a.took.Milliseconds()),
		Type:    a.logType,
	}
	if err := a.st.Revlog.Append(ctx, entry); err != nil {
		return fmt.Errorf("logging answer: %w", err)
	}
	return s.updateStats(ctx, a)
}

// finishAnswer brings the in-memory session in line with a committed
// answer.
func (s *Scheduler) finishAnswer(ctx context.Context, a *answer) {
	if s.removeFromQueues(a.prev.ID) {
		s.decrementCounts(a.prev)
	}
	for _, fn := range a.post {
		fn()
	}
	if !a.buried {
		return
	}
	if err := s.resetNewCount(ctx); err != nil {
		s.logger.Warn("recounting after sibling burial", "error", err)
		s.invalidate()
		return
	}
	if err := s.resetRevCount(ctx); err != nil {
		s.logger.Warn("recounting after sibling burial", "error", err)
		s.invalidate()
	}
}

func (s *Scheduler) answerScheduled(ctx context.Context, a *answer) error {
	c := a.card
	early := c.ODid != 0 && c.ODue > int64(s.today)
	c.Reps++

	switch {
	case c.Queue == domain.QueueNew && c.Type == domain.CardReview:
		// A review card pulled into a filtered deck before it was due.
		a.revDelta++
		if err := s.answerRev(ctx, a, early); err != nil {
			return err
		}
	case c.Queue == domain.QueueNew:
		c.Queue = domain.QueueLearning
		c.Type = domain.CardLearning
		c.Left = s.startingLeft(c, a.conf, a.now)
		a.newDelta++
		s.answerLrn(a)
	case c.Queue == domain.QueueLearning || c.Queue == domain.QueueDayLearn:
		a.lrnDelta++
		s.answerLrn(a)
	case c.Queue == domain.QueueReview:
		a.revDelta++
		if err := s.answerRev(ctx, a, early); err != nil {
			return err
		}
	default:
		return fmt.Errorf("card %d in %s queue: %w", c.ID, c.Queue, ErrInvalidQueueTransition)
	}

	// Cards still parked in a filtered deck drop their home due once
	// answered. Outside filtered decks ODue holds the relearning stash.
	if c.ODid != 0 && c.ODue > 0 {
		c.ODue = 0
	}
	return nil
}

// Learning.

func lrnDelays(c *domain.Card, conf *domain.DeckConfig) []float64 {
	if c.Type == domain.CardReview || c.Type == domain.CardRelearning {
		return conf.Lapse.Delays
	}
	return conf.New.Delays
}

func (s *Scheduler) startingLeft(c *domain.Card, conf *domain.DeckConfig, now time.Time) int {
	return scheduler.StartingLeft(lrnDelays(c, conf), now.Unix(), s.dayCutoff)
}

func (s *Scheduler) answerLrn(a *answer) {
	c := a.card
	delays := lrnDelays(c, a.conf)
	a.logType = domain.RevlogLearn
	if c.Type == domain.CardReview || c.Type == domain.CardRelearning {
		a.logType = domain.RevlogRelearn
	}
	lastLeft := c.Left

	leaving := false
	switch a.grade {
	case domain.GradeEasy:
		s.rescheduleAsRev(a, true)
		leaving = true
	case domain.GradeGood:
		if c.StepsLeft()-1 <= 0 {
			s.rescheduleAsRev(a, false)
			leaving = true
		} else {
			s.moveToNextStep(a, delays)
		}
	case domain.GradeHard:
		s.rescheduleLrn(a, scheduler.DelayForRepeatingGrade(delays, c.Left))
	default:
		s.moveToFirstStep(a, delays)
	}

	a.lastIvl = -scheduler.DelayForGrade(delays, lastLeft)
	switch {
	case leaving:
		a.logIvl = c.Ivl
	case a.grade == domain.GradeHard:
		a.logIvl = -scheduler.DelayForRepeatingGrade(delays, c.Left)
	default:
		a.logIvl = -scheduler.DelayForGrade(delays, c.Left)
	}
}

// moveToFirstStep restarts the steps. Relearning cards also take the lapse
// interval. Returns the delay in seconds.
func (s *Scheduler) moveToFirstStep(a *answer, delays []float64) int {
	c := a.card
	c.Left = s.startingLeft(c, a.conf, a.now)
	if c.Type == domain.CardRelearning {
		c.Ivl = scheduler.LapseInterval(c.Ivl, a.conf.Lapse)
	}
	return s.rescheduleLrn(a, scheduler.DelayForGrade(delays, c.Left))
}

func (s *Scheduler) moveToNextStep(a *answer, delays []float64) {
	c := a.card
	left := c.StepsLeft() - 1
	today := scheduler.StepsFittingToday(delays, left, a.now.Unix(), s.dayCutoff)
	c.Left = domain.PackLeft(today, left)
	s.rescheduleLrn(a, scheduler.DelayForGrade(delays, c.Left))
}

// rescheduleLrn schedules the next learning step delay seconds from now.
// Steps that end past the day cutoff move to the day-learning queue.
func (s *Scheduler) rescheduleLrn(a *answer, delay int) int {
	c := a.card
	now := a.now.Unix()
	due := now + int64(delay)
	if due >= s.dayCutoff {
		ahead := (due-s.dayCutoff)/secondsPerDay + 1
		c.Due = int64(s.today) + ahead
		c.Queue = domain.QueueDayLearn
		return delay
	}

	due = min(s.dayCutoff-1, due+int64(scheduler.LearningFuzz(s.rng, delay)))
	c.Queue = domain.QueueLearning
	if due < now+int64(s.col.CollapseTime) {
		// Nothing else to show: keep the card from coming straight back
		// ahead of the learning queue.
		if first, ok := s.lrnQueue.PeekFirstDue(); ok && s.revCount == 0 && s.newCount == 0 {
			due = max(due, first+1)
		}
		id, queued := c.ID, due
		a.after(func() {
			s.lrnQueue.Push(scheduler.QueueEntry{ID: id, Due: queued})
			if s.variant.LearnCountBySteps {
				s.lrnCount += a.card.StepsLeftToday()
			} else {
				s.lrnCount++
			}
		})
	}
	c.Due = due
	return delay
}

func graduatingIvl(c *domain.Card, conf *domain.DeckConfig, early bool, fuzz scheduler.Fuzzer) int {
	if c.Type == domain.CardReview || c.Type == domain.CardRelearning {
		if early {
			return c.Ivl + 1
		}
		return c.Ivl
	}
	return scheduler.GraduatingInterval(c, conf.New, early, fuzz)
}

// rescheduleAsRev graduates a card out of (re)learning.
func (s *Scheduler) rescheduleAsRev(a *answer, early bool) {
	c := a.card
	relearning := c.Type == domain.CardReview || c.Type == domain.CardRelearning
	c.Ivl = graduatingIvl(c, a.conf, early, s.fuzzer())
	if !relearning {
		c.Factor = a.conf.New.InitialFactor
		if c.Factor == 0 {
			c.Factor = domain.StartingFactor
		}
	}
	c.Due = int64(s.today + s.graduationDays(c, c.Ivl))
	if c.ODid == 0 {
		c.ODue = 0
	}
	c.Type = domain.CardReview
	c.Queue = domain.QueueReview
	removeFromFiltered(c)
}

// graduationDays is how many days from today a card leaving (re)learning
// with interval ivl becomes due. A relearning card outside filtered decks
// returns to the review day stashed when it lapsed, but never before
// tomorrow.
func (s *Scheduler) graduationDays(c *domain.Card, ivl int) int {
	if c.Type == domain.CardRelearning && c.ODid == 0 && c.ODue != 0 {
		return max(1, int(c.ODue)-s.today)
	}
	return ivl
}

// removeFromFiltered sends a card back to its home deck. Its schedule is
// left as is.
func removeFromFiltered(c *domain.Card) {
	if c.ODid == 0 {
		return
	}
	c.DeckID = c.ODid
	c.ODid = 0
	c.ODue = 0
}

// Reviews.

func (s *Scheduler) answerRev(ctx context.Context, a *answer, early bool) error {
	c := a.card
	a.logType = domain.RevlogReview
	if early {
		a.logType = domain.RevlogEarly
	}
	a.lastIvl = c.Ivl

	if a.grade == domain.GradeAgain {
		delay, err := s.rescheduleLapse(ctx, a)
		if err != nil {
			return err
		}
		if delay != 0 {
			a.logIvl = -delay
		} else {
			a.logIvl = c.Ivl
		}
		return nil
	}
	s.rescheduleRev(a, early)
	a.logIvl = c.Ivl
	return nil
}

// rescheduleLapse handles a forgotten review card. With relearning steps the
// card goes back to learning; otherwise it keeps the lapse interval as a
// review card. Returns the relearning delay in seconds, or 0.
func (s *Scheduler) rescheduleLapse(ctx context.Context, a *answer) (int, error) {
	c := a.card
	c.Lapses++
	c.Factor = scheduler.LapsedFactor(c.Factor)

	leech, err := s.checkLeech(ctx, a)
	if err != nil {
		return 0, err
	}
	suspended := leech && c.Queue == domain.QueueSuspended

	if len(a.conf.Lapse.Delays) > 0 && !suspended {
		c.Type = domain.CardRelearning
		delay := s.moveToFirstStep(a, a.conf.Lapse.Delays)
		if c.ODue == 0 {
			c.ODue = int64(s.today + c.Ivl)
		}
		return delay, nil
	}
	c.Ivl = scheduler.LapseInterval(c.Ivl, a.conf.Lapse)
	s.rescheduleAsRev(a, false)
	if suspended {
		c.Queue = domain.QueueSuspended
	}
	return 0, nil
}

func (s *Scheduler) rescheduleRev(a *answer, early bool) {
	c := a.card
	if early {
		c.Ivl = scheduler.EarlyReviewInterval(c.Ivl, c.Factor, int(c.ODue)-s.today, a.grade, a.conf.Rev)
	} else {
		st := scheduler.ReviewState{Ivl: c.Ivl, Factor: c.Factor, DaysLate: scheduler.DaysLate(c, s.today)}
		c.Ivl = scheduler.NextReviewInterval(st, a.grade, a.conf.Rev, s.fuzzer())
	}
	c.Factor = scheduler.AnsweredFactor(c.Factor, a.grade)
	c.Due = int64(s.today + c.Ivl)
	c.Type = domain.CardReview
	c.Queue = domain.QueueReview
	removeFromFiltered(c)
}

// checkLeech tags the note of a card that just crossed the leech threshold
// and suspends the card if the options say so.
func (s *Scheduler) checkLeech(ctx context.Context, a *answer) (bool, error) {
	c := a.card
	if !scheduler.IsLeechLapse(c.Lapses, a.conf.Lapse.LeechFails) {
		return false, nil
	}
	note, err := a.st.Notes.GetByID(ctx, c.NoteID)
	if err != nil {
		return false, fmt.Errorf("loading note of leech %d: %w", c.ID, err)
	}
	if note.AddTag(domain.LeechTag) {
		note.Mod = a.now
		if err := a.st.Notes.Update(ctx, note); err != nil {
			return false, fmt.Errorf("tagging leech: %w", err)
		}
	}
	if a.conf.Lapse.LeechAction == domain.LeechSuspend {
		c.Queue = domain.QueueSuspended
	}
	s.logger.Info("card is a leech", "card_id", c.ID, "note_id", c.NoteID, "lapses", c.Lapses)
	return true, nil
}

// Filtered decks that do not reschedule.

// answerPreview: Again shows the card again after the deck's preview delay,
// anything else returns it home untouched.
func (s *Scheduler) answerPreview(a *answer) {
	c := a.card
	c.Reps++
	a.logType = domain.RevlogEarly
	a.lastIvl = c.Ivl

	if a.grade != domain.GradeAgain {
		c.Due = c.ODue
		restoreQueue(c)
		removeFromFiltered(c)
		a.logIvl = c.Ivl
		return
	}

	delay := a.deck.PreviewDelay * 60
	c.Queue = domain.QueuePreview
	c.Due = a.now.Unix() + int64(delay)
	a.logIvl = -delay
	if c.Due < a.now.Unix()+int64(s.col.CollapseTime) {
		id, due := c.ID, c.Due
		a.after(func() {
			s.lrnQueue.Push(scheduler.QueueEntry{ID: id, Due: due})
			s.lrnCount++
		})
	}
}

// answerUnscheduled parks the card in review until tomorrow. Its real
// schedule and home deck stay untouched until the filtered deck is emptied.
func (s *Scheduler) answerUnscheduled(a *answer) {
	c := a.card
	c.Reps++
	a.logType = domain.RevlogLearn
	if c.Type == domain.CardReview || c.Type == domain.CardRelearning {
		a.logType = domain.RevlogReview
	}
	a.lastIvl = c.Ivl
	a.logIvl = c.Ivl
	c.Queue = domain.QueueReview
	c.Due = int64(s.today + 1)
}

// Bookkeeping.

// burySiblings buries the note's other new cards and due reviews, as the
// options allow, and drops them from the session queues either way.
func (s *Scheduler) burySiblings(ctx context.Context, a *answer) error {
	siblings, err := a.st.Cards.ListByNote(ctx, a.card.NoteID)
	if err != nil {
		return fmt.Errorf("loading siblings of card %d: %w", a.card.ID, err)
	}
	for _, sib := range siblings {
		if sib.ID == a.card.ID {
			continue
		}
		var bury bool
		switch {
		case sib.Queue == domain.QueueNew:
			bury = a.conf.New.Bury
		case sib.Queue == domain.QueueReview && sib.Due <= int64(s.today):
			bury = a.conf.Rev.Bury
		default:
			continue
		}
		id := sib.ID
		a.after(func() {
			s.newQueue.RemoveByID(id)
			s.revQueue.RemoveByID(id)
		})
		if !bury {
			continue
		}
		sib.Queue = domain.QueueSiblingBuried
		sib.Mod = a.now
		if err := a.st.Cards.Update(ctx, sib); err != nil {
			return fmt.Errorf("burying sibling %d: %w", sib.ID, err)
		}
		a.buried = true
	}
	return nil
}

// updateStats charges the answer to the card's home deck and every parent
// of it.
func (s *Scheduler) updateStats(ctx context.Context, a *answer) error {
	did := a.prev.HomeDeckID()
	home, err := a.st.Decks.GetByID(ctx, did)
	if err != nil {
		return fmt.Errorf("loading deck %d: %w", did, err)
	}
	parents, err := a.st.Decks.ParentsOf(ctx, did)
	if err != nil {
		return fmt.Errorf("loading parents of %q: %w", home.Name, err)
	}
	for _, d := range append(parents, home) {
		d.NewToday.Add(s.today, a.newDelta)
		d.LrnToday.Add(s.today, a.lrnDelta)
		d.RevToday.Add(s.today, a.revDelta)
		d.TimeToday.Add(s.today, int(a.took.Milliseconds()))
		d.Mod = a.now
		if err := a.st.Decks.Save(ctx, d); err != nil {
			return fmt.Errorf("updating counters of %q: %w", d.Name, err)
		}
	}
	return nil
}
