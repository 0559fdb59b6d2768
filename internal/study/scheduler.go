// Package study implements the study session: which card is shown next,
// what answering it does to its schedule, and the per-deck due counts that
// go with it.
//
// A Scheduler is owned by one session and must not be used from several
// goroutines at once. It holds queues of card references filled lazily from
// the card store; the store stays the source of truth and every mutation
// happens inside a unit of work.
package study

import (
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

const (
	// DefaultQueueLimit caps how many cards one queue fill pulls in.
	DefaultQueueLimit = 50

	// reportLimit caps every count the scheduler reports.
	reportLimit = 1000

	// dynReportLimit is the daily allowance of a filtered deck.
	dynReportLimit = 99999
)

// Stores bundles the repositories a Scheduler works against.
type Stores struct {
	Cards      repository.CardRepo
	Decks      repository.DeckRepo
	Notes      repository.NoteRepo
	Revlog     repository.RevlogRepo
	Collection repository.CollectionRepo
}

// StoresFor builds SQLite-backed stores over conn, which may be a
// transaction.
func StoresFor(conn db.DBTX) Stores {
	return Stores{
		Cards:      repository.NewSQLiteCardRepo(conn),
		Decks:      repository.NewSQLiteDeckRepo(conn),
		Notes:      repository.NewSQLiteNoteRepo(conn),
		Revlog:     repository.NewSQLiteRevlogRepo(conn),
		Collection: repository.NewSQLiteCollectionRepo(conn),
	}
}

type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithRand sets the source used for interval and learning-step fuzz.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) { s.rng = rng }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithVariant(v Variant) Option {
	return func(s *Scheduler) { s.variant = v }
}

func WithQueueLimit(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.queueLimit = n
		}
	}
}

type Scheduler struct {
	stores     Stores
	uow        db.UnitOfWork
	now        func() time.Time
	rng        *rand.Rand
	logger     *slog.Logger
	variant    Variant
	queueLimit int

	col       *domain.CollectionConf
	today     int
	dayCutoff int64
	lrnCutoff int64
	active    []int64

	newCount int
	lrnCount int
	revCount int

	newQueue    *scheduler.Queue[scheduler.QueueEntry]
	lrnQueue    *scheduler.DueQueue[scheduler.QueueEntry]
	lrnDayQueue *scheduler.Queue[scheduler.QueueEntry]
	revQueue    *scheduler.Queue[scheduler.QueueEntry]

	newDids []int64
	lrnDids []int64
	revDids []int64

	newCardModulus int
	reps           int
	haveQueues     bool
}

// NewScheduler returns a scheduler over the given stores. Nothing is read
// until the first operation that needs the queues.
func NewScheduler(stores Stores, uow db.UnitOfWork, opts ...Option) *Scheduler {
	s := &Scheduler{
		stores:      stores,
		uow:         uow,
		now:         time.Now,
		variant:     VariantV2(),
		queueLimit:  DefaultQueueLimit,
		newQueue:    scheduler.NewQueue[scheduler.QueueEntry](),
		lrnQueue:    scheduler.NewDueQueue[scheduler.QueueEntry](),
		lrnDayQueue: scheduler.NewQueue[scheduler.QueueEntry](),
		revQueue:    scheduler.NewQueue[scheduler.QueueEntry](),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Scheduler) Variant() Variant { return s.variant }

// Today is the day number of the last reset, counted from collection
// creation.
func (s *Scheduler) Today() int { return s.today }

// DayCutoff is when the current study day ends.
func (s *Scheduler) DayCutoff() time.Time { return time.Unix(s.dayCutoff, 0) }

// Reps is the number of cards handed out this session.
func (s *Scheduler) Reps() int { return s.reps }

// CurrentDeckID is the deck whose subtree is being studied.
func (s *Scheduler) CurrentDeckID() int64 {
	if s.col == nil {
		return domain.DefaultDeckID
	}
	return s.col.CurrentDeckID
}

func (s *Scheduler) fuzzer() scheduler.Fuzzer {
	return scheduler.NewFuzzer(s.rng)
}

// invalidate drops the in-memory queues so the next read rebuilds them.
func (s *Scheduler) invalidate() {
	s.haveQueues = false
}
