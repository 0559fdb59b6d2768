package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/google/uuid"
)

type noteService struct {
	notes    repository.NoteRepo
	cards    repository.CardRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewNoteService(notes repository.NoteRepo, cards repository.CardRepo, uow db.UnitOfWork, observers ...UseCaseObserver) NoteService {
	return &noteService{notes: notes, cards: cards, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Add stores a note and its cards. Cards join the end of the new queue;
// siblings share one position.
func (s *noteService) Add(ctx context.Context, in NewNote) (note *domain.Note, cards []*domain.Card, err error) {
	fields := map[string]any{"deck_id": in.DeckID, "reverse": in.Reverse}
	defer observe(ctx, s.observer, "add-note", fields, time.Now(), &err)

	front := sanitizeField(in.Front)
	if front == "" {
		return nil, nil, ErrEmptyNote
	}
	now := time.Now().UTC()
	note = &domain.Note{
		GUID:   uuid.NewString(),
		Fields: []string{front, sanitizeField(in.Back)},
		Tags:   in.Tags,
		Mod:    now,
	}
	ords := []int{0}
	if in.Reverse {
		ords = append(ords, 1)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		decks := repository.NewSQLiteDeckRepo(tx)
		colRepo := repository.NewSQLiteCollectionRepo(tx)
		deck, err := decks.GetByID(ctx, in.DeckID)
		if err != nil {
			return err
		}
		if deck.Dyn {
			return fmt.Errorf("cannot add notes to filtered deck %q", deck.Name)
		}
		col, err := colRepo.Get(ctx)
		if err != nil {
			return err
		}
		if err := repository.NewSQLiteNoteRepo(tx).Create(ctx, note); err != nil {
			return err
		}
		txCards := repository.NewSQLiteCardRepo(tx)
		for _, ord := range ords {
			c := &domain.Card{
				NoteID: note.ID,
				DeckID: deck.ID,
				Ord:    ord,
				Type:   domain.CardNew,
				Queue:  domain.QueueNew,
				Due:    col.NextPos,
				Mod:    now,
			}
			if err := txCards.Create(ctx, c); err != nil {
				return err
			}
			cards = append(cards, c)
		}
		col.NextPos++
		return colRepo.Upsert(ctx, col)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("adding note: %w", err)
	}
	fields["note_id"] = note.ID
	return note, cards, nil
}

func (s *noteService) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	return s.notes.GetByID(ctx, id)
}

func (s *noteService) Cards(ctx context.Context, noteID int64) ([]*domain.Card, error) {
	return s.cards.ListByNote(ctx, noteID)
}
