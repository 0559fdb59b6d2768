package service

import "errors"

var (
	// ErrInvalidDeckName is returned for an empty name or one with an empty
	// "::" component.
	ErrInvalidDeckName = errors.New("invalid deck name")

	// ErrDeckExists is returned when creating or renaming onto a taken name.
	ErrDeckExists = errors.New("deck already exists")

	// ErrDeckNotEmpty is returned when deleting a deck that still holds
	// cards.
	ErrDeckNotEmpty = errors.New("deck is not empty")

	// ErrProtectedDeck is returned for changes the default deck does not
	// allow.
	ErrProtectedDeck = errors.New("the default deck cannot be removed")

	// ErrInvalidConfig wraps validation failures of an options group.
	ErrInvalidConfig = errors.New("invalid deck options")

	// ErrEmptyNote is returned when a note has no front after sanitising.
	ErrEmptyNote = errors.New("note has no front")
)
