package study

import "errors"

var (
	// ErrNoCard is returned by GetCard when nothing is left to study. It is
	// the normal end of a session.
	ErrNoCard = errors.New("no card to study")

	// ErrInvalidQueueTransition is returned when a card cannot be answered
	// from its current queue, or with the given grade.
	ErrInvalidQueueTransition = errors.New("invalid queue transition")

	// ErrNotFiltered is returned when a filtered-deck operation targets a
	// regular deck.
	ErrNotFiltered = errors.New("deck is not a filtered deck")

	// ErrTreeUnavailable is returned instead of a partial deck tree when
	// building it was cancelled.
	ErrTreeUnavailable = errors.New("deck tree unavailable")

	// ErrInvalidRange is returned for a reschedule window with min > max or
	// a negative bound.
	ErrInvalidRange = errors.New("invalid day range")
)
