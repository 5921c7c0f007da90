package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuizState is returned when a quiz has no questions or no
	// total point weight, so a score cannot be computed.
	ErrInvalidQuizState = errors.New("quiz has no scorable questions")
	// ErrNoAttemptsInRange is returned when analytics are requested over a
	// window containing no attempts; callers show an empty state.
	ErrNoAttemptsInRange = errors.New("no attempts in the requested range")
	// ErrNotOwner is returned when a caller tries to modify a quiz they did not create.
	ErrNotOwner = errors.New("not the quiz owner")
)

// AnonymousName is the placeholder display name for attempts without a user.
const AnonymousName = "Anonymous User"
