package game

import "errors"

// Precondition violations.
var (
	ErrNotStarted      = errors.New("game has not started")
	ErrAlreadyStarted  = errors.New("game has already started")
	ErrGameOver        = errors.New("game is over")
	ErrNoPlayers       = errors.New("no players have joined")
	ErrInvalidPlayer   = errors.New("player must have a non-empty id")
	ErrDuplicatePlayer = errors.New("player id already present")
	ErrTooManyPlayers  = errors.New("too many players")
)

// ErrPlayRejected is matched by every validation failure of a card play.
var ErrPlayRejected = errors.New("play rejected")

// Validation rejections. All of them satisfy errors.Is(err, ErrPlayRejected).
var (
	ErrUnknownPlayer  = rejection("unknown player")
	ErrNotPlayersTurn = rejection("not the player's turn")
	ErrCardNotInHand  = rejection("card not in player's hand")
	ErrIllegalPlay    = rejection("card does not match the top of the stack")
)

// Resource exhaustion.
var (
	// ErrDeckEmpty is returned when a draw is attempted on an empty deck.
	ErrDeckEmpty = errors.New("deck is empty")
	// ErrDeckExhausted means neither the deck nor the stack below its top card holds a card.
	ErrDeckExhausted = errors.New("no cards left to draw")
)

type rejectionError struct {
	msg string
}

func rejection(msg string) error {
	return &rejectionError{msg: msg}
}

func (e *rejectionError) Error() string {
	return e.msg
}

func (e *rejectionError) Is(target error) bool {
	return target == ErrPlayRejected
}
