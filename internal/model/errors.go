package model

import "errors"

// Kind classifies a domain error. Every kind is reported to the issuing
// connection only and leaves shared state untouched, except
// KindStaleReference which clears the dangling relation it detected.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindStateConflict
	KindNotFound
	KindStaleReference
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStateConflict:
		return "state_conflict"
	case KindNotFound:
		return "not_found"
	case KindStaleReference:
		return "stale_reference"
	default:
		return "internal"
	}
}

// Error is a domain error with a user-facing message
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of a domain error, or KindInternal for anything else
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Validation errors
var (
	ErrEmptyCredential  = newError(KindValidation, "pseudo and password cannot be empty")
	ErrInvalidHandle    = newError(KindValidation, "pseudo must be 1-32 characters without spaces")
	ErrBadCredential    = newError(KindValidation, "incorrect password")
	ErrUnknownCommand   = newError(KindValidation, "unknown command, type HELP for the list of commands")
	ErrMissingArgument  = newError(KindValidation, "missing argument")
	ErrInvalidPit       = newError(KindValidation, "invalid pit selection, choose a pit between 1 and 6")
	ErrEmptyPit         = newError(KindValidation, "that pit is empty, choose another one")
	ErrEmptyMessage     = newError(KindValidation, "message cannot be empty")
	ErrNotAuthenticated = newError(KindValidation, "you must LOGIN or REGISTER first")
)

// State conflict errors
var (
	ErrHandleTaken          = newError(KindStateConflict, "pseudo already taken")
	ErrAlreadyOnline        = newError(KindStateConflict, "you are already logged in")
	ErrAlreadyAuthenticated = newError(KindStateConflict, "already logged in on this connection")
	ErrNotYourTurn          = newError(KindStateConflict, "it is not your turn")
	ErrAlreadyInGame        = newError(KindStateConflict, "you are already in a game")
	ErrNotInGame            = newError(KindStateConflict, "you are not in a game")
	ErrTargetInGame         = newError(KindStateConflict, "the player is already in a game, use OBSERVE to watch it")
	ErrSelfChallenge        = newError(KindStateConflict, "you cannot challenge yourself")
	ErrAlreadyChallenging   = newError(KindStateConflict, "you already have a pending challenge, use REVOKE_CHALLENGE first")
	ErrAlreadyChallenged    = newError(KindStateConflict, "you have been challenged, ACCEPT or DECLINE first")
	ErrTargetBusy           = newError(KindStateConflict, "the player already has a pending challenge")
	ErrObservingBusy        = newError(KindStateConflict, "you are observing a game, use QUIT_OBSERVE first")
	ErrNoPendingChallenge   = newError(KindStateConflict, "nobody has challenged you")
	ErrNotChallenging       = newError(KindStateConflict, "you have not challenged anyone")
	ErrNotObserving         = newError(KindStateConflict, "you are not observing any game")
	ErrAlreadyObserving     = newError(KindStateConflict, "you are already observing a game, use QUIT_OBSERVE first")
	ErrSelfObserve          = newError(KindStateConflict, "you cannot observe your own game")
	ErrFriendsOnly          = newError(KindStateConflict, "this game is friends-only, you are not on a player's friend list")
	ErrSelfFriend           = newError(KindStateConflict, "you cannot add yourself as a friend")
	ErrAlreadyFriend        = newError(KindStateConflict, "the player is already on your friend list")
	ErrNotFriend            = newError(KindStateConflict, "the player is not on your friend list")
	ErrFriendListFull       = newError(KindStateConflict, "your friend list is full")
)

// Not found errors
var (
	ErrPlayerNotFound  = newError(KindNotFound, "player not found")
	ErrPlayerOffline   = newError(KindNotFound, "the player is not online")
	ErrGameNotFound    = newError(KindNotFound, "game not found")
	ErrTargetNotInGame = newError(KindNotFound, "the player is not in a game")
)

// ErrChallengerGone is returned when the challenger went offline between
// CHALLENGE and ACCEPT
var ErrChallengerGone = newError(KindStaleReference, "the challenger is no longer available, the challenge was cleared")
