package match

import "errors"

// Domain error kinds. Every precondition violation surfaces as one of these
// so the HTTP layer can map it to a distinct status; nothing is retried
// internally.
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyRegistered  = errors.New("user already has an active registration for this match")
	ErrNotRegistered      = errors.New("user has no active registration for this match")
	ErrMatchFull          = errors.New("match already has the maximum number of players")
	ErrInvalidMatchStatus = errors.New("operation not allowed in the match's current status")
	ErrDuplicateFeedback  = errors.New("feedback already submitted for this player and match")
	ErrSelfFeedback       = errors.New("players cannot rate themselves")
)
