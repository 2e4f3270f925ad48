package hunt

import "errors"

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication error")
	ErrEvaluation = errors.New("evaluation fault")
)

// Error is a domain error whose message is safe to show to players.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

var (
	ErrInvalidName    = newError(ErrValidation, "team name is required")
	ErrInvalidMembers = newError(ErrValidation, "at least two distinct member names are required")
	ErrInvalidScore   = newError(ErrValidation, "score must not be negative")
	ErrRoundOrder     = newError(ErrValidation, "a round can only be completed after the previous one")
	ErrInvalidRound   = newError(ErrValidation, "round must be 1, 2 or 3")
	ErrInvalidCap     = newError(ErrValidation, "qualification cap must be positive and not below the qualified count")
	ErrEmptyAnswer    = newError(ErrValidation, "an answer is required")

	ErrTeamNotFound = newError(ErrNotFound, "team not found")

	ErrDuplicateName    = newError(ErrConflict, "team name already taken")
	ErrRoundNotActive   = newError(ErrConflict, "round is not active")
	ErrRoundLocked      = newError(ErrConflict, "previous round not completed")
	ErrAlreadyCompleted = newError(ErrConflict, "round already completed")
	ErrNoOpenRound      = newError(ErrConflict, "no round is open")

	ErrInvalidToken = newError(ErrAuth, "invalid or missing token")
)

// Evaluation wraps a fault raised while evaluating submitted code.
func Evaluation(msg string) error {
	return newError(ErrEvaluation, msg)
}
