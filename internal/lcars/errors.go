package lcars

import "errors"

// Sentinel errors for the crew/compile error taxonomy (spec.md §7:
// CompileFailure and ScenarioInfeasible origins).
var (
	ErrMissingOfficer         = errors.New("lcars: crew seat has no officer assigned")
	ErrDuplicateOfficer       = errors.New("lcars: officer appears in more than one seat")
	ErrInvalidBelowDecksCount = errors.New("lcars: below-decks seats must number 1 to 7")
	ErrCaptainIneligible      = errors.New("lcars: captain officer has no captain ability")
	ErrInvalidScaling         = errors.New("lcars: effect scaling has non-finite or negative bounds")
	ErrNonFiniteValue         = errors.New("lcars: effect value is non-finite")
	ErrConditionEvalFailure   = errors.New("lcars: condition tree could not be evaluated")
)

// CompileError wraps a compile-time failure with the officer identity that
// caused it, per spec.md §7 ("reject crew; return typed error identifying
// the officer").
type CompileError struct {
	OfficerID string
	Seat      Seat
	Err       error
}

func (e *CompileError) Error() string {
	return "lcars: compile failed for officer " + e.OfficerID + " (" + string(e.Seat) + "): " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// CompileWarning is a side-channel record of a gracefully-skipped unknown
// mechanic (spec.md §7 UnknownMechanic).
type CompileWarning struct {
	OfficerID string
	Seat      Seat
	Stat      string
	Reason    string
}
