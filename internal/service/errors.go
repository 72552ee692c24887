package service

import (
	"errors"
	"fmt"

	"github.com/fill11/match-service/internal/geo"
	"gorm.io/gorm"
)

// Error kinds. Every specific error below wraps exactly one of these (the
// filled-vacancy error wraps two) so handlers can switch on the kind.
var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidState            = errors.New("invalid state")
	ErrForbidden               = errors.New("forbidden")
	ErrCapacityExceeded        = errors.New("capacity exceeded")
	ErrInvalidCoordinate       = geo.ErrInvalidCoordinate
	ErrVenueCoordinatesMissing = errors.New("venue coordinates missing")
	ErrDuplicateClaim          = errors.New("duplicate claim")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrPaymentOrderFailed      = errors.New("payment order creation failed")
)

var (
	ErrMatchNotFound   = fmt.Errorf("match %w", ErrNotFound)
	ErrVacancyNotFound = fmt.Errorf("vacancy %w", ErrNotFound)
	ErrEscrowNotFound  = fmt.Errorf("escrow %w", ErrNotFound)
	ErrVenueNotFound   = fmt.Errorf("venue %w", ErrNotFound)

	ErrNotCaptain = fmt.Errorf("only the match captain can do this: %w", ErrForbidden)

	ErrVacancyNotOpen         = fmt.Errorf("vacancy is not open: %w", ErrInvalidState)
	ErrVacancyFull            = fmt.Errorf("vacancy is full: %w", ErrCapacityExceeded)
	ErrMatchFull              = fmt.Errorf("match has reached its join limit: %w", ErrCapacityExceeded)
	ErrMatchNotJoinable       = fmt.Errorf("match is not accepting players: %w", ErrInvalidState)
	ErrMatchAlreadyStarted    = fmt.Errorf("match has already started: %w", ErrInvalidState)
	ErrMatchAlreadyCancelled  = fmt.Errorf("match is already cancelled: %w", ErrInvalidState)
	ErrInvalidMatchTransition = fmt.Errorf("invalid match status transition: %w", ErrInvalidState)
	ErrInvalidTransition      = fmt.Errorf("invalid escrow transition: %w", ErrInvalidState)

	ErrAlreadyJoined    = fmt.Errorf("already joined this match: %w", ErrDuplicateClaim)
	ErrDuplicateCheckin = fmt.Errorf("already checked in for this match: %w", ErrDuplicateClaim)
	ErrScorecardExists  = fmt.Errorf("scorecard already submitted: %w", ErrDuplicateClaim)

	// ErrVacancyFilled is returned for a vacancy that reached capacity. It is
	// both not open and full.
	ErrVacancyFilled error = &multiError{
		msg:  "vacancy is filled",
		errs: []error{ErrVacancyNotOpen, ErrVacancyFull},
	}
)

type multiError struct {
	msg  string
	errs []error
}

func (e *multiError) Error() string   { return e.msg }
func (e *multiError) Unwrap() []error { return e.errs }

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// notFound maps gorm.ErrRecordNotFound to the given domain error.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
