package domain

import "errors"

var (
	ErrLimitExceeded        = errors.New("maximum borrowing limit reached (5 books)")
	ErrHasOverdueBooks      = errors.New("member has overdue books, return them first")
	ErrOutstandingFines     = errors.New("member has outstanding fines, pay them first")
	ErrBookUnavailable      = errors.New("book is not available for borrowing")
	ErrReservedByOther      = errors.New("book is reserved by another member")
	ErrAlreadyReturned      = errors.New("book has already been returned")
	ErrBookAlreadyAvailable = errors.New("book is currently available for borrowing, no need to reserve")
	ErrDuplicateReservation = errors.New("member already has an active reservation for this book")
	ErrReservationNotActive = errors.New("reservation is not active")

	ErrBookNotFound        = errors.New("book not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrLoanNotFound        = errors.New("borrowing record not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrMembershipInactive = errors.New("membership is not active")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidStatus      = errors.New("invalid status filter")

	// ErrTransient marks infrastructure failures (serialization conflicts,
	// deadlocks, lock timeouts) that a caller may retry.
	ErrTransient = errors.New("transient storage failure, retry the request")
)

// IsNotFound reports whether err is one of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}
