package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "Active"
	ReservationStatusFulfilled ReservationStatus = "Fulfilled"
	// ReservationStatusExpired is also the target of a voluntary cancel.
	ReservationStatusExpired ReservationStatus = "Expired"
)

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case ReservationStatusActive, ReservationStatusFulfilled, ReservationStatusExpired:
		return ReservationStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Reservation is a FIFO hold on the next freed copy of a book.
type Reservation struct {
	ID              string
	MemberID        string
	BookID          string
	ReservationDate time.Time
	ExpiryDate      time.Time
	Status          ReservationStatus
}

// ReservationView adds display fields for list endpoints.
type ReservationView struct {
	Reservation
	BookTitle  string
	MemberName string
}
