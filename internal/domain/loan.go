package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "Active"
	LoanStatusOverdue  LoanStatus = "Overdue"
	LoanStatusReturned LoanStatus = "Returned"
)

// ParseLoanStatus validates a status filter coming from a client.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanStatusActive, LoanStatusOverdue, LoanStatusReturned:
		return LoanStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Loan is one borrowed copy of a book. BorrowDate, DueDate and ReturnDate are
// calendar dates (midnight UTC).
type Loan struct {
	ID         string
	MemberID   string
	BookID     string
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
	Status     LoanStatus
	FineAmount decimal.Decimal
}

// IsOverdueOn derives the Overdue view: not returned and past its due date,
// or already flagged Overdue by the status sync.
func (l Loan) IsOverdueOn(today time.Time) bool {
	switch l.Status {
	case LoanStatusReturned:
		return false
	case LoanStatusOverdue:
		return true
	}
	return l.DueDate.Before(today)
}

// EffectiveStatus is the status a reader should see on the given day.
func (l Loan) EffectiveStatus(today time.Time) LoanStatus {
	if l.IsOverdueOn(today) {
		return LoanStatusOverdue
	}
	return l.Status
}

// LoanView adds display fields for list endpoints.
type LoanView struct {
	Loan
	BookTitle string
}

// OverdueLoan is a reporting row for staff.
type OverdueLoan struct {
	LoanView
	MemberName  string
	MemberEmail string
	DaysOverdue int
}
