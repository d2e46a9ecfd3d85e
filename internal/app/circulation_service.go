package app

import (
	"context"
	"time"

	"github.com/cimillas/shelfwise/internal/clock"
	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/shopspring/decimal"
)

type CirculationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetMemberForUpdate(ctx context.Context, memberID string) (domain.Member, error)
	CountOpenLoans(ctx context.Context, memberID string) (int, error)
	CountOverdueLoans(ctx context.Context, memberID string, today time.Time) (int, error)
	SumFines(ctx context.Context, memberID string) (decimal.Decimal, error)
	GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error)
	HasActiveReservationByOther(ctx context.Context, bookID, memberID string) (bool, error)
	CreateLoan(ctx context.Context, loan domain.Loan) error
	AdjustAvailableCopies(ctx context.Context, bookID string, delta int) error
	FulfillMemberReservation(ctx context.Context, bookID, memberID string) (string, error)
	GetLoanForUpdate(ctx context.Context, loanID, memberID string) (domain.Loan, error)
	MarkLoanReturned(ctx context.Context, loanID string, returnDate time.Time, fine decimal.Decimal) error
	FulfillOldestReservation(ctx context.Context, bookID string) (string, error)
}

// CirculationService runs checkouts and returns. Each call is one transaction;
// a business-rule rejection rolls it back before anything is written.
type CirculationService struct {
	repo           CirculationRepository
	clock          clock.Clock
	loanPeriodDays int
}

const defaultLoanPeriodDays = 14

func NewCirculationService(repo CirculationRepository, clk clock.Clock, opts ...CirculationServiceOption) *CirculationService {
	svc := &CirculationService{
		repo:           repo,
		clock:          clk,
		loanPeriodDays: defaultLoanPeriodDays,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CirculationServiceOption func(*CirculationService)

// WithLoanPeriod overrides the number of days a new loan runs.
func WithLoanPeriod(days int) CirculationServiceOption {
	return func(s *CirculationService) {
		if days > 0 {
			s.loanPeriodDays = days
		}
	}
}

type BorrowBookInput struct {
	MemberID string
	BookID   string
}

func (s *CirculationService) BorrowBook(ctx context.Context, in BorrowBookInput) (domain.Loan, error) {
	if in.MemberID == "" || in.BookID == "" {
		return domain.Loan{}, domain.ErrInvalidID
	}

	today := clock.Today(s.clock)
	var result domain.Loan

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		// Member first, then book: the same order in every borrow keeps
		// concurrent checkouts from deadlocking.
		member, err := s.repo.GetMemberForUpdate(txCtx, in.MemberID)
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return domain.ErrMembershipInactive
		}
		book, err := s.repo.GetBookForUpdate(txCtx, in.BookID)
		if err != nil && err != domain.ErrBookNotFound {
			return err
		}
		bookFound := err == nil

		open, err := s.repo.CountOpenLoans(txCtx, in.MemberID)
		if err != nil {
			return err
		}
		if open >= domain.MaxActiveLoans {
			return domain.ErrLimitExceeded
		}

		overdue, err := s.repo.CountOverdueLoans(txCtx, in.MemberID, today)
		if err != nil {
			return err
		}
		if overdue > 0 {
			return domain.ErrHasOverdueBooks
		}

		fines, err := s.repo.SumFines(txCtx, in.MemberID)
		if err != nil {
			return err
		}
		if domain.ExceedsFineThreshold(fines) {
			return domain.ErrOutstandingFines
		}

		if !bookFound || !book.HasAvailableCopy() {
			return domain.ErrBookUnavailable
		}

		reserved, err := s.repo.HasActiveReservationByOther(txCtx, in.BookID, in.MemberID)
		if err != nil {
			return err
		}
		if reserved {
			return domain.ErrReservedByOther
		}

		loan := domain.Loan{
			ID:         newUUID(),
			MemberID:   in.MemberID,
			BookID:     in.BookID,
			BorrowDate: today,
			DueDate:    today.AddDate(0, 0, s.loanPeriodDays),
			Status:     domain.LoanStatusActive,
			FineAmount: decimal.Zero,
		}
		if err := s.repo.CreateLoan(txCtx, loan); err != nil {
			return err
		}
		if err := s.repo.AdjustAvailableCopies(txCtx, in.BookID, -1); err != nil {
			return err
		}
		if _, err := s.repo.FulfillMemberReservation(txCtx, in.BookID, in.MemberID); err != nil {
			return err
		}

		result = loan
		return nil
	})
	if err != nil {
		return domain.Loan{}, err
	}
	return result, nil
}

type ReturnBookInput struct {
	LoanID   string
	MemberID string
}

type ReturnBookResult struct {
	LoanID      string
	BookID      string
	ReturnDate  time.Time
	DaysOverdue int
	FineAmount  decimal.Decimal
	// FulfilledReservationID is empty when nobody was waiting for the book.
	FulfilledReservationID string
}

func (s *CirculationService) ReturnBook(ctx context.Context, in ReturnBookInput) (ReturnBookResult, error) {
	if in.LoanID == "" || in.MemberID == "" {
		return ReturnBookResult{}, domain.ErrInvalidID
	}

	today := clock.Today(s.clock)
	var result ReturnBookResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		loan, err := s.repo.GetLoanForUpdate(txCtx, in.LoanID, in.MemberID)
		if err != nil {
			return err
		}
		if loan.Status == domain.LoanStatusReturned {
			return domain.ErrAlreadyReturned
		}

		if _, err := s.repo.GetBookForUpdate(txCtx, loan.BookID); err != nil {
			return err
		}

		daysOverdue := domain.DaysOverdue(loan.DueDate, today)
		fine := domain.Fine(daysOverdue)

		if err := s.repo.MarkLoanReturned(txCtx, loan.ID, today, fine); err != nil {
			return err
		}
		if err := s.repo.AdjustAvailableCopies(txCtx, loan.BookID, 1); err != nil {
			return err
		}
		fulfilled, err := s.repo.FulfillOldestReservation(txCtx, loan.BookID)
		if err != nil {
			return err
		}

		result = ReturnBookResult{
			LoanID:                 loan.ID,
			BookID:                 loan.BookID,
			ReturnDate:             today,
			DaysOverdue:            daysOverdue,
			FineAmount:             fine,
			FulfilledReservationID: fulfilled,
		}
		return nil
	})
	if err != nil {
		return ReturnBookResult{}, err
	}
	return result, nil
}
