package app

import (
	"context"
	"time"

	"github.com/cimillas/shelfwise/internal/clock"
	"github.com/cimillas/shelfwise/internal/domain"
)

type HistoryRepository interface {
	ListLoansByMember(ctx context.Context, memberID string, status *domain.LoanStatus, today time.Time) ([]domain.LoanView, error)
	ListOverdueLoans(ctx context.Context, today time.Time) ([]domain.OverdueLoan, error)
	ListReservationsByMember(ctx context.Context, memberID string, status *domain.ReservationStatus) ([]domain.ReservationView, error)
	ListActiveReservations(ctx context.Context) ([]domain.ReservationView, error)
}

// HistoryService serves the read-only loan and reservation listings.
type HistoryService struct {
	repo  HistoryRepository
	clock clock.Clock
}

func NewHistoryService(repo HistoryRepository, clk clock.Clock) *HistoryService {
	return &HistoryService{
		repo:  repo,
		clock: clk,
	}
}

// ListMemberLoans returns the member's loans, newest first. Status is derived
// for the current day, so a late Active loan is reported as Overdue.
func (s *HistoryService) ListMemberLoans(ctx context.Context, memberID, status string) ([]domain.LoanView, error) {
	if memberID == "" {
		return nil, domain.ErrInvalidID
	}
	var filter *domain.LoanStatus
	if status != "" {
		st, err := domain.ParseLoanStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}

	today := clock.Today(s.clock)
	loans, err := s.repo.ListLoansByMember(ctx, memberID, filter, today)
	if err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Status = loans[i].EffectiveStatus(today)
	}
	return loans, nil
}

func (s *HistoryService) ListOverdueLoans(ctx context.Context) ([]domain.OverdueLoan, error) {
	today := clock.Today(s.clock)
	loans, err := s.repo.ListOverdueLoans(ctx, today)
	if err != nil {
		return nil, err
	}
	for i := range loans {
		loans[i].Status = domain.LoanStatusOverdue
		loans[i].DaysOverdue = domain.DaysOverdue(loans[i].DueDate, today)
	}
	return loans, nil
}

func (s *HistoryService) ListMemberReservations(ctx context.Context, memberID, status string) ([]domain.ReservationView, error) {
	if memberID == "" {
		return nil, domain.ErrInvalidID
	}
	var filter *domain.ReservationStatus
	if status != "" {
		st, err := domain.ParseReservationStatus(status)
		if err != nil {
			return nil, err
		}
		filter = &st
	}
	return s.repo.ListReservationsByMember(ctx, memberID, filter)
}

func (s *HistoryService) ListActiveReservations(ctx context.Context) ([]domain.ReservationView, error) {
	return s.repo.ListActiveReservations(ctx)
}
