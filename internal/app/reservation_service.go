package app

import (
	"context"
	"time"

	"github.com/cimillas/shelfwise/internal/clock"
	"github.com/cimillas/shelfwise/internal/domain"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetMember(ctx context.Context, memberID string) (domain.Member, error)
	GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error)
	FindActiveReservation(ctx context.Context, bookID, memberID string) (*domain.Reservation, error)
	CreateReservation(ctx context.Context, r domain.Reservation) error
	GetReservationForUpdate(ctx context.Context, reservationID string) (domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) error
}

type ReservationService struct {
	repo    ReservationRepository
	clock   clock.Clock
	holdFor time.Duration
}

func NewReservationService(repo ReservationRepository, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		repo:    repo,
		clock:   clk,
		holdFor: domain.DefaultHoldDuration,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithHoldDuration overrides how long a new reservation stays valid.
func WithHoldDuration(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.holdFor = d
		}
	}
}

type CreateReservationInput struct {
	MemberID string
	BookID   string
}

// CreateReservation queues the member for the next freed copy. Only books with
// no available copies can be reserved.
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (domain.Reservation, error) {
	if in.MemberID == "" || in.BookID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	var result domain.Reservation

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		member, err := s.repo.GetMember(txCtx, in.MemberID)
		if err != nil {
			return err
		}
		if !member.IsActive() {
			return domain.ErrMembershipInactive
		}

		book, err := s.repo.GetBookForUpdate(txCtx, in.BookID)
		if err != nil {
			return err
		}
		if book.HasAvailableCopy() {
			return domain.ErrBookAlreadyAvailable
		}

		existing, err := s.repo.FindActiveReservation(txCtx, in.BookID, in.MemberID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateReservation
		}

		r := domain.Reservation{
			ID:              newUUID(),
			MemberID:        in.MemberID,
			BookID:          in.BookID,
			ReservationDate: now,
			ExpiryDate:      now.Add(s.holdFor),
			Status:          domain.ReservationStatusActive,
		}
		if err := s.repo.CreateReservation(txCtx, r); err != nil {
			return err
		}

		result = r
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return result, nil
}

type CancelReservationInput struct {
	ReservationID string
	MemberID      string
}

func (s *ReservationService) CancelReservation(ctx context.Context, in CancelReservationInput) (domain.Reservation, error) {
	if in.ReservationID == "" || in.MemberID == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	var result domain.Reservation

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		r, err := s.repo.GetReservationForUpdate(txCtx, in.ReservationID)
		if err != nil {
			return err
		}
		// Someone else's reservation is reported as missing.
		if r.MemberID != in.MemberID {
			return domain.ErrReservationNotFound
		}
		if r.Status != domain.ReservationStatusActive {
			return domain.ErrReservationNotActive
		}

		if err := s.repo.UpdateReservationStatus(txCtx, r.ID, domain.ReservationStatusExpired); err != nil {
			return err
		}

		r.Status = domain.ReservationStatusExpired
		result = r
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return result, nil
}
