package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) GetMember(ctx context.Context, memberID string) (domain.Member, error) {
	return getMember(ctx, conn(ctx, r.pool), memberID, false)
}

func (r *ReservationRepository) GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error) {
	return getBook(ctx, conn(ctx, r.pool), bookID, true)
}

func (r *ReservationRepository) FindActiveReservation(ctx context.Context, bookID, memberID string) (*domain.Reservation, error) {
	const query = `
SELECT id, member_id, book_id, reservation_date, expiry_date, status
FROM reservations
WHERE book_id = $1 AND member_id = $2 AND status = 'Active'`

	res, err := scanReservation(conn(ctx, r.pool).QueryRow(ctx, query, bookID, memberID))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find active reservation: %w", err)
	}
	return &res, nil
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, member_id, book_id, reservation_date, expiry_date, status)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		res.ID,
		res.MemberID,
		res.BookID,
		res.ReservationDate,
		res.ExpiryDate,
		string(res.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReservation
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetReservationForUpdate(ctx context.Context, reservationID string) (domain.Reservation, error) {
	const query = `
SELECT id, member_id, book_id, reservation_date, expiry_date, status
FROM reservations
WHERE id = $1
FOR UPDATE`

	res, err := scanReservation(conn(ctx, r.pool).QueryRow(ctx, query, reservationID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) UpdateReservationStatus(ctx context.Context, reservationID string, status domain.ReservationStatus) error {
	const stmt = `UPDATE reservations SET status = $2 WHERE id = $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, reservationID, string(status))
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func scanReservation(row pgx.Row, extra ...any) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	dest := append([]any{&res.ID, &res.MemberID, &res.BookID, &res.ReservationDate, &res.ExpiryDate, &status}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	res.ReservationDate = res.ReservationDate.UTC()
	res.ExpiryDate = res.ExpiryDate.UTC()
	return res, nil
}
