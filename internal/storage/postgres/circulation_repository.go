package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CirculationRepository backs checkouts and returns: the loan ledger plus
// the book and reservation rows they touch.
type CirculationRepository struct {
	pool *pgxpool.Pool
}

func NewCirculationRepository(pool *pgxpool.Pool) *CirculationRepository {
	return &CirculationRepository{pool: pool}
}

func (r *CirculationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CirculationRepository) GetMemberForUpdate(ctx context.Context, memberID string) (domain.Member, error) {
	return getMember(ctx, conn(ctx, r.pool), memberID, true)
}

func (r *CirculationRepository) GetBookForUpdate(ctx context.Context, bookID string) (domain.Book, error) {
	return getBook(ctx, conn(ctx, r.pool), bookID, true)
}

func (r *CirculationRepository) CountOpenLoans(ctx context.Context, memberID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM loans
WHERE member_id = $1 AND status IN ('Active', 'Overdue')`

	var n int
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID).Scan(&n); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count open loans: %w", err)
	}
	return n, nil
}

// CountOverdueLoans counts loans flagged Overdue plus Active loans whose due
// date has passed, so the result does not depend on the status sync.
func (r *CirculationRepository) CountOverdueLoans(ctx context.Context, memberID string, today time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM loans
WHERE member_id = $1
  AND (status = 'Overdue' OR (status = 'Active' AND due_date < $2))`

	var n int
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID, today).Scan(&n); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count overdue loans: %w", err)
	}
	return n, nil
}

func (r *CirculationRepository) SumFines(ctx context.Context, memberID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(fine_amount), 0)::text FROM loans WHERE member_id = $1`

	var raw string
	if err := conn(ctx, r.pool).QueryRow(ctx, query, memberID).Scan(&raw); err != nil {
		if isInvalidUUID(err) {
			return decimal.Zero, domain.ErrInvalidID
		}
		return decimal.Zero, fmt.Errorf("sum fines: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse fines %q: %w", raw, err)
	}
	return total, nil
}

func (r *CirculationRepository) HasActiveReservationByOther(ctx context.Context, bookID, memberID string) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM reservations
	WHERE book_id = $1 AND member_id <> $2 AND status = 'Active'
)`

	var exists bool
	if err := conn(ctx, r.pool).QueryRow(ctx, query, bookID, memberID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check reservations: %w", err)
	}
	return exists, nil
}

func (r *CirculationRepository) CreateLoan(ctx context.Context, loan domain.Loan) error {
	const stmt = `
INSERT INTO loans (id, member_id, book_id, borrow_date, due_date, status, fine_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		loan.ID,
		loan.MemberID,
		loan.BookID,
		loan.BorrowDate,
		loan.DueDate,
		string(loan.Status),
		loan.FineAmount.String(),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrBookNotFound
		}
		return fmt.Errorf("create loan: %w", err)
	}
	return nil
}

// AdjustAvailableCopies moves the copy counter by delta. The books check
// constraint rejects any change that would move it outside 0..total_copies.
func (r *CirculationRepository) AdjustAvailableCopies(ctx context.Context, bookID string, delta int) error {
	const stmt = `UPDATE books SET available_copies = available_copies + $2 WHERE id = $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, bookID, delta)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("adjust available copies: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// FulfillMemberReservation consumes the member's own Active hold on the book,
// returning its id or "" when there was none.
func (r *CirculationRepository) FulfillMemberReservation(ctx context.Context, bookID, memberID string) (string, error) {
	const stmt = `
UPDATE reservations
SET status = 'Fulfilled'
WHERE book_id = $1 AND member_id = $2 AND status = 'Active'
RETURNING id`

	var id string
	err := conn(ctx, r.pool).QueryRow(ctx, stmt, bookID, memberID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("fulfill member reservation: %w", err)
	}
	return id, nil
}

// FulfillOldestReservation hands the freed copy to the head of the book's
// queue (earliest reservation_date, id as tiebreak).
func (r *CirculationRepository) FulfillOldestReservation(ctx context.Context, bookID string) (string, error) {
	const stmt = `
UPDATE reservations
SET status = 'Fulfilled'
WHERE id = (
	SELECT id FROM reservations
	WHERE book_id = $1 AND status = 'Active'
	ORDER BY reservation_date ASC, id ASC
	LIMIT 1
	FOR UPDATE
)
RETURNING id`

	var id string
	err := conn(ctx, r.pool).QueryRow(ctx, stmt, bookID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("fulfill oldest reservation: %w", err)
	}
	return id, nil
}

func (r *CirculationRepository) GetLoanForUpdate(ctx context.Context, loanID, memberID string) (domain.Loan, error) {
	const query = `
SELECT id, member_id, book_id, borrow_date, due_date, return_date, status, fine_amount::text
FROM loans
WHERE id = $1 AND member_id = $2
FOR UPDATE`

	loan, err := scanLoan(conn(ctx, r.pool).QueryRow(ctx, query, loanID, memberID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Loan{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Loan{}, domain.ErrLoanNotFound
		}
		return domain.Loan{}, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (r *CirculationRepository) MarkLoanReturned(ctx context.Context, loanID string, returnDate time.Time, fine decimal.Decimal) error {
	const stmt = `
UPDATE loans
SET status = 'Returned', return_date = $2, fine_amount = $3::numeric
WHERE id = $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, loanID, returnDate, fine.String())
	if err != nil {
		return fmt.Errorf("mark loan returned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// MarkOverdueLoans persists the Overdue label on Active loans past due.
func (r *CirculationRepository) MarkOverdueLoans(ctx context.Context, today time.Time) (int64, error) {
	const stmt = `UPDATE loans SET status = 'Overdue' WHERE status = 'Active' AND due_date < $1`

	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, today)
	if err != nil {
		return 0, classify(fmt.Errorf("mark overdue loans: %w", err))
	}
	return tag.RowsAffected(), nil
}

// scanLoan reads the standard loan columns followed by any extra targets.
func scanLoan(row pgx.Row, extra ...any) (domain.Loan, error) {
	var l domain.Loan
	var status, fine string
	var returned *time.Time
	dest := append([]any{&l.ID, &l.MemberID, &l.BookID, &l.BorrowDate, &l.DueDate, &returned, &status, &fine}, extra...)
	if err := row.Scan(dest...); err != nil {
		return domain.Loan{}, err
	}
	amount, err := decimal.NewFromString(fine)
	if err != nil {
		return domain.Loan{}, fmt.Errorf("parse fine %q: %w", fine, err)
	}
	l.ReturnDate = returned
	l.Status = domain.LoanStatus(status)
	l.FineAmount = amount
	return l, nil
}
