package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dialectPostgres = "postgres"

// HistoryRepository serves the list and report queries. Filters are optional,
// so the SQL is assembled with goqu instead of string concatenation.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func loanColumns() []any {
	return []any{
		goqu.I("l.id"),
		goqu.I("l.member_id"),
		goqu.I("l.book_id"),
		goqu.I("l.borrow_date"),
		goqu.I("l.due_date"),
		goqu.I("l.return_date"),
		goqu.I("l.status"),
		goqu.L("l.fine_amount::text"),
	}
}

func reservationColumns() []any {
	return []any{
		goqu.I("r.id"),
		goqu.I("r.member_id"),
		goqu.I("r.book_id"),
		goqu.I("r.reservation_date"),
		goqu.I("r.expiry_date"),
		goqu.I("r.status"),
	}
}

// overdueLoan matches loans flagged Overdue or still Active past their due date.
func overdueLoan(today time.Time) exp.Expression {
	return goqu.Or(
		goqu.I("l.status").Eq(string(domain.LoanStatusOverdue)),
		goqu.And(
			goqu.I("l.status").Eq(string(domain.LoanStatusActive)),
			goqu.I("l.due_date").Lt(today),
		),
	)
}

func loanStatusFilter(status domain.LoanStatus, today time.Time) exp.Expression {
	switch status {
	case domain.LoanStatusOverdue:
		return overdueLoan(today)
	case domain.LoanStatusActive:
		return goqu.And(
			goqu.I("l.status").Eq(string(domain.LoanStatusActive)),
			goqu.I("l.due_date").Gte(today),
		)
	default:
		return goqu.I("l.status").Eq(string(status))
	}
}

func (r *HistoryRepository) ListLoansByMember(ctx context.Context, memberID string, status *domain.LoanStatus, today time.Time) ([]domain.LoanView, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Select(append(loanColumns(), goqu.I("b.title"))...).
		Where(goqu.I("l.member_id").Eq(memberID)).
		Order(goqu.I("l.borrow_date").Desc(), goqu.I("l.id").Asc())
	if status != nil {
		ds = ds.Where(loanStatusFilter(*status, today))
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build member loans query: %w", err)
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list member loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.LoanView
	for rows.Next() {
		var v domain.LoanView
		loan, err := scanLoan(rows, &v.BookTitle)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		v.Loan = loan
		loans = append(loans, v)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return loans, nil
}

// ListOverdueLoans returns every overdue loan, longest overdue first.
func (r *HistoryRepository) ListOverdueLoans(ctx context.Context, today time.Time) ([]domain.OverdueLoan, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("l.member_id")))).
		Select(append(loanColumns(), goqu.I("b.title"), goqu.I("m.name"), goqu.I("m.email"))...).
		Where(overdueLoan(today)).
		Order(goqu.I("l.due_date").Asc(), goqu.I("l.id").Asc())

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build overdue query: %w", err)
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overdue loans: %w", err)
	}
	defer rows.Close()

	var out []domain.OverdueLoan
	for rows.Next() {
		var o domain.OverdueLoan
		loan, err := scanLoan(rows, &o.BookTitle, &o.MemberName, &o.MemberEmail)
		if err != nil {
			return nil, fmt.Errorf("scan overdue loan: %w", err)
		}
		o.Loan = loan
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue loans: %w", err)
	}
	return out, nil
}

func (r *HistoryRepository) ListReservationsByMember(ctx context.Context, memberID string, status *domain.ReservationStatus) ([]domain.ReservationView, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("reservations").As("r")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("r.member_id")))).
		Select(append(reservationColumns(), goqu.I("b.title"), goqu.I("m.name"))...).
		Where(goqu.I("r.member_id").Eq(memberID)).
		Order(goqu.I("r.reservation_date").Desc(), goqu.I("r.id").Asc())
	if status != nil {
		ds = ds.Where(goqu.I("r.status").Eq(string(*status)))
	}
	return r.listReservations(ctx, ds)
}

// ListActiveReservations returns every queue in FIFO order.
func (r *HistoryRepository) ListActiveReservations(ctx context.Context) ([]domain.ReservationView, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("reservations").As("r")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("r.book_id")))).
		Join(goqu.T("members").As("m"), goqu.On(goqu.I("m.id").Eq(goqu.I("r.member_id")))).
		Select(append(reservationColumns(), goqu.I("b.title"), goqu.I("m.name"))...).
		Where(goqu.I("r.status").Eq(string(domain.ReservationStatusActive))).
		Order(goqu.I("r.reservation_date").Asc(), goqu.I("r.id").Asc())
	return r.listReservations(ctx, ds)
}

func (r *HistoryRepository) listReservations(ctx context.Context, ds *goqu.SelectDataset) ([]domain.ReservationView, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build reservations query: %w", err)
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.ReservationView
	for rows.Next() {
		var v domain.ReservationView
		res, err := scanReservation(rows, &v.BookTitle, &v.MemberName)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		v.Reservation = res
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return out, nil
}
