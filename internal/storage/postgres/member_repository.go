package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemberRepository resolves request identities to member rows.
type MemberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

func (r *MemberRepository) GetMember(ctx context.Context, memberID string) (domain.Member, error) {
	return getMember(ctx, conn(ctx, r.pool), memberID, false)
}

func getMember(ctx context.Context, q querier, memberID string, forUpdate bool) (domain.Member, error) {
	query := `
SELECT id, name, email, membership_status, membership_type
FROM members
WHERE id = $1`
	if forUpdate {
		query += `
FOR UPDATE`
	}

	var m domain.Member
	var status, kind string
	err := q.QueryRow(ctx, query, memberID).Scan(&m.ID, &m.Name, &m.Email, &status, &kind)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Member{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, fmt.Errorf("get member: %w", err)
	}
	m.Status = domain.MembershipStatus(status)
	m.Type = domain.MembershipType(kind)
	return m, nil
}

func getBook(ctx context.Context, q querier, bookID string, forUpdate bool) (domain.Book, error) {
	query := `SELECT id, title, total_copies, available_copies FROM books WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var b domain.Book
	err := q.QueryRow(ctx, query, bookID).Scan(&b.ID, &b.Title, &b.TotalCopies, &b.AvailableCopies)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Book{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}
