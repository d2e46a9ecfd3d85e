package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for the Postgres repositories. WithTx
// serializes callers and restores the previous state when fn fails, which is
// what the row locks and rollback give us in the real store.
type fakeStore struct {
	mu           sync.Mutex
	members      map[string]domain.Member
	books        map[string]domain.Book
	loans        map[string]domain.Loan
	reservations map[string]domain.Reservation
	commits      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:      make(map[string]domain.Member),
		books:        make(map[string]domain.Book),
		loans:        make(map[string]domain.Loan),
		reservations: make(map[string]domain.Reservation),
	}
}

func (f *fakeStore) addMember(id string) {
	f.members[id] = domain.Member{ID: id, Name: id, Status: domain.MembershipStatusActive, Type: domain.MembershipTypeMember}
}

func (f *fakeStore) addBook(id string, total, available int) {
	f.books[id] = domain.Book{ID: id, Title: "Title " + id, TotalCopies: total, AvailableCopies: available}
}

func (f *fakeStore) addLoan(l domain.Loan) {
	f.loans[l.ID] = l
}

func (f *fakeStore) addReservation(r domain.Reservation) {
	f.reservations[r.ID] = r
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := f.clone()
	if err := fn(ctx); err != nil {
		f.members, f.books, f.loans, f.reservations = snapshot.members, snapshot.books, snapshot.loans, snapshot.reservations
		return err
	}
	f.commits++
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range f.members {
		c.members[k] = v
	}
	for k, v := range f.books {
		c.books[k] = v
	}
	for k, v := range f.loans {
		c.loans[k] = v
	}
	for k, v := range f.reservations {
		c.reservations[k] = v
	}
	return c
}

func (f *fakeStore) GetMember(_ context.Context, memberID string) (domain.Member, error) {
	m, ok := f.members[memberID]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return m, nil
}

func (f *fakeStore) GetMemberForUpdate(ctx context.Context, memberID string) (domain.Member, error) {
	return f.GetMember(ctx, memberID)
}

func (f *fakeStore) CountOpenLoans(_ context.Context, memberID string) (int, error) {
	n := 0
	for _, l := range f.loans {
		if l.MemberID == memberID && (l.Status == domain.LoanStatusActive || l.Status == domain.LoanStatusOverdue) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountOverdueLoans(_ context.Context, memberID string, today time.Time) (int, error) {
	n := 0
	for _, l := range f.loans {
		if l.MemberID == memberID && l.IsOverdueOn(today) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) SumFines(_ context.Context, memberID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range f.loans {
		if l.MemberID == memberID {
			total = total.Add(l.FineAmount)
		}
	}
	return total, nil
}

func (f *fakeStore) GetBookForUpdate(_ context.Context, bookID string) (domain.Book, error) {
	b, ok := f.books[bookID]
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeStore) HasActiveReservationByOther(_ context.Context, bookID, memberID string) (bool, error) {
	for _, r := range f.reservations {
		if r.BookID == bookID && r.MemberID != memberID && r.Status == domain.ReservationStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateLoan(_ context.Context, loan domain.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeStore) AdjustAvailableCopies(_ context.Context, bookID string, delta int) error {
	b, ok := f.books[bookID]
	if !ok {
		return domain.ErrBookNotFound
	}
	b.AvailableCopies += delta
	f.books[bookID] = b
	return nil
}

func (f *fakeStore) FulfillMemberReservation(_ context.Context, bookID, memberID string) (string, error) {
	for id, r := range f.reservations {
		if r.BookID == bookID && r.MemberID == memberID && r.Status == domain.ReservationStatusActive {
			r.Status = domain.ReservationStatusFulfilled
			f.reservations[id] = r
			return id, nil
		}
	}
	return "", nil
}

func (f *fakeStore) GetLoanForUpdate(_ context.Context, loanID, memberID string) (domain.Loan, error) {
	l, ok := f.loans[loanID]
	if !ok || l.MemberID != memberID {
		return domain.Loan{}, domain.ErrLoanNotFound
	}
	return l, nil
}

func (f *fakeStore) MarkLoanReturned(_ context.Context, loanID string, returnDate time.Time, fine decimal.Decimal) error {
	l, ok := f.loans[loanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	rd := returnDate
	l.ReturnDate = &rd
	l.Status = domain.LoanStatusReturned
	l.FineAmount = fine
	f.loans[loanID] = l
	return nil
}

func (f *fakeStore) FulfillOldestReservation(_ context.Context, bookID string) (string, error) {
	var queue []domain.Reservation
	for _, r := range f.reservations {
		if r.BookID == bookID && r.Status == domain.ReservationStatusActive {
			queue = append(queue, r)
		}
	}
	if len(queue) == 0 {
		return "", nil
	}
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].ReservationDate.Equal(queue[j].ReservationDate) {
			return queue[i].ID < queue[j].ID
		}
		return queue[i].ReservationDate.Before(queue[j].ReservationDate)
	})
	oldest := queue[0]
	oldest.Status = domain.ReservationStatusFulfilled
	f.reservations[oldest.ID] = oldest
	return oldest.ID, nil
}

func (f *fakeStore) FindActiveReservation(_ context.Context, bookID, memberID string) (*domain.Reservation, error) {
	for _, r := range f.reservations {
		if r.BookID == bookID && r.MemberID == memberID && r.Status == domain.ReservationStatusActive {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateReservation(_ context.Context, r domain.Reservation) error {
	f.reservations[r.ID] = r
	return nil
}

func (f *fakeStore) GetReservationForUpdate(_ context.Context, reservationID string) (domain.Reservation, error) {
	r, ok := f.reservations[reservationID]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (f *fakeStore) UpdateReservationStatus(_ context.Context, reservationID string, status domain.ReservationStatus) error {
	r, ok := f.reservations[reservationID]
	if !ok {
		return domain.ErrReservationNotFound
	}
	r.Status = status
	f.reservations[reservationID] = r
	return nil
}
