package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/cimillas/shelfwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewReservationRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("CreateReservation and FindActiveReservation", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		memberID := testutil.InsertActiveMember(t, ctx, pool, "ann")
		bookID := testutil.InsertBook(t, ctx, pool, "Persuasion", 1, 0)

		res := domain.Reservation{
			ID:              "0b1d5c9e-7a53-4a43-9d38-5c2a4f7e1a10",
			MemberID:        memberID,
			BookID:          bookID,
			ReservationDate: now,
			ExpiryDate:      now.Add(48 * time.Hour),
			Status:          domain.ReservationStatusActive,
		}
		require.NoError(t, repo.CreateReservation(ctx, res))

		got, err := repo.FindActiveReservation(ctx, bookID, memberID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, res.ID, got.ID)
		assert.True(t, res.ExpiryDate.Equal(got.ExpiryDate))

		dup := res
		dup.ID = "0b1d5c9e-7a53-4a43-9d38-5c2a4f7e1a11"
		assert.Equal(t, domain.ErrDuplicateReservation, repo.CreateReservation(ctx, dup))

		other, err := repo.FindActiveReservation(ctx, bookID, testutil.InsertActiveMember(t, ctx, pool, "bob"))
		require.NoError(t, err)
		assert.Nil(t, other)
	})

	t.Run("GetReservationForUpdate and UpdateReservationStatus", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		memberID := testutil.InsertActiveMember(t, ctx, pool, "ann")
		bookID := testutil.InsertBook(t, ctx, pool, "Persuasion", 1, 0)
		id := testutil.InsertReservation(t, ctx, pool, domain.Reservation{
			MemberID: memberID, BookID: bookID,
			ReservationDate: now, ExpiryDate: now.Add(48 * time.Hour),
			Status: domain.ReservationStatusActive,
		})

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			res, err := repo.GetReservationForUpdate(txCtx, id)
			require.NoError(t, err)
			assert.Equal(t, memberID, res.MemberID)
			return repo.UpdateReservationStatus(txCtx, id, domain.ReservationStatusExpired)
		})
		require.NoError(t, err)

		res, err := repo.GetReservationForUpdate(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusExpired, res.Status)

		_, err = repo.GetReservationForUpdate(ctx, "00000000-0000-0000-0000-000000000005")
		assert.Equal(t, domain.ErrReservationNotFound, err)

		_, err = repo.GetReservationForUpdate(ctx, "not-a-uuid")
		assert.Equal(t, domain.ErrInvalidID, err)
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		memberID := testutil.InsertActiveMember(t, ctx, pool, "ann")
		bookID := testutil.InsertBook(t, ctx, pool, "Persuasion", 1, 0)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			require.NoError(t, repo.CreateReservation(txCtx, domain.Reservation{
				ID: "0b1d5c9e-7a53-4a43-9d38-5c2a4f7e1a12", MemberID: memberID, BookID: bookID,
				ReservationDate: now, ExpiryDate: now.Add(time.Hour), Status: domain.ReservationStatusActive,
			}))
			return domain.ErrBookAlreadyAvailable
		})
		assert.Equal(t, domain.ErrBookAlreadyAvailable, err)

		got, err := repo.FindActiveReservation(ctx, bookID, memberID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
