package postgres

import (
	"context"
	"testing"

	"github.com/cimillas/shelfwise/internal/domain"
	"github.com/cimillas/shelfwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberRepository_GetMember(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)
	repo := NewMemberRepository(pool)

	id := testutil.InsertMember(t, ctx, pool, "lib", domain.MembershipStatusActive, domain.MembershipTypeStaff)

	m, err := repo.GetMember(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "lib", m.Name)
	assert.Equal(t, "lib@example.org", m.Email)
	assert.True(t, m.IsActive())
	assert.True(t, m.IsStaff())

	_, err = repo.GetMember(ctx, "00000000-0000-0000-0000-000000000009")
	assert.Equal(t, domain.ErrMemberNotFound, err)

	_, err = repo.GetMember(ctx, "42")
	assert.Equal(t, domain.ErrInvalidID, err)
}
