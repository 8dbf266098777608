package services

import (
	"context"
	"testing"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBudgetFixture(t *testing.T) (*BudgetService, *fakeRepoManager, string) {
	t.Helper()
	m := newFakeRepoManager()
	user, err := m.users.Create(context.Background(), &models.User{Username: "alice"})
	require.NoError(t, err)
	return NewBudgetService(newTxCapableDB(t), m), m, user.ID
}

func TestSet_UpsertsByMonth(t *testing.T) {
	s, _, userID := newBudgetFixture(t)
	ctx := context.Background()

	b, err := s.Set(ctx, userID, "food", 300, 2026, 9)
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)

	// same month replaces the amount instead of creating a second row
	_, err = s.Set(ctx, userID, "food", 250, 2026, 9)
	require.NoError(t, err)

	all, err := s.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 250.0, all[0].Amount)
}

func TestSet_Validation(t *testing.T) {
	s, _, userID := newBudgetFixture(t)
	ctx := context.Background()

	_, err := s.Set(ctx, userID, "", -1, 2026, 9)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = s.Set(ctx, userID, "", 100, 2026, 13)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUsage(t *testing.T) {
	s, m, userID := newBudgetFixture(t)
	ctx := context.Background()

	_, err := s.Set(ctx, userID, "food", 100, 2026, 9)
	require.NoError(t, err)

	seed := []*models.Transaction{
		{ID: "t1", UserID: userID, Amount: 80, Category: "food", Date: "2026-09-03"},
		{ID: "t2", UserID: userID, Amount: 50, Category: "food", Date: "2026-09-10"},
		{ID: "t3", UserID: userID, Amount: 40, Category: "rent", Date: "2026-09-01"},
		{ID: "t4", UserID: userID, Amount: 99, Category: "food", Date: "2026-08-30"},
	}
	for _, tx := range seed {
		require.NoError(t, m.transactions.CreateOrUpdate(ctx, tx))
	}

	usage, err := s.Usage(ctx, userID, "food", 2026, 9)
	require.NoError(t, err)
	assert.True(t, usage.Over)
	assert.InDelta(t, 30.0, usage.OverAmount, 1e-9)
	assert.InDelta(t, 1.3, usage.Rate, 1e-9)
}

func TestUsage_NoBudgetMeansUnlimited(t *testing.T) {
	s, _, userID := newBudgetFixture(t)

	usage, err := s.Usage(context.Background(), userID, "food", 2026, 9)
	require.NoError(t, err)
	assert.False(t, usage.Over)
	assert.Zero(t, usage.Rate)
}

func TestDelete_ScopedToOwner(t *testing.T) {
	s, m, userID := newBudgetFixture(t)
	ctx := context.Background()

	other, err := m.users.Create(ctx, &models.User{Username: "bob"})
	require.NoError(t, err)

	b, err := s.Set(ctx, userID, "", 500, 2026, 9)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, other.ID, b.ID), common.ErrNotFound)
	assert.NoError(t, s.Delete(ctx, userID, b.ID))
}
