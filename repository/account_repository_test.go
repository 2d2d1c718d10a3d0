package repository

import (
	"context"
	"testing"
	"time"

	"menagerie/models"
	"menagerie/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB)
	creatures := NewCreatureRepository(testDB.DB)
	ctx := context.Background()

	t.Run("missing account", func(t *testing.T) {
		account, err := repo.GetByID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create is idempotent", func(t *testing.T) {
		account := testutil.CreateTestAccount("alice")
		created, err := repo.Create(ctx, account)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Create(ctx, testutil.CreateTestAccount("alice"))
		require.NoError(t, err)
		assert.False(t, created)

		stored, err := repo.GetByID(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, account.Balances, stored.Balances)
		assert.Equal(t, 1, stored.Level)
		assert.Nil(t, stored.Team.Main)
		assert.Nil(t, stored.LastDailyClaim)
	})

	t.Run("update round trips every column", func(t *testing.T) {
		account := testutil.CreateTestAccount("bob")
		_, err := repo.Create(ctx, account)
		require.NoError(t, err)

		creature := testutil.CreateTestCreature("bob", "emberling")
		require.NoError(t, creatures.Create(ctx, creature))

		claimed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		account.Level = 7
		account.Experience = 42
		account.Balances.Gems = 3
		account.Team.Set(models.TeamSlotSupport1, &creature.ID)
		account.LastDailyClaim = &claimed
		require.NoError(t, repo.Update(ctx, account))

		stored, err := repo.GetByID(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, 7, stored.Level)
		assert.Equal(t, int64(42), stored.Experience)
		assert.Equal(t, int64(3), stored.Balances.Gems)
		require.NotNil(t, stored.Team.Support1)
		assert.Equal(t, creature.ID, *stored.Team.Support1)
		require.NotNil(t, stored.LastDailyClaim)
		assert.True(t, claimed.Equal(*stored.LastDailyClaim))
	})

	t.Run("negative balance violates constraint", func(t *testing.T) {
		account := testutil.CreateTestAccount("carol")
		_, err := repo.Create(ctx, account)
		require.NoError(t, err)

		account.Balances.Coins = -1
		assert.Error(t, repo.Update(ctx, account))
	})

	t.Run("update of missing account", func(t *testing.T) {
		err := repo.Update(ctx, testutil.CreateTestAccount("ghost"))
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
	})
}
