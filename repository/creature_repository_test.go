package repository

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"menagerie/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatureRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	accounts := NewAccountRepository(testDB.DB)
	repo := NewCreatureRepository(testDB.DB)
	ctx := context.Background()

	for _, id := range []string{"owner", "other"} {
		_, err := accounts.Create(ctx, testutil.CreateTestAccount(id))
		require.NoError(t, err)
	}

	var owned []uuid.UUID
	for i := 0; i < 3; i++ {
		c := testutil.CreateTestCreature("owner", "emberling")
		require.NoError(t, repo.Create(ctx, c))
		owned = append(owned, c.ID)
	}
	foreign := testutil.CreateTestCreature("other", "emberling")
	require.NoError(t, repo.Create(ctx, foreign))

	t.Run("get by id", func(t *testing.T) {
		c, err := repo.GetByID(ctx, owned[0])
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "owner", c.OwnerID)
		assert.Equal(t, 1.0, c.StatMultiplier)

		missing, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("list by owner", func(t *testing.T) {
		list, err := repo.ListByOwner(ctx, "owner")
		require.NoError(t, err)
		assert.Len(t, list, 3)
	})

	t.Run("lock returns only owned rows in id order", func(t *testing.T) {
		tx, err := testDB.DB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		locked, err := newCreatureRepositoryWithTx(tx).GetByIDsForUpdate(ctx, "owner", append([]uuid.UUID{foreign.ID}, owned...))
		require.NoError(t, err)
		require.Len(t, locked, 3)

		ids := make([]uuid.UUID, len(locked))
		for i, c := range locked {
			ids[i] = c.ID
		}
		assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool {
			return bytes.Compare(ids[i][:], ids[j][:]) < 0
		}))
	})

	t.Run("update and delete", func(t *testing.T) {
		c, err := repo.GetByID(ctx, owned[1])
		require.NoError(t, err)

		c.Level = 20
		c.LimitBreaks = 1
		c.StatMultiplier = 1.1
		c.Locked = true
		require.NoError(t, repo.Update(ctx, c))

		stored, err := repo.GetByID(ctx, owned[1])
		require.NoError(t, err)
		assert.Equal(t, 20, stored.Level)
		assert.Equal(t, 1, stored.LimitBreaks)
		assert.InDelta(t, 1.1, stored.StatMultiplier, 1e-9)
		assert.True(t, stored.Locked)

		require.NoError(t, repo.Delete(ctx, []uuid.UUID{owned[1], owned[2]}))
		list, err := repo.ListByOwner(ctx, "owner")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		assert.Error(t, repo.Delete(ctx, []uuid.UUID{owned[1]}))
	})
}
