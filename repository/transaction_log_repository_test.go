package repository

import (
	"context"
	"testing"

	"menagerie/models"
	"menagerie/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionLogRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	_, err := NewAccountRepository(testDB.DB).Create(context.Background(), testutil.CreateTestAccount("dave"))
	require.NoError(t, err)

	repo := NewTransactionLogRepository(testDB.DB)
	ctx := context.Background()

	first := testutil.CreateTestLogEntry("dave", models.OperationGive, models.CurrencyCoins, 0, 100)
	require.NoError(t, repo.Record(ctx, first))
	assert.NotZero(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := testutil.CreateTestLogEntry("dave", models.OperationUpgrade, models.CurrencyEssence, 100, 40)
	second.Metadata = nil
	require.NoError(t, repo.Record(ctx, second))

	entries, err := repo.ListByAccount(ctx, "dave", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, models.OperationUpgrade, entries[0].Operation)
	assert.Equal(t, int64(-60), entries[0].Delta)
	assert.Empty(t, entries[0].Metadata)

	assert.Equal(t, models.CurrencyCoins, entries[1].Currency)
	assert.Equal(t, true, entries[1].Metadata["test"])

	limited, err := repo.ListByAccount(ctx, "dave", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
