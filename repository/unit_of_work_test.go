package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"menagerie/events"
	"menagerie/models"
	"menagerie/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	var received []events.Event
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	t.Run("getters panic before begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.AccountRepository() })
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.AccountRepository().Create(ctx, testutil.CreateTestAccount("rolled"))
		require.NoError(t, err)
		uow.EventBus().Publish(events.BalanceChangeEvent{AccountID: "rolled"})
		require.NoError(t, uow.Rollback())

		account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "rolled")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("commit persists and flushes events", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.AccountRepository().Create(ctx, testutil.CreateTestAccount("committed"))
		require.NoError(t, err)
		entry := testutil.CreateTestLogEntry("committed", models.OperationOnboarding, models.CurrencyCoins, 0, 10000)
		require.NoError(t, uow.TransactionLogRepository().Record(ctx, entry))
		uow.EventBus().Publish(events.BalanceChangeEvent{AccountID: "committed"})
		require.NoError(t, uow.Commit())

		// rollback after commit is a no-op
		require.NoError(t, uow.Rollback())

		account, err := NewAccountRepository(testDB.DB).GetByID(ctx, "committed")
		require.NoError(t, err)
		assert.NotNil(t, account)

		assert.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			for _, e := range received {
				if e.(events.BalanceChangeEvent).AccountID == "rolled" {
					return false
				}
			}
			return len(received) == 1
		}, time.Second, 10*time.Millisecond)
	})
}
