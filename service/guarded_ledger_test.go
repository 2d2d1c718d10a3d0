package service

import (
	"context"
	"testing"
	"time"

	"menagerie/metrics"
	"menagerie/models"
	"menagerie/ratelimit"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGuardedLedger_Allowed(t *testing.T) {
	ctx := context.Background()
	inner := new(MockLedger)
	limiter := new(MockRateLimiter)
	guarded := NewGuardedLedger(inner, limiter)

	expected := &models.MutationResult{Balance: &models.BalanceChange{Currency: models.CurrencyCoins, NewValue: 10}}
	limiter.On("Check", "alice").Return(true, 0)
	inner.On("Mutate", ctx, "alice", AdjustBalance{Currency: models.CurrencyCoins, Delta: 10, Mode: AdjustGive}).Return(expected, nil)

	change, err := guarded.AdjustBalance(ctx, "alice", models.CurrencyCoins, 10, AdjustGive)
	require.NoError(t, err)
	assert.Equal(t, int64(10), change.NewValue)

	inner.AssertExpectations(t)
	limiter.AssertExpectations(t)
}

func TestGuardedLedger_Rejected(t *testing.T) {
	ctx := context.Background()
	inner := new(MockLedger)
	limiter := new(MockRateLimiter)
	m := metrics.New()
	guarded := NewGuardedLedger(inner, limiter).WithMetrics(m)

	limiter.On("Check", "alice").Return(false, 42)

	_, err := guarded.Summon(ctx, "alice", "standard")

	var limited *models.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 42, limited.RetryAfterSeconds)
	assert.ErrorIs(t, err, models.ErrRateLimited)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited))

	inner.AssertNotCalled(t, "Mutate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuardedLedger_CreateAccountBypassesLimiter(t *testing.T) {
	ctx := context.Background()
	inner := new(MockLedger)
	limiter := new(MockRateLimiter)
	guarded := NewGuardedLedger(inner, limiter)

	inner.On("CreateAccount", ctx, "alice").Return(&models.Account{ID: "alice", Level: 1}, nil)

	account, err := guarded.CreateAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.ID)
	limiter.AssertNotCalled(t, "Check", mock.Anything)
}

func TestGuardedLedger_WithRealLimiter(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seed(&models.Account{ID: "alice", Level: 1})
	f.seed(&models.Account{ID: "bob", Level: 1})

	clock := clockwork.NewFakeClockAt(testNow)
	guarded := NewGuardedLedger(f.ledger, ratelimit.NewWithClock(3, time.Minute, clock))

	for i := 0; i < 3; i++ {
		_, err := guarded.AdjustBalance(ctx, "alice", models.CurrencyCoins, 1, AdjustGive)
		require.NoError(t, err)
	}

	_, err := guarded.AdjustBalance(ctx, "alice", models.CurrencyCoins, 1, AdjustGive)
	var limited *models.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 60, limited.RetryAfterSeconds)
	assert.Equal(t, int64(3), f.store.account("alice").Balances.Coins, "rejected call touched nothing")

	// limits are per account
	_, err = guarded.AdjustBalance(ctx, "bob", models.CurrencyCoins, 1, AdjustGive)
	require.NoError(t, err)

	clock.Advance(time.Minute + time.Second)
	_, err = guarded.AdjustBalance(ctx, "alice", models.CurrencyCoins, 1, AdjustGive)
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.store.account("alice").Balances.Coins)
}
