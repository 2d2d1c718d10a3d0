package service

import (
	"context"

	"menagerie/metrics"
	"menagerie/models"

	log "github.com/sirupsen/logrus"
)

// GuardedLedger admits every mutation through a per-account rate limiter
// before handing it to the wrapped ledger
type GuardedLedger struct {
	commands

	ledger  Ledger
	limiter RateLimiter
	metrics *metrics.Metrics
}

// NewGuardedLedger wraps ledger with limiter
func NewGuardedLedger(ledger Ledger, limiter RateLimiter) *GuardedLedger {
	g := &GuardedLedger{
		ledger:  ledger,
		limiter: limiter,
	}
	g.commands = commands{ledger: g}
	return g
}

// WithMetrics counts rejected calls
func (g *GuardedLedger) WithMetrics(m *metrics.Metrics) *GuardedLedger {
	g.metrics = m
	return g
}

// Mutate rejects the call with a RateLimitedError when the account is over
// its limit; nothing is touched in that case
func (g *GuardedLedger) Mutate(ctx context.Context, accountID string, op Operation) (*models.MutationResult, error) {
	allowed, cooldown := g.limiter.Check(accountID)
	if !allowed {
		g.metrics.RecordRateLimited()
		log.WithFields(log.Fields{
			"account":    accountID,
			"retryAfter": cooldown,
		}).Debug("Rate limited")
		return nil, &models.RateLimitedError{RetryAfterSeconds: cooldown}
	}
	return g.ledger.Mutate(ctx, accountID, op)
}

// CreateAccount is not rate limited; it is a read for existing accounts
func (g *GuardedLedger) CreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	return g.ledger.CreateAccount(ctx, accountID)
}
