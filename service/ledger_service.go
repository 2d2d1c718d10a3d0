package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"menagerie/cache"
	"menagerie/events"
	"menagerie/gamedata"
	"menagerie/metrics"
	"menagerie/models"
	"menagerie/rules"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// LedgerService is the only writer of balances and owned creatures. Every
// call runs in one transaction holding the account row lock, then the
// referenced creature row locks in id order.
type LedgerService struct {
	commands

	uowFactory UnitOfWorkFactory
	data       *gamedata.GameData
	rng        rules.Random
	selector   *rules.Selector
	clock      clockwork.Clock
	cache      ProjectionCache
	metrics    *metrics.Metrics
}

// NewLedgerService creates a ledger. projections and m may be nil.
func NewLedgerService(
	uowFactory UnitOfWorkFactory,
	data *gamedata.GameData,
	rng rules.Random,
	clock clockwork.Clock,
	projections ProjectionCache,
	m *metrics.Metrics,
) *LedgerService {
	s := &LedgerService{
		uowFactory: uowFactory,
		data:       data,
		rng:        rng,
		selector:   rules.NewSelector(rng),
		clock:      clock,
		cache:      projections,
		metrics:    m,
	}
	s.commands = commands{ledger: s}
	return s
}

// Mutate applies op to the account atomically
func (s *LedgerService) Mutate(ctx context.Context, accountID string, op Operation) (result *models.MutationResult, err error) {
	if op == nil {
		return nil, invalidArgument("nil operation")
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordLedger(op.Kind().String(), err, time.Since(start))
		if err != nil {
			log.WithFields(log.Fields{
				"account":   accountID,
				"operation": op.Kind(),
				"outcome":   metrics.Outcome(err),
			}).WithError(err).Debug("Ledger operation rejected")
		}
	}()

	if err := op.validate(s.data.Economy); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByIDForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}

	creatures := make(map[uuid.UUID]*models.OwnedCreature)
	if ids := sortedIDs(op.creatureIDs()); len(ids) > 0 {
		locked, err := uow.CreatureRepository().GetByIDsForUpdate(ctx, accountID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to lock creatures: %w", err)
		}
		for _, c := range locked {
			creatures[c.ID] = c
		}
	}

	m := &mutation{
		ctx:       ctx,
		uow:       uow,
		data:      s.data,
		selector:  s.selector,
		rng:       s.rng,
		now:       s.clock.Now().UTC(),
		account:   account,
		creatures: creatures,
	}
	result, err = op.apply(m)
	if err != nil {
		return nil, err
	}

	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.invalidate(accountID)

	log.WithFields(log.Fields{
		"account":   accountID,
		"operation": op.Kind(),
	}).Info("Ledger operation committed")

	return result, nil
}

// CreateAccount returns the account, creating it with the onboarding grant
// and starter creature if it does not exist yet
func (s *LedgerService) CreateAccount(ctx context.Context, accountID string) (account *models.Account, err error) {
	if accountID == "" {
		return nil, invalidArgument("empty account id")
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordLedger(models.OperationOnboarding.String(), err, time.Since(start))
	}()

	e := s.data.Economy
	starter, err := s.data.Catalog.MustGet(e.Onboarding.StarterCreatureID)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := s.clock.Now().UTC()
	account = &models.Account{ID: accountID, Level: 1}
	for c, amount := range e.Onboarding.StartingBalances {
		if err := account.Balances.Set(c, amount); err != nil {
			return nil, err
		}
	}

	created, err := uow.AccountRepository().Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if !created {
		// lost the race to a concurrent onboarding of the same id
		existing, err := uow.AccountRepository().GetByID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("failed to get account: %w", err)
		}
		return existing, nil
	}

	creature := newOwnedCreature(uuid.New(), accountID, starter.ID, e.Progression.StartingCreatureLevel, now)
	if err := uow.CreatureRepository().Create(ctx, creature); err != nil {
		return nil, fmt.Errorf("failed to create starter creature: %w", err)
	}
	account.Team.Main = &creature.ID
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	for _, c := range models.AllCurrencies {
		amount, _ := account.Balances.Get(c)
		err := RecordBalanceChange(ctx, uow, &models.TransactionLogEntry{
			AccountID: accountID,
			Operation: models.OperationOnboarding,
			Currency:  c,
			Before:    0,
			After:     amount,
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
	}
	uow.EventBus().Publish(events.AccountCreatedEvent{
		AccountID:       accountID,
		StarterCreature: creature.ID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.invalidate(accountID)

	log.WithFields(log.Fields{
		"account": accountID,
		"starter": starter.ID,
	}).Info("Account created")

	return account, nil
}

func (s *LedgerService) invalidate(accountID string) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(cache.AccountPrefix(accountID))
}

// sortedIDs returns ids in the order the store locks them
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return sorted
}
