package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"menagerie/events"
	"menagerie/models"

	"github.com/google/uuid"
)

// memStore is an in-memory UnitOfWorkFactory. GetByIDForUpdate takes a
// per-account lock held until Commit or Rollback, and writes are staged
// until Commit, so concurrent ledger calls behave as they do on postgres.
type memStore struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	creatures map[uuid.UUID]models.OwnedCreature
	log       []models.TransactionLogEntry
	rowLocks  map[string]*sync.Mutex
	bus       *events.Bus

	eventsMu sync.Mutex
	events   []events.Event
}

func newMemStore() *memStore {
	s := &memStore{
		accounts:  make(map[string]models.Account),
		creatures: make(map[uuid.UUID]models.OwnedCreature),
		rowLocks:  make(map[string]*sync.Mutex),
		bus:       events.NewBus(),
	}
	for _, et := range []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeAccountCreated,
		events.EventTypeCreatureSummoned,
		events.EventTypeCreatureUpgraded,
		events.EventTypeLimitBreak,
		events.EventTypeCreaturesDissolved,
		events.EventTypeLevelUp,
	} {
		s.bus.Subscribe(et, func(ctx context.Context, e events.Event) {
			s.eventsMu.Lock()
			defer s.eventsMu.Unlock()
			s.events = append(s.events, e)
		})
	}
	return s
}

func (s *memStore) Create() UnitOfWork {
	return &memUnitOfWork{
		store:     s,
		accounts:  make(map[string]models.Account),
		creatures: make(map[uuid.UUID]*models.OwnedCreature),
		bus:       events.NewTransactionalBus(s.bus),
	}
}

func (s *memStore) rowLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	return l
}

// seed helpers write straight to committed state

func (s *memStore) putAccount(a *models.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = *a
}

func (s *memStore) putCreature(c *models.OwnedCreature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creatures[c.ID] = *c
}

func (s *memStore) account(id string) *models.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil
	}
	return &a
}

func (s *memStore) creature(id uuid.UUID) *models.OwnedCreature {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creatures[id]
	if !ok {
		return nil
	}
	return &c
}

func (s *memStore) creaturesOf(ownerID string) []models.OwnedCreature {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OwnedCreature
	for _, c := range s.creatures {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out
}

func (s *memStore) logOf(accountID string) []models.TransactionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TransactionLogEntry
	for _, e := range s.log {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) publishedEvents() []events.Event {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

type memUnitOfWork struct {
	store   *memStore
	ctx     context.Context
	started bool
	held    []*sync.Mutex
	heldIDs map[string]bool

	accounts  map[string]models.Account
	creatures map[uuid.UUID]*models.OwnedCreature // nil marks a delete
	log       []models.TransactionLogEntry
	bus       *events.TransactionalBus
}

func (u *memUnitOfWork) Begin(ctx context.Context) error {
	if u.started {
		return fmt.Errorf("transaction already started")
	}
	u.started = true
	u.ctx = ctx
	u.heldIDs = make(map[string]bool)
	return nil
}

func (u *memUnitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}
	s := u.store
	s.mu.Lock()
	for id, a := range u.accounts {
		s.accounts[id] = a
	}
	for id, c := range u.creatures {
		if c == nil {
			delete(s.creatures, id)
			continue
		}
		s.creatures[id] = *c
	}
	s.log = append(s.log, u.log...)
	s.mu.Unlock()

	u.release()
	return u.bus.Flush(u.ctx)
}

func (u *memUnitOfWork) Rollback() error {
	if !u.started {
		return nil
	}
	u.accounts = make(map[string]models.Account)
	u.creatures = make(map[uuid.UUID]*models.OwnedCreature)
	u.log = nil
	u.bus.Discard()
	u.release()
	return nil
}

func (u *memUnitOfWork) release() {
	u.started = false
	for _, l := range u.held {
		l.Unlock()
	}
	u.held = nil
}

func (u *memUnitOfWork) mustStart() {
	if !u.started {
		panic("unit of work not started - call Begin() first")
	}
}

func (u *memUnitOfWork) AccountRepository() AccountRepository {
	u.mustStart()
	return memAccounts{u}
}

func (u *memUnitOfWork) CreatureRepository() CreatureRepository {
	u.mustStart()
	return memCreatures{u}
}

func (u *memUnitOfWork) TransactionLogRepository() TransactionLogRepository {
	u.mustStart()
	return memLog{u}
}

func (u *memUnitOfWork) EventBus() EventPublisher {
	u.mustStart()
	return u.bus
}

type memAccounts struct{ u *memUnitOfWork }

func (r memAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := r.u.accounts[id]; ok {
		return &a, nil
	}
	return r.u.store.account(id), nil
}

func (r memAccounts) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	if !r.u.heldIDs[id] {
		l := r.u.store.rowLock(id)
		l.Lock()
		r.u.held = append(r.u.held, l)
		r.u.heldIDs[id] = true
	}
	return r.GetByID(ctx, id)
}

func (r memAccounts) Create(ctx context.Context, account *models.Account) (bool, error) {
	if existing, _ := r.GetByID(ctx, account.ID); existing != nil {
		return false, nil
	}
	r.u.accounts[account.ID] = *account
	return true, nil
}

func (r memAccounts) Update(ctx context.Context, account *models.Account) error {
	if existing, _ := r.GetByID(ctx, account.ID); existing == nil {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, account.ID)
	}
	for _, c := range models.AllCurrencies {
		if v, _ := account.Balances.Get(c); v < 0 {
			return fmt.Errorf("check constraint violated for %s", c)
		}
	}
	r.u.accounts[account.ID] = *account
	return nil
}

type memCreatures struct{ u *memUnitOfWork }

func (r memCreatures) GetByID(ctx context.Context, id uuid.UUID) (*models.OwnedCreature, error) {
	if c, ok := r.u.creatures[id]; ok {
		if c == nil {
			return nil, nil
		}
		cp := *c
		return &cp, nil
	}
	return r.u.store.creature(id), nil
}

func (r memCreatures) GetByIDsForUpdate(ctx context.Context, ownerID string, ids []uuid.UUID) ([]*models.OwnedCreature, error) {
	var out []*models.OwnedCreature
	for _, id := range ids {
		c, _ := r.GetByID(ctx, id)
		if c != nil && c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCreatures) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnedCreature, error) {
	var out []*models.OwnedCreature
	for _, c := range r.u.store.creaturesOf(ownerID) {
		cp := c
		if staged, ok := r.u.creatures[c.ID]; ok {
			if staged == nil {
				continue
			}
			cp = *staged
		}
		out = append(out, &cp)
	}
	for id, c := range r.u.creatures {
		if c != nil && c.OwnerID == ownerID && r.u.store.creature(id) == nil {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memCreatures) Create(ctx context.Context, creature *models.OwnedCreature) error {
	cp := *creature
	r.u.creatures[creature.ID] = &cp
	return nil
}

func (r memCreatures) Update(ctx context.Context, creature *models.OwnedCreature) error {
	if existing, _ := r.GetByID(ctx, creature.ID); existing == nil {
		return fmt.Errorf("creature %s not found", creature.ID)
	}
	cp := *creature
	r.u.creatures[creature.ID] = &cp
	return nil
}

func (r memCreatures) Delete(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if existing, _ := r.GetByID(ctx, id); existing == nil {
			return fmt.Errorf("creature %s not found", id)
		}
		r.u.creatures[id] = nil
	}
	return nil
}

type memLog struct{ u *memUnitOfWork }

func (r memLog) Record(ctx context.Context, entry *models.TransactionLogEntry) error {
	r.u.log = append(r.u.log, *entry)
	return nil
}

func (r memLog) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransactionLogEntry, error) {
	entries := r.u.store.logOf(accountID)
	var out []*models.TransactionLogEntry
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := entries[i]
		out = append(out, &e)
	}
	return out, nil
}
