package service

import (
	"context"

	"menagerie/events"
	"menagerie/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) (bool, error) {
	args := m.Called(ctx, account)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockCreatureRepository is a mock implementation of CreatureRepository
type MockCreatureRepository struct {
	mock.Mock
}

func (m *MockCreatureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OwnedCreature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnedCreature), args.Error(1)
}

func (m *MockCreatureRepository) GetByIDsForUpdate(ctx context.Context, ownerID string, ids []uuid.UUID) ([]*models.OwnedCreature, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OwnedCreature), args.Error(1)
}

func (m *MockCreatureRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnedCreature, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OwnedCreature), args.Error(1)
}

func (m *MockCreatureRepository) Create(ctx context.Context, creature *models.OwnedCreature) error {
	args := m.Called(ctx, creature)
	return args.Error(0)
}

func (m *MockCreatureRepository) Update(ctx context.Context, creature *models.OwnedCreature) error {
	args := m.Called(ctx, creature)
	return args.Error(0)
}

func (m *MockCreatureRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockTransactionLogRepository is a mock implementation of TransactionLogRepository
type MockTransactionLogRepository struct {
	mock.Mock
}

func (m *MockTransactionLogRepository) Record(ctx context.Context, entry *models.TransactionLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTransactionLogRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransactionLogEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TransactionLogEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	args := m.Called()
	return args.Get(0).(AccountRepository)
}

func (m *MockUnitOfWork) CreatureRepository() CreatureRepository {
	args := m.Called()
	return args.Get(0).(CreatureRepository)
}

func (m *MockUnitOfWork) TransactionLogRepository() TransactionLogRepository {
	args := m.Called()
	return args.Get(0).(TransactionLogRepository)
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	args := m.Called()
	return args.Get(0).(EventPublisher)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockLedger is a mock implementation of Ledger
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Mutate(ctx context.Context, accountID string, op Operation) (*models.MutationResult, error) {
	args := m.Called(ctx, accountID, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MutationResult), args.Error(1)
}

func (m *MockLedger) CreateAccount(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockRateLimiter is a mock implementation of RateLimiter
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Check(accountID string) (bool, int) {
	args := m.Called(accountID)
	return args.Bool(0), args.Int(1)
}
