package service

import (
	"context"

	"menagerie/events"
	"menagerie/models"

	"github.com/google/uuid"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account, or nil if it does not exist
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetByIDForUpdate retrieves an account and locks its row until the
	// transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error)

	// Create inserts the account; it returns false if the id already exists
	Create(ctx context.Context, account *models.Account) (bool, error)

	// Update writes level, experience, balances, team and daily claim time
	Update(ctx context.Context, account *models.Account) error
}

// CreatureRepository defines the interface for owned creature data access
type CreatureRepository interface {
	// GetByID retrieves a creature, or nil if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*models.OwnedCreature, error)

	// GetByIDsForUpdate locks the owner's creatures among ids in id order.
	// Ids the owner does not own are absent from the result.
	GetByIDsForUpdate(ctx context.Context, ownerID string, ids []uuid.UUID) ([]*models.OwnedCreature, error)

	// ListByOwner returns every creature an account owns
	ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnedCreature, error)

	Create(ctx context.Context, creature *models.OwnedCreature) error
	Update(ctx context.Context, creature *models.OwnedCreature) error
	Delete(ctx context.Context, ids []uuid.UUID) error
}

// TransactionLogRepository defines the interface for the append-only log
type TransactionLogRepository interface {
	// Record appends an entry
	Record(ctx context.Context, entry *models.TransactionLogEntry) error

	// ListByAccount returns the newest entries first
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransactionLogEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction and discards queued events
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	CreatureRepository() CreatureRepository
	TransactionLogRepository() TransactionLogRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// Ledger is the single write path for balances and owned creatures
type Ledger interface {
	// Mutate applies op to the account inside one transaction
	Mutate(ctx context.Context, accountID string, op Operation) (*models.MutationResult, error)

	// CreateAccount returns the account, creating it with the onboarding
	// grant if it does not exist
	CreateAccount(ctx context.Context, accountID string) (*models.Account, error)
}

// RateLimiter admits or rejects calls per account
type RateLimiter interface {
	// Check records the call if allowed; otherwise it returns the seconds
	// to wait
	Check(accountID string) (bool, int)
}

// ProjectionCache stores read projections per account
type ProjectionCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	InvalidatePrefix(prefix string) int
}
