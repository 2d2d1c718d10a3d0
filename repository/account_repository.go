package repository

import (
	"context"
	"errors"
	"fmt"

	"menagerie/database"
	"menagerie/models"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `
	id, level, experience,
	coins, gems, essence, crystals, shards,
	main_creature_id, support1_creature_id, support2_creature_id,
	last_daily_claim, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by id
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetByIDForUpdate retrieves an account and holds its row lock until the
// transaction ends
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return r.get(ctx, query, id)
}

func (r *AccountRepository) get(ctx context.Context, query, id string) (*models.Account, error) {
	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return account, nil
}

// Create inserts a new account. It returns false without error when the id
// is already taken, so concurrent onboarding of the same id is safe.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (bool, error) {
	query := `
		INSERT INTO accounts (id, level, experience, coins, gems, essence, crystals, shards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`

	b := account.Balances
	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.Level,
		account.Experience,
		b.Coins, b.Gems, b.Essence, b.Crystals, b.Shards,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create account %s: %w", account.ID, err)
	}
	return true, nil
}

// Update writes every mutable column of the account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET level = $2,
		    experience = $3,
		    coins = $4,
		    gems = $5,
		    essence = $6,
		    crystals = $7,
		    shards = $8,
		    main_creature_id = $9,
		    support1_creature_id = $10,
		    support2_creature_id = $11,
		    last_daily_claim = $12,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	b := account.Balances
	err := r.q.QueryRow(ctx, query,
		account.ID,
		account.Level,
		account.Experience,
		b.Coins, b.Gems, b.Essence, b.Crystals, b.Shards,
		account.Team.Main, account.Team.Support1, account.Team.Support2,
		account.LastDailyClaim,
	).Scan(&account.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", models.ErrAccountNotFound, account.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.ID, err)
	}
	return nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID,
		&a.Level,
		&a.Experience,
		&a.Balances.Coins,
		&a.Balances.Gems,
		&a.Balances.Essence,
		&a.Balances.Crystals,
		&a.Balances.Shards,
		&a.Team.Main,
		&a.Team.Support1,
		&a.Team.Support2,
		&a.LastDailyClaim,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
