package repository

import (
	"context"
	"errors"
	"fmt"

	"menagerie/database"
	"menagerie/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const creatureColumns = `
	id, owner_id, definition_id, level, experience,
	limit_breaks, stat_multiplier, locked, created_at, updated_at`

// CreatureRepository implements the CreatureRepository interface
type CreatureRepository struct {
	q queryable
}

// NewCreatureRepository creates a new creature repository
func NewCreatureRepository(db *database.DB) *CreatureRepository {
	return &CreatureRepository{q: db.Pool}
}

// newCreatureRepositoryWithTx creates a new creature repository with a transaction
func newCreatureRepositoryWithTx(tx queryable) *CreatureRepository {
	return &CreatureRepository{q: tx}
}

// GetByID retrieves a creature by id
func (r *CreatureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OwnedCreature, error) {
	query := `SELECT ` + creatureColumns + ` FROM creatures WHERE id = $1`

	creature, err := scanCreature(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creature %s: %w", id, err)
	}
	return creature, nil
}

// GetByIDsForUpdate locks the owner's creatures among ids. Rows are locked in
// id order so two transactions touching overlapping sets cannot deadlock.
func (r *CreatureRepository) GetByIDsForUpdate(ctx context.Context, ownerID string, ids []uuid.UUID) ([]*models.OwnedCreature, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + creatureColumns + `
		FROM creatures
		WHERE owner_id = $1 AND id = ANY($2)
		ORDER BY id
		FOR UPDATE
	`
	return r.list(ctx, query, ownerID, ids)
}

// ListByOwner returns every creature of an account, oldest first
func (r *CreatureRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.OwnedCreature, error) {
	query := `
		SELECT ` + creatureColumns + `
		FROM creatures
		WHERE owner_id = $1
		ORDER BY created_at, id
	`
	return r.list(ctx, query, ownerID)
}

func (r *CreatureRepository) list(ctx context.Context, query string, args ...any) ([]*models.OwnedCreature, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query creatures: %w", err)
	}
	defer rows.Close()

	var creatures []*models.OwnedCreature
	for rows.Next() {
		creature, err := scanCreature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creature: %w", err)
		}
		creatures = append(creatures, creature)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate creatures: %w", err)
	}
	return creatures, nil
}

// Create inserts a new creature
func (r *CreatureRepository) Create(ctx context.Context, creature *models.OwnedCreature) error {
	query := `
		INSERT INTO creatures (id, owner_id, definition_id, level, experience, limit_breaks, stat_multiplier, locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		creature.ID,
		creature.OwnerID,
		creature.DefinitionID,
		creature.Level,
		creature.Experience,
		creature.LimitBreaks,
		creature.StatMultiplier,
		creature.Locked,
	).Scan(&creature.CreatedAt, &creature.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create creature %s: %w", creature.ID, err)
	}
	return nil
}

// Update writes the mutable columns of a creature
func (r *CreatureRepository) Update(ctx context.Context, creature *models.OwnedCreature) error {
	query := `
		UPDATE creatures
		SET level = $2,
		    experience = $3,
		    limit_breaks = $4,
		    stat_multiplier = $5,
		    locked = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		creature.ID,
		creature.Level,
		creature.Experience,
		creature.LimitBreaks,
		creature.StatMultiplier,
		creature.Locked,
	).Scan(&creature.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("creature %s not found", creature.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update creature %s: %w", creature.ID, err)
	}
	return nil
}

// Delete removes creatures; every id must exist
func (r *CreatureRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	result, err := r.q.Exec(ctx, `DELETE FROM creatures WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to delete creatures: %w", err)
	}

	if result.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("deleted %d of %d creatures", result.RowsAffected(), len(ids))
	}
	return nil
}

func scanCreature(row pgx.Row) (*models.OwnedCreature, error) {
	var c models.OwnedCreature
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.DefinitionID,
		&c.Level,
		&c.Experience,
		&c.LimitBreaks,
		&c.StatMultiplier,
		&c.Locked,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
