package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"menagerie/database"
	"menagerie/models"
)

// TransactionLogRepository implements the TransactionLogRepository interface
type TransactionLogRepository struct {
	q queryable
}

// NewTransactionLogRepository creates a new transaction log repository
func NewTransactionLogRepository(db *database.DB) *TransactionLogRepository {
	return &TransactionLogRepository{q: db.Pool}
}

// newTransactionLogRepositoryWithTx creates a new transaction log repository with a transaction
func newTransactionLogRepositoryWithTx(tx queryable) *TransactionLogRepository {
	return &TransactionLogRepository{q: tx}
}

// Record appends an entry
func (r *TransactionLogRepository) Record(ctx context.Context, entry *models.TransactionLogEntry) error {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO transaction_log
		(account_id, operation, currency, before_value, after_value, delta, metadata, creature_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.AccountID,
		string(entry.Operation),
		string(entry.Currency),
		entry.Before,
		entry.After,
		entry.Delta,
		metadataJSON,
		entry.CreatureID,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for account %s: %w", entry.AccountID, err)
	}
	return nil
}

// ListByAccount returns the newest entries of an account first
func (r *TransactionLogRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*models.TransactionLogEntry, error) {
	query := `
		SELECT id, account_id, operation, currency, before_value, after_value, delta,
		       metadata, creature_id, created_at
		FROM transaction_log
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction log for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var entries []*models.TransactionLogEntry
	for rows.Next() {
		var (
			entry        models.TransactionLogEntry
			operation    string
			currency     string
			metadataJSON []byte
		)
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&operation,
			&currency,
			&entry.Before,
			&entry.After,
			&entry.Delta,
			&metadataJSON,
			&entry.CreatureID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction log entry: %w", err)
		}

		entry.Operation = models.OperationKind(operation)
		entry.Currency = models.Currency(currency)
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction log: %w", err)
	}
	return entries, nil
}
