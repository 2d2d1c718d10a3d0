package service

import (
	"context"
	"fmt"

	"menagerie/events"
	"menagerie/models"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange appends a transaction log entry and queues the matching
// event. It is the single entry point for every balance change; entries that
// change nothing are skipped.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, entry *models.TransactionLogEntry) error {
	if entry.Before == entry.After {
		return nil
	}
	entry.Delta = entry.After - entry.Before

	if err := uow.TransactionLogRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record transaction log: %w", err)
	}

	log.WithFields(log.Fields{
		"account":   entry.AccountID,
		"operation": entry.Operation,
		"currency":  entry.Currency,
		"before":    entry.Before,
		"after":     entry.After,
	}).Debug("Balance changed")

	// flushed after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:  entry.AccountID,
		Currency:   entry.Currency,
		Operation:  entry.Operation,
		OldBalance: entry.Before,
		NewBalance: entry.After,
		Delta:      entry.Delta,
		CreatureID: entry.CreatureID,
	})

	return nil
}
