package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind represents the ledger operation that produced a log entry
type OperationKind string

const (
	OperationGive       OperationKind = "give"
	OperationRemove     OperationKind = "remove"
	OperationSet        OperationKind = "set"
	OperationExchange   OperationKind = "exchange"
	OperationUpgrade    OperationKind = "upgrade"
	OperationLimitBreak OperationKind = "limit_break"
	OperationDissolve   OperationKind = "dissolve"
	OperationSummon     OperationKind = "summon"
	OperationDaily      OperationKind = "daily_claim"
	OperationOnboarding OperationKind = "onboarding"
	OperationExperience OperationKind = "experience"
	OperationTeamSlot   OperationKind = "team_slot"
	OperationLock       OperationKind = "lock"
)

// IsDebit returns true if the operation spends resources
func (k OperationKind) IsDebit() bool {
	return k == OperationRemove || k == OperationUpgrade || k == OperationLimitBreak || k == OperationSummon
}

func (k OperationKind) String() string {
	return string(k)
}

// TransactionLogEntry records one before/after value change on an account.
// Entries are append-only.
type TransactionLogEntry struct {
	ID         int64          `db:"id"`
	AccountID  string         `db:"account_id"`
	Operation  OperationKind  `db:"operation"`
	Currency   Currency       `db:"currency"`
	Before     int64          `db:"before_value"`
	After      int64          `db:"after_value"`
	Delta      int64          `db:"delta"`
	Metadata   map[string]any `db:"metadata"`
	CreatureID *uuid.UUID     `db:"creature_id"`
	CreatedAt  time.Time      `db:"created_at"`
}
