package testutil

import (
	"time"

	"menagerie/models"

	"github.com/google/uuid"
)

// CreateTestAccount creates an account with a level and some of every currency
func CreateTestAccount(id string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:    id,
		Level: 1,
		Balances: models.Balances{
			Coins:    10000,
			Gems:     500,
			Essence:  1000,
			Crystals: 100,
			Shards:   50,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithLevel creates a test account at a specific level
func CreateTestAccountWithLevel(id string, level int) *models.Account {
	account := CreateTestAccount(id)
	account.Level = level
	return account
}

// CreateTestCreature creates a level 1 creature owned by ownerID
func CreateTestCreature(ownerID, definitionID string) *models.OwnedCreature {
	now := time.Now()
	return &models.OwnedCreature{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		DefinitionID:   definitionID,
		Level:          1,
		StatMultiplier: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestCreatureWithLevel creates a test creature at a specific level
func CreateTestCreatureWithLevel(ownerID, definitionID string, level, limitBreaks int) *models.OwnedCreature {
	creature := CreateTestCreature(ownerID, definitionID)
	creature.Level = level
	creature.LimitBreaks = limitBreaks
	return creature
}

// CreateTestLogEntry creates a transaction log entry for a credit
func CreateTestLogEntry(accountID string, operation models.OperationKind, currency models.Currency, before, after int64) *models.TransactionLogEntry {
	return &models.TransactionLogEntry{
		AccountID: accountID,
		Operation: operation,
		Currency:  currency,
		Before:    before,
		After:     after,
		Delta:     after - before,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
