package service

import (
	"context"

	"menagerie/models"

	"github.com/google/uuid"
)

// commands gives any Ledger the typed wrappers over Mutate
type commands struct {
	ledger Ledger
}

// Summon draws a creature from a banner
func (c commands) Summon(ctx context.Context, accountID, banner string) (*models.OwnedCreature, error) {
	result, err := c.ledger.Mutate(ctx, accountID, SummonCreature{Banner: banner})
	if err != nil {
		return nil, err
	}
	return result.Summoned, nil
}

// Upgrade raises a creature by up to levels levels
func (c commands) Upgrade(ctx context.Context, accountID string, creatureID uuid.UUID, levels int) (*models.UpgradeResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, UpgradeCreature{CreatureID: creatureID, Levels: levels})
	if err != nil {
		return nil, err
	}
	return result.Upgrade, nil
}

// AttemptLimitBreak breaks a creature's cap if it is eligible
func (c commands) AttemptLimitBreak(ctx context.Context, accountID string, creatureID uuid.UUID) (*models.LimitBreakResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, LimitBreakCreature{CreatureID: creatureID})
	if err != nil {
		return nil, err
	}
	return result.LimitBreak, nil
}

// Dissolve converts one creature into materials
func (c commands) Dissolve(ctx context.Context, accountID string, creatureID uuid.UUID) (*models.DissolveResult, error) {
	return c.BulkDissolve(ctx, accountID, []uuid.UUID{creatureID})
}

// BulkDissolve converts every listed creature, or none of them
func (c commands) BulkDissolve(ctx context.Context, accountID string, creatureIDs []uuid.UUID) (*models.DissolveResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, DissolveCreatures{CreatureIDs: creatureIDs})
	if err != nil {
		return nil, err
	}
	return result.Dissolve, nil
}

// AdjustBalance gives, removes or sets a currency balance
func (c commands) AdjustBalance(ctx context.Context, accountID string, currency models.Currency, delta int64, mode AdjustMode) (*models.BalanceChange, error) {
	result, err := c.ledger.Mutate(ctx, accountID, AdjustBalance{Currency: currency, Delta: delta, Mode: mode})
	if err != nil {
		return nil, err
	}
	return result.Balance, nil
}

// Exchange converts amount of one currency into another
func (c commands) Exchange(ctx context.Context, accountID string, from, to models.Currency, amount int64) (*models.ExchangeResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, ExchangeCurrency{From: from, To: to, Amount: amount})
	if err != nil {
		return nil, err
	}
	return result.Exchange, nil
}

// GrantExperience adds player experience
func (c commands) GrantExperience(ctx context.Context, accountID string, amount int64) (*models.ProgressionResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, GrantExperience{Amount: amount})
	if err != nil {
		return nil, err
	}
	return result.Progress, nil
}

// ClaimDaily grants the daily reward
func (c commands) ClaimDaily(ctx context.Context, accountID string) (*models.DailyClaimResult, error) {
	result, err := c.ledger.Mutate(ctx, accountID, ClaimDaily{})
	if err != nil {
		return nil, err
	}
	return result.Daily, nil
}

// SetTeamSlot places a creature into a team slot; nil clears the slot
func (c commands) SetTeamSlot(ctx context.Context, accountID string, slot models.TeamSlot, creatureID *uuid.UUID) (*models.Account, error) {
	result, err := c.ledger.Mutate(ctx, accountID, SetTeamSlot{Slot: slot, CreatureID: creatureID})
	if err != nil {
		return nil, err
	}
	return result.Account, nil
}

// SetLocked locks or unlocks a creature
func (c commands) SetLocked(ctx context.Context, accountID string, creatureID uuid.UUID, locked bool) (*models.OwnedCreature, error) {
	result, err := c.ledger.Mutate(ctx, accountID, SetCreatureLocked{CreatureID: creatureID, Locked: locked})
	if err != nil {
		return nil, err
	}
	return result.Creature, nil
}
