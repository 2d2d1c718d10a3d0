package models

import (
	"time"

	"github.com/google/uuid"
)

// BalanceChange is the outcome of a single-currency adjustment
type BalanceChange struct {
	Currency Currency
	OldValue int64
	NewValue int64
}

// ExchangeResult is the outcome of converting one currency into another
type ExchangeResult struct {
	From     BalanceChange
	To       BalanceChange
	Spent    int64
	Received int64
}

// UpgradeResult is the outcome of levelling a creature
type UpgradeResult struct {
	CreatureID uuid.UUID
	OldLevel   int
	NewLevel   int
	CostPaid   int64
	OldPower   int64
	NewPower   int64
}

// LimitBreakReason explains why a limit break is not allowed
type LimitBreakReason string

const (
	LimitBreakNotAtCap                LimitBreakReason = "not_at_cap"
	LimitBreakAtRarityMaximum         LimitBreakReason = "at_rarity_maximum"
	LimitBreakInsufficientPlayerLevel LimitBreakReason = "insufficient_player_level"
	LimitBreakMaxLimitBreaks          LimitBreakReason = "max_limit_breaks"
)

// LimitBreakEligibility is the answer to "can this creature break its cap now"
type LimitBreakEligibility struct {
	Allowed    bool
	Reason     LimitBreakReason
	CurrentCap int
	NextCap    int
}

// LimitBreakResult is the outcome of a limit break attempt. Performed is
// false when the creature was ineligible; Reason then says why.
type LimitBreakResult struct {
	CreatureID  uuid.UUID
	Performed   bool
	Reason      LimitBreakReason
	LimitBreaks int
	OldCap      int
	NewCap      int
	OldPower    int64
	NewPower    int64
	CostPaid    map[Currency]int64
}

// PowerDelta returns how much power the break added
func (r *LimitBreakResult) PowerDelta() int64 {
	return r.NewPower - r.OldPower
}

// DissolveResult is the outcome of dissolving one or more creatures
type DissolveResult struct {
	CreatureIDs []uuid.UUID
	Rewards     map[Currency]int64
}

// ProgressionResult is the outcome of applying experience
type ProgressionResult struct {
	LeveledUp  bool
	OldLevel   int
	NewLevel   int
	Experience int64
}

// DailyClaimResult is the outcome of claiming the daily reward
type DailyClaimResult struct {
	Rewards     map[Currency]int64
	ClaimedAt   time.Time
	NextClaimAt time.Time
}

// MutationResult carries the outcome of whichever operation Mutate applied.
// Exactly one of the pointer fields is set.
type MutationResult struct {
	Balance    *BalanceChange
	Exchange   *ExchangeResult
	Upgrade    *UpgradeResult
	LimitBreak *LimitBreakResult
	Dissolve   *DissolveResult
	Summoned   *OwnedCreature
	Progress   *ProgressionResult
	Daily      *DailyClaimResult
	Account    *Account
	Creature   *OwnedCreature
}
