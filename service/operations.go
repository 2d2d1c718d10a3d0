package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"menagerie/events"
	"menagerie/gamedata"
	"menagerie/models"
	"menagerie/rules"

	"github.com/google/uuid"
)

// Operation is one atomic change the ledger applies to an account. The set
// of operations is closed; only this package implements it.
type Operation interface {
	Kind() models.OperationKind

	// validate checks arguments before any transaction starts
	validate(e *rules.Economy) error

	// creatureIDs lists the creature rows to lock
	creatureIDs() []uuid.UUID

	apply(m *mutation) (*models.MutationResult, error)
}

// mutation is the locked state an operation works on. Account changes are
// written back by the ledger; creature rows are written by the operation.
type mutation struct {
	ctx       context.Context
	uow       UnitOfWork
	data      *gamedata.GameData
	selector  *rules.Selector
	rng       rules.Random
	now       time.Time
	account   *models.Account
	creatures map[uuid.UUID]*models.OwnedCreature
}

func (m *mutation) economy() *rules.Economy {
	return m.data.Economy
}

// owned returns a locked creature of the account and its definition
func (m *mutation) owned(id uuid.UUID) (*models.OwnedCreature, *models.CreatureDefinition, error) {
	creature, ok := m.creatures[id]
	if !ok || creature.OwnerID != m.account.ID {
		return nil, nil, &models.NotOwnedError{CreatureID: id}
	}
	def, err := m.data.Catalog.MustGet(creature.DefinitionID)
	if err != nil {
		return nil, nil, err
	}
	return creature, def, nil
}

func (m *mutation) record(kind models.OperationKind, c models.Currency, before, after int64, creatureID *uuid.UUID, metadata map[string]any) error {
	return RecordBalanceChange(m.ctx, m.uow, &models.TransactionLogEntry{
		AccountID:  m.account.ID,
		Operation:  kind,
		Currency:   c,
		Before:     before,
		After:      after,
		Metadata:   metadata,
		CreatureID: creatureID,
		CreatedAt:  m.now,
	})
}

func (m *mutation) credit(kind models.OperationKind, c models.Currency, amount int64, creatureID *uuid.UUID, metadata map[string]any) (models.BalanceChange, error) {
	before, after, err := m.account.Balances.Add(c, amount)
	if err != nil {
		return models.BalanceChange{}, err
	}
	if err := m.record(kind, c, before, after, creatureID, metadata); err != nil {
		return models.BalanceChange{}, err
	}
	return models.BalanceChange{Currency: c, OldValue: before, NewValue: after}, nil
}

func (m *mutation) debit(kind models.OperationKind, c models.Currency, amount int64, creatureID *uuid.UUID, metadata map[string]any) (models.BalanceChange, error) {
	before, after, err := m.account.Balances.Deduct(c, amount)
	if err != nil {
		return models.BalanceChange{}, err
	}
	if err := m.record(kind, c, before, after, creatureID, metadata); err != nil {
		return models.BalanceChange{}, err
	}
	return models.BalanceChange{Currency: c, OldValue: before, NewValue: after}, nil
}

// creditAll credits every amount in currency order
func (m *mutation) creditAll(kind models.OperationKind, amounts map[models.Currency]int64, creatureID *uuid.UUID, metadata map[string]any) error {
	for _, c := range models.AllCurrencies {
		if amounts[c] <= 0 {
			continue
		}
		if _, err := m.credit(kind, c, amounts[c], creatureID, metadata); err != nil {
			return err
		}
	}
	return nil
}

// debitAll debits every amount or nothing
func (m *mutation) debitAll(kind models.OperationKind, amounts map[models.Currency]int64, creatureID *uuid.UUID, metadata map[string]any) error {
	if err := m.account.Balances.CheckCovers(amounts); err != nil {
		return err
	}
	for _, c := range models.AllCurrencies {
		if amounts[c] <= 0 {
			continue
		}
		if _, err := m.debit(kind, c, amounts[c], creatureID, metadata); err != nil {
			return err
		}
	}
	return nil
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// AdjustMode selects how AdjustBalance treats its delta
type AdjustMode string

const (
	AdjustGive   AdjustMode = "give"   // add delta
	AdjustRemove AdjustMode = "remove" // subtract delta, flooring at zero
	AdjustSet    AdjustMode = "set"    // overwrite with delta
)

// AdjustBalance is an administrative balance change
type AdjustBalance struct {
	Currency models.Currency
	Delta    int64
	Mode     AdjustMode
}

func (a AdjustBalance) Kind() models.OperationKind {
	switch a.Mode {
	case AdjustGive:
		return models.OperationGive
	case AdjustRemove:
		return models.OperationRemove
	case AdjustSet:
		return models.OperationSet
	}
	return "adjust"
}

func (a AdjustBalance) validate(*rules.Economy) error {
	if !a.Currency.Valid() {
		return models.NewConfigurationError(fmt.Sprintf("unknown currency %q", a.Currency))
	}
	switch a.Mode {
	case AdjustGive, AdjustRemove, AdjustSet:
	default:
		return models.NewConfigurationError(fmt.Sprintf("unknown adjust mode %q", a.Mode))
	}
	if a.Delta < 0 {
		return invalidArgument("delta must not be negative: %d", a.Delta)
	}
	return nil
}

func (a AdjustBalance) creatureIDs() []uuid.UUID { return nil }

func (a AdjustBalance) apply(m *mutation) (*models.MutationResult, error) {
	var (
		change models.BalanceChange
		err    error
	)
	switch a.Mode {
	case AdjustGive:
		change, err = m.credit(models.OperationGive, a.Currency, a.Delta, nil, nil)
	case AdjustRemove:
		current, _ := m.account.Balances.Get(a.Currency)
		change, err = m.debit(models.OperationRemove, a.Currency, min(a.Delta, current), nil, map[string]any{"requested": a.Delta})
	case AdjustSet:
		before, _ := m.account.Balances.Get(a.Currency)
		if err = m.account.Balances.Set(a.Currency, a.Delta); err == nil {
			change = models.BalanceChange{Currency: a.Currency, OldValue: before, NewValue: a.Delta}
			err = m.record(models.OperationSet, a.Currency, before, a.Delta, nil, nil)
		}
	}
	if err != nil {
		return nil, err
	}
	return &models.MutationResult{Balance: &change}, nil
}

// ExchangeCurrency converts Amount of From into To at the configured rate
type ExchangeCurrency struct {
	From   models.Currency
	To     models.Currency
	Amount int64
}

func (x ExchangeCurrency) Kind() models.OperationKind { return models.OperationExchange }

func (x ExchangeCurrency) validate(e *rules.Economy) error {
	if !x.From.Valid() || !x.To.Valid() {
		return models.NewConfigurationError(fmt.Sprintf("unknown currency pair %s/%s", x.From, x.To))
	}
	if x.From == x.To {
		return invalidArgument("cannot exchange %s into itself", x.From)
	}
	if x.Amount <= 0 {
		return invalidArgument("exchange amount must be positive: %d", x.Amount)
	}
	_, err := e.ExchangeRate(x.From, x.To)
	return err
}

func (x ExchangeCurrency) creatureIDs() []uuid.UUID { return nil }

func (x ExchangeCurrency) apply(m *mutation) (*models.MutationResult, error) {
	rate, err := m.economy().ExchangeRate(x.From, x.To)
	if err != nil {
		return nil, err
	}

	received := math.Floor(float64(x.Amount) * rate)
	if received >= math.MaxInt64 {
		return nil, fmt.Errorf("exchange of %d %s overflows", x.Amount, x.From)
	}
	if received < 1 {
		return nil, invalidArgument("exchanging %d %s yields no %s", x.Amount, x.From, x.To)
	}

	metadata := map[string]any{"from": x.From, "to": x.To, "rate": rate}
	from, err := m.debit(models.OperationExchange, x.From, x.Amount, nil, metadata)
	if err != nil {
		return nil, err
	}
	to, err := m.credit(models.OperationExchange, x.To, int64(received), nil, metadata)
	if err != nil {
		return nil, err
	}

	return &models.MutationResult{Exchange: &models.ExchangeResult{
		From:     from,
		To:       to,
		Spent:    x.Amount,
		Received: int64(received),
	}}, nil
}

// UpgradeCreature spends essence to raise a creature up to Levels levels,
// bounded by the owner's level and the creature's current cap
type UpgradeCreature struct {
	CreatureID uuid.UUID
	Levels     int
}

func (u UpgradeCreature) Kind() models.OperationKind { return models.OperationUpgrade }

func (u UpgradeCreature) validate(*rules.Economy) error {
	if u.Levels < 1 {
		return invalidArgument("levels must be at least 1: %d", u.Levels)
	}
	return nil
}

func (u UpgradeCreature) creatureIDs() []uuid.UUID { return []uuid.UUID{u.CreatureID} }

func (u UpgradeCreature) apply(m *mutation) (*models.MutationResult, error) {
	creature, def, err := m.owned(u.CreatureID)
	if err != nil {
		return nil, err
	}
	e := m.economy()

	levelCap, err := rules.CurrentCap(creature, def, m.account.Level, e)
	if err != nil {
		return nil, err
	}
	levels := min(u.Levels, e.Progression.MaxPlayerLevel)
	target := min(creature.Level+levels, m.account.Level, levelCap)

	result := &models.UpgradeResult{
		CreatureID: creature.ID,
		OldLevel:   creature.Level,
		NewLevel:   creature.Level,
		OldPower:   rules.Power(creature, def, e.Power),
	}
	result.NewPower = result.OldPower
	if target <= creature.Level {
		return &models.MutationResult{Upgrade: result}, nil
	}

	cost, err := rules.UpgradeCost(creature.Level, target, def.Rarity, e.Progression)
	if err != nil {
		return nil, err
	}
	metadata := map[string]any{"from_level": creature.Level, "to_level": target}
	if _, err := m.debit(models.OperationUpgrade, models.CurrencyEssence, cost, &creature.ID, metadata); err != nil {
		return nil, err
	}

	creature.Level = target
	if err := m.uow.CreatureRepository().Update(m.ctx, creature); err != nil {
		return nil, err
	}

	result.NewLevel = target
	result.CostPaid = cost
	result.NewPower = rules.Power(creature, def, e.Power)

	m.uow.EventBus().Publish(events.CreatureUpgradedEvent{
		AccountID:  m.account.ID,
		CreatureID: creature.ID,
		OldLevel:   result.OldLevel,
		NewLevel:   result.NewLevel,
		Cost:       cost,
	})
	return &models.MutationResult{Upgrade: result}, nil
}

// LimitBreakCreature raises a capped creature's level cap. An ineligible
// creature yields a result carrying the reason, not an error.
type LimitBreakCreature struct {
	CreatureID uuid.UUID
}

func (l LimitBreakCreature) Kind() models.OperationKind { return models.OperationLimitBreak }

func (l LimitBreakCreature) validate(*rules.Economy) error { return nil }

func (l LimitBreakCreature) creatureIDs() []uuid.UUID { return []uuid.UUID{l.CreatureID} }

func (l LimitBreakCreature) apply(m *mutation) (*models.MutationResult, error) {
	creature, def, err := m.owned(l.CreatureID)
	if err != nil {
		return nil, err
	}

	// break a copy so nothing changes unless both materials are covered
	broken := *creature
	result, err := rules.ApplyLimitBreak(&broken, def, m.account.Level, m.economy())
	if err != nil {
		return nil, err
	}
	if !result.Performed {
		return &models.MutationResult{LimitBreak: result}, nil
	}

	metadata := map[string]any{"limit_breaks": broken.LimitBreaks, "new_cap": result.NewCap}
	if err := m.debitAll(models.OperationLimitBreak, result.CostPaid, &creature.ID, metadata); err != nil {
		return nil, err
	}

	*creature = broken
	if err := m.uow.CreatureRepository().Update(m.ctx, creature); err != nil {
		return nil, err
	}

	m.uow.EventBus().Publish(events.LimitBreakEvent{
		AccountID:   m.account.ID,
		CreatureID:  creature.ID,
		LimitBreaks: creature.LimitBreaks,
		NewCap:      result.NewCap,
		PowerDelta:  result.PowerDelta(),
	})
	return &models.MutationResult{LimitBreak: result}, nil
}

// DissolveCreatures converts creatures into materials. Either every creature
// is dissolved or none is.
type DissolveCreatures struct {
	CreatureIDs []uuid.UUID
}

func (d DissolveCreatures) Kind() models.OperationKind { return models.OperationDissolve }

func (d DissolveCreatures) validate(*rules.Economy) error {
	if len(d.CreatureIDs) == 0 {
		return invalidArgument("no creatures to dissolve")
	}
	seen := make(map[uuid.UUID]struct{}, len(d.CreatureIDs))
	for _, id := range d.CreatureIDs {
		if _, dup := seen[id]; dup {
			return invalidArgument("creature %s listed twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (d DissolveCreatures) creatureIDs() []uuid.UUID { return d.CreatureIDs }

func (d DissolveCreatures) apply(m *mutation) (*models.MutationResult, error) {
	type target struct {
		creature *models.OwnedCreature
		def      *models.CreatureDefinition
	}

	targets := make([]target, 0, len(d.CreatureIDs))
	for _, id := range d.CreatureIDs {
		creature, def, err := m.owned(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{creature, def})
	}

	for _, t := range targets {
		if t.creature.Locked {
			return nil, &models.ProtectedError{CreatureID: t.creature.ID, Reason: models.ProtectionLocked}
		}
		if _, onTeam := m.account.Team.SlotOf(t.creature.ID); onTeam {
			return nil, &models.ProtectedError{CreatureID: t.creature.ID, Reason: models.ProtectionTeamSlot}
		}
	}

	rewards := make(map[models.Currency]int64)
	for _, t := range targets {
		reward, err := rules.DissolveReward(t.def.Rarity, m.economy().Dissolve)
		if err != nil {
			return nil, err
		}
		for c, v := range reward {
			if rewards[c] > math.MaxInt64-v {
				return nil, fmt.Errorf("dissolve reward overflow for %s", c)
			}
			rewards[c] += v
		}
	}

	if err := m.uow.CreatureRepository().Delete(m.ctx, d.CreatureIDs); err != nil {
		return nil, err
	}

	var creatureID *uuid.UUID
	if len(d.CreatureIDs) == 1 {
		creatureID = &d.CreatureIDs[0]
	}
	metadata := map[string]any{"creatures": len(d.CreatureIDs)}
	if err := m.creditAll(models.OperationDissolve, rewards, creatureID, metadata); err != nil {
		return nil, err
	}

	for _, id := range d.CreatureIDs {
		delete(m.creatures, id)
	}

	m.uow.EventBus().Publish(events.CreaturesDissolvedEvent{
		AccountID:   m.account.ID,
		CreatureIDs: d.CreatureIDs,
		Rewards:     rewards,
	})
	return &models.MutationResult{Dissolve: &models.DissolveResult{
		CreatureIDs: d.CreatureIDs,
		Rewards:     rewards,
	}}, nil
}

// SummonCreature pays a banner's price and draws a creature from it
type SummonCreature struct {
	Banner string
}

func (s SummonCreature) Kind() models.OperationKind { return models.OperationSummon }

func (s SummonCreature) validate(e *rules.Economy) error {
	_, err := e.Banner(s.Banner)
	return err
}

func (s SummonCreature) creatureIDs() []uuid.UUID { return nil }

func (s SummonCreature) apply(m *mutation) (*models.MutationResult, error) {
	e := m.economy()
	banner, err := e.Banner(s.Banner)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	if _, err := m.debit(models.OperationSummon, banner.Currency, banner.Cost, &id, map[string]any{"banner": banner.Kind}); err != nil {
		return nil, err
	}

	rarity, err := m.selector.Select(banner.Weights, banner.Luck)
	if err != nil {
		return nil, err
	}
	def, err := m.data.Catalog.Pick(rarity, m.rng)
	if err != nil {
		return nil, err
	}

	creature := newOwnedCreature(id, m.account.ID, def.ID, e.Progression.StartingCreatureLevel, m.now)
	if err := m.uow.CreatureRepository().Create(m.ctx, creature); err != nil {
		return nil, err
	}
	m.creatures[id] = creature

	m.uow.EventBus().Publish(events.CreatureSummonedEvent{
		AccountID:    m.account.ID,
		CreatureID:   id,
		DefinitionID: def.ID,
		Rarity:       def.Rarity,
		Banner:       banner.Kind,
	})
	return &models.MutationResult{Summoned: creature}, nil
}

// GrantExperience adds player experience, levelling up as needed
type GrantExperience struct {
	Amount int64
}

func (g GrantExperience) Kind() models.OperationKind { return models.OperationExperience }

func (g GrantExperience) validate(*rules.Economy) error {
	if g.Amount <= 0 {
		return invalidArgument("experience amount must be positive: %d", g.Amount)
	}
	return nil
}

func (g GrantExperience) creatureIDs() []uuid.UUID { return nil }

func (g GrantExperience) apply(m *mutation) (*models.MutationResult, error) {
	p := m.economy().Progression
	progress := rules.ApplyXP(m.account.Level, m.account.Experience, g.Amount, p.PlayerCurve, p.MaxPlayerLevel)

	m.account.Level = progress.NewLevel
	m.account.Experience = progress.Experience

	if progress.LeveledUp {
		m.uow.EventBus().Publish(events.LevelUpEvent{
			AccountID: m.account.ID,
			OldLevel:  progress.OldLevel,
			NewLevel:  progress.NewLevel,
		})
	}
	return &models.MutationResult{Progress: &progress}, nil
}

// ClaimDaily grants the daily reward once per cooldown
type ClaimDaily struct{}

func (ClaimDaily) Kind() models.OperationKind { return models.OperationDaily }

func (ClaimDaily) validate(*rules.Economy) error { return nil }

func (ClaimDaily) creatureIDs() []uuid.UUID { return nil }

func (ClaimDaily) apply(m *mutation) (*models.MutationResult, error) {
	cfg := m.economy().Daily
	if last := m.account.LastDailyClaim; last != nil {
		next := last.Add(cfg.Cooldown)
		if m.now.Before(next) {
			return nil, &models.DailyClaimedError{NextClaimAt: next}
		}
	}

	if err := m.creditAll(models.OperationDaily, cfg.Rewards, nil, nil); err != nil {
		return nil, err
	}

	claimedAt := m.now
	m.account.LastDailyClaim = &claimedAt

	rewards := make(map[models.Currency]int64, len(cfg.Rewards))
	for c, v := range cfg.Rewards {
		rewards[c] = v
	}
	return &models.MutationResult{Daily: &models.DailyClaimResult{
		Rewards:     rewards,
		ClaimedAt:   claimedAt,
		NextClaimAt: claimedAt.Add(cfg.Cooldown),
	}}, nil
}

// SetTeamSlot places an owned creature into a slot, or clears the slot when
// CreatureID is nil. A creature already on the team moves to the new slot.
type SetTeamSlot struct {
	Slot       models.TeamSlot
	CreatureID *uuid.UUID
}

func (s SetTeamSlot) Kind() models.OperationKind { return models.OperationTeamSlot }

func (s SetTeamSlot) validate(*rules.Economy) error {
	_, err := models.ParseTeamSlot(string(s.Slot))
	return err
}

func (s SetTeamSlot) creatureIDs() []uuid.UUID {
	if s.CreatureID == nil {
		return nil
	}
	return []uuid.UUID{*s.CreatureID}
}

func (s SetTeamSlot) apply(m *mutation) (*models.MutationResult, error) {
	team := &m.account.Team
	if s.CreatureID == nil {
		team.Set(s.Slot, nil)
		return &models.MutationResult{Account: m.account}, nil
	}

	creature, _, err := m.owned(*s.CreatureID)
	if err != nil {
		return nil, err
	}
	if slot, ok := team.SlotOf(creature.ID); ok && slot != s.Slot {
		team.Set(slot, nil)
	}
	id := creature.ID
	team.Set(s.Slot, &id)
	return &models.MutationResult{Account: m.account}, nil
}

// SetCreatureLocked protects or unprotects a creature from dissolving
type SetCreatureLocked struct {
	CreatureID uuid.UUID
	Locked     bool
}

func (s SetCreatureLocked) Kind() models.OperationKind { return models.OperationLock }

func (s SetCreatureLocked) validate(*rules.Economy) error { return nil }

func (s SetCreatureLocked) creatureIDs() []uuid.UUID { return []uuid.UUID{s.CreatureID} }

func (s SetCreatureLocked) apply(m *mutation) (*models.MutationResult, error) {
	creature, _, err := m.owned(s.CreatureID)
	if err != nil {
		return nil, err
	}
	if creature.Locked != s.Locked {
		creature.Locked = s.Locked
		if err := m.uow.CreatureRepository().Update(m.ctx, creature); err != nil {
			return nil, err
		}
	}
	return &models.MutationResult{Creature: creature}, nil
}

func newOwnedCreature(id uuid.UUID, ownerID, definitionID string, level int, now time.Time) *models.OwnedCreature {
	return &models.OwnedCreature{
		ID:             id,
		OwnerID:        ownerID,
		DefinitionID:   definitionID,
		Level:          max(level, 1),
		StatMultiplier: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
