// Package rules holds the pure economy calculators: weighted rarity
// selection, XP curves and level caps, power scoring and limit breaks.
//
// Every calculator takes its tables from an explicitly constructed Economy.
// An Economy is treated as immutable once validated; nothing here holds
// shared mutable state, so all functions are safe to call concurrently.
package rules

import (
	"fmt"
	"math"
	"sort"
	"time"

	"menagerie/models"
)

// XPCurve defines floor(Base * level^Exponent) experience per level
type XPCurve struct {
	Base     float64
	Exponent float64
}

// LevelThreshold unlocks Cap once the owner reaches PlayerLevel
type LevelThreshold struct {
	PlayerLevel int
	Cap         int
}

// RarityCap bounds creature levels for one rarity
type RarityCap struct {
	BaseCap int // cap before any limit break
	Ceiling int // absolute ceiling, never exceeded
}

// ProgressionConfig drives XP, level caps and upgrade costs
type ProgressionConfig struct {
	PlayerCurve            XPCurve
	MaxPlayerLevel         int
	CapThresholds          []LevelThreshold
	RarityCaps             map[models.Rarity]RarityCap
	UpgradeCostBase        float64
	UpgradeCostExponent    float64
	UpgradeCostMultipliers map[models.Rarity]float64
	StartingCreatureLevel  int
}

// PowerConfig drives the power score
type PowerConfig struct {
	LevelMultiplierPerLevel float64
	StatWeights             map[models.Stat]float64
	RarityMultipliers       map[models.Rarity]float64
}

// LimitBreakConfig drives limit break caps, costs and boosts
type LimitBreakConfig struct {
	CapIncreasePerBreak      int
	BaseCosts                map[models.Currency]int64
	RarityMultipliers        map[models.Rarity]float64
	LevelScalingFactor       float64
	PreviousBreaksMultiplier float64
	StatBoostMultiplier      float64
}

// DissolveConfig drives dissolve rewards
type DissolveConfig struct {
	BaseRewards       map[models.Currency]int64
	RarityMultipliers map[models.Rarity]float64
}

// Banner is a summon pool with its own odds and price
type Banner struct {
	Kind     string
	Currency models.Currency
	Cost     int64
	Weights  models.RarityWeightTable
	Luck     float64
}

// DailyConfig drives the daily reward
type DailyConfig struct {
	Rewards  map[models.Currency]int64
	Cooldown time.Duration
}

// OnboardingConfig drives the grant given to a new account
type OnboardingConfig struct {
	StartingBalances  map[models.Currency]int64
	StarterCreatureID string
}

// Economy is the full set of tables the core calculates with
type Economy struct {
	Progression   ProgressionConfig
	Power         PowerConfig
	LimitBreak    LimitBreakConfig
	Dissolve      DissolveConfig
	Banners       map[string]Banner
	ExchangeRates map[models.Currency]map[models.Currency]float64
	Daily         DailyConfig
	Onboarding    OnboardingConfig
}

// Banner returns a banner by kind
func (e *Economy) Banner(kind string) (Banner, error) {
	b, ok := e.Banners[kind]
	if !ok {
		return Banner{}, models.NewConfigurationError(fmt.Sprintf("unknown banner %q", kind))
	}
	return b, nil
}

// ExchangeRate returns how many units of `to` one unit of `from` buys
func (e *Economy) ExchangeRate(from, to models.Currency) (float64, error) {
	rate, ok := e.ExchangeRates[from][to]
	if !ok {
		return 0, models.NewConfigurationError(fmt.Sprintf("no exchange rate from %s to %s", from, to))
	}
	return rate, nil
}

// Validate checks the tables are complete and sane
func (e *Economy) Validate() error {
	p := e.Progression
	if !positive(p.PlayerCurve.Base) || !positive(p.PlayerCurve.Exponent) {
		return models.NewConfigurationError("player xp curve base and exponent must be positive")
	}
	if p.MaxPlayerLevel < 1 {
		return models.NewConfigurationError("max player level must be at least 1")
	}
	if len(p.CapThresholds) == 0 {
		return models.NewConfigurationError("level cap thresholds are empty")
	}
	if !sort.SliceIsSorted(p.CapThresholds, func(i, j int) bool {
		return p.CapThresholds[i].PlayerLevel < p.CapThresholds[j].PlayerLevel
	}) {
		return models.NewConfigurationError("level cap thresholds must be sorted by player level")
	}
	if p.StartingCreatureLevel < 1 {
		return models.NewConfigurationError("starting creature level must be at least 1")
	}
	if !positive(p.UpgradeCostBase) || p.UpgradeCostExponent < 0 {
		return models.NewConfigurationError("upgrade cost base must be positive and exponent non-negative")
	}

	for _, r := range models.AllRarities {
		c, ok := p.RarityCaps[r]
		if !ok {
			return models.NewConfigurationError(fmt.Sprintf("missing level cap for rarity %s", r))
		}
		if c.BaseCap < 1 || c.Ceiling < c.BaseCap {
			return models.NewConfigurationError(fmt.Sprintf("invalid level cap for rarity %s: base %d ceiling %d", r, c.BaseCap, c.Ceiling))
		}
		for name, table := range map[string]map[models.Rarity]float64{
			"upgrade cost":     p.UpgradeCostMultipliers,
			"power":            e.Power.RarityMultipliers,
			"limit break cost": e.LimitBreak.RarityMultipliers,
			"dissolve reward":  e.Dissolve.RarityMultipliers,
		} {
			if !positive(table[r]) {
				return models.NewConfigurationError(fmt.Sprintf("missing %s multiplier for rarity %s", name, r))
			}
		}
	}

	if e.Power.LevelMultiplierPerLevel < 0 {
		return models.NewConfigurationError("level multiplier per level must not be negative")
	}
	for _, s := range models.AllStats {
		if w := e.Power.StatWeights[s]; w < 0 || math.IsNaN(w) {
			return models.NewConfigurationError(fmt.Sprintf("invalid weight for stat %s", s))
		}
	}

	lb := e.LimitBreak
	if lb.CapIncreasePerBreak < 1 {
		return models.NewConfigurationError("cap increase per break must be at least 1")
	}
	if !positive(lb.LevelScalingFactor) || lb.PreviousBreaksMultiplier < 1 || lb.StatBoostMultiplier < 1 {
		return models.NewConfigurationError("limit break scaling factor must be positive and multipliers at least 1")
	}
	if err := validateAmounts("limit break cost", lb.BaseCosts); err != nil {
		return err
	}
	if err := validateAmounts("dissolve reward", e.Dissolve.BaseRewards); err != nil {
		return err
	}
	if err := validateAmounts("daily reward", e.Daily.Rewards); err != nil {
		return err
	}
	if err := validateAmounts("starting balance", e.Onboarding.StartingBalances); err != nil {
		return err
	}
	if e.Daily.Cooldown <= 0 {
		return models.NewConfigurationError("daily cooldown must be positive")
	}

	if len(e.Banners) == 0 {
		return models.NewConfigurationError("no summon banners configured")
	}
	for kind, b := range e.Banners {
		if !b.Currency.Valid() || b.Cost < 0 {
			return models.NewConfigurationError(fmt.Sprintf("banner %q has invalid price", kind))
		}
		if _, err := Probabilities(b.Weights, b.Luck); err != nil {
			return fmt.Errorf("banner %q: %w", kind, err)
		}
	}

	for from, targets := range e.ExchangeRates {
		for to, rate := range targets {
			if !from.Valid() || !to.Valid() || from == to || !positive(rate) {
				return models.NewConfigurationError(fmt.Sprintf("invalid exchange rate %s->%s", from, to))
			}
		}
	}
	return nil
}

func validateAmounts(name string, amounts map[models.Currency]int64) error {
	for c, v := range amounts {
		if !c.Valid() {
			return models.NewConfigurationError(fmt.Sprintf("%s uses unknown currency %q", name, c))
		}
		if v < 0 {
			return models.NewConfigurationError(fmt.Sprintf("%s for %s is negative", name, c))
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// DefaultEconomy returns the built-in tables used when no game data file is given
func DefaultEconomy() *Economy {
	rarityCaps := map[models.Rarity]RarityCap{
		models.RarityCommon:    {BaseCap: 20, Ceiling: 40},
		models.RarityUncommon:  {BaseCap: 20, Ceiling: 50},
		models.RarityRare:      {BaseCap: 20, Ceiling: 60},
		models.RarityEpic:      {BaseCap: 20, Ceiling: 70},
		models.RarityCelestial: {BaseCap: 20, Ceiling: 80},
		models.RaritySupreme:   {BaseCap: 20, Ceiling: 90},
		models.RarityDeity:     {BaseCap: 20, Ceiling: 100},
	}

	return &Economy{
		Progression: ProgressionConfig{
			PlayerCurve:    XPCurve{Base: 100, Exponent: 1.5},
			MaxPlayerLevel: 100,
			CapThresholds: []LevelThreshold{
				{PlayerLevel: 1, Cap: 20},
				{PlayerLevel: 10, Cap: 30},
				{PlayerLevel: 20, Cap: 40},
				{PlayerLevel: 30, Cap: 50},
				{PlayerLevel: 40, Cap: 60},
				{PlayerLevel: 50, Cap: 70},
				{PlayerLevel: 60, Cap: 80},
				{PlayerLevel: 70, Cap: 90},
				{PlayerLevel: 80, Cap: 100},
			},
			RarityCaps:          rarityCaps,
			UpgradeCostBase:     10,
			UpgradeCostExponent: 1.2,
			UpgradeCostMultipliers: map[models.Rarity]float64{
				models.RarityCommon:    1.0,
				models.RarityUncommon:  1.2,
				models.RarityRare:      1.5,
				models.RarityEpic:      2.0,
				models.RarityCelestial: 2.5,
				models.RaritySupreme:   3.0,
				models.RarityDeity:     4.0,
			},
			StartingCreatureLevel: 1,
		},
		Power: PowerConfig{
			LevelMultiplierPerLevel: 0.05,
			StatWeights: map[models.Stat]float64{
				models.StatHP:          0.5,
				models.StatAttack:      2.0,
				models.StatDefense:     1.5,
				models.StatSpeed:       1.5,
				models.StatMagicResist: 1.0,
				models.StatCritRate:    200,
				models.StatBlockRate:   150,
				models.StatDodge:       150,
				models.StatMana:        0.3,
				models.StatManaRegen:   5.0,
			},
			RarityMultipliers: map[models.Rarity]float64{
				models.RarityCommon:    1.0,
				models.RarityUncommon:  1.1,
				models.RarityRare:      1.25,
				models.RarityEpic:      1.45,
				models.RarityCelestial: 1.7,
				models.RaritySupreme:   2.0,
				models.RarityDeity:     2.5,
			},
		},
		LimitBreak: LimitBreakConfig{
			CapIncreasePerBreak: 10,
			BaseCosts: map[models.Currency]int64{
				models.CurrencyCrystals: 5,
				models.CurrencyCoins:    1000,
			},
			RarityMultipliers: map[models.Rarity]float64{
				models.RarityCommon:    1.0,
				models.RarityUncommon:  1.5,
				models.RarityRare:      2.0,
				models.RarityEpic:      3.0,
				models.RarityCelestial: 4.0,
				models.RaritySupreme:   5.0,
				models.RarityDeity:     7.0,
			},
			LevelScalingFactor:       50,
			PreviousBreaksMultiplier: 1.5,
			StatBoostMultiplier:      1.1,
		},
		Dissolve: DissolveConfig{
			BaseRewards: map[models.Currency]int64{
				models.CurrencyEssence: 10,
				models.CurrencyShards:  1,
			},
			RarityMultipliers: map[models.Rarity]float64{
				models.RarityCommon:    1,
				models.RarityUncommon:  2,
				models.RarityRare:      5,
				models.RarityEpic:      10,
				models.RarityCelestial: 25,
				models.RaritySupreme:   50,
				models.RarityDeity:     100,
			},
		},
		Banners: map[string]Banner{
			"standard": {
				Kind:     "standard",
				Currency: models.CurrencyCoins,
				Cost:     1000,
				Weights: models.RarityWeightTable{
					models.RarityCommon:    60,
					models.RarityUncommon:  25,
					models.RarityRare:      10,
					models.RarityEpic:      4,
					models.RarityCelestial: 0.8,
					models.RaritySupreme:   0.18,
					models.RarityDeity:     0.02,
				},
			},
			"premium": {
				Kind:     "premium",
				Currency: models.CurrencyGems,
				Cost:     100,
				Weights: models.RarityWeightTable{
					models.RarityRare:      60,
					models.RarityEpic:      30,
					models.RarityCelestial: 7,
					models.RaritySupreme:   2.5,
					models.RarityDeity:     0.5,
				},
				Luck: 0.1,
			},
		},
		ExchangeRates: map[models.Currency]map[models.Currency]float64{
			models.CurrencyShards: {
				models.CurrencyCrystals: 0.1,
				models.CurrencyEssence:  5,
			},
			models.CurrencyGems: {
				models.CurrencyCoins: 100,
			},
		},
		Daily: DailyConfig{
			Rewards: map[models.Currency]int64{
				models.CurrencyCoins:   500,
				models.CurrencyEssence: 50,
				models.CurrencyGems:    5,
			},
			Cooldown: 24 * time.Hour,
		},
		Onboarding: OnboardingConfig{
			StartingBalances: map[models.Currency]int64{
				models.CurrencyCoins:   5000,
				models.CurrencyGems:    100,
				models.CurrencyEssence: 200,
			},
			StarterCreatureID: "emberling",
		},
	}
}
