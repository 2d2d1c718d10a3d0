package rules

import (
	"fmt"
	"math"

	"menagerie/models"
)

// MaxLimitBreaks returns how many breaks a rarity allows before its ceiling
func MaxLimitBreaks(rarity models.Rarity, e *Economy) (int, error) {
	rc, ok := e.Progression.RarityCaps[rarity]
	if !ok {
		return 0, models.NewConfigurationError(fmt.Sprintf("missing level cap for rarity %s", rarity))
	}
	return (rc.Ceiling - rc.BaseCap) / e.LimitBreak.CapIncreasePerBreak, nil
}

// CurrentCap returns the level a creature may currently reach: its
// break-extended cap, bounded by what its owner's level unlocks and by the
// rarity ceiling
func CurrentCap(creature *models.OwnedCreature, def *models.CreatureDefinition, playerLevel int, e *Economy) (int, error) {
	return capWithBreaks(creature.LimitBreaks, def.Rarity, playerLevel, e)
}

func capWithBreaks(breaks int, rarity models.Rarity, playerLevel int, e *Economy) (int, error) {
	rc, ok := e.Progression.RarityCaps[rarity]
	if !ok {
		return 0, models.NewConfigurationError(fmt.Sprintf("missing level cap for rarity %s", rarity))
	}
	playerCap, err := CreatureLevelCap(playerLevel, rarity, e.Progression.CapThresholds, e.Progression.RarityCaps)
	if err != nil {
		return 0, err
	}
	return min(rc.BaseCap+breaks*e.LimitBreak.CapIncreasePerBreak, playerCap, rc.Ceiling), nil
}

// CanLimitBreak reports whether the creature may break its cap now.
// Ineligibility is a reason, not an error.
func CanLimitBreak(creature *models.OwnedCreature, def *models.CreatureDefinition, playerLevel int, e *Economy) (models.LimitBreakEligibility, error) {
	rc, ok := e.Progression.RarityCaps[def.Rarity]
	if !ok {
		return models.LimitBreakEligibility{}, models.NewConfigurationError(fmt.Sprintf("missing level cap for rarity %s", def.Rarity))
	}
	current, err := CurrentCap(creature, def, playerLevel, e)
	if err != nil {
		return models.LimitBreakEligibility{}, err
	}
	playerCap, err := CreatureLevelCap(playerLevel, def.Rarity, e.Progression.CapThresholds, e.Progression.RarityCaps)
	if err != nil {
		return models.LimitBreakEligibility{}, err
	}
	maxBreaks, err := MaxLimitBreaks(def.Rarity, e)
	if err != nil {
		return models.LimitBreakEligibility{}, err
	}

	el := models.LimitBreakEligibility{CurrentCap: current, NextCap: current}
	switch {
	case creature.Level < current:
		el.Reason = models.LimitBreakNotAtCap
	case current >= rc.Ceiling:
		el.Reason = models.LimitBreakAtRarityMaximum
	case playerCap <= current:
		el.Reason = models.LimitBreakInsufficientPlayerLevel
	case creature.LimitBreaks >= maxBreaks:
		el.Reason = models.LimitBreakMaxLimitBreaks
	default:
		el.Allowed = true
		el.NextCap, err = capWithBreaks(creature.LimitBreaks+1, def.Rarity, playerLevel, e)
		if err != nil {
			return models.LimitBreakEligibility{}, err
		}
	}
	return el, nil
}

// LimitBreakCost returns the materials the next break costs
func LimitBreakCost(creature *models.OwnedCreature, rarity models.Rarity, cfg LimitBreakConfig) (map[models.Currency]int64, error) {
	rarityMult, ok := cfg.RarityMultipliers[rarity]
	if !ok {
		return nil, models.NewConfigurationError(fmt.Sprintf("missing limit break multiplier for rarity %s", rarity))
	}

	scale := rarityMult *
		(1 + float64(creature.Level)/cfg.LevelScalingFactor) *
		math.Pow(cfg.PreviousBreaksMultiplier, float64(creature.LimitBreaks))

	costs := make(map[models.Currency]int64, len(cfg.BaseCosts))
	for c, base := range cfg.BaseCosts {
		v := math.Floor(float64(base) * scale)
		if v >= math.MaxInt64 {
			return nil, fmt.Errorf("limit break cost overflow for %s", c)
		}
		costs[c] = int64(v)
	}
	return costs, nil
}

// ApplyLimitBreak performs the break on creature in place after checking
// eligibility. It does not touch balances; the caller deducts CostPaid.
func ApplyLimitBreak(creature *models.OwnedCreature, def *models.CreatureDefinition, playerLevel int, e *Economy) (*models.LimitBreakResult, error) {
	el, err := CanLimitBreak(creature, def, playerLevel, e)
	if err != nil {
		return nil, err
	}

	result := &models.LimitBreakResult{
		CreatureID:  creature.ID,
		LimitBreaks: creature.LimitBreaks,
		OldCap:      el.CurrentCap,
		NewCap:      el.CurrentCap,
		OldPower:    Power(creature, def, e.Power),
	}
	result.NewPower = result.OldPower
	if !el.Allowed {
		result.Reason = el.Reason
		return result, nil
	}

	cost, err := LimitBreakCost(creature, def.Rarity, e.LimitBreak)
	if err != nil {
		return nil, err
	}

	if creature.StatMultiplier <= 0 {
		creature.StatMultiplier = 1
	}
	creature.LimitBreaks++
	creature.StatMultiplier *= e.LimitBreak.StatBoostMultiplier

	result.Performed = true
	result.LimitBreaks = creature.LimitBreaks
	result.NewCap = el.NextCap
	result.NewPower = Power(creature, def, e.Power)
	result.CostPaid = cost
	return result, nil
}
