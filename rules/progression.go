package rules

import (
	"fmt"
	"math"

	"menagerie/models"
)

// XPForNextLevel returns the experience needed to advance from level
func XPForNextLevel(level int, curve XPCurve) int64 {
	if level < 1 {
		level = 1
	}
	return int64(math.Floor(curve.Base * math.Pow(float64(level), curve.Exponent)))
}

// ApplyXP adds amount to the pool and rolls over as many levels as it covers.
// Once maxLevel is reached the remaining experience is dropped.
func ApplyXP(level int, xp, amount int64, curve XPCurve, maxLevel int) models.ProgressionResult {
	result := models.ProgressionResult{OldLevel: level, NewLevel: level}
	if amount < 0 {
		amount = 0
	}

	if level >= maxLevel {
		result.NewLevel = maxLevel
		return result
	}

	pool := xp + amount
	for level < maxLevel {
		need := XPForNextLevel(level, curve)
		if need <= 0 || pool < need {
			break
		}
		pool -= need
		level++
	}
	if level >= maxLevel {
		level = maxLevel
		pool = 0
	}

	result.NewLevel = level
	result.Experience = pool
	result.LeveledUp = level > result.OldLevel
	return result
}

// CreatureLevelCap returns the level a creature of the given rarity may reach
// without limit breaks, given its owner's level
func CreatureLevelCap(playerLevel int, rarity models.Rarity, thresholds []LevelThreshold, caps map[models.Rarity]RarityCap) (int, error) {
	rc, ok := caps[rarity]
	if !ok {
		return 0, models.NewConfigurationError(fmt.Sprintf("missing level cap for rarity %s", rarity))
	}

	unlocked := rc.BaseCap
	for _, t := range thresholds {
		if t.PlayerLevel > playerLevel {
			break
		}
		unlocked = t.Cap
	}
	return min(unlocked, rc.Ceiling), nil
}

// UpgradeCost returns the essence cost of levelling from fromLevel to toLevel
func UpgradeCost(fromLevel, toLevel int, rarity models.Rarity, cfg ProgressionConfig) (int64, error) {
	mult, ok := cfg.UpgradeCostMultipliers[rarity]
	if !ok {
		return 0, models.NewConfigurationError(fmt.Sprintf("missing upgrade cost multiplier for rarity %s", rarity))
	}

	var total int64
	for l := fromLevel; l < toLevel; l++ {
		step := int64(math.Floor(cfg.UpgradeCostBase * math.Pow(float64(l), cfg.UpgradeCostExponent) * mult))
		if total > math.MaxInt64-step {
			return 0, fmt.Errorf("upgrade cost overflow from level %d to %d", fromLevel, toLevel)
		}
		total += step
	}
	return total, nil
}
