package rules

import (
	"math"

	"menagerie/models"
)

// Power scores a creature as a single comparable number, never below 1
func Power(creature *models.OwnedCreature, def *models.CreatureDefinition, cfg PowerConfig) int64 {
	sum := 0.0
	for _, stat := range models.AllStats {
		sum += EffectiveStat(creature, def, stat, cfg) * cfg.StatWeights[stat]
	}

	rarityMult, ok := cfg.RarityMultipliers[def.Rarity]
	if !ok {
		rarityMult = 1
	}

	power := math.Floor(sum * rarityMult)
	if math.IsNaN(power) || power < 1 {
		return 1
	}
	if power >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(power)
}

// EffectiveStat returns a base stat scaled by level and limit break boost
func EffectiveStat(creature *models.OwnedCreature, def *models.CreatureDefinition, stat models.Stat, cfg PowerConfig) float64 {
	levelScale := 1 + float64(creature.Level-1)*cfg.LevelMultiplierPerLevel
	boost := creature.StatMultiplier
	if boost <= 0 {
		boost = 1
	}
	return def.BaseStats.Get(stat) * levelScale * boost
}
