package rules

import (
	"fmt"
	"math"

	"menagerie/models"
)

// DissolveReward returns what dissolving one creature of a rarity yields
func DissolveReward(rarity models.Rarity, cfg DissolveConfig) (map[models.Currency]int64, error) {
	mult, ok := cfg.RarityMultipliers[rarity]
	if !ok {
		return nil, models.NewConfigurationError(fmt.Sprintf("missing dissolve multiplier for rarity %s", rarity))
	}

	rewards := make(map[models.Currency]int64, len(cfg.BaseRewards))
	for c, base := range cfg.BaseRewards {
		v := math.Floor(float64(base) * mult)
		if v >= math.MaxInt64 {
			return nil, fmt.Errorf("dissolve reward overflow for %s", c)
		}
		if v > 0 {
			rewards[c] = int64(v)
		}
	}
	return rewards, nil
}
