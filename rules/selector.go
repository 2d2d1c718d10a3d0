package rules

import (
	"fmt"
	"math"
	"sort"

	"menagerie/models"
)

// TierProbability is a rarity with its final selection probability
type TierProbability struct {
	Rarity      models.Rarity
	Probability float64
}

// Selector draws rarities from weight tables
type Selector struct {
	rng Random
}

// NewSelector creates a selector over the given random source
func NewSelector(rng Random) *Selector {
	return &Selector{rng: rng}
}

// Select draws one rarity from the weight table.
//
// Luck multiplies the weight of every tier above the lowest tier present
// by (1 + luck). Tiers are walked in ascending order of adjusted weight and
// the first tier whose cumulative probability reaches the draw wins.
func (s *Selector) Select(weights models.RarityWeightTable, luck float64) (models.Rarity, error) {
	tiers, err := Probabilities(weights, luck)
	if err != nil {
		return 0, err
	}

	draw := s.rng.Float64()
	cumulative := 0.0
	for _, t := range tiers {
		cumulative += t.Probability
		if draw <= cumulative {
			return t.Rarity, nil
		}
	}

	// rounding can leave the cumulative sum a hair under 1
	return tiers[len(tiers)-1].Rarity, nil
}

// Probabilities returns the luck-adjusted, normalised probability of each
// tier in draw order. Zero-weight tiers are omitted.
func Probabilities(weights models.RarityWeightTable, luck float64) ([]TierProbability, error) {
	if math.IsNaN(luck) || math.IsInf(luck, 0) || luck < -1 {
		return nil, models.NewConfigurationError(fmt.Sprintf("luck must be a finite number >= -1, got %v", luck))
	}

	lowest := models.Rarity(math.MaxInt)
	for r, w := range weights {
		if !r.Valid() {
			return nil, models.NewConfigurationError(fmt.Sprintf("unknown rarity %d in weight table", int(r)))
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, models.NewConfigurationError(fmt.Sprintf("invalid weight %v for rarity %s", w, r))
		}
		if w > 0 && r < lowest {
			lowest = r
		}
	}

	tiers := make([]TierProbability, 0, len(weights))
	total := 0.0
	for r, w := range weights {
		if w == 0 {
			continue
		}
		if r > lowest {
			w *= 1 + luck
		}
		if w == 0 {
			continue
		}
		tiers = append(tiers, TierProbability{Rarity: r, Probability: w})
		total += w
	}
	if len(tiers) == 0 || total <= 0 {
		return nil, models.NewConfigurationError("weight table has no positive weights")
	}

	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].Probability != tiers[j].Probability {
			return tiers[i].Probability < tiers[j].Probability
		}
		return tiers[i].Rarity < tiers[j].Rarity
	})

	for i := range tiers {
		tiers[i].Probability /= total
	}
	return tiers, nil
}
