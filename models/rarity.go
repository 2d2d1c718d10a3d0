package models

import (
	"fmt"
	"strings"
)

// Rarity is the ordered rarity tier of a creature
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityCelestial
	RaritySupreme
	RarityDeity
)

// AllRarities lists every tier from lowest to highest
var AllRarities = []Rarity{
	RarityCommon,
	RarityUncommon,
	RarityRare,
	RarityEpic,
	RarityCelestial,
	RaritySupreme,
	RarityDeity,
}

var rarityNames = map[Rarity]string{
	RarityCommon:    "common",
	RarityUncommon:  "uncommon",
	RarityRare:      "rare",
	RarityEpic:      "epic",
	RarityCelestial: "celestial",
	RaritySupreme:   "supreme",
	RarityDeity:     "deity",
}

// ParseRarity converts a tier name (case-insensitive) into a Rarity
func ParseRarity(s string) (Rarity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for r, n := range rarityNames {
		if n == name {
			return r, nil
		}
	}
	return 0, NewConfigurationError(fmt.Sprintf("unknown rarity %q", s))
}

// Valid returns true if r is a known tier
func (r Rarity) Valid() bool {
	_, ok := rarityNames[r]
	return ok
}

func (r Rarity) String() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return fmt.Sprintf("rarity(%d)", int(r))
}

// RarityWeightTable maps tiers to non-negative selection weights.
// Weights need not sum to 1.
type RarityWeightTable map[Rarity]float64
