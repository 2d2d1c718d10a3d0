package rules

import (
	"testing"

	"menagerie/models"

	"github.com/stretchr/testify/assert"
)

func testDefinition(rarity models.Rarity) *models.CreatureDefinition {
	return &models.CreatureDefinition{
		ID:     "testling",
		Name:   "Testling",
		Rarity: rarity,
		BaseStats: models.Stats{
			HP: 120, Attack: 25, Defense: 15, Speed: 12, MagicResist: 8,
			CritRate: 0.1, BlockRate: 0.05, Dodge: 0.08, Mana: 40, ManaRegen: 3,
		},
	}
}

func TestPower_Formula(t *testing.T) {
	cfg := PowerConfig{
		LevelMultiplierPerLevel: 0.5,
		StatWeights: map[models.Stat]float64{
			models.StatHP:     1,
			models.StatAttack: 1,
		},
		RarityMultipliers: map[models.Rarity]float64{models.RarityRare: 2},
	}
	def := &models.CreatureDefinition{Rarity: models.RarityRare, BaseStats: models.Stats{HP: 10, Attack: 5}}

	creature := &models.OwnedCreature{Level: 3, StatMultiplier: 1}
	// (10+5) * (1 + 2*0.5) * 2
	assert.Equal(t, int64(60), Power(creature, def, cfg))

	creature.StatMultiplier = 1.5
	assert.Equal(t, int64(90), Power(creature, def, cfg))
}

func TestPower_FloorOfOne(t *testing.T) {
	def := &models.CreatureDefinition{Rarity: models.RarityCommon}
	creature := &models.OwnedCreature{Level: 1, StatMultiplier: 1}

	assert.Equal(t, int64(1), Power(creature, def, DefaultEconomy().Power))
	assert.Equal(t, int64(1), Power(creature, def, PowerConfig{}))
}

func TestPower_MonotonicInLevel(t *testing.T) {
	cfg := DefaultEconomy().Power

	for _, rarity := range models.AllRarities {
		def := testDefinition(rarity)
		prev := int64(0)
		for level := 1; level <= 100; level++ {
			p := Power(&models.OwnedCreature{Level: level, StatMultiplier: 1}, def, cfg)
			assert.GreaterOrEqual(t, p, prev, "rarity %s level %d", rarity, level)
			prev = p
		}
	}
}

func TestPower_HigherRarityScoresHigher(t *testing.T) {
	cfg := DefaultEconomy().Power
	creature := &models.OwnedCreature{Level: 10, StatMultiplier: 1}

	prev := int64(0)
	for _, rarity := range models.AllRarities {
		p := Power(creature, testDefinition(rarity), cfg)
		assert.Greater(t, p, prev, "rarity %s", rarity)
		prev = p
	}
}

func TestEffectiveStat(t *testing.T) {
	cfg := PowerConfig{LevelMultiplierPerLevel: 0.1}
	def := testDefinition(models.RarityCommon)

	creature := &models.OwnedCreature{Level: 11, StatMultiplier: 1.5}
	assert.InDelta(t, 25*2*1.5, EffectiveStat(creature, def, models.StatAttack, cfg), 1e-9)

	creature.StatMultiplier = 0
	assert.InDelta(t, 25*2.0, EffectiveStat(creature, def, models.StatAttack, cfg), 1e-9)
}
