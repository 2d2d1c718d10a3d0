package rules

import (
	"testing"

	"menagerie/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCreature(level, breaks int) *models.OwnedCreature {
	return &models.OwnedCreature{
		ID:             uuid.New(),
		OwnerID:        "player-1",
		DefinitionID:   "testling",
		Level:          level,
		LimitBreaks:    breaks,
		StatMultiplier: 1,
	}
}

func TestCanLimitBreak(t *testing.T) {
	e := DefaultEconomy()
	def := testDefinition(models.RarityCommon)

	testCases := []struct {
		name        string
		level       int
		breaks      int
		playerLevel int
		allowed     bool
		reason      models.LimitBreakReason
		currentCap  int
		nextCap     int
	}{
		{"below cap", 10, 0, 20, false, models.LimitBreakNotAtCap, 20, 20},
		{"at cap and eligible", 20, 0, 20, true, "", 20, 30},
		{"second break", 30, 1, 25, true, "", 30, 40},
		{"player level too low", 20, 0, 5, false, models.LimitBreakInsufficientPlayerLevel, 20, 20},
		{"player level caps a broken creature", 30, 2, 15, false, models.LimitBreakInsufficientPlayerLevel, 30, 30},
		{"rarity maximum", 40, 2, 80, false, models.LimitBreakAtRarityMaximum, 40, 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			el, err := CanLimitBreak(newCreature(tc.level, tc.breaks), def, tc.playerLevel, e)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, el.Allowed)
			assert.Equal(t, tc.reason, el.Reason)
			assert.Equal(t, tc.currentCap, el.CurrentCap)
			assert.Equal(t, tc.nextCap, el.NextCap)
		})
	}
}

func TestCanLimitBreak_AtRarityMaximumRegardlessOfPlayerLevel(t *testing.T) {
	e := DefaultEconomy()
	def := testDefinition(models.RarityCommon)
	creature := newCreature(40, 2)

	for _, playerLevel := range []int{20, 50, 80, 100} {
		el, err := CanLimitBreak(creature, def, playerLevel, e)
		require.NoError(t, err)
		assert.False(t, el.Allowed)
		assert.Equal(t, models.LimitBreakAtRarityMaximum, el.Reason, "player level %d", playerLevel)
	}
}

func TestCanLimitBreak_MaxLimitBreaks(t *testing.T) {
	e := DefaultEconomy()
	// a ceiling that is not a whole number of breaks above the base cap
	e.Progression.RarityCaps = map[models.Rarity]RarityCap{}
	for _, r := range models.AllRarities {
		e.Progression.RarityCaps[r] = RarityCap{BaseCap: 20, Ceiling: 45}
	}
	def := testDefinition(models.RarityCommon)

	maxBreaks, err := MaxLimitBreaks(models.RarityCommon, e)
	require.NoError(t, err)
	assert.Equal(t, 2, maxBreaks)

	el, err := CanLimitBreak(newCreature(40, 2), def, 80, e)
	require.NoError(t, err)
	assert.False(t, el.Allowed)
	assert.Equal(t, models.LimitBreakMaxLimitBreaks, el.Reason)
}

func TestLimitBreakCost(t *testing.T) {
	cfg := DefaultEconomy().LimitBreak

	cost, err := LimitBreakCost(newCreature(25, 0), models.RarityCommon, cfg)
	require.NoError(t, err)
	// 1.0 * (1 + 25/50) * 1.5^0
	assert.Equal(t, int64(7), cost[models.CurrencyCrystals])
	assert.Equal(t, int64(1500), cost[models.CurrencyCoins])

	cost, err = LimitBreakCost(newCreature(25, 1), models.RarityCommon, cfg)
	require.NoError(t, err)
	// 1.0 * 1.5 * 1.5^1
	assert.Equal(t, int64(11), cost[models.CurrencyCrystals])
	assert.Equal(t, int64(2250), cost[models.CurrencyCoins])

	cost, err = LimitBreakCost(newCreature(25, 0), models.RarityRare, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(15), cost[models.CurrencyCrystals])
	assert.Equal(t, int64(3000), cost[models.CurrencyCoins])
}

func TestLimitBreakCost_LaterBreaksCostMore(t *testing.T) {
	cfg := DefaultEconomy().LimitBreak

	prev := int64(0)
	for breaks := 0; breaks < 5; breaks++ {
		cost, err := LimitBreakCost(newCreature(40, breaks), models.RarityEpic, cfg)
		require.NoError(t, err)
		assert.Greater(t, cost[models.CurrencyCoins], prev)
		prev = cost[models.CurrencyCoins]
	}
}

func TestApplyLimitBreak(t *testing.T) {
	e := DefaultEconomy()
	def := testDefinition(models.RarityCommon)

	t.Run("performs break", func(t *testing.T) {
		creature := newCreature(20, 0)
		expectedCost, err := LimitBreakCost(creature, def.Rarity, e.LimitBreak)
		require.NoError(t, err)

		result, err := ApplyLimitBreak(creature, def, 20, e)
		require.NoError(t, err)
		assert.True(t, result.Performed)
		assert.Equal(t, 1, result.LimitBreaks)
		assert.Equal(t, 20, result.OldCap)
		assert.Equal(t, 30, result.NewCap)
		assert.Equal(t, expectedCost, result.CostPaid)
		assert.GreaterOrEqual(t, result.NewPower, result.OldPower)
		assert.Greater(t, result.PowerDelta(), int64(0))

		assert.Equal(t, 1, creature.LimitBreaks)
		assert.InDelta(t, 1.1, creature.StatMultiplier, 1e-9)

		levelCap, err := CurrentCap(creature, def, 20, e)
		require.NoError(t, err)
		assert.Equal(t, 30, levelCap)
	})

	t.Run("ineligible leaves creature untouched", func(t *testing.T) {
		creature := newCreature(10, 0)

		result, err := ApplyLimitBreak(creature, def, 20, e)
		require.NoError(t, err)
		assert.False(t, result.Performed)
		assert.Equal(t, models.LimitBreakNotAtCap, result.Reason)
		assert.Nil(t, result.CostPaid)
		assert.Equal(t, 0, creature.LimitBreaks)
		assert.Equal(t, 1.0, creature.StatMultiplier)
	})

	t.Run("power never decreases across successive breaks", func(t *testing.T) {
		deity := testDefinition(models.RarityDeity)
		creature := newCreature(20, 0)
		prev := Power(creature, deity, e.Power)

		for i := 0; i < 8; i++ {
			levelCap, err := CurrentCap(creature, deity, 100, e)
			require.NoError(t, err)
			creature.Level = levelCap

			result, err := ApplyLimitBreak(creature, deity, 100, e)
			require.NoError(t, err)
			require.True(t, result.Performed, "break %d: %s", i, result.Reason)
			assert.GreaterOrEqual(t, result.NewPower, prev)
			prev = result.NewPower
		}

		levelCap, err := CurrentCap(creature, deity, 100, e)
		require.NoError(t, err)
		assert.Equal(t, 100, levelCap)
	})
}
