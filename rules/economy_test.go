package rules

import (
	"testing"

	"menagerie/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEconomy_Valid(t *testing.T) {
	require.NoError(t, DefaultEconomy().Validate())
}

func TestEconomy_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(e *Economy)
	}{
		{"zero xp base", func(e *Economy) { e.Progression.PlayerCurve.Base = 0 }},
		{"unsorted thresholds", func(e *Economy) {
			e.Progression.CapThresholds = []LevelThreshold{{PlayerLevel: 10, Cap: 30}, {PlayerLevel: 1, Cap: 20}}
		}},
		{"missing rarity cap", func(e *Economy) { delete(e.Progression.RarityCaps, models.RarityDeity) }},
		{"ceiling below base", func(e *Economy) {
			e.Progression.RarityCaps[models.RarityRare] = RarityCap{BaseCap: 30, Ceiling: 20}
		}},
		{"missing power multiplier", func(e *Economy) { delete(e.Power.RarityMultipliers, models.RarityEpic) }},
		{"negative stat weight", func(e *Economy) { e.Power.StatWeights[models.StatDodge] = -1 }},
		{"zero cap increase", func(e *Economy) { e.LimitBreak.CapIncreasePerBreak = 0 }},
		{"unknown reward currency", func(e *Economy) { e.Dissolve.BaseRewards["gold"] = 5 }},
		{"negative daily reward", func(e *Economy) { e.Daily.Rewards[models.CurrencyCoins] = -1 }},
		{"zero cooldown", func(e *Economy) { e.Daily.Cooldown = 0 }},
		{"empty banner", func(e *Economy) {
			e.Banners["broken"] = Banner{Kind: "broken", Currency: models.CurrencyCoins, Weights: models.RarityWeightTable{}}
		}},
		{"self exchange", func(e *Economy) {
			e.ExchangeRates[models.CurrencyCoins] = map[models.Currency]float64{models.CurrencyCoins: 1}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := DefaultEconomy()
			tc.mutate(e)
			assert.ErrorIs(t, e.Validate(), models.ErrConfiguration)
		})
	}
}

func TestEconomy_Lookups(t *testing.T) {
	e := DefaultEconomy()

	b, err := e.Banner("standard")
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyCoins, b.Currency)

	_, err = e.Banner("missing")
	assert.ErrorIs(t, err, models.ErrConfiguration)

	rate, err := e.ExchangeRate(models.CurrencyGems, models.CurrencyCoins)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rate)

	_, err = e.ExchangeRate(models.CurrencyCoins, models.CurrencyGems)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
