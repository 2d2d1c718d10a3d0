package gamedata

import (
	"os"
	"path/filepath"
	"testing"

	"menagerie/models"
	"menagerie/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_MatchesBuiltInEconomy(t *testing.T) {
	gd, err := Default()
	require.NoError(t, err)

	assert.Equal(t, rules.DefaultEconomy(), gd.Economy)
	assert.Greater(t, gd.Catalog.Len(), 0)

	for _, r := range models.AllRarities {
		assert.NotEmpty(t, gd.Catalog.ByRarity(r), "rarity %s has no creatures", r)
	}

	starter, ok := gd.Catalog.Get("emberling")
	require.True(t, ok)
	assert.Equal(t, models.RarityCommon, starter.Rarity)
	assert.Equal(t, 110.0, starter.BaseStats.HP)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, defaultData, 0o600))

	gd, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultEconomy(), gd.Economy)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"malformed yaml", "creatures: [\n"},
		{"empty catalog", "creatures: []\n"},
		{"unknown rarity", `
creatures:
  - id: blob
    name: Blob
    rarity: legendary
`},
		{"chance stat above one", `
creatures:
  - id: blob
    name: Blob
    rarity: common
    stats: {hp: 10, dodge: 1.5}
`},
		{"duplicate id", `
creatures:
  - {id: blob, name: Blob, rarity: common}
  - {id: blob, name: Blob Two, rarity: rare}
`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}

func TestCatalog_Pick(t *testing.T) {
	gd, err := Default()
	require.NoError(t, err)

	rng := rules.NewRandom(3)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		def, err := gd.Catalog.Pick(models.RarityCommon, rng)
		require.NoError(t, err)
		assert.Equal(t, models.RarityCommon, def.Rarity)
		seen[def.ID] = true
	}
	assert.Len(t, seen, len(gd.Catalog.ByRarity(models.RarityCommon)))

	only, err := NewCatalog([]models.CreatureDefinition{{ID: "solo", Rarity: models.RarityCommon}})
	require.NoError(t, err)
	_, err = only.Pick(models.RarityDeity, rng)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
