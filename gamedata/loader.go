// Package gamedata loads the creature catalog and economy tables from YAML.
package gamedata

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"menagerie/models"
	"menagerie/rules"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

//go:embed data/default.yaml
var defaultData []byte

// GameData is everything static the core calculates with
type GameData struct {
	Catalog *Catalog
	Economy *rules.Economy
}

type fileFormat struct {
	Creatures []creatureEntry `yaml:"creatures"`
	Economy   economyEntry    `yaml:"economy"`
}

type creatureEntry struct {
	ID     string       `yaml:"id"`
	Name   string       `yaml:"name"`
	Rarity string       `yaml:"rarity"`
	Stats  models.Stats `yaml:"stats"`
}

type economyEntry struct {
	Progression struct {
		PlayerCurve struct {
			Base     float64 `yaml:"base"`
			Exponent float64 `yaml:"exponent"`
		} `yaml:"player_curve"`
		MaxPlayerLevel int `yaml:"max_player_level"`
		CapThresholds  []struct {
			PlayerLevel int `yaml:"player_level"`
			Cap         int `yaml:"cap"`
		} `yaml:"cap_thresholds"`
		RarityCaps map[string]struct {
			BaseCap int `yaml:"base_cap"`
			Ceiling int `yaml:"ceiling"`
		} `yaml:"rarity_caps"`
		UpgradeCost struct {
			Base              float64            `yaml:"base"`
			Exponent          float64            `yaml:"exponent"`
			RarityMultipliers map[string]float64 `yaml:"rarity_multipliers"`
		} `yaml:"upgrade_cost"`
		StartingCreatureLevel int `yaml:"starting_creature_level"`
	} `yaml:"progression"`

	Power struct {
		LevelMultiplierPerLevel float64            `yaml:"level_multiplier_per_level"`
		StatWeights             map[string]float64 `yaml:"stat_weights"`
		RarityMultipliers       map[string]float64 `yaml:"rarity_multipliers"`
	} `yaml:"power"`

	LimitBreak struct {
		CapIncreasePerBreak      int                `yaml:"cap_increase_per_break"`
		BaseCosts                map[string]int64   `yaml:"base_costs"`
		RarityMultipliers        map[string]float64 `yaml:"rarity_multipliers"`
		LevelScalingFactor       float64            `yaml:"level_scaling_factor"`
		PreviousBreaksMultiplier float64            `yaml:"previous_breaks_multiplier"`
		StatBoostMultiplier      float64            `yaml:"stat_boost_multiplier"`
	} `yaml:"limit_break"`

	Dissolve struct {
		BaseRewards       map[string]int64   `yaml:"base_rewards"`
		RarityMultipliers map[string]float64 `yaml:"rarity_multipliers"`
	} `yaml:"dissolve"`

	Banners map[string]struct {
		Currency string             `yaml:"currency"`
		Cost     int64              `yaml:"cost"`
		Luck     float64            `yaml:"luck"`
		Weights  map[string]float64 `yaml:"weights"`
	} `yaml:"banners"`

	ExchangeRates map[string]map[string]float64 `yaml:"exchange_rates"`

	Daily struct {
		Rewards  map[string]int64 `yaml:"rewards"`
		Cooldown string           `yaml:"cooldown"`
	} `yaml:"daily"`

	Onboarding struct {
		StartingBalances map[string]int64 `yaml:"starting_balances"`
		StarterCreature  string           `yaml:"starter_creature"`
	} `yaml:"onboarding"`
}

// Load reads game data from path, or the built-in data when path is empty
func Load(path string) (*GameData, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game data %s: %w", path, err)
	}
	gd, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load game data %s: %w", path, err)
	}
	return gd, nil
}

// Default returns the built-in game data
func Default() (*GameData, error) {
	gd, err := Parse(defaultData)
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in game data: %w", err)
	}
	return gd, nil
}

// Parse decodes and validates a game data document
func Parse(data []byte) (*GameData, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, models.NewConfigurationError(fmt.Sprintf("invalid yaml: %v", err))
	}

	defs := make([]models.CreatureDefinition, 0, len(f.Creatures))
	for _, c := range f.Creatures {
		rarity, err := models.ParseRarity(c.Rarity)
		if err != nil {
			return nil, fmt.Errorf("creature %q: %w", c.ID, err)
		}
		defs = append(defs, models.CreatureDefinition{
			ID:        c.ID,
			Name:      c.Name,
			Rarity:    rarity,
			BaseStats: c.Stats,
		})
	}
	catalog, err := NewCatalog(defs)
	if err != nil {
		return nil, err
	}

	economy, err := f.Economy.toEconomy()
	if err != nil {
		return nil, err
	}
	if err := economy.Validate(); err != nil {
		return nil, err
	}

	if _, ok := catalog.Get(economy.Onboarding.StarterCreatureID); !ok {
		return nil, models.NewConfigurationError(fmt.Sprintf("starter creature %q is not in the catalog", economy.Onboarding.StarterCreatureID))
	}
	for kind, b := range economy.Banners {
		for r, w := range b.Weights {
			if w > 0 && len(catalog.ByRarity(r)) == 0 {
				log.WithFields(log.Fields{
					"banner": kind,
					"rarity": r.String(),
				}).Warn("Banner can roll a rarity with no creatures in the catalog")
			}
		}
	}

	return &GameData{Catalog: catalog, Economy: economy}, nil
}

func (e *economyEntry) toEconomy() (*rules.Economy, error) {
	p := e.Progression
	out := &rules.Economy{
		Progression: rules.ProgressionConfig{
			PlayerCurve:           rules.XPCurve{Base: p.PlayerCurve.Base, Exponent: p.PlayerCurve.Exponent},
			MaxPlayerLevel:        p.MaxPlayerLevel,
			RarityCaps:            make(map[models.Rarity]rules.RarityCap, len(p.RarityCaps)),
			UpgradeCostBase:       p.UpgradeCost.Base,
			UpgradeCostExponent:   p.UpgradeCost.Exponent,
			StartingCreatureLevel: p.StartingCreatureLevel,
		},
		Power: rules.PowerConfig{
			LevelMultiplierPerLevel: e.Power.LevelMultiplierPerLevel,
			StatWeights:             make(map[models.Stat]float64, len(e.Power.StatWeights)),
		},
		LimitBreak: rules.LimitBreakConfig{
			CapIncreasePerBreak:      e.LimitBreak.CapIncreasePerBreak,
			LevelScalingFactor:       e.LimitBreak.LevelScalingFactor,
			PreviousBreaksMultiplier: e.LimitBreak.PreviousBreaksMultiplier,
			StatBoostMultiplier:      e.LimitBreak.StatBoostMultiplier,
		},
		Banners:       make(map[string]rules.Banner, len(e.Banners)),
		ExchangeRates: make(map[models.Currency]map[models.Currency]float64, len(e.ExchangeRates)),
		Onboarding: rules.OnboardingConfig{
			StarterCreatureID: e.Onboarding.StarterCreature,
		},
	}

	for _, t := range p.CapThresholds {
		out.Progression.CapThresholds = append(out.Progression.CapThresholds, rules.LevelThreshold{PlayerLevel: t.PlayerLevel, Cap: t.Cap})
	}
	for name, c := range p.RarityCaps {
		r, err := models.ParseRarity(name)
		if err != nil {
			return nil, err
		}
		out.Progression.RarityCaps[r] = rules.RarityCap{BaseCap: c.BaseCap, Ceiling: c.Ceiling}
	}

	var err error
	if out.Progression.UpgradeCostMultipliers, err = rarityTable(p.UpgradeCost.RarityMultipliers); err != nil {
		return nil, err
	}
	if out.Power.RarityMultipliers, err = rarityTable(e.Power.RarityMultipliers); err != nil {
		return nil, err
	}
	if out.LimitBreak.RarityMultipliers, err = rarityTable(e.LimitBreak.RarityMultipliers); err != nil {
		return nil, err
	}
	if out.Dissolve.RarityMultipliers, err = rarityTable(e.Dissolve.RarityMultipliers); err != nil {
		return nil, err
	}
	if out.LimitBreak.BaseCosts, err = currencyAmounts(e.LimitBreak.BaseCosts); err != nil {
		return nil, err
	}
	if out.Dissolve.BaseRewards, err = currencyAmounts(e.Dissolve.BaseRewards); err != nil {
		return nil, err
	}
	if out.Daily.Rewards, err = currencyAmounts(e.Daily.Rewards); err != nil {
		return nil, err
	}
	if out.Onboarding.StartingBalances, err = currencyAmounts(e.Onboarding.StartingBalances); err != nil {
		return nil, err
	}

	for name, w := range e.Power.StatWeights {
		stat := models.Stat(name)
		if !isStat(stat) {
			return nil, models.NewConfigurationError(fmt.Sprintf("unknown stat %q in stat weights", name))
		}
		out.Power.StatWeights[stat] = w
	}

	for kind, b := range e.Banners {
		currency, err := models.ParseCurrency(b.Currency)
		if err != nil {
			return nil, fmt.Errorf("banner %q: %w", kind, err)
		}
		weights, err := rarityTable(b.Weights)
		if err != nil {
			return nil, fmt.Errorf("banner %q: %w", kind, err)
		}
		out.Banners[kind] = rules.Banner{
			Kind:     kind,
			Currency: currency,
			Cost:     b.Cost,
			Weights:  models.RarityWeightTable(weights),
			Luck:     b.Luck,
		}
	}

	for fromName, targets := range e.ExchangeRates {
		from, err := models.ParseCurrency(fromName)
		if err != nil {
			return nil, err
		}
		out.ExchangeRates[from] = make(map[models.Currency]float64, len(targets))
		for toName, rate := range targets {
			to, err := models.ParseCurrency(toName)
			if err != nil {
				return nil, err
			}
			out.ExchangeRates[from][to] = rate
		}
	}

	if e.Daily.Cooldown != "" {
		d, err := time.ParseDuration(e.Daily.Cooldown)
		if err != nil {
			return nil, models.NewConfigurationError(fmt.Sprintf("invalid daily cooldown %q", e.Daily.Cooldown))
		}
		out.Daily.Cooldown = d
	}

	return out, nil
}

func rarityTable(in map[string]float64) (map[models.Rarity]float64, error) {
	out := make(map[models.Rarity]float64, len(in))
	for name, v := range in {
		r, err := models.ParseRarity(name)
		if err != nil {
			return nil, err
		}
		out[r] = v
	}
	return out, nil
}

func currencyAmounts(in map[string]int64) (map[models.Currency]int64, error) {
	out := make(map[models.Currency]int64, len(in))
	for name, v := range in {
		c, err := models.ParseCurrency(name)
		if err != nil {
			return nil, err
		}
		out[c] = v
	}
	return out, nil
}

func isStat(s models.Stat) bool {
	for _, known := range models.AllStats {
		if s == known {
			return true
		}
	}
	return false
}
