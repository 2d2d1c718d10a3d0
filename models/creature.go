package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stat names one of the ten creature stat dimensions
type Stat string

const (
	StatHP          Stat = "hp"
	StatAttack      Stat = "attack"
	StatDefense     Stat = "defense"
	StatSpeed       Stat = "speed"
	StatMagicResist Stat = "magic_resist"
	StatCritRate    Stat = "crit_rate"
	StatBlockRate   Stat = "block_rate"
	StatDodge       Stat = "dodge"
	StatMana        Stat = "mana"
	StatManaRegen   Stat = "mana_regen"
)

// AllStats lists every stat dimension
var AllStats = []Stat{
	StatHP, StatAttack, StatDefense, StatSpeed, StatMagicResist,
	StatCritRate, StatBlockRate, StatDodge, StatMana, StatManaRegen,
}

// IsChance returns true for fractional stats expressed in [0,1]
func (s Stat) IsChance() bool {
	return s == StatCritRate || s == StatBlockRate || s == StatDodge
}

// Stats holds base stat values of a creature definition
type Stats struct {
	HP          float64 `yaml:"hp"`
	Attack      float64 `yaml:"attack"`
	Defense     float64 `yaml:"defense"`
	Speed       float64 `yaml:"speed"`
	MagicResist float64 `yaml:"magic_resist"`
	CritRate    float64 `yaml:"crit_rate"`
	BlockRate   float64 `yaml:"block_rate"`
	Dodge       float64 `yaml:"dodge"`
	Mana        float64 `yaml:"mana"`
	ManaRegen   float64 `yaml:"mana_regen"`
}

// Get returns the value of one stat
func (s Stats) Get(stat Stat) float64 {
	switch stat {
	case StatHP:
		return s.HP
	case StatAttack:
		return s.Attack
	case StatDefense:
		return s.Defense
	case StatSpeed:
		return s.Speed
	case StatMagicResist:
		return s.MagicResist
	case StatCritRate:
		return s.CritRate
	case StatBlockRate:
		return s.BlockRate
	case StatDodge:
		return s.Dodge
	case StatMana:
		return s.Mana
	case StatManaRegen:
		return s.ManaRegen
	}
	return 0
}

// Validate checks stats are non-negative and chance stats are fractions
func (s Stats) Validate() error {
	for _, stat := range AllStats {
		v := s.Get(stat)
		if v < 0 {
			return fmt.Errorf("stat %s is negative: %v", stat, v)
		}
		if stat.IsChance() && v > 1 {
			return fmt.Errorf("chance stat %s must be in [0,1]: %v", stat, v)
		}
	}
	return nil
}

// CreatureDefinition is a read-only catalog entry
type CreatureDefinition struct {
	ID        string
	Name      string
	Rarity    Rarity
	BaseStats Stats
}

// OwnedCreature is an instance of a creature owned by an account
type OwnedCreature struct {
	ID             uuid.UUID `db:"id"`
	OwnerID        string    `db:"owner_id"`
	DefinitionID   string    `db:"definition_id"`
	Level          int       `db:"level"`
	Experience     int64     `db:"experience"`
	LimitBreaks    int       `db:"limit_breaks"`
	StatMultiplier float64   `db:"stat_multiplier"`
	Locked         bool      `db:"locked"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
