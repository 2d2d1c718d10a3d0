package models

import "github.com/google/uuid"

// CollectionEntry is one owned creature as shown in an account's collection
type CollectionEntry struct {
	Creature   *OwnedCreature
	Definition *CreatureDefinition
	Power      int64
	LevelCap   int
	// empty when the creature is not on the team
	TeamSlot TeamSlot
}

// StatLeader is the creature with the highest effective value of one stat
type StatLeader struct {
	CreatureID   uuid.UUID
	DefinitionID string
	Value        float64
}

// AccountStats summarises an account's progression and collection
type AccountStats struct {
	AccountID     string
	Level         int
	Experience    int64
	XPToNextLevel int64
	Balances      Balances
	CreatureCount int
	ByRarity      map[Rarity]int
	TotalPower    int64
	TeamPower     int64
	BestInStat    map[Stat]StatLeader
}
