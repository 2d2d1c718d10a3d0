package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TeamSlot names one of the three team positions
type TeamSlot string

const (
	TeamSlotMain     TeamSlot = "main"
	TeamSlotSupport1 TeamSlot = "support1"
	TeamSlotSupport2 TeamSlot = "support2"
)

// AllTeamSlots lists the team slots in display order
var AllTeamSlots = []TeamSlot{TeamSlotMain, TeamSlotSupport1, TeamSlotSupport2}

// ParseTeamSlot converts a slot name into a TeamSlot
func ParseTeamSlot(s string) (TeamSlot, error) {
	slot := TeamSlot(s)
	switch slot {
	case TeamSlotMain, TeamSlotSupport1, TeamSlotSupport2:
		return slot, nil
	}
	return "", fmt.Errorf("%w: unknown team slot %q", ErrInvalidArgument, s)
}

// Team holds the creature references of the three team slots
type Team struct {
	Main     *uuid.UUID `db:"main_creature_id"`
	Support1 *uuid.UUID `db:"support1_creature_id"`
	Support2 *uuid.UUID `db:"support2_creature_id"`
}

// Get returns the creature in a slot, or nil when empty
func (t *Team) Get(slot TeamSlot) *uuid.UUID {
	switch slot {
	case TeamSlotMain:
		return t.Main
	case TeamSlotSupport1:
		return t.Support1
	case TeamSlotSupport2:
		return t.Support2
	}
	return nil
}

// Set places a creature into a slot; nil clears it
func (t *Team) Set(slot TeamSlot, creatureID *uuid.UUID) {
	switch slot {
	case TeamSlotMain:
		t.Main = creatureID
	case TeamSlotSupport1:
		t.Support1 = creatureID
	case TeamSlotSupport2:
		t.Support2 = creatureID
	}
}

// SlotOf returns the slot a creature occupies
func (t *Team) SlotOf(creatureID uuid.UUID) (TeamSlot, bool) {
	for _, slot := range AllTeamSlots {
		if id := t.Get(slot); id != nil && *id == creatureID {
			return slot, true
		}
	}
	return "", false
}

// Account is a player's progression and balances
type Account struct {
	ID             string     `db:"id"`
	Level          int        `db:"level"`
	Experience     int64      `db:"experience"`
	Balances       Balances   `db:"-"`
	Team           Team       `db:"-"`
	LastDailyClaim *time.Time `db:"last_daily_claim"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
