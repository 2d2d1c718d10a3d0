package gamedata

import (
	"fmt"
	"sort"

	"menagerie/models"
	"menagerie/rules"
)

// Catalog is the read-only set of creature definitions
type Catalog struct {
	byID     map[string]*models.CreatureDefinition
	byRarity map[models.Rarity][]*models.CreatureDefinition
}

// NewCatalog indexes definitions by id and rarity, rejecting duplicates and
// invalid stats
func NewCatalog(defs []models.CreatureDefinition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, models.NewConfigurationError("creature catalog is empty")
	}

	c := &Catalog{
		byID:     make(map[string]*models.CreatureDefinition, len(defs)),
		byRarity: make(map[models.Rarity][]*models.CreatureDefinition),
	}
	for i := range defs {
		def := defs[i]
		if def.ID == "" {
			return nil, models.NewConfigurationError("creature definition without id")
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, models.NewConfigurationError(fmt.Sprintf("duplicate creature id %q", def.ID))
		}
		if !def.Rarity.Valid() {
			return nil, models.NewConfigurationError(fmt.Sprintf("creature %q has unknown rarity", def.ID))
		}
		if err := def.BaseStats.Validate(); err != nil {
			return nil, models.NewConfigurationError(fmt.Sprintf("creature %q: %v", def.ID, err))
		}
		c.byID[def.ID] = &def
		c.byRarity[def.Rarity] = append(c.byRarity[def.Rarity], &def)
	}

	for _, list := range c.byRarity {
		sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	}
	return c, nil
}

// Get returns a definition by id
func (c *Catalog) Get(id string) (*models.CreatureDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// MustGet returns a definition by id or a ConfigurationError when a stored
// creature references an id the catalog no longer has
func (c *Catalog) MustGet(id string) (*models.CreatureDefinition, error) {
	def, ok := c.byID[id]
	if !ok {
		return nil, models.NewConfigurationError(fmt.Sprintf("unknown creature definition %q", id))
	}
	return def, nil
}

// ByRarity returns the definitions of one rarity ordered by id
func (c *Catalog) ByRarity(r models.Rarity) []*models.CreatureDefinition {
	return c.byRarity[r]
}

// Len returns the number of definitions
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Pick returns a uniformly random definition of the given rarity
func (c *Catalog) Pick(r models.Rarity, rng rules.Random) (*models.CreatureDefinition, error) {
	list := c.byRarity[r]
	if len(list) == 0 {
		return nil, models.NewConfigurationError(fmt.Sprintf("catalog has no creatures of rarity %s", r))
	}
	return list[rng.Intn(len(list))], nil
}
