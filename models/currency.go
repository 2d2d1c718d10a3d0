package models

import (
	"fmt"
	"math"
)

// Currency identifies one of the account's numeric balances
type Currency string

const (
	CurrencyCoins    Currency = "coins"    // primary currency
	CurrencyGems     Currency = "gems"     // premium currency
	CurrencyEssence  Currency = "essence"  // upgrade material
	CurrencyCrystals Currency = "crystals" // limit break material
	CurrencyShards   Currency = "shards"
)

// AllCurrencies lists every currency in display order
var AllCurrencies = []Currency{
	CurrencyCoins,
	CurrencyGems,
	CurrencyEssence,
	CurrencyCrystals,
	CurrencyShards,
}

// ParseCurrency converts a currency name into a Currency
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.Valid() {
		return "", NewConfigurationError(fmt.Sprintf("unknown currency %q", s))
	}
	return c, nil
}

// Valid returns true if the currency is one of the known kinds
func (c Currency) Valid() bool {
	switch c {
	case CurrencyCoins, CurrencyGems, CurrencyEssence, CurrencyCrystals, CurrencyShards:
		return true
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// Balances holds every currency balance of an account.
// Fields are addressed through Get/Set so unknown currencies are rejected.
type Balances struct {
	Coins    int64 `db:"coins"`
	Gems     int64 `db:"gems"`
	Essence  int64 `db:"essence"`
	Crystals int64 `db:"crystals"`
	Shards   int64 `db:"shards"`
}

// Get returns the balance of a currency
func (b *Balances) Get(c Currency) (int64, error) {
	switch c {
	case CurrencyCoins:
		return b.Coins, nil
	case CurrencyGems:
		return b.Gems, nil
	case CurrencyEssence:
		return b.Essence, nil
	case CurrencyCrystals:
		return b.Crystals, nil
	case CurrencyShards:
		return b.Shards, nil
	default:
		return 0, NewConfigurationError(fmt.Sprintf("unknown currency %q", c))
	}
}

// Set overwrites the balance of a currency. Negative values are rejected.
func (b *Balances) Set(c Currency, value int64) error {
	if value < 0 {
		return fmt.Errorf("balance of %s cannot be negative: %d", c, value)
	}
	switch c {
	case CurrencyCoins:
		b.Coins = value
	case CurrencyGems:
		b.Gems = value
	case CurrencyEssence:
		b.Essence = value
	case CurrencyCrystals:
		b.Crystals = value
	case CurrencyShards:
		b.Shards = value
	default:
		return NewConfigurationError(fmt.Sprintf("unknown currency %q", c))
	}
	return nil
}

// Add credits amount to a currency, failing on int64 overflow
func (b *Balances) Add(c Currency, amount int64) (before, after int64, err error) {
	before, err = b.Get(c)
	if err != nil {
		return 0, 0, err
	}
	if amount < 0 {
		return before, before, fmt.Errorf("credit amount must not be negative: %d", amount)
	}
	if before > math.MaxInt64-amount {
		return before, before, fmt.Errorf("balance overflow crediting %d %s", amount, c)
	}
	after = before + amount
	return before, after, b.Set(c, after)
}

// Deduct debits amount from a currency, failing with InsufficientResources
// when the balance does not cover it. The balance is untouched on failure.
func (b *Balances) Deduct(c Currency, amount int64) (before, after int64, err error) {
	before, err = b.Get(c)
	if err != nil {
		return 0, 0, err
	}
	if amount < 0 {
		return before, before, fmt.Errorf("debit amount must not be negative: %d", amount)
	}
	if before < amount {
		return before, before, &InsufficientResourcesError{Currency: c, Required: amount, Available: before}
	}
	after = before - amount
	return before, after, b.Set(c, after)
}

// CheckCovers verifies every cost is covered without mutating anything.
// Costs are checked in AllCurrencies order so the reported shortfall is stable.
func (b *Balances) CheckCovers(costs map[Currency]int64) error {
	for _, c := range AllCurrencies {
		need, ok := costs[c]
		if !ok || need <= 0 {
			continue
		}
		have, _ := b.Get(c)
		if have < need {
			return &InsufficientResourcesError{Currency: c, Required: need, Available: have}
		}
	}
	for c := range costs {
		if !c.Valid() {
			return NewConfigurationError(fmt.Sprintf("unknown currency %q", c))
		}
	}
	return nil
}
