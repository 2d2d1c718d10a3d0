package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"menagerie/cache"
	"menagerie/gamedata"
	"menagerie/metrics"
	"menagerie/models"
	"menagerie/rules"

	log "github.com/sirupsen/logrus"
)

// Projection names used as cache key suffixes
const (
	ProjectionCollection = "collection"
	ProjectionStats      = "stats"
)

const (
	defaultLogLimit = 20
	maxLogLimit     = 100
)

// CollectionService serves read projections of an account. Results are
// cached per account until the ledger invalidates them or they expire.
type CollectionService struct {
	uowFactory UnitOfWorkFactory
	data       *gamedata.GameData
	cache      ProjectionCache
	metrics    *metrics.Metrics
}

// NewCollectionService creates a new collection service. projections and m
// may be nil.
func NewCollectionService(uowFactory UnitOfWorkFactory, data *gamedata.GameData, projections ProjectionCache, m *metrics.Metrics) *CollectionService {
	return &CollectionService{
		uowFactory: uowFactory,
		data:       data,
		cache:      projections,
		metrics:    m,
	}
}

// GetCollection returns the account's creatures, strongest first
func (s *CollectionService) GetCollection(ctx context.Context, accountID string) ([]*models.CollectionEntry, error) {
	key := cache.AccountKey(accountID, ProjectionCollection)
	if entries, ok := cached[[]*models.CollectionEntry](s, key, ProjectionCollection); ok {
		return entries, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := s.getAccount(ctx, uow, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.buildCollection(ctx, uow, account)
	if err != nil {
		return nil, err
	}

	s.store(key, entries)
	return entries, nil
}

// GetStats summarises the account's progression and collection
func (s *CollectionService) GetStats(ctx context.Context, accountID string) (*models.AccountStats, error) {
	key := cache.AccountKey(accountID, ProjectionStats)
	if stats, ok := cached[*models.AccountStats](s, key, ProjectionStats); ok {
		return stats, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := s.getAccount(ctx, uow, accountID)
	if err != nil {
		return nil, err
	}
	entries, err := s.buildCollection(ctx, uow, account)
	if err != nil {
		return nil, err
	}

	e := s.data.Economy
	stats := &models.AccountStats{
		AccountID:     account.ID,
		Level:         account.Level,
		Experience:    account.Experience,
		Balances:      account.Balances,
		CreatureCount: len(entries),
		ByRarity:      make(map[models.Rarity]int),
		BestInStat:    make(map[models.Stat]models.StatLeader),
	}
	if account.Level < e.Progression.MaxPlayerLevel {
		stats.XPToNextLevel = rules.XPForNextLevel(account.Level, e.Progression.PlayerCurve) - account.Experience
	}

	for _, entry := range entries {
		stats.ByRarity[entry.Definition.Rarity]++
		stats.TotalPower += entry.Power
		if entry.TeamSlot != "" {
			stats.TeamPower += entry.Power
		}

		for _, stat := range models.AllStats {
			value := rules.EffectiveStat(entry.Creature, entry.Definition, stat, e.Power)
			if leader, ok := stats.BestInStat[stat]; ok && leader.Value >= value {
				continue
			}
			stats.BestInStat[stat] = models.StatLeader{
				CreatureID:   entry.Creature.ID,
				DefinitionID: entry.Definition.ID,
				Value:        value,
			}
		}
	}

	s.store(key, stats)
	return stats, nil
}

// GetTransactionLog returns the newest log entries of an account; it is
// never cached
func (s *CollectionService) GetTransactionLog(ctx context.Context, accountID string, limit int) ([]*models.TransactionLogEntry, error) {
	if limit <= 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxLogLimit)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.TransactionLogRepository().ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction log: %w", err)
	}
	return entries, nil
}

func (s *CollectionService) getAccount(ctx context.Context, uow UnitOfWork, accountID string) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrAccountNotFound, accountID)
	}
	return account, nil
}

func (s *CollectionService) buildCollection(ctx context.Context, uow UnitOfWork, account *models.Account) ([]*models.CollectionEntry, error) {
	creatures, err := uow.CreatureRepository().ListByOwner(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list creatures: %w", err)
	}

	e := s.data.Economy
	entries := make([]*models.CollectionEntry, 0, len(creatures))
	for _, creature := range creatures {
		def, ok := s.data.Catalog.Get(creature.DefinitionID)
		if !ok {
			log.WithFields(log.Fields{
				"account":    account.ID,
				"creature":   creature.ID,
				"definition": creature.DefinitionID,
			}).Warn("Owned creature has no catalog definition")
			continue
		}

		levelCap, err := rules.CurrentCap(creature, def, account.Level, e)
		if err != nil {
			return nil, err
		}
		slot, _ := account.Team.SlotOf(creature.ID)

		entries = append(entries, &models.CollectionEntry{
			Creature:   creature,
			Definition: def,
			Power:      rules.Power(creature, def, e.Power),
			LevelCap:   levelCap,
			TeamSlot:   slot,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Power != entries[j].Power {
			return entries[i].Power > entries[j].Power
		}
		return bytes.Compare(entries[i].Creature.ID[:], entries[j].Creature.ID[:]) < 0
	})
	return entries, nil
}

func (s *CollectionService) store(key string, value any) {
	if s.cache != nil {
		s.cache.Set(key, value)
	}
}

func cached[T any](s *CollectionService, key, projection string) (T, bool) {
	var zero T
	if s.cache == nil {
		return zero, false
	}
	v, ok := s.cache.Get(key)
	if ok {
		if typed, ok := v.(T); ok {
			s.metrics.RecordCacheLookup(projection, true)
			return typed, true
		}
	}
	s.metrics.RecordCacheLookup(projection, false)
	return zero, false
}
