package events

import (
	"context"
	"sync"

	"menagerie/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeAccountCreated     EventType = "account_created"
	EventTypeCreatureSummoned   EventType = "creature_summoned"
	EventTypeCreatureUpgraded   EventType = "creature_upgraded"
	EventTypeLimitBreak         EventType = "limit_break"
	EventTypeCreaturesDissolved EventType = "creatures_dissolved"
	EventTypeLevelUp            EventType = "level_up"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent mirrors one transaction log entry
type BalanceChangeEvent struct {
	AccountID  string
	Currency   models.Currency
	Operation  models.OperationKind
	OldBalance int64
	NewBalance int64
	Delta      int64
	CreatureID *uuid.UUID
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// AccountCreatedEvent represents a new account receiving its starter grant
type AccountCreatedEvent struct {
	AccountID       string
	StarterCreature uuid.UUID
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// CreatureSummonedEvent represents a creature drawn from a banner
type CreatureSummonedEvent struct {
	AccountID    string
	CreatureID   uuid.UUID
	DefinitionID string
	Rarity       models.Rarity
	Banner       string
}

func (e CreatureSummonedEvent) Type() EventType {
	return EventTypeCreatureSummoned
}

// CreatureUpgradedEvent represents a creature gaining levels
type CreatureUpgradedEvent struct {
	AccountID  string
	CreatureID uuid.UUID
	OldLevel   int
	NewLevel   int
	Cost       int64
}

func (e CreatureUpgradedEvent) Type() EventType {
	return EventTypeCreatureUpgraded
}

// LimitBreakEvent represents a performed limit break
type LimitBreakEvent struct {
	AccountID   string
	CreatureID  uuid.UUID
	LimitBreaks int
	NewCap      int
	PowerDelta  int64
}

func (e LimitBreakEvent) Type() EventType {
	return EventTypeLimitBreak
}

// CreaturesDissolvedEvent represents creatures converted into rewards
type CreaturesDissolvedEvent struct {
	AccountID   string
	CreatureIDs []uuid.UUID
	Rewards     map[models.Currency]int64
}

func (e CreaturesDissolvedEvent) Type() EventType {
	return EventTypeCreaturesDissolved
}

// LevelUpEvent represents an account gaining one or more levels
type LevelUpEvent struct {
	AccountID string
	OldLevel  int
	NewLevel  int
}

func (e LevelUpEvent) Type() EventType {
	return EventTypeLevelUp
}

// Publisher queues events for delivery
type Publisher interface {
	Publish(e Event)
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers.
// Handlers run on their own goroutines; a panicking handler is logged.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it
// commits. Flush forwards them to the real bus; Discard drops them.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to event bus")

	// handlers outlive the request that committed the transaction
	eventCtx := context.WithoutCancel(ctx)
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
