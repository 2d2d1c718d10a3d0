package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error kinds surfaced by the economy core. Callers match them with errors.Is
// and extract details with errors.As on the typed errors below.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrNotOwned              = errors.New("creature not owned by account")
	ErrProtected             = errors.New("creature is protected")
	ErrRateLimited           = errors.New("rate limited")
	ErrAccountNotFound       = errors.New("account not found")
	ErrDailyAlreadyClaimed   = errors.New("daily reward already claimed")
	ErrInvalidArgument       = errors.New("invalid argument")
)

// ConfigurationError reports malformed or empty static data
type ConfigurationError struct {
	Reason string
}

// NewConfigurationError creates a ConfigurationError
func NewConfigurationError(reason string) *ConfigurationError {
	return &ConfigurationError{Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InsufficientResourcesError reports which currency fell short and by how much
type InsufficientResourcesError struct {
	Currency  Currency
	Required  int64
	Available int64
}

func (e *InsufficientResourcesError) Error() string {
	return fmt.Sprintf("insufficient %s: have %d, need %d", e.Currency, e.Available, e.Required)
}

func (e *InsufficientResourcesError) Is(target error) bool {
	return target == ErrInsufficientResources
}

// Shortfall returns how much more of the currency is needed
func (e *InsufficientResourcesError) Shortfall() int64 {
	return e.Required - e.Available
}

// ProtectionReason explains why a creature cannot be dissolved
type ProtectionReason string

const (
	ProtectionLocked   ProtectionReason = "locked"
	ProtectionTeamSlot ProtectionReason = "team_slot"
)

// ProtectedError reports a creature that is locked or on the team
type ProtectedError struct {
	CreatureID uuid.UUID
	Reason     ProtectionReason
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("creature %s is protected (%s)", e.CreatureID, e.Reason)
}

func (e *ProtectedError) Is(target error) bool {
	return target == ErrProtected
}

// NotOwnedError reports a creature id the account does not own
type NotOwnedError struct {
	CreatureID uuid.UUID
}

func (e *NotOwnedError) Error() string {
	return fmt.Sprintf("creature %s not owned by account", e.CreatureID)
}

func (e *NotOwnedError) Is(target error) bool {
	return target == ErrNotOwned
}

// RateLimitedError tells the caller how long to wait before retrying
type RateLimitedError struct {
	RetryAfterSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: retry in %ds", e.RetryAfterSeconds)
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// DailyClaimedError carries the time the next claim becomes available
type DailyClaimedError struct {
	NextClaimAt time.Time
}

func (e *DailyClaimedError) Error() string {
	return fmt.Sprintf("daily reward already claimed, next claim at %s", e.NextClaimAt.UTC().Format(time.RFC3339))
}

func (e *DailyClaimedError) Is(target error) bool {
	return target == ErrDailyAlreadyClaimed
}
