package types

import (
	"github.com/google/uuid"
)

// RuleID identifies a catalog rule.
// String alias enables type safety while maintaining JSON string serialization.
type RuleID string

// SessionID identifies one configurator session.
// String alias enables type safety while maintaining JSON string serialization.
type SessionID string

// NewRuleID generates a UUIDv7 rule identifier.
// Time-ordered IDs keep rule listings in creation order without a sort.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewSessionID generates a UUIDv7 session identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}
