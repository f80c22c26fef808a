package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if the v7 clock source fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// UUID returns the parsed form, for storage columns typed as UUID
func (id ID) UUID() (uuid.UUID, error) {
	return uuid.Parse(string(id))
}

// Domain-specific ID types
type (
	ChatID    ID
	RequestID ID
)

// String conversions for domain IDs
func (id ChatID) String() string    { return ID(id).String() }
func (id RequestID) String() string { return ID(id).String() }

// NewChatID creates the identifier of a recorded chat exchange
func NewChatID() ChatID { return ChatID(NewID()) }

// NewRequestID creates the identifier attached to an HTTP request
func NewRequestID() RequestID { return RequestID(NewID()) }

// ParseChatID parses a string into ChatID; it must be a UUID
func ParseChatID(s string) (ChatID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("chat ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid chat ID %q: %w", s, err)
	}
	return ChatID(s), nil
}

// ParseRequestID accepts any non-empty caller-supplied request id
func ParseRequestID(s string) (RequestID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("request ID cannot be empty")
	}
	return RequestID(s), nil
}
