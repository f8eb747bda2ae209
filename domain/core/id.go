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

// InvocationID tags one calculator run in logs and reports.
type InvocationID ID

func (id InvocationID) String() string { return ID(id).String() }

// NewInvocationID returns a fresh, time-ordered invocation identifier.
func NewInvocationID() InvocationID {
	return InvocationID(NewID())
}

// ParseInvocationID parses a string into InvocationID
func ParseInvocationID(s string) (InvocationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("invocation ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid invocation ID %q: %w", s, err)
	}
	return InvocationID(s), nil
}
