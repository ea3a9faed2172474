package models

import (
	"errors"
	"time"
)

// Role tags who produced a message. An error role marks a user message
// whose delivery to the provider failed.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Message represents a single chat bubble within a session.
type Message struct {
	ID           string    `json:"id"`
	Role         Role      `json:"role"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	PersonaID    string    `json:"personaId,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

var (
	ErrUnknownRole       = errors.New("unknown message role")
	ErrRoleFieldMismatch = errors.New("message fields inconsistent with role")
)

// Validate checks the role/field consistency invariant: error messages
// carry an error description and no persona, assistant messages carry a
// persona and no error description, user messages carry neither.
func (m *Message) Validate() error {
	switch m.Role {
	case RoleUser:
		if m.ErrorMessage != "" || m.PersonaID != "" {
			return ErrRoleFieldMismatch
		}
	case RoleAssistant:
		if m.PersonaID == "" || m.ErrorMessage != "" {
			return ErrRoleFieldMismatch
		}
	case RoleError:
		if m.ErrorMessage == "" || m.PersonaID != "" {
			return ErrRoleFieldMismatch
		}
	default:
		return ErrUnknownRole
	}
	return nil
}
