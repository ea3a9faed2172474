package models

import "time"

// ChatSession is one conversation thread bound to a persona. Messages are
// append-only in normal operation; slice order is conversation order.
type ChatSession struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Title     string    `json:"title,omitempty"`
}

// Clone returns a deep copy, so a caller can work on a session snapshot
// without sharing the message slice with the owner.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return &out
}

// Empty reports whether the session has no messages yet. Persona binding
// is only changeable while a session is empty.
func (s *ChatSession) Empty() bool {
	return len(s.Messages) == 0
}

// FirstUserMessage returns the first user-role message, if any.
func (s *ChatSession) FirstUserMessage() (Message, bool) {
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}
