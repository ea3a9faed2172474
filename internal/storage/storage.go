package storage

import (
	"encoding/json"
	"fmt"

	"github.com/xaenox/buddyline/internal/models"
)

// Storage keys. Every value is one whole serialized record; callers
// read-modify-write full records, never individual fields.
const (
	KeySettings       = "buddyline_settings"
	KeyChatSessions   = "buddyline_chat_sessions"
	KeyCurrentPersona = "buddyline_current_persona"
	KeyCustomPersonas = "buddyline_custom_personas"
)

// KeyValue is the durable byte store the whole application persists
// through. An absent key is not an error; ok reports presence.
type KeyValue interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Close() error
}

// Store wraps a KeyValue with typed accessors for the application's
// records. Absent keys yield documented defaults.
type Store struct {
	kv KeyValue
}

func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv}
}

func (s *Store) Close() error {
	return s.kv.Close()
}

func (s *Store) GetSettings() (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := s.getJSON(KeySettings, &settings); err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

func (s *Store) SetSettings(settings models.Settings) error {
	return s.setJSON(KeySettings, settings)
}

func (s *Store) GetSessions() ([]*models.ChatSession, error) {
	var sessions []*models.ChatSession
	if err := s.getJSON(KeyChatSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *Store) SetSessions(sessions []*models.ChatSession) error {
	if sessions == nil {
		sessions = []*models.ChatSession{}
	}
	return s.setJSON(KeyChatSessions, sessions)
}

func (s *Store) GetActivePersonaID() (string, error) {
	var id string
	if err := s.getJSON(KeyCurrentPersona, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) SetActivePersonaID(id string) error {
	return s.setJSON(KeyCurrentPersona, id)
}

func (s *Store) GetCustomPersonas() ([]models.Persona, error) {
	var personas []models.Persona
	if err := s.getJSON(KeyCustomPersonas, &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

func (s *Store) SetCustomPersonas(personas []models.Persona) error {
	if personas == nil {
		personas = []models.Persona{}
	}
	return s.setJSON(KeyCustomPersonas, personas)
}

func (s *Store) getJSON(key string, out any) error {
	value, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("error reading key %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(value, out); err != nil {
		return fmt.Errorf("error decoding record %s: %w", key, err)
	}
	return nil
}

func (s *Store) setJSON(key string, record any) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("error encoding record %s: %w", key, err)
	}
	if err := s.kv.Set(key, value); err != nil {
		return fmt.Errorf("error writing key %s: %w", key, err)
	}
	return nil
}
