package persona

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xaenox/buddyline/internal/models"
	"github.com/xaenox/buddyline/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrPersonaNotFound = errors.New("persona not found")
	ErrBuiltInPersona  = errors.New("built-in personas cannot be modified")
	ErrPersonaInUse    = errors.New("persona is used by existing chat sessions")
	ErrInvalidPersona  = errors.New("persona needs a name and a prompt")
)

// SessionLister exposes the session collection so the registry can
// refuse to delete a persona any session still references. Implemented
// by directory.Directory.
type SessionLister interface {
	Sessions() []*models.ChatSession
}

// Registry holds the built-in personas plus the user's custom ones, and
// the active persona pointer. Built-ins are seeded in code and
// immutable; customs are persisted whole-record.
type Registry struct {
	store    *storage.Store
	sessions SessionLister
	logger   *zap.Logger

	mu      sync.Mutex
	customs []models.Persona
}

func NewRegistry(store *storage.Store, sessions SessionLister, logger *zap.Logger) (*Registry, error) {
	customs, err := store.GetCustomPersonas()
	if err != nil {
		return nil, err
	}
	return &Registry{
		store:    store,
		sessions: sessions,
		logger:   logger,
		customs:  customs,
	}, nil
}

// All returns built-ins followed by custom personas.
func (r *Registry) All() []models.Persona {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := BuiltIn()
	return append(all, r.customs...)
}

func (r *Registry) ByID(id string) (models.Persona, bool) {
	for _, p := range r.All() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Persona{}, false
}

// Add registers a custom persona, allocating an id when absent.
func (r *Registry) Add(p models.Persona) (models.Persona, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Prompt) == "" {
		return models.Persona{}, ErrInvalidPersona
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.BuiltIn = false

	r.mu.Lock()
	defer r.mu.Unlock()

	r.customs = append(r.customs, p)
	if err := r.store.SetCustomPersonas(r.customs); err != nil {
		r.customs = r.customs[:len(r.customs)-1]
		return models.Persona{}, err
	}

	r.logger.Info("Added custom persona",
		zap.String("persona_id", p.ID),
		zap.String("name", p.Name))
	return p, nil
}

// Update overwrites a custom persona. Built-ins are immutable.
func (r *Registry) Update(id string, updated models.Persona) error {
	if isBuiltIn(id) {
		return ErrBuiltInPersona
	}
	if strings.TrimSpace(updated.Name) == "" || strings.TrimSpace(updated.Prompt) == "" {
		return ErrInvalidPersona
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.customs {
		if p.ID == id {
			updated.ID = id
			updated.BuiltIn = false
			r.customs[i] = updated
			return r.store.SetCustomPersonas(r.customs)
		}
	}
	return ErrPersonaNotFound
}

// Delete removes a custom persona. Refused for built-ins and for any
// persona still bound to a session.
func (r *Registry) Delete(id string) error {
	if isBuiltIn(id) {
		return ErrBuiltInPersona
	}
	for _, session := range r.sessions.Sessions() {
		if session.PersonaID == id {
			return ErrPersonaInUse
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.customs {
		if p.ID == id {
			r.customs = append(r.customs[:i], r.customs[i+1:]...)
			return r.store.SetCustomPersonas(r.customs)
		}
	}
	return ErrPersonaNotFound
}

// Active resolves the stored active persona pointer, falling back to
// the first persona when unset or dangling.
func (r *Registry) Active() (models.Persona, error) {
	id, err := r.store.GetActivePersonaID()
	if err != nil {
		return models.Persona{}, err
	}
	if id != "" {
		if p, ok := r.ByID(id); ok {
			return p, nil
		}
		r.logger.Warn("Stored active persona no longer exists", zap.String("persona_id", id))
	}

	fallback := r.All()[0]
	if err := r.store.SetActivePersonaID(fallback.ID); err != nil {
		return models.Persona{}, err
	}
	return fallback, nil
}

// SetActive points the active persona at an existing persona.
func (r *Registry) SetActive(id string) error {
	if _, ok := r.ByID(id); !ok {
		return ErrPersonaNotFound
	}
	return r.store.SetActivePersonaID(id)
}

func isBuiltIn(id string) bool {
	for _, p := range BuiltIn() {
		if p.ID == id {
			return true
		}
	}
	return false
}
