package directory

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/buddyline/internal/models"
	"github.com/xaenox/buddyline/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionNotEmpty = errors.New("session already has messages")
)

// DefaultTitle is the derived title of a session with no user message.
const DefaultTitle = "New Chat"

// recentLimit caps the quick list; older sessions stay retrievable.
const recentLimit = 10

// Directory exclusively owns the session collection and the current
// session pointer. Every mutation rewrites the whole stored record so a
// partial update can never leave a torn collection behind.
type Directory struct {
	store  *storage.Store
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	sessions  []*models.ChatSession
	currentID string
}

// New loads the stored collection. The most recently created session
// becomes current, matching what the collection looked like when the
// process exited; when the collection is empty no session is current
// until the caller creates one.
func New(store *storage.Store, logger *zap.Logger) (*Directory, error) {
	sessions, err := store.GetSessions()
	if err != nil {
		return nil, err
	}

	d := &Directory{
		store:    store,
		logger:   logger,
		now:      time.Now,
		sessions: sessions,
	}
	if len(sessions) > 0 {
		d.currentID = sessions[len(sessions)-1].ID
	}
	return d, nil
}

// CreateSession allocates a new empty session bound to the given
// persona, makes it current and persists the collection.
func (d *Directory) CreateSession(personaID string) (*models.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createLocked(personaID)
}

func (d *Directory) createLocked(personaID string) (*models.ChatSession, error) {
	now := d.now()
	session := &models.ChatSession{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		Messages:  []models.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	d.sessions = append(d.sessions, session)
	d.currentID = session.ID
	if err := d.persistLocked(); err != nil {
		return nil, err
	}

	d.logger.Info("Created session",
		zap.String("session_id", session.ID),
		zap.String("persona_id", personaID))
	return session.Clone(), nil
}

// SelectSession makes an existing session current and returns it. The
// active persona pointer follows the session's stored persona binding.
func (d *Directory) SelectSession(id string) (*models.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session := d.findLocked(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}

	d.currentID = id
	if err := d.store.SetActivePersonaID(session.PersonaID); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// DeleteSession removes a session. When the current session is deleted
// the pointer moves to an existing empty session if one remains, else to
// the most recently created survivor, else to a freshly created empty
// session; the directory is never left without a current session.
func (d *Directory) DeleteSession(id string) (*models.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := -1
	for i, s := range d.sessions {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrSessionNotFound
	}

	deleted := d.sessions[idx]
	d.sessions = append(d.sessions[:idx], d.sessions[idx+1:]...)

	if id != d.currentID {
		if err := d.persistLocked(); err != nil {
			return nil, err
		}
		return d.findLocked(d.currentID).Clone(), nil
	}

	if empty := d.firstEmptyLocked(); empty != nil {
		d.currentID = empty.ID
		if err := d.persistLocked(); err != nil {
			return nil, err
		}
		return empty.Clone(), nil
	}
	if n := len(d.sessions); n > 0 {
		// Creation order is slice order, so the tail is the newest.
		d.currentID = d.sessions[n-1].ID
		if err := d.persistLocked(); err != nil {
			return nil, err
		}
		return d.sessions[n-1].Clone(), nil
	}

	d.logger.Info("Deleted last session, creating a fresh one",
		zap.String("deleted_id", id))
	return d.createLocked(d.replacementPersonaLocked(deleted))
}

// replacementPersonaLocked picks the persona for the session that
// replaces a fully emptied directory: the active persona when set, else
// the deleted session's own binding.
func (d *Directory) replacementPersonaLocked(deleted *models.ChatSession) string {
	personaID, err := d.store.GetActivePersonaID()
	if err != nil || personaID == "" {
		return deleted.PersonaID
	}
	return personaID
}

// RenameSession overwrites the stored title. Blank input is a no-op.
func (d *Directory) RenameSession(id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	session := d.findLocked(id)
	if session == nil {
		return ErrSessionNotFound
	}
	session.Title = title
	return d.persistLocked()
}

// BindPersona re-binds a session to another persona. The binding is
// fixed once the session has messages.
func (d *Directory) BindPersona(id, personaID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	session := d.findLocked(id)
	if session == nil {
		return ErrSessionNotFound
	}
	if !session.Empty() {
		return ErrSessionNotEmpty
	}
	session.PersonaID = personaID
	return d.persistLocked()
}

// ReplaceSession writes a settled session back over its stored record.
// Used by the orchestrator at settlement; reports ErrSessionNotFound
// when the session was deleted while the turn was in flight.
func (d *Directory) ReplaceSession(session *models.ChatSession) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, s := range d.sessions {
		if s.ID == session.ID {
			d.sessions[i] = session.Clone()
			return d.persistLocked()
		}
	}
	return ErrSessionNotFound
}

// Current returns the current session, or nil for an empty directory.
func (d *Directory) Current() *models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.findLocked(d.currentID).Clone()
}

// Get returns a session by id.
func (d *Directory) Get(id string) (*models.ChatSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session := d.findLocked(id)
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Sessions returns the whole collection in creation order.
func (d *Directory) Sessions() []*models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]*models.ChatSession, len(d.sessions))
	for i, s := range d.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Recent returns up to the 10 most recently created sessions, newest
// first.
func (d *Directory) Recent() []*models.ChatSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.sessions)
	count := n
	if count > recentLimit {
		count = recentLimit
	}

	out := make([]*models.ChatSession, 0, count)
	for i := n - 1; i >= n-count; i-- {
		out = append(out, d.sessions[i].Clone())
	}
	return out
}

// DisplayTitle derives the listed title of a session: the explicit title
// when set, else the first user message truncated to 30 characters with
// an ellipsis marker, else the placeholder. Derived only, never stored.
func DisplayTitle(session *models.ChatSession) string {
	if session.Title != "" {
		return session.Title
	}
	first, ok := session.FirstUserMessage()
	if !ok {
		return DefaultTitle
	}

	content := strings.TrimSpace(first.Content)
	runes := []rune(content)
	if len(runes) <= 30 {
		return content
	}
	return string(runes[:30]) + "..."
}

func (d *Directory) firstEmptyLocked() *models.ChatSession {
	for _, s := range d.sessions {
		if s.Empty() {
			return s
		}
	}
	return nil
}

func (d *Directory) findLocked(id string) *models.ChatSession {
	for _, s := range d.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (d *Directory) persistLocked() error {
	return d.store.SetSessions(d.sessions)
}
