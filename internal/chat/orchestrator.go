package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/buddyline/internal/models"
	"go.uber.org/zap"
)

var (
	ErrNoSession    = errors.New("no session")
	ErrNoPersona    = errors.New("no persona")
	ErrEmptyMessage = errors.New("message is empty")
	ErrTurnInFlight = errors.New("a turn is already in flight for this session")
	ErrNotRetryable = errors.New("message is not a failed message")
)

// Completer produces reply fragments for a transcript. Implemented by
// gateway.Client, stubbed in tests.
type Completer interface {
	Complete(ctx context.Context, transcript []models.Message, persona models.Persona) ([]string, error)
}

// SessionWriter persists a settled session by whole-record replace.
// Implemented by directory.Directory.
type SessionWriter interface {
	ReplaceSession(session *models.ChatSession) error
}

// Orchestrator runs one conversation turn at a time per session: it
// appends the user's message optimistically, drives the completer,
// reveals reply fragments with paced delays, and persists the session
// exactly once after the final fragment. Provider and configuration
// failures never escape a turn; they become an error-role annotation on
// the triggering user message, left for the user to retry.
type Orchestrator struct {
	completer Completer
	sessions  SessionWriter
	pacer     Pacer
	logger    *zap.Logger

	sleep func(time.Duration)
	now   func() time.Time

	// onUpdate is invoked after every visible mutation of the working
	// session: the optimistic user append, each fragment reveal, and the
	// error flip. The callback must not mutate or retain the session.
	onUpdate func(session *models.ChatSession)

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(completer Completer, sessions SessionWriter, pacer Pacer, logger *zap.Logger) *Orchestrator {
	if pacer == nil {
		pacer = DefaultPacer
	}
	return &Orchestrator{
		completer: completer,
		sessions:  sessions,
		pacer:     pacer,
		logger:    logger,
		sleep:     time.Sleep,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

// SetUpdateHook registers the presentation callback. Set once at wiring
// time, before any turn runs.
func (o *Orchestrator) SetUpdateHook(fn func(session *models.ChatSession)) {
	o.onUpdate = fn
}

// Send runs one turn: append the user message, obtain fragments, reveal
// them in order, persist at settlement. The returned session reflects
// the outcome, including the error bubble on failure; a non-nil error is
// only returned for precondition violations and nothing is appended then.
func (o *Orchestrator) Send(ctx context.Context, session *models.ChatSession, persona *models.Persona, content string) (*models.ChatSession, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if persona == nil {
		return nil, ErrNoPersona
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	if !o.begin(session.ID) {
		return nil, ErrTurnInFlight
	}
	defer o.end(session.ID)

	working := session.Clone()
	pending := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: o.now(),
	}
	working.Messages = append(working.Messages, pending)
	o.notify(working)

	o.deliver(ctx, working, working.Messages, persona, pending.ID)
	return working, nil
}

// Retry re-runs a failed send. The target message must carry the error
// role; it is reset to a plain user message and the turn is replayed
// with the transcript up to and including it. A renewed failure flips it
// back to the error role with the new cause.
func (o *Orchestrator) Retry(ctx context.Context, session *models.ChatSession, persona *models.Persona, messageID string) (*models.ChatSession, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if persona == nil {
		return nil, ErrNoPersona
	}

	idx := -1
	for i, m := range session.Messages {
		if m.ID == messageID && m.Role == models.RoleError {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotRetryable
	}
	if !o.begin(session.ID) {
		return nil, ErrTurnInFlight
	}
	defer o.end(session.ID)

	working := session.Clone()
	msg := &working.Messages[idx]
	msg.Role = models.RoleUser
	msg.ErrorMessage = ""
	o.notify(working)

	o.deliver(ctx, working, working.Messages[:idx+1], persona, messageID)
	return working, nil
}

// deliver runs the shared success/failure procedure of a turn: call the
// completer with the given transcript, then either reveal each fragment
// with a paced delay and persist once, or flip the pending user message
// to the error role. Fragments are appended strictly in the order the
// completer returned them, and the persist happens after the last one,
// never interleaved.
func (o *Orchestrator) deliver(ctx context.Context, working *models.ChatSession, transcript []models.Message, persona *models.Persona, pendingID string) {
	fragments, err := o.completer.Complete(ctx, transcript, *persona)
	if err != nil {
		o.logger.Warn("Turn failed",
			zap.Error(err),
			zap.String("session_id", working.ID),
			zap.String("persona_id", persona.ID))
		o.markFailed(working, pendingID, err)
		return
	}

	for i, fragment := range fragments {
		o.sleep(o.pacer(i))
		working.Messages = append(working.Messages, models.Message{
			ID:        uuid.NewString(),
			Role:      models.RoleAssistant,
			Content:   fragment,
			Timestamp: o.now(),
			PersonaID: persona.ID,
		})
		o.notify(working)
	}

	working.PersonaID = persona.ID
	working.UpdatedAt = o.now()
	if err := o.sessions.ReplaceSession(working); err != nil {
		// The session was deleted while the turn was in flight; the
		// settled turn is discarded rather than resurrected.
		o.logger.Warn("Discarding settled turn",
			zap.Error(err),
			zap.String("session_id", working.ID))
	}
}

// markFailed rewrites the pending user message in place to the error
// role. The failure state is visible but deliberately not persisted;
// only retry can settle it.
func (o *Orchestrator) markFailed(working *models.ChatSession, pendingID string, cause error) {
	for i := range working.Messages {
		if working.Messages[i].ID == pendingID {
			working.Messages[i].Role = models.RoleError
			working.Messages[i].ErrorMessage = cause.Error()
			break
		}
	}
	o.notify(working)
}

func (o *Orchestrator) notify(session *models.ChatSession) {
	if o.onUpdate != nil {
		o.onUpdate(session)
	}
}

// begin claims the per-session single-flight slot.
func (o *Orchestrator) begin(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inFlight[sessionID]; busy {
		return false
	}
	o.inFlight[sessionID] = struct{}{}
	return true
}

func (o *Orchestrator) end(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, sessionID)
}
