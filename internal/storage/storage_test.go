package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/buddyline/internal/models"
	"go.uber.org/zap"
)

func sampleSession(t *testing.T) *models.ChatSession {
	t.Helper()

	created := time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.UTC)
	return &models.ChatSession{
		ID:        "session-1",
		PersonaID: "iris-vale",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		Title:     "Portfolio talk",
		Messages: []models.Message{
			{ID: "m1", Role: models.RoleUser, Content: "hi", Timestamp: created},
			{ID: "m2", Role: models.RoleAssistant, Content: "hey", Timestamp: created.Add(2 * time.Second), PersonaID: "iris-vale"},
			{ID: "m3", Role: models.RoleError, Content: "lost", Timestamp: created.Add(3 * time.Second), ErrorMessage: "provider error"},
		},
	}
}

func requireEqualSessions(t *testing.T, want, got *models.ChatSession) {
	t.Helper()

	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.PersonaID, got.PersonaID)
	require.Equal(t, want.Title, got.Title)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt drifted")
	require.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt drifted")
	require.Len(t, got.Messages, len(want.Messages))
	for i := range want.Messages {
		require.Equal(t, want.Messages[i].ID, got.Messages[i].ID)
		require.Equal(t, want.Messages[i].Role, got.Messages[i].Role)
		require.Equal(t, want.Messages[i].Content, got.Messages[i].Content)
		require.Equal(t, want.Messages[i].PersonaID, got.Messages[i].PersonaID)
		require.Equal(t, want.Messages[i].ErrorMessage, got.Messages[i].ErrorMessage)
		require.True(t, want.Messages[i].Timestamp.Equal(got.Messages[i].Timestamp), "message %d timestamp drifted", i)
	}
}

func TestStoreDefaultsOnAbsentKeys(t *testing.T) {
	store := NewStore(NewMemoryStore())

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	sessions, err := store.GetSessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	personas, err := store.GetCustomPersonas()
	require.NoError(t, err)
	assert.Empty(t, personas)

	id, err := store.GetActivePersonaID()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestSessionRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryStore())
	session := sampleSession(t)

	require.NoError(t, store.SetSessions([]*models.ChatSession{session}))
	loaded, err := store.GetSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	requireEqualSessions(t, session, loaded[0])
}

func TestDuplicateWriteIsIdempotent(t *testing.T) {
	store := NewStore(NewMemoryStore())
	session := sampleSession(t)

	require.NoError(t, store.SetSessions([]*models.ChatSession{session}))
	once, err := store.GetSessions()
	require.NoError(t, err)

	require.NoError(t, store.SetSessions([]*models.ChatSession{session}))
	twice, err := store.GetSessions()
	require.NoError(t, err)

	require.Len(t, twice, 1)
	requireEqualSessions(t, once[0], twice[0])
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buddyline.json")

	kv, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	store := NewStore(kv)

	session := sampleSession(t)
	require.NoError(t, store.SetSessions([]*models.ChatSession{session}))

	settings := models.DefaultSettings()
	settings.APIKey = "sk-local"
	settings.CustomModels = []string{"llama3"}
	require.NoError(t, store.SetSettings(settings))
	require.NoError(t, store.SetActivePersonaID("iris-vale"))
	require.NoError(t, store.Close())

	reopened, err := NewFileStore(path, zap.NewNop())
	require.NoError(t, err)
	store = NewStore(reopened)

	loaded, err := store.GetSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	requireEqualSessions(t, session, loaded[0])

	gotSettings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, settings, gotSettings)

	id, err := store.GetActivePersonaID()
	require.NoError(t, err)
	assert.Equal(t, "iris-vale", id)
}

func TestCustomPersonaRoundTrip(t *testing.T) {
	store := NewStore(NewMemoryStore())

	personas := []models.Persona{{
		ID:        "custom-1",
		Name:      "Sam",
		Role:      "Neighbor",
		Interests: []string{"gardening"},
		Prompt:    "You are Sam.",
	}}
	require.NoError(t, store.SetCustomPersonas(personas))

	loaded, err := store.GetCustomPersonas()
	require.NoError(t, err)
	assert.Equal(t, personas, loaded)
}
