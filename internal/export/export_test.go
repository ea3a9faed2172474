package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/buddyline/internal/export"
	"github.com/xaenox/buddyline/internal/models"
)

func sampleSession() *models.ChatSession {
	created := time.Date(2024, 5, 1, 14, 5, 9, 0, time.UTC)
	return &models.ChatSession{
		ID:        "session-1",
		PersonaID: "iris-vale",
		Title:     "Design talk",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		Messages: []models.Message{
			{ID: "m1", Role: models.RoleUser, Content: "hey, quick question", Timestamp: created},
			{ID: "m2", Role: models.RoleAssistant, Content: "sure, go ahead", Timestamp: created.Add(5 * time.Second), PersonaID: "iris-vale"},
			{ID: "m3", Role: models.RoleError, Content: "did you get that?", Timestamp: created.Add(10 * time.Second), ErrorMessage: "network down"},
		},
	}
}

func TestToTextTranscript(t *testing.T) {
	text := export.ToText(sampleSession(), "Iris Vale")

	assert.True(t, strings.HasPrefix(text, "Design talk\n"))
	assert.Contains(t, text, "Persona: Iris Vale")
	assert.Contains(t, text, strings.Repeat("=", 50))
	assert.Contains(t, text, "[2:05:09 PM] You:\nhey, quick question")
	assert.Contains(t, text, "[2:05:14 PM] Iris Vale:\nsure, go ahead")

	// Failed deliveries are omitted from transcripts.
	assert.NotContains(t, text, "did you get that?")
	assert.NotContains(t, text, "network down")

	// Chronological order.
	assert.Less(t, strings.Index(text, "hey, quick question"), strings.Index(text, "sure, go ahead"))
}

func TestToTextUntitledFallback(t *testing.T) {
	session := sampleSession()
	session.Title = ""
	assert.True(t, strings.HasPrefix(export.ToText(session, "Iris Vale"), "Untitled Chat\n"))
}

func TestToJSONRoundTrip(t *testing.T) {
	session := sampleSession()
	data, err := export.ToJSON(session)
	require.NoError(t, err)

	var loaded models.ChatSession
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, session.ID, loaded.ID)
	assert.Len(t, loaded.Messages, 3)
	assert.Equal(t, "network down", loaded.Messages[2].ErrorMessage)
	assert.True(t, session.CreatedAt.Equal(loaded.CreatedAt))
}

func TestWriteFilesUseTitle(t *testing.T) {
	dir := t.TempDir()
	session := sampleSession()
	session.Title = "a/b: risky?"

	path, err := export.WriteText(session, "Iris Vale", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a_b_ risky_.txt"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = export.WriteJSON(session, dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".json"))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFormatMessageDate(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC) // a Wednesday

	assert.Equal(t, "Today", export.FormatMessageDate(now.Add(-2*time.Hour), now))
	assert.Equal(t, "Yesterday", export.FormatMessageDate(now.AddDate(0, 0, -1), now))
	assert.Equal(t, "Monday", export.FormatMessageDate(now.AddDate(0, 0, -2), now))
	assert.Equal(t, "5/1", export.FormatMessageDate(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), now))
}

func TestGroupMessagesByDate(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	messages := []models.Message{
		{ID: "m1", Role: models.RoleUser, Content: "old", Timestamp: now.AddDate(0, 0, -1)},
		{ID: "m2", Role: models.RoleUser, Content: "also old", Timestamp: now.AddDate(0, 0, -1).Add(time.Hour)},
		{ID: "m3", Role: models.RoleUser, Content: "fresh", Timestamp: now},
	}

	groups := export.GroupMessagesByDate(messages, now)
	require.Len(t, groups, 2)
	assert.Equal(t, "Yesterday", groups[0].Date)
	assert.Len(t, groups[0].Messages, 2)
	assert.Equal(t, "Today", groups[1].Date)
	assert.Equal(t, "fresh", groups[1].Messages[0].Content)
}
