package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/buddyline/internal/chat"
	"github.com/xaenox/buddyline/internal/cli"
	"github.com/xaenox/buddyline/internal/directory"
	"github.com/xaenox/buddyline/internal/models"
	"github.com/xaenox/buddyline/internal/persona"
	"github.com/xaenox/buddyline/internal/storage"
	"go.uber.org/zap"
)

// flakyCompleter fails the first call and answers every later one,
// mirroring a provider outage that clears before the user retries.
type flakyCompleter struct {
	calls     int
	fragments []string
}

func (f *flakyCompleter) Complete(_ context.Context, _ []models.Message, _ models.Persona) ([]string, error) {
	f.calls++
	if f.calls == 1 {
		return nil, errors.New("connection reset")
	}
	return f.fragments, nil
}

func newTestApp(t *testing.T, completer chat.Completer, input string) (*cli.App, *bytes.Buffer, *directory.Directory) {
	t.Helper()

	store := storage.NewStore(storage.NewMemoryStore())
	dir, err := directory.New(store, zap.NewNop())
	require.NoError(t, err)
	registry, err := persona.NewRegistry(store, dir, zap.NewNop())
	require.NoError(t, err)
	active, err := registry.Active()
	require.NoError(t, err)
	_, err = dir.CreateSession(active.ID)
	require.NoError(t, err)

	orchestrator := chat.NewOrchestrator(completer, dir, chat.NoDelay, zap.NewNop())
	var out bytes.Buffer
	app := cli.New(dir, registry, orchestrator, store, t.TempDir(), zap.NewNop(), strings.NewReader(input), &out)
	return app, &out, dir
}

func TestRetryRecoversFailedSend(t *testing.T) {
	completer := &flakyCompleter{fragments: []string{"Hi!", "I'm here now."}}
	app, out, dir := newTestApp(t, completer, "hello there\n/retry\n/quit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "Message not delivered: connection reset")
	assert.NotContains(t, out.String(), "Nothing to retry.")
	assert.Contains(t, out.String(), "Hi!")
	assert.Contains(t, out.String(), "I'm here now.")
	assert.Equal(t, 2, completer.calls)

	// The failed attempt was never stored; the retried turn was, once.
	current := dir.Current()
	require.NotNil(t, current)
	require.Len(t, current.Messages, 3)
	assert.Equal(t, models.RoleUser, current.Messages[0].Role)
	assert.Equal(t, "hello there", current.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, current.Messages[1].Role)
	assert.Equal(t, models.RoleAssistant, current.Messages[2].Role)
}

func TestRetryAfterLeavingSessionFindsNothing(t *testing.T) {
	completer := &flakyCompleter{fragments: []string{"Hi!"}}
	app, out, dir := newTestApp(t, completer, "hello there\n/new\n/retry\n/quit\n")

	require.NoError(t, app.Run(context.Background()))

	// Starting a new chat drops the unsettled failure for good.
	assert.Contains(t, out.String(), "Message not delivered: connection reset")
	assert.Contains(t, out.String(), "Nothing to retry.")
	assert.Equal(t, 1, completer.calls)
	require.NotNil(t, dir.Current())
	assert.Empty(t, dir.Current().Messages)
}

func TestFailedSendLocksSessionPersona(t *testing.T) {
	completer := &flakyCompleter{fragments: []string{"Hi!"}}
	app, out, _ := newTestApp(t, completer, "hello there\n/persona evan-brooks\n/quit\n")

	require.NoError(t, app.Run(context.Background()))

	assert.Contains(t, out.String(), "This chat already has messages")
	assert.NotContains(t, out.String(), "You're now talking to Evan")
}

func TestSwitchPrintsTranscriptGroupedByDate(t *testing.T) {
	completer := &flakyCompleter{fragments: []string{"Hi!", "Good to see you."}}
	app, out, _ := newTestApp(t, completer, "hey\n/retry\n/switch 1\n/quit\n")

	require.NoError(t, app.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "--- Today ---")
	assert.Contains(t, text, "You: hey")
	assert.Contains(t, text, ": Hi!")
	assert.Contains(t, text, ": Good to see you.")
}
