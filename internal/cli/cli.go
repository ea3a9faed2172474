// Package cli is the terminal presentation layer: it forwards user
// intents into the orchestrator and directory and prints the state they
// produce. No conversation logic lives here.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xaenox/buddyline/internal/chat"
	"github.com/xaenox/buddyline/internal/directory"
	"github.com/xaenox/buddyline/internal/export"
	"github.com/xaenox/buddyline/internal/models"
	"github.com/xaenox/buddyline/internal/persona"
	"github.com/xaenox/buddyline/internal/storage"
	"go.uber.org/zap"
)

type App struct {
	directory    *directory.Directory
	registry     *persona.Registry
	orchestrator *chat.Orchestrator
	store        *storage.Store
	exportDir    string
	logger       *zap.Logger

	in  io.Reader
	out io.Writer

	// working holds the latest session snapshot returned by the
	// orchestrator. A failed send lives only here: the error bubble is
	// deliberately never persisted, so the directory's copy cannot
	// carry it. Cleared whenever the user moves to another session.
	working *models.ChatSession
}

func New(
	dir *directory.Directory,
	registry *persona.Registry,
	orchestrator *chat.Orchestrator,
	store *storage.Store,
	exportDir string,
	logger *zap.Logger,
	in io.Reader,
	out io.Writer,
) *App {
	app := &App{
		directory:    dir,
		registry:     registry,
		orchestrator: orchestrator,
		store:        store,
		exportDir:    exportDir,
		logger:       logger,
		in:           in,
		out:          out,
	}
	orchestrator.SetUpdateHook(app.printUpdate)
	return app
}

func (a *App) Run(ctx context.Context) error {
	a.printWelcome()

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := a.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}
		a.send(ctx, line)
	}
}

func (a *App) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	args := fields[1:]

	switch fields[0] {
	case "/help":
		a.printHelp()
	case "/new":
		a.handleNew(args)
	case "/chats":
		a.handleChats()
	case "/switch":
		a.handleSwitch(args)
	case "/delete":
		a.handleDelete()
	case "/rename":
		a.handleRename(strings.TrimSpace(strings.TrimPrefix(line, "/rename")))
	case "/retry":
		a.handleRetry(ctx)
	case "/personas":
		a.handlePersonas()
	case "/persona":
		a.handlePersona(args)
	case "/persona-new":
		a.handlePersonaNew(strings.TrimSpace(strings.TrimPrefix(line, "/persona-new")))
	case "/persona-del":
		a.handlePersonaDelete(args)
	case "/settings":
		a.handleSettings(args)
	case "/export":
		a.handleExport(args)
	case "/quit", "/exit":
		return true
	default:
		fmt.Fprintln(a.out, "Unknown command. Use /help to see available commands.")
	}
	return false
}

// currentSession is what the user is looking at: the orchestrator's
// latest snapshot when a turn has run, the directory's copy otherwise.
func (a *App) currentSession() *models.ChatSession {
	if a.working != nil {
		return a.working
	}
	return a.directory.Current()
}

func (a *App) send(ctx context.Context, content string) {
	session := a.currentSession()
	if session == nil {
		fmt.Fprintln(a.out, "No active chat. Use /new to start one.")
		return
	}
	p, err := a.sessionPersona(session)
	if err != nil {
		a.printError(err)
		return
	}

	result, err := a.orchestrator.Send(ctx, session, &p, content)
	if err != nil {
		a.printError(err)
		return
	}
	a.working = result
}

func (a *App) handleRetry(ctx context.Context) {
	session := a.currentSession()
	if session == nil {
		fmt.Fprintln(a.out, "No active chat.")
		return
	}

	var failed *models.Message
	for i := len(session.Messages) - 1; i >= 0; i-- {
		if session.Messages[i].Role == models.RoleError {
			failed = &session.Messages[i]
			break
		}
	}
	if failed == nil {
		fmt.Fprintln(a.out, "Nothing to retry.")
		return
	}

	p, err := a.sessionPersona(session)
	if err != nil {
		a.printError(err)
		return
	}
	result, err := a.orchestrator.Retry(ctx, session, &p, failed.ID)
	if err != nil {
		a.printError(err)
		return
	}
	a.working = result
}

func (a *App) handleNew(args []string) {
	p, err := a.registry.Active()
	if err != nil {
		a.printError(err)
		return
	}
	if len(args) > 0 {
		chosen, ok := a.registry.ByID(args[0])
		if !ok {
			fmt.Fprintf(a.out, "No persona with id %q.\n", args[0])
			return
		}
		p = chosen
		if err := a.registry.SetActive(p.ID); err != nil {
			a.printError(err)
			return
		}
	}

	session, err := a.directory.CreateSession(p.ID)
	if err != nil {
		a.printError(err)
		return
	}
	a.working = nil
	fmt.Fprintf(a.out, "Started a new chat with %s.\n", p.Name)
	a.logger.Info("Created session from CLI", zap.String("session_id", session.ID))
}

func (a *App) handleChats() {
	recent := a.directory.Recent()
	if len(recent) == 0 {
		fmt.Fprintln(a.out, "No chats yet. Use /new to start one.")
		return
	}

	current := a.directory.Current()
	for i, session := range recent {
		marker := " "
		if current != nil && session.ID == current.ID {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %2d. %s (%d messages)\n",
			marker, i+1, directory.DisplayTitle(session), len(session.Messages))
	}
}

func (a *App) handleSwitch(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: /switch <number from /chats>")
		return
	}
	n, err := strconv.Atoi(args[0])
	recent := a.directory.Recent()
	if err != nil || n < 1 || n > len(recent) {
		fmt.Fprintln(a.out, "Usage: /switch <number from /chats>")
		return
	}

	session, err := a.directory.SelectSession(recent[n-1].ID)
	if err != nil {
		a.printError(err)
		return
	}
	a.working = nil
	fmt.Fprintf(a.out, "Switched to %q.\n", directory.DisplayTitle(session))
	a.printTranscript(session)
}

func (a *App) handleDelete() {
	session := a.directory.Current()
	if session == nil {
		fmt.Fprintln(a.out, "No active chat.")
		return
	}

	next, err := a.directory.DeleteSession(session.ID)
	if err != nil {
		a.printError(err)
		return
	}
	a.working = nil
	fmt.Fprintf(a.out, "Deleted. Now on %q.\n", directory.DisplayTitle(next))
}

func (a *App) handleRename(title string) {
	session := a.directory.Current()
	if session == nil {
		fmt.Fprintln(a.out, "No active chat.")
		return
	}
	if err := a.directory.RenameSession(session.ID, title); err != nil {
		a.printError(err)
		return
	}
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(a.out, "Usage: /rename <title>")
		return
	}
	fmt.Fprintln(a.out, "Renamed.")
}

func (a *App) handlePersonas() {
	active, err := a.registry.Active()
	if err != nil {
		a.printError(err)
		return
	}
	for _, p := range a.registry.All() {
		marker := " "
		if p.ID == active.ID {
			marker = "*"
		}
		kind := "custom"
		if p.BuiltIn {
			kind = "built-in"
		}
		fmt.Fprintf(a.out, "%s %s — %s, %s (%s)\n", marker, p.ID, p.Name, p.Role, kind)
	}
}

func (a *App) handlePersona(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: /persona <id>")
		return
	}
	p, ok := a.registry.ByID(args[0])
	if !ok {
		fmt.Fprintf(a.out, "No persona with id %q.\n", args[0])
		return
	}

	session := a.currentSession()
	if session != nil {
		// A failed turn is visible even though it was never persisted,
		// and it locks the persona just like a delivered one.
		if !session.Empty() {
			fmt.Fprintln(a.out, "This chat already has messages; start a /new chat to talk to someone else.")
			return
		}
		if err := a.directory.BindPersona(session.ID, p.ID); err != nil {
			if errors.Is(err, directory.ErrSessionNotEmpty) {
				fmt.Fprintln(a.out, "This chat already has messages; start a /new chat to talk to someone else.")
				return
			}
			a.printError(err)
			return
		}
	}
	if err := a.registry.SetActive(p.ID); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "You're now talking to %s.\n", p.Name)
}

// handlePersonaNew expects "<name> | <prompt>".
func (a *App) handlePersonaNew(rest string) {
	name, prompt, found := strings.Cut(rest, "|")
	if !found {
		fmt.Fprintln(a.out, "Usage: /persona-new <name> | <prompt>")
		return
	}
	p, err := a.registry.Add(models.Persona{
		Name:   strings.TrimSpace(name),
		Prompt: strings.TrimSpace(prompt),
	})
	if err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "Created persona %s (%s).\n", p.Name, p.ID)
}

func (a *App) handlePersonaDelete(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: /persona-del <id>")
		return
	}
	if err := a.registry.Delete(args[0]); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Persona deleted.")
}

func (a *App) handleSettings(args []string) {
	settings, err := a.store.GetSettings()
	if err != nil {
		a.printError(err)
		return
	}

	if len(args) == 0 {
		key := "(not set)"
		if settings.APIKey != "" {
			key = "(set)"
		}
		fmt.Fprintf(a.out, "API key:     %s\n", key)
		fmt.Fprintf(a.out, "Base URL:    %s\n", settings.BaseURL)
		fmt.Fprintf(a.out, "Model:       %s\n", settings.Model)
		fmt.Fprintf(a.out, "Temperature: %.2f\n", settings.Temperature)
		if len(settings.CustomModels) > 0 {
			fmt.Fprintf(a.out, "Custom models: %s\n", strings.Join(settings.CustomModels, ", "))
		}
		fmt.Fprintln(a.out, "Change with: /settings key|url|model|temp|addmodel <value>")
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: /settings key|url|model|temp|addmodel <value>")
		return
	}

	value := strings.Join(args[1:], " ")
	switch args[0] {
	case "key":
		settings.APIKey = value
	case "url":
		settings.BaseURL = value
	case "model":
		settings.Model = value
	case "temp":
		temp, err := strconv.ParseFloat(value, 64)
		if err != nil {
			fmt.Fprintln(a.out, "Temperature must be a number.")
			return
		}
		settings.Temperature = temp
	case "addmodel":
		settings.CustomModels = append(settings.CustomModels, value)
	default:
		fmt.Fprintln(a.out, "Usage: /settings key|url|model|temp|addmodel <value>")
		return
	}

	if err := a.store.SetSettings(settings); err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintln(a.out, "Settings saved.")
}

func (a *App) handleExport(args []string) {
	session := a.directory.Current()
	if session == nil || session.Empty() {
		fmt.Fprintln(a.out, "Nothing to export yet.")
		return
	}

	format := "txt"
	if len(args) > 0 {
		format = args[0]
	}

	var path string
	var err error
	switch format {
	case "txt":
		name := "Unknown"
		if p, ok := a.registry.ByID(session.PersonaID); ok {
			name = p.Name
		}
		path, err = export.WriteText(session, name, a.exportDir)
	case "json":
		path, err = export.WriteJSON(session, a.exportDir)
	default:
		fmt.Fprintln(a.out, "Usage: /export txt|json")
		return
	}

	if err != nil {
		a.printError(err)
		return
	}
	fmt.Fprintf(a.out, "Exported to %s\n", path)
}

// sessionPersona resolves the persona a turn should speak as: the
// session's own binding once it has messages, the active persona before
// that.
func (a *App) sessionPersona(session *models.ChatSession) (models.Persona, error) {
	if !session.Empty() {
		if p, ok := a.registry.ByID(session.PersonaID); ok {
			return p, nil
		}
	}
	return a.registry.Active()
}

// printUpdate is the orchestrator's reveal hook. Each visible mutation
// appends or rewrites the tail of the message list, so printing the last
// bubble tracks the conversation as it unfolds.
func (a *App) printUpdate(session *models.ChatSession) {
	if len(session.Messages) == 0 {
		return
	}
	last := session.Messages[len(session.Messages)-1]

	switch last.Role {
	case models.RoleAssistant:
		name := "They"
		if p, ok := a.registry.ByID(last.PersonaID); ok {
			name = p.Name
		}
		fmt.Fprintf(a.out, "%s: %s\n", name, last.Content)
	case models.RoleError:
		fmt.Fprintf(a.out, "⚠️  Message not delivered: %s (use /retry)\n", last.ErrorMessage)
	}
}

func (a *App) printTranscript(session *models.ChatSession) {
	for _, group := range export.GroupMessagesByDate(session.Messages, time.Now()) {
		fmt.Fprintf(a.out, "--- %s ---\n", group.Date)
		for _, msg := range group.Messages {
			switch msg.Role {
			case models.RoleUser:
				fmt.Fprintf(a.out, "You: %s\n", msg.Content)
			case models.RoleAssistant:
				name := "They"
				if p, ok := a.registry.ByID(msg.PersonaID); ok {
					name = p.Name
				}
				fmt.Fprintf(a.out, "%s: %s\n", name, msg.Content)
			case models.RoleError:
				fmt.Fprintf(a.out, "⚠️  Not delivered: %s\n", msg.Content)
			}
		}
	}
}

func (a *App) printWelcome() {
	fmt.Fprintln(a.out, "BuddyLine — type a message to chat, or /help for commands.")
}

func (a *App) printHelp() {
	fmt.Fprint(a.out, `Available commands:
/new [persona-id]        - start a new chat
/chats                   - list recent chats
/switch <n>              - switch to a chat from the list
/delete                  - delete the current chat
/rename <title>          - rename the current chat
/retry                   - resend the last failed message
/personas                - list personas
/persona <id>            - talk to a different persona (empty chats only)
/persona-new <name> | <prompt> - create a custom persona
/persona-del <id>        - delete a custom persona
/settings [field value]  - show or change API settings
/export txt|json         - export the current chat
/quit                    - leave

Anything else you type is sent to your companion.
`)
}

func (a *App) printError(err error) {
	a.logger.Error("Command failed", zap.Error(err))
	fmt.Fprintf(a.out, "⚠️  %v\n", err)
}
