// Package export turns a settled session into shareable files: a plain
// text transcript or a full JSON dump of the session record.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xaenox/buddyline/internal/models"
)

const untitled = "Untitled Chat"

// ToText renders a chronological, timestamped transcript. Error-role
// bubbles are failed deliveries and are omitted.
func ToText(session *models.ChatSession, personaName string) string {
	title := session.Title
	if title == "" {
		title = untitled
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Persona: %s\n", personaName)
	fmt.Fprintf(&b, "Date: %s\n", session.CreatedAt.Format("1/2/2006, 3:04:05 PM"))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, msg := range session.Messages {
		if msg.Role == models.RoleError {
			continue
		}
		sender := personaName
		if msg.Role == models.RoleUser {
			sender = "You"
		}
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", msg.Timestamp.Format("3:04:05 PM"), sender, msg.Content)
	}
	return b.String()
}

// ToJSON dumps the full session record.
func ToJSON(session *models.ChatSession) ([]byte, error) {
	return json.MarshalIndent(session, "", "  ")
}

// WriteText writes the text transcript to <title>.txt under dir and
// returns the path.
func WriteText(session *models.ChatSession, personaName, dir string) (string, error) {
	path := filepath.Join(dir, fileName(session)+".txt")
	if err := os.WriteFile(path, []byte(ToText(session, personaName)), 0o644); err != nil {
		return "", fmt.Errorf("error writing transcript: %w", err)
	}
	return path, nil
}

// WriteJSON writes the JSON dump to <title>.json under dir and returns
// the path.
func WriteJSON(session *models.ChatSession, dir string) (string, error) {
	data, err := ToJSON(session)
	if err != nil {
		return "", fmt.Errorf("error encoding session: %w", err)
	}
	path := filepath.Join(dir, fileName(session)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing session dump: %w", err)
	}
	return path, nil
}

func fileName(session *models.ChatSession) string {
	name := session.Title
	if name == "" {
		name = untitled
	}
	// Keep the title recognizable but safe as a file name.
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name
}
