package export

import (
	"fmt"
	"time"

	"github.com/xaenox/buddyline/internal/models"
)

// DateGroup is one day's worth of messages for transcript display.
type DateGroup struct {
	Date     string
	Messages []models.Message
}

// FormatMessageDate labels a message day relative to now: Today,
// Yesterday, the weekday name within the last week, else month/day.
func FormatMessageDate(t, now time.Time) string {
	day := midnight(t)
	today := midnight(now)

	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case today.Sub(day) < 7*24*time.Hour:
		return t.Weekday().String()
	default:
		return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
	}
}

// GroupMessagesByDate splits a transcript into per-day groups,
// preserving message order.
func GroupMessagesByDate(messages []models.Message, now time.Time) []DateGroup {
	var groups []DateGroup
	for _, msg := range messages {
		label := FormatMessageDate(msg.Timestamp, now)
		if n := len(groups); n > 0 && groups[n-1].Date == label {
			groups[n-1].Messages = append(groups[n-1].Messages, msg)
			continue
		}
		groups = append(groups, DateGroup{Date: label, Messages: []models.Message{msg}})
	}
	return groups
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
