package session

import (
	"fmt"
	"time"
)

// TimeOfDay describes t as morning (05:00-11:59), afternoon (12:00-17:59) or
// evening/night, followed by the clock time.
func TimeOfDay(t time.Time) string {
	clock := t.Format("15:04")
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return fmt.Sprintf("It is morning (local time: %s).", clock)
	case h >= 12 && h < 18:
		return fmt.Sprintf("It is afternoon (local time: %s).", clock)
	default:
		return fmt.Sprintf("It is evening or night (local time: %s).", clock)
	}
}

// Annotate returns the text actually sent to the model: the user's text
// followed by a contextual time-of-day line.
func Annotate(text string, now time.Time) string {
	return text + "\n[Context: " + TimeOfDay(now) + "]"
}
