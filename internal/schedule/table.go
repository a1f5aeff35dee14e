package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/j0lvera/mica/internal/config"
	"github.com/rs/zerolog"
)

// TimeLayout is the key format of the schedule table.
const TimeLayout = "03:04:05 PM"

// parseLayout also accepts single-digit hours.
const parseLayout = "3:04:05 PM"

// Table maps a time of day to the text broadcast at that time.
type Table struct {
	messages map[string]string
}

// NewTable builds a table from entries. Later entries with the same time
// override earlier ones.
func NewTable(entries []config.ScheduleEntry, logger *zerolog.Logger) (*Table, error) {
	t := &Table{messages: make(map[string]string, len(entries))}

	for i, e := range entries {
		key, err := NormalizeTime(e.Time)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: %w", i, err)
		}
		if _, exists := t.messages[key]; exists && logger != nil {
			logger.Warn().Str("time", key).Int("entry", i).Msg("duplicate schedule time, later entry wins")
		}
		t.messages[key] = e.Message
	}

	return t, nil
}

// NormalizeTime parses "h:mm:ss AM" in any case and returns it in TimeLayout.
func NormalizeTime(s string) (string, error) {
	parsed, err := time.Parse(parseLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("invalid time %q: %w", s, err)
	}
	return parsed.Format(TimeLayout), nil
}

// Lookup returns the message for an exact TimeLayout key.
func (t *Table) Lookup(key string) (string, bool) {
	msg, ok := t.messages[key]
	return msg, ok
}

func (t *Table) Len() int {
	return len(t.messages)
}
