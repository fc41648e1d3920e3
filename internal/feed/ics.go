package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Event is one workout pulled from the Runna calendar feed.
type Event struct {
	UID         string
	Date        string // YYYY-MM-DD
	Name        string
	Description string
	MovingTime  int // estimated duration in seconds
}

const defaultMovingTime = 3600

var (
	// emojiRe matches leading pictographs and joiners in a summary: 🏃 or ⚡️
	emojiRe = regexp.MustCompile(`^[\x{1F000}-\x{1FFFF}\x{2600}-\x{27BF}\x{FE0F}\x{200D}\s]+`)
	// distanceSuffixRe matches: • 5mi or • 8.5km at the end of a summary
	distanceSuffixRe = regexp.MustCompile(`\s*•\s*[\d.]+\s*(mi|km)\s*$`)
)

// textEscapes undoes RFC 5545 TEXT escaping in property values.
var textEscapes = strings.NewReplacer(
	`\n`, "\n",
	`\N`, "\n",
	`\,`, ",",
	`\;`, ";",
	`\\`, `\`,
)

// Parse extracts workout events from raw ICS text.
func Parse(icsText string) ([]Event, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(icsText))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		summary := propValue(ve, ics.ComponentPropertySummary)
		if summary == "" {
			summary = "Workout"
		}
		events = append(events, Event{
			UID:         propValue(ve, ics.ComponentPropertyUniqueId),
			Date:        eventDate(ve),
			Name:        CleanSummary(summary),
			Description: Unescape(propValue(ve, ics.ComponentPropertyDescription)),
			MovingTime:  estimatedDuration(ve),
		})
	}
	return events, nil
}

// CleanSummary strips the leading emoji and the trailing distance
// marker from an event summary, leaving the workout name.
func CleanSummary(summary string) string {
	name := emojiRe.ReplaceAllString(summary, "")
	name = distanceSuffixRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// Unescape undoes ICS text escaping and normalizes line endings.
func Unescape(text string) string {
	return textEscapes.Replace(strings.ReplaceAll(text, "\r\n", "\n"))
}

func propValue(ve *ics.VEvent, prop ics.ComponentProperty) string {
	if p := ve.GetProperty(prop); p != nil {
		return p.Value
	}
	return ""
}

// eventDate returns the DTSTART date as YYYY-MM-DD. Events without a
// parseable start date sort to 1970-01-01 rather than being dropped.
func eventDate(ve *ics.VEvent) string {
	raw := propValue(ve, ics.ComponentPropertyDtStart)
	if len(raw) >= 8 {
		if t, err := time.Parse("20060102", raw[:8]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return "1970-01-01"
}

func estimatedDuration(ve *ics.VEvent) int {
	raw := propValue(ve, ics.ComponentProperty("X-WORKOUT-ESTIMATED-DURATION"))
	if raw != "" {
		if secs, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && secs > 0 {
			return secs
		}
	}
	return defaultMovingTime
}
