package runna

import (
	"fmt"
	"strings"
)

// ParseDescription converts a raw Runna workout description into a
// structured workout. easyPaceSecMi is the fallback pace for
// conversational steps without an explicit target; values <= 0 disable
// the fallback and surface unresolvable-pace warnings instead.
//
// Parsing never fails outright: unusable segments are dropped and
// reported in the returned warnings. A description with no recognisable
// steps yields a workout with no sections.
func ParseDescription(raw string, easyPaceSecMi int) (*Workout, []Warning) {
	sections, warns := assemble(raw)
	warns = append(warns, resolvePaces(sections, easyPaceSecMi)...)
	return &Workout{Sections: sections}, warns
}

// Render serialises a workout into description text in the target unit.
// Output is deterministic: same workout and unit, same bytes.
//
// Sections appear in fixed order with a blank line between them; headers
// are omitted when the workout has a single section. Repeat blocks render
// an "Nx" line followed by their step lines.
func Render(w *Workout, unit DistanceUnit) string {
	if w == nil || len(w.Sections) == 0 {
		return ""
	}

	showHeaders := len(w.Sections) > 1
	var lines []string

	for i, sec := range w.Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if showHeaders {
			lines = append(lines, string(sec.Label))
		}
		for _, item := range sec.Items {
			switch it := item.(type) {
			case RepeatBlock:
				lines = append(lines, fmt.Sprintf("%dx", it.Count))
				for _, s := range it.Steps {
					if l := stepLine(s, unit); l != "" {
						lines = append(lines, l)
					}
				}
			case Step:
				if l := stepLine(it, unit); l != "" {
					lines = append(lines, l)
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}

// stepLine renders one step as a "- " line. Distances get two decimals
// in the target unit, durations stay in plain seconds, paces follow
// FormatPace. Steps without a resolved pace render with an "easy" tag
// rather than an invented number.
func stepLine(s Step, unit DistanceUnit) string {
	if s.DurationSec > 0 {
		if s.PaceSecMi > 0 {
			return fmt.Sprintf("- %ds %s Pace", s.DurationSec, FormatPace(s.PaceSecMi, unit))
		}
		return fmt.Sprintf("- %ds", s.DurationSec)
	}

	if s.DistanceMi == 0 && s.DistanceKm == 0 {
		return ""
	}
	dist := formatDistance(s, unit)
	if s.PaceSecMi > 0 {
		return fmt.Sprintf("- %s %s Pace", dist, FormatPace(s.PaceSecMi, unit))
	}
	return fmt.Sprintf("- %s easy", dist)
}
