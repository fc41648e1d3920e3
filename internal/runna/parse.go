package runna

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// restRe matches: "90s walking rest"
	restRe = regexp.MustCompile(`(?i)^(\d+)s\s+walking\s+rest$`)

	// easyRe matches: "1.25mi warm up at a conversational pace (no faster than 8:40/mi), 90s walking rest"
	easyRe = regexp.MustCompile(`(?i)^(?:•\s*)?(\d+(?:\.\d+)?)\s*(mi|km|m)\b.+?conversational\s+pace[^,]*(?:,\s*(\d+)s\s+walking\s+rest)?`)

	// pacedRe matches: "0.5mi at 6:45/mi (6:30-7:00/mi), 90s walking rest"
	// and the "1mi 8:40/mi Pace" spelling without the "at".
	pacedRe = regexp.MustCompile(`(?i)^(?:•\s*)?(\d+(?:\.\d+)?)\s*(mi|km|m)\s+(?:at\s+)?(\d+:\d+)/(mi|km)(?:\s+pace)?(?:\s*\([^)]*\))?(?:,\s*(\d+)s\s+walking\s+rest)?$`)

	// effortRe matches: "2mi at a steady pace" (effort words outside the known vocabulary)
	effortRe = regexp.MustCompile(`(?i)^(?:•\s*)?(\d+(?:\.\d+)?)\s*(mi|km|m)\b.+?\bat\s+an?\s+(.+?)\s+pace(?:,\s*(\d+)s\s+walking\s+rest)?`)

	// capRe matches: "(no faster than 8:40/mi)" embedded in easy-step text
	capRe = regexp.MustCompile(`(?i)\(no\s+faster\s+than\s+(\d+:\d+)/(mi|km)\)`)

	// trailingRestRe matches: any clause ending ", 90s walking rest"
	trailingRestRe = regexp.MustCompile(`(?i)^(.*?),\s*(\d+)s\s+walking\s+rest$`)

	// magnitudeRe matches: a leading quantity token like "1.25mi", "400m" or "90s"
	magnitudeRe = regexp.MustCompile(`(?i)^(?:•\s*)?\d+(?:\.\d+)?\s*(mi|km|m|s)\b`)
)

// parseStepLine parses one description line into steps. A paced step with
// a trailing rest clause produces two steps. Matchers run in a fixed
// order: standalone rest, conversational, explicit pace, unknown effort.
// Lines that open with a quantity but match nothing are malformed and
// reported; anything else is prose and skipped.
func parseStepLine(line string) ([]Step, []Warning) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	if m := restRe.FindStringSubmatch(line); m != nil {
		return []Step{restStep(m[1])}, nil
	}

	if m := easyRe.FindStringSubmatch(line); m != nil {
		step := distanceStep(m[1], m[2])
		step.Label = sectionHint(line)
		if pm := capRe.FindStringSubmatch(line); pm != nil {
			step.PaceSecMi = paceSecMi(pm[1], pm[2])
		}
		return withTrailingRest(step, m[3]), nil
	}

	if m := pacedRe.FindStringSubmatch(line); m != nil {
		step := distanceStep(m[1], m[2])
		step.PaceSecMi = paceSecMi(m[3], m[4])
		return withTrailingRest(step, m[5]), nil
	}

	if m := effortRe.FindStringSubmatch(line); m != nil {
		step := distanceStep(m[1], m[2])
		step.Label = sectionHint(line)
		step.Effort = strings.ToLower(strings.TrimSpace(m[3]))
		warn := Warning{Kind: WarnUnknownEffortLabel, Segment: line}
		return withTrailingRest(step, m[4]), []Warning{warn}
	}

	// A rest clause can survive even when the clause before the comma is
	// unparseable: "1mi warm up, 90s walking rest" keeps the rest.
	if m := trailingRestRe.FindStringSubmatch(line); m != nil {
		steps := []Step{restStep(m[2])}
		head := strings.TrimSpace(m[1])
		if magnitudeRe.MatchString(head) {
			return steps, []Warning{{Kind: WarnMalformedSegment, Segment: head}}
		}
		return steps, nil
	}

	if magnitudeRe.MatchString(line) {
		return nil, []Warning{{Kind: WarnMalformedSegment, Segment: line}}
	}

	return nil, nil
}

// distanceStep builds a distance step from regex captures. Bare "m"
// distances are metres and land on the metric side.
func distanceStep(val, unit string) Step {
	v, _ := strconv.ParseFloat(val, 64)
	switch strings.ToLower(unit) {
	case "mi":
		return Step{DistanceMi: v}
	case "m":
		return Step{DistanceKm: v / 1000}
	default:
		return Step{DistanceKm: v}
	}
}

func restStep(secs string) Step {
	n, _ := strconv.Atoi(secs)
	return Step{DurationSec: n, IsRest: true}
}

func withTrailingRest(step Step, restSecs string) []Step {
	steps := []Step{step}
	if restSecs != "" {
		steps = append(steps, restStep(restSecs))
	}
	return steps
}

// paceSecMi converts a "M:SS" clock in the given unit to canonical sec/mi.
// "6:45" + "mi" -> 405, "4:12" + "km" -> 406
func paceSecMi(clock, unit string) int {
	sec := parseClock(clock)
	if strings.ToLower(unit) == "km" {
		return PaceKmToMi(sec)
	}
	return sec
}

// parseClock converts "6:45" to 405 seconds.
func parseClock(s string) int {
	mins, secs, ok := strings.Cut(s, ":")
	if !ok {
		return 0
	}
	m, _ := strconv.Atoi(mins)
	sec, _ := strconv.Atoi(secs)
	return m*60 + sec
}

// sectionHint detects the "Warm Up" / "Cool Down" wording Runna embeds in
// easy-step text: "1.25mi warm up at a conversational pace" -> "Warm Up".
func sectionHint(line string) string {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "warm") && strings.Contains(lower, "up") {
		return LabelWarmUp
	}
	if strings.Contains(lower, "cool") && strings.Contains(lower, "down") {
		return LabelCoolDown
	}
	return ""
}
