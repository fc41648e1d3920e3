package runna

import "fmt"

// Step labels Runna embeds in easy-step text.
const (
	LabelWarmUp   = "Warm Up"
	LabelCoolDown = "Cool Down"
)

type SectionLabel string

const (
	SectionWarmup   SectionLabel = "Warmup"
	SectionMainSet  SectionLabel = "Main Set"
	SectionCooldown SectionLabel = "Cooldown"
)

// Step is one interval: a distance or a duration plus a pace target.
// Distances keep the unit they were written in; conversion to the output
// unit happens once, at render time.
type Step struct {
	DistanceMi  float64 // distance in miles when the source was written in miles
	DistanceKm  float64 // distance in kilometres when the source was metric
	DurationSec int     // duration in seconds for timed steps (rests)
	PaceSecMi   int     // pace in seconds per mile; 0 = not yet resolved
	Label       string  // "Warm Up" / "Cool Down" hint found in the step text
	Effort      string  // unrecognised effort label, kept for diagnostics
	IsRest      bool
}

// RepeatBlock is count consecutive repetitions of a step sequence.
type RepeatBlock struct {
	Count int
	Steps []Step
}

// Item is one section entry: either a Step or a RepeatBlock.
type Item interface{ item() }

func (Step) item()        {}
func (RepeatBlock) item() {}

// Section groups items under one of the three recognised labels. Item
// order is the order of appearance in the source description.
type Section struct {
	Label SectionLabel
	Items []Item
}

// Workout is the structured form of one parsed description.
type Workout struct {
	Sections []Section
}

type WarningKind string

const (
	WarnMalformedSegment   WarningKind = "malformed segment"
	WarnUnresolvablePace   WarningKind = "unresolvable pace"
	WarnUnknownEffortLabel WarningKind = "unknown effort label"
)

// Warning records a recoverable problem found while converting one
// description. Warnings never abort the workout they belong to.
type Warning struct {
	Kind    WarningKind
	Segment string // the offending source text
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q", w.Kind, w.Segment)
}
