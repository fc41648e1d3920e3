package syncer

import (
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/claude/runnasync/internal/feed"
	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
)

const (
	eventCategory = "WORKOUT"
	eventType     = "Run"
	paceTarget    = "PACE"

	// ExternalIDPrefix marks calendar events owned by this tool.
	// Delete only touches events carrying it.
	ExternalIDPrefix = "runna-"
)

// ErrNoSteps means a description produced no recognizable workout
// steps, so there is nothing to upload.
var ErrNoSteps = errors.New("no recognizable workout steps")

// Convert turns one feed event into an Intervals.icu planned event.
// The rendered description uses the requested units; the workout_doc
// step structure is always in sec/km, matching what Intervals.icu
// charts expect.
func Convert(ev feed.Event, unit runna.DistanceUnit, easyPaceSecMi int) (intervals.Event, []runna.Warning, error) {
	workout, warnings := runna.ParseDescription(ev.Description, easyPaceSecMi)
	description := runna.Render(workout, unit)
	if description == "" {
		return intervals.Event{}, warnings, ErrNoSteps
	}

	return intervals.Event{
		Category:       eventCategory,
		StartDateLocal: ev.Date + "T00:00:00",
		Type:           eventType,
		Name:           ev.Name,
		Description:    description,
		MovingTime:     ev.MovingTime,
		Target:         paceTarget,
		ExternalID:     externalID(ev),
		WorkoutDoc:     workoutDoc(workout, easyPaceSecMi),
	}, warnings, nil
}

// externalID builds the stable upsert key. Events without a calendar
// UID get a deterministic UUID derived from their date and name, so
// re-running still upserts instead of duplicating.
func externalID(ev feed.Event) string {
	if ev.UID != "" {
		return ExternalIDPrefix + ev.UID
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("runna://"+ev.Date+"/"+ev.Name))
	return ExternalIDPrefix + id.String()
}

// workoutDoc flattens resolved sections into the Intervals.icu step
// structure. Direct steps with neither distance nor duration carry no
// chartable information and are dropped; steps inside repeat blocks
// are kept as-is.
func workoutDoc(w *runna.Workout, easyPaceSecMi int) *intervals.WorkoutDoc {
	easyKm := 0
	if easyPaceSecMi > 0 {
		easyKm = runna.PaceMiToKm(easyPaceSecMi)
	}

	var steps []intervals.WorkoutStep
	for _, section := range w.Sections {
		for _, item := range section.Items {
			switch it := item.(type) {
			case runna.RepeatBlock:
				sub := make([]intervals.WorkoutStep, 0, len(it.Steps))
				for _, st := range it.Steps {
					sub = append(sub, workoutStep(st, easyKm))
				}
				steps = append(steps, intervals.WorkoutStep{Reps: it.Count, Steps: sub})
			case runna.Step:
				ws := workoutStep(it, easyKm)
				if ws.Distance > 0 || ws.Duration > 0 {
					steps = append(steps, ws)
				}
			}
		}
	}

	if len(steps) == 0 {
		return nil
	}
	return &intervals.WorkoutDoc{Steps: steps}
}

func workoutStep(s runna.Step, easyKm int) intervals.WorkoutStep {
	if s.IsRest {
		walk := runna.PaceMiToKm(runna.WalkPaceSecMi)
		return intervals.WorkoutStep{
			Duration: s.DurationSec,
			Pace:     &intervals.StepPace{Start: walk, End: walk, Units: intervals.PaceUnitsSecPerKm},
		}
	}

	metres := stepMetres(s)

	paceKm := 0
	switch {
	case s.PaceSecMi > 0:
		paceKm = runna.PaceMiToKm(s.PaceSecMi)
	case easyKm > 0:
		paceKm = easyKm
	}

	pace := &intervals.StepPace{Start: 65, End: 79, Units: intervals.PaceUnitsPercent}
	if paceKm > 0 {
		pace = &intervals.StepPace{Start: paceKm, End: paceKm, Units: intervals.PaceUnitsSecPerKm}
	}

	duration := 0
	if metres > 0 && paceKm > 0 {
		duration = int(float64(metres) / 1000 * float64(paceKm))
	}

	return intervals.WorkoutStep{
		Text:     s.Label,
		Pace:     pace,
		Distance: metres,
		Duration: duration,
	}
}

// stepMetres converts a step's native distance to whole metres.
func stepMetres(s runna.Step) int {
	if s.DistanceMi > 0 {
		return int(math.Round(runna.MilesToKm(s.DistanceMi) * 1000))
	}
	return int(math.Round(s.DistanceKm * 1000))
}
