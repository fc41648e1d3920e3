package intervals

// Pace units accepted by the workout_doc step structure.
const (
	PaceUnitsSecPerKm = "sec/km"
	PaceUnitsPercent  = "%pace"
)

// Event is a planned workout for the Intervals.icu calendar, uploaded
// via POST /api/v1/athlete/{id}/events/bulk?upsert=true.
type Event struct {
	Category       string      `json:"category"`
	StartDateLocal string      `json:"start_date_local"` // YYYY-MM-DDT00:00:00
	Type           string      `json:"type"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	MovingTime     int         `json:"moving_time"` // seconds
	Indoor         bool        `json:"indoor"`
	Notes          string      `json:"notes,omitempty"`
	ExternalID     string      `json:"external_id,omitempty"`
	Target         string      `json:"target,omitempty"` // AUTO, POWER, HR, or PACE
	WorkoutDoc     *WorkoutDoc `json:"workout_doc,omitempty"`
}

// WorkoutDoc is the structured step definition Intervals.icu uses to
// draw the workout chart.
type WorkoutDoc struct {
	Steps []WorkoutStep `json:"steps"`
}

// WorkoutStep is one step or repeat block inside a WorkoutDoc. Repeat
// blocks carry Reps and Steps; plain steps carry the rest.
type WorkoutStep struct {
	Text     string        `json:"text,omitempty"`
	Pace     *StepPace     `json:"pace,omitempty"`
	Distance int           `json:"distance,omitempty"` // metres
	Duration int           `json:"duration,omitempty"` // seconds
	Reps     int           `json:"reps,omitempty"`
	Steps    []WorkoutStep `json:"steps,omitempty"`
}

// StepPace is a step's pace target band.
type StepPace struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Units string `json:"units"` // "sec/km" or "%pace"
}

// RemoteEvent is the subset of an Intervals.icu calendar event the
// sync needs for listing and deletion.
type RemoteEvent struct {
	ID             int    `json:"id"`
	StartDateLocal string `json:"start_date_local"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	ExternalID     string `json:"external_id"`
}

// Athlete is the authenticated athlete profile, used to verify
// credentials.
type Athlete struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
