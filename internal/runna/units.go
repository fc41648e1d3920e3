package runna

import (
	"fmt"
	"math"
	"strings"
)

const kmPerMile = 1.60934

// WalkPaceSecMi is the fixed pace applied to rest steps: 15:00/mi (9:19/km).
const WalkPaceSecMi = 900

// DefaultEasyPaceSecMi is the compiled-in fallback pace for conversational
// steps without an explicit target: 8:40/mi. Overridable per invocation.
const DefaultEasyPaceSecMi = 520

type DistanceUnit string

const (
	UnitKm    DistanceUnit = "km"
	UnitMiles DistanceUnit = "mi"
)

// ParseDistanceUnit maps a config or flag value onto a DistanceUnit.
func ParseDistanceUnit(s string) (DistanceUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kilometers", "kilometres", "metric":
		return UnitKm, nil
	case "mi", "mile", "miles", "imperial":
		return UnitMiles, nil
	}
	return "", fmt.Errorf("unknown distance unit %q", s)
}

func MilesToKm(mi float64) float64 { return mi * kmPerMile }

func KmToMiles(km float64) float64 { return km / kmPerMile }

// PaceMiToKm converts a sec/mi pace to sec/km, rounded to the whole second.
func PaceMiToKm(secPerMile int) int {
	return int(math.Round(float64(secPerMile) / kmPerMile))
}

// PaceKmToMi converts a sec/km pace to the canonical sec/mi form.
func PaceKmToMi(secPerKm int) int {
	return int(math.Round(float64(secPerKm) * kmPerMile))
}

// FormatPace renders a canonical sec/mi pace as "M:SS/<unit>" in the
// target unit. Seconds are zero-padded: 520 → "8:40/mi" / "5:23/km".
func FormatPace(secPerMile int, unit DistanceUnit) string {
	sec := secPerMile
	if unit == UnitKm {
		sec = PaceMiToKm(secPerMile)
	}
	return fmt.Sprintf("%d:%02d/%s", sec/60, sec%60, unit)
}

// formatDistance renders a step's distance with two decimals in the target
// unit. The step's native unit is used directly; the other is converted.
func formatDistance(s Step, unit DistanceUnit) string {
	if unit == UnitMiles {
		mi := s.DistanceMi
		if mi == 0 && s.DistanceKm > 0 {
			mi = KmToMiles(s.DistanceKm)
		}
		return fmt.Sprintf("%.2fmi", mi)
	}
	km := s.DistanceKm
	if km == 0 && s.DistanceMi > 0 {
		km = MilesToKm(s.DistanceMi)
	}
	return fmt.Sprintf("%.2fkm", km)
}
