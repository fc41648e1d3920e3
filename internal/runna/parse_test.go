package runna

import "testing"

// TestParsePacedStep verifies the basic "at M:SS/mi" form.
func TestParsePacedStep(t *testing.T) {
	steps, warns := parseStepLine("0.5mi at 6:45/mi")
	if len(warns) != 0 {
		t.Fatalf("warnings = %v, want none", warns)
	}
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].DistanceMi != 0.5 {
		t.Errorf("DistanceMi = %v, want 0.5", steps[0].DistanceMi)
	}
	if steps[0].PaceSecMi != 405 {
		t.Errorf("PaceSecMi = %d, want 405", steps[0].PaceSecMi)
	}
}

// TestParsePacedStepWithRest verifies a trailing rest clause becomes a
// second, rest-flagged step.
func TestParsePacedStepWithRest(t *testing.T) {
	steps, _ := parseStepLine("0.25mi at 6:25/mi, 90s walking rest")
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].PaceSecMi != 385 {
		t.Errorf("PaceSecMi = %d, want 385", steps[0].PaceSecMi)
	}
	if !steps[1].IsRest || steps[1].DurationSec != 90 {
		t.Errorf("rest step = %+v, want 90s rest", steps[1])
	}
}

// TestParsePacedStepWithNote verifies parenthesised notes between pace and
// rest are ignored: "(6:30-7:00/mi)" range hints, "(your target ...)" text.
func TestParsePacedStepWithNote(t *testing.T) {
	steps, _ := parseStepLine("0.5mi at 6:45/mi (6:30-7:00/mi), 90s walking rest")
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	steps, _ = parseStepLine("6mi at 7:15/mi (your target Half Marathon pace)")
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].PaceSecMi != 435 {
		t.Errorf("PaceSecMi = %d, want 435", steps[0].PaceSecMi)
	}
}

// TestParseBulletPrefix verifies the "• " prefix used inside repeat
// paragraphs is stripped.
func TestParseBulletPrefix(t *testing.T) {
	steps, _ := parseStepLine("• 0.5mi at 6:45/mi, 90s walking rest")
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
}

// TestParsePaceSpelling verifies the "M:SS/mi Pace" spelling without "at"
// parses the same as the "at M:SS/mi" form.
func TestParsePaceSpelling(t *testing.T) {
	steps, warns := parseStepLine("1.25mi 8:40/mi Pace")
	if len(warns) != 0 || len(steps) != 1 {
		t.Fatalf("steps = %d, warnings = %v, want 1 step and none", len(steps), warns)
	}
	if steps[0].PaceSecMi != 520 {
		t.Errorf("PaceSecMi = %d, want 520", steps[0].PaceSecMi)
	}
}

// TestParseConversationalWithCap verifies the "(no faster than M:SS/mi)"
// cap becomes the step's explicit pace and the warm-up wording is kept as
// a section hint.
func TestParseConversationalWithCap(t *testing.T) {
	steps, warns := parseStepLine("1.25mi warm up at a conversational pace (no faster than 8:40/mi), 90s walking rest")
	if len(warns) != 0 {
		t.Fatalf("warnings = %v, want none", warns)
	}
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].PaceSecMi != 520 {
		t.Errorf("PaceSecMi = %d, want 520", steps[0].PaceSecMi)
	}
	if steps[0].Label != LabelWarmUp {
		t.Errorf("Label = %q, want %q", steps[0].Label, LabelWarmUp)
	}
}

// TestParseConversationalNoCap verifies a capless conversational step
// carries no pace and the cool-down hint.
func TestParseConversationalNoCap(t *testing.T) {
	steps, _ := parseStepLine("1.1mi cool down at a conversational pace (or slower!)")
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].PaceSecMi != 0 {
		t.Errorf("PaceSecMi = %d, want 0", steps[0].PaceSecMi)
	}
	if steps[0].Label != LabelCoolDown {
		t.Errorf("Label = %q, want %q", steps[0].Label, LabelCoolDown)
	}
}

// TestParseStandaloneRest verifies a bare rest line.
func TestParseStandaloneRest(t *testing.T) {
	steps, warns := parseStepLine("40s walking rest")
	if len(warns) != 0 || len(steps) != 1 {
		t.Fatalf("steps = %d, warnings = %v, want 1 step and none", len(steps), warns)
	}
	if !steps[0].IsRest || steps[0].DurationSec != 40 {
		t.Errorf("step = %+v, want 40s rest", steps[0])
	}
}

// TestParseKmStep verifies metric feeds: the distance stays in km and the
// pace converts to canonical sec/mi (4:12/km = 252 sec/km → 406 sec/mi).
func TestParseKmStep(t *testing.T) {
	steps, _ := parseStepLine("0.8km at 4:12/km")
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].DistanceKm != 0.8 {
		t.Errorf("DistanceKm = %v, want 0.8", steps[0].DistanceKm)
	}
	if steps[0].DistanceMi != 0 {
		t.Errorf("DistanceMi = %v, want 0 (native unit only)", steps[0].DistanceMi)
	}
	if steps[0].PaceSecMi != 406 {
		t.Errorf("PaceSecMi = %d, want 406", steps[0].PaceSecMi)
	}
}

// TestParseKmConversationalCap verifies "(no faster than 5:23/km)" converts
// to the canonical 520 sec/mi.
func TestParseKmConversationalCap(t *testing.T) {
	steps, _ := parseStepLine("2km warm up at a conversational pace (no faster than 5:23/km), 90s walking rest")
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].PaceSecMi != 520 {
		t.Errorf("PaceSecMi = %d, want 520", steps[0].PaceSecMi)
	}
}

// TestParseMetresStep verifies bare "m" distances are metres on the
// metric side: 400m = 0.4km.
func TestParseMetresStep(t *testing.T) {
	steps, _ := parseStepLine("400m at 5:30/km")
	if len(steps) != 1 {
		t.Fatalf("steps = %d, want 1", len(steps))
	}
	if steps[0].DistanceKm != 0.4 {
		t.Errorf("DistanceKm = %v, want 0.4", steps[0].DistanceKm)
	}
}

// TestParseUnknownEffort verifies effort words outside the vocabulary
// parse as paceless steps with a warning, not as failures.
func TestParseUnknownEffort(t *testing.T) {
	steps, warns := parseStepLine("1mi at a steady pace, 60s walking rest")
	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	if steps[0].PaceSecMi != 0 || steps[0].Effort != "steady" {
		t.Errorf("step = %+v, want paceless with effort steady", steps[0])
	}
	if len(warns) != 1 || warns[0].Kind != WarnUnknownEffortLabel {
		t.Errorf("warnings = %v, want one unknown-effort warning", warns)
	}
}

// TestParseMalformedKeepsRest verifies a rest clause survives an
// unparseable head: "1mi warm up, 90s walking rest" (no pace, no effort).
func TestParseMalformedKeepsRest(t *testing.T) {
	steps, warns := parseStepLine("1mi warm up, 90s walking rest")
	if len(steps) != 1 || !steps[0].IsRest {
		t.Fatalf("steps = %+v, want the rest step only", steps)
	}
	if len(warns) != 1 || warns[0].Kind != WarnMalformedSegment {
		t.Fatalf("warnings = %v, want one malformed-segment warning", warns)
	}
	if warns[0].Segment != "1mi warm up" {
		t.Errorf("Segment = %q, want the head clause", warns[0].Segment)
	}
}

// TestParseMalformedSegment verifies a quantity-led line matching nothing
// is reported, while plain prose is skipped silently.
func TestParseMalformedSegment(t *testing.T) {
	steps, warns := parseStepLine("0.5mi banana")
	if len(steps) != 0 {
		t.Errorf("steps = %+v, want none", steps)
	}
	if len(warns) != 1 || warns[0].Kind != WarnMalformedSegment {
		t.Fatalf("warnings = %v, want one malformed-segment warning", warns)
	}

	steps, warns = parseStepLine("This is a limit, not a target - run at whatever pace feels truly easy!")
	if len(steps) != 0 || len(warns) != 0 {
		t.Errorf("prose line: steps = %+v, warnings = %v, want none", steps, warns)
	}
}

// TestParseEmptyLine verifies blank input yields nothing.
func TestParseEmptyLine(t *testing.T) {
	steps, warns := parseStepLine("   ")
	if steps != nil || warns != nil {
		t.Errorf("blank line: steps = %v, warnings = %v, want nil", steps, warns)
	}
}
