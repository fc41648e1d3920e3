package runna

// resolveContext carries the per-workout inputs the pace rules consult.
// The configured easy pace is threaded in per call, never held globally,
// so concurrent conversions with different settings cannot interfere.
type resolveContext struct {
	section      SectionLabel
	warmupPaceMi int // first explicit warmup pace, 0 when absent
	easyPaceMi   int // configured fallback in sec/mi, <=0 disables
}

// A paceRule either resolves a step's pace or reports no opinion. Rules
// run in slice order; the first opinion wins.
type paceRule struct {
	name  string
	apply func(s Step, ctx resolveContext) (int, bool)
}

var paceRules = []paceRule{
	{"explicit", func(s Step, _ resolveContext) (int, bool) {
		return s.PaceSecMi, s.PaceSecMi > 0
	}},
	{"rest-walking", func(s Step, _ resolveContext) (int, bool) {
		return WalkPaceSecMi, s.IsRest
	}},
	{"cooldown-inherits-warmup", func(_ Step, ctx resolveContext) (int, bool) {
		return ctx.warmupPaceMi, ctx.section == SectionCooldown && ctx.warmupPaceMi > 0
	}},
	{"easy-default", func(_ Step, ctx resolveContext) (int, bool) {
		return ctx.easyPaceMi, ctx.easyPaceMi > 0
	}},
}

// resolvePaces fills in the pace of every step in place. Steps no rule
// has an opinion on are left at pace 0 and reported as warnings.
func resolvePaces(sections []Section, easyPaceSecMi int) []Warning {
	ctx := resolveContext{
		warmupPaceMi: firstWarmupPace(sections),
		easyPaceMi:   easyPaceSecMi,
	}

	var warns []Warning
	for si := range sections {
		ctx.section = sections[si].Label
		for ii, item := range sections[si].Items {
			switch it := item.(type) {
			case Step:
				resolved, ok := resolveStep(it, ctx)
				sections[si].Items[ii] = resolved
				if !ok {
					warns = append(warns, unresolvedWarning(resolved))
				}
			case RepeatBlock:
				for bi, s := range it.Steps {
					resolved, ok := resolveStep(s, ctx)
					it.Steps[bi] = resolved
					if !ok {
						warns = append(warns, unresolvedWarning(resolved))
					}
				}
			}
		}
	}
	return warns
}

func resolveStep(s Step, ctx resolveContext) (Step, bool) {
	for _, rule := range paceRules {
		if pace, ok := rule.apply(s, ctx); ok {
			s.PaceSecMi = pace
			return s, true
		}
	}
	return s, false
}

// firstWarmupPace returns the explicit pace of the first paced, non-rest
// step in the Warmup section, or 0. Steps inside repeat blocks are not
// considered.
func firstWarmupPace(sections []Section) int {
	for _, sec := range sections {
		if sec.Label != SectionWarmup {
			continue
		}
		for _, item := range sec.Items {
			if step, ok := item.(Step); ok && !step.IsRest && step.PaceSecMi > 0 {
				return step.PaceSecMi
			}
		}
	}
	return 0
}

// unresolvedWarning describes the step in the unit it was written in.
func unresolvedWarning(s Step) Warning {
	unit := UnitKm
	if s.DistanceMi > 0 {
		unit = UnitMiles
	}
	return Warning{Kind: WarnUnresolvablePace, Segment: formatDistance(s, unit)}
}
