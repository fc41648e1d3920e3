package runna

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// repsOfRe matches: "3 reps of:"
	repsOfRe = regexp.MustCompile(`(?i)^(\d+)\s+reps\s+of:$`)

	// repeatNxRe matches: "Repeat the following 4x:" (steps fenced by "---" lines)
	repeatNxRe = regexp.MustCompile(`(?i)^Repeat the following (\d+)x:$`)

	// headerRe matches: "Easy Run • 6mi • 50m - 55m"
	headerRe = regexp.MustCompile(`(?i)^[A-Za-z\s]+•\s*[\d.]+(mi|km)\s*•`)

	// appLinkRe matches the "📲 View in the Runna app: ..." footer
	appLinkRe = regexp.MustCompile(`^📲`)
)

// assemble splits a raw description into paragraphs, parses each into
// steps and repeat blocks, and groups the result into labelled sections.
func assemble(raw string) ([]Section, []Warning) {
	var paras [][]Item
	var warns []Warning

	for _, para := range strings.Split(raw, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" || headerRe.MatchString(para) || appLinkRe.MatchString(para) {
			continue
		}
		items, w := parseParagraph(para)
		warns = append(warns, w...)
		if len(items) > 0 {
			paras = append(paras, items)
		}
	}

	return assignSections(paras), warns
}

// parseParagraph parses one paragraph into items. A paragraph opening
// with a repeat marker yields a single RepeatBlock; anything else yields
// one item per recognised step line.
func parseParagraph(para string) ([]Item, []Warning) {
	lines := strings.Split(para, "\n")
	first := strings.TrimSpace(lines[0])

	if m := repsOfRe.FindStringSubmatch(first); m != nil {
		count, _ := strconv.Atoi(m[1])
		return collectBlock(count, lines[1:], false)
	}

	if m := repeatNxRe.FindStringSubmatch(first); m != nil {
		count, _ := strconv.Atoi(m[1])
		return collectBlock(count, lines[1:], true)
	}

	var items []Item
	var warns []Warning
	for _, line := range lines {
		steps, w := parseStepLine(line)
		warns = append(warns, w...)
		for _, s := range steps {
			items = append(items, s)
		}
	}
	return items, warns
}

// collectBlock gathers the step lines of a repeat block. With fenced=true
// only lines between "---" fence markers belong to the block. A count of
// one is collapsed to bare steps so no "1x" prefix is ever rendered.
func collectBlock(count int, lines []string, fenced bool) ([]Item, []Warning) {
	var steps []Step
	var warns []Warning
	inFence := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if fenced {
			if strings.HasPrefix(line, "---") {
				inFence = !inFence
				continue
			}
			if !inFence || line == "" {
				continue
			}
		}
		parsed, w := parseStepLine(line)
		steps = append(steps, parsed...)
		warns = append(warns, w...)
	}

	if len(steps) == 0 {
		return nil, warns
	}
	if count <= 1 {
		items := make([]Item, 0, len(steps))
		for _, s := range steps {
			items = append(items, s)
		}
		return items, warns
	}
	return []Item{RepeatBlock{Count: count, Steps: steps}}, warns
}

// assignSections labels each paragraph and collects the items into at
// most three sections, ordered Warmup, Main Set, Cooldown.
//
// Label precedence: textual hints in the step text win; otherwise repeat
// blocks anchor the boundaries (everything before the first block is
// Warmup, after the last is Cooldown); otherwise position decides, and a
// lone paragraph is all Main Set.
func assignSections(paras [][]Item) []Section {
	if len(paras) == 0 {
		return nil
	}

	labels := make([]SectionLabel, len(paras))
	hinted := false
	for i, items := range paras {
		if l := paraHint(items); l != "" {
			labels[i] = l
			hinted = true
		}
	}

	switch {
	case hinted:
		for i := range labels {
			if labels[i] == "" {
				labels[i] = SectionMainSet
			}
		}
	case hasBlock(paras):
		first, last := blockSpan(paras)
		for i := range labels {
			switch {
			case i < first:
				labels[i] = SectionWarmup
			case i > last:
				labels[i] = SectionCooldown
			default:
				labels[i] = SectionMainSet
			}
		}
	case len(paras) == 1:
		labels[0] = SectionMainSet
	default:
		labels[0] = SectionWarmup
		labels[len(labels)-1] = SectionCooldown
		for i := 1; i < len(labels)-1; i++ {
			labels[i] = SectionMainSet
		}
	}

	var sections []Section
	for _, want := range []SectionLabel{SectionWarmup, SectionMainSet, SectionCooldown} {
		var items []Item
		for i, paraItems := range paras {
			if labels[i] == want {
				items = append(items, paraItems...)
			}
		}
		if len(items) > 0 {
			sections = append(sections, Section{Label: want, Items: items})
		}
	}
	return sections
}

// paraHint returns the section label of the first hinted step in a
// paragraph. Steps inside repeat blocks carry no hints.
func paraHint(items []Item) SectionLabel {
	for _, item := range items {
		step, ok := item.(Step)
		if !ok {
			continue
		}
		switch step.Label {
		case LabelWarmUp:
			return SectionWarmup
		case LabelCoolDown:
			return SectionCooldown
		}
	}
	return ""
}

func hasBlock(paras [][]Item) bool {
	first, _ := blockSpan(paras)
	return first >= 0
}

// blockSpan returns the indexes of the first and last paragraphs that
// contain a repeat block, or (-1, -1) when none do.
func blockSpan(paras [][]Item) (first, last int) {
	first, last = -1, -1
	for i, items := range paras {
		for _, item := range items {
			if _, ok := item.(RepeatBlock); ok {
				if first < 0 {
					first = i
				}
				last = i
				break
			}
		}
	}
	return first, last
}
