package response

import "strings"

// Format renders p back into the labeled wire format understood by Parse.
// Empty sections are omitted.
func Format(p Parsed) string {
	var blocks []string
	if p.Scenario != "" {
		blocks = append(blocks, LabelScenario+" "+p.Scenario)
	}
	if len(p.Consequences) > 0 {
		var b strings.Builder
		b.WriteString(LabelConsequences)
		for _, item := range p.Consequences {
			b.WriteRune('\n')
			b.WriteString(bulletPrefix)
			b.WriteString(item)
		}
		blocks = append(blocks, b.String())
	}
	if p.Analysis != "" {
		blocks = append(blocks, LabelAnalysis+" "+p.Analysis)
	}
	return strings.Join(blocks, "\n\n")
}

// Policy decides which sections a renderer shows for a parsed response.
type Policy int

const (
	// PolicyOmitEmpty drops sections that parsed to nothing.
	PolicyOmitEmpty Policy = iota
	// PolicyRenderAll always yields all three sections, empty or not.
	PolicyRenderAll
	// PolicyRawFallback shows the raw text when no section parsed and
	// otherwise behaves like PolicyOmitEmpty.
	PolicyRawFallback
)

func (p Policy) String() string {
	switch p {
	case PolicyRenderAll:
		return "all"
	case PolicyRawFallback:
		return "raw"
	default:
		return "omit-empty"
	}
}

// ParsePolicy maps the names returned by Policy.String back to a Policy.
func ParsePolicy(name string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "omit-empty", "omit":
		return PolicyOmitEmpty, true
	case "all":
		return PolicyRenderAll, true
	case "raw":
		return PolicyRawFallback, true
	default:
		return PolicyOmitEmpty, false
	}
}

// Section is one titled block of a rendered response. Title is empty for a
// raw fallback section.
type Section struct {
	Title string
	Body  string
	Items []string
}

const (
	TitleScenario     = "Scenario"
	TitleConsequences = "Consequences"
	TitleAnalysis     = "Analysis"
)

// Layout returns the sections to render for p under policy.
func Layout(p Parsed, raw string, policy Policy) []Section {
	if policy == PolicyRawFallback && p.Empty() {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		return []Section{{Body: raw}}
	}
	all := []Section{
		{Title: TitleScenario, Body: p.Scenario},
		{Title: TitleConsequences, Items: append([]string(nil), p.Consequences...)},
		{Title: TitleAnalysis, Body: p.Analysis},
	}
	if policy == PolicyRenderAll {
		return all
	}
	sections := make([]Section, 0, len(all))
	for _, section := range all {
		if section.Body == "" && len(section.Items) == 0 {
			continue
		}
		sections = append(sections, section)
	}
	return sections
}
