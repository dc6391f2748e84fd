// Package response turns the narrative text returned by the generator into
// the scenario / consequences / analysis structure rendered by clients.
package response

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	LabelScenario     = "Scenario:"
	LabelConsequences = "Consequences:"
	LabelAnalysis     = "Analysis:"

	bulletPrefix = "- "
)

// Parsed is the structured form of a narrative response. Missing sections
// are left empty.
type Parsed struct {
	Scenario     string   `json:"scenario"`
	Consequences []string `json:"consequences"`
	Analysis     string   `json:"analysis"`
}

// Empty reports whether every section is empty. Renderers use it to decide
// whether to fall back to the raw text.
func (p Parsed) Empty() bool {
	return p.Scenario == "" && len(p.Consequences) == 0 && p.Analysis == ""
}

// Parser parses responses and reports non-text input to its logger.
type Parser struct {
	Logger *zap.Logger
}

// Parse is Parser.Parse without diagnostics.
func Parse(raw any) Parsed {
	return Parser{}.Parse(raw)
}

// Parse never fails; unrecognized or non-text input degrades to empty fields.
func (p Parser) Parse(raw any) Parsed {
	var text string
	switch v := raw.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		if p.Logger != nil {
			p.Logger.Warn("response is not text", zap.String("type", fmt.Sprintf("%T", raw)))
		}
		return emptyParsed()
	}
	return parseText(text)
}

func emptyParsed() Parsed {
	return Parsed{Consequences: []string{}}
}

func parseText(text string) Parsed {
	out := emptyParsed()
	var haveScenario, haveConsequences, haveAnalysis bool
	for _, block := range splitBlocks(text) {
		switch {
		case strings.HasPrefix(block, LabelScenario):
			if haveScenario {
				continue
			}
			haveScenario = true
			out.Scenario = strings.TrimSpace(strings.TrimPrefix(block, LabelScenario))
		case strings.HasPrefix(block, LabelConsequences):
			if haveConsequences {
				continue
			}
			haveConsequences = true
			out.Consequences = consequenceLines(block)
		case strings.HasPrefix(block, LabelAnalysis):
			if haveAnalysis {
				continue
			}
			haveAnalysis = true
			out.Analysis = strings.TrimSpace(strings.TrimPrefix(block, LabelAnalysis))
		}
	}
	return out
}

// splitBlocks partitions text on runs of empty lines.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		blocks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func consequenceLines(block string) []string {
	lines := strings.Split(block, "\n")[1:]
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		items = append(items, strings.TrimPrefix(line, bulletPrefix))
	}
	return items
}
