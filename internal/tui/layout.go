package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/submit"
)

type pageLayout struct {
	windowWidth    int
	windowHeight   int
	viewportWidth  int
	viewportHeight int
	inputWidth     int
}

func newPageLayout() pageLayout {
	return pageLayout{
		viewportWidth:  80,
		viewportHeight: 20,
		inputWidth:     70,
	}
}

func (l *pageLayout) Update(width, height int) {
	l.windowWidth = width
	l.windowHeight = height
	innerWidth := width - viewportHorizontalPadding
	if innerWidth < minViewportWidth {
		innerWidth = minViewportWidth
	}
	l.viewportWidth = innerWidth
	l.inputWidth = innerWidth - len(inputPrompt)
	usable := height - chromeHeight
	if usable < minViewportHeight {
		usable = minViewportHeight
	}
	l.viewportHeight = usable
}

type contentBuilder struct {
	builder strings.Builder
}

func (cb *contentBuilder) WriteString(s string) {
	cb.builder.WriteString(s)
}

func (cb *contentBuilder) WriteRune(r rune) {
	cb.builder.WriteRune(r)
}

func (cb *contentBuilder) String() string {
	return cb.builder.String()
}

// buildDisplayContent lays out the parsed answer using the configured
// fallback policy.
func (m *model) buildDisplayContent() string {
	cb := &contentBuilder{}
	wrap := m.wrapWidth(4)

	cb.WriteString(questionStyle.Render(wordwrap.String(headline(m.state.Question), m.wrapWidth(0))))
	cb.WriteRune('\n')

	sections := response.Layout(m.state.Result, m.state.Raw, m.config.Policy)
	if len(sections) == 0 {
		cb.WriteRune('\n')
		cb.WriteString(helperStyle.Render("The answer came back without any of the expected sections."))
		cb.WriteRune('\n')
		return cb.String()
	}
	for _, section := range sections {
		cb.WriteRune('\n')
		if section.Title != "" {
			cb.WriteString(sectionHeaderStyle.Render(section.Title))
			cb.WriteRune('\n')
		}
		if section.Body != "" {
			cb.WriteString(indentMultiline(wordwrap.String(section.Body, wrap), "  "))
			cb.WriteRune('\n')
		}
		for _, item := range section.Items {
			cb.WriteString(" • ")
			cb.WriteString(indentContinuation(wordwrap.String(item, wrap), "   "))
			cb.WriteRune('\n')
		}
		if section.Title != "" && section.Body == "" && len(section.Items) == 0 {
			cb.WriteString(helperStyle.Render("  (nothing here)"))
			cb.WriteRune('\n')
		}
	}
	return cb.String()
}

func (m *model) buildLoadingContent() string {
	cb := &contentBuilder{}
	cb.WriteString(questionStyle.Render(wordwrap.String(headline(m.state.Question), m.wrapWidth(0))))
	cb.WriteRune('\n')
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render(fmt.Sprintf("%s Imagining the consequences…", m.spinner.View())))
	cb.WriteRune('\n')
	cb.WriteString(helperStyle.Render("Esc abandons this question."))
	cb.WriteRune('\n')
	return cb.String()
}

// buildIdleContent lists the most asked questions as starting points.
func (m *model) buildIdleContent() string {
	cb := &contentBuilder{}
	cb.WriteString(sectionHeaderStyle.Render("Popular questions"))
	cb.WriteRune('\n')
	if len(m.inspiration) == 0 {
		if m.inspirationErr != "" {
			cb.WriteString(helperStyle.Render("Inspiration is unavailable right now."))
		} else {
			cb.WriteString(helperStyle.Render("Nobody has asked anything yet. Be the first."))
		}
		cb.WriteRune('\n')
		return cb.String()
	}
	limit := len(m.inspiration)
	if limit > inspirationPreviewLimit {
		limit = inspirationPreviewLimit
	}
	for idx, item := range m.inspiration[:limit] {
		label := fmt.Sprintf("%s  ×%d", previewText(item.Text, questionPreviewLimit), item.Count)
		if idx == m.inspirationCursor {
			cb.WriteString(currentLineStyle.Render("▸ " + label))
		} else {
			cb.WriteString("  " + label)
		}
		cb.WriteRune('\n')
	}
	cb.WriteString(helperStyle.Render("↑/↓ choose • Tab copies the question into the input"))
	cb.WriteRune('\n')
	return cb.String()
}

func (m *model) contentForStage() string {
	switch m.stage {
	case stageLoading:
		return m.buildLoadingContent()
	case stageDisplay:
		return m.buildDisplayContent()
	default:
		return m.buildIdleContent()
	}
}

func indentMultiline(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func indentContinuation(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

func (m *model) wrapWidth(padding int) int {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	if padding < 0 {
		padding = 0
	}
	available := width - padding
	if available < 20 {
		available = 20
	}
	return available
}

func stageForPhase(phase submit.Phase) stage {
	switch phase {
	case submit.Submitting:
		return stageLoading
	case submit.Displaying:
		return stageDisplay
	default:
		return stageInput
	}
}
