package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.viewport.View()}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		message := m.infoMessage
		if m.stage == stageLoading {
			message = fmt.Sprintf("%s %s", m.spinner.View(), message)
		}
		parts = append(parts, helperStyle.Render(message))
	}
	parts = append(parts, m.inputPanel(), m.statusBarView())
	if m.helpVisible {
		parts = append(parts, m.keyLegendView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	return lipgloss.JoinVertical(lipgloss.Left, renderLogo(), taglineStyle.Render(heroTagline))
}

func (m *model) inputPanel() string {
	style := inputBoxStyle
	if !m.state.AcceptsInput() || m.stage == stageDisplay {
		style = inputBoxDisabledStyle
	}
	return style.Render(m.input.View())
}

func (m *model) statusBarView() string {
	stats := []string{fmt.Sprintf("State %s", m.state.Phase)}
	if d := m.ctrl.MinLoading(); d > 0 {
		stats = append(stats, fmt.Sprintf("Min loading %s", d))
	}
	stats = append(stats, fmt.Sprintf("Layout %s", m.config.Policy))
	stats = append(stats, m.jobBoard.badges()...)
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

type keyHint struct {
	Key         string
	Description string
}

func (m *model) keyLegendView() string {
	hints := []keyHint{
		{"Enter", "Ask"},
		{"↑/↓", "Choose or scroll"},
		{"Tab", "Use suggestion"},
		{"n", "Ask another"},
		{"y", "Copy answer"},
		{"Esc", "Abandon or quit"},
		{"?", "Toggle keys"},
		{"Ctrl+C", "Quit"},
	}
	rows := []string{sectionHeaderStyle.Render("Keys")}
	const columns = 3
	for i := 0; i < len(hints); i += columns {
		end := i + columns
		if end > len(hints) {
			end = len(hints)
		}
		var cells []string
		for _, hint := range hints[i:end] {
			key := keyStyle.Render(hint.Key)
			desc := keyDescStyle.Render(" " + hint.Description + "  ")
			cells = append(cells, lipgloss.JoinHorizontal(lipgloss.Top, key, desc))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return legendBoxStyle.Render(strings.Join(rows, "\n"))
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func renderLogo() string {
	width := 0
	lineRunes := make([][]rune, len(logoArtLines))
	for i, line := range logoArtLines {
		runes := []rune(line)
		lineRunes[i] = runes
		if len(runes) > width {
			width = len(runes)
		}
	}
	width++
	height := len(logoArtLines) + 1

	type cell struct {
		r     rune
		style lipgloss.Style
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	// Shadow first, offset one cell down and right, then the face on top.
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y+1][x+1] = cell{r: r, style: logoShadowStyle}
			}
		}
	}
	for y, runes := range lineRunes {
		for x, r := range runes {
			if r != ' ' {
				grid[y][x] = cell{r: r, style: logoFaceStyle}
			}
		}
	}

	lines := make([]string, height)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			if c.r == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return logoContainerStyle.Render(strings.Join(lines, "\n"))
}

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	questionStyle      = lipgloss.NewStyle().Bold(true).Foreground(heroSecondaryTextColor)
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	heroAccentColor        = lipgloss.Color("#ff8c00")
	heroEmberColor         = lipgloss.Color("#2b1400")
	heroTextColor          = lipgloss.Color("#fff4d0")
	heroSecondaryTextColor = lipgloss.Color("#ffb347")

	taglineStyle          = lipgloss.NewStyle().Foreground(heroSecondaryTextColor).Italic(true)
	inputBoxStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(heroAccentColor).Padding(0, 1)
	inputBoxDisabledStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Foreground(lipgloss.Color("240")).Padding(0, 1)
	statusBarStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	keyStyle              = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166")).Padding(0, 1)
	keyDescStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4"))
	legendBoxStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
	currentLineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	logoFaceStyle         = lipgloss.NewStyle().Bold(true).Foreground(heroTextColor).Background(heroEmberColor)
	logoShadowStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#110600"))
	logoContainerStyle    = lipgloss.NewStyle().Padding(0, 1)
	logoArtLines          = []string{
		"█   █ █  █  ███  █████   █████ █████",
		"█   █ █  █ █   █   █       █   █    ",
		"█ █ █ ████ █████   █       █   ████ ",
		"██ ██ █  █ █   █   █       █   █    ",
		"█   █ █  █ █   █   █     █████ █    ",
	}
)
