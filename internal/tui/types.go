package tui

type stage int

const (
	stageInput stage = iota
	stageLoading
	stageDisplay
)

func (s stage) String() string {
	switch s {
	case stageInput:
		return "input"
	case stageLoading:
		return "loading"
	case stageDisplay:
		return "display"
	default:
		return "unknown"
	}
}

const heroTagline = "Ask what if. See what follows."

const (
	minViewportWidth          = 40
	minViewportHeight         = 6
	viewportHorizontalPadding = 4
	inspirationPreviewLimit   = 8
	questionPreviewLimit      = 72
)

// chromeHeight counts the rows around the viewport: logo and tagline, the
// message line, the input box, the status bar and the gaps between them.
const chromeHeight = 16

const (
	inputPlaceholder = "cats ran the city council"
	inputPrompt      = "What if "
)
