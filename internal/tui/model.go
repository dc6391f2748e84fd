package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/submit"
	"github.com/csheth/whatif/internal/validate"
)

// Config wires runtime options into the TUI program.
type Config struct {
	Transport  submit.Transport
	MinLoading time.Duration
	Policy     response.Policy
	Logger     *zap.Logger
	// Clipboard receives copied answers. Nil uses the system clipboard.
	Clipboard func(string) error
	Clock     submit.Clock
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	return newModel(config)
}

type model struct {
	config Config
	stage  stage
	layout pageLayout

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	ctx    context.Context
	cancel context.CancelFunc
	bridge *renderBridge
	ctrl   *submit.Controller
	jobs   *jobBus

	state             submit.State
	inspiration       []api.Inspiration
	inspirationCursor int
	inspirationErr    string
	jobBoard          jobBoard

	infoMessage   string
	errorMessage  string
	helpVisible   bool
	viewportDirty bool
}

func newModel(config Config) *model {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Clipboard == nil {
		config.Clipboard = clipboard.WriteAll
	}

	layout := newPageLayout()

	input := textinput.New()
	input.Prompt = inputPrompt
	input.Placeholder = inputPlaceholder
	input.CharLimit = validate.MaxQuestionLength
	input.Width = layout.inputWidth
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(layout.viewportWidth, layout.viewportHeight)
	vp.MouseWheelEnabled = true

	ctx, cancel := context.WithCancel(context.Background())
	bridge := newRenderBridge()
	ctrl := submit.New(config.Transport, bridge,
		submit.WithMinLoading(config.MinLoading),
		submit.WithClock(config.Clock),
		submit.WithLogger(config.Logger.Named("submit")),
	)

	return &model{
		config:        config,
		stage:         stageInput,
		layout:        layout,
		input:         input,
		spinner:       spin,
		viewport:      vp,
		ctx:           ctx,
		cancel:        cancel,
		bridge:        bridge,
		ctrl:          ctrl,
		jobs:          newJobBus(ctx, config.Logger.Named("jobs")),
		state:         submit.State{Phase: submit.Idle},
		jobBoard:      jobBoard{},
		infoMessage:   "Finish the sentence and press Enter.",
		viewportDirty: true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForRender(m.bridge),
		m.jobs.Start(jobKindInspiration, inspirationJob(m.ctrl)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage != stageLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.markViewportDirty()
		return m, cmd
	case tea.WindowSizeMsg:
		m.layout.Update(msg.Width, msg.Height)
		m.viewport.Width = m.layout.viewportWidth
		m.viewport.Height = m.layout.viewportHeight
		m.input.Width = m.layout.inputWidth
		m.markViewportDirty()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case stateMsg:
		return m, tea.Batch(m.applyState(msg.state), waitForRender(m.bridge))
	case failureMsg:
		m.errorMessage = msg.err.Kind.Message()
		return m, waitForRender(m.bridge)
	case inspirationMsg:
		m.inspiration = msg.items
		m.inspirationErr = ""
		if m.inspirationCursor >= len(m.inspiration) {
			m.inspirationCursor = 0
		}
		m.markViewportDirty()
		return m, waitForRender(m.bridge)
	case jobStartedMsg:
		m.jobBoard.record(msg.snapshot)
		return m, nil
	case jobDoneMsg:
		m.jobBoard.record(msg.snapshot)
		m.handleJobResult(msg.payload)
		return m, nil
	}
	return m, nil
}

// applyState mirrors a controller transition into the view.
func (m *model) applyState(state submit.State) tea.Cmd {
	prev := m.state.Phase
	m.state = state
	m.stage = stageForPhase(state.Phase)
	m.markViewportDirty()

	switch state.Phase {
	case submit.Submitting:
		m.errorMessage = ""
		m.infoMessage = "Asking…"
		m.input.Blur()
		return m.spinner.Tick
	case submit.Displaying:
		m.errorMessage = ""
		m.infoMessage = "n: ask another • y: copy • ↑/↓: scroll"
		m.input.SetValue("")
		m.input.Blur()
		m.viewport.GotoTop()
		return nil
	case submit.Failed:
		m.infoMessage = "Edit the question or press Enter to try again."
		return m.input.Focus()
	default:
		m.errorMessage = ""
		m.infoMessage = "Finish the sentence and press Enter."
		cmd := m.input.Focus()
		if prev == submit.Displaying {
			return tea.Batch(cmd, m.jobs.Start(jobKindInspiration, inspirationJob(m.ctrl)))
		}
		return cmd
	}
}

func (m *model) handleJobResult(payload tea.Msg) {
	switch p := payload.(type) {
	case submitResultMsg:
		var failure *submit.Error
		switch {
		case p.err == nil, errors.Is(p.err, submit.ErrAbandoned):
		case errors.Is(p.err, submit.ErrBusy):
			m.infoMessage = "Still waiting on the previous answer."
		case errors.As(p.err, &failure) && failure.Kind == submit.EmptyInput:
			m.errorMessage = failure.Kind.Message()
		}
	case inspirationResultMsg:
		if p.err != nil {
			m.inspirationErr = p.err.Error()
			m.markViewportDirty()
		}
	case copyResultMsg:
		if p.err != nil {
			m.errorMessage = fmt.Sprintf("Copy failed: %v", p.err)
			return
		}
		m.infoMessage = fmt.Sprintf("Copied %d characters to the clipboard.", p.chars)
	}
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageLoading:
		if key.Type == tea.KeyEsc {
			m.infoMessage = "Question abandoned."
			return m, m.jobs.Start(jobKindReset, resetJob(m.ctrl))
		}
		return m, nil
	case stageDisplay:
		return m.handleDisplayKey(key)
	default:
		return m.handleInputKey(key)
	}
}

func (m *model) handleInputKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEnter:
		return m, m.submitQuestion()
	case tea.KeyEsc:
		if strings.TrimSpace(m.input.Value()) == "" {
			return m, m.quit()
		}
		m.input.SetValue("")
		m.errorMessage = ""
		return m, nil
	case tea.KeyUp:
		m.moveInspirationCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveInspirationCursor(1)
		return m, nil
	case tea.KeyTab:
		if item, ok := m.selectedInspiration(); ok {
			m.input.SetValue(bareQuestion(item.Text))
			m.input.CursorEnd()
			m.errorMessage = ""
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m *model) handleDisplayKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "n", "enter":
		return m, m.jobs.Start(jobKindReset, resetJob(m.ctrl))
	case "y":
		return m, m.jobs.Start(jobKindCopy, copyJob(m.config.Clipboard, m.state))
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	case "q", "esc":
		return m, m.quit()
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

// submitQuestion validates locally before handing the question to the
// controller. Blank input goes straight through so the controller reports it.
func (m *model) submitQuestion() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())
	if value != "" {
		if err := validate.Question(value); err != nil {
			m.errorMessage = validate.Message(err)
			return nil
		}
	}
	m.errorMessage = ""
	return m.jobs.Start(jobKindSubmit, submitJob(m.ctrl, value))
}

func (m *model) moveInspirationCursor(delta int) {
	n := len(m.inspiration)
	if n > inspirationPreviewLimit {
		n = inspirationPreviewLimit
	}
	if n == 0 {
		return
	}
	m.inspirationCursor = (m.inspirationCursor + delta + n) % n
	m.markViewportDirty()
}

func (m *model) selectedInspiration() (api.Inspiration, bool) {
	if m.inspirationCursor < 0 || m.inspirationCursor >= len(m.inspiration) {
		return api.Inspiration{}, false
	}
	return m.inspiration[m.inspirationCursor], true
}

func (m *model) quit() tea.Cmd {
	m.cancel()
	m.bridge.close()
	return tea.Quit
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewportDirty = false
	m.viewport.SetContent(m.contentForStage())
}
