package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/submit"
)

type stateMsg struct {
	state submit.State
}

type failureMsg struct {
	err *submit.Error
}

type inspirationMsg struct {
	items []api.Inspiration
}

// renderBridge implements submit.Renderer by queueing every notification for
// the bubbletea loop, which drains it with waitForRender.
type renderBridge struct {
	updates chan tea.Msg
	done    chan struct{}
	once    sync.Once
}

func newRenderBridge() *renderBridge {
	return &renderBridge{
		updates: make(chan tea.Msg, 32),
		done:    make(chan struct{}),
	}
}

func (b *renderBridge) Render(state submit.State) {
	b.send(stateMsg{state: state})
}

func (b *renderBridge) RenderError(err *submit.Error) {
	b.send(failureMsg{err: err})
}

func (b *renderBridge) RenderInspiration(items []api.Inspiration) {
	b.send(inspirationMsg{items: append([]api.Inspiration(nil), items...)})
}

func (b *renderBridge) send(msg tea.Msg) {
	select {
	case b.updates <- msg:
	case <-b.done:
	}
}

// close unblocks pending senders once the program is quitting.
func (b *renderBridge) close() {
	b.once.Do(func() { close(b.done) })
}

func waitForRender(b *renderBridge) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.updates:
			return msg
		case <-b.done:
			return nil
		}
	}
}
