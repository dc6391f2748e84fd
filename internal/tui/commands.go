package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/whatif/internal/response"
	"github.com/csheth/whatif/internal/submit"
)

type submitResultMsg struct {
	err error
}

type inspirationResultMsg struct {
	err error
}

type copyResultMsg struct {
	chars int
	err   error
}

// submitJob blocks on the controller; the visible transitions arrive through
// the render bridge, the envelope only reports how the call ended.
func submitJob(ctrl *submit.Controller, question string) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := ctrl.Submit(ctx, question)
		switch {
		case err == nil:
			return submitResultMsg{}, nil
		case errors.Is(err, submit.ErrAbandoned):
			// A reset is not a failure of the job.
			return submitResultMsg{err: err}, nil
		default:
			return submitResultMsg{err: err}, err
		}
	}
}

func inspirationJob(ctrl *submit.Controller) jobRunner {
	return func(ctx context.Context) (tea.Msg, error) {
		err := ctrl.LoadInspiration(ctx)
		return inspirationResultMsg{err: err}, err
	}
}

func resetJob(ctrl *submit.Controller) jobRunner {
	return func(context.Context) (tea.Msg, error) {
		ctrl.Reset()
		return nil, nil
	}
}

func copyJob(write func(string) error, state submit.State) jobRunner {
	text := copyText(state)
	return func(context.Context) (tea.Msg, error) {
		if text == "" {
			err := errors.New("nothing to copy")
			return copyResultMsg{err: err}, err
		}
		if err := write(text); err != nil {
			return copyResultMsg{err: err}, err
		}
		return copyResultMsg{chars: len([]rune(text))}, nil
	}
}

// copyText prefers the canonical sections and falls back to the raw answer
// when nothing in it was labeled.
func copyText(state submit.State) string {
	if !state.Result.Empty() {
		return response.Format(state.Result)
	}
	return strings.TrimSpace(state.Raw)
}

func previewText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

// bareQuestion strips the "What if ... happened?" framing so the text fits
// after the input prompt.
func bareQuestion(text string) string {
	q := strings.TrimSpace(text)
	q = strings.TrimSuffix(q, "?")
	q = strings.TrimSuffix(q, " happened")
	if len(q) >= len(inputPrompt) && strings.EqualFold(q[:len(inputPrompt)], inputPrompt) {
		q = q[len(inputPrompt):]
	}
	return strings.TrimSpace(q)
}

func headline(question string) string {
	return inputPrompt + bareQuestion(question) + "?"
}
