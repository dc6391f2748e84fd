package tui

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// jobKind names the controller calls and side effects the client runs off
// the update loop.
type jobKind string

const (
	jobKindSubmit      jobKind = "submit"
	jobKindInspiration jobKind = "inspiration"
	jobKindReset       jobKind = "reset"
	jobKindCopy        jobKind = "copy"
)

type jobStatus int

const (
	jobRunning jobStatus = iota
	jobSucceeded
	jobFailed
)

type jobSnapshot struct {
	Seq     uint64
	Kind    jobKind
	Status  jobStatus
	Started time.Time
	Elapsed time.Duration
	Err     error
}

type jobStartedMsg struct{ snapshot jobSnapshot }

// jobDoneMsg carries the runner's payload back into Update along with the
// final snapshot.
type jobDoneMsg struct {
	snapshot jobSnapshot
	payload  tea.Msg
}

type jobRunner func(context.Context) (tea.Msg, error)

type jobBus struct {
	seq    atomic.Uint64
	ctx    context.Context
	logger *zap.Logger
}

func newJobBus(ctx context.Context, logger *zap.Logger) *jobBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &jobBus{ctx: ctx, logger: logger}
}

// Start reports the job as running, then runs it with the client's context.
// The context is cancelled when the client quits.
func (b *jobBus) Start(kind jobKind, runner jobRunner) tea.Cmd {
	started := jobSnapshot{Seq: b.seq.Add(1), Kind: kind, Status: jobRunning, Started: time.Now()}
	return tea.Sequence(
		func() tea.Msg { return jobStartedMsg{snapshot: started} },
		func() tea.Msg {
			payload, err := runner(b.ctx)
			done := started
			done.Elapsed = time.Since(started.Started)
			done.Status, done.Err = jobSucceeded, err
			if err != nil {
				done.Status = jobFailed
			}
			b.logger.Debug("job finished",
				zap.Uint64("seq", done.Seq),
				zap.String("kind", string(kind)),
				zap.Duration("elapsed", done.Elapsed),
				zap.Error(err))
			return jobDoneMsg{snapshot: done, payload: payload}
		},
	)
}

// jobBoard keeps the newest snapshot per kind for the status bar.
type jobBoard map[jobKind]jobSnapshot

// record ignores snapshots older than the one already held, so a slow job
// cannot overwrite the state of a newer job of the same kind.
func (b jobBoard) record(s jobSnapshot) {
	if current, ok := b[s.Kind]; ok && current.Seq > s.Seq {
		return
	}
	b[s.Kind] = s
}

var badgeOrder = []jobKind{jobKindSubmit, jobKindInspiration, jobKindCopy}

func (b jobBoard) badges() []string {
	var badges []string
	for _, kind := range badgeOrder {
		snapshot, ok := b[kind]
		if !ok {
			continue
		}
		switch snapshot.Status {
		case jobRunning:
			badges = append(badges, fmt.Sprintf("%s…", kind))
		case jobFailed:
			badges = append(badges, fmt.Sprintf("%s failed", kind))
		}
	}
	return badges
}
