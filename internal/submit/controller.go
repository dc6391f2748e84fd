// Package submit owns the lifecycle of a single question submission: it
// guards input, talks to the transport, parses the narrative and tells the
// renderer what to show.
package submit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/response"
)

// Transport carries questions to the generation service.
type Transport interface {
	Submit(ctx context.Context, question string) (string, error)
	Inspiration(ctx context.Context) ([]api.Inspiration, error)
}

// Renderer consumes state changes. Calls arrive in transition order and must
// not call back into the Controller synchronously.
type Renderer interface {
	Render(State)
	RenderError(*Error)
	RenderInspiration([]api.Inspiration)
}

// Clock abstracts time for the minimum loading policy.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// ErrAbandoned is returned by Submit when Reset discarded the submission
// before its result arrived.
var ErrAbandoned = errors.New("submission abandoned by reset")

// Option configures a Controller.
type Option func(*Controller)

// WithMinLoading holds the loading state visible for at least d after a
// submission starts. Zero disables the policy.
func WithMinLoading(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.minLoading = d
		}
	}
}

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller is the submission state machine. It is safe for concurrent use.
type Controller struct {
	transport  Transport
	renderer   Renderer
	parser     response.Parser
	clock      Clock
	logger     *zap.Logger
	minLoading time.Duration

	mu         sync.Mutex
	state      State
	inFlight   bool
	generation uint64

	// renderMu keeps renderer notifications in transition order.
	renderMu sync.Mutex
}

// New returns an Idle controller.
func New(transport Transport, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		transport: transport,
		renderer:  renderer,
		clock:     systemClock{},
		logger:    zap.NewNop(),
		state:     State{Phase: Idle},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = response.Parser{Logger: c.logger}
	return c
}

// State returns a copy of the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// MinLoading reports the configured minimum loading duration.
func (c *Controller) MinLoading() time.Duration {
	return c.minLoading
}

// Submit sends question and blocks until the submission resolves. It returns
// nil once the result is displayed, the *Error of a failed submission,
// ErrBusy when a request is already outstanding, or ErrAbandoned.
func (c *Controller) Submit(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		c.logger.Debug("rejected empty question")
		return &Error{Kind: EmptyInput}
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("submission ignored while busy")
		return ErrBusy
	}
	c.inFlight = true
	c.generation++
	gen := c.generation
	started := c.clock.Now()
	c.state = State{Phase: Submitting, Question: question}
	c.notifyLocked(c.state, nil)

	c.logger.Info("submitting question", zap.Uint64("generation", gen), zap.Int("length", len(question)))
	raw, err := c.transport.Submit(ctx, question)
	c.waitMinLoading(ctx, started)

	next := State{Question: question}
	var failure *Error
	if err != nil {
		failure = classify(err)
		next.Phase = Failed
		next.Err = failure
		c.logger.Warn("submission failed",
			zap.Uint64("generation", gen),
			zap.Stringer("kind", failure.Kind),
			zap.Int("status", failure.Status),
			zap.Error(err),
			zap.Duration("elapsed", c.clock.Now().Sub(started)))
	} else {
		next.Phase = Displaying
		next.Raw = raw
		next.Result = c.parser.Parse(raw)
		c.logger.Info("submission displayed",
			zap.Uint64("generation", gen),
			zap.Int("consequences", len(next.Result.Consequences)),
			zap.Bool("empty", next.Result.Empty()),
			zap.Duration("elapsed", c.clock.Now().Sub(started)))
	}

	c.mu.Lock()
	c.inFlight = false
	if gen != c.generation || c.state.Phase != Submitting {
		c.mu.Unlock()
		c.logger.Info("dropping abandoned result", zap.Uint64("generation", gen))
		return ErrAbandoned
	}
	c.state = next
	c.notifyLocked(next, failure)
	if failure != nil {
		return failure
	}
	return nil
}

// Reset returns the controller to Idle and clears any result or error. An
// outstanding request is abandoned, not cancelled.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.state.Phase == Submitting {
		c.logger.Info("abandoning in-flight submission", zap.Uint64("generation", c.generation))
	}
	c.generation++
	c.state = State{Phase: Idle}
	c.notifyLocked(c.state, nil)
}

// LoadInspiration fetches the inspiration list and hands it to the renderer.
// It does not affect the submission state.
func (c *Controller) LoadInspiration(ctx context.Context) error {
	items, err := c.transport.Inspiration(ctx)
	if err != nil {
		c.logger.Warn("inspiration fetch failed", zap.Error(err))
		return err
	}
	c.renderMu.Lock()
	defer c.renderMu.Unlock()
	if c.renderer != nil {
		c.renderer.RenderInspiration(items)
	}
	return nil
}

// notifyLocked must be called with mu held; it releases mu before invoking
// the renderer so the renderer may read State.
func (c *Controller) notifyLocked(state State, failure *Error) {
	c.renderMu.Lock()
	c.mu.Unlock()
	defer c.renderMu.Unlock()
	if c.renderer == nil {
		return
	}
	c.renderer.Render(state.clone())
	if failure != nil {
		c.renderer.RenderError(failure)
	}
}

func (c *Controller) waitMinLoading(ctx context.Context, started time.Time) {
	if c.minLoading <= 0 {
		return
	}
	remaining := c.minLoading - c.clock.Now().Sub(started)
	if remaining <= 0 {
		return
	}
	select {
	case <-c.clock.After(remaining):
	case <-ctx.Done():
	}
}
