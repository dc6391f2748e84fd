package submit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/csheth/whatif/internal/api"
	"github.com/csheth/whatif/internal/response"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const wellFormed = "Scenario: A\n\nConsequences:\n- X\n- Y\n\nAnalysis: B"

type fakeTransport struct {
	mu       sync.Mutex
	calls    int
	reply    func(ctx context.Context, question string) (string, error)
	items    []api.Inspiration
	itemsErr error
}

func (f *fakeTransport) Submit(ctx context.Context, question string) (string, error) {
	f.mu.Lock()
	f.calls++
	reply := f.reply
	f.mu.Unlock()
	return reply(ctx, question)
}

func (f *fakeTransport) Inspiration(ctx context.Context) ([]api.Inspiration, error) {
	return f.items, f.itemsErr
}

func (f *fakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func replyWith(text string, err error) func(context.Context, string) (string, error) {
	return func(context.Context, string) (string, error) { return text, err }
}

type recordingRenderer struct {
	mu          sync.Mutex
	states      []State
	errors      []*Error
	inspiration [][]api.Inspiration
}

func (r *recordingRenderer) Render(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recordingRenderer) RenderError(err *Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *recordingRenderer) RenderInspiration(items []api.Inspiration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inspiration = append(r.inspiration, items)
}

func (r *recordingRenderer) Phases() []Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	phases := make([]Phase, 0, len(r.states))
	for _, s := range r.states {
		phases = append(phases, s.Phase)
	}
	return phases
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []clockWaiter
}

type clockWaiter struct {
	at time.Time
	ch chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, clockWaiter{at: f.now.Add(d), ch: ch})
	return ch
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	pending := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.at.After(f.now) {
			w.ch <- f.now
			continue
		}
		pending = append(pending, w)
	}
	f.waiters = pending
}

func (f *fakeClock) Waiters() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}

func eventuallyPhase(t *testing.T, c *Controller, want Phase) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State().Phase == want }, time.Second, time.Millisecond,
		"controller never reached %s", want)
}

func TestSubmitRejectsEmptyQuestion(t *testing.T) {
	transport := &fakeTransport{reply: replyWith(wellFormed, nil)}
	renderer := &recordingRenderer{}
	c := New(transport, renderer)

	for _, q := range []string{"", "   ", "\n\t"} {
		err := c.Submit(context.Background(), q)
		require.Error(t, err)
		assert.Equal(t, EmptyInput, KindOf(err))
	}
	assert.Equal(t, 0, transport.Calls())
	assert.Equal(t, Idle, c.State().Phase)
	assert.Empty(t, renderer.Phases())
}

func TestSubmitDisplaysParsedResponse(t *testing.T) {
	transport := &fakeTransport{reply: replyWith(wellFormed, nil)}
	renderer := &recordingRenderer{}
	c := New(transport, renderer)

	require.NoError(t, c.Submit(context.Background(), "  What if dinosaurs survived?  "))

	state := c.State()
	assert.Equal(t, Displaying, state.Phase)
	assert.Equal(t, "What if dinosaurs survived?", state.Question)
	assert.Equal(t, response.Parsed{Scenario: "A", Consequences: []string{"X", "Y"}, Analysis: "B"}, state.Result)
	assert.Equal(t, wellFormed, state.Raw)
	assert.Nil(t, state.Err)
	assert.Equal(t, []Phase{Submitting, Displaying}, renderer.Phases())
	assert.Equal(t, 1, transport.Calls())
}

func TestSubmitDisplaysUnlabeledText(t *testing.T) {
	transport := &fakeTransport{reply: replyWith("just prose", nil)}
	c := New(transport, nil)

	require.NoError(t, c.Submit(context.Background(), "What if nothing parsed?"))
	state := c.State()
	assert.Equal(t, Displaying, state.Phase)
	assert.True(t, state.Result.Empty())
	assert.Equal(t, "just prose", state.Raw)
}

func TestSubmitFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"rate limited", &api.StatusError{Code: http.StatusTooManyRequests, Status: "429 Too Many Requests"}, RateLimited, 429},
		{"server error", &api.StatusError{Code: http.StatusInternalServerError, Status: "500 Internal Server Error"}, ServerError, 500},
		{"bad gateway", &api.StatusError{Code: http.StatusBadGateway, Status: "502 Bad Gateway"}, ServerError, 502},
		{"invalid payload", api.ErrInvalidPayload, InvalidPayload, 0},
		{"network", errors.New("dial tcp: connection refused"), NetworkError, 0},
		{"wrapped network", context.DeadlineExceeded, NetworkError, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{reply: replyWith("", tt.err)}
			renderer := &recordingRenderer{}
			c := New(transport, renderer)

			err := c.Submit(context.Background(), "What if it fails?")
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.ErrorIs(t, err, tt.err)

			state := c.State()
			require.Equal(t, Failed, state.Phase)
			require.NotNil(t, state.Err)
			assert.Equal(t, tt.kind, state.Err.Kind)
			assert.Equal(t, tt.status, state.Err.Status)
			assert.True(t, state.AcceptsInput(), "failures must re-enable input")

			require.Len(t, renderer.errors, 1)
			assert.Equal(t, tt.kind, renderer.errors[0].Kind)
			assert.Equal(t, []Phase{Submitting, Failed}, renderer.Phases())
		})
	}
}

func TestSecondSubmitWhileSubmittingIsNoop(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{reply: func(ctx context.Context, q string) (string, error) {
		<-release
		return wellFormed, nil
	}}
	c := New(transport, &recordingRenderer{})

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "What if one?") }()
	eventuallyPhase(t, c, Submitting)

	assert.ErrorIs(t, c.Submit(context.Background(), "What if two?"), ErrBusy)
	assert.False(t, c.State().AcceptsInput())
	assert.Equal(t, "What if one?", c.State().Question)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, transport.Calls())
	assert.Equal(t, Displaying, c.State().Phase)
}

func TestResubmitDiscardsPriorOutcome(t *testing.T) {
	transport := &fakeTransport{reply: replyWith("", &api.StatusError{Code: 500, Status: "500"})}
	renderer := &recordingRenderer{}
	c := New(transport, renderer)

	require.Error(t, c.Submit(context.Background(), "What if first?"))
	require.Equal(t, Failed, c.State().Phase)

	transport.mu.Lock()
	transport.reply = replyWith(wellFormed, nil)
	transport.mu.Unlock()

	require.NoError(t, c.Submit(context.Background(), "What if second?"))
	state := c.State()
	assert.Equal(t, Displaying, state.Phase)
	assert.Nil(t, state.Err)

	renderer.mu.Lock()
	submitting := renderer.states[2]
	renderer.mu.Unlock()
	assert.Equal(t, Submitting, submitting.Phase)
	assert.Nil(t, submitting.Err)
	assert.True(t, submitting.Result.Empty())

	require.NoError(t, c.Submit(context.Background(), "What if third?"))
	assert.Equal(t, []Phase{Submitting, Failed, Submitting, Displaying, Submitting, Displaying}, renderer.Phases())
}

func TestResetClearsState(t *testing.T) {
	transport := &fakeTransport{reply: replyWith(wellFormed, nil)}
	c := New(transport, &recordingRenderer{})

	c.Reset()
	assert.Equal(t, State{Phase: Idle}, c.State())

	require.NoError(t, c.Submit(context.Background(), "What if displayed?"))
	c.Reset()
	assert.Equal(t, State{Phase: Idle}, c.State())

	transport.mu.Lock()
	transport.reply = replyWith("", errors.New("offline"))
	transport.mu.Unlock()
	require.Error(t, c.Submit(context.Background(), "What if failed?"))
	c.Reset()
	assert.Equal(t, State{Phase: Idle}, c.State())
}

func TestResetAbandonsInFlightSubmission(t *testing.T) {
	release := make(chan struct{})
	transport := &fakeTransport{reply: func(ctx context.Context, q string) (string, error) {
		<-release
		return wellFormed, nil
	}}
	renderer := &recordingRenderer{}
	c := New(transport, renderer)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "What if abandoned?") }()
	eventuallyPhase(t, c, Submitting)

	c.Reset()
	assert.Equal(t, Idle, c.State().Phase)
	assert.ErrorIs(t, c.Submit(context.Background(), "What if overlapping?"), ErrBusy,
		"the abandoned request is still outstanding")

	close(release)
	assert.ErrorIs(t, <-done, ErrAbandoned)
	assert.Equal(t, State{Phase: Idle}, c.State())
	assert.Equal(t, []Phase{Submitting, Idle}, renderer.Phases())

	require.NoError(t, c.Submit(context.Background(), "What if later?"))
	assert.Equal(t, 2, transport.Calls())
}

func TestMinLoadingDelaysDisplay(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{reply: replyWith(wellFormed, nil)}
	renderer := &recordingRenderer{}
	c := New(transport, renderer, WithMinLoading(3000*time.Millisecond), WithClock(clock))
	start := clock.Now()

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), "What if patience?") }()

	require.Eventually(t, func() bool { return clock.Waiters() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, Submitting, c.State().Phase)

	clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, Submitting, c.State().Phase)
	assert.Equal(t, 1, clock.Waiters())

	clock.Advance(time.Millisecond)
	require.NoError(t, <-done)
	assert.Equal(t, Displaying, c.State().Phase)
	assert.GreaterOrEqual(t, clock.Now().Sub(start), 3000*time.Millisecond)
	assert.Equal(t, []Phase{Submitting, Displaying}, renderer.Phases())
}

func TestMinLoadingSkipsWaitForSlowResponses(t *testing.T) {
	clock := newFakeClock()
	transport := &fakeTransport{reply: func(ctx context.Context, q string) (string, error) {
		clock.Advance(5 * time.Second)
		return "", &api.StatusError{Code: 503, Status: "503"}
	}}
	c := New(transport, nil, WithMinLoading(3*time.Second), WithClock(clock))

	err := c.Submit(context.Background(), "What if slow?")
	assert.Equal(t, ServerError, KindOf(err))
	assert.Equal(t, 0, clock.Waiters())
}

func TestMinLoadingDefaultsToDisabled(t *testing.T) {
	c := New(&fakeTransport{}, nil, WithMinLoading(-time.Second))
	assert.Zero(t, c.MinLoading())
}

func TestLoadInspiration(t *testing.T) {
	items := []api.Inspiration{{Text: "What if cats ruled?", Count: 4}}
	transport := &fakeTransport{items: items}
	renderer := &recordingRenderer{}
	c := New(transport, renderer)

	require.NoError(t, c.LoadInspiration(context.Background()))
	require.Len(t, renderer.inspiration, 1)
	assert.Equal(t, items, renderer.inspiration[0])
	assert.Equal(t, Idle, c.State().Phase)
	assert.Empty(t, renderer.Phases())

	transport.itemsErr = errors.New("offline")
	require.Error(t, c.LoadInspiration(context.Background()))
	assert.Len(t, renderer.inspiration, 1)
}

func TestKindMessagesAreDistinct(t *testing.T) {
	seen := map[string]Kind{}
	for _, k := range []Kind{EmptyInput, NetworkError, RateLimited, ServerError, InvalidPayload} {
		msg := k.Message()
		require.NotEmpty(t, msg)
		if prev, ok := seen[msg]; ok {
			t.Fatalf("%s and %s share message %q", prev, k, msg)
		}
		seen[msg] = k
	}
}

func TestStateCopiesAreIsolated(t *testing.T) {
	c := New(&fakeTransport{reply: replyWith(wellFormed, nil)}, nil)
	require.NoError(t, c.Submit(context.Background(), "What if mutated?"))

	snapshot := c.State()
	snapshot.Result.Consequences[0] = "changed"
	assert.Equal(t, "X", c.State().Result.Consequences[0])
}
