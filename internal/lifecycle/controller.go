package lifecycle

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/five82/insight/internal/insight"
)

var (
	// ErrBlankURL rejects a submission whose URL is empty after trimming.
	ErrBlankURL = errors.New("url is blank")
	// ErrInFlight rejects a submission while an attempt is outstanding.
	ErrInFlight = errors.New("analysis already in progress")
)

// Outcome is the single resolution of an attempt. Err is nil on success.
type Outcome struct {
	Attempt uint64
	Data    insight.AnalyzeResponse
	Err     *insight.ErrorResponse
}

// Pending is an accepted submission whose transport call has not run yet.
// Wait performs the call; it runs at most once per Pending.
type Pending struct {
	Attempt uint64
	URL     string

	once sync.Once
	call func() Outcome
	out  Outcome
}

// Wait performs the transport call and returns its outcome. It blocks, so
// callers run it off the thread that owns the UI.
func (p *Pending) Wait() Outcome {
	p.once.Do(func() { p.out = p.call() })
	return p.out
}

// Controller owns the lifecycle state cell. All reads and writes go through
// its mutex, so Submit and Resolve may be called from different goroutines.
type Controller struct {
	mu       sync.Mutex
	state    State
	attempt  uint64
	analyzer insight.Analyzer
	logger   *log.Logger
	hook     func(from, to State)
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for transition diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Controller in the Idle state.
func New(analyzer insight.Analyzer, opts ...Option) *Controller {
	c := &Controller{
		state:    Idle{},
		analyzer: analyzer,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnTransition registers fn to run after every state change. fn runs
// outside the controller lock and must not block.
func (c *Controller) OnTransition(fn func(from, to State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hook = fn
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit starts a new attempt for raw. Blank input returns ErrBlankURL and a
// submission while Loading returns ErrInFlight; neither changes state.
// Otherwise the state becomes Loading and the returned Pending carries the
// one transport call for this attempt.
func (c *Controller) Submit(ctx context.Context, raw string) (*Pending, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return nil, ErrBlankURL
	}

	c.mu.Lock()
	if c.state.Status() == StatusLoading {
		c.mu.Unlock()
		c.logger.Debug("submission rejected", "url", target, "reason", ErrInFlight)
		return nil, ErrInFlight
	}
	if c.analyzer == nil {
		c.mu.Unlock()
		return nil, errors.New("lifecycle: analyzer is nil")
	}
	c.attempt++
	attempt := c.attempt
	from := c.state
	c.state = Loading{}
	hook := c.hook
	analyzer := c.analyzer
	c.mu.Unlock()

	c.logger.Info("analysis started", "attempt", attempt, "url", target)
	notify(hook, from, Loading{})

	return &Pending{
		Attempt: attempt,
		URL:     target,
		call: func() Outcome {
			data, err := analyzer.Analyze(ctx, target)
			if err != nil {
				return Outcome{Attempt: attempt, Err: insight.AsErrorResponse(err)}
			}
			return Outcome{Attempt: attempt, Data: data}
		},
	}, nil
}

// Resolve applies the outcome of the outstanding attempt. Outcomes for any
// other attempt, or arriving when nothing is Loading, are discarded and
// Resolve returns false.
func (c *Controller) Resolve(out Outcome) bool {
	c.mu.Lock()
	if c.state.Status() != StatusLoading || out.Attempt != c.attempt {
		current := c.attempt
		c.mu.Unlock()
		c.logger.Warn("stale outcome discarded", "attempt", out.Attempt, "current", current)
		return false
	}
	var next State
	if out.Err != nil {
		next = Failure{Err: *out.Err}
	} else {
		next = Success{Data: out.Data.Clone()}
	}
	from := c.state
	c.state = next
	hook := c.hook
	c.mu.Unlock()

	if f, ok := next.(Failure); ok {
		c.logger.Warn("analysis failed", "attempt", out.Attempt, "code", f.Err.StatusCode, "message", f.Err.Message)
	} else {
		c.logger.Info("analysis finished", "attempt", out.Attempt)
	}
	notify(hook, from, next)
	return true
}

// Run submits raw, waits for the transport call and resolves it. It is the
// synchronous path used outside the TUI.
func (c *Controller) Run(ctx context.Context, raw string) (State, error) {
	pending, err := c.Submit(ctx, raw)
	if err != nil {
		return c.State(), err
	}
	c.Resolve(pending.Wait())
	return c.State(), nil
}

func notify(hook func(from, to State), from, to State) {
	if hook != nil {
		hook(from, to)
	}
}
