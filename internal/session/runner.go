package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// ErrSessionClosed is returned by Do once the runner has stopped.
var ErrSessionClosed = errors.New("session closed")

// Ticker is the tick source of a runner.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the production TickerFunc backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Op is a unit of work run against the controller inside the runner loop.
type Op func(ctx context.Context, c *Controller) error

type opRequest struct {
	fn     Op
	result chan error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	// Interval between ticks, one second by default.
	Interval time.Duration
	// NewTicker defaults to NewTimeTicker.
	NewTicker TickerFunc
	// Emit receives every controller event. It runs on the runner goroutine,
	// so it may read the controller.
	Emit   func(Event)
	Logger zerolog.Logger
}

// Runner serializes ticks, visibility changes and student actions on one
// controller. Each is applied in a single step of one goroutine, so no two
// handlers interleave on session state.
type Runner struct {
	ctrl      *Controller
	interval  time.Duration
	newTicker TickerFunc
	emitFn    func(Event)
	ops       chan opRequest
	done      chan struct{}
	log       zerolog.Logger
}

// NewRunner wraps ctrl. Call Run to start the loop.
func NewRunner(ctrl *Controller, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewTimeTicker
	}
	if opts.Emit == nil {
		opts.Emit = func(Event) {}
	}
	return &Runner{
		ctrl:      ctrl,
		interval:  opts.Interval,
		newTicker: opts.NewTicker,
		emitFn:    opts.Emit,
		ops:       make(chan opRequest),
		done:      make(chan struct{}),
		log:       opts.Logger.With().Str("component", "session_runner").Logger(),
	}
}

// Run owns the tick source until the session is submitted or ctx is done.
// The ticker is stopped and a teardown event emitted on every exit path.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.newTicker(r.interval)
	defer func() {
		ticker.Stop()
		r.emitFn(Event{Kind: EventTeardown})
		close(r.done)
		r.log.Debug().Str("phase", r.ctrl.Phase().String()).Msg("Session runner stopped")
	}()

	r.emitFn(Event{Kind: EventState})
	for r.ctrl.Phase() != PhaseSubmitted {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
			r.ctrl.Tick(ctx)
			r.flush()
		case req := <-r.ops:
			err := req.fn(ctx, r.ctrl)
			r.flush()
			req.result <- err
		}
	}
	return nil
}

// Do runs fn inside the loop and waits for its result.
func (r *Runner) Do(ctx context.Context, fn Op) error {
	req := opRequest{fn: fn, result: make(chan error, 1)}
	select {
	case r.ops <- req:
	case <-r.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.result:
		return err
	case <-r.done:
		select {
		case err := <-req.result:
			return err
		default:
			return ErrSessionClosed
		}
	}
}

// Done is closed once Run has returned and cleanup has completed.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Controller exposes the controller for read access after Done is closed.
func (r *Runner) Controller() *Controller {
	return r.ctrl
}

func (r *Runner) flush() {
	for _, ev := range r.ctrl.DrainEvents() {
		r.emitFn(ev)
	}
}
