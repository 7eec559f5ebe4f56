// Package toast shows short-lived text overlays. Each toast runs its own
// state machine: it fades in, holds, fades out and removes itself.
package toast

import (
	"time"

	"go.uber.org/zap"
)

// Canvas is the surface toasts are added to.
type Canvas[V any] interface {
	Add(view V)
	Remove(view V)
}

// Hook runs against the canvas and the toast view.
type Hook[V any] func(canvas Canvas[V], view V)

// Animation applies eased progress p in [0, 1] to the toast view.
type Animation[V any] func(canvas Canvas[V], view V, p float64)

// AnimParams configures the toast lifecycle.
type AnimParams[V any] struct {
	AnimDuration    time.Duration
	DisplayDuration time.Duration
	Curve           CubicBezier
	SetUp           Hook[V]
	Animate         Animation[V]
	TearDown        Hook[V]
}

// DefaultParams adds the view on set up and removes it on tear down, with
// a 350ms ease-out animation and one second on screen.
func DefaultParams[V any]() AnimParams[V] {
	return AnimParams[V]{
		AnimDuration:    350 * time.Millisecond,
		DisplayDuration: time.Second,
		Curve:           EaseOut,
		SetUp:           func(canvas Canvas[V], view V) { canvas.Add(view) },
		TearDown:        func(canvas Canvas[V], view V) { canvas.Remove(view) },
	}
}

// State is the phase of one toast.
type State int

const (
	Idle State = iota
	Show
	Hold
	Hide
	Done
)

func (s State) String() string {
	switch s {
	case Show:
		return "show"
	case Hold:
		return "hold"
	case Hide:
		return "hide"
	case Done:
		return "done"
	default:
		return "idle"
	}
}

// Controller creates toasts and keeps the live ones.
type Controller[V any] struct {
	canvas   Canvas[V]
	factory  func(text string) V
	params   AnimParams[V]
	animator Animator
	clock    Clock
	logger   *zap.Logger

	live map[*fsm[V]]struct{}
}

// NewController creates a controller. factory renders the text into a new
// view. A nil clock uses SystemClock; a nil animator steps frames on clock.
func NewController[V any](canvas Canvas[V], factory func(text string) V, params AnimParams[V], animator Animator, clock Clock, logger *zap.Logger) *Controller[V] {
	if clock == nil {
		clock = SystemClock{}
	}
	if animator == nil {
		animator = NewFrameAnimator(clock, 30)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller[V]{
		canvas:   canvas,
		factory:  factory,
		params:   params,
		animator: animator,
		clock:    clock,
		logger:   logger,
		live:     make(map[*fsm[V]]struct{}),
	}
}

// SetCanvas replaces the canvas for toasts shown from now on.
func (c *Controller[V]) SetCanvas(canvas Canvas[V]) {
	c.canvas = canvas
}

// Params returns the lifecycle configuration.
func (c *Controller[V]) Params() AnimParams[V] { return c.params }

// SetParams replaces the lifecycle configuration for new toasts.
func (c *Controller[V]) SetParams(p AnimParams[V]) { c.params = p }

// Show starts a toast with text. It panics when no canvas is set.
func (c *Controller[V]) Show(text string) {
	if c.canvas == nil {
		panic("toast: Show called without a canvas")
	}
	f := &fsm[V]{
		params:   c.params,
		canvas:   c.canvas,
		view:     c.factory(text),
		animator: c.animator,
		clock:    c.clock,
	}
	f.done = func() {
		delete(c.live, f)
		c.logger.Debug("Toast finished", zap.String("text", text), zap.Int("live", len(c.live)))
	}
	c.live[f] = struct{}{}
	c.logger.Debug("Toast shown", zap.String("text", text), zap.Int("live", len(c.live)))
	f.transition()
}

// Live returns the number of toasts on screen.
func (c *Controller[V]) Live() int { return len(c.live) }

// States returns the state of every live toast, for diagnostics.
func (c *Controller[V]) States() []State {
	states := make([]State, 0, len(c.live))
	for f := range c.live {
		states = append(states, f.state)
	}
	return states
}

type fsm[V any] struct {
	state    State
	params   AnimParams[V]
	canvas   Canvas[V]
	view     V
	animator Animator
	clock    Clock
	started  time.Time
	done     func()
}

func (f *fsm[V]) transition() {
	switch f.state {
	case Idle:
		f.state = Show
		if f.params.SetUp != nil {
			f.params.SetUp(f.canvas, f.view)
		}
		f.started = f.clock.Now()
		f.animator.Run(f.params.AnimDuration, false, f.step, f.transition)
	case Show:
		f.state = Hold
		delay := f.started.Add(f.params.AnimDuration + f.params.DisplayDuration).Sub(f.clock.Now())
		if delay < 0 {
			delay = 0
		}
		f.clock.AfterFunc(delay, f.transition)
	case Hold:
		f.state = Hide
		f.animator.Run(f.params.AnimDuration, true, f.step, f.transition)
	case Hide:
		f.state = Done
		if f.params.TearDown != nil {
			f.params.TearDown(f.canvas, f.view)
		}
		f.done()
	}
}

func (f *fsm[V]) step(t float64) {
	if f.params.Animate != nil {
		f.params.Animate(f.canvas, f.view, f.params.Curve.At(t))
	}
}
