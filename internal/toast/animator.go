package toast

import "time"

// Animator drives one animation. step receives the linear time fraction,
// running from 0 to 1, or from 1 to 0 when reversed. done is called once,
// after the last step.
type Animator interface {
	Run(d time.Duration, reversed bool, step func(t float64), done func())
}

// FrameAnimator steps an animation at a fixed frame interval on a Clock.
type FrameAnimator struct {
	clock Clock
	frame time.Duration
}

// NewFrameAnimator creates an animator emitting fps frames per second.
func NewFrameAnimator(clock Clock, fps int) *FrameAnimator {
	if fps <= 0 {
		fps = 30
	}
	return &FrameAnimator{clock: clock, frame: time.Second / time.Duration(fps)}
}

// Run implements Animator.
func (a *FrameAnimator) Run(d time.Duration, reversed bool, step func(t float64), done func()) {
	start := a.clock.Now()
	at := func(t float64) float64 {
		if reversed {
			return 1 - t
		}
		return t
	}

	if d <= 0 {
		step(at(1))
		done()
		return
	}

	var tick func()
	tick = func() {
		elapsed := a.clock.Now().Sub(start)
		if elapsed >= d {
			step(at(1))
			done()
			return
		}
		step(at(float64(elapsed) / float64(d)))
		a.clock.AfterFunc(a.frame, tick)
	}
	step(at(0))
	a.clock.AfterFunc(a.frame, tick)
}
