package toast

import "math"

// Point is a control point of a timing curve.
type Point struct {
	X, Y float64
}

// CubicBezier is a timing curve from (0,0) to (1,1) with two control points.
type CubicBezier struct {
	P1, P2 Point
}

// Common timing curves, see easings.net.
var (
	Linear         = CubicBezier{P1: Point{0, 0}, P2: Point{1, 1}}
	EaseInCubic    = CubicBezier{P1: Point{0.32, 0}, P2: Point{0.67, 0}}
	EaseOutCubic   = CubicBezier{P1: Point{0.33, 1}, P2: Point{0.68, 1}}
	EaseInOutCubic = CubicBezier{P1: Point{0.65, 0}, P2: Point{0.35, 1}}
	EaseOut        = EaseOutCubic
)

// At returns the eased progress for a linear time fraction t in [0, 1].
func (c CubicBezier) At(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return bezier(c.solve(t), c.P1.Y, c.P2.Y)
}

// solve finds the curve parameter whose x equals x, Newton first and
// bisection when the slope is too flat.
func (c CubicBezier) solve(x float64) float64 {
	const epsilon = 1e-7

	u := x
	for i := 0; i < 8; i++ {
		dx := bezier(u, c.P1.X, c.P2.X) - x
		if math.Abs(dx) < epsilon {
			return u
		}
		slope := bezierSlope(u, c.P1.X, c.P2.X)
		if math.Abs(slope) < 1e-6 {
			break
		}
		u -= dx / slope
	}

	lo, hi := 0.0, 1.0
	u = x
	for i := 0; i < 64 && hi-lo > epsilon; i++ {
		if bezier(u, c.P1.X, c.P2.X) < x {
			lo = u
		} else {
			hi = u
		}
		u = (lo + hi) / 2
	}
	return u
}

func bezier(u, p1, p2 float64) float64 {
	v := 1 - u
	return 3*v*v*u*p1 + 3*v*u*u*p2 + u*u*u
}

func bezierSlope(u, p1, p2 float64) float64 {
	v := 1 - u
	return 3*v*v*p1 + 6*v*u*(p2-p1) + 3*u*u*(1-p2)
}
