package curve

import (
	"errors"
	"fmt"

	"github.com/coredex-source/GPU-Util/internal/util"
)

const (
	// MaxPoints is the maximum number of control points a curve can hold
	MaxPoints = 5

	// FallbackDuty is only ever returned together with ErrCurveEmpty,
	// so a careless caller still commands a sane speed
	FallbackDuty = 50.0
)

var (
	ErrCurveEmpty = errors.New("curve has no points")
)

// Point is a single control point mapping a temperature to a fan duty
type Point struct {
	Temperature float64 `json:"temperature"`
	Duty        float64 `json:"duty"`
}

// FanCurve is an ordered set of control points defining a piecewise-linear
// mapping from temperature (°C) to fan duty (%). Points must be sorted by
// ascending temperature. A FanCurve is immutable during evaluation; callers
// replace the whole value to change it.
type FanCurve struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Default returns the built-in fallback curve
func Default() FanCurve {
	return FanCurve{
		Name: "Default",
		Points: []Point{
			{Temperature: 30, Duty: 30},
			{Temperature: 50, Duty: 40},
			{Temperature: 70, Duty: 60},
			{Temperature: 80, Duty: 80},
			{Temperature: 90, Duty: 100},
		},
	}
}

// Validate checks the curve invariants: at least one point, at most
// MaxPoints, strictly ascending temperatures and duty values within [0, 100]
func (c FanCurve) Validate() error {
	if len(c.Points) <= 0 {
		return ErrCurveEmpty
	}
	if len(c.Points) > MaxPoints {
		return fmt.Errorf("curve %s: too many points (%d), at most %d are supported", c.Name, len(c.Points), MaxPoints)
	}
	for i, point := range c.Points {
		if point.Duty < 0 || point.Duty > 100 {
			return fmt.Errorf("curve %s: duty %.1f of point %d is outside [0, 100]", c.Name, point.Duty, i+1)
		}
		if i > 0 && point.Temperature <= c.Points[i-1].Temperature {
			return fmt.Errorf("curve %s: point temperatures must be strictly ascending", c.Name)
		}
	}
	return nil
}

// Evaluate returns the fan duty (%) for the given temperature.
// Temperatures at or below the first point return the first point's duty,
// at or above the last point the last point's duty, and anything in between
// is interpolated linearly between the two bracketing points.
// Evaluate is a pure function and safe for concurrent use.
func (c FanCurve) Evaluate(tempC float64) (float64, error) {
	if len(c.Points) <= 0 {
		return FallbackDuty, ErrCurveEmpty
	}

	first := c.Points[0]
	last := c.Points[len(c.Points)-1]

	if tempC <= first.Temperature {
		return first.Duty, nil
	}
	if tempC >= last.Temperature {
		return last.Duty, nil
	}

	for i := 0; i < len(c.Points)-1; i++ {
		p0 := c.Points[i]
		p1 := c.Points[i+1]

		if tempC > p1.Temperature {
			continue
		}

		ratio := util.Ratio(tempC, p0.Temperature, p1.Temperature)
		return p0.Duty + ratio*(p1.Duty-p0.Duty), nil
	}

	// unreachable for sorted curves
	return last.Duty, nil
}
