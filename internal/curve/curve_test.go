package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// helper function to create a three point curve
func createThreePointCurve() FanCurve {
	return FanCurve{
		Name: "threePoints",
		Points: []Point{
			{Temperature: 40, Duty: 20},
			{Temperature: 60, Duty: 50},
			{Temperature: 80, Duty: 100},
		},
	}
}

func TestEvaluateInterpolatesBetweenPoints(t *testing.T) {
	// GIVEN
	curve := createThreePointCurve()

	// WHEN
	duty, err := curve.Evaluate(50)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 35.0, duty)
}

func TestEvaluateClampsBelowFirstPoint(t *testing.T) {
	// GIVEN
	curve := createThreePointCurve()

	// WHEN
	atFirst, err1 := curve.Evaluate(40)
	belowFirst, err2 := curve.Evaluate(10)

	// THEN
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, 20.0, atFirst)
	assert.Equal(t, 20.0, belowFirst)
}

func TestEvaluateClampsAboveLastPoint(t *testing.T) {
	// GIVEN
	curve := createThreePointCurve()

	// WHEN
	atLast, err1 := curve.Evaluate(80)
	aboveLast, err2 := curve.Evaluate(110)

	// THEN
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, 100.0, atLast)
	assert.Equal(t, 100.0, aboveLast)
}

func TestEvaluateInteriorValueIsBetweenBrackets(t *testing.T) {
	// GIVEN
	curve := createThreePointCurve()

	// WHEN / THEN
	for tempC := 41.0; tempC < 60.0; tempC++ {
		duty, err := curve.Evaluate(tempC)
		assert.NoError(t, err)
		assert.Greater(t, duty, 20.0)
		assert.Less(t, duty, 50.0)
	}
	for tempC := 61.0; tempC < 80.0; tempC++ {
		duty, err := curve.Evaluate(tempC)
		assert.NoError(t, err)
		assert.Greater(t, duty, 50.0)
		assert.Less(t, duty, 100.0)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	// GIVEN
	curve := createThreePointCurve()

	// WHEN
	first, _ := curve.Evaluate(55.5)
	second, _ := curve.Evaluate(55.5)
	third, _ := curve.Evaluate(55.5)

	// THEN
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestEvaluateSinglePointCurve(t *testing.T) {
	// GIVEN
	curve := FanCurve{
		Name:   "single",
		Points: []Point{{Temperature: 60, Duty: 42}},
	}

	// WHEN
	below, err1 := curve.Evaluate(30)
	above, err2 := curve.Evaluate(90)

	// THEN
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.Equal(t, 42.0, below)
	assert.Equal(t, 42.0, above)
}

func TestEvaluateEmptyCurve(t *testing.T) {
	// GIVEN
	curve := FanCurve{Name: "empty"}

	// WHEN
	duty, err := curve.Evaluate(50)

	// THEN
	assert.ErrorIs(t, err, ErrCurveEmpty)
	assert.Equal(t, FallbackDuty, duty)
}

func TestValidateAcceptsDefaultCurve(t *testing.T) {
	// GIVEN
	curve := Default()

	// WHEN
	err := curve.Validate()

	// THEN
	assert.NoError(t, err)
}

func TestValidateRejectsEmptyCurve(t *testing.T) {
	// GIVEN
	curve := FanCurve{Name: "empty"}

	// WHEN
	err := curve.Validate()

	// THEN
	assert.ErrorIs(t, err, ErrCurveEmpty)
}

func TestValidateRejectsTooManyPoints(t *testing.T) {
	// GIVEN
	curve := FanCurve{
		Name: "crowded",
		Points: []Point{
			{10, 10}, {20, 20}, {30, 30}, {40, 40}, {50, 50}, {60, 60},
		},
	}

	// WHEN
	err := curve.Validate()

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsUnsortedPoints(t *testing.T) {
	// GIVEN
	curve := FanCurve{
		Name: "unsorted",
		Points: []Point{
			{Temperature: 60, Duty: 50},
			{Temperature: 40, Duty: 20},
		},
	}

	// WHEN
	err := curve.Validate()

	// THEN
	assert.Error(t, err)
}

func TestValidateRejectsOutOfRangeDuty(t *testing.T) {
	// GIVEN
	curve := FanCurve{
		Name: "overdrive",
		Points: []Point{
			{Temperature: 40, Duty: 20},
			{Temperature: 60, Duty: 120},
		},
	}

	// WHEN
	err := curve.Validate()

	// THEN
	assert.Error(t, err)
}
