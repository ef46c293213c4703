package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce(t *testing.T) {
	// GIVEN
	expected := map[float64]float64{
		-10: 0,
		0:   0,
		50:  50,
		100: 100,
		150: 100,
	}

	for input, result := range expected {
		// WHEN
		coerced := Coerce(input, 0, 100)

		// THEN
		assert.Equal(t, result, coerced)
	}
}

func TestRatio(t *testing.T) {
	// GIVEN
	rangeMin := 40.0
	rangeMax := 60.0

	// WHEN
	atMin := Ratio(40, rangeMin, rangeMax)
	midway := Ratio(50, rangeMin, rangeMax)
	atMax := Ratio(60, rangeMin, rangeMax)

	// THEN
	assert.Equal(t, 0.0, atMin)
	assert.Equal(t, 0.5, midway)
	assert.Equal(t, 1.0, atMax)
}

func TestAvg(t *testing.T) {
	// GIVEN
	values := []float64{60, 70, 80}

	// WHEN
	avg := Avg(values)

	// THEN
	assert.Equal(t, 70.0, avg)
}

func TestWindowMinMaxCount(t *testing.T) {
	// GIVEN
	window := CreateRollingWindow(5)
	window.Append(60)
	window.Append(75)
	window.Append(68)

	// WHEN
	max := GetWindowMax(window)
	min := GetWindowMin(window)
	count := GetWindowCount(window)

	// THEN
	assert.Equal(t, 75.0, max)
	assert.Equal(t, 60.0, min)
	assert.Equal(t, 3, count)
}

func TestWindowEvictsOldestValues(t *testing.T) {
	// GIVEN
	window := CreateRollingWindow(3)
	FillWindow(window, 3, 90)

	// WHEN the window rolls over completely
	window.Append(50)
	window.Append(52)
	window.Append(54)

	// THEN the initial values are gone
	assert.Equal(t, 54.0, GetWindowMax(window))
	assert.Equal(t, 50.0, GetWindowMin(window))
}
