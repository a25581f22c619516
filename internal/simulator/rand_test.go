package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// scripted replays a fixed sequence of variates, cycling when exhausted.
// Tests use it to force branch selection.
type scripted struct {
	vals []float64
	i    int
}

func (s *scripted) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// midpoint always returns 0.5, which makes uniform draws hit the middle of
// their range and triangular draws deterministic.
func midpoint() Source {
	return &scripted{vals: []float64{0.5}}
}

func TestUniform_Bounds(t *testing.T) {
	src := NewSource()
	for i := 0; i < 1000; i++ {
		v := uniform(src, 2.0, 5.0)
		assert.GreaterOrEqual(t, v, 2.0)
		assert.Less(t, v, 5.0)
	}
}

func TestUniform_Midpoint(t *testing.T) {
	v := uniform(midpoint(), 10, 20)
	assert.InDelta(t, 15.0, v, 0.0001)
}

func TestTriangular_Bounds(t *testing.T) {
	src := NewSource()
	for i := 0; i < 1000; i++ {
		v := triangular(src, 1.0, 4.0, 2.0)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 4.0)
	}
}

func TestTriangular_ExtremesMapToBounds(t *testing.T) {
	lo := triangular(&scripted{vals: []float64{0.0}}, 1.0, 4.0, 2.0)
	assert.InDelta(t, 1.0, lo, 0.0001)

	hi := triangular(&scripted{vals: []float64{0.999999}}, 1.0, 4.0, 2.0)
	assert.InDelta(t, 4.0, hi, 0.01)
}

func TestTriangular_SymmetricMidpointIsMode(t *testing.T) {
	// Mode centered in the range: u=0.5 lands exactly on the mode.
	v := triangular(midpoint(), -0.008, 0.008, 0.0)
	assert.InDelta(t, 0.0, v, 0.0001)
}

func TestTriangular_DegenerateRange(t *testing.T) {
	v := triangular(midpoint(), 3.0, 3.0, 3.0)
	assert.Equal(t, 3.0, v)
}

func TestChance(t *testing.T) {
	assert.True(t, chance(&scripted{vals: []float64{0.1}}, 0.3))
	assert.False(t, chance(&scripted{vals: []float64{0.5}}, 0.3))
	assert.False(t, chance(&scripted{vals: []float64{0.3}}, 0.3))
}
