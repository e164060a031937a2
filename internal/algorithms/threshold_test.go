package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scansplit/internal/raster"
)

func TestCutoffRange(t *testing.T) {
	assert.Equal(t, uint8(200), Cutoff(0))
	assert.Equal(t, uint8(235), Cutoff(1))
}

func TestCutoffMonotonic(t *testing.T) {
	prev := Cutoff(0)
	for s := 0.05; s <= 1.0; s += 0.05 {
		c := Cutoff(s)
		assert.GreaterOrEqual(t, c, prev, "cutoff must not decrease with sensitivity (s=%v)", s)
		prev = c
	}
}

func TestThresholdStrictlyBelowCutoff(t *testing.T) {
	gray := raster.NewGray(3, 1)
	cutoff := Cutoff(0)
	gray.Set(0, 0, cutoff-1)
	gray.Set(1, 0, cutoff)
	gray.Set(2, 0, 255)

	mask := Threshold(gray, 0)
	assert.True(t, mask.At(0, 0))
	assert.False(t, mask.At(1, 0))
	assert.False(t, mask.At(2, 0))
}
