package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStageTimerAccumulates(t *testing.T) {
	timer := NewStageTimer()
	timer.Observe("threshold", 5*time.Millisecond)
	timer.Observe("threshold", 3*time.Millisecond)
	timer.Observe("label", 2*time.Millisecond)

	assert.Equal(t, 10*time.Millisecond, timer.Total())

	fields := timer.Fields()
	assert.Equal(t, int64(8), fields["threshold_ms"])
	assert.Equal(t, int64(2), fields["label_ms"])
}

func TestStageTimerTrack(t *testing.T) {
	timer := NewStageTimer()
	stop := timer.Track("morphology")
	time.Sleep(2 * time.Millisecond)
	stop()

	assert.GreaterOrEqual(t, timer.Total(), 2*time.Millisecond)
	assert.Contains(t, timer.Fields(), "morphology_ms")
}
