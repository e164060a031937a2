// Stage timing collection for the detection pipeline
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// StageTimer accumulates per-stage durations for one pipeline run. It is
// safe for concurrent use, though the pipeline itself records stages
// sequentially.
type StageTimer struct {
	mu        sync.Mutex
	order     []string
	durations map[string]time.Duration
}

// NewStageTimer creates an empty timer.
func NewStageTimer() *StageTimer {
	return &StageTimer{
		durations: make(map[string]time.Duration),
	}
}

// Observe records the duration of a stage. Repeated observations for the
// same stage accumulate.
func (t *StageTimer) Observe(stage string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, seen := t.durations[stage]; !seen {
		t.order = append(t.order, stage)
	}
	t.durations[stage] += d
}

// Track returns a function that records the elapsed time since the call as
// an observation for the stage.
func (t *StageTimer) Track(stage string) func() {
	start := time.Now()
	return func() {
		t.Observe(stage, time.Since(start))
	}
}

// Total returns the sum of all recorded durations.
func (t *StageTimer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, d := range t.durations {
		total += d
	}
	return total
}

// Fields renders the recorded stages as logrus fields in millisecond
// resolution, in observation order.
func (t *StageTimer) Fields() logrus.Fields {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := logrus.Fields{}
	for _, stage := range t.order {
		fields[fmt.Sprintf("%s_ms", stage)] = t.durations[stage].Milliseconds()
	}
	return fields
}
