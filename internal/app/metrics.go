package app

import (
	"math"
	"sync/atomic"
	"time"
)

// stage accumulates the durations of one kind of loop work.
type stage struct {
	count atomic.Uint64
	total atomic.Int64
	least atomic.Int64
	most  atomic.Int64
	last  atomic.Int64
}

func newStage() *stage {
	s := &stage{}
	s.least.Store(math.MaxInt64)
	return s
}

func (s *stage) record(d time.Duration) {
	ns := int64(d)
	s.count.Add(1)
	s.total.Add(ns)
	s.last.Store(ns)
	for old := s.least.Load(); ns < old && !s.least.CompareAndSwap(old, ns); old = s.least.Load() {
	}
	for old := s.most.Load(); ns > old && !s.most.CompareAndSwap(old, ns); old = s.most.Load() {
	}
}

func (s *stage) timing() Timing {
	t := Timing{
		Count: s.count.Load(),
		Max:   time.Duration(s.most.Load()),
		Last:  time.Duration(s.last.Load()),
	}
	if t.Count == 0 {
		return t
	}
	t.Avg = time.Duration(s.total.Load() / int64(t.Count))
	t.Min = time.Duration(s.least.Load())
	return t
}

// Metrics counts and times the work of the display loop. It is safe for
// concurrent use.
type Metrics struct {
	frames    *stage
	input     *stage
	highlight *stage

	skippedFrames   atomic.Uint64
	droppedInput    atomic.Uint64
	highlightErrors atomic.Uint64

	started time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		frames:    newStage(),
		input:     newStage(),
		highlight: newStage(),
		started:   time.Now(),
	}
}

// RecordFrame records one display tick. presented is false when the
// producer skipped the frame.
func (m *Metrics) RecordFrame(d time.Duration, presented bool) {
	m.frames.record(d)
	if !presented {
		m.skippedFrames.Add(1)
	}
}

// RecordInput records the handling of one input event.
func (m *Metrics) RecordInput(d time.Duration) {
	m.input.record(d)
}

// RecordInputDropped counts an event lost to a full queue.
func (m *Metrics) RecordInputDropped() {
	m.droppedInput.Add(1)
}

// RecordHighlight records one token supplier run.
func (m *Metrics) RecordHighlight(d time.Duration, err error) {
	m.highlight.record(d)
	if err != nil {
		m.highlightErrors.Add(1)
	}
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Uptime:          time.Since(m.started),
		Frames:          m.frames.timing(),
		Input:           m.input.timing(),
		Highlight:       m.highlight.timing(),
		SkippedFrames:   m.skippedFrames.Load(),
		DroppedInput:    m.droppedInput.Load(),
		HighlightErrors: m.highlightErrors.Load(),
	}
}

// Timing summarizes the durations recorded for one stage. Min and Avg are
// zero until something was recorded.
type Timing struct {
	Count uint64
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Uptime    time.Duration
	Frames    Timing
	Input     Timing
	Highlight Timing

	SkippedFrames   uint64
	DroppedInput    uint64
	HighlightErrors uint64
}

// FPS returns the average frame rate since the metrics were created.
func (s MetricsSnapshot) FPS() float64 {
	if s.Uptime <= 0 {
		return 0
	}
	return float64(s.Frames.Count) / s.Uptime.Seconds()
}
