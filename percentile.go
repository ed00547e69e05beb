package tickhist

import (
	"fmt"
	"math"
)

// PercentileIterator reports checkpoints at percentile boundaries that close
// in on the 100th percentile. Iteration starts at 0% and repeatedly halves
// the remaining distance to 100%, taking a fixed number of equal-sized ticks
// within each halving, so a distribution renders as a short sequence such as
// 50%, 75%, 87.5%, ... regardless of how many values were recorded. The
// sequence always ends with a single checkpoint at exactly the 100th
// percentile when the histogram holds any recordings at all.
type PercentileIterator struct {
	scan
	ticksPerHalfDistance int32
	target               float64
	prevTarget           float64
	terminalLatched      bool
	terminalEmitted      bool
}

// NewPercentileIterator creates a percentile iterator over h.
//
// Parameters:
//   - h: The histogram to iterate over. Its recorded data must not change
//     while the iteration is in progress.
//   - ticksPerHalfDistance: The number of reporting ticks within each halving
//     of the remaining distance to 100%, at least 1.
//
// Returns:
//   - A pointer to a new PercentileIterator and an error, if any.
func NewPercentileIterator(h *Histogram, ticksPerHalfDistance int32) (*PercentileIterator, error) {
	if ticksPerHalfDistance < 1 {
		return nil, fmt.Errorf("ticks per half distance must be at least 1, received: %d", ticksPerHalfDistance)
	}

	p := &PercentileIterator{ticksPerHalfDistance: ticksPerHalfDistance}
	p.scan = newScan(h, p)
	return p, nil
}

// Reset rewinds the iterator for a fresh pass over the same histogram,
// optionally with a different tick density. All iteration state is cleared;
// recordings made since the last pass are picked up.
func (p *PercentileIterator) Reset(ticksPerHalfDistance int32) error {
	if ticksPerHalfDistance < 1 {
		return fmt.Errorf("ticks per half distance must be at least 1, received: %d", ticksPerHalfDistance)
	}

	p.resetCursor()
	p.ticksPerHalfDistance = ticksPerHalfDistance
	p.target = 0.0
	p.prevTarget = 0.0
	p.terminalLatched = false
	p.terminalEmitted = false
	return nil
}

// reached reports whether the accumulated percentile has caught up with the
// scheduled target. Buckets with no recordings never satisfy a target: a
// checkpoint must land on an actually-recorded value.
func (p *PercentileIterator) reached(c *cursor) bool {
	if c.countAtIdx == 0 {
		return false
	}
	return c.percentileThroughBucket() >= p.target
}

// advance schedules the next percentile target. The 0-100 range is divided
// into ticks whose count doubles each time the remaining distance to 100%
// halves, keeping exactly ticksPerHalfDistance equal steps within each
// halving. The tick count must be computed exactly this way (log2 as
// ln(x)/ln(2), truncation toward zero, power of two of the truncated
// exponent) so that boundaries are bit-comparable with other implementations
// reading the same data.
func (p *PercentileIterator) advance(*cursor) {
	p.prevTarget = p.target
	if p.terminalLatched {
		p.terminalEmitted = true
		return
	}

	ticks := int64(p.ticksPerHalfDistance) *
		int64(math.Pow(2, float64(int64(math.Log(100.0/(100.0-p.target))/math.Ln2)+1)))
	p.target += 100.0 / float64(ticks)
}

// more schedules the one additional last step to 100% once every recorded
// count has been consumed. A histogram with no recordings gets no checkpoints
// at all, terminal included.
func (p *PercentileIterator) more(c *cursor) bool {
	if p.terminalEmitted || c.totalCount == 0 {
		return false
	}
	p.target = 100.0
	p.terminalLatched = true
	return true
}

func (p *PercentileIterator) valueTo(c *cursor) int64 {
	return c.highestEquivalentValue()
}

func (p *PercentileIterator) percentileTo(*cursor) float64 {
	return p.target
}

func (p *PercentileIterator) percentileFrom(*cursor) float64 {
	return p.prevTarget
}
