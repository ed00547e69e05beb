//go:generate mockgen -source=$GOFILE -destination=./mock/$GOFILE
package tickhist

import (
	"errors"
)

// ErrIteratorExhausted is returned by Next once an iterator has produced its
// final checkpoint.
var ErrIteratorExhausted = errors.New("iterator is exhausted")

// Checkpoint is an immutable snapshot of the traversal state at one reporting
// boundary of an iteration over a histogram.
type Checkpoint struct {
	// Value is the highest value reported at this checkpoint.
	Value int64

	// Percentile is the percentile boundary this checkpoint was reported at.
	Percentile float64

	// PercentileFrom is the percentile boundary the previous checkpoint was
	// reported at, 0.0 for the first checkpoint.
	PercentileFrom float64

	// Count is the number of recordings in the bucket the checkpoint lands on.
	Count int64

	// CountAddedThisStep is the number of recordings accumulated since the
	// previous checkpoint.
	CountAddedThisStep int64

	// CumulativeCount is the number of recordings at or below Value.
	CumulativeCount int64

	// TotalCount is the number of recordings in the whole histogram.
	TotalCount int64
}

// stepper defines the strategy surface that decides where an iteration
// reports checkpoints.
type stepper interface {
	// reached reports whether the bucket the cursor is parked on satisfies
	// the strategy's next reporting boundary.
	reached(c *cursor) bool

	// advance moves the strategy to its next reporting boundary. It is
	// called once per emitted checkpoint.
	advance(c *cursor)

	// more reports whether boundaries remain after the cursor has consumed
	// every recorded count.
	more(c *cursor) bool

	// valueTo returns the value reported at the current boundary.
	valueTo(c *cursor) int64

	// percentileTo returns the percentile reported at the current boundary.
	percentileTo(c *cursor) float64

	// percentileFrom returns the percentile the current step started from.
	percentileFrom(c *cursor) float64
}

// cursor walks a histogram's buckets in increasing value order. The total
// count is snapshotted when the cursor is created; the histogram must not be
// modified while a traversal is in progress.
type cursor struct {
	hist           *Histogram
	totalCount     int64
	idx            int
	valueAtIdx     int64
	nextValueAtIdx int64
	countAtIdx     int64
	countToIdx     int64
	prevCountToIdx int64
	fresh          bool
}

func newCursor(h *Histogram) cursor {
	return cursor{
		hist:           h,
		totalCount:     h.TotalCount(),
		nextValueAtIdx: h.valueFromIndex(1),
		fresh:          true,
	}
}

func (c *cursor) hasMoreCounts() bool {
	return c.countToIdx < c.totalCount
}

// seek steps bucket by bucket until reached reports true, accumulating each
// bucket's count exactly once no matter how many times the cursor parks on
// it. It returns false if the buckets run out first, which can only happen
// when the histogram was modified mid-traversal.
func (c *cursor) seek(reached func() bool) bool {
	for c.idx < c.hist.countsLen {
		c.countAtIdx = c.hist.counts[c.idx]
		if c.fresh {
			c.countToIdx += c.countAtIdx
			c.fresh = false
		}
		if reached() {
			return true
		}
		c.stepBucket()
	}
	return false
}

func (c *cursor) stepBucket() {
	c.idx++
	c.valueAtIdx = c.hist.valueFromIndex(c.idx)
	c.nextValueAtIdx = c.hist.valueFromIndex(c.idx + 1)
	c.fresh = true
}

// highestEquivalentValue returns the top of the bucket the cursor is parked on.
func (c *cursor) highestEquivalentValue() int64 {
	return c.hist.HighestEquivalentValue(c.valueAtIdx)
}

// percentileThroughBucket returns the percentile actually accumulated through
// the bucket the cursor is parked on.
func (c *cursor) percentileThroughBucket() float64 {
	if c.totalCount == 0 {
		return 0.0
	}
	return 100.0 * float64(c.countToIdx) / float64(c.totalCount)
}

// percentileThroughPrevStep returns the percentile accumulated when the
// previous checkpoint was emitted.
func (c *cursor) percentileThroughPrevStep() float64 {
	if c.totalCount == 0 {
		return 0.0
	}
	return 100.0 * float64(c.prevCountToIdx) / float64(c.totalCount)
}

// scan drives a stepper over a cursor through the pull protocol shared by
// every iterator kind.
type scan struct {
	cur   cursor
	strat stepper
}

func newScan(h *Histogram, strat stepper) scan {
	return scan{cur: newCursor(h), strat: strat}
}

// HasNext reports whether another checkpoint can be produced. It may be
// called any number of times between calls to Next.
func (s *scan) HasNext() bool {
	return s.cur.hasMoreCounts() || s.strat.more(&s.cur)
}

// Next produces the next checkpoint.
// It returns ErrIteratorExhausted once the final checkpoint has been produced.
func (s *scan) Next() (Checkpoint, error) {
	if !s.HasNext() {
		return Checkpoint{}, ErrIteratorExhausted
	}
	if !s.cur.seek(func() bool { return s.strat.reached(&s.cur) }) {
		return Checkpoint{}, errors.New("histogram counts changed during iteration")
	}

	ck := Checkpoint{
		Value:              s.strat.valueTo(&s.cur),
		Percentile:         s.strat.percentileTo(&s.cur),
		PercentileFrom:     s.strat.percentileFrom(&s.cur),
		Count:              s.cur.countAtIdx,
		CountAddedThisStep: s.cur.countToIdx - s.cur.prevCountToIdx,
		CumulativeCount:    s.cur.countToIdx,
		TotalCount:         s.cur.totalCount,
	}
	s.cur.prevCountToIdx = s.cur.countToIdx
	s.strat.advance(&s.cur)

	return ck, nil
}

func (s *scan) resetCursor() {
	s.cur = newCursor(s.cur.hist)
}
