package tickhist

import (
	"fmt"
)

// LinearIterator reports checkpoints at fixed-width value boundaries,
// covering the recorded range in steps of valueUnitsPerBucket.
type LinearIterator struct {
	scan
	valueUnitsPerBucket int64
	stepHighest         int64
	stepLowest          int64
}

// NewLinearIterator creates a linear iterator over h stepping in value
// increments of valueUnitsPerBucket, which must be at least 1.
func NewLinearIterator(h *Histogram, valueUnitsPerBucket int64) (*LinearIterator, error) {
	if valueUnitsPerBucket < 1 {
		return nil, fmt.Errorf("value units per bucket must be at least 1, received: %d", valueUnitsPerBucket)
	}

	l := &LinearIterator{}
	l.scan = newScan(h, l)
	l.rewind(valueUnitsPerBucket)
	return l, nil
}

// Reset rewinds the iterator for a fresh pass over the same histogram,
// optionally with a different step width.
func (l *LinearIterator) Reset(valueUnitsPerBucket int64) error {
	if valueUnitsPerBucket < 1 {
		return fmt.Errorf("value units per bucket must be at least 1, received: %d", valueUnitsPerBucket)
	}

	l.resetCursor()
	l.rewind(valueUnitsPerBucket)
	return nil
}

func (l *LinearIterator) rewind(valueUnitsPerBucket int64) {
	l.valueUnitsPerBucket = valueUnitsPerBucket
	l.stepHighest = valueUnitsPerBucket - 1
	l.stepLowest = l.cur.hist.LowestEquivalentValue(l.stepHighest)
}

func (l *LinearIterator) reached(c *cursor) bool {
	return c.valueAtIdx >= l.stepLowest
}

func (l *LinearIterator) advance(c *cursor) {
	l.stepHighest += l.valueUnitsPerBucket
	l.stepLowest = c.hist.LowestEquivalentValue(l.stepHighest)
}

// more keeps stepping until the boundary passes the bucket holding the last
// recorded value, so trailing step widths inside one wide bucket still get
// reported.
func (l *LinearIterator) more(c *cursor) bool {
	return l.stepHighest+1 < c.nextValueAtIdx
}

func (l *LinearIterator) valueTo(*cursor) int64 {
	return l.stepHighest
}

func (l *LinearIterator) percentileTo(c *cursor) float64 {
	return c.percentileThroughBucket()
}

func (l *LinearIterator) percentileFrom(c *cursor) float64 {
	return c.percentileThroughPrevStep()
}

// LogarithmicIterator reports checkpoints at exponentially growing value
// boundaries: the first step spans valueUnitsInFirstBucket values and each
// following step spans logBase times the previous one.
type LogarithmicIterator struct {
	scan
	valueUnitsInFirstBucket int64
	logBase                 float64
	nextLevel               float64
	stepHighest             int64
	stepLowest              int64
}

// NewLogarithmicIterator creates a logarithmic iterator over h. The first
// step spans valueUnitsInFirstBucket values (at least 1) and subsequent steps
// grow by logBase (greater than 1.0).
func NewLogarithmicIterator(h *Histogram, valueUnitsInFirstBucket int64, logBase float64) (*LogarithmicIterator, error) {
	if valueUnitsInFirstBucket < 1 {
		return nil, fmt.Errorf("value units in first bucket must be at least 1, received: %d", valueUnitsInFirstBucket)
	}
	if logBase <= 1.0 {
		return nil, fmt.Errorf("log base must be greater than 1.0, received: %f", logBase)
	}

	l := &LogarithmicIterator{}
	l.scan = newScan(h, l)
	l.rewind(valueUnitsInFirstBucket, logBase)
	return l, nil
}

// Reset rewinds the iterator for a fresh pass over the same histogram,
// optionally with a different first bucket span or growth base.
func (l *LogarithmicIterator) Reset(valueUnitsInFirstBucket int64, logBase float64) error {
	if valueUnitsInFirstBucket < 1 {
		return fmt.Errorf("value units in first bucket must be at least 1, received: %d", valueUnitsInFirstBucket)
	}
	if logBase <= 1.0 {
		return fmt.Errorf("log base must be greater than 1.0, received: %f", logBase)
	}

	l.resetCursor()
	l.rewind(valueUnitsInFirstBucket, logBase)
	return nil
}

func (l *LogarithmicIterator) rewind(valueUnitsInFirstBucket int64, logBase float64) {
	l.valueUnitsInFirstBucket = valueUnitsInFirstBucket
	l.logBase = logBase
	l.nextLevel = float64(valueUnitsInFirstBucket)
	l.stepHighest = valueUnitsInFirstBucket - 1
	l.stepLowest = l.cur.hist.LowestEquivalentValue(l.stepHighest)
}

func (l *LogarithmicIterator) reached(c *cursor) bool {
	return c.valueAtIdx >= l.stepLowest
}

func (l *LogarithmicIterator) advance(c *cursor) {
	l.nextLevel *= l.logBase
	l.stepHighest = int64(l.nextLevel) - 1
	l.stepLowest = c.hist.LowestEquivalentValue(l.stepHighest)
}

// more keeps stepping until the next boundary would land past the bucket
// holding the last recorded value.
func (l *LogarithmicIterator) more(c *cursor) bool {
	return c.hist.LowestEquivalentValue(int64(l.nextLevel)) < c.nextValueAtIdx
}

func (l *LogarithmicIterator) valueTo(*cursor) int64 {
	return l.stepHighest
}

func (l *LogarithmicIterator) percentileTo(c *cursor) float64 {
	return c.percentileThroughBucket()
}

func (l *LogarithmicIterator) percentileFrom(c *cursor) float64 {
	return c.percentileThroughPrevStep()
}
