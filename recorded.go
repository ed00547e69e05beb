package tickhist

// RecordedValuesIterator reports one checkpoint per bucket holding at least
// one recorded value, in increasing value order.
type RecordedValuesIterator struct {
	scan
	visitedIdx int
}

// NewRecordedValuesIterator creates a recorded-values iterator over h.
func NewRecordedValuesIterator(h *Histogram) *RecordedValuesIterator {
	r := &RecordedValuesIterator{visitedIdx: -1}
	r.scan = newScan(h, r)
	return r
}

// Reset rewinds the iterator for a fresh pass over the same histogram.
func (r *RecordedValuesIterator) Reset() {
	r.resetCursor()
	r.visitedIdx = -1
}

func (r *RecordedValuesIterator) reached(c *cursor) bool {
	return c.countAtIdx != 0 && r.visitedIdx != c.idx
}

func (r *RecordedValuesIterator) advance(c *cursor) {
	r.visitedIdx = c.idx
}

func (r *RecordedValuesIterator) more(*cursor) bool {
	return false
}

func (r *RecordedValuesIterator) valueTo(c *cursor) int64 {
	return c.highestEquivalentValue()
}

func (r *RecordedValuesIterator) percentileTo(c *cursor) float64 {
	return c.percentileThroughBucket()
}

func (r *RecordedValuesIterator) percentileFrom(c *cursor) float64 {
	return c.percentileThroughPrevStep()
}

// AllValuesIterator reports one checkpoint per bucket, whether or not the
// bucket holds any recorded values.
type AllValuesIterator struct {
	scan
	visitedIdx int
}

// NewAllValuesIterator creates an all-values iterator over h.
func NewAllValuesIterator(h *Histogram) *AllValuesIterator {
	a := &AllValuesIterator{visitedIdx: -1}
	a.scan = newScan(h, a)
	return a
}

// Reset rewinds the iterator for a fresh pass over the same histogram.
func (a *AllValuesIterator) Reset() {
	a.resetCursor()
	a.visitedIdx = -1
}

func (a *AllValuesIterator) reached(c *cursor) bool {
	return a.visitedIdx != c.idx
}

func (a *AllValuesIterator) advance(c *cursor) {
	a.visitedIdx = c.idx
}

// more keeps the iteration going until every bucket index has been visited,
// not just until the recorded counts run out.
func (a *AllValuesIterator) more(c *cursor) bool {
	return c.idx < c.hist.countsLen-1
}

func (a *AllValuesIterator) valueTo(c *cursor) int64 {
	return c.highestEquivalentValue()
}

func (a *AllValuesIterator) percentileTo(c *cursor) float64 {
	return c.percentileThroughBucket()
}

func (a *AllValuesIterator) percentileFrom(c *cursor) float64 {
	return c.percentileThroughPrevStep()
}
