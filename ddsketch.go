package tickhist

import (
	"fmt"

	"github.com/DataDog/sketches-go/ddsketch"
)

// ToDDSketch re-expresses the recorded distribution as a DataDog DDSketch so
// sketch-based metric pipelines can ingest it. Every non-empty bucket is
// added at its median equivalent value with its full count.
func ToDDSketch(h *Histogram) (*ddsketch.DDSketch, error) {

	/*
		> If the values are time in seconds, maxNumBins = 2048 covers a time range from 80 microseconds to 1 year.
		https://github.com/DataDog/sketches-go
	*/
	s, err := ddsketch.LogCollapsingLowestDenseDDSketch(0.01, 2048)
	if err != nil {
		return nil, err
	}

	it := NewRecordedValuesIterator(h)
	for it.HasNext() {
		ck, err := it.Next()
		if err != nil {
			return nil, err
		}
		if err := s.AddWithCount(float64(h.MedianEquivalentValue(ck.Value)), float64(ck.Count)); err != nil {
			return nil, fmt.Errorf("failed to add bucket value %d: %v", ck.Value, err)
		}
	}

	return s, nil
}
