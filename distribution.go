package tickhist

import (
	"fmt"
	"io"
)

// WriteDistribution renders the histogram's percentile distribution to w as
// the classic four-column table: value, percentile (as a fraction of 1),
// cumulative count, and 1/(1-percentile), one row per percentile checkpoint,
// followed by a footer with the mean, standard deviation, maximum and total
// count. Recorded values are divided by scale before printing, so a histogram
// of nanoseconds prints milliseconds with scale 1e6.
func (h *Histogram) WriteDistribution(w io.Writer, ticksPerHalfDistance int32, scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("value unit scaling ratio must be positive, received: %f", scale)
	}
	it, err := NewPercentileIterator(h, ticksPerHalfDistance)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%12s %14s %10s %14s\n\n", "Value", "Percentile", "TotalCount", "1/(1-Percentile)"); err != nil {
		return err
	}

	for it.HasNext() {
		ck, err := it.Next()
		if err != nil {
			return err
		}
		if ck.Percentile != 100.0 {
			_, err = fmt.Fprintf(w, "%12.*f %2.12f %10d %14.2f\n",
				h.significantFigures, float64(ck.Value)/scale,
				ck.Percentile/100.0, ck.CumulativeCount,
				1.0/(1.0-ck.Percentile/100.0))
		} else {
			// The last row would divide by zero in the rightmost column.
			_, err = fmt.Fprintf(w, "%12.*f %2.12f %10d\n",
				h.significantFigures, float64(ck.Value)/scale,
				ck.Percentile/100.0, ck.CumulativeCount)
		}
		if err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "#[Mean    = %12.*f, StdDeviation   = %12.*f]\n",
		h.significantFigures, h.Mean()/scale,
		h.significantFigures, h.StdDev()/scale); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#[Max     = %12.*f, Total count    = %12d]\n",
		h.significantFigures, float64(h.Max())/scale, h.totalCount); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "#[Buckets = %12d, SubBuckets     = %12d]\n",
		h.bucketCount, h.subBucketCount)
	return err
}
