// Package tickhist provides a high-dynamic-range value histogram together with
// traversal strategies over its recorded distribution, most notably a
// percentile-checkpoint scan that renders latency distributions as a short,
// human-readable sequence of percentile boundaries.
package tickhist

import (
	"fmt"
	"math"
	"math/bits"
)

// Histogram records integer values with a configurable dynamic range and
// decimal precision. Values are stored in power-of-two bucket tiers, each tier
// split into enough linear sub-buckets to preserve the requested number of
// significant figures. Recording and querying are not safe for concurrent use;
// wrap a Histogram in a Recorder when multiple goroutines record into it.
type Histogram struct {
	lowestDiscernibleValue  int64
	highestTrackableValue   int64
	significantFigures      int
	unitMagnitude           int
	subBucketCountMagnitude int
	subBucketHalfCountMag   int
	subBucketCount          int
	subBucketHalfCount      int
	subBucketMask           int64
	bucketCount             int
	countsLen               int
	totalCount              int64
	counts                  []int64
}

// New creates a Histogram able to track values between lowestDiscernibleValue
// and highestTrackableValue while preserving sigFigs significant decimal
// digits of precision.
//
// Parameters:
// - lowestDiscernibleValue: The smallest value distinguishable from 0, at least 1.
// - highestTrackableValue: The largest recordable value, at least twice the lowest.
// - sigFigs: Number of significant decimal digits preserved, between 1 and 5.
//
// Returns:
// - A pointer to a new Histogram and an error, if any.
//
// Usage:
// Unit scaling belongs to the caller; a histogram tracking nanosecond
// latencies from 1us up would pass 1000 as the lowest discernible value.
func New(lowestDiscernibleValue, highestTrackableValue int64, sigFigs int) (*Histogram, error) {
	if lowestDiscernibleValue < 1 {
		return nil, fmt.Errorf("lowest discernible value must be at least 1, received: %d", lowestDiscernibleValue)
	}
	if sigFigs < 1 || sigFigs > 5 {
		return nil, fmt.Errorf("significant figures must be between 1 and 5, received: %d", sigFigs)
	}
	if highestTrackableValue < 2*lowestDiscernibleValue {
		return nil, fmt.Errorf("highest trackable value must be at least twice the lowest discernible value, received: %d", highestTrackableValue)
	}

	// The smallest power of two able to hold 2*10^sigFigs distinct values
	// gives every tier enough sub-buckets to keep the precision promise.
	largestValueWithSingleUnitResolution := 2 * int64(math.Pow(10, float64(sigFigs)))
	subBucketCountMagnitude := bits.Len64(uint64(largestValueWithSingleUnitResolution - 1))

	h := &Histogram{
		lowestDiscernibleValue:  lowestDiscernibleValue,
		highestTrackableValue:   highestTrackableValue,
		significantFigures:      sigFigs,
		unitMagnitude:           bits.Len64(uint64(lowestDiscernibleValue)) - 1,
		subBucketCountMagnitude: subBucketCountMagnitude,
		subBucketHalfCountMag:   subBucketCountMagnitude - 1,
		subBucketCount:          1 << subBucketCountMagnitude,
	}
	h.subBucketHalfCount = h.subBucketCount / 2
	h.subBucketMask = int64(h.subBucketCount-1) << h.unitMagnitude
	h.bucketCount = h.bucketsNeededToCover(highestTrackableValue)
	// Tiers above the first overlap their predecessor's lower half, so each
	// contributes only half its sub-buckets to the counts array.
	h.countsLen = (h.bucketCount + 1) * h.subBucketHalfCount
	h.counts = make([]int64, h.countsLen)

	return h, nil
}

func (h *Histogram) bucketsNeededToCover(value int64) int {
	smallestUntrackable := int64(h.subBucketCount) << h.unitMagnitude
	bucketsNeeded := 1
	for smallestUntrackable <= value {
		if smallestUntrackable > math.MaxInt64/2 {
			return bucketsNeeded + 1
		}
		smallestUntrackable <<= 1
		bucketsNeeded++
	}
	return bucketsNeeded
}

// RecordValue records a single occurrence of value.
// It returns an error if the value is outside the trackable range.
func (h *Histogram) RecordValue(value int64) error {
	return h.RecordValues(value, 1)
}

// RecordValues records count occurrences of value.
// It returns an error if the value is outside the trackable range or the
// count is negative.
func (h *Histogram) RecordValues(value, count int64) error {
	if count < 0 {
		return fmt.Errorf("count must not be negative, received: %d", count)
	}
	if value < 0 {
		return fmt.Errorf("value %d is outside the trackable range", value)
	}
	idx := h.countsIndexFor(value)
	if idx < 0 || idx >= h.countsLen {
		return fmt.Errorf("value %d is outside the trackable range", value)
	}
	h.counts[idx] += count
	h.totalCount += count
	return nil
}

// TotalCount returns the total number of recorded values.
func (h *Histogram) TotalCount() int64 {
	return h.totalCount
}

// LowestTrackableValue returns the lower bound of the trackable range.
func (h *Histogram) LowestTrackableValue() int64 {
	return h.lowestDiscernibleValue
}

// HighestTrackableValue returns the upper bound of the trackable range.
func (h *Histogram) HighestTrackableValue() int64 {
	return h.highestTrackableValue
}

// SignificantFigures returns the decimal precision the histogram maintains.
func (h *Histogram) SignificantFigures() int {
	return h.significantFigures
}

// Min returns the lowest recorded value, or 0 when nothing was recorded.
func (h *Histogram) Min() int64 {
	for i := 0; i < h.countsLen; i++ {
		if h.counts[i] != 0 {
			return h.LowestEquivalentValue(h.valueFromIndex(i))
		}
	}
	return 0
}

// Max returns the highest recorded value, or 0 when nothing was recorded.
func (h *Histogram) Max() int64 {
	var max int64
	for i := 0; i < h.countsLen; i++ {
		if h.counts[i] != 0 {
			max = h.HighestEquivalentValue(h.valueFromIndex(i))
		}
	}
	return max
}

// Mean returns the arithmetic mean of all recorded values, using the median
// of each bucket's equivalent value range as the bucket's representative.
func (h *Histogram) Mean() float64 {
	if h.totalCount == 0 {
		return 0
	}
	var total float64
	for i := 0; i < h.countsLen; i++ {
		if c := h.counts[i]; c != 0 {
			total += float64(c) * float64(h.MedianEquivalentValue(h.valueFromIndex(i)))
		}
	}
	return total / float64(h.totalCount)
}

// StdDev returns the standard deviation of all recorded values.
func (h *Histogram) StdDev() float64 {
	if h.totalCount == 0 {
		return 0
	}
	mean := h.Mean()
	var geometricDevTotal float64
	for i := 0; i < h.countsLen; i++ {
		if c := h.counts[i]; c != 0 {
			dev := float64(h.MedianEquivalentValue(h.valueFromIndex(i))) - mean
			geometricDevTotal += dev * dev * float64(c)
		}
	}
	return math.Sqrt(geometricDevTotal / float64(h.totalCount))
}

// ValueAtPercentile returns the largest value that (percentile)% of the
// recorded values are at or below. The percentile is expressed in the
// [0, 100] range; values above 100 are treated as 100.
func (h *Histogram) ValueAtPercentile(percentile float64) int64 {
	if h.totalCount == 0 {
		return 0
	}
	if percentile > 100 {
		percentile = 100
	}
	countAtPercentile := int64(percentile/100*float64(h.totalCount) + 0.5)
	if countAtPercentile < 1 {
		countAtPercentile = 1
	}
	var total int64
	for i := 0; i < h.countsLen; i++ {
		total += h.counts[i]
		if total >= countAtPercentile {
			return h.HighestEquivalentValue(h.valueFromIndex(i))
		}
	}
	return 0
}

// ValueAtQuantile returns the largest value that the given fraction of the
// recorded values are at or below.
// It returns an error if the quantile is outside [0.0, 1.0].
func (h *Histogram) ValueAtQuantile(quantile float64) (int64, error) {
	if quantile < 0.0 || quantile > 1.0 {
		return 0, fmt.Errorf("quantile value must be between 0.0 and 1.0, received: %f", quantile)
	}
	return h.ValueAtPercentile(quantile * 100.0), nil
}

// Merge adds all recorded values from other into h and returns the number of
// values that were dropped because they fall outside h's trackable range.
func (h *Histogram) Merge(other *Histogram) (dropped int64) {
	for i := 0; i < other.countsLen; i++ {
		if c := other.counts[i]; c != 0 {
			if h.RecordValues(other.valueFromIndex(i), c) != nil {
				dropped += c
			}
		}
	}
	return dropped
}

// Reset clears all recorded counts while keeping the configured range and
// precision, so the histogram can be reused without reallocation.
func (h *Histogram) Reset() {
	clear(h.counts)
	h.totalCount = 0
}

// ValuesAreEquivalent reports whether a and b land in the same bucket and are
// therefore indistinguishable at the histogram's resolution.
func (h *Histogram) ValuesAreEquivalent(a, b int64) bool {
	return h.LowestEquivalentValue(a) == h.LowestEquivalentValue(b)
}

// SizeOfEquivalentValueRange returns the number of distinct values grouped
// into the same bucket as the given value.
func (h *Histogram) SizeOfEquivalentValueRange(value int64) int64 {
	bucketIdx := h.bucketIndexFor(value)
	subBucketIdx := h.subBucketIndexFor(value, bucketIdx)
	adjustedBucketIdx := bucketIdx
	if subBucketIdx >= h.subBucketCount {
		adjustedBucketIdx++
	}
	return int64(1) << (h.unitMagnitude + adjustedBucketIdx)
}

// LowestEquivalentValue returns the smallest value indistinguishable from the
// given value at the histogram's resolution.
func (h *Histogram) LowestEquivalentValue(value int64) int64 {
	bucketIdx := h.bucketIndexFor(value)
	subBucketIdx := h.subBucketIndexFor(value, bucketIdx)
	return int64(subBucketIdx) << (bucketIdx + h.unitMagnitude)
}

// HighestEquivalentValue returns the largest value indistinguishable from the
// given value at the histogram's resolution.
func (h *Histogram) HighestEquivalentValue(value int64) int64 {
	return h.nextNonEquivalentValue(value) - 1
}

// MedianEquivalentValue returns the value lying in the middle of the bucket
// the given value lands in.
func (h *Histogram) MedianEquivalentValue(value int64) int64 {
	return h.LowestEquivalentValue(value) + (h.SizeOfEquivalentValueRange(value) >> 1)
}

func (h *Histogram) nextNonEquivalentValue(value int64) int64 {
	return h.LowestEquivalentValue(value) + h.SizeOfEquivalentValueRange(value)
}

// bucketIndexFor locates the power-of-two tier holding the value. Values that
// fit within the first tier's sub-bucket span all report tier 0; above that,
// each doubling of magnitude moves one tier up.
func (h *Histogram) bucketIndexFor(value int64) int {
	return bits.Len64(uint64(value|h.subBucketMask)) - h.unitMagnitude - h.subBucketCountMagnitude
}

func (h *Histogram) subBucketIndexFor(value int64, bucketIdx int) int {
	return int(value >> uint(bucketIdx+h.unitMagnitude))
}

func (h *Histogram) countsIndexFor(value int64) int {
	bucketIdx := h.bucketIndexFor(value)
	subBucketIdx := h.subBucketIndexFor(value, bucketIdx)
	// Tier n+1 reuses the index space tier n's lower half would have wasted,
	// so the base offset advances by half a tier per bucket index.
	bucketBaseIdx := (bucketIdx + 1) << h.subBucketHalfCountMag
	offsetInBucket := subBucketIdx - h.subBucketHalfCount
	return bucketBaseIdx + offsetInBucket
}

func (h *Histogram) valueFromIndex(index int) int64 {
	bucketIdx := (index >> h.subBucketHalfCountMag) - 1
	subBucketIdx := (index & (h.subBucketHalfCount - 1)) + h.subBucketHalfCount
	if bucketIdx < 0 {
		subBucketIdx -= h.subBucketHalfCount
		bucketIdx = 0
	}
	return int64(subBucketIdx) << uint(bucketIdx+h.unitMagnitude)
}
