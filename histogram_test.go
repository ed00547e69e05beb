package tickhist

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	type args struct {
		lowestDiscernibleValue int64
		highestTrackableValue  int64
		sigFigs                int
	}
	tests := []struct {
		name        string
		args        args
		wantErr     bool
		wantErrType error
	}{
		{
			name:        "Test for lowest discernible value below 1",
			args:        args{lowestDiscernibleValue: 0, highestTrackableValue: 1000, sigFigs: 3},
			wantErr:     true,
			wantErrType: fmt.Errorf("lowest discernible value must be at least 1, received: %d", 0),
		},
		{
			name:        "Test for significant figures below 1",
			args:        args{lowestDiscernibleValue: 1, highestTrackableValue: 1000, sigFigs: 0},
			wantErr:     true,
			wantErrType: fmt.Errorf("significant figures must be between 1 and 5, received: %d", 0),
		},
		{
			name:        "Test for significant figures above 5",
			args:        args{lowestDiscernibleValue: 1, highestTrackableValue: 1000, sigFigs: 6},
			wantErr:     true,
			wantErrType: fmt.Errorf("significant figures must be between 1 and 5, received: %d", 6),
		},
		{
			name:        "Test for highest trackable value below twice the lowest",
			args:        args{lowestDiscernibleValue: 10, highestTrackableValue: 19, sigFigs: 3},
			wantErr:     true,
			wantErrType: fmt.Errorf("highest trackable value must be at least twice the lowest discernible value, received: %d", 19),
		},
		{
			name:    "Test for valid range and precision",
			args:    args{lowestDiscernibleValue: 1, highestTrackableValue: 3600000000, sigFigs: 3},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.args.lowestDiscernibleValue, tt.args.highestTrackableValue, tt.args.sigFigs)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && err.Error() != tt.wantErrType.Error() {
				t.Errorf("New() error = %v, wantErrType %v", err, tt.wantErrType)
			}
			if !tt.wantErr && got == nil {
				t.Errorf("New() got = %v, want a histogram", got)
			}
		})
	}
}

// The bucket layout of a one-hour nanosecond histogram is a well-known
// configuration; its dimensions pin down the index math.
func TestNew_BucketLayout(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	assert.Equal(t, 2048, h.subBucketCount)
	assert.Equal(t, 22, h.bucketCount)
	assert.Equal(t, 23552, h.countsLen)
}

func TestHistogram_EquivalentValues(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	type args struct {
		value int64
	}
	tests := []struct {
		name        string
		args        args
		wantLowest  int64
		wantHighest int64
		wantMedian  int64
		wantSize    int64
	}{
		{
			name:        "Test for a single-unit bucket",
			args:        args{value: 1000},
			wantLowest:  1000,
			wantHighest: 1000,
			wantMedian:  1000,
			wantSize:    1,
		},
		{
			name:        "Test for a bucket in the fourth tier",
			args:        args{value: 8192},
			wantLowest:  8192,
			wantHighest: 8199,
			wantMedian:  8196,
			wantSize:    8,
		},
		{
			name:        "Test for a value in the middle of a coarse bucket",
			args:        args{value: 10007},
			wantLowest:  10000,
			wantHighest: 10007,
			wantMedian:  10004,
			wantSize:    8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.LowestEquivalentValue(tt.args.value); got != tt.wantLowest {
				t.Errorf("LowestEquivalentValue() got = %v, want %v", got, tt.wantLowest)
			}
			if got := h.HighestEquivalentValue(tt.args.value); got != tt.wantHighest {
				t.Errorf("HighestEquivalentValue() got = %v, want %v", got, tt.wantHighest)
			}
			if got := h.MedianEquivalentValue(tt.args.value); got != tt.wantMedian {
				t.Errorf("MedianEquivalentValue() got = %v, want %v", got, tt.wantMedian)
			}
			if got := h.SizeOfEquivalentValueRange(tt.args.value); got != tt.wantSize {
				t.Errorf("SizeOfEquivalentValueRange() got = %v, want %v", got, tt.wantSize)
			}
		})
	}

	assert.True(t, h.ValuesAreEquivalent(10000, 10007))
	assert.False(t, h.ValuesAreEquivalent(10007, 10008))
}

// Every recordable value must land in a counts slot that maps back to an
// equivalent value.
func TestHistogram_IndexRoundTrip(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, v := range []int64{1, 2, 1023, 1024, 2047, 2048, 4096, 8192, 10007, 3600000000} {
		idx := h.countsIndexFor(v)
		if idx < 0 || idx >= h.countsLen {
			t.Fatalf("countsIndexFor(%d) = %d, outside counts array of length %d", v, idx, h.countsLen)
		}
		back := h.valueFromIndex(idx)
		if !h.ValuesAreEquivalent(back, v) {
			t.Errorf("valueFromIndex(countsIndexFor(%d)) = %d, want an equivalent value", v, back)
		}
	}
}

func TestHistogram_RecordValue(t *testing.T) {
	type args struct {
		value int64
		count int64
	}
	tests := []struct {
		name        string
		args        args
		wantErr     bool
		wantErrType error
	}{
		{
			name:    "Test for a value in range",
			args:    args{value: 500, count: 1},
			wantErr: false,
		},
		{
			name:        "Test for a negative value",
			args:        args{value: -1, count: 1},
			wantErr:     true,
			wantErrType: fmt.Errorf("value %d is outside the trackable range", -1),
		},
		{
			name:        "Test for a value far above the trackable range",
			args:        args{value: 1 << 40, count: 1},
			wantErr:     true,
			wantErrType: fmt.Errorf("value %d is outside the trackable range", int64(1)<<40),
		},
		{
			name:        "Test for a negative count",
			args:        args{value: 500, count: -5},
			wantErr:     true,
			wantErrType: fmt.Errorf("count must not be negative, received: %d", -5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(1, 3600000000, 3)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			err = h.RecordValues(tt.args.value, tt.args.count)
			if (err != nil) != tt.wantErr {
				t.Errorf("RecordValues() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && err.Error() != tt.wantErrType.Error() {
				t.Errorf("RecordValues() error = %v, wantErrType %v", err, tt.wantErrType)
			}
			if !tt.wantErr && h.TotalCount() != tt.args.count {
				t.Errorf("TotalCount() got = %v, want %v", h.TotalCount(), tt.args.count)
			}
			if tt.wantErr && h.TotalCount() != 0 {
				t.Errorf("TotalCount() got = %v, want 0 after a rejected recording", h.TotalCount())
			}
		})
	}
}

func TestHistogram_Statistics(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for v := int64(1); v <= 100; v++ {
		if err := h.RecordValue(v); err != nil {
			t.Fatalf("RecordValue(%d) error = %v", v, err)
		}
	}

	assert.Equal(t, int64(100), h.TotalCount())
	assert.Equal(t, int64(1), h.Min())
	assert.Equal(t, int64(100), h.Max())
	assert.InDelta(t, 50.5, h.Mean(), 0.0001)
	assert.InDelta(t, 28.866, h.StdDev(), 0.001)
}

func TestHistogram_ValueAtPercentile(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for v := int64(1); v <= 100; v++ {
		if err := h.RecordValue(v); err != nil {
			t.Fatalf("RecordValue(%d) error = %v", v, err)
		}
	}

	type args struct {
		percentile float64
	}
	tests := []struct {
		name string
		args args
		want int64
	}{
		{name: "Test for the 0th percentile", args: args{percentile: 0.0}, want: 1},
		{name: "Test for the 25th percentile", args: args{percentile: 25.0}, want: 25},
		{name: "Test for the 50th percentile", args: args{percentile: 50.0}, want: 50},
		{name: "Test for the 90th percentile", args: args{percentile: 90.0}, want: 90},
		{name: "Test for the 99th percentile", args: args{percentile: 99.0}, want: 99},
		{name: "Test for the 100th percentile", args: args{percentile: 100.0}, want: 100},
		{name: "Test for a percentile above 100", args: args{percentile: 200.0}, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.ValueAtPercentile(tt.args.percentile); got != tt.want {
				t.Errorf("ValueAtPercentile() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistogram_ValueAtQuantile(t *testing.T) {
	type args struct {
		quantile float64
	}
	tests := []struct {
		name        string
		args        args
		want        int64
		wantErr     bool
		wantErrType error
	}{
		{
			name:        "Test for invalid quantile value below 0",
			args:        args{quantile: -0.001},
			want:        0,
			wantErr:     true,
			wantErrType: fmt.Errorf("quantile value must be between 0.0 and 1.0, received: %f", -0.001),
		},
		{
			name:        "Test for invalid quantile value above 1",
			args:        args{quantile: 1.001},
			want:        0,
			wantErr:     true,
			wantErrType: fmt.Errorf("quantile value must be between 0.0 and 1.0, received: %f", 1.001),
		},
		{
			name:    "Test for the median",
			args:    args{quantile: 0.5},
			want:    50,
			wantErr: false,
		},
		{
			name:    "Test for the upper limit",
			args:    args{quantile: 1.0},
			want:    100,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(1, 3600000000, 3)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			for v := int64(1); v <= 100; v++ {
				h.RecordValue(v)
			}

			got, err := h.ValueAtQuantile(tt.args.quantile)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValueAtQuantile() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && err.Error() != tt.wantErrType.Error() {
				t.Errorf("ValueAtQuantile() error = %v, wantErrType %v", err, tt.wantErrType)
			}
			if got != tt.want {
				t.Errorf("ValueAtQuantile() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistogram_Merge(t *testing.T) {
	low, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	high, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for v := int64(1); v <= 50; v++ {
		low.RecordValue(v)
	}
	for v := int64(51); v <= 100; v++ {
		high.RecordValue(v)
	}

	dropped := low.Merge(high)

	assert.Equal(t, int64(0), dropped)
	assert.Equal(t, int64(100), low.TotalCount())
	assert.Equal(t, int64(50), low.ValueAtPercentile(50))
	assert.Equal(t, int64(100), low.ValueAtPercentile(100))
}

func TestHistogram_Merge_Dropped(t *testing.T) {
	narrow, err := New(1, 1000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	wide, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	wide.RecordValues(500, 2)
	wide.RecordValues(100000000, 3)

	dropped := narrow.Merge(wide)

	// The two in-range recordings survive, the three out-of-range ones are
	// reported back instead of being silently lost.
	assert.Equal(t, int64(3), dropped)
	assert.Equal(t, int64(2), narrow.TotalCount())
}

func TestHistogram_Reset(t *testing.T) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for v := int64(1); v <= 100; v++ {
		h.RecordValue(v)
	}

	h.Reset()

	assert.Equal(t, int64(0), h.TotalCount())
	assert.Equal(t, int64(0), h.Min())
	assert.Equal(t, int64(0), h.Max())

	// The histogram stays usable after a reset.
	if err := h.RecordValue(42); err != nil {
		t.Fatalf("RecordValue() error = %v", err)
	}
	assert.Equal(t, int64(1), h.TotalCount())
	assert.Equal(t, int64(42), h.Max())
}

func BenchmarkHistogram(b *testing.B) {
	h, err := New(1, 3600000000, 3)
	if err != nil {
		b.Fatalf("failed to create histogram: %v", err)
	}

	b.Run("record", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := h.RecordValue(int64(i%1000000 + 1)); err != nil {
				b.Fatalf("failed to record value: %v", err)
			}
		}
	})

	b.Run("value_at_percentile", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			h.ValueAtPercentile(99.9)
		}
	})
}
