package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dated struct {
	at    *time.Time
	value float64
}

func TestBucketByMonthZeroFillsTrailingMonths(t *testing.T) {
	ref := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	records := []dated{
		{at: ptr(time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)), value: 10},
		{at: ptr(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)), value: 5},
		{at: ptr(time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC)), value: 1},
		{at: ptr(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)), value: 100},
		{at: nil, value: 50},
	}

	buckets := BucketByMonth(records, func(d dated) *time.Time { return d.at }, func(d dated) float64 { return d.value }, 6, ref)

	require.Len(t, buckets, 6)
	labels := make([]string, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"May 2026", "Jun 2026", "Jul 2026", "Aug 2026", "Sep 2026", "Oct 2026"}, labels)
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 2, buckets[5].Count)
	assert.Equal(t, 15.0, buckets[5].Sum)

	empty := 0
	for _, b := range buckets {
		if b.Count == 0 {
			empty++
		}
	}
	assert.Equal(t, 4, empty)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Start.Before(buckets[i].Start))
	}
}

func TestBucketByMonthAcrossYearBoundary(t *testing.T) {
	ref := time.Date(2027, 2, 1, 0, 0, 0, 0, time.UTC)
	buckets := BucketByMonth([]dated{}, func(d dated) *time.Time { return d.at }, nil, 4, ref)

	require.Len(t, buckets, 4)
	assert.Equal(t, "Nov 2026", buckets[0].Label)
	assert.Equal(t, "Feb 2027", buckets[3].Label)
}

func TestBucketByMonthPanicsOnNegativeCount(t *testing.T) {
	assert.Panics(t, func() {
		BucketByMonth([]dated{}, func(d dated) *time.Time { return d.at }, nil, -1, time.Now())
	})
}

func TestInMonth(t *testing.T) {
	ref := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, InMonth(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), ref, 0))
	assert.True(t, InMonth(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), ref, -1))
	assert.False(t, InMonth(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), ref, -1))
}
