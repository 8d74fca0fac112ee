package aggregator

import "time"

// MonthLabelLayout renders bucket labels such as "Oct 2026".
const MonthLabelLayout = "Jan 2006"

// MonthBucket is one calendar month of a trailing series.
type MonthBucket struct {
	Label string
	Start time.Time
	Count int
	Sum   float64
}

// MonthLabel formats t as a bucket label.
func MonthLabel(t time.Time) string {
	return t.Format(MonthLabelLayout)
}

// BucketByMonth returns monthCount calendar months ending with ref's month, oldest first.
// Every month is present even without matching records. Records whose dateFn returns nil
// are skipped. When valueFn is nil only counts are accumulated.
func BucketByMonth[T any](records []T, dateFn func(T) *time.Time, valueFn func(T) float64, monthCount int, ref time.Time) []MonthBucket {
	if dateFn == nil {
		panic("aggregator: BucketByMonth requires a date function")
	}
	if monthCount < 0 {
		panic("aggregator: BucketByMonth requires a non-negative month count")
	}
	loc := ref.Location()
	current := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)

	buckets := make([]MonthBucket, monthCount)
	index := make(map[string]int, monthCount)
	for i := 0; i < monthCount; i++ {
		start := current.AddDate(0, i-monthCount+1, 0)
		label := MonthLabel(start)
		buckets[i] = MonthBucket{Label: label, Start: start}
		index[label] = i
	}

	for _, record := range records {
		date := dateFn(record)
		if date == nil {
			continue
		}
		pos, ok := index[MonthLabel(date.In(loc))]
		if !ok {
			continue
		}
		buckets[pos].Count++
		if valueFn != nil {
			buckets[pos].Sum += valueFn(record)
		}
	}
	return buckets
}

// InMonth reports whether t falls in the calendar month offset months away from ref's month.
// offset 0 is ref's month, -1 the previous one.
func InMonth(t, ref time.Time, offset int) bool {
	loc := ref.Location()
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, offset, 0)
	local := t.In(loc)
	return local.Year() == start.Year() && local.Month() == start.Month()
}
