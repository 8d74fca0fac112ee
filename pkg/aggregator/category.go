package aggregator

import (
	"sort"
	"strings"
)

// UnknownCategory collects records whose category key is empty.
const UnknownCategory = "Unknown"

// WellFormed is implemented by records that can report missing required keys.
// Records returning false are excluded from category tallies and counted as malformed.
type WellFormed interface {
	WellFormed() bool
}

// Category is a single tally entry.
type Category struct {
	Key   string  `json:"category"`
	Value float64 `json:"value"`
}

// Tally is the result of a category aggregation.
type Tally struct {
	Values    map[string]float64
	Total     float64
	Records   int
	Malformed int
}

// Get returns the value recorded for key, zero when absent.
func (t Tally) Get(key string) float64 {
	return t.Values[key]
}

// Sorted returns the categories ordered by value descending, ties broken by key ascending.
func (t Tally) Sorted() []Category {
	result := make([]Category, 0, len(t.Values))
	for key, value := range t.Values {
		result = append(result, Category{Key: key, Value: value})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Value == result[j].Value {
			return result[i].Key < result[j].Key
		}
		return result[i].Value > result[j].Value
	})
	return result
}

// Top returns the first n entries of Sorted. n <= 0 returns every entry.
func (t Tally) Top(n int) []Category {
	sorted := t.Sorted()
	if n > 0 && len(sorted) > n {
		return sorted[:n]
	}
	return sorted
}

// CountByCategory counts records per category key.
func CountByCategory[T any](records []T, categoryFn func(T) string) Tally {
	if categoryFn == nil {
		panic("aggregator: CountByCategory requires a category function")
	}
	return tally(records, categoryFn, func(T) float64 { return 1 })
}

// SumByCategory sums valueFn per category key.
func SumByCategory[T any](records []T, categoryFn func(T) string, valueFn func(T) float64) Tally {
	if categoryFn == nil || valueFn == nil {
		panic("aggregator: SumByCategory requires category and value functions")
	}
	return tally(records, categoryFn, valueFn)
}

func tally[T any](records []T, categoryFn func(T) string, valueFn func(T) float64) Tally {
	result := Tally{Values: make(map[string]float64)}
	for _, record := range records {
		if !isWellFormed(record) {
			result.Malformed++
			continue
		}
		key := strings.TrimSpace(categoryFn(record))
		if key == "" {
			key = UnknownCategory
		}
		value := valueFn(record)
		result.Values[key] += value
		result.Total += value
		result.Records++
	}
	return result
}

func isWellFormed(record any) bool {
	if checker, ok := record.(WellFormed); ok {
		return checker.WellFormed()
	}
	return true
}
