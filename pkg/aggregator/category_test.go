package aggregator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	id     string
	status string
	amount float64
}

func (r record) WellFormed() bool {
	return r.id != "" && r.status != ""
}

func statusOf(r record) string { return r.status }

func TestCountByCategoryTotalsMatchInput(t *testing.T) {
	records := []record{
		{id: "1", status: "enrolled"},
		{id: "2", status: "enrolled"},
		{id: "3", status: "draft"},
		{id: "4", status: "rejected"},
		{id: "", status: "draft"},
		{id: "6", status: ""},
	}

	result := CountByCategory(records, statusOf)

	assert.Equal(t, 2, result.Malformed)
	assert.Equal(t, 4, result.Records)
	assert.Equal(t, float64(len(records)-result.Malformed), result.Total)

	var sum float64
	for _, v := range result.Values {
		sum += v
	}
	assert.Equal(t, result.Total, sum)
}

func TestCountByCategoryUnknownBucket(t *testing.T) {
	type plain struct{ country string }
	records := []plain{{country: "UK"}, {country: ""}, {country: "  "}, {country: "AU"}}

	result := CountByCategory(records, func(p plain) string { return p.country })

	assert.Equal(t, float64(2), result.Get(UnknownCategory))
	assert.Equal(t, float64(4), result.Total)
	assert.Zero(t, result.Malformed)
}

func TestSumByCategory(t *testing.T) {
	records := []record{
		{id: "1", status: "paid", amount: 100},
		{id: "2", status: "paid", amount: 50.5},
		{id: "3", status: "pending", amount: 20},
	}

	result := SumByCategory(records, statusOf, func(r record) float64 { return r.amount })

	assert.Equal(t, 150.5, result.Get("paid"))
	assert.Equal(t, 20.0, result.Get("pending"))
	assert.Equal(t, 170.5, result.Total)
}

func TestTallySortedTieBreak(t *testing.T) {
	records := []record{
		{id: "1", status: "b"},
		{id: "2", status: "a"},
		{id: "3", status: "c"},
		{id: "4", status: "c"},
	}

	sorted := CountByCategory(records, statusOf).Sorted()

	require.Len(t, sorted, 3)
	assert.Equal(t, []Category{{Key: "c", Value: 2}, {Key: "a", Value: 1}, {Key: "b", Value: 1}}, sorted)
}

func TestTallyTopTruncates(t *testing.T) {
	records := []record{{id: "1", status: "a"}, {id: "2", status: "b"}, {id: "3", status: "b"}}
	result := CountByCategory(records, statusOf)

	assert.Equal(t, []Category{{Key: "b", Value: 2}}, result.Top(1))
	assert.Len(t, result.Top(0), 2)
}

func TestCountByCategoryIdempotent(t *testing.T) {
	records := []record{{id: "1", status: "x"}, {id: "2", status: "y"}, {id: "3", status: "x"}}

	first := CountByCategory(records, statusOf)
	second := CountByCategory(records, statusOf)

	assert.Equal(t, first, second)
	assert.Equal(t, first.Sorted(), second.Sorted())
}

func TestCountByCategoryPanicsWithoutFunction(t *testing.T) {
	assert.Panics(t, func() {
		CountByCategory([]record{{id: "1", status: "x"}}, nil)
	})
}
