package insight

import (
	"time"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

func applicationStatusKey(app models.Application) string {
	if app.Status.Valid() {
		return string(app.Status)
	}
	return aggregator.UnknownCategory
}

func leadStatusKey(lead models.Lead) string {
	if lead.Status.Valid() {
		return string(lead.Status)
	}
	return aggregator.UnknownCategory
}

func commissionStatusKey(commission models.Commission) string {
	if commission.Status.Valid() {
		return string(commission.Status)
	}
	return aggregator.UnknownCategory
}

func leadPriorityKey(lead models.Lead) string {
	if priority, ok := lead.EffectivePriority(); ok {
		return string(priority)
	}
	return aggregator.UnknownCategory
}

// zeroFill makes sure every key is present in the tally so charts keep a stable axis.
func zeroFill(t aggregator.Tally, keys ...string) aggregator.Tally {
	for _, key := range keys {
		if _, ok := t.Values[key]; !ok {
			t.Values[key] = 0
		}
	}
	return t
}

func toCategoryCounts(categories []aggregator.Category) []dto.CategoryCount {
	result := make([]dto.CategoryCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, dto.CategoryCount{Category: category.Key, Count: int(category.Value)})
	}
	return result
}

func orderedCounts(t aggregator.Tally, keys ...string) []dto.CategoryCount {
	result := make([]dto.CategoryCount, 0, len(keys))
	for _, key := range keys {
		result = append(result, dto.CategoryCount{Category: key, Count: int(t.Get(key))})
	}
	return result
}

func toMonthlyPoints(buckets []aggregator.MonthBucket) []dto.MonthlyPoint {
	result := make([]dto.MonthlyPoint, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, dto.MonthlyPoint{
			Month:  bucket.Label,
			Count:  bucket.Count,
			Amount: aggregator.Round1(bucket.Sum),
		})
	}
	return result
}

func monthOverMonth[T any](records []T, dateFn func(T) time.Time, valueFn func(T) float64, ref time.Time) float64 {
	var current, previous float64
	for _, record := range records {
		date := dateFn(record)
		switch {
		case aggregator.InMonth(date, ref, 0):
			current += valueFn(record)
		case aggregator.InMonth(date, ref, -1):
			previous += valueFn(record)
		}
	}
	return aggregator.ComputeGrowth(current, previous)
}

func one[T any](T) float64 { return 1 }

func applicationStatusKeys() []string {
	keys := make([]string, 0, len(models.ApplicationStatuses)+1)
	for _, status := range models.ApplicationStatuses {
		keys = append(keys, string(status))
	}
	return append(keys, aggregator.UnknownCategory)
}

func leadStatusKeys() []string {
	keys := make([]string, 0, len(models.LeadStatuses)+1)
	for _, status := range models.LeadStatuses {
		keys = append(keys, string(status))
	}
	return append(keys, aggregator.UnknownCategory)
}

func commissionStatusKeys() []string {
	keys := make([]string, 0, len(models.CommissionStatuses)+1)
	for _, status := range models.CommissionStatuses {
		keys = append(keys, string(status))
	}
	return append(keys, aggregator.UnknownCategory)
}

func leadPriorityKeys() []string {
	keys := make([]string, 0, len(models.LeadPriorities)+1)
	for _, priority := range models.LeadPriorities {
		keys = append(keys, string(priority))
	}
	return append(keys, aggregator.UnknownCategory)
}

func wellFormed[T aggregator.WellFormed](records []T) []T {
	result := make([]T, 0, len(records))
	for _, record := range records {
		if record.WellFormed() {
			result = append(result, record)
		}
	}
	return result
}
