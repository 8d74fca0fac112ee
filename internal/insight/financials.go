package insight

import (
	"time"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

// BuildFinancialInsights rolls up already-filtered commissions.
// Collection rate is the paid amount over the total amount in view.
func BuildFinancialInsights(ds Dataset, commissions []models.Commission, opts Options) dto.FinancialInsights {
	opts = opts.normalise()
	dir := newDirectory(ds)
	amount := func(c models.Commission) float64 { return c.Amount }

	counts := zeroFill(aggregator.CountByCategory(commissions, commissionStatusKey), commissionStatusKeys()...)
	sums := zeroFill(aggregator.SumByCategory(commissions, commissionStatusKey, amount), commissionStatusKeys()...)
	partnerID := func(c models.Commission) string { return c.PartnerID }
	partnerSums := aggregator.SumByCategory(commissions, partnerID, amount)
	partnerCounts := aggregator.CountByCategory(commissions, partnerID)

	valid := wellFormed(commissions)
	paid := make([]models.Commission, 0, len(valid))
	for _, c := range valid {
		if c.Status == models.CommissionStatusPaid {
			paid = append(paid, c)
		}
	}
	monthlyPaid := aggregator.BucketByMonth(paid, func(c models.Commission) *time.Time { return c.PaymentDate }, amount, opts.TrendMonths, opts.Ref)
	monthlyCreated := aggregator.BucketByMonth(valid, func(c models.Commission) *time.Time {
		created := c.CreatedAt
		return &created
	}, amount, opts.TrendMonths, opts.Ref)
	growth := monthOverMonth(valid, func(c models.Commission) time.Time { return c.CreatedAt }, amount, opts.Ref)

	paidAmount := sums.Get(string(models.CommissionStatusPaid))
	return dto.FinancialInsights{
		Total:          counts.Records,
		Malformed:      counts.Malformed,
		ByStatus:       toCategoryAmounts(sums.Sorted(), counts),
		TotalAmount:    aggregator.Round1(sums.Total),
		PaidAmount:     aggregator.Round1(paidAmount),
		ApprovedAmount: aggregator.Round1(sums.Get(string(models.CommissionStatusApproved))),
		PendingAmount:  aggregator.Round1(sums.Get(string(models.CommissionStatusPending))),
		CollectionRate: aggregator.Round1(aggregator.ComputeRate(paidAmount, sums.Total)),
		MonthlyPaid:    toMonthlyPoints(monthlyPaid),
		MonthlyCreated: toMonthlyPoints(monthlyCreated),
		TopPartners:    dir.partnerAmounts(partnerSums.Top(opts.TopLimit), partnerCounts),
		Growth:         aggregator.Round1(growth),
	}
}

func toCategoryAmounts(categories []aggregator.Category, counts aggregator.Tally) []dto.CategoryAmount {
	result := make([]dto.CategoryAmount, 0, len(categories))
	for _, category := range categories {
		result = append(result, dto.CategoryAmount{
			Category: category.Key,
			Count:    int(counts.Get(category.Key)),
			Amount:   aggregator.Round1(category.Value),
		})
	}
	return result
}
