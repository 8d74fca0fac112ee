package insight

import (
	"time"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

// BuildLeadInsights reduces already-filtered leads into the funnel view-model.
// Conversion is closed_won over every well-formed lead in view.
func BuildLeadInsights(leads []models.Lead, opts Options) dto.LeadInsights {
	opts = opts.normalise()

	byStatus := zeroFill(aggregator.CountByCategory(leads, leadStatusKey), leadStatusKeys()...)
	bySource := aggregator.CountByCategory(leads, func(lead models.Lead) string { return lead.Source })
	byPriority := aggregator.CountByCategory(leads, leadPriorityKey)

	valid := wellFormed(leads)
	monthly := aggregator.BucketByMonth(valid, func(lead models.Lead) *time.Time {
		created := lead.CreatedAt
		return &created
	}, nil, opts.TrendMonths, opts.Ref)
	growth := monthOverMonth(valid, func(lead models.Lead) time.Time { return lead.CreatedAt }, one[models.Lead], opts.Ref)

	total := float64(byStatus.Records)
	return dto.LeadInsights{
		Total:          byStatus.Records,
		Malformed:      byStatus.Malformed,
		ByStatus:       toCategoryCounts(byStatus.Sorted()),
		Funnel:         buildFunnel(valid, total),
		BySource:       toCategoryCounts(bySource.Sorted()),
		ByPriority:     orderedCounts(byPriority, leadPriorityKeys()...),
		Monthly:        toMonthlyPoints(monthly),
		ConversionRate: aggregator.Round1(aggregator.ComputeRate(byStatus.Get(string(models.LeadStatusClosedWon)), total)),
		Growth:         aggregator.Round1(growth),
	}
}

// progressionIndex is the furthest funnel stage a lead has reached. Won leads
// passed every stage, lost and unrecognised leads only count as new.
func progressionIndex(status models.LeadStatus) int {
	if status == models.LeadStatusClosedWon {
		return len(models.LeadProgression) - 1
	}
	for i, stage := range models.LeadProgression {
		if stage == status {
			return i
		}
	}
	return 0
}

func buildFunnel(leads []models.Lead, total float64) []dto.FunnelStage {
	reached := make([]int, len(models.LeadProgression))
	for _, lead := range leads {
		idx := progressionIndex(lead.Status)
		for i := 0; i <= idx; i++ {
			reached[i]++
		}
	}
	stages := make([]dto.FunnelStage, 0, len(models.LeadProgression))
	for i, stage := range models.LeadProgression {
		stages = append(stages, dto.FunnelStage{
			Stage: string(stage),
			Count: reached[i],
			Rate:  aggregator.Round1(aggregator.ComputeRate(float64(reached[i]), total)),
		})
	}
	return stages
}
