package dto

import "github.com/noah-isme/edu-crm-api/internal/models"

// ComputeRequest carries a full record set for a one-shot aggregation.
type ComputeRequest struct {
	AsOf         string                  `json:"asOf" validate:"required,datetime=2006-01-02"`
	From         string                  `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string                  `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Statuses     []string                `json:"statuses"`
	Search       string                  `json:"search" validate:"max=200"`
	TrendMonths  int                     `json:"trendMonths" validate:"omitempty,min=1,max=36"`
	TopLimit     int                     `json:"topLimit" validate:"omitempty,min=1,max=100"`
	Applications []models.Application    `json:"applications"`
	Leads        []models.Lead           `json:"leads"`
	Commissions  []models.Commission     `json:"commissions"`
	Students     []models.StudentProfile `json:"students"`
	Counselors   []models.Counselor      `json:"counselors"`
	Partners     []models.Partner        `json:"partners"`
}

// RecordCount returns the number of aggregated records in the request.
func (r ComputeRequest) RecordCount() int {
	return len(r.Applications) + len(r.Leads) + len(r.Commissions)
}

// ComputeResponse is the complete view-model for a compute request.
type ComputeResponse struct {
	AsOf         string              `json:"asOf"`
	Applications ApplicationInsights `json:"applications"`
	Leads        LeadInsights        `json:"leads"`
	Financials   FinancialInsights   `json:"financials"`
	Leaderboard  []LeaderboardEntry  `json:"leaderboard"`
}
