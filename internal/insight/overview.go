package insight

import (
	"github.com/noah-isme/edu-crm-api/internal/dto"
)

// AsOfLayout formats the reference date echoed back in view-models.
const AsOfLayout = "2006-01-02"

// BuildOverview computes every section of the admin dashboard. The status filter
// is ignored since it is specific to a single entity type.
func BuildOverview(ds Dataset, scope Scope, opts Options) dto.OverviewResponse {
	opts = opts.normalise()
	scope = scope.WithoutStatuses()
	apps := FilterApplications(ds.Applications, scope)
	leads := FilterLeads(ds.Leads, scope)
	commissions := FilterCommissions(ds.Commissions, scope)
	return dto.OverviewResponse{
		AsOf:         opts.Ref.Format(AsOfLayout),
		Applications: BuildApplicationInsights(ds, apps, opts),
		Leads:        BuildLeadInsights(leads, opts),
		Financials:   BuildFinancialInsights(ds, commissions, opts),
		Leaderboard:  BuildCounselorLeaderboard(ds, apps, leads, opts),
	}
}

// BuildCounselorDashboard computes the dashboard of a single counselor.
func BuildCounselorDashboard(ds Dataset, counselorID string, scope Scope, opts Options) dto.CounselorDashboardResponse {
	opts = opts.normalise()
	scope = scope.WithoutStatuses()
	owned := ForCounselor(ds, counselorID)
	name := counselorID
	for _, counselor := range owned.Counselors {
		if counselor.Name != "" {
			name = counselor.Name
		}
	}
	return dto.CounselorDashboardResponse{
		AsOf:         opts.Ref.Format(AsOfLayout),
		CounselorID:  counselorID,
		Name:         name,
		Students:     len(owned.Students),
		Applications: BuildApplicationInsights(owned, FilterApplications(owned.Applications, scope), opts),
		Leads:        BuildLeadInsights(FilterLeads(owned.Leads, scope), opts),
	}
}

// BuildPartnerDashboard computes the dashboard of a single partner university.
func BuildPartnerDashboard(ds Dataset, partnerID string, scope Scope, opts Options) dto.PartnerDashboardResponse {
	opts = opts.normalise()
	scope = scope.WithoutStatuses()
	owned := ForPartner(ds, partnerID)
	resp := dto.PartnerDashboardResponse{
		AsOf:         opts.Ref.Format(AsOfLayout),
		PartnerID:    partnerID,
		Name:         partnerID,
		Applications: BuildApplicationInsights(owned, FilterApplications(owned.Applications, scope), opts),
		Financials:   BuildFinancialInsights(owned, FilterCommissions(owned.Commissions, scope), opts),
	}
	for _, partner := range owned.Partners {
		if partner.Name != "" {
			resp.Name = partner.Name
		}
		resp.Country = partner.Country
	}
	return resp
}
