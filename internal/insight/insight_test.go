package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
)

var ref = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func daysFromRef(days int) *time.Time {
	return ptr(ref.AddDate(0, 0, days))
}

func countOf(entries []dto.CategoryCount, key string) int {
	for _, entry := range entries {
		if entry.Category == key {
			return entry.Count
		}
	}
	return -1
}

func sumCounts(entries []dto.CategoryCount) int {
	total := 0
	for _, entry := range entries {
		total += entry.Count
	}
	return total
}

func app(id string, status models.ApplicationStatus, created time.Time) models.Application {
	return models.Application{ID: id, StudentID: "s-" + id, UniversityID: "u-1", CourseID: "c-1", Status: status, CreatedAt: created}
}

func TestBuildApplicationInsightsConversion(t *testing.T) {
	statuses := []models.ApplicationStatus{
		models.ApplicationStatusEnrolled,
		models.ApplicationStatusEnrolled,
		models.ApplicationStatusEnrolled,
		models.ApplicationStatusUnderReview,
		models.ApplicationStatusUnderReview,
		models.ApplicationStatusConditionalOffer,
		models.ApplicationStatusConditionalOffer,
		models.ApplicationStatusRejected,
		models.ApplicationStatusDraft,
		models.ApplicationStatusVisaProcessing,
	}
	apps := make([]models.Application, 0, len(statuses))
	for i, status := range statuses {
		apps = append(apps, app(string(rune('a'+i)), status, ref.AddDate(0, 0, -i)))
	}

	insights := BuildApplicationInsights(Dataset{}, apps, Options{Ref: ref})

	assert.Equal(t, 10, insights.Total)
	assert.Equal(t, 0, insights.Malformed)
	assert.Equal(t, 30.0, insights.ConversionRate)
	assert.Equal(t, 60.0, insights.OfferRate)
	assert.Equal(t, 3, countOf(insights.ByStatus, "enrolled"))
	assert.Equal(t, 0, countOf(insights.ByStatus, "withdrawn"))
	assert.Equal(t, insights.Total, sumCounts(insights.ByStatus))
	require.Len(t, insights.Monthly, DefaultTrendMonths)
	assert.Equal(t, "Oct 2026", insights.Monthly[5].Month)
	assert.Equal(t, 10, insights.Monthly[5].Count)
	assert.Equal(t, 0.0, insights.Growth)
}

func TestBuildApplicationInsightsUnknownAndMalformed(t *testing.T) {
	apps := []models.Application{
		app("a", models.ApplicationStatusDraft, ref),
		app("b", models.ApplicationStatus("archived"), ref),
		app("", models.ApplicationStatusEnrolled, ref),
		app("d", "", ref),
	}

	insights := BuildApplicationInsights(Dataset{}, apps, Options{Ref: ref})

	assert.Equal(t, 2, insights.Total)
	assert.Equal(t, 2, insights.Malformed)
	assert.Equal(t, 1, countOf(insights.ByStatus, "Unknown"))
	assert.Equal(t, len(apps)-insights.Malformed, sumCounts(insights.ByStatus))
	assert.Equal(t, 0.0, insights.ConversionRate)
}

func TestBuildApplicationInsightsDeadlineRisk(t *testing.T) {
	critical := app("critical", models.ApplicationStatusUnderReview, ref)
	critical.OfferDeadline = daysFromRef(7)
	upcoming := app("upcoming", models.ApplicationStatusConditionalOffer, ref)
	upcoming.OfferDeadline = daysFromRef(8)
	closed := app("closed", models.ApplicationStatusEnrolled, ref)
	closed.OfferDeadline = daysFromRef(-1)
	open := app("open", models.ApplicationStatusDraft, ref)
	overdue := app("overdue", models.ApplicationStatusUnconditionalOffer, ref)
	overdue.OfferDeadline = daysFromRef(-2)

	insights := BuildApplicationInsights(Dataset{}, []models.Application{upcoming, critical, closed, open, overdue}, Options{Ref: ref})

	counts := map[string]int{}
	for _, c := range insights.DeadlineRisk.Counts {
		counts[c.Status] = c.Count
	}
	assert.Equal(t, map[string]int{"OVERDUE": 1, "CRITICAL": 1, "UPCOMING": 1, "SAFE": 0, "NO_DEADLINE": 1}, counts)
	assert.Equal(t, "OVERDUE", insights.DeadlineRisk.Counts[0].Status)

	require.Len(t, insights.DeadlineRisk.AtRisk, 3)
	assert.Equal(t, "overdue", insights.DeadlineRisk.AtRisk[0].ApplicationID)
	assert.Equal(t, -2, insights.DeadlineRisk.AtRisk[0].DaysUntil)
	assert.Equal(t, "critical", insights.DeadlineRisk.AtRisk[1].ApplicationID)
	assert.Equal(t, 7, insights.DeadlineRisk.AtRisk[1].DaysUntil)
	assert.Equal(t, "2026-10-23", insights.DeadlineRisk.AtRisk[1].Deadline)
	assert.Equal(t, "upcoming", insights.DeadlineRisk.AtRisk[2].ApplicationID)
}

func TestBuildApplicationInsightsJoinsPartners(t *testing.T) {
	ds := Dataset{Partners: []models.Partner{
		{ID: "u-1", Name: "Monash", Country: "Australia"},
		{ID: "u-2", Name: "Leeds", Country: "United Kingdom"},
	}}
	a := app("a", models.ApplicationStatusDraft, ref)
	b := app("b", models.ApplicationStatusDraft, ref)
	c := app("c", models.ApplicationStatusDraft, ref)
	c.UniversityID = "u-2"
	c.CourseTitle = "MSc Data Science"
	d := app("d", models.ApplicationStatusDraft, ref)
	d.UniversityID = "u-9"
	fee := 12000.0
	a.TuitionFee = &fee
	b.TuitionFee = &fee

	insights := BuildApplicationInsights(ds, []models.Application{a, b, c, d}, Options{Ref: ref, TopLimit: 2})

	assert.Equal(t, []dto.CategoryCount{{Category: "Australia", Count: 2}, {Category: "United Kingdom", Count: 1}, {Category: "Unknown", Count: 1}}, insights.ByCountry)
	assert.Equal(t, []dto.CategoryCount{{ID: "u-1", Category: "Monash", Count: 2}, {ID: "u-2", Category: "Leeds", Count: 1}}, insights.TopUniversities)
	assert.Equal(t, "c-1", insights.TopCourses[0].Category)
	assert.Equal(t, 24000.0, insights.TuitionTotal)
}

func TestBuildApplicationInsightsGrowth(t *testing.T) {
	apps := []models.Application{
		app("a", models.ApplicationStatusDraft, time.Date(2026, time.October, 2, 0, 0, 0, 0, time.UTC)),
		app("b", models.ApplicationStatusDraft, time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC)),
		app("c", models.ApplicationStatusDraft, time.Date(2026, time.October, 4, 0, 0, 0, 0, time.UTC)),
		app("d", models.ApplicationStatusDraft, time.Date(2026, time.September, 4, 0, 0, 0, 0, time.UTC)),
		app("e", models.ApplicationStatusDraft, time.Date(2026, time.September, 5, 0, 0, 0, 0, time.UTC)),
	}
	insights := BuildApplicationInsights(Dataset{}, apps, Options{Ref: ref})
	assert.Equal(t, 50.0, insights.Growth)
}

func TestBuildApplicationInsightsIdempotent(t *testing.T) {
	apps := []models.Application{
		app("b", models.ApplicationStatusDraft, ref),
		app("a", models.ApplicationStatusEnrolled, ref),
		app("c", models.ApplicationStatusRejected, ref),
	}
	first := BuildApplicationInsights(Dataset{}, apps, Options{Ref: ref})
	second := BuildApplicationInsights(Dataset{}, apps, Options{Ref: ref})
	assert.Equal(t, first, second)
	assert.Equal(t, "b", apps[0].ID)
}

func TestOptionsRequireReference(t *testing.T) {
	assert.Panics(t, func() {
		BuildLeadInsights(nil, Options{})
	})
}

func TestBuildLeadInsights(t *testing.T) {
	lead := func(id string, status models.LeadStatus) models.Lead {
		return models.Lead{ID: id, Status: status, Source: "website", CreatedAt: ref}
	}
	l1 := lead("l1", models.LeadStatusNew)
	l1.Priority = models.LeadPriorityHot
	l2 := lead("l2", models.LeadStatusContacted)
	l2.PriorityNote = "Called twice. Priority: warm, follow up"
	l3 := lead("l3", models.LeadStatusApplicationSubmitted)
	l3.Priority = "cold"
	l3.Source = "referral"
	l4 := lead("l4", models.LeadStatusClosedWon)
	l4.Priority = "bogus"
	l5 := lead("l5", models.LeadStatusClosedLost)
	l5.Source = ""
	l6 := lead("l6", "")
	l7 := lead("l7", models.LeadStatus("mystery"))
	l7.PriorityNote = "Priority: HOT"

	insights := BuildLeadInsights([]models.Lead{l1, l2, l3, l4, l5, l6, l7}, Options{Ref: ref})

	assert.Equal(t, 6, insights.Total)
	assert.Equal(t, 1, insights.Malformed)
	assert.Equal(t, 16.7, insights.ConversionRate)
	assert.Equal(t, 1, countOf(insights.ByStatus, "Unknown"))
	assert.Equal(t, insights.Total, sumCounts(insights.ByStatus))

	require.Len(t, insights.Funnel, len(models.LeadProgression))
	assert.Equal(t, dto.FunnelStage{Stage: "new", Count: 6, Rate: 100}, insights.Funnel[0])
	assert.Equal(t, dto.FunnelStage{Stage: "contacted", Count: 3, Rate: 50}, insights.Funnel[1])
	assert.Equal(t, 2, insights.Funnel[5].Count)

	assert.Equal(t, []dto.CategoryCount{
		{Category: "HOT", Count: 2},
		{Category: "WARM", Count: 1},
		{Category: "COLD", Count: 1},
		{Category: "Unknown", Count: 2},
	}, insights.ByPriority)
	assert.Equal(t, []dto.CategoryCount{
		{Category: "website", Count: 4},
		{Category: "Unknown", Count: 1},
		{Category: "referral", Count: 1},
	}, insights.BySource)
}

func TestBuildApplicationInsightsDateOnlyDeadlineWestOfUTC(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	westRef := time.Date(2026, time.October, 16, 9, 0, 0, 0, newYork)

	upcoming := app("upcoming", models.ApplicationStatusConditionalOffer, ref)
	upcoming.OfferDeadline = ptr(time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC))
	critical := app("critical", models.ApplicationStatusUnderReview, ref)
	critical.OfferDeadline = ptr(time.Date(2026, time.October, 23, 0, 0, 0, 0, time.UTC))

	insights := BuildApplicationInsights(Dataset{}, []models.Application{upcoming, critical}, Options{Ref: westRef})

	require.Len(t, insights.DeadlineRisk.AtRisk, 2)
	assert.Equal(t, "critical", insights.DeadlineRisk.AtRisk[0].ApplicationID)
	assert.Equal(t, 7, insights.DeadlineRisk.AtRisk[0].DaysUntil)
	assert.Equal(t, "2026-10-23", insights.DeadlineRisk.AtRisk[0].Deadline)
	assert.Equal(t, "upcoming", insights.DeadlineRisk.AtRisk[1].ApplicationID)
	assert.Equal(t, "UPCOMING", insights.DeadlineRisk.AtRisk[1].DeadlineStatus)
	assert.Equal(t, 8, insights.DeadlineRisk.AtRisk[1].DaysUntil)
	assert.Equal(t, "2026-10-24", insights.DeadlineRisk.AtRisk[1].Deadline)
}

func TestTopPartnersGroupByID(t *testing.T) {
	ds := Dataset{Partners: []models.Partner{
		{ID: "u-1", Name: "Saint Mary"},
		{ID: "u-2", Name: "Saint Mary"},
		{ID: "u-3"},
		{ID: "u-4", Name: "u-3"},
	}}
	a := app("a", models.ApplicationStatusDraft, ref)
	b := app("b", models.ApplicationStatusDraft, ref)
	b.UniversityID = "u-2"
	c := app("c", models.ApplicationStatusDraft, ref)
	c.UniversityID = "u-3"
	d := app("d", models.ApplicationStatusDraft, ref)
	d.UniversityID = "u-4"

	insights := BuildApplicationInsights(ds, []models.Application{a, b, c, d}, Options{Ref: ref, TopLimit: 10})
	assert.Equal(t, []dto.CategoryCount{
		{ID: "u-1", Category: "Saint Mary", Count: 1},
		{ID: "u-2", Category: "Saint Mary", Count: 1},
		{ID: "u-3", Category: "u-3", Count: 1},
		{ID: "u-4", Category: "u-3", Count: 1},
	}, insights.TopUniversities)

	commissions := []models.Commission{
		{ID: "c1", PartnerID: "u-1", Amount: 400, Status: models.CommissionStatusPaid, CreatedAt: ref},
		{ID: "c2", PartnerID: "u-2", Amount: 300, Status: models.CommissionStatusPaid, CreatedAt: ref},
		{ID: "c3", PartnerID: "", Amount: 100, Status: models.CommissionStatusPending, CreatedAt: ref},
	}
	financials := BuildFinancialInsights(ds, commissions, Options{Ref: ref})
	assert.Equal(t, []dto.CategoryAmount{
		{ID: "u-1", Category: "Saint Mary", Count: 1, Amount: 400},
		{ID: "u-2", Category: "Saint Mary", Count: 1, Amount: 300},
		{Category: "Unknown", Count: 1, Amount: 100},
	}, financials.TopPartners)
}

func TestBuildFinancialInsights(t *testing.T) {
	ds := Dataset{Partners: []models.Partner{{ID: "p1", Name: "Uni A"}, {ID: "p2", Name: "Uni B"}}}
	date := func(m time.Month, d int) time.Time { return time.Date(2026, m, d, 9, 0, 0, 0, time.UTC) }
	commissions := []models.Commission{
		{ID: "c1", PartnerID: "p1", Amount: 1000, Status: models.CommissionStatusPaid, CreatedAt: date(time.September, 10), PaymentDate: ptr(date(time.October, 5))},
		{ID: "c2", PartnerID: "p2", Amount: 500, Status: models.CommissionStatusPaid, CreatedAt: date(time.September, 1), PaymentDate: ptr(date(time.September, 20))},
		{ID: "c3", PartnerID: "p1", Amount: 300, Status: models.CommissionStatusApproved, CreatedAt: date(time.October, 1)},
		{ID: "c4", PartnerID: "p2", Amount: 200, Status: models.CommissionStatusPending, CreatedAt: date(time.October, 2)},
		{ID: "c5", PartnerID: "p2", Amount: 100, Status: "void", CreatedAt: date(time.October, 3)},
	}

	insights := BuildFinancialInsights(ds, commissions, Options{Ref: ref})

	assert.Equal(t, 5, insights.Total)
	assert.Equal(t, 2100.0, insights.TotalAmount)
	assert.Equal(t, 1500.0, insights.PaidAmount)
	assert.Equal(t, 300.0, insights.ApprovedAmount)
	assert.Equal(t, 200.0, insights.PendingAmount)
	assert.Equal(t, 71.4, insights.CollectionRate)
	assert.Equal(t, -60.0, insights.Growth)

	require.Len(t, insights.MonthlyPaid, DefaultTrendMonths)
	assert.Equal(t, 1000.0, insights.MonthlyPaid[5].Amount)
	assert.Equal(t, 500.0, insights.MonthlyPaid[4].Amount)
	assert.Equal(t, 3, insights.MonthlyCreated[5].Count)

	require.Len(t, insights.TopPartners, 2)
	assert.Equal(t, dto.CategoryAmount{ID: "p1", Category: "Uni A", Count: 2, Amount: 1300}, insights.TopPartners[0])
	assert.Equal(t, dto.CategoryAmount{ID: "p2", Category: "Uni B", Count: 3, Amount: 800}, insights.TopPartners[1])
	assert.Equal(t, dto.CategoryAmount{Category: "paid", Count: 2, Amount: 1500}, insights.ByStatus[0])
}

func TestBuildCounselorLeaderboard(t *testing.T) {
	ds := Dataset{
		Counselors: []models.Counselor{{ID: "c-b", Name: "Bob"}, {ID: "c-a", Name: "Alice"}, {ID: "c-c", Name: "Cara"}},
		Students: []models.StudentProfile{
			{ID: "s1", CounselorID: ptr("c-a")},
			{ID: "s2", CounselorID: ptr("c-a")},
			{ID: "s3", CounselorID: ptr("c-b")},
			{ID: "s4", CounselorID: ptr("c-c")},
		},
	}
	apps := []models.Application{
		{ID: "a1", StudentID: "s1", Status: models.ApplicationStatusEnrolled},
		{ID: "a2", StudentID: "s2", Status: models.ApplicationStatusEnrolled},
		{ID: "a3", StudentID: "s3", Status: models.ApplicationStatusEnrolled},
		{ID: "a4", StudentID: "s3", Status: models.ApplicationStatusEnrolled},
		{ID: "a5", StudentID: "s4", Status: models.ApplicationStatusRejected},
	}
	leads := []models.Lead{
		{ID: "l1", Status: models.LeadStatusClosedWon, CounselorID: ptr("c-b")},
		{ID: "l2", Status: models.LeadStatusNew, CounselorID: ptr("c-b")},
	}

	entries := BuildCounselorLeaderboard(ds, apps, leads, Options{Ref: ref, TopLimit: 2})

	require.Len(t, entries, 2)
	assert.Equal(t, dto.LeaderboardEntry{Rank: 1, CounselorID: "c-a", Name: "Alice", Students: 2, Applications: 2, Enrolled: 2, ConversionRate: 100}, entries[0])
	assert.Equal(t, "c-b", entries[1].CounselorID)
	assert.Equal(t, 2, entries[1].Leads)
	assert.Equal(t, 1, entries[1].LeadsWon)

	all := BuildCounselorLeaderboard(ds, apps, leads, Options{Ref: ref, TopLimit: 10})
	require.Len(t, all, 3)
	assert.Equal(t, "c-c", all[2].CounselorID)
	assert.Equal(t, 0.0, all[2].ConversionRate)
}

func TestFilters(t *testing.T) {
	from := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	apps := []models.Application{
		app("before", models.ApplicationStatusEnrolled, from.Add(-time.Second)),
		app("start", models.ApplicationStatusEnrolled, from),
		app("draft", models.ApplicationStatusDraft, from.AddDate(0, 0, 3)),
		app("end", models.ApplicationStatusEnrolled, to),
	}
	apps[2].CourseTitle = "MBA Finance"

	windowed := FilterApplications(apps, Scope{From: &from, To: &to})
	require.Len(t, windowed, 2)
	assert.Equal(t, "start", windowed[0].ID)

	byStatus := FilterApplications(apps, Scope{Statuses: []string{" ENROLLED "}})
	assert.Len(t, byStatus, 3)

	bySearch := FilterApplications(apps, Scope{Search: "mba"})
	require.Len(t, bySearch, 1)
	assert.Equal(t, "draft", bySearch[0].ID)

	leads := []models.Lead{
		{ID: "l1", FullName: "Rina Putri", Email: "rina@example.com", Status: models.LeadStatusNew, CreatedAt: from},
		{ID: "l2", FullName: "Budi", Email: "budi@example.com", Status: models.LeadStatusContacted, CreatedAt: from},
	}
	assert.Len(t, FilterLeads(leads, Scope{Search: "RINA"}), 1)
	assert.Len(t, FilterLeads(leads, Scope{Statuses: []string{"contacted"}}), 1)

	commissions := []models.Commission{
		{ID: "c1", PartnerID: "p1", Status: models.CommissionStatusPaid, CreatedAt: from},
		{ID: "c2", PartnerID: "p2", Status: models.CommissionStatusPending, CreatedAt: to},
	}
	assert.Len(t, FilterCommissions(commissions, Scope{To: &to}), 1)
	assert.Len(t, FilterCommissions(commissions, Scope{Search: "p2"}), 1)
}

func TestScopedDashboards(t *testing.T) {
	ds := Dataset{
		Counselors: []models.Counselor{{ID: "c-a", Name: "Alice"}, {ID: "c-b", Name: "Bob"}},
		Partners:   []models.Partner{{ID: "u-1", Name: "Monash", Country: "Australia"}, {ID: "u-2", Name: "Leeds"}},
		Students: []models.StudentProfile{
			{ID: "s1", CounselorID: ptr("c-a")},
			{ID: "s2", CounselorID: ptr("c-b")},
		},
		Applications: []models.Application{
			{ID: "a1", StudentID: "s1", UniversityID: "u-1", Status: models.ApplicationStatusEnrolled, CreatedAt: ref},
			{ID: "a2", StudentID: "s2", UniversityID: "u-1", Status: models.ApplicationStatusDraft, CreatedAt: ref},
			{ID: "a3", StudentID: "s2", UniversityID: "u-2", Status: models.ApplicationStatusDraft, CreatedAt: ref},
		},
		Leads: []models.Lead{
			{ID: "l1", Status: models.LeadStatusNew, CounselorID: ptr("c-a"), CreatedAt: ref},
			{ID: "l2", Status: models.LeadStatusNew, CreatedAt: ref},
		},
		Commissions: []models.Commission{
			{ID: "m1", PartnerID: "u-1", StudentID: "s1", Amount: 100, Status: models.CommissionStatusPaid, CreatedAt: ref},
			{ID: "m2", PartnerID: "u-2", StudentID: "s2", Amount: 50, Status: models.CommissionStatusPending, CreatedAt: ref},
		},
	}

	counselor := BuildCounselorDashboard(ds, "c-a", Scope{}, Options{Ref: ref})
	assert.Equal(t, "Alice", counselor.Name)
	assert.Equal(t, 1, counselor.Students)
	assert.Equal(t, 1, counselor.Applications.Total)
	assert.Equal(t, 100.0, counselor.Applications.ConversionRate)
	assert.Equal(t, 1, counselor.Leads.Total)
	assert.Equal(t, "2026-10-16", counselor.AsOf)

	partner := BuildPartnerDashboard(ds, "u-1", Scope{}, Options{Ref: ref})
	assert.Equal(t, "Monash", partner.Name)
	assert.Equal(t, "Australia", partner.Country)
	assert.Equal(t, 2, partner.Applications.Total)
	assert.Equal(t, 50.0, partner.Applications.ConversionRate)
	assert.Equal(t, 100.0, partner.Financials.TotalAmount)

	overview := BuildOverview(ds, Scope{Statuses: []string{"enrolled"}}, Options{Ref: ref})
	assert.Equal(t, 3, overview.Applications.Total)
	assert.Equal(t, 2, overview.Leads.Total)
	assert.Equal(t, 150.0, overview.Financials.TotalAmount)
	assert.Len(t, overview.Leaderboard, 2)
}
