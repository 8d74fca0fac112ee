package insight

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

const deadlineLayout = "2006-01-02"

// BuildApplicationInsights reduces already-filtered applications into the pipeline view-model.
// Conversion counts enrolled applications against every well-formed application in view.
// Offer rate counts every status holding or having converted a university offer.
func BuildApplicationInsights(ds Dataset, apps []models.Application, opts Options) dto.ApplicationInsights {
	opts = opts.normalise()
	dir := newDirectory(ds)

	byStatus := zeroFill(aggregator.CountByCategory(apps, applicationStatusKey), applicationStatusKeys()...)
	byCountry := aggregator.CountByCategory(apps, func(app models.Application) string {
		return dir.partnerCountry(app.UniversityID)
	})
	byUniversity := aggregator.CountByCategory(apps, func(app models.Application) string {
		return app.UniversityID
	})
	byCourse := aggregator.CountByCategory(apps, func(app models.Application) string {
		if strings.TrimSpace(app.CourseTitle) != "" {
			return app.CourseTitle
		}
		return app.CourseID
	})

	valid := wellFormed(apps)
	monthly := aggregator.BucketByMonth(valid, func(app models.Application) *time.Time {
		created := app.CreatedAt
		return &created
	}, nil, opts.TrendMonths, opts.Ref)

	total := float64(byStatus.Records)
	var offers int
	var tuition, scholarship float64
	for _, app := range valid {
		if app.Status.HasOffer() {
			offers++
		}
		if app.TuitionFee != nil {
			tuition += *app.TuitionFee
		}
		if app.ScholarshipAmount != nil {
			scholarship += *app.ScholarshipAmount
		}
	}
	growth := monthOverMonth(valid, func(app models.Application) time.Time { return app.CreatedAt }, one[models.Application], opts.Ref)

	return dto.ApplicationInsights{
		Total:            byStatus.Records,
		Malformed:        byStatus.Malformed,
		ByStatus:         toCategoryCounts(byStatus.Sorted()),
		ByCountry:        toCategoryCounts(byCountry.Sorted()),
		TopUniversities:  dir.partnerCounts(byUniversity.Top(opts.TopLimit)),
		TopCourses:       toCategoryCounts(byCourse.Top(opts.TopLimit)),
		Monthly:          toMonthlyPoints(monthly),
		ConversionRate:   aggregator.Round1(aggregator.ComputeRate(byStatus.Get(string(models.ApplicationStatusEnrolled)), total)),
		OfferRate:        aggregator.Round1(aggregator.ComputeRate(float64(offers), total)),
		Growth:           aggregator.Round1(growth),
		TuitionTotal:     aggregator.Round1(tuition),
		ScholarshipTotal: aggregator.Round1(scholarship),
		DeadlineRisk:     buildDeadlineRisk(dir, valid, opts),
	}
}

// buildDeadlineRisk classifies every open application. Terminal applications no
// longer have a deadline to meet and are left out.
func buildDeadlineRisk(dir directory, apps []models.Application, opts Options) dto.DeadlineRiskSection {
	counts := make(map[aggregator.DeadlineStatus]int, len(aggregator.DeadlineStatuses))
	type risk struct {
		app      models.Application
		status   aggregator.DeadlineStatus
		severity int
		days     int
	}
	var risks []risk
	for _, app := range apps {
		if app.Status.Terminal() {
			continue
		}
		status := aggregator.ClassifyByDeadline(opts.Ref, app.OfferDeadline)
		counts[status]++
		switch status {
		case aggregator.DeadlineOverdue, aggregator.DeadlineCritical, aggregator.DeadlineUpcoming:
			risks = append(risks, risk{
				app:      app,
				status:   status,
				severity: status.Severity(),
				days:     aggregator.DaysUntil(opts.Ref, *app.OfferDeadline),
			})
		}
	}

	sort.Slice(risks, func(i, j int) bool {
		if risks[i].severity != risks[j].severity {
			return risks[i].severity < risks[j].severity
		}
		if risks[i].days != risks[j].days {
			return risks[i].days < risks[j].days
		}
		return risks[i].app.ID < risks[j].app.ID
	})
	if len(risks) > opts.RiskLimit {
		risks = risks[:opts.RiskLimit]
	}

	section := dto.DeadlineRiskSection{
		Counts: make([]dto.DeadlineCount, 0, len(aggregator.DeadlineStatuses)),
		AtRisk: make([]dto.DeadlineRiskItem, 0, len(risks)),
	}
	for _, status := range aggregator.DeadlineStatuses {
		section.Counts = append(section.Counts, dto.DeadlineCount{Status: string(status), Count: counts[status]})
	}
	for _, r := range risks {
		section.AtRisk = append(section.AtRisk, dto.DeadlineRiskItem{
			ApplicationID:     r.app.ID,
			StudentID:         r.app.StudentID,
			StudentName:       dir.studentName(r.app.StudentID),
			UniversityID:      r.app.UniversityID,
			UniversityName:    dir.partners[r.app.UniversityID].Name,
			CourseTitle:       r.app.CourseTitle,
			ApplicationStatus: applicationStatusKey(r.app),
			DeadlineStatus:    string(r.status),
			Deadline:          r.app.OfferDeadline.Format(deadlineLayout),
			DaysUntil:         r.days,
		})
	}
	return section
}
