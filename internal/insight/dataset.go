// Package insight composes aggregator primitives into dashboard view-models.
// Every function is pure: the reference time is passed in through Options and
// the input records are never modified.
package insight

import (
	"strings"
	"time"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/aggregator"
)

const (
	DefaultTrendMonths = 6
	DefaultTopLimit    = 5
	DefaultRiskLimit   = 10
)

// Dataset is the raw record set a dashboard is computed from.
type Dataset struct {
	Applications []models.Application
	Leads        []models.Lead
	Commissions  []models.Commission
	Students     []models.StudentProfile
	Counselors   []models.Counselor
	Partners     []models.Partner
}

// Scope narrows the records in view. From is inclusive and To is exclusive.
type Scope struct {
	From     *time.Time
	To       *time.Time
	Statuses []string
	Search   string
}

// WithoutStatuses returns a copy of the scope with the status filter removed.
func (s Scope) WithoutStatuses() Scope {
	s.Statuses = nil
	return s
}

// Contains reports whether t lies within the time window.
func (s Scope) Contains(t time.Time) bool {
	if s.From != nil && t.Before(*s.From) {
		return false
	}
	if s.To != nil && !t.Before(*s.To) {
		return false
	}
	return true
}

func (s Scope) matchesStatus(status string) bool {
	if len(s.Statuses) == 0 {
		return true
	}
	status = strings.TrimSpace(status)
	for _, candidate := range s.Statuses {
		if strings.EqualFold(strings.TrimSpace(candidate), status) {
			return true
		}
	}
	return false
}

func (s Scope) matchesSearch(fields ...string) bool {
	term := strings.ToLower(strings.TrimSpace(s.Search))
	if term == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Options tune a build. Ref is mandatory.
type Options struct {
	Ref         time.Time
	TrendMonths int
	TopLimit    int
	RiskLimit   int
}

func (o Options) normalise() Options {
	if o.Ref.IsZero() {
		panic("insight: Options.Ref is required")
	}
	if o.TrendMonths <= 0 {
		o.TrendMonths = DefaultTrendMonths
	}
	if o.TopLimit <= 0 {
		o.TopLimit = DefaultTopLimit
	}
	if o.RiskLimit <= 0 {
		o.RiskLimit = DefaultRiskLimit
	}
	return o
}

// FilterApplications returns the applications inside scope.
func FilterApplications(records []models.Application, scope Scope) []models.Application {
	result := make([]models.Application, 0, len(records))
	for _, app := range records {
		if !scope.Contains(app.CreatedAt) || !scope.matchesStatus(string(app.Status)) {
			continue
		}
		if !scope.matchesSearch(app.ID, app.StudentID, app.UniversityID, app.CourseID, app.CourseTitle) {
			continue
		}
		result = append(result, app)
	}
	return result
}

// FilterLeads returns the leads inside scope.
func FilterLeads(records []models.Lead, scope Scope) []models.Lead {
	result := make([]models.Lead, 0, len(records))
	for _, lead := range records {
		if !scope.Contains(lead.CreatedAt) || !scope.matchesStatus(string(lead.Status)) {
			continue
		}
		if !scope.matchesSearch(lead.ID, lead.FullName, lead.Email, lead.Source) {
			continue
		}
		result = append(result, lead)
	}
	return result
}

// FilterCommissions returns the commissions inside scope.
func FilterCommissions(records []models.Commission, scope Scope) []models.Commission {
	result := make([]models.Commission, 0, len(records))
	for _, commission := range records {
		if !scope.Contains(commission.CreatedAt) || !scope.matchesStatus(string(commission.Status)) {
			continue
		}
		if !scope.matchesSearch(commission.ID, commission.PartnerID, commission.StudentID) {
			continue
		}
		result = append(result, commission)
	}
	return result
}

// ForCounselor restricts the dataset to the students, applications and leads owned by counselorID.
func ForCounselor(ds Dataset, counselorID string) Dataset {
	scoped := Dataset{Partners: ds.Partners}
	owned := make(map[string]struct{})
	for _, student := range ds.Students {
		if student.CounselorID != nil && *student.CounselorID == counselorID {
			owned[student.ID] = struct{}{}
			scoped.Students = append(scoped.Students, student)
		}
	}
	for _, counselor := range ds.Counselors {
		if counselor.ID == counselorID {
			scoped.Counselors = append(scoped.Counselors, counselor)
		}
	}
	for _, app := range ds.Applications {
		if _, ok := owned[app.StudentID]; ok {
			scoped.Applications = append(scoped.Applications, app)
		}
	}
	for _, lead := range ds.Leads {
		if lead.CounselorID != nil && *lead.CounselorID == counselorID {
			scoped.Leads = append(scoped.Leads, lead)
		}
	}
	for _, commission := range ds.Commissions {
		if _, ok := owned[commission.StudentID]; ok {
			scoped.Commissions = append(scoped.Commissions, commission)
		}
	}
	return scoped
}

// ForPartner restricts the dataset to the applications and commissions of partnerID.
func ForPartner(ds Dataset, partnerID string) Dataset {
	scoped := Dataset{Students: ds.Students, Counselors: ds.Counselors}
	for _, partner := range ds.Partners {
		if partner.ID == partnerID {
			scoped.Partners = append(scoped.Partners, partner)
		}
	}
	for _, app := range ds.Applications {
		if app.UniversityID == partnerID {
			scoped.Applications = append(scoped.Applications, app)
		}
	}
	for _, commission := range ds.Commissions {
		if commission.PartnerID == partnerID {
			scoped.Commissions = append(scoped.Commissions, commission)
		}
	}
	return scoped
}

type directory struct {
	partners   map[string]models.Partner
	students   map[string]models.StudentProfile
	counselors map[string]models.Counselor
}

func newDirectory(ds Dataset) directory {
	dir := directory{
		partners:   make(map[string]models.Partner, len(ds.Partners)),
		students:   make(map[string]models.StudentProfile, len(ds.Students)),
		counselors: make(map[string]models.Counselor, len(ds.Counselors)),
	}
	for _, partner := range ds.Partners {
		dir.partners[partner.ID] = partner
	}
	for _, student := range ds.Students {
		dir.students[student.ID] = student
	}
	for _, counselor := range ds.Counselors {
		dir.counselors[counselor.ID] = counselor
	}
	return dir
}

func (d directory) partnerName(id string) string {
	if partner, ok := d.partners[id]; ok && strings.TrimSpace(partner.Name) != "" {
		return partner.Name
	}
	return id
}

// partnerCounts labels categories keyed by partner id with the partner name.
func (d directory) partnerCounts(categories []aggregator.Category) []dto.CategoryCount {
	result := toCategoryCounts(categories)
	for i := range result {
		result[i].ID, result[i].Category = d.partnerLabel(result[i].Category)
	}
	return result
}

func (d directory) partnerAmounts(categories []aggregator.Category, counts aggregator.Tally) []dto.CategoryAmount {
	result := toCategoryAmounts(categories, counts)
	for i := range result {
		result[i].ID, result[i].Category = d.partnerLabel(result[i].Category)
	}
	return result
}

func (d directory) partnerLabel(key string) (id, name string) {
	if key == aggregator.UnknownCategory {
		return "", key
	}
	return key, d.partnerName(key)
}

func (d directory) partnerCountry(id string) string {
	return d.partners[id].Country
}

func (d directory) studentName(id string) string {
	return d.students[id].FullName
}

func (d directory) counselorOf(studentID string) string {
	student, ok := d.students[studentID]
	if !ok || student.CounselorID == nil {
		return ""
	}
	return *student.CounselorID
}
