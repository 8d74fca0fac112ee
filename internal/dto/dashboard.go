package dto

// CategoryCount is one entry of a grouped count.
type CategoryCount struct {
	ID       string `json:"id,omitempty"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryAmount is one entry of a grouped sum.
type CategoryAmount struct {
	ID       string  `json:"id,omitempty"`
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Amount   float64 `json:"amount"`
}

// MonthlyPoint is one month of a trailing series.
type MonthlyPoint struct {
	Month  string  `json:"month"`
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// DeadlineCount counts applications per deadline status.
type DeadlineCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DeadlineRiskItem is an application whose offer deadline needs attention.
type DeadlineRiskItem struct {
	ApplicationID     string `json:"applicationId"`
	StudentID         string `json:"studentId"`
	StudentName       string `json:"studentName,omitempty"`
	UniversityID      string `json:"universityId"`
	UniversityName    string `json:"universityName,omitempty"`
	CourseTitle       string `json:"courseTitle,omitempty"`
	ApplicationStatus string `json:"applicationStatus"`
	DeadlineStatus    string `json:"deadlineStatus"`
	Deadline          string `json:"deadline"`
	DaysUntil         int    `json:"daysUntil"`
}

// DeadlineRiskSection groups deadline classification results.
type DeadlineRiskSection struct {
	Counts []DeadlineCount    `json:"counts"`
	AtRisk []DeadlineRiskItem `json:"atRisk"`
}

// ApplicationInsights is the application pipeline view-model.
type ApplicationInsights struct {
	Total            int                 `json:"total"`
	Malformed        int                 `json:"malformed"`
	ByStatus         []CategoryCount     `json:"byStatus"`
	ByCountry        []CategoryCount     `json:"byCountry"`
	TopUniversities  []CategoryCount     `json:"topUniversities"`
	TopCourses       []CategoryCount     `json:"topCourses"`
	Monthly          []MonthlyPoint      `json:"monthly"`
	ConversionRate   float64             `json:"conversionRate"`
	OfferRate        float64             `json:"offerRate"`
	Growth           float64             `json:"growth"`
	TuitionTotal     float64             `json:"tuitionTotal"`
	ScholarshipTotal float64             `json:"scholarshipTotal"`
	DeadlineRisk     DeadlineRiskSection `json:"deadlineRisk"`
}

// FunnelStage reports how many leads reached a pipeline stage.
type FunnelStage struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Rate  float64 `json:"rate"`
}

// LeadInsights is the lead funnel view-model.
type LeadInsights struct {
	Total          int             `json:"total"`
	Malformed      int             `json:"malformed"`
	ByStatus       []CategoryCount `json:"byStatus"`
	Funnel         []FunnelStage   `json:"funnel"`
	BySource       []CategoryCount `json:"bySource"`
	ByPriority     []CategoryCount `json:"byPriority"`
	Monthly        []MonthlyPoint  `json:"monthly"`
	ConversionRate float64         `json:"conversionRate"`
	Growth         float64         `json:"growth"`
}

// FinancialInsights is the commission rollup view-model.
type FinancialInsights struct {
	Total          int              `json:"total"`
	Malformed      int              `json:"malformed"`
	ByStatus       []CategoryAmount `json:"byStatus"`
	TotalAmount    float64          `json:"totalAmount"`
	PaidAmount     float64          `json:"paidAmount"`
	ApprovedAmount float64          `json:"approvedAmount"`
	PendingAmount  float64          `json:"pendingAmount"`
	CollectionRate float64          `json:"collectionRate"`
	MonthlyPaid    []MonthlyPoint   `json:"monthlyPaid"`
	MonthlyCreated []MonthlyPoint   `json:"monthlyCreated"`
	TopPartners    []CategoryAmount `json:"topPartners"`
	Growth         float64          `json:"growth"`
}

// LeaderboardEntry ranks a counselor by enrolments.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	CounselorID    string  `json:"counselorId"`
	Name           string  `json:"name"`
	Students       int     `json:"students"`
	Leads          int     `json:"leads"`
	LeadsWon       int     `json:"leadsWon"`
	Applications   int     `json:"applications"`
	Enrolled       int     `json:"enrolled"`
	ConversionRate float64 `json:"conversionRate"`
}

// OverviewResponse is the admin landing dashboard.
type OverviewResponse struct {
	AsOf         string              `json:"asOf"`
	Applications ApplicationInsights `json:"applications"`
	Leads        LeadInsights        `json:"leads"`
	Financials   FinancialInsights   `json:"financials"`
	Leaderboard  []LeaderboardEntry  `json:"leaderboard"`
}

// ApplicationsResponse wraps the application analytics screen.
type ApplicationsResponse struct {
	AsOf string `json:"asOf"`
	ApplicationInsights
}

// LeadsResponse wraps the lead analytics screen.
type LeadsResponse struct {
	AsOf string `json:"asOf"`
	LeadInsights
}

// FinancialsResponse wraps the commission analytics screen.
type FinancialsResponse struct {
	AsOf string `json:"asOf"`
	FinancialInsights
}

// LeaderboardResponse wraps the counselor ranking.
type LeaderboardResponse struct {
	AsOf    string             `json:"asOf"`
	Entries []LeaderboardEntry `json:"entries"`
}

// CounselorDashboardResponse is scoped to a single counselor's students and leads.
type CounselorDashboardResponse struct {
	AsOf         string              `json:"asOf"`
	CounselorID  string              `json:"counselorId"`
	Name         string              `json:"name"`
	Students     int                 `json:"students"`
	Applications ApplicationInsights `json:"applications"`
	Leads        LeadInsights        `json:"leads"`
}

// PartnerDashboardResponse is scoped to a single partner university.
type PartnerDashboardResponse struct {
	AsOf         string              `json:"asOf"`
	PartnerID    string              `json:"partnerId"`
	Name         string              `json:"name"`
	Country      string              `json:"country"`
	Applications ApplicationInsights `json:"applications"`
	Financials   FinancialInsights   `json:"financials"`
}
