package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/export"
	"github.com/noah-isme/edu-crm-api/pkg/storage"
)

type dashboardViews interface {
	Overview(ctx context.Context, filter DashboardFilter) (*dto.OverviewResponse, bool, error)
	Applications(ctx context.Context, filter DashboardFilter) (*dto.ApplicationsResponse, bool, error)
	Leads(ctx context.Context, filter DashboardFilter) (*dto.LeadsResponse, bool, error)
	Financials(ctx context.Context, filter DashboardFilter) (*dto.FinancialsResponse, bool, error)
	Leaderboard(ctx context.Context, filter DashboardFilter) (*dto.LeaderboardResponse, bool, error)
}

type csvRenderer interface {
	Render(sections ...export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, sections ...export.Dataset) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	Location  *time.Location
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	ObjectName string
	Token      string
	URL        string
	Format     models.ReportFormat
	ExpiresAt  time.Time
}

// ExportService renders dashboard view-models into downloadable files.
type ExportService struct {
	views   dashboardViews
	storage storage.Store
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	now     func() time.Time
	cfg     ExportConfig
}

// ExportServiceParams groups constructor dependencies. Nil renderers fall back
// to the default CSV and PDF exporters.
type ExportServiceParams struct {
	Views   dashboardViews
	Storage storage.Store
	Signer  *storage.SignedURLSigner
	CSV     csvRenderer
	PDF     pdfRenderer
	Logger  *zap.Logger
	Config  ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	cfg := params.Config
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ExportService{
		views:   params.Views,
		storage: params.Storage,
		csv:     csv,
		pdf:     pdf,
		signer:  params.Signer,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Generate builds the job's report, stores the rendered file and signs a
// download URL for it.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	filter, err := s.filterFor(job.Params)
	if err != nil {
		return nil, err
	}
	sections, title, err := s.buildSections(ctx, job.Type, filter)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(sections...)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(title, sections...)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	objectName, err := s.storage.Save(ctx, s.buildFilename(job, filter), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, objectName)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Debug("report rendered",
		zap.String("job_id", job.ID),
		zap.String("object", objectName),
		zap.Int("bytes", len(payload)),
	)
	return &ExportResult{
		ObjectName: objectName,
		Token:      token,
		URL:        fmt.Sprintf("%s/export/%s", prefix, token),
		Format:     job.Params.Format,
		ExpiresAt:  expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, objectName string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a reader for a stored export.
func (s *ExportService) Open(ctx context.Context, objectName string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, objectName)
}

// Delete removes a stored export.
func (s *ExportService) Delete(ctx context.Context, objectName string) error {
	return s.storage.Delete(ctx, objectName)
}

// Cleanup removes exports older than ttl, defaulting to the signer TTL.
func (s *ExportService) Cleanup(ctx context.Context, ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.signer.TTL()
	}
	return s.storage.CleanupOlderThan(ctx, ttl)
}

func (s *ExportService) filterFor(params models.ReportJobParams) (DashboardFilter, error) {
	filter := DashboardFilter{Statuses: params.Statuses, Search: params.Search}
	from, to, err := ParseDateRange(params.From, params.To, s.cfg.Location)
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	if params.AsOf != "" {
		asOf, err := time.ParseInLocation(dateLayout, params.AsOf, s.cfg.Location)
		if err != nil {
			return filter, fmt.Errorf("parse asOf %q: %w", params.AsOf, err)
		}
		filter.AsOf = asOf
	}
	return filter, nil
}

func (s *ExportService) buildFilename(job *models.ReportJob, filter DashboardFilter) string {
	asOf := "latest"
	if !filter.AsOf.IsZero() {
		asOf = filter.AsOf.Format("20060102")
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), asOf, timestamp, job.Params.Format)
}

func (s *ExportService) buildSections(ctx context.Context, reportType models.ReportType, filter DashboardFilter) ([]export.Dataset, string, error) {
	if s.views == nil {
		return nil, "", fmt.Errorf("dashboard views not configured")
	}
	switch reportType {
	case models.ReportTypeOverview:
		view, _, err := s.views.Overview(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		sections := []export.Dataset{overviewSummary(view)}
		sections = append(sections, applicationSections(view.Applications)...)
		sections = append(sections, leadSections(view.Leads)...)
		sections = append(sections, financialSections(view.Financials)...)
		sections = append(sections, leaderboardSection(view.Leaderboard))
		return sections, "CRM Overview " + view.AsOf, nil
	case models.ReportTypeApplications:
		view, _, err := s.views.Applications(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		return applicationSections(view.ApplicationInsights), "Applications Report " + view.AsOf, nil
	case models.ReportTypeLeads:
		view, _, err := s.views.Leads(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		return leadSections(view.LeadInsights), "Leads Report " + view.AsOf, nil
	case models.ReportTypeFinancials:
		view, _, err := s.views.Financials(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		return financialSections(view.FinancialInsights), "Commission Report " + view.AsOf, nil
	case models.ReportTypeLeaderboard:
		view, _, err := s.views.Leaderboard(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		return []export.Dataset{leaderboardSection(view.Entries)}, "Counselor Leaderboard " + view.AsOf, nil
	default:
		return nil, "", fmt.Errorf("unsupported report type %s", reportType)
	}
}

func overviewSummary(view *dto.OverviewResponse) export.Dataset {
	ds := export.Dataset{Title: "Summary", Headers: []string{"Metric", "Value"}}
	ds.AddRow("As of", view.AsOf)
	ds.AddRow("Applications", strconv.Itoa(view.Applications.Total))
	ds.AddRow("Application conversion (%)", formatFloat(view.Applications.ConversionRate))
	ds.AddRow("Leads", strconv.Itoa(view.Leads.Total))
	ds.AddRow("Lead conversion (%)", formatFloat(view.Leads.ConversionRate))
	ds.AddRow("Commission total", formatFloat(view.Financials.TotalAmount))
	ds.AddRow("Collection rate (%)", formatFloat(view.Financials.CollectionRate))
	return ds
}

func applicationSections(in dto.ApplicationInsights) []export.Dataset {
	summary := export.Dataset{Title: "Applications", Headers: []string{"Metric", "Value"}}
	summary.AddRow("Total", strconv.Itoa(in.Total))
	summary.AddRow("Malformed", strconv.Itoa(in.Malformed))
	summary.AddRow("Conversion rate (%)", formatFloat(in.ConversionRate))
	summary.AddRow("Offer rate (%)", formatFloat(in.OfferRate))
	summary.AddRow("Growth (%)", formatFloat(in.Growth))
	summary.AddRow("Tuition total", formatFloat(in.TuitionTotal))
	summary.AddRow("Scholarship total", formatFloat(in.ScholarshipTotal))

	risk := export.Dataset{
		Title:   "Deadline risk",
		Headers: []string{"Application", "Student", "University", "Status", "Deadline", "Deadline Status", "Days"},
	}
	for _, item := range in.DeadlineRisk.AtRisk {
		risk.AddRow(item.ApplicationID, firstNonEmpty(item.StudentName, item.StudentID),
			firstNonEmpty(item.UniversityName, item.UniversityID), item.ApplicationStatus,
			item.Deadline, item.DeadlineStatus, strconv.Itoa(item.DaysUntil))
	}

	return []export.Dataset{
		summary,
		countSection("Applications by status", "Status", in.ByStatus),
		countSection("Applications by country", "Country", in.ByCountry),
		countSection("Top universities", "University", in.TopUniversities),
		countSection("Top courses", "Course", in.TopCourses),
		monthlySection("Applications per month", in.Monthly),
		risk,
	}
}

func leadSections(in dto.LeadInsights) []export.Dataset {
	summary := export.Dataset{Title: "Leads", Headers: []string{"Metric", "Value"}}
	summary.AddRow("Total", strconv.Itoa(in.Total))
	summary.AddRow("Malformed", strconv.Itoa(in.Malformed))
	summary.AddRow("Conversion rate (%)", formatFloat(in.ConversionRate))
	summary.AddRow("Growth (%)", formatFloat(in.Growth))

	funnel := export.Dataset{Title: "Lead funnel", Headers: []string{"Stage", "Count", "Rate (%)"}}
	for _, stage := range in.Funnel {
		funnel.AddRow(stage.Stage, strconv.Itoa(stage.Count), formatFloat(stage.Rate))
	}

	return []export.Dataset{
		summary,
		funnel,
		countSection("Leads by status", "Status", in.ByStatus),
		countSection("Leads by source", "Source", in.BySource),
		countSection("Leads by priority", "Priority", in.ByPriority),
		monthlySection("Leads per month", in.Monthly),
	}
}

func financialSections(in dto.FinancialInsights) []export.Dataset {
	summary := export.Dataset{Title: "Commissions", Headers: []string{"Metric", "Value"}}
	summary.AddRow("Records", strconv.Itoa(in.Total))
	summary.AddRow("Malformed", strconv.Itoa(in.Malformed))
	summary.AddRow("Total amount", formatFloat(in.TotalAmount))
	summary.AddRow("Paid amount", formatFloat(in.PaidAmount))
	summary.AddRow("Approved amount", formatFloat(in.ApprovedAmount))
	summary.AddRow("Pending amount", formatFloat(in.PendingAmount))
	summary.AddRow("Collection rate (%)", formatFloat(in.CollectionRate))
	summary.AddRow("Growth (%)", formatFloat(in.Growth))

	return []export.Dataset{
		summary,
		amountSection("Commissions by status", "Status", in.ByStatus),
		amountSection("Top partners", "Partner", in.TopPartners),
		monthlySection("Paid per month", in.MonthlyPaid),
		monthlySection("Created per month", in.MonthlyCreated),
	}
}

func leaderboardSection(entries []dto.LeaderboardEntry) export.Dataset {
	ds := export.Dataset{
		Title:   "Counselor leaderboard",
		Headers: []string{"Rank", "Counselor", "Students", "Leads", "Won", "Applications", "Enrolled", "Conversion (%)"},
	}
	for _, entry := range entries {
		ds.AddRow(strconv.Itoa(entry.Rank), firstNonEmpty(entry.Name, entry.CounselorID),
			strconv.Itoa(entry.Students), strconv.Itoa(entry.Leads), strconv.Itoa(entry.LeadsWon),
			strconv.Itoa(entry.Applications), strconv.Itoa(entry.Enrolled), formatFloat(entry.ConversionRate))
	}
	return ds
}

func countSection(title, label string, counts []dto.CategoryCount) export.Dataset {
	ds := export.Dataset{Title: title, Headers: []string{label, "Count"}}
	for _, c := range counts {
		ds.AddRow(c.Category, strconv.Itoa(c.Count))
	}
	return ds
}

func amountSection(title, label string, amounts []dto.CategoryAmount) export.Dataset {
	ds := export.Dataset{Title: title, Headers: []string{label, "Count", "Amount"}}
	for _, a := range amounts {
		ds.AddRow(a.Category, strconv.Itoa(a.Count), formatFloat(a.Amount))
	}
	return ds
}

func monthlySection(title string, points []dto.MonthlyPoint) export.Dataset {
	ds := export.Dataset{Title: title, Headers: []string{"Month", "Count", "Amount"}}
	for _, p := range points {
		ds.AddRow(p.Month, strconv.Itoa(p.Count), formatFloat(p.Amount))
	}
	return ds
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
