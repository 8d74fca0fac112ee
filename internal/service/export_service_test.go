package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/storage"
)

type viewsStub struct {
	err     error
	filters []DashboardFilter
}

func (v *viewsStub) record(filter DashboardFilter) error {
	v.filters = append(v.filters, filter)
	return v.err
}

func sampleApplicationInsights() dto.ApplicationInsights {
	return dto.ApplicationInsights{
		Total:          3,
		ByStatus:       []dto.CategoryCount{{Category: "enrolled", Count: 1}, {Category: "submitted", Count: 2}},
		ByCountry:      []dto.CategoryCount{{Category: "Australia", Count: 3}},
		Monthly:        []dto.MonthlyPoint{{Month: "2024-05", Count: 3}},
		ConversionRate: 33.3,
		DeadlineRisk: dto.DeadlineRiskSection{
			Counts: []dto.DeadlineCount{{Status: "urgent", Count: 1}},
			AtRisk: []dto.DeadlineRiskItem{{ApplicationID: "app-1", StudentName: "Dewi", UniversityID: "uni-1", ApplicationStatus: "offer_received", DeadlineStatus: "urgent", Deadline: "2024-06-03", DaysUntil: 2}},
		},
	}
}

func (v *viewsStub) Overview(_ context.Context, filter DashboardFilter) (*dto.OverviewResponse, bool, error) {
	if err := v.record(filter); err != nil {
		return nil, false, err
	}
	return &dto.OverviewResponse{
		AsOf:         "2024-06-01",
		Applications: sampleApplicationInsights(),
		Leads:        dto.LeadInsights{Total: 4, ConversionRate: 25},
		Financials:   dto.FinancialInsights{Total: 2, TotalAmount: 1500, PaidAmount: 500, CollectionRate: 33.3},
		Leaderboard:  []dto.LeaderboardEntry{{Rank: 1, CounselorID: "c-1", Name: "Rina", Enrolled: 1}},
	}, false, nil
}

func (v *viewsStub) Applications(_ context.Context, filter DashboardFilter) (*dto.ApplicationsResponse, bool, error) {
	if err := v.record(filter); err != nil {
		return nil, false, err
	}
	return &dto.ApplicationsResponse{AsOf: "2024-06-01", ApplicationInsights: sampleApplicationInsights()}, false, nil
}

func (v *viewsStub) Leads(_ context.Context, filter DashboardFilter) (*dto.LeadsResponse, bool, error) {
	if err := v.record(filter); err != nil {
		return nil, false, err
	}
	return &dto.LeadsResponse{AsOf: "2024-06-01", LeadInsights: dto.LeadInsights{
		Total:  4,
		Funnel: []dto.FunnelStage{{Stage: "new", Count: 4, Rate: 100}, {Stage: "closed_won", Count: 1, Rate: 25}},
	}}, false, nil
}

func (v *viewsStub) Financials(_ context.Context, filter DashboardFilter) (*dto.FinancialsResponse, bool, error) {
	if err := v.record(filter); err != nil {
		return nil, false, err
	}
	return &dto.FinancialsResponse{AsOf: "2024-06-01", FinancialInsights: dto.FinancialInsights{
		Total:       2,
		TotalAmount: 1500,
		TopPartners: []dto.CategoryAmount{{Category: "Monash", Count: 2, Amount: 1500}},
	}}, false, nil
}

func (v *viewsStub) Leaderboard(_ context.Context, filter DashboardFilter) (*dto.LeaderboardResponse, bool, error) {
	if err := v.record(filter); err != nil {
		return nil, false, err
	}
	return &dto.LeaderboardResponse{AsOf: "2024-06-01", Entries: []dto.LeaderboardEntry{
		{Rank: 1, CounselorID: "c-1", Name: "Rina", Enrolled: 3, ConversionRate: 60},
		{Rank: 2, CounselorID: "c-2", Enrolled: 1, ConversionRate: 20},
	}}, false, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *viewsStub, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	views := &viewsStub{}
	svc := NewExportService(ExportServiceParams{
		Views:   views,
		Storage: store,
		Signer:  storage.NewSignedURLSigner("secret", time.Hour),
		Config:  ExportConfig{APIPrefix: "/api/v1"},
	})
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC) }
	return svc, views, store
}

func readObject(t *testing.T, store storage.Store, name string) string {
	t.Helper()
	rc, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestExportServiceGenerateLeaderboardCSV(t *testing.T) {
	svc, views, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:   "job-1",
		Type: models.ReportTypeLeaderboard,
		Params: models.ReportJobParams{
			AsOf:   "2024-06-01",
			From:   "2024-01-01",
			To:     "2024-05-31",
			Format: models.ReportFormatCSV,
		},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "leaderboard_20240601_20240601_093000.csv", result.ObjectName)
	assert.Equal(t, "/api/v1/export/"+result.Token, result.URL)

	body := readObject(t, store, result.ObjectName)
	assert.Contains(t, body, "Rank,Counselor,Students")
	assert.Contains(t, body, "1,Rina,0,0,0,0,3,60.0")
	assert.Contains(t, body, "2,c-2,")

	require.Len(t, views.filters, 1)
	filter := views.filters[0]
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, "2024-06-01", filter.To.Format(dateLayout), "to bound is exclusive")
	assert.Equal(t, "2024-06-01", filter.AsOf.Format(dateLayout))
}

func TestExportServiceGenerateOverviewPDF(t *testing.T) {
	svc, _, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeOverview,
		Params: models.ReportJobParams{AsOf: "2024-06-01", Format: models.ReportFormatPDF},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.ObjectName, ".pdf"))
	assert.True(t, strings.HasPrefix(readObject(t, store, result.ObjectName), "%PDF"))
}

func TestExportServiceGenerateApplicationsSections(t *testing.T) {
	svc, _, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeApplications,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "applications_latest_20240601_093000.csv", result.ObjectName)

	body := readObject(t, store, result.ObjectName)
	assert.Contains(t, body, "Applications by status")
	assert.Contains(t, body, "enrolled,1")
	assert.Contains(t, body, "app-1,Dewi,uni-1,offer_received,2024-06-03,urgent,2")
}

func TestExportServiceGeneratePropagatesViewError(t *testing.T) {
	svc, views, _ := newExportServiceForTest(t)
	views.err = errors.New("db down")
	_, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-4",
		Type:   models.ReportTypeLeads,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	})
	require.Error(t, err)
}

func TestExportServiceGenerateRejectsUnknownType(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-5",
		Type:   models.ReportType("invoices"),
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	})
	require.Error(t, err)
}

func TestExportServiceGenerateRejectsUnknownFormat(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	_, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-6",
		Type:   models.ReportTypeFinancials,
		Params: models.ReportJobParams{Format: models.ReportFormat("xlsx")},
	})
	require.Error(t, err)
}

func TestExportServiceTokenRoundTrip(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)
	result, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-7",
		Type:   models.ReportTypeFinancials,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	})
	require.NoError(t, err)

	jobID, objectName, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-7", jobID)
	assert.Equal(t, result.ObjectName, objectName)

	require.NoError(t, svc.Delete(context.Background(), objectName))
	_, err = svc.Open(context.Background(), objectName)
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}
