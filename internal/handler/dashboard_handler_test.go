package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/service"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type fakeDashboardSrv struct {
	hit           bool
	err           error
	lastFilter    service.DashboardFilter
	lastCounselor string
	lastPartner   string
}

func (f *fakeDashboardSrv) Overview(_ context.Context, filter service.DashboardFilter) (*dto.OverviewResponse, bool, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, false, f.err
	}
	return &dto.OverviewResponse{AsOf: "2024-06-15", Applications: dto.ApplicationInsights{Total: 7}}, f.hit, nil
}

func (f *fakeDashboardSrv) Applications(_ context.Context, filter service.DashboardFilter) (*dto.ApplicationsResponse, bool, error) {
	f.lastFilter = filter
	return &dto.ApplicationsResponse{AsOf: "2024-06-15"}, f.hit, f.err
}

func (f *fakeDashboardSrv) Leads(_ context.Context, filter service.DashboardFilter) (*dto.LeadsResponse, bool, error) {
	f.lastFilter = filter
	return &dto.LeadsResponse{AsOf: "2024-06-15"}, f.hit, f.err
}

func (f *fakeDashboardSrv) Financials(_ context.Context, filter service.DashboardFilter) (*dto.FinancialsResponse, bool, error) {
	f.lastFilter = filter
	return &dto.FinancialsResponse{AsOf: "2024-06-15"}, f.hit, f.err
}

func (f *fakeDashboardSrv) Leaderboard(_ context.Context, filter service.DashboardFilter) (*dto.LeaderboardResponse, bool, error) {
	f.lastFilter = filter
	return &dto.LeaderboardResponse{AsOf: "2024-06-15"}, f.hit, f.err
}

func (f *fakeDashboardSrv) Counselor(_ context.Context, counselorID string, filter service.DashboardFilter) (*dto.CounselorDashboardResponse, bool, error) {
	f.lastCounselor = counselorID
	f.lastFilter = filter
	return &dto.CounselorDashboardResponse{CounselorID: counselorID}, f.hit, f.err
}

func (f *fakeDashboardSrv) Partner(_ context.Context, partnerID string, filter service.DashboardFilter) (*dto.PartnerDashboardResponse, bool, error) {
	f.lastPartner = partnerID
	f.lastFilter = filter
	return &dto.PartnerDashboardResponse{PartnerID: partnerID}, f.hit, f.err
}

func newDashboardContext(target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func decodeMeta(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body struct {
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Meta
}

func TestDashboardHandlerOverviewParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{hit: true}
	wib := time.FixedZone("WIB", 7*3600)
	handler := NewDashboardHandler(srv, wib)

	c, rec := newDashboardContext("/dashboard/overview?from=2024-01-01&to=2024-01-31&status=enrolled,%20rejected&status=draft&search=%20monash%20&asOf=2024-02-01", nil)
	handler.Overview(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMeta(t, rec)["cache_hit"])

	filter := srv.lastFilter
	require.NotNil(t, filter.From)
	require.NotNil(t, filter.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, wib), *filter.From)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, wib), *filter.To)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, wib), filter.AsOf)
	assert.Equal(t, []string{"enrolled", "rejected", "draft"}, filter.Statuses)
	assert.Equal(t, "monash", filter.Search)
}

func TestDashboardHandlerRejectsBadDates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{}, nil)

	for _, target := range []string{
		"/dashboard/leads?from=2024-13-01",
		"/dashboard/leads?from=2024-02-01&to=2024-01-01",
		"/dashboard/leads?asOf=yesterday",
	} {
		c, rec := newDashboardContext(target, nil)
		handler.Leads(c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestDashboardHandlerPropagatesServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Clone(appErrors.ErrInternal, "failed to load records")}, nil)

	c, rec := newDashboardContext("/dashboard/overview", nil)
	handler.Overview(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDashboardHandlerCounselorScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewDashboardHandler(srv, nil)

	c, rec := newDashboardContext("/dashboard/counselor?counselorId=other", &models.JWTClaims{UserID: "u-1", Role: models.RoleCounselor, CounselorID: "cou-1"})
	handler.Counselor(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cou-1", srv.lastCounselor, "counselors cannot look at someone else")

	c, rec = newDashboardContext("/dashboard/counselor?counselorId=cou-9", &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	handler.Counselor(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cou-9", srv.lastCounselor)

	c, rec = newDashboardContext("/dashboard/counselor", &models.JWTClaims{UserID: "admin", Role: models.RoleSuperAdmin})
	handler.Counselor(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newDashboardContext("/dashboard/counselor?counselorId=cou-1", &models.JWTClaims{UserID: "p-1", Role: models.RolePartner, PartnerID: "uni-1"})
	handler.Counselor(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newDashboardContext("/dashboard/counselor", &models.JWTClaims{UserID: "u-2", Role: models.RoleCounselor})
	handler.Counselor(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newDashboardContext("/dashboard/counselor", nil)
	handler.Counselor(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerPartnerScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewDashboardHandler(srv, nil)

	c, rec := newDashboardContext("/dashboard/partner", &models.JWTClaims{UserID: "p-1", Role: models.RolePartner, PartnerID: "uni-1"})
	handler.Partner(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uni-1", srv.lastPartner)

	c, rec = newDashboardContext("/dashboard/partner?partnerId=uni-2", &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	handler.Partner(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uni-2", srv.lastPartner)
}

func TestDashboardHandlerWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil, nil)

	c, rec := newDashboardContext("/dashboard/leaderboard", nil)
	handler.Leaderboard(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
