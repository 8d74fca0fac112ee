package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/middleware"
	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/internal/service"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
	"github.com/noah-isme/edu-crm-api/pkg/response"
)

type dashboardService interface {
	Overview(ctx context.Context, filter service.DashboardFilter) (*dto.OverviewResponse, bool, error)
	Applications(ctx context.Context, filter service.DashboardFilter) (*dto.ApplicationsResponse, bool, error)
	Leads(ctx context.Context, filter service.DashboardFilter) (*dto.LeadsResponse, bool, error)
	Financials(ctx context.Context, filter service.DashboardFilter) (*dto.FinancialsResponse, bool, error)
	Leaderboard(ctx context.Context, filter service.DashboardFilter) (*dto.LeaderboardResponse, bool, error)
	Counselor(ctx context.Context, counselorID string, filter service.DashboardFilter) (*dto.CounselorDashboardResponse, bool, error)
	Partner(ctx context.Context, partnerID string, filter service.DashboardFilter) (*dto.PartnerDashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service  dashboardService
	location *time.Location
}

// NewDashboardHandler constructs the handler. Query dates are read in loc.
func NewDashboardHandler(service dashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{service: service, location: loc}
}

// Overview godoc
// @Summary Admin overview dashboard
// @Tags Dashboard
// @Produce json
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param search query string false "Search term"
// @Param asOf query string false "Reference date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Overview(ctx, filter)
	})
}

// Applications godoc
// @Summary Application pipeline analytics
// @Tags Dashboard
// @Produce json
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param status query string false "Comma separated statuses"
// @Param search query string false "Search term"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/applications [get]
func (h *DashboardHandler) Applications(c *gin.Context) {
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Applications(ctx, filter)
	})
}

// Leads godoc
// @Summary Lead funnel analytics
// @Tags Dashboard
// @Produce json
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param status query string false "Comma separated statuses"
// @Param search query string false "Search term"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/leads [get]
func (h *DashboardHandler) Leads(c *gin.Context) {
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Leads(ctx, filter)
	})
}

// Financials godoc
// @Summary Commission analytics
// @Tags Dashboard
// @Produce json
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param status query string false "Comma separated statuses"
// @Param search query string false "Search term"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/financials [get]
func (h *DashboardHandler) Financials(c *gin.Context) {
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Financials(ctx, filter)
	})
}

// Leaderboard godoc
// @Summary Counselor leaderboard
// @Tags Dashboard
// @Produce json
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/leaderboard [get]
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Leaderboard(ctx, filter)
	})
}

// Counselor godoc
// @Summary Counselor dashboard
// @Description Counselors see their own dashboard; admins pass counselorId.
// @Tags Dashboard
// @Produce json
// @Param counselorId query string false "Counselor ID (admins only)"
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/counselor [get]
func (h *DashboardHandler) Counselor(c *gin.Context) {
	counselorID, err := scopedID(c, models.RoleCounselor, "counselorId", func(claims *models.JWTClaims) string {
		return claims.CounselorID
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Counselor(ctx, counselorID, filter)
	})
}

// Partner godoc
// @Summary Partner university dashboard
// @Description Partners see their own dashboard; admins pass partnerId.
// @Tags Dashboard
// @Produce json
// @Param partnerId query string false "Partner ID (admins only)"
// @Param from query string false "Created from (YYYY-MM-DD)"
// @Param to query string false "Created to, inclusive (YYYY-MM-DD)"
// @Param asOf query string false "Reference date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/partner [get]
func (h *DashboardHandler) Partner(c *gin.Context) {
	partnerID, err := scopedID(c, models.RolePartner, "partnerId", func(claims *models.JWTClaims) string {
		return claims.PartnerID
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	serveView(c, h, func(ctx context.Context, filter service.DashboardFilter) (any, bool, error) {
		return h.service.Partner(ctx, partnerID, filter)
	})
}

// serveView parses the shared filter, runs fetch and writes the envelope with cache metadata.
func serveView(c *gin.Context, h *DashboardHandler, fetch func(context.Context, service.DashboardFilter) (any, bool, error)) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter, err := parseDashboardFilter(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	payload, cacheHit, err := fetch(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, payload, nil, meta)
}

// scopedID resolves whose dashboard is requested. Scoped roles always get
// their own id from the token; admins must name one through param.
func scopedID(c *gin.Context, role models.UserRole, param string, own func(*models.JWTClaims) string) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	if claims.Role == role {
		if id := own(claims); id != "" {
			return id, nil
		}
		return "", appErrors.Clone(appErrors.ErrForbidden, "account is not linked to a "+strings.ToLower(string(role)))
	}
	if !claims.IsAdmin() {
		return "", appErrors.ErrForbidden
	}
	id := strings.TrimSpace(c.Query(param))
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, param+" is required")
	}
	return id, nil
}

func parseDashboardFilter(c *gin.Context, loc *time.Location) (service.DashboardFilter, error) {
	filter := service.DashboardFilter{Search: strings.TrimSpace(c.Query("search"))}
	from, to, err := service.ParseDateRange(strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to")), loc)
	if err != nil {
		return filter, err
	}
	filter.From, filter.To = from, to
	if raw := strings.TrimSpace(c.Query("asOf")); raw != "" {
		asOf, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "asOf must be YYYY-MM-DD")
		}
		filter.AsOf = asOf
	}
	for _, value := range c.QueryArray("status") {
		for _, status := range strings.Split(value, ",") {
			if status = strings.TrimSpace(status); status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	return filter, nil
}
