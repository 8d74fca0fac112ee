package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/insight"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

const tracerName = "github.com/noah-isme/edu-crm-api/internal/service"

type datasetLoader interface {
	Load(ctx context.Context, q DatasetQuery) (insight.Dataset, error)
}

// DashboardFilter is the caller-supplied scope of a dashboard request. A zero
// AsOf means "now" in the service clock.
type DashboardFilter struct {
	From     *time.Time
	To       *time.Time
	Statuses []string
	Search   string
	AsOf     time.Time
}

func (f DashboardFilter) scope() insight.Scope {
	return insight.Scope{From: f.From, To: f.To, Statuses: f.Statuses, Search: f.Search}
}

// cacheKey renders the filter deterministically. The reference contributes its
// calendar date only, since every metric is date-granular.
func (f DashboardFilter) cacheKey(view string, ref time.Time, subject string) string {
	day := func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	}
	statuses := make([]string, 0, len(f.Statuses))
	for _, status := range f.Statuses {
		statuses = append(statuses, strings.ToLower(strings.TrimSpace(status)))
	}
	return fmt.Sprintf("dash:%s:%s:%s:%s:%s:%s:%s:%s",
		view, subject, ref.Format("2006-01-02"), ref.Location(), day(f.From), day(f.To),
		strings.Join(statuses, ","), strings.ToLower(strings.TrimSpace(f.Search)))
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	TrendMonths int
	TopLimit    int
	RiskLimit   int
	Location    *time.Location
}

// DashboardService loads records, runs the insight builders and caches the
// resulting view-models.
type DashboardService struct {
	datasets datasetLoader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
	cfg      DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Datasets datasetLoader
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TrendMonths <= 0 {
		cfg.TrendMonths = insight.DefaultTrendMonths
	}
	if cfg.TopLimit <= 0 {
		cfg.TopLimit = insight.DefaultTopLimit
	}
	if cfg.RiskLimit <= 0 {
		cfg.RiskLimit = insight.DefaultRiskLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		datasets: params.Datasets,
		cache:    params.Cache,
		metrics:  params.Metrics,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		cfg:      cfg,
	}
}

// Overview returns the admin dashboard and whether it came from cache.
func (s *DashboardService) Overview(ctx context.Context, filter DashboardFilter) (*dto.OverviewResponse, bool, error) {
	return buildView(ctx, s, "overview", "", filter, DatasetQuery{}, func(ds insight.Dataset, opts insight.Options) dto.OverviewResponse {
		return insight.BuildOverview(ds, filter.scope(), opts)
	})
}

// Applications returns the application analytics screen.
func (s *DashboardService) Applications(ctx context.Context, filter DashboardFilter) (*dto.ApplicationsResponse, bool, error) {
	return buildView(ctx, s, "applications", "", filter, DatasetQuery{}, func(ds insight.Dataset, opts insight.Options) dto.ApplicationsResponse {
		apps := insight.FilterApplications(ds.Applications, filter.scope())
		return dto.ApplicationsResponse{
			AsOf:                opts.Ref.Format(insight.AsOfLayout),
			ApplicationInsights: insight.BuildApplicationInsights(ds, apps, opts),
		}
	})
}

// Leads returns the lead funnel screen.
func (s *DashboardService) Leads(ctx context.Context, filter DashboardFilter) (*dto.LeadsResponse, bool, error) {
	return buildView(ctx, s, "leads", "", filter, DatasetQuery{}, func(ds insight.Dataset, opts insight.Options) dto.LeadsResponse {
		leads := insight.FilterLeads(ds.Leads, filter.scope())
		return dto.LeadsResponse{
			AsOf:         opts.Ref.Format(insight.AsOfLayout),
			LeadInsights: insight.BuildLeadInsights(leads, opts),
		}
	})
}

// Financials returns the commission rollup screen.
func (s *DashboardService) Financials(ctx context.Context, filter DashboardFilter) (*dto.FinancialsResponse, bool, error) {
	return buildView(ctx, s, "financials", "", filter, DatasetQuery{}, func(ds insight.Dataset, opts insight.Options) dto.FinancialsResponse {
		commissions := insight.FilterCommissions(ds.Commissions, filter.scope())
		return dto.FinancialsResponse{
			AsOf:              opts.Ref.Format(insight.AsOfLayout),
			FinancialInsights: insight.BuildFinancialInsights(ds, commissions, opts),
		}
	})
}

// Leaderboard ranks counselors by enrolments inside the filter window.
func (s *DashboardService) Leaderboard(ctx context.Context, filter DashboardFilter) (*dto.LeaderboardResponse, bool, error) {
	return buildView(ctx, s, "leaderboard", "", filter, DatasetQuery{}, func(ds insight.Dataset, opts insight.Options) dto.LeaderboardResponse {
		scope := filter.scope().WithoutStatuses()
		apps := insight.FilterApplications(ds.Applications, scope)
		leads := insight.FilterLeads(ds.Leads, scope)
		return dto.LeaderboardResponse{
			AsOf:    opts.Ref.Format(insight.AsOfLayout),
			Entries: insight.BuildCounselorLeaderboard(ds, apps, leads, opts),
		}
	})
}

// Counselor returns the dashboard of a single counselor.
func (s *DashboardService) Counselor(ctx context.Context, counselorID string, filter DashboardFilter) (*dto.CounselorDashboardResponse, bool, error) {
	if strings.TrimSpace(counselorID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "counselorId is required")
	}
	query := DatasetQuery{CounselorID: counselorID}
	return buildView(ctx, s, "counselor", counselorID, filter, query, func(ds insight.Dataset, opts insight.Options) dto.CounselorDashboardResponse {
		return insight.BuildCounselorDashboard(ds, counselorID, filter.scope(), opts)
	})
}

// Partner returns the dashboard of a single partner university.
func (s *DashboardService) Partner(ctx context.Context, partnerID string, filter DashboardFilter) (*dto.PartnerDashboardResponse, bool, error) {
	if strings.TrimSpace(partnerID) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "partnerId is required")
	}
	query := DatasetQuery{PartnerID: partnerID}
	return buildView(ctx, s, "partner", partnerID, filter, query, func(ds insight.Dataset, opts insight.Options) dto.PartnerDashboardResponse {
		return insight.BuildPartnerDashboard(ds, partnerID, filter.scope(), opts)
	})
}

// reference resolves the filter's as-of date in the configured location.
func (s *DashboardService) reference(filter DashboardFilter) time.Time {
	if filter.AsOf.IsZero() {
		return s.now().In(s.cfg.Location)
	}
	return filter.AsOf.In(s.cfg.Location)
}

func (s *DashboardService) options(ref time.Time) insight.Options {
	return insight.Options{
		Ref:         ref,
		TrendMonths: s.cfg.TrendMonths,
		TopLimit:    s.cfg.TopLimit,
		RiskLimit:   s.cfg.RiskLimit,
	}
}

func buildView[T any](
	ctx context.Context,
	s *DashboardService,
	view, subject string,
	filter DashboardFilter,
	query DatasetQuery,
	build func(insight.Dataset, insight.Options) T,
) (*T, bool, error) {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "from must be before to")
	}
	if s.datasets == nil {
		return nil, false, appErrors.Clone(appErrors.ErrInternal, "dashboard dataset source not configured")
	}

	ctx, span := s.tracer.Start(ctx, "dashboard."+view, trace.WithAttributes(
		attribute.String("dashboard.view", view),
		attribute.String("dashboard.subject", subject),
	))
	defer span.End()

	ref := s.reference(filter)
	key := filter.cacheKey(view, ref, subject)
	var cached T
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("dashboard cache read failed, recomputing", zap.String("key", key), zap.Error(err))
	} else if hit {
		span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
		return &cached, true, nil
	}

	query.From, query.To = filter.From, filter.To
	ds, err := s.datasets.Load(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load dataset")
		return nil, false, err
	}
	span.SetAttributes(
		attribute.Int("dashboard.applications", len(ds.Applications)),
		attribute.Int("dashboard.leads", len(ds.Leads)),
		attribute.Int("dashboard.commissions", len(ds.Commissions)),
	)

	start := time.Now()
	result := build(ds, s.options(ref))
	s.metrics.ObserveAggregation(view, time.Since(start))
	reportMalformed(s.logger, s.metrics, view, ds)

	s.persistCache(ctx, key, result)
	return &result, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// reportMalformed surfaces records the builders had to skip.
func reportMalformed(logger *zap.Logger, metrics *MetricsService, view string, ds insight.Dataset) {
	counts := map[string]int{}
	for _, app := range ds.Applications {
		if !app.WellFormed() {
			counts["application"]++
		}
	}
	for _, lead := range ds.Leads {
		if !lead.WellFormed() {
			counts["lead"]++
		}
	}
	for _, commission := range ds.Commissions {
		if !commission.WellFormed() {
			counts["commission"]++
		}
	}
	for entity, count := range counts {
		metrics.RecordMalformed(entity, count)
		logger.Warn("malformed records skipped",
			zap.String("view", view),
			zap.String("entity", entity),
			zap.Int("count", count),
		)
	}
}
