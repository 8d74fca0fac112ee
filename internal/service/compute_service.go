package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/dto"
	"github.com/noah-isme/edu-crm-api/internal/insight"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// ComputeServiceConfig bounds compute requests.
type ComputeServiceConfig struct {
	MaxRecords int
	RiskLimit  int
	Location   *time.Location
}

// ComputeService aggregates a caller-supplied record set in one pass. It never
// touches storage; the response is either complete or an error.
type ComputeService struct {
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	tracer    trace.Tracer
	cfg       ComputeServiceConfig
}

// NewComputeService constructs a ComputeService.
func NewComputeService(validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, cfg ComputeServiceConfig) *ComputeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ComputeService{
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		cfg:       cfg,
	}
}

// Compute validates req and returns the full view-model.
func (s *ComputeService) Compute(ctx context.Context, req dto.ComputeRequest) (*dto.ComputeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid compute payload")
	}
	if s.cfg.MaxRecords > 0 && req.RecordCount() > s.cfg.MaxRecords {
		return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, "too many records in compute request")
	}

	ref, err := time.ParseInLocation(dateLayout, req.AsOf, s.cfg.Location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "asOf must be YYYY-MM-DD")
	}
	scope, err := s.scope(req)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "compute.overview", trace.WithAttributes(
		attribute.Int("compute.records", req.RecordCount()),
	))
	defer span.End()

	ds := insight.Dataset{
		Applications: req.Applications,
		Leads:        req.Leads,
		Commissions:  req.Commissions,
		Students:     req.Students,
		Counselors:   req.Counselors,
		Partners:     req.Partners,
	}
	opts := insight.Options{Ref: ref, TrendMonths: req.TrendMonths, TopLimit: req.TopLimit, RiskLimit: s.cfg.RiskLimit}

	start := time.Now()
	overview := insight.BuildOverview(ds, scope, opts)
	s.metrics.ObserveAggregation("compute", time.Since(start))
	reportMalformed(s.logger, s.metrics, "compute", ds)

	return &dto.ComputeResponse{
		AsOf:         overview.AsOf,
		Applications: overview.Applications,
		Leads:        overview.Leads,
		Financials:   overview.Financials,
		Leaderboard:  overview.Leaderboard,
	}, nil
}

// scope converts the inclusive from/to dates into a half-open window.
func (s *ComputeService) scope(req dto.ComputeRequest) (insight.Scope, error) {
	scope := insight.Scope{Statuses: req.Statuses, Search: req.Search}
	from, to, err := ParseDateRange(req.From, req.To, s.cfg.Location)
	if err != nil {
		return scope, err
	}
	scope.From, scope.To = from, to
	return scope, nil
}

// ParseDateRange parses optional YYYY-MM-DD bounds. to is inclusive, so the
// returned upper bound is the start of the following day.
func ParseDateRange(fromRaw, toRaw string, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var from, to *time.Time
	if fromRaw != "" {
		parsed, err := time.ParseInLocation(dateLayout, fromRaw, loc)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from must be YYYY-MM-DD")
		}
		from = &parsed
	}
	if toRaw != "" {
		parsed, err := time.ParseInLocation(dateLayout, toRaw, loc)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "to must be YYYY-MM-DD")
		}
		next := parsed.AddDate(0, 0, 1)
		to = &next
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	return from, to, nil
}
