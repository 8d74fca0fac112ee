package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/edu-crm-api/internal/insight"
	"github.com/noah-isme/edu-crm-api/internal/models"
	appErrors "github.com/noah-isme/edu-crm-api/pkg/errors"
)

type applicationLister interface {
	List(ctx context.Context, q models.ApplicationQuery) ([]models.Application, error)
}

type leadLister interface {
	List(ctx context.Context, q models.LeadQuery) ([]models.Lead, error)
}

type commissionLister interface {
	List(ctx context.Context, q models.CommissionQuery) ([]models.Commission, error)
}

type directoryReader interface {
	StudentsByIDs(ctx context.Context, ids []string) ([]models.StudentProfile, error)
	StudentsByCounselor(ctx context.Context, counselorID string) ([]models.StudentProfile, error)
	CounselorsByIDs(ctx context.Context, ids []string) ([]models.Counselor, error)
	PartnersByIDs(ctx context.Context, ids []string) ([]models.Partner, error)
}

// DatasetQuery selects the records a dashboard needs. At most one of
// CounselorID and PartnerID is expected.
type DatasetQuery struct {
	From        *time.Time
	To          *time.Time
	CounselorID string
	PartnerID   string
}

// DatasetService loads entity records concurrently and resolves the
// directory entries they reference with one batch query per table.
type DatasetService struct {
	applications applicationLister
	leads        leadLister
	commissions  commissionLister
	directory    directoryReader
	metrics      *MetricsService
	logger       *zap.Logger
}

// DatasetServiceParams groups constructor dependencies.
type DatasetServiceParams struct {
	Applications applicationLister
	Leads        leadLister
	Commissions  commissionLister
	Directory    directoryReader
	Metrics      *MetricsService
	Logger       *zap.Logger
}

// NewDatasetService constructs the loader.
func NewDatasetService(params DatasetServiceParams) *DatasetService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetService{
		applications: params.Applications,
		leads:        params.Leads,
		commissions:  params.Commissions,
		directory:    params.Directory,
		metrics:      params.Metrics,
		logger:       logger,
	}
}

// Load fetches the dataset for q.
func (s *DatasetService) Load(ctx context.Context, q DatasetQuery) (insight.Dataset, error) {
	var ds insight.Dataset
	var err error
	switch {
	case q.CounselorID != "":
		ds, err = s.loadCounselor(ctx, q)
	case q.PartnerID != "":
		ds, err = s.loadPartner(ctx, q)
	default:
		ds, err = s.loadAll(ctx, q)
	}
	if err != nil {
		s.logger.Error("load dataset failed", zap.Error(err))
		return insight.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load records")
	}
	return ds, nil
}

func (s *DatasetService) loadAll(ctx context.Context, q DatasetQuery) (insight.Dataset, error) {
	var ds insight.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Applications, err = timed(s, "applications.list", func() ([]models.Application, error) {
			return s.applications.List(gctx, models.ApplicationQuery{CreatedFrom: q.From, CreatedTo: q.To})
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Leads, err = timed(s, "leads.list", func() ([]models.Lead, error) {
			return s.leads.List(gctx, models.LeadQuery{CreatedFrom: q.From, CreatedTo: q.To})
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Commissions, err = timed(s, "commissions.list", func() ([]models.Commission, error) {
			return s.commissions.List(gctx, models.CommissionQuery{CreatedFrom: q.From, CreatedTo: q.To})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ds, err
	}
	if err := s.resolveStudentsAndPartners(ctx, &ds); err != nil {
		return ds, err
	}
	return ds, s.resolveCounselors(ctx, &ds)
}

func (s *DatasetService) loadCounselor(ctx context.Context, q DatasetQuery) (insight.Dataset, error) {
	var ds insight.Dataset
	students, err := timed(s, "students.by_counselor", func() ([]models.StudentProfile, error) {
		return s.directory.StudentsByCounselor(ctx, q.CounselorID)
	})
	if err != nil {
		return ds, err
	}
	ds.Students = students
	studentIDs := make([]string, 0, len(students))
	for _, student := range students {
		studentIDs = append(studentIDs, student.ID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Applications, err = timed(s, "applications.list", func() ([]models.Application, error) {
			return s.applications.List(gctx, models.ApplicationQuery{CreatedFrom: q.From, CreatedTo: q.To, StudentIDs: studentIDs})
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Leads, err = timed(s, "leads.list", func() ([]models.Lead, error) {
			return s.leads.List(gctx, models.LeadQuery{CreatedFrom: q.From, CreatedTo: q.To, CounselorID: q.CounselorID})
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Counselors, err = timed(s, "counselors.by_ids", func() ([]models.Counselor, error) {
			return s.directory.CounselorsByIDs(gctx, []string{q.CounselorID})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ds, err
	}

	partnerIDs := newIDSet()
	for _, app := range ds.Applications {
		partnerIDs.add(app.UniversityID)
	}
	ds.Partners, err = timed(s, "partners.by_ids", func() ([]models.Partner, error) {
		return s.directory.PartnersByIDs(ctx, partnerIDs.list())
	})
	return ds, err
}

func (s *DatasetService) loadPartner(ctx context.Context, q DatasetQuery) (insight.Dataset, error) {
	var ds insight.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Applications, err = timed(s, "applications.list", func() ([]models.Application, error) {
			return s.applications.List(gctx, models.ApplicationQuery{CreatedFrom: q.From, CreatedTo: q.To, UniversityID: q.PartnerID})
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Commissions, err = timed(s, "commissions.list", func() ([]models.Commission, error) {
			return s.commissions.List(gctx, models.CommissionQuery{CreatedFrom: q.From, CreatedTo: q.To, PartnerID: q.PartnerID})
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ds, err
	}
	return ds, s.resolveStudentsAndPartners(ctx, &ds)
}

func (s *DatasetService) resolveStudentsAndPartners(ctx context.Context, ds *insight.Dataset) error {
	studentIDs, partnerIDs := newIDSet(), newIDSet()
	for _, app := range ds.Applications {
		studentIDs.add(app.StudentID)
		partnerIDs.add(app.UniversityID)
	}
	for _, commission := range ds.Commissions {
		studentIDs.add(commission.StudentID)
		partnerIDs.add(commission.PartnerID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Students, err = timed(s, "students.by_ids", func() ([]models.StudentProfile, error) {
			return s.directory.StudentsByIDs(gctx, studentIDs.list())
		})
		return err
	})
	g.Go(func() (err error) {
		ds.Partners, err = timed(s, "partners.by_ids", func() ([]models.Partner, error) {
			return s.directory.PartnersByIDs(gctx, partnerIDs.list())
		})
		return err
	})
	return g.Wait()
}

func (s *DatasetService) resolveCounselors(ctx context.Context, ds *insight.Dataset) error {
	ids := newIDSet()
	for _, student := range ds.Students {
		if student.CounselorID != nil {
			ids.add(*student.CounselorID)
		}
	}
	for _, lead := range ds.Leads {
		if lead.CounselorID != nil {
			ids.add(*lead.CounselorID)
		}
	}
	counselors, err := timed(s, "counselors.by_ids", func() ([]models.Counselor, error) {
		return s.directory.CounselorsByIDs(ctx, ids.list())
	})
	ds.Counselors = counselors
	return err
}

func timed[T any](s *DatasetService, label string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	s.metrics.ObserveDBQuery(label, time.Since(start))
	return result, err
}

type idSet map[string]struct{}

func newIDSet() idSet { return idSet{} }

func (s idSet) add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s idSet) list() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
