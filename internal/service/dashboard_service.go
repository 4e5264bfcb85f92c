package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/reconcile"
)

const msgLoadDashboard = "failed to load dashboard"

type dashboardBackend interface {
	ListEnquiries(ctx context.Context, s *backend.Session) ([]models.Enquiry, error)
	ListFollowups(ctx context.Context, s *backend.Session) ([]models.Followup, error)
	ListAdmissions(ctx context.Context, s *backend.Session) ([]models.Admission, error)
	ListCourses(ctx context.Context, s *backend.Session) ([]models.Course, error)
	ListFees(ctx context.Context, s *backend.Session) ([]models.FeePayment, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL     time.Duration
	OverdueLimit int
	RecentLimit  int
}

// DashboardService orchestrates composition of dashboard payloads.
type DashboardService struct {
	backend    dashboardBackend
	reconciler *reconcile.Reconciler
	cache      *CacheService
	logger     *zap.Logger
	now        func() time.Time
	cfg        DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Backend    dashboardBackend
	Reconciler *reconcile.Reconciler
	Cache      *CacheService
	Logger     *zap.Logger
	Config     DashboardServiceConfig
}

// dashboardSources is everything one dashboard is computed from.
type dashboardSources struct {
	enquiries  []models.Enquiry
	followups  []models.Followup
	admissions []models.Admission
	courses    []models.Course
	fees       []models.FeePayment
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.OverdueLimit <= 0 {
		cfg.OverdueLimit = 10
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reconciler := params.Reconciler
	if reconciler == nil {
		reconciler = reconcile.New(time.UTC)
	}
	return &DashboardService{
		backend:    params.Backend,
		reconciler: reconciler,
		cache:      params.Cache,
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// Summary returns the dashboard and indicates cache utilisation. The five
// sources are fetched in parallel; any failure fails the whole dashboard.
func (s *DashboardService) Summary(ctx context.Context, session *backend.Session) (*dto.DashboardResponse, bool, error) {
	if err := requireSession(session); err != nil {
		return nil, false, err
	}
	cacheKey := sessionCacheKey(session, "dashboard")
	var cached dto.DashboardResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	generation := s.cache.Generation(session)
	src, err := s.fetch(ctx, session)
	if err != nil {
		s.logger.Warn(msgLoadDashboard, zap.Error(err))
		return nil, false, loadError(err, msgLoadDashboard)
	}
	summary := s.compose(src, s.now())

	if _, err := s.cache.SetIfCurrent(ctx, session, generation, cacheKey, summary, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return summary, false, nil
}

func (s *DashboardService) fetch(ctx context.Context, session *backend.Session) (*dashboardSources, error) {
	src := &dashboardSources{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src.enquiries, err = s.backend.ListEnquiries(gctx, session)
		return err
	})
	g.Go(func() (err error) {
		src.followups, err = s.backend.ListFollowups(gctx, session)
		return err
	})
	g.Go(func() (err error) {
		src.admissions, err = s.backend.ListAdmissions(gctx, session)
		return err
	})
	g.Go(func() (err error) {
		src.courses, err = s.backend.ListCourses(gctx, session)
		return err
	})
	g.Go(func() (err error) {
		src.fees, err = s.backend.ListFees(gctx, session)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}

func (s *DashboardService) compose(src *dashboardSources, now time.Time) *dto.DashboardResponse {
	loc := s.reconciler.Location()
	local := now.In(loc)
	reconciled := s.reconciler.Reconcile(src.enquiries, src.followups, now)

	resp := &dto.DashboardResponse{
		Enquiries: dto.EnquiryStats{
			Total:    len(reconciled),
			ByStatus: make(map[string]int, len(models.EnquiryStatuses)),
		},
		Fees: dto.FeeStats{
			Collected:          decimal.Zero,
			CollectedThisMonth: decimal.Zero,
			Payments:           len(src.fees),
		},
		Overdue: []dto.OverdueItem{},
		Recent:  []dto.RecentEnquiry{},
		AsOf:    now.UTC(),
	}

	for _, status := range models.EnquiryStatuses {
		resp.Enquiries.ByStatus[string(status)] = 0
	}
	for _, item := range reconciled {
		resp.Enquiries.ByStatus[string(item.CurrentStatus)]++
		if item.IsOverdue {
			resp.Enquiries.OverdueFollowups++
		}
		if s.reconciler.DueOn(item.NextFollowup, now) {
			resp.Enquiries.DueToday++
		}
	}

	for _, item := range reconcile.Overdue(reconciled) {
		if len(resp.Overdue) == s.cfg.OverdueLimit {
			break
		}
		resp.Overdue = append(resp.Overdue, dto.OverdueItem{
			EnquiryID:    item.ID,
			Name:         item.FullName(),
			MobileNumber: item.MobileNumber,
			CourseName:   item.CourseName,
			Status:       item.CurrentStatus,
			NextFollowup: displayDatePtr(item.NextFollowup, loc),
			DaysOverdue:  item.DaysOverdue,
		})
	}

	resp.Recent = recentEnquiries(reconciled, loc, s.cfg.RecentLimit)

	resp.Admissions.Total = len(src.admissions)
	for _, a := range src.admissions {
		date := a.AdmissionDate
		if date == "" {
			date = a.CreatedAt
		}
		if sameMonth(date, local) {
			resp.Admissions.ThisMonth++
		}
	}

	resp.Courses.Total = len(src.courses)
	for _, c := range src.courses {
		if c.Active {
			resp.Courses.Active++
		}
	}

	for _, p := range src.fees {
		total := p.Total()
		resp.Fees.Collected = resp.Fees.Collected.Add(total)
		if sameMonth(p.PaymentDate, local) {
			resp.Fees.CollectedThisMonth = resp.Fees.CollectedThisMonth.Add(total)
		}
	}
	return resp
}

// recentEnquiries returns the newest enquiries by enquiry date, falling
// back to creation time. Undated enquiries sort last.
func recentEnquiries(items []models.ReconciledEnquiry, loc *time.Location, limit int) []dto.RecentEnquiry {
	type dated struct {
		item models.ReconciledEnquiry
		at   time.Time
	}
	rows := make([]dated, 0, len(items))
	for _, item := range items {
		at, ok := models.ParseDate(item.EnquiryDate, loc)
		if !ok {
			at, _ = models.ParseDate(item.CreatedAt, loc)
		}
		rows = append(rows, dated{item: item, at: at})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.After(rows[j].at) })

	out := make([]dto.RecentEnquiry, 0, limit)
	for _, row := range rows {
		if len(out) == limit {
			break
		}
		out = append(out, dto.RecentEnquiry{
			ID:          row.item.ID,
			Name:        row.item.FullName(),
			CourseName:  row.item.CourseName,
			Status:      row.item.CurrentStatus,
			EnquiryDate: row.item.EnquiryDate,
		})
	}
	return out
}

func sameMonth(raw string, ref time.Time) bool {
	t, ok := models.ParseDate(raw, ref.Location())
	if !ok {
		return false
	}
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
