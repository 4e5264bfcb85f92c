package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/reconcile"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/export"
)

const (
	msgLoadEnquiries  = "failed to load enquiries"
	maxPageSize       = 100
	enquirySourcesKey = "enquiry-sources"
)

type enquiryBackend interface {
	ListEnquiries(ctx context.Context, s *backend.Session) ([]models.Enquiry, error)
	GetEnquiry(ctx context.Context, s *backend.Session, id int64) (*models.Enquiry, error)
	CreateEnquiry(ctx context.Context, s *backend.Session, payload interface{}) (*models.Enquiry, error)
	UpdateEnquiry(ctx context.Context, s *backend.Session, id int64, payload interface{}) (*models.Enquiry, error)
	DeleteEnquiry(ctx context.Context, s *backend.Session, id int64) error
	ListFollowups(ctx context.Context, s *backend.Session) ([]models.Followup, error)
	ListEnquiryFollowups(ctx context.Context, s *backend.Session, enquiryID int64) ([]models.Followup, error)
	CreateFollowup(ctx context.Context, s *backend.Session, payload interface{}) (*models.Followup, error)
}

type enquirySources struct {
	Enquiries []models.Enquiry  `json:"enquiries"`
	Followups []models.Followup `json:"followups"`
}

// EnquiryServiceConfig tunes the enquiry list. LoadTimeout bounds a shared
// source load, which no longer follows any single caller's context.
type EnquiryServiceConfig struct {
	PageSize    int
	SourcesTTL  time.Duration
	LoadTimeout time.Duration
}

// EnquiryService serves the reconciled enquiry list and the enquiry and
// follow-up write paths.
type EnquiryService struct {
	backend    enquiryBackend
	reconciler *reconcile.Reconciler
	cache      *CacheService
	exporter   *ExportService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        EnquiryServiceConfig
	now        func() time.Time
	loads      singleflight.Group
}

// NewEnquiryService constructs an EnquiryService.
func NewEnquiryService(client enquiryBackend, reconciler *reconcile.Reconciler, cache *CacheService, exporter *ExportService, validate *validator.Validate, logger *zap.Logger, cfg EnquiryServiceConfig) *EnquiryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if reconciler == nil {
		reconciler = reconcile.New(time.UTC)
	}
	if exporter == nil {
		exporter = NewExportService(logger, nil, nil)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.SourcesTTL <= 0 {
		cfg.SourcesTTL = 5 * time.Second
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 30 * time.Second
	}
	return &EnquiryService{
		backend:    client,
		reconciler: reconciler,
		cache:      cache,
		exporter:   exporter,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// List returns one page of reconciled enquiries matching filter.
func (s *EnquiryService) List(ctx context.Context, session *backend.Session, filter models.EnquiryFilter) (*dto.EnquiryListResponse, error) {
	items, err := s.Reconciled(ctx, session)
	if err != nil {
		return nil, err
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = s.cfg.PageSize
	}
	page, pagination, key := reconcile.View(items, filter, pageSize)
	return &dto.EnquiryListResponse{Items: page, Pagination: pagination, Key: key}, nil
}

// Reconciled loads enquiries and follow-ups and merges them. Either fetch
// failing fails the whole load; partial data is never returned.
func (s *EnquiryService) Reconciled(ctx context.Context, session *backend.Session) ([]models.ReconciledEnquiry, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	sources, err := s.loadSources(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.reconciler.Reconcile(sources.Enquiries, sources.Followups, s.now()), nil
}

// Overdue returns the reconciled enquiries whose next follow-up has
// passed, most overdue first.
func (s *EnquiryService) Overdue(ctx context.Context, session *backend.Session) ([]models.ReconciledEnquiry, error) {
	items, err := s.Reconciled(ctx, session)
	if err != nil {
		return nil, err
	}
	return reconcile.Overdue(items), nil
}

// loadSources collapses concurrent loads for the same session into one
// pair of backend calls and keeps the result briefly in the cache. The
// shared load runs detached from the caller, so a caller that goes away
// only abandons its own wait.
func (s *EnquiryService) loadSources(ctx context.Context, session *backend.Session) (*enquirySources, error) {
	key := sessionCacheKey(session, enquirySourcesKey)

	var cached enquirySources
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	detached := context.WithoutCancel(ctx)
	results := s.loads.DoChan(key, func() (interface{}, error) {
		return s.fetchSources(detached, session, key)
	})
	select {
	case <-ctx.Done():
		return nil, loadError(ctx.Err(), msgLoadEnquiries)
	case res := <-results:
		if res.Err != nil {
			s.logger.Warn(msgLoadEnquiries, zap.Bool("shared", res.Shared), zap.Error(res.Err))
			return nil, loadError(res.Err, msgLoadEnquiries)
		}
		return res.Val.(*enquirySources), nil
	}
}

func (s *EnquiryService) fetchSources(parent context.Context, session *backend.Session, key string) (*enquirySources, error) {
	generation := s.cache.Generation(session)
	ctx, cancel := context.WithTimeout(parent, s.cfg.LoadTimeout)
	defer cancel()

	src := &enquirySources{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.backend.ListEnquiries(gctx, session)
		src.Enquiries = items
		return err
	})
	g.Go(func() error {
		items, err := s.backend.ListFollowups(gctx, session)
		src.Followups = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stored, _ := s.cache.SetIfCurrent(ctx, session, generation, key, src, s.cfg.SourcesTTL); !stored && s.cache.Enabled() {
		s.logger.Debug("enquiry sources changed during load; not cached")
	}
	return src, nil
}

// loadError maps a failed primary load. Everything except an expired
// session reports the same operation message.
func loadError(err error, message string) error {
	mapped := appErrors.FromError(upstreamError(err, message))
	if mapped.Code == appErrors.ErrSessionExpired.Code {
		return mapped
	}
	clone := appErrors.Clone(mapped, message)
	clone.Err = err
	return clone
}

// Get returns one reconciled enquiry with its follow-up history.
func (s *EnquiryService) Get(ctx context.Context, session *backend.Session, id int64) (*dto.EnquiryDetailResponse, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	var (
		enquiry   *models.Enquiry
		followups []models.Followup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		enquiry, err = s.backend.GetEnquiry(gctx, session, id)
		return err
	})
	g.Go(func() error {
		var err error
		followups, err = s.backend.ListEnquiryFollowups(gctx, session, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstreamError(err, "failed to load enquiry")
	}

	reconciled := s.reconciler.Reconcile([]models.Enquiry{*enquiry}, followups, s.now())
	return &dto.EnquiryDetailResponse{
		Enquiry:   reconciled[0],
		Followups: s.reconciler.History(followups),
	}, nil
}

// Create registers a new enquiry in PENDING state.
func (s *EnquiryService) Create(ctx context.Context, session *backend.Session, req dto.EnquiryRequest) (*models.Enquiry, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enquiry payload")
	}
	created, err := s.backend.CreateEnquiry(ctx, session, newEnquiryPayload{
		EnquiryRequest: normalizeEnquiry(req),
		CurrentStatus:  models.EnquiryStatusPending,
	})
	if err != nil {
		return nil, upstreamError(err, "failed to create enquiry")
	}
	s.invalidate(ctx, session)
	s.logger.Info("enquiry created", zap.Int64("enquiry_id", created.ID), zap.String("operator", session.Subject))
	return created, nil
}

// Update edits enquiry details. Status is never changed here; it only
// moves through follow-ups.
func (s *EnquiryService) Update(ctx context.Context, session *backend.Session, id int64, req dto.EnquiryRequest) (*models.Enquiry, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enquiry payload")
	}
	updated, err := s.backend.UpdateEnquiry(ctx, session, id, normalizeEnquiry(req))
	if err != nil {
		return nil, upstreamError(err, "failed to update enquiry")
	}
	s.invalidate(ctx, session)
	return updated, nil
}

// Delete removes an enquiry.
func (s *EnquiryService) Delete(ctx context.Context, session *backend.Session, id int64) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.backend.DeleteEnquiry(ctx, session, id); err != nil {
		return upstreamError(err, "failed to delete enquiry")
	}
	s.invalidate(ctx, session)
	s.logger.Info("enquiry deleted", zap.Int64("enquiry_id", id), zap.String("operator", session.Subject))
	return nil
}

// Followups returns an enquiry's follow-up history, newest first.
func (s *EnquiryService) Followups(ctx context.Context, session *backend.Session, id int64) ([]models.Followup, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	items, err := s.backend.ListEnquiryFollowups(ctx, session, id)
	if err != nil {
		return nil, upstreamError(err, "failed to load follow-ups")
	}
	return s.reconciler.History(items), nil
}

// AddFollowup appends a follow-up event, which becomes the enquiry's
// current status on the next reconciliation.
func (s *EnquiryService) AddFollowup(ctx context.Context, session *backend.Session, id int64, req dto.FollowupRequest) (*models.Followup, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid follow-up payload")
	}
	loc := s.reconciler.Location()
	if _, ok := models.ParseDate(req.FollowupDate, loc); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "followup_date is not a valid date")
	}
	if req.NextFollowupDate != nil && *req.NextFollowupDate != "" {
		if _, ok := models.ParseDate(*req.NextFollowupDate, loc); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "next_followup_date is not a valid date")
		}
	}

	created, err := s.backend.CreateFollowup(ctx, session, dto.FollowupPayload{
		EnquiryID:        id,
		FollowupDate:     req.FollowupDate,
		Status:           req.Status,
		Notes:            req.Notes,
		NextFollowupDate: nonEmpty(req.NextFollowupDate),
		HandledBy:        session.Subject,
	})
	if err != nil {
		return nil, upstreamError(err, "failed to save follow-up")
	}
	s.invalidate(ctx, session)
	s.logger.Info("follow-up recorded",
		zap.Int64("enquiry_id", id),
		zap.String("status", req.Status),
		zap.String("operator", session.Subject),
	)
	return created, nil
}

// Export renders every enquiry matching search and status, unpaginated.
func (s *EnquiryService) Export(ctx context.Context, session *backend.Session, filter models.EnquiryFilter, format string) (*ExportFile, error) {
	items, err := s.Reconciled(ctx, session)
	if err != nil {
		return nil, err
	}
	filtered := reconcile.Filter(items, filter.Search, filter.Status)
	return s.exporter.Render(enquiryDataset(filtered, s.reconciler.Location()), format, "Enquiries", "enquiries")
}

// invalidate drops the session's cached state after a write. A load that
// started before the write neither caches its snapshot nor serves callers
// arriving after this point.
func (s *EnquiryService) invalidate(ctx context.Context, session *backend.Session) {
	s.loads.Forget(sessionCacheKey(session, enquirySourcesKey))
	if err := s.cache.InvalidateSession(ctx, session); err != nil {
		s.logger.Warn("failed to refresh enquiry cache", zap.Error(err))
	}
}

var enquiryExportHeaders = []string{"ID", "Name", "Mobile", "Course", "Status", "Last Follow-up", "Next Follow-up", "Days Overdue", "Enquiry Date"}

func enquiryDataset(items []models.ReconciledEnquiry, loc *time.Location) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		overdue := ""
		if item.IsOverdue {
			overdue = strconv.Itoa(item.DaysOverdue)
		}
		rows = append(rows, map[string]string{
			"ID":             item.IDString(),
			"Name":           item.FullName(),
			"Mobile":         item.MobileNumber,
			"Course":         item.CourseName,
			"Status":         item.CurrentStatus.Label(),
			"Last Follow-up": displayDatePtr(item.LatestFollowupDate, loc),
			"Next Follow-up": displayDatePtr(item.NextFollowup, loc),
			"Days Overdue":   overdue,
			"Enquiry Date":   models.FormatDisplayDate(item.EnquiryDate, loc),
		})
	}
	return export.Dataset{Headers: enquiryExportHeaders, Rows: rows}
}

type newEnquiryPayload struct {
	dto.EnquiryRequest
	CurrentStatus models.EnquiryStatus `json:"currentStatus"`
}

func normalizeEnquiry(req dto.EnquiryRequest) dto.EnquiryRequest {
	req.NextFollowup = nonEmpty(req.NextFollowup)
	return req
}

func displayDatePtr(raw *string, loc *time.Location) string {
	if raw == nil {
		return ""
	}
	return models.FormatDisplayDate(*raw, loc)
}

func nonEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
