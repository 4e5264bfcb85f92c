package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/document"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
)

const settingsCacheName = "settings"

type settingsBackend interface {
	GetSettings(ctx context.Context, s *backend.Session) (*models.InstituteSettings, error)
	UpdateSettings(ctx context.Context, s *backend.Session, settings models.InstituteSettings, logo *backend.FileUpload) (*models.InstituteSettings, error)
	UploadURL(filename string) string
}

// SettingsService reads and writes the institute profile.
type SettingsService struct {
	backend   settingsBackend
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
	defaults  models.InstituteSettings
}

type cachedSettings struct {
	Settings *models.InstituteSettings `json:"settings"`
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(client settingsBackend, cache *CacheService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SettingsService{
		backend:   client,
		cache:     cache,
		validator: validate,
		logger:    logger,
		ttl:       ttl,
		defaults:  document.DefaultSettings(),
	}
}

// Get returns the institute profile with defaults applied. A backend that
// has no settings yet yields the defaults; other failures surface.
func (s *SettingsService) Get(ctx context.Context, session *backend.Session) (*models.InstituteProfile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	settings, err := s.load(ctx, session)
	if err != nil {
		return nil, upstreamError(err, "failed to load settings")
	}
	profile := s.profile(settings)
	return &profile, nil
}

// Profile is Get for document generation: any failure falls back to the
// default profile.
func (s *SettingsService) Profile(ctx context.Context, session *backend.Session) models.InstituteProfile {
	settings, err := s.load(ctx, session)
	if err != nil {
		s.logger.Warn("using default institute settings", zap.Error(err))
		return s.profile(nil)
	}
	return s.profile(settings)
}

// Update saves the profile, optionally replacing the logo.
func (s *SettingsService) Update(ctx context.Context, session *backend.Session, req dto.SettingsRequest, logo *backend.FileUpload) (*models.InstituteProfile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid settings payload")
	}
	updated, err := s.backend.UpdateSettings(ctx, session, models.InstituteSettings{
		Name:       req.Name,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
		Website:    req.Website,
		CenterCode: req.CenterCode,
	}, logo)
	if err != nil {
		return nil, upstreamError(err, "failed to save settings")
	}
	if err := s.cache.Invalidate(ctx, sharedCacheKey(settingsCacheName)); err != nil {
		s.logger.Warn("failed to refresh settings cache", zap.Error(err))
	}
	s.logger.Info("institute settings updated", zap.String("operator", session.Subject), zap.Bool("logo", logo != nil))
	profile := s.profile(updated)
	return &profile, nil
}

func (s *SettingsService) load(ctx context.Context, session *backend.Session) (*models.InstituteSettings, error) {
	key := sharedCacheKey(settingsCacheName)
	var cached cachedSettings
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Settings, nil
	}
	if session == nil {
		return nil, nil
	}
	settings, err := s.backend.GetSettings(ctx, session)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, cachedSettings{Settings: settings}, s.ttl)
	return settings, nil
}

func (s *SettingsService) profile(settings *models.InstituteSettings) models.InstituteProfile {
	profile := document.WithDefaults(settings, s.defaults)
	if profile.Logo != "" {
		profile.LogoURL = s.backend.UploadURL(profile.Logo)
	}
	return profile
}
