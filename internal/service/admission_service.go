package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/document"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
)

type admissionBackend interface {
	ListAdmissions(ctx context.Context, s *backend.Session) ([]models.Admission, error)
	GetAdmission(ctx context.Context, s *backend.Session, id int64) (*models.Admission, error)
	CreateAdmission(ctx context.Context, s *backend.Session, payload interface{}, files ...backend.FileUpload) (*models.Admission, error)
	UpdateAdmission(ctx context.Context, s *backend.Session, id int64, payload interface{}, files ...backend.FileUpload) (*models.Admission, error)
	DeleteAdmission(ctx context.Context, s *backend.Session, id int64) error
	CreateFollowup(ctx context.Context, s *backend.Session, payload interface{}) (*models.Followup, error)
	UploadURL(filename string) string
}

// AdmissionFiles carries the optional photo and signature uploads.
type AdmissionFiles struct {
	Photo     *backend.FileUpload
	Signature *backend.FileUpload
}

func (f AdmissionFiles) parts() []backend.FileUpload {
	parts := make([]backend.FileUpload, 0, 2)
	if f.Photo != nil {
		photo := *f.Photo
		photo.Field = "photo"
		parts = append(parts, photo)
	}
	if f.Signature != nil {
		signature := *f.Signature
		signature.Field = "signature"
		parts = append(parts, signature)
	}
	return parts
}

// AdmissionService manages admissions and their printable forms.
type AdmissionService struct {
	backend   admissionBackend
	settings  *SettingsService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(client admissionBackend, settings *SettingsService, cache *CacheService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AdmissionService{
		backend:   client,
		settings:  settings,
		cache:     cache,
		validator: validate,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// List returns every admission.
func (s *AdmissionService) List(ctx context.Context, session *backend.Session) ([]models.Admission, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	items, err := s.backend.ListAdmissions(ctx, session)
	if err != nil {
		return nil, upstreamError(err, "failed to load admissions")
	}
	return items, nil
}

// Get returns one admission.
func (s *AdmissionService) Get(ctx context.Context, session *backend.Session, id int64) (*models.Admission, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	admission, err := s.backend.GetAdmission(ctx, session, id)
	if err != nil {
		return nil, upstreamError(err, "failed to load admission")
	}
	return admission, nil
}

// Create records an admission. When it was promoted from an enquiry an
// ADMITTED follow-up is appended so the enquiry list reflects it; failing
// that step only logs, the admission itself stands.
func (s *AdmissionService) Create(ctx context.Context, session *backend.Session, req dto.AdmissionRequest, files AdmissionFiles) (*models.Admission, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid admission payload")
	}
	created, err := s.backend.CreateAdmission(ctx, session, admissionPayload(req), files.parts()...)
	if err != nil {
		return nil, upstreamError(err, "failed to create admission")
	}

	if req.EnquiryID != nil {
		notes := fmt.Sprintf("Admitted (admission #%d)", created.ID)
		_, err := s.backend.CreateFollowup(ctx, session, dto.FollowupPayload{
			EnquiryID:    *req.EnquiryID,
			FollowupDate: s.now().In(s.loc).Format(models.DateLayout),
			Status:       string(models.EnquiryStatusAdmitted),
			Notes:        &notes,
			HandledBy:    session.Subject,
		})
		if err != nil {
			s.logger.Warn("failed to mark enquiry admitted",
				zap.Int64("enquiry_id", *req.EnquiryID),
				zap.Int64("admission_id", created.ID),
				zap.Error(err),
			)
		}
		if err := s.cache.InvalidateSession(ctx, session); err != nil {
			s.logger.Warn("failed to refresh enquiry cache", zap.Error(err))
		}
	}

	s.logger.Info("admission created", zap.Int64("admission_id", created.ID), zap.String("operator", session.Subject))
	return created, nil
}

// Update edits an admission, replacing photo or signature when provided.
func (s *AdmissionService) Update(ctx context.Context, session *backend.Session, id int64, req dto.AdmissionRequest, files AdmissionFiles) (*models.Admission, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid admission payload")
	}
	updated, err := s.backend.UpdateAdmission(ctx, session, id, admissionPayload(req), files.parts()...)
	if err != nil {
		return nil, upstreamError(err, "failed to update admission")
	}
	return updated, nil
}

// Delete removes an admission.
func (s *AdmissionService) Delete(ctx context.Context, session *backend.Session, id int64) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.backend.DeleteAdmission(ctx, session, id); err != nil {
		return upstreamError(err, "failed to delete admission")
	}
	s.logger.Info("admission deleted", zap.Int64("admission_id", id), zap.String("operator", session.Subject))
	return nil
}

// Form renders the printable admission form of a stored admission.
func (s *AdmissionService) Form(ctx context.Context, session *backend.Session, id int64, format string) (*ExportFile, error) {
	admission, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, err
	}
	images := document.Images{
		Photo:     s.uploadURL(admission.Photo),
		Signature: s.uploadURL(admission.Signature),
	}
	doc := document.AdmissionForm(*admission, s.settings.Profile(ctx, session), images, s.loc)
	doc.GeneratedAt = s.now()
	return renderDocument(doc, format, fmt.Sprintf("admission_form_%d", admission.ID))
}

// Preview renders an unsaved admission, using the request's data URI
// previews for the photo and signature.
func (s *AdmissionService) Preview(ctx context.Context, session *backend.Session, req dto.AdmissionRequest, format string) (*ExportFile, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	admission := admissionFromRequest(req)
	images := document.Images{Photo: req.PhotoPreview, Signature: req.SignaturePreview}
	doc := document.AdmissionForm(admission, s.settings.Profile(ctx, session), images, s.loc)
	doc.GeneratedAt = s.now()
	return renderDocument(doc, format, "admission_form_preview")
}

func (s *AdmissionService) uploadURL(name *string) string {
	if name == nil || *name == "" {
		return ""
	}
	return s.backend.UploadURL(*name)
}

// admissionPayload strips the preview-only fields before the request is
// sent to the backend.
func admissionPayload(req dto.AdmissionRequest) dto.AdmissionRequest {
	req.PhotoPreview = ""
	req.SignaturePreview = ""
	return req
}

func admissionFromRequest(req dto.AdmissionRequest) models.Admission {
	return models.Admission{
		EnquiryID:       req.EnquiryID,
		FirstName:       req.FirstName,
		MiddleName:      req.MiddleName,
		LastName:        req.LastName,
		CertificateName: req.CertificateName,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		FatherName:      req.FatherName,
		MotherName:      req.MotherName,
		MobileNumber:    req.MobileNumber,
		AlternateMobile: req.AlternateMobile,
		Email:           req.Email,
		Qualification:   req.Qualification,
		Category:        req.Category,
		Address:         req.Address,
		City:            req.City,
		State:           req.State,
		Pincode:         req.Pincode,
		CourseID:        req.CourseID,
		CourseName:      req.CourseName,
		Timing:          req.Timing,
		ReferredBy:      req.ReferredBy,
		AdmissionDate:   req.AdmissionDate,
	}
}
