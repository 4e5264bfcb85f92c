package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type courseBackend interface {
	ListCourses(ctx context.Context, s *backend.Session) ([]models.Course, error)
	GetCourse(ctx context.Context, s *backend.Session, id int64) (*models.Course, error)
	CreateCourse(ctx context.Context, s *backend.Session, payload interface{}) (*models.Course, error)
	UpdateCourse(ctx context.Context, s *backend.Session, id int64, payload interface{}) (*models.Course, error)
	DeleteCourse(ctx context.Context, s *backend.Session, id int64) error
}

// CourseService manages the course catalogue.
type CourseService struct {
	backend   courseBackend
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(client courseBackend, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{backend: client, validator: validate, logger: logger}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context, session *backend.Session) ([]models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	items, err := s.backend.ListCourses(ctx, session)
	if err != nil {
		return nil, upstreamError(err, "failed to load courses")
	}
	return items, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, session *backend.Session, id int64) (*models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	course, err := s.backend.GetCourse(ctx, session, id)
	if err != nil {
		return nil, upstreamError(err, "failed to load course")
	}
	return course, nil
}

// Create adds a course. New courses are active unless stated otherwise.
func (s *CourseService) Create(ctx context.Context, session *backend.Session, req dto.CourseRequest) (*models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	payload, err := s.payload(req)
	if err != nil {
		return nil, err
	}
	if payload.Active == nil {
		active := true
		payload.Active = &active
	}
	created, err := s.backend.CreateCourse(ctx, session, payload)
	if err != nil {
		return nil, upstreamError(err, "failed to create course")
	}
	s.logger.Info("course created", zap.Int64("course_id", created.ID), zap.String("operator", session.Subject))
	return created, nil
}

// Update edits a course.
func (s *CourseService) Update(ctx context.Context, session *backend.Session, id int64, req dto.CourseRequest) (*models.Course, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	payload, err := s.payload(req)
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateCourse(ctx, session, id, payload)
	if err != nil {
		return nil, upstreamError(err, "failed to update course")
	}
	return updated, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, session *backend.Session, id int64) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.backend.DeleteCourse(ctx, session, id); err != nil {
		return upstreamError(err, "failed to delete course")
	}
	s.logger.Info("course deleted", zap.Int64("course_id", id), zap.String("operator", session.Subject))
	return nil
}

func (s *CourseService) payload(req dto.CourseRequest) (dto.CourseRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return req, validationError(err, "invalid course payload")
	}
	if req.Fee.IsNegative() {
		return req, appErrors.Clone(appErrors.ErrValidation, "fee must not be negative")
	}
	return req, nil
}
