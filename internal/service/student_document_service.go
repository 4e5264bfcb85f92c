package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type studentDocumentBackend interface {
	ListDocuments(ctx context.Context, s *backend.Session, studentID *int64) ([]models.StudentDocument, error)
	UploadDocument(ctx context.Context, s *backend.Session, studentID int64, documentType string, file backend.FileUpload) (*models.StudentDocument, error)
	DeleteDocument(ctx context.Context, s *backend.Session, id int64) error
}

// StudentDocumentService manages files attached to students.
type StudentDocumentService struct {
	backend studentDocumentBackend
	logger  *zap.Logger
}

// NewStudentDocumentService constructs a StudentDocumentService.
func NewStudentDocumentService(client studentDocumentBackend, logger *zap.Logger) *StudentDocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentDocumentService{backend: client, logger: logger}
}

// List returns documents, optionally for one student.
func (s *StudentDocumentService) List(ctx context.Context, session *backend.Session, studentID *int64) ([]models.StudentDocument, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	items, err := s.backend.ListDocuments(ctx, session, studentID)
	if err != nil {
		return nil, upstreamError(err, "failed to load documents")
	}
	return items, nil
}

// Upload stores a document for a student.
func (s *StudentDocumentService) Upload(ctx context.Context, session *backend.Session, studentID int64, documentType string, file backend.FileUpload) (*models.StudentDocument, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}
	documentType = strings.TrimSpace(documentType)
	switch {
	case studentID <= 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "student_id is required")
	case documentType == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "document_type is required")
	case file.Reader == nil || file.FileName == "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	doc, err := s.backend.UploadDocument(ctx, session, studentID, documentType, file)
	if err != nil {
		return nil, upstreamError(err, "failed to upload document")
	}
	s.logger.Info("document uploaded",
		zap.Int64("student_id", studentID),
		zap.String("document_type", documentType),
		zap.String("operator", session.Subject),
	)
	return doc, nil
}

// Delete removes a document.
func (s *StudentDocumentService) Delete(ctx context.Context, session *backend.Session, id int64) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.backend.DeleteDocument(ctx, session, id); err != nil {
		return upstreamError(err, "failed to delete document")
	}
	return nil
}
