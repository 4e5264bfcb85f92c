package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type fakeDocumentBackend struct {
	docs      []models.StudentDocument
	uploaded  []string
	deleted   []int64
	listErr   error
	uploadErr error
}

func (f *fakeDocumentBackend) ListDocuments(_ context.Context, _ *backend.Session, studentID *int64) ([]models.StudentDocument, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if studentID == nil {
		return f.docs, nil
	}
	var out []models.StudentDocument
	for _, doc := range f.docs {
		if doc.StudentID == *studentID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (f *fakeDocumentBackend) UploadDocument(_ context.Context, _ *backend.Session, studentID int64, documentType string, file backend.FileUpload) (*models.StudentDocument, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, fmt.Sprintf("%d:%s:%s", studentID, documentType, file.FileName))
	return &models.StudentDocument{ID: 9, StudentID: studentID, DocumentType: documentType, FileName: file.FileName}, nil
}

func (f *fakeDocumentBackend) DeleteDocument(_ context.Context, _ *backend.Session, id int64) error {
	if id == 404 {
		return &backend.APIError{Status: 404, Detail: "Document not found"}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func TestStudentDocumentListFiltersByStudent(t *testing.T) {
	fake := &fakeDocumentBackend{docs: []models.StudentDocument{
		{ID: 1, StudentID: 3, DocumentType: "ID_PROOF"},
		{ID: 2, StudentID: 4, DocumentType: "MARKSHEET"},
	}}
	svc := NewStudentDocumentService(fake, nil)

	all, err := svc.List(context.Background(), testSession, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	student := int64(4)
	mine, err := svc.List(context.Background(), testSession, &student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(2), mine[0].ID)

	_, err = svc.List(context.Background(), nil, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestStudentDocumentUploadValidates(t *testing.T) {
	fake := &fakeDocumentBackend{}
	svc := NewStudentDocumentService(fake, nil)
	file := backend.FileUpload{FileName: "aadhaar.pdf", Reader: strings.NewReader("%PDF")}

	cases := map[string]struct {
		studentID int64
		docType   string
		file      backend.FileUpload
		message   string
	}{
		"missing student": {0, "ID_PROOF", file, "student_id is required"},
		"blank type":      {3, "  ", file, "document_type is required"},
		"missing file":    {3, "ID_PROOF", backend.FileUpload{}, "file is required"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), testSession, tc.studentID, tc.docType, tc.file)
			appErr := appErrors.FromError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
	assert.Empty(t, fake.uploaded)

	doc, err := svc.Upload(context.Background(), testSession, 3, " ID_PROOF ", file)
	require.NoError(t, err)
	assert.Equal(t, "ID_PROOF", doc.DocumentType)
	assert.Equal(t, []string{"3:ID_PROOF:aadhaar.pdf"}, fake.uploaded)
}

func TestStudentDocumentBackendFailures(t *testing.T) {
	fake := &fakeDocumentBackend{uploadErr: fmt.Errorf("%w: dial tcp", backend.ErrUnreachable)}
	svc := NewStudentDocumentService(fake, nil)

	_, err := svc.Upload(context.Background(), testSession, 3, "ID_PROOF", backend.FileUpload{FileName: "a.pdf", Reader: strings.NewReader("x")})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErr.Code)
	assert.Equal(t, "failed to upload document", appErr.Message)

	err = svc.Delete(context.Background(), testSession, 404)
	appErr = appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Document not found", appErr.Message)

	require.NoError(t, svc.Delete(context.Background(), testSession, 5))
	assert.Equal(t, []int64{5}, fake.deleted)
}
