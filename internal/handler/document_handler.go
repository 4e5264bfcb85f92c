package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type documentService interface {
	List(ctx context.Context, session *backend.Session, studentID *int64) ([]models.StudentDocument, error)
	Upload(ctx context.Context, session *backend.Session, studentID int64, documentType string, file backend.FileUpload) (*models.StudentDocument, error)
	Delete(ctx context.Context, session *backend.Session, id int64) error
}

// DocumentHandler exposes student document uploads.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(svc documentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// List godoc
// @Summary List student documents
// @Tags Documents
// @Security BearerAuth
// @Produce json
// @Param student_id query int false "Only this student's documents"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := optionalIDQuery(c, "student_id")
	if err != nil {
		response.ViewError(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), session, studentID)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Upload godoc
// @Summary Upload a student document
// @Tags Documents
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param student_id formData int true "Student ID"
// @Param document_type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("student_id")), 10, 64)
	if err != nil || studentID <= 0 {
		response.ActionError(c, appErrors.Clone(appErrors.ErrValidation, "invalid student_id"))
		return
	}
	file, done, err := formFile(c, "file")
	defer done()
	if err != nil {
		response.ActionError(c, err)
		return
	}
	if file == nil {
		response.ActionError(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	doc, err := h.service.Upload(c.Request.Context(), session, studentID, c.PostForm("document_type"), *file)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, doc)
}

// Delete godoc
// @Summary Delete a student document
// @Tags Documents
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.ActionError(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, id); err != nil {
		response.ActionError(c, err)
		return
	}
	response.NoContent(c)
}
