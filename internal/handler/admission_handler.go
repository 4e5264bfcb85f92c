package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/service"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type admissionService interface {
	List(ctx context.Context, session *backend.Session) ([]models.Admission, error)
	Get(ctx context.Context, session *backend.Session, id int64) (*models.Admission, error)
	Create(ctx context.Context, session *backend.Session, req dto.AdmissionRequest, files service.AdmissionFiles) (*models.Admission, error)
	Update(ctx context.Context, session *backend.Session, id int64, req dto.AdmissionRequest, files service.AdmissionFiles) (*models.Admission, error)
	Delete(ctx context.Context, session *backend.Session, id int64) error
	Form(ctx context.Context, session *backend.Session, id int64, format string) (*service.ExportFile, error)
	Preview(ctx context.Context, session *backend.Session, req dto.AdmissionRequest, format string) (*service.ExportFile, error)
}

// AdmissionHandler exposes admissions and their printable forms.
type AdmissionHandler struct {
	service admissionService
}

// NewAdmissionHandler constructs the handler.
func NewAdmissionHandler(svc admissionService) *AdmissionHandler {
	return &AdmissionHandler{service: svc}
}

// List godoc
// @Summary List admissions
// @Tags Admissions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admissions [get]
func (h *AdmissionHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), session)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get admission
// @Tags Admissions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Admission ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admissions/{id} [get]
func (h *AdmissionHandler) Get(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		response.ViewError(c, err)
		return
	}
	admission, err := h.service.Get(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admission, nil)
}

// Create godoc
// @Summary Create admission
// @Description JSON body, or multipart with the JSON in a "data" field plus optional "photo" and "signature" files
// @Tags Admissions
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param payload body dto.AdmissionRequest true "Admission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admissions [post]
func (h *AdmissionHandler) Create(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, files, done, err := admissionInput(c)
	defer done()
	if err != nil {
		response.ActionError(c, err)
		return
	}
	admission, err := h.service.Create(c.Request.Context(), session, req, files)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, admission)
}

// Update godoc
// @Summary Update admission
// @Tags Admissions
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Admission ID"
// @Param payload body dto.AdmissionRequest true "Admission payload"
// @Success 200 {object} response.Envelope
// @Router /admissions/{id} [put]
func (h *AdmissionHandler) Update(c *gin.Context) {
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
	req, files, done, err := admissionInput(c)
	defer done()
	if err != nil {
		response.ActionError(c, err)
		return
	}
	admission, err := h.service.Update(c.Request.Context(), session, id, req, files)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admission, nil)
}

// Delete godoc
// @Summary Delete admission
// @Tags Admissions
// @Security BearerAuth
// @Param id path int true "Admission ID"
// @Success 204
// @Router /admissions/{id} [delete]
func (h *AdmissionHandler) Delete(c *gin.Context) {
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

// Form godoc
// @Summary Printable admission form
// @Tags Admissions
// @Security BearerAuth
// @Produce text/html
// @Produce application/pdf
// @Param id path int true "Admission ID"
// @Param format query string false "html (default) or pdf"
// @Success 200 {file} file
// @Router /admissions/{id}/form [get]
func (h *AdmissionHandler) Form(c *gin.Context) {
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
	file, err := h.service.Form(c.Request.Context(), session, id, documentFormat(c))
	if err != nil {
		response.ActionError(c, err)
		return
	}
	sendFile(c, file, true)
}

// Preview godoc
// @Summary Preview an admission form before saving
// @Tags Documents
// @Security BearerAuth
// @Accept json
// @Produce text/html
// @Produce application/pdf
// @Param format query string false "html (default) or pdf"
// @Param payload body dto.AdmissionRequest true "Unsaved admission"
// @Success 200 {file} file
// @Router /documents/admission-form/preview [post]
func (h *AdmissionHandler) Preview(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AdmissionRequest
	if err := bindJSON(c, &req, "admission"); err != nil {
		response.ActionError(c, err)
		return
	}
	file, err := h.service.Preview(c.Request.Context(), session, req, documentFormat(c))
	if err != nil {
		response.ActionError(c, err)
		return
	}
	sendFile(c, file, true)
}

func documentFormat(c *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", service.DocumentFormatHTML)))
}

// admissionInput reads an admission from a JSON body or from a multipart
// form whose "data" field holds the JSON.
func admissionInput(c *gin.Context) (dto.AdmissionRequest, service.AdmissionFiles, func(), error) {
	var req dto.AdmissionRequest
	var files service.AdmissionFiles
	if !isMultipart(c) {
		return req, files, func() {}, bindJSON(c, &req, "admission")
	}

	if err := json.Unmarshal([]byte(c.PostForm("data")), &req); err != nil {
		return req, files, func() {}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admission payload")
	}
	photo, closePhoto, err := formFile(c, "photo")
	if err != nil {
		return req, files, closePhoto, err
	}
	signature, closeSignature, err := formFile(c, "signature")
	done := func() {
		closePhoto()
		closeSignature()
	}
	if err != nil {
		return req, files, done, err
	}
	files.Photo = photo
	files.Signature = signature
	return req, files, done, nil
}
