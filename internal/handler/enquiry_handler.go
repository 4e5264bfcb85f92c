package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/service"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type enquiryService interface {
	List(ctx context.Context, session *backend.Session, filter models.EnquiryFilter) (*dto.EnquiryListResponse, error)
	Get(ctx context.Context, session *backend.Session, id int64) (*dto.EnquiryDetailResponse, error)
	Create(ctx context.Context, session *backend.Session, req dto.EnquiryRequest) (*models.Enquiry, error)
	Update(ctx context.Context, session *backend.Session, id int64, req dto.EnquiryRequest) (*models.Enquiry, error)
	Delete(ctx context.Context, session *backend.Session, id int64) error
	Followups(ctx context.Context, session *backend.Session, id int64) ([]models.Followup, error)
	AddFollowup(ctx context.Context, session *backend.Session, id int64, req dto.FollowupRequest) (*models.Followup, error)
	Export(ctx context.Context, session *backend.Session, filter models.EnquiryFilter, format string) (*service.ExportFile, error)
}

// EnquiryHandler exposes the reconciled enquiry list and follow-up log.
type EnquiryHandler struct {
	service enquiryService
}

// NewEnquiryHandler constructs the handler.
func NewEnquiryHandler(svc enquiryService) *EnquiryHandler {
	return &EnquiryHandler{service: svc}
}

func enquiryFilter(c *gin.Context) models.EnquiryFilter {
	filter := models.EnquiryFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		Key:    c.Query("key"),
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.Query("page_size")); err == nil {
		filter.PageSize = size
	}
	return filter
}

// List godoc
// @Summary List enquiries
// @Description Enquiries reconciled with their follow-up history, filtered and paginated
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Param search query string false "Name, mobile, course or ID substring"
// @Param status query string false "PENDING, INTERESTED, NOT_INTERESTED, ADMITTED or ALL"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param key query string false "Filter fingerprint from the previous page"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /enquiries [get]
func (h *EnquiryHandler) List(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), session, enquiryFilter(c))
	if err != nil {
		response.ViewError(c, err)
		return
	}
	pagination := page.Pagination
	response.JSON(c, http.StatusOK, page.Items, &pagination, map[string]interface{}{"key": page.Key})
}

// Get godoc
// @Summary Get enquiry
// @Description Reconciled enquiry with its follow-up history, newest first
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Param id path int true "Enquiry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enquiries/{id} [get]
func (h *EnquiryHandler) Get(c *gin.Context) {
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
	detail, err := h.service.Get(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create enquiry
// @Tags Enquiries
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.EnquiryRequest true "Enquiry payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enquiries [post]
func (h *EnquiryHandler) Create(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EnquiryRequest
	if err := bindJSON(c, &req, "enquiry"); err != nil {
		response.ActionError(c, err)
		return
	}
	enquiry, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, enquiry)
}

// Update godoc
// @Summary Update enquiry
// @Tags Enquiries
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Enquiry ID"
// @Param payload body dto.EnquiryRequest true "Enquiry payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enquiries/{id} [put]
func (h *EnquiryHandler) Update(c *gin.Context) {
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
	var req dto.EnquiryRequest
	if err := bindJSON(c, &req, "enquiry"); err != nil {
		response.ActionError(c, err)
		return
	}
	enquiry, err := h.service.Update(c.Request.Context(), session, id, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enquiry, nil)
}

// Delete godoc
// @Summary Delete enquiry
// @Tags Enquiries
// @Security BearerAuth
// @Param id path int true "Enquiry ID"
// @Success 204
// @Router /enquiries/{id} [delete]
func (h *EnquiryHandler) Delete(c *gin.Context) {
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

// Followups godoc
// @Summary List follow-ups of an enquiry
// @Tags Enquiries
// @Security BearerAuth
// @Produce json
// @Param id path int true "Enquiry ID"
// @Success 200 {object} response.Envelope
// @Router /enquiries/{id}/followups [get]
func (h *EnquiryHandler) Followups(c *gin.Context) {
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
	items, err := h.service.Followups(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// AddFollowup godoc
// @Summary Log a follow-up
// @Tags Enquiries
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Enquiry ID"
// @Param payload body dto.FollowupRequest true "Follow-up payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enquiries/{id}/followups [post]
func (h *EnquiryHandler) AddFollowup(c *gin.Context) {
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
	var req dto.FollowupRequest
	if err := bindJSON(c, &req, "follow-up"); err != nil {
		response.ActionError(c, err)
		return
	}
	followup, err := h.service.AddFollowup(c.Request.Context(), session, id, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, followup)
}

// Export godoc
// @Summary Export enquiries
// @Description Download the filtered enquiry list as CSV or PDF
// @Tags Enquiries
// @Security BearerAuth
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param search query string false "Search text"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /enquiries/export [get]
func (h *EnquiryHandler) Export(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "csv")))
	file, err := h.service.Export(c.Request.Context(), session, enquiryFilter(c), format)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	sendFile(c, file, false)
}
