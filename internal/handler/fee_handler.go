package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/internal/service"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type feeService interface {
	List(ctx context.Context, session *backend.Session, studentID *int64) ([]models.FeePayment, error)
	Get(ctx context.Context, session *backend.Session, id int64) (*models.FeePayment, error)
	Create(ctx context.Context, session *backend.Session, req dto.FeeRequest) (*models.FeePayment, error)
	Delete(ctx context.Context, session *backend.Session, id int64) error
	Summary(ctx context.Context, session *backend.Session, studentID int64) (*models.FeeSummary, error)
}

type receiptRenderer interface {
	Render(ctx context.Context, session *backend.Session, feeID int64, format string) (*service.ExportFile, error)
}

// FeeHandler exposes payments, per-student summaries and receipts.
type FeeHandler struct {
	service  feeService
	receipts receiptRenderer
}

// NewFeeHandler constructs the handler.
func NewFeeHandler(svc feeService, receipts receiptRenderer) *FeeHandler {
	return &FeeHandler{service: svc, receipts: receipts}
}

// List godoc
// @Summary List payments
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param student_id query int false "Only this student's payments"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
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

// Get godoc
// @Summary Get payment
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param id path int true "Fee ID"
// @Success 200 {object} response.Envelope
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
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
	fee, err := h.service.Get(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Create godoc
// @Summary Record payment
// @Tags Fees
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.FeeRequest true "Payment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.FeeRequest
	if err := bindJSON(c, &req, "fee"); err != nil {
		response.ActionError(c, err)
		return
	}
	fee, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, fee)
}

// Delete godoc
// @Summary Delete payment
// @Tags Fees
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Success 204
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
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

// Summary godoc
// @Summary Student fee summary
// @Description Payments, totals and outstanding balance of one student
// @Tags Fees
// @Security BearerAuth
// @Produce json
// @Param id path int true "Student (admission) ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/fees/summary [get]
func (h *FeeHandler) Summary(c *gin.Context) {
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
	summary, err := h.service.Summary(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Receipt godoc
// @Summary Render a fee receipt
// @Description Renders without recording; use POST /receipts to issue a numbered copy
// @Tags Fees
// @Security BearerAuth
// @Produce text/html
// @Produce application/pdf
// @Param id path int true "Fee ID"
// @Param format query string false "html (default) or pdf"
// @Success 200 {file} file
// @Router /fees/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
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
	file, err := h.receipts.Render(c.Request.Context(), session, id, documentFormat(c))
	if err != nil {
		response.ActionError(c, err)
		return
	}
	sendFile(c, file, true)
}
