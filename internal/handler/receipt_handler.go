package handler

import (
	"context"
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

type receiptService interface {
	Issue(ctx context.Context, session *backend.Session, feeID int64) (*dto.ReceiptIssueResponse, error)
	Reprint(ctx context.Context, number string) (*service.ExportFile, error)
	Download(ctx context.Context, token string) (*service.ExportFile, error)
	History(ctx context.Context, feeID, studentID *int64) ([]models.IssuedReceipt, error)
}

// ReceiptHandler exposes the issued receipt ledger.
type ReceiptHandler struct {
	service receiptService
}

// NewReceiptHandler constructs the handler.
func NewReceiptHandler(svc receiptService) *ReceiptHandler {
	return &ReceiptHandler{service: svc}
}

// Issue godoc
// @Summary Issue a numbered receipt
// @Tags Receipts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.ReceiptIssueRequest true "Payment to issue for"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope "Ledger disabled"
// @Router /receipts [post]
func (h *ReceiptHandler) Issue(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReceiptIssueRequest
	if err := bindJSON(c, &req, "receipt"); err != nil {
		response.ActionError(c, err)
		return
	}
	if req.FeeID <= 0 {
		response.ActionError(c, appErrors.Clone(appErrors.ErrValidation, "feeId is required"))
		return
	}
	receipt, err := h.service.Issue(c.Request.Context(), session, req.FeeID)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, receipt)
}

// History godoc
// @Summary List issued receipts
// @Tags Receipts
// @Security BearerAuth
// @Produce json
// @Param fee_id query int false "Payment ID"
// @Param student_id query int false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /receipts [get]
func (h *ReceiptHandler) History(c *gin.Context) {
	feeID, err := optionalIDQuery(c, "fee_id")
	if err != nil {
		response.ViewError(c, err)
		return
	}
	studentID, err := optionalIDQuery(c, "student_id")
	if err != nil {
		response.ViewError(c, err)
		return
	}
	items, err := h.service.History(c.Request.Context(), feeID, studentID)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Reprint godoc
// @Summary Reprint an issued receipt
// @Tags Receipts
// @Security BearerAuth
// @Produce text/html
// @Param number path string true "Receipt number"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /receipts/{number} [get]
func (h *ReceiptHandler) Reprint(c *gin.Context) {
	number := strings.TrimSpace(c.Param("number"))
	if number == "" {
		response.ActionError(c, appErrors.Clone(appErrors.ErrValidation, "receipt number is required"))
		return
	}
	file, err := h.service.Reprint(c.Request.Context(), number)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	sendFile(c, file, true)
}

// Download godoc
// @Summary Download a receipt with a signed link
// @Description Does not require a session; the token authorises the download
// @Tags Receipts
// @Produce text/html
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /receipts/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, err := h.service.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file, false)
}
