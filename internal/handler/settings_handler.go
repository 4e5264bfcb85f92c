package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type settingsService interface {
	Get(ctx context.Context, session *backend.Session) (*models.InstituteProfile, error)
	Update(ctx context.Context, session *backend.Session, req dto.SettingsRequest, logo *backend.FileUpload) (*models.InstituteProfile, error)
}

// SettingsHandler exposes the institute profile.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Get godoc
// @Summary Institute settings
// @Description Stored profile merged with defaults
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.service.Get(c.Request.Context(), session)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update institute settings
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param name formData string false "Institute name"
// @Param address formData string false "Address"
// @Param phone formData string false "Phone"
// @Param email formData string false "Email"
// @Param website formData string false "Website"
// @Param centerCode formData string false "Center code"
// @Param logo formData file false "Logo image"
// @Success 200 {object} response.Envelope
// @Router /settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var (
		req  dto.SettingsRequest
		logo *backend.FileUpload
	)
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			response.ActionError(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
			return
		}
		var done func()
		logo, done, err = formFile(c, "logo")
		defer done()
		if err != nil {
			response.ActionError(c, err)
			return
		}
	} else if err := bindJSON(c, &req, "settings"); err != nil {
		response.ActionError(c, err)
		return
	}

	profile, err := h.service.Update(c.Request.Context(), session, req, logo)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
