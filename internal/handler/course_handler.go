package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	"github.com/noah-isme/techskill-console/pkg/response"
)

type courseService interface {
	List(ctx context.Context, session *backend.Session) ([]models.Course, error)
	Get(ctx context.Context, session *backend.Session, id int64) (*models.Course, error)
	Create(ctx context.Context, session *backend.Session, req dto.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, session *backend.Session, id int64, req dto.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, session *backend.Session, id int64) error
}

// CourseHandler exposes course management.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
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
// @Summary Get course
// @Tags Courses
// @Security BearerAuth
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
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
	course, err := h.service.Get(c.Request.Context(), session, id)
	if err != nil {
		response.ViewError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CourseRequest
	if err := bindJSON(c, &req, "course"); err != nil {
		response.ActionError(c, err)
		return
	}
	course, err := h.service.Create(c.Request.Context(), session, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
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
	var req dto.CourseRequest
	if err := bindJSON(c, &req, "course"); err != nil {
		response.ActionError(c, err)
		return
	}
	course, err := h.service.Update(c.Request.Context(), session, id, req)
	if err != nil {
		response.ActionError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
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
