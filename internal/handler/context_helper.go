package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/middleware"
	"github.com/noah-isme/techskill-console/internal/service"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/response"
)

func sessionFromContext(c *gin.Context) (*backend.Session, error) {
	session := middleware.SessionFromContext(c)
	if session == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return session, nil
}

func idParam(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func optionalIDQuery(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s", name))
	}
	return &id, nil
}

func bindJSON(c *gin.Context, dest interface{}, what string) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload")
	}
	return nil
}

// formFile reads an optional multipart file into an upload. The returned
// closer must be called once the upload has been forwarded.
func formFile(c *gin.Context, field string) (*backend.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+field+" upload")
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+field+" upload")
	}
	return &backend.FileUpload{Field: field, FileName: header.Filename, Reader: file}, func() { _ = file.Close() }, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func sendFile(c *gin.Context, file *service.ExportFile, inline bool) {
	response.File(c, file.FileName, file.ContentType, file.Data, inline)
}
