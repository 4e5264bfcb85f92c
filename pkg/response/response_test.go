package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWritesEnvelope(t *testing.T) {
	c, rec := newContext()

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1}, map[string]interface{}{"key": "all"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.Equal(t, "all", body["meta"].(map[string]interface{})["key"])
	assert.NotContains(t, body, "error")
}

func TestViewAndActionErrors(t *testing.T) {
	c, rec := newContext()
	ViewError(c, appErrors.ErrUpstreamUnavailable)

	var env struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, appErrors.DisplayView, env.Error.Display)
	assert.Empty(t, appErrors.ErrUpstreamUnavailable.Display)

	c, rec = newContext()
	ActionError(c, errors.New("boom"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, appErrors.DisplayToast, env.Error.Display)
	assert.Equal(t, appErrors.ErrInternal.Code, env.Error.Code)
}

func TestFileDisposition(t *testing.T) {
	c, rec := newContext()
	File(c, "receipt_1.html", "text/html; charset=utf-8", []byte("<p>ok</p>"), true)

	assert.Equal(t, `inline; filename="receipt_1.html"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "<p>ok</p>", rec.Body.String())

	c, rec = newContext()
	File(c, "enquiries.csv", "text/csv", []byte("a,b\n"), false)
	assert.Equal(t, `attachment; filename="enquiries.csv"`, rec.Header().Get("Content-Disposition"))
}
