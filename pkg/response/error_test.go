package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()
	return gin.New()
}

func perform(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestError_Classified(t *testing.T) {
	router := setupTestRouter()
	router.GET("/posts/:id", func(c *gin.Context) {
		Error(c, logger.NewNop(), apperror.NotFound("Post not found"))
	})

	w, resp := perform(t, router, "GET", "/posts/1", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "Not Found", resp.Error)
	assert.Equal(t, "Post not found", resp.Message)
	assert.Equal(t, "/posts/1", resp.Path)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Nil(t, resp.Details)
}

func TestError_UnclassifiedHidesCause(t *testing.T) {
	router := setupTestRouter()
	router.GET("/boom", func(c *gin.Context) {
		Error(c, logger.NewNop(), errors.New("pq: relation \"posts\" does not exist"))
	})

	w, resp := perform(t, router, "GET", "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalMessage, resp.Message)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestError_InternalHidesMessage(t *testing.T) {
	router := setupTestRouter()
	router.GET("/boom", func(c *gin.Context) {
		Error(c, logger.NewNop(), apperror.Internal("failed to toggle like", errors.New("deadlock")))
	})

	w, resp := perform(t, router, "GET", "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalMessage, resp.Message)
	assert.NotContains(t, w.Body.String(), "deadlock")
}

type signup struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Email    string `json:"email" binding:"required,email"`
}

func TestBindError_Details(t *testing.T) {
	router := setupTestRouter()
	router.POST("/signup", func(c *gin.Context) {
		var req signup
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w, resp := perform(t, router, "POST", "/signup", `{"username":"ab","email":"nope"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Equal(t, "must be at least 3 characters", resp.Details["username"])
	assert.Equal(t, "must be a valid email address", resp.Details["email"])
}

func TestBindError_MalformedBody(t *testing.T) {
	router := setupTestRouter()
	router.POST("/signup", func(c *gin.Context) {
		var req signup
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	w, resp := perform(t, router, "POST", "/signup", `{"username":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Details, "body")
}

func TestRecovery(t *testing.T) {
	router := setupTestRouter()
	router.Use(Recovery(logger.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("nil map write")
	})

	w, resp := perform(t, router, "GET", "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalMessage, resp.Message)
	assert.NotContains(t, w.Body.String(), "nil map")
}
