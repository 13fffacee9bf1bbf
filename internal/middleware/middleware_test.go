package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"store-ratings/internal/apperr"
	"store-ratings/internal/models"
	"store-ratings/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*service.Principal

func (s stubAuth) Authenticate(_ context.Context, token string) (*service.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, apperr.Unauthorized("Invalid token")
}

func newEngine(op service.Operation) *gin.Engine {
	authn := stubAuth{
		"user-token":  {UserID: "u1", Role: models.RoleUser},
		"admin-token": {UserID: "a1", Role: models.RoleAdmin},
	}
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.GET("/x", RequireAuth(authn), RequireRole(op), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": CurrentPrincipal(c).UserID})
	})
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	r := newEngine(service.OpListStores)

	rec := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"No token provided"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "bogus").Code)

	rec = get(r, "user-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"u1"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newEngine(service.OpListUsers)

	assert.Equal(t, http.StatusForbidden, get(r, "user-token").Code)
	assert.Equal(t, http.StatusOK, get(r, "admin-token").Code)
}

func TestAbortWithError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.Validation("Validation failed", apperr.FieldError{Field: "email", Message: "bad"}), http.StatusUnprocessableEntity, "Validation failed"},
		{apperr.Conflict("Email already registered"), http.StatusConflict, "Email already registered"},
		{apperr.NotFound("Store not found"), http.StatusNotFound, "Store not found"},
		{apperr.Forbidden("Forbidden"), http.StatusForbidden, "Forbidden"},
		{apperr.Internal("db down", errors.New("dial tcp")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("plain"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		AbortWithError(c, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		var body struct {
			Message string              `json:"message"`
			Errors  []apperr.FieldError `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.msg, body.Message)
		assert.True(t, c.IsAborted())
	}
}
