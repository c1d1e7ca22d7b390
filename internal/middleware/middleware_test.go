package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/service"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Wrap(errors.New("bad signature"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return v.claims, nil
}

func newProtectedRouter(role models.UserRole, allowed ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := validatorStub{claims: &models.JWTClaims{UserID: "u-1", Role: role}}
	r.GET("/runs", JWT(tokens), RequireRoles(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newProtectedRouter(models.RoleAdmin, models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/runs", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/runs", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/runs", "Bearer bad").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/runs", "Bearer good").Code)
}

func TestRequireRoles(t *testing.T) {
	teacher := newProtectedRouter(models.RoleTeacher, models.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, doRequest(teacher, "/runs", "Bearer good").Code)

	super := newProtectedRouter(models.RoleSuperAdmin, models.RoleAdmin)
	assert.Equal(t, http.StatusNoContent, doRequest(super, "/runs", "Bearer good").Code)
}

func TestResponseMetaAndMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics), WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/runs/:id", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := doRequest(r, "/runs/abc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}

func TestMetricsSkipsScrapePath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/metrics"))
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	doRequest(r, "/metrics", "")
	assert.Equal(t, uint64(0), metrics.Snapshot().RequestsTotal)

	w := doRequest(r, "/no/such/route", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, uint64(1), metrics.Snapshot().RequestsTotal)
}
