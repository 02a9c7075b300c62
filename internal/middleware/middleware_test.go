package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/internal/service"
)

func newProtectedRouter(auth *service.AuthService, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/", JWT(auth), RequireRoles(models.RoleAdmin, models.RoleSuperAdmin), Audit(logger, "schedule"))
	group.POST("/schedules", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func issue(t *testing.T, auth *service.AuthService, role models.UserRole) string {
	t.Helper()
	token, err := auth.IssueToken("ops", role, "Registrar", time.Hour)
	require.NoError(t, err)
	return token
}

func TestJWTAndRoles(t *testing.T) {
	auth := service.NewAuthService("secret")
	router := newProtectedRouter(auth, nil)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"teacher role", "Bearer " + issue(t, auth, models.RoleTeacher), http.StatusForbidden},
		{"admin role", "Bearer " + issue(t, auth, models.RoleAdmin), http.StatusCreated},
		{"superadmin role", "bearer " + issue(t, auth, models.RoleSuperAdmin), http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/schedules", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "UNAUTHORIZED"))
}

func TestAuditLogsSuccessfulMutations(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	auth := service.NewAuthService("secret")
	router := newProtectedRouter(auth, zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/schedules", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, auth, models.RoleAdmin))
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("resource changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ops", fields["user_id"])
	assert.Equal(t, "schedule", fields["resource"])

	rejected := httptest.NewRequest(http.MethodPost, "/schedules", nil)
	router.ServeHTTP(httptest.NewRecorder(), rejected)
	assert.Len(t, logs.FilterMessage("resource changed").All(), 1)
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	router := gin.New()
	router.Use(Metrics(metrics))
	router.GET("/teachers/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teachers/T001", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/teachers/:id",status="200"} 1`)
}
