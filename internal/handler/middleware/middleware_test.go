//go:build unit

package middleware_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"parking-hold-engine/internal/handler/middleware"
	"parking-hold-engine/internal/pkg/apikey"
	"parking-hold-engine/internal/pkg/config"
	"parking-hold-engine/internal/pkg/jwt"
	"parking-hold-engine/tests/common/authtest"
	"parking-hold-engine/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func TestRequireEdgeKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hash, err := apikey.Hash("edge-secret")
	require.NoError(t, err)

	router := gin.New()
	router.PUT("/edge", middleware.NewEdgeKeyMiddleware(config.AuthConfig{EdgeAPIKeyHash: hash}).RequireEdgeKey(), ok)

	unconfigured := gin.New()
	unconfigured.PUT("/edge", middleware.NewEdgeKeyMiddleware(config.AuthConfig{}).RequireEdgeKey(), ok)

	testCases := []struct {
		name       string
		router     *gin.Engine
		key        string
		expectCode int
	}{
		{name: "valid key", router: router, key: "edge-secret", expectCode: http.StatusOK},
		{name: "wrong key", router: router, key: "guess", expectCode: http.StatusUnauthorized},
		{name: "missing key", router: router, key: "", expectCode: http.StatusUnauthorized},
		{name: "hash not configured", router: unconfigured, key: "edge-secret", expectCode: http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			headers := map[string]string{}
			if tc.key != "" {
				headers[middleware.EdgeKeyHeader] = tc.key
			}
			rec := httptest.PerformRequestWithHeaders(t, tc.router, http.MethodPut, "/edge", nil, headers)
			assert.Equal(t, tc.expectCode, rec.Code)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "middleware-test-secret"

	router := gin.New()
	router.Use(middleware.NewAuthMiddleware(jwt.NewVerifier(secret)).OptionalAuth())
	router.GET("/whoami", func(c *gin.Context) {
		id, found := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"found": found, "user_id": id.String()})
	})

	helper := authtest.NewJWTHelper(secret)
	userID := uuid.New()

	type whoami struct {
		Found  bool   `json:"found"`
		UserID string `json:"user_id"`
	}
	testCases := []struct {
		name      string
		token     string
		wantFound bool
	}{
		{name: "valid token", token: helper.GenerateToken(t, userID), wantFound: true},
		{name: "expired token", token: helper.CreateExpiredToken(t, userID), wantFound: false},
		{name: "foreign signature", token: authtest.NewJWTHelper("other").GenerateToken(t, userID), wantFound: false},
		{name: "anonymous", token: "", wantFound: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.PerformRequest(t, router, http.MethodGet, "/whoami", nil, tc.token)

			var body whoami
			httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
			assert.Equal(t, tc.wantFound, body.Found)
			if tc.wantFound {
				assert.Equal(t, userID.String(), body.UserID)
			}
		})
	}
}

func TestCustomRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.CustomRecovery(), middleware.ErrorHandler())
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.PerformRequest(t, router, http.MethodGet, "/panic", nil, "")
	httptest.AssertErrorResponse(t, rec, http.StatusInternalServerError, "Internal server error")
}

func TestCORS_AlwaysAllowsEdgeHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.NewCORSMiddleware(config.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "PUT"},
		AllowHeaders: []string{"Origin"},
		MaxAge:       time.Hour,
	}))
	router.PUT("/edge", ok)

	req := nethttptest.NewRequest(http.MethodOptions, "/edge", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", middleware.EdgeKeyHeader)
	rec := nethttptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), middleware.EdgeKeyHeader)
}
