package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agent-service/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestContext(t *testing.T, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "secret", ExpirationHours: 1})
	orgID := uint(5)
	token, err := util.GenerateTokenWithOrg("ana@example.com", 1, &orgID, "Acme", "owner")
	require.NoError(t, err)

	c, _ := authTestContext(t, "Bearer "+token)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}

	require.NoError(t, JWTAuthMiddleware(util)(next)(c))
	assert.True(t, called)

	got, ok := OrgID(c)
	require.True(t, ok)
	assert.Equal(t, uint(5), got)
}

func TestJWTAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	c, rec := authTestContext(t, "")

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, JWTAuthMiddleware(util)(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddlewareRejectsBadToken(t *testing.T) {
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "secret", ExpirationHours: 1})

	c, rec := authTestContext(t, "Bearer nonsense")

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, JWTAuthMiddleware(util)(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrgIDWithoutClaims(t *testing.T) {
	c, _ := authTestContext(t, "")
	_, ok := OrgID(c)
	assert.False(t, ok)
}
