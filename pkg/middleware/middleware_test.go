package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ordem-servico/internal/authz"
	"ordem-servico/internal/dto"
	"ordem-servico/pkg/constants"
	"ordem-servico/pkg/service"
	"ordem-servico/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu      sync.Mutex
	entries []dto.CreateAuditLogDTO
}

func (f *fakeRecorder) Record(_ context.Context, entry dto.CreateAuditLogDTO) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func newJWT() service.JWTService {
	return service.NewJWTService("test-secret", 15*time.Minute, time.Hour, zap.NewNop())
}

func newEcho(jwtSvc service.JWTService, recorder AuditRecorder) (*echo.Echo, *AuthMiddleware) {
	e := echo.New()
	authMW := NewAuthMiddleware(jwtSvc, zap.NewNop())
	if recorder != nil {
		e.Use(Audit(recorder, zap.NewNop()))
	}
	return e, authMW
}

func TestAuthRejectsMissingAndMalformedHeaders(t *testing.T) {
	e, authMW := newEcho(newJWT(), nil)
	e.GET("/api/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, authMW.Auth)

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthRejectsRefreshToken(t *testing.T) {
	jwtSvc := newJWT()
	_, refresh, err := jwtSvc.GenerateTokens(7, constants.RoleAdmin)
	require.NoError(t, err)

	e, authMW := newEcho(jwtSvc, nil)
	e.GET("/api/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, authMW.Auth)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthPutsIdentityIntoContext(t *testing.T) {
	jwtSvc := newJWT()
	access, _, err := jwtSvc.GenerateTokens(42, constants.RoleTechnician)
	require.NoError(t, err)

	e, authMW := newEcho(jwtSvc, nil)
	e.GET("/api/me", func(c echo.Context) error {
		id, err := utils.GetUserIDFromCtx(c.Request().Context())
		require.NoError(t, err)
		assert.Equal(t, uint64(42), id)

		authCtx := AuthContextFromRequest(c.Request().Context())
		assert.Equal(t, constants.RoleTechnician, authCtx.Role)
		assert.True(t, authCtx.HasPermission(authz.OSApprove))
		assert.False(t, authCtx.HasPermission(authz.SettingsWrite))
		return c.NoContent(http.StatusOK)
	}, authMW.Auth)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	jwtSvc := newJWT()
	e, authMW := newEcho(jwtSvc, nil)
	e.DELETE("/api/orders/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		authMW.Auth, authMW.RequirePermission(authz.OSDelete))

	cases := map[string]int{
		constants.RoleAdmin:      http.StatusNoContent,
		constants.RoleTechnician: http.StatusForbidden,
		constants.RoleAttendant:  http.StatusForbidden,
	}
	for role, want := range cases {
		access, _, err := jwtSvc.GenerateTokens(1, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodDelete, "/api/orders/5", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestAuditRecordsSuccessfulMutationsWithMaskedBody(t *testing.T) {
	jwtSvc := newJWT()
	recorder := &fakeRecorder{}
	e, authMW := newEcho(jwtSvc, recorder)
	e.PATCH("/api/orders/:id/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"status": true})
	}, authMW.Auth)
	e.POST("/api/fail", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]bool{"status": false})
	})
	e.GET("/api/orders", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	access, _, err := jwtSvc.GenerateTokens(9, constants.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/15/status",
		strings.NewReader(`{"status":"testes","comments":"ok","nested":{"apiToken":"x"},"password":"123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	e.ServeHTTP(httptest.NewRecorder(), req)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/fail", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, http.MethodPatch, entry.Action)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uint64(9), *entry.UserID)
	require.NotNil(t, entry.Resource)
	assert.Equal(t, "orders", *entry.Resource)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, "15", *entry.ResourceID)

	body := entry.Details["body"].(map[string]interface{})
	assert.Equal(t, "***", body["password"])
	assert.Equal(t, "testes", body["status"])
	assert.Equal(t, "***", body["nested"].(map[string]interface{})["apiToken"])
}

func TestAuditMasksValueOfSensitiveSettingKey(t *testing.T) {
	recorder := &fakeRecorder{}
	e, _ := newEcho(newJWT(), recorder)
	e.PUT("/api/settings/:key", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"status": true})
	})

	put := func(key, body string) {
		req := httptest.NewRequest(http.MethodPut, "/api/settings/"+key, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}
	put("fiscal_certificate_password", `{"value":"s3nha-do-certificado","type":"string"}`)
	put("pagbank_token", `{"value":"tok-123"}`)
	put("company_name", `{"value":"Assistência Central"}`)

	require.Len(t, recorder.entries, 3)
	bodyOf := func(i int) map[string]interface{} {
		return recorder.entries[i].Details["body"].(map[string]interface{})
	}
	assert.Equal(t, "***", bodyOf(0)["value"])
	assert.Equal(t, "string", bodyOf(0)["type"])
	assert.Equal(t, "***", bodyOf(1)["value"])
	assert.Equal(t, "Assistência Central", bodyOf(2)["value"])
	assert.Equal(t, "fiscal_certificate_password", recorder.entries[0].Details["params"].(map[string]string)["key"])
}

func TestResourceFromPath(t *testing.T) {
	assert.Equal(t, "orders", ResourceFromPath("/api/orders/:id/status"))
	assert.Equal(t, "bank-accounts", ResourceFromPath("/api/bank-accounts"))
	assert.Equal(t, "", ResourceFromPath("/api/:id"))
}
