package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	apphttp "github.com/jhoicas/retail-backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/retail-backoffice-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "retail-backoffice-test"
)

// guardedApp expone GET /protegido con AuthMiddleware + RequireRole(roles...).
func guardedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protegido",
		apphttp.AuthMiddleware(testJWTSecret, testIssuer),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"usuario": apphttp.GetUserID(c),
				"empresa": apphttp.GetCompanyID(c),
				"rol":     apphttp.GetRole(c),
			})
		},
	)
	return app
}

func signed(t *testing.T, id pkgjwt.Identity, issuer string, ttl time.Duration) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, issuer, ttl)
	require.NoError(t, err)
	return "Bearer " + tok
}

func tokenForRole(t *testing.T, role string) string {
	return signed(t, pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: role}, testIssuer, time.Hour)
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware_CargaIdentidadEnLocals(t *testing.T) {
	status, body := get(t, guardedApp(entity.RoleAdmin), tokenForRole(t, entity.RoleAdmin))
	require.Equal(t, http.StatusOK, status)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, testUserID, got["usuario"])
	assert.Equal(t, testCompanyID, got["empresa"])
	assert.Equal(t, entity.RoleAdmin, got["rol"])
}

func TestRequireRole_PermisosPorRol(t *testing.T) {
	cases := []struct {
		name    string
		allowed []string
		role    string
		status  int
	}{
		{"bodeguero en compras", []string{entity.RoleAdmin, entity.RoleBodeguero}, entity.RoleBodeguero, http.StatusOK},
		{"vendedor en ventas", []string{entity.RoleAdmin, entity.RoleVendedor}, entity.RoleVendedor, http.StatusOK},
		{"vendedor en compras", []string{entity.RoleAdmin, entity.RoleBodeguero}, entity.RoleVendedor, http.StatusForbidden},
		{"bodeguero en anulación", []string{entity.RoleAdmin}, entity.RoleBodeguero, http.StatusForbidden},
		{"rol en mayúsculas", []string{entity.RoleAdmin}, "ADMIN", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, guardedApp(tc.allowed...), tokenForRole(t, tc.role))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Contains(t, body, "FORBIDDEN")
			}
		})
	}
}

func TestRequireRole_TokenSinRol401(t *testing.T) {
	status, body := get(t, guardedApp(entity.RoleAdmin), tokenForRole(t, ""))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_ROLE")
}

func TestAuthMiddleware_TokensRechazados(t *testing.T) {
	admin := pkgjwt.Identity{UserID: testUserID, CompanyID: testCompanyID, Role: entity.RoleAdmin}
	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "Token abc", "INVALID_TOKEN"},
		{"malformado", "Bearer token.invalido.aqui", "INVALID_TOKEN"},
		{"expirado", signed(t, admin, testIssuer, -time.Minute), "INVALID_TOKEN"},
		{"otro emisor", signed(t, admin, "otro-emisor", time.Hour), "INVALID_TOKEN"},
		{"sin empresa", signed(t, pkgjwt.Identity{UserID: testUserID, Role: entity.RoleAdmin}, testIssuer, time.Hour), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, guardedApp(entity.RoleAdmin), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Contains(t, body, tc.code)
		})
	}
}
