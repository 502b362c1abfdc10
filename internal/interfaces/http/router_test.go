package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/application/credits"
	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/memstore"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/retail-backoffice-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/retail-backoffice-api/pkg/jwt"
)

type okSender struct{}

func (okSender) SendMessage(_ context.Context, _, _ string) (*ports.SendOutcome, error) {
	return &ports.SendOutcome{Success: true, ProviderMessageID: "wamid.1"}, nil
}

type apiEnv struct {
	app   *fiber.App
	store *memstore.Store
}

func newAPI(t *testing.T, idem *cache.IdempotencyStore) apiEnv {
	t.Helper()
	s := memstore.NewDemo()
	clock := ports.FixedClock{T: time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)}
	m := inventory.NewStockMutator(clock)
	log := zerolog.Nop()

	app := fiber.New()
	app.Use(apphttp.RequestLogger(log, nil))
	apphttp.Router(app, apphttp.RouterDeps{
		PurchaseUC:      purchasing.NewUseCase(s, s.Set(), m, clock, nil),
		SaleUC:          sales.NewUseCase(s, s.Set(), m, clock, nil).WithReceipts(pdf.NewReceiptGenerator()),
		InventoryUC:     inventory.NewUseCase(s, s.Set(), m, clock, nil),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(s.Set().Stock),
		CreditUC:        credits.NewUseCase(s.Set().Sales, s.Set().Purchases, clock),
		NotificationUC:  notifications.NewUseCase(s.Set(), okSender{}, nil, nil, clock, nil, log, notifications.Options{}),
		AlertUC:         alerts.NewUseCase(s, s.Set(), clock, log),
		Idempotency:     idem,
		JWTSecret:       testJWTSecret,
		JWTIssuer:       testIssuer,
		Log:             log,
	})
	return apiEnv{app: app, store: s}
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: memstore.UsuarioDemo, CompanyID: memstore.EmpresaDemo, Role: role}, testIssuer, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (e apiEnv) do(t *testing.T, method, path, role string, body any, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", bearer(t, role))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, out
}

func saleBody() map[string]any {
	return map[string]any{
		"sucursal_id": memstore.SucursalCentro,
		"fecha_venta": "2026-05-01",
		"items": []map[string]any{
			{"producto_id": memstore.ProductoCafe, "unidad_medida_id": "und", "cantidad": 2, "precio_unitario": 9},
		},
	}
}

func dataID(t *testing.T, body []byte) string {
	t.Helper()
	var res struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	require.NotEmpty(t, res.Data.ID)
	return res.Data.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

func TestVentas_CrearYConsultar(t *testing.T) {
	e := newAPI(t, nil)

	resp, body := e.do(t, http.MethodPost, "/api/ventas", "vendedor", saleBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := dataID(t, body)

	resp, body = e.do(t, http.MethodGet, "/api/ventas/"+id, "vendedor", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"estado":"PAGADA"`)

	stock, _ := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(-2)), "la venta descuenta stock: %s", stock)
}

func TestVentas_Inexistente404(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodGet, "/api/ventas/no-existe", "admin", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "NOT_FOUND")
}

func TestVentas_AnularSoloAdmin(t *testing.T) {
	e := newAPI(t, nil)
	_, body := e.do(t, http.MethodPost, "/api/ventas", "vendedor", saleBody())
	id := dataID(t, body)

	resp, _ := e.do(t, http.MethodPost, "/api/ventas/"+id+"/anular", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/ventas/"+id+"/anular", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/api/ventas/"+id+"/anular", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "CONFLICT")
}

func TestVentas_FechaInvalida400(t *testing.T) {
	e := newAPI(t, nil)
	b := saleBody()
	b["fecha_venta"] = "01/05/2026"

	resp, body := e.do(t, http.MethodPost, "/api/ventas", "admin", b)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestVentas_Comprobante(t *testing.T) {
	e := newAPI(t, nil)
	_, body := e.do(t, http.MethodPost, "/api/ventas", "vendedor", saleBody())
	id := dataID(t, body)

	resp, body := e.do(t, http.MethodGet, "/api/ventas/"+id+"/comprobante", "vendedor", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestCompras_VendedorNoAccede(t *testing.T) {
	e := newAPI(t, nil)
	resp, _ := e.do(t, http.MethodGet, "/api/compras", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestInventario_AjusteCantidadCero400(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodPost, "/api/inventario/ajustes", "bodeguero", map[string]any{
		"sucursal_id": memstore.SucursalCentro,
		"producto_id": memstore.ProductoCafe,
		"cantidad":    0,
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestInventario_StockSinFilasDevuelveListaVacia(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodGet, "/api/inventario/stock?sucursal_id="+memstore.SucursalNorte, "vendedor", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"data":[]`)
}

func TestCreditos_FechaInvalida400(t *testing.T) {
	e := newAPI(t, nil)
	resp, _ := e.do(t, http.MethodGet, "/api/creditos/clientes?fecha_desde=ayer", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Idempotency-Key
// ──────────────────────────────────────────────────────────────────────────────

func TestIdempotencia_RepiteRespuestaSinAplicarDosVeces(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e := newAPI(t, cache.NewIdempotencyStore(client, time.Hour))

	ajuste := map[string]any{
		"sucursal_id": memstore.SucursalCentro,
		"producto_id": memstore.ProductoCafe,
		"cantidad":    5,
	}
	resp1, body1 := e.do(t, http.MethodPost, "/api/inventario/ajustes", "admin", ajuste, apphttp.HeaderIdempotencyKey, "abc-123")
	resp2, body2 := e.do(t, http.MethodPost, "/api/inventario/ajustes", "admin", ajuste, apphttp.HeaderIdempotencyKey, "abc-123")

	require.Equal(t, http.StatusCreated, resp1.StatusCode, string(body1))
	assert.Equal(t, http.StatusCreated, resp2.StatusCode)
	assert.Equal(t, "true", resp2.Header.Get("Idempotent-Replayed"))
	assert.JSONEq(t, string(body1), string(body2))

	stock, _ := e.store.StockOf(memstore.EmpresaDemo, memstore.SucursalCentro, memstore.ProductoCafe)
	assert.True(t, stock.Equal(decimal.NewFromInt(5)), "el ajuste se aplica una sola vez: %s", stock)
	assert.Len(t, e.store.AllMovements(), 1)
}

func TestIdempotencia_ErrorDeValidacionTambienSeGuarda(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	e := newAPI(t, cache.NewIdempotencyStore(client, time.Hour))

	body := map[string]any{"sucursal_id": memstore.SucursalCentro, "producto_id": memstore.ProductoCafe}
	resp1, _ := e.do(t, http.MethodPost, "/api/inventario/ajustes", "admin", body, apphttp.HeaderIdempotencyKey, "k-1")
	resp2, _ := e.do(t, http.MethodPost, "/api/inventario/ajustes", "admin", body, apphttp.HeaderIdempotencyKey, "k-1")

	assert.Equal(t, http.StatusBadRequest, resp1.StatusCode)
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Equal(t, "true", resp2.Header.Get("Idempotent-Replayed"))
}

// ──────────────────────────────────────────────────────────────────────────────
// WhatsApp y alertas
// ──────────────────────────────────────────────────────────────────────────────

func TestWhatsApp_SoloAdmin(t *testing.T) {
	e := newAPI(t, nil)
	resp, _ := e.do(t, http.MethodGet, "/api/whatsapp/notificaciones", "vendedor", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWhatsApp_EnviarPrueba(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodPost, "/api/whatsapp/test", "admin", map[string]any{
		"telefono_destino": "50255551234",
		"mensaje":          "hola",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, string(body), `"estado":"ENVIADO"`)
}

func TestWhatsApp_PruebaSinTelefono400(t *testing.T) {
	e := newAPI(t, nil)
	resp, _ := e.do(t, http.MethodPost, "/api/whatsapp/test", "admin", map[string]any{"mensaje": "hola"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAlertas_ConfiguracionTipoInvalido400(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodPut, "/api/alertas/configuracion", "admin", map[string]any{
		"configuraciones": []map[string]any{{"tipo_alerta": "NO_EXISTE"}},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "tipo_alerta")
}

func TestAlertas_ListadoVacio(t *testing.T) {
	e := newAPI(t, nil)
	resp, body := e.do(t, http.MethodGet, "/api/alertas?leida=false", "bodeguero", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"total":0`)
}
