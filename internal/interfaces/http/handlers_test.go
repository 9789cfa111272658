package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	apphttp "github.com/jhoicas/compras-api/internal/interfaces/http"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakePurchases struct {
	created  *dto.CreatePurchaseRequest
	updated  *dto.UpdatePurchaseRequest
	listed   *dto.PurchaseListQuery
	voidedID string
	err      error
	found    *dto.PurchaseFormatted
}

func (f *fakePurchases) Create(_ context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PurchaseResponse{Header: dto.PurchaseHeaderResponse{ID: "c1", EmployeeID: in.EmployeeID, DocumentNumber: "comp-2025-03-000001"}}, nil
}

func (f *fakePurchases) Update(_ context.Context, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error) {
	f.updated = &in
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PurchaseResponse{Header: dto.PurchaseHeaderResponse{ID: id}}, nil
}

func (f *fakePurchases) Void(_ context.Context, id string) (*dto.PurchaseResponse, error) {
	f.voidedID = id
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PurchaseResponse{Header: dto.PurchaseHeaderResponse{ID: id, Status: entity.PurchaseStatusAnulated}}, nil
}

func (f *fakePurchases) GetByRef(_ context.Context, _ string) (*dto.PurchaseFormatted, error) {
	return f.found, f.err
}

func (f *fakePurchases) List(_ context.Context, q dto.PurchaseListQuery) (*dto.PurchaseListResponse, error) {
	f.listed = &q
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PurchaseListResponse{Status: dto.ResponseStatusSuccess, Pagination: dto.NewPaginationMeta(0, q.Page, q.Size)}, nil
}

func (f *fakePurchases) Receipt(_ context.Context, ref string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return []byte("%PDF-1.3"), ref + ".pdf", nil
}

type fakeLedger struct {
	stock    *entity.Stock
	err      error
	lastCall string
	lastQty  int
}

func (l *fakeLedger) result(call string, qty int) (*entity.Stock, error) {
	l.lastCall, l.lastQty = call, qty
	return l.stock, l.err
}

func (l *fakeLedger) Get(_ context.Context, _, _ string) (*entity.Stock, error) {
	return l.result("get", 0)
}

func (l *fakeLedger) Create(_ context.Context, _, _ string, q int) (*entity.Stock, error) {
	return l.result("create", q)
}

func (l *fakeLedger) SetQuantity(_ context.Context, _, _ string, q int) (*entity.Stock, error) {
	return l.result("set", q)
}

func (l *fakeLedger) Adjust(_ context.Context, _, _ string, d int) (*entity.Stock, error) {
	return l.result("adjust", d)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newAPI(p *fakePurchases, l *fakeLedger) *fiber.App {
	app := fiber.New()
	log := logger.Nop()
	apphttp.Router(app, apphttp.RouterDeps{
		Purchases: apphttp.NewPurchaseHandler(p, p, p, log),
		Stock:     apphttp.NewStockHandler(l, log),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	auth := ""
	if role != "" {
		auth = tokenForRole(t, role)
	}
	return send(t, app, method, path, auth, body)
}

// send como call pero con el header Authorization tal cual.
func send(t *testing.T, app *fiber.App, method, path, auth string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, out
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e.Code
}

var validPurchase = map[string]any{
	"idProveedor": "PROV1",
	"id_Empleado": "OTRO",
	"fecha":       "2025-03-14",
	"detalles": []map[string]any{
		{"idProducto": "P1", "idBodega": "B1", "cantidad": 10, "costoUnitario": "2.50"},
	},
}

// ──────────────────────────────────────────────────────────────────────────────
// Compras
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePurchase_EmpleadoDelToken(t *testing.T) {
	p := &fakePurchases{}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodPost, "/api/compras", "empleado", validPurchase)

	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	require.NotNil(t, p.created)
	assert.Equal(t, testUserID, p.created.EmployeeID, "el empleado del body se reemplaza por el del token")
	require.Len(t, p.created.Lines, 1)
	assert.Equal(t, 10, *p.created.Lines[0].Quantity)
	assert.Equal(t, "2.5", p.created.Lines[0].UnitCost.String())
}

func TestCreatePurchase_SinToken(t *testing.T) {
	resp, _ := call(t, newAPI(&fakePurchases{}, &fakeLedger{}), http.MethodPost, "/api/compras", "", validPurchase)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePurchase_RolNoPermitido(t *testing.T) {
	p := &fakePurchases{}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodPost, "/api/compras", "cajero", validPurchase)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(t, body))
	assert.Nil(t, p.created)
}

func TestCreatePurchase_ValidacionDeBody(t *testing.T) {
	p := &fakePurchases{}
	bad := map[string]any{"idProveedor": "PROV1", "fecha": "14/03/2025", "detalles": []any{}}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodPost, "/api/compras", "admin", bad)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "fecha: debe tener formato YYYY-MM-DD")
	assert.Contains(t, e.Message, "detalles: debe tener al menos 1 elemento(s)")
	assert.Nil(t, p.created, "no debe llegar al caso de uso")
}

func TestCreatePurchase_DetalleSinCantidad(t *testing.T) {
	p := &fakePurchases{}
	bad := map[string]any{
		"idProveedor": "PROV1", "fecha": "2025-03-14",
		"detalles": []map[string]any{{"idProducto": "P1", "idBodega": "B1", "costoUnitario": "1"}},
	}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodPost, "/api/compras", "admin", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "detalles[0].cantidad: es requerido")
}

func TestCreatePurchase_BodyMalformado(t *testing.T) {
	app := newAPI(&fakePurchases{}, &fakeLedger{})
	req := httptest.NewRequest(http.MethodPost, "/api/compras", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPurchase_ErroresDeDominioAHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.Validation("el proveedor PROV9 no existe", nil), http.StatusBadRequest, "VALIDATION"},
		{"no encontrada", domain.NotFound("la compra c9 no existe"), http.StatusNotFound, "NOT_FOUND"},
		{"conflicto", domain.Conflict("la compra ya está anulada"), http.StatusConflict, "CONFLICT"},
		{"interno", domain.Internal("ocurrió un error", errors.New("conn reset")), http.StatusInternalServerError, "INTERNAL"},
		{"sin clasificar", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := call(t, newAPI(&fakePurchases{err: tc.err}, &fakeLedger{}), http.MethodDelete, "/api/compras/c9", "admin", nil)
			assert.Equal(t, tc.status, resp.StatusCode)
			var e dto.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.Equal(t, tc.code, e.Code)
			assert.NotContains(t, e.Message, "conn reset", "la causa interna no se expone")
		})
	}
}

func TestVoidPurchase(t *testing.T) {
	p := &fakePurchases{}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodDelete, "/api/compras/c1", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c1", p.voidedID)

	var out dto.PurchaseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "anulated", out.Header.Status)
}

func TestUpdatePurchase_SoloCamposEnviados(t *testing.T) {
	p := &fakePurchases{}
	patch := map[string]any{"observacion": "revisado", "eliminarLotes": []string{"L1"}}
	resp, _ := call(t, newAPI(p, &fakeLedger{}), http.MethodPatch, "/api/compras/c1", "admin", patch)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, p.updated)
	assert.Nil(t, p.updated.Total)
	assert.Nil(t, p.updated.SupplierID)
	require.NotNil(t, p.updated.Notes)
	assert.Equal(t, "revisado", *p.updated.Notes)
	assert.Equal(t, []string{"L1"}, p.updated.RemoveLots)
}

func TestGetPurchase(t *testing.T) {
	p := &fakePurchases{found: &dto.PurchaseFormatted{
		Header: dto.PurchaseHeaderFormatted{
			PurchaseHeaderResponse: dto.PurchaseHeaderResponse{ID: "c1", DocumentNumber: "comp-2025-03-000001", CreatedAt: time.Now()},
			SupplierName:           "Distribuidora Andina",
		},
		Details: []dto.PurchaseLineFormatted{},
	}}
	resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodGet, "/api/compras/comp-2025-03-000001", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"nombreProveedor":"Distribuidora Andina"`)
	assert.Contains(t, string(body), `"details":[]`)
}

func TestGetPurchase_NoExiste(t *testing.T) {
	resp, body := call(t, newAPI(&fakePurchases{}, &fakeLedger{}), http.MethodGet, "/api/compras/nada", "empleado", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))
}

func TestPurchaseReceipt(t *testing.T) {
	resp, body := call(t, newAPI(&fakePurchases{}, &fakeLedger{}), http.MethodGet, "/api/compras/c1/pdf", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="c1.pdf"`)
	assert.Equal(t, "%PDF-1.3", string(body))
}

func TestListPurchases_ParametrosPorDefecto(t *testing.T) {
	p := &fakePurchases{}
	resp, _ := call(t, newAPI(p, &fakeLedger{}), http.MethodGet, "/api/compras?estado=processed&sortBy=total&sortOrder=asc", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, p.listed)
	assert.Equal(t, 1, p.listed.Page)
	assert.Equal(t, 10, p.listed.Size)
	assert.Equal(t, "processed", p.listed.Status)
	assert.Equal(t, "total", p.listed.SortBy)
}

func TestListPurchases_ParametrosInvalidos(t *testing.T) {
	cases := map[string]string{
		"tamaño excedido": "/api/compras?size=500",
		"estado":          "/api/compras?estado=borrador",
		"orden":           "/api/compras?sortOrder=up",
		"fecha":           "/api/compras?fecha=2025-13-01",
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			p := &fakePurchases{}
			resp, body := call(t, newAPI(p, &fakeLedger{}), http.MethodGet, path, "empleado", nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
			assert.Nil(t, p.listed)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_Get(t *testing.T) {
	l := &fakeLedger{stock: &entity.Stock{ID: "P1-B1", ProductID: "P1", WarehouseID: "B1", Quantity: 13}}
	resp, body := call(t, newAPI(&fakePurchases{}, l), http.MethodGet, "/api/stock/P1/B1", "empleado", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.StockResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "P1-B1", out.ID)
	assert.Equal(t, 13, out.Quantity)
}

func TestStock_GetSinFila(t *testing.T) {
	resp, _ := call(t, newAPI(&fakePurchases{}, &fakeLedger{}), http.MethodGet, "/api/stock/P1/B9", "empleado", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStock_CreateCantidadCeroEsValida(t *testing.T) {
	l := &fakeLedger{stock: &entity.Stock{ID: "P1-B1"}}
	body := map[string]any{"idProducto": "P1", "idBodega": "B1", "cantidad": 0}
	resp, _ := call(t, newAPI(&fakePurchases{}, l), http.MethodPost, "/api/stock", "empleado", body)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "create", l.lastCall)
	assert.Equal(t, 0, l.lastQty)
}

func TestStock_CreateSinCantidad(t *testing.T) {
	l := &fakeLedger{}
	body := map[string]any{"idProducto": "P1", "idBodega": "B1"}
	resp, respBody := call(t, newAPI(&fakePurchases{}, l), http.MethodPost, "/api/stock", "empleado", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(respBody), "cantidad: es requerido")
	assert.Empty(t, l.lastCall)
}

func TestStock_SetSinFila(t *testing.T) {
	body := map[string]any{"idProducto": "P1", "idBodega": "B1", "cantidad": 4}
	resp, _ := call(t, newAPI(&fakePurchases{}, &fakeLedger{}), http.MethodPut, "/api/stock", "admin", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStock_DuplicadoEsConflicto(t *testing.T) {
	l := &fakeLedger{err: domain.Conflict("ya existe stock del producto P1 en la bodega B1")}
	body := map[string]any{"idProducto": "P1", "idBodega": "B1", "cantidad": 1}
	resp, respBody := call(t, newAPI(&fakePurchases{}, l), http.MethodPost, "/api/stock", "admin", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(respBody), "ya existe stock")
}
