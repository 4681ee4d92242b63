package v1_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeops/internal/core/code"
	"storeops/internal/core/id"
	"storeops/internal/domain/catalog"
	"storeops/internal/domain/stocktake"
	v1 "storeops/internal/infrastructure/http/v1"
	"storeops/internal/infrastructure/storage/memory"
	"storeops/pkg/logger"
)

type testAPI struct {
	router   http.Handler
	products []catalog.Product
	stock    *memory.ProductStock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	products := []catalog.Product{
		{ID: id.New(), Name: "Cola 330ml", Quantity: 24},
		{ID: id.New(), Name: "Chips", Quantity: 12},
	}
	stock := memory.NewProductStock(products)

	svc := stocktake.NewService(
		memory.NewCheckRepository(),
		stock,
		memory.NewUserDirectory(map[string]string{"u-1": "Dana"}),
		code.New(code.DefaultConfig("IC")),
		memory.NewTxManager(),
		memory.NewAuditLog(),
	)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:    logger.Default(),
		Stocktake: svc,
	})
	return &testAPI{router: router, products: products, stock: stock}
}

// do runs a request and decodes the envelope.
func (a *testAPI) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec.Code, envelope
}

func (a *testAPI) createCheck(t *testing.T) string {
	t.Helper()
	status, envelope := a.do(t, http.MethodPost, "/api/v1/inventory-checks",
		map[string]any{"userId": "u-1", "title": "friday count"})
	require.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]any)
	return data["id"].(string)
}

func TestCreateCheck(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(t, http.MethodPost, "/api/v1/inventory-checks",
		map[string]any{"userId": "u-1", "title": "friday count"})

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, envelope["success"])

	data := envelope["data"].(map[string]any)
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, "Dana", data["created_by_name"])
	assert.Len(t, data["items"], 2)
}

func TestCreateCheck_MissingUser(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(t, http.MethodPost, "/api/v1/inventory-checks",
		map[string]any{"title": "no user"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])
	assert.NotEmpty(t, envelope["message"])
	assert.NotContains(t, envelope, "data")
}

func TestGetCheck_NotFound(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(t, http.MethodGet, "/api/v1/inventory-checks/"+id.New().String(), nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
}

func TestFullLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	checkID := api.createCheck(t)

	// count both products; Chips comes up short with a reason
	itemPath := func(productID id.ID) string {
		return fmt.Sprintf("/api/v1/inventory-checks/%s/items/%s", checkID, productID)
	}
	status, _ := api.do(t, http.MethodPut, itemPath(api.products[0].ID),
		map[string]any{"actual_quantity": 24})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPut, itemPath(api.products[1].ID),
		map[string]any{"actual_quantity": 10, "reason": "two damaged"})
	require.Equal(t, http.StatusOK, status)

	status, envelope := api.do(t, http.MethodPost, "/api/v1/inventory-checks/"+checkID+"/submit", nil)
	require.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "submitted", data["status"])

	status, envelope = api.do(t, http.MethodPost, "/api/v1/inventory-checks/"+checkID+"/approve",
		map[string]any{"managerId": "mgr-1"})
	require.Equal(t, http.StatusOK, status)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, float64(1), data["adjusted_count"])
	assert.Equal(t, "approved", data["check"].(map[string]any)["status"])

	got, ok := api.stock.Quantity(api.products[1].ID)
	require.True(t, ok)
	assert.Equal(t, int64(10), got)
}

func TestSubmit_MissingReasonEnvelope(t *testing.T) {
	api := newTestAPI(t)
	checkID := api.createCheck(t)

	status, _ := api.do(t, http.MethodPut,
		fmt.Sprintf("/api/v1/inventory-checks/%s/items/%s", checkID, api.products[0].ID),
		map[string]any{"actual_quantity": 30})
	require.Equal(t, http.StatusOK, status)

	status, envelope := api.do(t, http.MethodPost, "/api/v1/inventory-checks/"+checkID+"/submit", nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])
	assert.Contains(t, envelope["message"], "missing a reason")
}

func TestApprove_WrongState(t *testing.T) {
	api := newTestAPI(t)
	checkID := api.createCheck(t)

	status, envelope := api.do(t, http.MethodPost, "/api/v1/inventory-checks/"+checkID+"/approve",
		map[string]any{"managerId": "mgr-1"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])
}

func TestDeleteCheck(t *testing.T) {
	api := newTestAPI(t)
	checkID := api.createCheck(t)

	status, envelope := api.do(t, http.MethodDelete, "/api/v1/inventory-checks/"+checkID,
		map[string]any{"userId": "someone-else"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, envelope["success"])

	status, _ = api.do(t, http.MethodDelete, "/api/v1/inventory-checks/"+checkID,
		map[string]any{"userId": "u-1"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.do(t, http.MethodGet, "/api/v1/inventory-checks/"+checkID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListAndStats(t *testing.T) {
	api := newTestAPI(t)
	api.createCheck(t)
	api.createCheck(t)

	status, envelope := api.do(t, http.MethodGet, "/api/v1/inventory-checks?limit=1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"], 1)

	status, envelope = api.do(t, http.MethodGet, "/api/v1/inventory-checks/user/u-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, envelope["data"], 2)

	status, envelope = api.do(t, http.MethodGet, "/api/v1/inventory-stats", nil)
	require.Equal(t, http.StatusOK, status)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])
	require.Len(t, data["monthly_trend"], 6)
}

func TestHistory(t *testing.T) {
	api := newTestAPI(t)
	checkID := api.createCheck(t)

	status, _ := api.do(t, http.MethodPut,
		fmt.Sprintf("/api/v1/inventory-checks/%s/items/%s", checkID, api.products[0].ID),
		map[string]any{"actual_quantity": 24})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, "/api/v1/inventory-checks/"+checkID+"/submit", nil)
	require.Equal(t, http.StatusOK, status)

	status, envelope := api.do(t, http.MethodGet, "/api/v1/inventory-checks/"+checkID+"/history", nil)
	require.Equal(t, http.StatusOK, status)

	entries := envelope["data"].([]any)
	require.Len(t, entries, 2)
	// newest first
	assert.Equal(t, "submit", entries[0].(map[string]any)["action"])
	assert.Equal(t, "create", entries[1].(map[string]any)["action"])
	assert.NotNil(t, entries[0].(map[string]any)["snapshot"])
}

func TestHistory_UnknownCheck(t *testing.T) {
	api := newTestAPI(t)

	status, envelope := api.do(t, http.MethodGet,
		"/api/v1/inventory-checks/"+id.New().String()+"/history", nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, envelope["success"])
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
