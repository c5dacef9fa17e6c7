package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"kassensystem/internal/api"
	"kassensystem/internal/archive"
	"kassensystem/internal/auth"
	"kassensystem/internal/checkout"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/orders"
	"kassensystem/internal/session"
	"kassensystem/internal/storage"
	"kassensystem/internal/tips"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := storage.Migrate(bunDB); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	store := storage.NewKV(bunDB, "1234", logger.Discard())

	sess, err := session.New(store, logger.Discard())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	log := logger.Discard()
	gate := auth.NewGate(sess, log)

	handler := api.NewHandler(
		sess,
		gate,
		checkout.NewService(sess, gate, log),
		orders.NewService(sess, gate, log),
		tips.NewService(sess, log),
		inventory.NewService(sess, log),
		archive.NewService(sess, log, "2026"),
		log,
	)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func do(t *testing.T, server *httptest.Server, method, path string, body interface{}) (*http.Response, api.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var parsed api.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, parsed
}

func startEvent(t *testing.T, server *httptest.Server) {
	t.Helper()
	resp, _ := do(t, server, http.MethodPost, "/api/v1/session/setup", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, server, http.MethodPost, "/api/v1/session/setup/name", map[string]string{"name": "Sommerfest"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, server, http.MethodPost, "/api/v1/session/setup/balance", map[string]int{"balance": 5000})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetProducts(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	products, ok := body.Data.([]interface{})
	assert.True(t, ok)
	assert.Len(t, products, 5)
}

func TestSetupFlowOverHTTP(t *testing.T) {
	server := newTestServer(t)

	resp, body := do(t, server, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	view := body.Data.(map[string]interface{})
	assert.Equal(t, "no_event", view["step"])

	startEvent(t, server)

	_, body = do(t, server, http.MethodGet, "/api/v1/session", nil)
	view = body.Data.(map[string]interface{})
	assert.Equal(t, "active", view["step"])
	assert.Equal(t, "Sommerfest", view["active_event"])
}

func TestEmptyEventNameRejectedOverHTTP(t *testing.T) {
	server := newTestServer(t)

	do(t, server, http.MethodPost, "/api/v1/session/setup", nil)
	resp, body := do(t, server, http.MethodPost, "/api/v1/session/setup/name", map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	server := newTestServer(t)
	startEvent(t, server)

	resp, _ := do(t, server, http.MethodPost, "/api/v1/checkout/cart", map[string]string{"product_id": "s1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, server, http.MethodPost, "/api/v1/checkout/tax", map[string]string{"tax_type": "onsite"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, server, http.MethodPost, "/api/v1/checkout/tender", map[string]int{"denomination": 2000})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, server, http.MethodPost, "/api/v1/checkout/finalize",
		map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	order := body.Data.(map[string]interface{})
	assert.Equal(t, float64(1), order["order_number"])
	assert.Equal(t, float64(1000), order["total"])

	resp, body = do(t, server, http.MethodGet, "/api/v1/orders/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := body.Data.([]interface{})
	assert.Len(t, list, 1)
}

func TestStatusMapping(t *testing.T) {
	server := newTestServer(t)

	// No active event: business-rule refusal.
	resp, _ := do(t, server, http.MethodPost, "/api/v1/checkout/cart", map[string]string{"product_id": "s1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	startEvent(t, server)

	// Unknown product.
	resp, _ = do(t, server, http.MethodPost, "/api/v1/checkout/cart", map[string]string{"product_id": "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Wrong passcode on a gated mutation.
	resp, _ = do(t, server, http.MethodDelete, "/api/v1/orders/", map[string]string{"passcode": "0000"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Validation failure.
	resp, _ = do(t, server, http.MethodPost, "/api/v1/tips/", map[string]int{"amount": 123})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCancelOrderOverHTTP(t *testing.T) {
	server := newTestServer(t)
	startEvent(t, server)

	do(t, server, http.MethodPost, "/api/v1/checkout/cart", map[string]string{"product_id": "s1"})
	do(t, server, http.MethodPost, "/api/v1/checkout/tax", map[string]string{"tax_type": "onsite"})
	_, body := do(t, server, http.MethodPost, "/api/v1/checkout/finalize",
		map[string]string{"payment_method": "card"})
	orderID := body.Data.(map[string]interface{})["id"].(string)

	resp, body := do(t, server, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", orderID),
		map[string]string{"passcode": "1234", "reason": "complaint"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	// A second cancellation is refused.
	resp, _ = do(t, server, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", orderID),
		map[string]string{"passcode": "1234", "reason": "complaint"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCloseAndKassensturzOverHTTP(t *testing.T) {
	server := newTestServer(t)
	startEvent(t, server)

	do(t, server, http.MethodPost, "/api/v1/checkout/cart", map[string]string{"product_id": "s1"})
	do(t, server, http.MethodPost, "/api/v1/checkout/tax", map[string]string{"tax_type": "onsite"})
	do(t, server, http.MethodPost, "/api/v1/checkout/tender", map[string]int{"denomination": 1000})
	do(t, server, http.MethodPost, "/api/v1/checkout/finalize", map[string]string{"payment_method": "cash"})

	resp, body := do(t, server, http.MethodPost, "/api/v1/session/close", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	archived := body.Data.(map[string]interface{})
	assert.Equal(t, "2026-0001", archived["id"])
	assert.Equal(t, float64(1000), archived["total_revenue"])

	resp, body = do(t, server, http.MethodPost, "/api/v1/archive/2026-0001/kassensturz",
		map[string]int{"50_note": 1, "10_note": 1})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	result := body.Data.(map[string]interface{})
	assert.Equal(t, float64(6000), result["expected"])
	assert.Equal(t, float64(6000), result["actual"])
	assert.Equal(t, float64(0), result["difference"])
}
