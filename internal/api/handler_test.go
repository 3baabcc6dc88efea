package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/broadcast"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/store"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	hub := broadcast.NewHub()
	db, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"), hub)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})

	r := chi.NewRouter()
	NewHandler(db, hub, "ws://localhost:8080/ws/voice").RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestCustomerCRUD(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{
		"name": "Acme Corp", "email": "info@acme.test",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	decode(t, w, &created)
	id, _ := created["id"].(string)
	if !strings.HasPrefix(id, "customer") {
		t.Fatalf("Expected generated customer id, got %q", id)
	}

	w = doJSON(t, r, http.MethodGet, "/api/customers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var listed []map[string]any
	decode(t, w, &listed)
	if len(listed) != 1 {
		t.Fatalf("Expected 1 customer, got %d", len(listed))
	}

	w = doJSON(t, r, http.MethodPut, "/api/customers/"+id, map[string]any{"phone": "555-0100"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated map[string]any
	decode(t, w, &updated)
	if updated["phone"] != "555-0100" {
		t.Errorf("Expected updated phone, got %v", updated["phone"])
	}

	w = doJSON(t, r, http.MethodDelete, "/api/customers/"+id, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/customers/"+id, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on second delete, got %d", w.Code)
	}
}

func TestCreateMissingRequired(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{"name": "No Email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if !strings.Contains(body["error"], "email") {
		t.Errorf("Expected error naming the missing field, got %q", body["error"])
	}
}

func TestUpdateUnknownRecord(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/orders/order_missing", map[string]any{"status": "Shipped"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestDashboardCounts(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/customers", map[string]any{
		"name": "Acme", "email": "a@acme.test",
	})
	doJSON(t, r, http.MethodPost, "/api/products", map[string]any{
		"name": "Widget", "sku": "W-1", "price": 9.5,
	})

	w := doJSON(t, r, http.MethodGet, "/api/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var counts map[string]int
	decode(t, w, &counts)
	if counts["customer"] != 1 || counts["product"] != 1 || counts["invoice"] != 0 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestUICommandValidation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/ui_command", map[string]any{"target_app": "crm"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without an action, got %d", w.Code)
	}

	// No clients connected is not a failure for the sender.
	w = doJSON(t, r, http.MethodPost, "/api/ui_command", map[string]any{
		"action": "navigate", "target_app": "crm", "url": "/crm_vue",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Message     string             `json:"message"`
		Instruction domain.Instruction `json:"instruction"`
	}
	decode(t, w, &body)
	if body.Message != "UI instruction sent" {
		t.Errorf("Expected confirmation message, got %q", body.Message)
	}
	if body.Instruction.Action != "navigate" || body.Instruction.URL != "/crm_vue" {
		t.Errorf("Expected instruction echoed back, got %+v", body.Instruction)
	}
}

func TestUICommandOpenActionSet(t *testing.T) {
	// The front-end ignores actions it does not recognize, so the server
	// must not reject new ones.
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/ui_command", map[string]any{
		"action": "highlight_row", "target_app": "crm",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unrecognized action, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Instruction domain.Instruction `json:"instruction"`
	}
	decode(t, w, &body)
	if body.Instruction.Action != "highlight_row" {
		t.Errorf("Expected action carried through, got %q", body.Instruction.Action)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestClientConfig(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["voice_url"] != "ws://localhost:8080/ws/voice" {
		t.Errorf("Expected voice_url, got %q", body["voice_url"])
	}
}
