package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/R3E-Network/payee_manager/internal/app"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

const testAuthToken = "test-token"

func quietLogger() *logger.Logger {
	log := logger.NewDefault("httpapi-test")
	log.SetOutput(io.Discard)
	return log
}

func newTestHandler(t *testing.T, tokens []string) (http.Handler, *AuditLog) {
	t.Helper()
	application, err := app.New(nil, app.Stores{}, quietLogger())
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	audit := NewAuditLog(50, nil)
	handler := NewHandler(application, Options{
		AuthTokens:     tokens,
		AllowedOrigins: []string{"*"},
		Audit:          audit,
		Logger:         quietLogger(),
	})
	return handler, audit
}

func marshal(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func request(method, path string, body []byte, token string) *http.Request {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func waitReady(t *testing.T, h http.Handler, id string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := serve(h, request(http.MethodGet, "/manager/sessions/"+id, nil, ""))
		var summary sessionSummary
		decode(t, rec, &summary)
		if summary.Status == "ready" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session %s did not load", id)
}

func TestPayeeAPI(t *testing.T) {
	h, _ := newTestHandler(t, []string{testAuthToken})

	body := marshal(map[string]any{"payeeName": "Acme Water", "address": map[string]string{"city": "Denver", "state": "co"}})
	if rec := serve(h, request(http.MethodPost, "/api/payees", body, "")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec := serve(h, request(http.MethodPost, "/api/payees", body, testAuthToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	decode(t, rec, &created)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %v", created)
	}

	body = marshal(map[string]any{"payeeName": "Bolt Energy", "address": map[string]string{"city": "Austin", "state": "TX"}})
	if rec := serve(h, request(http.MethodPost, "/api/payees", body, testAuthToken)); rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = serve(h, request(http.MethodGet, "/api/payees?state=tx", nil, ""))
	var found []map[string]any
	decode(t, rec, &found)
	if len(found) != 1 || found[0]["payeeName"] != "Bolt Energy" {
		t.Fatalf("unexpected search result %v", found)
	}

	if rec := serve(h, request(http.MethodGet, "/api/payees/"+id, nil, "")); rec.Code != http.StatusOK {
		t.Fatalf("get payee: %d", rec.Code)
	}

	rec = serve(h, request(http.MethodGet, "/api/payees/missing", nil, ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var apiErr map[string]any
	decode(t, rec, &apiErr)
	if apiErr["code"] != "NOT_FOUND" {
		t.Fatalf("unexpected error body %v", apiErr)
	}

	rec = serve(h, request(http.MethodPost, "/api/payees", marshal(map[string]any{"payeeName": "x"}), testAuthToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payee, got %d", rec.Code)
	}

	if rec := serve(h, request(http.MethodPatch, "/api/payees/"+id, marshal(map[string]any{"active": false}), "")); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated patch, got %d", rec.Code)
	}
	rec = serve(h, request(http.MethodPatch, "/api/payees/"+id, marshal(map[string]any{"active": false}), testAuthToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("patch payee: %d: %s", rec.Code, rec.Body.String())
	}
	var patched map[string]any
	decode(t, rec, &patched)
	if patched["active"] != false {
		t.Fatalf("expected inactive payee, got %v", patched)
	}
	rec = serve(h, request(http.MethodGet, "/api/payees/"+id, nil, ""))
	var fetched map[string]any
	decode(t, rec, &fetched)
	if fetched["active"] != false {
		t.Fatalf("status change not persisted: %v", fetched)
	}
	rec = serve(h, request(http.MethodPatch, "/api/payees/"+id, marshal(map[string]any{}), testAuthToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without active, got %d", rec.Code)
	}
	rec = serve(h, request(http.MethodPatch, "/api/payees/missing", marshal(map[string]any{"active": true}), testAuthToken))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing payee, got %d", rec.Code)
	}

	if rec := serve(h, request(http.MethodDelete, "/api/payees/"+id, nil, testAuthToken)); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestManagerSessionRoutes(t *testing.T) {
	h, audit := newTestHandler(t, []string{testAuthToken})

	for _, p := range []map[string]any{
		{"payeeName": "Bolt Energy", "address": map[string]string{"city": "Austin", "state": "TX"}},
		{"payeeName": "acme water", "address": map[string]string{"city": "Denver", "state": "CO"}},
	} {
		if rec := serve(h, request(http.MethodPost, "/api/payees", marshal(p), testAuthToken)); rec.Code != http.StatusCreated {
			t.Fatalf("seed payee: %d", rec.Code)
		}
	}

	rec := serve(h, request(http.MethodPost, "/manager/sessions", nil, testAuthToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: %d %s", rec.Code, rec.Body.String())
	}
	var summary sessionSummary
	decode(t, rec, &summary)
	id := summary.ID
	waitReady(t, h, id)

	rec = serve(h, request(http.MethodPost, "/manager/sessions/"+id+"/browse/sort", marshal(map[string]string{"field": "payeeName"}), testAuthToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("sort: %d %s", rec.Code, rec.Body.String())
	}
	var model struct {
		SortField     string `json:"sortField"`
		SortDirection string `json:"sortDirection"`
		Columns       []struct {
			Field         string `json:"field"`
			SortIndicator string `json:"sortIndicator"`
		} `json:"columns"`
		Rows []struct {
			PayeeName string `json:"payeeName"`
		} `json:"rows"`
	}
	decode(t, rec, &model)
	if model.SortDirection != "asc" || model.Columns[0].SortIndicator != "⏫" {
		t.Fatalf("unexpected sort model %+v", model)
	}
	if len(model.Rows) != 2 || model.Rows[0].PayeeName != "acme water" {
		t.Fatalf("rows not ordered by name: %+v", model.Rows)
	}

	rec = serve(h, request(http.MethodPost, "/manager/sessions/"+id+"/browse/sort", marshal(map[string]string{"field": "payeeName"}), testAuthToken))
	decode(t, rec, &model)
	if model.SortDirection != "desc" || model.Columns[0].SortIndicator != "⏬" || model.Rows[0].PayeeName != "Bolt Energy" {
		t.Fatalf("unexpected toggled model %+v", model)
	}

	rec = serve(h, request(http.MethodPost, "/manager/sessions/"+id+"/browse/sort", marshal(map[string]string{"field": "nope"}), testAuthToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown column, got %d", rec.Code)
	}

	rec = serve(h, request(http.MethodGet, "/manager/sessions/"+id+"/search?q=denv", nil, ""))
	var search struct {
		Results []map[string]any `json:"results"`
		Total   int              `json:"total"`
	}
	decode(t, rec, &search)
	if len(search.Results) != 1 || search.Total != 2 {
		t.Fatalf("unexpected search %+v", search)
	}

	form := marshal(map[string]string{"payeeName": "City Gas", "city": "Boston", "state": "MA"})
	if rec := serve(h, request(http.MethodPost, "/manager/sessions/"+id+"/add", form, testAuthToken)); rec.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(h, request(http.MethodPost, "/manager/sessions/"+id+"/add", marshal(map[string]string{"payeeName": "No City"}), testAuthToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid form, got %d", rec.Code)
	}
	var apiErr struct {
		Details map[string]any `json:"details"`
	}
	decode(t, rec, &apiErr)
	if apiErr.Details["field"] != "address.city" {
		t.Fatalf("unexpected error details %v", apiErr.Details)
	}

	rec = serve(h, request(http.MethodGet, "/manager/sessions/"+id+"/browse", nil, ""))
	decode(t, rec, &model)
	if len(model.Rows) != 3 {
		t.Fatalf("expected added payee in browse view, got %d rows", len(model.Rows))
	}

	rec = serve(h, request(http.MethodGet, "/manager/sessions", nil, ""))
	var sessions []sessionSummary
	decode(t, rec, &sessions)
	if len(sessions) != 1 || sessions[0].PayeeCount != 3 {
		t.Fatalf("unexpected session list %+v", sessions)
	}

	if rec := serve(h, request(http.MethodDelete, "/manager/sessions/"+id, nil, testAuthToken)); rec.Code != http.StatusNoContent {
		t.Fatalf("close session: %d", rec.Code)
	}
	if rec := serve(h, request(http.MethodGet, "/manager/sessions/"+id, nil, "")); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", rec.Code)
	}

	entries := audit.List(0)
	if len(entries) == 0 {
		t.Fatalf("expected audit entries")
	}
	last := entries[len(entries)-1]
	if last.Method != http.MethodDelete || last.Status != http.StatusNoContent || last.TraceID == "" {
		t.Fatalf("unexpected last audit entry %+v", last)
	}
}

func TestOpsEndpoints(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	rec := serve(h, request(http.MethodGet, "/healthz", nil, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
	var health map[string]any
	decode(t, rec, &health)
	if health["status"] != "ok" {
		t.Fatalf("unexpected health %v", health)
	}

	if rec := serve(h, request(http.MethodGet, "/metrics", nil, "")); rec.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rec.Code)
	}

	serve(h, request(http.MethodPost, "/manager/sessions", nil, ""))
	rec = serve(h, request(http.MethodGet, "/api/audit?limit=1", nil, ""))
	var entries []AuditEntry
	decode(t, rec, &entries)
	if len(entries) != 1 || entries[0].Path != "/manager/sessions" {
		t.Fatalf("unexpected audit listing %+v", entries)
	}
}
