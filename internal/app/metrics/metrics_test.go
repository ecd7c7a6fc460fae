package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                                  "/",
		"/":                                 "/",
		"/healthz":                          "/healthz",
		"/api/payees":                       "/api/payees",
		"/api/payees/123":                   "/api/payees/:id",
		"/manager/sessions":                 "/manager/sessions",
		"/manager/sessions/abc":             "/manager/sessions/:session",
		"/manager/sessions/abc/browse/sort": "/manager/sessions/:session/browse/sort",
	}
	for in, want := range cases {
		if got := canonicalPath(in); got != want {
			t.Fatalf("canonicalPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInstrumentHandlerExposesMetrics(t *testing.T) {
	handler := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/payees/1", nil))
	RecordFetch(FetchSucceeded, 0)

	resp := httptest.NewRecorder()
	Handler().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := resp.Body.String()
	if !strings.Contains(body, `payee_manager_http_requests_total{method="GET",path="/api/payees/:id",status="418"}`) {
		t.Fatalf("expected request counter in output")
	}
	if !strings.Contains(body, `payee_manager_manager_payee_fetches_total{outcome="succeeded"}`) {
		t.Fatalf("expected fetch counter in output")
	}
}
