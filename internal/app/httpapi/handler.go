package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	app "github.com/R3E-Network/payee_manager/internal/app"
	"github.com/R3E-Network/payee_manager/internal/app/metrics"
	"github.com/R3E-Network/payee_manager/internal/middleware"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Options configures the HTTP surface.
type Options struct {
	AuthTokens     []string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Audit          *AuditLog
	Logger         *logger.Logger
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app      *app.Application
	audit    *AuditLog
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewHandler returns the router exposing the payee API, the manager session
// routes and the ops endpoints, wrapped in the standard middleware chain.
func NewHandler(application *app.Application, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	audit := opts.Audit
	if audit == nil {
		audit = NewAuditLog(200, nil)
	}

	h := &handler{
		app:   application,
		audit: audit,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(opts.AllowedOrigins),
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/payees", h.listPayees).Methods(http.MethodGet)
	api.HandleFunc("/payees", h.createPayee).Methods(http.MethodPost)
	api.HandleFunc("/payees/{id}", h.getPayee).Methods(http.MethodGet)
	api.HandleFunc("/payees/{id}", h.setPayeeStatus).Methods(http.MethodPatch)
	api.HandleFunc("/payees/{id}", h.deletePayee).Methods(http.MethodDelete)
	api.HandleFunc("/audit", h.listAudit).Methods(http.MethodGet)

	sessions := r.PathPrefix("/manager/sessions").Subrouter()
	sessions.HandleFunc("", h.listSessions).Methods(http.MethodGet)
	sessions.HandleFunc("", h.openSession).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}", h.getSession).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}", h.closeSession).Methods(http.MethodDelete)
	sessions.HandleFunc("/{id}/reload", h.reloadSession).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/search", h.searchView).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/browse", h.browseView).Methods(http.MethodGet)
	sessions.HandleFunc("/{id}/browse/sort", h.browseSort).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/add", h.addView).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/live", h.live).Methods(http.MethodGet)

	r.Use(middleware.LoggingMiddleware(log))
	if opts.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log).Handler)
	}
	r.Use(middleware.NewTokenAuth(opts.AuthTokens, log).Handler, audit.Middleware)

	cors := middleware.NewCORSMiddleware(opts.AllowedOrigins)
	return metrics.InstrumentHandler(cors.Handler(r))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.app.Sessions.Len(),
	})
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}
