package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/payee_manager/internal/app/manager"
	"github.com/R3E-Network/payee_manager/internal/app/manager/views"
	"github.com/R3E-Network/payee_manager/internal/httputil"
)

type sessionSummary struct {
	ID            string                `json:"id"`
	Status        manager.LoadStatus    `json:"status"`
	Error         string                `json:"error,omitempty"`
	PayeeCount    int                   `json:"payeeCount"`
	SortField     string                `json:"sortField"`
	SortDirection manager.SortDirection `json:"sortDirection"`
	CreatedAt     time.Time             `json:"createdAt"`
	LastSeen      time.Time             `json:"lastSeen"`
}

func summarize(sess *manager.Session) sessionSummary {
	state := sess.Store.State()
	status, err := sess.Loader.Status()
	out := sessionSummary{
		ID:            sess.ID,
		Status:        status,
		PayeeCount:    len(state.Payees),
		SortField:     state.SortField,
		SortDirection: state.SortDirection,
		CreatedAt:     sess.CreatedAt,
		LastSeen:      sess.LastSeen(),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// session resolves the {id} route variable, writing a 404 when it is unknown.
func (h *handler) session(w http.ResponseWriter, r *http.Request) (*manager.Session, bool) {
	sess, err := h.app.Sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	ids := h.app.Sessions.IDs()
	out := make([]sessionSummary, 0, len(ids))
	for _, id := range ids {
		sess, err := h.app.Sessions.Get(id)
		if err != nil {
			continue
		}
		out = append(out, summarize(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) openSession(w http.ResponseWriter, r *http.Request) {
	sess := h.app.Sessions.Open(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusCreated, summarize(sess))
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(sess))
}

func (h *handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Sessions.Close(mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) reloadSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.Loader.Load(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusAccepted, summarize(sess))
}

func (h *handler) searchView(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.NewSearchView(sess.Store).Render(criteriaFromQuery(r)))
}

func (h *handler) browseView(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, views.NewBrowseView(sess.Store).Render())
}

func (h *handler) browseSort(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var payload struct {
		Field string `json:"field"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	model, err := views.NewBrowseView(sess.Store).Sort(payload.Field)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (h *handler) addView(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var form views.AddForm
	if !httputil.DecodeJSON(w, r, &form) {
		return
	}
	created, err := views.NewAddView(sess.Store, h.app.Data, h.log).Submit(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
