package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/internal/httputil"
)

func criteriaFromQuery(r *http.Request) payee.Criteria {
	q := r.URL.Query()
	return payee.Criteria{
		Query: q.Get("q"),
		City:  q.Get("city"),
		State: q.Get("state"),
	}
}

func (h *handler) listPayees(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Payees.Search(r.Context(), criteriaFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) createPayee(w http.ResponseWriter, r *http.Request) {
	var in payee.Payee
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	created, err := h.app.Payees.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getPayee(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Payees.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type payeeStatusRequest struct {
	Active *bool `json:"active"`
}

func (h *handler) setPayeeStatus(w http.ResponseWriter, r *http.Request) {
	var in payeeStatusRequest
	if !httputil.DecodeJSON(w, r, &in) {
		return
	}
	if in.Active == nil {
		writeError(w, r, svcerrors.InvalidInput("active is required").WithDetails("field", "active"))
		return
	}
	p, err := h.app.Payees.SetActive(r.Context(), mux.Vars(r)["id"], *in.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) deletePayee(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Payees.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
