package httpapi

import (
	"net/http"

	"github.com/R3E-Network/payee_manager/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err)
}
