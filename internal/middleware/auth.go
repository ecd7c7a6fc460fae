package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/internal/httputil"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// TokenAuth guards write requests with static bearer tokens. Safe methods
// (GET, HEAD, OPTIONS) pass through. With no tokens configured every request
// passes.
type TokenAuth struct {
	tokens [][]byte
	log    *logger.Logger
}

// NewTokenAuth accepts any of tokens. Blank entries are ignored.
func NewTokenAuth(tokens []string, log *logger.Logger) *TokenAuth {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	a := &TokenAuth{log: log}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			a.tokens = append(a.tokens, []byte(t))
		}
	}
	return a
}

// Enabled reports whether any token is configured.
func (a *TokenAuth) Enabled() bool {
	return len(a.tokens) > 0
}

// Handler returns the auth middleware handler.
func (a *TokenAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() || isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			a.reject(w, r, "missing Authorization header")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			a.reject(w, r, "invalid Authorization header format")
			return
		}
		if !a.valid([]byte(strings.TrimSpace(parts[1]))) {
			a.reject(w, r, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *TokenAuth) valid(candidate []byte) bool {
	ok := false
	for _, t := range a.tokens {
		if subtle.ConstantTimeCompare(t, candidate) == 1 {
			ok = true
		}
	}
	return ok
}

func (a *TokenAuth) reject(w http.ResponseWriter, r *http.Request, reason string) {
	a.log.WithField("path", r.URL.Path).WithField("method", r.Method).Warn("authentication failed: " + reason)
	httputil.WriteError(w, r, svcerrors.Unauthorized(reason))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
