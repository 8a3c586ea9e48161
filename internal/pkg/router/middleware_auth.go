package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/safestreet/internal/pkg/jwt"
)

func middlewareAuthentication(verifier Verifier, isPublic func(method, path string) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.Method, matchedRoutePath(r)) {
				next.ServeHTTP(w, r)
				return
			}

			scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeJSON(w, errorResponse{Error: "Authentication required"}, http.StatusUnauthorized)
				return
			}
			if verifier == nil {
				writeJSON(w, errorResponse{Error: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				writeJSON(w, errorResponse{Error: "Invalid or expired token"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}

// Authorize returns a middleware that lets the request through only when
// the caller's role may perform act on obj. It must run after authentication.
func (r *Router) Authorize(obj, act string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			clm := jwt.GetAuth(req.Context())
			if clm == nil {
				writeJSON(w, errorResponse{Error: "Authentication required"}, http.StatusUnauthorized)
				return
			}
			if r.enforcer == nil {
				writeJSON(w, errorResponse{Error: "Forbidden"}, http.StatusForbidden)
				return
			}

			ok, err := r.enforcer.Enforce(clm.Role, obj, act)
			if err != nil {
				slog.ErrorContext(req.Context(), "failed to enforce policy", "role", clm.Role, "obj", obj, "act", act, "error", err)
				writeJSON(w, errorResponse{Error: "Internal server error"}, http.StatusInternalServerError)
				return
			}
			if !ok {
				writeJSON(w, errorResponse{Error: "Forbidden"}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}
