package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/tempohq/timeclock-backend-go/internal/handler/http/response"
)

// SelfOrAdmin allows admins through unconditionally and everyone else
// only when the employeeID route param is their own.
func SelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, "Invalid or missing token")
			return
		}

		if role, ok := claims["role"].(string); ok && role == "admin" {
			next.ServeHTTP(w, r)
			return
		}

		employeeID, ok := claims["employee_id"].(string)
		if !ok || employeeID == "" || employeeID != chi.URLParam(r, "employeeID") {
			response.Forbidden(w, "You can only access your own records")
			return
		}

		next.ServeHTTP(w, r)
	})
}
