package middleware

import (
	"net/http"

	"patient-portal-api/internal/ports/auth"
)

// RequireAdmin corta con 401 si no hay sesión y 403 si la sesión no es
// admin. Todo /admin pasa por acá: no existe el admin implícito sin login.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePatient exige una sesión de paciente. El scoping al propio
// paciente (claims.PatientID vs path) lo hace cada handler del portal.
func RequirePatient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RolePatient || claims.PatientID == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
