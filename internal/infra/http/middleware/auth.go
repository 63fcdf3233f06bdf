package middleware

import (
	"encoding/json"
	"net/http"
	"os"
)

// AdminOnly gates destructive endpoints behind the ADMIN_TOKEN header check.
// No configured token means the endpoints are disabled outright.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminToken := os.Getenv("ADMIN_TOKEN")

		if adminToken == "" {
			writeAuthError(w, http.StatusForbidden, "Admin endpoints are disabled (no ADMIN_TOKEN configured)")
			return
		}

		provided := r.Header.Get("X-Admin-Token")
		if provided == "" || provided != adminToken {
			writeAuthError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
