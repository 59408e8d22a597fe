package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/event-brackets/utils"
)

// AdminPasswordHeader carries the shared admin password.
const AdminPasswordHeader = "X-Admin-Password"

// AdminPassword пропускает запрос только с верным общим паролем администратора.
// Пустой hash закрывает все админские маршруты.
func AdminPassword(hash string, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				writeError(w, http.StatusForbidden, "admin access is disabled")
				return
			}
			password := r.Header.Get(AdminPasswordHeader)
			if password == "" || !utils.CheckPasswordHash(password, hash) {
				logger.Warn("rejected admin request", slog.String("path", r.URL.Path), slog.String("remote_addr", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "invalid admin password")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
