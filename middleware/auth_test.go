package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/event-brackets/utils"
)

func TestAdminPassword(t *testing.T) {
	hash, err := utils.HashPasswordWithCost("open sesame", bcrypt.MinCost)
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		hash     string
		password string
		want     int
	}{
		{"correct password", hash, "open sesame", http.StatusNoContent},
		{"wrong password", hash, "open barley", http.StatusUnauthorized},
		{"missing password", hash, "", http.StatusUnauthorized},
		{"admin disabled", "", "open sesame", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/matches/1/winner", nil)
			if tt.password != "" {
				req.Header.Set(AdminPasswordHeader, tt.password)
			}
			rr := httptest.NewRecorder()
			AdminPassword(tt.hash, nil)(ok).ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want != http.StatusNoContent {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				assert.Contains(t, rr.Body.String(), `"error"`)
			}
		})
	}
}
