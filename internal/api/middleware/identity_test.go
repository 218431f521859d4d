package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/mastery-api/internal/api/shared"
)

func TestIdentityMiddleware(t *testing.T) {
	var gotUserID uuid.UUID
	var called bool

	handler := IdentityMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUserID, _ = r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid user ID header", func(t *testing.T) {
		called = false
		userID := uuid.New()

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set(UserIDHeader, userID.String())
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Equal(t, userID, gotUserID)
	})

	t.Run("missing header", func(t *testing.T) {
		called = false

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("malformed header", func(t *testing.T) {
		called = false

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set(UserIDHeader, "not-a-uuid")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("nil UUID", func(t *testing.T) {
		called = false

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		req.Header.Set(UserIDHeader, uuid.Nil.String())
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}
