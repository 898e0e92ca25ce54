package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestActorIDMiddleware(t *testing.T) {
	mw := ActorID(nil)

	t.Run("header present", func(t *testing.T) {
		var got string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = ActorIDFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Actor-Id", "user-42")
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)

		if got != "user-42" {
			t.Fatalf("expected actor id user-42, got %q", got)
		}
	})

	t.Run("header absent", func(t *testing.T) {
		var got string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = ActorIDFromContext(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		mw(handler).ServeHTTP(httptest.NewRecorder(), req)

		if got != "" {
			t.Fatalf("expected empty actor id, got %q", got)
		}
	})
}
