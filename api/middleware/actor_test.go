package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmarchuk/artvault-backend/pkg/logger"
)

func TestActorContextPropagatesHeader(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-Id", "user-123")
	ActorContext(logg)(next).ServeHTTP(httptest.NewRecorder(), req)

	if seen != "user-123" {
		t.Fatalf("expected actor id in context, got %q", seen)
	}
}

func TestActorContextMissingHeaderLeavesContextEmpty(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ActorIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ActorContext(nil)(next).ServeHTTP(httptest.NewRecorder(), req)

	if seen != "" {
		t.Fatalf("expected empty actor id, got %q", seen)
	}
}
