package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/notebook/internal/testutil"
)

func TestRootRouter_Health(t *testing.T) {
	store := testutil.TestStore(t)
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := newRootRouter(store, api)

	for _, path := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("/api/notes: status = %d, want mounted handler", w.Code)
	}
}

func TestRootRouter_NotReadyAfterClose(t *testing.T) {
	store := testutil.TestStore(t)
	h := newRootRouter(store, http.NotFoundHandler())
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
