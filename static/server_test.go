package static

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesIndexForAppRoutes(t *testing.T) {
	h := Handler()
	for _, p := range []string{"/", "/play", "/session/ABCD"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", p, w.Code)
		}
		if !strings.Contains(w.Body.String(), "Number Hunter") {
			t.Fatalf("%s: expected index.html", p)
		}
		if got := w.Header().Get("Cache-Control"); got != "no-cache" {
			t.Fatalf("%s: cache-control=%q", p, got)
		}
	}
}

func TestHandlerMissingAsset(t *testing.T) {
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/missing.js", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
