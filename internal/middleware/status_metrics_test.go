package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusMetricsMiddleware_ReportsStatus(t *testing.T) {
	var got []int
	mw := NewStatusMetricsMiddleware(func(code int) { got = append(got, code) })

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(got) != 1 || got[0] != http.StatusTeapot {
		t.Errorf("observed = %v, want [418]", got)
	}
}

func TestStatusMetricsMiddleware_ImplicitWriteIs200(t *testing.T) {
	var got int
	mw := NewStatusMetricsMiddleware(func(code int) { got = code })

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != http.StatusOK {
		t.Errorf("observed = %d, want %d", got, http.StatusOK)
	}
}

func TestStatusMetricsMiddleware_NilObserverPassesThrough(t *testing.T) {
	mw := NewStatusMetricsMiddleware(nil)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !called {
		t.Error("next handler was not called")
	}
}
