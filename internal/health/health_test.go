package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/redirector/internal/storage/memory"
)

func staticChecker(name string, status Status) Checker {
	return CheckerFunc(func() Check {
		return Check{Component: name, Status: status}
	})
}

func TestHandler_AllHealthy(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("cache", staticChecker("cache", StatusHealthy))
	h.RegisterChecker("upstream", staticChecker("upstream", StatusHealthy))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", resp.Status)
	}
	if len(resp.Checks) != 2 {
		t.Errorf("expected 2 checks, got %d", len(resp.Checks))
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %s", resp.Version)
	}
}

func TestHandler_Unhealthy(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("cache", staticChecker("cache", StatusUnhealthy))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandler_DegradedIsStillReady(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("upstream", staticChecker("upstream", StatusDegraded))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded overall should answer 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded component should not block readiness, got %d", rec.Code)
	}
}

func TestHandler_ReadinessUnhealthy(t *testing.T) {
	h := NewHandler("test")
	h.RegisterChecker("cache", staticChecker("cache", StatusUnhealthy))

	rec := httptest.NewRecorder()
	h.ReadinessHandler(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCacheChecker(t *testing.T) {
	cache := memory.NewTTLCache("stock", 5*time.Minute)
	checker := NewCacheChecker("stock-cache", cache)

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", check.Status, check.Message)
	}
	if check.Component != "stock-cache" {
		t.Errorf("unexpected component name %s", check.Component)
	}
}

func TestUpstreamChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewUpstreamChecker("upstream", server.URL, time.Second)
	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", check.Status, check.Message)
	}
}

func TestUpstreamChecker_Unreachable(t *testing.T) {
	checker := NewUpstreamChecker("upstream", "http://127.0.0.1:1", 200*time.Millisecond)
	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", check.Status)
	}
}

func TestUpstreamChecker_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	checker := NewUpstreamChecker("upstream", server.URL, time.Second)
	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", check.Status)
	}
}
