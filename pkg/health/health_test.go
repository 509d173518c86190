package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

func fixed(status Status) CheckFunc {
	return func(context.Context) Check { return Check{Status: status} }
}

func TestNewHealthChecker(t *testing.T) {
	hc := NewHealthChecker()

	if hc == nil {
		t.Fatal("NewHealthChecker returned nil")
	}
	if hc.checks == nil || hc.readyChecks == nil || hc.liveChecks == nil {
		t.Error("check registries not initialized")
	}
}

func TestRegistriesAreSeparate(t *testing.T) {
	hc := NewHealthChecker()

	called := false
	hc.RegisterReadinessCheck("ready-test", func(context.Context) Check {
		called = true
		return Check{Status: StatusHealthy}
	})

	hc.Check(context.Background())
	hc.CheckLiveness(context.Background())
	if called {
		t.Error("readiness check should only run for CheckReadiness()")
	}

	resp := hc.CheckReadiness(context.Background())
	if !called {
		t.Error("readiness check was not called")
	}
	check, exists := resp.Checks["ready-test"]
	if !exists {
		t.Fatal("readiness check result not in response")
	}
	if check.Name != "ready-test" {
		t.Errorf("unnamed check should take its registration name, got %q", check.Name)
	}
}

func TestWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for i, s := range tt.statuses {
				hc.RegisterCheck(string(rune('a'+i)), fixed(s))
			}
			if got := hc.Check(context.Background()).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func sampleGraph(withBot bool) *graph.Graph {
	b := graph.NewBuilder()
	b.AddNode(graph.NodeData{ID: "polls", NodeType: graph.NodeFeature, Label: "Polls"})
	if withBot {
		b.AddNode(graph.NodeData{ID: "alpha", NodeType: graph.NodeBot, Label: "Alpha"})
		b.AddHasFeature("alpha", "polls")
	}
	return b.Graph()
}

func TestSnapshotCheck(t *testing.T) {
	tests := []struct {
		name string
		load func(context.Context) (*graph.Graph, error)
		want Status
	}{
		{"loaded", func(context.Context) (*graph.Graph, error) { return sampleGraph(true), nil }, StatusHealthy},
		{"no bots", func(context.Context) (*graph.Graph, error) { return sampleGraph(false), nil }, StatusDegraded},
		{"missing", func(context.Context) (*graph.Graph, error) { return nil, errors.New("snapshot not found") }, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := SnapshotCheck("static_graph.json", tt.load)(context.Background())
			if check.Status != tt.want {
				t.Errorf("status = %s, want %s (%s)", check.Status, tt.want, check.Message)
			}
			if check.Details["location"] != "static_graph.json" {
				t.Errorf("details = %v", check.Details)
			}
		})
	}

	check := SnapshotCheck("g", func(context.Context) (*graph.Graph, error) { return sampleGraph(true), nil })(context.Background())
	if check.Details["bots"] != 1 || check.Details["features"] != 1 || check.Details["edges"] != 1 {
		t.Errorf("details = %v", check.Details)
	}
}

func TestMemoryCheck(t *testing.T) {
	if s := memoryCheck(func() (uint64, uint64) { return 95, 100 })(context.Background()).Status; s != StatusDegraded {
		t.Errorf("high usage = %s", s)
	}
	if s := memoryCheck(func() (uint64, uint64) { return 10, 100 })(context.Background()).Status; s != StatusHealthy {
		t.Errorf("normal usage = %s", s)
	}
	if s := memoryCheck(func() (uint64, uint64) { return 0, 0 })(context.Background()).Status; s != StatusHealthy {
		t.Errorf("zero sys = %s", s)
	}
	if s := MemoryCheck()(context.Background()).Name; s != "memory" {
		t.Errorf("name = %s", s)
	}
}

func TestHandlers(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("snapshot", fixed(StatusDegraded))
	hc.RegisterReadinessCheck("snapshot", fixed(StatusDegraded))
	hc.RegisterLivenessCheck("ping", SimpleCheck("ping"))

	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    int
		status  Status
	}{
		{"health tolerates degraded", hc.HTTPHandler(), http.StatusOK, StatusDegraded},
		{"readiness requires healthy", hc.ReadinessHandler(), http.StatusServiceUnavailable, StatusDegraded},
		{"liveness", hc.LivenessHandler(), http.StatusOK, StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rec.Code != tt.code {
				t.Errorf("code = %d, want %d", rec.Code, tt.code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %s", ct)
			}
			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("status = %s, want %s", resp.Status, tt.status)
			}
		})
	}
}

func TestUnhealthyHealthEndpoint(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck("snapshot", fixed(StatusUnhealthy))

	rec := httptest.NewRecorder()
	hc.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", rec.Code)
	}
}
