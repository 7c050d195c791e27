package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/martinsuchenak/fortimcp/internal/fortigate"
)

// addTestDevice registers a device backed by a TLS test server.
func addTestDevice(t *testing.T, reg *fortigate.Registry, id string) {
	t.Helper()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing test server port: %v", err)
	}

	if _, err := reg.Add(id, fortigate.DeviceConfig{Host: u.Hostname(), Port: port, APIToken: "tok"}); err != nil {
		t.Fatalf("Add %s failed: %v", id, err)
	}
}

// addUnreachableDevice registers a device pointing at a closed port.
func addUnreachableDevice(t *testing.T, reg *fortigate.Registry, id string) {
	t.Helper()
	cfg := fortigate.DeviceConfig{Host: "127.0.0.1", Port: 1, APIToken: "tok", Timeout: 2}
	if _, err := reg.Add(id, cfg); err != nil {
		t.Fatalf("Add %s failed: %v", id, err)
	}
}

func TestMonitorStatusBeforeProbe(t *testing.T) {
	m := NewMonitor(fortigate.NewRegistry())

	status, results, lastRun := m.Status()
	if status != StatusUnknown {
		t.Errorf("status = %q, want %q", status, StatusUnknown)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
	if !lastRun.IsZero() {
		t.Error("lastRun should be zero before any sweep")
	}
}

func TestMonitorHealthy(t *testing.T) {
	reg := fortigate.NewRegistry()
	addTestDevice(t, reg, "edge1")
	addTestDevice(t, reg, "edge2")

	m := NewMonitor(reg)
	results := m.RunProbe(context.Background())

	if len(results) != 2 || !results["edge1"] || !results["edge2"] {
		t.Fatalf("results = %v, want both reachable", results)
	}

	status, got, lastRun := m.Status()
	if status != StatusHealthy {
		t.Errorf("status = %q, want %q", status, StatusHealthy)
	}
	if len(got) != 2 {
		t.Errorf("stored results = %v", got)
	}
	if lastRun.IsZero() {
		t.Error("lastRun should be set after a sweep")
	}
}

func TestMonitorDegraded(t *testing.T) {
	reg := fortigate.NewRegistry()
	addTestDevice(t, reg, "edge1")
	addUnreachableDevice(t, reg, "edge2")

	m := NewMonitor(reg)
	m.RunProbe(context.Background())

	status, results, _ := m.Status()
	if status != StatusDegraded {
		t.Errorf("status = %q, want %q", status, StatusDegraded)
	}
	if results["edge2"] {
		t.Error("unreachable device reported as up")
	}
}

func TestMonitorStatusReturnsCopy(t *testing.T) {
	reg := fortigate.NewRegistry()
	addTestDevice(t, reg, "edge1")

	m := NewMonitor(reg)
	m.RunProbe(context.Background())

	_, results, _ := m.Status()
	results["edge1"] = false

	status, _, _ := m.Status()
	if status != StatusHealthy {
		t.Error("mutating the returned map must not affect the monitor")
	}
}

func TestMonitorStartStop(t *testing.T) {
	m := NewMonitor(fortigate.NewRegistry())

	if err := m.Start("@every 1h"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	m.Stop()
	// Stop without a prior Start must be a no-op.
	m.Stop()
}

func TestMonitorStartInvalidSpec(t *testing.T) {
	m := NewMonitor(fortigate.NewRegistry())
	if err := m.Start("not a cron spec"); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}
