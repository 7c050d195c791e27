package mcp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/martinsuchenak/fortimcp/internal/fortigate"
	"github.com/martinsuchenak/fortimcp/internal/worker"
	"github.com/paularlott/mcp"
)

func newTestServer(t *testing.T, bearerToken string) *Server {
	t.Helper()
	registry := fortigate.NewRegistry()
	return NewServer(registry, worker.NewMonitor(registry), nil, bearerToken, ":8814")
}

func TestHandleRequestAuth(t *testing.T) {
	tests := []struct {
		name        string
		bearerToken string
		authHeader  string
		wantStatus  int
	}{
		{
			name:        "missing header rejected",
			bearerToken: "secret",
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "wrong scheme rejected",
			bearerToken: "secret",
			authHeader:  "Basic c2VjcmV0",
			wantStatus:  http.StatusUnauthorized,
		},
		{
			name:        "wrong token rejected",
			bearerToken: "secret",
			authHeader:  "Bearer wrong",
			wantStatus:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.bearerToken)

			req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			server.HandleRequest(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleRequestAuthAccepted(t *testing.T) {
	server := newTestServer(t, "secret")

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	server.HandleRequest(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Error("valid token must not be rejected")
	}
}

func TestHandleRequestNoAuthConfigured(t *testing.T) {
	server := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	server.HandleRequest(rec, req)

	if rec.Code == http.StatusUnauthorized {
		t.Error("request must pass through when no token is configured")
	}
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "401 maps to credentials hint",
			err:  &fortigate.RemoteError{StatusCode: 401},
			want: "Authentication failed. Check the device credentials.",
		},
		{
			name: "403 maps to privileges hint",
			err:  &fortigate.RemoteError{StatusCode: 403},
			want: "Permission denied. The configured credentials lack privileges for this operation.",
		},
		{
			name: "404 maps to missing object hint",
			err:  &fortigate.RemoteError{StatusCode: 404},
			want: "Resource not found. The requested object may not exist on the device.",
		},
		{
			name: "500 maps to device error hint",
			err:  &fortigate.RemoteError{StatusCode: 500},
			want: "FortiGate internal error. Check the device status and logs.",
		},
		{
			name: "other remote status keeps raw message",
			err:  &fortigate.RemoteError{StatusCode: 400, Body: "bad request"},
			want: "API request failed: 400: bad request",
		},
		{
			name: "transport errors pass through",
			err:  &fortigate.TransportError{Err: errors.New("connection refused")},
			want: "Network error: connection refused",
		},
		{
			name: "registry errors pass through",
			err:  &fortigate.NotFoundError{DeviceID: "edge9", Available: []string{"edge1"}},
			want: "device 'edge9' not found, available devices: [edge1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := friendlyMessage(tt.err); got != tt.want {
				t.Errorf("friendlyMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegisteredToolSurface(t *testing.T) {
	server := newTestServer(t, "")
	tools := server.mcpServer.ListTools()

	want := map[string]bool{
		"list_devices":               false,
		"get_device_status":          false,
		"test_device_connection":     false,
		"discover_vdoms":             false,
		"add_device":                 false,
		"remove_device":              false,
		"list_firewall_policies":     false,
		"get_firewall_policy_detail": false,
		"create_firewall_policy":     false,
		"update_firewall_policy":     false,
		"delete_firewall_policy":     false,
		"list_address_objects":       false,
		"create_address_object":      false,
		"list_service_objects":       false,
		"create_service_object":      false,
		"list_static_routes":         false,
		"get_static_route_detail":    false,
		"create_static_route":        false,
		"update_static_route":        false,
		"delete_static_route":        false,
		"get_routing_table":          false,
		"list_interfaces":            false,
		"get_interface_status":       false,
		"list_virtual_ips":           false,
		"get_virtual_ip_detail":      false,
		"create_virtual_ip":          false,
		"update_virtual_ip":          false,
		"delete_virtual_ip":          false,
		"get_dhcp_leases":            false,
		"get_arp_table":              false,
		"get_session_table":          false,
		"get_device_inventory":       false,
		"health_check":               false,
		"get_server_info":            false,
	}

	for _, tool := range tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		} else {
			t.Errorf("unexpected tool registered: %s", tool.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool not registered: %s", name)
		}
	}
}

func responseText(t *testing.T, resp *mcp.ToolResponse) string {
	t.Helper()
	if resp == nil || len(resp.Content) == 0 {
		t.Fatal("empty tool response")
	}
	return resp.Content[0].Text
}

func TestToolScenarioAcrossDevices(t *testing.T) {
	backend := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	}))
	defer backend.Close()

	u, err := url.Parse(backend.URL)
	if err != nil {
		t.Fatalf("parsing backend URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parsing backend port: %v", err)
	}

	server := newTestServer(t, "")
	ctx := context.Background()

	resp, err := server.handleAddDevice(ctx, mcp.NewToolRequest(map[string]interface{}{
		"device_id": "edge1",
		"host":      u.Hostname(),
		"port":      port,
		"api_token": "tok",
	}))
	if err != nil {
		t.Fatalf("add_device failed: %v", err)
	}
	if got := responseText(t, resp); !strings.Contains(got, "Device registered") {
		t.Errorf("add_device response = %q, want registration confirmation", got)
	}

	// An empty policy table renders as content, never as an error.
	resp, err = server.handleListPolicies(ctx, mcp.NewToolRequest(map[string]interface{}{
		"device_id": "edge1",
	}))
	if err != nil {
		t.Fatalf("list_firewall_policies returned protocol error: %v", err)
	}
	if got := responseText(t, resp); !strings.Contains(got, "No firewall policies found") {
		t.Errorf("list_firewall_policies response = %q, want empty-list message", got)
	}

	// Unknown devices fail in content and name what is registered.
	resp, err = server.handleDeviceStatus(ctx, mcp.NewToolRequest(map[string]interface{}{
		"device_id": "edge2",
	}))
	if err != nil {
		t.Fatalf("get_device_status returned protocol error: %v", err)
	}
	if got := responseText(t, resp); !strings.Contains(got, "device 'edge2' not found, available devices: [edge1]") {
		t.Errorf("get_device_status response = %q, want unknown-device message listing edge1", got)
	}
}

func TestScopeArgFallsBackToDefault(t *testing.T) {
	// An empty vdom argument must behave exactly like an absent one.
	if fortigate.ScopeVDOM("") != fortigate.ScopeDefault {
		t.Error("empty vdom must resolve to the default scope")
	}
}
