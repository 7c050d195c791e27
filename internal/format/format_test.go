package format

import (
	"strings"
	"testing"
)

func decodeRows(rows ...map[string]any) map[string]any {
	items := make([]any, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return map[string]any{"results": items, "status": "success"}
}

func TestDevices(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := Devices(nil)
		if got != "No FortiGate devices configured" {
			t.Errorf("Devices(nil) = %q", got)
		}
	})

	t.Run("listed in order", func(t *testing.T) {
		got := Devices([]string{"edge1", "edge2"})
		if !strings.Contains(got, "Registered FortiGate Devices") {
			t.Errorf("missing header: %q", got)
		}
		if strings.Index(got, "edge1") > strings.Index(got, "edge2") {
			t.Error("devices must render in the given order")
		}
	})
}

func TestFirewallPolicies(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := FirewallPolicies(map[string]any{"results": []any{}})
		if got != "Firewall Policies\n\nNo firewall policies found" {
			t.Errorf("empty render = %q", got)
		}
	})

	t.Run("policy row", func(t *testing.T) {
		got := FirewallPolicies(decodeRows(map[string]any{
			"policyid": float64(1),
			"name":     "allow-web",
			"srcintf":  []any{map[string]any{"name": "internal"}},
			"dstintf":  []any{map[string]any{"name": "wan1"}},
			"srcaddr":  []any{map[string]any{"name": "all"}},
			"dstaddr":  []any{map[string]any{"name": "web-servers"}},
			"service":  []any{map[string]any{"name": "HTTPS"}},
			"action":   "accept",
			"status":   "enable",
		}))

		for _, want := range []string{
			"Firewall Policies (1)",
			"Policy 1: allow-web",
			"From: internal -> To: wan1",
			"Source: all -> Destination: web-servers",
			"Service: HTTPS",
			"Action: accept, Status: enable",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("render missing %q:\n%s", want, got)
			}
		}
	})
}

func TestFirewallPolicyDetailResolvesObjects(t *testing.T) {
	policy := decodeRows(map[string]any{
		"policyid": float64(7),
		"name":     "dmz-in",
		"action":   "accept",
		"status":   "enable",
		"srcintf":  []any{map[string]any{"name": "wan1"}},
		"dstintf":  []any{map[string]any{"name": "dmz"}},
		"srcaddr":  []any{map[string]any{"name": "all"}},
		"dstaddr":  []any{map[string]any{"name": "dmz-net"}},
		"service":  []any{map[string]any{"name": "web"}},
	})
	addresses := decodeRows(map[string]any{"name": "dmz-net", "subnet": "10.0.5.0 255.255.255.0"})
	services := decodeRows(map[string]any{"name": "web", "tcp-portrange": "80-443"})

	got := FirewallPolicyDetail(policy, "edge1", addresses, services)

	for _, want := range []string{
		"Firewall Policy Detail (device: edge1)",
		"Policy 7: dmz-in",
		"dmz-net (10.0.5.0 255.255.255.0)",
		"web (80-443)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("render missing %q:\n%s", want, got)
		}
	}
}

func TestFirewallPolicyDetailToleratesMissingLookups(t *testing.T) {
	policy := decodeRows(map[string]any{
		"policyid": float64(7),
		"name":     "dmz-in",
		"srcaddr":  []any{map[string]any{"name": "dmz-net"}},
	})

	got := FirewallPolicyDetail(policy, "edge1", nil, nil)
	if !strings.Contains(got, "- dmz-net\n") {
		t.Errorf("unresolved member must render bare:\n%s", got)
	}
}

func TestEmptyListMessages(t *testing.T) {
	empty := map[string]any{"results": []any{}}
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"addresses", AddressObjects(empty), "Address Objects\n\nNo address objects found"},
		{"services", ServiceObjects(empty), "Service Objects\n\nNo service objects found"},
		{"routes", StaticRoutes(empty), "Static Routes\n\nNo static routes found"},
		{"interfaces", Interfaces(empty), "Network Interfaces\n\nNo interfaces found"},
		{"vdoms", VDOMs(empty), "Virtual Domains\n\nNo virtual domains found"},
		{"vips", VirtualIPs(empty), "Virtual IPs\n\nNo virtual IPs found"},
		{"dhcp", DHCPLeases(empty), "DHCP Leases\n\nNo DHCP leases found"},
		{"arp", ARPTable(empty), "ARP Table\n\nNo ARP entries found"},
		{"sessions", SessionTable(empty), "Session Table\n\nNo active sessions found"},
		{"inventory", DeviceInventory(empty), "Device Inventory\n\nNo devices detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestVirtualIPs(t *testing.T) {
	got := VirtualIPs(decodeRows(map[string]any{
		"name":        "web-vip",
		"extip":       "203.0.113.10",
		"mappedip":    []any{map[string]any{"range": "10.0.0.10"}},
		"extintf":     "wan1",
		"portforward": "enable",
		"protocol":    "tcp",
		"extport":     "443",
		"mappedport":  "8443",
	}))

	for _, want := range []string{
		"web-vip: 203.0.113.10 -> 10.0.0.10",
		"on wan1",
		"(tcp 443 -> 8443)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("render missing %q:\n%s", want, got)
		}
	}
}

func TestStaticRoutes(t *testing.T) {
	got := StaticRoutes(decodeRows(map[string]any{
		"dst":      "0.0.0.0/0",
		"gateway":  "192.168.1.254",
		"device":   "wan1",
		"distance": float64(10),
	}))

	if !strings.Contains(got, "0.0.0.0/0 via 192.168.1.254 dev wan1 distance 10") {
		t.Errorf("render = %q", got)
	}
}

func TestOperationResult(t *testing.T) {
	success := OperationResult("create_firewall_policy", "edge1", true, "Firewall policy created", "")
	if !strings.HasPrefix(success, "Success: create_firewall_policy on device edge1") {
		t.Errorf("success render = %q", success)
	}

	failure := OperationResult("create_firewall_policy", "edge1", false, "", "boom")
	if !strings.HasPrefix(failure, "Failed: create_firewall_policy on device edge1") {
		t.Errorf("failure render = %q", failure)
	}
}

func TestConnectionTest(t *testing.T) {
	if got := ConnectionTest("edge1", true, ""); got != "Connection to device edge1 successful" {
		t.Errorf("success render = %q", got)
	}
	if got := ConnectionTest("edge1", false, ""); got != "Connection to device edge1 failed" {
		t.Errorf("failure render = %q", got)
	}
}

func TestHealthStatus(t *testing.T) {
	got := HealthStatus("healthy", map[string]any{
		"registered_devices": 2,
		"server_version":     "1.0.0",
	})

	if !strings.HasPrefix(got, "Health Status: healthy\n") {
		t.Errorf("render = %q", got)
	}
	if !strings.Contains(got, "Registered Devices: 2") {
		t.Errorf("render missing device count:\n%s", got)
	}
	if !strings.Contains(got, "Server Version: 1.0.0") {
		t.Errorf("render missing version:\n%s", got)
	}
}

func TestJSONResponseFallback(t *testing.T) {
	got := JSONResponse(map[string]any{"serial": "FGT60F000000"}, "Interface Status: port1")
	if !strings.HasPrefix(got, "Interface Status: port1\n\n") {
		t.Errorf("render = %q", got)
	}
	if !strings.Contains(got, `"serial": "FGT60F000000"`) {
		t.Errorf("render missing JSON body:\n%s", got)
	}
}

func TestResultsSingleObject(t *testing.T) {
	data := map[string]any{"results": map[string]any{"name": "only"}}
	rows := results(data)
	if len(rows) != 1 || rows[0]["name"] != "only" {
		t.Errorf("results() = %v, want one row", rows)
	}
}
