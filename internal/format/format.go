// Package format renders decoded FortiGate API responses as display text for
// tool output. Each result kind has its own renderer; anything without one
// falls back to pretty-printed JSON.
package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// results extracts the "results" array from a FortiGate response. A response
// whose results field is a single object is returned as a one-element slice.
func results(data map[string]any) []map[string]any {
	raw, ok := data["results"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []any:
		rows := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if row, ok := item.(map[string]any); ok {
				rows = append(rows, row)
			}
		}
		return rows
	case map[string]any:
		return []map[string]any{v}
	default:
		return nil
	}
}

func str(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// names flattens FortiGate's [{"name": ...}, ...] member lists.
func names(row map[string]any, key string) string {
	items, ok := row[key].([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			parts = append(parts, str(m, "name"))
		}
	}
	return strings.Join(parts, ", ")
}

// Devices renders the registered device id list.
func Devices(ids []string) string {
	if len(ids) == 0 {
		return "No FortiGate devices configured"
	}
	var b strings.Builder
	b.WriteString("Registered FortiGate Devices\n\n")
	for _, id := range ids {
		fmt.Fprintf(&b, "  - %s\n", id)
	}
	return b.String()
}

// DeviceStatus renders the monitor/system/status document for a device.
func DeviceStatus(deviceID string, data map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Device Status: %s\n\n", deviceID)
	for _, key := range []string{"hostname", "version", "serial", "model", "status"} {
		if v := str(data, key); v != "" {
			fmt.Fprintf(&b, "%s: %s\n", titleCase(key), v)
		}
	}
	if results := results(data); len(results) == 1 {
		for _, key := range []string{"hostname", "model_name", "model_number"} {
			if v := str(results[0], key); v != "" {
				fmt.Fprintf(&b, "%s: %s\n", titleCase(key), v)
			}
		}
	}
	return b.String()
}

// VDOMs renders the virtual domain list.
func VDOMs(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Virtual Domains\n\nNo virtual domains found"
	}
	var b strings.Builder
	b.WriteString("Virtual Domains\n\n")
	for _, row := range rows {
		state := "enabled"
		if enabled, ok := row["enabled"].(bool); ok && !enabled {
			state = "disabled"
		}
		fmt.Fprintf(&b, "  - %s (%s)\n", str(row, "name"), state)
	}
	return b.String()
}

// FirewallPolicies renders a policy list.
func FirewallPolicies(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Firewall Policies\n\nNo firewall policies found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Firewall Policies (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "Policy %s: %s\n", str(row, "policyid"), str(row, "name"))
		if v := names(row, "srcintf"); v != "" {
			fmt.Fprintf(&b, "  From: %s -> To: %s\n", v, names(row, "dstintf"))
		}
		if v := names(row, "srcaddr"); v != "" {
			fmt.Fprintf(&b, "  Source: %s -> Destination: %s\n", v, names(row, "dstaddr"))
		}
		if v := names(row, "service"); v != "" {
			fmt.Fprintf(&b, "  Service: %s\n", v)
		}
		fmt.Fprintf(&b, "  Action: %s, Status: %s\n\n", str(row, "action"), str(row, "status"))
	}
	return b.String()
}

// FirewallPolicyDetail renders a single policy, resolving referenced address
// and service object names when those lookups were available.
func FirewallPolicyDetail(data map[string]any, deviceID string, addressObjects, serviceObjects map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return fmt.Sprintf("Firewall Policy Detail\n\nNo policy found on device %s", deviceID)
	}
	policy := rows[0]

	addresses := objectIndex(addressObjects, "subnet")
	services := objectIndex(serviceObjects, "tcp-portrange")

	var b strings.Builder
	fmt.Fprintf(&b, "Firewall Policy Detail (device: %s)\n\n", deviceID)
	fmt.Fprintf(&b, "Policy %s: %s\n", str(policy, "policyid"), str(policy, "name"))
	fmt.Fprintf(&b, "Action: %s, Status: %s\n", str(policy, "action"), str(policy, "status"))
	if v := str(policy, "uuid"); v != "" {
		fmt.Fprintf(&b, "UUID: %s\n", v)
	}
	fmt.Fprintf(&b, "Interfaces: %s -> %s\n", names(policy, "srcintf"), names(policy, "dstintf"))

	writeMembers := func(label, key string, index map[string]string) {
		items, ok := policy[key].([]any)
		if !ok || len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", label)
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := str(m, "name")
			if detail, ok := index[name]; ok && detail != "" {
				fmt.Fprintf(&b, "  - %s (%s)\n", name, detail)
			} else {
				fmt.Fprintf(&b, "  - %s\n", name)
			}
		}
	}
	writeMembers("Source addresses", "srcaddr", addresses)
	writeMembers("Destination addresses", "dstaddr", addresses)
	writeMembers("Services", "service", services)

	if v := str(policy, "comments"); v != "" {
		fmt.Fprintf(&b, "Comments: %s\n", v)
	}
	return b.String()
}

// objectIndex maps object name to the value of detailKey for resolution in
// policy detail rendering. A nil input yields an empty index.
func objectIndex(data map[string]any, detailKey string) map[string]string {
	index := make(map[string]string)
	if data == nil {
		return index
	}
	for _, row := range results(data) {
		index[str(row, "name")] = str(row, detailKey)
	}
	return index
}

// AddressObjects renders an address object list.
func AddressObjects(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Address Objects\n\nNo address objects found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Address Objects (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s", str(row, "name"))
		if v := str(row, "subnet"); v != "" {
			fmt.Fprintf(&b, ": %s", v)
		}
		if v := str(row, "type"); v != "" {
			fmt.Fprintf(&b, " (%s)", v)
		}
		if v := str(row, "comment"); v != "" {
			fmt.Fprintf(&b, " - %s", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ServiceObjects renders a service object list.
func ServiceObjects(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Service Objects\n\nNo service objects found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Service Objects (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s", str(row, "name"))
		if v := str(row, "protocol"); v != "" {
			fmt.Fprintf(&b, " [%s]", v)
		}
		if v := str(row, "tcp-portrange"); v != "" {
			fmt.Fprintf(&b, " tcp: %s", v)
		}
		if v := str(row, "udp-portrange"); v != "" {
			fmt.Fprintf(&b, " udp: %s", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// StaticRoutes renders the configured static route list.
func StaticRoutes(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Static Routes\n\nNo static routes found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Static Routes (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s via %s", str(row, "dst"), str(row, "gateway"))
		if v := str(row, "device"); v != "" {
			fmt.Fprintf(&b, " dev %s", v)
		}
		if v := str(row, "distance"); v != "" {
			fmt.Fprintf(&b, " distance %s", v)
		}
		if v := str(row, "status"); v != "" {
			fmt.Fprintf(&b, " (%s)", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RoutingTable renders the live routing table monitor output.
func RoutingTable(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Routing Table\n\nNo routes found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Routing Table (%d entries)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s", str(row, "ip_mask"))
		if v := str(row, "gateway"); v != "" && v != "0.0.0.0" {
			fmt.Fprintf(&b, " via %s", v)
		}
		if v := str(row, "interface"); v != "" {
			fmt.Fprintf(&b, " dev %s", v)
		}
		if v := str(row, "type"); v != "" {
			fmt.Fprintf(&b, " [%s]", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Interfaces renders the configured interface list.
func Interfaces(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Network Interfaces\n\nNo interfaces found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Network Interfaces (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s: %s", str(row, "name"), str(row, "status"))
		if v := str(row, "ip"); v != "" {
			fmt.Fprintf(&b, " ip %s", v)
		}
		if v := str(row, "type"); v != "" {
			fmt.Fprintf(&b, " (%s)", v)
		}
		if v := str(row, "alias"); v != "" {
			fmt.Fprintf(&b, " alias %s", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// InterfaceStatus renders the monitor output for a single interface.
func InterfaceStatus(name string, data map[string]any) string {
	return JSONResponse(data, fmt.Sprintf("Interface Status: %s", name))
}

// VirtualIPs renders the virtual IP list.
func VirtualIPs(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Virtual IPs\n\nNo virtual IPs found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Virtual IPs (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s: %s -> %s", str(row, "name"), str(row, "extip"), mappedIP(row))
		if v := str(row, "extintf"); v != "" {
			fmt.Fprintf(&b, " on %s", v)
		}
		if str(row, "portforward") == "enable" {
			fmt.Fprintf(&b, " (%s %s -> %s)", str(row, "protocol"), str(row, "extport"), str(row, "mappedport"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// mappedIP handles both the scalar and the range-list form of mappedip.
func mappedIP(row map[string]any) string {
	if v := str(row, "mappedip"); v != "" {
		return v
	}
	items, ok := row["mappedip"].([]any)
	if !ok {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			parts = append(parts, str(m, "range"))
		}
	}
	return strings.Join(parts, ", ")
}

// VirtualIPDetail renders a single virtual IP.
func VirtualIPDetail(name string, data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return fmt.Sprintf("Virtual IP Detail\n\nNo virtual IP named '%s' found", name)
	}
	return JSONResponse(map[string]any{"results": rows[0]}, fmt.Sprintf("Virtual IP Detail: %s", name))
}

// DHCPLeases renders the DHCP lease monitor output.
func DHCPLeases(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "DHCP Leases\n\nNo DHCP leases found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DHCP Leases (%d)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s", str(row, "ip"))
		if v := str(row, "mac"); v != "" {
			fmt.Fprintf(&b, " [%s]", v)
		}
		if v := str(row, "hostname"); v != "" {
			fmt.Fprintf(&b, " %s", v)
		}
		if v := str(row, "status"); v != "" {
			fmt.Fprintf(&b, " (%s)", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ARPTable renders the ARP table monitor output.
func ARPTable(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "ARP Table\n\nNo ARP entries found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ARP Table (%d entries)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s [%s]", str(row, "ip"), str(row, "mac"))
		if v := str(row, "interface"); v != "" {
			fmt.Fprintf(&b, " on %s", v)
		}
		if v := str(row, "age"); v != "" {
			fmt.Fprintf(&b, " age %s", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SessionTable renders the firewall session monitor output.
func SessionTable(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Session Table\n\nNo active sessions found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Session Table (%d sessions)\n\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(&b, "  - %s %s:%s -> %s:%s",
			str(row, "proto"),
			str(row, "source"), str(row, "source_port"),
			str(row, "destination"), str(row, "destination_port"))
		if v := str(row, "application"); v != "" {
			fmt.Fprintf(&b, " (%s)", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DeviceInventory renders the detected-device monitor output.
func DeviceInventory(data map[string]any) string {
	rows := results(data)
	if len(rows) == 0 {
		return "Device Inventory\n\nNo devices detected"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Device Inventory (%d devices)\n\n", len(rows))
	for _, row := range rows {
		name := str(row, "hostname")
		if name == "" {
			name = str(row, "ipv4_address")
		}
		fmt.Fprintf(&b, "  - %s", name)
		if v := str(row, "ipv4_address"); v != "" {
			fmt.Fprintf(&b, " ip %s", v)
		}
		if v := str(row, "mac"); v != "" {
			fmt.Fprintf(&b, " [%s]", v)
		}
		if v := str(row, "os_name"); v != "" {
			fmt.Fprintf(&b, " os %s", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// OperationResult renders the outcome of a mutating operation.
func OperationResult(operation, deviceID string, success bool, details, errMsg string) string {
	if success {
		if details != "" {
			return fmt.Sprintf("Success: %s on device %s\n%s", operation, deviceID, details)
		}
		return fmt.Sprintf("Success: %s on device %s", operation, deviceID)
	}
	return fmt.Sprintf("Failed: %s on device %s\n%s", operation, deviceID, errMsg)
}

// ConnectionTest renders a connectivity probe outcome.
func ConnectionTest(deviceID string, success bool, errMsg string) string {
	if success {
		return fmt.Sprintf("Connection to device %s successful", deviceID)
	}
	if errMsg != "" {
		return fmt.Sprintf("Connection to device %s failed: %s", deviceID, errMsg)
	}
	return fmt.Sprintf("Connection to device %s failed", deviceID)
}

// ErrorResponse renders a failed tool invocation.
func ErrorResponse(operation, deviceID, message string) string {
	return fmt.Sprintf("Error: failed to %s on device %s\n%s", operation, deviceID, message)
}

// HealthStatus renders the health_check tool output.
func HealthStatus(status string, details map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Health Status: %s\n\n", status)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", titleCase(k), details[k])
	}
	return b.String()
}

// JSONResponse is the fallback renderer: a title followed by indented JSON.
func JSONResponse(data any, title string) string {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%s\n\n%v", title, data)
	}
	return fmt.Sprintf("%s\n\n%s", title, encoded)
}

// titleCase turns snake_case keys into display labels.
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
