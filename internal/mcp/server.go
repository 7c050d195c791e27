package mcp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/martinsuchenak/fortimcp/internal/audit"
	"github.com/martinsuchenak/fortimcp/internal/config"
	"github.com/martinsuchenak/fortimcp/internal/format"
	"github.com/martinsuchenak/fortimcp/internal/fortigate"
	"github.com/martinsuchenak/fortimcp/internal/log"
	"github.com/martinsuchenak/fortimcp/internal/worker"
	"github.com/paularlott/mcp"
)

// Server wraps the MCP server with the FortiGate device registry
type Server struct {
	mcpServer   *mcp.Server
	registry    *fortigate.Registry
	monitor     *worker.Monitor
	auditStore  *audit.Store
	bearerToken string
	listenAddr  string
}

// NewServer creates a new MCP server for FortiGate management. The monitor
// and audit store are optional and may be nil.
func NewServer(registry *fortigate.Registry, monitor *worker.Monitor, auditStore *audit.Store, bearerToken, listenAddr string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer(config.ServerName, config.ServerVersion),
		registry:    registry,
		monitor:     monitor,
		auditStore:  auditStore,
		bearerToken: bearerToken,
		listenAddr:  listenAddr,
	}
	s.registerTools()
	return s
}

// registerTools registers all FortiGate management tools
func (s *Server) registerTools() {
	// Device tools

	// list_devices - List registered devices
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_devices", "List all registered FortiGate devices"),
		s.handleListDevices,
	)

	// get_device_status - System status of one device
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_device_status", "Get system status information for a FortiGate device (version, hostname, serial)",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDeviceStatus,
	)

	// test_device_connection - Reachability probe for one device
	s.mcpServer.RegisterTool(
		mcp.NewTool("test_device_connection", "Test connectivity and authentication against a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
		),
		s.handleTestConnection,
	)

	// discover_vdoms - Enumerate virtual domains
	s.mcpServer.RegisterTool(
		mcp.NewTool("discover_vdoms", "Discover the virtual domains configured on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
		),
		s.handleDiscoverVDOMs,
	)

	// add_device - Register a device at runtime
	s.mcpServer.RegisterTool(
		mcp.NewTool("add_device", "Register a new FortiGate device with the gateway",
			mcp.String("device_id", "Identifier for the new device", mcp.Required()),
			mcp.String("host", "Hostname or IP address of the FortiGate", mcp.Required()),
			mcp.Number("port", "HTTPS port (default 443)"),
			mcp.String("api_token", "REST API token (preferred over username/password)"),
			mcp.String("username", "Username for basic authentication"),
			mcp.String("password", "Password for basic authentication"),
			mcp.String("vdom", "Default virtual domain (default root)"),
			mcp.Boolean("verify_ssl", "Verify the device TLS certificate (default false)"),
			mcp.Number("timeout", "Request timeout in seconds (default 30)"),
		),
		s.handleAddDevice,
	)

	// remove_device - Unregister a device
	s.mcpServer.RegisterTool(
		mcp.NewTool("remove_device", "Remove a registered FortiGate device from the gateway",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
		),
		s.handleRemoveDevice,
	)

	// Firewall policy tools

	// list_firewall_policies - List policies
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_firewall_policies", "List firewall policies on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListPolicies,
	)

	// get_firewall_policy_detail - Single policy with object resolution
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_firewall_policy_detail", "Get detailed information about a specific firewall policy, resolving referenced address and service objects",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("policy_id", "Numeric policy identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handlePolicyDetail,
	)

	// create_firewall_policy - Create a policy from a JSON body
	s.mcpServer.RegisterTool(
		mcp.NewTool("create_firewall_policy", "Create a new firewall policy. policy_data is passed to the FortiGate API verbatim.",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.Object("policy_data", "Policy configuration (name, srcintf, dstintf, srcaddr, dstaddr, service, action, schedule)", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleCreatePolicy,
	)

	// update_firewall_policy - Update an existing policy
	s.mcpServer.RegisterTool(
		mcp.NewTool("update_firewall_policy", "Update an existing firewall policy. policy_data holds only the fields to change.",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("policy_id", "Numeric policy identifier", mcp.Required()),
			mcp.Object("policy_data", "Policy fields to update", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleUpdatePolicy,
	)

	// delete_firewall_policy - Delete a policy
	s.mcpServer.RegisterTool(
		mcp.NewTool("delete_firewall_policy", "Delete a firewall policy from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("policy_id", "Numeric policy identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDeletePolicy,
	)

	// Network object tools

	// list_address_objects - List address objects
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_address_objects", "List firewall address objects on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListAddresses,
	)

	// create_address_object - Create an address object
	s.mcpServer.RegisterTool(
		mcp.NewTool("create_address_object", "Create a firewall address object",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Address object name", mcp.Required()),
			mcp.String("subnet", "Subnet in CIDR or 'address netmask' notation", mcp.Required()),
			mcp.String("type", "Address type (default ipmask)"),
			mcp.String("comment", "Optional comment"),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleCreateAddress,
	)

	// list_service_objects - List service objects
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_service_objects", "List custom firewall service objects on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListServices,
	)

	// create_service_object - Create a service object
	s.mcpServer.RegisterTool(
		mcp.NewTool("create_service_object", "Create a custom firewall service object",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Service object name", mcp.Required()),
			mcp.String("protocol", "Protocol (default TCP/UDP/SCTP)"),
			mcp.String("tcp_portrange", "TCP port range (e.g. 8080 or 8080-8090)"),
			mcp.String("udp_portrange", "UDP port range"),
			mcp.String("comment", "Optional comment"),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleCreateService,
	)

	// Routing tools

	// list_static_routes - List static routes
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_static_routes", "List configured static routes on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListRoutes,
	)

	// get_static_route_detail - Single route
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_static_route_detail", "Get detailed information about a specific static route",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("route_id", "Sequence number of the route", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleRouteDetail,
	)

	// create_static_route - Create a static route
	s.mcpServer.RegisterTool(
		mcp.NewTool("create_static_route", "Create a new static route",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("dst", "Destination network (e.g. 10.0.0.0/24 or 0.0.0.0/0)", mcp.Required()),
			mcp.String("gateway", "Gateway IP address", mcp.Required()),
			mcp.String("device", "Outgoing interface name", mcp.Required()),
			mcp.Number("distance", "Administrative distance (default 10)"),
			mcp.String("comment", "Optional comment"),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleCreateRoute,
	)

	// update_static_route - Update an existing route
	s.mcpServer.RegisterTool(
		mcp.NewTool("update_static_route", "Update an existing static route. route_data holds only the fields to change.",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("route_id", "Sequence number of the route", mcp.Required()),
			mcp.Object("route_data", "Route fields to update", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleUpdateRoute,
	)

	// delete_static_route - Delete a route
	s.mcpServer.RegisterTool(
		mcp.NewTool("delete_static_route", "Delete a static route from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("route_id", "Sequence number of the route", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDeleteRoute,
	)

	// get_routing_table - Active routing table
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_routing_table", "Get the active IPv4 routing table from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleRoutingTable,
	)

	// list_interfaces - Interface configuration
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_interfaces", "List network interfaces configured on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListInterfaces,
	)

	// get_interface_status - Runtime status of one interface
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_interface_status", "Get runtime status for a specific network interface",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("interface_name", "Interface name (e.g. port1, wan1)", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleInterfaceStatus,
	)

	// Virtual IP tools

	// list_virtual_ips - List virtual IPs
	s.mcpServer.RegisterTool(
		mcp.NewTool("list_virtual_ips", "List virtual IP (DNAT) objects on a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleListVIPs,
	)

	// get_virtual_ip_detail - Single virtual IP
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_virtual_ip_detail", "Get detailed information about a specific virtual IP object",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Virtual IP object name", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleVIPDetail,
	)

	// create_virtual_ip - Create a virtual IP
	s.mcpServer.RegisterTool(
		mcp.NewTool("create_virtual_ip", "Create a virtual IP (DNAT) object, optionally with port forwarding",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Virtual IP object name", mcp.Required()),
			mcp.String("external_ip", "External IP address", mcp.Required()),
			mcp.String("mapped_ip", "Internal mapped IP address", mcp.Required()),
			mcp.String("external_interface", "External interface (default any)"),
			mcp.Boolean("port_forwarding", "Enable port forwarding"),
			mcp.String("external_port", "External port or port range (when port forwarding)"),
			mcp.String("mapped_port", "Mapped port or port range (when port forwarding)"),
			mcp.String("protocol", "Port forwarding protocol (default tcp)"),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleCreateVIP,
	)

	// update_virtual_ip - Update an existing virtual IP
	s.mcpServer.RegisterTool(
		mcp.NewTool("update_virtual_ip", "Update an existing virtual IP object. vip_data holds only the fields to change.",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Virtual IP object name", mcp.Required()),
			mcp.Object("vip_data", "Virtual IP fields to update", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleUpdateVIP,
	)

	// delete_virtual_ip - Delete a virtual IP
	s.mcpServer.RegisterTool(
		mcp.NewTool("delete_virtual_ip", "Delete a virtual IP object from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("name", "Virtual IP object name", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDeleteVIP,
	)

	// Network visibility tools

	// get_dhcp_leases - DHCP lease table
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_dhcp_leases", "Get active DHCP leases from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDHCPLeases,
	)

	// get_arp_table - ARP table
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_arp_table", "Get the ARP table from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleARPTable,
	)

	// get_session_table - Active sessions
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_session_table", "Get active firewall sessions from a FortiGate device",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.Number("count", "Maximum number of sessions to return (default 50)"),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleSessionTable,
	)

	// get_device_inventory - Detected hosts
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_device_inventory", "Get the detected device inventory (user devices seen by the FortiGate)",
			mcp.String("device_id", "Registered device identifier", mcp.Required()),
			mcp.String("vdom", "Virtual domain (defaults to the device's configured VDOM)"),
		),
		s.handleDeviceInventory,
	)

	// System tools

	// health_check - Gateway health
	s.mcpServer.RegisterTool(
		mcp.NewTool("health_check", "Check gateway health and device reachability"),
		s.handleHealthCheck,
	)

	// get_server_info - Gateway metadata
	s.mcpServer.RegisterTool(
		mcp.NewTool("get_server_info", "Get gateway name, version and capability information"),
		s.handleServerInfo,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	// Check bearer token if configured
	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
		log.Debug("MCP request authenticated successfully")
	}

	s.mcpServer.HandleRequest(w, r)
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", config.ServerVersion)
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}

// scopeArg reads the optional vdom parameter. An absent or empty value means
// the device's configured default.
func scopeArg(req *mcp.ToolRequest) fortigate.Scope {
	return fortigate.ScopeVDOM(req.StringOr("vdom", ""))
}

// friendlyMessage translates client errors into the messages surfaced to the
// MCP caller. Device API status codes get a remediation hint; everything else
// keeps its own wording.
func friendlyMessage(err error) string {
	var remote *fortigate.RemoteError
	if errors.As(err, &remote) {
		switch {
		case remote.StatusCode == http.StatusUnauthorized:
			return "Authentication failed. Check the device credentials."
		case remote.StatusCode == http.StatusForbidden:
			return "Permission denied. The configured credentials lack privileges for this operation."
		case remote.StatusCode == http.StatusNotFound:
			return "Resource not found. The requested object may not exist on the device."
		case remote.StatusCode >= 500:
			return "FortiGate internal error. Check the device status and logs."
		}
	}
	return err.Error()
}

// record logs the outcome of a tool call and appends it to the audit trail.
func (s *Server) record(tool, deviceID string, start time.Time, err error) {
	duration := time.Since(start).Milliseconds()
	if err != nil {
		log.Error("Tool call failed", "tool", tool, "device_id", deviceID, "duration_ms", duration, "error", err)
	} else {
		log.Info("Tool call completed", "tool", tool, "device_id", deviceID, "duration_ms", duration)
	}
	if s.auditStore == nil {
		return
	}
	entry := audit.Entry{
		Tool:       tool,
		DeviceID:   deviceID,
		Success:    err == nil,
		DurationMs: duration,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if aerr := s.auditStore.Record(entry); aerr != nil {
		log.Warn("Audit record failed", "tool", tool, "error", aerr)
	}
}

// fail records the failed call and renders it as an error response for the
// caller. Operation failures are content, not protocol errors.
func (s *Server) fail(tool, deviceID string, start time.Time, err error) (*mcp.ToolResponse, error) {
	s.record(tool, deviceID, start, err)
	return mcp.NewToolResponseText(format.ErrorResponse(tool, deviceID, friendlyMessage(err))), nil
}

// deviceArg reads the required device_id parameter.
func deviceArg(req *mcp.ToolRequest) (string, error) {
	deviceID, err := req.String("device_id")
	if err != nil {
		return "", mcp.NewToolErrorInvalidParams("device_id is required: " + err.Error())
	}
	return deviceID, nil
}

// Device tool handlers

func (s *Server) handleListDevices(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	start := time.Now()
	ids := s.registry.List()
	s.record("list_devices", "", start, nil)
	return mcp.NewToolResponseText(format.Devices(ids)), nil
}

func (s *Server) handleDeviceStatus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_device_status", deviceID, start, err)
	}
	data, err := client.SystemStatus(ctx)
	if err != nil {
		return s.fail("get_device_status", deviceID, start, err)
	}
	s.record("get_device_status", deviceID, start, nil)
	return mcp.NewToolResponseText(format.DeviceStatus(deviceID, data)), nil
}

func (s *Server) handleTestConnection(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("test_device_connection", deviceID, start, err)
	}
	ok := client.TestConnection(ctx)
	s.record("test_device_connection", deviceID, start, nil)
	return mcp.NewToolResponseText(format.ConnectionTest(deviceID, ok, "")), nil
}

func (s *Server) handleDiscoverVDOMs(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("discover_vdoms", deviceID, start, err)
	}
	data, err := client.VDOMs(ctx)
	if err != nil {
		return s.fail("discover_vdoms", deviceID, start, err)
	}
	s.record("discover_vdoms", deviceID, start, nil)
	return mcp.NewToolResponseText(format.VDOMs(data)), nil
}

func (s *Server) handleAddDevice(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	host, err := req.String("host")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("host is required: " + err.Error())
	}

	cfg := fortigate.DeviceConfig{
		Host:      host,
		Port:      req.IntOr("port", 0),
		Username:  req.StringOr("username", ""),
		Password:  req.StringOr("password", ""),
		APIToken:  req.StringOr("api_token", ""),
		VDOM:      req.StringOr("vdom", ""),
		VerifySSL: req.BoolOr("verify_ssl", false),
		Timeout:   req.IntOr("timeout", 0),
	}

	start := time.Now()
	if _, err := s.registry.Add(deviceID, cfg); err != nil {
		return s.fail("add_device", deviceID, start, err)
	}
	s.record("add_device", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("add_device", deviceID, true, "Device registered", "")), nil
}

func (s *Server) handleRemoveDevice(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.registry.Remove(deviceID); err != nil {
		return s.fail("remove_device", deviceID, start, err)
	}
	s.record("remove_device", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("remove_device", deviceID, true, "Device removed", "")), nil
}

// Firewall policy tool handlers

func (s *Server) handleListPolicies(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_firewall_policies", deviceID, start, err)
	}
	data, err := client.FirewallPolicies(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_firewall_policies", deviceID, start, err)
	}
	s.record("list_firewall_policies", deviceID, start, nil)
	return mcp.NewToolResponseText(format.FirewallPolicies(data)), nil
}

func (s *Server) handlePolicyDetail(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	policyID, err := req.String("policy_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("policy_id is required: " + err.Error())
	}
	scope := scopeArg(req)

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_firewall_policy_detail", deviceID, start, err)
	}
	data, err := client.FirewallPolicyDetail(ctx, policyID, scope)
	if err != nil {
		return s.fail("get_firewall_policy_detail", deviceID, start, err)
	}

	// Object lookups enrich the rendering; their failure is not fatal.
	addresses, err := client.AddressObjects(ctx, scope)
	if err != nil {
		log.Debug("Address object lookup failed for policy detail", "device_id", deviceID, "error", err)
		addresses = nil
	}
	services, err := client.ServiceObjects(ctx, scope)
	if err != nil {
		log.Debug("Service object lookup failed for policy detail", "device_id", deviceID, "error", err)
		services = nil
	}

	s.record("get_firewall_policy_detail", deviceID, start, nil)
	return mcp.NewToolResponseText(format.FirewallPolicyDetail(data, deviceID, addresses, services)), nil
}

func (s *Server) handleCreatePolicy(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	policy, err := req.Object("policy_data")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("policy_data is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("create_firewall_policy", deviceID, start, err)
	}
	if _, err := client.CreateFirewallPolicy(ctx, policy, scopeArg(req)); err != nil {
		return s.fail("create_firewall_policy", deviceID, start, err)
	}
	s.record("create_firewall_policy", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("create_firewall_policy", deviceID, true, "Firewall policy created", "")), nil
}

func (s *Server) handleUpdatePolicy(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	policyID, err := req.String("policy_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("policy_id is required: " + err.Error())
	}
	policy, err := req.Object("policy_data")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("policy_data is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("update_firewall_policy", deviceID, start, err)
	}
	if _, err := client.UpdateFirewallPolicy(ctx, policyID, policy, scopeArg(req)); err != nil {
		return s.fail("update_firewall_policy", deviceID, start, err)
	}
	s.record("update_firewall_policy", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("update_firewall_policy", deviceID, true, "Firewall policy "+policyID+" updated", "")), nil
}

func (s *Server) handleDeletePolicy(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	policyID, err := req.String("policy_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("policy_id is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("delete_firewall_policy", deviceID, start, err)
	}
	if _, err := client.DeleteFirewallPolicy(ctx, policyID, scopeArg(req)); err != nil {
		return s.fail("delete_firewall_policy", deviceID, start, err)
	}
	s.record("delete_firewall_policy", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("delete_firewall_policy", deviceID, true, "Firewall policy "+policyID+" deleted", "")), nil
}

// Network object tool handlers

func (s *Server) handleListAddresses(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_address_objects", deviceID, start, err)
	}
	data, err := client.AddressObjects(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_address_objects", deviceID, start, err)
	}
	s.record("list_address_objects", deviceID, start, nil)
	return mcp.NewToolResponseText(format.AddressObjects(data)), nil
}

func (s *Server) handleCreateAddress(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	subnet, err := req.String("subnet")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("subnet is required: " + err.Error())
	}

	address := map[string]any{
		"name":   name,
		"subnet": subnet,
		"type":   req.StringOr("type", "ipmask"),
	}
	if comment := req.StringOr("comment", ""); comment != "" {
		address["comment"] = comment
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("create_address_object", deviceID, start, err)
	}
	if _, err := client.CreateAddressObject(ctx, address, scopeArg(req)); err != nil {
		return s.fail("create_address_object", deviceID, start, err)
	}
	s.record("create_address_object", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("create_address_object", deviceID, true, "Address object '"+name+"' created", "")), nil
}

func (s *Server) handleListServices(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_service_objects", deviceID, start, err)
	}
	data, err := client.ServiceObjects(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_service_objects", deviceID, start, err)
	}
	s.record("list_service_objects", deviceID, start, nil)
	return mcp.NewToolResponseText(format.ServiceObjects(data)), nil
}

func (s *Server) handleCreateService(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	service := map[string]any{
		"name":     name,
		"protocol": req.StringOr("protocol", "TCP/UDP/SCTP"),
	}
	if tcp := req.StringOr("tcp_portrange", ""); tcp != "" {
		service["tcp-portrange"] = tcp
	}
	if udp := req.StringOr("udp_portrange", ""); udp != "" {
		service["udp-portrange"] = udp
	}
	if comment := req.StringOr("comment", ""); comment != "" {
		service["comment"] = comment
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("create_service_object", deviceID, start, err)
	}
	if _, err := client.CreateServiceObject(ctx, service, scopeArg(req)); err != nil {
		return s.fail("create_service_object", deviceID, start, err)
	}
	s.record("create_service_object", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("create_service_object", deviceID, true, "Service object '"+name+"' created", "")), nil
}

// Routing tool handlers

func (s *Server) handleListRoutes(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_static_routes", deviceID, start, err)
	}
	data, err := client.StaticRoutes(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_static_routes", deviceID, start, err)
	}
	s.record("list_static_routes", deviceID, start, nil)
	return mcp.NewToolResponseText(format.StaticRoutes(data)), nil
}

func (s *Server) handleRouteDetail(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	routeID, err := req.String("route_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("route_id is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_static_route_detail", deviceID, start, err)
	}
	data, err := client.StaticRouteDetail(ctx, routeID, scopeArg(req))
	if err != nil {
		return s.fail("get_static_route_detail", deviceID, start, err)
	}
	s.record("get_static_route_detail", deviceID, start, nil)
	return mcp.NewToolResponseText(format.JSONResponse(data, "Static Route "+routeID)), nil
}

func (s *Server) handleCreateRoute(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	dst, err := req.String("dst")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("dst is required: " + err.Error())
	}
	gateway, err := req.String("gateway")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("gateway is required: " + err.Error())
	}
	device, err := req.String("device")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("device is required: " + err.Error())
	}

	route := map[string]any{
		"dst":      dst,
		"gateway":  gateway,
		"device":   device,
		"distance": req.IntOr("distance", 10),
	}
	if comment := req.StringOr("comment", ""); comment != "" {
		route["comment"] = comment
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("create_static_route", deviceID, start, err)
	}
	if _, err := client.CreateStaticRoute(ctx, route, scopeArg(req)); err != nil {
		return s.fail("create_static_route", deviceID, start, err)
	}
	s.record("create_static_route", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("create_static_route", deviceID, true, "Static route to "+dst+" created", "")), nil
}

func (s *Server) handleUpdateRoute(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	routeID, err := req.String("route_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("route_id is required: " + err.Error())
	}
	route, err := req.Object("route_data")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("route_data is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("update_static_route", deviceID, start, err)
	}
	if _, err := client.UpdateStaticRoute(ctx, routeID, route, scopeArg(req)); err != nil {
		return s.fail("update_static_route", deviceID, start, err)
	}
	s.record("update_static_route", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("update_static_route", deviceID, true, "Static route "+routeID+" updated", "")), nil
}

func (s *Server) handleDeleteRoute(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	routeID, err := req.String("route_id")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("route_id is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("delete_static_route", deviceID, start, err)
	}
	if _, err := client.DeleteStaticRoute(ctx, routeID, scopeArg(req)); err != nil {
		return s.fail("delete_static_route", deviceID, start, err)
	}
	s.record("delete_static_route", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("delete_static_route", deviceID, true, "Static route "+routeID+" deleted", "")), nil
}

func (s *Server) handleRoutingTable(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_routing_table", deviceID, start, err)
	}
	data, err := client.RoutingTable(ctx, scopeArg(req))
	if err != nil {
		return s.fail("get_routing_table", deviceID, start, err)
	}
	s.record("get_routing_table", deviceID, start, nil)
	return mcp.NewToolResponseText(format.RoutingTable(data)), nil
}

func (s *Server) handleListInterfaces(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_interfaces", deviceID, start, err)
	}
	data, err := client.Interfaces(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_interfaces", deviceID, start, err)
	}
	s.record("list_interfaces", deviceID, start, nil)
	return mcp.NewToolResponseText(format.Interfaces(data)), nil
}

func (s *Server) handleInterfaceStatus(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("interface_name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("interface_name is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_interface_status", deviceID, start, err)
	}
	data, err := client.InterfaceStatus(ctx, name, scopeArg(req))
	if err != nil {
		return s.fail("get_interface_status", deviceID, start, err)
	}
	s.record("get_interface_status", deviceID, start, nil)
	return mcp.NewToolResponseText(format.InterfaceStatus(name, data)), nil
}

// Virtual IP tool handlers

func (s *Server) handleListVIPs(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("list_virtual_ips", deviceID, start, err)
	}
	data, err := client.VirtualIPs(ctx, scopeArg(req))
	if err != nil {
		return s.fail("list_virtual_ips", deviceID, start, err)
	}
	s.record("list_virtual_ips", deviceID, start, nil)
	return mcp.NewToolResponseText(format.VirtualIPs(data)), nil
}

func (s *Server) handleVIPDetail(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_virtual_ip_detail", deviceID, start, err)
	}
	data, err := client.VirtualIPDetail(ctx, name, scopeArg(req))
	if err != nil {
		return s.fail("get_virtual_ip_detail", deviceID, start, err)
	}
	s.record("get_virtual_ip_detail", deviceID, start, nil)
	return mcp.NewToolResponseText(format.VirtualIPDetail(name, data)), nil
}

func (s *Server) handleCreateVIP(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	externalIP, err := req.String("external_ip")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("external_ip is required: " + err.Error())
	}
	mappedIP, err := req.String("mapped_ip")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("mapped_ip is required: " + err.Error())
	}

	vip := map[string]any{
		"name":     name,
		"extip":    externalIP,
		"mappedip": []any{map[string]any{"range": mappedIP}},
		"extintf":  req.StringOr("external_interface", "any"),
	}
	if req.BoolOr("port_forwarding", false) {
		vip["portforward"] = "enable"
		vip["protocol"] = req.StringOr("protocol", "tcp")
		if extPort := req.StringOr("external_port", ""); extPort != "" {
			vip["extport"] = extPort
		}
		if mappedPort := req.StringOr("mapped_port", ""); mappedPort != "" {
			vip["mappedport"] = mappedPort
		}
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("create_virtual_ip", deviceID, start, err)
	}
	if _, err := client.CreateVirtualIP(ctx, vip, scopeArg(req)); err != nil {
		return s.fail("create_virtual_ip", deviceID, start, err)
	}
	s.record("create_virtual_ip", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("create_virtual_ip", deviceID, true, "Virtual IP '"+name+"' created", "")), nil
}

func (s *Server) handleUpdateVIP(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	vip, err := req.Object("vip_data")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("vip_data is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("update_virtual_ip", deviceID, start, err)
	}
	if _, err := client.UpdateVirtualIP(ctx, name, vip, scopeArg(req)); err != nil {
		return s.fail("update_virtual_ip", deviceID, start, err)
	}
	s.record("update_virtual_ip", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("update_virtual_ip", deviceID, true, "Virtual IP '"+name+"' updated", "")), nil
}

func (s *Server) handleDeleteVIP(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("delete_virtual_ip", deviceID, start, err)
	}
	if _, err := client.DeleteVirtualIP(ctx, name, scopeArg(req)); err != nil {
		return s.fail("delete_virtual_ip", deviceID, start, err)
	}
	s.record("delete_virtual_ip", deviceID, start, nil)
	return mcp.NewToolResponseText(format.OperationResult("delete_virtual_ip", deviceID, true, "Virtual IP '"+name+"' deleted", "")), nil
}

// Network visibility tool handlers

func (s *Server) handleDHCPLeases(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_dhcp_leases", deviceID, start, err)
	}
	data, err := client.DHCPLeases(ctx, scopeArg(req))
	if err != nil {
		return s.fail("get_dhcp_leases", deviceID, start, err)
	}
	s.record("get_dhcp_leases", deviceID, start, nil)
	return mcp.NewToolResponseText(format.DHCPLeases(data)), nil
}

func (s *Server) handleARPTable(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_arp_table", deviceID, start, err)
	}
	data, err := client.ARPTable(ctx, scopeArg(req))
	if err != nil {
		return s.fail("get_arp_table", deviceID, start, err)
	}
	s.record("get_arp_table", deviceID, start, nil)
	return mcp.NewToolResponseText(format.ARPTable(data)), nil
}

func (s *Server) handleSessionTable(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	count := req.IntOr("count", 50)

	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_session_table", deviceID, start, err)
	}
	data, err := client.SessionTable(ctx, count, scopeArg(req))
	if err != nil {
		return s.fail("get_session_table", deviceID, start, err)
	}
	s.record("get_session_table", deviceID, start, nil)
	return mcp.NewToolResponseText(format.SessionTable(data)), nil
}

func (s *Server) handleDeviceInventory(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	deviceID, err := deviceArg(req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	client, err := s.registry.Get(deviceID)
	if err != nil {
		return s.fail("get_device_inventory", deviceID, start, err)
	}
	data, err := client.DeviceInventory(ctx, scopeArg(req))
	if err != nil {
		return s.fail("get_device_inventory", deviceID, start, err)
	}
	s.record("get_device_inventory", deviceID, start, nil)
	return mcp.NewToolResponseText(format.DeviceInventory(data)), nil
}

// System tool handlers

func (s *Server) handleHealthCheck(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	status := worker.StatusUnknown
	var results map[string]bool
	var lastRun time.Time

	if s.monitor != nil {
		status, results, lastRun = s.monitor.Status()
		if lastRun.IsZero() {
			// No sweep has happened yet, probe now.
			results = s.monitor.RunProbe(ctx)
			status, _, lastRun = s.monitor.Status()
		}
	}

	details := map[string]any{
		"registered_devices": s.registry.Len(),
		"server_version":     config.ServerVersion,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	}
	if !lastRun.IsZero() {
		details["last_probe"] = lastRun.UTC().Format(time.RFC3339)
	}
	if len(results) > 0 {
		reachable := 0
		var unreachable []string
		for id, ok := range results {
			if ok {
				reachable++
			} else {
				unreachable = append(unreachable, id)
			}
		}
		details["devices_reachable"] = reachable
		if len(unreachable) > 0 {
			details["devices_unreachable"] = strings.Join(unreachable, ", ")
		}
	}

	return mcp.NewToolResponseText(format.HealthStatus(status, details)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	info := map[string]any{
		"name":               config.ServerName,
		"version":            config.ServerVersion,
		"listen_addr":        s.listenAddr,
		"registered_devices": s.registry.Len(),
		"tool_count":         len(s.mcpServer.ListTools()),
		"capabilities": []any{
			"device management",
			"firewall policies",
			"network objects",
			"routing",
			"virtual ips",
			"network visibility",
		},
	}
	return mcp.NewToolResponseText(format.JSONResponse(info, "Server Information")), nil
}
