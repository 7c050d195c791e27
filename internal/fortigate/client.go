// Package fortigate implements the FortiGate REST API client and the device
// registry that owns one client per managed appliance. Every operation is a
// single synchronous request against https://<host>:<port>/api/v2/...; there
// is no retry, caching, or cross-call state.
package fortigate

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Defaults applied to a DeviceConfig before validation.
const (
	DefaultPort    = 443
	DefaultVDOM    = "root"
	DefaultTimeout = 30
)

// AuthMethod is the authentication mode resolved at client construction.
type AuthMethod string

const (
	AuthToken AuthMethod = "token"
	AuthBasic AuthMethod = "basic"
)

// DeviceConfig holds the connection settings for one FortiGate appliance.
// It is immutable once a Client has been constructed from it.
type DeviceConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	APIToken  string `json:"api_token,omitempty"`
	VDOM      string `json:"vdom,omitempty"`
	VerifySSL bool   `json:"verify_ssl"`
	Timeout   int    `json:"timeout,omitempty"`
}

// ApplyDefaults fills in zero-valued optional fields.
func (c *DeviceConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.VDOM == "" {
		c.VDOM = DefaultVDOM
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the configuration for the named device. Exactly one
// authentication mode must be usable: a non-empty api_token, or both
// username and password.
func (c *DeviceConfig) Validate(deviceID string) error {
	if c.Host == "" {
		return &ConfigError{DeviceID: deviceID, Reason: "must have a 'host' field"}
	}
	if c.Port <= 0 {
		return &ConfigError{DeviceID: deviceID, Reason: fmt.Sprintf("port must be positive, got %d", c.Port)}
	}
	if c.Timeout <= 0 {
		return &ConfigError{DeviceID: deviceID, Reason: fmt.Sprintf("timeout must be positive, got %d", c.Timeout)}
	}

	hasToken := c.APIToken != ""
	hasCredentials := c.Username != "" && c.Password != ""
	if !hasToken && !hasCredentials {
		return &ConfigError{
			DeviceID: deviceID,
			Reason:   "must have either 'api_token' or both 'username' and 'password'",
		}
	}

	return nil
}

// Scope selects the virtual-domain scoping of a request. The zero value
// means "use the device's configured default vdom"; ScopeGlobal omits the
// vdom parameter entirely for the handful of endpoints that are vdom-less.
type Scope struct {
	vdom   string
	global bool
}

var (
	ScopeDefault = Scope{}
	ScopeGlobal  = Scope{global: true}
)

// ScopeVDOM scopes a request to an explicit vdom. An empty name falls back
// to the device default, matching an absent tool argument.
func ScopeVDOM(vdom string) Scope {
	if vdom == "" {
		return ScopeDefault
	}
	return Scope{vdom: vdom}
}

// Client is the API client for a single registered device. It owns the
// device's configuration, resolved authentication mode, and HTTP transport.
// Clients are never shared between devices.
type Client struct {
	deviceID   string
	config     DeviceConfig
	authMethod AuthMethod
	headers    map[string]string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for deviceID. The authentication mode is
// resolved once here: token when api_token is set (token wins if both modes
// are supplied), basic otherwise. Construction fails with a ConfigError if
// the configuration is unusable.
func NewClient(deviceID string, config DeviceConfig) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(deviceID); err != nil {
		return nil, err
	}

	c := &Client{
		deviceID:   deviceID,
		config:     config,
		authMethod: AuthBasic,
		headers:    map[string]string{"Accept": "application/json"},
		baseURL:    fmt.Sprintf("https://%s:%d/api/v2", config.Host, config.Port),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: !config.VerifySSL},
			},
		},
	}

	if config.APIToken != "" {
		c.authMethod = AuthToken
		c.headers["Authorization"] = "Bearer " + config.APIToken
	}

	return c, nil
}

// DeviceID returns the registry key this client was constructed for.
func (c *Client) DeviceID() string {
	return c.deviceID
}

// Config returns a copy of the device configuration.
func (c *Client) Config() DeviceConfig {
	return c.config
}

// AuthMethod returns the resolved authentication mode.
func (c *Client) AuthMethod() AuthMethod {
	return c.authMethod
}

// Headers returns a copy of the default request headers.
func (c *Client) Headers() map[string]string {
	headers := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		headers[k] = v
	}
	return headers
}

// Do performs one request against the device's REST API. path is relative to
// /api/v2 (e.g. "monitor/system/status"). The decoded JSON body is returned
// verbatim on any status < 400; callers interpret the shape themselves.
// Exactly one request is sent per invocation.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, scope Scope) (map[string]any, error) {
	q := url.Values{}
	for k, vs := range query {
		q[k] = vs
	}
	switch {
	case scope.global:
		// vdom-less endpoint
	case scope.vdom != "":
		q.Set("vdom", scope.vdom)
	default:
		q.Set("vdom", c.config.VDOM)
	}

	reqURL := c.baseURL + "/" + path
	if encoded := q.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("device '%s': encoding request body: %w", c.deviceID, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("device '%s': building request: %w", c.deviceID, err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authMethod == AuthBasic {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{DeviceID: c.deviceID, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{DeviceID: c.deviceID, Method: method, Path: path, Err: err}
	}

	if resp.StatusCode >= 400 {
		return nil, &RemoteError{
			DeviceID:   c.deviceID,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       snippet(respBody, 512),
		}
	}

	if len(respBody) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("device '%s': decoding response body: %w", c.deviceID, err)
	}
	return result, nil
}

func snippet(b []byte, max int) string {
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}

// TestConnection probes the device by fetching the system status. It is the
// one operation that never returns an error: any failure yields false.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.SystemStatus(ctx)
	return err == nil
}

// System operations.

// SystemStatus returns the device's monitor/system/status document.
func (c *Client) SystemStatus(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "monitor/system/status", nil, nil, ScopeDefault)
}

// VDOMs lists the configured virtual domains. VDOM listing is global, so no
// vdom parameter is ever attached.
func (c *Client) VDOMs(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/system/vdom", nil, nil, ScopeGlobal)
}

// Firewall policy operations.

func (c *Client) FirewallPolicies(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall/policy", nil, nil, scope)
}

func (c *Client) FirewallPolicyDetail(ctx context.Context, policyID string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall/policy/"+url.PathEscape(policyID), nil, nil, scope)
}

func (c *Client) CreateFirewallPolicy(ctx context.Context, policy map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "cmdb/firewall/policy", nil, policy, scope)
}

func (c *Client) UpdateFirewallPolicy(ctx context.Context, policyID string, policy map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPut, "cmdb/firewall/policy/"+url.PathEscape(policyID), nil, policy, scope)
}

func (c *Client) DeleteFirewallPolicy(ctx context.Context, policyID string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, "cmdb/firewall/policy/"+url.PathEscape(policyID), nil, nil, scope)
}

// Network object operations.

func (c *Client) AddressObjects(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall/address", nil, nil, scope)
}

func (c *Client) CreateAddressObject(ctx context.Context, address map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "cmdb/firewall/address", nil, address, scope)
}

func (c *Client) ServiceObjects(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall.service/custom", nil, nil, scope)
}

func (c *Client) CreateServiceObject(ctx context.Context, service map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "cmdb/firewall.service/custom", nil, service, scope)
}

// Routing operations.

func (c *Client) StaticRoutes(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/router/static", nil, nil, scope)
}

func (c *Client) StaticRouteDetail(ctx context.Context, routeID string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/router/static/"+url.PathEscape(routeID), nil, nil, scope)
}

func (c *Client) CreateStaticRoute(ctx context.Context, route map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "cmdb/router/static", nil, route, scope)
}

func (c *Client) UpdateStaticRoute(ctx context.Context, routeID string, route map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPut, "cmdb/router/static/"+url.PathEscape(routeID), nil, route, scope)
}

func (c *Client) DeleteStaticRoute(ctx context.Context, routeID string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, "cmdb/router/static/"+url.PathEscape(routeID), nil, nil, scope)
}

// RoutingTable returns the live IPv4 routing table.
func (c *Client) RoutingTable(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "monitor/router/ipv4", nil, nil, scope)
}

// Interface operations.

func (c *Client) Interfaces(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/system/interface", nil, nil, scope)
}

func (c *Client) InterfaceStatus(ctx context.Context, name string, scope Scope) (map[string]any, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	return c.Do(ctx, http.MethodGet, "monitor/system/interface", query, nil, scope)
}

// Virtual IP operations.

func (c *Client) VirtualIPs(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall/vip", nil, nil, scope)
}

func (c *Client) VirtualIPDetail(ctx context.Context, name string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "cmdb/firewall/vip/"+url.PathEscape(name), nil, nil, scope)
}

func (c *Client) CreateVirtualIP(ctx context.Context, vip map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "cmdb/firewall/vip", nil, vip, scope)
}

func (c *Client) UpdateVirtualIP(ctx context.Context, name string, vip map[string]any, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodPut, "cmdb/firewall/vip/"+url.PathEscape(name), nil, vip, scope)
}

func (c *Client) DeleteVirtualIP(ctx context.Context, name string, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, "cmdb/firewall/vip/"+url.PathEscape(name), nil, nil, scope)
}

// Network visibility operations.

func (c *Client) DHCPLeases(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "monitor/system/dhcp", nil, nil, scope)
}

func (c *Client) ARPTable(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "monitor/network/arp", nil, nil, scope)
}

func (c *Client) SessionTable(ctx context.Context, count int, scope Scope) (map[string]any, error) {
	query := url.Values{}
	if count > 0 {
		query.Set("count", fmt.Sprintf("%d", count))
	}
	return c.Do(ctx, http.MethodGet, "monitor/firewall/session", query, nil, scope)
}

func (c *Client) DeviceInventory(ctx context.Context, scope Scope) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "monitor/user/device/query", nil, nil, scope)
}
