package fortigate

import (
	"context"
	"sync"

	"github.com/martinsuchenak/fortimcp/internal/log"
)

// maxProbeWorkers bounds the connectivity fan-out in TestAll.
const maxProbeWorkers = 8

// Registry owns the mapping from device identifier to API client. It is the
// sole owner of the clients it holds; callers receive references whose
// lifetime is bounded by registry retention. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Client
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]*Client),
	}
}

// Add validates the configuration, constructs a client, and registers it
// under deviceID. Adding an id that is already present fails with a
// DuplicateError and leaves the registry unchanged.
func (r *Registry) Add(deviceID string, config DeviceConfig) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[deviceID]; exists {
		return nil, &DuplicateError{DeviceID: deviceID}
	}

	client, err := NewClient(deviceID, config)
	if err != nil {
		return nil, err
	}

	r.devices[deviceID] = client
	r.order = append(r.order, deviceID)
	log.Debug("Device registered", "device_id", deviceID, "host", config.Host)
	return client, nil
}

// Remove deletes the device's client. Removing an absent id fails with a
// NotFoundError and leaves the registry unchanged.
func (r *Registry) Remove(deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[deviceID]; !exists {
		return &NotFoundError{DeviceID: deviceID, Available: r.list()}
	}

	delete(r.devices, deviceID)
	for i, id := range r.order {
		if id == deviceID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Debug("Device removed", "device_id", deviceID)
	return nil
}

// Get returns the client registered under deviceID. A missing id fails with
// a NotFoundError enumerating the currently registered ids.
func (r *Registry) Get(deviceID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.devices[deviceID]
	if !exists {
		return nil, &NotFoundError{DeviceID: deviceID, Available: r.list()}
	}
	return client, nil
}

// List returns the registered device ids in insertion order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list()
}

func (r *Registry) list() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// TestAll probes every registered device and reports id -> reachable. The
// probes run concurrently with a bounded worker count; each one touches a
// distinct client, and a failing probe never aborts the others.
func (r *Registry) TestAll(ctx context.Context) map[string]bool {
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.order))
	for _, id := range r.order {
		clients = append(clients, r.devices[id])
	}
	r.mu.RUnlock()

	results := make(map[string]bool, len(clients))
	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
	)
	sem := make(chan struct{}, maxProbeWorkers)

	for _, client := range clients {
		wg.Add(1)
		sem <- struct{}{}
		go func(c *Client) {
			defer wg.Done()
			defer func() { <-sem }()

			ok := c.TestConnection(ctx)
			resultsMu.Lock()
			results[c.DeviceID()] = ok
			resultsMu.Unlock()
		}(client)
	}
	wg.Wait()

	return results
}
